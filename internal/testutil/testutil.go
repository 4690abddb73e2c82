// Package testutil provides builders for simulation state used by tests
// across packages.
package testutil

import (
	"fmt"
	"math/rand"

	"stratum-hq/ganymede/pkg/sim/model"
	"stratum-hq/ganymede/pkg/sim/rules"
)

// TeamConfig describes the initial team state built by NewTeamModel.
type TeamConfig struct {
	Agents             int
	InitialTasks       int
	InitialPsychSafety float64
	Seed               int64
}

// DefaultTeamConfig returns a small team suitable for most tests.
func DefaultTeamConfig() TeamConfig {
	return TeamConfig{
		Agents:             4,
		InitialTasks:       3,
		InitialPsychSafety: 0.5,
		Seed:               1,
	}
}

// NewTeamModel builds a model populated with engineers whose attributes
// are drawn from a seeded source, so two calls with the same config
// produce identical state.
func NewTeamModel(cfg TeamConfig) *model.Model {
	rng := rand.New(rand.NewSource(cfg.Seed))

	m := model.New()
	m.SetGlobal(rules.GlobalPsychSafety, cfg.InitialPsychSafety)
	m.SetGlobal(rules.GlobalCollaborationFactor, 0.0)

	for i := 0; i < cfg.Agents; i++ {
		id := fmt.Sprintf("engineer-%03d", i+1)
		_ = m.AddAgent(model.NewAgent(id, map[string]any{
			rules.AttrTaskProgress:       0.0,
			rules.AttrTasksRemaining:     float64(cfg.InitialTasks),
			rules.AttrTasksCompleted:     0.0,
			rules.AttrWorkEfficiency:     0.6 + 0.4*rng.Float64(),
			rules.AttrKnowledge:          0.2 + 0.4*rng.Float64(),
			rules.AttrLearningRate:       0.05 + 0.1*rng.Float64(),
			rules.AttrPPS:                0.4 + 0.3*rng.Float64(),
			rules.AttrCommunicationSkill: 0.3 + 0.5*rng.Float64(),
			rules.AttrMotivation:         0.5 + 0.4*rng.Float64(),
		}))
	}
	return m
}

// NewAgent builds one agent with the given overrides on top of a neutral
// attribute set.
func NewAgent(id string, overrides map[string]any) *model.Agent {
	attrs := map[string]any{
		rules.AttrTaskProgress:       0.0,
		rules.AttrTasksRemaining:     1.0,
		rules.AttrTasksCompleted:     0.0,
		rules.AttrWorkEfficiency:     1.0,
		rules.AttrKnowledge:          0.5,
		rules.AttrLearningRate:       0.1,
		rules.AttrPPS:                0.5,
		rules.AttrCommunicationSkill: 0.5,
		rules.AttrMotivation:         0.5,
	}
	for k, v := range overrides {
		attrs[k] = v
	}
	return model.NewAgent(id, attrs)
}
