package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"stratum-hq/ganymede/pkg/sim/model"
	"stratum-hq/ganymede/pkg/sim/rule"
)

func newTestEngine(t *testing.T, agentIDs ...string) *Engine {
	t.Helper()
	m := model.New()
	for _, id := range agentIDs {
		if err := m.AddAgent(model.NewAgent(id, map[string]any{"score": 0.0})); err != nil {
			t.Fatalf("AddAgent(%s) error = %v", id, err)
		}
	}
	e, err := New(m, nil, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

// setScoreRule proposes score=value for every agent context it sees.
func setScoreRule(name string, priority int, value float64) rule.Rule {
	return &rule.Func{
		RuleName:     name,
		RuleScope:    rule.ScopeAgent,
		RulePriority: priority,
		Fn: func(ctx context.Context, ec *rule.Context) (rule.Outcome, error) {
			var out rule.Outcome
			out.SetAgentAttr(ec.Agent.ID(), "score", value)
			return out, nil
		},
	}
}

func TestEngine_PriorityWins(t *testing.T) {
	// Spec example: RuleA(priority=1, score=10), RuleB(priority=2,
	// score=20) on one agent -> score is 20, one superseded effect.
	e := newTestEngine(t, "a1")
	if err := e.RegisterRule(setScoreRule("ruleA", 1, 10.0)); err != nil {
		t.Fatalf("RegisterRule() error = %v", err)
	}
	if err := e.RegisterRule(setScoreRule("ruleB", 2, 20.0)); err != nil {
		t.Fatalf("RegisterRule() error = %v", err)
	}

	report, err := e.RunTick(context.Background())
	if err != nil {
		t.Fatalf("RunTick() error = %v", err)
	}

	if report.Applied != 1 || report.Superseded != 1 {
		t.Errorf("applied=%d superseded=%d, want 1/1", report.Applied, report.Superseded)
	}
	val, _ := e.Model().GetAttr("a1", "score")
	if val != 20.0 {
		t.Errorf("score = %v, want 20.0", val)
	}
	if !report.Changed {
		t.Error("Changed = false, want true")
	}
	if e.CurrentTick() != 1 {
		t.Errorf("CurrentTick() = %d, want 1", e.CurrentTick())
	}
}

func TestEngine_RegistrationOrderBreaksTies(t *testing.T) {
	e := newTestEngine(t, "a1")
	if err := e.RegisterRule(setScoreRule("first", 5, 10.0)); err != nil {
		t.Fatalf("RegisterRule() error = %v", err)
	}
	if err := e.RegisterRule(setScoreRule("second", 5, 20.0)); err != nil {
		t.Fatalf("RegisterRule() error = %v", err)
	}

	if _, err := e.RunTick(context.Background()); err != nil {
		t.Fatalf("RunTick() error = %v", err)
	}
	val, _ := e.Model().GetAttr("a1", "score")
	if val != 10.0 {
		t.Errorf("score = %v, want 10.0 (earlier registration wins)", val)
	}
}

func TestEngine_EmptyPopulation(t *testing.T) {
	e := newTestEngine(t) // no agents
	if err := e.RegisterRule(setScoreRule("agent-rule", 0, 1.0)); err != nil {
		t.Fatalf("RegisterRule() error = %v", err)
	}

	report, err := e.RunTick(context.Background())
	if err != nil {
		t.Fatalf("RunTick() error = %v", err)
	}
	if report.Applied != 0 || len(report.Errors) != 0 || report.Evaluations != 0 {
		t.Errorf("report = applied:%d errors:%d evals:%d, want all zero",
			report.Applied, len(report.Errors), report.Evaluations)
	}
	if report.Changed {
		t.Error("Changed = true, want false")
	}
}

func TestEngine_EvaluationReadsPreTickState(t *testing.T) {
	// writer proposes score=10; reader observes the pre-tick score (0)
	// in the same tick, so derived must be 1, not 11.
	e := newTestEngine(t, "a1")
	if err := e.RegisterRule(setScoreRule("writer", 0, 10.0)); err != nil {
		t.Fatalf("RegisterRule() error = %v", err)
	}
	reader := &rule.Func{
		RuleName:  "reader",
		RuleScope: rule.ScopeAgent,
		Fn: func(ctx context.Context, ec *rule.Context) (rule.Outcome, error) {
			score, err := ec.Agent.Float("score")
			if err != nil {
				return rule.Outcome{}, err
			}
			var out rule.Outcome
			out.SetAgentAttr(ec.Agent.ID(), "derived", score+1)
			return out, nil
		},
	}
	if err := e.RegisterRule(reader); err != nil {
		t.Fatalf("RegisterRule() error = %v", err)
	}

	if _, err := e.RunTick(context.Background()); err != nil {
		t.Fatalf("RunTick() error = %v", err)
	}
	derived, _ := e.Model().GetAttr("a1", "derived")
	if derived != 1.0 {
		t.Errorf("derived = %v, want 1.0 (evaluation must see pre-tick state)", derived)
	}
}

func TestEngine_FailureIsolation(t *testing.T) {
	e := newTestEngine(t, "a1", "a2")

	failing := &rule.Func{
		RuleName:  "broken",
		RuleScope: rule.ScopeAgent,
		Fn: func(ctx context.Context, ec *rule.Context) (rule.Outcome, error) {
			if ec.Agent.ID() == "a1" {
				// Missing attribute access, the canonical
				// recoverable failure.
				_, err := ec.Agent.Float("nonexistent")
				return rule.Outcome{}, err
			}
			var out rule.Outcome
			out.SetAgentAttr(ec.Agent.ID(), "score", 5.0)
			return out, nil
		},
	}
	if err := e.RegisterRule(failing); err != nil {
		t.Fatalf("RegisterRule() error = %v", err)
	}

	report, err := e.RunTick(context.Background())
	if err != nil {
		t.Fatalf("RunTick() error = %v", err)
	}

	if len(report.Errors) != 1 {
		t.Fatalf("errors = %d, want 1", len(report.Errors))
	}
	if report.Errors[0].Rule != "broken" || report.Errors[0].TargetID != "a1" {
		t.Errorf("error attribution = %s/%s", report.Errors[0].Rule, report.Errors[0].TargetID)
	}
	// a2's evaluation still went through.
	val, _ := e.Model().GetAttr("a2", "score")
	if val != 5.0 {
		t.Errorf("a2 score = %v, want 5.0", val)
	}
}

func TestEngine_PanicIsIsolated(t *testing.T) {
	e := newTestEngine(t, "a1")
	panicking := &rule.Func{
		RuleName:  "panics",
		RuleScope: rule.ScopeModel,
		Fn: func(ctx context.Context, ec *rule.Context) (rule.Outcome, error) {
			panic("boom")
		},
	}
	if err := e.RegisterRule(panicking); err != nil {
		t.Fatalf("RegisterRule() error = %v", err)
	}
	if err := e.RegisterRule(setScoreRule("ok", 0, 3.0)); err != nil {
		t.Fatalf("RegisterRule() error = %v", err)
	}

	report, err := e.RunTick(context.Background())
	if err != nil {
		t.Fatalf("RunTick() error = %v", err)
	}
	if len(report.Errors) != 1 || report.Errors[0].Rule != "panics" {
		t.Fatalf("errors = %v, want one from rule panics", report.Errors)
	}
	val, _ := e.Model().GetAttr("a1", "score")
	if val != 3.0 {
		t.Errorf("score = %v, want 3.0", val)
	}
}

func TestEngine_SlowRuleTimesOut(t *testing.T) {
	m := model.New()
	if err := m.AddAgent(model.NewAgent("a1", map[string]any{"score": 0.0})); err != nil {
		t.Fatalf("AddAgent() error = %v", err)
	}
	cfg := DefaultConfig()
	cfg.RuleTimeout = 5 * time.Millisecond
	e, err := New(m, cfg, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	slow := &rule.Func{
		RuleName:  "slow",
		RuleScope: rule.ScopeAgent,
		Fn: func(ctx context.Context, ec *rule.Context) (rule.Outcome, error) {
			// Never checks the deadline.
			time.Sleep(50 * time.Millisecond)
			var out rule.Outcome
			out.SetAgentAttr(ec.Agent.ID(), "score", 99.0)
			return out, nil
		},
	}
	if err := e.RegisterRule(slow); err != nil {
		t.Fatalf("RegisterRule() error = %v", err)
	}

	report, err := e.RunTick(context.Background())
	if err != nil {
		t.Fatalf("RunTick() error = %v", err)
	}

	if len(report.Errors) != 1 || report.Errors[0].Rule != "slow" {
		t.Fatalf("errors = %v, want one from rule slow", report.Errors)
	}
	if report.Applied != 0 {
		t.Errorf("applied = %d, want 0 (late outcome discarded)", report.Applied)
	}
	val, _ := e.Model().GetAttr("a1", "score")
	if val != 0.0 {
		t.Errorf("score = %v, want 0.0", val)
	}
}

func TestEngine_ApplyErrorRollsBackTick(t *testing.T) {
	e := newTestEngine(t, "a1")
	// Valid effect plus one that targets a missing agent. The apply
	// phase must reject the whole tick.
	bad := &rule.Func{
		RuleName:  "bad-target",
		RuleScope: rule.ScopeModel,
		Fn: func(ctx context.Context, ec *rule.Context) (rule.Outcome, error) {
			var out rule.Outcome
			out.SetAgentAttr("a1", "score", 1.0)
			out.SetAgentAttr("ghost", "score", 2.0)
			return out, nil
		},
	}
	if err := e.RegisterRule(bad); err != nil {
		t.Fatalf("RegisterRule() error = %v", err)
	}

	before := e.Model().Snapshot()
	_, err := e.RunTick(context.Background())
	if err == nil {
		t.Fatal("RunTick() = nil error, want ApplyError")
	}
	var applyErr *model.ApplyError
	if !errors.As(err, &applyErr) {
		t.Fatalf("error type = %T, want *model.ApplyError", err)
	}

	after := e.Model().Snapshot()
	if after.Tick != before.Tick {
		t.Errorf("tick advanced after failed apply: %d -> %d", before.Tick, after.Tick)
	}
	if after.Agents[0].Attrs["score"] != before.Agents[0].Attrs["score"] {
		t.Error("state mutated despite apply failure")
	}
}

func TestEngine_CancellationDiscardsEffects(t *testing.T) {
	e := newTestEngine(t, "a1")
	ctx, cancel := context.WithCancel(context.Background())

	// The rule cancels the driver context during evaluation; the tick
	// must be abandoned before apply.
	canceller := &rule.Func{
		RuleName:  "canceller",
		RuleScope: rule.ScopeAgent,
		Fn: func(_ context.Context, ec *rule.Context) (rule.Outcome, error) {
			cancel()
			var out rule.Outcome
			out.SetAgentAttr(ec.Agent.ID(), "score", 42.0)
			return out, nil
		},
	}
	if err := e.RegisterRule(canceller); err != nil {
		t.Fatalf("RegisterRule() error = %v", err)
	}

	_, err := e.RunTick(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("RunTick() error = %v, want context.Canceled", err)
	}
	val, _ := e.Model().GetAttr("a1", "score")
	if val != 0.0 {
		t.Errorf("score = %v, want 0.0 (effects discarded)", val)
	}
	if e.CurrentTick() != 0 {
		t.Errorf("tick advanced on cancelled tick: %d", e.CurrentTick())
	}
}

func TestEngine_RemoveRuleMidRun(t *testing.T) {
	e := newTestEngine(t, "a1")
	if err := e.RegisterRule(setScoreRule("transient", 0, 10.0)); err != nil {
		t.Fatalf("RegisterRule() error = %v", err)
	}

	if _, err := e.RunTick(context.Background()); err != nil {
		t.Fatalf("RunTick() error = %v", err)
	}
	if err := e.RemoveRule("transient"); err != nil {
		t.Fatalf("RemoveRule() error = %v", err)
	}

	report, err := e.RunTick(context.Background())
	if err != nil {
		t.Fatalf("RunTick() error = %v", err)
	}
	if report.Evaluations != 0 {
		t.Errorf("evaluations after removal = %d, want 0", report.Evaluations)
	}
	// State applied before removal survives.
	val, _ := e.Model().GetAttr("a1", "score")
	if val != 10.0 {
		t.Errorf("score = %v, want 10.0", val)
	}
}

func TestEngine_Determinism(t *testing.T) {
	// Identical registration sequences over identical starting state
	// must produce identical state, sequentially or parallel.
	build := func(workers int) *Engine {
		m := model.New()
		for i := 0; i < 20; i++ {
			id := fmt.Sprintf("agent-%02d", i)
			if err := m.AddAgent(model.NewAgent(id, map[string]any{"score": float64(i)})); err != nil {
				t.Fatalf("AddAgent() error = %v", err)
			}
		}
		cfg := DefaultConfig()
		cfg.Workers = workers
		e, err := New(m, cfg, nil)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}

		double := &rule.Func{
			RuleName:  "double",
			RuleScope: rule.ScopeAgent,
			Fn: func(ctx context.Context, ec *rule.Context) (rule.Outcome, error) {
				score, err := ec.Agent.Float("score")
				if err != nil {
					return rule.Outcome{}, err
				}
				var out rule.Outcome
				out.SetAgentAttr(ec.Agent.ID(), "score", score*2)
				return out, nil
			},
		}
		clampHigh := &rule.Func{
			RuleName:     "clamp-high",
			RuleScope:    rule.ScopeAgent,
			RulePriority: 10,
			Fn: func(ctx context.Context, ec *rule.Context) (rule.Outcome, error) {
				score, err := ec.Agent.Float("score")
				if err != nil {
					return rule.Outcome{}, err
				}
				var out rule.Outcome
				if score > 15 {
					out.SetAgentAttr(ec.Agent.ID(), "score", 15.0)
				}
				return out, nil
			},
		}
		for _, r := range []rule.Rule{double, clampHigh} {
			if err := e.RegisterRule(r); err != nil {
				t.Fatalf("RegisterRule() error = %v", err)
			}
		}
		return e
	}

	run := func(e *Engine, ticks int) *model.State {
		for i := 0; i < ticks; i++ {
			if _, err := e.RunTick(context.Background()); err != nil {
				t.Fatalf("RunTick() error = %v", err)
			}
		}
		return e.Model().Snapshot()
	}

	seq1 := run(build(1), 5)
	seq2 := run(build(1), 5)
	par := run(build(4), 5)

	compare := func(label string, a, b *model.State) {
		t.Helper()
		if len(a.Agents) != len(b.Agents) {
			t.Fatalf("%s: agent counts differ", label)
		}
		for i := range a.Agents {
			for k, v := range a.Agents[i].Attrs {
				if b.Agents[i].Attrs[k] != v {
					t.Errorf("%s: agent %s attr %s differs: %v vs %v",
						label, a.Agents[i].ID, k, v, b.Agents[i].Attrs[k])
				}
			}
		}
	}
	compare("sequential repeat", seq1, seq2)
	compare("parallel vs sequential", seq1, par)
}

func TestEngine_EffectBudget(t *testing.T) {
	m := model.New()
	if err := m.AddAgent(model.NewAgent("a1", nil)); err != nil {
		t.Fatalf("AddAgent() error = %v", err)
	}
	cfg := DefaultConfig()
	cfg.MaxEffectsPerTick = 3
	e, err := New(m, cfg, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	flood := &rule.Func{
		RuleName:  "flood",
		RuleScope: rule.ScopeModel,
		Fn: func(ctx context.Context, ec *rule.Context) (rule.Outcome, error) {
			var out rule.Outcome
			for i := 0; i < 10; i++ {
				out.SetGlobal(fmt.Sprintf("g%d", i), i)
			}
			return out, nil
		},
	}
	if err := e.RegisterRule(flood); err != nil {
		t.Fatalf("RegisterRule() error = %v", err)
	}

	_, err = e.RunTick(context.Background())
	if !errors.Is(err, ErrEffectBudgetExceeded) {
		t.Errorf("RunTick() error = %v, want ErrEffectBudgetExceeded", err)
	}
	if e.CurrentTick() != 0 {
		t.Errorf("tick advanced after budget abort: %d", e.CurrentTick())
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "default is valid", mutate: func(c *Config) {}},
		{name: "zero workers", mutate: func(c *Config) { c.Workers = 0 }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.RuleTimeout = 0 }, wantErr: true},
		{name: "zero budget", mutate: func(c *Config) { c.MaxEffectsPerTick = 0 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
