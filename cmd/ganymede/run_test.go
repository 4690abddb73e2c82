package main

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"stratum-hq/ganymede/pkg/config"
	"stratum-hq/ganymede/pkg/sim/checkpoint"
	"stratum-hq/ganymede/pkg/sim/engine"
	"stratum-hq/ganymede/pkg/sim/rule"
	"stratum-hq/ganymede/pkg/sim/rules"
	"stratum-hq/ganymede/pkg/sim/ruleset"
	"stratum-hq/ganymede/pkg/telemetry/logging"
)

func TestSeedModel_Deterministic(t *testing.T) {
	cfg := &config.SimulationConfig{
		Engineers:          5,
		InitialTasks:       3,
		InitialPsychSafety: 0.5,
		Seed:               42,
	}

	a := seedModel(cfg)
	b := seedModel(cfg)

	if a.AgentCount() != 5 {
		t.Fatalf("AgentCount() = %d, want 5", a.AgentCount())
	}
	if !reflect.DeepEqual(a.Snapshot(), b.Snapshot()) {
		t.Error("same seed should produce identical initial state")
	}

	cfg.Seed = 43
	c := seedModel(cfg)
	if reflect.DeepEqual(a.Snapshot(), c.Snapshot()) {
		t.Error("different seeds should produce different initial state")
	}
}

func TestSeedModel_Globals(t *testing.T) {
	cfg := &config.SimulationConfig{
		Engineers:          2,
		InitialTasks:       1,
		InitialPsychSafety: 0.8,
		Seed:               1,
	}
	m := seedModel(cfg)

	safety, err := m.GlobalFloat(rules.GlobalPsychSafety)
	if err != nil {
		t.Fatalf("GlobalFloat(%s) error = %v", rules.GlobalPsychSafety, err)
	}
	if safety != 0.8 {
		t.Errorf("psychological safety = %v, want 0.8", safety)
	}

	view, ok := m.View("engineer-001")
	if !ok {
		t.Fatal("agent engineer-001 not found")
	}
	if got := view.FloatOr(rules.AttrTasksRemaining, -1); got != 1 {
		t.Errorf("tasks remaining = %v, want 1", got)
	}
}

func TestDefaultRules(t *testing.T) {
	cfg := config.DefaultConfig()
	built, err := loadRules(ruleset.NewFactory(), cfg, slog.Default())
	if err != nil {
		t.Fatalf("loadRules() error = %v", err)
	}
	if len(built) != 5 {
		t.Fatalf("got %d rules, want 5", len(built))
	}
	if built[0].Scope() != rule.ScopeModel {
		t.Errorf("first rule scope = %s, want model", built[0].Scope())
	}
}

func TestEffectiveSeed(t *testing.T) {
	if got := effectiveSeed(42); got != 42 {
		t.Errorf("effectiveSeed(42) = %d, want 42", got)
	}
	if got := effectiveSeed(0); got == 0 {
		t.Error("effectiveSeed(0) should derive a non-zero seed")
	}
}

func TestResumeModel(t *testing.T) {
	ckpt, err := checkpoint.NewSQLiteStore(checkpoint.SQLiteStoreConfig{
		DBPath: filepath.Join(t.TempDir(), "checkpoints.db"),
	})
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer ckpt.Close()

	ctx := context.Background()
	orig := seedModel(&config.SimulationConfig{
		Engineers:          3,
		InitialTasks:       2,
		InitialPsychSafety: 0.5,
		Seed:               7,
	})
	if err := ckpt.Save(ctx, "run-1", orig.Snapshot()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	m := seedModel(&config.SimulationConfig{Engineers: 1, Seed: 99})
	tick, err := resumeModel(ctx, ckpt, "run-1", m)
	if err != nil {
		t.Fatalf("resumeModel() error = %v", err)
	}
	if tick != 0 {
		t.Errorf("tick = %d, want 0", tick)
	}
	if !reflect.DeepEqual(orig.Snapshot(), m.Snapshot()) {
		t.Error("restored model should match the checkpointed state")
	}

	if _, err := resumeModel(ctx, ckpt, "missing", m); err == nil {
		t.Error("expected error for a run with no checkpoints")
	}
}

func TestDriveTicks_LogsRunContext(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.New(logging.Config{Level: "debug", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("logging.New() error = %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Simulation.Seed = 1
	cfg.Simulation.MaxSteps = 2

	m := seedModel(&cfg.Simulation)
	eng, err := engine.New(m, engine.DefaultConfig(), log.Slog())
	if err != nil {
		t.Fatalf("engine.New() error = %v", err)
	}
	built, err := rules.Defaults()
	if err != nil {
		t.Fatalf("Defaults() error = %v", err)
	}
	if err := eng.Registry().Replace(built); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	ctx := logging.WithRunID(context.Background(), "run-ctx-test")
	if _, err := driveTicks(ctx, eng, cfg, nil, nil, &runStatus{}, log); err != nil {
		t.Fatalf("driveTicks() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"run_id":"run-ctx-test"`) {
		t.Errorf("log output missing run_id field: %s", out)
	}
	if !strings.Contains(out, `"tick"`) {
		t.Errorf("log output missing tick field: %s", out)
	}
}

func TestLoadRules_FromFile(t *testing.T) {
	factory := ruleset.NewFactory()
	if err := rules.RegisterKinds(factory); err != nil {
		t.Fatalf("RegisterKinds() error = %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Rules.Path = "testdata/rules.yaml"

	built, err := loadRules(factory, cfg, slog.Default())
	if err != nil {
		t.Fatalf("loadRules() error = %v", err)
	}
	if len(built) != 5 {
		t.Errorf("got %d rules, want 5", len(built))
	}
}

func TestLoadRules_MissingFile(t *testing.T) {
	factory := ruleset.NewFactory()
	if err := rules.RegisterKinds(factory); err != nil {
		t.Fatalf("RegisterKinds() error = %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Rules.Path = "testdata/nonexistent.yaml"

	if _, err := loadRules(factory, cfg, slog.Default()); err == nil {
		t.Error("expected error for missing rule file")
	}
}

func TestListRulesCommand(t *testing.T) {
	rulesFlags.file = "testdata/rules.yaml"
	rulesFlags.format = "text"

	if err := listRules(rulesCmd, nil); err != nil {
		t.Errorf("listRules() error = %v", err)
	}

	rulesFlags.file = ""
	if err := listRules(rulesCmd, nil); err != nil {
		t.Errorf("listRules() without file error = %v", err)
	}
}
