package effect

import (
	"errors"
	"testing"
)

// stamp builds a fully-provenanced mutation effect for tests.
func stamp(ef Effect, rule string, priority, position, seq int) Effect {
	ef.Rule = rule
	ef.Priority = priority
	ef.Position = position
	ef.Seq = seq
	return ef
}

func TestPriorityResolver_Resolve(t *testing.T) {
	tests := []struct {
		name           string
		effects        []Effect
		wantApplied    int
		wantSuperseded int
		wantWinner     map[string]any // collision key -> expected value
	}{
		{
			name:        "no effects",
			effects:     nil,
			wantApplied: 0,
		},
		{
			name: "no collisions",
			effects: []Effect{
				stamp(SetAgentAttr("a1", "score", 1.0), "ruleA", 1, 0, 0),
				stamp(SetAgentAttr("a2", "score", 2.0), "ruleA", 1, 0, 1),
				stamp(SetGlobal("morale", 0.5), "ruleB", 1, 1, 2),
			},
			wantApplied: 3,
		},
		{
			name: "higher priority wins",
			effects: []Effect{
				stamp(SetAgentAttr("a1", "score", 10.0), "ruleA", 1, 0, 0),
				stamp(SetAgentAttr("a1", "score", 20.0), "ruleB", 2, 1, 1),
			},
			wantApplied:    1,
			wantSuperseded: 1,
			wantWinner:     map[string]any{"agent/a1/score": 20.0},
		},
		{
			name: "earlier registration wins priority ties",
			effects: []Effect{
				stamp(SetAgentAttr("a1", "score", 10.0), "ruleA", 5, 0, 0),
				stamp(SetAgentAttr("a1", "score", 20.0), "ruleB", 5, 1, 1),
			},
			wantApplied:    1,
			wantSuperseded: 1,
			wantWinner:     map[string]any{"agent/a1/score": 10.0},
		},
		{
			name: "last write wins within one rule",
			effects: []Effect{
				stamp(SetAgentAttr("a1", "score", 10.0), "ruleA", 5, 0, 0),
				stamp(SetAgentAttr("a1", "score", 30.0), "ruleA", 5, 0, 1),
			},
			wantApplied:    1,
			wantSuperseded: 1,
			wantWinner:     map[string]any{"agent/a1/score": 30.0},
		},
		{
			name: "globals and agent attrs do not collide",
			effects: []Effect{
				stamp(SetGlobal("score", 1.0), "ruleA", 1, 0, 0),
				stamp(SetAgentAttr("a1", "score", 2.0), "ruleB", 1, 1, 1),
			},
			wantApplied: 2,
		},
		{
			name: "events never conflict",
			effects: []Effect{
				stamp(Emit("task_completed", "t1"), "ruleA", 1, 0, 0),
				stamp(Emit("task_completed", "t2"), "ruleB", 1, 1, 1),
				stamp(SetAgentAttr("a1", "score", 1.0), "ruleA", 1, 0, 2),
			},
			wantApplied: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := NewPriorityResolver()
			applied, superseded, err := resolver.Resolve(tt.effects)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if len(applied) != tt.wantApplied {
				t.Errorf("applied = %d, want %d", len(applied), tt.wantApplied)
			}
			if len(superseded) != tt.wantSuperseded {
				t.Errorf("superseded = %d, want %d", len(superseded), tt.wantSuperseded)
			}
			for key, want := range tt.wantWinner {
				found := false
				for _, ef := range applied {
					if ef.Key() == key {
						found = true
						if ef.Value != want {
							t.Errorf("winner for %s = %v, want %v", key, ef.Value, want)
						}
					}
				}
				if !found {
					t.Errorf("no applied effect for key %s", key)
				}
			}
		})
	}
}

func TestPriorityResolver_DeterministicOrder(t *testing.T) {
	// Same effects presented in two different collection orders must
	// resolve to the same applied sequence.
	effects := []Effect{
		stamp(SetAgentAttr("a1", "score", 10.0), "ruleA", 1, 0, 0),
		stamp(SetAgentAttr("a2", "score", 15.0), "ruleA", 1, 0, 1),
		stamp(SetAgentAttr("a1", "score", 20.0), "ruleB", 2, 1, 2),
		stamp(SetGlobal("morale", 0.9), "ruleC", 1, 2, 3),
	}

	shuffled := []Effect{effects[3], effects[1], effects[2], effects[0]}

	resolver := NewPriorityResolver()
	applied1, _, err := resolver.Resolve(effects)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	applied2, _, err := resolver.Resolve(shuffled)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if len(applied1) != len(applied2) {
		t.Fatalf("applied lengths differ: %d vs %d", len(applied1), len(applied2))
	}
	for i := range applied1 {
		if applied1[i] != applied2[i] {
			t.Errorf("applied[%d] differs: %v vs %v", i, applied1[i], applied2[i])
		}
	}
}

func TestVerifyResolved(t *testing.T) {
	ok := []Effect{
		stamp(SetAgentAttr("a1", "score", 1.0), "ruleA", 1, 0, 0),
		stamp(SetAgentAttr("a2", "score", 2.0), "ruleB", 1, 1, 1),
		stamp(Emit("done", nil), "ruleA", 1, 0, 2),
	}
	if err := VerifyResolved(ok); err != nil {
		t.Errorf("VerifyResolved() = %v, want nil", err)
	}

	bad := []Effect{
		stamp(SetAgentAttr("a1", "score", 1.0), "ruleA", 1, 0, 0),
		stamp(SetAgentAttr("a1", "score", 2.0), "ruleB", 1, 1, 1),
	}
	err := VerifyResolved(bad)
	if err == nil {
		t.Fatal("VerifyResolved() = nil, want ConflictError")
	}
	var conflictErr *ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("error type = %T, want *ConflictError", err)
	}
	if conflictErr.Key != "agent/a1/score" {
		t.Errorf("conflict key = %s, want agent/a1/score", conflictErr.Key)
	}
}
