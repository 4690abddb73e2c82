package checkpoint

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"stratum-hq/ganymede/pkg/sim/model"
)

func newTestStore(t *testing.T, keep int) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(SQLiteStoreConfig{
		DBPath: filepath.Join(t.TempDir(), "checkpoints.db"),
		Keep:   keep,
	})
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func snapshotAt(t *testing.T, tick uint64) *model.State {
	t.Helper()
	m := model.New()
	m.SetGlobal("psychological_safety", 0.8)
	if err := m.AddAgent(&model.Agent{ID: "eng-1", Attrs: map[string]any{"knowledge": 42.0}}); err != nil {
		t.Fatalf("AddAgent: %v", err)
	}
	if err := m.AddAgent(&model.Agent{ID: "eng-2", Attrs: map[string]any{"knowledge": 17.0}}); err != nil {
		t.Fatalf("AddAgent: %v", err)
	}
	st := m.Snapshot()
	st.Tick = tick
	return st
}

func TestSQLiteStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 0)

	st := snapshotAt(t, 5)
	if err := store.Save(ctx, "run-a", st); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load(ctx, "run-a", 5)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Tick != 5 {
		t.Errorf("Tick = %d, want 5", loaded.Tick)
	}
	if len(loaded.Agents) != 2 {
		t.Fatalf("len(Agents) = %d, want 2", len(loaded.Agents))
	}
	// Insertion order survives the round trip.
	if loaded.Agents[0].ID != "eng-1" || loaded.Agents[1].ID != "eng-2" {
		t.Errorf("agent order = %q, %q", loaded.Agents[0].ID, loaded.Agents[1].ID)
	}
	if got := loaded.Agents[0].Attrs["knowledge"]; got != 42.0 {
		t.Errorf("knowledge = %v (%T), want 42", got, got)
	}
	if got := loaded.Globals["psychological_safety"]; got != 0.8 {
		t.Errorf("psychological_safety = %v, want 0.8", got)
	}
}

func TestSQLiteStore_RestoreIntoModel(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 0)

	if err := store.Save(ctx, "run-a", snapshotAt(t, 9)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := store.Latest(ctx, "run-a")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}

	m := model.New()
	m.Restore(loaded)
	if m.Tick() != 9 {
		t.Errorf("Tick = %d, want 9", m.Tick())
	}
	view, ok := m.View("eng-1")
	if !ok {
		t.Fatal("eng-1 missing after restore")
	}
	knowledge, err := view.Float("knowledge")
	if err != nil || knowledge != 42 {
		t.Errorf("knowledge = %v, %v", knowledge, err)
	}
}

func TestSQLiteStore_LatestAndNotFound(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 0)

	if _, err := store.Latest(ctx, "run-a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Latest on empty store = %v, want ErrNotFound", err)
	}
	if _, err := store.Load(ctx, "run-a", 3); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load on empty store = %v, want ErrNotFound", err)
	}

	for _, tick := range []uint64{3, 7, 5} {
		if err := store.Save(ctx, "run-a", snapshotAt(t, tick)); err != nil {
			t.Fatalf("Save(%d): %v", tick, err)
		}
	}

	latest, err := store.Latest(ctx, "run-a")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.Tick != 7 {
		t.Errorf("Latest tick = %d, want 7", latest.Tick)
	}
}

func TestSQLiteStore_KeepTrimsOldest(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 2)

	for tick := uint64(1); tick <= 5; tick++ {
		if err := store.Save(ctx, "run-a", snapshotAt(t, tick)); err != nil {
			t.Fatalf("Save(%d): %v", tick, err)
		}
	}

	ticks, err := store.Ticks(ctx, "run-a")
	if err != nil {
		t.Fatalf("Ticks: %v", err)
	}
	if len(ticks) != 2 || ticks[0] != 4 || ticks[1] != 5 {
		t.Errorf("Ticks = %v, want [4 5]", ticks)
	}
}

func TestSQLiteStore_DeleteRun(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, 0)

	if err := store.Save(ctx, "run-a", snapshotAt(t, 1)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, "run-b", snapshotAt(t, 1)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := store.DeleteRun(ctx, "run-a"); err != nil {
		t.Fatalf("DeleteRun: %v", err)
	}
	if _, err := store.Latest(ctx, "run-a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("run-a should be gone, got %v", err)
	}
	if _, err := store.Latest(ctx, "run-b"); err != nil {
		t.Errorf("run-b should survive, got %v", err)
	}
}
