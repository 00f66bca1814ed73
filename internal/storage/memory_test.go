package storage

import (
	"context"
	"testing"
	"time"

	"github.com/hammamikhairi/ottodraw/internal/domain"
	"github.com/hammamikhairi/ottodraw/internal/logger"
)

func TestMemoryStoreCRUD(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := NewMemoryStore(log)
	ctx := context.Background()

	rec := domain.DrawingRecord{
		SessionID:  "session-1",
		Animal:     "Fox",
		StepsDone:  1,
		TotalSteps: 4,
		StartedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	// Save.
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Load.
	loaded, err := store.Load(ctx, "session-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Animal != "Fox" {
		t.Fatalf("expected Fox, got %s", loaded.Animal)
	}

	// Load nonexistent.
	if _, err := store.Load(ctx, "nonexistent"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Overwrite.
	rec.StepsDone = 4
	rec.Finished = true
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, _ = store.Load(ctx, "session-1")
	if !loaded.Finished || loaded.StepsDone != 4 {
		t.Fatalf("overwrite not applied: %+v", loaded)
	}

	// Delete.
	if err := store.Delete(ctx, "session-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "session-1"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestMemoryStoreListOrder(t *testing.T) {
	store := NewMemoryStore(logger.New(logger.LevelOff, nil))
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"c", "a", "b"} {
		store.Save(ctx, domain.DrawingRecord{SessionID: id, StartedAt: base.Add(time.Duration(2-i) * time.Minute)})
	}
	store.Save(ctx, domain.DrawingRecord{SessionID: "d", StartedAt: base})

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var got string
	for _, r := range list {
		got += r.SessionID
	}
	if got != "bdac" {
		t.Errorf("order = %s, want bdac", got)
	}
}
