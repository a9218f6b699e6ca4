package drafts

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Samsuesca/uniformes-backend/internal/domain"
)

func draft(terminal, id string, savedAt time.Time) domain.SaleDraft {
	return domain.SaleDraft{
		ID:         id,
		TerminalID: terminal,
		SchoolID:   "sch-a",
		SavedAt:    savedAt,
		Items: []domain.CartItem{
			{ProductID: "p1", Qty: 1, UnitPriceCents: 450_00, SchoolID: "sch-a"},
		},
	}
}

func TestMemoryStoreSaveAndList(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0, 0)
	base := time.Now()

	for i := 0; i < 3; i++ {
		d := draft("term-1", fmt.Sprintf("draft-%d", i), base.Add(time.Duration(i)*time.Minute))
		if err := store.Save(ctx, d); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	got, err := store.List(ctx, "term-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 drafts, got %d", len(got))
	}
	if got[0].ID != "draft-2" || got[2].ID != "draft-0" {
		t.Errorf("drafts not newest-first: %s, %s, %s", got[0].ID, got[1].ID, got[2].ID)
	}

	other, err := store.List(ctx, "term-2")
	if err != nil {
		t.Fatalf("list other terminal: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("terminal isolation broken, got %d drafts", len(other))
	}
}

func TestMemoryStoreCapacity(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0, 0)
	base := time.Now()

	for i := 0; i < DefaultCapacity; i++ {
		if err := store.Save(ctx, draft("term-1", fmt.Sprintf("draft-%d", i), base)); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	err := store.Save(ctx, draft("term-1", "draft-extra", base))
	if !errors.Is(err, ErrTerminalFull) {
		t.Fatalf("error = %v, want ErrTerminalFull", err)
	}

	// Overwriting an existing draft must still succeed at capacity.
	updated := draft("term-1", "draft-0", base.Add(time.Hour))
	if err := store.Save(ctx, updated); err != nil {
		t.Fatalf("overwrite at capacity: %v", err)
	}
	got, err := store.Get(ctx, "term-1", "draft-0")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.SavedAt.Equal(updated.SavedAt) {
		t.Error("overwrite did not replace the draft")
	}

	// Another terminal is unaffected.
	if err := store.Save(ctx, draft("term-2", "draft-0", base)); err != nil {
		t.Fatalf("save on second terminal: %v", err)
	}
}

func TestMemoryStoreCustomCapacity(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0, 2)
	base := time.Now()

	for i := 0; i < 2; i++ {
		if err := store.Save(ctx, draft("term-1", fmt.Sprintf("draft-%d", i), base)); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	if err := store.Save(ctx, draft("term-1", "draft-extra", base)); !errors.Is(err, ErrTerminalFull) {
		t.Fatalf("error = %v, want ErrTerminalFull at capacity 2", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0, 0)

	if err := store.Save(ctx, draft("term-1", "draft-1", time.Now())); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(ctx, "term-1", "draft-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "term-1", "draft-1"); !errors.Is(err, ErrDraftNotFound) {
		t.Fatalf("second delete error = %v, want ErrDraftNotFound", err)
	}
	if _, err := store.Get(ctx, "term-1", "draft-1"); !errors.Is(err, ErrDraftNotFound) {
		t.Fatalf("get after delete error = %v, want ErrDraftNotFound", err)
	}
}

func TestMemoryStoreTTL(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(30 * time.Minute, 0)
	now := time.Now()
	store.now = func() time.Time { return now }

	if err := store.Save(ctx, draft("term-1", "old", now.Add(-time.Hour))); err != nil {
		t.Fatalf("save old: %v", err)
	}
	if err := store.Save(ctx, draft("term-1", "fresh", now.Add(-time.Minute))); err != nil {
		t.Fatalf("save fresh: %v", err)
	}

	got, err := store.List(ctx, "term-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != "fresh" {
		t.Fatalf("expected only the fresh draft, got %+v", got)
	}
}
