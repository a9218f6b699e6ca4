// Package drafts stores in-progress checkouts so a terminal can park a sale
// and resume it later. Each terminal holds a bounded number of drafts; saving
// into a full terminal is rejected rather than evicting an older draft, and
// saving with an existing draft id overwrites that draft in place.
package drafts

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/Samsuesca/uniformes-backend/internal/domain"
)

// DefaultCapacity is the per-terminal draft limit used when a store is built
// with a capacity of zero or less.
const DefaultCapacity = 5

var (
	ErrDraftNotFound = errors.New("draft not found")
	ErrTerminalFull  = errors.New("terminal draft slots are full")
)

// Store keeps sale drafts keyed by terminal and draft id.
type Store interface {
	// Save creates or overwrites a draft. A new draft against a terminal
	// already at its capacity fails with ErrTerminalFull.
	Save(ctx context.Context, draft domain.SaleDraft) error
	// List returns a terminal's drafts, most recently saved first.
	List(ctx context.Context, terminalID string) ([]domain.SaleDraft, error)
	// Get returns one draft or ErrDraftNotFound.
	Get(ctx context.Context, terminalID, draftID string) (*domain.SaleDraft, error)
	// Delete removes one draft. Missing drafts fail with ErrDraftNotFound.
	Delete(ctx context.Context, terminalID, draftID string) error
}

// sortBySavedAt orders drafts newest first, draft id as tie-breaker so the
// order is stable across calls.
func sortBySavedAt(drafts []domain.SaleDraft) {
	sort.Slice(drafts, func(i, j int) bool {
		if drafts[i].SavedAt.Equal(drafts[j].SavedAt) {
			return drafts[i].ID < drafts[j].ID
		}
		return drafts[i].SavedAt.After(drafts[j].SavedAt)
	})
}

func expired(d domain.SaleDraft, ttl time.Duration, now time.Time) bool {
	return ttl > 0 && now.Sub(d.SavedAt) > ttl
}

func normalizeCapacity(capacity int) int {
	if capacity <= 0 {
		return DefaultCapacity
	}
	return capacity
}
