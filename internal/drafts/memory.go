package drafts

import (
	"context"
	"sync"
	"time"

	"github.com/Samsuesca/uniformes-backend/internal/domain"
)

// MemoryStore keeps drafts in process memory. It is the fallback when Redis
// is not configured, and the store the tests run against.
type MemoryStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	capacity int
	// terminal id -> draft id -> draft
	byTerminal map[string]map[string]domain.SaleDraft
	now        func() time.Time
}

// NewMemoryStore builds a store with the given TTL and per-terminal capacity.
// A TTL of zero disables expiry; a capacity of zero or less falls back to
// DefaultCapacity.
func NewMemoryStore(ttl time.Duration, capacity int) *MemoryStore {
	return &MemoryStore{
		ttl:        ttl,
		capacity:   normalizeCapacity(capacity),
		byTerminal: make(map[string]map[string]domain.SaleDraft),
		now:        time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, draft domain.SaleDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(draft.TerminalID)
	terminal := s.byTerminal[draft.TerminalID]
	if terminal == nil {
		terminal = make(map[string]domain.SaleDraft)
		s.byTerminal[draft.TerminalID] = terminal
	}
	if _, exists := terminal[draft.ID]; !exists && len(terminal) >= s.capacity {
		return ErrTerminalFull
	}
	terminal[draft.ID] = draft
	return nil
}

func (s *MemoryStore) List(_ context.Context, terminalID string) ([]domain.SaleDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(terminalID)
	terminal := s.byTerminal[terminalID]
	out := make([]domain.SaleDraft, 0, len(terminal))
	for _, d := range terminal {
		out = append(out, d)
	}
	sortBySavedAt(out)
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, terminalID, draftID string) (*domain.SaleDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(terminalID)
	d, ok := s.byTerminal[terminalID][draftID]
	if !ok {
		return nil, ErrDraftNotFound
	}
	copied := d
	return &copied, nil
}

func (s *MemoryStore) Delete(_ context.Context, terminalID, draftID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(terminalID)
	terminal := s.byTerminal[terminalID]
	if _, ok := terminal[draftID]; !ok {
		return ErrDraftNotFound
	}
	delete(terminal, draftID)
	return nil
}

func (s *MemoryStore) pruneLocked(terminalID string) {
	if s.ttl <= 0 {
		return
	}
	now := s.now()
	for id, d := range s.byTerminal[terminalID] {
		if expired(d, s.ttl, now) {
			delete(s.byTerminal[terminalID], id)
		}
	}
}
