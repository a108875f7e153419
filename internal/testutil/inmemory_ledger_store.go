package testutil

import (
	"context"
	"sync"

	"github.com/subcycle/subcycle/internal/domain/ledger"
	ierr "github.com/subcycle/subcycle/internal/errors"
)

var _ ledger.Repository = (*InMemoryLedgerStore)(nil)

// InMemoryLedgerStore implements ledger.Repository. The mutex plays the role
// of the primary key constraint: under concurrent TryClaim calls for the same
// id exactly one caller observes the insert.
type InMemoryLedgerStore struct {
	mu     sync.Mutex
	events map[string]*ledger.Event
}

// NewInMemoryLedgerStore creates a new in-memory event ledger
func NewInMemoryLedgerStore() *InMemoryLedgerStore {
	return &InMemoryLedgerStore{
		events: make(map[string]*ledger.Event),
	}
}

func copyEvent(event *ledger.Event) *ledger.Event {
	if event == nil {
		return nil
	}
	copied := *event
	if event.Payload != nil {
		copied.Payload = make([]byte, len(event.Payload))
		copy(copied.Payload, event.Payload)
	}
	return &copied
}

func (s *InMemoryLedgerStore) TryClaim(ctx context.Context, event *ledger.Event) (bool, error) {
	if event == nil {
		return false, ierr.NewError("event cannot be nil").Mark(ierr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.events[event.ID]; exists {
		return false, nil
	}
	s.events[event.ID] = copyEvent(event)
	return true, nil
}

func (s *InMemoryLedgerStore) Get(ctx context.Context, id string) (*ledger.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, exists := s.events[id]
	if !exists {
		return nil, ierr.NewErrorf("event %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	return copyEvent(event), nil
}

// Count returns the number of recorded events
func (s *InMemoryLedgerStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// Clear removes all events
func (s *InMemoryLedgerStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[string]*ledger.Event)
}
