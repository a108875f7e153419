package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/subcycle/subcycle/internal/domain/subscription"
	ierr "github.com/subcycle/subcycle/internal/errors"
	"github.com/subcycle/subcycle/internal/types"
)

var _ subscription.Repository = (*InMemorySubscriptionStore)(nil)

// InMemorySubscriptionStore implements subscription.Repository backed by a
// map keyed on subscription id. GetActiveSubscriptionForUpdate takes a
// per-user lock held until the surrounding mock transaction ends, modeling
// FOR UPDATE; the optimistic period check in UpdateBillingPeriod detects
// races the same way the SQL repository does.
type InMemorySubscriptionStore struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription.Subscription
	rowLocks      sync.Map
}

// NewInMemorySubscriptionStore creates a new in-memory subscription store
func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		subscriptions: make(map[string]*subscription.Subscription),
	}
}

func copySubscription(sub *subscription.Subscription) *subscription.Subscription {
	if sub == nil {
		return nil
	}
	copied := *sub
	if sub.AnnualBenefits != nil {
		copied.AnnualBenefits = make([]byte, len(sub.AnnualBenefits))
		copy(copied.AnnualBenefits, sub.AnnualBenefits)
	}
	return &copied
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil {
		return ierr.NewError("subscription cannot be nil").Mark(ierr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.subscriptions[sub.ID]; exists {
		return ierr.NewErrorf("subscription %s already exists", sub.ID).
			Mark(ierr.ErrAlreadyExists)
	}
	if sub.IsActive {
		for _, existing := range s.subscriptions {
			if existing.UserID == sub.UserID && existing.IsActive {
				return ierr.NewErrorf("user %s already has an active subscription", sub.UserID).
					Mark(ierr.ErrAlreadyExists)
			}
		}
	}

	s.subscriptions[sub.ID] = copySubscription(sub)
	return nil
}

func (s *InMemorySubscriptionStore) GetActiveSubscription(ctx context.Context, userID string) (*subscription.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findActive(userID)
}

func (s *InMemorySubscriptionStore) GetActiveSubscriptionForUpdate(ctx context.Context, userID string) (*subscription.Subscription, error) {
	lock := s.rowLock(userID)
	lock.Lock()
	if !holdUntilTxEnd(ctx, lock.Unlock) {
		// No surrounding transaction, behave like a plain read
		defer lock.Unlock()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findActive(userID)
}

func (s *InMemorySubscriptionStore) rowLock(userID string) *sync.Mutex {
	lock, _ := s.rowLocks.LoadOrStore(userID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func (s *InMemorySubscriptionStore) findActive(userID string) (*subscription.Subscription, error) {
	for _, sub := range s.subscriptions {
		if sub.UserID == userID && sub.IsActive {
			return copySubscription(sub), nil
		}
	}
	return nil, ierr.NewErrorf("no active subscription for user %s", userID).
		Mark(ierr.ErrNotFound)
}

func (s *InMemorySubscriptionStore) UpdateBillingPeriod(ctx context.Context, userID string, newPeriod types.BillingPeriod, newPrice decimal.Decimal, expectedPriorPeriod types.BillingPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sub := range s.subscriptions {
		if sub.UserID != userID || !sub.IsActive {
			continue
		}
		if sub.BillingPeriod != expectedPriorPeriod {
			return ierr.NewError("subscription changed since it was read").
				WithHint("the subscription was modified concurrently, retry the request").
				Mark(ierr.ErrVersionConflict)
		}
		sub.BillingPeriod = newPeriod
		sub.PriceBRL = newPrice
		sub.UpdatedAt = time.Now().UTC()
		return nil
	}

	return ierr.NewError("subscription changed since it was read").
		WithHint("the subscription was modified concurrently, retry the request").
		Mark(ierr.ErrVersionConflict)
}

func (s *InMemorySubscriptionStore) AdvanceRenewal(ctx context.Context, userID string, renewsAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sub := range s.subscriptions {
		if sub.UserID == userID && sub.IsActive {
			sub.RenewsAt = renewsAt
			sub.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return ierr.NewErrorf("no active subscription for user %s", userID).
		Mark(ierr.ErrNotFound)
}

func (s *InMemorySubscriptionStore) Deactivate(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sub := range s.subscriptions {
		if sub.UserID == userID && sub.IsActive {
			sub.IsActive = false
			sub.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return ierr.NewErrorf("no active subscription for user %s", userID).
		Mark(ierr.ErrNotFound)
}

// Clear removes all subscriptions
func (s *InMemorySubscriptionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscriptions = make(map[string]*subscription.Subscription)
}
