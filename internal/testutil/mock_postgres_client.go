package testutil

import (
	"context"
	"sync"

	"github.com/subcycle/subcycle/internal/logger"
	"github.com/subcycle/subcycle/internal/postgres"
)

var _ postgres.IClient = (*MockPostgresClient)(nil) // Ensure MockPostgresClient implements IClient

// MockPostgresClient is a mock implementation of postgres client for testing.
// The in-memory stores manage their own consistency; WithTx runs the function
// directly but tracks releases so stores can hold row locks for the duration
// of the transaction, the way FOR UPDATE does.
type MockPostgresClient struct {
	logger *logger.Logger
}

// NewMockPostgresClient creates a new mock postgres client
func NewMockPostgresClient(logger *logger.Logger) postgres.IClient {
	return &MockPostgresClient{logger: logger}
}

type txReleases struct {
	mu      sync.Mutex
	release []func()
}

type txReleasesKey struct{}

func (r *txReleases) run() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.release) - 1; i >= 0; i-- {
		r.release[i]()
	}
	r.release = nil
}

// holdUntilTxEnd registers a release to run when the surrounding mock
// transaction finishes. Returns false when no transaction is open.
func holdUntilTxEnd(ctx context.Context, release func()) bool {
	r, ok := ctx.Value(txReleasesKey{}).(*txReleases)
	if !ok {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.release = append(r.release, release)
	return true
}

// WithTx executes the given function, joining a transaction already on the
// context. Releases registered during the transaction run when it ends,
// whether the function succeeded or not.
func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	if _, ok := ctx.Value(txReleasesKey{}).(*txReleases); ok {
		return fn(ctx)
	}

	releases := &txReleases{}
	ctx = context.WithValue(ctx, txReleasesKey{}, releases)
	defer releases.run()
	return fn(ctx)
}

// GetQuerier returns nil; in-memory stores never issue SQL
func (c *MockPostgresClient) GetQuerier(ctx context.Context) postgres.Querier {
	return nil
}
