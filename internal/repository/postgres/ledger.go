package postgres

import (
	"context"
	"database/sql"

	"github.com/subcycle/subcycle/internal/domain/ledger"
	ierr "github.com/subcycle/subcycle/internal/errors"
	"github.com/subcycle/subcycle/internal/logger"
	"github.com/subcycle/subcycle/internal/postgres"
)

type ledgerRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

// NewLedgerRepository creates an event ledger backed by postgres
func NewLedgerRepository(db postgres.IClient, logger *logger.Logger) ledger.Repository {
	return &ledgerRepository{db: db, logger: logger}
}

// TryClaim inserts the event row, relying on the primary key to resolve
// concurrent claims. ON CONFLICT DO NOTHING keeps the losing insert from
// failing, and the affected-row count tells the winner apart.
func (r *ledgerRepository) TryClaim(ctx context.Context, event *ledger.Event) (bool, error) {
	q := r.db.GetQuerier(ctx)
	res, err := q.ExecContext(ctx, `
		INSERT INTO webhook_events (id, type, processed_at, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING`,
		event.ID, event.Type, event.ProcessedAt, event.Payload,
	)
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("failed to claim webhook event").
			Mark(ierr.ErrDatabase)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("failed to claim webhook event").
			Mark(ierr.ErrDatabase)
	}
	return rows == 1, nil
}

func (r *ledgerRepository) Get(ctx context.Context, id string) (*ledger.Event, error) {
	var event ledger.Event
	q := r.db.GetQuerier(ctx)
	err := q.GetContext(ctx, &event, `
		SELECT id, type, processed_at, payload
		FROM webhook_events WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("webhook event not found").
				WithHintf("webhook event %s not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("failed to fetch webhook event").
			Mark(ierr.ErrDatabase)
	}
	return &event, nil
}
