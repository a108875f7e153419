package repository

import (
	"github.com/subcycle/subcycle/internal/domain/ledger"
	"github.com/subcycle/subcycle/internal/domain/plan"
	"github.com/subcycle/subcycle/internal/domain/subscription"
	"github.com/subcycle/subcycle/internal/logger"
	"github.com/subcycle/subcycle/internal/postgres"
	repo "github.com/subcycle/subcycle/internal/repository/postgres"
)

func NewSubscriptionRepository(db postgres.IClient, logger *logger.Logger) subscription.Repository {
	return repo.NewSubscriptionRepository(db, logger)
}

func NewLedgerRepository(db postgres.IClient, logger *logger.Logger) ledger.Repository {
	return repo.NewLedgerRepository(db, logger)
}

func NewPlanRepository(db postgres.IClient, logger *logger.Logger) plan.Repository {
	return repo.NewPlanRepository(db, logger)
}
