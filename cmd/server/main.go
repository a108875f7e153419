package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	v1 "github.com/subcycle/subcycle/internal/api/v1"
	"github.com/subcycle/subcycle/internal/cache"
	"github.com/subcycle/subcycle/internal/config"
	"github.com/subcycle/subcycle/internal/domain/ledger"
	"github.com/subcycle/subcycle/internal/domain/plan"
	"github.com/subcycle/subcycle/internal/domain/prorata"
	"github.com/subcycle/subcycle/internal/domain/subscription"
	"github.com/subcycle/subcycle/internal/httpclient"
	"github.com/subcycle/subcycle/internal/logger"
	"github.com/subcycle/subcycle/internal/postgres"
	"github.com/subcycle/subcycle/internal/provider"
	"github.com/subcycle/subcycle/internal/repository"
	"github.com/subcycle/subcycle/internal/router"
	"github.com/subcycle/subcycle/internal/service"
	"github.com/subcycle/subcycle/internal/types"
	"github.com/subcycle/subcycle/internal/validator"
	"github.com/subcycle/subcycle/internal/webhook"
	"go.uber.org/fx"
)

func init() {
	// All persistence and provider traffic is UTC; user timezones only
	// matter inside the pro-rata calculator.
	time.Local = time.UTC
}

func main() {
	validator.NewValidator()

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			newPostgresClient,
			newHTTPClient,
			cache.NewInMemoryCache,
			cache.NewFeatureInvalidator,
			provider.NewClient,
			prorata.NewCalculator,
			repository.NewSubscriptionRepository,
			repository.NewLedgerRepository,
			repository.NewPlanRepository,
			webhook.NewVerifier,
			newServiceParams,
			service.NewBillingTransitionService,
			service.NewSubscriptionDispatcher,
			service.NewWebhookService,
			v1.NewSubscriptionHandler,
			v1.NewWebhookHandler,
			v1.NewHealthHandler,
			newRouter,
		),
		fx.Invoke(startServer),
	)

	app.Run()
}

func newPostgresClient(cfg *config.Configuration, log *logger.Logger) (postgres.IClient, error) {
	return postgres.NewDB(cfg, log)
}

func newHTTPClient(cfg *config.Configuration) httpclient.Client {
	return httpclient.NewDefaultClient(cfg.Provider.Timeout)
}

func newServiceParams(
	log *logger.Logger,
	cfg *config.Configuration,
	db postgres.IClient,
	subRepo subscription.Repository,
	planRepo plan.Repository,
	ledgerRepo ledger.Repository,
	providerClient provider.Client,
	calculator prorata.Calculator,
	invalidator cache.FeatureInvalidator,
) service.ServiceParams {
	return service.ServiceParams{
		Logger:             log,
		Config:             cfg,
		DB:                 db,
		SubRepo:            subRepo,
		PlanRepo:           planRepo,
		LedgerRepo:         ledgerRepo,
		ProviderClient:     providerClient,
		ProrataCalculator:  calculator,
		FeatureInvalidator: invalidator,
	}
}

func newRouter(
	subscriptionHandler *v1.SubscriptionHandler,
	webhookHandler *v1.WebhookHandler,
	healthHandler *v1.HealthHandler,
	cfg *config.Configuration,
) *gin.Engine {
	if cfg.Deployment.Mode == types.ModeProd {
		gin.SetMode(gin.ReleaseMode)
	}
	return router.SetupRouter(router.Handlers{
		Subscription: subscriptionHandler,
		Webhook:      webhookHandler,
		Health:       healthHandler,
	})
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	engine *gin.Engine,
	log *logger.Logger,
) {
	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting server", "address", cfg.Server.Address)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("server failed: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server")
			return server.Shutdown(ctx)
		},
	})
}
