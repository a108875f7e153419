package router

import (
	"github.com/gin-gonic/gin"
	v1 "github.com/subcycle/subcycle/internal/api/v1"
	"github.com/subcycle/subcycle/internal/rest/middleware"
)

// Handlers groups the route handlers wired into the engine
type Handlers struct {
	Subscription *v1.SubscriptionHandler
	Webhook      *v1.WebhookHandler
	Health       *v1.HealthHandler
}

func SetupRouter(handlers Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.ErrorHandler())

	router.GET("/health", handlers.Health.Health)

	api := router.Group("/v1")
	api.POST("/subscriptions/billing-period", handlers.Subscription.TransitionBillingPeriod)
	api.POST("/subscriptions/billing-period/preview", handlers.Subscription.PreviewBillingPeriod)
	api.POST("/webhooks/provider", handlers.Webhook.HandleProviderWebhook)

	return router
}
