package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/subcycle/subcycle/internal/api/dto"
	ierr "github.com/subcycle/subcycle/internal/errors"
	"github.com/subcycle/subcycle/internal/logger"
	"github.com/subcycle/subcycle/internal/service"
)

type SubscriptionHandler struct {
	service service.BillingTransitionService
	log     *logger.Logger
}

func NewSubscriptionHandler(service service.BillingTransitionService, log *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{service: service, log: log}
}

// @Summary Change billing period
// @Description Transition the user's subscription between monthly and annual billing
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param request body dto.TransitionRequest true "Transition Request"
// @Success 200 {object} dto.TransitionResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /subscriptions/billing-period [post]
func (h *SubscriptionHandler) TransitionBillingPeriod(c *gin.Context) {
	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorw("failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.TransitionBillingPeriod(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Preview billing period change
// @Description Compute the pro-rata outcome without applying it
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param request body dto.TransitionRequest true "Transition Request"
// @Success 200 {object} dto.TransitionResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /subscriptions/billing-period/preview [post]
func (h *SubscriptionHandler) PreviewBillingPeriod(c *gin.Context) {
	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorw("failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.PreviewTransition(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
