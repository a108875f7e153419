package v1

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/subcycle/subcycle/internal/api/dto"
	ierr "github.com/subcycle/subcycle/internal/errors"
	"github.com/subcycle/subcycle/internal/logger"
	"github.com/subcycle/subcycle/internal/service"
	"github.com/subcycle/subcycle/internal/webhook"
)

// WebhookHandler receives payment provider notifications
type WebhookHandler struct {
	service  service.WebhookService
	verifier webhook.Verifier
	log      *logger.Logger
}

func NewWebhookHandler(service service.WebhookService, verifier webhook.Verifier, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{service: service, verifier: verifier, log: log}
}

// @Summary Ingest provider webhook
// @Description Process a provider notification at most once per event id
// @Tags Webhooks
// @Accept json
// @Produce json
// @Success 200 {object} dto.WebhookResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /webhooks/provider [post]
func (h *WebhookHandler) HandleProviderWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("failed to read webhook body").
			Mark(ierr.ErrValidation))
		return
	}

	if err := h.verifier.Verify(body, c.Request.Header); err != nil {
		h.log.Warnw("webhook signature rejected", "error", err)
		c.Error(err)
		return
	}

	envelope, err := dto.ParseWebhookEnvelope(body)
	if err != nil {
		c.Error(err)
		return
	}

	// Duplicates also answer 200 so the provider stops retrying
	resp, err := h.service.ProcessEvent(c.Request.Context(), envelope)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
