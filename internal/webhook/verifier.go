package webhook

import (
	"net/http"

	"github.com/subcycle/subcycle/internal/config"
	ierr "github.com/subcycle/subcycle/internal/errors"
	svix "github.com/svix/svix-webhooks/go"
)

// Verifier checks provider signatures on inbound webhook deliveries
type Verifier interface {
	Verify(payload []byte, headers http.Header) error
}

type svixVerifier struct {
	wh      *svix.Webhook
	enabled bool
}

// NewVerifier creates a signature verifier from the configured signing
// secret. An empty secret disables verification, for local development.
func NewVerifier(cfg *config.Configuration) (Verifier, error) {
	if cfg.Webhook.SigningSecret == "" {
		return &svixVerifier{enabled: false}, nil
	}

	wh, err := svix.NewWebhook(cfg.Webhook.SigningSecret)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("invalid webhook signing secret").
			Mark(ierr.ErrValidation)
	}

	return &svixVerifier{wh: wh, enabled: true}, nil
}

func (v *svixVerifier) Verify(payload []byte, headers http.Header) error {
	if !v.enabled {
		return nil
	}
	if err := v.wh.Verify(payload, headers); err != nil {
		return ierr.WithError(err).
			WithHint("webhook signature verification failed").
			Mark(ierr.ErrValidation)
	}
	return nil
}
