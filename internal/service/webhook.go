package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/subcycle/subcycle/internal/api/dto"
	"github.com/subcycle/subcycle/internal/domain/ledger"
	ierr "github.com/subcycle/subcycle/internal/errors"
)

// Provider event types with domain side effects
const (
	EventTypeSubscriptionRenewed  = "subscription.renewed"
	EventTypeSubscriptionCanceled = "subscription.canceled"
	EventTypePaymentFailed        = "payment.failed"
)

// WebhookService ingests provider notifications at most once per event id
type WebhookService interface {
	ProcessEvent(ctx context.Context, envelope *dto.WebhookEnvelope) (*dto.WebhookResponse, error)
}

// Dispatcher executes the domain side effect for a claimed event
type Dispatcher interface {
	Dispatch(ctx context.Context, envelope *dto.WebhookEnvelope) error
}

type webhookService struct {
	ServiceParams
	dispatcher Dispatcher
}

// NewWebhookService creates the webhook ingestor
func NewWebhookService(params ServiceParams, dispatcher Dispatcher) WebhookService {
	return &webhookService{ServiceParams: params, dispatcher: dispatcher}
}

// ProcessEvent claims the event id in the ledger before executing any side
// effect, treating an insert conflict as "already processed".
//
// Known limitation: a crash after the claim but before the side effect
// completes leaves the event marked handled without the effect having run.
// Deployments that cannot tolerate this need a claim-then-process-then-commit
// outbox instead.
func (s *webhookService) ProcessEvent(ctx context.Context, envelope *dto.WebhookEnvelope) (*dto.WebhookResponse, error) {
	if err := s.validateEventID(envelope.ID); err != nil {
		return nil, err
	}

	claimed, err := s.LedgerRepo.TryClaim(ctx, &ledger.Event{
		ID:          envelope.ID,
		Type:        envelope.Type,
		ProcessedAt: time.Now().UTC(),
		Payload:     envelope.Raw,
	})
	if err != nil {
		return nil, err
	}

	if !claimed {
		s.Logger.Infow("duplicate webhook delivery ignored",
			"event_id", envelope.ID,
			"type", envelope.Type,
		)
		return &dto.WebhookResponse{
			Processed: true,
			Duplicate: true,
			EventID:   envelope.ID,
		}, nil
	}

	if err := s.dispatcher.Dispatch(ctx, envelope); err != nil {
		return nil, err
	}

	s.Logger.Infow("webhook event processed",
		"event_id", envelope.ID,
		"type", envelope.Type,
	)
	return &dto.WebhookResponse{
		Processed: true,
		EventID:   envelope.ID,
	}, nil
}

func (s *webhookService) validateEventID(id string) error {
	prefix := s.Config.Webhook.EventIDPrefix
	if id == "" || (prefix != "" && !strings.HasPrefix(id, prefix)) {
		return ierr.NewError("invalid webhook event id").
			WithHintf("event id must start with %q", prefix).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// subscriptionDispatcher applies provider lifecycle events to the
// subscription store
type subscriptionDispatcher struct {
	ServiceParams
}

// NewSubscriptionDispatcher creates the default event dispatcher
func NewSubscriptionDispatcher(params ServiceParams) Dispatcher {
	return &subscriptionDispatcher{ServiceParams: params}
}

type renewalPayload struct {
	UserID   string    `json:"user_id"`
	RenewsAt time.Time `json:"renews_at"`
}

type cancellationPayload struct {
	UserID string `json:"user_id"`
}

func (d *subscriptionDispatcher) Dispatch(ctx context.Context, envelope *dto.WebhookEnvelope) error {
	switch envelope.Type {
	case EventTypeSubscriptionRenewed:
		var payload renewalPayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return ierr.WithError(err).
				WithHint("malformed renewal payload").
				Mark(ierr.ErrValidation)
		}
		return d.SubRepo.AdvanceRenewal(ctx, payload.UserID, payload.RenewsAt)

	case EventTypeSubscriptionCanceled:
		var payload cancellationPayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return ierr.WithError(err).
				WithHint("malformed cancellation payload").
				Mark(ierr.ErrValidation)
		}
		return d.SubRepo.Deactivate(ctx, payload.UserID)

	case EventTypePaymentFailed:
		// Recorded for audit; dunning is handled elsewhere
		d.Logger.Warnw("payment failure reported by provider", "event_id", envelope.ID)
		return nil

	default:
		d.Logger.Debugw("unhandled webhook event type",
			"event_id", envelope.ID,
			"type", envelope.Type,
		)
		return nil
	}
}
