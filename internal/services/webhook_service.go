package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"copyflow/internal/models/db_models"
	"copyflow/internal/repositories"
	"copyflow/pkg/signature"
	"copyflow/pkg/utils"
)

// Gateway event types that carry a state transition. Anything else is
// acknowledged and ignored so the gateway stops redelivering it.
const (
	EventTypePayment     = "payment"
	EventTypePreapproval = "subscription_preapproval"
)

// Outcome statuses reported back on the webhook response. Every one of these
// maps to HTTP 200: none of them may provoke a gateway retry.
const (
	OutcomeProcessed         = "processed"
	OutcomeAlreadyProcessed  = "already_processed"
	OutcomeAlreadyProcessing = "already_processing"
	OutcomeIgnored           = "ignored"
)

// WebhookNotification is the inbound body. It only names the resource; all
// payment facts are re-fetched from the gateway by id.
type WebhookNotification struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`
}

type WebhookOutcome struct {
	Status string `json:"status"`
}

type WebhookServiceInterface interface {
	// ProcessNotification runs the full reconciliation pipeline for one
	// delivery: verify signature, register with the dedup gate, re-fetch the
	// resource, resolve plan and user, mutate ledger and profile, record the
	// terminal status. Errors map to HTTP in the controller; any error after
	// registration leaves the event record failed and is safe to redeliver.
	ProcessNotification(ctx context.Context, signatureHeader, requestID string, body []byte) (*WebhookOutcome, error)
}

type WebhookService struct {
	secret      string
	webhookRepo repositories.IWebhookEventRepository
	gateway     MercadoPagoGateway
	resolver    PlanResolverInterface
	ledger      SubscriptionServiceInterface
	projector   ProfileServiceInterface

	now func() time.Time
}

func NewWebhookService(
	secret string,
	webhookRepo repositories.IWebhookEventRepository,
	gateway MercadoPagoGateway,
	resolver PlanResolverInterface,
	ledger SubscriptionServiceInterface,
	projector ProfileServiceInterface,
) WebhookServiceInterface {
	return &WebhookService{
		secret:      secret,
		webhookRepo: webhookRepo,
		gateway:     gateway,
		resolver:    resolver,
		ledger:      ledger,
		projector:   projector,
		now:         time.Now,
	}
}

// DeriveWebhookID assigns a stable identity to one logical event: same id
// across gateway retries, distinct across different events. Falls back to a
// hash over (type, action, 5-minute bucket) when the body carries no id.
func DeriveWebhookID(n *WebhookNotification, receivedAt time.Time) string {
	if n.Data.ID != "" {
		return "mp_" + n.Data.ID
	}
	if n.ID != "" {
		return "mp_evt_" + n.ID
	}
	bucket := receivedAt.Unix() / 300
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d", n.Type, n.Action, bucket)))
	return "mp_" + hex.EncodeToString(sum[:8])
}

func (s *WebhookService) ProcessNotification(ctx context.Context, signatureHeader, requestID string, body []byte) (*WebhookOutcome, error) {

	var notification WebhookNotification
	if err := json.Unmarshal(body, &notification); err != nil || notification.Type == "" {
		return nil, utils.ErrMalformedNotification
	}
	actionable := notification.Type == EventTypePayment || notification.Type == EventTypePreapproval
	if actionable && notification.Data.ID == "" {
		// Structural failure before registration: the gateway may redeliver
		// a corrected event without being blocked by a dedup record.
		return nil, utils.ErrMalformedNotification
	}

	if err := signature.Verify(s.secret, signatureHeader, requestID, notification.Data.ID, s.now()); err != nil {
		log.Printf("webhook: signature rejected: %v", err)
		return nil, utils.ErrSignatureInvalid
	}

	webhookID := DeriveWebhookID(&notification, s.now())

	registration, err := s.webhookRepo.Register(ctx, webhookID, notification.Type, notification.Data.ID, body)
	if err != nil {
		return nil, err
	}
	switch registration {
	case repositories.AlreadyCompleted:
		return &WebhookOutcome{Status: OutcomeAlreadyProcessed}, nil
	case repositories.AlreadyProcessing:
		return &WebhookOutcome{Status: OutcomeAlreadyProcessing}, nil
	}

	// From here this delivery owns the event; the record must leave pending
	// before returning so redeliveries see accurate context.
	outcome, err := s.handleEvent(ctx, &notification)
	if err != nil {
		if markErr := s.webhookRepo.MarkFailed(ctx, webhookID); markErr != nil {
			log.Printf("webhook %s: failed to record failure: %v (original error: %v)", webhookID, markErr, err)
		}
		return nil, err
	}

	if err := s.webhookRepo.MarkCompleted(ctx, webhookID); err != nil {
		// Side effects applied but the record stays pending; duplicates will
		// short-circuit as in-flight rather than double-apply.
		log.Printf("webhook %s: processed but could not mark completed: %v", webhookID, err)
	}
	return outcome, nil
}

func (s *WebhookService) handleEvent(ctx context.Context, n *WebhookNotification) (*WebhookOutcome, error) {
	switch n.Type {
	case EventTypePayment:
		return s.handlePayment(ctx, n.Data.ID)
	case EventTypePreapproval:
		return s.handlePreapproval(ctx, n.Data.ID)
	default:
		log.Printf("webhook: ignoring event type %q action %q", n.Type, n.Action)
		return &WebhookOutcome{Status: OutcomeIgnored}, nil
	}
}

func (s *WebhookService) handlePayment(ctx context.Context, paymentID string) (*WebhookOutcome, error) {
	detail, err := s.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrProviderUnavailable, err)
	}

	switch detail.Status {
	case "approved":
		plan, err := s.resolver.IdentifyPlan(detail.Metadata, detail.ExternalReference, detail.TransactionAmount)
		if err != nil {
			return nil, err
		}
		userID, err := s.resolveUser(ctx, detail.ExternalReference, detail.PayerEmail)
		if err != nil {
			return nil, err
		}
		if err := s.applyGrant(ctx, userID, plan, detail.ID, detail.TransactionAmount); err != nil {
			return nil, err
		}
		return &WebhookOutcome{Status: OutcomeProcessed}, nil

	case "refunded", "cancelled", "charged_back":
		userID, err := s.resolveUser(ctx, detail.ExternalReference, detail.PayerEmail)
		if err != nil {
			return nil, err
		}
		if err := s.applyCancel(ctx, userID); err != nil {
			return nil, err
		}
		return &WebhookOutcome{Status: OutcomeProcessed}, nil

	default:
		// pending / in_process / rejected carry no subscription transition.
		log.Printf("webhook: payment %s status %q needs no action", paymentID, detail.Status)
		return &WebhookOutcome{Status: OutcomeIgnored}, nil
	}
}

func (s *WebhookService) handlePreapproval(ctx context.Context, preapprovalID string) (*WebhookOutcome, error) {
	detail, err := s.gateway.GetSubscription(ctx, preapprovalID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrProviderUnavailable, err)
	}

	switch detail.Status {
	case "authorized":
		plan, err := s.resolver.IdentifyPlan(nil, detail.ExternalReference, detail.TransactionAmount)
		if err != nil {
			return nil, err
		}
		userID, err := s.resolveUser(ctx, detail.ExternalReference, detail.PayerEmail)
		if err != nil {
			return nil, err
		}
		if err := s.applyGrant(ctx, userID, plan, detail.ID, detail.TransactionAmount); err != nil {
			return nil, err
		}
		return &WebhookOutcome{Status: OutcomeProcessed}, nil

	case "cancelled", "paused":
		userID, err := s.resolveUser(ctx, detail.ExternalReference, detail.PayerEmail)
		if err != nil {
			return nil, err
		}
		if err := s.applyCancel(ctx, userID); err != nil {
			return nil, err
		}
		return &WebhookOutcome{Status: OutcomeProcessed}, nil

	default:
		log.Printf("webhook: preapproval %s status %q needs no action", preapprovalID, detail.Status)
		return &WebhookOutcome{Status: OutcomeIgnored}, nil
	}
}

// resolveUser maps an event to a profile: external-reference suffix first
// (planted by our checkout, carries the profile id), payer email second.
func (s *WebhookService) resolveUser(ctx context.Context, externalReference, payerEmail string) (uuid.UUID, error) {
	if _, userPart := SplitExternalReference(externalReference); userPart != "" {
		if id, err := uuid.Parse(userPart); err == nil {
			profile, err := s.projector.Get(ctx, id)
			if err != nil {
				return uuid.Nil, err
			}
			if profile != nil {
				return id, nil
			}
		}
	}

	if payerEmail != "" {
		profile, err := s.projector.GetByEmail(ctx, payerEmail)
		if err != nil {
			return uuid.Nil, err
		}
		if profile != nil {
			return profile.ID, nil
		}
	}

	return uuid.Nil, utils.ErrUserUnresolved
}

// applyGrant mutates ledger then profile, ledger first. On projection failure
// the ledger change is compensated so a failed webhook leaves state no worse
// than unapplied; the gateway's retry redelivers the whole event.
func (s *WebhookService) applyGrant(ctx context.Context, userID uuid.UUID, plan db_models.PlanType, paymentRef string, amount float64) error {
	prior, err := s.ledger.ActiveSubscription(ctx, userID)
	if err != nil {
		return err
	}
	var priorCopy *db_models.Subscription
	if prior != nil {
		snapshot := *prior
		priorCopy = &snapshot
	}

	sub, err := s.ledger.UpsertActivePeriod(ctx, userID, plan, paymentRef, amount)
	if err != nil {
		return err
	}

	if err := s.projector.Project(ctx, userID, sub.PlanType); err != nil {
		if compErr := s.ledger.Compensate(ctx, userID, priorCopy); compErr != nil {
			log.Printf("FATAL INCONSISTENCY: user %s ledger compensation failed after projection failure, manual reconciliation required (projection: %v, compensation: %v)", userID, err, compErr)
		}
		return err
	}
	return nil
}

func (s *WebhookService) applyCancel(ctx context.Context, userID uuid.UUID) error {
	prior, err := s.ledger.ActiveSubscription(ctx, userID)
	if err != nil {
		return err
	}
	var priorCopy *db_models.Subscription
	if prior != nil {
		snapshot := *prior
		priorCopy = &snapshot
	}

	if err := s.ledger.Cancel(ctx, userID); err != nil {
		return err
	}

	if err := s.projector.Project(ctx, userID, db_models.PlanFree); err != nil {
		if priorCopy != nil {
			if compErr := s.ledger.Compensate(ctx, userID, priorCopy); compErr != nil {
				log.Printf("FATAL INCONSISTENCY: user %s ledger compensation failed after projection failure, manual reconciliation required (projection: %v, compensation: %v)", userID, err, compErr)
			}
		}
		return err
	}
	return nil
}
