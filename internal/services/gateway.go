package services

import (
	"context"
	"time"
)

// PaymentDetail is a payment re-fetched from the gateway by id. The webhook
// body only names the resource; amounts, payer and references always come
// from this authoritative fetch, never from the (spoofable) notification.
type PaymentDetail struct {
	ID                string
	Status            string
	StatusDetail      string
	PayerEmail        string
	TransactionAmount float64
	ExternalReference string
	Metadata          map[string]interface{}
	PaymentMethodID   string
	DateApproved      time.Time
}

// SubscriptionDetail is the preapproval analogue of PaymentDetail.
type SubscriptionDetail struct {
	ID                string
	Status            string
	PayerEmail        string
	ExternalReference string
	TransactionAmount float64
	Reason            string
}

type CheckoutPreference struct {
	Title             string
	Quantity          int
	UnitPrice         float64
	CurrencyID        string
	ExternalReference string
	Metadata          map[string]interface{}
	NotificationURL   string
	SuccessURL        string
	FailureURL        string
	PendingURL        string
}

type CreatedPreference struct {
	ID          string
	InitPoint   string
	SandboxInit string
}

// MercadoPagoGateway is the gateway boundary used by billing and webhook
// processing. internal/infra adapts the official SDK to it; tests fake it.
type MercadoPagoGateway interface {
	GetPayment(ctx context.Context, id string) (*PaymentDetail, error)
	GetSubscription(ctx context.Context, id string) (*SubscriptionDetail, error)
	CreatePreference(ctx context.Context, pref CheckoutPreference) (*CreatedPreference, error)
}
