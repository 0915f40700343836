package infra

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preapproval"
	"github.com/mercadopago/sdk-go/pkg/preference"

	"copyflow/internal/services"
)

// mercadoPagoGateway adapts the official SDK to the service boundary.
type mercadoPagoGateway struct {
	payments     payment.Client
	preapprovals preapproval.Client
	preferences  preference.Client
}

func NewMercadoPagoGateway(accessToken string) (services.MercadoPagoGateway, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("mercadopago: access token not configured")
	}

	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}

	return &mercadoPagoGateway{
		payments:     payment.NewClient(cfg),
		preapprovals: preapproval.NewClient(cfg),
		preferences:  preference.NewClient(cfg),
	}, nil
}

func (g *mercadoPagoGateway) GetPayment(ctx context.Context, id string) (*services.PaymentDetail, error) {
	paymentID, err := strconv.Atoi(id)
	if err != nil {
		return nil, fmt.Errorf("mercadopago: non-numeric payment id %q: %w", id, err)
	}

	resource, err := g.payments.Get(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("mercadopago get payment %s: %w", id, err)
	}

	return &services.PaymentDetail{
		ID:                strconv.Itoa(resource.ID),
		Status:            resource.Status,
		StatusDetail:      resource.StatusDetail,
		PayerEmail:        resource.Payer.Email,
		TransactionAmount: resource.TransactionAmount,
		ExternalReference: resource.ExternalReference,
		Metadata:          resource.Metadata,
		PaymentMethodID:   resource.PaymentMethodID,
		DateApproved:      resource.DateApproved,
	}, nil
}

func (g *mercadoPagoGateway) GetSubscription(ctx context.Context, id string) (*services.SubscriptionDetail, error) {
	resource, err := g.preapprovals.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("mercadopago get preapproval %s: %w", id, err)
	}

	return &services.SubscriptionDetail{
		ID:                resource.ID,
		Status:            resource.Status,
		PayerEmail:        resource.PayerEmail,
		ExternalReference: resource.ExternalReference,
		TransactionAmount: resource.AutoRecurring.TransactionAmount,
		Reason:            resource.Reason,
	}, nil
}

func (g *mercadoPagoGateway) CreatePreference(ctx context.Context, pref services.CheckoutPreference) (*services.CreatedPreference, error) {
	request := preference.Request{
		Items: []preference.ItemRequest{
			{
				Title:     pref.Title,
				Quantity:  pref.Quantity,
				UnitPrice: pref.UnitPrice,
			},
		},
		ExternalReference: pref.ExternalReference,
		Metadata:          pref.Metadata,
		NotificationURL:   pref.NotificationURL,
	}
	if pref.SuccessURL != "" {
		request.BackURLs = &preference.BackURLsRequest{
			Success: pref.SuccessURL,
			Failure: pref.FailureURL,
			Pending: pref.PendingURL,
		}
		request.AutoReturn = "approved"
	}

	resource, err := g.preferences.Create(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("mercadopago create preference: %w", err)
	}

	return &services.CreatedPreference{
		ID:          resource.ID,
		InitPoint:   resource.InitPoint,
		SandboxInit: resource.SandboxInitPoint,
	}, nil
}
