package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"copyflow/internal/models/db_models"
	"copyflow/internal/models/response_models"
	"copyflow/pkg/utils"
)

// Plan catalog. Quota 0 means unlimited.
var planCatalog = []response_models.PlanResponse{
	{PlanType: string(db_models.PlanFree), Name: "Free", Price: 0, Currency: "BRL", GenerationQuota: 10},
	{PlanType: string(db_models.PlanStarter), Name: "Starter", Price: StarterPrice, Currency: "BRL", GenerationQuota: 200},
	{PlanType: string(db_models.PlanPro), Name: "Pro", Price: ProPrice, Currency: "BRL", GenerationQuota: 0},
}

type BillingConfig struct {
	NotificationURL string // public URL of POST /webhook
	SuccessURL      string
	FailureURL      string
	PendingURL      string
}

type BillingServiceInterface interface {
	ListPlans() []response_models.PlanResponse

	// CreateCheckoutForPlan opens a gateway checkout for a paid tier. The
	// preference plants the two signals the webhook resolver trusts most:
	// metadata.plan_type and external_reference "<plan>_<userID>".
	CreateCheckoutForPlan(ctx context.Context, userID uuid.UUID, planType string) (*response_models.CreateCheckoutResponse, error)
}

type BillingService struct {
	gateway MercadoPagoGateway
	cfg     BillingConfig
}

func NewBillingService(gateway MercadoPagoGateway, cfg BillingConfig) BillingServiceInterface {
	return &BillingService{
		gateway: gateway,
		cfg:     cfg,
	}
}

func (s *BillingService) ListPlans() []response_models.PlanResponse {
	plans := make([]response_models.PlanResponse, len(planCatalog))
	copy(plans, planCatalog)
	return plans
}

func (s *BillingService) CreateCheckoutForPlan(ctx context.Context, userID uuid.UUID, planType string) (*response_models.CreateCheckoutResponse, error) {
	planType = strings.ToLower(strings.TrimSpace(planType))
	if !db_models.KnownPaidPlan(planType) {
		return nil, utils.ErrUnknownPlan
	}

	var price float64
	var name string
	for _, plan := range planCatalog {
		if plan.PlanType == planType {
			price = plan.Price
			name = plan.Name
		}
	}
	if price <= 0 {
		return nil, utils.ErrPlanNotBillable
	}

	created, err := s.gateway.CreatePreference(ctx, CheckoutPreference{
		Title:             fmt.Sprintf("copyflow %s subscription", name),
		Quantity:          1,
		UnitPrice:         price,
		ExternalReference: fmt.Sprintf("%s_%s", planType, userID),
		Metadata: map[string]interface{}{
			"plan_type": planType,
			"user_id":   userID.String(),
		},
		NotificationURL: s.cfg.NotificationURL,
		SuccessURL:      s.cfg.SuccessURL,
		FailureURL:      s.cfg.FailureURL,
		PendingURL:      s.cfg.PendingURL,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrProviderUnavailable, err)
	}

	return &response_models.CreateCheckoutResponse{
		PreferenceID: created.ID,
		CheckoutURL:  created.InitPoint,
		PlanType:     planType,
		Amount:       price,
	}, nil
}
