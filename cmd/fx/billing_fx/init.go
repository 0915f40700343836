package billing_fx

import (
	"log"
	"os"

	"go.uber.org/fx"

	"copyflow/internal/api/controllers"
	"copyflow/internal/infra"
	"copyflow/internal/services"
)

var Module = fx.Provide(
	provideGateway,
	provideBillingService,
	provideBillingController,
)

func provideGateway() services.MercadoPagoGateway {
	gateway, err := infra.NewMercadoPagoGateway(os.Getenv("MP_ACCESS_TOKEN"))
	if err != nil {
		log.Fatalf("Error initializing Mercado Pago gateway: %v", err)
	}
	return gateway
}

func provideBillingService(gateway services.MercadoPagoGateway) services.BillingServiceInterface {
	base := os.Getenv("APP_BASE_URL")
	front := os.Getenv("FRONTEND_BASE_URL")
	return services.NewBillingService(gateway, services.BillingConfig{
		NotificationURL: base + "/webhook",
		SuccessURL:      front + "/billing/success",
		FailureURL:      front + "/billing/failure",
		PendingURL:      front + "/billing/pending",
	})
}

func provideBillingController(billingService services.BillingServiceInterface) *controllers.BillingController {
	return controllers.NewBillingController(billingService)
}
