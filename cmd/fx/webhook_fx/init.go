package webhook_fx

import (
	"os"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"copyflow/internal/api/controllers"
	"copyflow/internal/repositories"
	"copyflow/internal/services"
)

var Module = fx.Provide(
	provideWebhookEventRepository,
	provideSubscriptionRepository,
	provideSubscriptionService,
	provideProfileService,
	providePlanResolver,
	provideWebhookService,
	provideWebhookController,
)

func provideWebhookEventRepository(db *gorm.DB) repositories.IWebhookEventRepository {
	return repositories.NewWebhookEventRepository(db)
}

func provideSubscriptionRepository(db *gorm.DB) repositories.ISubscriptionRepository {
	return repositories.NewSubscriptionRepository(db)
}

func provideSubscriptionService(subscriptionRepo repositories.ISubscriptionRepository) services.SubscriptionServiceInterface {
	return services.NewSubscriptionService(subscriptionRepo)
}

func provideProfileService(profileRepo repositories.IProfileRepository, subscriptionService services.SubscriptionServiceInterface) services.ProfileServiceInterface {
	return services.NewProfileService(profileRepo, subscriptionService)
}

func providePlanResolver() services.PlanResolverInterface {
	return services.NewPlanResolver()
}

func provideWebhookService(
	webhookRepo repositories.IWebhookEventRepository,
	gateway services.MercadoPagoGateway,
	resolver services.PlanResolverInterface,
	ledger services.SubscriptionServiceInterface,
	projector services.ProfileServiceInterface,
) services.WebhookServiceInterface {
	return services.NewWebhookService(
		os.Getenv("MP_WEBHOOK_SECRET"),
		webhookRepo,
		gateway,
		resolver,
		ledger,
		projector,
	)
}

func provideWebhookController(webhookService services.WebhookServiceInterface) *controllers.WebhookController {
	return controllers.NewWebhookController(webhookService)
}
