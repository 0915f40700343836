package account_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"copyflow/internal/api/controllers"
	"copyflow/internal/repositories"
	"copyflow/internal/services"
	"copyflow/pkg/memcache"
)

var Module = fx.Provide(
	provideProfileRepository,
	provideResetTokenStore,
	provideAccountService,
	provideAccountController,
)

func provideProfileRepository(db *gorm.DB) repositories.IProfileRepository {
	return repositories.NewProfileRepository(db)
}

func provideResetTokenStore() memcache.ResetTokenStore {
	return memcache.NewResetTokens()
}

func provideAccountService(profileRepo repositories.IProfileRepository, resetTokens memcache.ResetTokenStore) services.AccountServiceInterface {
	return services.NewAccountService(profileRepo, resetTokens)
}

func provideAccountController(
	accountService services.AccountServiceInterface,
	profileService services.ProfileServiceInterface,
	subscriptionService services.SubscriptionServiceInterface,
) *controllers.AccountController {
	return controllers.NewAccountController(accountService, profileService, subscriptionService)
}
