package generation_fx

import (
	"log"
	"os"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"copyflow/internal/api/controllers"
	"copyflow/internal/repositories"
	"copyflow/internal/services"
	"copyflow/pkg/utils"
)

var Module = fx.Provide(
	provideGenerationRepository,
	provideGenerationService,
	provideGenerationController,
)

func provideGenerationRepository(db *gorm.DB) repositories.IGenerationRepository {
	return repositories.NewGenerationRepository(db)
}

func provideGenerationService(
	generationRepo repositories.IGenerationRepository,
	profileRepo repositories.IProfileRepository,
	projector services.ProfileServiceInterface,
) services.GenerationServiceInterface {

	paidClient := utils.NewOpenAICopyClient(os.Getenv("OPENAI_API_KEY"), os.Getenv("OPENAI_MODEL"))

	freeClient, err := utils.NewGeminiCopyClient(os.Getenv("GEMINI_API_KEY"), os.Getenv("GEMINI_MODEL"))
	if err != nil {
		// Free tier falls back to the paid model rather than failing boot.
		log.Printf("Error initializing Gemini client, free tier will use OpenAI: %v", err)
		freeClient = paidClient
	}

	return services.NewGenerationService(generationRepo, profileRepo, projector, paidClient, freeClient)
}

func provideGenerationController(generationService services.GenerationServiceInterface) *controllers.GenerationController {
	return controllers.NewGenerationController(generationService)
}
