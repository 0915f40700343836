package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"copyflow/internal/models/db_models"
	"copyflow/internal/models/request_models"
	"copyflow/internal/models/response_models"
	"copyflow/internal/repositories"
	"copyflow/pkg/utils"
)

// Monthly generation quotas per tier. Zero means unlimited.
var generationQuotas = map[db_models.PlanType]int{
	db_models.PlanFree:    10,
	db_models.PlanStarter: 200,
	db_models.PlanPro:     0,
}

const copySystemPrompt = `You are a senior direct-response copywriter. Respond with a single JSON object only, no prose, no markdown fences.`

var kindInstructions = map[db_models.GenerationKind]string{
	db_models.GenerationCopy:   `Write conversion-focused marketing copy. JSON shape: {"headline": string, "subheadline": string, "body": string, "cta": string}.`,
	db_models.GenerationFunnel: `Design a sales funnel. JSON shape: {"stages": [{"name": string, "goal": string, "copy": string}]}.`,
	db_models.GenerationAds:    `Write three ad variations. JSON shape: {"ads": [{"platform": string, "headline": string, "body": string}]}.`,
	db_models.GenerationCanvas: `Fill a lean marketing canvas. JSON shape: {"problem": string, "solution": string, "value_proposition": string, "channels": [string], "audience": string}.`,
}

type GenerationServiceInterface interface {
	// Generate runs one AI generation for the user. The plan gate uses the
	// reconciled plan, not the cached profile field, so a user whose
	// subscription lapsed cannot keep generating on a stale snapshot.
	Generate(ctx context.Context, userID uuid.UUID, request request_models.GenerateRequest) (*response_models.GenerationResponse, error)

	List(ctx context.Context, userID uuid.UUID, limit int) ([]response_models.GenerationResponse, error)
}

type GenerationService struct {
	generationRepo repositories.IGenerationRepository
	profileRepo    repositories.IProfileRepository
	projector      ProfileServiceInterface

	paidClient utils.CopyModelClient
	freeClient utils.CopyModelClient
}

func NewGenerationService(
	generationRepo repositories.IGenerationRepository,
	profileRepo repositories.IProfileRepository,
	projector ProfileServiceInterface,
	paidClient utils.CopyModelClient,
	freeClient utils.CopyModelClient,
) GenerationServiceInterface {
	return &GenerationService{
		generationRepo: generationRepo,
		profileRepo:    profileRepo,
		projector:      projector,
		paidClient:     paidClient,
		freeClient:     freeClient,
	}
}

func (s *GenerationService) Generate(ctx context.Context, userID uuid.UUID, request request_models.GenerateRequest) (*response_models.GenerationResponse, error) {
	kind := db_models.GenerationKind(request.Kind)
	instruction, ok := kindInstructions[kind]
	if !ok {
		return nil, fmt.Errorf("unsupported generation kind %q", request.Kind)
	}

	plan, err := s.projector.Reconcile(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.FindById(ctx, userID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if profile == nil {
		return nil, utils.ErrProfileNotFound
	}

	if quota := generationQuotas[plan]; quota > 0 && profile.GenerationsUsed >= quota {
		return nil, utils.ErrQuotaExceeded
	}

	client := s.paidClient
	if plan == db_models.PlanFree {
		client = s.freeClient
	}

	raw, err := client.GenerateJSON(ctx, copySystemPrompt, s.buildPrompt(instruction, request))
	if err != nil {
		return nil, err
	}

	extracted, err := utils.ExtractJSONObject(raw)
	if err != nil {
		log.Printf("generation: model %s returned non-JSON output", client.ModelName())
		return nil, err
	}
	if !json.Valid([]byte(extracted)) {
		return nil, utils.ErrUnexpectedAIShape
	}

	generation := &db_models.Generation{
		ProfileID: userID,
		Kind:      kind,
		Prompt:    request.Product,
		Output:    []byte(extracted),
		Keywords:  request.Keywords,
		Model:     client.ModelName(),
	}
	if err := s.generationRepo.Insert(ctx, generation); err != nil {
		return nil, utils.ErrDatabaseError
	}

	if err := s.profileRepo.IncrementGenerations(ctx, userID); err != nil {
		// Quota accounting drifted by one; the generation itself succeeded.
		log.Printf("generation: failed to increment counter for %s: %v", userID, err)
	}

	return toGenerationResponse(generation), nil
}

func (s *GenerationService) List(ctx context.Context, userID uuid.UUID, limit int) ([]response_models.GenerationResponse, error) {
	generations, err := s.generationRepo.ListByProfile(ctx, userID, limit)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	responses := make([]response_models.GenerationResponse, 0, len(generations))
	for i := range generations {
		responses = append(responses, *toGenerationResponse(&generations[i]))
	}
	return responses, nil
}

func (s *GenerationService) buildPrompt(instruction string, request request_models.GenerateRequest) string {
	var sb strings.Builder
	sb.WriteString(instruction)
	sb.WriteString("\n\nProduct: ")
	sb.WriteString(request.Product)
	if request.Audience != "" {
		sb.WriteString("\nTarget audience: ")
		sb.WriteString(request.Audience)
	}
	if request.Tone != "" {
		sb.WriteString("\nTone: ")
		sb.WriteString(request.Tone)
	}
	if len(request.Keywords) > 0 {
		sb.WriteString("\nKeywords to include: ")
		sb.WriteString(strings.Join(request.Keywords, ", "))
	}
	return sb.String()
}

func toGenerationResponse(g *db_models.Generation) *response_models.GenerationResponse {
	return &response_models.GenerationResponse{
		ID:        g.ID,
		Kind:      string(g.Kind),
		Output:    json.RawMessage(g.Output),
		Keywords:  g.Keywords,
		Model:     g.Model,
		CreatedAt: g.CreatedAt,
	}
}
