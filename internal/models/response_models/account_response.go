package response_models

import "github.com/google/uuid"

type ProfileResponse struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	Plan            string    `json:"plan"`
	PlanExpiresAt   string    `json:"plan_expires_at,omitempty"`
	GenerationsUsed int       `json:"generations_used"`
}
