package response_models

import (
	"encoding/json"

	"github.com/google/uuid"
)

type GenerationResponse struct {
	ID        uuid.UUID       `json:"id"`
	Kind      string          `json:"kind"`
	Output    json.RawMessage `json:"output"`
	Keywords  []string        `json:"keywords,omitempty"`
	Model     string          `json:"model"`
	CreatedAt int64           `json:"created_at"`
}
