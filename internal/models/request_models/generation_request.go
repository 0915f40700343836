package request_models

type GenerateRequest struct {
	Kind     string   `json:"kind" binding:"required,oneof=copy funnel ads canvas"`
	Product  string   `json:"product" binding:"required"`
	Audience string   `json:"audience"`
	Tone     string   `json:"tone"`
	Keywords []string `json:"keywords"`
}
