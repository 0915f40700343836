package response_models

type CreateCheckoutResponse struct {
	PreferenceID string  `json:"preference_id"`
	CheckoutURL  string  `json:"checkout_url"`
	PlanType     string  `json:"plan_type"`
	Amount       float64 `json:"amount"`
}

type PlanResponse struct {
	PlanType        string  `json:"plan_type"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	Currency        string  `json:"currency"`
	GenerationQuota int     `json:"generation_quota"` // 0 means unlimited
}
