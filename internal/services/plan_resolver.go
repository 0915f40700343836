package services

import (
	"log"
	"strings"

	"copyflow/internal/models/db_models"
	"copyflow/pkg/utils"
)

// Price bands for the amount fallback. Promotions and currency drift make
// exact matching too brittle, so each plan owns a tolerance window.
const (
	StarterPrice = 49.90
	ProPrice     = 149.90

	priceTolerance = 10.0
)

type PlanResolverInterface interface {
	// IdentifyPlan maps a payment event to a tier using priority-ordered
	// signals: explicit metadata planted at checkout, then the external
	// reference prefix, then the paid amount. A reference that names an
	// unknown tier rejects the event rather than defaulting to a paid plan.
	IdentifyPlan(metadata map[string]interface{}, externalReference string, amount float64) (db_models.PlanType, error)
}

type PlanResolver struct{}

func NewPlanResolver() PlanResolverInterface {
	return &PlanResolver{}
}

func (r *PlanResolver) IdentifyPlan(metadata map[string]interface{}, externalReference string, amount float64) (db_models.PlanType, error) {

	// 1) Metadata planted by our own checkout flow. Highest trust, but a
	// present-and-unknown value means tampering or version skew: reject.
	if raw, ok := metadata["plan_type"]; ok {
		if s, ok := raw.(string); ok && s != "" {
			s = strings.ToLower(strings.TrimSpace(s))
			if db_models.KnownPaidPlan(s) {
				return db_models.PlanType(s), nil
			}
			log.Printf("plan resolver: metadata names unknown plan %q", s)
			return "", utils.ErrPlanUnresolved
		}
	}

	// 2) External reference "planType_userIdentifier".
	if externalReference != "" {
		prefix, _, found := strings.Cut(externalReference, "_")
		if found && db_models.KnownPaidPlan(strings.ToLower(prefix)) {
			return db_models.PlanType(strings.ToLower(prefix)), nil
		}
		log.Printf("plan resolver: unparseable external reference %q", externalReference)
		return "", utils.ErrPlanUnresolved
	}

	// 3) Amount bands. Last resort, logged as such.
	switch {
	case amount >= ProPrice-priceTolerance && amount <= ProPrice+priceTolerance:
		log.Printf("plan resolver: amount-band fallback resolved %.2f as pro", amount)
		return db_models.PlanPro, nil
	case amount >= StarterPrice-priceTolerance && amount <= StarterPrice+priceTolerance:
		log.Printf("plan resolver: amount-band fallback resolved %.2f as starter", amount)
		return db_models.PlanStarter, nil
	case amount > 0:
		// No band matched a real payment. Under-granting is the safe
		// direction; product owners signed off on the starter default.
		log.Printf("plan resolver: amount %.2f matches no band, defaulting to starter", amount)
		return db_models.PlanStarter, nil
	}

	return "", utils.ErrPlanUnresolved
}

// SplitExternalReference separates "planType_userIdentifier" into its parts.
// Only the first underscore splits, so identifiers may contain underscores.
func SplitExternalReference(externalReference string) (planPart string, userPart string) {
	prefix, rest, found := strings.Cut(externalReference, "_")
	if !found {
		return externalReference, ""
	}
	return prefix, rest
}
