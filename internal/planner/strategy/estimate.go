package strategy

import "github.com/ignite/adplanner/internal/domain"

// Base estimates per $1000 of budget.
const baseReachPer1K = 50000

var baseConversionsPer1K = map[domain.Objective]int{
	domain.ObjectiveConversions:    25,
	domain.ObjectiveSales:          20,
	domain.ObjectiveTraffic:        100,
	domain.ObjectiveBrandAwareness: 0, // awareness campaigns don't track conversions
}

// Estimate projects rough reach and conversion counts from the budget
// and the derived targeting. Narrow age windows trade reach for
// conversion rate; large budgets gain a small efficiency bonus.
func Estimate(spec domain.CampaignSpec, targeting domain.TargetingSpec) domain.PlanEstimate {
	thousands := spec.Budget / 1000

	reach := int(thousands * baseReachPer1K)
	conversions := int(thousands * float64(baseConversionsPer1K[spec.Objective]))

	ageSpan := targeting.AgeRange.Max - targeting.AgeRange.Min
	switch {
	case ageSpan < 15:
		reach = int(float64(reach) * 0.7)
		conversions = int(float64(conversions) * 1.2)
	case ageSpan > 30:
		reach = int(float64(reach) * 1.3)
		conversions = int(float64(conversions) * 0.9)
	}

	switch {
	case spec.Budget > 5000:
		conversions = int(float64(conversions) * 1.1)
	case spec.Budget < 1000:
		conversions = int(float64(conversions) * 0.9)
	}

	return domain.PlanEstimate{Reach: reach, Conversions: conversions}
}
