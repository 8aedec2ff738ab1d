package strategy

import (
	"fmt"
	"math"

	"github.com/ignite/adplanner/internal/config"
	"github.com/ignite/adplanner/internal/domain"
)

// PlanStructure decides the adset layout and daily budgets.
//
// Budgets below the small-campaign threshold get a single adset holding
// every selected product; larger budgets get one adset per non-empty
// tier. Daily budgets are rounded half-up to cents with the rounding
// remainder absorbed by the first adset, preserving the invariant
// sum(daily_budget * duration_days) == allocated total.
func PlanStructure(
	spec domain.CampaignSpec,
	groups []domain.ProductGroup,
	alloc domain.BudgetAllocation,
	targeting domain.TargetingSpec,
	bidding domain.BiddingStrategy,
	cfg config.PlannerConfig,
) domain.AdsetPlan {
	plan := domain.AdsetPlan{
		DurationDays: spec.DurationDays,
		Targeting:    targeting,
		Bidding:      bidding,
	}

	days := float64(spec.DurationDays)

	if spec.Budget < cfg.SmallCampaignThreshold {
		var ids []string
		for _, g := range groups {
			for _, sp := range g.Products {
				ids = append(ids, sp.Product.ID)
			}
		}
		plan.Adsets = []domain.Adset{{
			Name:        "All Products",
			Tier:        domain.TierHigh,
			ProductIDs:  ids,
			DailyBudget: roundCents(alloc.Total / days),
		}}
		return plan
	}

	for _, g := range groups {
		ids := make([]string, 0, len(g.Products))
		for _, sp := range g.Products {
			ids = append(ids, sp.Product.ID)
		}
		plan.Adsets = append(plan.Adsets, domain.Adset{
			Name:        fmt.Sprintf("%s Priority Products", titleTier(g.Tier)),
			Tier:        g.Tier,
			ProductIDs:  ids,
			DailyBudget: roundCents(alloc.ByTier[g.Tier] / days),
		})
	}

	// First adset absorbs the rounding remainder so the daily budgets
	// still sum to the full daily spend.
	var sumDaily float64
	for _, a := range plan.Adsets[1:] {
		sumDaily = roundCents(sumDaily + a.DailyBudget)
	}
	plan.Adsets[0].DailyBudget = roundCents(alloc.Total/days - sumDaily)

	return plan
}

func titleTier(t domain.Tier) string {
	switch t {
	case domain.TierHigh:
		return "High"
	case domain.TierMedium:
		return "Medium"
	default:
		return "Low"
	}
}

// roundCents rounds half-up to two decimal places.
func roundCents(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
