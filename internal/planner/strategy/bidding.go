package strategy

import (
	"github.com/ignite/adplanner/internal/config"
	"github.com/ignite/adplanner/internal/domain"
)

// SelectBidding chooses the bidding strategy from the objective, the
// budget size, and optional cost targets.
//
// Rules, first match wins:
//   - explicit target CPA in metadata forces TARGET_COST
//   - conversions or sales above the large-budget threshold use
//     LOWEST_COST_WITH_CAP with a cap derived from the budget
//   - everything else (traffic, brand awareness, small budgets) uses
//     LOWEST_COST
func SelectBidding(spec domain.CampaignSpec, cfg config.PlannerConfig) domain.BiddingStrategy {
	if spec.Metadata.TargetCPA > 0 {
		return domain.BiddingStrategy{Mode: domain.BidTargetCost, Amount: spec.Metadata.TargetCPA}
	}

	switch spec.Objective {
	case domain.ObjectiveConversions, domain.ObjectiveSales:
		if spec.Budget >= cfg.LargeBudgetThreshold {
			// Cap at 2% of total budget per result, a conservative
			// ceiling that scales with spend.
			return domain.BiddingStrategy{Mode: domain.BidLowestCostWithCap, Amount: roundCents(spec.Budget * 0.02)}
		}
	}

	return domain.BiddingStrategy{Mode: domain.BidLowestCost}
}
