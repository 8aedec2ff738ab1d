// Package budget distributes a campaign budget across priority tiers
// and, within each tier, across the tier's products.
package budget

import (
	"math"

	"github.com/ignite/adplanner/internal/config"
	"github.com/ignite/adplanner/internal/domain"
	"github.com/ignite/adplanner/internal/planner"
)

// Allocator splits the total budget by configured tier proportions,
// normalized over the tiers that actually have products, then
// sub-allocates within each tier proportionally to score mass.
type Allocator struct {
	proportions config.Proportions
	minViable   float64
}

// New creates an allocator. The proportions are validated at config
// load time against the policy ranges.
func New(cfg config.PlannerConfig) *Allocator {
	return &Allocator{
		proportions: cfg.BudgetProportions,
		minViable:   cfg.MinViableBudget,
	}
}

// Allocate distributes totalBudget over the groups. All amounts are
// rounded half-up to cents; rounding remainders are absorbed by the
// first tier and the first product within a tier, so the leaf sum
// equals the total exactly.
//
// Returns BudgetTooSmall when the budget cannot fund a minimum viable
// campaign. That error is only recoverable by user correction, never
// by silent adjustment.
func (a *Allocator) Allocate(groups []domain.ProductGroup, totalBudget float64) (domain.BudgetAllocation, error) {
	if totalBudget < a.minViable {
		return domain.BudgetAllocation{}, planner.NewError(planner.KindBudgetTooSmall,
			"budget is below the minimum viable campaign spend",
			"budget", totalBudget,
			"minimum", a.minViable,
			"shortfall", a.minViable-totalBudget)
	}

	if len(groups) == 0 {
		return domain.BudgetAllocation{}, planner.NewError(planner.KindInsufficientCandidates,
			"no product groups to allocate against")
	}

	weights := a.tierWeights(groups)

	alloc := domain.BudgetAllocation{
		Total:     roundCents(totalBudget),
		ByTier:    make(map[domain.Tier]float64, len(groups)),
		ByProduct: make(map[domain.Tier]map[string]float64, len(groups)),
	}

	// Tier amounts, remainder absorbed by the first non-empty tier.
	var assigned float64
	for _, g := range groups[1:] {
		amount := roundCents(alloc.Total * weights[g.Tier])
		alloc.ByTier[g.Tier] = amount
		assigned = roundCents(assigned + amount)
	}
	alloc.ByTier[groups[0].Tier] = roundCents(alloc.Total - assigned)

	for _, g := range groups {
		alloc.ByProduct[g.Tier] = splitByScore(g.Products, alloc.ByTier[g.Tier])
	}

	return alloc, nil
}

// tierWeights normalizes the configured proportions over the non-empty
// tiers; an empty tier's share is redistributed proportionally.
func (a *Allocator) tierWeights(groups []domain.ProductGroup) map[domain.Tier]float64 {
	raw := map[domain.Tier]float64{
		domain.TierHigh:   a.proportions.High,
		domain.TierMedium: a.proportions.Medium,
		domain.TierLow:    a.proportions.Low,
	}

	var total float64
	for _, g := range groups {
		total += raw[g.Tier]
	}

	weights := make(map[domain.Tier]float64, len(groups))
	for _, g := range groups {
		if total > 0 {
			weights[g.Tier] = raw[g.Tier] / total
		} else {
			weights[g.Tier] = 1 / float64(len(groups))
		}
	}
	return weights
}

// splitByScore sub-allocates a tier amount proportionally to each
// product's share of the tier's score mass. Zero score mass splits
// equally. The first product absorbs the rounding remainder.
func splitByScore(products []domain.ScoredProduct, amount float64) map[string]float64 {
	out := make(map[string]float64, len(products))
	if len(products) == 0 {
		return out
	}

	var mass float64
	for _, sp := range products {
		mass += sp.Score
	}

	var assigned float64
	for i := len(products) - 1; i >= 1; i-- {
		sp := products[i]
		var share float64
		if mass > 0 {
			share = sp.Score / mass
		} else {
			share = 1 / float64(len(products))
		}
		leaf := roundCents(amount * share)
		out[sp.Product.ID] = leaf
		assigned = roundCents(assigned + leaf)
	}
	out[products[0].Product.ID] = roundCents(amount - assigned)
	return out
}

// roundCents rounds half-up to two decimal places.
func roundCents(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
