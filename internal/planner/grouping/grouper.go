// Package grouping partitions scored products into priority tiers.
package grouping

import (
	"strings"

	"github.com/ignite/adplanner/internal/config"
	"github.com/ignite/adplanner/internal/domain"
	"github.com/ignite/adplanner/internal/planner"
)

// Grouper selects the top-N scored products and partitions them by
// score threshold into high/medium/low tiers.
type Grouper struct {
	highThreshold   float64
	mediumThreshold float64
}

// New creates a grouper with the configured tier thresholds.
func New(cfg config.PlannerConfig) *Grouper {
	return &Grouper{
		highThreshold:   cfg.HighScoreThreshold,
		mediumThreshold: cfg.MediumScoreThreshold,
	}
}

// Group filters the scored products by the spec's category (when set),
// takes the top limit entries, and partitions them into tiers. The
// input must already be sorted by descending score with id tie-breaks;
// tier contents preserve that order.
//
// Returns InsufficientCandidates when nothing remains after filtering,
// which is fatal for the run.
func (g *Grouper) Group(scored []domain.ScoredProduct, spec domain.CampaignSpec, limit int) ([]domain.ProductGroup, error) {
	if limit <= 0 {
		limit = 10
	}

	selected := scored
	if spec.Category != "" {
		selected = make([]domain.ScoredProduct, 0, len(scored))
		want := strings.ToLower(spec.Category)
		for _, sp := range scored {
			// Keep products whose category relates to the filter at all;
			// a zero category component means no relation.
			if strings.ToLower(sp.Product.Category) == want || sp.Breakdown.Category > 0 {
				selected = append(selected, sp)
			}
		}
	}

	if len(selected) == 0 {
		return nil, planner.NewError(planner.KindInsufficientCandidates,
			"no products remain after category filtering",
			"category", spec.Category,
			"scored", len(scored))
	}

	if len(selected) > limit {
		selected = selected[:limit]
	}

	buckets := map[domain.Tier][]domain.ScoredProduct{}
	for _, sp := range selected {
		buckets[g.tierFor(sp.Score)] = append(buckets[g.tierFor(sp.Score)], sp)
	}

	var groups []domain.ProductGroup
	for _, tier := range domain.Tiers() {
		products := buckets[tier]
		if len(products) == 0 {
			continue
		}
		groups = append(groups, domain.ProductGroup{
			Tier:       tier,
			Products:   products,
			ScoreRange: scoreRange(products),
		})
	}
	return groups, nil
}

func (g *Grouper) tierFor(score float64) domain.Tier {
	switch {
	case score >= g.highThreshold:
		return domain.TierHigh
	case score >= g.mediumThreshold:
		return domain.TierMedium
	default:
		return domain.TierLow
	}
}

func scoreRange(products []domain.ScoredProduct) domain.ScoreRange {
	r := domain.ScoreRange{Min: products[0].Score, Max: products[0].Score}
	for _, sp := range products[1:] {
		if sp.Score < r.Min {
			r.Min = sp.Score
		}
		if sp.Score > r.Max {
			r.Max = sp.Score
		}
	}
	return r
}
