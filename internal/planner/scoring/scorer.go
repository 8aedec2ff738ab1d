// Package scoring assigns normalized relevance scores to catalog
// products for a campaign specification.
//
// Scoring is a pure function of (Product, CampaignSpec): it never
// fails, never touches I/O, and produces identical output for
// identical inputs.
package scoring

import (
	"sort"
	"strings"

	"github.com/ignite/adplanner/internal/config"
	"github.com/ignite/adplanner/internal/domain"
)

// Factor caps. The four factors are independently bounded and the sum
// is clipped to [0, 1].
const (
	categoryMax    = 0.4
	priceMax       = 0.3
	descriptionMax = 0.2
	metadataMax    = 0.1

	descriptionRefLength = 300
)

// categoryAffinity maps related category pairs that earn a partial
// alignment score without a textual match. Keys are ordered pairs;
// Scorer checks both directions.
var categoryAffinity = map[string]map[string]float64{
	"electronics": {"gadgets": 0.3, "computers": 0.3, "appliances": 0.25, "gaming": 0.25},
	"fashion":     {"clothing": 0.3, "accessories": 0.25, "beauty": 0.2},
	"sports":      {"fitness": 0.3, "outdoor": 0.25, "health": 0.2},
	"toys":        {"games": 0.3, "education": 0.2},
	"food":        {"beverages": 0.3, "grocery": 0.3},
	"beauty":      {"cosmetics": 0.3, "skincare": 0.3, "fashion": 0.2},
}

// Scorer computes relevance scores. The zero value is not usable;
// construct with New.
type Scorer struct {
	lowBudgetThreshold float64
}

// New creates a scorer with the configured price-fit pivot.
func New(cfg config.PlannerConfig) *Scorer {
	return &Scorer{lowBudgetThreshold: cfg.LowBudgetThreshold}
}

// Score computes the relevance of one product for the spec. The result
// is always in [0, 1] with a per-factor breakdown.
func (s *Scorer) Score(p domain.Product, spec domain.CampaignSpec) domain.ScoredProduct {
	b := domain.ScoreBreakdown{
		Category:    categoryScore(p.Category, spec.Category),
		Price:       s.priceScore(p.Price, spec.Budget),
		Description: descriptionScore(p.Description, spec),
		Metadata:    metadataScore(p.Metadata, spec),
	}
	total := b.Category + b.Price + b.Description + b.Metadata
	if total < 0 {
		total = 0
	}
	if total > 1 {
		total = 1
	}
	b.Total = total

	return domain.ScoredProduct{Product: p, Score: total, Breakdown: b}
}

// ScoreAll scores every product and returns the results sorted by
// descending score, ties broken by product id for determinism.
func (s *Scorer) ScoreAll(products []domain.Product, spec domain.CampaignSpec) []domain.ScoredProduct {
	scored := make([]domain.ScoredProduct, 0, len(products))
	for _, p := range products {
		scored = append(scored, s.Score(p, spec))
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Product.ID < scored[j].Product.ID
	})
	return scored
}

// categoryScore rates category alignment: exact match 0.4, containment
// 0.3, first-word match 0.2, word-prefix overlap 0.15, affinity-table
// pairs 0.2-0.3. A spec without a category yields a neutral 0.2; a
// product without one yields 0.
func categoryScore(productCategory, campaignCategory string) float64 {
	if campaignCategory == "" {
		return 0.2
	}
	if productCategory == "" {
		return 0
	}

	pc := strings.ToLower(strings.TrimSpace(productCategory))
	cc := strings.ToLower(strings.TrimSpace(campaignCategory))

	if pc == cc {
		return categoryMax
	}
	if strings.Contains(pc, cc) || strings.Contains(cc, pc) {
		return 0.3
	}
	if v, ok := categoryAffinity[cc][pc]; ok {
		return v
	}
	if v, ok := categoryAffinity[pc][cc]; ok {
		return v
	}

	pFirst := firstWord(pc)
	cFirst := firstWord(cc)
	if pFirst != "" && pFirst == cFirst {
		return 0.2
	}
	if pFirst != "" && cFirst != "" &&
		(strings.HasPrefix(pFirst, cFirst) || strings.HasPrefix(cFirst, pFirst)) {
		return 0.15
	}
	return 0
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// priceScore rates how well the price fits the budget. Low-budget
// campaigns favor products under budget/40; larger budgets favor the
// budget/40..budget/20 band. Prices above budget/10 are penalized.
func (s *Scorer) priceScore(price, budget float64) float64 {
	if budget <= 0 {
		return 0.1
	}

	ratio := price / budget

	if budget < s.lowBudgetThreshold {
		switch {
		case ratio < 0.025:
			return priceMax
		case ratio < 0.05:
			return 0.2
		case ratio < 0.1:
			return 0.1
		default:
			return 0.05
		}
	}

	switch {
	case ratio >= 0.025 && ratio < 0.05:
		return priceMax
	case ratio >= 0.01 && ratio < 0.025:
		return 0.25
	case ratio >= 0.05 && ratio < 0.1:
		return 0.2
	case ratio < 0.01:
		return 0.1
	default:
		return 0.05
	}
}

// descriptionScore combines a length component capped at the reference
// length with a keyword-overlap bonus against the spec's category,
// objective, and audience tokens. A missing description scores 0.
func descriptionScore(description string, spec domain.CampaignSpec) float64 {
	if description == "" {
		return 0
	}

	lengthScore := float64(len(description)) / descriptionRefLength * 0.1
	if lengthScore > 0.1 {
		lengthScore = 0.1
	}

	descLower := strings.ToLower(description)
	var keywords []string
	if spec.Category != "" {
		keywords = append(keywords, strings.ToLower(spec.Category))
	}
	keywords = append(keywords, strings.ToLower(string(spec.Objective)))
	for _, w := range strings.Fields(strings.ToLower(spec.TargetAudience)) {
		if len(w) > 3 {
			keywords = append(keywords, w)
		}
	}

	var matches int
	for _, kw := range keywords {
		if strings.Contains(descLower, kw) {
			matches++
		}
	}
	keywordScore := float64(matches) * 0.03
	if keywordScore > 0.1 {
		keywordScore = 0.1
	}

	score := lengthScore + keywordScore
	if score > descriptionMax {
		score = descriptionMax
	}
	return score
}

// metadataScore rewards popularity, brand alignment with the spec, and
// feature richness. Missing metadata scores 0.
func metadataScore(md domain.ProductMetadata, spec domain.CampaignSpec) float64 {
	var score float64

	if md.Popularity > 0 {
		pop := md.Popularity * 0.05
		if pop > 0.05 {
			pop = 0.05
		}
		score += pop
	}

	if spec.Metadata.Brand != "" && md.Brand != "" &&
		strings.Contains(strings.ToLower(md.Brand), strings.ToLower(spec.Metadata.Brand)) {
		score += 0.03
	}

	if n := len(md.Features); n > 0 {
		feat := float64(n) * 0.005
		if feat > 0.02 {
			feat = 0.02
		}
		score += feat
	}

	if score > metadataMax {
		score = metadataMax
	}
	return score
}
