// Package strategy derives the audience, bidding, and structural
// parameters of a campaign plan from the spec and the grouped products.
package strategy

import (
	"strconv"
	"strings"

	"github.com/ignite/adplanner/internal/domain"
)

// categoryTargeting is the static category-to-audience table. Explicit
// spec metadata overrides always win over these defaults.
var categoryTargeting = map[string]domain.TargetingSpec{
	"toys":        {AgeRange: domain.AgeRange{Min: 25, Max: 45}, Interests: []string{"parenting", "children", "education", "family"}},
	"fashion":     {AgeRange: domain.AgeRange{Min: 18, Max: 55}, Interests: []string{"fashion", "shopping", "style", "clothing"}},
	"electronics": {AgeRange: domain.AgeRange{Min: 25, Max: 50}, Interests: []string{"technology", "gadgets", "electronics", "innovation"}},
	"beauty":      {AgeRange: domain.AgeRange{Min: 18, Max: 45}, Interests: []string{"beauty", "cosmetics", "skincare", "makeup"}},
	"sports":      {AgeRange: domain.AgeRange{Min: 18, Max: 50}, Interests: []string{"sports", "fitness", "health", "outdoor"}},
	"food":        {AgeRange: domain.AgeRange{Min: 25, Max: 55}, Interests: []string{"food", "cooking", "restaurants", "recipes"}},
}

// localeToCountry maps spec locales to targeting locations.
var localeToCountry = map[string][]string{
	"zh_CN": {"CN"},
	"en_US": {"US"},
	"en_GB": {"GB"},
	"ja_JP": {"JP"},
	"ko_KR": {"KR"},
}

// BuildTargeting derives the audience parameters. Derivation order:
// category defaults, price-based age adjustment from the high tier,
// product age_range hints, then explicit spec metadata overrides.
func BuildTargeting(spec domain.CampaignSpec, groups []domain.ProductGroup) domain.TargetingSpec {
	targeting := domain.TargetingSpec{
		AgeRange:  domain.AgeRange{Min: 25, Max: 45},
		Locations: []string{"US"},
	}

	if cat, ok := categoryTargeting[strings.ToLower(spec.Category)]; ok {
		targeting.AgeRange = cat.AgeRange
		targeting.Interests = append([]string(nil), cat.Interests...)
	}

	adjustForPrice(&targeting, groups)
	adjustForProductAges(&targeting, groups)

	// Explicit overrides win.
	if spec.Metadata.Locale != "" {
		if countries, ok := localeToCountry[spec.Metadata.Locale]; ok {
			targeting.Locations = countries
		}
	}
	if spec.Metadata.Country != "" {
		targeting.Locations = []string{spec.Metadata.Country}
	}
	if explicit := spec.Metadata.ExplicitInterests(); len(explicit) > 0 {
		targeting.Interests = explicit
	}
	if spec.Metadata.AgeMin > 0 {
		targeting.AgeRange.Min = spec.Metadata.AgeMin
	}
	if spec.Metadata.AgeMax > 0 {
		targeting.AgeRange.Max = spec.Metadata.AgeMax
	}

	return targeting
}

// adjustForPrice shifts the age window by the high tier's average
// price: cheap products skew younger, premium products skew older.
func adjustForPrice(t *domain.TargetingSpec, groups []domain.ProductGroup) {
	var sum float64
	var count int
	for _, g := range groups {
		if g.Tier != domain.TierHigh {
			continue
		}
		for _, sp := range g.Products {
			sum += sp.Product.Price
			count++
		}
	}
	if count == 0 {
		return
	}

	avg := sum / float64(count)
	switch {
	case avg < 50:
		t.AgeRange.Min = max(18, t.AgeRange.Min-5)
		t.AgeRange.Max = min(45, t.AgeRange.Max-5)
	case avg > 200:
		t.AgeRange.Min = min(30, t.AgeRange.Min+5)
		t.AgeRange.Max = min(65, t.AgeRange.Max+10)
	}
}

// adjustForProductAges widens the window to cover the buyers of
// age-ranged products (parents, hence the +10/+20 shift).
func adjustForProductAges(t *domain.TargetingSpec, groups []domain.ProductGroup) {
	var minSum, maxSum, n int
	for _, g := range groups {
		for _, sp := range g.Products {
			lo, hi, ok := parseAgeRange(sp.Product.Metadata.AgeRange)
			if !ok {
				continue
			}
			minSum += lo
			maxSum += hi
			n++
		}
	}
	if n == 0 {
		return
	}

	t.AgeRange.Min = max(18, minSum/n+10)
	t.AgeRange.Max = min(65, maxSum/n+20)
}

// parseAgeRange parses metadata values like "3-8" or "25-45".
func parseAgeRange(s string) (lo, hi int, ok bool) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	lo, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	hi, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || lo > hi {
		return 0, 0, false
	}
	return lo, hi, true
}
