package domain

import (
	"fmt"
	"strings"
)

// Objective enumerates the supported campaign objectives.
type Objective string

const (
	ObjectiveSales          Objective = "sales"
	ObjectiveBrandAwareness Objective = "brand_awareness"
	ObjectiveConversions    Objective = "conversions"
	ObjectiveTraffic        Objective = "traffic"
)

// Valid reports whether the objective is one of the supported values.
func (o Objective) Valid() bool {
	switch o {
	case ObjectiveSales, ObjectiveBrandAwareness, ObjectiveConversions, ObjectiveTraffic:
		return true
	}
	return false
}

// SpecMetadata is the closed set of campaign metadata keys the planner
// recognizes. Unknown keys supplied by callers are dropped at the API
// boundary rather than threaded through as an open bag.
type SpecMetadata struct {
	Brand     string  `json:"brand,omitempty"`      // brand alignment signal for scoring
	Locale    string  `json:"locale,omitempty"`     // e.g. "en_US", maps to targeting locations
	Country   string  `json:"country,omitempty"`    // explicit country override, wins over locale
	TargetCPA float64 `json:"target_cpa,omitempty"` // forces TARGET_COST bidding when > 0
	AgeMin    int     `json:"age_min,omitempty"`    // explicit targeting override
	AgeMax    int     `json:"age_max,omitempty"`    // explicit targeting override
	Interests string  `json:"interests,omitempty"`  // comma-separated explicit interests
}

// CampaignSpec is the structured campaign requirement a planning run
// executes against. It is immutable once a pipeline run starts.
type CampaignSpec struct {
	Objective      Objective    `json:"objective"`
	TargetAudience string       `json:"target_audience"`
	Budget         float64      `json:"budget"`
	DurationDays   int          `json:"duration_days"`
	Category       string       `json:"category,omitempty"`
	Platforms      []string     `json:"platforms"`
	Metadata       SpecMetadata `json:"metadata,omitempty"`
}

// Validate checks the spec's structural invariants. A failed validation
// is fatal to the run and is reported before any stage executes.
func (s *CampaignSpec) Validate() error {
	if !s.Objective.Valid() {
		return fmt.Errorf("objective %q is not one of sales, brand_awareness, conversions, traffic", s.Objective)
	}
	if s.Budget <= 0 {
		return fmt.Errorf("budget must be positive, got %.2f", s.Budget)
	}
	if s.DurationDays <= 0 {
		return fmt.Errorf("duration_days must be positive, got %d", s.DurationDays)
	}
	if len(s.Platforms) == 0 {
		return fmt.Errorf("at least one platform is required")
	}
	for _, p := range s.Platforms {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("platform identifiers must be non-empty")
		}
	}
	if s.Metadata.AgeMin < 0 || s.Metadata.AgeMax < 0 {
		return fmt.Errorf("age overrides must be non-negative")
	}
	if s.Metadata.AgeMin > 0 && s.Metadata.AgeMax > 0 && s.Metadata.AgeMin > s.Metadata.AgeMax {
		return fmt.Errorf("age_min %d exceeds age_max %d", s.Metadata.AgeMin, s.Metadata.AgeMax)
	}
	return nil
}

// ExplicitInterests splits the comma-separated interests override.
func (m SpecMetadata) ExplicitInterests() []string {
	if m.Interests == "" {
		return nil
	}
	parts := strings.Split(m.Interests, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
