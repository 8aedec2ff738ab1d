package domain

// BudgetAllocation maps tiers to allocated amounts and, within each
// tier, product ids to sub-allocations. All amounts are rounded to
// cents; the sum of leaf allocations equals the total budget within a
// tolerance of 0.01 per leaf.
type BudgetAllocation struct {
	Total     float64                     `json:"total"`
	ByTier    map[Tier]float64            `json:"by_tier"`
	ByProduct map[Tier]map[string]float64 `json:"by_product"`
}

// LeafSum returns the sum of all per-product allocations.
func (a BudgetAllocation) LeafSum() float64 {
	var sum float64
	for _, products := range a.ByProduct {
		for _, amount := range products {
			sum += amount
		}
	}
	return sum
}

// AgeRange bounds the targeted audience age.
type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// TargetingSpec holds the derived audience parameters. It is computed
// once per run and not user-editable afterwards.
type TargetingSpec struct {
	AgeRange  AgeRange `json:"age_range"`
	Interests []string `json:"interests"`
	Locations []string `json:"locations"`
}

// BiddingMode enumerates the supported cost-optimization modes.
type BiddingMode string

const (
	BidLowestCost        BiddingMode = "LOWEST_COST"
	BidLowestCostWithCap BiddingMode = "LOWEST_COST_WITH_CAP"
	BidTargetCost        BiddingMode = "TARGET_COST"
)

// BiddingStrategy is the selected bidding mode plus its optional
// numeric parameter (cost cap or target cost, zero when unused).
type BiddingStrategy struct {
	Mode   BiddingMode `json:"mode"`
	Amount float64     `json:"amount,omitempty"`
}

// Adset is a group of ads sharing a daily budget, targeting, and
// bidding configuration.
type Adset struct {
	Name        string   `json:"name"`
	Tier        Tier     `json:"tier"`
	ProductIDs  []string `json:"product_ids"`
	DailyBudget float64  `json:"daily_budget"`
}

// AdsetPlan is the structural layer of the plan. The invariant
// sum(daily_budget * duration_days) == allocated total holds within
// rounding tolerance.
type AdsetPlan struct {
	DurationDays int             `json:"duration_days"`
	Adsets       []Adset         `json:"adsets"`
	Targeting    TargetingSpec   `json:"targeting"`
	Bidding      BiddingStrategy `json:"bidding"`
}

// PlanEstimate holds rough reach/conversion projections for the plan.
type PlanEstimate struct {
	Reach       int `json:"reach"`
	Conversions int `json:"conversions"`
}

// RunStatus is the terminal status of a planning run.
type RunStatus string

const (
	RunSuccess RunStatus = "success"
	RunPartial RunStatus = "partial"
	RunFailed  RunStatus = "failed"
)

// WarningKind is the machine-readable class of a non-fatal problem.
type WarningKind string

const (
	WarnGenerationExhausted WarningKind = "generation_exhausted"
	WarnQAExhausted         WarningKind = "qa_exhausted"
	WarnProductDropped      WarningKind = "product_dropped"
	WarnDeadlineExpired     WarningKind = "deadline_expired"
	WarnSummaryFallback     WarningKind = "summary_fallback"
)

// Warning is a non-fatal problem accumulated during a run.
type Warning struct {
	Kind      WarningKind `json:"kind"`
	ProductID string      `json:"product_id,omitempty"`
	VariantID string      `json:"variant_id,omitempty"`
	Message   string      `json:"message"`
}

// PlanResult aggregates everything a planning run produced. It exists
// only for runs that end success or partial; failed runs carry errors
// instead.
type PlanResult struct {
	RunID      string            `json:"run_id"`
	Spec       CampaignSpec      `json:"spec"`
	Groups     []ProductGroup    `json:"groups"`
	Allocation BudgetAllocation  `json:"allocation"`
	AdsetPlan  AdsetPlan         `json:"adset_plan"`
	Creatives  []CreativeVariant `json:"creatives"`
	Estimate   PlanEstimate      `json:"estimate"`
	Warnings   []Warning         `json:"warnings"`
	Status     RunStatus         `json:"status"`
	Summary    string            `json:"summary,omitempty"`
}
