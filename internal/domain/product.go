package domain

// ProductMetadata is the closed set of product metadata keys recognized
// by the scorer and the targeting builder.
type ProductMetadata struct {
	Popularity float64  `json:"popularity,omitempty"` // 0..1 popularity indicator
	Brand      string   `json:"brand,omitempty"`
	Features   []string `json:"features,omitempty"`
	AgeRange   string   `json:"age_range,omitempty"` // e.g. "3-8", intended user age
	ImageURL   string   `json:"image_url,omitempty"`
}

// Product is a catalog entry. Products are supplied by the catalog
// collaborator and are read-only to the pipeline.
type Product struct {
	ID          string          `json:"id" db:"id"`
	Title       string          `json:"title" db:"title"`
	Description string          `json:"description" db:"description"`
	Price       float64         `json:"price" db:"price"`
	Category    string          `json:"category" db:"category"`
	Metadata    ProductMetadata `json:"metadata,omitempty"`
}

// ScoreBreakdown records the per-factor contributions behind a product
// score, kept for explainability and debugging.
type ScoreBreakdown struct {
	Category    float64 `json:"category"`
	Price       float64 `json:"price"`
	Description float64 `json:"description"`
	Metadata    float64 `json:"metadata"`
	Total       float64 `json:"total"`
}

// ScoredProduct pairs a product with its relevance score for a spec.
// The score is a pure function of (Product, CampaignSpec) and always
// lies in [0, 1].
type ScoredProduct struct {
	Product   Product        `json:"product"`
	Score     float64        `json:"score"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}

// Tier enumerates the priority tiers products are partitioned into.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// Tiers lists all tiers in descending priority order.
func Tiers() []Tier { return []Tier{TierHigh, TierMedium, TierLow} }

// ScoreRange is the inclusive score boundaries observed within a tier.
type ScoreRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ProductGroup is one priority tier of selected products, ordered by
// descending score (ties broken by product id).
type ProductGroup struct {
	Tier       Tier            `json:"tier"`
	Products   []ScoredProduct `json:"products"`
	ScoreRange ScoreRange      `json:"score_range"`
}
