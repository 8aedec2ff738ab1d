// Package deploy pushes an assembled plan to an ad platform. A
// deployment failure never invalidates the computed plan; it is
// reported alongside it.
package deploy

import (
	"context"

	"github.com/ignite/adplanner/internal/domain"
)

// ExternalIDs are the platform-assigned identifiers for a deployed
// campaign structure.
type ExternalIDs struct {
	CampaignID string            `json:"campaign_id"`
	AdsetIDs   map[string]string `json:"adset_ids"` // adset name → external id
	AdIDs      map[string]string `json:"ad_ids"`    // creative id → external id
}

// Sink is the deployment contract.
type Sink interface {
	Deploy(ctx context.Context, plan domain.AdsetPlan, creatives []domain.CreativeVariant) (ExternalIDs, error)
}
