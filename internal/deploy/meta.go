package deploy

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignite/adplanner/internal/domain"
	"github.com/ignite/adplanner/internal/pkg/logger"
	"github.com/ignite/adplanner/internal/planner"
)

// MetaSink is a stand-in for the Meta Marketing API. It assigns
// external ids without calling out; swap it for a real client by
// implementing Sink.
type MetaSink struct{}

// NewMetaSink builds the mock Meta deployment sink.
func NewMetaSink() *MetaSink { return &MetaSink{} }

func (s *MetaSink) Deploy(ctx context.Context, plan domain.AdsetPlan, creatives []domain.CreativeVariant) (ExternalIDs, error) {
	if err := ctx.Err(); err != nil {
		return ExternalIDs{}, planner.NewError(planner.KindDeployment,
			fmt.Sprintf("deployment cancelled: %v", err))
	}
	if len(plan.Adsets) == 0 {
		return ExternalIDs{}, planner.NewError(planner.KindDeployment, "plan has no adsets to deploy")
	}

	ids := ExternalIDs{
		CampaignID: "cmp_" + uuid.New().String(),
		AdsetIDs:   make(map[string]string, len(plan.Adsets)),
		AdIDs:      make(map[string]string, len(creatives)),
	}
	for _, adset := range plan.Adsets {
		ids.AdsetIDs[adset.Name] = "as_" + uuid.New().String()
	}
	for _, c := range creatives {
		ids.AdIDs[c.ID] = "ad_" + uuid.New().String()
	}

	logger.Info("plan deployed",
		"campaign_id", ids.CampaignID,
		"adsets", len(ids.AdsetIDs),
		"ads", len(ids.AdIDs))
	return ids, nil
}
