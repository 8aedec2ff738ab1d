// Package orchestrator drives a planning run through its stages and
// owns all per-run state. Nothing survives a run; durability belongs to
// the event sink.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/adplanner/internal/catalog"
	"github.com/ignite/adplanner/internal/config"
	"github.com/ignite/adplanner/internal/creative"
	"github.com/ignite/adplanner/internal/domain"
	"github.com/ignite/adplanner/internal/events"
	"github.com/ignite/adplanner/internal/llm"
	"github.com/ignite/adplanner/internal/pkg/logger"
	"github.com/ignite/adplanner/internal/planner"
	"github.com/ignite/adplanner/internal/planner/budget"
	"github.com/ignite/adplanner/internal/planner/grouping"
	"github.com/ignite/adplanner/internal/planner/scoring"
	"github.com/ignite/adplanner/internal/planner/strategy"
)

// Stage names, in execution order.
const (
	StageScoreAndGroup        = "score_and_group"
	StageAllocateAndStructure = "allocate_and_structure"
	StageGenerateCreative     = "generate_creative"
	StageAssemble             = "assemble"
)

// Orchestrator composes the pipeline stages. One instance serves many
// runs; each run's intermediate state lives on the stack of Run.
type Orchestrator struct {
	catalog   catalog.Catalog
	generator *creative.Generator
	completer llm.Completer // optional, for the plan summary
	sink      events.Sink
	cfg       config.PlannerConfig

	scorer    *scoring.Scorer
	grouper   *grouping.Grouper
	allocator *budget.Allocator
}

// New wires an orchestrator. completer may be nil; summaries then take
// the template path.
func New(cat catalog.Catalog, gen *creative.Generator, completer llm.Completer, sink events.Sink, cfg config.PlannerConfig) *Orchestrator {
	return &Orchestrator{
		catalog:   cat,
		generator: gen,
		completer: completer,
		sink:      sink,
		cfg:       cfg,
		scorer:    scoring.New(cfg),
		grouper:   grouping.New(cfg),
		allocator: budget.New(cfg),
	}
}

// Request is one planning request.
type Request struct {
	Spec         domain.CampaignSpec
	ProductLimit int // 0 means the configured default
}

// Run executes the pipeline: ScoreAndGroup → AllocateAndStructure →
// GenerateCreative → Assemble. Stage-fatal errors return a nil result;
// per-product failures surface as warnings on a partial result.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*domain.PlanResult, error) {
	runID := uuid.New().String()

	timeout := o.cfg.StageTimeout()
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := req.Spec.Validate(); err != nil {
		return nil, planner.NewError(planner.KindValidation, err.Error())
	}
	limit := req.ProductLimit
	if limit <= 0 {
		limit = o.cfg.ProductLimit
	}

	logger.Info("planning run started",
		"run_id", runID, "objective", string(req.Spec.Objective),
		"budget", req.Spec.Budget, "product_limit", limit)

	groups, err := o.scoreAndGroup(ctx, runID, req.Spec, limit)
	if err != nil {
		return nil, o.failRun(ctx, runID, StageScoreAndGroup, err)
	}

	alloc, adsetPlan, estimate, err := o.allocateAndStructure(ctx, runID, req.Spec, groups)
	if err != nil {
		return nil, o.failRun(ctx, runID, StageAllocateAndStructure, err)
	}

	creatives, warnings, err := o.generateCreative(ctx, runID, req.Spec, groups)
	if err != nil {
		return nil, o.failRun(ctx, runID, StageGenerateCreative, err)
	}

	result := o.assemble(ctx, runID, req.Spec, groups, alloc, adsetPlan, estimate, creatives, warnings)

	o.emit(ctx, events.Event{
		RunID: runID, Type: events.TypeRunFinished,
		Message: string(result.Status),
		Fields:  map[string]string{"warnings": fmt.Sprintf("%d", len(result.Warnings))},
	})
	logger.Info("planning run finished",
		"run_id", runID, "status", string(result.Status),
		"products", countProducts(result.Groups), "creatives", len(result.Creatives))
	return result, nil
}

func (o *Orchestrator) scoreAndGroup(ctx context.Context, runID string, spec domain.CampaignSpec, limit int) ([]domain.ProductGroup, error) {
	o.emit(ctx, events.Event{RunID: runID, Type: events.TypeStageStarted, Stage: StageScoreAndGroup})

	products, err := o.catalog.ListProducts(ctx, "")
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return nil, planner.NewError(planner.KindUpstreamTimeout,
				"catalog lookup exceeded the run deadline")
		}
		return nil, fmt.Errorf("catalog lookup: %w", err)
	}

	scored := o.scorer.ScoreAll(products, spec)
	groups, err := o.grouper.Group(scored, spec, limit)
	if err != nil {
		return nil, err
	}

	o.emit(ctx, events.Event{
		RunID: runID, Type: events.TypeStageFinished, Stage: StageScoreAndGroup,
		Fields: map[string]string{
			"candidates": fmt.Sprintf("%d", len(products)),
			"selected":   fmt.Sprintf("%d", countProducts(groups)),
		},
	})
	return groups, nil
}

// allocateAndStructure computes the budget split concurrently with
// targeting and bidding; both sides depend only on the groups.
func (o *Orchestrator) allocateAndStructure(ctx context.Context, runID string, spec domain.CampaignSpec, groups []domain.ProductGroup) (domain.BudgetAllocation, domain.AdsetPlan, domain.PlanEstimate, error) {
	o.emit(ctx, events.Event{RunID: runID, Type: events.TypeStageStarted, Stage: StageAllocateAndStructure})

	type strategyOut struct {
		targeting domain.TargetingSpec
		bidding   domain.BiddingStrategy
	}
	strategyCh := make(chan strategyOut, 1)
	go func() {
		strategyCh <- strategyOut{
			targeting: strategy.BuildTargeting(spec, groups),
			bidding:   strategy.SelectBidding(spec, o.cfg),
		}
	}()

	alloc, err := o.allocator.Allocate(groups, spec.Budget)
	if err != nil {
		return domain.BudgetAllocation{}, domain.AdsetPlan{}, domain.PlanEstimate{}, err
	}
	st := <-strategyCh

	plan := strategy.PlanStructure(spec, groups, alloc, st.targeting, st.bidding, o.cfg)
	estimate := strategy.Estimate(spec, st.targeting)

	o.emit(ctx, events.Event{
		RunID: runID, Type: events.TypeStageFinished, Stage: StageAllocateAndStructure,
		Fields: map[string]string{"adsets": fmt.Sprintf("%d", len(plan.Adsets))},
	})
	return alloc, plan, estimate, nil
}

func (o *Orchestrator) generateCreative(ctx context.Context, runID string, spec domain.CampaignSpec, groups []domain.ProductGroup) ([]domain.CreativeVariant, []domain.Warning, error) {
	o.emit(ctx, events.Event{RunID: runID, Type: events.TypeStageStarted, Stage: StageGenerateCreative})

	creatives, warnings := o.generator.GenerateAll(ctx, spec, groups)
	if len(creatives) == 0 {
		return nil, nil, planner.NewError(planner.KindGenerationExhausted,
			"no product retained usable creative",
			"products", countProducts(groups))
	}

	for _, w := range warnings {
		o.emit(ctx, events.Event{
			RunID: runID, Type: events.TypeWarning, Stage: StageGenerateCreative,
			Message: w.Message,
			Fields:  map[string]string{"kind": string(w.Kind), "product_id": w.ProductID},
		})
	}
	o.emit(ctx, events.Event{
		RunID: runID, Type: events.TypeStageFinished, Stage: StageGenerateCreative,
		Fields: map[string]string{"variants": fmt.Sprintf("%d", len(creatives))},
	})
	return creatives, warnings, nil
}

// assemble joins both branches into the final result. It never fails:
// dropped products are pruned from the plan and everything else is
// aggregation.
func (o *Orchestrator) assemble(ctx context.Context, runID string, spec domain.CampaignSpec, groups []domain.ProductGroup, alloc domain.BudgetAllocation, plan domain.AdsetPlan, estimate domain.PlanEstimate, creatives []domain.CreativeVariant, warnings []domain.Warning) *domain.PlanResult {
	o.emit(ctx, events.Event{RunID: runID, Type: events.TypeStageStarted, Stage: StageAssemble})

	kept := make(map[string]bool, len(creatives))
	for _, c := range creatives {
		kept[c.ProductID] = true
	}
	groups = pruneGroups(groups, kept)
	plan.Adsets = pruneAdsets(plan.Adsets, kept)

	status := domain.RunSuccess
	if len(warnings) > 0 {
		status = domain.RunPartial
	}

	result := &domain.PlanResult{
		RunID:      runID,
		Spec:       spec,
		Groups:     groups,
		Allocation: alloc,
		AdsetPlan:  plan,
		Creatives:  creatives,
		Estimate:   estimate,
		Warnings:   warnings,
		Status:     status,
	}

	// The summary is decoration: its fallback never downgrades status.
	summary, usedFallback := llm.Summarize(ctx, o.completer, result)
	result.Summary = summary
	if usedFallback && o.completer != nil {
		result.Warnings = append(result.Warnings, domain.Warning{
			Kind:    domain.WarnSummaryFallback,
			Message: "summary generation failed, template summary used",
		})
	}

	o.emit(ctx, events.Event{RunID: runID, Type: events.TypeStageFinished, Stage: StageAssemble})
	return result
}

func (o *Orchestrator) failRun(ctx context.Context, runID, stage string, err error) error {
	logger.Error("planning run failed", "run_id", runID, "stage", stage, "error", err.Error())
	o.emit(ctx, events.Event{
		RunID: runID, Type: events.TypeStageFailed, Stage: stage,
		Message: err.Error(),
		Fields:  map[string]string{"kind": string(planner.KindOf(err))},
	})
	return err
}

// emit appends an event fire-and-forget. The background context keeps
// the audit trail alive even when the run deadline has expired.
func (o *Orchestrator) emit(ctx context.Context, e events.Event) {
	if o.sink == nil {
		return
	}
	if ctx.Err() != nil {
		ctx = context.Background()
	}
	if _, err := o.sink.Append(ctx, e); err != nil {
		logger.Warn("event append failed", "type", e.Type, "error", err.Error())
	}
}

func pruneGroups(groups []domain.ProductGroup, kept map[string]bool) []domain.ProductGroup {
	out := make([]domain.ProductGroup, 0, len(groups))
	for _, g := range groups {
		var products []domain.ScoredProduct
		for _, sp := range g.Products {
			if kept[sp.Product.ID] {
				products = append(products, sp)
			}
		}
		if len(products) == 0 {
			continue
		}
		g.Products = products
		out = append(out, g)
	}
	return out
}

func pruneAdsets(adsets []domain.Adset, kept map[string]bool) []domain.Adset {
	out := make([]domain.Adset, 0, len(adsets))
	for _, a := range adsets {
		var ids []string
		for _, id := range a.ProductIDs {
			if kept[id] {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			continue
		}
		a.ProductIDs = ids
		out = append(out, a)
	}
	return out
}

func countProducts(groups []domain.ProductGroup) int {
	var n int
	for _, g := range groups {
		n += len(g.Products)
	}
	return n
}
