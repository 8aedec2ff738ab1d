package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ignite/adplanner/internal/catalog"
	"github.com/ignite/adplanner/internal/deploy"
	"github.com/ignite/adplanner/internal/domain"
	"github.com/ignite/adplanner/internal/llm"
	"github.com/ignite/adplanner/internal/orchestrator"
	"github.com/ignite/adplanner/internal/pkg/httputil"
	"github.com/ignite/adplanner/internal/pkg/logger"
	"github.com/ignite/adplanner/internal/planner"
)

// Handlers holds the collaborators the HTTP layer dispatches into.
type Handlers struct {
	orch      *orchestrator.Orchestrator
	catalog   catalog.Catalog
	completer llm.Completer // optional, enables /plans/natural
	sink      deploy.Sink   // optional, enables deploy=true
}

// NewHandlers creates the API handlers.
func NewHandlers(orch *orchestrator.Orchestrator, cat catalog.Catalog, completer llm.Completer, sink deploy.Sink) *Handlers {
	return &Handlers{orch: orch, catalog: cat, completer: completer, sink: sink}
}

// HealthCheck reports service liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]string{"status": "healthy", "service": "adplanner"})
}

type planRequest struct {
	Spec         domain.CampaignSpec `json:"spec"`
	ProductLimit int                 `json:"product_limit,omitempty"`
	Deploy       bool                `json:"deploy,omitempty"`
}

type planResponse struct {
	Status     string              `json:"status"`
	Result     *domain.PlanResult  `json:"result,omitempty"`
	Deployment *deploy.ExternalIDs `json:"deployment,omitempty"`
	Errors     []httputil.APIError `json:"errors,omitempty"`
}

// CreatePlan runs the pipeline for a structured CampaignSpec.
func (h *Handlers) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	h.runPlan(w, r, req)
}

type naturalPlanRequest struct {
	Request      string `json:"request"`
	ProductLimit int    `json:"product_limit,omitempty"`
	Deploy       bool   `json:"deploy,omitempty"`
}

// CreateNaturalPlan parses a free-text campaign request into a spec and
// runs the pipeline on it. A parse failure is fatal to the request.
func (h *Handlers) CreateNaturalPlan(w http.ResponseWriter, r *http.Request) {
	var req naturalPlanRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Request) == "" {
		httputil.BadRequest(w, string(planner.KindValidation), "request text is required")
		return
	}
	if h.completer == nil {
		httputil.Error(w, http.StatusServiceUnavailable, string(planner.KindParse),
			"natural-language planning requires the completion service, which is not configured")
		return
	}

	spec, err := llm.ParseIntent(r.Context(), h.completer, req.Request)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	h.runPlan(w, r, planRequest{Spec: spec, ProductLimit: req.ProductLimit, Deploy: req.Deploy})
}

func (h *Handlers) runPlan(w http.ResponseWriter, r *http.Request, req planRequest) {
	result, err := h.orch.Run(r.Context(), orchestrator.Request{
		Spec:         req.Spec,
		ProductLimit: req.ProductLimit,
	})
	if err != nil {
		writePipelineError(w, err)
		return
	}

	resp := planResponse{Status: string(result.Status), Result: result}

	if req.Deploy {
		if h.sink == nil {
			resp.Errors = append(resp.Errors, httputil.APIError{
				Kind:    string(planner.KindDeployment),
				Message: "no deployment sink configured",
			})
		} else if ids, err := h.sink.Deploy(r.Context(), result.AdsetPlan, result.Creatives); err != nil {
			// The plan stands; deployment failure rides alongside it.
			logger.Error("deployment failed", "run_id", result.RunID, "error", err.Error())
			resp.Errors = append(resp.Errors, httputil.APIError{
				Kind:    string(planner.KindDeployment),
				Message: err.Error(),
			})
		} else {
			resp.Deployment = &ids
		}
	}

	httputil.Created(w, resp)
}

// ListProducts exposes the catalog, optionally filtered by category.
func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"products": products, "count": len(products)})
}

type optimizeRequest struct {
	Campaigns []planner.PerformanceMetrics `json:"campaigns"`
}

// OptimizeCampaigns applies the rule-based optimizer to submitted
// performance metrics.
func (h *Handlers) OptimizeCampaigns(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	httputil.OK(w, planner.Optimize(req.Campaigns))
}

// writePipelineError maps the error taxonomy onto HTTP statuses.
func writePipelineError(w http.ResponseWriter, err error) {
	kind := planner.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case planner.KindValidation, planner.KindParse:
		status = http.StatusBadRequest
	case planner.KindInsufficientCandidates, planner.KindBudgetTooSmall:
		status = http.StatusUnprocessableEntity
	case planner.KindUpstreamTimeout:
		status = http.StatusGatewayTimeout
	}

	var pe *planner.Error
	if errors.As(err, &pe) && len(pe.Details) > 0 {
		httputil.JSON(w, status, httputil.ErrorResponse{
			Status: string(domain.RunFailed),
			Errors: []httputil.APIError{{Kind: string(kind), Message: pe.Message, Details: pe.Details}},
		})
		return
	}
	httputil.Error(w, status, string(kind), err.Error())
}
