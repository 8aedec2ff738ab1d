package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/adplanner/internal/catalog"
	"github.com/ignite/adplanner/internal/config"
	"github.com/ignite/adplanner/internal/creative"
	"github.com/ignite/adplanner/internal/deploy"
	"github.com/ignite/adplanner/internal/domain"
	"github.com/ignite/adplanner/internal/llm"
	"github.com/ignite/adplanner/internal/orchestrator"
)

type stubCompleter struct{ text string }

func (s *stubCompleter) Complete(ctx context.Context, prompt string, p llm.Params) (string, error) {
	return s.text, nil
}

func testRouter(t *testing.T, completer llm.Completer) http.Handler {
	t.Helper()

	var products []domain.Product
	for i := 0; i < 5; i++ {
		products = append(products, domain.Product{
			ID:       fmt.Sprintf("e%d", i),
			Title:    fmt.Sprintf("Gadget %d", i),
			Price:    float64(120 + 10*i),
			Category: "electronics",
		})
	}
	cat := catalog.NewMemory(products)

	qa := config.QAConfig{
		BannedWords: []string{"spam"},
		Platforms:   map[string]config.PlatformRules{"facebook": {PrimaryTextMax: 125, HeadlineMax: 40}},
	}
	gen := creative.NewGenerator(completer, &creative.Policy{}, creative.NewValidator(qa), config.CreativeConfig{
		VariantCount:    2,
		MaxAttempts:     2,
		BaseDelayMillis: 1,
		MaxDelaySeconds: 1,
		Concurrency:     2,
	}, qa)

	cfg := config.PlannerConfig{
		ProductLimit:           10,
		HighScoreThreshold:     0.75,
		MediumScoreThreshold:   0.45,
		LowBudgetThreshold:     1000,
		MinViableBudget:        100,
		SmallCampaignThreshold: 1000,
		LargeBudgetThreshold:   5000,
		BudgetProportions:      config.Proportions{High: 0.65, Medium: 0.25, Low: 0.10},
		StageTimeoutSeconds:    10,
	}
	orch := orchestrator.New(cat, gen, completer, nil, cfg)
	return SetupRoutes(NewHandlers(orch, cat, completer, deploy.NewMetaSink()))
}

const goodCreative = `{"primary_text": "Small box, big sound.", "headline": "Hear It All", "image_prompt": "speaker"}`

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func validSpec() domain.CampaignSpec {
	return domain.CampaignSpec{
		Objective:      domain.ObjectiveSales,
		TargetAudience: "young professionals",
		Budget:         5000,
		DurationDays:   30,
		Category:       "electronics",
		Platforms:      []string{"facebook"},
	}
}

func TestHealthCheck(t *testing.T) {
	router := testRouter(t, &stubCompleter{text: goodCreative})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestCreatePlan(t *testing.T) {
	router := testRouter(t, &stubCompleter{text: goodCreative})

	rec := postJSON(t, router, "/api/plans", map[string]any{"spec": validSpec()})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Status string             `json:"status"`
		Result *domain.PlanResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	require.NotNil(t, resp.Result)
	assert.NotEmpty(t, resp.Result.Creatives)
	assert.NotEmpty(t, resp.Result.Summary)
}

func TestCreatePlanWithDeployment(t *testing.T) {
	router := testRouter(t, &stubCompleter{text: goodCreative})

	rec := postJSON(t, router, "/api/plans", map[string]any{"spec": validSpec(), "deploy": true})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Deployment *deploy.ExternalIDs `json:"deployment"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Deployment)
	assert.NotEmpty(t, resp.Deployment.CampaignID)
	assert.NotEmpty(t, resp.Deployment.AdIDs)
}

func TestCreatePlanErrors(t *testing.T) {
	router := testRouter(t, &stubCompleter{text: goodCreative})

	cases := []struct {
		name       string
		mutate     func(*domain.CampaignSpec)
		wantStatus int
		wantKind   string
	}{
		{
			name:       "invalid objective",
			mutate:     func(s *domain.CampaignSpec) { s.Objective = "world_peace" },
			wantStatus: http.StatusBadRequest,
			wantKind:   "validation_error",
		},
		{
			name:       "budget too small",
			mutate:     func(s *domain.CampaignSpec) { s.Budget = 50 },
			wantStatus: http.StatusUnprocessableEntity,
			wantKind:   "budget_too_small",
		},
		{
			name:       "no candidates",
			mutate:     func(s *domain.CampaignSpec) { s.Category = "submarines" },
			wantStatus: http.StatusUnprocessableEntity,
			wantKind:   "insufficient_candidates",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec := validSpec()
			tc.mutate(&spec)
			rec := postJSON(t, router, "/api/plans", map[string]any{"spec": spec})
			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.wantKind)
		})
	}
}

func TestCreateNaturalPlan(t *testing.T) {
	// One completer serves intent parsing, generation, and summary; a
	// JSON spec payload is valid output for all three.
	specJSON := `{"objective": "sales", "target_audience": "young professionals",
		"budget": 5000, "duration_days": 30, "category": "electronics", "platforms": ["facebook"]}`
	router := testRouter(t, &stubCompleter{text: specJSON})

	rec := postJSON(t, router, "/api/plans/natural", map[string]any{
		"request": "sell gadgets to young professionals with $5000 over a month",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "run_id")
}

func TestCreateNaturalPlanRequiresText(t *testing.T) {
	router := testRouter(t, &stubCompleter{text: goodCreative})
	rec := postJSON(t, router, "/api/plans/natural", map[string]any{"request": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListProducts(t *testing.T) {
	router := testRouter(t, &stubCompleter{text: goodCreative})
	req := httptest.NewRequest(http.MethodGet, "/api/products?category=electronics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Count)
}

func TestOptimizeCampaigns(t *testing.T) {
	router := testRouter(t, &stubCompleter{text: goodCreative})

	rec := postJSON(t, router, "/api/campaigns/optimize", map[string]any{
		"campaigns": []map[string]any{{
			"campaign_id": "c1",
			"impressions": 100000,
			"clicks":      500,
			"conversions": 10,
			"spend":       900,
			"revenue":     450,
		}},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "suggestions")
	assert.Contains(t, rec.Body.String(), "reduce budget or pause")
}
