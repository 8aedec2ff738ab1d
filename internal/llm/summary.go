package llm

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/osteele/liquid"

	"github.com/ignite/adplanner/internal/domain"
	"github.com/ignite/adplanner/internal/pkg/logger"
)

const summaryPrompt = `You are summarizing the result of an automated ad campaign planning run
for a marketing operator. Write 3-5 plain sentences: what was planned,
how the budget was split, and anything that needed a fallback. No
markdown, no bullet points.

Plan result JSON:
`

// fallbackSummary is rendered when the completion collaborator is
// unavailable; the response always carries some summary.
const fallbackSummary = `Planned a {{ objective }} campaign over {{ duration }} days with a total budget of ${{ budget }}. ` +
	`Selected {{ products }} products across {{ groups }} priority tiers and produced {{ creatives }} creative variants. ` +
	`{% if warnings > 0 %}{{ warnings }} warning(s) were recorded during planning.{% else %}All stages completed cleanly.{% endif %}`

var summaryEngine = liquid.NewEngine()

// Summarize produces a human-readable wrap-up of the plan. A failed
// completion degrades to the templated fallback and reports
// fallback=true; it never fails the response.
func Summarize(ctx context.Context, c Completer, result *domain.PlanResult) (summary string, fallback bool) {
	if c != nil {
		payload, err := json.Marshal(result)
		if err == nil {
			text, err := c.Complete(ctx, summaryPrompt+string(payload), Params{MaxTokens: 400, Temperature: 0.5})
			if err == nil && strings.TrimSpace(text) != "" {
				return strings.TrimSpace(text), false
			}
			if err != nil {
				logger.Warn("summary generation failed, using template", "error", err.Error())
			}
		}
	}
	return renderFallbackSummary(result), true
}

func renderFallbackSummary(result *domain.PlanResult) string {
	var products int
	for _, g := range result.Groups {
		products += len(g.Products)
	}
	bindings := map[string]any{
		"objective": string(result.Spec.Objective),
		"duration":  result.Spec.DurationDays,
		"budget":    result.Spec.Budget,
		"products":  products,
		"groups":    len(result.Groups),
		"creatives": len(result.Creatives),
		"warnings":  len(result.Warnings),
	}
	out, err := summaryEngine.ParseAndRenderString(fallbackSummary, bindings)
	if err != nil {
		// The template is static; this only trips if it is edited badly.
		logger.Error("fallback summary template failed", "error", err.Error())
		return "Campaign plan generated."
	}
	return out
}
