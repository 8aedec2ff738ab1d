package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ignite/adplanner/internal/domain"
	"github.com/ignite/adplanner/internal/planner"
)

const intentPrompt = `You are the intent parser of an ad campaign planning system.
Convert the user's natural-language request into a CampaignSpec JSON object.

CampaignSpec JSON structure:
{
  "objective": "sales | brand_awareness | conversions | traffic",
  "target_audience": "description of target audience",
  "budget": <number>,
  "duration_days": <number>,
  "category": "optional category filter",
  "platforms": ["facebook", "instagram"]
}

Default duration_days to 30 and platforms to ["facebook", "instagram"]
when the request does not mention them.

Return ONLY valid JSON, nothing else.

User request:
`

// ParseIntent converts a natural-language campaign request into a
// CampaignSpec via the completion collaborator. Any failure here is
// fatal to the run that requested it.
func ParseIntent(ctx context.Context, c Completer, userRequest string) (domain.CampaignSpec, error) {
	raw, err := c.Complete(ctx, intentPrompt+userRequest, Params{MaxTokens: 500, Temperature: 0.3})
	if err != nil {
		return domain.CampaignSpec{}, planner.NewError(planner.KindParse,
			fmt.Sprintf("intent parsing failed: %v", err))
	}

	var spec domain.CampaignSpec
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), &spec); err != nil {
		return domain.CampaignSpec{}, planner.NewError(planner.KindParse,
			"intent parser returned malformed JSON",
			"response", truncate(raw, 200))
	}

	if spec.DurationDays == 0 {
		spec.DurationDays = 30
	}
	if len(spec.Platforms) == 0 {
		spec.Platforms = []string{"facebook", "instagram"}
	}

	if err := spec.Validate(); err != nil {
		return domain.CampaignSpec{}, planner.NewError(planner.KindParse,
			fmt.Sprintf("parsed spec is invalid: %v", err))
	}
	return spec, nil
}

// ExtractJSON strips markdown code fences that models habitually wrap
// around JSON payloads.
func ExtractJSON(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "```json"); i >= 0 {
		s = s[i+len("```json"):]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
		return strings.TrimSpace(s)
	}
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
		return strings.TrimSpace(s)
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
