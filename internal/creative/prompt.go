package creative

import (
	"fmt"
	"strings"

	"github.com/ignite/adplanner/internal/config"
	"github.com/ignite/adplanner/internal/domain"
)

// variantAngles gives each A/B variant a distinct creative direction so
// the test actually compares different approaches, not rewordings.
var variantAngles = map[string]string{
	"A": "Lead with the product's main benefit. Direct and confident.",
	"B": "Lead with the emotional payoff of owning the product. Aspirational.",
	"C": "Lead with social proof or popularity. Conversational.",
	"D": "Lead with urgency or seasonality. Energetic.",
}

func angleFor(variantID string) string {
	if a, ok := variantAngles[variantID]; ok {
		return a
	}
	return variantAngles["A"]
}

// buildPrompt assembles the generation prompt for one variant. Platform
// limits go into the prompt so most responses pass QA on the first try.
func buildPrompt(product domain.Product, spec domain.CampaignSpec, platform, variantID string, style CategoryStyle, rules config.PlatformRules) string {
	var b strings.Builder

	b.WriteString("You write ad copy for paid social campaigns.\n")
	fmt.Fprintf(&b, "Write one %s ad for the product below. Campaign objective: %s. Audience: %s.\n\n",
		platform, spec.Objective, spec.TargetAudience)

	fmt.Fprintf(&b, "Product: %s\n", product.Title)
	if product.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", product.Description)
	}
	fmt.Fprintf(&b, "Price: $%.2f\n", product.Price)
	if product.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", product.Category)
	}
	if product.Metadata.Brand != "" {
		fmt.Fprintf(&b, "Brand: %s\n", product.Metadata.Brand)
	}
	if len(product.Metadata.Features) > 0 {
		fmt.Fprintf(&b, "Key features: %s\n", strings.Join(product.Metadata.Features, ", "))
	}

	fmt.Fprintf(&b, "\nCreative direction (variant %s): %s\n", variantID, angleFor(variantID))
	fmt.Fprintf(&b, "Tone: %s.\n", style.Tone)
	if len(style.Emphasize) > 0 {
		fmt.Fprintf(&b, "Emphasize: %s.\n", strings.Join(style.Emphasize, ", "))
	}
	if len(style.Avoid) > 0 {
		fmt.Fprintf(&b, "Avoid mentioning: %s.\n", strings.Join(style.Avoid, ", "))
	}

	b.WriteString("\nConstraints:\n")
	fmt.Fprintf(&b, "- primary_text: at most %d characters\n", rules.PrimaryTextMax)
	fmt.Fprintf(&b, "- headline: at most %d characters\n", rules.HeadlineMax)
	if rules.NoSuperlatives {
		b.WriteString("- no superlatives (best, greatest, #1, ultimate)\n")
	}
	if rules.NoSecondPerson {
		b.WriteString("- do not address the reader directly (no \"you\" or \"your\")\n")
	}
	b.WriteString("- no spammy or misleading claims\n")

	b.WriteString(`
Return ONLY a JSON object:
{"primary_text": "...", "headline": "...", "image_prompt": "one-sentence description of the ad image"}
`)
	return b.String()
}
