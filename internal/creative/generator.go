package creative

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/osteele/liquid"
	"golang.org/x/sync/errgroup"

	"github.com/ignite/adplanner/internal/config"
	"github.com/ignite/adplanner/internal/domain"
	"github.com/ignite/adplanner/internal/llm"
	"github.com/ignite/adplanner/internal/pkg/logger"
	"github.com/ignite/adplanner/internal/pkg/retry"
)

// Generator produces validated creative variants for the products in a
// plan. External calls run under bounded parallelism; each variant is
// generated independently, so one variant's failure never touches
// another's state.
type Generator struct {
	completer llm.Completer
	validator *Validator
	policy    *Policy
	cfg       config.CreativeConfig
	qa        config.QAConfig
	retry     retry.Policy
}

// NewGenerator wires a generator. completer may be nil, in which case
// every variant takes the deterministic template path.
func NewGenerator(completer llm.Completer, policy *Policy, validator *Validator, cfg config.CreativeConfig, qa config.QAConfig) *Generator {
	return &Generator{
		completer: completer,
		validator: validator,
		policy:    policy,
		cfg:       cfg,
		qa:        qa,
		retry: retry.Policy{
			MaxAttempts: cfg.MaxAttempts,
			BaseDelay:   cfg.BaseDelay(),
			MaxDelay:    cfg.MaxDelay(),
		},
	}
}

// copyResponse is the JSON shape the generation prompt asks for.
type copyResponse struct {
	PrimaryText string `json:"primary_text"`
	Headline    string `json:"headline"`
	ImagePrompt string `json:"image_prompt"`
}

type task struct {
	product   domain.Product
	platform  string
	variantID string
}

// variantIDs is the alphabet for A/B variant identifiers.
const variantIDs = "ABCDEFGH"

// GenerateAll produces variants for every product across all groups.
// Output order is deterministic: groups in tier order, products in
// their scored order, variants A before B, regardless of which worker
// finished first. Products whose variants were cut off by the deadline
// are dropped and reported in the warnings.
func (g *Generator) GenerateAll(ctx context.Context, spec domain.CampaignSpec, groups []domain.ProductGroup) ([]domain.CreativeVariant, []domain.Warning) {
	tasks := g.buildTasks(spec, groups)

	results := make([]domain.CreativeVariant, len(tasks))
	completed := make([]bool, len(tasks))
	taskWarnings := make([][]domain.Warning, len(tasks))

	var pool errgroup.Group
	pool.SetLimit(g.cfg.Concurrency)
	for i, t := range tasks {
		i, t := i, t
		pool.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			results[i], taskWarnings[i] = g.generateVariant(ctx, t.product, spec, t.platform, t.variantID)
			completed[i] = results[i].QAStatus != ""
			return nil
		})
	}
	_ = pool.Wait()

	return g.assemble(tasks, results, completed, taskWarnings)
}

// buildTasks flattens groups into one task per (product, variant).
// Variants rotate across the campaign's platforms so every requested
// platform's rules get exercised.
func (g *Generator) buildTasks(spec domain.CampaignSpec, groups []domain.ProductGroup) []task {
	var tasks []task
	for _, group := range groups {
		for _, sp := range group.Products {
			for v := 0; v < g.cfg.VariantCount; v++ {
				tasks = append(tasks, task{
					product:   sp.Product,
					platform:  spec.Platforms[v%len(spec.Platforms)],
					variantID: string(variantIDs[v%len(variantIDs)]),
				})
			}
		}
	}
	return tasks
}

// assemble rebuilds deterministic output order and applies the
// deadline-drop rule: a product missing any variant is removed whole.
func (g *Generator) assemble(tasks []task, results []domain.CreativeVariant, completed []bool, taskWarnings [][]domain.Warning) ([]domain.CreativeVariant, []domain.Warning) {
	incomplete := make(map[string]bool)
	for i := range tasks {
		if !completed[i] {
			incomplete[tasks[i].product.ID] = true
		}
	}

	var variants []domain.CreativeVariant
	var warnings []domain.Warning
	warned := make(map[string]bool)
	for i := range tasks {
		pid := tasks[i].product.ID
		if incomplete[pid] {
			if !warned[pid] {
				warned[pid] = true
				warnings = append(warnings, domain.Warning{
					Kind:      domain.WarnDeadlineExpired,
					ProductID: pid,
					Message:   "creative generation cancelled by deadline, product dropped",
				})
			}
			continue
		}
		variants = append(variants, results[i])
		warnings = append(warnings, taskWarnings[i]...)
	}
	return variants, warnings
}

// generateVariant runs one variant through its lifecycle:
// Generating → Validating → {Accepted, Regenerating(≤1), FallbackAccepted}.
// It always returns a rule-compliant variant unless the context is done.
func (g *Generator) generateVariant(ctx context.Context, product domain.Product, spec domain.CampaignSpec, platform, variantID string) (domain.CreativeVariant, []domain.Warning) {
	var warnings []domain.Warning

	variant, err := g.generateOnce(ctx, product, spec, platform, variantID, nil)
	if err != nil {
		if ctx.Err() != nil {
			return domain.CreativeVariant{}, nil
		}
		logger.Warn("creative generation exhausted, using template",
			"product_id", product.ID, "variant_id", variantID, "error", err.Error())
		warnings = append(warnings, domain.Warning{
			Kind:      domain.WarnGenerationExhausted,
			ProductID: product.ID,
			VariantID: variantID,
			Message:   fmt.Sprintf("generation failed after retries: %v", err),
		})
		return g.fallbackVariant(product, platform, variantID), warnings
	}

	reasons := g.validator.Validate(variant)
	if len(reasons) == 0 {
		variant.QAStatus = domain.QAPassed
		return variant, warnings
	}

	// One bounded regeneration with the QA failures named in the prompt.
	regenerated, err := g.generateOnce(ctx, product, spec, platform, variantID, reasons)
	if err == nil {
		if r := g.validator.Validate(regenerated); len(r) == 0 {
			regenerated.QAStatus = domain.QAPassed
			return regenerated, warnings
		} else {
			reasons = r
		}
	}
	if ctx.Err() != nil {
		return domain.CreativeVariant{}, nil
	}

	logger.Warn("creative failed validation twice, using template",
		"product_id", product.ID, "variant_id", variantID, "reasons", strings.Join(reasons, "; "))
	warnings = append(warnings, domain.Warning{
		Kind:      domain.WarnQAExhausted,
		ProductID: product.ID,
		VariantID: variantID,
		Message:   "validation failed after regeneration: " + strings.Join(reasons, "; "),
	})
	return g.fallbackVariant(product, platform, variantID), warnings
}

// generateOnce calls the collaborator under the retry policy and parses
// the response. qaFailures, when present, turn the prompt into a
// regeneration request.
func (g *Generator) generateOnce(ctx context.Context, product domain.Product, spec domain.CampaignSpec, platform, variantID string, qaFailures []string) (domain.CreativeVariant, error) {
	if g.completer == nil {
		return domain.CreativeVariant{}, fmt.Errorf("no generation collaborator configured")
	}

	prompt := buildPrompt(product, spec, platform, variantID, g.policy.StyleFor(product.Category), g.qa.RulesFor(platform))
	if len(qaFailures) > 0 {
		prompt += "\nThe previous attempt was rejected for these reasons; fix all of them:\n- " +
			strings.Join(qaFailures, "\n- ") + "\n"
	}

	var variant domain.CreativeVariant
	err := g.retry.Do(ctx, func(ctx context.Context, attempt int) (retry.Outcome, error) {
		raw, err := g.completer.Complete(ctx, prompt, llm.Params{MaxTokens: 500, Temperature: 0.8})
		if err != nil {
			if llm.IsTransient(err) {
				return retry.Transient, err
			}
			return retry.Permanent, err
		}

		var resp copyResponse
		if err := json.Unmarshal([]byte(llm.ExtractJSON(raw)), &resp); err != nil {
			// Malformed output is worth another try at a fresh sample.
			return retry.Transient, fmt.Errorf("malformed generation response: %w", err)
		}

		variant = domain.CreativeVariant{
			ID:          product.ID + "-" + variantID,
			ProductID:   product.ID,
			VariantID:   variantID,
			Platform:    platform,
			PrimaryText: strings.TrimSpace(resp.PrimaryText),
			Headline:    strings.TrimSpace(resp.Headline),
			ImagePrompt: strings.TrimSpace(resp.ImagePrompt),
			ImageRef:    product.Metadata.ImageURL,
			ABGroup:     abGroup(variantID),
			QAStatus:    domain.QAPending,
		}
		return retry.Success, nil
	})
	return variant, err
}

func abGroup(variantID string) string {
	if variantID == "A" {
		return "control"
	}
	return "variant"
}

// Template fallbacks. Two voices per variant slot; the impersonal set
// serves platforms that disallow second-person address.
var (
	fallbackEngine = liquid.NewEngine()

	fallbackHeadlines = map[string]string{
		"A": "Discover {{ title }}",
		"B": "Meet {{ title }}",
	}
	fallbackPrimary = map[string]string{
		"A": "{{ title }} is here. Shop now and see what everyone is talking about.",
		"B": "Upgrade your everyday with {{ title }}. Available now for ${{ price }}.",
	}
	fallbackPrimaryImpersonal = map[string]string{
		"A": "{{ title }} is now available. A simple way to get more from every day.",
		"B": "{{ title }} combines quality and value, now available for ${{ price }}.",
	}
)

// neutralTitle replaces a product title that cannot be made
// rule-compliant by sanitization alone.
const neutralTitle = "A New Favorite"

// fallbackVariant renders the deterministic template creative. The
// result always satisfies the platform rules: templates carry no banned
// phrases or superlatives, the interpolated title is sanitized against
// the same lists Validate checks, and the copy is truncated to the
// limits. A title that still fails after sanitization is replaced with
// a neutral one.
func (g *Generator) fallbackVariant(product domain.Product, platform, variantID string) domain.CreativeVariant {
	rules := g.qa.RulesFor(platform)

	slot := variantID
	if _, ok := fallbackHeadlines[slot]; !ok {
		slot = "A"
	}
	primaryTpl := fallbackPrimary[slot]
	if rules.NoSecondPerson {
		primaryTpl = fallbackPrimaryImpersonal[slot]
	}

	title := g.validator.Sanitize(product.Title, rules)
	if title == "" {
		title = neutralTitle
	}

	imageRef := product.Metadata.ImageURL
	if imageRef == "" {
		imageRef = "https://placehold.co/1080x1080?text=" + strings.ReplaceAll(product.Title, " ", "+")
	}

	render := func(title string) domain.CreativeVariant {
		bindings := map[string]any{
			"title": title,
			"price": fmt.Sprintf("%.2f", product.Price),
		}
		return domain.CreativeVariant{
			ID:          product.ID + "-" + variantID,
			ProductID:   product.ID,
			VariantID:   variantID,
			Platform:    platform,
			PrimaryText: truncateRunes(renderTemplate(primaryTpl, bindings, title), rules.PrimaryTextMax),
			Headline:    truncateRunes(renderTemplate(fallbackHeadlines[slot], bindings, title), rules.HeadlineMax),
			ImageRef:    imageRef,
			ABGroup:     abGroup(variantID),
			QAStatus:    domain.QAFallback,
		}
	}

	variant := render(title)
	if len(g.validator.Validate(variant)) > 0 {
		variant = render(neutralTitle)
	}
	return variant
}

func renderTemplate(tpl string, bindings map[string]any, fallback string) string {
	out, err := fallbackEngine.ParseAndRenderString(tpl, bindings)
	if err != nil {
		return fallback
	}
	return out
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
