package creative

import (
	"fmt"
	"strings"

	"github.com/ignite/adplanner/internal/config"
	"github.com/ignite/adplanner/internal/domain"
)

var superlatives = []string{"best", "greatest", "#1", "number one", "ultimate", "perfect"}

var secondPerson = []string{"you", "your", "you're", "yours"}

// Validator checks a creative variant against the copy policy:
// per-platform length limits, the banned-word list, platform style
// rules, and the image requirement.
type Validator struct {
	banned    []string
	platforms config.QAConfig
}

// NewValidator builds a validator from the QA configuration.
func NewValidator(cfg config.QAConfig) *Validator {
	banned := make([]string, len(cfg.BannedWords))
	for i, w := range cfg.BannedWords {
		banned[i] = strings.ToLower(w)
	}
	return &Validator{banned: banned, platforms: cfg}
}

// Validate returns the reasons the variant fails QA; an empty slice
// means it passes. All failures are reported, not just the first, so
// the regeneration prompt can name everything to fix.
func (v *Validator) Validate(variant domain.CreativeVariant) []string {
	rules := v.platforms.RulesFor(variant.Platform)
	var reasons []string

	if strings.TrimSpace(variant.PrimaryText) == "" {
		reasons = append(reasons, "primary_text is empty")
	} else if len([]rune(variant.PrimaryText)) > rules.PrimaryTextMax {
		reasons = append(reasons, fmt.Sprintf("primary_text exceeds %d characters (%d)",
			rules.PrimaryTextMax, len([]rune(variant.PrimaryText))))
	}
	if strings.TrimSpace(variant.Headline) == "" {
		reasons = append(reasons, "headline is empty")
	} else if len([]rune(variant.Headline)) > rules.HeadlineMax {
		reasons = append(reasons, fmt.Sprintf("headline exceeds %d characters (%d)",
			rules.HeadlineMax, len([]rune(variant.Headline))))
	}

	combined := strings.ToLower(variant.PrimaryText + " " + variant.Headline)
	for _, w := range v.banned {
		if strings.Contains(combined, w) {
			reasons = append(reasons, fmt.Sprintf("contains banned phrase %q", w))
		}
	}

	if rules.NoSuperlatives {
		for _, w := range superlatives {
			if containsWord(combined, w) {
				reasons = append(reasons, fmt.Sprintf("superlative %q not allowed on %s", w, variant.Platform))
				break
			}
		}
	}
	if rules.NoSecondPerson {
		for _, w := range secondPerson {
			if containsWord(combined, w) {
				reasons = append(reasons, fmt.Sprintf("second-person address %q not allowed on %s", w, variant.Platform))
				break
			}
		}
	}

	if !variant.HasImage() {
		reasons = append(reasons, "variant has neither an image prompt nor an image reference")
	}

	return reasons
}

// Sanitize strips banned phrases and the platform's restricted words
// from free text, so product titles can be interpolated into template
// copy without tripping the same checks Validate applies.
func (v *Validator) Sanitize(text string, rules config.PlatformRules) string {
	for _, w := range v.banned {
		text = removeFold(text, w)
	}
	var restricted []string
	if rules.NoSuperlatives {
		restricted = append(restricted, superlatives...)
	}
	if rules.NoSecondPerson {
		restricted = append(restricted, secondPerson...)
	}
	for _, w := range restricted {
		if strings.Contains(w, " ") {
			text = removeFold(text, w)
			continue
		}
		text = removeWord(text, w)
	}
	return strings.Join(strings.Fields(text), " ")
}

// removeFold deletes every case-insensitive occurrence of sub.
func removeFold(s, sub string) string {
	for {
		i := strings.Index(strings.ToLower(s), sub)
		if i < 0 {
			return s
		}
		s = s[:i] + s[i+len(sub):]
	}
}

// removeWord drops whole-word occurrences of w, keeping the remaining
// words in order.
func removeWord(s, w string) string {
	fields := strings.Fields(s)
	out := fields[:0]
	for _, f := range fields {
		trimmed := strings.TrimFunc(f, func(r rune) bool { return !isWordRune(r) })
		if strings.EqualFold(trimmed, w) {
			continue
		}
		out = append(out, f)
	}
	return strings.Join(out, " ")
}

// containsWord matches w as a whole word, not as a substring, so
// "younger" does not trip the "you" rule.
func containsWord(text, w string) bool {
	if !strings.Contains(text, w) {
		return false
	}
	if strings.Contains(w, " ") {
		return true
	}
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !isWordRune(r)
	})
	for _, f := range fields {
		if f == w {
			return true
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return r == '#' || r == '\'' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
