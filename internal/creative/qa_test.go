package creative

import (
	"strings"
	"testing"

	"github.com/ignite/adplanner/internal/config"
	"github.com/ignite/adplanner/internal/domain"
)

func testQAConfig() config.QAConfig {
	return config.QAConfig{
		BannedWords: []string{"spam", "free money", "guaranteed", "click here"},
		Platforms: map[string]config.PlatformRules{
			"facebook":  {PrimaryTextMax: 125, HeadlineMax: 40},
			"instagram": {PrimaryTextMax: 125, HeadlineMax: 40, NoSuperlatives: true},
			"google":    {PrimaryTextMax: 90, HeadlineMax: 30, NoSecondPerson: true},
		},
	}
}

func compliantVariant(platform string) domain.CreativeVariant {
	return domain.CreativeVariant{
		ProductID:   "p1",
		VariantID:   "A",
		Platform:    platform,
		PrimaryText: "A compact speaker with big sound.",
		Headline:    "Big Sound, Small Box",
		ImagePrompt: "a speaker on a picnic table",
	}
}

func TestValidatePasses(t *testing.T) {
	v := NewValidator(testQAConfig())
	if reasons := v.Validate(compliantVariant("facebook")); len(reasons) != 0 {
		t.Errorf("compliant variant rejected: %v", reasons)
	}
}

func TestValidateLengthLimits(t *testing.T) {
	v := NewValidator(testQAConfig())

	variant := compliantVariant("facebook")
	variant.PrimaryText = strings.Repeat("a", 126)
	if reasons := v.Validate(variant); len(reasons) == 0 {
		t.Error("over-length primary_text passed")
	}

	variant = compliantVariant("facebook")
	variant.Headline = strings.Repeat("b", 41)
	if reasons := v.Validate(variant); len(reasons) == 0 {
		t.Error("over-length headline passed")
	}

	// The same copy is fine on a platform with looser limits.
	variant.Platform = "tiktok" // unknown platform falls back to 200/60
	if reasons := v.Validate(variant); len(reasons) != 0 {
		t.Errorf("fallback limits rejected valid copy: %v", reasons)
	}
}

func TestValidateBannedWords(t *testing.T) {
	v := NewValidator(testQAConfig())

	variant := compliantVariant("facebook")
	variant.PrimaryText = "Get FREE MONEY with every order"
	reasons := v.Validate(variant)
	if len(reasons) == 0 {
		t.Fatal("banned phrase passed")
	}
	if !strings.Contains(reasons[0], "free money") {
		t.Errorf("reason should name the phrase: %v", reasons)
	}
}

func TestValidateSuperlatives(t *testing.T) {
	v := NewValidator(testQAConfig())

	variant := compliantVariant("instagram")
	variant.Headline = "The Best Speaker Ever"
	if reasons := v.Validate(variant); len(reasons) == 0 {
		t.Error("superlative passed on a no-superlatives platform")
	}

	// Allowed on platforms without the rule.
	variant.Platform = "facebook"
	if reasons := v.Validate(variant); len(reasons) != 0 {
		t.Errorf("superlative rejected where allowed: %v", reasons)
	}
}

func TestValidateSecondPerson(t *testing.T) {
	v := NewValidator(testQAConfig())

	variant := compliantVariant("google")
	variant.PrimaryText = "Upgrade your commute with silence."
	if reasons := v.Validate(variant); len(reasons) == 0 {
		t.Error("second-person address passed on google")
	}

	// Substrings must not trip the whole-word match.
	variant.PrimaryText = "Designed for younger listeners."
	if reasons := v.Validate(variant); len(reasons) != 0 {
		t.Errorf("'younger' wrongly matched 'you': %v", reasons)
	}
}

func TestValidateRequiresImage(t *testing.T) {
	v := NewValidator(testQAConfig())

	variant := compliantVariant("facebook")
	variant.ImagePrompt = ""
	variant.ImageRef = ""
	if reasons := v.Validate(variant); len(reasons) == 0 {
		t.Error("variant without image passed")
	}

	variant.ImageRef = "https://img.example.com/p1.jpg"
	if reasons := v.Validate(variant); len(reasons) != 0 {
		t.Errorf("image reference should satisfy the rule: %v", reasons)
	}
}

func TestValidateReportsAllFailures(t *testing.T) {
	v := NewValidator(testQAConfig())

	variant := domain.CreativeVariant{
		Platform:    "facebook",
		PrimaryText: strings.Repeat("spam ", 40),
		Headline:    "",
	}
	reasons := v.Validate(variant)
	if len(reasons) < 3 {
		t.Errorf("expected every failure reported, got %v", reasons)
	}
}

func TestSanitize(t *testing.T) {
	v := NewValidator(testQAConfig())

	cases := []struct {
		name  string
		text  string
		rules config.PlatformRules
		want  string
	}{
		{
			name:  "banned phrase removed everywhere",
			text:  "Free Money Blender",
			rules: config.PlatformRules{},
			want:  "Blender",
		},
		{
			name:  "superlative removed when restricted",
			text:  "The Ultimate Blender",
			rules: config.PlatformRules{NoSuperlatives: true},
			want:  "The Blender",
		},
		{
			name:  "superlative kept when allowed",
			text:  "The Ultimate Blender",
			rules: config.PlatformRules{},
			want:  "The Ultimate Blender",
		},
		{
			name:  "multi-word superlative removed",
			text:  "Number One Pick for Summer",
			rules: config.PlatformRules{NoSuperlatives: true},
			want:  "Pick for Summer",
		},
		{
			name:  "second person removed when restricted",
			text:  "Everything You Need",
			rules: config.PlatformRules{NoSecondPerson: true},
			want:  "Everything Need",
		},
		{
			name:  "younger survives the you rule",
			text:  "Headphones for Younger Listeners",
			rules: config.PlatformRules{NoSecondPerson: true},
			want:  "Headphones for Younger Listeners",
		},
		{
			name:  "everything restricted leaves nothing",
			text:  "Ultimate",
			rules: config.PlatformRules{NoSuperlatives: true},
			want:  "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := v.Sanitize(tc.text, tc.rules); got != tc.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}
