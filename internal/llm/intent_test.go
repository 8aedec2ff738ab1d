package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/ignite/adplanner/internal/domain"
	"github.com/ignite/adplanner/internal/planner"
)

type scriptedCompleter struct {
	text string
	err  error
}

func (s *scriptedCompleter) Complete(ctx context.Context, prompt string, p Params) (string, error) {
	return s.text, s.err
}

func TestParseIntent(t *testing.T) {
	c := &scriptedCompleter{text: `{
		"objective": "sales",
		"target_audience": "runners",
		"budget": 3000,
		"category": "sports",
		"platforms": ["facebook", "tiktok"],
		"duration_days": 14
	}`}

	spec, err := ParseIntent(context.Background(), c, "sell running shoes to runners, $3000, two weeks")
	if err != nil {
		t.Fatalf("ParseIntent: %v", err)
	}
	if spec.Objective != domain.ObjectiveSales || spec.Budget != 3000 || spec.DurationDays != 14 {
		t.Errorf("unexpected spec: %+v", spec)
	}
}

func TestParseIntentDefaults(t *testing.T) {
	c := &scriptedCompleter{text: `{"objective": "traffic", "target_audience": "gamers", "budget": 500}`}

	spec, err := ParseIntent(context.Background(), c, "drive traffic")
	if err != nil {
		t.Fatalf("ParseIntent: %v", err)
	}
	if spec.DurationDays != 30 {
		t.Errorf("duration default = %d, want 30", spec.DurationDays)
	}
	if len(spec.Platforms) != 2 {
		t.Errorf("platform default = %v", spec.Platforms)
	}
}

func TestParseIntentFencedJSON(t *testing.T) {
	c := &scriptedCompleter{text: "```json\n{\"objective\": \"sales\", \"target_audience\": \"x\", \"budget\": 100}\n```"}
	if _, err := ParseIntent(context.Background(), c, "whatever"); err != nil {
		t.Fatalf("fenced JSON should parse: %v", err)
	}
}

func TestParseIntentFailuresAreFatal(t *testing.T) {
	cases := map[string]*scriptedCompleter{
		"collaborator error": {err: errors.New("unavailable")},
		"malformed JSON":     {text: "sorry, I can't do that"},
		"invalid spec":       {text: `{"objective": "world_domination", "budget": 100}`},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseIntent(context.Background(), c, "request")
			if err == nil {
				t.Fatal("expected an error")
			}
			if planner.KindOf(err) != planner.KindParse {
				t.Errorf("kind = %s, want parse_error", planner.KindOf(err))
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	cases := []struct{ in, want string }{
		{`{"a": 1}`, `{"a": 1}`},
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"Here you go: ```json\n{\"a\": 1}\n``` hope that helps", `{"a": 1}`},
	}
	for _, tc := range cases {
		if got := ExtractJSON(tc.in); got != tc.want {
			t.Errorf("ExtractJSON(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsTransient(t *testing.T) {
	if IsTransient(errors.New("plain")) {
		t.Error("plain errors are not transient")
	}
	if !IsTransient(MarkTransient(errors.New("throttled"))) {
		t.Error("marked errors are transient")
	}
	if IsTransient(context.DeadlineExceeded) {
		t.Error("deadline expiry is never transient")
	}
	if IsTransient(MarkTransient(nil)) {
		t.Error("nil stays nil")
	}
}
