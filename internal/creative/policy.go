// Package creative generates and validates ad copy variants for the
// products selected into a plan.
package creative

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CategoryStyle is the brand-voice guidance applied to prompts for
// products in one category.
type CategoryStyle struct {
	Tone      string   `yaml:"tone"`
	Emphasize []string `yaml:"emphasize"`
	Avoid     []string `yaml:"avoid"`
}

// Policy is the copywriting policy: a default style plus per-category
// overrides, loaded from YAML at startup.
type Policy struct {
	Default    CategoryStyle            `yaml:"default"`
	Categories map[string]CategoryStyle `yaml:"categories"`
}

// StyleFor returns the style for a category, falling back to the
// default style when no override exists.
func (p *Policy) StyleFor(category string) CategoryStyle {
	if p == nil {
		return defaultStyle
	}
	if s, ok := p.Categories[strings.ToLower(category)]; ok {
		return s
	}
	if p.Default.Tone != "" {
		return p.Default
	}
	return defaultStyle
}

var defaultStyle = CategoryStyle{
	Tone:      "clear and benefit-led",
	Emphasize: []string{"value", "quality"},
}

// LoadPolicy reads the copywriting policy file. A missing file is not
// an error; generation proceeds with the built-in default style.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Policy{Default: defaultStyle}, nil
		}
		return nil, err
	}
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	lowered := make(map[string]CategoryStyle, len(p.Categories))
	for k, v := range p.Categories {
		lowered[strings.ToLower(k)] = v
	}
	p.Categories = lowered
	return &p, nil
}
