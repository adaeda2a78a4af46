package recommendation

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

// Rule table errors.
var (
	ErrNoBands         = errors.New("rule table has no temperature bands")
	ErrUnknownFallback = errors.New("fallback band not defined")
)

// Items is a set of garments per slot.
type Items struct {
	Top       []string `yaml:"top" json:"top"`
	Bottom    []string `yaml:"bottom" json:"bottom"`
	Outer     []string `yaml:"outer" json:"outer"`
	Accessory []string `yaml:"accessory" json:"accessory"`
}

// Band is a temperature band. A nil Min matches any temperature.
type Band struct {
	Name  string   `yaml:"name"`
	Min   *float64 `yaml:"min"`
	Items `yaml:",inline"`
}

// ConditionRule adds garments when the weather label contains Match.
type ConditionRule struct {
	Match     string   `yaml:"match"`
	Outer     []string `yaml:"outer"`
	Accessory []string `yaml:"accessory"`
}

// HumidityRule adds a tip when humidity exceeds Above.
type HumidityRule struct {
	Above float64 `yaml:"above"`
	Tip   string  `yaml:"tip"`
}

// Rules is a parsed rule table.
type Rules struct {
	Fallback   string          `yaml:"fallback"`
	Bands      []Band          `yaml:"bands"`
	Conditions []ConditionRule `yaml:"conditions"`
	Humidity   HumidityRule    `yaml:"humidity"`
}

// ParseRules decodes and validates a YAML rule table. Bands are returned
// ordered from the warmest lower bound down.
func ParseRules(data []byte) (*Rules, error) {
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("decoding rules: %w", err)
	}
	if len(rules.Bands) == 0 {
		return nil, ErrNoBands
	}

	sort.SliceStable(rules.Bands, func(i, j int) bool {
		a, b := rules.Bands[i].Min, rules.Bands[j].Min
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return *a > *b
	})

	if _, ok := rules.band(rules.Fallback); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFallback, rules.Fallback)
	}
	return &rules, nil
}

// DefaultRules parses the embedded rule table.
func DefaultRules() (*Rules, error) {
	return ParseRules(defaultRules)
}

func (r *Rules) band(name string) (Band, bool) {
	for _, b := range r.Bands {
		if b.Name == name {
			return b, true
		}
	}
	return Band{}, false
}
