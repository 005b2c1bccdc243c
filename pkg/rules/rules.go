// Package rules centralizes the weight table, rule keys, and explanation
// text for substitute scoring.
package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Weight-table keys. AttributeMatch is applied once per shared attribute.
const (
	RuleSameCategorySameBrand = "same_category_same_brand"
	RuleSameCategory          = "same_category"
	RuleSimilarCategory       = "similar_category"
	RuleSameBrand             = "same_brand"
	RuleAttributeMatch        = "attribute_match"
	RuleCheaperBonus          = "cheaper_bonus"
	RuleInStockBonus          = "in_stock_bonus"
)

// Fired-rule tags that differ from their weight key.
const (
	TagCheaperOrEqual = "cheaper_or_equal"
	TagInStock        = "in_stock"
)

// Weights maps rule keys to integer weights. Any positive or negative
// integer is valid; weights change ranking, not correctness. Weights are
// always passed explicitly, never read from global state, so concurrent
// callers with different configurations cannot interfere.
type Weights map[string]int

var defaultWeights = Weights{
	RuleSameCategorySameBrand: 4,
	RuleSameCategory:          2,
	RuleSimilarCategory:       1,
	RuleSameBrand:             1,
	RuleAttributeMatch:        1,
	RuleCheaperBonus:          1,
	RuleInStockBonus:          2,
}

// DefaultWeights returns a fresh copy of the canonical default weights.
func DefaultWeights() Weights {
	w := make(Weights, len(defaultWeights))
	for k, v := range defaultWeights {
		w[k] = v
	}
	return w
}

// Value returns the weight for key, falling back to the canonical default
// when the table has no entry for it.
func (w Weights) Value(key string) int {
	if v, ok := w[key]; ok {
		return v
	}
	return defaultWeights[key]
}

// LoadWeights reads a YAML mapping of rule key to integer weight. Keys not
// known to the engine are kept; they simply never fire.
func LoadWeights(path string) (Weights, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weights file: %w", err)
	}
	var w Weights
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("parse weights file: %w", err)
	}
	if w == nil {
		w = Weights{}
	}
	return w, nil
}
