package rules

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultWeights(t *testing.T) {
	w := DefaultWeights()

	want := map[string]int{
		RuleSameCategorySameBrand: 4,
		RuleSameCategory:          2,
		RuleSimilarCategory:       1,
		RuleSameBrand:             1,
		RuleAttributeMatch:        1,
		RuleCheaperBonus:          1,
		RuleInStockBonus:          2,
	}
	for key, val := range want {
		if w[key] != val {
			t.Errorf("default weight %s = %d, want %d", key, w[key], val)
		}
	}

	// Returned map is a copy, not the canonical table
	w[RuleSameCategory] = 99
	if DefaultWeights()[RuleSameCategory] != 2 {
		t.Error("mutating a DefaultWeights copy changed the canonical table")
	}
}

func TestWeights_ValueFallback(t *testing.T) {
	w := Weights{RuleSameCategory: 10}

	if got := w.Value(RuleSameCategory); got != 10 {
		t.Errorf("expected override 10, got %d", got)
	}
	// Missing keys fall back to the canonical defaults
	if got := w.Value(RuleInStockBonus); got != 2 {
		t.Errorf("expected default 2, got %d", got)
	}
	// Keys unknown to the engine default to 0
	if got := w.Value("no_such_rule"); got != 0 {
		t.Errorf("expected 0 for unknown key, got %d", got)
	}
}

func TestLoadWeights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	content := "same_category: 5\nin_stock_bonus: 3\ncustom_rule: 8\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write weights file: %v", err)
	}

	w, err := LoadWeights(path)
	if err != nil {
		t.Fatalf("LoadWeights failed: %v", err)
	}
	if w[RuleSameCategory] != 5 {
		t.Errorf("same_category = %d, want 5", w[RuleSameCategory])
	}
	if w[RuleInStockBonus] != 3 {
		t.Errorf("in_stock_bonus = %d, want 3", w[RuleInStockBonus])
	}
	// Unknown keys are kept
	if w["custom_rule"] != 8 {
		t.Errorf("custom_rule = %d, want 8", w["custom_rule"])
	}
	// Keys absent from the file still resolve through Value
	if w.Value(RuleSameCategorySameBrand) != 4 {
		t.Errorf("expected default for unlisted key, got %d", w.Value(RuleSameCategorySameBrand))
	}
}

func TestLoadWeights_MissingFile(t *testing.T) {
	if _, err := LoadWeights(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadWeights_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	if err := os.WriteFile(path, []byte("same_category: [not an int\n"), 0644); err != nil {
		t.Fatalf("write weights file: %v", err)
	}
	if _, err := LoadWeights(path); err == nil {
		t.Fatal("expected parse error")
	}
}
