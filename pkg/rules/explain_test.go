package rules

import (
	"reflect"
	"testing"
)

func TestFormatExplanation_Ordering(t *testing.T) {
	// Fired in arbitrary order; output follows the fixed priority
	fired := []string{TagInStock, TagCheaperOrEqual, RuleSameCategorySameBrand}
	got := FormatExplanation(fired)
	want := []string{
		"Same category and same brand",
		"Cheaper or equal price than original",
		"Available (in stock)",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FormatExplanation = %v, want %v", got, want)
	}
}

func TestFormatExplanation_AttributeCount(t *testing.T) {
	got := FormatExplanation([]string{AttributeMatchTag(2), RuleSameCategory})
	want := []string{"Same category", "Shares 2 attribute(s)"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FormatExplanation = %v, want %v", got, want)
	}
}

func TestFormatExplanation_AttributeWithoutCount(t *testing.T) {
	got := FormatExplanation([]string{RuleAttributeMatch})
	want := []string{"Shares attributes"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FormatExplanation = %v, want %v", got, want)
	}
}

func TestFormatExplanation_UnknownTagVerbatim(t *testing.T) {
	got := FormatExplanation([]string{"seasonal_promo", RuleSameBrand})
	want := []string{"Same brand", "seasonal_promo"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FormatExplanation = %v, want %v", got, want)
	}
}

func TestFormatExplanation_Empty(t *testing.T) {
	if got := FormatExplanation(nil); len(got) != 0 {
		t.Errorf("expected no lines, got %v", got)
	}
}

func TestAttributeMatchTag(t *testing.T) {
	if got := AttributeMatchTag(3); got != "attribute_match(3)" {
		t.Errorf("AttributeMatchTag(3) = %q", got)
	}
}
