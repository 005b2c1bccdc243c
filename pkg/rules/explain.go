package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ruleSentences maps each known fired-rule tag to its explanation line.
var ruleSentences = map[string]string{
	RuleSameCategorySameBrand: "Same category and same brand",
	RuleSameCategory:          "Same category",
	RuleSimilarCategory:       "Category is similar (fallback)",
	RuleSameBrand:             "Same brand",
	RuleAttributeMatch:        "Shares important attributes",
	TagCheaperOrEqual:         "Cheaper or equal price than original",
	TagInStock:                "Available (in stock)",
}

// rulePriority fixes the ordering of explanation lines.
var rulePriority = []string{
	RuleSameCategorySameBrand,
	RuleSameCategory,
	RuleSameBrand,
	RuleSimilarCategory,
	RuleAttributeMatch,
	TagCheaperOrEqual,
	TagInStock,
}

var attributeCountRe = regexp.MustCompile(`\((\d+)\)`)

// AttributeMatchTag builds the fired-rule tag for n shared attributes,
// e.g. "attribute_match(2)".
func AttributeMatchTag(n int) string {
	return fmt.Sprintf("%s(%d)", RuleAttributeMatch, n)
}

// FormatExplanation converts fired-rule tags into ordered human-readable
// lines. Non-attribute tags come first, ordered by the fixed priority
// sequence; tags the formatter does not know are appended verbatim after the
// known ones, in encounter order. Attribute-match tags are rendered last as
// "Shares N attribute(s)" using the captured count.
func FormatExplanation(fired []string) []string {
	var attrTags, other []string
	for _, tag := range fired {
		if strings.HasPrefix(tag, RuleAttributeMatch) {
			attrTags = append(attrTags, tag)
		} else {
			other = append(other, tag)
		}
	}

	prio := func(tag string) int {
		for i, p := range rulePriority {
			if p == tag {
				return i
			}
		}
		return len(rulePriority)
	}
	sort.SliceStable(other, func(i, j int) bool { return prio(other[i]) < prio(other[j]) })

	var lines []string
	for _, tag := range other {
		if sentence, ok := ruleSentences[tag]; ok {
			lines = append(lines, sentence)
		} else {
			lines = append(lines, tag)
		}
	}
	for _, tag := range attrTags {
		if m := attributeCountRe.FindStringSubmatch(tag); m != nil {
			lines = append(lines, fmt.Sprintf("Shares %s attribute(s)", m[1]))
		} else {
			lines = append(lines, "Shares attributes")
		}
	}
	return lines
}
