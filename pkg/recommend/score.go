package recommend

import (
	"math"

	"github.com/swapgraph/swapgraph/pkg/rules"
	"github.com/swapgraph/swapgraph/pkg/store"
)

// Reason classifies why a candidate was rejected by a hard constraint.
type Reason string

const (
	ReasonSameProduct         Reason = "same_product"
	ReasonMissingRequiredTags Reason = "missing_required_tags"
	ReasonExceedsMaxPrice     Reason = "exceeds_max_price"
	ReasonOutOfStock          Reason = "out_of_stock"
)

// Outcome is the result of evaluating the rule set against one candidate.
// A rejection is an explicit tagged state rather than a sentinel score, so
// callers branch on Rejected without inspecting numeric thresholds.
type Outcome struct {
	Score    int
	Fired    []string
	Rejected bool
	Reason   Reason
}

func rejected(reason Reason) Outcome {
	return Outcome{Rejected: true, Reason: reason}
}

// Score evaluates the fixed rule set for an (origin, candidate) pair,
// accumulating a score and the ordered fired-rule tags, with immediate
// rejection on hard constraints:
//
//  1. candidate == origin rejects outright
//  2. exactly one of same_category_same_brand / same_category / same_brand
//     (highest specificity wins)
//  3. similar_category when the pair's categories are SIMILAR_TO-linked
//     (additive with step 2)
//  4. attribute_match(n), n shared attribute nodes, weighted per match
//  5. requiredTags missing on the candidate rejects, discarding any
//     accumulated score
//  6. cheaper_or_equal when both prices are known and candidate <= origin;
//     an unknown price on either side is neutral, never an error
//  7. a known candidate price above maxPrice rejects
//  8. in_stock bonus when candidate stock > 0, rejection otherwise
//
// Effective price and stock come from the graph node when present, else the
// catalog record of the same id.
func Score(g *store.Graph, catalog *store.Snapshot, originID, candidateID string, weights rules.Weights, requiredTags []string, maxPrice *float64) Outcome {
	if weights == nil {
		weights = rules.DefaultWeights()
	}
	if candidateID == originID {
		return rejected(ReasonSameProduct)
	}

	var score int
	var fired []string

	originCats := neighborsOfType(g, originID, store.NodeTypeCategory)
	candCats := neighborsOfType(g, candidateID, store.NodeTypeCategory)
	originBrands := neighborsOfType(g, originID, store.NodeTypeBrand)
	candBrands := neighborsOfType(g, candidateID, store.NodeTypeBrand)

	sameCategory := intersects(originCats, candCats)
	sameBrand := intersects(originBrands, candBrands)
	switch {
	case sameCategory && sameBrand:
		score += weights.Value(rules.RuleSameCategorySameBrand)
		fired = append(fired, rules.RuleSameCategorySameBrand)
	case sameCategory:
		score += weights.Value(rules.RuleSameCategory)
		fired = append(fired, rules.RuleSameCategory)
	case sameBrand:
		score += weights.Value(rules.RuleSameBrand)
		fired = append(fired, rules.RuleSameBrand)
	}

similar:
	for _, oc := range originCats {
		for _, cc := range candCats {
			if g.HasRelation(oc, cc, store.RelationSimilarTo) {
				score += weights.Value(rules.RuleSimilarCategory)
				fired = append(fired, rules.RuleSimilarCategory)
				break similar
			}
		}
	}

	candAttrs := neighborSet(g, candidateID, store.NodeTypeAttribute)
	common := 0
	for _, a := range neighborsOfType(g, originID, store.NodeTypeAttribute) {
		if candAttrs[a] {
			common++
		}
	}
	if common > 0 {
		score += common * weights.Value(rules.RuleAttributeMatch)
		fired = append(fired, rules.AttributeMatchTag(common))
	}

	for _, tag := range requiredTags {
		if !candAttrs[store.AttributeNodeID(tag)] {
			return rejected(ReasonMissingRequiredTags)
		}
	}

	originPrice, originPriceOK := effectivePrice(g, catalog, originID)
	candPrice, candPriceOK := effectivePrice(g, catalog, candidateID)
	if originPriceOK && candPriceOK && candPrice <= originPrice {
		score += weights.Value(rules.RuleCheaperBonus)
		fired = append(fired, rules.TagCheaperOrEqual)
	}

	if maxPrice != nil && candPriceOK && candPrice > *maxPrice {
		return rejected(ReasonExceedsMaxPrice)
	}

	if effectiveStock(g, catalog, candidateID) > 0 {
		score += weights.Value(rules.RuleInStockBonus)
		fired = append(fired, rules.TagInStock)
	} else {
		return rejected(ReasonOutOfStock)
	}

	return Outcome{Score: score, Fired: fired}
}

func neighborsOfType(g *store.Graph, id string, t store.NodeType) []string {
	var out []string
	for _, nbr := range g.Neighbors(id) {
		if nodeType(g, nbr) == t {
			out = append(out, nbr)
		}
	}
	return out
}

func neighborSet(g *store.Graph, id string, t store.NodeType) map[string]bool {
	set := make(map[string]bool)
	for _, nbr := range g.Neighbors(id) {
		if nodeType(g, nbr) == t {
			set[nbr] = true
		}
	}
	return set
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// effectivePrice resolves a product's price: graph node value if present,
// else the catalog record. NaN counts as unknown.
func effectivePrice(g *store.Graph, catalog *store.Snapshot, id string) (float64, bool) {
	if n, ok := g.Node(id); ok && n.Price != nil && !math.IsNaN(*n.Price) {
		return *n.Price, true
	}
	if catalog != nil {
		if rec, ok := catalog.Record(id); ok && rec.Price != nil && !math.IsNaN(*rec.Price) {
			return *rec.Price, true
		}
	}
	return 0, false
}

// effectiveStock resolves a product's stock: graph node value if present,
// else the catalog record, else zero.
func effectiveStock(g *store.Graph, catalog *store.Snapshot, id string) int {
	if n, ok := g.Node(id); ok && n.Stock != nil {
		return *n.Stock
	}
	if catalog != nil {
		if rec, ok := catalog.Record(id); ok {
			return rec.Stock
		}
	}
	return 0
}
