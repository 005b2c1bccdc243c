package recommend

import (
	"sort"

	"github.com/swapgraph/swapgraph/pkg/rules"
	"github.com/swapgraph/swapgraph/pkg/store"
)

// ProductNotFoundError is the Error tag on the single record returned when
// a query resolves to no product. Not-found is a data value the caller
// renders, never a thrown error.
const ProductNotFoundError = "product_not_found"

// originInStockLine is the explanation on the shortcut record returned when
// the queried product itself has stock.
const originInStockLine = "Original product is in stock"

// Recommendation is one ranked substitute (or the not-found / original-in-
// stock shortcut record). Score is nil only on the shortcut record.
type Recommendation struct {
	ProductID   string   `json:"product_id,omitempty"`
	ProductName string   `json:"product_name,omitempty"`
	Score       *int     `json:"score"`
	Explanation []string `json:"explanation,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Stock       int      `json:"stock"`
	// Path shows the connecting category or brand node as
	// [origin, connector, candidate]; empty when none was found.
	Path []string `json:"path,omitempty"`

	// Error and Query are populated only on the not-found record.
	Error string `json:"error,omitempty"`
	Query string `json:"query,omitempty"`
}

// Recommend resolves query against the catalog and returns ranked, explained
// in-stock substitutes for it. It is a pure function of its inputs: the
// graph and catalog snapshots are only read, never mutated, and all
// configuration arrives through opts.
//
// The query resolves by case-insensitive substring match on catalog names
// (first match wins), then by exact product id. With OnlyInStock set and the
// resolved product in stock, a single shortcut record is returned instead of
// substitutes. Results are sorted by score descending, price ascending
// (a missing price compares as 0, which favors it; inherited behavior),
// then name ascending, and truncated to MaxResults.
func Recommend(query string, g *store.Graph, catalog *store.Snapshot, opts Options) []Recommendation {
	ApplyDefaults(&opts)

	originID, ok := catalog.Resolve(query)
	if !ok {
		return []Recommendation{{Error: ProductNotFoundError, Query: query}}
	}

	if opts.OnlyInStock {
		if rec, found := catalog.Record(originID); found && rec.Stock > 0 {
			return []Recommendation{{
				ProductID:   originID,
				ProductName: displayName(g, catalog, originID),
				Explanation: []string{originInStockLine},
				Path:        []string{originID},
			}}
		}
	}

	var results []Recommendation
	for _, candidateID := range Gather(g, originID) {
		outcome := Score(g, catalog, originID, candidateID, opts.Weights, opts.RequiredTags, opts.MaxPrice)
		if outcome.Rejected {
			continue
		}
		score := outcome.Score
		rec := Recommendation{
			ProductID:   candidateID,
			ProductName: displayName(g, catalog, candidateID),
			Score:       &score,
			Explanation: rules.FormatExplanation(outcome.Fired),
			Stock:       effectiveStock(g, catalog, candidateID),
			Path:        connectingPath(g, originID, candidateID, outcome.Fired),
		}
		if price, priceOK := effectivePrice(g, catalog, candidateID); priceOK {
			p := price
			rec.Price = &p
		}
		results = append(results, rec)
	}

	sortRecommendations(results)
	if len(results) > opts.MaxResults {
		results = results[:opts.MaxResults]
	}
	return results
}

// displayName resolves a product name: graph node first, catalog record
// second, the raw id as a last resort.
func displayName(g *store.Graph, catalog *store.Snapshot, id string) string {
	if n, ok := g.Node(id); ok && n.Name != "" {
		return n.Name
	}
	if rec, ok := catalog.Record(id); ok && rec.Name != "" {
		return rec.Name
	}
	return id
}

// connectingPath builds [origin, connector, candidate] for the result. When
// a category rule fired the connector is a shared category, or an origin
// category SIMILAR_TO-linked to one of the candidate's; a shared brand is
// the fallback. Empty when no connector exists.
func connectingPath(g *store.Graph, originID, candidateID string, fired []string) []string {
	categoryFired, brandFired := false, false
	for _, tag := range fired {
		switch tag {
		case rules.RuleSameCategorySameBrand:
			categoryFired, brandFired = true, true
		case rules.RuleSameCategory, rules.RuleSimilarCategory:
			categoryFired = true
		case rules.RuleSameBrand:
			brandFired = true
		}
	}

	if categoryFired {
		for _, cat := range neighborsOfType(g, originID, store.NodeTypeCategory) {
			if g.HasEdge(cat, candidateID) {
				return []string{originID, cat, candidateID}
			}
		}
		candCats := neighborsOfType(g, candidateID, store.NodeTypeCategory)
		for _, oc := range neighborsOfType(g, originID, store.NodeTypeCategory) {
			for _, cc := range candCats {
				if g.HasRelation(oc, cc, store.RelationSimilarTo) {
					return []string{originID, oc, candidateID}
				}
			}
		}
	}
	if categoryFired || brandFired {
		for _, brand := range neighborsOfType(g, originID, store.NodeTypeBrand) {
			if g.HasEdge(brand, candidateID) {
				return []string{originID, brand, candidateID}
			}
		}
	}
	return nil
}

func sortRecommendations(results []Recommendation) {
	priceOf := func(r Recommendation) float64 {
		if r.Price == nil {
			return 0
		}
		return *r.Price
	}
	sort.SliceStable(results, func(i, j int) bool {
		si, sj := *results[i].Score, *results[j].Score
		if si != sj {
			return si > sj
		}
		pi, pj := priceOf(results[i]), priceOf(results[j])
		if pi != pj {
			return pi < pj
		}
		return results[i].ProductName < results[j].ProductName
	})
}
