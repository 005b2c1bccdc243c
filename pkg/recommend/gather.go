package recommend

import "github.com/swapgraph/swapgraph/pkg/store"

// Gather enumerates candidate product ids reachable from origin within two
// relation hops:
//
//   - category neighbor: every other product in that category, plus the
//     products of any category linked to it by a SIMILAR_TO edge (the
//     two-hop fallback through category similarity)
//   - brand or attribute neighbor: every product sharing it
//   - direct product neighbor: the product itself
//
// Duplicates are removed keeping first-seen order and the origin is always
// excluded. Gathering performs no scoring.
func Gather(g *store.Graph, originID string) []string {
	seen := make(map[string]bool)
	var candidates []string
	add := func(id string) {
		if id == originID || seen[id] {
			return
		}
		seen[id] = true
		candidates = append(candidates, id)
	}
	addProductsOf := func(hubID string) {
		for _, id := range g.Neighbors(hubID) {
			if nodeType(g, id) == store.NodeTypeProduct {
				add(id)
			}
		}
	}

	for _, nbr := range g.Neighbors(originID) {
		switch nodeType(g, nbr) {
		case store.NodeTypeCategory:
			addProductsOf(nbr)
			for _, other := range g.Neighbors(nbr) {
				if other == originID || nodeType(g, other) != store.NodeTypeCategory {
					continue
				}
				if g.HasRelation(nbr, other, store.RelationSimilarTo) {
					addProductsOf(other)
				}
			}
		case store.NodeTypeBrand, store.NodeTypeAttribute:
			addProductsOf(nbr)
		case store.NodeTypeProduct:
			add(nbr)
		}
	}
	return candidates
}

// nodeType returns the type of a node, or "" for ids known only through
// edges (their attribute set is empty, so they never match a product).
func nodeType(g *store.Graph, id string) store.NodeType {
	n, _ := g.Node(id)
	return n.Type
}
