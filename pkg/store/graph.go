// Package store provides the catalog and knowledge-graph data model for swapgraph.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// NodeType classifies how a node participates in traversal and scoring.
type NodeType string

const (
	NodeTypeProduct   NodeType = "product"
	NodeTypeCategory  NodeType = "category"
	NodeTypeBrand     NodeType = "brand"
	NodeTypeAttribute NodeType = "attribute"
)

// Relation kinds carried on edges.
const (
	RelationIsA          = "IS_A"          // product <-> category
	RelationHasBrand     = "HAS_BRAND"     // product <-> brand
	RelationHasAttribute = "HAS_ATTRIBUTE" // product <-> attribute
	RelationSimilarTo    = "SIMILAR_TO"    // category <-> category
)

// Derived node id prefixes used by BuildFromCatalog. Persisted graphs must
// use the same scheme for attribute nodes so that required-tag checks can
// resolve a tag name to its node id.
const (
	categoryIDPrefix  = "cat:"
	brandIDPrefix     = "brand:"
	attributeIDPrefix = "tag:"
)

// CategoryNodeID returns the deterministic node id for a category name.
func CategoryNodeID(name string) string { return categoryIDPrefix + name }

// BrandNodeID returns the deterministic node id for a brand name.
func BrandNodeID(name string) string { return brandIDPrefix + name }

// AttributeNodeID returns the deterministic node id for a tag/attribute name.
func AttributeNodeID(tag string) string { return attributeIDPrefix + tag }

// ErrMalformedGraph indicates graph input that cannot form a valid snapshot
// (a node without an id, or an edge missing an endpoint).
var ErrMalformedGraph = errors.New("malformed graph input")

// Node is a knowledge-graph entity. Price and Stock are only populated on
// product nodes, and may be nil even there; a nil value means the catalog
// record of the same id is the source of truth.
type Node struct {
	ID    string   `json:"id"`
	Type  NodeType `json:"type"`
	Name  string   `json:"name,omitempty"`
	Price *float64 `json:"price,omitempty"`
	Stock *int     `json:"stock,omitempty"`
}

// EdgeInput is one edge entry as it appears in serialized graph input.
// Edges are undirected; Source/Target only fix the unordered pair.
type EdgeInput struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"`
}

// GraphDocument is the serialized graph shape: {nodes: [...], edges: [...]}.
type GraphDocument struct {
	Nodes []Node      `json:"nodes"`
	Edges []EdgeInput `json:"edges"`
}

// pairKey identifies an edge by its unordered endpoint pair (A <= B).
type pairKey struct {
	A, B string
}

func newPairKey(x, y string) pairKey {
	if x <= y {
		return pairKey{x, y}
	}
	return pairKey{y, x}
}

// Graph is an immutable in-memory knowledge graph. It is built once per
// catalog/graph snapshot and is safe for concurrent reads; callers owning
// catalog mutations must build a new Graph rather than editing this one.
//
// The representation is index-based (id maps and a pair-keyed edge map)
// rather than linked node objects, so category similarity cycles cannot
// create ownership cycles.
type Graph struct {
	snapshotID string
	nodes      map[string]Node
	edges      map[pairKey][]string
	adj        map[string][]string // neighbor ids in first-seen order
}

func newGraph() *Graph {
	return &Graph{
		snapshotID: uuid.New().String(),
		nodes:      make(map[string]Node),
		edges:      make(map[pairKey][]string),
		adj:        make(map[string][]string),
	}
}

// NewGraph builds a graph from explicit node and edge lists.
//
// A node without an id fails the build with ErrMalformedGraph, as does an
// edge missing an endpoint. Edges referencing node ids absent from the node
// list are tolerated: the adjacency exists, and node lookups over such ids
// simply miss.
//
// When the same unordered pair appears more than once the relations merge
// into an ordered sequence, in encounter order and without deduplication; a
// pair listed twice with the same relation carries that relation twice.
func NewGraph(nodes []Node, edges []EdgeInput) (*Graph, error) {
	g := newGraph()
	for i, n := range nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("node %d: missing id: %w", i, ErrMalformedGraph)
		}
		g.nodes[n.ID] = n
	}
	for i, e := range edges {
		if e.Source == "" || e.Target == "" {
			return nil, fmt.Errorf("edge %d (%q-%q): missing endpoint: %w", i, e.Source, e.Target, ErrMalformedGraph)
		}
		g.appendEdge(e.Source, e.Target, e.Relation)
	}
	return g, nil
}

// appendEdge records an edge, merging relations for a repeated pair.
func (g *Graph) appendEdge(source, target, relation string) {
	k := newPairKey(source, target)
	if _, exists := g.edges[k]; !exists {
		g.adj[source] = append(g.adj[source], target)
		if source != target {
			g.adj[target] = append(g.adj[target], source)
		}
	}
	g.edges[k] = append(g.edges[k], relation)
}

// setEdge records an edge only if the pair is new. BuildFromCatalog uses it
// so that a duplicated tag on one product does not duplicate the relation.
func (g *Graph) setEdge(source, target, relation string) {
	k := newPairKey(source, target)
	if _, exists := g.edges[k]; exists {
		return
	}
	g.appendEdge(source, target, relation)
}

// BuildFromCatalog derives a graph from a product catalog snapshot.
//
// Every record yields a product node carrying name/price/stock, plus
// category/brand/attribute nodes under deterministic derived ids
// ("cat:<name>", "brand:<name>", "tag:<tag>"), reused when already created.
// Repeated calls over the same catalog produce identical node and edge sets.
func BuildFromCatalog(catalog *Snapshot) *Graph {
	g := newGraph()
	for _, rec := range catalog.Records() {
		if rec.ID == "" {
			continue
		}
		stock := rec.Stock
		node := Node{ID: rec.ID, Type: NodeTypeProduct, Name: rec.Name, Stock: &stock}
		if rec.Price != nil {
			price := *rec.Price
			node.Price = &price
		}
		g.nodes[rec.ID] = node
		if _, ok := g.adj[rec.ID]; !ok {
			g.adj[rec.ID] = nil
		}

		if rec.Category != "" {
			catID := CategoryNodeID(rec.Category)
			if _, ok := g.nodes[catID]; !ok {
				g.nodes[catID] = Node{ID: catID, Type: NodeTypeCategory, Name: rec.Category}
			}
			g.setEdge(rec.ID, catID, RelationIsA)
		}
		if rec.Brand != "" {
			brandID := BrandNodeID(rec.Brand)
			if _, ok := g.nodes[brandID]; !ok {
				g.nodes[brandID] = Node{ID: brandID, Type: NodeTypeBrand, Name: rec.Brand}
			}
			g.setEdge(rec.ID, brandID, RelationHasBrand)
		}
		for _, tag := range rec.Tags {
			if tag == "" {
				continue
			}
			tagID := AttributeNodeID(tag)
			if _, ok := g.nodes[tagID]; !ok {
				g.nodes[tagID] = Node{ID: tagID, Type: NodeTypeAttribute, Name: tag}
			}
			g.setEdge(rec.ID, tagID, RelationHasAttribute)
		}
	}
	return g
}

// SnapshotID returns the unique id assigned to this graph build.
func (g *Graph) SnapshotID() string { return g.snapshotID }

// Node returns the node for an id. The second return is false for ids only
// referenced by edges (their attribute set is empty).
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Neighbors returns the ids directly adjacent to id, in first-seen order.
// Unknown ids yield an empty result.
func (g *Graph) Neighbors(id string) []string {
	adj := g.adj[id]
	if len(adj) == 0 {
		return nil
	}
	out := make([]string, len(adj))
	copy(out, adj)
	return out
}

// Relations returns the ordered relation sequence on the edge between a and
// b, or nil when no edge exists.
func (g *Graph) Relations(a, b string) []string {
	rels := g.edges[newPairKey(a, b)]
	if len(rels) == 0 {
		return nil
	}
	out := make([]string, len(rels))
	copy(out, rels)
	return out
}

// HasEdge reports whether any edge connects a and b.
func (g *Graph) HasEdge(a, b string) bool {
	_, ok := g.edges[newPairKey(a, b)]
	return ok
}

// HasRelation reports whether the edge between a and b carries relation.
func (g *Graph) HasRelation(a, b, relation string) bool {
	for _, r := range g.edges[newPairKey(a, b)] {
		if r == relation {
			return true
		}
	}
	return false
}

// NodeCount returns the number of nodes with attributes (ids that only
// appear as edge endpoints are not counted).
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of distinct unordered pairs with an edge.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Nodes returns all nodes sorted by id, for deterministic export.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Edges returns one EdgeInput per relation, in relation merge order within a
// pair and sorted by pair key across pairs, for deterministic export.
func (g *Graph) Edges() []EdgeInput {
	keys := make([]pairKey, 0, len(g.edges))
	for k := range g.edges {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].A != keys[j].A {
			return keys[i].A < keys[j].A
		}
		return keys[i].B < keys[j].B
	})
	var out []EdgeInput
	for _, k := range keys {
		for _, rel := range g.edges[k] {
			out = append(out, EdgeInput{Source: k.A, Target: k.B, Relation: rel})
		}
	}
	return out
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func stripBOM(b []byte) []byte {
	return bytes.TrimPrefix(b, utf8BOM)
}

// ReadGraph parses a serialized graph ({nodes, edges} JSON) from r and
// builds a Graph. A UTF-8 BOM at the start of the stream is tolerated.
func ReadGraph(r io.Reader) (*Graph, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read graph: %w", err)
	}
	var doc GraphDocument
	if err := json.Unmarshal(stripBOM(raw), &doc); err != nil {
		return nil, fmt.Errorf("parse graph: %w", err)
	}
	return NewGraph(doc.Nodes, doc.Edges)
}

// LoadGraphFile reads a graph JSON file from disk.
func LoadGraphFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open graph file: %w", err)
	}
	defer f.Close()
	return ReadGraph(f)
}

// WriteGraph serializes g to w as a {nodes, edges} JSON document with
// deterministic ordering.
func WriteGraph(w io.Writer, g *Graph) error {
	doc := GraphDocument{Nodes: g.Nodes(), Edges: g.Edges()}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal graph: %w", err)
	}
	if _, err := w.Write(append(raw, '\n')); err != nil {
		return fmt.Errorf("write graph: %w", err)
	}
	return nil
}
