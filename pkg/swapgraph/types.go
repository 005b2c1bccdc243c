package swapgraph

import (
	"github.com/swapgraph/swapgraph/pkg/recommend"
	"github.com/swapgraph/swapgraph/pkg/rules"
	"github.com/swapgraph/swapgraph/pkg/store"
)

// Type re-exports for caller convenience

// Recommendation is re-exported from recommend package
type Recommendation = recommend.Recommendation

// Options is re-exported from recommend package
type Options = recommend.Options

// Weights is re-exported from rules package
type Weights = rules.Weights

// Node is re-exported from store package
type Node = store.Node

// Graph is re-exported from store package
type Graph = store.Graph

// Record is re-exported from store package
type Record = store.Record

// Catalog is re-exported from store package
type Catalog = store.Snapshot
