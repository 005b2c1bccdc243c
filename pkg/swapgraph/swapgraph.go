// Package swapgraph provides a knowledge-graph substitute recommender for product catalogs
package swapgraph

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/swapgraph/swapgraph/pkg/metrics"
	"github.com/swapgraph/swapgraph/pkg/recommend"
	"github.com/swapgraph/swapgraph/pkg/rules"
	"github.com/swapgraph/swapgraph/pkg/store"
	"github.com/swapgraph/swapgraph/pkg/trace"
)

// ErrNoSnapshot is returned when an operation runs before LoadSnapshot
// (or after Invalidate) and no catalog/graph snapshot is available.
var ErrNoSnapshot = errors.New("no snapshot loaded")

// Config holds configuration for the Swapgraph system
type Config struct {
	// ProductsPath is the catalog JSON file (required for LoadSnapshot)
	ProductsPath string

	// GraphPath is an explicit graph JSON file. When empty, the graph is
	// derived from the catalog records.
	GraphPath string

	// WeightsPath is an optional YAML file overriding the rule weights
	WeightsPath string

	// Metrics collector (default: no-op)
	Metrics metrics.Collector

	// Tracer exports operation traces (optional)
	Tracer trace.Exporter
}

// Snapshot pairs an immutable graph with the catalog it was built against
// and the rule weights loaded alongside them. Everything is read-only once
// published; a reload swaps the whole triple, so an in-flight operation
// never pairs a new graph with stale weights. A nil Weights means the
// canonical defaults.
type Snapshot struct {
	Graph   *store.Graph
	Catalog *store.Snapshot
	Weights rules.Weights
}

// Swapgraph is the main entry point for the recommender
type Swapgraph struct {
	config   Config
	metrics  metrics.Collector
	tracer   trace.Exporter
	snapshot atomic.Pointer[Snapshot]
}

// New creates a new Swapgraph instance
func New(cfg Config) (*Swapgraph, error) {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.DefaultCollector()
	}

	return &Swapgraph{
		config:  cfg,
		metrics: cfg.Metrics,
		tracer:  cfg.Tracer,
	}, nil
}

// LoadSnapshot reads the catalog, graph (when configured), and weights from
// disk and publishes them as one atomic snapshot. Safe to call again to pick
// up file changes; in-flight operations keep the snapshot they started with.
func (s *Swapgraph) LoadSnapshot(ctx context.Context) error {
	start := time.Now()
	opTrace := newTrace()

	timer := newSpanTimer("read-catalog", opTrace, true)
	catalog, err := store.LoadCatalogFile(s.config.ProductsPath)
	timer.finish(err == nil, err, nil)
	if err != nil {
		s.recordOperation(ctx, "load-snapshot", "error", start, opTrace, err)
		return fmt.Errorf("load catalog: %w", err)
	}

	var g *store.Graph
	if s.config.GraphPath != "" {
		timer = newSpanTimer("read-graph", opTrace, true)
		g, err = store.LoadGraphFile(s.config.GraphPath)
		timer.finish(err == nil, err, nil)
		if err != nil {
			s.recordOperation(ctx, "load-snapshot", "error", start, opTrace, err)
			return fmt.Errorf("load graph: %w", err)
		}
	} else {
		timer = newSpanTimer("derive-graph", opTrace, true)
		g = store.BuildFromCatalog(catalog)
		timer.finish(true, nil, map[string]int64{
			"nodeCount": int64(g.NodeCount()),
			"edgeCount": int64(g.EdgeCount()),
		})
	}

	weights := rules.DefaultWeights()
	if s.config.WeightsPath != "" {
		weights, err = rules.LoadWeights(s.config.WeightsPath)
		if err != nil {
			s.recordOperation(ctx, "load-snapshot", "error", start, opTrace, err)
			return fmt.Errorf("load weights: %w", err)
		}
	}

	s.snapshot.Store(&Snapshot{Graph: g, Catalog: catalog, Weights: weights})

	s.metrics.SetStorageCount(ctx, "products", int64(catalog.Len()))
	s.metrics.SetStorageCount(ctx, "nodes", int64(g.NodeCount()))
	s.metrics.SetStorageCount(ctx, "edges", int64(g.EdgeCount()))
	s.recordOperation(ctx, "load-snapshot", "success", start, opTrace, nil)

	return nil
}

// SetSnapshot publishes a snapshot built by the caller, bypassing file
// loading. Useful for tests and for callers that assemble graphs in memory.
func (s *Swapgraph) SetSnapshot(snap *Snapshot) {
	s.snapshot.Store(snap)
}

// Snapshot returns the currently published snapshot, or nil when none is
// loaded.
func (s *Swapgraph) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// Invalidate drops the published snapshot. Subsequent operations fail with
// ErrNoSnapshot until LoadSnapshot or SetSnapshot runs again.
func (s *Swapgraph) Invalidate() {
	s.snapshot.Store(nil)
}

// Recommend resolves query against the current snapshot and returns ranked
// substitute recommendations. Options left at their zero value fall back to
// defaults; a nil Weights uses the weights loaded with the snapshot.
func (s *Swapgraph) Recommend(ctx context.Context, query string, opts Options) ([]Recommendation, error) {
	start := time.Now()
	opTrace := newTrace()

	snap := s.snapshot.Load()
	if snap == nil {
		s.recordOperation(ctx, "recommend", "error", start, opTrace, ErrNoSnapshot)
		return nil, ErrNoSnapshot
	}

	if opts.Weights == nil {
		opts.Weights = snap.Weights
	}

	timer := newSpanTimer("recommend", opTrace, true)
	results := recommend.Recommend(query, snap.Graph, snap.Catalog, opts)
	timer.finish(true, nil, map[string]int64{"resultCount": int64(len(results))})

	status := "success"
	if len(results) == 1 && results[0].Error == recommend.ProductNotFoundError {
		status = "not_found"
	}
	s.recordOperation(ctx, "recommend", status, start, opTrace, nil)

	return results, nil
}

// recordOperation emits metrics and, when a tracer is configured, a trace
// record for a completed operation. Export failures are ignored so that
// observability never breaks the operation itself.
func (s *Swapgraph) recordOperation(ctx context.Context, operation, status string, start time.Time, opTrace *OperationTrace, err error) {
	durationMs := time.Since(start).Milliseconds()

	s.metrics.RecordOperation(ctx, operation, status, durationMs)
	for _, span := range opTrace.Spans {
		s.metrics.RecordStage(ctx, operation, span.Name, span.DurationMs)
	}
	if err != nil {
		s.metrics.RecordError(ctx, operation, ClassifyError(err))
	}

	if s.tracer == nil {
		return
	}

	record := &trace.TraceRecord{
		Timestamp:   start,
		OperationID: uuid.NewString(),
		Operation:   operation,
		DurationMs:  durationMs,
		Status:      status,
	}
	for _, span := range opTrace.Spans {
		record.Spans = append(record.Spans, trace.SpanRecord{
			Name:       span.Name,
			DurationMs: span.DurationMs,
			OK:         span.OK,
			Counters:   span.Counters,
		})
	}
	if err != nil {
		record.ErrorType = ClassifyError(err)
	}

	_ = s.tracer.Export(ctx, record)
}
