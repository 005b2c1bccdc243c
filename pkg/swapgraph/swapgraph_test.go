package swapgraph

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/swapgraph/swapgraph/pkg/store"
	"github.com/swapgraph/swapgraph/pkg/trace"
)

const testCatalog = `[
	{"id": "p1", "name": "Amul Milk", "price": 50, "stock": 0, "category": "dairy", "brand": "Amul"},
	{"id": "p2", "name": "Amul Toned Milk", "price": 45, "stock": 5, "category": "dairy", "brand": "Amul"},
	{"id": "p3", "name": "Mother Dairy Milk", "price": 60, "stock": 3, "category": "dairy", "brand": "Mother Dairy"}
]`

func writeTestCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.json")
	if err := os.WriteFile(path, []byte(testCatalog), 0644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

// recordingExporter captures exported trace records for assertions.
type recordingExporter struct {
	mu      sync.Mutex
	records []*trace.TraceRecord
}

func (r *recordingExporter) Export(ctx context.Context, record *trace.TraceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

func (r *recordingExporter) Close() error { return nil }

func TestLoadSnapshot_DerivesGraph(t *testing.T) {
	sg, err := New(Config{ProductsPath: writeTestCatalog(t)})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := sg.LoadSnapshot(context.Background()); err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	snap := sg.Snapshot()
	if snap == nil {
		t.Fatal("expected a published snapshot")
	}
	if snap.Catalog.Len() != 3 {
		t.Errorf("expected 3 catalog records, got %d", snap.Catalog.Len())
	}
	// 3 products + cat:dairy + brand:Amul + brand:Mother Dairy
	if snap.Graph.NodeCount() != 6 {
		t.Errorf("expected 6 graph nodes, got %d", snap.Graph.NodeCount())
	}
}

func TestLoadSnapshot_MissingCatalog(t *testing.T) {
	sg, _ := New(Config{ProductsPath: filepath.Join(t.TempDir(), "nope.json")})
	if err := sg.LoadSnapshot(context.Background()); err == nil {
		t.Fatal("expected error for missing catalog file")
	}
	if sg.Snapshot() != nil {
		t.Error("failed load must not publish a snapshot")
	}
}

func TestRecommend_EndToEnd(t *testing.T) {
	exporter := &recordingExporter{}
	sg, err := New(Config{ProductsPath: writeTestCatalog(t), Tracer: exporter})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := sg.LoadSnapshot(context.Background()); err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	results, err := sg.Recommend(context.Background(), "amul milk", Options{OnlyInStock: true})
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if len(results) != 2 || results[0].ProductID != "p2" {
		t.Fatalf("unexpected results: %+v", results)
	}
	if results[0].Score == nil || *results[0].Score != 7 {
		t.Errorf("p2 score = %v, want 7", results[0].Score)
	}

	// One trace per completed operation (load + recommend), with unique ids
	exporter.mu.Lock()
	defer exporter.mu.Unlock()
	if len(exporter.records) != 2 {
		t.Fatalf("expected 2 trace records, got %d", len(exporter.records))
	}
	rec := exporter.records[1]
	if rec.Operation != "recommend" || rec.Status != "success" {
		t.Errorf("unexpected trace record: %+v", rec)
	}
	if rec.OperationID == "" || rec.OperationID == exporter.records[0].OperationID {
		t.Error("expected distinct non-empty operation ids")
	}
}

func TestRecommend_NotFoundStatus(t *testing.T) {
	exporter := &recordingExporter{}
	sg, _ := New(Config{ProductsPath: writeTestCatalog(t), Tracer: exporter})
	if err := sg.LoadSnapshot(context.Background()); err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	results, err := sg.Recommend(context.Background(), "unobtainium", Options{})
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if len(results) != 1 || results[0].Error == "" {
		t.Fatalf("expected not-found record, got %+v", results)
	}

	exporter.mu.Lock()
	defer exporter.mu.Unlock()
	last := exporter.records[len(exporter.records)-1]
	if last.Status != "not_found" {
		t.Errorf("expected not_found trace status, got %q", last.Status)
	}
}

func TestRecommend_NoSnapshot(t *testing.T) {
	sg, _ := New(Config{})
	if _, err := sg.Recommend(context.Background(), "milk", Options{}); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("expected ErrNoSnapshot, got %v", err)
	}
}

func TestInvalidate(t *testing.T) {
	sg, _ := New(Config{ProductsPath: writeTestCatalog(t)})
	if err := sg.LoadSnapshot(context.Background()); err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	sg.Invalidate()
	if sg.Snapshot() != nil {
		t.Error("expected nil snapshot after Invalidate")
	}
	if _, err := sg.Recommend(context.Background(), "milk", Options{}); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("expected ErrNoSnapshot after Invalidate, got %v", err)
	}
}

func TestSetSnapshot(t *testing.T) {
	sg, _ := New(Config{})

	catalog := store.NewSnapshot([]store.Record{
		{ID: "p1", Name: "Milk", Category: "dairy"},
		{ID: "p2", Name: "Cream", Stock: 2, Category: "dairy"},
	})
	sg.SetSnapshot(&Snapshot{Graph: store.BuildFromCatalog(catalog), Catalog: catalog})

	results, err := sg.Recommend(context.Background(), "milk", Options{})
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if len(results) != 1 || results[0].ProductID != "p2" {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestRecommend_DuringReload(t *testing.T) {
	// Reloads must never race with in-flight recommendations: the snapshot
	// (graph, catalog, weights) swaps as one unit.
	sg, err := New(Config{ProductsPath: writeTestCatalog(t)})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := sg.LoadSnapshot(context.Background()); err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 25; i++ {
			if err := sg.LoadSnapshot(context.Background()); err != nil {
				t.Errorf("concurrent LoadSnapshot failed: %v", err)
				return
			}
		}
	}()

	for i := 0; i < 100; i++ {
		results, err := sg.Recommend(context.Background(), "amul milk", Options{OnlyInStock: true})
		if err != nil {
			t.Fatalf("Recommend during reload failed: %v", err)
		}
		if len(results) != 2 || results[0].Score == nil || *results[0].Score != 7 {
			t.Fatalf("unexpected results during reload: %+v", results)
		}
	}
	wg.Wait()
}

func TestSetSnapshot_CarriesWeights(t *testing.T) {
	sg, _ := New(Config{})

	catalog := store.NewSnapshot([]store.Record{
		{ID: "p1", Name: "Milk", Category: "dairy"},
		{ID: "p2", Name: "Cream", Stock: 2, Category: "dairy"},
	})
	sg.SetSnapshot(&Snapshot{
		Graph:   store.BuildFromCatalog(catalog),
		Catalog: catalog,
		Weights: Weights{"same_category": 20},
	})

	results, err := sg.Recommend(context.Background(), "milk", Options{})
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	// same_category(20) + in_stock(2, default fallback)
	if len(results) != 1 || results[0].Score == nil || *results[0].Score != 22 {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestLoadSnapshot_WeightsFile(t *testing.T) {
	dir := t.TempDir()
	productsPath := filepath.Join(dir, "products.json")
	if err := os.WriteFile(productsPath, []byte(testCatalog), 0644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	weightsPath := filepath.Join(dir, "weights.yaml")
	if err := os.WriteFile(weightsPath, []byte("same_category: 50\n"), 0644); err != nil {
		t.Fatalf("write weights: %v", err)
	}

	sg, _ := New(Config{ProductsPath: productsPath, WeightsPath: weightsPath})
	if err := sg.LoadSnapshot(context.Background()); err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	results, err := sg.Recommend(context.Background(), "mother dairy", Options{})
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	// p1 is out of stock, so only p2 remains; boosted same_category weight
	// dominates its score through the Value fallback chain.
	if len(results) != 1 || results[0].ProductID != "p2" {
		t.Fatalf("unexpected results: %+v", results)
	}
	// same_category_same_brand does not fire for a different brand, so the
	// boosted same_category(50) + cheaper(1) + in_stock(2) applies.
	if results[0].Score == nil || *results[0].Score != 53 {
		t.Errorf("score = %v, want 53", results[0].Score)
	}
}
