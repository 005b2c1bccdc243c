//go:build !metrics

package metrics

import (
	"context"
	"testing"
)

func TestNoopCollector(t *testing.T) {
	// The no-op collector satisfies the interface and never panics
	var c Collector = NewNoopCollector()
	ctx := context.Background()

	c.RecordOperation(ctx, "recommend", "success", 1)
	c.RecordStage(ctx, "recommend", "recommend", 1)
	c.RecordError(ctx, "recommend", "unknown")
	c.SetStorageCount(ctx, "products", 1)
}

func TestDefaultCollector(t *testing.T) {
	if _, ok := DefaultCollector().(*NoopCollector); !ok {
		t.Errorf("expected the no-op collector in the default build, got %T", DefaultCollector())
	}
}
