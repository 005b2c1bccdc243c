//go:build !tracing

package trace

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestNoopExporter(t *testing.T) {
	dir := t.TempDir()
	tracePath := filepath.Join(dir, "traces.jsonl")

	exporter, err := NewFileExporter(tracePath)
	if err != nil {
		t.Fatalf("NewFileExporter failed: %v", err)
	}

	if err := exporter.Export(context.Background(), &TraceRecord{Operation: "recommend"}); err != nil {
		t.Errorf("Export failed: %v", err)
	}
	if err := exporter.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}

	// Nothing is written in the default build
	if _, err := os.Stat(tracePath); !os.IsNotExist(err) {
		t.Errorf("expected no trace file, stat err = %v", err)
	}
}
