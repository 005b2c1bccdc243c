//go:build !metrics

package metrics

// DefaultCollector returns the collector used when a caller configures none.
// Without the 'metrics' build tag that is the no-op collector.
func DefaultCollector() Collector {
	return NewNoopCollector()
}
