//go:build metrics

package metrics

// DefaultCollector returns the collector used when a caller configures none.
// With the 'metrics' build tag that is the Prometheus collector.
func DefaultCollector() Collector {
	return NewCollector()
}
