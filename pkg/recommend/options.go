// Package recommend implements candidate gathering, rule-based scoring, and
// the substitute recommendation service over a knowledge-graph snapshot.
package recommend

import "github.com/swapgraph/swapgraph/pkg/rules"

// Options configures a recommendation call.
type Options struct {
	// MaxResults caps the returned list (default: 3).
	MaxResults int

	// MaxPrice rejects candidates with a known price above it. Nil means no
	// limit; candidates with an unknown price are never rejected by it.
	MaxPrice *float64

	// RequiredTags lists attribute names every candidate must carry
	// (resolved through the "tag:" derived node id scheme).
	RequiredTags []string

	// OnlyInStock short-circuits when the queried product itself has stock:
	// the engine never recommends leaving a product that is available.
	OnlyInStock bool

	// Weights overrides the rule weight table (default: rules.DefaultWeights).
	Weights rules.Weights
}

// ApplyDefaults sets default values for unspecified options.
func ApplyDefaults(opts *Options) {
	if opts.MaxResults <= 0 {
		opts.MaxResults = 3
	}
	if opts.Weights == nil {
		opts.Weights = rules.DefaultWeights()
	}
}
