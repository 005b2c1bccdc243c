package swapgraph

import (
	"errors"
	"strings"

	"github.com/swapgraph/swapgraph/pkg/store"
)

// Error type constants for classification
const (
	ErrTypeValidation = "validation"
	ErrTypeDatabase   = "database"
	ErrTypeNotFound   = "not_found"
	ErrTypeUnknown    = "unknown"
)

// ClassifyError inspects an error and returns its type classification.
// This enables grouping errors by category in metrics and traces.
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, store.ErrProductNotFound) || errors.Is(err, ErrNoSnapshot) {
		return ErrTypeNotFound
	}
	if errors.Is(err, store.ErrMalformedGraph) {
		return ErrTypeValidation
	}

	errStrLower := strings.ToLower(err.Error())

	// Check for database errors (SQLite specific)
	if strings.Contains(errStrLower, "sql") ||
		strings.Contains(errStrLower, "database") ||
		strings.Contains(errStrLower, "constraint") {
		return ErrTypeDatabase
	}

	// Check for validation errors
	if strings.Contains(errStrLower, "parse") ||
		strings.Contains(errStrLower, "invalid") ||
		strings.Contains(errStrLower, "unmarshal") ||
		strings.Contains(errStrLower, "unexpected end of json") ||
		strings.Contains(errStrLower, "cannot be empty") {
		return ErrTypeValidation
	}

	if strings.Contains(errStrLower, "not found") ||
		strings.Contains(errStrLower, "no such file") {
		return ErrTypeNotFound
	}

	// Default to unknown
	return ErrTypeUnknown
}
