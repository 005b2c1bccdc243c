package swapgraph

import (
	"errors"
	"fmt"
	"testing"

	"github.com/swapgraph/swapgraph/pkg/store"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"product not found sentinel", store.ErrProductNotFound, ErrTypeNotFound},
		{"wrapped product not found", fmt.Errorf("lookup: %w", store.ErrProductNotFound), ErrTypeNotFound},
		{"no snapshot", ErrNoSnapshot, ErrTypeNotFound},
		{"malformed graph", fmt.Errorf("build: %w", store.ErrMalformedGraph), ErrTypeValidation},
		{"sql error", errors.New("sql: no rows in result set"), ErrTypeDatabase},
		{"constraint", errors.New("UNIQUE constraint failed"), ErrTypeDatabase},
		{"parse error", errors.New("parse catalog: unexpected token"), ErrTypeValidation},
		{"missing file", errors.New("open products.json: no such file or directory"), ErrTypeNotFound},
		{"anything else", errors.New("boom"), ErrTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
