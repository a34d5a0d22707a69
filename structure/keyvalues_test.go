package structure

import (
	"testing"

	"github.com/kbukum/graphkit/errors"
)

func TestValidateKeyValues(t *testing.T) {
	type point struct{ X, Y int }
	tests := []struct {
		name    string
		kvs     []any
		wantErr bool
	}{
		{"empty", nil, false},
		{"properties and tokens", []any{"name", "marko", T.Label, "person", T.ID, int64(1)}, false},
		{"nil id", []any{T.ID, nil}, false},
		{"struct id", []any{T.ID, point{1, 2}}, false},
		{"odd length", []any{"name"}, true},
		{"empty key", []any{"", 1}, true},
		{"slice id", []any{T.ID, []int{1}}, true},
		{"map id", []any{T.ID, map[string]int{"a": 1}}, true},
		{"slice property value", []any{"tags", []string{"a"}}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateKeyValues(tc.kvs...)
			if !tc.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.HasCode(err, errors.ErrCodeInvalidArgument) {
				t.Errorf("expected INVALID_ARGUMENT, got %v", err)
			}
		})
	}
}
