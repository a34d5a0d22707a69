package structure

import (
	"fmt"
	"reflect"

	"github.com/kbukum/graphkit/errors"
)

// ValidateKeyValues checks that keyValues is a flattened key,value sequence
// whose keys are property names or reserved tokens.
func ValidateKeyValues(keyValues ...any) error {
	if len(keyValues)%2 != 0 {
		return errors.InvalidArgument("keyValues", "the provided key/value sequence must have an even length")
	}
	for i := 0; i < len(keyValues); i += 2 {
		switch k := keyValues[i].(type) {
		case Token:
			if k == T.ID && !validIDValue(keyValues[i+1]) {
				return errors.InvalidArgument("keyValues",
					fmt.Sprintf("id must be a comparable value, got %T", keyValues[i+1]))
			}
		case string:
			if k == "" {
				return errors.InvalidArgument("keyValues", "property keys must not be empty")
			}
		default:
			return errors.InvalidArgument("keyValues",
				fmt.Sprintf("key at position %d must be a string or a token, got %T", i, keyValues[i]))
		}
	}
	return nil
}

// validIDValue reports whether id can key a map. A nil id asks the graph to
// assign one.
func validIDValue(id any) bool {
	return id == nil || reflect.ValueOf(id).Comparable()
}

// LabelValue returns the value paired with T.Label, if present.
func LabelValue(keyValues ...any) (string, bool) {
	v, ok := tokenValue(T.Label, keyValues)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// IDValue returns the value paired with T.ID, if present.
func IDValue(keyValues ...any) (any, bool) {
	return tokenValue(T.ID, keyValues)
}

// PropertyKeyValues returns keyValues without reserved-token pairs.
func PropertyKeyValues(keyValues ...any) []any {
	out := make([]any, 0, len(keyValues))
	for i := 0; i+1 < len(keyValues); i += 2 {
		if _, ok := keyValues[i].(Token); ok {
			continue
		}
		out = append(out, keyValues[i], keyValues[i+1])
	}
	return out
}

func tokenValue(tok Token, keyValues []any) (any, bool) {
	for i := 0; i+1 < len(keyValues); i += 2 {
		if k, ok := keyValues[i].(Token); ok && k == tok {
			return keyValues[i+1], true
		}
	}
	return nil, false
}
