package logger

import (
	"time"
)

// Field keys shared by the traversal core, the loader and the CLI.
const (
	FieldComponent    = "component"
	FieldTraversal    = "traversal"
	FieldStep         = "step"
	FieldStepKind     = "step_kind"
	FieldBulk         = "bulk"
	FieldElementID    = "element_id"
	FieldLabel        = "label"
	FieldRequirements = "requirements"
	FieldOperation    = "operation"
	FieldCount        = "count"
	FieldError        = "error"
	FieldDuration     = "duration_ms"
)

// Fields pairs up alternating keys and values. A pair whose key is not a
// string is dropped, as is a trailing key without a value.
//
//	log.Info("loaded", logger.Fields("vertices", 6, "edges", 6))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields describes a failed operation.
func ErrorFields(op string, err error) map[string]interface{} {
	return map[string]interface{}{
		FieldOperation: op,
		FieldError:     err.Error(),
	}
}

// DurationFields describes a timed operation in milliseconds.
func DurationFields(op string, d time.Duration) map[string]interface{} {
	return map[string]interface{}{
		FieldOperation: op,
		FieldDuration:  d.Milliseconds(),
	}
}
