package domain

import (
	"math"
	"strings"
)

// Field is a named numeric value attached to a stored object. The wire
// protocol supports numeric field values only.
type Field struct {
	Name  string
	Value float64
}

// Valid reports whether the field can be emitted: non-empty trimmed name
// and a finite value.
func (f Field) Valid() bool {
	if strings.TrimSpace(f.Name) == "" {
		return false
	}
	return !math.IsNaN(f.Value) && !math.IsInf(f.Value, 0)
}

// NormalizeFields drops fields with empty names or non-finite values and
// keeps only the first occurrence of each name, preserving order.
func NormalizeFields(fields []Field) []Field {
	out := make([]Field, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if !f.Valid() {
			continue
		}
		name := strings.TrimSpace(f.Name)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, Field{Name: name, Value: f.Value})
	}
	return out
}
