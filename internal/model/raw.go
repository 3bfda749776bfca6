package model

import (
	"encoding/json"
	"math"
	"strings"
)

// Raw is a decoded extraction result: field name to arbitrarily nested JSON
// value. Accessors treat a field of the wrong type as absent.
type Raw map[string]any

// Has reports whether key is present and non-null.
func (r Raw) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// String returns the trimmed string at key, or "".
func (r Raw) String(key string) string {
	s, _ := r[key].(string)
	return strings.TrimSpace(s)
}

// Float returns the number at key.
func (r Raw) Float(key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Int returns the number at key truncated to an int.
func (r Raw) Int(key string) (int, bool) {
	f, ok := r.Float(key)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// Bool returns the boolean at key, false when absent.
func (r Raw) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

// Strings returns the non-empty strings of the list at key.
func (r Raw) Strings(key string) []string {
	list, _ := r[key].([]any)
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// Object returns the nested object at key, or nil.
func (r Raw) Object(key string) Raw {
	switch v := r[key].(type) {
	case map[string]any:
		return Raw(v)
	case Raw:
		return v
	default:
		return nil
	}
}

// Objects returns the objects of the list at key, skipping other values.
func (r Raw) Objects(key string) []Raw {
	list, _ := r[key].([]any)
	out := make([]Raw, 0, len(list))
	for _, v := range list {
		if m, ok := v.(map[string]any); ok {
			out = append(out, Raw(m))
		}
	}
	return out
}

// Confidence returns the clamped confidence field, 0.0 when absent.
func (r Raw) Confidence() float64 {
	c, _ := r.ConfidenceOK()
	return c
}

// ConfidenceOK returns the clamped confidence and whether it was present.
func (r Raw) ConfidenceOK() (float64, bool) {
	f, ok := r.Float("confidence")
	if !ok {
		return 0, false
	}
	return ClampConfidence(f), true
}

// ClampConfidence forces c into [0,1]; NaN becomes 0.
func ClampConfidence(c float64) float64 {
	switch {
	case math.IsNaN(c), c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}
