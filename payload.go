package transcript

import "fmt"

// The service's JSON payloads are decoded into map[string]any. A field can be
// an object, a list, a scalar, or absent depending on endpoint and API
// generation, so access goes through these helpers instead of ad-hoc type
// assertions at every call site.

// asObject returns v as a JSON object.
func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// asList returns v as a JSON array.
func asList(v any) ([]any, bool) {
	l, ok := v.([]any)
	return l, ok
}

// stringField reads a string field, returning "" when absent or not a string.
func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// stringFieldDefault reads a string field, returning def when the key is
// absent or holds a non-string value.
func stringFieldDefault(m map[string]any, key, def string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return def
}

// floatField reads a numeric field. Absent fields read as 0; a present field
// of a non-numeric type is a type error so that upstream schema drift
// surfaces instead of silently becoming zero.
func floatField(m map[string]any, key string) (float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("field %q: expected number, got %T", key, v)
}

// intField reads an integer field leniently: absent or non-numeric reads as 0.
func intField(m map[string]any, key string) int {
	switch n := m[key].(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	}
	return 0
}
