package domain

import (
	"encoding/json"
	"strconv"
)

// RawPost is one item as the scraping actor returned it. The actor's schema
// drifts, so fields are accessed defensively through the typed getters.
type RawPost map[string]any

// StringVal returns the value under key coerced to a string, or "" when the
// key is absent or not string-like.
func (r RawPost) StringVal(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	default:
		return ""
	}
}

// Int64Val returns the value under key as epoch-style integer. The second
// return reports whether a usable number was found.
func (r RawPost) Int64Val(key string) (int64, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return int64(t), true
	case int64:
		return t, true
	case int:
		return int64(t), true
	case json.Number:
		n, err := t.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// Maps returns the value under key as a list of objects, e.g. the actor's
// text_extra annotations. Non-object entries are dropped.
func (r RawPost) Maps(key string) []RawPost {
	v, ok := r[key]
	if !ok || v == nil {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]RawPost, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, RawPost(m))
		}
	}
	return out
}
