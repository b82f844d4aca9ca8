package attribute

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Normalize canonicalizes a where_used value into a flat list of non-empty
// strings. The value may arrive as a native list, a single string, a
// JSON-encoded string, or a JSON-encoded string containing further
// JSON-encoded strings (an artifact of multipart form submission by older
// clients). Nested lists are spliced in place, preserving order; falsy
// elements (null, false, 0, empty strings) are dropped.
//
// Normalize is idempotent: applying it to its own output yields the same output.
func Normalize(v any) []string {
	out := []string{}
	flattenInto(&out, v)
	return out
}

// NormalizeStrings canonicalizes a list that is already []string, de-nesting
// any elements that are themselves JSON-encoded lists.
func NormalizeStrings(values []string) []string {
	out := []string{}
	for _, v := range values {
		flattenInto(&out, v)
	}
	return out
}

func flattenInto(out *[]string, v any) {
	switch t := v.(type) {
	case nil:
		return
	case []any:
		for _, el := range t {
			flattenInto(out, el)
		}
	case []string:
		for _, el := range t {
			flattenInto(out, el)
		}
	case string:
		flattenString(out, t)
	case bool:
		if t {
			*out = append(*out, "true")
		}
	case float64:
		if t != 0 {
			*out = append(*out, strconv.FormatFloat(t, 'f', -1, 64))
		}
	case json.Number:
		if t.String() != "0" {
			*out = append(*out, t.String())
		}
	}
}

func flattenString(out *[]string, s string) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return
	}

	if looksEncoded(trimmed) {
		var parsed any
		if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
			switch p := parsed.(type) {
			case []any:
				flattenInto(out, p)
				return
			case string:
				// Double-encoded payload: only unwrap further if the inner
				// string still looks like JSON, otherwise keep the original.
				if looksEncoded(strings.TrimSpace(p)) {
					flattenString(out, p)
					return
				}
			}
		}
	}

	*out = append(*out, s)
}

// looksEncoded reports whether a string plausibly carries a JSON payload.
func looksEncoded(s string) bool {
	return strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{") || strings.HasPrefix(s, `"`)
}

// Encode renders a normalized list as the JSON string persisted in the
// where_used column.
func Encode(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		// []string cannot fail to marshal; keep the column well-formed anyway.
		return "[]"
	}
	return string(b)
}

// Decode reads a persisted where_used column back into a normalized list.
// Legacy malformed rows (plain strings, double-encoded lists) self-heal into
// a clean list on read.
func Decode(stored string) []string {
	return Normalize(stored)
}
