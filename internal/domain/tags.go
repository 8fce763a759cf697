package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// TagList is an ordered list of search tags attached to an icon.
//
// Historical clients sent tags in several shapes: a native JSON array, a
// JSON-encoded string ("[\"a\",\"b\"]"), a comma-separated string, or a bare
// scalar. ParseTags and UnmarshalJSON accept all of them and normalize to
// trimmed, non-empty strings. A list with no usable tags is nil, which
// marshals as JSON null.
type TagList []string

// ParseTags converts a raw stored tag value into a normalized TagList.
// It is total: malformed input degrades to comma-split parsing and the
// worst case is a nil list, never an error.
func ParseTags(raw string) TagList {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		// Legacy rows and sloppy clients store plain comma-separated text.
		return normalizeTags(strings.Split(raw, ","))
	}
	return tagsFromValue(v)
}

// UnmarshalJSON implements lenient tag decoding. It never returns an error:
// unusable input yields a nil list.
func (t *TagList) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		*t = nil
		return nil
	}
	*t = tagsFromValue(v)
	return nil
}

// MarshalJSON renders an empty list as null to match the stored shape.
func (t TagList) MarshalJSON() ([]byte, error) {
	if len(t) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal([]string(t))
}

func tagsFromValue(v any) TagList {
	switch val := v.(type) {
	case nil:
		return nil
	case []any:
		parts := make([]string, 0, len(val))
		for _, e := range val {
			parts = append(parts, scalarString(e))
		}
		return normalizeTags(parts)
	case string:
		// The string may itself carry a JSON array; fall back to CSV.
		trimmed := strings.TrimSpace(val)
		if strings.HasPrefix(trimmed, "[") {
			var inner []any
			if err := json.Unmarshal([]byte(trimmed), &inner); err == nil {
				return tagsFromValue(inner)
			}
		}
		return normalizeTags(strings.Split(val, ","))
	default:
		return normalizeTags([]string{scalarString(v)})
	}
}

// scalarString renders a decoded JSON scalar as a tag candidate.
// Objects and nested arrays yield "" and are dropped by normalizeTags.
func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// normalizeTags trims entries and drops empties, preserving order.
func normalizeTags(parts []string) TagList {
	var tags TagList
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		tags = append(tags, p)
	}
	return tags
}
