package schema

import "strings"

// keywords any plausible tracker payload mentions in its column names.
var keywords = []string{
	"plant", "unit", "capacity", "coal", "power", "mw", "status",
	"country", "region", "owner", "parent", "start", "retire",
}

// Plausible is a cheap keyword-overlap test over the keys of the
// first record of a decoded payload. It exists to reject navigation
// menus and analytics blobs before normalization runs; false
// positives are fine.
func Plausible(data any) bool {
	var first map[string]any

	switch v := data.(type) {
	case []any:
		if len(v) == 0 {
			return false
		}
		m, ok := v[0].(map[string]any)
		if !ok {
			return false
		}
		first = m
	case []map[string]any:
		if len(v) == 0 {
			return false
		}
		first = v[0]
	case map[string]any:
		first = v
	default:
		return false
	}
	if len(first) == 0 {
		return false
	}

	joined := make([]string, 0, len(first))
	for k := range first {
		joined = append(joined, strings.ToLower(k))
	}
	keys := strings.Join(joined, " ")
	for _, kw := range keywords {
		if strings.Contains(keys, kw) {
			return true
		}
	}
	return false
}
