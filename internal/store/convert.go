package store

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

func stringField(r Record, key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// int64Field accepts the shapes a column can arrive in: native ints from
// the memory store, float64 or json.Number from decoded PostgREST JSON.
func int64Field(r Record, key string) (int64, bool) {
	switch v := r[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case float64:
		return int64(math.Round(v)), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			f, ferr := v.Float64()
			if ferr != nil {
				return 0, false
			}
			return int64(math.Round(f)), true
		}
		return n, true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	}
	return 0, false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// decodeList converts a JSON-ish list column into a slice of generic maps.
func decodeList(v any) []map[string]any {
	switch list := v.(type) {
	case nil:
		return nil
	case []map[string]any:
		return list
	case []any:
		out := make([]map[string]any, 0, len(list))
		for _, item := range list {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	case string:
		var out []map[string]any
		if err := json.Unmarshal([]byte(list), &out); err != nil {
			return nil
		}
		return out
	default:
		raw, err := json.Marshal(list)
		if err != nil {
			return nil
		}
		var out []map[string]any
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil
		}
		return out
	}
}
