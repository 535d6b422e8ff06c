package mapper

import (
	"encoding/json"
	"time"

	"github.com/sameezy667/ResQ-sub000/internal/domain"
)

func stringField(row domain.Row, key string) string {
	s, _ := row[key].(string)
	return s
}

func boolField(row domain.Row, key string) bool {
	b, _ := row[key].(bool)
	return b
}

func intField(row domain.Row, key string) int {
	f, ok := numField(row[key])
	if !ok {
		return 0
	}
	return int(f)
}

func numField(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func timeField(row domain.Row, key string) time.Time {
	switch t := row[key].(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func stringSliceField(row domain.Row, key string) []string {
	switch v := row[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
