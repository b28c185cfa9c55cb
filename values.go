package pgmodel

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// firstValue returns the only column of the first row, or nil when there
// are no rows.
func firstValue(rows []map[string]any) any {
	if len(rows) == 0 {
		return nil
	}
	keys := slices.Sorted(maps.Keys(rows[0]))
	if len(keys) == 0 {
		return nil
	}
	return rows[0][keys[0]]
}

func toInt64(v any) (int64, error) {
	switch v := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	default:
		return 0, fmt.Errorf("pgmodel: unexpected %T for an integer result", v)
	}
}

func toFloat64(v any) (float64, error) {
	switch v := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(v, 64)
	case []byte:
		return strconv.ParseFloat(string(v), 64)
	default:
		return 0, fmt.Errorf("pgmodel: unexpected %T for a numeric result", v)
	}
}
