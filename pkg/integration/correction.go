package integration

import (
	"strconv"
	"time"
)

// Categories the ML model was trained on. Anything else triggers an
// "unseen label" rejection upstream.
var knownCategories = map[string]struct{}{
	"Хлеб":              {},
	"Выпечка":           {},
	"Напитки":           {},
	"Молочные продукты": {},
	"Прочее":            {},
}

const defaultCategory = "Прочее"

// categoryField is the payload key the upstream model reads the product
// category from.
const categoryField = "ВидНоменклатуры"

// correctUnseenLabels rewrites every event whose category is not in the
// known-category list to the default category.
func correctUnseenLabels(_ *Error, payload []map[string]interface{}) []map[string]interface{} {
	corrected := make([]map[string]interface{}, len(payload))
	for i, item := range payload {
		category, ok := item[categoryField].(string)
		if !ok || category == "" {
			corrected[i] = item
			continue
		}
		if _, known := knownCategories[category]; known {
			corrected[i] = item
			continue
		}
		clone := cloneMap(item)
		clone[categoryField] = defaultCategory
		corrected[i] = clone
	}
	return corrected
}

// correctValidationErrors fixes the payload one reported field error at a
// time: string-typed numerics become numbers, out-of-range values are
// clamped to the declared bound, and ISO-8601 timestamps are reformatted
// to a plain date.
func correctValidationErrors(err *Error, payload []map[string]interface{}) []map[string]interface{} {
	corrected := clonePayload(payload)

	for _, fe := range err.ValidationErrors {
		switch fe.Code {
		case "invalid_type":
			if fe.Expected != "number" {
				continue
			}
			raw, ok := getNested(corrected, fe.Path)
			if !ok {
				continue
			}
			if s, ok := raw.(string); ok {
				if n, convErr := strconv.ParseFloat(s, 64); convErr == nil {
					setNested(corrected, fe.Path, n)
				}
			}

		case "too_small":
			if fe.Minimum != nil {
				setNested(corrected, fe.Path, *fe.Minimum)
			}

		case "too_big":
			if fe.Maximum != nil {
				setNested(corrected, fe.Path, *fe.Maximum)
			}

		case "invalid_date":
			raw, ok := getNested(corrected, fe.Path)
			if !ok {
				continue
			}
			if s, ok := raw.(string); ok {
				if t, parseErr := parseAnyDate(s); parseErr == nil {
					setNested(corrected, fe.Path, t.Format("2006-01-02"))
				}
			}
		}
	}

	return corrected
}

func parseAnyDate(s string) (time.Time, error) {
	layouts := []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// getNested resolves a validation-error path against the payload. The
// first segment is the event index, the rest walk nested maps and
// slices.
func getNested(payload []map[string]interface{}, path []interface{}) (interface{}, bool) {
	if len(path) == 0 {
		return nil, false
	}
	idx, ok := pathIndex(path[0])
	if !ok || idx < 0 || idx >= len(payload) {
		return nil, false
	}
	var current interface{} = payload[idx]
	for _, seg := range path[1:] {
		switch node := current.(type) {
		case map[string]interface{}:
			key, ok := seg.(string)
			if !ok {
				return nil, false
			}
			current, ok = node[key]
			if !ok {
				return nil, false
			}
		case []interface{}:
			i, ok := pathIndex(seg)
			if !ok || i < 0 || i >= len(node) {
				return nil, false
			}
			current = node[i]
		default:
			return nil, false
		}
	}
	return current, true
}

// setNested writes a value at a validation-error path. The payload must
// already be a private copy; intermediate containers are mutated in
// place.
func setNested(payload []map[string]interface{}, path []interface{}, value interface{}) {
	if len(path) == 0 {
		return
	}
	idx, ok := pathIndex(path[0])
	if !ok || idx < 0 || idx >= len(payload) {
		return
	}
	if len(path) == 1 {
		return
	}
	if len(path) == 2 {
		if key, ok := path[1].(string); ok {
			payload[idx][key] = value
		}
		return
	}

	var current interface{} = payload[idx]
	for _, seg := range path[1 : len(path)-1] {
		switch node := current.(type) {
		case map[string]interface{}:
			key, ok := seg.(string)
			if !ok {
				return
			}
			current = node[key]
		case []interface{}:
			i, ok := pathIndex(seg)
			if !ok || i < 0 || i >= len(node) {
				return
			}
			current = node[i]
		default:
			return
		}
	}

	last := path[len(path)-1]
	switch node := current.(type) {
	case map[string]interface{}:
		if key, ok := last.(string); ok {
			node[key] = value
		}
	case []interface{}:
		if i, ok := pathIndex(last); ok && i >= 0 && i < len(node) {
			node[i] = value
		}
	}
}

// pathIndex accepts the numeric encodings a decoded JSON error list may
// carry for array indices.
func pathIndex(seg interface{}) (int, bool) {
	switch v := seg.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func clonePayload(payload []map[string]interface{}) []map[string]interface{} {
	cloned := make([]map[string]interface{}, len(payload))
	for i, item := range payload {
		cloned[i] = cloneMap(item)
	}
	return cloned
}

func cloneMap(m map[string]interface{}) map[string]interface{} {
	clone := make(map[string]interface{}, len(m))
	for k, v := range m {
		clone[k] = cloneValue(v)
	}
	return clone
}

func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return cloneMap(val)
	case []interface{}:
		cloned := make([]interface{}, len(val))
		for i, item := range val {
			cloned[i] = cloneValue(item)
		}
		return cloned
	default:
		return v
	}
}
