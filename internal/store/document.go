package store

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"
)

const serverTimestampToken = "$startiq:serverTimestamp$"

type serverTimestamp struct{}

func (serverTimestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(serverTimestampToken)
}

// ServerTimestamp returns a placeholder that the store replaces with its own
// clock reading when the document is written.
func ServerTimestamp() any {
	return serverTimestamp{}
}

// normalize encodes value to JSON and back, producing a fresh map of plain
// JSON types with server timestamps resolved.
func normalize(value any, now time.Time) (map[string]any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("document must be a JSON object: %w", err)
	}
	if data == nil {
		return nil, fmt.Errorf("document must be a JSON object")
	}

	stamp := now.UTC().Format(time.RFC3339Nano)
	return resolveTimestamps(data, stamp).(map[string]any), nil
}

// normalizeValue converts a query value to its JSON form.
func normalizeValue(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func resolveTimestamps(v any, stamp string) any {
	switch val := v.(type) {
	case string:
		if val == serverTimestampToken {
			return stamp
		}
		return val
	case map[string]any:
		for k, item := range val {
			val[k] = resolveTimestamps(item, stamp)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = resolveTimestamps(item, stamp)
		}
		return val
	default:
		return val
	}
}

func encode(data map[string]any) ([]byte, error) {
	return json.Marshal(data)
}

func decode(raw []byte) (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}

// deepMerge merges src into dst. Nested maps merge recursively; any other
// value in src replaces the one in dst.
func deepMerge(dst, src map[string]any) map[string]any {
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]any)
		dstMap, dstIsMap := dst[k].(map[string]any)
		if srcIsMap && dstIsMap {
			dst[k] = deepMerge(dstMap, srcMap)
			continue
		}
		dst[k] = v
	}
	return dst
}

// applyPatch sets each patch entry on doc. Dotted keys address nested fields,
// creating intermediate maps as needed.
func applyPatch(doc, patch map[string]any) map[string]any {
	for k, v := range patch {
		if !strings.Contains(k, ".") {
			doc[k] = v
			continue
		}
		setPath(doc, strings.Split(k, "."), v)
	}
	return doc
}

func setPath(doc map[string]any, path []string, value any) {
	current := doc
	for _, part := range path[:len(path)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[part] = next
		}
		current = next
	}
	current[path[len(path)-1]] = value
}

func lookupPath(doc map[string]any, path []string) (any, bool) {
	var current any = doc
	for _, part := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func valuesEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
