package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/sajansshergill/spec2dv-data-modeler/internal/ir"
)

// marshalMatch converts a match predicate to canonical JSON TEXT for
// storage. Equal predicates always produce byte-identical column values.
func marshalMatch(match map[string]any) (string, error) {
	data, err := ir.MarshalCanonical(match)
	if err != nil {
		return "", fmt.Errorf("marshal match: %w", err)
	}
	return string(data), nil
}

// unmarshalMatch parses stored canonical JSON TEXT back to a predicate map.
// Numbers are decoded through json.Number so integers survive the round
// trip without passing through float64.
func unmarshalMatch(data string) (map[string]any, error) {
	if data == "" || data == "{}" {
		return map[string]any{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("unmarshal match: %w", err)
	}

	normalized, err := normalizeMatchValue(raw)
	if err != nil {
		return nil, fmt.Errorf("unmarshal match: %w", err)
	}
	return normalized.(map[string]any), nil
}

// normalizeMatchValue rewrites json.Number leaves to int64. Anything that
// is not representable in the canonical value domain is a store-integrity
// error: marshalMatch could never have written it.
func normalizeMatchValue(v any) (any, error) {
	switch val := v.(type) {
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("non-integer number %q in stored match", val.String())
		}
		return n, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			norm, err := normalizeMatchValue(elem)
			if err != nil {
				return nil, err
			}
			out[k] = norm
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			norm, err := normalizeMatchValue(elem)
			if err != nil {
				return nil, err
			}
			out[i] = norm
		}
		return out, nil
	case string, bool:
		return val, nil
	default:
		return nil, fmt.Errorf("unexpected value type %T in stored match", v)
	}
}
