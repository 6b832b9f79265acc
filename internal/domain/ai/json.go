package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON returns the outermost {...} slice of a model answer. Models
// sometimes wrap the object in prose or code fences.
func ExtractJSON(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

// DecodeJSON extracts and decodes a model answer into v. Every failure is
// reported as ErrUnparseable.
func DecodeJSON(raw string, v any) error {
	obj, ok := ExtractJSON(raw)
	if !ok {
		return fmt.Errorf("%w: no JSON object in response", ErrUnparseable)
	}
	if err := json.Unmarshal([]byte(obj), v); err != nil {
		return fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	return nil
}

// NormalizeConfidence accepts both 0..1 and 0..100 scales.
func NormalizeConfidence(c float64) float64 {
	if c > 1 && c <= 100 {
		c /= 100
	}
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
