package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"promptchart/pkg/category"
)

// ErrMalformedResponse marks a model reply that is not JSON or does not have
// the expected shape. It is a soft failure: the extraction simply yields
// nothing.
var ErrMalformedResponse = errors.New("malformed model response")

// ParseReply decodes a model reply into raw entries. Accepted shapes are a
// top-level array or an object whose "data" property is an array. Array
// elements that are not objects become empty entries, which the normalizer
// drops.
func ParseReply(content string) ([]category.Entry, error) {
	content = stripCodeFence(strings.TrimSpace(content))

	var doc any
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var items []any
	switch v := doc.(type) {
	case []any:
		items = v
	case map[string]any:
		data, ok := v["data"].([]any)
		if !ok {
			return nil, fmt.Errorf("%w: object has no \"data\" array", ErrMalformedResponse)
		}
		items = data
	default:
		return nil, fmt.Errorf("%w: unexpected top-level %T", ErrMalformedResponse, doc)
	}

	entries := make([]category.Entry, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			entries = append(entries, category.Entry{})
			continue
		}
		entries = append(entries, category.Entry{Name: obj["name"], Value: obj["value"]})
	}
	return entries, nil
}

// stripCodeFence removes a surrounding ``` or ```json fence some models add
// even in JSON mode.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
