// Package jsonblock extracts a JSON object from free-form provider text.
//
// The upstream AI providers are asked for pure JSON but frequently wrap it in
// markdown fences or surround it with prose, so the boundary is located
// heuristically: strip fence markers, then take everything between the first
// "{" and the last "}".
package jsonblock

import (
	"encoding/json"
	"fmt"
	"strings"

	"edgescout/internal/domain"
)

// Extract returns the JSON object substring of text, or domain.ErrNoJSONObject
// when no balanced brace pair exists.
func Extract(text string) (string, error) {
	s := strings.TrimSpace(text)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", domain.ErrNoJSONObject
	}
	return s[start : end+1], nil
}

// ExtractObject extracts and parses the JSON object in text into a generic map.
func ExtractObject(text string) (map[string]any, error) {
	raw, err := Extract(text)
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, fmt.Errorf("jsonblock: parse object: %w", err)
	}
	return obj, nil
}
