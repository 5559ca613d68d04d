package jsonutil

import (
	"encoding/json"
	"strings"
)

// Extract returns the JSON payload inside a model response, stripping
// markdown code fences and any prose around the outermost object or array.
func Extract(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i >= 0 {
			s = s[i+1:]
		}
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	end := strings.LastIndex(s, "}")
	if s[start] == '[' {
		end = strings.LastIndex(s, "]")
	}
	if end <= start {
		return s
	}
	return s[start : end+1]
}

// UnmarshalFlex parses raw directly, then retries after Extract cleanup.
func UnmarshalFlex(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err == nil {
		return nil
	}
	return json.Unmarshal([]byte(Extract(string(raw))), v)
}
