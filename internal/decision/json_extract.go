package decision

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON pulls the first balanced JSON object out of free-form judge
// text. Judges frequently wrap their answer in prose or a markdown fence;
// this is a bounded single-pass scan for the first balanced brace span, not
// a general parser. It is a known leniency, not a correctness guarantee.
func ExtractJSON(response string) (string, error) {
	// A fenced block, when present, is the most reliable envelope.
	if inner, ok := insideFence(response); ok {
		if candidate, ok := firstBalancedObject(inner); ok {
			return candidate, nil
		}
	}

	if candidate, ok := firstBalancedObject(response); ok {
		return candidate, nil
	}

	return "", fmt.Errorf("no valid JSON object found in response")
}

// insideFence returns the content of the first ``` fenced block, if any.
// Blocks tagged with a non-json language are skipped.
func insideFence(s string) (string, bool) {
	for {
		start := strings.Index(s, "```")
		if start < 0 {
			return "", false
		}
		rest := s[start+3:]
		end := strings.Index(rest, "```")
		if end < 0 {
			return "", false
		}

		block := rest[:end]
		if nl := strings.IndexByte(block, '\n'); nl >= 0 {
			tag := strings.ToLower(strings.TrimSpace(block[:nl]))
			if tag == "" || tag == "json" {
				return strings.TrimSpace(block[nl+1:]), true
			}
		}
		s = rest[end+3:]
	}
}

// firstBalancedObject scans for the first '{' and returns the span up to its
// matching '}', honoring JSON string literals and escapes. The span is only
// returned when it unmarshals cleanly.
func firstBalancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}

		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
			// skip structural characters inside strings
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				candidate := s[start : i+1]
				var js json.RawMessage
				if json.Unmarshal([]byte(candidate), &js) == nil {
					return candidate, true
				}
				return "", false
			}
		}
	}

	return "", false
}
