package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    string
		expectError bool
	}{
		{
			name:     "bare object",
			input:    `{"action":"continue"}`,
			expected: `{"action":"continue"}`,
		},
		{
			name:     "object with leading prose",
			input:    `Here you go: {"action":"continue"} hope that helps`,
			expected: `{"action":"continue"}`,
		},
		{
			name:     "nested objects",
			input:    `result: {"plan":{"lane":"background","maxConcurrency":2},"action":"parallel"}`,
			expected: `{"plan":{"lane":"background","maxConcurrency":2},"action":"parallel"}`,
		},
		{
			name:     "braces inside string literals",
			input:    `{"reason":"use {curly} braces","action":"continue"}`,
			expected: `{"reason":"use {curly} braces","action":"continue"}`,
		},
		{
			name:     "escaped quotes inside strings",
			input:    `{"reason":"he said \"stop\"","action":"abort"}`,
			expected: `{"reason":"he said \"stop\"","action":"abort"}`,
		},
		{
			name:     "json fence",
			input:    "```json\n{\"action\":\"defer\"}\n```",
			expected: `{"action":"defer"}`,
		},
		{
			name:     "untagged fence",
			input:    "```\n{\"action\":\"defer\"}\n```",
			expected: `{"action":"defer"}`,
		},
		{
			name:        "no json at all",
			input:       "I cannot decide right now.",
			expectError: true,
		},
		{
			name:        "unbalanced braces",
			input:       `{"action":"continue"`,
			expectError: true,
		},
		{
			name:        "balanced but invalid json",
			input:       `{action: continue}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ExtractJSON(tt.input)
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestExtractJSON_FirstSpanWins(t *testing.T) {
	input := `{"action":"abort","confidence":1,"reason":"first","priority":"critical"} {"action":"continue"}`
	out, err := ExtractJSON(input)
	require.NoError(t, err)
	assert.Contains(t, out, `"first"`)
}
