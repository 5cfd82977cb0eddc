package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModelRef(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    ModelRef
		expectError bool
	}{
		{
			name:     "simple pair",
			input:    "openai/gpt-4o",
			expected: ModelRef{Provider: "openai", Model: "gpt-4o"},
		},
		{
			name:     "model with nested slash",
			input:    "openrouter/anthropic/claude-3.5-sonnet",
			expected: ModelRef{Provider: "openrouter", Model: "anthropic/claude-3.5-sonnet"},
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  xai/grok-2  ",
			expected: ModelRef{Provider: "xai", Model: "grok-2"},
		},
		{
			name:        "missing slash",
			input:       "gpt-4o",
			expectError: true,
		},
		{
			name:        "empty provider",
			input:       "/gpt-4o",
			expectError: true,
		},
		{
			name:        "empty model",
			input:       "openai/",
			expectError: true,
		},
		{
			name:        "empty string",
			input:       "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ParseModelRef(tt.input)
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ref)
		})
	}
}

func TestModelRef_Key(t *testing.T) {
	ref := ModelRef{Provider: "openai", Model: "gpt-4o"}
	assert.Equal(t, "openai/gpt-4o", ref.Key())
	assert.Equal(t, ref.Key(), ref.String())
}

func TestModelRef_IsZero(t *testing.T) {
	assert.True(t, ModelRef{}.IsZero())
	assert.False(t, ModelRef{Provider: "openai"}.IsZero())
	assert.False(t, ModelRef{Model: "gpt-4o"}.IsZero())
}

func TestParseModelRefList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []ModelRef
	}{
		{
			name:  "two entries",
			input: "openai/gpt-4o,xai/grok-2",
			expected: []ModelRef{
				{Provider: "openai", Model: "gpt-4o"},
				{Provider: "xai", Model: "grok-2"},
			},
		},
		{
			name:  "malformed entries dropped",
			input: "openai/gpt-4o,not-a-ref,,xai/grok-2",
			expected: []ModelRef{
				{Provider: "openai", Model: "gpt-4o"},
				{Provider: "xai", Model: "grok-2"},
			},
		},
		{
			name:     "empty input",
			input:    "   ",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseModelRefList(tt.input))
		})
	}
}

func TestParseModelRefs(t *testing.T) {
	refs := ParseModelRefs([]string{"openai/gpt-4o", "bogus", "xai/grok-2"})
	require.Len(t, refs, 2)
	assert.Equal(t, "openai/gpt-4o", refs[0].Key())
	assert.Equal(t, "xai/grok-2", refs[1].Key())
}

func TestPriority_IsValid(t *testing.T) {
	for _, p := range []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow} {
		assert.True(t, p.IsValid(), p)
	}
	assert.False(t, Priority("urgent").IsValid())
	assert.False(t, Priority("").IsValid())
}

func TestPriority_UnmarshalJSON(t *testing.T) {
	var p Priority
	require.NoError(t, p.UnmarshalJSON([]byte(`"high"`)))
	assert.Equal(t, PriorityHigh, p)

	require.Error(t, p.UnmarshalJSON([]byte(`"urgent"`)))
	require.Error(t, p.UnmarshalJSON([]byte(`42`)))
}
