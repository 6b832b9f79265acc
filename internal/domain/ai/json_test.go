package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"plain", `{"a":1}`, `{"a":1}`, true},
		{"fenced", "```json\n{\"a\":{\"b\":2}}\n```", `{"a":{"b":2}}`, true},
		{"prose", `Here you go: {"a":1} hope it helps`, `{"a":1}`, true},
		{"none", `no json here`, "", false},
		{"reversed", `} {`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSON(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}
	require.NoError(t, DecodeJSON("text {\"a\": 3} text", &v))
	assert.Equal(t, 3, v.A)

	assert.ErrorIs(t, DecodeJSON("nothing", &v), ErrUnparseable)
	assert.ErrorIs(t, DecodeJSON(`{"a": "x"}`, &v), ErrUnparseable)
}

func TestNormalizeConfidence(t *testing.T) {
	assert.Equal(t, 0.85, NormalizeConfidence(0.85))
	assert.Equal(t, 0.85, NormalizeConfidence(85))
	assert.Equal(t, 0.0, NormalizeConfidence(-1))
	assert.Equal(t, 1.0, NormalizeConfidence(250))
}
