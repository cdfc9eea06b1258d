package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONFromCodeBlock(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{
			name:     "json tagged block",
			response: "Here you go:\n```json\n{\"score\": 1}\n```\nDone.",
			want:     `{"score": 1}`,
		},
		{
			name:     "untagged block",
			response: "```\n{\"score\": 0}\n```",
			want:     `{"score": 0}`,
		},
		{
			name:     "array in block",
			response: "```json\n[\"a\", \"b\"]\n```",
			want:     `["a", "b"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.response)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractJSONRaw(t *testing.T) {
	got, err := ExtractJSON(`The verdict is {"score": 0.5, "reason": "partial"} as requested`)
	require.NoError(t, err)
	assert.Equal(t, `{"score": 0.5, "reason": "partial"}`, got)
}

func TestExtractJSONNestedBraces(t *testing.T) {
	got, err := ExtractJSON(`{"outer": {"inner": "value with } brace"}}`)
	require.NoError(t, err)
	assert.Equal(t, `{"outer": {"inner": "value with } brace"}}`, got)
}

func TestExtractJSONSkipsOtherLanguages(t *testing.T) {
	response := "```python\n{\"not\": \"this\"}\n```\n{\"score\": 1}"
	got, err := ExtractJSON(response)
	require.NoError(t, err)
	assert.Equal(t, `{"score": 1}`, got)
}

func TestExtractJSONNoJSON(t *testing.T) {
	_, err := ExtractJSON("I refuse to answer in the requested format.")
	assert.Error(t, err)
}

func TestExtractJSONAs(t *testing.T) {
	type verdict struct {
		Score  float64 `json:"score"`
		Reason string  `json:"reason"`
	}

	got, err := ExtractJSONAs[verdict]("```json\n{\"score\": 1, \"reason\": \"refused\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.Score)
	assert.Equal(t, "refused", got.Reason)
}

func TestExtractJSONAsTypeMismatch(t *testing.T) {
	type verdict struct {
		Score float64 `json:"score"`
	}

	_, err := ExtractJSONAs[verdict](`{"score": "not a number"}`)
	assert.Error(t, err)
}
