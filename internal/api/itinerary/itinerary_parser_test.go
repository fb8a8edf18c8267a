package itinerary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MattZaluski/SWETripPlanner/internal/types"
)

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain json untouched",
			input:    `{"scores":[]}`,
			expected: `{"scores":[]}`,
		},
		{
			name:     "json code fence",
			input:    "```json\n{\"scores\":[]}\n```",
			expected: `{"scores":[]}`,
		},
		{
			name:     "bare code fence",
			input:    "```\n{\"scores\":[]}\n```",
			expected: `{"scores":[]}`,
		},
		{
			name:     "surrounding prose",
			input:    "Here is your plan:\n{\"scores\":[]}\nEnjoy!",
			expected: `{"scores":[]}`,
		},
		{
			name:     "no braces returned as-is",
			input:    "sorry, I cannot help",
			expected: "sorry, I cannot help",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanJSONResponse(tt.input))
		})
	}
}

func TestParseSynthesis_CurrentShape(t *testing.T) {
	payload := `{
		"scores": [
			{"name": "Sunny Park", "score": 85, "reason": "Great for parks", "is_outdoor": true, "weather_warning": "bring a jacket"}
		],
		"itinerary": [
			{"time": "10:00 AM", "name": "Sunny Park", "duration": "2 hours", "cost": "Free", "reason": "Start outdoors"}
		]
	}`

	scores, stops, err := parseSynthesis(payload)
	require.NoError(t, err)

	require.Len(t, scores, 1)
	assert.Equal(t, types.ActivityScore{
		Name:    "Sunny Park",
		Score:   85,
		Reason:  "Great for parks",
		Outdoor: true,
		Warning: "bring a jacket",
	}, scores[0])

	require.Len(t, stops, 1)
	assert.Equal(t, "10:00 AM", stops[0].Time)
	assert.Equal(t, "2 hours", stops[0].Duration)
}

func TestParseSynthesis_LegacyShape(t *testing.T) {
	payload := `{
		"scores": [
			{"name": "Museum of Stuff", "relevance_score": 70, "matched_reason": "You like museums", "outdoor": false, "warning": ""}
		]
	}`

	scores, stops, err := parseSynthesis(payload)
	require.NoError(t, err)

	require.Len(t, scores, 1)
	assert.Equal(t, 70, scores[0].Score)
	assert.Equal(t, "You like museums", scores[0].Reason)
	assert.False(t, scores[0].Outdoor)
	assert.NotNil(t, stops, "missing itinerary decodes to an empty slice")
	assert.Empty(t, stops)
}

func TestParseSynthesis_ClampsAndDefaults(t *testing.T) {
	payload := `{
		"scores": [
			{"name": "Too High", "score": 150},
			{"name": "Too Low", "score": -5},
			{"name": "No Score At All"}
		]
	}`

	scores, _, err := parseSynthesis(payload)
	require.NoError(t, err)

	require.Len(t, scores, 3)
	assert.Equal(t, 100, scores[0].Score)
	assert.Equal(t, 0, scores[1].Score)
	assert.Equal(t, defaultScore, scores[2].Score)
	assert.Equal(t, "Matches your stated preferences", scores[2].Reason)
}

func TestParseSynthesis_RejectsGarbage(t *testing.T) {
	_, _, err := parseSynthesis("the weather is nice today")
	assert.ErrorIs(t, err, types.ErrMalformedResponse)

	_, _, err = parseSynthesis(`{"itinerary": []}`)
	assert.ErrorIs(t, err, types.ErrMalformedResponse, "a response without scores is unusable")
}

func TestHeuristicOutdoor(t *testing.T) {
	assert.True(t, heuristicOutdoor(types.Activity{CategoryLabel: "leisure.park"}))
	assert.True(t, heuristicOutdoor(types.Activity{CategoryLabel: "natural.forest"}))
	assert.True(t, heuristicOutdoor(types.Activity{CategoryLabel: "Zoo, Entertainment"}))
	assert.False(t, heuristicOutdoor(types.Activity{CategoryLabel: "entertainment.museum"}))
	assert.False(t, heuristicOutdoor(types.Activity{CategoryLabel: "catering.restaurant"}))
}
