package itinerary

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MattZaluski/SWETripPlanner/internal/types"
)

const defaultScore = 50

// cleanJSONResponse strips markdown code fences and surrounding prose so the
// model payload parses as plain JSON.
func cleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
	}
	if strings.HasSuffix(response, "```") {
		response = strings.TrimSuffix(response, "```")
	}
	response = strings.TrimSpace(response)

	// Extract the first {...} block in case the model wrapped the JSON in
	// explanatory text.
	firstBrace := strings.Index(response, "{")
	if firstBrace == -1 {
		return response
	}
	lastBrace := strings.LastIndex(response, "}")
	if lastBrace == -1 || lastBrace <= firstBrace {
		return response
	}
	return strings.TrimSpace(response[firstBrace : lastBrace+1])
}

// rawScore tolerates both historical score shapes: the current
// {score, reason, is_outdoor, weather_warning} and the legacy
// {relevance_score, matched_reason, outdoor, warning}. Pointers distinguish
// absent keys from zero values.
type rawScore struct {
	Name           string `json:"name"`
	Score          *int   `json:"score"`
	RelevanceScore *int   `json:"relevance_score"`
	Reason         string `json:"reason"`
	MatchedReason  string `json:"matched_reason"`
	IsOutdoor      *bool  `json:"is_outdoor"`
	Outdoor        *bool  `json:"outdoor"`
	WeatherWarning string `json:"weather_warning"`
	Warning        string `json:"warning"`
}

type rawSynthesis struct {
	Scores    []rawScore            `json:"scores"`
	Itinerary []types.ItineraryStop `json:"itinerary"`
}

// normalizeScore reconciles the two shapes into the canonical form; call
// sites never branch on shape.
func normalizeScore(raw rawScore) types.ActivityScore {
	score := defaultScore
	if raw.Score != nil {
		score = *raw.Score
	} else if raw.RelevanceScore != nil {
		score = *raw.RelevanceScore
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	reason := raw.Reason
	if reason == "" {
		reason = raw.MatchedReason
	}
	if reason == "" {
		reason = "Matches your stated preferences"
	}

	outdoor := false
	if raw.IsOutdoor != nil {
		outdoor = *raw.IsOutdoor
	} else if raw.Outdoor != nil {
		outdoor = *raw.Outdoor
	}

	warning := raw.WeatherWarning
	if warning == "" {
		warning = raw.Warning
	}

	return types.ActivityScore{
		Name:    raw.Name,
		Score:   score,
		Reason:  reason,
		Outdoor: outdoor,
		Warning: warning,
	}
}

// parseSynthesis parses the model payload into canonical scores plus the
// itinerary. It fails when the payload is not JSON or carries no scores; the
// caller substitutes the degraded default.
func parseSynthesis(payload string) ([]types.ActivityScore, []types.ItineraryStop, error) {
	var raw rawSynthesis
	if err := json.Unmarshal([]byte(cleanJSONResponse(payload)), &raw); err != nil {
		return nil, nil, fmt.Errorf("synthesis: %w: %v", types.ErrMalformedResponse, err)
	}
	if len(raw.Scores) == 0 {
		return nil, nil, fmt.Errorf("synthesis: response missing scores: %w", types.ErrMalformedResponse)
	}

	scores := make([]types.ActivityScore, 0, len(raw.Scores))
	for _, r := range raw.Scores {
		scores = append(scores, normalizeScore(r))
	}
	itinerary := raw.Itinerary
	if itinerary == nil {
		itinerary = []types.ItineraryStop{}
	}
	return scores, itinerary, nil
}

// heuristicOutdoor guesses outdoorness from the category label. Used only on
// the degraded path; model output wins when available.
func heuristicOutdoor(activity types.Activity) bool {
	label := strings.ToLower(activity.CategoryLabel)
	for _, marker := range []string{"park", "beach", "natural", "forest", "garden", "trail", "zoo", "playground"} {
		if strings.Contains(label, marker) {
			return true
		}
	}
	return false
}
