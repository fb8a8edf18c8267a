package planner

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/MattZaluski/SWETripPlanner/internal/types"
)

// mergeScores copies canonical model verdicts onto the activity list,
// matching by case-insensitive name. Unscored activities keep their zero
// values rather than erroring.
func mergeScores(activities []types.Activity, scores []types.ActivityScore) {
	byName := make(map[string]types.ActivityScore, len(scores))
	for _, sc := range scores {
		byName[strings.ToLower(strings.TrimSpace(sc.Name))] = sc
	}
	for i := range activities {
		sc, ok := byName[strings.ToLower(strings.TrimSpace(activities[i].Name))]
		if !ok {
			continue
		}
		activities[i].RelevanceScore = sc.Score
		activities[i].MatchedReason = sc.Reason
		activities[i].IsOutdoor = sc.Outdoor
		activities[i].WeatherWarning = sc.Warning
	}
}

// enrichStops fills coordinate, address, distance, and score on each stop by
// name-matching against the scored activity list. Names the model invented
// stay with their zero-value fields; that is not an error.
func enrichStops(stops []types.ItineraryStop, activities []types.Activity) []types.ItineraryStop {
	enriched := make([]types.ItineraryStop, 0, len(stops))
	for _, stop := range stops {
		if match := findActivity(stop.Name, activities); match != nil {
			coord := match.Coordinate
			stop.Coordinate = &coord
			stop.Address = activityAddress(*match)
			stop.DistanceKm = match.DistanceKm
			stop.RelevanceScore = match.RelevanceScore
			if stop.TravelTimeMin == 0 {
				stop.TravelTimeMin = match.TravelTimeMin
			}
		}
		enriched = append(enriched, stop)
	}
	return enriched
}

// findActivity prefers an exact case-insensitive match, then containment in
// either direction to absorb model paraphrases like "the Sunny Park".
func findActivity(name string, activities []types.Activity) *types.Activity {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil
	}
	for i := range activities {
		if strings.EqualFold(strings.TrimSpace(activities[i].Name), strings.TrimSpace(name)) {
			return &activities[i]
		}
	}
	for i := range activities {
		candidate := strings.ToLower(activities[i].Name)
		if strings.Contains(candidate, needle) || strings.Contains(needle, candidate) {
			return &activities[i]
		}
	}
	return nil
}

func activityAddress(a types.Activity) string {
	if a.Formatted != "" {
		return a.Formatted
	}
	parts := []string{}
	if a.Street != "" {
		parts = append(parts, a.Street)
	}
	if a.City != "" {
		parts = append(parts, a.City)
	}
	return strings.Join(parts, ", ")
}

// computeTotals aggregates a smart itinerary: summed estimated cost, summed
// activity hours parsed from free-text durations, and summed travel minutes.
func computeTotals(stops []types.ItineraryStop) types.TripTotals {
	var totals types.TripTotals
	for _, stop := range stops {
		totals.EstimatedCost += parseCostValue(stop.Cost)
		totals.ActivityHours += parseDurationHours(stop.Duration)
		totals.TravelMinutes += stop.TravelTimeMin
	}
	return totals
}

var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// Rough per-stop dollar figures for tier words the model uses in place of
// amounts.
var tierCosts = map[string]float64{
	"free":      0,
	"low":       15,
	"medium":    40,
	"moderate":  40,
	"high":      80,
	"expensive": 80,
}

// parseCostValue turns a free-text cost ("free", "low", "$25", "about 10
// dollars") into an approximate dollar amount. Unrecognized text counts as
// zero rather than failing the aggregate.
func parseCostValue(cost string) float64 {
	text := strings.ToLower(strings.TrimSpace(cost))
	if text == "" {
		return 0
	}
	for tier, amount := range tierCosts {
		if strings.Contains(text, tier) {
			return amount
		}
	}
	if match := numberPattern.FindString(text); match != "" {
		if value, err := strconv.ParseFloat(match, 64); err == nil {
			return value
		}
	}
	return 0
}

// parseDurationHours turns a free-text duration ("1.5 hours", "90 min",
// "2h") into hours. Minutes are detected by unit keywords; bare numbers read
// as hours.
func parseDurationHours(duration string) float64 {
	text := strings.ToLower(strings.TrimSpace(duration))
	if text == "" {
		return 0
	}
	match := numberPattern.FindString(text)
	if match == "" {
		return 0
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	if strings.Contains(text, "min") {
		return value / 60
	}
	return value
}
