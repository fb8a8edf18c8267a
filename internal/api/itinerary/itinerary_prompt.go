package itinerary

import (
	"fmt"
	"strings"
)

const systemPrompt = "You are a trip planner AI. Respond with valid JSON only."

// buildSynthesisPrompt asks for scores and an itinerary in one response so a
// single completion covers both concerns.
func buildSynthesisPrompt(req SynthesisRequest) string {
	var b strings.Builder

	b.WriteString("User preferences:\n")
	fmt.Fprintf(&b, "- Interests: %s\n", strings.Join(req.Prefs.Interests, ", "))
	fmt.Fprintf(&b, "- Budget: %s\n", req.Prefs.Budget)
	fmt.Fprintf(&b, "- Travel mode: %s\n", req.Prefs.TravelMode)

	if req.Weather != nil {
		fmt.Fprintf(&b, "\nWeather: %s, %.0fF now, peak precipitation chance %.0f%% over the next hours.\n",
			req.Weather.Summary, req.Weather.TempF, req.Weather.MaxPrecipProb)
	}

	b.WriteString("\nCandidate activities:\n")
	for _, a := range req.Activities {
		fmt.Fprintf(&b, "- %q (type: %s, cost: %s, hours: %s, travel: %.0f min)\n",
			a.Name, a.CategoryLabel, a.Cost, a.Hours, a.TravelTimeMin)
	}

	b.WriteString("\nFor EVERY candidate activity, produce a relevance score from 0 to 100, a short reason, ")
	b.WriteString("whether it is an outdoor activity, and an optional weather warning. ")
	b.WriteString("Weigh interest alignment highest, then budget fit, accessibility, and uniqueness. ")
	if req.Weather != nil && req.Weather.MaxPrecipProb > 60 {
		b.WriteString("Rain is likely: apply a 10-20 point penalty to outdoor activities and add a weather warning to them. ")
	}

	if req.Window != nil {
		fmt.Fprintf(&b, "\nThen curate a time-scheduled itinerary between %s and %s, using only the candidate activity names, ",
			req.Window.Start.Format("3:04 PM"), req.Window.End.Format("3:04 PM"))
		b.WriteString("with 1-2 hours per stop and travel time between stops.\n")
	} else {
		b.WriteString("\nThen curate a ranked list of the best 10-12 stops, using only the candidate activity names, without scheduled times.\n")
	}

	b.WriteString(`
Output a single JSON object with exactly this shape:
{
  "scores": [
    {"name": "Activity Name", "score": 85, "reason": "why it fits", "is_outdoor": false, "weather_warning": ""}
  ],
  "itinerary": [
    {"time": "9:00 AM", "name": "Activity Name", "duration": "1.5 hours", "cost": "low", "reason": "why this stop", "travel_time_min": 10}
  ]
}
Return only the JSON object, no additional text or markdown.`)

	return b.String()
}
