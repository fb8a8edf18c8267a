package cache

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/MattZaluski/SWETripPlanner/internal/types"
)

// Coordinate rounding applied before keys are derived. Rounding trades a
// little staleness for far better hit rates on near-duplicate queries. The
// values are tunable, not a contract: 2 decimals is roughly a 1 km tolerance,
// 3 decimals roughly 100 m.
const (
	AreaPrecision  = 2 // places, weather
	RoutePrecision = 3 // routing legs
)

func roundCoord(c types.Coordinate, precision int) string {
	return strconv.FormatFloat(c.Lat, 'f', precision, 64) + "," +
		strconv.FormatFloat(c.Lng, 'f', precision, 64)
}

// digest collapses a canonical request description into a fixed-width key.
func digest(class, canonical string) string {
	return fmt.Sprintf("%s:%x", class, sha256.Sum256([]byte(canonical)))
}

// GeocodeKey ignores case and surrounding whitespace so trivially different
// spellings of one address collide.
func GeocodeKey(address string) string {
	return digest("geocode", strings.ToLower(strings.TrimSpace(address)))
}

// PlacesKey derives the key for a places search. Categories are sorted first
// so semantically identical requests collide regardless of interest order.
func PlacesKey(center types.Coordinate, radiusM int, categories []string) string {
	sorted := append([]string(nil), categories...)
	sort.Strings(sorted)
	canonical := roundCoord(center, AreaPrecision) + "|" +
		strconv.Itoa(radiusM) + "|" + strings.Join(sorted, ",")
	return digest("places", canonical)
}

// WeatherKey keys a forecast lookup on the rounded coordinate alone.
func WeatherKey(at types.Coordinate) string {
	return digest("weather", roundCoord(at, AreaPrecision))
}

// RouteKey keys a routing request on the ordered waypoint list and mode.
// Waypoint order is part of the request semantics and is NOT sorted.
func RouteKey(waypoints []types.Coordinate, mode types.TravelMode) string {
	parts := make([]string, 0, len(waypoints)+1)
	for _, w := range waypoints {
		parts = append(parts, roundCoord(w, RoutePrecision))
	}
	parts = append(parts, string(mode))
	return digest("route", strings.Join(parts, "|"))
}

// ScoringKey keys one synthesis call: the preference fields that shape the
// prompt, the sorted candidate names, the weather fingerprint, and the time
// window when scheduling.
func ScoringKey(prefs types.TripPreferences, activityNames []string, weatherFingerprint string, window *types.TimeWindow) string {
	names := append([]string(nil), activityNames...)
	sort.Strings(names)
	interests := append([]string(nil), prefs.Interests...)
	sort.Strings(interests)

	var b strings.Builder
	b.WriteString(strings.Join(interests, ","))
	b.WriteString("|")
	b.WriteString(string(prefs.Budget))
	b.WriteString("|")
	b.WriteString(string(prefs.TravelMode))
	b.WriteString("|")
	b.WriteString(strings.Join(names, ","))
	b.WriteString("|")
	b.WriteString(weatherFingerprint)
	if window != nil {
		b.WriteString("|")
		b.WriteString(window.Start.UTC().Format("2006-01-02T15:04"))
		b.WriteString("-")
		b.WriteString(window.End.UTC().Format("2006-01-02T15:04"))
	}
	return digest("scoring", b.String())
}
