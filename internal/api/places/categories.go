package places

import "strings"

// DefaultCategories is used when no interest token resolves to anything, so a
// places query never goes out with zero categories.
var DefaultCategories = []string{"tourism.attraction", "catering.restaurant", "leisure.park"}

// maxCodesPerToken bounds how many catalog codes a single fuzzy token may pull
// in, keeping vague tokens like "fun" from flooding the query.
const maxCodesPerToken = 5

// synonyms maps common free-text interests straight to provider category
// codes. Extend as needed; unmatched tokens fall through to the fuzzy catalog
// scan.
var synonyms = map[string][]string{
	"restaurant":      {"catering.restaurant"},
	"food":            {"catering"},
	"dining":          {"catering.restaurant"},
	"park":            {"leisure.park"},
	"museum":          {"entertainment.museum"},
	"cafe":            {"catering.cafe"},
	"coffee":          {"catering.cafe"},
	"coffee shop":     {"catering.cafe"},
	"bar":             {"catering.bar"},
	"pub":             {"catering.pub"},
	"shopping":        {"commercial"},
	"shopping mall":   {"commercial.shopping_mall"},
	"mall":            {"commercial.shopping_mall"},
	"bookstore":       {"commercial.books"},
	"beach":           {"beach"},
	"trail":           {"leisure"},
	"hike":            {"leisure", "natural.forest"},
	"hiking":          {"leisure", "natural.forest"},
	"nature":          {"natural.forest", "leisure.park"},
	"attraction":      {"tourism.attraction"},
	"zoo":             {"entertainment.zoo"},
	"aquarium":        {"entertainment.aquarium"},
	"historic":        {"tourism.sights", "entertainment.museum"},
	"historical site": {"tourism.sights"},
	"history":         {"tourism.sights", "entertainment.museum"},
	"art":             {"entertainment.culture.gallery"},
	"art gallery":     {"entertainment.culture.gallery"},
	"gallery":         {"entertainment.culture.gallery"},
	"theater":         {"entertainment.culture.theatre"},
	"theatre":         {"entertainment.culture.theatre"},
	"cinema":          {"entertainment.cinema"},
	"movies":          {"entertainment.cinema"},
	"music":           {"entertainment.culture.arts_centre"},
	"music venue":     {"entertainment.culture.arts_centre"},
	"bakery":          {"commercial.food_and_drink.bakery"},
	"spa":             {"leisure.spa"},
	"resort":          {"beach.beach_resort", "accommodation.hotel"},
	"hostel":          {"accommodation.hostel"},
	"brewery":         {"catering.pub", "catering.bar"},
}

// catalog is the provider category vocabulary scanned by the fuzzy layer.
var catalog = []string{
	"accommodation.hostel",
	"accommodation.hotel",
	"beach",
	"beach.beach_resort",
	"catering.bar",
	"catering.cafe",
	"catering.fast_food",
	"catering.ice_cream",
	"catering.pub",
	"catering.restaurant",
	"commercial.books",
	"commercial.food_and_drink.bakery",
	"commercial.gift_and_souvenir",
	"commercial.marketplace",
	"commercial.shopping_mall",
	"entertainment.aquarium",
	"entertainment.cinema",
	"entertainment.culture.arts_centre",
	"entertainment.culture.gallery",
	"entertainment.culture.theatre",
	"entertainment.museum",
	"entertainment.theme_park",
	"entertainment.zoo",
	"leisure.park",
	"leisure.picnic",
	"leisure.playground",
	"leisure.spa",
	"national_park",
	"natural.forest",
	"natural.water",
	"sport.fitness",
	"tourism.attraction",
	"tourism.information",
	"tourism.sights",
}

// CategoryMapper turns free-text interest tags into provider category codes.
type CategoryMapper struct {
	synonyms map[string][]string
	catalog  []string
}

func NewCategoryMapper() *CategoryMapper {
	return &CategoryMapper{synonyms: synonyms, catalog: catalog}
}

// Map resolves each interest token through the synonym table first and the
// fuzzy catalog scan second. Results are deduplicated in first-seen order;
// when nothing resolves, the fixed default set is returned.
func (m *CategoryMapper) Map(interests []string) []string {
	var codes []string
	seen := make(map[string]bool)
	add := func(code string) {
		if !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}

	for _, raw := range interests {
		token := strings.ToLower(strings.TrimSpace(raw))
		if token == "" {
			continue
		}
		if mapped, ok := m.synonyms[token]; ok {
			for _, code := range mapped {
				add(code)
			}
			continue
		}
		for _, code := range m.fuzzyMatch(token) {
			add(code)
		}
	}

	if len(codes) == 0 {
		return append([]string(nil), DefaultCategories...)
	}
	return codes
}

// fuzzyMatch scans the catalog for codes the token plausibly names: the token
// (or its space-to-underscore form) as a substring of the code, the token
// equal to the code's last dot segment, or the token contained in the code
// with separators treated as spaces.
func (m *CategoryMapper) fuzzyMatch(token string) []string {
	underscored := strings.ReplaceAll(token, " ", "_")
	var matches []string
	for _, code := range m.catalog {
		if len(matches) >= maxCodesPerToken {
			break
		}
		segments := strings.Split(code, ".")
		last := segments[len(segments)-1]
		loose := strings.NewReplacer(".", " ", "_", " ").Replace(code)
		if strings.Contains(code, token) || strings.Contains(code, underscored) ||
			last == underscored || strings.Contains(loose, token) {
			matches = append(matches, code)
		}
	}
	return matches
}
