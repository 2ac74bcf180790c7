package analysis

import (
	"regexp"
	"strings"
)

// ContextThemes maps a theme category to the keyword tokens matched in the
// playlist's name and description. Categories with no matches hold empty
// slices, never nil, so the serialized form is stable.
type ContextThemes map[string][]string

// Theme categories, in the order they appear in serialized output.
const (
	ThemeMood     = "mood"
	ThemeGenre    = "genre"
	ThemeActivity = "activity"
	ThemeTime     = "time"
	ThemeDecade   = "decade"
)

var themeCategories = []string{ThemeMood, ThemeGenre, ThemeActivity, ThemeTime, ThemeDecade}

var wordPattern = regexp.MustCompile(`\w+`)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"is": true, "are": true, "to": true, "for": true, "in": true, "on": true,
	"by": true, "with": true, "of": true, "this": true,
}

// themeVocabularies are the curated keyword sets per category. A token may
// belong to more than one category ("party" is both a mood and an activity).
var themeVocabularies = map[string]map[string]bool{
	ThemeMood: toSet(
		"happy", "sad", "chill", "relax", "energetic", "calm", "focus", "study",
		"party", "upbeat", "melancholy", "mellow", "peaceful", "aggressive",
		"angry", "emotional", "dark", "light", "dreamy", "intense", "nostalgic",
		"uplifting", "somber", "reflective", "contemplative", "cheerful",
		"gloomy", "atmospheric", "vibrant",
	),
	ThemeGenre: toSet(
		"rock", "pop", "hip", "hop", "hip hop", "rap", "jazz", "classical",
		"electronic", "dance", "metal", "country", "folk", "indie", "soul",
		"funk", "blues", "r&b", "reggae", "disco", "punk", "grunge", "techno",
		"house", "ambient", "trap", "edm", "alternative", "lo-fi",
		"instrumental", "vocal", "acoustic", "experimental",
	),
	ThemeActivity: toSet(
		"workout", "run", "gym", "sleep", "drive", "commute", "work", "coding",
		"reading", "cooking", "cleaning", "gaming", "meditation", "yoga",
		"walking", "hiking", "biking", "swimming", "dinner", "party",
		"concentration", "relaxation", "travel", "road", "trip", "road trip",
		"background", "focus", "productivity", "motivation", "inspiration",
		"dancing", "exercising", "cardio", "strength", "study",
	),
	ThemeTime: toSet(
		"morning", "night", "evening", "weekend", "summer", "winter", "spring",
		"fall", "autumn", "holiday", "christmas", "halloween", "new year",
		"season", "daily", "weekly", "monthly", "yearly", "dawn", "dusk",
		"afternoon", "midnight", "sunrise", "sunset", "late night",
	),
	ThemeDecade: toSet(
		"50s", "60s", "70s", "80s", "90s", "00s", "10s", "20s", "fifties",
		"sixties", "seventies", "eighties", "nineties", "aughts", "tens",
		"twenties", "retro", "vintage", "classic", "modern", "contemporary",
		"oldies", "throwback",
	),
}

func toSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// ExtractContext tokenizes the playlist name and description and matches
// unigrams and bigrams against the theme vocabularies. Pure function; no
// matches is a valid outcome with all categories empty.
func ExtractContext(name, description string) ContextThemes {
	combined := strings.ToLower(name + " " + description)

	tokens := wordPattern.FindAllString(combined, -1)
	filtered := tokens[:0:0]
	for _, t := range tokens {
		if !stopWords[t] {
			filtered = append(filtered, t)
		}
	}

	themes := make(ContextThemes, len(themeCategories))
	for _, cat := range themeCategories {
		themes[cat] = []string{}
	}

	for _, token := range filtered {
		for _, cat := range themeCategories {
			if themeVocabularies[cat][token] {
				themes[cat] = append(themes[cat], token)
			}
		}
	}

	// Bigrams catch multi-word keywords like "road trip" and "late night".
	if len(filtered) > 1 {
		for i := 0; i < len(filtered)-1; i++ {
			bigram := filtered[i] + " " + filtered[i+1]
			for _, cat := range themeCategories {
				if themeVocabularies[cat][bigram] {
					themes[cat] = append(themes[cat], bigram)
				}
			}
		}
	}

	return themes
}

// Has reports whether any of the given keywords was matched in the category.
func (c ContextThemes) Has(category string, keywords ...string) bool {
	for _, matched := range c[category] {
		for _, kw := range keywords {
			if matched == kw {
				return true
			}
		}
	}
	return false
}

// Keywords returns every matched keyword across all categories, in category
// order.
func (c ContextThemes) Keywords() []string {
	var out []string
	for _, cat := range themeCategories {
		out = append(out, c[cat]...)
	}
	return out
}
