package segments

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Skippable SponsorBlock categories.
const (
	CategorySponsor       = "sponsor"
	CategorySelfPromo     = "selfpromo"
	CategoryInteraction   = "interaction"
	CategoryIntro         = "intro"
	CategoryOutro         = "outro"
	CategoryPreview       = "preview"
	CategoryHook          = "hook"
	CategoryFiller        = "filler"
	CategoryMusicOfftopic = "music_offtopic"
)

var knownCategories = []string{
	CategorySponsor,
	CategorySelfPromo,
	CategoryInteraction,
	CategoryIntro,
	CategoryOutro,
	CategoryPreview,
	CategoryHook,
	CategoryFiller,
	CategoryMusicOfftopic,
}

// DefaultCategories are excluded when no categories are configured.
func DefaultCategories() []string {
	return []string{CategorySponsor, CategorySelfPromo}
}

// KnownCategories lists every category that can be requested for exclusion.
func KnownCategories() []string {
	return slices.Clone(knownCategories)
}

// IsKnownCategory reports whether category can be requested for exclusion.
func IsKnownCategory(category string) bool {
	return slices.Contains(knownCategories, category)
}

// CategoryLabel renders a category for display, e.g. "music_offtopic" becomes
// "Music Offtopic" and "selfpromo" becomes "Self Promotion".
func CategoryLabel(category string) string {
	switch category {
	case "":
		return "Unknown"
	case CategorySelfPromo:
		return "Self Promotion"
	}
	return cases.Title(language.English).String(strings.ReplaceAll(category, "_", " "))
}

// CategoryLabels renders a list of categories joined with commas.
func CategoryLabels(categories []string) string {
	if len(categories) == 0 {
		return CategoryLabel("")
	}
	labels := make([]string, 0, len(categories))
	for _, category := range categories {
		labels = append(labels, CategoryLabel(category))
	}
	return strings.Join(labels, ", ")
}
