package domain

import (
	"path/filepath"
	"strings"
)

// Document categories.
const (
	CategoryVisa        = "visa"
	CategoryAirline     = "airline"
	CategoryDestination = "destination"
	CategoryAgency      = "agency"
	CategoryGeneral     = "general"
)

// categoryTerms is checked in order; the first category with a matching
// term wins.
var categoryTerms = []struct {
	category string
	terms    []string
}{
	{CategoryVisa, []string{"visa", "passport", "embassy", "consulate", "application"}},
	{CategoryAirline, []string{"airline", "flight", "baggage", "check-in", "boarding"}},
	{CategoryDestination, []string{"destination", "travel guide", "tourism", "attractions", "hotel"}},
	{CategoryAgency, []string{"policy", "terms", "conditions", "agency", "booking"}},
}

// AllCategories returns the categories in detection order, general last.
func AllCategories() []string {
	out := make([]string, 0, len(categoryTerms)+1)
	for _, c := range categoryTerms {
		out = append(out, c.category)
	}
	return append(out, CategoryGeneral)
}

// DetectCategory picks the travel category of a document from its text.
func DetectCategory(content string) string {
	lower := strings.ToLower(content)
	for _, c := range categoryTerms {
		for _, term := range c.terms {
			if strings.Contains(lower, term) {
				return c.category
			}
		}
	}
	return CategoryGeneral
}

// TitleFromFilename derives a display title: extension dropped,
// underscores and dashes turned into spaces.
func TitleFromFilename(filename string) string {
	base := filepath.Base(filename)
	title := strings.TrimSuffix(base, filepath.Ext(base))
	title = strings.ReplaceAll(title, "_", " ")
	title = strings.ReplaceAll(title, "-", " ")
	title = strings.TrimSpace(title)
	if title == "" || title == "." {
		return filename
	}
	return title
}
