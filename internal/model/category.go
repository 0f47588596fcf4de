package model

import "strings"

// Category is one of the fixed expense category labels.
type Category string

// Expense categories, in display order.
const (
	CategoryVideoProduction     Category = "Video Production"
	CategoryCreativeServices    Category = "Creative Services"
	CategoryEquipmentRental     Category = "Equipment Rental"
	CategorySoftwareLicenses    Category = "Software & Licenses"
	CategoryTalentCrew          Category = "Talent & Crew"
	CategoryLocationStudio      Category = "Location & Studio"
	CategoryPostProduction      Category = "Post-Production"
	CategoryMarketing           Category = "Marketing & Advertising"
	CategoryTravel              Category = "Travel & Transportation"
	CategoryClientEntertainment Category = "Client Entertainment"
	CategoryOther               Category = "Other"
)

// Categories is the closed, ordered category list. The order fixes legend
// and color assignment in every breakdown.
var Categories = []Category{
	CategoryVideoProduction,
	CategoryCreativeServices,
	CategoryEquipmentRental,
	CategorySoftwareLicenses,
	CategoryTalentCrew,
	CategoryLocationStudio,
	CategoryPostProduction,
	CategoryMarketing,
	CategoryTravel,
	CategoryClientEntertainment,
	CategoryOther,
}

// IsCategory reports whether s is exactly one of the category labels.
func IsCategory(s string) bool {
	for _, c := range Categories {
		if string(c) == s {
			return true
		}
	}
	return false
}

// CategoryIndex returns the position of c in Categories, or -1.
func CategoryIndex(c Category) int {
	for i, cat := range Categories {
		if cat == c {
			return i
		}
	}
	return -1
}

// ParseCategory resolves user input to a canonical label. It accepts an
// exact label, a case-insensitive label, or a unique case-insensitive prefix.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if IsCategory(s) {
		return Category(s), true
	}

	lower := strings.ToLower(s)
	var match Category
	matches := 0
	for _, c := range Categories {
		cl := strings.ToLower(string(c))
		if cl == lower {
			return c, true
		}
		if strings.HasPrefix(cl, lower) {
			match = c
			matches++
		}
	}
	if matches == 1 {
		return match, true
	}
	return "", false
}

// CategoryNames returns the labels as plain strings.
func CategoryNames() []string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = string(c)
	}
	return names
}
