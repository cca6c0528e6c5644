package models

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	CuisineTypes = []string{
		"italian", "chinese", "mexican", "indian", "french", "japanese",
		"thai", "mediterranean", "american", "african", "other",
	}
	MealTypes = []string{
		"breakfast", "lunch", "dinner", "snack", "dessert", "appetizer", "beverage",
	}
	DietaryTags = []string{
		"vegetarian", "vegan", "gluten_free", "dairy_free", "keto",
		"paleo", "low_carb", "halal", "kosher", "none",
	}
	DifficultyLevels = []string{"easy", "medium", "hard"}
)

const (
	DefaultCuisine    = "other"
	DefaultMealType   = "dinner"
	DefaultDietary    = "none"
	DefaultDifficulty = "medium"
)

// Choice is an enumerated value with its display label.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Label turns a stored value such as "gluten_free" into "Gluten Free".
func Label(value string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(value, "_", " "))
}

// Choices pairs every value with its label.
func Choices(values []string) []Choice {
	out := make([]Choice, len(values))
	for i, v := range values {
		out[i] = Choice{Value: v, Label: Label(v)}
	}
	return out
}

// IsChoice reports whether value is one of values.
func IsChoice(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
