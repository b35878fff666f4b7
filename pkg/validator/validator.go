package validator

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

const (
	maxDrinkTitleLen     = 80
	maxIngredientNameLen = 80
	maxColorLen          = 32
	maxRecipeIngredients = 32
	minIngredientParts   = 1
	maxIngredientParts   = 100

	errDrinkTitleEmptyFmt      = "title cannot be empty"
	errDrinkTitleMaxLengthFmt  = "title must not exceed %d characters"
	errDrinkTitleControlFmt    = "title cannot contain control characters"
	errRecipeEmptyFmt          = "recipe must contain at least one ingredient"
	errRecipeTooLongFmt        = "recipe must not exceed %d ingredients"
	errIngredientNameEmptyFmt  = "ingredient %d: name cannot be empty"
	errIngredientNameLengthFmt = "ingredient %d: name must not exceed %d characters"
	errIngredientColorEmptyFmt = "ingredient %d: color cannot be empty"
	errIngredientColorLenFmt   = "ingredient %d: color must not exceed %d characters"
	errIngredientPartsFmt      = "ingredient %d: parts must be between %d and %d"
)

func DrinkTitle(title string) error {
	if title == "" {
		return fmt.Errorf(errDrinkTitleEmptyFmt)
	}

	if utf8.RuneCountInString(title) > maxDrinkTitleLen {
		return fmt.Errorf(errDrinkTitleMaxLengthFmt, maxDrinkTitleLen)
	}

	if hasControlChars(title) {
		return fmt.Errorf(errDrinkTitleControlFmt)
	}

	return nil
}

func RecipeLength(n int) error {
	if n == 0 {
		return fmt.Errorf(errRecipeEmptyFmt)
	}

	if n > maxRecipeIngredients {
		return fmt.Errorf(errRecipeTooLongFmt, maxRecipeIngredients)
	}

	return nil
}

// Ingredient validates one recipe entry; index is 1-based for messages.
func Ingredient(index int, name, color string, parts int) error {
	if name == "" {
		return fmt.Errorf(errIngredientNameEmptyFmt, index)
	}

	if utf8.RuneCountInString(name) > maxIngredientNameLen {
		return fmt.Errorf(errIngredientNameLengthFmt, index, maxIngredientNameLen)
	}

	if color == "" {
		return fmt.Errorf(errIngredientColorEmptyFmt, index)
	}

	if len(color) > maxColorLen {
		return fmt.Errorf(errIngredientColorLenFmt, index, maxColorLen)
	}

	if parts < minIngredientParts || parts > maxIngredientParts {
		return fmt.Errorf(errIngredientPartsFmt, index, minIngredientParts, maxIngredientParts)
	}

	return nil
}

func hasControlChars(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}
