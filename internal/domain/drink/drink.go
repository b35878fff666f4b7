package drink

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"drinks-service/pkg/validator"
)

type Ingredient struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Parts int    `json:"parts"`
}

// Recipe is the ordered list of ingredients. In JSON it accepts a single
// ingredient object as shorthand for a one-element list.
type Recipe []Ingredient

func (r *Recipe) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var single Ingredient
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return err
		}
		*r = Recipe{single}
		return nil
	}

	var list []Ingredient
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return err
	}
	*r = list
	return nil
}

type Drink struct {
	ID     int64
	Title  string
	Recipe Recipe
}

// ShortIngredient hides ingredient names from the public menu.
type ShortIngredient struct {
	Color string `json:"color"`
	Parts int    `json:"parts"`
}

type Short struct {
	ID     int64             `json:"id"`
	Title  string            `json:"title"`
	Recipe []ShortIngredient `json:"recipe"`
}

type Long struct {
	ID     int64        `json:"id"`
	Title  string       `json:"title"`
	Recipe []Ingredient `json:"recipe"`
}

func (d *Drink) Short() Short {
	recipe := make([]ShortIngredient, 0, len(d.Recipe))
	for _, ing := range d.Recipe {
		recipe = append(recipe, ShortIngredient{Color: ing.Color, Parts: ing.Parts})
	}
	return Short{ID: d.ID, Title: d.Title, Recipe: recipe}
}

func (d *Drink) Long() Long {
	recipe := make([]Ingredient, len(d.Recipe))
	copy(recipe, d.Recipe)
	return Long{ID: d.ID, Title: d.Title, Recipe: recipe}
}

type CreateDrinkInput struct {
	Title  string
	Recipe Recipe
}

// UpdateDrinkInput carries a partial update; nil fields are left unchanged.
type UpdateDrinkInput struct {
	Title  *string
	Recipe *Recipe
}

func (in *CreateDrinkInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Recipe = in.Recipe.normalized()
}

func (in *CreateDrinkInput) Validate() error {
	if err := validator.DrinkTitle(in.Title); err != nil {
		return err
	}
	return in.Recipe.Validate()
}

func (in *UpdateDrinkInput) Normalize() {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		in.Title = &title
	}
	if in.Recipe != nil {
		recipe := in.Recipe.normalized()
		in.Recipe = &recipe
	}
}

func (in *UpdateDrinkInput) Validate() error {
	if in.Title == nil && in.Recipe == nil {
		return errors.New(errEmptyUpdate)
	}
	if in.Title != nil {
		if err := validator.DrinkTitle(*in.Title); err != nil {
			return err
		}
	}
	if in.Recipe != nil {
		return in.Recipe.Validate()
	}
	return nil
}

// Apply returns a copy of d with the update applied.
func (in *UpdateDrinkInput) Apply(d *Drink) *Drink {
	updated := &Drink{ID: d.ID, Title: d.Title, Recipe: d.Recipe}
	if in.Title != nil {
		updated.Title = *in.Title
	}
	if in.Recipe != nil {
		updated.Recipe = *in.Recipe
	}
	return updated
}

func (r Recipe) Validate() error {
	if err := validator.RecipeLength(len(r)); err != nil {
		return err
	}
	for i, ing := range r {
		if err := validator.Ingredient(i+1, ing.Name, ing.Color, ing.Parts); err != nil {
			return err
		}
	}
	return nil
}

func (r Recipe) normalized() Recipe {
	out := make(Recipe, len(r))
	for i, ing := range r {
		out[i] = Ingredient{
			Name:  strings.TrimSpace(ing.Name),
			Color: strings.TrimSpace(ing.Color),
			Parts: ing.Parts,
		}
	}
	return out
}

const errEmptyUpdate = "update must change the title or the recipe"
