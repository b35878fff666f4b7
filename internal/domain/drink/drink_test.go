package drink

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDrink() *Drink {
	return &Drink{
		ID:    1,
		Title: "Flat White",
		Recipe: Recipe{
			{Name: "espresso", Color: "brown", Parts: 1},
			{Name: "steamed milk", Color: "white", Parts: 2},
		},
	}
}

func TestDrink_ShortHidesIngredientNames(t *testing.T) {
	body, err := json.Marshal(sampleDrink().Short())
	require.NoError(t, err)

	assert.JSONEq(t, `{"id":1,"title":"Flat White","recipe":[{"color":"brown","parts":1},{"color":"white","parts":2}]}`, string(body))
}

func TestDrink_Long(t *testing.T) {
	d := sampleDrink()
	long := d.Long()
	long.Recipe[0].Name = "mutated"

	assert.Equal(t, "espresso", d.Recipe[0].Name)

	body, err := json.Marshal(sampleDrink().Long())
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"title":"Flat White","recipe":[{"name":"espresso","color":"brown","parts":1},{"name":"steamed milk","color":"white","parts":2}]}`, string(body))
}

func TestRecipe_UnmarshalObjectOrList(t *testing.T) {
	var single Recipe
	require.NoError(t, json.Unmarshal([]byte(`{"name":"water","color":"blue","parts":1}`), &single))
	assert.Equal(t, Recipe{{Name: "water", Color: "blue", Parts: 1}}, single)

	var list Recipe
	require.NoError(t, json.Unmarshal([]byte(` [{"name":"water","color":"blue","parts":1},{"name":"ice","color":"white","parts":2}]`), &list))
	assert.Len(t, list, 2)

	var bad Recipe
	assert.Error(t, json.Unmarshal([]byte(`"water"`), &bad))
}

func TestCreateDrinkInput_Validate(t *testing.T) {
	in := CreateDrinkInput{Title: "  Water  ", Recipe: Recipe{{Name: " water ", Color: "blue", Parts: 1}}}
	in.Normalize()
	require.NoError(t, in.Validate())
	assert.Equal(t, "Water", in.Title)
	assert.Equal(t, "water", in.Recipe[0].Name)

	assert.Error(t, (&CreateDrinkInput{Title: "Water"}).Validate())
	assert.Error(t, (&CreateDrinkInput{Recipe: Recipe{{Name: "water", Color: "blue", Parts: 1}}}).Validate())
}

func TestUpdateDrinkInput(t *testing.T) {
	assert.Error(t, (&UpdateDrinkInput{}).Validate())

	title := "Cortado"
	in := UpdateDrinkInput{Title: &title}
	require.NoError(t, in.Validate())

	original := sampleDrink()
	updated := in.Apply(original)
	assert.Equal(t, "Cortado", updated.Title)
	assert.Equal(t, original.Recipe, updated.Recipe)
	assert.Equal(t, "Flat White", original.Title)

	empty := Recipe{}
	assert.Error(t, (&UpdateDrinkInput{Recipe: &empty}).Validate())
}
