// Package memory holds an in-process DrinkRepository for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"drinks-service/internal/domain/drink"
	apperrors "drinks-service/pkg/errors"
)

const (
	errDrinkNotFound    = "drink not found"
	errDrinkTitleExists = "a drink with this title already exists"
)

type DrinkRepository struct {
	mu     sync.RWMutex
	drinks map[int64]*drink.Drink
	nextID int64
}

func NewDrinkRepository() *DrinkRepository {
	return &DrinkRepository{
		drinks: make(map[int64]*drink.Drink),
		nextID: 1,
	}
}

func (r *DrinkRepository) List(_ context.Context) ([]*drink.Drink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*drink.Drink, 0, len(r.drinks))
	for _, d := range r.drinks {
		out = append(out, clone(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *DrinkRepository) GetByID(_ context.Context, id int64) (*drink.Drink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.drinks[id]
	if !ok {
		return nil, apperrors.NotFound(errDrinkNotFound)
	}
	return clone(d), nil
}

func (r *DrinkRepository) Create(_ context.Context, input drink.CreateDrinkInput) (*drink.Drink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.titleTaken(input.Title, 0) {
		return nil, apperrors.Conflict(errDrinkTitleExists)
	}

	d := &drink.Drink{ID: r.nextID, Title: input.Title, Recipe: cloneRecipe(input.Recipe)}
	r.drinks[d.ID] = d
	r.nextID++
	return clone(d), nil
}

func (r *DrinkRepository) Update(_ context.Context, d *drink.Drink) (*drink.Drink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.drinks[d.ID]; !ok {
		return nil, apperrors.NotFound(errDrinkNotFound)
	}
	if r.titleTaken(d.Title, d.ID) {
		return nil, apperrors.Conflict(errDrinkTitleExists)
	}

	stored := clone(d)
	r.drinks[d.ID] = stored
	return clone(stored), nil
}

func (r *DrinkRepository) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.drinks[id]; !ok {
		return false, nil
	}
	delete(r.drinks, id)
	return true, nil
}

// titleTaken mirrors the unique index on drinks.title. The caller holds mu.
func (r *DrinkRepository) titleTaken(title string, exceptID int64) bool {
	for id, d := range r.drinks {
		if id != exceptID && d.Title == title {
			return true
		}
	}
	return false
}

func clone(d *drink.Drink) *drink.Drink {
	return &drink.Drink{ID: d.ID, Title: d.Title, Recipe: cloneRecipe(d.Recipe)}
}

func cloneRecipe(r drink.Recipe) drink.Recipe {
	out := make(drink.Recipe, len(r))
	copy(out, r)
	return out
}
