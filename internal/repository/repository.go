package repository

import (
	"context"

	"drinks-service/internal/domain/drink"
)

// DrinkRepository is the persistence contract for drinks. GetByID and
// Update return an apperrors.NotFound error for unknown ids; Delete
// reports whether a row was removed.
type DrinkRepository interface {
	List(ctx context.Context) ([]*drink.Drink, error)
	GetByID(ctx context.Context, id int64) (*drink.Drink, error)
	Create(ctx context.Context, input drink.CreateDrinkInput) (*drink.Drink, error)
	Update(ctx context.Context, d *drink.Drink) (*drink.Drink, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
