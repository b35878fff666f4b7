package handler

import (
	"context"

	"drinks-service/internal/audit"
	"drinks-service/internal/domain/drink"

	"github.com/labstack/echo/v4"
)

// Consumer-side interfaces defined by handlers

type DrinkRepository interface {
	List(ctx context.Context) ([]*drink.Drink, error)
	GetByID(ctx context.Context, id int64) (*drink.Drink, error)
	Create(ctx context.Context, input drink.CreateDrinkInput) (*drink.Drink, error)
	Update(ctx context.Context, d *drink.Drink) (*drink.Drink, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type MenuCache interface {
	Get(ctx context.Context) ([]byte, bool, error)
	Generation(ctx context.Context) (uint64, error)
	Set(ctx context.Context, generation uint64, menu []byte) (bool, error)
	Invalidate(ctx context.Context) error
}

type AuditRecorder interface {
	Record(c echo.Context, action audit.Action, drinkID int64, subject string)
}
