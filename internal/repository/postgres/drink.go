package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"drinks-service/internal/domain/drink"
	apperrors "drinks-service/pkg/errors"

	"github.com/jackc/pgx/v5"
)

type DrinkRepository struct {
	db *DB
}

func NewDrinkRepository(db *DB) *DrinkRepository {
	return &DrinkRepository{db: db}
}

func (r *DrinkRepository) List(ctx context.Context) ([]*drink.Drink, error) {
	query := `SELECT id, title, recipe FROM drinks ORDER BY id`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, errFailedListDrinks(err)
	}
	defer rows.Close()

	drinks := make([]*drink.Drink, 0)
	for rows.Next() {
		d, err := scanDrink(rows)
		if err != nil {
			return nil, errFailedScanDrink(err)
		}
		drinks = append(drinks, d)
	}

	if err := rows.Err(); err != nil {
		return nil, errIterateDrinks(err)
	}

	return drinks, nil
}

func (r *DrinkRepository) GetByID(ctx context.Context, id int64) (*drink.Drink, error) {
	query := `SELECT id, title, recipe FROM drinks WHERE id = $1`

	d, err := scanDrink(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound(errDrinkNotFound)
		}
		return nil, errFailedGetDrink(err)
	}

	return d, nil
}

func (r *DrinkRepository) Create(ctx context.Context, input drink.CreateDrinkInput) (*drink.Drink, error) {
	recipe, err := json.Marshal(input.Recipe)
	if err != nil {
		return nil, errFailedEncodeRecipe(err)
	}

	query := `
		INSERT INTO drinks (title, recipe)
		VALUES ($1, $2)
		RETURNING id, title, recipe
	`

	d, err := scanDrink(r.db.Pool.QueryRow(ctx, query, input.Title, recipe))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict(errDrinkTitleExists)
		}
		return nil, errFailedCreateDrink(err)
	}

	return d, nil
}

// Update overwrites the title and recipe of the drink with d.ID.
func (r *DrinkRepository) Update(ctx context.Context, d *drink.Drink) (*drink.Drink, error) {
	recipe, err := json.Marshal(d.Recipe)
	if err != nil {
		return nil, errFailedEncodeRecipe(err)
	}

	query := `
		UPDATE drinks
		SET title = $2, recipe = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING id, title, recipe
	`

	updated, err := scanDrink(r.db.Pool.QueryRow(ctx, query, d.ID, d.Title, recipe))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound(errDrinkNotFound)
		}
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict(errDrinkTitleExists)
		}
		return nil, errFailedUpdateDrink(err)
	}

	return updated, nil
}

func (r *DrinkRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM drinks WHERE id = $1`, id)
	if err != nil {
		return false, errFailedDeleteDrink(err)
	}
	return tag.RowsAffected() > 0, nil
}

// scanDrink leaves pgx errors unwrapped so callers can still match
// pgx.ErrNoRows and constraint violations.
func scanDrink(row pgx.Row) (*drink.Drink, error) {
	var (
		d      drink.Drink
		recipe []byte
	)
	if err := row.Scan(&d.ID, &d.Title, &recipe); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(recipe, &d.Recipe); err != nil {
		return nil, errFailedDecodeRecipe(d.ID, err)
	}
	return &d, nil
}
