package handler

import (
	"encoding/json"
	"net/http"

	"drinks-service/internal/domain/drink"

	"github.com/labstack/echo/v4"
)

const (
	msgContentTypeJSONRequired = "Content-Type must be application/json"
	msgInvalidRequestBody      = "invalid request body"
	msgDrinkNotFound           = "drink not found"
)

type menuResponse struct {
	Success bool          `json:"success"`
	Drinks  []drink.Short `json:"drinks"`
}

type detailResponse struct {
	Success bool         `json:"success"`
	Drinks  []drink.Long `json:"drinks"`
}

type deleteResponse struct {
	Success bool  `json:"success"`
	Delete  int64 `json:"delete"`
}

func encodeMenu(drinks []*drink.Drink) ([]byte, error) {
	resp := menuResponse{Success: true, Drinks: make([]drink.Short, 0, len(drinks))}
	for _, d := range drinks {
		resp.Drinks = append(resp.Drinks, d.Short())
	}
	return json.Marshal(resp)
}

func respondDetail(c echo.Context, drinks ...*drink.Drink) error {
	resp := detailResponse{Success: true, Drinks: make([]drink.Long, 0, len(drinks))}
	for _, d := range drinks {
		resp.Drinks = append(resp.Drinks, d.Long())
	}
	return c.JSON(http.StatusOK, resp)
}
