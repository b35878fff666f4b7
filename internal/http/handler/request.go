package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"drinks-service/internal/domain/drink"
	apperrors "drinks-service/pkg/errors"

	"github.com/labstack/echo/v4"
)

const (
	contentTypeJSON          = "application/json"
	maxStrictBodyBytes int64 = 1 << 20 // Keep parser bound aligned with global body limit.

	paramID = "id"
)

type createDrinkRequest struct {
	Title  string       `json:"title"`
	Recipe drink.Recipe `json:"recipe"`
}

type updateDrinkRequest struct {
	Title  *string       `json:"title"`
	Recipe *drink.Recipe `json:"recipe"`
}

func bindStrictJSON(c echo.Context, dst interface{}) error {
	if !strings.HasPrefix(strings.ToLower(c.Request().Header.Get(echo.HeaderContentType)), contentTypeJSON) {
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, msgContentTypeJSONRequired)
	}

	body := io.LimitReader(c.Request().Body, maxStrictBodyBytes)
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return apperrors.BadRequest(msgInvalidRequestBody)
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return apperrors.BadRequest(msgInvalidRequestBody)
	}

	return nil
}

// drinkID reads the :id path parameter. Anything that cannot name a stored
// drink is reported as not found.
func drinkID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param(paramID), 10, 64)
	if err != nil || id < 1 {
		return 0, apperrors.NotFound(msgDrinkNotFound)
	}
	return id, nil
}
