package handler

import (
	"net/http"

	"drinks-service/internal/audit"
	"drinks-service/internal/auth"
	"drinks-service/internal/domain/drink"
	apperrors "drinks-service/pkg/errors"

	"github.com/go-logr/logr"
	"github.com/labstack/echo/v4"
)

// Permissions required by the drink routes.
const (
	PermissionGetDrinksDetail = "get:drinks-detail"
	PermissionPostDrinks      = "post:drinks"
	PermissionPatchDrinks     = "patch:drinks"
	PermissionDeleteDrinks    = "delete:drinks"
)

type DrinkHandler struct {
	drinks DrinkRepository
	menu   MenuCache
	audit  AuditRecorder
	log    logr.Logger
}

// NewDrinkHandler wires the drink routes. menu may be nil, which disables
// caching of the public menu, and so may recorder.
func NewDrinkHandler(drinks DrinkRepository, menu MenuCache, recorder AuditRecorder, log logr.Logger) *DrinkHandler {
	return &DrinkHandler{drinks: drinks, menu: menu, audit: recorder, log: log.WithName("drinks")}
}

// ListMenu is public and only exposes the short form of each recipe.
func (h *DrinkHandler) ListMenu(c echo.Context) error {
	ctx := c.Request().Context()

	var generation uint64
	cacheable := false
	if h.menu != nil {
		cached, ok, err := h.menu.Get(ctx)
		if err != nil {
			h.log.Error(err, "menu cache read failed")
		} else if ok {
			return c.JSONBlob(http.StatusOK, cached)
		}

		// Taken before listing so a write that lands meanwhile wins.
		if generation, err = h.menu.Generation(ctx); err != nil {
			h.log.Error(err, "menu cache generation read failed")
		} else {
			cacheable = true
		}
	}

	drinks, err := h.drinks.List(ctx)
	if err != nil {
		return err
	}

	body, err := encodeMenu(drinks)
	if err != nil {
		return err
	}

	if cacheable {
		stored, err := h.menu.Set(ctx, generation, body)
		if err != nil {
			h.log.Error(err, "menu cache write failed")
		} else if !stored {
			h.log.V(1).Info("menu changed while listing, not cached")
		}
	}

	return c.JSONBlob(http.StatusOK, body)
}

func (h *DrinkHandler) ListDetail(c echo.Context, _ *auth.Claims) error {
	drinks, err := h.drinks.List(c.Request().Context())
	if err != nil {
		return err
	}
	return respondDetail(c, drinks...)
}

func (h *DrinkHandler) Create(c echo.Context, claims *auth.Claims) error {
	var req createDrinkRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}

	input := drink.CreateDrinkInput{Title: req.Title, Recipe: req.Recipe}
	input.Normalize()
	if err := input.Validate(); err != nil {
		return apperrors.Validation(err.Error())
	}

	created, err := h.drinks.Create(c.Request().Context(), input)
	if err != nil {
		return err
	}

	h.log.Info("drink created", "id", created.ID, "subject", claims.Subject())
	h.menuChanged(c, audit.ActionCreate, created.ID, claims)
	return respondDetail(c, created)
}

func (h *DrinkHandler) Update(c echo.Context, claims *auth.Claims) error {
	id, err := drinkID(c)
	if err != nil {
		return err
	}

	var req updateDrinkRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}

	input := drink.UpdateDrinkInput{Title: req.Title, Recipe: req.Recipe}
	input.Normalize()
	if err := input.Validate(); err != nil {
		return apperrors.Validation(err.Error())
	}

	ctx := c.Request().Context()
	current, err := h.drinks.GetByID(ctx, id)
	if err != nil {
		return err
	}

	updated, err := h.drinks.Update(ctx, input.Apply(current))
	if err != nil {
		return err
	}

	h.log.Info("drink updated", "id", updated.ID, "subject", claims.Subject())
	h.menuChanged(c, audit.ActionUpdate, updated.ID, claims)
	return respondDetail(c, updated)
}

func (h *DrinkHandler) Delete(c echo.Context, claims *auth.Claims) error {
	id, err := drinkID(c)
	if err != nil {
		return err
	}

	deleted, err := h.drinks.Delete(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NotFound(msgDrinkNotFound)
	}

	h.log.Info("drink deleted", "id", id, "subject", claims.Subject())
	h.menuChanged(c, audit.ActionDelete, id, claims)
	return c.JSON(http.StatusOK, deleteResponse{Success: true, Delete: id})
}

func (h *DrinkHandler) menuChanged(c echo.Context, action audit.Action, id int64, claims *auth.Claims) {
	if h.audit != nil {
		h.audit.Record(c, action, id, claims.Subject())
	}
	h.invalidateMenu(c)
}

// invalidateMenu failures leave a stale menu until the cache TTL expires.
func (h *DrinkHandler) invalidateMenu(c echo.Context) {
	if h.menu == nil {
		return
	}
	if err := h.menu.Invalidate(c.Request().Context()); err != nil {
		h.log.Error(err, "menu cache invalidation failed")
	}
}
