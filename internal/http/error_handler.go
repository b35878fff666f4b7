package http

import (
	"errors"
	"fmt"
	"net/http"

	"drinks-service/internal/auth"
	"drinks-service/internal/http/middleware"
	apperrors "drinks-service/pkg/errors"
	"drinks-service/pkg/logger"

	"github.com/go-logr/logr"
	"github.com/labstack/echo/v4"
)

const (
	jsonKeySuccess     = "success"
	jsonKeyCode        = "code"
	jsonKeyDescription = "description"
	jsonKeyError       = "error"
	jsonKeyMessage     = "message"

	headerWWWAuthenticate = "WWW-Authenticate"

	msgInternalServerError = "internal server error"
	msgResourceNotFound    = "resource not found"
	msgUnprocessable       = "unprocessable"
	msgBadRequest          = "bad request"
	msgConflict            = "resource already exists"
)

// RejectionRecorder counts authorization failures by code.
type RejectionRecorder interface {
	RecordAuthRejection(code string)
}

// NewHTTPErrorHandler renders authorization failures as
// {"success": false, "code": <status>, "description": ...} and every other
// error as {"success": false, "error": <status>, "message": ...}. Internal
// details of 5xx errors are logged and never sent.
func NewHTTPErrorHandler(log logr.Logger, rejections RejectionRecorder) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		requestID := middleware.GetRequestID(c)

		if authErr, ok := auth.AsError(err); ok {
			if rejections != nil {
				rejections.RecordAuthRejection(authErr.Code)
			}
			if challenge := authErr.Challenge(); challenge != "" {
				c.Response().Header().Set(headerWWWAuthenticate, challenge)
			}
			logError(log, c, requestID, authErr.Status, err)
			respond(c, authErr.Status, map[string]interface{}{
				jsonKeySuccess:     false,
				jsonKeyCode:        authErr.Status,
				jsonKeyDescription: authErr.Description,
			})
			return
		}

		code, message := mapError(err)
		logError(log, c, requestID, code, err)
		if code >= http.StatusInternalServerError {
			message = msgInternalServerError
		}

		respond(c, code, map[string]interface{}{
			jsonKeySuccess: false,
			jsonKeyError:   code,
			jsonKeyMessage: message,
		})
	}
}

func mapError(err error) (int, string) {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		msg, ok := httpErr.Message.(string)
		if !ok || msg == "" {
			msg = fmt.Sprintf("%v", httpErr.Message)
		}
		if httpErr.Code == http.StatusNotFound {
			msg = msgResourceNotFound
		}
		return httpErr.Code, msg
	}

	code := http.StatusInternalServerError
	message := msgInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		code, message = http.StatusNotFound, msgResourceNotFound
	case errors.Is(err, apperrors.ErrValidation):
		code, message = http.StatusUnprocessableEntity, msgUnprocessable
	case errors.Is(err, apperrors.ErrBadRequest):
		code, message = http.StatusBadRequest, msgBadRequest
	case errors.Is(err, apperrors.ErrConflict):
		code, message = http.StatusConflict, msgConflict
	}

	if appErr, ok := apperrors.As(err); ok && code < http.StatusInternalServerError && appErr.Message != "" {
		message = appErr.Message
	}
	return code, message
}

func logError(log logr.Logger, c echo.Context, requestID string, status int, err error) {
	kv := []interface{}{
		"request_id", requestID,
		"method", c.Request().Method,
		"path", c.Path(),
		"status", status,
	}
	if status >= http.StatusInternalServerError {
		log.Error(errors.New(logger.SanitizeLogMessage(err.Error())), "internal_server_error", kv...)
		return
	}
	log.V(1).Info("client_error", append(kv, "error", logger.SanitizeLogMessage(err.Error()))...)
}

func respond(c echo.Context, status int, body map[string]interface{}) {
	var err error
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		c.Logger().Error(err)
	}
}
