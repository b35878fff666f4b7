package auth

import (
	"context"
	"net/http"

	"github.com/go-logr/logr"
	"github.com/labstack/echo/v4"
)

const (
	stageExtract    = "extract"
	stageVerify     = "verify"
	stagePermission = "permission"
)

// TokenVerifier turns a raw bearer token into trusted claims.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*Claims, error)
}

// Guard is the single enforcement point in front of protected operations:
// extract, verify, check permission, then hand the claims over. The first
// failing stage ends the evaluation.
type Guard struct {
	verifier TokenVerifier
	logger   logr.Logger
}

func NewGuard(verifier TokenVerifier, logger logr.Logger) *Guard {
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}
	return &Guard{verifier: verifier, logger: logger.WithName("guard")}
}

// Authorize runs the pipeline and returns the verified claims when
// permission is granted. Every failure is an *Error.
func (g *Guard) Authorize(ctx context.Context, header http.Header, permission string) (*Claims, error) {
	token, err := ExtractBearerToken(header)
	if err != nil {
		return nil, g.reject(stageExtract, permission, err)
	}

	claims, err := g.verifier.Verify(ctx, token)
	if err != nil {
		return nil, g.reject(stageVerify, permission, err)
	}

	if err := CheckPermission(claims, permission); err != nil {
		return nil, g.reject(stagePermission, permission, err)
	}

	return claims, nil
}

func (g *Guard) reject(stage, permission string, err error) error {
	authErr, ok := AsError(err)
	if !ok {
		authErr = errInvalidHeader(http.StatusUnauthorized, msgUnexpectedVerifierErr, err)
	}

	if authErr.Status >= http.StatusInternalServerError {
		g.logger.Error(authErr.Err, "authorization failed", "stage", stage, "code", authErr.Code, "permission", permission)
	} else {
		g.logger.V(1).Info("authorization rejected", "stage", stage, "code", authErr.Code, "status", authErr.Status, "permission", permission)
	}
	return authErr
}

// ProtectedFunc is an echo handler that receives the verified claims.
type ProtectedFunc func(c echo.Context, claims *Claims) error

// Protect wraps fn so it only runs for requests holding permission. Errors
// returned by fn are passed through untouched.
func (g *Guard) Protect(permission string, fn ProtectedFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := g.Authorize(c.Request().Context(), c.Request().Header, permission)
		if err != nil {
			return err
		}
		c.Set(ContextKeyClaims, claims)
		return fn(c, claims)
	}
}

// RequirePermission is the middleware form of Protect for route groups.
func (g *Guard) RequirePermission(permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return g.Protect(permission, func(c echo.Context, _ *Claims) error {
			return next(c)
		})
	}
}

// Operation is a protected unit of work outside of echo.
type Operation[In, Out any] func(ctx context.Context, claims *Claims, in In) (Out, error)

// Require composes the guard around op. The returned function authorizes
// using the caller's headers before invoking op with the verified claims.
func Require[In, Out any](g *Guard, permission string, op Operation[In, Out]) func(ctx context.Context, header http.Header, in In) (Out, error) {
	return func(ctx context.Context, header http.Header, in In) (Out, error) {
		claims, err := g.Authorize(ctx, header, permission)
		if err != nil {
			var zero Out
			return zero, err
		}
		return op(ctx, claims, in)
	}
}

// ClaimsFromContext returns the claims stored by Protect.
func ClaimsFromContext(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(ContextKeyClaims).(*Claims)
	return claims, ok && claims != nil
}
