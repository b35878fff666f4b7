package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var challengeEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Error is the only failure type produced by the authorization pipeline.
// Status is the HTTP status the boundary layer responds with; Err is an
// internal cause that is logged but never rendered.
type Error struct {
	Status      int
	Code        string
	Description string
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%d): %s: %v", e.Code, e.Status, e.Description, e.Err)
	}
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Description)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError reports whether err carries an authorization failure.
func AsError(err error) (*Error, bool) {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}

func newError(status int, code, description string, cause error) *Error {
	return &Error{Status: status, Code: code, Description: description, Err: cause}
}

func errHeaderMissing() *Error {
	return newError(http.StatusUnauthorized, CodeHeaderMissing, msgHeaderMissing, nil)
}

func errInvalidHeader(status int, description string, cause error) *Error {
	return newError(status, CodeInvalidHeader, description, cause)
}

func errInvalidClaims(status int, description string, cause error) *Error {
	return newError(status, CodeInvalidClaims, description, cause)
}

func errTokenExpired(cause error) *Error {
	return newError(http.StatusUnauthorized, CodeTokenExpired, msgTokenExpired, cause)
}

func errPermissionDenied() *Error {
	return newError(http.StatusForbidden, CodeUnauthorized, msgPermissionNotFound, nil)
}

func errKeyFetchFailed(cause error) *Error {
	return newError(http.StatusInternalServerError, CodeKeyFetchFailed, msgKeyFetchFailed, cause)
}

// Challenge returns the RFC 6750 WWW-Authenticate value for e, or "" when
// the failure is not the caller's fault.
func (e *Error) Challenge() string {
	var kind string
	switch {
	case e.Code == CodeHeaderMissing:
		return challengeScheme
	case e.Status == http.StatusForbidden:
		kind = challengeInsufficientScope
	case e.Status == http.StatusBadRequest:
		kind = challengeInvalidRequest
	case e.Status == http.StatusUnauthorized:
		kind = challengeInvalidToken
	default:
		return ""
	}
	return fmt.Sprintf(`%s error="%s", error_description="%s"`, challengeScheme, kind, challengeEscaper.Replace(e.Description))
}
