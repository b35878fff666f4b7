package auth

import (
	"net/http"
	"strings"
)

// ExtractBearerToken returns the raw credential from the Authorization header.
// The value must be exactly "<scheme> <token>" with a single space and a
// bearer scheme word; no decoding happens here.
func ExtractBearerToken(header http.Header) (string, error) {
	values := header.Values(headerAuthorization)
	if len(values) == 0 {
		return "", errHeaderMissing()
	}
	if len(values) > 1 {
		return "", errInvalidHeader(http.StatusUnauthorized, msgMultipleHeaders, nil)
	}

	parts := strings.Split(values[0], " ")
	if !strings.EqualFold(parts[0], bearerScheme) {
		return "", errInvalidHeader(http.StatusUnauthorized, msgSchemeNotBearer, nil)
	}
	if len(parts) < authHeaderParts || parts[1] == "" {
		return "", errInvalidHeader(http.StatusUnauthorized, msgTokenNotFound, nil)
	}
	if len(parts) > authHeaderParts {
		return "", errInvalidHeader(http.StatusUnauthorized, msgNotBearerToken, nil)
	}

	return parts[1], nil
}
