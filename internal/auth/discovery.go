package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
)

// DiscoverJWKSURL reads jwks_uri from the issuer's OpenID configuration.
// The discovered issuer must match exactly.
func DiscoverJWKSURL(ctx context.Context, issuer string, client *http.Client) (string, error) {
	if client != nil {
		ctx = oidc.ClientContext(ctx, client)
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return "", fmt.Errorf(errDiscoveryFmt, issuer, err)
	}

	var meta struct {
		JWKSURI string `json:"jwks_uri"`
	}
	if err := provider.Claims(&meta); err != nil {
		return "", fmt.Errorf(errDiscoveryClaimsFmt, err)
	}
	if meta.JWKSURI == "" {
		return "", errors.New(errDiscoveryMissingJWKSURI)
	}

	return meta.JWKSURI, nil
}
