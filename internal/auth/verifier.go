package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var asymmetricAlgorithms = []string{
	"RS256", "RS384", "RS512",
	"PS256", "PS384", "PS512",
	"ES256", "ES384", "ES512",
	"EdDSA",
}

type VerifierConfig struct {
	Issuer      string
	Audience    string
	AllowedAlgs []string
	Leeway      time.Duration
}

// Verifier checks a bearer token's signature against the resolved signing
// key and validates exp, aud and iss.
type Verifier struct {
	keys        KeyResolver
	allowedAlgs []string
	parser      *jwt.Parser
}

func NewVerifier(keys KeyResolver, cfg VerifierConfig) (*Verifier, error) {
	if keys == nil {
		return nil, errors.New(errVerifierResolverRequired)
	}
	if cfg.Issuer == "" {
		return nil, errors.New(errVerifierIssuerRequired)
	}
	if cfg.Audience == "" {
		return nil, errors.New(errVerifierAudienceRequired)
	}
	if err := ValidateAlgorithms(cfg.AllowedAlgs); err != nil {
		return nil, err
	}

	return &Verifier{
		keys:        keys,
		allowedAlgs: slices.Clone(cfg.AllowedAlgs),
		parser: jwt.NewParser(
			jwt.WithValidMethods(cfg.AllowedAlgs),
			jwt.WithExpirationRequired(),
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithAudience(cfg.Audience),
			jwt.WithLeeway(cfg.Leeway),
		),
	}, nil
}

// ValidateAlgorithms accepts only non-empty lists of asymmetric JWS algorithms.
func ValidateAlgorithms(algs []string) error {
	if len(algs) == 0 {
		return errors.New(errVerifierAlgsRequired)
	}
	for _, alg := range algs {
		if !slices.Contains(asymmetricAlgorithms, alg) {
			return fmt.Errorf(errVerifierAlgNotAsymFmt, alg)
		}
	}
	return nil
}

// Verify returns the trusted claims of raw. The unverified header is only
// read to pick the key; nothing from the payload is trusted until the full
// parse succeeds.
func (v *Verifier) Verify(ctx context.Context, raw string) (*Claims, error) {
	token, _, err := v.parser.ParseUnverified(raw, &tokenClaims{})
	if err != nil {
		return nil, errInvalidHeader(http.StatusBadRequest, msgTokenParseFailed, err)
	}

	alg, _ := token.Header[claimAlgorithm].(string)
	if !slices.Contains(v.allowedAlgs, alg) {
		return nil, errInvalidHeader(http.StatusUnauthorized, msgAlgNotAllowed, nil)
	}

	kid, _ := token.Header[claimKeyID].(string)
	key, err := v.keys.Resolve(ctx, kid)
	if err != nil {
		return nil, err
	}
	if key.Algorithm != "" && key.Algorithm != alg {
		return nil, errInvalidHeader(http.StatusUnauthorized, msgKeyAlgMismatch, nil)
	}

	verified := &tokenClaims{}
	if _, err := v.parser.ParseWithClaims(raw, verified, func(*jwt.Token) (interface{}, error) {
		return key.Key, nil
	}); err != nil {
		return nil, classifyParseError(err)
	}

	return newClaims(verified), nil
}

func classifyParseError(err error) *Error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return errInvalidHeader(http.StatusBadRequest, msgTokenParseFailed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return errInvalidHeader(http.StatusUnauthorized, msgSignatureInvalid, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return errTokenExpired(err)
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return errInvalidHeader(http.StatusBadRequest, msgRequiredClaimMissing, err)
	case errors.Is(err, jwt.ErrTokenInvalidAudience), errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return errInvalidClaims(http.StatusUnauthorized, msgIncorrectClaims, err)
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return errInvalidClaims(http.StatusUnauthorized, msgTokenNotYetValid, err)
	default:
		return errInvalidHeader(http.StatusBadRequest, msgTokenParseFailed, err)
	}
}
