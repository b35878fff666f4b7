package auth

import "time"

const (
	ContextKeyClaims = "auth_claims"

	headerAuthorization = "Authorization"
	headerAccept        = "Accept"
	contentTypeJSON     = "application/json"

	bearerScheme    = "bearer"
	authHeaderParts = 2

	claimKeyID     = "kid"
	claimAlgorithm = "alg"
	keyUseSig      = "sig"

	challengeScheme            = "Bearer"
	challengeInvalidRequest    = "invalid_request"
	challengeInvalidToken      = "invalid_token"
	challengeInsufficientScope = "insufficient_scope"
)

// Error codes rendered to clients.
const (
	CodeHeaderMissing  = "authorization_header_missing"
	CodeInvalidHeader  = "invalid_header"
	CodeTokenExpired   = "token_expired"
	CodeInvalidClaims  = "invalid_claims"
	CodeUnauthorized   = "unauthorized"
	CodeKeyFetchFailed = "key_fetch_failed"
)

const (
	msgHeaderMissing          = "Authorization header is expected."
	msgSchemeNotBearer        = `Authorization header must start with "Bearer".`
	msgTokenNotFound          = "Token not found."
	msgNotBearerToken         = "Authorization header must be bearer token."
	msgMultipleHeaders        = "Only one Authorization header is allowed."
	msgAuthorizationMalformed = "Authorization malformed."
	msgKeyNotFound            = "Unable to find the appropriate key."
	msgKeyAlgMismatch         = "Signing key does not match the token algorithm."
	msgKeyFetchFailed         = "Unable to fetch signing keys."
	msgAlgNotAllowed          = "Token signing algorithm is not allowed."
	msgTokenParseFailed       = "Unable to parse authentication token."
	msgSignatureInvalid       = "Token signature could not be verified."
	msgRequiredClaimMissing   = "Token is missing required claims."
	msgTokenExpired           = "Token expired."
	msgTokenNotYetValid       = "Token is not valid yet."
	msgIncorrectClaims        = "Incorrect claims. Please, check the audience and issuer."
	msgPermissionsNotIncluded = "Permissions not included in JWT."
	msgPermissionNotFound     = "Permission not found."
	msgUnexpectedVerifierErr  = "Unable to verify authentication token."
)

const (
	defaultJWKSFetchTimeout = 5 * time.Second
	jwksFetchAttempts       = 2
	jwksRetryBackoff        = 200 * time.Millisecond
	maxJWKSResponseBytes    = 1 << 20
	jwksRefreshGroupKey     = "jwks"
	maxMissRefreshes        = 2

	errJWKSURLRequired          = "jwks url is required"
	errJWKSBuildRequestFmt      = "build jwks request: %w"
	errJWKSRequestFmt           = "fetch jwks: %w"
	errJWKSUnexpectedStatusFmt  = "fetch jwks: unexpected status %d"
	errJWKSReadBodyFmt          = "read jwks body: %w"
	errJWKSDecodeFmt            = "decode jwks: %w"
	errJWKSNoUsableKeys         = "jwks contains no usable signing keys"
	errJWKSFetchExhaustedFmt    = "jwks fetch failed after %d attempts: %w"
	errDiscoveryFmt             = "oidc discovery for %s: %w"
	errDiscoveryClaimsFmt       = "decode discovery document: %w"
	errDiscoveryMissingJWKSURI  = "discovery document has no jwks_uri"
	errVerifierResolverRequired = "key resolver is required"
	errVerifierIssuerRequired   = "issuer is required"
	errVerifierAudienceRequired = "audience is required"
	errVerifierAlgsRequired     = "at least one signing algorithm must be allowed"
	errVerifierAlgNotAsymFmt    = "signing algorithm %q is not an asymmetric algorithm"
)
