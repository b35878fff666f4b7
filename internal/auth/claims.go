package auth

import (
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims is the wire shape of the access token payload. Permissions is
// a pointer so an absent claim can be told apart from an empty list.
type tokenClaims struct {
	jwt.RegisteredClaims
	Permissions *[]string `json:"permissions,omitempty"`
}

// Claims is the trusted claim set of a verified token. It can only be
// built by the Verifier.
type Claims struct {
	subject        string
	issuer         string
	audience       []string
	expiresAt      time.Time
	permissions    []string
	hasPermissions bool
}

func newClaims(tc *tokenClaims) *Claims {
	c := &Claims{
		subject:  tc.Subject,
		issuer:   tc.Issuer,
		audience: slices.Clone([]string(tc.Audience)),
	}
	if tc.ExpiresAt != nil {
		c.expiresAt = tc.ExpiresAt.Time
	}
	if tc.Permissions != nil {
		c.hasPermissions = true
		c.permissions = slices.Clone(*tc.Permissions)
	}
	return c
}

func (c *Claims) Subject() string      { return c.subject }
func (c *Claims) Issuer() string       { return c.issuer }
func (c *Claims) ExpiresAt() time.Time { return c.expiresAt }

func (c *Claims) Audience() []string {
	return slices.Clone(c.audience)
}

func (c *Claims) Permissions() []string {
	return slices.Clone(c.permissions)
}

// HasPermissionsClaim reports whether the token carried a permissions claim
// at all, even an empty one.
func (c *Claims) HasPermissionsClaim() bool {
	return c.hasPermissions
}

func (c *Claims) HasPermission(permission string) bool {
	return slices.Contains(c.permissions, permission)
}
