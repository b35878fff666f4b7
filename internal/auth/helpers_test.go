package auth

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "https://coffee-shop.test.auth0.com/"
	testAudience = "drinks"
	testJWKSURL  = "https://coffee-shop.test.auth0.com/.well-known/jwks.json"
	testSubject  = "auth0|barista"
)

type signingKey struct {
	kid     string
	alg     string
	method  jwt.SigningMethod
	private interface{}
	public  interface{}
}

func newRSASigningKey(t *testing.T, kid string) *signingKey {
	t.Helper()
	pk, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return &signingKey{kid: kid, alg: "RS256", method: jwt.SigningMethodRS256, private: pk, public: &pk.PublicKey}
}

func newECSigningKey(t *testing.T, kid string) *signingKey {
	t.Helper()
	pk, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return &signingKey{kid: kid, alg: "ES256", method: jwt.SigningMethodES256, private: pk, public: &pk.PublicKey}
}

func (k *signingKey) jwk() jose.JSONWebKey {
	return jose.JSONWebKey{Key: k.public, KeyID: k.kid, Algorithm: k.alg, Use: "sig"}
}

func (k *signingKey) sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(k.method, claims)
	tok.Header["kid"] = k.kid
	signed, err := tok.SignedString(k.private)
	require.NoError(t, err)
	return signed
}

func buildJWKS(t *testing.T, keys ...*signingKey) []byte {
	t.Helper()
	set := jose.JSONWebKeySet{}
	for _, k := range keys {
		set.Keys = append(set.Keys, k.jwk())
	}
	body, err := json.Marshal(set)
	require.NoError(t, err)
	return body
}

func validClaims(permissions ...string) jwt.MapClaims {
	now := time.Now()
	if permissions == nil {
		permissions = []string{}
	}
	return jwt.MapClaims{
		"iss":         testIssuer,
		"aud":         testAudience,
		"sub":         testSubject,
		"iat":         now.Unix(),
		"exp":         now.Add(time.Hour).Unix(),
		"permissions": permissions,
	}
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body []byte) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(body)),
	}
}

// jwksStub serves a replaceable JWKS document and counts fetches.
type jwksStub struct {
	mu       sync.Mutex
	body     []byte
	statuses []int
	delay    time.Duration
	calls    atomic.Int32
}

func newJWKSStub(t *testing.T, keys ...*signingKey) *jwksStub {
	t.Helper()
	return &jwksStub{body: buildJWKS(t, keys...)}
}

func (s *jwksStub) publish(t *testing.T, keys ...*signingKey) {
	t.Helper()
	body := buildJWKS(t, keys...)
	s.mu.Lock()
	s.body = body
	s.mu.Unlock()
}

// failNext makes the next fetches answer with the given statuses in order.
func (s *jwksStub) failNext(statuses ...int) {
	s.mu.Lock()
	s.statuses = append(s.statuses, statuses...)
	s.mu.Unlock()
}

func (s *jwksStub) respond(ctx context.Context) (int, []byte, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return 0, nil, ctx.Err()
		case <-time.After(s.delay):
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.statuses) > 0 {
		status := s.statuses[0]
		s.statuses = s.statuses[1:]
		return status, []byte(`{"error":"unavailable"}`), nil
	}
	return http.StatusOK, s.body, nil
}

func (s *jwksStub) client() *http.Client {
	return &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		status, body, err := s.respond(req.Context())
		if err != nil {
			return nil, err
		}
		return jsonResponse(status, body), nil
	})}
}

func (s *jwksStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status, body, err := s.respond(r.Context())
	if err != nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func newTestResolver(t *testing.T, stub *jwksStub, opts ...JWKSOption) *JWKSResolver {
	t.Helper()
	opts = append([]JWKSOption{WithHTTPClient(stub.client())}, opts...)
	resolver, err := NewJWKSResolver(testJWKSURL, opts...)
	require.NoError(t, err)
	return resolver
}

func newTestVerifier(t *testing.T, keys KeyResolver, algs ...string) *Verifier {
	t.Helper()
	if len(algs) == 0 {
		algs = []string{"RS256"}
	}
	verifier, err := NewVerifier(keys, VerifierConfig{
		Issuer:      testIssuer,
		Audience:    testAudience,
		AllowedAlgs: algs,
	})
	require.NoError(t, err)
	return verifier
}

func requireAuthError(t *testing.T, err error, status int, code string) *Error {
	t.Helper()
	require.Error(t, err)
	authErr, ok := AsError(err)
	require.True(t, ok, "expected *auth.Error, got %T: %v", err, err)
	require.Equal(t, status, authErr.Status)
	require.Equal(t, code, authErr.Code)
	return authErr
}
