package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-logr/logr"
	"golang.org/x/sync/singleflight"
)

// KeyResolver maps a token's key identifier to public key material.
type KeyResolver interface {
	Resolve(ctx context.Context, kid string) (jose.JSONWebKey, error)
}

type keySet struct {
	keys      map[string]jose.JSONWebKey
	fetchedAt time.Time
}

func (s *keySet) lookup(kid string) (jose.JSONWebKey, bool) {
	if s == nil {
		return jose.JSONWebKey{}, false
	}
	key, ok := s.keys[kid]
	return key, ok
}

// JWKSResolver caches the identity provider's JWKS document. The cache is
// filled lazily and refetched whenever a kid is not found. Every refresh
// builds a complete new set and publishes it with a single pointer swap,
// so readers never observe a partially written set. Concurrent refreshes
// collapse into one HTTP request.
type JWKSResolver struct {
	url                string
	client             *http.Client
	fetchTimeout       time.Duration
	minRefreshInterval time.Duration
	logger             logr.Logger
	now                func() time.Time

	current atomic.Pointer[keySet]
	group   singleflight.Group
}

type JWKSOption func(*JWKSResolver)

func WithHTTPClient(client *http.Client) JWKSOption {
	return func(r *JWKSResolver) {
		if client != nil {
			r.client = client
		}
	}
}

// WithFetchTimeout bounds one refresh, retries included.
func WithFetchTimeout(timeout time.Duration) JWKSOption {
	return func(r *JWKSResolver) {
		if timeout > 0 {
			r.fetchTimeout = timeout
		}
	}
}

// WithMinRefreshInterval limits how often an unknown kid may trigger a
// refetch. Zero disables the limit.
func WithMinRefreshInterval(interval time.Duration) JWKSOption {
	return func(r *JWKSResolver) {
		r.minRefreshInterval = interval
	}
}

func WithLogger(logger logr.Logger) JWKSOption {
	return func(r *JWKSResolver) {
		r.logger = logger
	}
}

func NewJWKSResolver(jwksURL string, opts ...JWKSOption) (*JWKSResolver, error) {
	if jwksURL == "" {
		return nil, errors.New(errJWKSURLRequired)
	}

	r := &JWKSResolver{
		url:          jwksURL,
		client:       http.DefaultClient,
		fetchTimeout: defaultJWKSFetchTimeout,
		logger:       logr.Discard(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Resolve returns the key for kid, refetching the key set once when the kid
// is unknown. When the refetch was shared with a refresh that started
// earlier, one more refresh is attempted so a freshly rotated key is not
// missed.
func (r *JWKSResolver) Resolve(ctx context.Context, kid string) (jose.JSONWebKey, error) {
	if kid == "" {
		return jose.JSONWebKey{}, errInvalidHeader(http.StatusBadRequest, msgAuthorizationMalformed, nil)
	}

	seen := r.current.Load()
	if key, ok := seen.lookup(kid); ok {
		return key, nil
	}

	for i := 0; i < maxMissRefreshes; i++ {
		// Another request may have swapped in a newer set since the miss.
		if latest := r.current.Load(); latest != seen {
			if key, ok := latest.lookup(kid); ok {
				return key, nil
			}
			seen = latest
		}
		if !r.refreshDue(seen) {
			break
		}

		set, shared, err := r.refresh(ctx)
		if err != nil {
			return jose.JSONWebKey{}, errKeyFetchFailed(err)
		}
		if key, ok := set.lookup(kid); ok {
			return key, nil
		}
		if !shared {
			break
		}
		seen = set
	}

	r.logger.V(1).Info("jwks kid not found", "kid", kid)
	return jose.JSONWebKey{}, errInvalidHeader(http.StatusBadRequest, msgKeyNotFound, nil)
}

// Refresh forces a fetch of the key set, e.g. to warm the cache at startup.
func (r *JWKSResolver) Refresh(ctx context.Context) error {
	_, _, err := r.refresh(ctx)
	return err
}

func (r *JWKSResolver) refreshDue(seen *keySet) bool {
	if seen == nil || r.minRefreshInterval <= 0 {
		return true
	}
	return r.now().Sub(seen.fetchedAt) >= r.minRefreshInterval
}

func (r *JWKSResolver) refresh(ctx context.Context) (*keySet, bool, error) {
	ch := r.group.DoChan(jwksRefreshGroupKey, func() (interface{}, error) {
		// Detached from the caller: other waiters share this fetch.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.fetchTimeout)
		defer cancel()

		set, err := r.fetchWithRetry(fetchCtx)
		if err != nil {
			r.logger.Error(err, "jwks refresh failed", "url", r.url)
			return nil, err
		}

		r.current.Store(set)
		r.logger.V(1).Info("jwks refreshed", "url", r.url, "keys", len(set.keys))
		return set, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Shared, res.Err
		}
		return res.Val.(*keySet), res.Shared, nil
	}
}

func (r *JWKSResolver) fetchWithRetry(ctx context.Context) (*keySet, error) {
	var lastErr error
	for attempt := 1; attempt <= jwksFetchAttempts; attempt++ {
		set, err := r.fetchOnce(ctx)
		if err == nil {
			return set, nil
		}
		lastErr = err

		if attempt == jwksFetchAttempts {
			break
		}
		r.logger.V(1).Info("jwks fetch failed, retrying", "attempt", attempt, "error", err.Error())
		if sleepErr := sleepWithContext(ctx, jwksRetryBackoff); sleepErr != nil {
			break
		}
	}
	return nil, fmt.Errorf(errJWKSFetchExhaustedFmt, jwksFetchAttempts, lastErr)
}

func (r *JWKSResolver) fetchOnce(ctx context.Context) (*keySet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf(errJWKSBuildRequestFmt, err)
	}
	req.Header.Set(headerAccept, contentTypeJSON)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf(errJWKSRequestFmt, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf(errJWKSUnexpectedStatusFmt, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxJWKSResponseBytes))
	if err != nil {
		return nil, fmt.Errorf(errJWKSReadBodyFmt, err)
	}

	return parseKeySet(body, r.now())
}

// parseKeySet keeps public signing keys only. Entries go-jose cannot decode,
// private or symmetric keys, and keys without a kid are skipped rather than
// failing the whole document.
func parseKeySet(body []byte, fetchedAt time.Time) (*keySet, error) {
	var doc struct {
		Keys []json.RawMessage `json:"keys"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf(errJWKSDecodeFmt, err)
	}

	keys := make(map[string]jose.JSONWebKey, len(doc.Keys))
	for _, raw := range doc.Keys {
		var key jose.JSONWebKey
		if err := key.UnmarshalJSON(raw); err != nil {
			continue
		}
		if key.KeyID == "" || !key.IsPublic() {
			continue
		}
		if key.Use != "" && key.Use != keyUseSig {
			continue
		}
		if _, dup := keys[key.KeyID]; dup {
			continue
		}
		keys[key.KeyID] = key
	}

	if len(keys) == 0 {
		return nil, errors.New(errJWKSNoUsableKeys)
	}

	return &keySet{keys: keys, fetchedAt: fetchedAt}, nil
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
