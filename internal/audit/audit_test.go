package audit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	mu     sync.Mutex
	events []*Event
	err    error
}

func (s *stubStore) Insert(_ context.Context, event *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.err
}

func newContext(t *testing.T) echo.Context {
	t.Helper()
	req := httptest.NewRequest(http.MethodDelete, "/drinks/7", nil)
	req.Header.Set("User-Agent", "barista-app/1.0")
	req.Header.Set(echo.HeaderXRealIP, "203.0.113.9")
	rec := httptest.NewRecorder()
	rec.Header().Set(echo.HeaderXRequestID, "req-42")
	return echo.New().NewContext(req, rec)
}

func TestNewLoggerRequiresStore(t *testing.T) {
	_, err := NewLogger(nil, logr.Discard())
	assert.Error(t, err)
}

func TestRecordCapturesRequestMetadata(t *testing.T) {
	store := &stubStore{}
	l, err := NewLogger(store, logr.Discard())
	require.NoError(t, err)
	fixed := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	l.Record(newContext(t), ActionDelete, 7, "auth0|manager")
	l.Wait()

	require.Len(t, store.events, 1)
	e := store.events[0]
	assert.NotEqual(t, uuid.Nil, e.ID)
	assert.Equal(t, ActionDelete, e.Action)
	assert.Equal(t, int64(7), e.DrinkID)
	assert.Equal(t, "auth0|manager", e.Subject)
	assert.Equal(t, "203.0.113.9", e.IPAddress)
	assert.Equal(t, "barista-app/1.0", e.UserAgent)
	assert.Equal(t, "req-42", e.RequestID)
	assert.Equal(t, fixed, e.CreatedAt)
}

func TestRecordSurvivesStoreFailure(t *testing.T) {
	store := &stubStore{err: errors.New("connection refused")}
	l, err := NewLogger(store, logr.Discard())
	require.NoError(t, err)

	l.Record(newContext(t), ActionCreate, 1, "auth0|barista")
	l.Record(newContext(t), ActionUpdate, 1, "auth0|barista")
	l.Wait()

	assert.Len(t, store.events, 2)
}

func TestLogStoreNeverFails(t *testing.T) {
	s := NewLogStore(logr.Discard())
	assert.NoError(t, s.Insert(context.Background(), &Event{ID: uuid.New(), Action: ActionCreate}))
}
