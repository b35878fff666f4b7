package app

import (
	"context"
	"errors"
	"testing"

	"drinks-service/internal/audit"
	"drinks-service/internal/config"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHistory struct {
	drinkID int64
	limit   int
	events  []*audit.Event
	err     error
}

func (s *stubHistory) Recent(_ context.Context, drinkID int64, limit int) ([]*audit.Event, error) {
	s.drinkID, s.limit = drinkID, limit
	return s.events, s.err
}

func TestRecentAudit(t *testing.T) {
	history := &stubHistory{events: []*audit.Event{{Action: audit.ActionDelete, DrinkID: 3}}}

	events, err := recentAudit(context.Background(), history, 3, 20)
	require.NoError(t, err)
	assert.Equal(t, history.events, events)
	assert.Equal(t, int64(3), history.drinkID)
	assert.Equal(t, 20, history.limit)
}

func TestRecentAuditRejectsBadQuery(t *testing.T) {
	tests := []struct {
		name    string
		drinkID int64
		limit   int
	}{
		{name: "negative drink id", drinkID: -1, limit: 10},
		{name: "zero limit", limit: 0},
		{name: "limit too large", limit: MaxAuditLimit + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := &stubHistory{}
			_, err := recentAudit(context.Background(), history, tt.drinkID, tt.limit)
			assert.Error(t, err)
			assert.Zero(t, history.limit, "store must not be queried")
		})
	}
}

func TestRecentAuditWrapsStoreError(t *testing.T) {
	cause := errors.New("connection reset")
	_, err := recentAudit(context.Background(), &stubHistory{err: cause}, 0, 10)
	assert.ErrorIs(t, err, cause)
}

func TestRecentAuditNeedsPostgres(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{Driver: config.DriverMemory}}
	_, err := RecentAudit(context.Background(), cfg, logr.Discard(), 0, 10)
	assert.Error(t, err)
}
