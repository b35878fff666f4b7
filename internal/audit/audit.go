package audit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Action represents the menu change being recorded
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

const defaultWriteTimeout = 2 * time.Second

// Event is one successful change to the menu made by an authenticated caller.
type Event struct {
	ID        uuid.UUID
	Action    Action
	DrinkID   int64
	Subject   string
	IPAddress string
	UserAgent string
	RequestID string
	CreatedAt time.Time
}

// Store persists audit events.
type Store interface {
	Insert(ctx context.Context, event *Event) error
}

// Logger writes audit events in the background so a slow store never holds
// up the response.
type Logger struct {
	store   Store
	log     logr.Logger
	timeout time.Duration
	now     func() time.Time
	wg      sync.WaitGroup
}

// NewLogger creates a new audit logger
func NewLogger(store Store, log logr.Logger) (*Logger, error) {
	if store == nil {
		return nil, errors.New("audit store is required")
	}
	return &Logger{
		store:   store,
		log:     log.WithName("audit"),
		timeout: defaultWriteTimeout,
		now:     time.Now,
	}, nil
}

// Record captures request metadata from c and stores the event asynchronously.
func (l *Logger) Record(c echo.Context, action Action, drinkID int64, subject string) {
	event := &Event{
		ID:        uuid.New(),
		Action:    action,
		DrinkID:   drinkID,
		Subject:   subject,
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
		RequestID: c.Response().Header().Get(echo.HeaderXRequestID),
		CreatedAt: l.now().UTC(),
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		defer cancel()

		if err := l.store.Insert(ctx, event); err != nil {
			l.log.Error(err, "audit write failed", "action", event.Action, "drink_id", event.DrinkID, "subject", event.Subject)
		}
	}()
}

// Wait blocks until every pending write has finished.
func (l *Logger) Wait() {
	l.wg.Wait()
}

// LogStore emits events as structured log lines. It backs the audit trail
// when there is no database.
type LogStore struct {
	log logr.Logger
}

func NewLogStore(log logr.Logger) *LogStore {
	return &LogStore{log: log.WithName("audit")}
}

func (s *LogStore) Insert(_ context.Context, event *Event) error {
	s.log.Info("menu changed",
		"event_id", event.ID.String(),
		"action", event.Action,
		"drink_id", event.DrinkID,
		"subject", event.Subject,
		"ip", event.IPAddress,
		"request_id", event.RequestID,
	)
	return nil
}
