package storage

import (
	"context"
	"errors"
	"time"

	"github.com/ygellis/luach-bot/internal/models"
)

// ErrNotFound is returned when an event or reminder id does not exist for
// the given user.
var ErrNotFound = errors.New("storage: not found")

type Storage interface {
	SaveEvent(ctx context.Context, ev *models.Event) error
	SaveReminder(ctx context.Context, r *models.Reminder) error

	// ListUpcomingEvents returns the user's events starting at or after from,
	// soonest first, capped at limit.
	ListUpcomingEvents(ctx context.Context, userID int64, from time.Time, limit int) ([]models.Event, error)

	// SearchEvents returns the user's events whose title contains the query,
	// soonest first.
	SearchEvents(ctx context.Context, userID int64, query string) ([]models.Event, error)

	DeleteEvent(ctx context.Context, userID int64, id string) error
	UpdateEventTime(ctx context.Context, userID int64, id string, startsAt time.Time) error

	// AddEventNote appends a line to the event's notes.
	AddEventNote(ctx context.Context, userID int64, id string, note string) error

	Close() error
}
