package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ygellis/luach-bot/internal/models"
)

// MemoryStorage keeps everything in process memory. Used for local runs and
// tests; it mirrors PostgresStorage's ordering and not-found semantics.
type MemoryStorage struct {
	mu        sync.RWMutex
	events    map[string]*models.Event
	reminders map[string]*models.Reminder
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		events:    make(map[string]*models.Event),
		reminders: make(map[string]*models.Reminder),
	}
}

func (s *MemoryStorage) SaveEvent(ctx context.Context, ev *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	cp := *ev
	s.events[ev.ID] = &cp
	return nil
}

func (s *MemoryStorage) SaveReminder(ctx context.Context, r *models.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	cp := *r
	s.reminders[r.ID] = &cp
	return nil
}

func (s *MemoryStorage) ListUpcomingEvents(ctx context.Context, userID int64, from time.Time, limit int) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Event
	for _, ev := range s.events {
		if ev.UserID == userID && !ev.StartsAt.Before(from) {
			out = append(out, *ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStorage) SearchEvents(ctx context.Context, userID int64, query string) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(query)
	var out []models.Event
	for _, ev := range s.events {
		if ev.UserID == userID && strings.Contains(strings.ToLower(ev.Title), q) {
			out = append(out, *ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (s *MemoryStorage) DeleteEvent(ctx context.Context, userID int64, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[id]
	if !ok || ev.UserID != userID {
		return ErrNotFound
	}
	delete(s.events, id)
	return nil
}

func (s *MemoryStorage) UpdateEventTime(ctx context.Context, userID int64, id string, startsAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[id]
	if !ok || ev.UserID != userID {
		return ErrNotFound
	}
	ev.StartsAt = startsAt
	return nil
}

func (s *MemoryStorage) AddEventNote(ctx context.Context, userID int64, id string, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev, ok := s.events[id]
	if !ok || ev.UserID != userID {
		return ErrNotFound
	}
	if ev.Notes == "" {
		ev.Notes = note
	} else {
		ev.Notes += "\n" + note
	}
	return nil
}

func (s *MemoryStorage) Close() error {
	return nil
}
