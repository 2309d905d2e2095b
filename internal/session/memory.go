package session

import (
	"context"
	"sync"
	"time"

	"github.com/ygellis/luach-bot/internal/models"
)

type rememberedEvent struct {
	ev       models.ReferencedEvent
	storedAt time.Time
}

// MemoryStore is the in-process Store for development and tests. The recency
// window is enforced on read.
type MemoryStore struct {
	mu          sync.RWMutex
	events      map[string][]rememberedEvent
	leads       map[int64]int
	window      time.Duration
	defaultLead int
	now         func() time.Time
}

func NewMemoryStore(window time.Duration, defaultLead int) *MemoryStore {
	if window <= 0 {
		window = 30 * time.Minute
	}
	return &MemoryStore{
		events:      make(map[string][]rememberedEvent),
		leads:       make(map[int64]int),
		window:      window,
		defaultLead: defaultLead,
		now:         time.Now,
	}
}

func (s *MemoryStore) GetRecentReferencedEvents(_ context.Context, conversationID string) ([]models.ReferencedEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := s.now().Add(-s.window)
	var out []models.ReferencedEvent
	// Stored newest first.
	for _, re := range s.events[conversationID] {
		if re.storedAt.After(cutoff) {
			out = append(out, re.ev)
		}
	}
	return out, nil
}

func (s *MemoryStore) RememberEvent(_ context.Context, conversationID string, ev models.ReferencedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := append([]rememberedEvent{{ev: ev, storedAt: s.now()}}, s.events[conversationID]...)
	if len(list) > maxReferencedEvents {
		list = list[:maxReferencedEvents]
	}
	s.events[conversationID] = list
	return nil
}

func (s *MemoryStore) GetDefaultLeadTimeMinutes(_ context.Context, userID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if lead, ok := s.leads[userID]; ok {
		return lead, nil
	}
	return s.defaultLead, nil
}

func (s *MemoryStore) SetDefaultLeadTimeMinutes(_ context.Context, userID int64, minutes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.leads[userID] = minutes
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
