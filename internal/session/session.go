// Package session is the short-lived per-conversation context the pipeline
// reads: recently created events a follow-up message may reference, and the
// user's default lead time. The pipeline never writes here; the bot layer
// owns the writes and the store bounds the recency window.
package session

import (
	"context"

	"github.com/ygellis/luach-bot/internal/models"
)

// Store is the conversation-context lookup.
type Store interface {
	// GetRecentReferencedEvents returns events created recently in this
	// conversation, newest first, within the store's recency window.
	GetRecentReferencedEvents(ctx context.Context, conversationID string) ([]models.ReferencedEvent, error)
	// RememberEvent records a just-created event for later reference.
	RememberEvent(ctx context.Context, conversationID string, ev models.ReferencedEvent) error
	// GetDefaultLeadTimeMinutes returns the user's default lead time, or the
	// configured fallback when the user never set one.
	GetDefaultLeadTimeMinutes(ctx context.Context, userID int64) (int, error)
	// SetDefaultLeadTimeMinutes stores the user's default lead time.
	SetDefaultLeadTimeMinutes(ctx context.Context, userID int64, minutes int) error
	Close() error
}
