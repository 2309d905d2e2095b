package bot

import (
	"context"
	"strings"
	"sync"

	"github.com/ygellis/luach-bot/internal/models"
)

// confirmWords are the replies accepted as "yes" to a pending confirmation.
var confirmWords = map[string]bool{
	"כן":    true,
	"אישור": true,
	"לאשר":  true,
	"מאשר":  true,
	"מאשרת": true,
	"אוקיי": true,
	"אוקי":  true,
}

func isConfirmation(text string) bool {
	return confirmWords[strings.TrimRight(strings.TrimSpace(text), ".!")]
}

// splitMismatch pulls the day-name mismatch warning out of the list, leaving
// the rest intact.
func splitMismatch(warnings []models.Warning) (*models.Warning, []models.Warning) {
	var mismatch *models.Warning
	var rest []models.Warning
	for i := range warnings {
		if warnings[i].Kind == models.WarnDayNameDateMismatch && mismatch == nil {
			mismatch = &warnings[i]
			continue
		}
		rest = append(rest, warnings[i])
	}
	return mismatch, rest
}

// pendingConfirm holds at most one unconfirmed draft per chat. The dispatcher
// serializes a chat's messages, so the only cross-goroutine access is between
// different chats.
type pendingConfirm struct {
	mu     sync.Mutex
	drafts map[int64]func(context.Context)
}

func newPendingConfirm() *pendingConfirm {
	return &pendingConfirm{drafts: make(map[int64]func(context.Context))}
}

func (p *pendingConfirm) set(chatID int64, run func(context.Context)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.drafts[chatID] = run
}

// take removes and returns the chat's pending draft. Any message, confirming
// or not, consumes it: a user who moved on abandoned the draft.
func (p *pendingConfirm) take(chatID int64) func(context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	run := p.drafts[chatID]
	delete(p.drafts, chatID)
	return run
}
