package bot

import (
	"fmt"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

func chatMessage(chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{Text: text, Chat: &tgbotapi.Chat{ID: chatID}}
}

func TestDispatcherSameChatPreservesOrder(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	d := newDispatcher(func(m *tgbotapi.Message) {
		mu.Lock()
		seen = append(seen, m.Text)
		mu.Unlock()
	})

	var want []string
	for i := 0; i < 50; i++ {
		text := fmt.Sprintf("msg-%d", i)
		want = append(want, text)
		d.enqueue(chatMessage(1, text))
	}
	d.stop()

	assert.Equal(t, want, seen)
}

func TestDispatcherChatsDoNotBlockEachOther(t *testing.T) {
	release := make(chan struct{})
	otherDone := make(chan struct{})
	d := newDispatcher(func(m *tgbotapi.Message) {
		switch m.Chat.ID {
		case 1:
			<-release
		case 2:
			close(otherDone)
		}
	})

	d.enqueue(chatMessage(1, "blocks"))
	d.enqueue(chatMessage(2, "independent"))

	select {
	case <-otherDone:
	case <-time.After(2 * time.Second):
		t.Fatal("second chat waited on the first chat's handler")
	}

	close(release)
	d.stop()
}
