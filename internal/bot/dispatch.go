package bot

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// dispatcher serializes handling per chat while keeping chats concurrent
// with each other. A follow-up like "תזכיר לי יום לפני" must see the event
// the previous message in the same conversation created, so each chat gets
// one worker goroutine draining its queue in arrival order.
type dispatcher struct {
	mu     sync.Mutex
	queues map[int64]chan *tgbotapi.Message
	handle func(*tgbotapi.Message)
	wg     sync.WaitGroup
}

func newDispatcher(handle func(*tgbotapi.Message)) *dispatcher {
	return &dispatcher{
		queues: make(map[int64]chan *tgbotapi.Message),
		handle: handle,
	}
}

func (d *dispatcher) enqueue(m *tgbotapi.Message) {
	d.mu.Lock()
	q, ok := d.queues[m.Chat.ID]
	if !ok {
		q = make(chan *tgbotapi.Message, 64)
		d.queues[m.Chat.ID] = q
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for msg := range q {
				d.handle(msg)
			}
		}()
	}
	d.mu.Unlock()
	q <- m
}

// stop closes every queue and waits for the workers to drain. Enqueueing
// after stop is a programming error.
func (d *dispatcher) stop() {
	d.mu.Lock()
	for _, q := range d.queues {
		close(q)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
