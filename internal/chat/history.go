package chat

import (
	"sync"
	"time"

	list "github.com/bahlo/generic-list-go"
	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Intent    string    `json:"intent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

const DefaultHistorySize = 200

// History keeps the most recent messages, evicting the oldest past capacity.
type History struct {
	mu       sync.RWMutex
	capacity int
	items    *list.List[Message]
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &History{capacity: capacity, items: list.New[Message]()}
}

func newMessage(role Role, content string, intent Intent, at time.Time) Message {
	m := Message{ID: uuid.NewString(), Role: role, Content: content, CreatedAt: at}
	if role == RoleAssistant {
		m.Intent = intent.String()
	}
	return m
}

func (h *History) Append(msgs ...Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, m := range msgs {
		h.items.PushBack(m)
		for h.items.Len() > h.capacity {
			h.items.Remove(h.items.Front())
		}
	}
}

// Messages returns a copy, oldest first.
func (h *History) Messages() []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Message, 0, h.items.Len())
	for e := h.items.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value)
	}
	return out
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.items.Len()
}
