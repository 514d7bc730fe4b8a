package mail

import (
	"context"
	"sync"
)

// MemorySender keeps sent messages in memory. Safe for concurrent use.
type MemorySender struct {
	mu       sync.Mutex
	messages []Message

	// Err, when set, is returned by Send instead of recording the message.
	Err error
}

func NewMemorySender() *MemorySender {
	return &MemorySender{}
}

func (s *MemorySender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.messages = append(s.messages, msg)
	return nil
}

// Messages returns a copy of the recorded messages.
func (s *MemorySender) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}
