package mail

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-app/internal/errutil"
	"booking-app/internal/logging"
)

// blockingSender holds every Send until release is closed.
type blockingSender struct {
	release chan struct{}
	mu      sync.Mutex
	sent    int
}

func (s *blockingSender) Send(ctx context.Context, _ Message) error {
	select {
	case <-s.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.mu.Lock()
	s.sent++
	s.mu.Unlock()
	return nil
}

func TestNotifyPasswordReset_RendersAndSends(t *testing.T) {
	sender := NewMemorySender()
	n := NewNotifier(sender, logging.Discard(), nil, NotifierConfig{
		From:     "noreply@example.com",
		Workers:  1,
		ResetTTL: 24 * time.Hour,
	})

	link := "http://localhost:3000/reset?token=abc"
	require.NoError(t, n.NotifyPasswordReset(context.Background(), "alice@example.com", "Alice", link))
	require.NoError(t, n.Shutdown(context.Background()))

	msgs := sender.Messages()
	require.Len(t, msgs, 1)
	msg := msgs[0]
	assert.Equal(t, "noreply@example.com", msg.From)
	assert.Equal(t, "alice@example.com", msg.To)
	assert.Equal(t, ResetSubject, msg.Subject)
	assert.Contains(t, msg.Text, link)
	assert.Contains(t, msg.Text, "24 hours")
	assert.Contains(t, msg.Text, "Hello Alice")
	assert.Contains(t, msg.HTML, `href="http://localhost:3000/reset?token=abc"`)
}

func TestNotifier_HTMLEscapesName(t *testing.T) {
	sender := NewMemorySender()
	n := NewNotifier(sender, logging.Discard(), nil, NotifierConfig{Workers: 1})

	require.NoError(t, n.NotifyPasswordReset(context.Background(), "a@example.com", "<script>", "http://x/reset?token=t"))
	require.NoError(t, n.Shutdown(context.Background()))

	msgs := sender.Messages()
	require.Len(t, msgs, 1)
	assert.NotContains(t, msgs[0].HTML, "<script>")
}

func TestNotifier_QueueFull(t *testing.T) {
	sender := &blockingSender{release: make(chan struct{})}
	n := NewNotifier(sender, logging.Discard(), nil, NotifierConfig{QueueSize: 1, Workers: 1})
	ctx := context.Background()

	// The first message may already be picked up by the worker; fill until rejected.
	var err error
	for i := 0; i < 3 && err == nil; i++ {
		err = n.Enqueue(ctx, Message{To: "a@example.com"})
	}
	errutil.AssertErrorCode(t, err, "MAIL_QUEUE_FULL")

	close(sender.release)
	require.NoError(t, n.Shutdown(ctx))
}

func TestNotifier_ClosedRejects(t *testing.T) {
	n := NewNotifier(NewMemorySender(), logging.Discard(), nil, NotifierConfig{})
	require.NoError(t, n.Shutdown(context.Background()))
	require.NoError(t, n.Shutdown(context.Background()))

	err := n.Enqueue(context.Background(), Message{To: "a@example.com"})
	errutil.AssertErrorCode(t, err, "MAIL_NOTIFIER_CLOSED")
}

func TestNotifier_ShutdownDrainsQueue(t *testing.T) {
	sender := NewMemorySender()
	n := NewNotifier(sender, logging.Discard(), nil, NotifierConfig{QueueSize: 10, Workers: 2})

	for i := 0; i < 10; i++ {
		require.NoError(t, n.Enqueue(context.Background(), Message{To: "a@example.com"}))
	}
	require.NoError(t, n.Shutdown(context.Background()))
	assert.Len(t, sender.Messages(), 10)
}

func TestNotifier_ShutdownRespectsContext(t *testing.T) {
	sender := &blockingSender{release: make(chan struct{})}
	n := NewNotifier(sender, logging.Discard(), nil, NotifierConfig{Workers: 1, SendTimeout: time.Minute})
	require.NoError(t, n.Enqueue(context.Background(), Message{To: "a@example.com"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := n.Shutdown(ctx)
	errutil.AssertErrorCode(t, err, "MAIL_SHUTDOWN_TIMEOUT")

	close(sender.release)
	require.NoError(t, n.Shutdown(context.Background()))
}

func TestNotifier_SendFailureIsSwallowed(t *testing.T) {
	sender := NewMemorySender()
	sender.Err = errors.New("relay down")
	n := NewNotifier(sender, logging.Discard(), nil, NotifierConfig{Workers: 1})

	require.NoError(t, n.Enqueue(context.Background(), Message{To: "a@example.com"}))
	require.NoError(t, n.Shutdown(context.Background()))
	assert.Empty(t, sender.Messages())
}

func TestHumanDuration(t *testing.T) {
	assert.Equal(t, "24 hours", humanDuration(24*time.Hour))
	assert.Equal(t, "1 hour", humanDuration(time.Hour))
	assert.Equal(t, "2 days", humanDuration(48*time.Hour))
	assert.Equal(t, "15 minutes", humanDuration(15*time.Minute))
	assert.Equal(t, "1m30s", humanDuration(90*time.Second))
}
