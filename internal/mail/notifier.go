package mail

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/oops"

	"booking-app/internal/errutil"
	"booking-app/internal/metrics"
)

var (
	ErrQueueFull      = oops.Code("MAIL_QUEUE_FULL").Errorf("mail queue is full")
	ErrNotifierClosed = oops.Code("MAIL_NOTIFIER_CLOSED").Errorf("mail notifier is shut down")
)

// NotifierConfig configures a Notifier.
type NotifierConfig struct {
	From        string
	QueueSize   int
	Workers     int
	SendTimeout time.Duration
	// ResetTTL is only used to tell the recipient how long the link is valid.
	ResetTTL time.Duration
}

// Notifier renders mails and hands them to a pool of workers through a bounded queue.
// Callers never wait for delivery.
type Notifier struct {
	sender  Sender
	logger  *slog.Logger
	metrics *metrics.Metrics
	cfg     NotifierConfig

	mu     sync.RWMutex
	closed bool
	queue  chan Message
	wg     sync.WaitGroup
}

// NewNotifier starts cfg.Workers workers. Call Shutdown to stop them.
func NewNotifier(sender Sender, logger *slog.Logger, m *metrics.Metrics, cfg NotifierConfig) *Notifier {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}

	n := &Notifier{
		sender:  sender,
		logger:  logger,
		metrics: m,
		cfg:     cfg,
		queue:   make(chan Message, cfg.QueueSize),
	}

	n.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go n.work()
	}
	return n
}

// NotifyPasswordReset queues the password reset mail for to.
func (n *Notifier) NotifyPasswordReset(ctx context.Context, to, name, link string) error {
	text, html, err := renderReset(resetData{
		Name:      name,
		Link:      link,
		ExpiresIn: humanDuration(n.cfg.ResetTTL),
	})
	if err != nil {
		return err
	}

	return n.Enqueue(ctx, Message{
		From:    n.cfg.From,
		To:      to,
		Subject: ResetSubject,
		Text:    text,
		HTML:    html,
	})
}

// Enqueue adds msg to the queue without blocking.
func (n *Notifier) Enqueue(ctx context.Context, msg Message) error {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		return ErrNotifierClosed
	}

	select {
	case n.queue <- msg:
		n.metrics.Mail("queued")
		n.metrics.SetMailQueueDepth(len(n.queue))
		return nil
	default:
		n.metrics.Mail("dropped")
		n.logger.WarnContext(ctx, "mail queue full, dropping message", "subject", msg.Subject)
		return ErrQueueFull
	}
}

// Shutdown stops accepting messages and waits for queued ones to be sent or ctx to end.
func (n *Notifier) Shutdown(ctx context.Context) error {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()

	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return oops.Code("MAIL_SHUTDOWN_TIMEOUT").With("pending", len(n.queue)).Wrap(ctx.Err())
	}
}

func (n *Notifier) work() {
	defer n.wg.Done()

	for msg := range n.queue {
		n.metrics.SetMailQueueDepth(len(n.queue))
		n.send(msg)
	}
}

func (n *Notifier) send(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), n.cfg.SendTimeout)
	defer cancel()

	if err := n.sender.Send(ctx, msg); err != nil {
		n.metrics.Mail("failed")
		errutil.LogError(ctx, n.logger, "failed to send email", oops.With("subject", msg.Subject).Wrap(err))
		return
	}
	n.metrics.Mail("sent")
}

func humanDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "a limited time"
	case d%(24*time.Hour) == 0 && d > 24*time.Hour:
		return fmt.Sprintf("%d days", d/(24*time.Hour))
	case d == time.Hour:
		return "1 hour"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	default:
		return d.String()
	}
}
