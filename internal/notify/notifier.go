// Package notify simulates asynchronous account notifications. A real
// deployment would put an email or push provider behind the same interface.
package notify

import (
	"log/slog"
	"sync"
	"time"
)

// Notifier delivers welcome notifications on a background worker so HTTP
// handlers never wait on simulated provider latency.
type Notifier struct {
	logger *slog.Logger
	delay  time.Duration

	queue  chan string
	wg     sync.WaitGroup
	closed sync.Once
}

// New starts a Notifier with the given queue capacity and simulated
// delivery delay.
func New(logger *slog.Logger, buffer int, delay time.Duration) *Notifier {
	if buffer <= 0 {
		buffer = 1
	}
	n := &Notifier{
		logger: logger,
		delay:  delay,
		queue:  make(chan string, buffer),
	}
	n.wg.Add(1)
	go n.run()
	return n
}

func (n *Notifier) run() {
	defer n.wg.Done()
	for email := range n.queue {
		if n.delay > 0 {
			time.Sleep(n.delay)
		}
		n.logger.Info("notification sent", "kind", "welcome", "email", email)
	}
}

// Welcome enqueues a welcome notification. When the queue is full the
// notification is dropped with a warning rather than blocking the caller.
func (n *Notifier) Welcome(email string) {
	select {
	case n.queue <- email:
	default:
		n.logger.Warn("notification dropped, queue full", "email", email)
	}
}

// Broadcast enqueues welcome notifications for every address.
func (n *Notifier) Broadcast(emails []string) {
	for _, email := range emails {
		n.Welcome(email)
	}
}

// Close drains pending notifications and stops the worker.
func (n *Notifier) Close() {
	n.closed.Do(func() {
		close(n.queue)
	})
	n.wg.Wait()
}
