package notify

import (
	"context"
	"sync"
	"time"

	"github.com/tazhibayda/authflow/internal/helper"
	"github.com/tazhibayda/authflow/internal/log"
	"github.com/tazhibayda/authflow/internal/metrics"
	"go.uber.org/zap"
)

const DefaultSendTimeout = 10 * time.Second

// Async applies one delivery policy to every message: the send is attempted
// in the background with its own deadline, failures are logged and counted,
// and the caller never waits for or sees the outcome.
type Async struct {
	next    Sender
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewAsync(next Sender, timeout time.Duration) *Async {
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	return &Async{next: next, timeout: timeout}
}

// Send schedules m and returns immediately. It always returns nil.
func (a *Async) Send(ctx context.Context, m Message) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		metrics.Notifications.WithLabelValues(string(m.Kind), "dropped").Inc()
		log.Ctx(ctx).Warn("notification dropped after shutdown", zap.String("kind", string(m.Kind)))
		return nil
	}
	a.wg.Add(1)
	a.mu.Unlock()

	// detach from the request so the send outlives the response
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
	go func() {
		defer a.wg.Done()
		defer cancel()
		if err := a.next.Send(sendCtx, m); err != nil {
			metrics.Notifications.WithLabelValues(string(m.Kind), "error").Inc()
			log.Ctx(sendCtx).Error("notification failed",
				zap.String("kind", string(m.Kind)),
				zap.String("to", helper.EmailTag(m.To)),
				zap.Error(err),
			)
			return
		}
		metrics.Notifications.WithLabelValues(string(m.Kind), "sent").Inc()
	}()
	return nil
}

// Close stops accepting messages and waits for in-flight sends.
func (a *Async) Close() {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	a.wg.Wait()
}
