package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	applog "ecomapp/internal/log"
)

// Message is one outbound notification.
type Message struct {
	Kind    string `json:"kind"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

const KindActivation = "account.activation"

type Sender interface {
	Send(ctx context.Context, m Message) error
}

// Dispatcher sends messages off the request path. Each send runs in its own
// goroutine with its own timeout; failures and panics are logged, never
// returned to the caller.
type Dispatcher struct {
	sender  Sender
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(s Sender, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{sender: s, timeout: timeout}
}

func (d *Dispatcher) Dispatch(m Message) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if p := recover(); p != nil {
				applog.Error(nil, "notify.panic", fmt.Errorf("%v", p), map[string]any{"kind": m.Kind, "to": m.To})
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.sender.Send(ctx, m); err != nil {
			applog.Error(nil, "notify.send", err, map[string]any{"kind": m.Kind, "to": m.To})
			return
		}
		applog.Info(nil, "notify.sent", map[string]any{"kind": m.Kind, "to": m.To})
	}()
}

// Wait blocks until every dispatched message has been handled.
func (d *Dispatcher) Wait() { d.wg.Wait() }

// LogSender writes messages to the application log instead of delivering them.
type LogSender struct{}

func (LogSender) Send(_ context.Context, m Message) error {
	applog.Info(nil, "notify.log", map[string]any{"kind": m.Kind, "to": m.To, "subject": m.Subject, "bytes": len(m.Body)})
	return nil
}
