package notify_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ecomapp/internal/notify"
	"ecomapp/internal/web"

	"github.com/Shopify/sarama"
	"github.com/Shopify/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	Err    string         `json:"err"`
	Fields map[string]any `json:"fields"`
}

type lockedWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	w := &lockedWriter{}
	oldW, oldFlags := log.Writer(), log.Flags()
	log.SetOutput(w)
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var out []logEntry
	for _, line := range strings.Split(strings.TrimSpace(w.buf.String()), "\n") {
		var e logEntry
		if json.Unmarshal([]byte(line), &e) == nil {
			out = append(out, e)
		}
	}
	return out
}

type senderFunc func(ctx context.Context, m notify.Message) error

func (f senderFunc) Send(ctx context.Context, m notify.Message) error { return f(ctx, m) }

func TestDispatcherLogsFailuresAndPanics(t *testing.T) {
	var calls atomic.Int32
	d := notify.NewDispatcher(senderFunc(func(_ context.Context, m notify.Message) error {
		calls.Add(1)
		switch m.To {
		case "fail@x.io":
			return errors.New("smtp down")
		case "panic@x.io":
			panic("boom")
		}
		return nil
	}), time.Second)

	entries := captureLogs(t, func() {
		d.Dispatch(notify.Message{To: "ok@x.io"})
		d.Dispatch(notify.Message{To: "fail@x.io"})
		d.Dispatch(notify.Message{To: "panic@x.io"})
		d.Wait()
	})

	assert.EqualValues(t, 3, calls.Load())
	actions := map[string]int{}
	for _, e := range entries {
		actions[e.Action]++
	}
	assert.Equal(t, 1, actions["notify.sent"])
	assert.Equal(t, 1, actions["notify.send"])
	assert.Equal(t, 1, actions["notify.panic"])
}

func TestDispatcherAppliesTimeout(t *testing.T) {
	d := notify.NewDispatcher(senderFunc(func(ctx context.Context, _ notify.Message) error {
		<-ctx.Done()
		return ctx.Err()
	}), 20*time.Millisecond)

	entries := captureLogs(t, func() {
		d.Dispatch(notify.Message{To: "slow@x.io"})
		d.Wait()
	})
	require.Len(t, entries, 1)
	assert.Equal(t, "error", entries[0].Level)
	assert.Contains(t, entries[0].Err, "deadline exceeded")
}

func TestKafkaSenderPublishesJSON(t *testing.T) {
	p := mocks.NewSyncProducer(t, nil)
	p.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var m notify.Message
		if err := json.Unmarshal(val, &m); err != nil {
			return err
		}
		if m.To != "a@x.io" || m.Kind != notify.KindActivation {
			return errors.New("unexpected payload")
		}
		return nil
	})
	p.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	s := notify.NewKafkaSenderWithProducer(p, "ecomapp.notifications")
	require.NoError(t, s.Send(context.Background(), notify.Message{Kind: notify.KindActivation, To: "a@x.io"}))
	assert.ErrorIs(t, s.Send(context.Background(), notify.Message{To: "b@x.io"}), sarama.ErrOutOfBrokers)
	require.NoError(t, s.Close())
}

func TestKafkaSenderHonoursCancelledContext(t *testing.T) {
	p := mocks.NewSyncProducer(t, nil)
	s := notify.NewKafkaSenderWithProducer(p, "t")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Send(ctx, notify.Message{To: "a@x.io"}), context.Canceled)
	require.NoError(t, s.Close())
}

func TestActivationRender(t *testing.T) {
	r := notify.NewRenderer(web.Engine())
	m, err := r.Activation("new@x.io", notify.ActivationData{
		Name:    "Ada",
		Link:    "http://127.0.0.1:8080/api/users/activate/abc/tok",
		Expires: time.Date(2030, 1, 2, 3, 4, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "new@x.io", m.To)
	assert.Equal(t, "Activate Your Account", m.Subject)
	assert.Contains(t, m.Body, "Hi Ada,")
	assert.Contains(t, m.Body, `href="http://127.0.0.1:8080/api/users/activate/abc/tok"`)
	assert.Contains(t, m.Body, "2030-01-02 03:04 UTC")
}
