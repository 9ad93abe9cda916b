package mail

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aussiebroadwan/devnet/pkg/metricsx"
)

type fakeSender struct {
	mu       sync.Mutex
	sent     []Rendered
	failures int // fail this many calls before succeeding
	err      error
	calls    int
	block    chan struct{}
}

func (f *fakeSender) Send(ctx context.Context, msg Rendered) error {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		if f.err != nil {
			return f.err
		}
		return errors.New("temporary failure")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) Sent() []Rendered {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Rendered(nil), f.sent...)
}

func (f *fakeSender) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fastConfig() DispatcherConfig {
	return DispatcherConfig{
		Workers:     2,
		QueueSize:   8,
		MaxRetries:  3,
		BaseBackoff: time.Millisecond,
		MaxBackoff:  5 * time.Millisecond,
	}
}

func welcome(to string) Message {
	return Message{To: to, Template: TemplateWelcome, Data: Data{Name: "Ada"}}
}

func TestDispatcher_DeliversQueuedMessagesOnStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	sender := &fakeSender{}
	m := metricsx.New("test")
	d := NewDispatcher(sender, quietLogger(), m, fastConfig())
	d.Start()

	for _, to := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		require.True(t, d.Enqueue(welcome(to)))
	}
	d.Stop()

	sent := sender.Sent()
	require.Len(t, sent, 3)
	require.Equal(t, "Welcome to devnet", sent[0].Subject)

	n, err := testutil.GatherAndCount(m.Registry(), "test_mail_messages_total")
	require.NoError(t, err)
	require.Equal(t, 1, n, "only the success series should exist")
}

func TestDispatcher_RetriesTransientFailures(t *testing.T) {
	defer goleak.VerifyNone(t)

	sender := &fakeSender{failures: 2}
	d := NewDispatcher(sender, quietLogger(), nil, fastConfig())
	d.Start()

	require.True(t, d.Enqueue(welcome("a@example.com")))
	d.Stop()

	require.Equal(t, 3, sender.Calls())
	require.Len(t, sender.Sent(), 1)
}

func TestDispatcher_GivesUpAfterMaxRetries(t *testing.T) {
	defer goleak.VerifyNone(t)

	sender := &fakeSender{failures: 100}
	cfg := fastConfig()
	cfg.MaxRetries = 2
	d := NewDispatcher(sender, quietLogger(), nil, cfg)
	d.Start()

	require.True(t, d.Enqueue(welcome("a@example.com")))
	d.Stop()

	// one attempt plus two retries
	require.Equal(t, 3, sender.Calls())
	require.Empty(t, sender.Sent())
}

func TestDispatcher_PermanentErrorIsNotRetried(t *testing.T) {
	defer goleak.VerifyNone(t)

	sender := &fakeSender{failures: 100, err: &PermanentError{Err: errors.New("550 no such user")}}
	d := NewDispatcher(sender, quietLogger(), nil, fastConfig())
	d.Start()

	require.True(t, d.Enqueue(welcome("ghost@example.com")))
	d.Stop()

	require.Equal(t, 1, sender.Calls())
}

func TestDispatcher_RenderFailureIsDropped(t *testing.T) {
	defer goleak.VerifyNone(t)

	sender := &fakeSender{}
	d := NewDispatcher(sender, quietLogger(), nil, fastConfig())
	d.Start()

	require.True(t, d.Enqueue(Message{To: "a@example.com", Template: "missing"}))
	d.Stop()

	require.Zero(t, sender.Calls())
}

func TestDispatcher_FullQueueDrops(t *testing.T) {
	defer goleak.VerifyNone(t)

	// The single worker blocks on the first message, so the queue fills up.
	sender := &fakeSender{block: make(chan struct{})}
	cfg := fastConfig()
	cfg.Workers = 1
	cfg.QueueSize = 1
	m := metricsx.New("test")
	d := NewDispatcher(sender, quietLogger(), m, cfg)
	d.Start()

	require.True(t, d.Enqueue(welcome("a@example.com")))
	require.Eventually(t, func() bool { return len(d.queue) == 0 }, time.Second, time.Millisecond)
	require.True(t, d.Enqueue(welcome("b@example.com")))
	require.False(t, d.Enqueue(welcome("c@example.com")))

	close(sender.block)
	d.Stop()

	require.Len(t, sender.Sent(), 2)
	n, err := testutil.GatherAndCount(m.Registry(), "test_mail_messages_total")
	require.NoError(t, err)
	require.Equal(t, 2, n, "success and dropped series")
}

func TestDispatcher_EnqueueAfterStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := NewDispatcher(&fakeSender{}, quietLogger(), nil, fastConfig())
	d.Start()
	d.Stop()
	d.Stop()

	require.False(t, d.Enqueue(welcome("late@example.com")))
}
