package mail

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/aussiebroadwan/devnet/pkg/metricsx"
)

// DispatcherConfig sizes the queue and the retry policy.
type DispatcherConfig struct {
	Workers     int
	QueueSize   int
	MaxRetries  uint64
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	SendTimeout time.Duration
}

func (c *DispatcherConfig) defaults() {
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 100
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = 500 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 10 * time.Second
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = 30 * time.Second
	}
}

// Dispatcher renders and sends mail on a pool of workers so request handlers
// never wait on SMTP. Enqueue never blocks; a full queue drops the message.
type Dispatcher struct {
	Sender  Sender
	Logger  *slog.Logger
	Metrics *metricsx.Metrics

	cfg   DispatcherConfig
	queue chan Message

	mu     sync.RWMutex
	closed bool

	// ctx is cancelled only after the queue is drained, so in-flight
	// retries are abandoned rather than the remaining messages.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewDispatcher(sender Sender, logger *slog.Logger, metrics *metricsx.Metrics, cfg DispatcherConfig) *Dispatcher {
	cfg.defaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		Sender:  sender,
		Logger:  logger,
		Metrics: metrics,
		cfg:     cfg,
		queue:   make(chan Message, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the workers.
func (d *Dispatcher) Start() {
	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	d.Logger.Info("mail dispatcher started", "workers", d.cfg.Workers, "queue_size", d.cfg.QueueSize)
}

// Enqueue hands msg to the workers. It reports false when the message was
// dropped because the queue is full or the dispatcher is stopped.
func (d *Dispatcher) Enqueue(msg Message) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.Logger.Warn("mail dropped, dispatcher stopped", "template", msg.Template)
		d.Metrics.MailSent(string(msg.Template), "dropped")
		return false
	}

	select {
	case d.queue <- msg:
		return true
	default:
		d.Logger.Warn("mail dropped, queue full", "template", msg.Template)
		d.Metrics.MailSent(string(msg.Template), "dropped")
		return false
	}
}

// Stop closes the queue, lets the workers send what is already queued and
// waits for them. Safe to call more than once.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	d.cancel()
	d.Logger.Info("mail dispatcher stopped")
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for msg := range d.queue {
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg Message) {
	name := string(msg.Template)
	logger := d.Logger.With("template", name)

	rendered, err := Render(msg)
	if err != nil {
		logger.Error("mail render failed", "error", err)
		d.Metrics.MailSent(name, "render_error")
		return
	}

	backoff := retry.WithMaxRetries(d.cfg.MaxRetries,
		retry.WithCappedDuration(d.cfg.MaxBackoff, retry.NewExponential(d.cfg.BaseBackoff)))

	attempt := 0
	err = retry.Do(d.ctx, backoff, func(ctx context.Context) error {
		attempt++
		sendCtx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
		defer cancel()

		if err := d.Sender.Send(sendCtx, rendered); err != nil {
			var perm *PermanentError
			if errors.As(err, &perm) {
				return err
			}
			logger.Warn("mail send failed, retrying", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		logger.Error("mail send failed", "attempts", attempt, "error", err)
		d.Metrics.MailSent(name, "failure")
		return
	}

	logger.Debug("mail sent", "attempts", attempt)
	d.Metrics.MailSent(name, "success")
}

// PermanentError marks a send failure that retrying cannot fix, such as a
// rejected recipient.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return "mail: permanent failure: " + e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }
