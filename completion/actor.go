package completion

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/LaurenceChau/sqs-lambda/cache"
	"github.com/LaurenceChau/sqs-lambda/serializer"
	"github.com/LaurenceChau/sqs-lambda/sink"
)

type cmdKind int

const (
	cmdMarkComplete cmdKind = iota
	cmdAckAll
)

type command[E any] struct {
	kind    cmdKind
	msg     QueueMessage
	outcome Outcome[E]
	notify  chan<- struct{}
}

// Completer is the public handle to one completion handler. All mutating
// operations go through a capacity-1 command channel serviced by a single
// worker goroutine, which is the only code that touches the buffers.
//
// The depth-1 channel is deliberate backpressure: a second submitter blocks
// until the worker fully finished the previous command, including any flush
// it triggered, so producers are naturally rate-limited to flush throughput.
//
// The handle is cheap to share across goroutines.
type Completer[E any] struct {
	commands chan command[E]
	quit     chan struct{}
	stopped  chan struct{}

	closeOnce sync.Once

	// err is written by the worker before stopped is closed and read only
	// after observing stopped.
	err error
}

// Option configures a Completer at construction time.
type Option[E any] func(*handler[E])

// WithLogger sets the structured logger. Defaults to a nop logger.
func WithLogger[E any](logger *zap.Logger) Option[E] {
	return func(h *handler[E]) { h.logger = logger }
}

// WithMetrics attaches prometheus instrumentation.
func WithMetrics[E any](m *Metrics) Option[E] {
	return func(h *handler[E]) { h.metrics = m }
}

// WithKeyFunc overrides how sink object keys are built. The default
// partitions by UTC hour with a random suffix, using the serializer's file
// extension.
func WithKeyFunc[E any](fn KeyFunc) Option[E] {
	return func(h *handler[E]) { h.keyFunc = fn }
}

// New starts the worker goroutine and returns its handle. ctx is the base
// context for all collaborator calls the worker makes; the worker itself
// stops only via Close or a fatal flush error, and a dequeued command always
// runs to completion. Use a context that outlives the shutdown signal so a
// final Drain can still flush.
//
// onAck may be nil. The sqs client, sink and cache may be shared with other
// Completer instances; they must be safe for concurrent use if so.
func New[E any](
	ctx context.Context,
	client SQSAPI,
	queueURL string,
	ser serializer.Serializer[E],
	snk sink.Sink,
	dedup cache.Cache,
	policy *Policy,
	onAck AckFunc,
	opts ...Option[E],
) *Completer[E] {
	if client == nil {
		panic("sqs client is required")
	}
	if strings.TrimSpace(queueURL) == "" {
		panic("queue url is required")
	}
	if ser == nil {
		panic("serializer is required")
	}
	if snk == nil {
		panic("sink is required")
	}
	if dedup == nil {
		panic("cache is required")
	}
	if policy == nil {
		panic("policy is required")
	}

	h := &handler[E]{
		client:   client,
		queueURL: queueURL,
		ser:      ser,
		sink:     snk,
		cache:    dedup,
		policy:   policy,
		keyFunc:  defaultKeyFunc(ser.FileExtension()),
		onAck:    onAck,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}

	c := &Completer[E]{
		commands: make(chan command[E], 1),
		quit:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go c.run(ctx, h)
	return c
}

func (c *Completer[E]) run(ctx context.Context, h *handler[E]) {
	defer close(c.stopped)
	for {
		select {
		case <-c.quit:
			return
		case cmd := <-c.commands:
			var err error
			switch cmd.kind {
			case cmdMarkComplete:
				err = h.markComplete(ctx, cmd.msg, cmd.outcome)
			case cmdAckAll:
				err = h.ackAll(ctx, cmd.notify)
			}
			if err != nil {
				h.logger.Error("completion handler stopping", zap.Error(err))
				c.err = err
				return
			}
		}
	}
}

// MarkComplete records the outcome of one processed message. It blocks until
// the worker accepts the command, which includes waiting out any flush the
// worker is currently running. Returns ErrStopped after the worker has
// exited; that is an unrecoverable wiring error, not a retryable condition.
func (c *Completer[E]) MarkComplete(ctx context.Context, msg QueueMessage, outcome Outcome[E]) error {
	return c.submit(ctx, command[E]{kind: cmdMarkComplete, msg: msg, outcome: outcome})
}

// AckAll requests an unconditional flush. If notify is non-nil it is closed
// once the flush fully finished, including all ack callback invocations. If
// that flush fails fatally, notify is never closed: waiters must also watch
// Err(), or use Drain, which handles the stopped worker for them.
func (c *Completer[E]) AckAll(ctx context.Context, notify chan<- struct{}) error {
	return c.submit(ctx, command[E]{kind: cmdAckAll, notify: notify})
}

// Drain flushes everything buffered and waits for the flush to finish. Meant
// for shutdown paths.
func (c *Completer[E]) Drain(ctx context.Context) error {
	done := make(chan struct{})
	if err := c.AckAll(ctx, done); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-c.stopped:
		return c.stoppedErr()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Completer[E]) submit(ctx context.Context, cmd command[E]) error {
	select {
	case <-c.stopped:
		return c.stoppedErr()
	default:
	}
	select {
	case c.commands <- cmd:
		return nil
	case <-c.stopped:
		return c.stoppedErr()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the worker after any in-flight command. It does not flush;
// call Drain first to avoid losing buffered completions.
func (c *Completer[E]) Close() {
	c.closeOnce.Do(func() { close(c.quit) })
}

// Err returns the fatal error that stopped the worker, nil while the worker
// is still running or if it stopped cleanly.
func (c *Completer[E]) Err() error {
	select {
	case <-c.stopped:
		return c.err
	default:
		return nil
	}
}

func (c *Completer[E]) stoppedErr() error {
	if c.err != nil {
		return fmt.Errorf("%w: %w", ErrStopped, c.err)
	}
	return ErrStopped
}
