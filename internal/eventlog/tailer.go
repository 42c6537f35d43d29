// evtship/agent/internal/eventlog/tailer.go

package eventlog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/evtship/agent/internal/logger"
	"github.com/evtship/agent/internal/model"
	"github.com/evtship/agent/internal/telemetry"
)

// State is the tail loop's lifecycle position. Observable for tests
// and diagnostics; transitions happen only on the loop goroutine.
type State int32

const (
	StateStopped State = iota
	StateSubscribing
	StateWaiting
	StateProcessing
	StateRecovering
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateSubscribing:
		return "subscribing"
	case StateWaiting:
		return "waiting"
	case StateProcessing:
		return "processing"
	case StateRecovering:
		return "recovering"
	default:
		return "unknown"
	}
}

// Config carries the tailer's tunables. Zero values fall back to the
// package defaults.
type Config struct {
	Logfiles    []string
	WaitTimeout time.Duration
	Backoff     time.Duration
	BufferSize  int
	BatchSize   int
}

const (
	defaultWaitTimeout = time.Second
	defaultBackoff     = time.Second
	defaultBufferSize  = 500
	defaultBatchSize   = 100
)

// Tailer runs the subscribe/wait/normalize loop on a single goroutine
// and buffers normalized events for batched collection. Events leave
// in arrival order; there is exactly one worker per tailer.
type Tailer struct {
	cfg        Config
	subscriber Subscriber
	normalizer *Normalizer

	out   chan model.NormalizedEvent
	state atomic.Int32

	events     atomic.Uint64
	recoveries atomic.Uint64
	transients atomic.Uint64

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewTailer builds a tailer over the given subscriber. The tailer is
// idle until Start or Run is called.
func NewTailer(cfg Config, sub Subscriber, norm *Normalizer) *Tailer {
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = defaultWaitTimeout
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = defaultBackoff
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaultBufferSize
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	return &Tailer{
		cfg:        cfg,
		subscriber: sub,
		normalizer: norm,
		out:        make(chan model.NormalizedEvent, cfg.BufferSize),
		stop:       make(chan struct{}),
	}
}

// Name identifies the tailer in the collector registry.
func (t *Tailer) Name() string { return "eventlog" }

// Start launches the tail loop in the background. A subscription
// failure ends the loop; everything else is retried or recovered
// inside Run.
func (t *Tailer) Start() {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		_ = t.Run() // Run logs its own exit cause
	}()
}

// Run executes the tail loop until Close is called or the
// subscription cannot be opened. The loop never gives up on a live
// subscription: quiet waits repeat, native hiccups retry silently,
// and anything else backs off briefly and resumes on the same
// subscription.
func (t *Tailer) Run() error {
	defer func() {
		close(t.out)
		t.setState(StateStopped)
	}()

	t.setState(StateSubscribing)
	query := BuildNotificationQuery(t.cfg.Logfiles)
	sub, err := t.subscriber.Subscribe(query)
	if err != nil {
		logger.Error("eventlog: subscription failed, input disabled (query %q): %v", query, err)
		return err
	}
	defer sub.Close()

	for {
		select {
		case <-t.stop:
			return nil
		default:
		}

		t.setState(StateWaiting)
		ev, err := sub.NextEvent(t.cfg.WaitTimeout)
		if err != nil {
			if errors.Is(err, ErrNoEvent) {
				continue
			}
			var native *NativeCallError
			if errors.As(err, &native) {
				t.transients.Add(1)
				telemetry.TransientRetries.Inc()
				continue
			}
			t.recoverFrom("wait", err)
			continue
		}

		// Re-check before touching the event so a close during the
		// wait never produces another enqueue.
		select {
		case <-t.stop:
			return nil
		default:
		}

		t.setState(StateProcessing)
		rec, err := t.normalizer.Normalize(ev)
		if err != nil {
			t.recoverFrom("normalize", err)
			continue
		}

		select {
		case t.out <- rec:
			t.events.Add(1)
			telemetry.EventsCollected.WithLabelValues("eventlog").Inc()
		case <-t.stop:
			return nil
		}
	}
}

// recoverFrom logs an unexpected failure and sleeps one backoff
// interval, cut short by Close.
func (t *Tailer) recoverFrom(op string, err error) {
	t.setState(StateRecovering)
	t.recoveries.Add(1)
	telemetry.TailRecoveries.Inc()
	logger.Error("eventlog: %s failed, resuming after %s: %v", op, t.cfg.Backoff, err)
	select {
	case <-time.After(t.cfg.Backoff):
	case <-t.stop:
	}
}

// Collect drains buffered events without blocking and groups them
// into batches. Called periodically by the log runner.
func (t *Tailer) Collect(ctx context.Context) ([][]model.NormalizedEvent, error) {
	var batches [][]model.NormalizedEvent
	batch := make([]model.NormalizedEvent, 0, t.cfg.BatchSize)

	for {
		select {
		case <-ctx.Done():
			if len(batch) > 0 {
				batches = append(batches, batch)
			}
			return batches, ctx.Err()
		case rec, ok := <-t.out:
			if !ok {
				if len(batch) > 0 {
					batches = append(batches, batch)
				}
				return batches, nil
			}
			batch = append(batch, rec)
			if len(batch) >= t.cfg.BatchSize {
				batches = append(batches, batch)
				batch = make([]model.NormalizedEvent, 0, t.cfg.BatchSize)
			}
		default:
			if len(batch) > 0 {
				batches = append(batches, batch)
			}
			return batches, nil
		}
	}
}

// Close stops the loop and waits for it to finish. Returns within
// about one wait timeout from any state. Safe to call more than once.
func (t *Tailer) Close() error {
	t.stopOnce.Do(func() { close(t.stop) })
	t.wg.Wait()
	return nil
}

// State reports the loop's current lifecycle position.
func (t *Tailer) State() State { return State(t.state.Load()) }

// Stats reports how many events were emitted, how many recovery
// backoffs ran, and how many native hiccups were retried silently.
func (t *Tailer) Stats() (events, recoveries, transients uint64) {
	return t.events.Load(), t.recoveries.Load(), t.transients.Load()
}

func (t *Tailer) setState(s State) { t.state.Store(int32(s)) }
