package schedule

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lazypower/medtick/internal/store"
)

// DefaultInterval matches the evaluator's minute resolution: one tick
// per matching minute.
const DefaultInterval = 60 * time.Second

// Source supplies the current reminder list. *store.DB satisfies it.
type Source interface {
	Load() []store.Reminder
}

// Notifier receives due reminders. *notify.Dispatcher satisfies it.
type Notifier interface {
	Fire(ctx context.Context, r store.Reminder)
}

// Clock drives periodic due evaluation. It owns a single recurring
// timer: Start registers it, Stop cancels it for the rest of the
// session. Ticks are strictly sequential; in-flight notification
// dispatch for the current tick is allowed to finish on Stop.
type Clock struct {
	source   Source
	notifier Notifier
	interval time.Duration
	now      func() time.Time

	mu         sync.Mutex
	running    bool
	stopCh     chan struct{}
	done       chan struct{}
	lastMinute string
}

// Option configures a Clock.
type Option func(*Clock)

// WithInterval overrides the tick period. Intervals above one minute
// will silently skip occurrences; tests use short ones.
func WithInterval(d time.Duration) Option {
	return func(c *Clock) { c.interval = d }
}

// WithNow injects the time source so tests can drive ticks
// deterministically.
func WithNow(now func() time.Time) Option {
	return func(c *Clock) { c.now = now }
}

// NewClock creates a stopped clock with the given dependencies.
func NewClock(source Source, notifier Notifier, opts ...Option) *Clock {
	c := &Clock{
		source:   source,
		notifier: notifier,
		interval: DefaultInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start registers the recurring timer and runs one evaluation pass
// immediately. Calling Start on a running clock is a no-op.
func (c *Clock) Start() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.stopCh = make(chan struct{})
	c.done = make(chan struct{})
	stopCh, done := c.stopCh, c.done
	c.mu.Unlock()

	log.Printf("[clock] started, interval %s", c.interval)
	c.Tick()

	go func() {
		defer close(done)
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.Tick()
			case <-stopCh:
				return
			}
		}
	}()
}

// Stop cancels the timer. No further ticks fire after Stop returns.
func (c *Clock) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	close(c.stopCh)
	done := c.done
	c.mu.Unlock()

	<-done
	log.Printf("[clock] stopped")
}

// Tick runs one evaluation pass: snapshot the reminder list, collect
// what is due this minute, and fan each one out to the notifier.
//
// A minute already evaluated is skipped, so timer drift landing two
// ticks inside one matching minute cannot fire an occurrence twice.
func (c *Clock) Tick() {
	now := c.now()
	minute := MinuteKey(now)

	c.mu.Lock()
	if minute == c.lastMinute {
		c.mu.Unlock()
		return
	}
	c.lastMinute = minute
	c.mu.Unlock()

	due := DueAt(now, c.source.Load())
	if len(due) == 0 {
		return
	}

	log.Printf("[clock] %d reminder(s) due at %s", len(due), minute)
	ctx := context.Background()
	for _, r := range due {
		c.notifier.Fire(ctx, r)
	}
}
