package nav

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultDelay is how long a success message stays up before redirecting.
const DefaultDelay = 5 * time.Second

// Timer is a cancellable scheduled call.
type Timer interface {
	Stop() bool
}

// Scheduler runs fn once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// RealScheduler schedules with time.AfterFunc.
type RealScheduler struct{}

func (RealScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Delayed performs navigations after a fixed delay.
type Delayed struct {
	navigator Navigator
	scheduler Scheduler
	delay     time.Duration
	logger    *zap.Logger

	mu      sync.Mutex
	pending map[uint64]Timer
	nextID  uint64
	wg      sync.WaitGroup
}

// NewDelayed creates a delayed navigator. A nil scheduler uses time.AfterFunc.
func NewDelayed(navigator Navigator, scheduler Scheduler, delay time.Duration, logger *zap.Logger) *Delayed {
	if scheduler == nil {
		scheduler = RealScheduler{}
	}
	if delay < 0 {
		delay = 0
	}
	return &Delayed{
		navigator: navigator,
		scheduler: scheduler,
		delay:     delay,
		logger:    logger.Named("nav"),
		pending:   make(map[uint64]Timer),
	}
}

// Delay is the configured redirect delay.
func (d *Delayed) Delay() time.Duration { return d.delay }

// Schedule navigates to route once the delay has elapsed. The returned func cancels it.
func (d *Delayed) Schedule(route Route) (cancel func()) {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.wg.Add(1)
	d.pending[id] = d.scheduler.AfterFunc(d.delay, func() {
		if _, ok := d.claim(id); !ok {
			return
		}
		defer d.wg.Done()
		d.logger.Debug("Delayed navigation", zap.String("route", string(route)))
		d.navigator.Navigate(route)
	})
	d.mu.Unlock()

	return func() {
		if t, ok := d.claim(id); ok {
			t.Stop()
			d.wg.Done()
		}
	}
}

// claim removes id from the pending set. Only the caller that gets ok may finish it.
func (d *Delayed) claim(id uint64) (Timer, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.pending[id]
	if ok {
		delete(d.pending, id)
	}
	return t, ok
}

// Pending is the number of scheduled navigations that have not fired.
func (d *Delayed) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// CancelAll stops every pending navigation.
func (d *Delayed) CancelAll() {
	d.mu.Lock()
	timers := d.pending
	d.pending = make(map[uint64]Timer)
	d.mu.Unlock()

	for _, t := range timers {
		t.Stop()
		d.wg.Done()
	}
}

// Wait blocks until every scheduled navigation has fired or been cancelled.
func (d *Delayed) Wait() {
	d.wg.Wait()
}
