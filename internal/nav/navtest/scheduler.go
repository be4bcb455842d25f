// Package navtest provides a manually driven Scheduler for tests.
package navtest

import (
	"sort"
	"sync"
	"time"

	"authportal/internal/nav"
)

// Scheduler fires callbacks only when Advance moves its clock past their deadline.
type Scheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*timer
}

type timer struct {
	s        *Scheduler
	deadline time.Duration
	fn       func()
	stopped  bool
	fired    bool
}

func (t *timer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func New() *Scheduler {
	return &Scheduler{}
}

func (s *Scheduler) AfterFunc(d time.Duration, fn func()) nav.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &timer{s: s, deadline: s.now + d, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock by d and runs every due callback in deadline order.
func (s *Scheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	var due []*timer
	for _, t := range s.timers {
		if !t.stopped && !t.fired && t.deadline <= s.now {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].deadline < due[j].deadline })
	for _, t := range due {
		t.fn()
	}
}

// Active counts timers that have neither fired nor been stopped.
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Recorder is a Navigator that remembers every route it was sent to.
type Recorder struct {
	mu     sync.Mutex
	routes []nav.Route
}

func (r *Recorder) Navigate(route nav.Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
}

// Routes returns the navigations so far.
func (r *Recorder) Routes() []nav.Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]nav.Route(nil), r.routes...)
}
