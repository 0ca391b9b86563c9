package core

import "time"

// MinPeriod is the shortest period a Timer can run at.
const MinPeriod = time.Millisecond

// Scheduler drives repeating timers from an explicit clock.
// The host advances time with Advance; nothing fires on its own, so a test,
// a replay runner and a real-time event loop all drive games the same way.
//
// A Scheduler is not safe for concurrent use. Each game owns one.
type Scheduler struct {
	now    time.Duration
	timers []*Timer
	seq    uint64
	closed bool
}

// Timer is a repeating callback acquired from a Scheduler.
type Timer struct {
	sched   *Scheduler
	seq     uint64
	period  time.Duration
	next    time.Duration
	fn      func()
	stopped bool
}

// NewScheduler creates a scheduler with its clock at zero.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Now returns the total time advanced so far.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// Closed reports whether Close has been called.
func (s *Scheduler) Closed() bool {
	return s.closed
}

// Active returns the number of running timers.
func (s *Scheduler) Active() int {
	n := 0
	for _, t := range s.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Every registers fn to run once per period, first at Now()+period.
// On a closed scheduler the returned timer is already stopped.
func (s *Scheduler) Every(period time.Duration, fn func()) *Timer {
	s.seq++
	t := &Timer{
		sched:  s,
		seq:    s.seq,
		period: max(period, MinPeriod),
		fn:     fn,
	}
	t.next = s.now + t.period
	if s.closed {
		t.stopped = true
		return t
	}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock forward by dt and runs every timer that comes due,
// in deadline order. Timers due at the same instant run in the order they
// were acquired. A timer whose period fits several times into dt fires
// several times. Callbacks may stop timers, change periods or close the
// scheduler; the remaining firings observe those changes.
// It returns the number of callbacks run.
func (s *Scheduler) Advance(dt time.Duration) int {
	if s.closed || dt <= 0 {
		return 0
	}
	target := s.now + dt
	fired := 0
	for !s.closed {
		t := s.due(target)
		if t == nil {
			break
		}
		s.now = t.next
		t.next += t.period
		t.fn()
		fired++
	}
	if !s.closed {
		s.now = target
	}
	s.compact()
	return fired
}

// due returns the earliest running timer whose deadline is <= target.
func (s *Scheduler) due(target time.Duration) *Timer {
	var best *Timer
	for _, t := range s.timers {
		if t.stopped || t.next > target {
			continue
		}
		if best == nil || t.next < best.next || (t.next == best.next && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (s *Scheduler) compact() {
	live := s.timers[:0]
	for _, t := range s.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	clear(s.timers[len(live):])
	s.timers = live
}

// Close stops every timer. Advance is a no-op afterwards.
// Close is idempotent.
func (s *Scheduler) Close() {
	if s.closed {
		return
	}
	s.closed = true
	for _, t := range s.timers {
		t.stopped = true
	}
	s.timers = nil
}

// Stop cancels the timer. It is safe to call more than once.
func (t *Timer) Stop() {
	t.stopped = true
}

// Stopped reports whether the timer has been stopped.
func (t *Timer) Stopped() bool {
	return t.stopped
}

// Period returns the current period.
func (t *Timer) Period() time.Duration {
	return t.period
}

// SetPeriod changes the period and restarts the countdown from the
// scheduler's current time. Setting the current period is a no-op.
func (t *Timer) SetPeriod(d time.Duration) {
	d = max(d, MinPeriod)
	if d == t.period {
		return
	}
	t.period = d
	t.next = t.sched.now + d
}

// Reset restarts the countdown without changing the period.
func (t *Timer) Reset() {
	t.next = t.sched.now + t.period
}
