package core

import "time"

// Clock returns the current time. Tests substitute a fake.
type Clock func() time.Time

// SystemClock reads the wall clock.
func SystemClock() time.Time { return time.Now() }

// FixedStep paces frame updates at a steady frames-per-second rate.
type FixedStep struct {
	step        time.Duration
	accumulator time.Duration
	last        time.Time
	now         Clock
}

// NewFixedStep constructs a FixedStep controller targeting the given rate.
func NewFixedStep(fps int) *FixedStep {
	return NewFixedStepClock(fps, SystemClock)
}

// NewFixedStepClock is NewFixedStep with an explicit clock.
func NewFixedStepClock(fps int, now Clock) *FixedStep {
	if now == nil {
		now = SystemClock
	}
	fs := &FixedStep{now: now}
	fs.SetRate(fps)
	fs.accumulator = fs.step
	return fs
}

// SetRate changes the frame rate. It is safe to call from the main loop.
func (f *FixedStep) SetRate(fps int) {
	if fps <= 0 {
		fps = 60
	}
	f.step = time.Second / time.Duration(fps)
}

// Step returns the frame period.
func (f *FixedStep) Step() time.Duration { return f.step }

// ShouldStep reports whether the simulation should advance by one frame.
func (f *FixedStep) ShouldStep() bool {
	now := f.now()
	if f.last.IsZero() {
		f.last = now
	}
	delta := now.Sub(f.last)
	f.last = now
	f.accumulator += delta
	if f.accumulator >= f.step {
		f.accumulator -= f.step
		// Do not let a long stall turn into a burst of catch-up frames.
		if f.accumulator > f.step {
			f.accumulator = f.step
		}
		return true
	}
	return false
}
