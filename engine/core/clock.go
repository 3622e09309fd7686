package core

import "time"

type Clock struct {
	startTime time.Time
	elapsed   time.Duration
}

func NewClock() *Clock {
	return &Clock{}
}

// Updates the provided clock. Should be called just before checking elapsed time.
// Has no effect on non-started clocks.
func (c *Clock) Update() {
	if !c.startTime.IsZero() {
		c.elapsed = time.Since(c.startTime)
	}
}

// Starts the provided clock. Resets elapsed time.
func (c *Clock) Start() {
	c.startTime = time.Now()
	c.elapsed = 0
}

// Stops the provided clock. Does not reset elapsed time.
func (c *Clock) Stop() {
	c.startTime = time.Time{}
}

// Elapsed returns the seconds since Start as of the last Update.
func (c *Clock) Elapsed() float64 {
	return c.elapsed.Seconds()
}

// Timer exposes the per-frame timing the renderer animates against.
type Timer interface {
	ElapsedSeconds() float64
	TotalSeconds() float64
	FrameCount() uint64
}

/**
 * @brief StepTimer advances once per frame. With a fixed step it ignores the
 * wall clock entirely, which keeps headless runs deterministic.
 */
type StepTimer struct {
	clock     *Clock
	fixedStep float64
	last      float64
	elapsed   float64
	total     float64
	frames    uint64
}

// NewStepTimer returns a timer driven by the wall clock.
func NewStepTimer() *StepTimer {
	c := NewClock()
	c.Start()
	return &StepTimer{clock: c}
}

// NewFixedStepTimer returns a timer that advances by step seconds per Tick.
func NewFixedStepTimer(step float64) *StepTimer {
	return &StepTimer{fixedStep: step}
}

// Tick advances the timer by one frame.
func (t *StepTimer) Tick() {
	if t.fixedStep > 0 {
		t.elapsed = t.fixedStep
	} else {
		t.clock.Update()
		now := t.clock.Elapsed()
		t.elapsed = now - t.last
		t.last = now
	}
	t.total += t.elapsed
	t.frames++
}

func (t *StepTimer) ElapsedSeconds() float64 {
	return t.elapsed
}

func (t *StepTimer) TotalSeconds() float64 {
	return t.total
}

func (t *StepTimer) FrameCount() uint64 {
	return t.frames
}
