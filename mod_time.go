package gekko

import (
	"sync"
	"time"
)

type Time struct {
	Start time.Time
	Time  time.Time
	Dt    time.Duration

	clock   Clock
	started bool
}

// Elapsed is the time since the first tick.
func (t *Time) Elapsed() time.Duration {
	return t.Time.Sub(t.Start)
}

func (t *Time) ElapsedSeconds() float32 {
	return float32(t.Elapsed().Seconds())
}

// Clock supplies the current time to the Time resource.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// ManualClock only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// StepClock advances by a fixed step on every read, giving headless runs a steady frame rate.
type StepClock struct {
	mu   sync.Mutex
	now  time.Time
	Step time.Duration
}

func NewStepClock(start time.Time, step time.Duration) *StepClock {
	return &StepClock{now: start, Step: step}
}

func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now = c.now.Add(c.Step)
	return now
}

type TimeModule struct {
	Clock Clock
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	clock := mod.Clock
	if clock == nil {
		clock = systemClock{}
	}
	now := clock.Now()
	cmd.AddResources(&Time{
		Start: now,
		Time:  now,
		clock: clock,
	})
	app.UseSystem(
		System(timeSystem).
			InStage(Prelude),
	)
}

func timeSystem(timeResource *Time) {
	now := timeResource.clock.Now()
	if !timeResource.started {
		// Elapsed counts from the first frame, not from install.
		timeResource.started = true
		timeResource.Start = now
		timeResource.Time = now
		timeResource.Dt = 0
		return
	}

	timeResource.Dt = now.Sub(timeResource.Time)
	timeResource.Time = now
}
