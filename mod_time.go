package glowmask

import (
	"time"

	"github.com/gekko3d/glowmask/herort/rt/core"
)

// Time is the frame clock resource. Dt is never negative and Elapsed never
// decreases, whatever the wall clock does.
type Time struct {
	Time    time.Time
	Dt      time.Duration
	Elapsed time.Duration
	Frame   uint64

	start time.Time
	clock core.FrameClock
	now   func() time.Time
}

func NewTime(now func() time.Time) *Time {
	if now == nil {
		now = time.Now
	}
	t := now()
	return &Time{Time: t, start: t, now: now}
}

// Seconds is the host time since the resource was created.
func (t *Time) Seconds() float64 {
	return t.Time.Sub(t.start).Seconds()
}

// ElapsedSeconds is the clamped frame time since the first tick.
func (t *Time) ElapsedSeconds() float32 {
	return t.clock.Elapsed()
}

func (t *Time) DeltaSeconds() float32 {
	return t.clock.Delta()
}

type TimeModule struct {
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(NewTime(nil))
	app.UseSystem(
		System(timeSystem).
			InStage(Prelude).
			RunAlways(),
	)
}

func timeSystem(timeResource *Time) {
	now := timeResource.now()
	timeResource.clock.Tick(now.Sub(timeResource.start).Seconds())

	timeResource.Dt = time.Duration(float64(timeResource.clock.Delta()) * float64(time.Second))
	timeResource.Elapsed = time.Duration(float64(timeResource.clock.Elapsed()) * float64(time.Second))
	timeResource.Frame = timeResource.clock.Frames()
	timeResource.Time = now
}
