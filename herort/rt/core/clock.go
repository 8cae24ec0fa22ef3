package core

// FrameClock derives elapsed and delta time, in seconds, from a host clock.
// Elapsed never decreases and Delta is never negative, even if the host
// clock steps backwards.
type FrameClock struct {
	start   float64
	last    float64
	elapsed float64
	delta   float64
	started bool
	frames  uint64
}

// Tick advances the clock to now. The first tick establishes the origin and
// yields a zero delta.
func (c *FrameClock) Tick(now float64) {
	if !c.started {
		c.start = now
		c.last = now
		c.started = true
		c.frames++
		return
	}
	dt := now - c.last
	if dt < 0 {
		dt = 0
	} else {
		c.last = now
	}
	c.delta = dt
	c.elapsed += dt
	c.frames++
}

func (c *FrameClock) Elapsed() float32 { return float32(c.elapsed) }
func (c *FrameClock) Delta() float32   { return float32(c.delta) }
func (c *FrameClock) Frames() uint64   { return c.frames }
