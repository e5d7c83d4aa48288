package engine

// CountdownStart is the value every countdown starts from.
const CountdownStart = 3

// Countdown counts down from CountdownStart to zero. The zero value is absent.
type Countdown struct {
	value  int
	active bool
}

// Start sets the counter to CountdownStart.
func (c *Countdown) Start() {
	c.value = CountdownStart
	c.active = true
}

// Tick decrements the counter and reports whether it reached zero.
// Ticking an absent countdown does nothing.
func (c *Countdown) Tick() bool {
	if !c.active {
		return false
	}
	if c.value > 0 {
		c.value--
	}
	return c.value == 0
}

// Resolve clears a countdown that reached zero.
func (c *Countdown) Resolve() {
	c.value = 0
	c.active = false
}

// Cancel clears the counter without resolving.
func (c *Countdown) Cancel() {
	c.value = 0
	c.active = false
}

// Value returns the current counter and whether the countdown is present.
func (c *Countdown) Value() (int, bool) {
	return c.value, c.active
}

// Active reports whether the countdown is present.
func (c *Countdown) Active() bool {
	return c.active
}
