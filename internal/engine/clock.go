// Simulation clock — fractional real-time-to-tick accumulation, pause,
// and speed control.
package engine

// ClockState is the public clock shape returned by every control call.
type ClockState struct {
	Tick   int     `json:"tick"` // Within the day: [0, ticksPerDay)
	Day    int     `json:"day"`
	Paused bool    `json:"paused"`
	Speed  float64 `json:"speed"`
}

// Speed multiplier bounds.
const (
	MinSpeed = 0.1
	MaxSpeed = 10.0
)

// Clock converts elapsed wall time into whole simulation ticks.
// One tick per second at speed 1.0.
type Clock struct {
	TicksPerHour int

	tick   int // Within the current day
	day    int
	paused bool
	speed  float64
	acc    float64 // Fractional tick accumulator
}

// NewClock creates a paused clock at day 0, tick 0, speed 1.
func NewClock(ticksPerHour int) *Clock {
	return &Clock{TicksPerHour: ticksPerHour, paused: true, speed: 1.0}
}

// TicksPerDay returns the day length in ticks.
func (c *Clock) TicksPerDay() int {
	return 24 * c.TicksPerHour
}

// State returns the current clock state.
func (c *Clock) State() ClockState {
	return ClockState{Tick: c.tick, Day: c.day, Paused: c.paused, Speed: c.speed}
}

// Advance accumulates elapsed milliseconds and returns the number of whole
// ticks now due. Returns 0 while paused. Supports catch-up after a stall
// and fractional accumulation across many small calls.
func (c *Clock) Advance(elapsedMs float64) int {
	if c.paused || elapsedMs <= 0 {
		return 0
	}
	c.acc += elapsedMs / 1000 * c.speed
	n := int(c.acc)
	c.acc -= float64(n)
	return n
}

// Increment moves the clock one tick forward. Reports whether the day
// rolled over (tick reset to 0, day incremented).
func (c *Clock) Increment() (newDay bool) {
	c.tick++
	if c.tick >= c.TicksPerDay() {
		c.tick = 0
		c.day++
		return true
	}
	return false
}

// Start unpauses the clock.
func (c *Clock) Start() { c.paused = false }

// Pause pauses the clock. The fractional accumulator is kept, so resuming
// loses no time.
func (c *Clock) Pause() { c.paused = true }

// TogglePause flips the paused flag.
func (c *Clock) TogglePause() { c.paused = !c.paused }

// Paused reports whether the clock is paused.
func (c *Clock) Paused() bool { return c.paused }

// SetSpeed clamps and applies the speed multiplier.
func (c *Clock) SetSpeed(speed float64) {
	if speed < MinSpeed {
		speed = MinSpeed
	}
	if speed > MaxSpeed {
		speed = MaxSpeed
	}
	c.speed = speed
}

// Speed returns the current speed multiplier.
func (c *Clock) Speed() float64 { return c.speed }

// SetTime jumps the clock to the given day and in-day tick.
func (c *Clock) SetTime(day, tick int) {
	if day < 0 {
		day = 0
	}
	perDay := c.TicksPerDay()
	if tick < 0 {
		tick = 0
	}
	if tick >= perDay {
		tick = perDay - 1
	}
	c.day = day
	c.tick = tick
	c.acc = 0
}

// Hour returns the current hour of day (0–23).
func (c *Clock) Hour() int { return c.tick / c.TicksPerHour }

// Minute returns the current minute of the hour, derived from the tick's
// position within the hour.
func (c *Clock) Minute() int {
	return (c.tick % c.TicksPerHour) * 60 / c.TicksPerHour
}

// IsDaytime reports whether the sun is up (06:00–20:00).
func (c *Clock) IsDaytime() bool {
	h := c.Hour()
	return h >= 6 && h < 20
}

// DayPeriod names the current part of the day.
func (c *Clock) DayPeriod() string {
	switch h := c.Hour(); {
	case h < 6:
		return "night"
	case h < 12:
		return "morning"
	case h < 18:
		return "afternoon"
	case h < 21:
		return "evening"
	default:
		return "night"
	}
}

// TimeInfo is the derived time block carried on broadcast frames.
type TimeInfo struct {
	Tick      int    `json:"tick"`
	Day       int    `json:"day"`
	Hour      int    `json:"hour"`
	Minute    int    `json:"minute"`
	DayPeriod string `json:"dayPeriod"`
	IsDaytime bool   `json:"isDaytime"`
}

// Time returns the derived time block for the current tick.
func (c *Clock) Time() TimeInfo {
	return TimeInfo{
		Tick:      c.tick,
		Day:       c.day,
		Hour:      c.Hour(),
		Minute:    c.Minute(),
		DayPeriod: c.DayPeriod(),
		IsDaytime: c.IsDaytime(),
	}
}
