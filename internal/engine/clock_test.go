package engine

import "testing"

func TestClockStartsPaused(t *testing.T) {
	c := NewClock(10)
	if !c.Paused() {
		t.Fatal("new clock must be paused")
	}
	if n := c.Advance(5000); n != 0 {
		t.Fatalf("paused clock produced %d ticks", n)
	}
}

func TestAdvanceFractionalAccumulation(t *testing.T) {
	c := NewClock(10)
	c.Start()

	// 20 × 50ms at speed 1 = exactly one tick, delivered on the last call.
	total := 0
	for i := 0; i < 20; i++ {
		total += c.Advance(50)
	}
	if total != 1 {
		t.Fatalf("ticks = %d, want 1", total)
	}

	// No drift: another 20 calls yield exactly one more.
	total = 0
	for i := 0; i < 20; i++ {
		total += c.Advance(50)
	}
	if total != 1 {
		t.Fatalf("ticks = %d, want 1 (fraction must carry over)", total)
	}
}

func TestAdvanceSpeedMultiplier(t *testing.T) {
	c := NewClock(10)
	c.Start()
	c.SetSpeed(4)

	if n := c.Advance(1000); n != 4 {
		t.Fatalf("ticks at 4x = %d, want 4", n)
	}
}

func TestAdvanceCatchUpAfterStall(t *testing.T) {
	c := NewClock(10)
	c.Start()
	if n := c.Advance(5500); n != 5 {
		t.Fatalf("ticks after stall = %d, want 5", n)
	}
	// The half tick is banked.
	if n := c.Advance(500); n != 1 {
		t.Fatalf("ticks = %d, want 1", n)
	}
}

func TestSetSpeedClamps(t *testing.T) {
	c := NewClock(10)
	c.SetSpeed(100)
	if c.Speed() != MaxSpeed {
		t.Fatalf("speed = %.1f, want %.1f", c.Speed(), MaxSpeed)
	}
	c.SetSpeed(0.001)
	if c.Speed() != MinSpeed {
		t.Fatalf("speed = %.1f, want %.1f", c.Speed(), MinSpeed)
	}
}

func TestIncrementDayBoundary(t *testing.T) {
	c := NewClock(10)
	perDay := c.TicksPerDay()
	if perDay != 240 {
		t.Fatalf("ticks per day = %d, want 240", perDay)
	}

	// Walk two full days: the boundary must fire exactly once per day,
	// never twice, never skipped.
	days := 0
	for i := 0; i < perDay*2; i++ {
		if c.Increment() {
			days++
			if c.State().Tick != 0 {
				t.Fatalf("day rollover left tick at %d", c.State().Tick)
			}
		}
	}
	if days != 2 {
		t.Fatalf("day boundaries = %d, want 2", days)
	}
	if c.State().Day != 2 {
		t.Fatalf("day = %d, want 2", c.State().Day)
	}
}

func TestSetTimeClampsRange(t *testing.T) {
	c := NewClock(10)
	c.SetTime(-5, 9999)
	st := c.State()
	if st.Day != 0 {
		t.Fatalf("day = %d, want 0", st.Day)
	}
	if st.Tick != c.TicksPerDay()-1 {
		t.Fatalf("tick = %d, want clamped to %d", st.Tick, c.TicksPerDay()-1)
	}
}

func TestDerivedTime(t *testing.T) {
	c := NewClock(10)
	c.SetTime(3, 145) // Hour 14, halfway through the hour

	ti := c.Time()
	if ti.Hour != 14 || ti.Minute != 30 {
		t.Fatalf("time = %02d:%02d, want 14:30", ti.Hour, ti.Minute)
	}
	if ti.DayPeriod != "afternoon" || !ti.IsDaytime {
		t.Fatalf("period = %s daytime = %v", ti.DayPeriod, ti.IsDaytime)
	}

	c.SetTime(3, 30) // Hour 3: night
	ti = c.Time()
	if ti.DayPeriod != "night" || ti.IsDaytime {
		t.Fatalf("period = %s daytime = %v, want night", ti.DayPeriod, ti.IsDaytime)
	}
}

func TestPauseKeepsAccumulator(t *testing.T) {
	c := NewClock(10)
	c.Start()
	c.Advance(700) // Banks 0.7 ticks
	c.Pause()
	c.Advance(10000) // Ignored while paused
	c.Start()
	if n := c.Advance(300); n != 1 {
		t.Fatalf("ticks = %d, want 1 (0.7 banked + 0.3)", n)
	}
}
