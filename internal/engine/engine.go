// Package engine owns the simulation tick loop: it advances the clock,
// updates every villager, resolves interactions, generates thoughts, and
// emits events. The engine is the sole writer of all mutable state.
package engine

import (
	"log/slog"
	"sync"

	"github.com/emberhollow/villagesim/internal/economy"
	"github.com/emberhollow/villagesim/internal/entropy"
	"github.com/emberhollow/villagesim/internal/mind"
	"github.com/emberhollow/villagesim/internal/social"
	"github.com/emberhollow/villagesim/internal/villager"
	"github.com/emberhollow/villagesim/internal/world"
)

// Config holds the engine's cadence and subsystem knobs.
type Config struct {
	TicksPerHour     int
	ThoughtCadence   uint64 // Run a thought pass every N ticks
	PruneCadence     uint64 // Prune cooldowns/memories every N ticks
	BroadcastCadence uint64 // Emit a tick event every N ticks
	Resolver         social.Config
	Thoughts         mind.GeneratorConfig
}

// DefaultConfig returns the standard simulation tuning.
func DefaultConfig() Config {
	return Config{
		TicksPerHour:     10,
		ThoughtCadence:   2,
		PruneCadence:     100,
		BroadcastCadence: 2,
		Resolver:         social.DefaultConfig(),
		Thoughts:         mind.DefaultGeneratorConfig(),
	}
}

// Engine ties the world, villagers, and subsystems together and processes
// ticks. All mutation happens inside Update under the engine mutex; reads
// from other goroutines go through by-value snapshots.
type Engine struct {
	mu sync.Mutex

	cfg       Config
	clock     *Clock
	grid      *world.Grid
	villagers []*villager.Villager
	byID      map[string]*villager.Villager

	ledger   *economy.Ledger
	resolver *social.Resolver
	memory   *mind.Memory
	thoughts *mind.Generator
	rng      *entropy.Source

	listeners Listeners

	// Transaction records produced mid-tick, drained into listener
	// dispatches when the tick completes.
	pendingTx []economy.Record
}

// New creates an Engine over a generated grid and population.
func New(cfg Config, grid *world.Grid, vs []*villager.Villager, seed int64) *Engine {
	if cfg.TicksPerHour <= 0 {
		cfg = DefaultConfig()
	}

	e := &Engine{
		cfg:       cfg,
		clock:     NewClock(cfg.TicksPerHour),
		grid:      grid,
		villagers: vs,
		byID:      make(map[string]*villager.Villager, len(vs)),
		memory:    mind.NewMemory(),
		rng:       entropy.NewSource(seed),
	}
	for _, v := range vs {
		e.byID[v.ID] = v
	}

	e.ledger = economy.NewLedger()
	e.ledger.OnRecord = func(r economy.Record) {
		e.pendingTx = append(e.pendingTx, r)
	}
	e.resolver = social.NewResolver(cfg.Resolver, e.rng, e.ledger)
	e.thoughts = mind.NewGenerator(cfg.Thoughts, e.memory, e.rng)
	return e
}

// Listeners returns the event registry. Register before starting the
// driver loop; registration is not synchronized against tick processing.
func (e *Engine) Listeners() *Listeners { return &e.listeners }

// Ledger exposes the transaction ledger for direct economic operations.
func (e *Engine) Ledger() *economy.Ledger { return e.ledger }

// Memory exposes the memory system for read-only queries.
func (e *Engine) Memory() *mind.Memory { return e.memory }

// Resolver exposes the interaction resolver (tests use it to clear
// cooldowns and inspect pair state).
func (e *Engine) Resolver() *social.Resolver { return e.resolver }

// Update converts elapsed wall time into whole ticks and processes them.
// Never sleeps, never performs I/O. Returns the number of ticks processed.
func (e *Engine) Update(elapsedMs float64) int {
	e.mu.Lock()
	n := e.clock.Advance(elapsedMs)
	var fired []func()
	for i := 0; i < n; i++ {
		fired = append(fired, e.processTick()...)
	}
	e.mu.Unlock()

	// Listener dispatch happens outside the engine lock so a slow observer
	// cannot block the next Update.
	for _, fire := range fired {
		fire()
	}
	return n
}

// absTick returns the monotonic tick count derived from day and in-day tick.
func (e *Engine) absTick() uint64 {
	st := e.clock.State()
	return uint64(st.Day)*uint64(e.clock.TicksPerDay()) + uint64(st.Tick)
}

// processTick advances exactly one tick. A panic inside a tick is logged
// and swallowed; the engine continues from the next tick.
func (e *Engine) processTick() (fired []func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("tick processing failed", "day", e.clock.State().Day, "tick", e.clock.State().Tick, "panic", r)
		}
	}()

	prevHour := e.clock.Hour()
	newDay := e.clock.Increment()
	abs := e.absTick()

	if newDay {
		ev := e.processNewDay()
		fired = append(fired, func() { dispatch("newDay", e.listeners.onNewDay, ev) })
	}
	if h := e.clock.Hour(); h != prevHour {
		ev := HourEvent{Day: e.clock.State().Day, Hour: h}
		fired = append(fired, func() { dispatch("newHour", e.listeners.onNewHour, ev) })
	}

	// Villager updates.
	in := villager.TickInput{Hour: e.clock.Hour(), Grid: e.grid, Rng: e.rng}
	for _, v := range e.villagers {
		v.Update(in)
	}

	// Interaction resolution.
	for _, rec := range e.resolver.Resolve(abs, e.villagers) {
		e.memory.ObserveInteraction(rec, e.byID[rec.Initiator], e.byID[rec.Target])
		rec := rec
		fired = append(fired, func() { dispatch("interaction", e.listeners.onInteraction, rec) })
	}

	// Thought generation, throttled for cost control.
	if abs%e.cfg.ThoughtCadence == 0 {
		for _, th := range e.thoughts.Generate(abs, e.villagers, e.byID) {
			th := th
			fired = append(fired, func() { dispatch("thought", e.listeners.onThought, th) })
		}
	}

	// Location memories, once per hour.
	if e.clock.State().Tick%e.clock.TicksPerHour == 0 {
		e.recordVisits(abs)
	}

	// Slow-cadence pruning.
	if abs%e.cfg.PruneCadence == 0 {
		e.resolver.Prune(abs)
		e.memory.Prune(abs)
	}

	// Transaction events accumulated during this tick.
	for _, tx := range e.pendingTx {
		tx := tx
		fired = append(fired, func() { dispatch("transaction", e.listeners.onTransaction, tx) })
	}
	e.pendingTx = nil

	// Tick event, throttled to bound broadcast volume.
	if abs%e.cfg.BroadcastCadence == 0 {
		ev := e.tickEvent()
		fired = append(fired, func() { dispatch("tick", e.listeners.onTick, ev) })
	}
	return fired
}

// processNewDay pays role income, restocks inventories, and resets the
// short-horizon daily memory for every villager.
func (e *Engine) processNewDay() DayEvent {
	st := e.clock.State()
	ev := DayEvent{Day: st.Day, Income: make([]DayIncome, 0, len(e.villagers))}

	totalPaid := 0
	for _, v := range e.villagers {
		amount := e.ledger.DailyIncome(v)
		e.ledger.Restock(v)
		totalPaid += amount
		ev.Income = append(ev.Income, DayIncome{VillagerID: v.ID, Amount: amount})
	}
	e.memory.ResetDaily()

	slog.Info("new day",
		"day", st.Day,
		"villagers", len(e.villagers),
		"income_paid", totalPaid,
	)
	return ev
}

// recordVisits notes villagers standing at building entrances.
func (e *Engine) recordVisits(abs uint64) {
	for _, b := range e.grid.Buildings {
		for _, v := range e.villagers {
			if v.Pos == b.Entrance {
				e.memory.RecordVisit(v.ID, b.ID, abs)
			}
		}
	}
}

// tickEvent builds the full-state tick frame for the broadcaster.
func (e *Engine) tickEvent() TickEvent {
	st := e.clock.State()
	return TickEvent{
		Time:      e.clock.Time(),
		Paused:    st.Paused,
		Speed:     st.Speed,
		Villagers: e.views(),
	}
}

func (e *Engine) views() []VillagerView {
	out := make([]VillagerView, 0, len(e.villagers))
	for _, v := range e.villagers {
		inv := make(map[string]int, len(v.Inventory))
		for item, qty := range v.Inventory {
			inv[item] = qty
		}
		out = append(out, VillagerView{
			ID:        v.ID,
			Name:      v.Name,
			Role:      v.Role.Name(),
			X:         v.Pos.X,
			Y:         v.Pos.Y,
			Activity:  v.Activity.Name(),
			Mood:      v.Needs.Mood,
			Energy:    v.Needs.Energy,
			Hunger:    v.Needs.Hunger,
			Social:    v.Needs.Social,
			Coins:     v.Coins,
			HomeID:    v.HomeID,
			WorkID:    v.WorkID,
			Inventory: inv,
		})
	}
	return out
}

// ── Control surface ──────────────────────────────────────────────────

// Start unpauses the simulation. Idempotent; returns the clock state.
func (e *Engine) Start() ClockState {
	e.mu.Lock()
	wasPaused := e.clock.Paused()
	e.clock.Start()
	st := e.clock.State()
	e.mu.Unlock()
	if wasPaused {
		dispatch("start", e.listeners.onStart, st)
	}
	return st
}

// Pause pauses the simulation. Outbound queues stay intact for a
// subsequent forced save.
func (e *Engine) Pause() ClockState {
	e.mu.Lock()
	wasRunning := !e.clock.Paused()
	e.clock.Pause()
	st := e.clock.State()
	e.mu.Unlock()
	if wasRunning {
		dispatch("pause", e.listeners.onPause, st)
	}
	return st
}

// TogglePause flips between running and paused.
func (e *Engine) TogglePause() ClockState {
	e.mu.Lock()
	paused := e.clock.Paused()
	e.mu.Unlock()
	if paused {
		return e.Start()
	}
	return e.Pause()
}

// SetSpeed clamps and applies the speed multiplier.
func (e *Engine) SetSpeed(speed float64) ClockState {
	e.mu.Lock()
	e.clock.SetSpeed(speed)
	st := e.clock.State()
	e.mu.Unlock()
	dispatch("speedChange", e.listeners.onSpeedChange, st)
	return st
}

// SetTime jumps the clock to the given day and hour.
func (e *Engine) SetTime(day, hour int) ClockState {
	e.mu.Lock()
	e.clock.SetTime(day, hour*e.clock.TicksPerHour)
	st := e.clock.State()
	e.mu.Unlock()
	return st
}

// ClockState returns the current clock state.
func (e *Engine) ClockState() ClockState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock.State()
}

// FullState returns the clock state plus every villager's public view.
// Used for health checks and new-observer bootstrap.
func (e *Engine) FullState() (ClockState, TimeInfo, []VillagerView) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock.State(), e.clock.Time(), e.views()
}

// Stats returns the ledger's running aggregates.
func (e *Engine) Stats() economy.Stats {
	return e.ledger.Stats()
}

// Outbound holds one drain of the record queues headed for persistence.
type Outbound struct {
	Interactions []social.Record
	Transactions []economy.Record
	Thoughts     []mind.Thought
}

// DrainOutbound atomically drains all three outbound queues.
func (e *Engine) DrainOutbound() Outbound {
	return Outbound{
		Interactions: e.resolver.Drain(),
		Transactions: e.ledger.Drain(),
		Thoughts:     e.thoughts.Drain(),
	}
}
