// Snapshot and restore — by-value capture of the complete mutable
// simulation state, taken under the engine mutex.
package engine

import (
	"github.com/emberhollow/villagesim/internal/mind"
	"github.com/emberhollow/villagesim/internal/villager"
	"github.com/emberhollow/villagesim/internal/world"
)

// Snapshot is the serializable full simulation state.
type Snapshot struct {
	Tick      int                  `json:"tick"`
	Day       int                  `json:"day"`
	Speed     float64              `json:"speed"`
	Paused    bool                 `json:"paused"`
	Villagers []*villager.Villager `json:"villagers"`
	Memory    mind.State           `json:"memoryState"`
}

// Snapshot captures the engine state by value. Safe to call from any
// goroutine; holds the engine lock only while copying.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.clock.State()
	snap := Snapshot{
		Tick:      st.Tick,
		Day:       st.Day,
		Speed:     st.Speed,
		Paused:    st.Paused,
		Villagers: make([]*villager.Villager, 0, len(e.villagers)),
		Memory:    e.memory.ExportState(),
	}
	for _, v := range e.villagers {
		snap.Villagers = append(snap.Villagers, v.Clone())
	}
	return snap
}

// NewFromSnapshot constructs a fresh engine from a snapshot. The grid is
// regenerated separately (terrain is deterministic from the seed) and the
// villagers' movement state rebuilds itself on the first tick.
func NewFromSnapshot(cfg Config, grid *world.Grid, snap Snapshot, seed int64) *Engine {
	vs := make([]*villager.Villager, 0, len(snap.Villagers))
	for _, v := range snap.Villagers {
		vs = append(vs, v.Clone())
	}

	e := New(cfg, grid, vs, seed)
	e.clock.SetTime(snap.Day, snap.Tick)
	e.clock.SetSpeed(snap.Speed)
	if !snap.Paused {
		e.clock.Start()
	}
	e.memory.RestoreState(snap.Memory)
	return e
}
