// Package broadcast replicates simulation state to observers as delta
// frames: only changed villager fields go on the wire after the first
// full frame.
package broadcast

import (
	"github.com/emberhollow/villagesim/internal/engine"
)

// VillagerUpdate carries only the fields that changed since the last
// broadcast for one villager.
type VillagerUpdate struct {
	ID       string   `json:"id"`
	X        *int     `json:"x,omitempty"`
	Y        *int     `json:"y,omitempty"`
	Activity *string  `json:"activity,omitempty"`
	Mood     *float64 `json:"mood,omitempty"`
}

// Frame is one broadcast payload. VillagersFull carries complete villager
// views (new or bootstrap); VillagerUpdates carries changed fields only.
// Either array is absent when empty.
type Frame struct {
	Time            engine.TimeInfo       `json:"time"`
	Paused          bool                  `json:"paused"`
	Speed           float64               `json:"speed"`
	VillagerUpdates []VillagerUpdate      `json:"villagerUpdates,omitempty"`
	VillagersFull   []engine.VillagerView `json:"villagersFull,omitempty"`
}

// baseline is the last-broadcast comparable state for one villager.
type baseline struct {
	x, y     int
	activity string
	mood     float64
}

// Tracker computes delta frames against the last broadcast baseline.
type Tracker struct {
	seen map[string]baseline
}

// NewTracker creates an empty tracker: the first frame emits everyone in full.
func NewTracker() *Tracker {
	return &Tracker{seen: make(map[string]baseline)}
}

// FrameFor computes the delta frame for a tick event and advances the
// baseline. Villagers unseen before are emitted in full; unchanged
// villagers are omitted; changed villagers emit only the changed fields.
func (t *Tracker) FrameFor(ev engine.TickEvent) Frame {
	frame := Frame{Time: ev.Time, Paused: ev.Paused, Speed: ev.Speed}

	for _, v := range ev.Villagers {
		prev, known := t.seen[v.ID]
		if !known {
			frame.VillagersFull = append(frame.VillagersFull, v)
			t.seen[v.ID] = baseline{x: v.X, y: v.Y, activity: v.Activity, mood: v.Mood}
			continue
		}

		var upd VillagerUpdate
		changed := false
		if v.X != prev.x {
			x := v.X
			upd.X = &x
			changed = true
		}
		if v.Y != prev.y {
			y := v.Y
			upd.Y = &y
			changed = true
		}
		if v.Activity != prev.activity {
			a := v.Activity
			upd.Activity = &a
			changed = true
		}
		if v.Mood != prev.mood {
			m := v.Mood
			upd.Mood = &m
			changed = true
		}
		if !changed {
			continue
		}
		upd.ID = v.ID
		frame.VillagerUpdates = append(frame.VillagerUpdates, upd)
		t.seen[v.ID] = baseline{x: v.X, y: v.Y, activity: v.Activity, mood: v.Mood}
	}
	return frame
}

// FullFrame builds a bootstrap frame carrying every villager in full.
func FullFrame(ev engine.TickEvent) Frame {
	return Frame{
		Time:          ev.Time,
		Paused:        ev.Paused,
		Speed:         ev.Speed,
		VillagersFull: ev.Villagers,
	}
}
