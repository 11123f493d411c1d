// Typed event listener registry. One listener's panic is caught and
// logged so it cannot stop tick processing or other listeners.
package engine

import (
	"log/slog"

	"github.com/emberhollow/villagesim/internal/economy"
	"github.com/emberhollow/villagesim/internal/mind"
	"github.com/emberhollow/villagesim/internal/social"
)

// DayIncome is one villager's daily income result, carried on DayEvent.
type DayIncome struct {
	VillagerID string `json:"villager_id"`
	Amount     int    `json:"amount"`
}

// DayEvent fires once per day boundary.
type DayEvent struct {
	Day    int         `json:"day"`
	Income []DayIncome `json:"income"`
}

// HourEvent fires once per hour change.
type HourEvent struct {
	Day  int `json:"day"`
	Hour int `json:"hour"`
}

// VillagerView is the per-villager block carried on tick frames: the
// replicated public fields observers render from.
type VillagerView struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Role      string         `json:"role"`
	X         int            `json:"x"`
	Y         int            `json:"y"`
	Activity  string         `json:"activity"`
	Mood      float64        `json:"mood"`
	Energy    float64        `json:"energy"`
	Hunger    float64        `json:"hunger"`
	Social    float64        `json:"social"`
	Coins     int            `json:"coins"`
	HomeID    string         `json:"home_id,omitempty"`
	WorkID    string         `json:"work_id,omitempty"`
	Inventory map[string]int `json:"inventory,omitempty"`
}

// TickEvent is emitted on the broadcast cadence with the full current
// villager views; the broadcaster turns it into delta frames.
type TickEvent struct {
	Time      TimeInfo       `json:"time"`
	Paused    bool           `json:"paused"`
	Speed     float64        `json:"speed"`
	Villagers []VillagerView `json:"villagers"`
}

// Listeners registers typed callbacks for engine events.
type Listeners struct {
	onStart       []func(ClockState)
	onPause       []func(ClockState)
	onSpeedChange []func(ClockState)
	onNewHour     []func(HourEvent)
	onNewDay      []func(DayEvent)
	onInteraction []func(social.Record)
	onTransaction []func(economy.Record)
	onThought     []func(mind.Thought)
	onTick        []func(TickEvent)
}

func (l *Listeners) OnStart(fn func(ClockState)) { l.onStart = append(l.onStart, fn) }
func (l *Listeners) OnPause(fn func(ClockState)) { l.onPause = append(l.onPause, fn) }
func (l *Listeners) OnSpeedChange(fn func(ClockState)) {
	l.onSpeedChange = append(l.onSpeedChange, fn)
}
func (l *Listeners) OnNewHour(fn func(HourEvent)) { l.onNewHour = append(l.onNewHour, fn) }
func (l *Listeners) OnNewDay(fn func(DayEvent))   { l.onNewDay = append(l.onNewDay, fn) }
func (l *Listeners) OnInteraction(fn func(social.Record)) {
	l.onInteraction = append(l.onInteraction, fn)
}
func (l *Listeners) OnTransaction(fn func(economy.Record)) {
	l.onTransaction = append(l.onTransaction, fn)
}
func (l *Listeners) OnThought(fn func(mind.Thought)) { l.onThought = append(l.onThought, fn) }
func (l *Listeners) OnTick(fn func(TickEvent))       { l.onTick = append(l.onTick, fn) }

// dispatch invokes each listener inside its own recover so a faulty
// observer cannot take down the tick.
func dispatch[T any](name string, fns []func(T), ev T) {
	for _, fn := range fns {
		func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("event listener panicked", "event", name, "panic", r)
				}
			}()
			fn(ev)
		}()
	}
}
