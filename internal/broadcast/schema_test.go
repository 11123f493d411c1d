package broadcast

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/emberhollow/villagesim/internal/engine"
)

// TestFrameSchema validates that both delta and full frames marshal into
// the published wire schema.
func TestFrameSchema(t *testing.T) {
	schema, err := jsonschema.Compile(filepath.Join("..", "..", "schemas", "frame.schema.json"))
	if err != nil {
		t.Fatalf("compile schema: %v", err)
	}

	validate := func(f Frame) {
		t.Helper()
		data, err := json.Marshal(f)
		if err != nil {
			t.Fatalf("marshal frame: %v", err)
		}
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			t.Fatalf("unmarshal frame: %v", err)
		}
		if err := schema.Validate(v); err != nil {
			t.Fatalf("validate: %v\nframe: %s", err, data)
		}
	}

	ev := engine.TickEvent{
		Time: engine.TimeInfo{
			Tick: 145, Day: 3, Hour: 14, Minute: 30,
			DayPeriod: "afternoon", IsDaytime: true,
		},
		Speed: 1,
		Villagers: []engine.VillagerView{
			{
				ID: "villager-001", Name: "Alda Fletcher", Role: "baker",
				X: 12, Y: 9, Activity: "working",
				Mood: 62.5, Energy: 71, Hunger: 33, Social: 48,
				Coins: 41, HomeID: "home-1", WorkID: "bakery",
				Inventory: map[string]int{"bread": 8},
			},
		},
	}

	// Bootstrap full frame.
	validate(FullFrame(ev))

	// First tracker frame: full emission.
	tr := NewTracker()
	validate(tr.FrameFor(ev))

	// Delta frame with a movement and activity change.
	ev2 := ev
	ev2.Villagers = []engine.VillagerView{{
		ID: "villager-001", Name: "Alda Fletcher", Role: "baker",
		X: 13, Y: 9, Activity: "traveling",
		Mood: 62.5, Energy: 71, Hunger: 33, Social: 48,
		Coins: 41, HomeID: "home-1", WorkID: "bakery",
	}}
	validate(tr.FrameFor(ev2))

	// Quiet frame: nothing but the clock.
	validate(tr.FrameFor(ev2))
}
