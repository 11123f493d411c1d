package broadcast

import (
	"testing"

	"github.com/emberhollow/villagesim/internal/engine"
)

func tickEvent(tick int, villagers ...engine.VillagerView) engine.TickEvent {
	return engine.TickEvent{
		Time:      engine.TimeInfo{Tick: tick, Day: 0, Hour: tick / 10},
		Speed:     1,
		Villagers: villagers,
	}
}

func view(id string, x, y int, activity string, mood float64) engine.VillagerView {
	return engine.VillagerView{ID: id, Name: id, X: x, Y: y, Activity: activity, Mood: mood}
}

func TestFirstFrameEmitsEveryoneInFull(t *testing.T) {
	tr := NewTracker()
	f := tr.FrameFor(tickEvent(1, view("a", 1, 1, "idle", 50), view("b", 2, 2, "idle", 60)))

	if len(f.VillagersFull) != 2 {
		t.Fatalf("full villagers = %d, want 2", len(f.VillagersFull))
	}
	if len(f.VillagerUpdates) != 0 {
		t.Fatalf("updates = %d, want 0 on first frame", len(f.VillagerUpdates))
	}
}

func TestUnchangedVillagersAreOmitted(t *testing.T) {
	tr := NewTracker()
	tr.FrameFor(tickEvent(1, view("a", 1, 1, "idle", 50)))

	f := tr.FrameFor(tickEvent(2, view("a", 1, 1, "idle", 50)))
	if len(f.VillagerUpdates) != 0 || len(f.VillagersFull) != 0 {
		t.Fatalf("unchanged villager produced output: %+v", f)
	}
}

func TestDeltaCarriesOnlyChangedFields(t *testing.T) {
	tr := NewTracker()
	tr.FrameFor(tickEvent(1,
		view("a", 1, 1, "idle", 50),
		view("b", 5, 5, "working", 60),
	))

	// Only a moved, and only along x.
	f := tr.FrameFor(tickEvent(2,
		view("a", 2, 1, "idle", 50),
		view("b", 5, 5, "working", 60),
	))

	if len(f.VillagerUpdates) != 1 {
		t.Fatalf("updates = %d, want exactly 1", len(f.VillagerUpdates))
	}
	u := f.VillagerUpdates[0]
	if u.ID != "a" {
		t.Fatalf("update id = %s, want a", u.ID)
	}
	if u.X == nil || *u.X != 2 {
		t.Fatalf("x = %v, want 2", u.X)
	}
	if u.Y != nil || u.Activity != nil || u.Mood != nil {
		t.Fatalf("unchanged fields must be nil: %+v", u)
	}
}

func TestDeltaBaselineAdvances(t *testing.T) {
	tr := NewTracker()
	tr.FrameFor(tickEvent(1, view("a", 1, 1, "idle", 50)))
	tr.FrameFor(tickEvent(2, view("a", 2, 1, "idle", 50)))

	// Same position as tick 2: nothing to say.
	f := tr.FrameFor(tickEvent(3, view("a", 2, 1, "idle", 50)))
	if len(f.VillagerUpdates) != 0 {
		t.Fatal("baseline must advance past broadcast deltas")
	}
}

func TestNewVillagerJoinsInFull(t *testing.T) {
	tr := NewTracker()
	tr.FrameFor(tickEvent(1, view("a", 1, 1, "idle", 50)))

	f := tr.FrameFor(tickEvent(2,
		view("a", 1, 1, "idle", 50),
		view("b", 9, 9, "wandering", 70),
	))
	if len(f.VillagersFull) != 1 || f.VillagersFull[0].ID != "b" {
		t.Fatalf("new villager not emitted in full: %+v", f)
	}
}

func TestActivityAndMoodChanges(t *testing.T) {
	tr := NewTracker()
	tr.FrameFor(tickEvent(1, view("a", 1, 1, "idle", 50)))

	f := tr.FrameFor(tickEvent(2, view("a", 1, 1, "working", 48)))
	if len(f.VillagerUpdates) != 1 {
		t.Fatalf("updates = %d, want 1", len(f.VillagerUpdates))
	}
	u := f.VillagerUpdates[0]
	if u.Activity == nil || *u.Activity != "working" {
		t.Fatalf("activity = %v, want working", u.Activity)
	}
	if u.Mood == nil || *u.Mood != 48 {
		t.Fatalf("mood = %v, want 48", u.Mood)
	}
	if u.X != nil || u.Y != nil {
		t.Fatal("position fields must be nil when unmoved")
	}
}

func TestFullFrame(t *testing.T) {
	ev := tickEvent(7, view("a", 1, 1, "idle", 50), view("b", 2, 2, "idle", 60))
	f := FullFrame(ev)
	if len(f.VillagersFull) != 2 || len(f.VillagerUpdates) != 0 {
		t.Fatalf("full frame shape wrong: %+v", f)
	}
	if f.Time.Tick != 7 {
		t.Fatalf("time tick = %d, want 7", f.Time.Tick)
	}
}
