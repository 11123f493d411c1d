package mind

import (
	"fmt"
	"testing"

	"github.com/emberhollow/villagesim/internal/social"
	"github.com/emberhollow/villagesim/internal/villager"
	"github.com/emberhollow/villagesim/internal/world"
)

func pair() (*villager.Villager, *villager.Villager) {
	a := &villager.Villager{ID: "a", Name: "Alda", Relationships: map[string]float64{"b": 12}}
	b := &villager.Villager{ID: "b", Name: "Bram", Relationships: map[string]float64{"a": 9.6}}
	return a, b
}

func record(tick uint64, kind social.Kind, sentiment float64) social.Record {
	return social.Record{
		ID:        fmt.Sprintf("rec-%d", tick),
		Initiator: "a",
		Target:    "b",
		Kind:      kind,
		Sentiment: sentiment,
		Location:  world.Point{X: 3, Y: 3},
		Tick:      tick,
	}
}

func TestObserveInteractionUpdatesBothImpressions(t *testing.T) {
	m := NewMemory()
	a, b := pair()

	m.ObserveInteraction(record(10, social.KindConversation, 0.4), a, b)

	ia := m.ImpressionOf("a", "b")
	if ia == nil {
		t.Fatal("initiator impression missing")
	}
	if ia.Interactions != 1 || ia.AvgSentiment != 0.4 || !ia.HasMet {
		t.Fatalf("initiator impression = %+v", ia)
	}
	if ia.Affinity != 12 {
		t.Fatalf("initiator affinity = %.1f, want 12", ia.Affinity)
	}
	if ia.KindCounts[social.KindConversation] != 1 {
		t.Fatalf("kind counts = %v", ia.KindCounts)
	}

	ib := m.ImpressionOf("b", "a")
	if ib == nil || ib.Affinity != 9.6 {
		t.Fatalf("target impression = %+v", ib)
	}

	// One-sided lookups stay empty.
	if m.ImpressionOf("a", "c") != nil {
		t.Fatal("unexpected impression of unknown villager")
	}
}

func TestImpressionRunningAverageAndTrend(t *testing.T) {
	m := NewMemory()
	a, b := pair()

	m.ObserveInteraction(record(1, social.KindConversation, 0.5), a, b)
	m.ObserveInteraction(record(2, social.KindArgument, -0.5), a, b)

	im := m.ImpressionOf("a", "b")
	if im.Interactions != 2 {
		t.Fatalf("interactions = %d, want 2", im.Interactions)
	}
	if im.AvgSentiment != 0 {
		t.Fatalf("avg sentiment = %.2f, want 0", im.AvgSentiment)
	}
	if im.Trend() != TrendNeutral {
		t.Fatalf("trend = %s, want neutral", im.Trend())
	}

	m.ObserveInteraction(record(3, social.KindHelp, 0.6), a, b)
	if got := m.ImpressionOf("a", "b").Trend(); got != TrendPositive {
		t.Fatalf("trend = %s, want positive", got)
	}
}

func TestInteractionHistoryCap(t *testing.T) {
	m := NewMemory()
	a, b := pair()

	for i := 0; i < MaxInteractionMemories+20; i++ {
		m.ObserveInteraction(record(uint64(i), social.KindConversation, 0.1), a, b)
	}
	if got := len(m.interactions["a"]); got != MaxInteractionMemories {
		t.Fatalf("history length = %d, want %d", got, MaxInteractionMemories)
	}
	// Oldest entries dropped: the newest survives.
	last, ok := m.RecentInteraction("a", uint64(MaxInteractionMemories+20), 10)
	if !ok || last.Tick != uint64(MaxInteractionMemories+19) {
		t.Fatalf("recent = %v/%v", last.Tick, ok)
	}
}

func TestRecentInteractionWindow(t *testing.T) {
	m := NewMemory()
	a, b := pair()
	m.ObserveInteraction(record(100, social.KindGossip, 0.2), a, b)

	if _, ok := m.RecentInteraction("a", 150, 60); !ok {
		t.Fatal("interaction inside window must be found")
	}
	if _, ok := m.RecentInteraction("a", 200, 60); ok {
		t.Fatal("interaction outside window must not be found")
	}
	if _, ok := m.RecentInteraction("c", 100, 60); ok {
		t.Fatal("villager with no history must report none")
	}
}

func TestFavoriteLocation(t *testing.T) {
	m := NewMemory()
	if got := m.FavoriteLocation("a"); got != "" {
		t.Fatalf("favorite = %q, want empty", got)
	}

	m.RecordVisit("a", "tavern", 1)
	m.RecordVisit("a", "tavern", 2)
	m.RecordVisit("a", "chapel", 3)
	if got := m.FavoriteLocation("a"); got != "tavern" {
		t.Fatalf("favorite = %q, want tavern", got)
	}
}

func TestPruneDropsLeastRecentLocations(t *testing.T) {
	m := NewMemory()
	for i := 0; i < MaxLocationMemories+5; i++ {
		m.RecordVisit("a", fmt.Sprintf("place-%d", i), uint64(i))
	}

	m.Prune(1000)
	if got := len(m.locations["a"]); got != MaxLocationMemories {
		t.Fatalf("locations = %d, want %d", got, MaxLocationMemories)
	}
	// The oldest visits are the ones dropped.
	if _, ok := m.locations["a"]["place-0"]; ok {
		t.Fatal("oldest location must be pruned")
	}
	if _, ok := m.locations["a"][fmt.Sprintf("place-%d", MaxLocationMemories+4)]; !ok {
		t.Fatal("newest location must survive")
	}
}

func TestExportRestoreRoundTrip(t *testing.T) {
	m := NewMemory()
	a, b := pair()
	m.ObserveInteraction(record(10, social.KindConversation, 0.4), a, b)
	m.RecordVisit("a", "tavern", 11)
	m.lastThought["a"] = 12

	st := m.ExportState()

	// Deep copy: mutating the source must not touch the export.
	m.ObserveInteraction(record(20, social.KindArgument, -0.6), a, b)
	if len(st.Interactions["a"]) != 1 {
		t.Fatal("export shares interaction history with the source")
	}
	if st.Impressions["a"]["b"].Interactions != 1 {
		t.Fatal("export shares impressions with the source")
	}

	restored := NewMemory()
	restored.RestoreState(st)

	im := restored.ImpressionOf("a", "b")
	if im == nil || im.Interactions != 1 || im.AvgSentiment != 0.4 {
		t.Fatalf("restored impression = %+v", im)
	}
	if got := restored.FavoriteLocation("a"); got != "tavern" {
		t.Fatalf("restored favorite = %q, want tavern", got)
	}
	if restored.lastThought["a"] != 12 {
		t.Fatal("restored thought throttle state lost")
	}
}

func TestResetDailyClearsThrottleOnly(t *testing.T) {
	m := NewMemory()
	a, b := pair()
	m.ObserveInteraction(record(10, social.KindConversation, 0.4), a, b)
	m.lastThought["a"] = 10

	m.ResetDaily()
	if len(m.lastThought) != 0 {
		t.Fatal("daily reset must clear thought throttling")
	}
	if m.ImpressionOf("a", "b") == nil {
		t.Fatal("daily reset must not clear impressions")
	}
}
