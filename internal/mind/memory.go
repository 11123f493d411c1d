// Package mind maintains per-villager memory — interaction history,
// impressions of other villagers, favorite locations — and generates
// narrated internal thoughts from it.
package mind

import (
	"sort"

	"github.com/emberhollow/villagesim/internal/social"
	"github.com/emberhollow/villagesim/internal/villager"
)

// Retention bounds. Pruning is lossy by design: oldest entries go first.
const (
	MaxInteractionMemories = 50
	MaxLocationMemories    = 30
)

// Trend classifies the direction of an impression.
type Trend string

const (
	TrendPositive Trend = "positive"
	TrendNeutral  Trend = "neutral"
	TrendNegative Trend = "negative"
)

// Impression is one villager's private running memory of another. It is
// distinct from the public affinity score: the affinity is what the
// relationship is, the impression is what its owner remembers of it.
type Impression struct {
	Interactions int                 `json:"interactions"`
	AvgSentiment float64             `json:"avg_sentiment"`
	KindCounts   map[social.Kind]int `json:"kind_counts"`
	Affinity     float64             `json:"affinity"` // Running affinity at last contact
	HasMet       bool                `json:"has_met"`
	LastTick     uint64              `json:"last_tick"`
}

// Trend derives the impression's direction from the running sentiment.
func (im *Impression) Trend() Trend {
	switch {
	case im.AvgSentiment > 0.15:
		return TrendPositive
	case im.AvgSentiment < -0.15:
		return TrendNegative
	default:
		return TrendNeutral
	}
}

// Tier derives the relationship tier from the running affinity value.
func (im *Impression) Tier() villager.RelationshipTier {
	return villager.TierFor(im.HasMet, im.Affinity)
}

// LocationMemory counts visits to one named place.
type LocationMemory struct {
	Place    string `json:"place"`
	Visits   int    `json:"visits"`
	LastTick uint64 `json:"last_tick"`
}

// State is the serializable form of the whole memory system, used by
// snapshots. Maps are keyed villager id → (other id / place).
type State struct {
	Interactions map[string][]social.Record             `json:"interactions"`
	Impressions  map[string]map[string]*Impression      `json:"impressions"`
	Locations    map[string]map[string]*LocationMemory `json:"locations"`
	LastThought  map[string]uint64                      `json:"last_thought"`
}

// Memory owns all per-villager memory state. Mutated only from the engine
// tick; never shared by reference.
type Memory struct {
	interactions map[string][]social.Record
	impressions  map[string]map[string]*Impression
	locations    map[string]map[string]*LocationMemory
	lastThought  map[string]uint64
}

// NewMemory creates an empty memory system.
func NewMemory() *Memory {
	return &Memory{
		interactions: make(map[string][]social.Record),
		impressions:  make(map[string]map[string]*Impression),
		locations:    make(map[string]map[string]*LocationMemory),
		lastThought:  make(map[string]uint64),
	}
}

// ObserveInteraction folds one interaction record into both participants'
// memories and impressions.
func (m *Memory) ObserveInteraction(rec social.Record, initiator, target *villager.Villager) {
	for _, vid := range [2]string{rec.Initiator, rec.Target} {
		m.interactions[vid] = append(m.interactions[vid], rec)
		if len(m.interactions[vid]) > MaxInteractionMemories {
			m.interactions[vid] = m.interactions[vid][len(m.interactions[vid])-MaxInteractionMemories:]
		}
	}

	m.updateImpression(rec.Initiator, rec.Target, rec, initiator.Affinity(rec.Target))
	m.updateImpression(rec.Target, rec.Initiator, rec, target.Affinity(rec.Initiator))
}

func (m *Memory) updateImpression(owner, other string, rec social.Record, affinity float64) {
	byOther := m.impressions[owner]
	if byOther == nil {
		byOther = make(map[string]*Impression)
		m.impressions[owner] = byOther
	}
	im := byOther[other]
	if im == nil {
		im = &Impression{KindCounts: make(map[social.Kind]int)}
		byOther[other] = im
	}

	// Running average over all interactions seen so far.
	im.AvgSentiment = (im.AvgSentiment*float64(im.Interactions) + rec.Sentiment) / float64(im.Interactions+1)
	im.Interactions++
	im.KindCounts[rec.Kind]++
	im.Affinity = affinity
	im.HasMet = true
	im.LastTick = rec.Tick
}

// RecordVisit notes that a villager is at a named place this tick.
func (m *Memory) RecordVisit(vid, place string, tick uint64) {
	byPlace := m.locations[vid]
	if byPlace == nil {
		byPlace = make(map[string]*LocationMemory)
		m.locations[vid] = byPlace
	}
	lm := byPlace[place]
	if lm == nil {
		lm = &LocationMemory{Place: place}
		byPlace[place] = lm
	}
	lm.Visits++
	lm.LastTick = tick
}

// ImpressionOf returns owner's impression of other, or nil.
func (m *Memory) ImpressionOf(owner, other string) *Impression {
	return m.impressions[owner][other]
}

// RecentInteraction returns the villager's newest interaction memory if it
// happened within maxAge ticks of now.
func (m *Memory) RecentInteraction(vid string, tick, maxAge uint64) (social.Record, bool) {
	hist := m.interactions[vid]
	if len(hist) == 0 {
		return social.Record{}, false
	}
	last := hist[len(hist)-1]
	if tick-last.Tick > maxAge {
		return social.Record{}, false
	}
	return last, true
}

// FavoriteLocation returns the villager's most-visited place, or "".
func (m *Memory) FavoriteLocation(vid string) string {
	best := ""
	bestVisits := 0
	for place, lm := range m.locations[vid] {
		if lm.Visits > bestVisits {
			best = place
			bestVisits = lm.Visits
		}
	}
	return best
}

// Prune enforces retention bounds: interaction histories are already
// length-capped on insert; location memories beyond the cap drop the
// least-recently-visited places.
func (m *Memory) Prune(tick uint64) {
	for vid, byPlace := range m.locations {
		if len(byPlace) <= MaxLocationMemories {
			continue
		}
		places := make([]*LocationMemory, 0, len(byPlace))
		for _, lm := range byPlace {
			places = append(places, lm)
		}
		sort.Slice(places, func(i, j int) bool {
			return places[i].LastTick < places[j].LastTick
		})
		for _, lm := range places[:len(places)-MaxLocationMemories] {
			delete(m.locations[vid], lm.Place)
		}
	}
}

// ResetDaily clears the short-horizon per-day state (thought throttling).
// Long-lived impressions and histories survive the day boundary.
func (m *Memory) ResetDaily() {
	m.lastThought = make(map[string]uint64)
}

// ExportState deep-copies the memory system for a snapshot.
func (m *Memory) ExportState() State {
	st := State{
		Interactions: make(map[string][]social.Record, len(m.interactions)),
		Impressions:  make(map[string]map[string]*Impression, len(m.impressions)),
		Locations:    make(map[string]map[string]*LocationMemory, len(m.locations)),
		LastThought:  make(map[string]uint64, len(m.lastThought)),
	}
	for vid, hist := range m.interactions {
		st.Interactions[vid] = append([]social.Record(nil), hist...)
	}
	for vid, byOther := range m.impressions {
		cp := make(map[string]*Impression, len(byOther))
		for other, im := range byOther {
			imCopy := *im
			imCopy.KindCounts = make(map[social.Kind]int, len(im.KindCounts))
			for k, c := range im.KindCounts {
				imCopy.KindCounts[k] = c
			}
			cp[other] = &imCopy
		}
		st.Impressions[vid] = cp
	}
	for vid, byPlace := range m.locations {
		cp := make(map[string]*LocationMemory, len(byPlace))
		for place, lm := range byPlace {
			lmCopy := *lm
			cp[place] = &lmCopy
		}
		st.Locations[vid] = cp
	}
	for vid, t := range m.lastThought {
		st.LastThought[vid] = t
	}
	return st
}

// RestoreState replaces the memory system's contents from a snapshot.
func (m *Memory) RestoreState(st State) {
	m.interactions = make(map[string][]social.Record)
	m.impressions = make(map[string]map[string]*Impression)
	m.locations = make(map[string]map[string]*LocationMemory)
	m.lastThought = make(map[string]uint64)

	for vid, hist := range st.Interactions {
		m.interactions[vid] = append([]social.Record(nil), hist...)
	}
	for vid, byOther := range st.Impressions {
		cp := make(map[string]*Impression, len(byOther))
		for other, im := range byOther {
			imCopy := *im
			if imCopy.KindCounts == nil {
				imCopy.KindCounts = make(map[social.Kind]int)
			}
			cp[other] = &imCopy
		}
		m.impressions[vid] = cp
	}
	for vid, byPlace := range st.Locations {
		cp := make(map[string]*LocationMemory, len(byPlace))
		for place, lm := range byPlace {
			lmCopy := *lm
			cp[place] = &lmCopy
		}
		m.locations[vid] = cp
	}
	for vid, t := range st.LastThought {
		m.lastThought[vid] = t
	}
}
