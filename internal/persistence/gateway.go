// Persistence gateway — debounced periodic saves, forced saves on
// shutdown and day boundaries, at most one save in flight.
package persistence

import (
	"log/slog"
	"sync"
	"time"

	"github.com/emberhollow/villagesim/internal/engine"
)

// Gateway debounces and serializes simulation saves. All writes are
// best-effort: a failed write is logged and the next cycle retries.
// Records drained from the engine for a write that then fails are held
// in the pending buffer and flushed with the next cycle, so a storage
// outage delays them but never drops them.
type Gateway struct {
	db          *DB
	minInterval time.Duration

	saveMu   sync.Mutex // Serializes actual store writes
	stateMu  sync.Mutex // Guards lastSave and pending
	lastSave time.Time
	pending  engine.Outbound
}

// NewGateway creates a Gateway with the given debounce interval.
func NewGateway(db *DB, minInterval time.Duration) *Gateway {
	return &Gateway{db: db, minInterval: minInterval}
}

// SaveState snapshots the engine and writes asynchronously. A no-op when
// a save happened within the debounce interval or another save is still
// in flight.
func (g *Gateway) SaveState(e *engine.Engine) {
	g.stateMu.Lock()
	tooSoon := time.Since(g.lastSave) < g.minInterval
	g.stateMu.Unlock()
	if tooSoon {
		return
	}
	if !g.saveMu.TryLock() {
		return // Save already in flight
	}

	// Capture by value while tick processing is briefly paused; the write
	// round-trip happens off the driver loop.
	snap := e.Snapshot()
	out := e.DrainOutbound()
	_, _, views := e.FullState()

	go func() {
		defer g.saveMu.Unlock()
		g.write(snap, out, views)
	}()
}

// ForceSave bypasses the debounce interval and writes synchronously,
// waiting out any in-flight save first. Used on shutdown and on day
// boundaries.
func (g *Gateway) ForceSave(e *engine.Engine) {
	snap := e.Snapshot()
	out := e.DrainOutbound()
	_, _, views := e.FullState()

	g.saveMu.Lock()
	defer g.saveMu.Unlock()
	g.write(snap, out, views)
}

// write performs one full save cycle: snapshot upsert, record flush,
// position upsert. Errors are logged, never propagated — the simulation
// is unaffected by a failed save. Record batches that fail go back into
// the pending buffer; each append is transactional in the store, so a
// retried batch is never partially duplicated.
func (g *Gateway) write(snap engine.Snapshot, out engine.Outbound, views []engine.VillagerView) {
	start := time.Now()
	out = g.takePending(out)

	if err := g.db.SaveSnapshot(snap); err != nil {
		slog.Error("snapshot save failed", "error", err)
		g.keepPending(out)
		return
	}

	var failed engine.Outbound
	if err := g.db.AppendInteractions(out.Interactions); err != nil {
		slog.Error("interaction flush failed", "error", err, "count", len(out.Interactions))
		failed.Interactions = out.Interactions
	}
	if err := g.db.AppendTransactions(out.Transactions); err != nil {
		slog.Error("transaction flush failed", "error", err, "count", len(out.Transactions))
		failed.Transactions = out.Transactions
	}
	if err := g.db.AppendThoughts(out.Thoughts); err != nil {
		slog.Error("thought flush failed", "error", err, "count", len(out.Thoughts))
		failed.Thoughts = out.Thoughts
	}
	if err := g.db.UpsertPositions(views); err != nil {
		slog.Error("position upsert failed", "error", err)
	}
	g.keepPending(failed)

	g.stateMu.Lock()
	g.lastSave = time.Now()
	g.stateMu.Unlock()

	slog.Info("state saved",
		"day", snap.Day,
		"tick", snap.Tick,
		"villagers", len(snap.Villagers),
		"interactions", len(out.Interactions),
		"transactions", len(out.Transactions),
		"thoughts", len(out.Thoughts),
		"took", time.Since(start).Round(time.Millisecond),
	)
}

// takePending prepends any records held over from failed writes, oldest
// first, and clears the buffer for this attempt.
func (g *Gateway) takePending(out engine.Outbound) engine.Outbound {
	g.stateMu.Lock()
	defer g.stateMu.Unlock()
	held := g.pending
	g.pending = engine.Outbound{}
	if len(held.Interactions)+len(held.Transactions)+len(held.Thoughts) == 0 {
		return out
	}
	return engine.Outbound{
		Interactions: append(held.Interactions, out.Interactions...),
		Transactions: append(held.Transactions, out.Transactions...),
		Thoughts:     append(held.Thoughts, out.Thoughts...),
	}
}

// keepPending returns unwritten records to the buffer for the next cycle.
func (g *Gateway) keepPending(out engine.Outbound) {
	if len(out.Interactions)+len(out.Transactions)+len(out.Thoughts) == 0 {
		return
	}
	g.stateMu.Lock()
	g.pending.Interactions = append(g.pending.Interactions, out.Interactions...)
	g.pending.Transactions = append(g.pending.Transactions, out.Transactions...)
	g.pending.Thoughts = append(g.pending.Thoughts, out.Thoughts...)
	g.stateMu.Unlock()
}

// LoadState reads the keyed snapshot. Absence is a normal cold start.
func (g *Gateway) LoadState() (*engine.Snapshot, bool, error) {
	return g.db.LoadSnapshot()
}
