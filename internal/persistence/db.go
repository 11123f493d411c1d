// Package persistence provides SQLite-backed snapshot storage for the
// simulation. The in-memory engine is always the source of truth; the
// store is a lagging, recoverable replica.
package persistence

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/klauspost/compress/gzip"
	_ "modernc.org/sqlite"

	"github.com/emberhollow/villagesim/internal/economy"
	"github.com/emberhollow/villagesim/internal/engine"
	"github.com/emberhollow/villagesim/internal/mind"
	"github.com/emberhollow/villagesim/internal/social"
)

// StateKey is the fixed key the single simulation snapshot is stored under.
const StateKey = "village"

// DB wraps a SQLite connection for simulation state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sim_state (
		key TEXT PRIMARY KEY,
		tick INTEGER NOT NULL,
		day INTEGER NOT NULL,
		speed REAL NOT NULL,
		paused INTEGER NOT NULL,
		villagers_json TEXT NOT NULL,
		memory_gz BLOB NOT NULL,
		saved_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS interactions (
		id TEXT PRIMARY KEY,
		initiator TEXT NOT NULL,
		target TEXT NOT NULL,
		kind TEXT NOT NULL,
		dialogue TEXT NOT NULL,
		loc_x INTEGER NOT NULL,
		loc_y INTEGER NOT NULL,
		sentiment REAL NOT NULL,
		tick INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		from_id TEXT,
		to_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		coins INTEGER NOT NULL,
		item TEXT,
		qty INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS thoughts (
		id TEXT PRIMARY KEY,
		villager_id TEXT NOT NULL,
		content TEXT NOT NULL,
		kind TEXT NOT NULL,
		importance INTEGER NOT NULL,
		related_id TEXT,
		tick INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS villager_positions (
		villager_id TEXT PRIMARY KEY,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		activity TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_interactions_tick ON interactions(tick);
	CREATE INDEX IF NOT EXISTS idx_thoughts_villager ON thoughts(villager_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveSnapshot upserts the full simulation snapshot under the state key.
// The memory-system blob is gzipped; it dominates snapshot size once the
// village has lived a while.
func (db *DB) SaveSnapshot(snap engine.Snapshot) error {
	villagersJSON, err := json.Marshal(snap.Villagers)
	if err != nil {
		return fmt.Errorf("marshal villagers: %w", err)
	}

	memJSON, err := json.Marshal(snap.Memory)
	if err != nil {
		return fmt.Errorf("marshal memory: %w", err)
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(memJSON); err != nil {
		return fmt.Errorf("compress memory: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compress memory: %w", err)
	}

	paused := 0
	if snap.Paused {
		paused = 1
	}
	_, err = db.conn.Exec(`INSERT OR REPLACE INTO sim_state
		(key, tick, day, speed, paused, villagers_json, memory_gz, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		StateKey, snap.Tick, snap.Day, snap.Speed, paused,
		string(villagersJSON), buf.Bytes(), time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// LoadSnapshot reads the keyed snapshot. A missing row is a normal cold
// start: (nil, false, nil).
func (db *DB) LoadSnapshot() (*engine.Snapshot, bool, error) {
	var row struct {
		Tick          int     `db:"tick"`
		Day           int     `db:"day"`
		Speed         float64 `db:"speed"`
		Paused        int     `db:"paused"`
		VillagersJSON string  `db:"villagers_json"`
		MemoryGz      []byte  `db:"memory_gz"`
	}
	err := db.conn.Get(&row,
		"SELECT tick, day, speed, paused, villagers_json, memory_gz FROM sim_state WHERE key = ?",
		StateKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load snapshot: %w", err)
	}

	snap := &engine.Snapshot{
		Tick:   row.Tick,
		Day:    row.Day,
		Speed:  row.Speed,
		Paused: row.Paused != 0,
	}
	if err := json.Unmarshal([]byte(row.VillagersJSON), &snap.Villagers); err != nil {
		return nil, false, fmt.Errorf("unmarshal villagers: %w", err)
	}

	zr, err := gzip.NewReader(bytes.NewReader(row.MemoryGz))
	if err != nil {
		return nil, false, fmt.Errorf("decompress memory: %w", err)
	}
	memJSON, err := io.ReadAll(zr)
	if err != nil {
		return nil, false, fmt.Errorf("decompress memory: %w", err)
	}
	var memState mind.State
	if err := json.Unmarshal(memJSON, &memState); err != nil {
		return nil, false, fmt.Errorf("unmarshal memory: %w", err)
	}
	snap.Memory = memState

	return snap, true, nil
}

// AppendInteractions inserts interaction records append-only. Records
// without an id get a generated one.
func (db *DB) AppendInteractions(recs []social.Record) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO interactions
		(id, initiator, target, kind, dialogue, loc_x, loc_y, sentiment, tick, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range recs {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if _, err := stmt.Exec(r.ID, r.Initiator, r.Target, string(r.Kind), r.Dialogue,
			r.Location.X, r.Location.Y, r.Sentiment, r.Tick,
			r.CreatedAt.UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("insert interaction %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// AppendTransactions inserts transaction records append-only.
func (db *DB) AppendTransactions(recs []economy.Record) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO transactions
		(id, from_id, to_id, kind, coins, item, qty, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range recs {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if _, err := stmt.Exec(r.ID, r.FromID, r.ToID, string(r.Kind), r.Coins,
			r.Item, r.Qty, r.CreatedAt.UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("insert transaction %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// AppendThoughts inserts thought records append-only.
func (db *DB) AppendThoughts(recs []mind.Thought) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO thoughts
		(id, villager_id, content, kind, importance, related_id, tick, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range recs {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if _, err := stmt.Exec(r.ID, r.VillagerID, r.Content, string(r.Kind),
			r.Importance, r.RelatedID, r.Tick,
			r.CreatedAt.UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("insert thought %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// UpsertPositions replaces the current villager position rows.
func (db *DB) UpsertPositions(views []engine.VillagerView) error {
	if len(views) == 0 {
		return nil
	}
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, v := range views {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO villager_positions
			(villager_id, x, y, activity, updated_at) VALUES (?, ?, ?, ?, ?)`,
			v.ID, v.X, v.Y, v.Activity, now); err != nil {
			return fmt.Errorf("upsert position %s: %w", v.ID, err)
		}
	}
	return tx.Commit()
}

// RecentThoughts returns the newest thoughts for a villager.
func (db *DB) RecentThoughts(villagerID string, limit int) ([]mind.Thought, error) {
	rows, err := db.conn.Queryx(
		`SELECT id, villager_id, content, kind, importance, related_id, tick
		 FROM thoughts WHERE villager_id = ? ORDER BY tick DESC LIMIT ?`,
		villagerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []mind.Thought
	for rows.Next() {
		var th mind.Thought
		var kind string
		var related sql.NullString
		if err := rows.Scan(&th.ID, &th.VillagerID, &th.Content, &kind,
			&th.Importance, &related, &th.Tick); err != nil {
			return nil, err
		}
		th.Kind = mind.ThoughtKind(kind)
		th.RelatedID = related.String
		out = append(out, th)
	}
	return out, rows.Err()
}
