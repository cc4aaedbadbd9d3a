// Package persistence provides SQLite-backed world state storage. Agents are
// stored one row each with JSON blobs for the nested subsystems; saves are
// full replaces inside a transaction.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/genesis/internal/agents"
	"github.com/talgya/genesis/internal/engine"
)

// DB wraps a SQLite connection.
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
	CREATE TABLE IF NOT EXISTS agents (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		gender TEXT NOT NULL,
		born_tick INTEGER NOT NULL,
		age_years REAL NOT NULL,
		longitude REAL NOT NULL,
		latitude REAL NOT NULL,
		health REAL NOT NULL,
		lifespan REAL NOT NULL,
		stage TEXT NOT NULL,
		alive INTEGER NOT NULL,
		tribe_id TEXT,
		mate_id TEXT,
		last_action TEXT,
		courtship_cooldown_until INTEGER NOT NULL,
		genes_json TEXT NOT NULL,
		needs_json TEXT NOT NULL,
		emotions_json TEXT NOT NULL,
		memory_json TEXT NOT NULL,
		relationships_json TEXT NOT NULL,
		social_json TEXT NOT NULL,
		crisis_json TEXT NOT NULL,
		inventory_json TEXT NOT NULL,
		family_json TEXT NOT NULL,
		pregnancy_json TEXT,
		understanding_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS death_records (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		cause TEXT NOT NULL,
		age_years REAL NOT NULL,
		tick INTEGER NOT NULL,
		record_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	CREATE INDEX IF NOT EXISTS idx_agents_alive ON agents(alive);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// family bundles the id-graph fields that ride in one blob.
type family struct {
	ParentIDs []agents.AgentID `json:"parent_ids,omitempty"`
	ChildIDs  []agents.AgentID `json:"child_ids,omitempty"`
}

// SaveAgents writes the full population (full replace).
func (db *DB) SaveAgents(pop []*agents.Agent) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM agents"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO agents
		(id, name, gender, born_tick, age_years, longitude, latitude, health,
		 lifespan, stage, alive, tribe_id, mate_id, last_action,
		 courtship_cooldown_until, genes_json, needs_json, emotions_json,
		 memory_json, relationships_json, social_json, crisis_json,
		 inventory_json, family_json, pregnancy_json, understanding_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range pop {
		genesJSON, _ := json.Marshal(a.Genes)
		needsJSON, _ := json.Marshal(a.Needs)
		emotionsJSON, _ := json.Marshal(a.Emotions)
		memoryJSON, _ := json.Marshal(a.Memory)
		relJSON, _ := json.Marshal(a.Relationships)
		socialJSON, _ := json.Marshal(a.Social)
		crisisJSON, _ := json.Marshal(a.Crisis)
		invJSON, _ := json.Marshal(a.Inventory)
		famJSON, _ := json.Marshal(family{ParentIDs: a.ParentIDs, ChildIDs: a.ChildIDs})
		undJSON, _ := json.Marshal(a.Understanding)

		var pregJSON *string
		if a.Pregnancy != nil {
			b, _ := json.Marshal(a.Pregnancy)
			sb := string(b)
			pregJSON = &sb
		}

		alive := 0
		if a.Alive {
			alive = 1
		}

		if _, err := stmt.Exec(
			a.ID, a.Name, a.Gender, a.BornTick, a.AgeYears,
			a.Longitude, a.Latitude, a.Health, a.Lifespan, a.Stage, alive,
			a.TribeID, a.MateID, a.LastAction, a.CourtshipCooldownUntil,
			string(genesJSON), string(needsJSON), string(emotionsJSON),
			string(memoryJSON), string(relJSON), string(socialJSON),
			string(crisisJSON), string(invJSON), string(famJSON),
			pregJSON, string(undJSON),
		); err != nil {
			return fmt.Errorf("insert agent %s: %w", a.ID, err)
		}
	}
	return tx.Commit()
}

type agentRow struct {
	ID                     string  `db:"id"`
	Name                   string  `db:"name"`
	Gender                 string  `db:"gender"`
	BornTick               uint64  `db:"born_tick"`
	AgeYears               float64 `db:"age_years"`
	Longitude              float64 `db:"longitude"`
	Latitude               float64 `db:"latitude"`
	Health                 float32 `db:"health"`
	Lifespan               float64 `db:"lifespan"`
	Stage                  string  `db:"stage"`
	Alive                  int     `db:"alive"`
	TribeID                string  `db:"tribe_id"`
	MateID                 string  `db:"mate_id"`
	LastAction             string  `db:"last_action"`
	CourtshipCooldownUntil uint64  `db:"courtship_cooldown_until"`
	GenesJSON              string  `db:"genes_json"`
	NeedsJSON              string  `db:"needs_json"`
	EmotionsJSON           string  `db:"emotions_json"`
	MemoryJSON             string  `db:"memory_json"`
	RelationshipsJSON      string  `db:"relationships_json"`
	SocialJSON             string  `db:"social_json"`
	CrisisJSON             string  `db:"crisis_json"`
	InventoryJSON          string  `db:"inventory_json"`
	FamilyJSON             string  `db:"family_json"`
	PregnancyJSON          *string `db:"pregnancy_json"`
	UnderstandingJSON      string  `db:"understanding_json"`
}

// LoadAgents reads the saved population back. Callers must re-attach entropy
// streams before the simulation resumes.
func (db *DB) LoadAgents() ([]*agents.Agent, error) {
	var rows []agentRow
	if err := db.conn.Select(&rows, "SELECT * FROM agents"); err != nil {
		return nil, fmt.Errorf("load agents: %w", err)
	}

	out := make([]*agents.Agent, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		a := &agents.Agent{
			ID:                     agents.AgentID(r.ID),
			Name:                   r.Name,
			Gender:                 agents.Gender(r.Gender),
			BornTick:               r.BornTick,
			AgeYears:               r.AgeYears,
			Longitude:              r.Longitude,
			Latitude:               r.Latitude,
			Health:                 r.Health,
			Lifespan:               r.Lifespan,
			Stage:                  agents.LifeStage(r.Stage),
			Alive:                  r.Alive == 1,
			TribeID:                r.TribeID,
			MateID:                 agents.AgentID(r.MateID),
			LastAction:             r.LastAction,
			CourtshipCooldownUntil: r.CourtshipCooldownUntil,
		}

		var fam family
		for _, step := range []struct {
			blob string
			dst  any
		}{
			{r.GenesJSON, &a.Genes},
			{r.NeedsJSON, &a.Needs},
			{r.EmotionsJSON, &a.Emotions},
			{r.MemoryJSON, &a.Memory},
			{r.RelationshipsJSON, &a.Relationships},
			{r.SocialJSON, &a.Social},
			{r.CrisisJSON, &a.Crisis},
			{r.InventoryJSON, &a.Inventory},
			{r.FamilyJSON, &fam},
			{r.UnderstandingJSON, &a.Understanding},
		} {
			if err := json.Unmarshal([]byte(step.blob), step.dst); err != nil {
				return nil, fmt.Errorf("decode agent %s: %w", r.ID, err)
			}
		}
		a.ParentIDs = fam.ParentIDs
		a.ChildIDs = fam.ChildIDs

		if r.PregnancyJSON != nil {
			var p agents.Pregnancy
			if err := json.Unmarshal([]byte(*r.PregnancyJSON), &p); err != nil {
				return nil, fmt.Errorf("decode pregnancy for %s: %w", r.ID, err)
			}
			a.Pregnancy = &p
		}
		out = append(out, a)
	}
	return out, nil
}

// SaveEvents appends events.
func (db *DB) SaveEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		if _, err := tx.Exec(
			"INSERT INTO events (tick, description, category) VALUES (?, ?, ?)",
			e.Tick, e.Description, e.Category,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SaveDeathRecords upserts death records; burial is idempotent so replays of
// the same record are harmless.
func (db *DB) SaveDeathRecords(recs []engine.DeathRecord) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, r := range recs {
		blob, _ := json.Marshal(r)
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO death_records (id, name, cause, age_years, tick, record_json)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			r.ID, r.Name, r.Cause, r.AgeYears, r.Tick, string(blob),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// SaveWorldState performs a full save: population, events, and the tick
// counter. Call it from the simulation goroutine (or after the loop stops) so
// the population is not mid-tick.
func (db *DB) SaveWorldState(sched *engine.Scheduler) error {
	pop := sched.LiveAgents()
	slog.Info("saving world state", "agents", len(pop), "tick", sched.CurrentTick())

	if err := db.SaveAgents(pop); err != nil {
		return fmt.Errorf("save agents: %w", err)
	}
	if err := db.SaveEvents(sched.Events().DrainUnsaved()); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	if err := db.SaveDeathRecords(sched.DeathRecords()); err != nil {
		return fmt.Errorf("save deaths: %w", err)
	}
	if err := db.SaveMeta("last_tick", fmt.Sprintf("%d", sched.CurrentTick())); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	slog.Info("world state saved")
	return nil
}

// RecentEvents returns the most recent N persisted events, oldest first to
// match the in-memory ring's ordering.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT tick, description, category FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return events, nil
}
