package history

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/raysh454/dccdev/internal/logging"
)

//go:embed schema.sql
var schemaFS embed.FS

// Action names a slot operation worth remembering.
type Action string

const (
	ActionSave   Action = "save"
	ActionDeploy Action = "deploy"
	ActionStart  Action = "start"
	ActionStop   Action = "stop"
)

// Entry is one recorded action against a slot.
type Entry struct {
	ID          string    `json:"id"`
	SlotID      int       `json:"slot_id"`
	Action      Action    `json:"action"`
	PR          int       `json:"pr"`
	BuildNumber string    `json:"build_number"`
	Output      string    `json:"output"`
	Diff        string    `json:"diff,omitempty"`
	Failed      bool      `json:"failed"`
	CreatedAt   time.Time `json:"created_at"`
}

// Log keeps slot action history in SQLite. It is an audit trail only; the
// slots file stays authoritative for slot state.
type Log struct {
	db     *sql.DB
	logger logging.Logger
	now    func() time.Time
}

// NewLog applies schema.sql to db and returns a Log.
func NewLog(db *sql.DB, logger logging.Logger) (*Log, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return nil, fmt.Errorf("failed to execute schema: %w", err)
	}

	return &Log{
		db:     db,
		logger: logger.With(logging.Field{Key: "component", Value: "history"}),
		now:    time.Now,
	}, nil
}

// Record stores e, assigning ID and CreatedAt when unset.
func (l *Log) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = l.now()
	}
	e.CreatedAt = e.CreatedAt.UTC()

	failed := 0
	if e.Failed {
		failed = 1
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO history (id, slot_id, action, pr, build_number, output, diff, failed, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.SlotID, string(e.Action), e.PR, e.BuildNumber, e.Output, e.Diff, failed, e.CreatedAt.UnixNano(),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert history entry: %w", err)
	}
	l.logger.Debug("recorded history entry",
		logging.Field{Key: "slot_id", Value: e.SlotID},
		logging.Field{Key: "action", Value: string(e.Action)})
	return e, nil
}

// List returns up to limit entries for slotID, newest first. limit <= 0
// returns everything.
func (l *Log) List(ctx context.Context, slotID, limit int) ([]Entry, error) {
	q := `SELECT id, slot_id, action, pr, build_number, output, diff, failed, created_at
          FROM history
          WHERE slot_id = ?
          ORDER BY created_at DESC, rowid DESC`
	args := []any{slotID}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := l.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	out := make([]Entry, 0)
	for rows.Next() {
		var (
			e       Entry
			action  string
			failed  int
			created int64
		)
		if err := rows.Scan(&e.ID, &e.SlotID, &action, &e.PR, &e.BuildNumber, &e.Output, &e.Diff, &failed, &created); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.Action = Action(action)
		e.Failed = failed != 0
		e.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
