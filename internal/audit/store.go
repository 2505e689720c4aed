package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/luminsql/lumin/pkg/analysis"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a recorded analysis does not exist.
var ErrNotFound = errors.New("analysis record not found")

// Record is one analyzed statement and everything the analyzer reported
// about it.
type Record struct {
	ID        string
	CreatedAt time.Time
	User      string
	Dialect   string
	SQL       string
	OK        bool
	Error     string

	AccessEvents      []analysis.AccessEvent
	PrivilegeRequests []analysis.PrivilegeRequest
	MissingObjects    []string
}

// Store persists analysis records to SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore creates a store over an already open database handle.
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// Open opens (or creates) the audit database at path and runs migrations.
// Use ":memory:" for an in-memory database.
func Open(path string, logger *slog.Logger) (*Store, error) {
	dsn := path + "?_pragma=foreign_keys(1)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping audit database: %w", err)
	}

	s := NewStore(db, logger)
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordAnalysis persists one analysis outcome and returns its ID. The
// record's ID and CreatedAt are assigned here.
func (s *Store) RecordAnalysis(ctx context.Context, rec *Record) (string, error) {
	if s.db == nil {
		return "", fmt.Errorf("database not opened")
	}

	rec.ID = uuid.New().String()
	rec.CreatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO analyses (id, created_at, user, dialect, sql_text, ok, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt, rec.User, rec.Dialect, rec.SQL, rec.OK, rec.Error,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert analysis: %w", err)
	}

	for i, ev := range rec.AccessEvents {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO access_events (analysis_id, ord, object, object_type, privilege)
			 VALUES (?, ?, ?, ?, ?)`,
			rec.ID, i, ev.Name, string(ev.Type), string(ev.Privilege),
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert access event: %w", err)
		}
	}

	for i, req := range rec.PrivilegeRequests {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO privilege_requests (analysis_id, ord, object, privilege)
			 VALUES (?, ?, ?, ?)`,
			rec.ID, i, req.Object, string(req.Privilege),
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert privilege request: %w", err)
		}
	}

	for i, name := range rec.MissingObjects {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO missing_objects (analysis_id, ord, name) VALUES (?, ?, ?)`,
			rec.ID, i, name,
		)
		if err != nil {
			return "", fmt.Errorf("failed to insert missing object: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit analysis record: %w", err)
	}

	s.logger.Debug("recorded analysis",
		"id", rec.ID,
		"ok", rec.OK,
		"events", len(rec.AccessEvents),
		"requests", len(rec.PrivilegeRequests))
	return rec.ID, nil
}

// GetAnalysis retrieves a recorded analysis by ID.
func (s *Store) GetAnalysis(ctx context.Context, id string) (*Record, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rec := &Record{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, user, dialect, sql_text, ok, error
		 FROM analyses WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.User, &rec.Dialect, &rec.SQL, &rec.OK, &rec.Error)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	if rec.AccessEvents, err = s.accessEvents(ctx, id); err != nil {
		return nil, err
	}
	if rec.PrivilegeRequests, err = s.privilegeRequests(ctx, id); err != nil {
		return nil, err
	}
	if rec.MissingObjects, err = s.missingObjects(ctx, id); err != nil {
		return nil, err
	}
	return rec, nil
}

// ListAnalyses returns the most recent analyses, newest first.
func (s *Store) ListAnalyses(ctx context.Context, limit int) ([]*Record, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, user, dialect, sql_text, ok, error
		 FROM analyses ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var recs []*Record
	for rows.Next() {
		rec := &Record{}
		if err := rows.Scan(&rec.ID, &rec.CreatedAt, &rec.User, &rec.Dialect,
			&rec.SQL, &rec.OK, &rec.Error); err != nil {
			return nil, fmt.Errorf("failed to scan analysis row: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read analysis rows: %w", err)
	}
	return recs, nil
}

func (s *Store) accessEvents(ctx context.Context, id string) ([]analysis.AccessEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT object, object_type, privilege FROM access_events
		 WHERE analysis_id = ? ORDER BY ord`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query access events: %w", err)
	}
	defer rows.Close()

	var events []analysis.AccessEvent
	for rows.Next() {
		var ev analysis.AccessEvent
		var typ, priv string
		if err := rows.Scan(&ev.Name, &typ, &priv); err != nil {
			return nil, fmt.Errorf("failed to scan access event: %w", err)
		}
		ev.Type = analysis.ObjectType(typ)
		ev.Privilege = analysis.Privilege(priv)
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (s *Store) privilegeRequests(ctx context.Context, id string) ([]analysis.PrivilegeRequest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT object, privilege FROM privilege_requests
		 WHERE analysis_id = ? ORDER BY ord`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query privilege requests: %w", err)
	}
	defer rows.Close()

	var reqs []analysis.PrivilegeRequest
	for rows.Next() {
		var req analysis.PrivilegeRequest
		var priv string
		if err := rows.Scan(&req.Object, &priv); err != nil {
			return nil, fmt.Errorf("failed to scan privilege request: %w", err)
		}
		req.Privilege = analysis.Privilege(priv)
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

func (s *Store) missingObjects(ctx context.Context, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM missing_objects WHERE analysis_id = ? ORDER BY ord`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query missing objects: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan missing object: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
