package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/iatifetch/internal/model"
)

// Store provides SQLite-based storage for ingested IATI records.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We use a single database file per data directory rather
// than one file per publisher. Activities reference organisations and
// codelists, and cross-publisher queries are the point of ingesting at all.
type Store struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a Store at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dbDir, "iatifetch.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; ingestion is write-heavy, so the
	// pool stays at a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if _, err := db.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (s *Store) createTables() error {
	schema := `
	-- Registry handles observed in the organisation list
	CREATE TABLE IF NOT EXISTS organisation_abbreviations (
		abbreviation TEXT PRIMARY KEY,
		withdrawn INTEGER NOT NULL DEFAULT 0,
		first_seen DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_seen DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Organisations keyed by their long-form organisation-identifier
	CREATE TABLE IF NOT EXISTS organisations (
		identifier TEXT PRIMARY KEY,
		abbreviation TEXT,
		element TEXT,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_org_abbreviation ON organisations(abbreviation);

	-- Activities keyed by iati-identifier
	CREATE TABLE IF NOT EXISTS activities (
		identifier TEXT PRIMARY KEY,
		element TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Narratives hoisted out of activity elements
	CREATE TABLE IF NOT EXISTS activity_narratives (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		activity_id TEXT NOT NULL REFERENCES activities(identifier) ON DELETE CASCADE,
		path TEXT NOT NULL,
		lang TEXT,
		text TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_narratives_activity ON activity_narratives(activity_id);

	-- Child collections split out of activity elements
	CREATE TABLE IF NOT EXISTS activity_children (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		activity_id TEXT NOT NULL REFERENCES activities(identifier) ON DELETE CASCADE,
		kind TEXT NOT NULL,
		position INTEGER NOT NULL,
		element TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_children_activity ON activity_children(activity_id, kind);

	-- Reference vocabularies, refreshed wholesale
	CREATE TABLE IF NOT EXISTS codelists (
		name TEXT PRIMARY KEY,
		element TEXT,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS codelist_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		codelist TEXT NOT NULL REFERENCES codelists(name) ON DELETE CASCADE,
		code TEXT,
		name TEXT,
		withdrawn INTEGER NOT NULL DEFAULT 0,
		element TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_items_codelist ON codelist_items(codelist);

	-- One row per network round trip, keyed by the canonical request hash
	CREATE TABLE IF NOT EXISTS request_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		request_key TEXT NOT NULL,
		url TEXT NOT NULL,
		method TEXT NOT NULL,
		outcome TEXT NOT NULL,
		detail TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_requests_key ON request_records(request_key);
	CREATE INDEX IF NOT EXISTS idx_requests_outcome ON request_records(outcome);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// RecordRequest persists one request outcome. It implements the fetch
// package's RequestLog interface.
func (s *Store) RecordRequest(ctx context.Context, key, rawURL, method, outcome, detail string) error {
	query := `
	INSERT INTO request_records (request_key, url, method, outcome, detail)
	VALUES (?, ?, ?, ?, ?)
	`

	if _, err := s.db.ExecContext(ctx, query, key, rawURL, method, outcome, detail); err != nil {
		return fmt.Errorf("failed to record request: %w", err)
	}
	return nil
}

// CountRequests returns the number of recorded requests with the given
// outcome, or all of them when outcome is empty.
func (s *Store) CountRequests(ctx context.Context, outcome string) (int, error) {
	query := "SELECT COUNT(*) FROM request_records"
	args := make([]any, 0, 1)
	if outcome != "" {
		query += " WHERE outcome = ?"
		args = append(args, outcome)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count requests: %w", err)
	}
	return count, nil
}

// UpsertOrganisation inserts an organisation or, when update is true,
// overwrites the stored element. When update is false an existing row wins
// and the call reports created=false.
func (s *Store) UpsertOrganisation(ctx context.Context, org *model.Organisation, update bool) (bool, error) {
	if org.Identifier == "" {
		return false, errors.New("organisation identifier must not be empty")
	}

	elementJSON, err := json.Marshal(org.Element)
	if err != nil {
		return false, fmt.Errorf("failed to serialize organisation element: %w", err)
	}

	query := `
	INSERT INTO organisations (identifier, abbreviation, element)
	VALUES (?, ?, ?)
	ON CONFLICT(identifier) DO NOTHING
	`
	if update {
		query = `
		INSERT INTO organisations (identifier, abbreviation, element)
		VALUES (?, ?, ?)
		ON CONFLICT(identifier) DO UPDATE SET
			abbreviation = excluded.abbreviation,
			element = excluded.element,
			updated_at = CURRENT_TIMESTAMP
		`
	}

	result, err := s.db.ExecContext(ctx, query, org.Identifier, org.Abbreviation, string(elementJSON))
	if err != nil {
		return false, fmt.Errorf("failed to upsert organisation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read upsert result: %w", err)
	}
	return affected > 0, nil
}

// GetOrganisation retrieves an organisation by identifier.
// Returns nil when no row exists.
func (s *Store) GetOrganisation(ctx context.Context, identifier string) (*model.Organisation, error) {
	query := `
	SELECT identifier, abbreviation, element FROM organisations
	WHERE identifier = ?
	`

	var (
		org          model.Organisation
		abbreviation sql.NullString
		elementJSON  sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, identifier).Scan(&org.Identifier, &abbreviation, &elementJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organisation: %w", err)
	}

	org.Abbreviation = abbreviation.String
	if elementJSON.Valid && elementJSON.String != "" {
		if err := json.Unmarshal([]byte(elementJSON.String), &org.Element); err != nil {
			return nil, fmt.Errorf("failed to parse organisation element: %w", err)
		}
	}
	return &org, nil
}

// AbbreviationSync summarizes one reconciliation of the stored handle set
// against the registry's current organisation list.
type AbbreviationSync struct {
	// Added counts handles seen for the first time.
	Added int
	// Withdrawn counts stored handles absent from the current list.
	Withdrawn int
	// Reinstated counts previously withdrawn handles that reappeared.
	Reinstated int
}

// SyncAbbreviations reconciles the stored handle set with the registry's
// current organisation list. New handles are inserted, missing ones are
// marked withdrawn, and withdrawn handles that reappear are reinstated.
// The whole reconciliation runs in one transaction.
func (s *Store) SyncAbbreviations(ctx context.Context, handles []string) (AbbreviationSync, error) {
	var sync AbbreviationSync

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return sync, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stored := make(map[string]bool) // handle -> withdrawn
	rows, err := tx.QueryContext(ctx, "SELECT abbreviation, withdrawn FROM organisation_abbreviations")
	if err != nil {
		return sync, fmt.Errorf("failed to list stored handles: %w", err)
	}
	for rows.Next() {
		var (
			handle    string
			withdrawn bool
		)
		if err := rows.Scan(&handle, &withdrawn); err != nil {
			_ = rows.Close()
			return sync, fmt.Errorf("failed to scan handle: %w", err)
		}
		stored[handle] = withdrawn
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return sync, fmt.Errorf("failed to iterate handles: %w", err)
	}
	_ = rows.Close()

	current := make(map[string]struct{}, len(handles))
	for _, handle := range handles {
		if handle == "" {
			continue
		}
		current[handle] = struct{}{}

		withdrawn, exists := stored[handle]
		switch {
		case !exists:
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO organisation_abbreviations (abbreviation) VALUES (?)", handle); err != nil {
				return sync, fmt.Errorf("failed to insert handle %s: %w", handle, err)
			}
			sync.Added++
		case withdrawn:
			if _, err := tx.ExecContext(ctx,
				"UPDATE organisation_abbreviations SET withdrawn = 0, last_seen = CURRENT_TIMESTAMP WHERE abbreviation = ?", handle); err != nil {
				return sync, fmt.Errorf("failed to reinstate handle %s: %w", handle, err)
			}
			sync.Reinstated++
		default:
			if _, err := tx.ExecContext(ctx,
				"UPDATE organisation_abbreviations SET last_seen = CURRENT_TIMESTAMP WHERE abbreviation = ?", handle); err != nil {
				return sync, fmt.Errorf("failed to touch handle %s: %w", handle, err)
			}
		}
	}

	for handle, withdrawn := range stored {
		if _, ok := current[handle]; ok || withdrawn {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE organisation_abbreviations SET withdrawn = 1 WHERE abbreviation = ?", handle); err != nil {
			return sync, fmt.Errorf("failed to withdraw handle %s: %w", handle, err)
		}
		sync.Withdrawn++
	}

	if err := tx.Commit(); err != nil {
		return sync, fmt.Errorf("failed to commit handle sync: %w", err)
	}
	return sync, nil
}

// ListAbbreviations returns the stored registry handles.
// Withdrawn handles are included only when includeWithdrawn is set.
func (s *Store) ListAbbreviations(ctx context.Context, includeWithdrawn bool) ([]model.OrganisationAbbreviation, error) {
	query := "SELECT abbreviation, withdrawn FROM organisation_abbreviations"
	if !includeWithdrawn {
		query += " WHERE withdrawn = 0"
	}
	query += " ORDER BY abbreviation"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list handles: %w", err)
	}
	defer rows.Close()

	var results []model.OrganisationAbbreviation
	for rows.Next() {
		var ab model.OrganisationAbbreviation
		if err := rows.Scan(&ab.Abbreviation, &ab.Withdrawn); err != nil {
			return nil, fmt.Errorf("failed to scan handle: %w", err)
		}
		results = append(results, ab)
	}
	return results, rows.Err()
}

// SaveActivity writes an activity with its narratives and child collections
// in a single transaction. When update is false an existing activity wins
// and nothing is written; the call reports written=false. When the activity
// row is written, its narrative and child rows are replaced wholesale.
func (s *Store) SaveActivity(ctx context.Context, act *model.Activity, children []model.ActivityChild, narratives []model.Narrative, update bool) (bool, error) {
	if act.Identifier == "" {
		return false, errors.New("activity identifier must not be empty")
	}

	elementJSON, err := json.Marshal(act.Element)
	if err != nil {
		return false, fmt.Errorf("failed to serialize activity element: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if !update {
		var exists int
		err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM activities WHERE identifier = ?", act.Identifier).Scan(&exists)
		if err != nil {
			return false, fmt.Errorf("failed to check activity: %w", err)
		}
		if exists > 0 {
			return false, nil
		}
	}

	upsert := `
	INSERT INTO activities (identifier, element)
	VALUES (?, ?)
	ON CONFLICT(identifier) DO UPDATE SET
		element = excluded.element,
		updated_at = CURRENT_TIMESTAMP
	`
	if _, err := tx.ExecContext(ctx, upsert, act.Identifier, string(elementJSON)); err != nil {
		return false, fmt.Errorf("failed to upsert activity: %w", err)
	}

	// Replace semantics: the source file always carries the complete
	// current set, so stale rows must go.
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM activity_narratives WHERE activity_id = ?", act.Identifier); err != nil {
		return false, fmt.Errorf("failed to clear narratives: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM activity_children WHERE activity_id = ?", act.Identifier); err != nil {
		return false, fmt.Errorf("failed to clear children: %w", err)
	}

	for _, n := range narratives {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO activity_narratives (activity_id, path, lang, text) VALUES (?, ?, ?, ?)",
			act.Identifier, n.Path, n.Lang, n.Text); err != nil {
			return false, fmt.Errorf("failed to insert narrative: %w", err)
		}
	}

	position := make(map[model.ChildKind]int, len(model.ChildKinds))
	for _, child := range children {
		childJSON, err := json.Marshal(child.Element)
		if err != nil {
			return false, fmt.Errorf("failed to serialize %s element: %w", child.Kind, err)
		}
		pos := position[child.Kind]
		position[child.Kind] = pos + 1
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO activity_children (activity_id, kind, position, element) VALUES (?, ?, ?, ?)",
			act.Identifier, string(child.Kind), pos, string(childJSON)); err != nil {
			return false, fmt.Errorf("failed to insert %s: %w", child.Kind, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit activity: %w", err)
	}
	return true, nil
}

// GetActivity retrieves an activity by identifier. Returns nil when no row
// exists.
func (s *Store) GetActivity(ctx context.Context, identifier string) (*model.Activity, error) {
	var (
		act         model.Activity
		elementJSON string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT identifier, element FROM activities WHERE identifier = ?", identifier).
		Scan(&act.Identifier, &elementJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}

	if err := json.Unmarshal([]byte(elementJSON), &act.Element); err != nil {
		return nil, fmt.Errorf("failed to parse activity element: %w", err)
	}
	return &act, nil
}

// CountActivities returns the number of stored activities.
func (s *Store) CountActivities(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM activities").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count activities: %w", err)
	}
	return count, nil
}

// GetNarratives retrieves the narrative rows of an activity in insertion
// order.
func (s *Store) GetNarratives(ctx context.Context, activityID string) ([]model.Narrative, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT activity_id, path, lang, text FROM activity_narratives WHERE activity_id = ? ORDER BY id", activityID)
	if err != nil {
		return nil, fmt.Errorf("failed to get narratives: %w", err)
	}
	defer rows.Close()

	var results []model.Narrative
	for rows.Next() {
		var (
			n    model.Narrative
			lang sql.NullString
		)
		if err := rows.Scan(&n.ActivityID, &n.Path, &lang, &n.Text); err != nil {
			return nil, fmt.Errorf("failed to scan narrative: %w", err)
		}
		n.Lang = lang.String
		results = append(results, n)
	}
	return results, rows.Err()
}

// GetChildren retrieves the child rows of an activity, ordered by their
// position in the source element. Kind filters to one collection when
// non-empty.
func (s *Store) GetChildren(ctx context.Context, activityID string, kind model.ChildKind) ([]model.ActivityChild, error) {
	query := "SELECT activity_id, kind, element FROM activity_children WHERE activity_id = ?"
	args := []any{activityID}
	if kind != "" {
		query += " AND kind = ?"
		args = append(args, string(kind))
	}
	query += " ORDER BY kind, position"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get children: %w", err)
	}
	defer rows.Close()

	var results []model.ActivityChild
	for rows.Next() {
		var (
			child       model.ActivityChild
			kindStr     string
			elementJSON string
		)
		if err := rows.Scan(&child.ActivityID, &kindStr, &elementJSON); err != nil {
			return nil, fmt.Errorf("failed to scan child: %w", err)
		}
		child.Kind = model.ChildKind(kindStr)
		if err := json.Unmarshal([]byte(elementJSON), &child.Element); err != nil {
			return nil, fmt.Errorf("failed to parse child element: %w", err)
		}
		results = append(results, child)
	}
	return results, rows.Err()
}

// ReplaceCodelist stores a codelist document and its items, replacing any
// prior version in a single transaction.
func (s *Store) ReplaceCodelist(ctx context.Context, cl *model.Codelist) error {
	if cl.Name == "" {
		return errors.New("codelist name must not be empty")
	}

	elementJSON, err := json.Marshal(cl.Element)
	if err != nil {
		return fmt.Errorf("failed to serialize codelist element: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	upsert := `
	INSERT INTO codelists (name, element)
	VALUES (?, ?)
	ON CONFLICT(name) DO UPDATE SET
		element = excluded.element,
		updated_at = CURRENT_TIMESTAMP
	`
	if _, err := tx.ExecContext(ctx, upsert, cl.Name, string(elementJSON)); err != nil {
		return fmt.Errorf("failed to upsert codelist: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM codelist_items WHERE codelist = ?", cl.Name); err != nil {
		return fmt.Errorf("failed to clear codelist items: %w", err)
	}

	for _, item := range cl.Items {
		itemJSON, err := json.Marshal(item.Element)
		if err != nil {
			return fmt.Errorf("failed to serialize codelist item: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO codelist_items (codelist, code, name, withdrawn, element) VALUES (?, ?, ?, ?, ?)",
			cl.Name, item.Code, item.Name, item.Withdrawn, string(itemJSON)); err != nil {
			return fmt.Errorf("failed to insert codelist item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit codelist: %w", err)
	}
	return nil
}

// GetCodelist retrieves a codelist with its items. Returns nil when no row
// exists.
func (s *Store) GetCodelist(ctx context.Context, name string) (*model.Codelist, error) {
	var (
		cl          model.Codelist
		elementJSON sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT name, element FROM codelists WHERE name = ?", name).Scan(&cl.Name, &elementJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get codelist: %w", err)
	}

	if elementJSON.Valid && elementJSON.String != "" {
		if err := json.Unmarshal([]byte(elementJSON.String), &cl.Element); err != nil {
			return nil, fmt.Errorf("failed to parse codelist element: %w", err)
		}
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT code, name, withdrawn, element FROM codelist_items WHERE codelist = ? ORDER BY id", name)
	if err != nil {
		return nil, fmt.Errorf("failed to get codelist items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item     model.CodelistItem
			code     sql.NullString
			itemName sql.NullString
			itemJSON sql.NullString
		)
		if err := rows.Scan(&code, &itemName, &item.Withdrawn, &itemJSON); err != nil {
			return nil, fmt.Errorf("failed to scan codelist item: %w", err)
		}
		item.Code = code.String
		item.Name = itemName.String
		if itemJSON.Valid && itemJSON.String != "" {
			if err := json.Unmarshal([]byte(itemJSON.String), &item.Element); err != nil {
				return nil, fmt.Errorf("failed to parse codelist item element: %w", err)
			}
		}
		cl.Items = append(cl.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &cl, nil
}

// ListCodelists returns the stored codelist names.
func (s *Store) ListCodelists(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM codelists ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list codelists: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan codelist name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
