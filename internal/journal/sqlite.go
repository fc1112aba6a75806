package journal

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

type sqliteLog struct {
	db *sql.DB
}

func openSQLite(ctx context.Context, path string) (*sqliteLog, error) {
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &sqliteLog{db: db}, nil
}

func migrateSQLite(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS entries (
			entry_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			command TEXT NOT NULL,
			kind TEXT NOT NULL,
			payload_json TEXT,
			error TEXT,
			at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_entries_session ON entries(session_id, entry_id);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	var v string
	err := db.QueryRowContext(ctx, `SELECT v FROM meta WHERE k = 'schema_version'`).Scan(&v)
	switch {
	case err == nil:
		if strings.TrimSpace(v) != schemaVersion {
			return errors.New("journal: unsupported schema version " + v)
		}
		return nil
	case errors.Is(err, sql.ErrNoRows):
		_, err = db.ExecContext(ctx, `INSERT INTO meta(k, v) VALUES('schema_version', ?)`, schemaVersion)
		return err
	default:
		return err
	}
}

func (l *sqliteLog) Append(ctx context.Context, e Entry) error {
	if err := e.validate(); err != nil {
		return err
	}
	var payload, errText any
	if len(e.Payload) > 0 {
		payload = string(e.Payload)
	}
	if e.Error != "" {
		errText = e.Error
	}
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO entries(entry_id, session_id, seq, command, kind, payload_json, error, at_unixms)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Session, int64(e.Seq), e.Command, string(e.Kind), payload, errText, e.At.UTC().UnixMilli())
	return err
}

func (l *sqliteLog) Entries(ctx context.Context, session string) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT entry_id, session_id, seq, command, kind, payload_json, error, at_unixms
		FROM entries
		WHERE session_id = ?
		ORDER BY entry_id ASC`, strings.TrimSpace(session))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var (
			e       Entry
			seq     int64
			kind    string
			payload sql.NullString
			errText sql.NullString
			atMs    int64
		)
		if err := rows.Scan(&e.ID, &e.Session, &seq, &e.Command, &kind, &payload, &errText, &atMs); err != nil {
			return nil, err
		}
		e.Seq = uint64(seq)
		e.Kind = Kind(kind)
		if payload.Valid {
			e.Payload = []byte(payload.String)
		}
		e.Error = errText.String
		e.At = time.UnixMilli(atMs).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

func (l *sqliteLog) Sessions(ctx context.Context) ([]SessionInfo, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT session_id, COUNT(*), MIN(at_unixms), MAX(at_unixms)
		FROM entries
		GROUP BY session_id
		ORDER BY MIN(entry_id) ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SessionInfo{}
	for rows.Next() {
		var s SessionInfo
		var first, last int64
		if err := rows.Scan(&s.ID, &s.Entries, &first, &last); err != nil {
			return nil, err
		}
		s.First = time.UnixMilli(first).UTC()
		s.Last = time.UnixMilli(last).UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

func (l *sqliteLog) Close() error { return l.db.Close() }
