package sink

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// schemaVersion is the latest schema version. Bump it when adding
// migrations.
const schemaVersion = 1

// SQLite stores records in a cards table.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens the database at path and applies migrations.
func NewSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS cards (
		  seq           INTEGER PRIMARY KEY AUTOINCREMENT,
		  id            TEXT NOT NULL UNIQUE,
		  captured_at   INTEGER NOT NULL,
		  card_type     TEXT NOT NULL,
		  format        TEXT,
		  bit_length    INTEGER NOT NULL,
		  facility_code INTEGER NOT NULL,
		  card_number   INTEGER NOT NULL,
		  hex           TEXT NOT NULL,
		  raw           TEXT NOT NULL,
		  region_code   INTEGER,
		  issue_level   INTEGER
		);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1: %w", err)
		}
	}

	if version < schemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d;", schemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}
	return nil
}

func (s *SQLite) Append(ctx context.Context, r Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cards (id, captured_at, card_type, format, bit_length,
		  facility_code, card_number, hex, raw, region_code, issue_level)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CapturedAt.UnixNano(), r.CardType, r.Format, r.BitLength,
		r.FacilityCode, r.CardNumber, r.Hex, r.Raw,
		nullUint8(r.RegionCode), nullUint8(r.IssueLevel),
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// ReadAll returns records in insertion order.
func (s *SQLite) ReadAll(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, captured_at, card_type, format, bit_length, facility_code,
		  card_number, hex, raw, region_code, issue_level
		FROM cards ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r             Record
			capturedAt    int64
			format        sql.NullString
			region, issue sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &capturedAt, &r.CardType, &format, &r.BitLength,
			&r.FacilityCode, &r.CardNumber, &r.Hex, &r.Raw, &region, &issue); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		r.CapturedAt = time.Unix(0, capturedAt).UTC()
		r.Format = format.String
		r.RegionCode = uint8Ptr(region)
		r.IssueLevel = uint8Ptr(issue)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

func (s *SQLite) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM cards"); err != nil {
		return fmt.Errorf("delete records: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func nullUint8(v *uint8) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func uint8Ptr(v sql.NullInt64) *uint8 {
	if !v.Valid {
		return nil
	}
	u := uint8(v.Int64)
	return &u
}
