package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/kdeps/audiodepot/pkg/audio"
	"github.com/kdeps/audiodepot/pkg/logging"
	"github.com/kdeps/audiodepot/pkg/messages"
	"github.com/mattn/go-sqlite3"
)

const schema = `
	CREATE TABLE IF NOT EXISTS audio_files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL UNIQUE,
		duration REAL,
		bitrate INTEGER,
		channels INTEGER,
		sample_rate INTEGER,
		content_type TEXT NOT NULL DEFAULT '',
		title TEXT,
		artist TEXT,
		album TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)
`

const selectColumns = `SELECT filename, duration, bitrate, channels, sample_rate, content_type, title, artist, album FROM audio_files`

// SQLiteStore implements Store on top of a sqlite database.
type SQLiteStore struct {
	DB     *sql.DB
	DBPath string
	logger *logging.Logger
}

// Open opens (creating if needed) the sqlite database at dbPath.
func Open(dbPath string, logger *logging.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite serialises writers anyway; one connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create audio_files table: %w", err)
	}

	logger.Debug(messages.MsgStoreOpened, "path", dbPath)
	return &SQLiteStore{DB: db, DBPath: dbPath, logger: logger}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	s.logger.Debug(messages.MsgStoreClosed, "path", s.DBPath)
	return s.DB.Close()
}

// Insert commits rec in its own transaction. A filename collision is reported
// as ErrConflict and leaves the table untouched.
func (s *SQLiteStore) Insert(ctx context.Context, rec *audio.Record) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO audio_files (filename, duration, bitrate, channels, sample_rate, content_type, title, artist, album)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Filename, rec.Duration, rec.Bitrate, rec.Channels, rec.SampleRate,
		rec.ContentType, rec.Title, rec.Artist, rec.Album,
	)
	if err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			s.logger.Error("failed to rollback transaction", "filename", rec.Filename, "error", rollbackErr)
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrConflict, rec.Filename)
		}
		return fmt.Errorf("failed to insert record %s: %w", rec.Filename, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit record %s: %w", rec.Filename, err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// Get returns the record named filename or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, filename string) (*audio.Record, error) {
	row := s.DB.QueryRowContext(ctx, selectColumns+` WHERE filename = ?`, filename)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, filename)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read record %s: %w", filename, err)
	}
	return rec, nil
}

// Exists reports whether a record named filename is stored.
func (s *SQLiteStore) Exists(ctx context.Context, filename string) (bool, error) {
	var one int
	err := s.DB.QueryRowContext(ctx, `SELECT 1 FROM audio_files WHERE filename = ? LIMIT 1`, filename).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up %s: %w", filename, err)
	}
	return true, nil
}

// List returns the records matching filter in insertion order.
func (s *SQLiteStore) List(ctx context.Context, filter audio.Filter) ([]audio.Record, error) {
	query, args := buildListQuery(filter)
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	records := []audio.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	return records, nil
}

// buildListQuery turns a filter into SQL. Range bounds only constrain records
// that report the field: a record with a NULL duration is kept by any
// duration bound, so an open range such as minduration=0 never hides it.
// Exact matches (channels, sample_rate) require the field.
func buildListQuery(filter audio.Filter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	bound := func(column, op string, value any) {
		clauses = append(clauses, fmt.Sprintf("(%s IS NULL OR %s %s ?)", column, column, op))
		args = append(args, value)
	}

	if filter.MinDuration != nil {
		bound("duration", ">=", *filter.MinDuration)
	}
	if filter.MaxDuration != nil {
		bound("duration", "<=", *filter.MaxDuration)
	}
	if filter.MinBitrate != nil {
		bound("bitrate", ">=", *filter.MinBitrate)
	}
	if filter.MaxBitrate != nil {
		bound("bitrate", "<=", *filter.MaxBitrate)
	}
	if filter.Channels != nil {
		clauses = append(clauses, "channels = ?")
		args = append(args, *filter.Channels)
	}
	if filter.SampleRate != nil {
		clauses = append(clauses, "sample_rate = ?")
		args = append(args, *filter.SampleRate)
	}

	query := selectColumns
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	return query + " ORDER BY id", args
}

// Clear deletes all records.
func (s *SQLiteStore) Clear(ctx context.Context) (int64, error) {
	result, err := s.DB.ExecContext(ctx, `DELETE FROM audio_files`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear records: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count cleared records: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*audio.Record, error) {
	var (
		rec                           audio.Record
		duration                      sql.NullFloat64
		bitrate, channels, sampleRate sql.NullInt64
		title, artist, album          sql.NullString
	)
	if err := row.Scan(&rec.Filename, &duration, &bitrate, &channels, &sampleRate,
		&rec.ContentType, &title, &artist, &album); err != nil {
		return nil, err
	}
	if duration.Valid {
		rec.Duration = audio.Float(duration.Float64)
	}
	rec.Bitrate = nullInt(bitrate)
	rec.Channels = nullInt(channels)
	rec.SampleRate = nullInt(sampleRate)
	rec.Title = nullString(title)
	rec.Artist = nullString(artist)
	rec.Album = nullString(album)
	return &rec, nil
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	return audio.Int(int(v.Int64))
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}
