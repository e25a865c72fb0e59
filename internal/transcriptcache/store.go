package transcriptcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Key identifies one transcription of one piece of media.
type Key struct {
	MediaHash string
	Model     string
	Device    string
}

func (k Key) validate() error {
	if strings.TrimSpace(k.MediaHash) == "" {
		return errors.New("media hash is required")
	}
	return nil
}

// Entry is a cached transcript payload.
type Entry struct {
	Key
	SourcePath string
	Payload    []byte
	ChunkCount int
	Language   string
	CachedAt   time.Time
}

// Store manages transcript persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open creates or connects to the cache database at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("transcript cache path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Lookup returns the entry for key. The boolean is false on a miss.
func (s *Store) Lookup(ctx context.Context, key Key) (Entry, bool, error) {
	if err := key.validate(); err != nil {
		return Entry{}, false, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM transcripts WHERE media_hash = ? AND model = ? AND device = ?`,
		key.MediaHash, key.Model, key.Device,
	)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("lookup transcript: %w", err)
	}
	return entry, true, nil
}

// Put inserts or replaces the entry for its key.
func (s *Store) Put(ctx context.Context, entry Entry) error {
	if err := entry.Key.validate(); err != nil {
		return err
	}
	if len(entry.Payload) == 0 {
		return errors.New("transcript payload is empty")
	}
	if entry.CachedAt.IsZero() {
		entry.CachedAt = time.Now().UTC()
	}
	return s.execWithRetry(ctx,
		`INSERT INTO transcripts (media_hash, model, device, source_path, payload, chunk_count, language, cached_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT (media_hash, model, device) DO UPDATE SET
             source_path = excluded.source_path,
             payload = excluded.payload,
             chunk_count = excluded.chunk_count,
             language = excluded.language,
             cached_at = excluded.cached_at`,
		entry.MediaHash,
		entry.Model,
		entry.Device,
		nullableString(entry.SourcePath),
		entry.Payload,
		entry.ChunkCount,
		nullableString(entry.Language),
		entry.CachedAt.UTC().Format(time.RFC3339Nano),
	)
}

// List returns all entries, newest first. Payloads are not loaded.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT media_hash, model, device, source_path, NULL, chunk_count, language, cached_at
         FROM transcripts ORDER BY cached_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Remove deletes every entry for a media hash and returns how many rows went.
func (s *Store) Remove(ctx context.Context, mediaHash string) (int64, error) {
	mediaHash = strings.TrimSpace(mediaHash)
	if mediaHash == "" {
		return 0, errors.New("media hash is required")
	}
	return s.deleteWithRetry(ctx, `DELETE FROM transcripts WHERE media_hash = ?`, mediaHash)
}

// Clear removes all entries.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	return s.deleteWithRetry(ctx, `DELETE FROM transcripts`)
}

const entryColumns = "media_hash, model, device, source_path, payload, chunk_count, language, cached_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		entry    Entry
		source   sql.NullString
		language sql.NullString
		cachedAt string
	)
	if err := row.Scan(
		&entry.MediaHash,
		&entry.Model,
		&entry.Device,
		&source,
		&entry.Payload,
		&entry.ChunkCount,
		&language,
		&cachedAt,
	); err != nil {
		return Entry{}, err
	}
	entry.SourcePath = source.String
	entry.Language = language.String
	if ts, err := time.Parse(time.RFC3339Nano, cachedAt); err == nil {
		entry.CachedAt = ts
	}
	return entry, nil
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

func (s *Store) deleteWithRetry(ctx context.Context, query string, args ...any) (int64, error) {
	var affected int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("delete transcripts: %w", err)
	}
	return affected, nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
