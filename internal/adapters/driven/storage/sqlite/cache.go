package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/sitepulse-labs/sitepulse-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/sitepulse-labs/sitepulse-cli/internal/core/ports/driven"
)

// Ensure Cache implements the driven port.
var _ driven.ResultCache = (*Cache)(nil)

// Cache is a SQLite-backed result cache. One connection serves all callers;
// SQLite in WAL mode handles concurrent access.
type Cache struct {
	db   *sql.DB
	path string

	// now is injectable for expiry tests.
	now func() time.Time
}

// NewCache creates a result cache at the specified data directory.
// If dataDir is empty, defaults to ~/.sitepulse/data/results.db.
func NewCache(dataDir string) (*Cache, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".sitepulse", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "results.db")

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	c := &Cache{
		db:   db,
		path: dbPath,
		now:  time.Now,
	}

	if err := c.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return c, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Path returns the database file path.
func (c *Cache) Path() string {
	return c.path
}

// Get returns the cached payload for key. Expired entries are treated as
// misses; they stay on disk until the next Purge.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT payload, expires_at FROM results WHERE key = ?
	`, key)

	var payload []byte
	var expiresAt time.Time
	if err := row.Scan(&payload, &expiresAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("scanning result: %w", err)
	}

	if !c.now().Before(expiresAt) {
		return nil, false, nil
	}
	return payload, true, nil
}

// Set stores payload under key, replacing any previous entry.
func (c *Cache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	now := c.now().UTC()
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO results (key, payload, created_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			payload = excluded.payload,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at
	`, key, payload, now, now.Add(ttl))

	if err != nil {
		return fmt.Errorf("saving result: %w", err)
	}
	return nil
}

// Delete removes one entry. Deleting a missing key is not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	_, err := c.db.ExecContext(ctx, "DELETE FROM results WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("deleting result: %w", err)
	}
	return nil
}

// Purge removes entries, all of them or only expired ones, and returns the
// number removed.
func (c *Cache) Purge(ctx context.Context, expiredOnly bool) (int, error) {
	var res sql.Result
	var err error
	if expiredOnly {
		res, err = c.db.ExecContext(ctx, "DELETE FROM results WHERE expires_at <= ?", c.now().UTC())
	} else {
		res, err = c.db.ExecContext(ctx, "DELETE FROM results")
	}
	if err != nil {
		return 0, fmt.Errorf("purging results: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting purged results: %w", err)
	}
	return int(n), nil
}

// Stats reports entry counts and total payload size.
func (c *Cache) Stats(ctx context.Context) (driven.ResultCacheStats, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(expires_at > ?), 0),
			COALESCE(SUM(LENGTH(payload)), 0)
		FROM results
	`, c.now().UTC())

	var stats driven.ResultCacheStats
	if err := row.Scan(&stats.TotalEntries, &stats.ValidEntries, &stats.SizeBytes); err != nil {
		return driven.ResultCacheStats{}, fmt.Errorf("scanning cache stats: %w", err)
	}
	stats.ExpiredEntries = stats.TotalEntries - stats.ValidEntries
	return stats, nil
}

// migrate runs all pending migrations.
func (c *Cache) migrate(fsys embed.FS) error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := c.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := c.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := c.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}
