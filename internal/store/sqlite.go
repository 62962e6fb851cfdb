package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/samber/lo"
	_ "modernc.org/sqlite"

	"github.com/keywordping/keywordping-go/pkg/keywordping"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS keywords (
		position INTEGER PRIMARY KEY,
		line     TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS vip_users (
		position INTEGER PRIMARY KEY,
		entry    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS guilds (
		guild_id TEXT PRIMARY KEY,
		enabled  INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS meta (
		key   TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	)`,
	`INSERT OR IGNORE INTO meta (key, value) VALUES ('revision', 0)`,
}

// SQLiteStore keeps settings in a SQLite database. Every Save bumps a
// revision counter that Watch polls, so changes written by other processes
// are picked up too.
type SQLiteStore struct {
	db           *sql.DB
	base         string
	log          *slog.Logger
	pollInterval time.Duration
	closed       atomic.Bool
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string, opts ...Option) (*SQLiteStore, error) {
	cfg := applyOptions(opts)
	base := filepath.Base(path)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &Error{Op: OpOpen, Path: base, Err: sanitizePathError(err)}
	}

	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, &Error{Op: OpOpen, Path: base, Err: err}
	}
	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, &Error{Op: OpOpen, Path: base, Err: fmt.Errorf("failed to create schema: %w", err)}
		}
	}

	return &SQLiteStore{
		db:           db,
		base:         base,
		log:          cfg.logger,
		pollInterval: cfg.pollInterval,
	}, nil
}

// Load reads the settings in one transaction.
func (ss *SQLiteStore) Load(ctx context.Context) (keywordping.Settings, error) {
	if ss.closed.Load() {
		return keywordping.Settings{}, ss.wrap(OpLoad, ErrClosed)
	}

	tx, err := ss.db.BeginTx(ctx, nil)
	if err != nil {
		return keywordping.Settings{}, ss.wrap(OpLoad, err)
	}
	defer tx.Rollback()

	var s keywordping.Settings
	if s.Keywords, err = queryLines(ctx, tx, `SELECT line FROM keywords ORDER BY position`); err != nil {
		return keywordping.Settings{}, ss.wrap(OpLoad, fmt.Errorf("failed to query keywords: %w", err))
	}
	if s.WhitelistedUsers, err = queryLines(ctx, tx, `SELECT entry FROM vip_users ORDER BY position`); err != nil {
		return keywordping.Settings{}, ss.wrap(OpLoad, fmt.Errorf("failed to query vip users: %w", err))
	}

	rows, err := tx.QueryContext(ctx, `SELECT guild_id, enabled FROM guilds`)
	if err != nil {
		return keywordping.Settings{}, ss.wrap(OpLoad, fmt.Errorf("failed to query guilds: %w", err))
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id      string
			enabled int
		)
		if err := rows.Scan(&id, &enabled); err != nil {
			return keywordping.Settings{}, ss.wrap(OpLoad, err)
		}
		s = s.WithGuildEnabled(id, enabled != 0)
	}
	if err := rows.Err(); err != nil {
		return keywordping.Settings{}, ss.wrap(OpLoad, err)
	}
	return s, nil
}

// Save replaces all settings rows and bumps the revision.
func (ss *SQLiteStore) Save(ctx context.Context, s keywordping.Settings) error {
	if ss.closed.Load() {
		return ss.wrap(OpSave, ErrClosed)
	}

	tx, err := ss.db.BeginTx(ctx, nil)
	if err != nil {
		return ss.wrap(OpSave, err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM keywords`,
		`DELETE FROM vip_users`,
		`DELETE FROM guilds`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return ss.wrap(OpSave, err)
		}
	}
	for i, line := range s.Keywords {
		if _, err := tx.ExecContext(ctx, `INSERT INTO keywords (position, line) VALUES (?, ?)`, i, line); err != nil {
			return ss.wrap(OpSave, fmt.Errorf("failed to insert keyword: %w", err))
		}
	}
	for i, entry := range s.WhitelistedUsers {
		if _, err := tx.ExecContext(ctx, `INSERT INTO vip_users (position, entry) VALUES (?, ?)`, i, entry); err != nil {
			return ss.wrap(OpSave, fmt.Errorf("failed to insert vip user: %w", err))
		}
	}
	for id, g := range s.Guilds {
		if g.Enabled == nil {
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO guilds (guild_id, enabled) VALUES (?, ?)`, id, lo.Ternary(*g.Enabled, 1, 0)); err != nil {
			return ss.wrap(OpSave, fmt.Errorf("failed to insert guild: %w", err))
		}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE meta SET value = value + 1 WHERE key = 'revision'`); err != nil {
		return ss.wrap(OpSave, err)
	}
	if err := tx.Commit(); err != nil {
		return ss.wrap(OpSave, err)
	}
	ss.log.Debug("settings saved", "db", ss.base, "keywords", len(s.Keywords))
	return nil
}

// Revision returns the number of saves made to the database.
func (ss *SQLiteStore) Revision(ctx context.Context) (int64, error) {
	var rev int64
	err := ss.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'revision'`).Scan(&rev)
	if err != nil {
		return 0, ss.wrap(OpLoad, err)
	}
	return rev, nil
}

// Watch sends the current settings, then polls the revision and sends a
// new snapshot after every save.
func (ss *SQLiteStore) Watch(ctx context.Context) (<-chan keywordping.Settings, <-chan error, error) {
	if ss.closed.Load() {
		return nil, nil, ss.wrap(OpWatch, ErrClosed)
	}
	out := make(chan keywordping.Settings)
	errCh := make(chan error, watchErrBuffer)
	go ss.watch(ctx, out, errCh)
	return out, errCh, nil
}

func (ss *SQLiteStore) watch(ctx context.Context, out chan<- keywordping.Settings, errCh chan<- error) {
	defer close(errCh)
	defer close(out)

	lastRev := int64(-1)
	poll := func() bool {
		rev, err := ss.Revision(ctx)
		if err != nil {
			sendError(ctx, errCh, err)
			return true
		}
		if rev == lastRev {
			return true
		}
		s, err := ss.Load(ctx)
		if err != nil {
			sendError(ctx, errCh, err)
			return true
		}
		lastRev = rev
		ss.log.Debug("settings changed", "db", ss.base, "revision", rev)
		return sendSettings(ctx, out, s)
	}

	if !poll() {
		return
	}

	ticker := time.NewTicker(ss.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ss.closed.Load() {
				return
			}
			if !poll() {
				return
			}
		}
	}
}

// Close closes the database.
func (ss *SQLiteStore) Close() error {
	if ss.closed.Swap(true) {
		return nil
	}
	return ss.db.Close()
}

func (ss *SQLiteStore) wrap(op Op, err error) error {
	return &Error{Op: op, Path: ss.base, Err: err}
}

func queryLines(ctx context.Context, tx *sql.Tx, query string) ([]string, error) {
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
