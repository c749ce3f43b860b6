// Package sqlite provides a SQLite-backed storage.CaveStorage, so a cave
// survives a server restart.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/pixil98/go-cave/internal/game"
	"github.com/pixil98/go-cave/internal/storage"
	"github.com/pixil98/go-cave/internal/storage/sqlite/migrations"
)

// Store persists the cave in a SQLite file.
type Store struct {
	path  string
	sqlDB *sql.DB
	clock clock.Clock
	newID func() string
}

var _ storage.CaveStorage = (*Store)(nil)

type StoreOpt func(*Store)

// WithClock sets the clock used to timestamp new rooms and messages.
func WithClock(c clock.Clock) StoreOpt {
	return func(s *Store) {
		s.clock = c
	}
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// Open opens the database at path and applies the embedded migrations.
func Open(path string, opts ...StoreOpt) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := "file:" + cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer keeps add-if-absent and read-modify-write atomic.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s := &Store{
		path:  cleanPath,
		sqlDB: sqlDB,
		clock: clock.New(),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// applyMigrations runs every *.sql file in migrationFS once, in name order.
func applyMigrations(sqlDB *sql.DB, migrationFS fs.FS) error {
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at INTEGER NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	files, err := fs.Glob(migrationFS, "*.sql")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		var n int
		err := sqlDB.QueryRow(`SELECT COUNT(*) FROM schema_migrations WHERE name = ?`, file).Scan(&n)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", file, err)
		}
		if n > 0 {
			continue
		}

		content, err := fs.ReadFile(migrationFS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}

		tx, err := sqlDB.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", file, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", file, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?)`, file, time.Now().UnixMilli()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", file, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", file, err)
		}
	}

	return nil
}

func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) Describe() string {
	return fmt.Sprintf("SQLiteStore (%s)", s.path)
}

func (s *Store) GetRoom(ctx context.Context, pos game.Position) (*game.Room, error) {
	var r game.Room
	var createdAt int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, description, creator_id, created_at FROM rooms WHERE position = ?`,
		pos.String(),
	).Scan(&r.ID, &r.Description, &r.CreatorID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get room %s: %w", pos, err)
	}

	r.CreatedAt = fromMillis(createdAt)
	return &r, nil
}

func (s *Store) AddRoom(ctx context.Context, pos game.Position, draft game.Room) (game.Status, error) {
	res, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO rooms (position, id, description, creator_id, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (position) DO NOTHING`,
		pos.String(), s.newID(), draft.Description, draft.CreatorID, toMillis(s.clock.Now()),
	)
	if err != nil {
		return game.StatusInternalError, fmt.Errorf("add room %s: %w", pos, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return game.StatusInternalError, fmt.Errorf("add room %s: %w", pos, err)
	}
	if n == 0 {
		return game.StatusForbidden, nil
	}
	return game.StatusCreated, nil
}

func (s *Store) UpdateRoom(ctx context.Context, pos game.Position, draft game.Room) (game.Status, error) {
	return s.updateOwned(ctx,
		`SELECT creator_id FROM rooms WHERE position = ?`, []any{pos.String()},
		`UPDATE rooms SET description = ? WHERE position = ?`, []any{draft.Description, pos.String()},
		draft.CreatorID,
	)
}

// updateOwned runs update only if the row selected by query exists and was
// created by creatorID.
func (s *Store) updateOwned(ctx context.Context, query string, queryArgs []any, update string, updateArgs []any, creatorID string) (game.Status, error) {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return game.StatusInternalError, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var storedCreator string
	err = tx.QueryRowContext(ctx, query, queryArgs...).Scan(&storedCreator)
	if errors.Is(err, sql.ErrNoRows) {
		return game.StatusNotFound, nil
	}
	if err != nil {
		return game.StatusInternalError, fmt.Errorf("select: %w", err)
	}
	if storedCreator != creatorID {
		return game.StatusUnauthorized, nil
	}

	if _, err := tx.ExecContext(ctx, update, updateArgs...); err != nil {
		return game.StatusInternalError, fmt.Errorf("update: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return game.StatusInternalError, fmt.Errorf("commit: %w", err)
	}
	return game.StatusOK, nil
}

func (s *Store) GetExits(ctx context.Context, pos game.Position) ([]game.Direction, error) {
	args := make([]any, 0, len(game.Directions))
	for _, d := range game.Directions {
		args = append(args, pos.Translate(d).String())
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT position FROM rooms WHERE position IN (?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return nil, fmt.Errorf("get exits %s: %w", pos, err)
	}
	defer func() { _ = rows.Close() }()

	found := map[string]bool{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("get exits %s: %w", pos, err)
		}
		found[p] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get exits %s: %w", pos, err)
	}

	exits := []game.Direction{}
	for _, d := range game.Directions {
		if found[pos.Translate(d).String()] {
			exits = append(exits, d)
		}
	}
	return exits, nil
}

func (s *Store) GetPlayerByID(ctx context.Context, id string) (*game.PlayerRecord, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, name, group_name, region, position, access_token FROM players WHERE id = ?`, id)

	p, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get player %s: %w", id, err)
	}
	return &p, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row scanner) (game.PlayerRecord, error) {
	var p game.PlayerRecord
	var region, pos string
	err := row.Scan(&p.ID, &p.Name, &p.GroupName, &region, &pos, &p.AccessToken)
	if err != nil {
		return game.PlayerRecord{}, err
	}

	p.Region = game.Region(region)
	p.Position, err = game.ParsePosition(pos)
	if err != nil {
		return game.PlayerRecord{}, err
	}
	return p, nil
}

func (s *Store) UpdatePlayerRecord(ctx context.Context, record game.PlayerRecord) error {
	if record.ID == "" {
		return fmt.Errorf("player record without id")
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO players (id, name, group_name, region, position, access_token)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   name = excluded.name,
		   group_name = excluded.group_name,
		   region = excluded.region,
		   position = excluded.position,
		   access_token = excluded.access_token`,
		record.ID, record.Name, record.GroupName, string(record.Region), record.Position.String(), record.AccessToken,
	)
	if err != nil {
		return fmt.Errorf("update player %s: %w", record.ID, err)
	}
	return nil
}

func (s *Store) ClearAccessTokens(ctx context.Context) error {
	_, err := s.sqlDB.ExecContext(ctx, `UPDATE players SET access_token = '' WHERE access_token != ''`)
	if err != nil {
		return fmt.Errorf("clearing access tokens: %w", err)
	}
	return nil
}

func (s *Store) ComputeListOfPlayersAt(ctx context.Context, pos game.Position) ([]game.PlayerRecord, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, name, group_name, region, position, access_token
		 FROM players WHERE position = ? AND access_token != ''
		 ORDER BY id`, pos.String())
	if err != nil {
		return nil, fmt.Errorf("players at %s: %w", pos, err)
	}
	defer func() { _ = rows.Close() }()

	here := []game.PlayerRecord{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("players at %s: %w", pos, err)
		}
		here = append(here, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("players at %s: %w", pos, err)
	}
	return here, nil
}

func (s *Store) AddMessage(ctx context.Context, pos game.Position, draft game.Message) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO messages (id, position, contents, creator_id, creator_name, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.newID(), pos.String(), draft.Contents, draft.CreatorID, draft.CreatorName, toMillis(s.clock.Now()),
	)
	if err != nil {
		return fmt.Errorf("add message at %s: %w", pos, err)
	}
	return nil
}

func (s *Store) UpdateMessage(ctx context.Context, pos game.Position, id string, draft game.Message) (game.Status, error) {
	return s.updateOwned(ctx,
		`SELECT creator_id FROM messages WHERE position = ? AND id = ?`, []any{pos.String(), id},
		`UPDATE messages SET contents = ? WHERE position = ? AND id = ?`, []any{draft.Contents, pos.String(), id},
		draft.CreatorID,
	)
}

func (s *Store) GetMessageList(ctx context.Context, pos game.Position, start, size int) ([]game.Message, error) {
	if start < 0 {
		start = 0
	}
	if size < 0 {
		size = 0
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, contents, creator_id, creator_name, created_at
		 FROM messages WHERE position = ?
		 ORDER BY seq DESC LIMIT ? OFFSET ?`,
		pos.String(), size, start)
	if err != nil {
		return nil, fmt.Errorf("message list at %s: %w", pos, err)
	}
	defer func() { _ = rows.Close() }()

	page := []game.Message{}
	for rows.Next() {
		var m game.Message
		var createdAt int64
		if err := rows.Scan(&m.ID, &m.Contents, &m.CreatorID, &m.CreatorName, &createdAt); err != nil {
			return nil, fmt.Errorf("message list at %s: %w", pos, err)
		}
		m.CreatedAt = fromMillis(createdAt)
		page = append(page, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("message list at %s: %w", pos, err)
	}
	return page, nil
}
