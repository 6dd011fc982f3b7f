package store

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/blockflow/pkg/block"
	"github.com/matzehuels/blockflow/pkg/errors"
)

// SQLiteStore keeps snapshots in one SQLite table.
type SQLiteStore struct {
	conn *sql.DB
	path string
}

// NewSQLiteStore opens (or creates) the database at path. The special path
// ":memory:" gives a private in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer; also keeps a :memory: database on a single connection
	conn.SetMaxOpenConns(1)

	s := &SQLiteStore{conn: conn, path: path}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			name TEXT PRIMARY KEY,
			tree_json TEXT NOT NULL,
			anchor_x REAL NOT NULL DEFAULT 0,
			anchor_y REAL NOT NULL DEFAULT 0,
			zoom REAL NOT NULL DEFAULT 1.0,
			blocks INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT NOT NULL
		)`,
	}
	for _, m := range migrations {
		if _, err := s.conn.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := validate(snap); err != nil {
		return err
	}
	tree, err := json.Marshal(snap.Tree)
	if err != nil {
		return fmt.Errorf("marshal tree: %w", err)
	}
	snap.UpdatedAt = time.Now().UTC()

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO snapshots (name, tree_json, anchor_x, anchor_y, zoom, blocks, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			tree_json = excluded.tree_json,
			anchor_x = excluded.anchor_x,
			anchor_y = excluded.anchor_y,
			zoom = excluded.zoom,
			blocks = excluded.blocks,
			updated_at = excluded.updated_at`,
		snap.Name, string(tree), snap.Anchor.X, snap.Anchor.Y, snap.Zoom, snap.Tree.Size(),
		snap.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, name string) (*Snapshot, error) {
	if err := errors.ValidateName(name); err != nil {
		return nil, err
	}

	var (
		tree, updated string
		snap          = Snapshot{Name: name}
	)
	err := s.conn.QueryRowContext(ctx,
		`SELECT tree_json, anchor_x, anchor_y, zoom, updated_at FROM snapshots WHERE name = ?`, name,
	).Scan(&tree, &snap.Anchor.X, &snap.Anchor.Y, &snap.Zoom, &updated)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	snap.Tree = &block.Tree{}
	if err := json.Unmarshal([]byte(tree), snap.Tree); err != nil {
		return nil, fmt.Errorf("parse tree: %w", err)
	}
	if snap.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &snap, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Info, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT name, blocks, updated_at FROM snapshots ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	out := []Info{}
	for rows.Next() {
		var (
			info    Info
			updated string
		)
		if err := rows.Scan(&info.Name, &info.Blocks, &updated); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		info.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		out = append(out, info)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateName(name); err != nil {
		return err
	}
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM snapshots WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// Path returns the database path.
func (s *SQLiteStore) Path() string { return s.path }

var _ Store = (*SQLiteStore)(nil)
