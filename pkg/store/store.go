// Package store persists named snapshots of a block tree.
//
// A [Snapshot] is the exported tree together with the canvas state needed to
// restore it: the root anchor and the zoom factor. Three backends implement
// [Store]:
//
//   - [FileStore]: one JSON file per snapshot, for the CLI
//   - [SQLiteStore]: a single SQLite database (pure Go driver)
//   - [MongoStore]: a MongoDB collection, for shared server deployments
//
// Snapshot names are validated with [errors.ValidateName] by every backend,
// so a name that is accepted by one is accepted by all.
//
// # Usage
//
//	st, err := store.Open(ctx, store.Config{Driver: "sqlite", DSN: "blockflow.db"})
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//
//	snap, err := store.Capture(in, "draft")
//	if err != nil {
//	    return err
//	}
//	err = st.Save(ctx, snap)
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/blockflow/pkg/block"
	"github.com/matzehuels/blockflow/pkg/errors"
	"github.com/matzehuels/blockflow/pkg/geom"
	"github.com/matzehuels/blockflow/pkg/interaction"
)

// Snapshot is a saved canvas.
type Snapshot struct {
	Name      string      `json:"name" yaml:"name"`
	Tree      *block.Tree `json:"tree" yaml:"tree"`
	Anchor    geom.Point  `json:"anchor" yaml:"anchor"`
	Zoom      float64     `json:"zoom" yaml:"zoom"`
	UpdatedAt time.Time   `json:"updated_at" yaml:"updated_at"`
}

// Info summarizes a stored snapshot without its tree.
type Info struct {
	Name      string    `json:"name"`
	Blocks    int       `json:"blocks"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is the interface for snapshot backends.
type Store interface {
	// Save creates or replaces the snapshot with the same name and stamps
	// its UpdatedAt.
	Save(ctx context.Context, s *Snapshot) error

	// Load returns the named snapshot, or a NOT_FOUND error.
	Load(ctx context.Context, name string) (*Snapshot, error)

	// List returns every snapshot ordered by name.
	List(ctx context.Context) ([]Info, error)

	// Delete removes the named snapshot. Deleting a missing name is not an
	// error.
	Delete(ctx context.Context, name string) error

	// Close releases backend resources.
	Close() error
}

// Drivers accepted by [Open].
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	// Driver is one of file, sqlite or mongo. Empty means file.
	Driver string `koanf:"driver"`

	// DSN is the directory (file), the database path (sqlite) or the
	// connection URI (mongo). Empty uses the default location for file and
	// sqlite.
	DSN string `koanf:"dsn"`

	// Database is the MongoDB database name.
	Database string `koanf:"database"`
}

// Open creates the backend named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverFile:
		return NewFileStore(cfg.DSN)
	case DriverSQLite:
		path := cfg.DSN
		if path == "" {
			dir, err := DefaultDir()
			if err != nil {
				return nil, err
			}
			path = filepath.Join(dir, "snapshots.db")
		}
		return NewSQLiteStore(path)
	case DriverMongo:
		return NewMongoStore(ctx, cfg.DSN, cfg.Database)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unknown store driver %q", cfg.Driver)
	}
}

// DefaultDir returns the default snapshot directory, following the XDG
// data-home convention (~/.local/share/blockflow/snapshots).
func DefaultDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "blockflow", "snapshots"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "blockflow", "snapshots"), nil
}

// Capture builds a snapshot of the current state of in.
func Capture(in *interaction.Interaction, name string) (*Snapshot, error) {
	if err := errors.ValidateName(name); err != nil {
		return nil, err
	}
	t, err := in.Export()
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{Name: name, Tree: t, Anchor: in.Config().Anchor(), Zoom: in.Zoom()}
	for _, b := range in.Blocks() {
		if b.IsRoot() {
			snap.Anchor = b.Position
			break
		}
	}
	return snap, nil
}

// Restore loads snap into in: the zoom is applied first so the tree is laid
// out once at its saved scale, then the tree is imported at the saved anchor.
func Restore(ctx context.Context, in *interaction.Interaction, snap *Snapshot) (interaction.Outcome, error) {
	if snap == nil || snap.Tree == nil {
		return interaction.Outcome{}, errors.InvalidArgument("snapshot has no tree")
	}
	if snap.Zoom > 0 && snap.Zoom != in.Zoom() {
		if err := in.SetZoom(ctx, snap.Zoom); err != nil {
			return interaction.Outcome{}, err
		}
	}
	anchor := snap.Anchor
	return in.Import(ctx, snap.Tree, &anchor)
}

func validate(s *Snapshot) error {
	if s == nil {
		return errors.InvalidArgument("nil snapshot")
	}
	if err := errors.ValidateName(s.Name); err != nil {
		return err
	}
	if s.Tree == nil {
		return errors.InvalidArgument("snapshot %q has no tree", s.Name)
	}
	return nil
}

func notFound(name string) error {
	return errors.NotFound("snapshot %q not found", name)
}
