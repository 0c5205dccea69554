package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/goki/mat32"
	"github.com/san-kum/spikeviz/internal/spikes"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists datasets in a single SQLite file. Several named
// datasets may share one file.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return fmt.Errorf("sqlite store: %w", ErrMissingPath)
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

// SaveDataset replaces any dataset stored under ds.Name.
func (s *SQLiteStore) SaveDataset(ctx context.Context, ds *Dataset, progress *atomic.Int64) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{`DELETE FROM spikes WHERE dataset = ?`, `DELETE FROM positions WHERE dataset = ?`} {
		if _, err := tx.ExecContext(ctx, q, ds.Name); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO datasets (name, start_time, end_time)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			start_time = excluded.start_time,
			end_time = excluded.end_time
	`, ds.Name, ds.Start, ds.End); err != nil {
		return err
	}

	spikeStmt, err := tx.PrepareContext(ctx, `INSERT INTO spikes (dataset, time, gid) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer spikeStmt.Close()

	for i, e := range ds.Spikes {
		if i%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if _, err := spikeStmt.ExecContext(ctx, ds.Name, e.Time, e.GID); err != nil {
			return fmt.Errorf("insert spike %d: %w", i, err)
		}
		if progress != nil {
			progress.Add(1)
		}
	}

	posStmt, err := tx.PrepareContext(ctx, `INSERT INTO positions (dataset, gid, x, y, z) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer posStmt.Close()

	for _, gid := range ds.GIDs() {
		p := ds.Positions[gid]
		if _, err := posStmt.ExecContext(ctx, ds.Name, gid, p.X, p.Y, p.Z); err != nil {
			return fmt.Errorf("insert position %d: %w", gid, err)
		}
		if progress != nil {
			progress.Add(1)
		}
	}

	return tx.Commit()
}

// LoadDataset reads the dataset stored under name. The boolean reports
// whether it exists.
func (s *SQLiteStore) LoadDataset(ctx context.Context, name string, progress *atomic.Int64) (*Dataset, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	var start, end float64
	err = db.QueryRowContext(ctx, `SELECT start_time, end_time FROM datasets WHERE name = ?`, name).Scan(&start, &end)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	events, err := s.loadSpikes(ctx, db, name, progress)
	if err != nil {
		return nil, false, fmt.Errorf("load spikes %s: %w", name, err)
	}
	positions, err := s.loadPositions(ctx, db, name, progress)
	if err != nil {
		return nil, false, fmt.Errorf("load positions %s: %w", name, err)
	}

	ds := New(name, events, positions)
	ds.Start, ds.End = start, end
	return ds, true, nil
}

// Datasets lists the stored dataset names.
func (s *SQLiteStore) Datasets(ctx context.Context) ([]string, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT name FROM datasets ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLiteStore) loadSpikes(ctx context.Context, db *sql.DB, name string, progress *atomic.Int64) ([]spikes.Event, error) {
	rows, err := db.QueryContext(ctx, `SELECT time, gid FROM spikes WHERE dataset = ? ORDER BY time, rowid`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]spikes.Event, 0, 1024)
	for rows.Next() {
		var e spikes.Event
		if err := rows.Scan(&e.Time, &e.GID); err != nil {
			return nil, err
		}
		events = append(events, e)
		if progress != nil {
			progress.Add(1)
		}
	}
	return events, rows.Err()
}

func (s *SQLiteStore) loadPositions(ctx context.Context, db *sql.DB, name string, progress *atomic.Int64) (map[uint32]mat32.Vec3, error) {
	rows, err := db.QueryContext(ctx, `SELECT gid, x, y, z FROM positions WHERE dataset = ?`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	positions := make(map[uint32]mat32.Vec3)
	for rows.Next() {
		var gid uint32
		var p mat32.Vec3
		if err := rows.Scan(&gid, &p.X, &p.Y, &p.Z); err != nil {
			return nil, err
		}
		positions[gid] = p
		if progress != nil {
			progress.Add(1)
		}
	}
	return positions, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS datasets (
			name TEXT PRIMARY KEY,
			start_time REAL NOT NULL,
			end_time REAL NOT NULL
		);
		CREATE TABLE IF NOT EXISTS spikes (
			dataset TEXT NOT NULL,
			time REAL NOT NULL,
			gid INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS spikes_by_time ON spikes (dataset, time);
		CREATE TABLE IF NOT EXISTS positions (
			dataset TEXT NOT NULL,
			gid INTEGER NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			z REAL NOT NULL,
			PRIMARY KEY (dataset, gid)
		);
	`)
	return err
}

// SQLiteSource loads one named dataset from a SQLite file.
type SQLiteSource struct {
	Path    string
	Dataset string
}

func (s *SQLiteSource) Name() string { return s.Dataset }

func (s *SQLiteSource) Load(ctx context.Context, progress *atomic.Int64) (*Dataset, error) {
	store := NewSQLiteStore(s.Path)
	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	defer store.Close()

	ds, ok, err := store.LoadDataset(ctx, s.Dataset, progress)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("sqlite source %s: dataset %q not found", s.Path, s.Dataset)
	}
	return ds, nil
}
