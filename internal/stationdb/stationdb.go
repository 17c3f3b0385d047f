// Package stationdb stores fetched station lists as dated snapshots and keeps
// an audit log of location submissions in a SQLite database.
package stationdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/patrickmn/go-cache"

	"github.com/rubiojr/stationmap/internal/station"
)

const (
	defaultCacheExpiration = 10 * time.Minute
	defaultCacheCleanup    = 30 * time.Minute
	defaultCacheSize       = -1024 * 1024 // negative value for pages
	defaultPageSize        = 4096
	timeLayout             = "2006-01-02T15:04:05.000000Z07:00"
)

// ErrNoSnapshot is returned when no snapshot matches a query.
var ErrNoSnapshot = errors.New("no snapshot available")

type Storage struct {
	db    *sql.DB
	cache *cache.Cache
	log   *slog.Logger
}

// Snapshot is a station list as fetched at a point in time.
type Snapshot struct {
	ID        int64             `json:"id"`
	Bukrs     string            `json:"bukrs"`
	Matnr     string            `json:"matnr"`
	FetchedAt time.Time         `json:"fetched_at"`
	Stations  []station.Station `json:"stations"`
}

// SnapshotInfo describes a stored snapshot without its stations.
type SnapshotInfo struct {
	ID        int64
	Bukrs     string
	Matnr     string
	FetchedAt time.Time
	Count     int
}

// Submission is a row in the location_submissions table.
type Submission struct {
	ID          string
	StationID   string
	Lat         float64
	Lng         float64
	Type        string
	SubmittedAt time.Time
	OK          bool
	Message     string
}

func NewStorage(ctx context.Context, dbPath string, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := sql.Open("sqlite3", "file:"+dbPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := configureSQLitePragmas(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	if err := createTables(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating tables: %w", err)
	}

	s := &Storage{
		db:    db,
		cache: cache.New(defaultCacheExpiration, defaultCacheCleanup),
		log:   logger,
	}
	s.log.Debug("Storage ready", "path", dbPath)
	return s, nil
}

func configureSQLitePragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 10000;",
		"PRAGMA journal_mode = WAL;",
		"PRAGMA auto_vacuum = INCREMENTAL;",
		"PRAGMA temp_store = FILE;",
		"PRAGMA synchronous = NORMAL;",
		fmt.Sprintf("PRAGMA cache_size = %d;", defaultCacheSize),
		fmt.Sprintf("PRAGMA page_size = %d;", defaultPageSize),
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("error setting %q: %w", p, err)
		}
	}
	return nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		bukrs TEXT NOT NULL DEFAULT '',
		matnr TEXT NOT NULL DEFAULT '',
		fetched_at TEXT NOT NULL,
		station_count INTEGER NOT NULL,
		data BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_query ON snapshots(bukrs, matnr, fetched_at);

	CREATE TABLE IF NOT EXISTS location_submissions (
		id TEXT PRIMARY KEY,
		station_id TEXT NOT NULL,
		lat REAL NOT NULL,
		lng REAL NOT NULL,
		type TEXT NOT NULL,
		submitted_at TEXT NOT NULL,
		ok INTEGER NOT NULL,
		message TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_location_submissions_station ON location_submissions(station_id);
	`

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("error creating table: %w", err)
	}
	return nil
}

func (s *Storage) Close() error {
	if s.cache != nil {
		s.cache.Flush()
	}
	return s.db.Close()
}

func snapshotKey(q station.Query) string {
	return "snapshot_" + q.Bukrs + "_" + q.Matnr
}

// SaveSnapshot stores stations fetched for q at fetchedAt.
func (s *Storage) SaveSnapshot(ctx context.Context, q station.Query, fetchedAt time.Time, stations []station.Station) (int64, error) {
	data, err := json.Marshal(stations)
	if err != nil {
		return 0, fmt.Errorf("error marshaling stations: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO snapshots (bukrs, matnr, fetched_at, station_count, data) VALUES (?, ?, ?, ?, ?)",
		q.Bukrs, q.Matnr, fetchedAt.UTC().Format(timeLayout), len(stations), data)
	if err != nil {
		return 0, fmt.Errorf("error inserting snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("error reading snapshot id: %w", err)
	}

	s.cache.Delete(snapshotKey(q))
	s.log.Debug("Saved snapshot", "id", id, "stations", len(stations), "bukrs", q.Bukrs, "matnr", q.Matnr)
	return id, nil
}

// LastSnapshot returns the most recent snapshot stored for q's company and
// product.
func (s *Storage) LastSnapshot(ctx context.Context, q station.Query) (*Snapshot, error) {
	key := snapshotKey(q)
	if cached, found := s.cache.Get(key); found {
		s.log.Debug("Using cached data", "key", key)
		return cached.(*Snapshot), nil
	}

	var (
		snap      Snapshot
		fetchedAt string
		data      []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, bukrs, matnr, fetched_at, data FROM snapshots
		WHERE bukrs = ? AND matnr = ?
		ORDER BY fetched_at DESC, id DESC LIMIT 1
	`, q.Bukrs, q.Matnr).Scan(&snap.ID, &snap.Bukrs, &snap.Matnr, &fetchedAt, &data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("error querying database: %w", err)
	}

	if snap.FetchedAt, err = time.Parse(timeLayout, fetchedAt); err != nil {
		return nil, fmt.Errorf("error parsing date %s: %w", fetchedAt, err)
	}
	if err := json.Unmarshal(data, &snap.Stations); err != nil {
		return nil, fmt.Errorf("error unmarshaling data: %w", err)
	}

	s.cache.Set(key, &snap, cache.DefaultExpiration)
	return &snap, nil
}

// Snapshots lists stored snapshots, newest first. A limit of 0 returns all.
func (s *Storage) Snapshots(ctx context.Context, limit int) ([]SnapshotInfo, error) {
	query := "SELECT id, bukrs, matnr, fetched_at, station_count FROM snapshots ORDER BY fetched_at DESC, id DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying snapshots: %w", err)
	}
	defer rows.Close()

	var infos []SnapshotInfo
	for rows.Next() {
		var (
			info      SnapshotInfo
			fetchedAt string
		)
		if err := rows.Scan(&info.ID, &info.Bukrs, &info.Matnr, &fetchedAt, &info.Count); err != nil {
			return nil, fmt.Errorf("error scanning snapshot: %w", err)
		}
		if info.FetchedAt, err = time.Parse(timeLayout, fetchedAt); err != nil {
			continue
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error: %w", err)
	}
	return infos, nil
}

// DeleteSnapshotsBefore removes snapshots fetched before cutoff and returns
// how many were deleted.
func (s *Storage) DeleteSnapshotsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE fetched_at < ?", cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("error deleting snapshots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error counting deleted snapshots: %w", err)
	}
	s.cache.Flush()
	s.log.Info("Deleted old snapshots", "cutoff", cutoff.Format(time.DateOnly), "deleted_count", n)
	return n, nil
}

func (s *Storage) VacuumDatabase(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA incremental_vacuum(1000)"); err != nil {
		return fmt.Errorf("error performing incremental vacuum: %w", err)
	}
	return nil
}

// LogSubmission records a location submission and its outcome. The returned
// id identifies the audit row.
func (s *Storage) LogSubmission(ctx context.Context, sub station.Submission, submitErr error) (string, error) {
	id := uuid.NewString()
	ok := submitErr == nil
	msg := ""
	if submitErr != nil {
		msg = submitErr.Error()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO location_submissions (id, station_id, lat, lng, type, submitted_at, ok, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, sub.StationID, sub.Lat, sub.Lng, sub.Type, time.Now().UTC().Format(timeLayout), ok, msg)
	if err != nil {
		return "", fmt.Errorf("error logging submission: %w", err)
	}
	return id, nil
}

// Submissions returns the submissions logged for stationID, newest first. An
// empty stationID returns every submission.
func (s *Storage) Submissions(ctx context.Context, stationID string, limit int) ([]Submission, error) {
	query := "SELECT id, station_id, lat, lng, type, submitted_at, ok, message FROM location_submissions"
	var args []any
	if stationID != "" {
		query += " WHERE station_id = ?"
		args = append(args, stationID)
	}
	query += " ORDER BY submitted_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error retrieving submissions: %w", err)
	}
	defer rows.Close()

	var subs []Submission
	for rows.Next() {
		var (
			sub         Submission
			submittedAt string
		)
		if err := rows.Scan(&sub.ID, &sub.StationID, &sub.Lat, &sub.Lng, &sub.Type, &submittedAt, &sub.OK, &sub.Message); err != nil {
			return nil, fmt.Errorf("error scanning submission: %w", err)
		}
		if sub.SubmittedAt, err = time.Parse(timeLayout, submittedAt); err != nil {
			return nil, fmt.Errorf("error parsing date %s: %w", submittedAt, err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return subs, nil
}
