package station

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rubiojr/stationmap/pkg/rpc"
)

// ErrClosed is returned by Fetch when the store was closed before the fetch completed.
var ErrClosed = errors.New("station store closed")

// ErrSuperseded is returned by Fetch when a newer fetch started while it was in flight.
var ErrSuperseded = errors.New("station fetch superseded")

// Source fetches raw station records.
type Source interface {
	Stations(ctx context.Context, q rpc.StationQuery) ([]rpc.StationRecord, error)
}

// Store holds the fetched station list for the lifetime of a map view.
type Store struct {
	src Source
	log *slog.Logger

	mu       sync.RWMutex
	stations []Station
	err      error
	loading  int
	gen      uint64
	closed   bool
}

// NewStore creates an empty store reading from src.
func NewStore(src Source, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{src: src, log: logger}
}

// Fetch loads the summary list for q and, when q names a station, merges its
// detail record. A summary failure leaves the previous list in place; a
// detail failure is logged and the summary list is kept.
func (s *Store) Fetch(ctx context.Context, q Query) ([]Station, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	s.gen++
	gen := s.gen
	s.loading++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading--
		s.mu.Unlock()
	}()

	records, err := s.src.Stations(ctx, q.Summary())
	if err != nil {
		err = fmt.Errorf("error fetching stations: %w", err)
		if s.current(gen) {
			s.mu.Lock()
			s.err = err
			s.mu.Unlock()
		}
		return nil, err
	}
	stations := Normalize(records)
	s.log.Debug("Fetched stations", "bukrs", q.Bukrs, "matnr", q.Matnr, "records", len(records), "stations", len(stations))

	if q.StationID != "" {
		stations = s.mergeDetail(ctx, q, stations)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if gen != s.gen {
		return nil, ErrSuperseded
	}
	s.stations = stations
	s.err = nil

	return stations, nil
}

func (s *Store) mergeDetail(ctx context.Context, q Query, stations []Station) []Station {
	records, err := s.src.Stations(ctx, q.Detail())
	if err != nil {
		s.log.Warn("Error fetching station detail", "chxd_id", q.StationID, "error", err)
		return stations
	}
	for i := range records {
		detail, ok := FromRecord(&records[i])
		if !ok || detail.ID != q.StationID {
			continue
		}
		return Merge(stations, detail)
	}
	s.log.Debug("Station detail not found", "chxd_id", q.StationID)
	return stations
}

func (s *Store) current(gen uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.closed && gen == s.gen
}

// Stations returns the current list.
func (s *Store) Stations() []Station {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stations
}

// Err returns the error of the last failed summary fetch, cleared by the next success.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Loading reports whether a fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading > 0
}

// Close discards the effect of any fetch still in flight.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
