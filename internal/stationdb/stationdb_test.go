package stationdb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rubiojr/stationmap/internal/station"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(context.Background(), filepath.Join(t.TempDir(), "stations.db"), nil)
	if err != nil {
		t.Fatalf("NewStorage() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func price(v float64) *float64 { return &v }

func TestStorage_Snapshots(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	q := station.Query{Bukrs: "1000", Matnr: "RON95"}

	if _, err := s.LastSnapshot(ctx, q); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("Expected ErrNoSnapshot, got %v", err)
	}

	first := []station.Station{{ID: "A", Title: "Alpha", Lat: 21.02, Lng: 105.85, CategoryTag: "PLX"}}
	second := []station.Station{
		{ID: "A", Title: "Alpha", Lat: 21.02, Lng: 105.85, CategoryTag: "PLX", Price: price(20000)},
		{ID: "B", Title: "Bravo", Lat: 10.77, Lng: 106.70, Image: station.Image{Kind: station.ImageURL, Data: "https://img/b.png"}},
	}

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	if _, err := s.SaveSnapshot(ctx, q, base, first); err != nil {
		t.Fatal(err)
	}
	// prime the cache with the first snapshot
	if snap, err := s.LastSnapshot(ctx, q); err != nil || len(snap.Stations) != 1 {
		t.Fatalf("Unexpected snapshot %+v, err %v", snap, err)
	}
	if _, err := s.SaveSnapshot(ctx, q, base.Add(time.Hour), second); err != nil {
		t.Fatal(err)
	}

	snap, err := s.LastSnapshot(ctx, q)
	if err != nil {
		t.Fatalf("LastSnapshot() failed: %v", err)
	}
	if len(snap.Stations) != 2 {
		t.Fatalf("Expected the newest snapshot with 2 stations, got %d", len(snap.Stations))
	}
	if !snap.FetchedAt.Equal(base.Add(time.Hour)) {
		t.Errorf("Unexpected fetch time %v", snap.FetchedAt)
	}
	if snap.Stations[0].Price == nil || *snap.Stations[0].Price != 20000 {
		t.Errorf("Price lost in round trip: %+v", snap.Stations[0])
	}
	if snap.Stations[1].Image.Kind != station.ImageURL {
		t.Errorf("Image lost in round trip: %+v", snap.Stations[1].Image)
	}

	if _, err := s.LastSnapshot(ctx, station.Query{Bukrs: "2000"}); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("Expected ErrNoSnapshot for another company, got %v", err)
	}

	infos, err := s.Snapshots(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 2 || infos[0].Count != 2 || infos[1].Count != 1 {
		t.Errorf("Unexpected snapshot listing %+v", infos)
	}

	deleted, err := s.DeleteSnapshotsBefore(ctx, base.Add(30*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deleted snapshot, got %d", deleted)
	}
	if err := s.VacuumDatabase(ctx); err != nil {
		t.Errorf("VacuumDatabase() failed: %v", err)
	}
}

func TestStorage_Submissions(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	ok := station.Submission{StationID: "A", Lat: 21.0285, Lng: 105.8542, Type: station.SubmitInput}
	failed := station.Submission{StationID: "B", Lat: 10.77, Lng: 106.70, Type: station.SubmitDefault}

	id, err := s.LogSubmission(ctx, ok, nil)
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Error("Expected a submission id")
	}
	if _, err := s.LogSubmission(ctx, failed, errors.New("upstream rejected")); err != nil {
		t.Fatal(err)
	}

	all, err := s.Submissions(ctx, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 submissions, got %d", len(all))
	}

	onlyB, err := s.Submissions(ctx, "B", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(onlyB) != 1 {
		t.Fatalf("Expected 1 submission for B, got %d", len(onlyB))
	}
	if onlyB[0].OK || onlyB[0].Message != "upstream rejected" || onlyB[0].Type != station.SubmitDefault {
		t.Errorf("Unexpected submission %+v", onlyB[0])
	}

	onlyA, err := s.Submissions(ctx, "A", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(onlyA) != 1 || onlyA[0].ID != id || !onlyA[0].OK || onlyA[0].Lat != 21.0285 {
		t.Errorf("Unexpected submission %+v", onlyA)
	}
}
