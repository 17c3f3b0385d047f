package station

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rubiojr/stationmap/pkg/rpc"
)

type fakeSource struct {
	mu         sync.Mutex
	summary    []rpc.StationRecord
	detail     []rpc.StationRecord
	summaryErr error
	detailErr  error
	calls      []rpc.StationQuery
	// block, when set, is waited on before answering a summary request
	block chan struct{}
}

func (f *fakeSource) Stations(_ context.Context, q rpc.StationQuery) ([]rpc.StationRecord, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	block := f.block
	f.mu.Unlock()

	if q.StationID != "" {
		return f.detail, f.detailErr
	}
	if block != nil {
		<-block
	}
	return f.summary, f.summaryErr
}

func record(id string, lat, lng float64) rpc.StationRecord {
	return rpc.StationRecord{
		ID:  id,
		Lat: rpc.Number{Value: lat, Valid: true},
		Lng: rpc.Number{Value: lng, Valid: true},
	}
}

func TestStore_Fetch(t *testing.T) {
	src := &fakeSource{summary: []rpc.StationRecord{record("A", 21, 105.8), record("B", 21.05, 105.85)}}
	store := NewStore(src, nil)

	stations, err := store.Fetch(context.Background(), Query{Bukrs: "1000", Matnr: "xang95"})
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if len(stations) != 2 || len(store.Stations()) != 2 {
		t.Errorf("Expected 2 stations, got %d / %d", len(stations), len(store.Stations()))
	}
	if len(src.calls) != 1 {
		t.Errorf("Expected a single summary call without a station id, got %d", len(src.calls))
	}
	if src.calls[0].Bukrs != "1000" || src.calls[0].Matnr != "xang95" {
		t.Errorf("Unexpected summary query %+v", src.calls[0])
	}
	if store.Loading() {
		t.Error("Store still loading after Fetch returned")
	}
}

func TestStore_DetailMerge(t *testing.T) {
	detail := record("B", 21.06, 105.86)
	detail.Title = "Beta detail"
	src := &fakeSource{
		summary: []rpc.StationRecord{record("A", 21, 105.8), record("B", 21.05, 105.85)},
		detail:  []rpc.StationRecord{detail},
	}
	store := NewStore(src, nil)

	stations, err := store.Fetch(context.Background(), Query{Bukrs: "1000", StationID: "B"})
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if len(src.calls) != 2 || src.calls[1].StationID != "B" {
		t.Fatalf("Expected summary then detail call, got %+v", src.calls)
	}
	if len(stations) != 2 || stations[1].Title != "Beta detail" || stations[1].Lat != 21.06 {
		t.Errorf("Detail not merged: %+v", stations)
	}

	src.detail = []rpc.StationRecord{record("Z", 1, 1)}
	src.calls = nil
	stations, _ = store.Fetch(context.Background(), Query{Bukrs: "1000", StationID: "Z"})
	if len(stations) != 3 || stations[2].ID != "Z" {
		t.Errorf("Expected unknown detail to be appended, got %+v", stations)
	}
}

func TestStore_DetailFailureSwallowed(t *testing.T) {
	src := &fakeSource{
		summary:   []rpc.StationRecord{record("A", 21, 105.8)},
		detailErr: rpc.ErrTransport,
	}
	store := NewStore(src, nil)

	stations, err := store.Fetch(context.Background(), Query{StationID: "A"})
	if err != nil {
		t.Fatalf("Detail failure must not fail the fetch: %v", err)
	}
	if len(stations) != 1 {
		t.Errorf("Expected summary list to be kept, got %d", len(stations))
	}
	if store.Err() != nil {
		t.Errorf("Detail failure must not set the error flag, got %v", store.Err())
	}
}

func TestStore_SummaryFailureKeepsPrevious(t *testing.T) {
	src := &fakeSource{summary: []rpc.StationRecord{record("A", 21, 105.8)}}
	store := NewStore(src, nil)
	if _, err := store.Fetch(context.Background(), Query{}); err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}

	src.summary = nil
	src.summaryErr = rpc.ErrTransport
	_, err := store.Fetch(context.Background(), Query{})
	if !errors.Is(err, rpc.ErrTransport) {
		t.Fatalf("Expected transport error, got %v", err)
	}
	if len(store.Stations()) != 1 {
		t.Errorf("Expected previous list to survive a failed fetch, got %d", len(store.Stations()))
	}
	if !errors.Is(store.Err(), rpc.ErrTransport) {
		t.Errorf("Expected error flag to be set, got %v", store.Err())
	}

	src.summaryErr = nil
	src.summary = []rpc.StationRecord{record("B", 1, 1), record("C", 2, 2)}
	if _, err := store.Fetch(context.Background(), Query{}); err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if store.Err() != nil {
		t.Error("Expected a successful fetch to clear the error flag")
	}
	if len(store.Stations()) != 2 || store.Stations()[0].ID != "B" {
		t.Errorf("Expected wholesale replacement, got %+v", store.Stations())
	}
}

func TestStore_ClosedDiscardsLateResult(t *testing.T) {
	src := &fakeSource{
		summary: []rpc.StationRecord{record("A", 21, 105.8)},
		block:   make(chan struct{}),
	}
	store := NewStore(src, nil)

	done := make(chan error, 1)
	go func() {
		_, err := store.Fetch(context.Background(), Query{})
		done <- err
	}()

	// wait for the request to be issued
	for {
		src.mu.Lock()
		n := len(src.calls)
		src.mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if !store.Loading() {
		t.Error("Expected store to report loading while a fetch is in flight")
	}

	store.Close()
	close(src.block)

	if err := <-done; !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
	if len(store.Stations()) != 0 {
		t.Errorf("Late result repopulated a closed store: %+v", store.Stations())
	}
	if _, err := store.Fetch(context.Background(), Query{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected Fetch after Close to fail with ErrClosed, got %v", err)
	}
}
