package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"

	"github.com/rubiojr/stationmap/internal/export"
	"github.com/rubiojr/stationmap/internal/geocode"
	"github.com/rubiojr/stationmap/internal/mapview"
	"github.com/rubiojr/stationmap/internal/render"
	"github.com/rubiojr/stationmap/internal/station"
	"github.com/rubiojr/stationmap/internal/translations"
	"github.com/rubiojr/stationmap/pkg/rpc"
)

const maxNeighbors = 100

var errStationNotFound = errors.New("station not found")

// paramError is a malformed request parameter.
type paramError struct {
	name string
	err  error
}

func (e *paramError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.name, e.err)
}

func (e *paramError) Unwrap() error { return e.err }

type stationsResponse struct {
	Query    station.Query     `json:"query"`
	Count    int               `json:"count"`
	Snapshot bool              `json:"snapshot"`
	Stations []station.Station `json:"stations"`
}

type categoryCount struct {
	Category station.Category `json:"category"`
	Label    string           `json:"label"`
	Count    int              `json:"count"`
}

type nearestResponse struct {
	Origin    station.Point      `json:"origin"`
	Place     string             `json:"place,omitempty"`
	Neighbors []station.Neighbor `json:"neighbors"`
}

type planResponse struct {
	Query  station.Query       `json:"query"`
	Plan   render.Plan         `json:"plan"`
	Camera *mapview.CameraMove `json:"camera,omitempty"`
}

type locationRequest struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Type string  `json:"type"`
}

type locationResponse struct {
	ID        string `json:"id,omitempty"`
	StationID string `json:"station_id"`
	OK        bool   `json:"ok"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var (
		perr *paramError
		rerr *rpc.ReturnError
	)
	switch {
	case errors.As(err, &perr):
		status = http.StatusBadRequest
	case errors.Is(err, errStationNotFound), errors.Is(err, geocode.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, rpc.ErrTransport), errors.As(err, &rerr):
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		s.log.Error("Request failed", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func stationsKey(q station.Query) string {
	return "stations_" + q.Bukrs + "_" + q.Matnr + "_" + q.StationID
}

// loadStations fetches the working set for q. When upstream is unreachable
// and a storage is configured, the last snapshot is served instead.
func (s *Server) loadStations(ctx context.Context, q station.Query) ([]station.Station, bool, error) {
	key := stationsKey(q)
	if cached, found := s.cache.Get(key); found {
		s.log.Debug("Using cached data", "key", key)
		return cached.([]station.Station), false, nil
	}

	store := station.NewStore(s.upstream, s.log)
	defer store.Close()

	stations, err := store.Fetch(ctx, q)
	if err != nil {
		if s.storage != nil && errors.Is(err, rpc.ErrTransport) {
			snap, serr := s.storage.LastSnapshot(ctx, q)
			if serr == nil {
				s.log.Warn("Upstream unavailable, serving snapshot", "snapshot", snap.ID, "fetched_at", snap.FetchedAt, "error", err)
				return snap.Stations, true, nil
			}
		}
		return nil, false, err
	}

	s.cache.Set(key, stations, cache.DefaultExpiration)
	return stations, false, nil
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	q := station.ParseQuery(r.URL.Query())
	stations, snapshot, err := s.loadStations(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stationsResponse{Query: q, Count: len(stations), Snapshot: snapshot, Stations: stations})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	q := station.ParseQuery(r.URL.Query())
	stations, _, err := s.loadStations(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	msg := translations.GetTranslations(r.URL.Query().Get("lang"))
	groups := station.Group(stations)
	counts := make([]categoryCount, 0, len(groups))
	for _, g := range groups {
		counts = append(counts, categoryCount{Category: g.Category, Label: msg.CategoryLabel(g.Category), Count: len(g.Stations)})
	}
	writeJSON(w, http.StatusOK, counts)
}

func (s *Server) handleNearest(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	q := station.ParseQuery(values)

	k, err := intParam(values, "k", station.DefaultNeighbors)
	if err == nil && (k < 1 || k > maxNeighbors) {
		err = &paramError{name: "k", err: fmt.Errorf("must be between 1 and %d", maxNeighbors)}
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	origin, place, hasOrigin, err := s.origin(values)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !hasOrigin && q.StationID == "" {
		s.writeError(w, r, &paramError{name: "origin", err: errors.New("chxd_id, lat/lng or location is required")})
		return
	}

	stations, _, err := s.loadStations(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := nearestResponse{Origin: origin, Place: place}
	if hasOrigin {
		resp.Neighbors = station.NearestPoint(origin, stations, k)
	} else {
		target, ok := station.Target(stations, q.StationID)
		if !ok {
			s.writeError(w, r, fmt.Errorf("%s: %w", q.StationID, errStationNotFound))
			return
		}
		resp.Origin = target.Point()
		resp.Neighbors = station.Nearest(target, stations, k)
	}
	if resp.Neighbors == nil {
		resp.Neighbors = []station.Neighbor{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// origin reads an explicit ranking origin from lat/lng or a geocoded
// location.
func (s *Server) origin(values url.Values) (station.Point, string, bool, error) {
	if loc := values.Get("location"); loc != "" {
		if s.geocoder == nil {
			return station.Point{}, "", false, &paramError{name: "location", err: errors.New("geocoding is disabled")}
		}
		place, err := s.geocoder.Lookup(loc)
		if err != nil {
			return station.Point{}, "", false, err
		}
		return place.Point, place.Name, true, nil
	}

	latStr, lngStr := values.Get("lat"), values.Get("lng")
	if latStr == "" && lngStr == "" {
		return station.Point{}, "", false, nil
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || lat < -90 || lat > 90 {
		return station.Point{}, "", false, &paramError{name: "lat", err: errors.New("invalid latitude value")}
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil || lng < -180 || lng > 180 {
		return station.Point{}, "", false, &paramError{name: "lng", err: errors.New("invalid longitude value")}
	}
	return station.Point{Lat: lat, Lng: lng}, "", true, nil
}

func (s *Server) buildPlan(r *http.Request) (planResponse, error) {
	values := r.URL.Query()
	q := station.ParseQuery(values)
	zoom, toggles, err := planParams(values)
	if err != nil {
		return planResponse{}, err
	}

	stations, _, err := s.loadStations(r.Context(), q)
	if err != nil {
		return planResponse{}, err
	}

	plan, camera := mapview.Frame(stations, q.StationID, zoom, toggles)
	return planResponse{Query: q, Plan: plan, Camera: camera}, nil
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	resp, err := s.buildPlan(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePlanGeoJSON(w http.ResponseWriter, r *http.Request) {
	resp, err := s.buildPlan(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := export.GeoJSON(resp.Plan)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(data)
}

func (s *Server) handlePlanGPX(w http.ResponseWriter, r *http.Request) {
	resp, err := s.buildPlan(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := export.EncodeGPX(export.GPX(resp.Plan))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/gpx+xml")
	w.Write(data)
}

// handleSelect redirects to the plan URL with the station parameter replaced.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	u := *r.URL
	u.Path = s.selectPath
	http.Redirect(w, r, station.SelectURL(&u, chi.URLParam(r, "id")), http.StatusFound)
}

func (s *Server) handleSubmitLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, &paramError{name: "body", err: err})
		return
	}

	sub := station.Submission{StationID: chi.URLParam(r, "id"), Lat: req.Lat, Lng: req.Lng, Type: req.Type}
	if err := sub.Validate(); err != nil {
		s.writeError(w, r, &paramError{name: "submission", err: err})
		return
	}

	submitErr := station.SubmitLocation(r.Context(), s.upstream, sub)

	resp := locationResponse{StationID: sub.StationID, OK: submitErr == nil}
	if s.storage != nil {
		id, err := s.storage.LogSubmission(r.Context(), sub, submitErr)
		if err != nil {
			s.log.Warn("Error logging submission", "station", sub.StationID, "error", err)
		}
		resp.ID = id
	}
	if submitErr != nil {
		s.writeError(w, r, submitErr)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmissions(w http.ResponseWriter, r *http.Request) {
	if s.storage == nil {
		http.Error(w, "submission log disabled", http.StatusNotFound)
		return
	}
	limit, err := intParam(r.URL.Query(), "limit", 50)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	subs, err := s.storage.Submissions(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}
