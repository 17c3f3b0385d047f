// Package mapview owns a map widget for its whole lifetime and keeps its
// marker and line layers in sync with the station set, the target, the zoom
// level and the display toggles.
package mapview

import (
	"log/slog"
	"sync"
	"time"

	"github.com/paulmach/orb"

	"github.com/rubiojr/stationmap/internal/render"
	"github.com/rubiojr/stationmap/internal/station"
)

const (
	DefaultZoom     = 6
	DefaultDebounce = 100 * time.Millisecond

	TargetZoom   = 13
	FitPaddingPx = 60
	FitMaxZoom   = 15
)

// Options configures a Session.
type Options struct {
	Zoom     int
	Toggles  render.Toggles
	Debounce time.Duration
	Logger   *slog.Logger
}

// Session is the only owner of a Canvas.
type Session struct {
	canvas      Canvas
	log         *slog.Logger
	debounce    *Debouncer
	unsubscribe func()

	mu       sync.Mutex
	stations []station.Station
	targetID string
	zoom     int
	toggles  render.Toggles
	plan     render.Plan
	centered bool
	closed   bool
}

// New takes ownership of canvas and subscribes to its zoom events.
func New(canvas Canvas, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Zoom == 0 {
		opts.Zoom = DefaultZoom
	}
	if opts.Toggles.Categories == nil {
		opts.Toggles.Categories = station.Visibility{}
	}

	s := &Session{
		canvas:  canvas,
		log:     opts.Logger,
		zoom:    opts.Zoom,
		toggles: opts.Toggles,
	}
	s.debounce = NewDebouncer(opts.Debounce, s.zoomRebuild)
	s.unsubscribe = canvas.OnZoomEnd(s.handleZoom)
	return s
}

// SetStations replaces the station set and rebuilds the layers.
func (s *Session) SetStations(stations []station.Station) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.stations = stations
	s.rebuild()
}

// SetTarget changes the highlighted station.
func (s *Session) SetTarget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.targetID = id
	s.rebuild()
}

// SetToggles changes the display toggles, applying render.NarrowCategories.
func (s *Session) SetToggles(t render.Toggles) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if t.Categories == nil {
		t.Categories = station.Visibility{}
	}
	s.toggles = render.NarrowCategories(s.toggles, t)
	s.rebuild()
}

// Toggles returns the toggles in effect.
func (s *Session) Toggles() render.Toggles {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toggles
}

// Zoom returns the last known zoom level.
func (s *Session) Zoom() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom
}

// Plan returns the last applied render plan.
func (s *Session) Plan() render.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plan
}

// Visible returns the stations shown under the current category filter.
func (s *Session) Visible() []station.Station {
	s.mu.Lock()
	defer s.mu.Unlock()
	return station.Visible(s.stations, s.toggles.Categories)
}

// handleZoom restyles labels right away and defers the layer rebuild.
func (s *Session) handleZoom(zoom int) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.zoom = zoom
	s.canvas.SetLabelOpacity(render.LabelOpacity(float64(zoom), s.toggles.ShowStationText))
	s.mu.Unlock()

	s.debounce.Trigger()
}

func (s *Session) zoomRebuild() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.rebuild()
}

// rebuild replaces both layers. Callers hold s.mu.
func (s *Session) rebuild() {
	visible := station.Visible(s.stations, s.toggles.Categories)
	s.plan = render.BuildPlan(render.Input{
		Stations: visible,
		TargetID: s.targetID,
		Zoom:     s.zoom,
		Toggles:  s.toggles,
	})
	s.canvas.ReplaceMarkers(s.plan.Markers)
	s.canvas.ReplaceLines(s.plan.Lines)
	s.log.Debug("Rebuilt map layers", "markers", len(s.plan.Markers), "lines", len(s.plan.Lines), "zoom", s.zoom)

	if s.centered || len(visible) == 0 {
		return
	}
	s.centered = true
	if target, ok := station.Target(visible, s.targetID); ok {
		s.canvas.CenterOn(target.Point(), TargetZoom)
		return
	}
	s.canvas.FitBounds(Bounds(visible), FitPaddingPx, FitMaxZoom)
}

// Close unsubscribes from the canvas, cancels pending rebuilds and releases
// the canvas. It is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.unsubscribe()
	s.debounce.Stop()
	return s.canvas.Close()
}

// Bounds returns the bounding box of stations.
func Bounds(stations []station.Station) orb.Bound {
	points := make(orb.MultiPoint, 0, len(stations))
	for _, st := range stations {
		points = append(points, orb.Point{st.Lng, st.Lat})
	}
	return points.Bound()
}

// Frame renders stations once on a headless canvas, the way a freshly
// mounted map would show them, and returns the plan and the initial camera
// move. The move is nil when nothing is visible.
func Frame(stations []station.Station, targetID string, zoom int, t render.Toggles) (render.Plan, *CameraMove) {
	canvas := NewMemoryCanvas()
	s := New(canvas, Options{Toggles: render.DefaultToggles(), Debounce: time.Hour})
	defer s.Close()
	s.zoom = zoom

	s.SetToggles(t)
	s.SetTarget(targetID)
	s.SetStations(stations)

	plan := s.Plan()
	moves := canvas.Moves()
	if len(moves) == 0 {
		return plan, nil
	}
	return plan, &moves[0]
}
