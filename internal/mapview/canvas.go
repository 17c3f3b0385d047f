package mapview

import (
	"sync"

	"github.com/paulmach/orb"

	"github.com/rubiojr/stationmap/internal/render"
	"github.com/rubiojr/stationmap/internal/station"
)

// Canvas is the map widget a Session draws on. Implementations must not
// call back into the Session from these methods.
type Canvas interface {
	// ReplaceMarkers clears the marker layer and adds markers in order.
	ReplaceMarkers(markers []render.Marker)
	// ReplaceLines clears the line layer and adds lines.
	ReplaceLines(lines []render.Line)
	// SetLabelOpacity restyles the existing labels.
	SetLabelOpacity(opacity float64)
	CenterOn(p station.Point, zoom int)
	FitBounds(b orb.Bound, paddingPx, maxZoom int)
	// OnZoomEnd registers fn for zoom-end events and returns a function that
	// unregisters it.
	OnZoomEnd(fn func(zoom int)) (unsubscribe func())
	Close() error
}

// CameraMove is a camera change recorded by MemoryCanvas.
type CameraMove struct {
	Fit     bool          `json:"fit"`
	Center  station.Point `json:"center"`
	Zoom    int           `json:"zoom,omitempty"`
	Bounds  orb.Bound     `json:"bounds"`
	Padding int           `json:"padding,omitempty"`
	MaxZoom int           `json:"max_zoom,omitempty"`
}

// MemoryCanvas is a headless Canvas keeping the last applied layers.
type MemoryCanvas struct {
	mu       sync.Mutex
	markers  []render.Marker
	lines    []render.Line
	opacity  float64
	moves    []CameraMove
	handlers map[int]func(int)
	nextID   int
	rebuilds int
	closed   bool
}

// NewMemoryCanvas creates an empty MemoryCanvas.
func NewMemoryCanvas() *MemoryCanvas {
	return &MemoryCanvas{handlers: map[int]func(int){}}
}

func (c *MemoryCanvas) ReplaceMarkers(markers []render.Marker) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.markers = append([]render.Marker(nil), markers...)
	c.rebuilds++
}

func (c *MemoryCanvas) ReplaceLines(lines []render.Line) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append([]render.Line(nil), lines...)
}

func (c *MemoryCanvas) SetLabelOpacity(opacity float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opacity = opacity
	for i := range c.markers {
		if l := c.markers[i].Label; l != nil {
			restyled := *l
			restyled.Opacity = opacity
			c.markers[i].Label = &restyled
		}
	}
}

func (c *MemoryCanvas) CenterOn(p station.Point, zoom int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.moves = append(c.moves, CameraMove{Center: p, Zoom: zoom})
}

func (c *MemoryCanvas) FitBounds(b orb.Bound, paddingPx, maxZoom int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	center := b.Center()
	c.moves = append(c.moves, CameraMove{
		Fit:     true,
		Center:  station.Point{Lat: center.Lat(), Lng: center.Lon()},
		Bounds:  b,
		Padding: paddingPx,
		MaxZoom: maxZoom,
	})
}

func (c *MemoryCanvas) OnZoomEnd(fn func(zoom int)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.handlers[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.handlers, id)
	}
}

func (c *MemoryCanvas) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.markers = nil
	c.lines = nil
	return nil
}

// Zoom simulates the end of a user zoom gesture.
func (c *MemoryCanvas) Zoom(zoom int) {
	c.mu.Lock()
	handlers := make([]func(int), 0, len(c.handlers))
	for _, fn := range c.handlers {
		handlers = append(handlers, fn)
	}
	c.mu.Unlock()

	for _, fn := range handlers {
		fn(zoom)
	}
}

// Markers returns the current marker layer.
func (c *MemoryCanvas) Markers() []render.Marker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]render.Marker(nil), c.markers...)
}

// Lines returns the current line layer.
func (c *MemoryCanvas) Lines() []render.Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]render.Line(nil), c.lines...)
}

// Opacity returns the last label opacity applied.
func (c *MemoryCanvas) Opacity() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opacity
}

// Moves returns every camera move so far.
func (c *MemoryCanvas) Moves() []CameraMove {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]CameraMove(nil), c.moves...)
}

// Rebuilds returns how many times the marker layer was replaced.
func (c *MemoryCanvas) Rebuilds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rebuilds
}

// Handlers returns the number of registered zoom handlers.
func (c *MemoryCanvas) Handlers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handlers)
}

// Closed reports whether Close was called.
func (c *MemoryCanvas) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
