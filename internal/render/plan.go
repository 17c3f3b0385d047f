// Package render computes map render plans: which markers, labels and
// connector lines a map shows for a station set, a target, a zoom level and
// the display toggles. Everything here is a pure function of its input; the
// side-effecting apply step lives in package mapview.
package render

import (
	"fmt"

	"github.com/rubiojr/stationmap/internal/station"
)

const (
	// TargetZIndexOffset lifts the target marker above its neighbors.
	TargetZIndexOffset = 1000

	ColorTarget = "#d33"
	ColorNearby = "#ff8800"
	ColorLine   = "#ff8800"
)

var (
	categoryIcons = map[station.Category]string{
		station.FlagshipBrand: "/icons/logo_plx.png",
		station.PartnerBrand:  "/icons/logo_pvoil.png",
		station.Franchise:     "/icons/logo_tnnq.png",
		station.NewInvestment: "/icons/logo_dtm.png",
		station.Other:         "/icons/logo_other.png",
	}
	categoryColors = map[station.Category]string{
		station.FlagshipBrand: "#2a5599",
		station.PartnerBrand:  "#0a8f3c",
		station.Franchise:     "#7b3fa0",
		station.NewInvestment: "#c47f00",
		station.Other:         "#666666",
	}
)

const (
	DefaultIcon  = "/icons/logo_default.png"
	DefaultColor = "#2a5599"
)

// Icon returns the marker icon of a category.
func Icon(c station.Category) string {
	if icon, ok := categoryIcons[c]; ok {
		return icon
	}
	return DefaultIcon
}

// Color returns the label color of a category.
func Color(c station.Category) string {
	if color, ok := categoryColors[c]; ok {
		return color
	}
	return DefaultColor
}

// Input is everything a render plan depends on.
type Input struct {
	// Stations is the visible working set.
	Stations []station.Station
	TargetID string
	Zoom     int
	Toggles  Toggles
}

// Plan is the full content of the marker and line layers.
type Plan struct {
	Markers   []Marker           `json:"markers"`
	Lines     []Line             `json:"lines"`
	Neighbors []station.Neighbor `json:"neighbors,omitempty"`
	// Opacity is the label opacity at the plan zoom.
	Opacity float64 `json:"opacity"`
	Zoom    int     `json:"zoom"`
}

// Marker describes one station marker.
type Marker struct {
	StationID    string           `json:"station_id"`
	Lat          float64          `json:"lat"`
	Lng          float64          `json:"lng"`
	Category     station.Category `json:"category"`
	Icon         string           `json:"icon"`
	Size         int              `json:"size"`
	ZIndexOffset int              `json:"z_index_offset"`
	Target       bool             `json:"target"`
	Nearby       bool             `json:"nearby"`
	Popup        Popup            `json:"popup"`
	Label        *Label           `json:"label,omitempty"`
}

// Popup is shown on hover.
type Popup struct {
	Title   string `json:"title"`
	ID      string `json:"id"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone"`
}

// Label is the text box next to a marker.
type Label struct {
	Title         string  `json:"title,omitempty"`
	TitleFontSize float64 `json:"title_font_size,omitempty"`
	FontSize      float64 `json:"font_size"`
	Opacity       float64 `json:"opacity"`
	BorderColor   string  `json:"border_color"`
	Bold          bool    `json:"bold"`
	Pulse         bool    `json:"pulse"`

	Price              *float64 `json:"price,omitempty"`
	PriceDelta         *float64 `json:"price_delta,omitempty"`
	PriceDeltaRegional *float64 `json:"price_delta_regional,omitempty"`
	// TargetPriceDelta is the price difference to the target station.
	TargetPriceDelta *float64 `json:"target_price_delta,omitempty"`
}

// Empty reports whether the label has no block to show.
func (l *Label) Empty() bool {
	return l.Title == "" && l.PriceDelta == nil && l.PriceDeltaRegional == nil
}

// BuildPlan computes the render plan for in. The target marker, when
// present, is always the last marker.
func BuildPlan(in Input) Plan {
	scale := ScaleFor(in.Zoom)
	opacity := LabelOpacity(float64(in.Zoom), in.Toggles.ShowStationText)

	target, hasTarget := station.Target(in.Stations, in.TargetID)
	var neighbors []station.Neighbor
	if hasTarget {
		neighbors = station.Nearest(target, in.Stations, station.DefaultNeighbors)
	}
	nearby := make(map[string]station.Neighbor, len(neighbors))
	for _, n := range neighbors {
		nearby[n.Station.ID] = n
	}

	plan := Plan{
		Markers:   make([]Marker, 0, len(in.Stations)),
		Neighbors: neighbors,
		Opacity:   opacity,
		Zoom:      clampZoom(in.Zoom),
	}

	var targetMarker *Marker
	for _, s := range in.Stations {
		role := roleNone
		n, isNearby := nearby[s.ID]
		switch {
		case hasTarget && s.ID == target.ID:
			role = roleTarget
		case isNearby:
			role = roleNearby
		}

		m := marker(s, role, scale, opacity, in.Toggles)
		if isNearby && n.PriceDelta != nil && m.Label != nil {
			m.Label.TargetPriceDelta = n.PriceDelta
		}
		if role == roleTarget {
			targetMarker = &m
			continue
		}
		plan.Markers = append(plan.Markers, m)
	}
	if targetMarker != nil {
		plan.Markers = append(plan.Markers, *targetMarker)
	}

	if hasTarget {
		plan.Lines = Lines(target, neighbors, in.Toggles)
	}
	return plan
}

type role int

const (
	roleNone role = iota
	roleNearby
	roleTarget
)

func marker(s station.Station, r role, scale Scale, opacity float64, t Toggles) Marker {
	category := s.Category()
	size := scale.MarkerSize
	if r != roleNone {
		size += HighlightExtraPx
	}

	m := Marker{
		StationID: s.ID,
		Lat:       s.Lat,
		Lng:       s.Lng,
		Category:  category,
		Icon:      Icon(category),
		Size:      size,
		Target:    r == roleTarget,
		Nearby:    r == roleNearby,
		Popup:     popup(s),
	}
	if r == roleTarget {
		m.ZIndexOffset = TargetZIndexOffset
	}

	m.Label = label(s, r, scale, opacity, t)
	return m
}

func popup(s station.Station) Popup {
	phone := s.Phone
	if phone == "" {
		phone = "N/A"
	}
	return Popup{Title: s.Title, ID: s.ID, Address: s.Address, Phone: phone}
}

// label composes the label blocks allowed by the toggles. It returns nil when
// no block is shown.
func label(s station.Station, r role, scale Scale, opacity float64, t Toggles) *Label {
	l := &Label{
		FontSize:    scale.FontSize,
		Opacity:     opacity,
		BorderColor: Color(s.Category()),
	}
	switch r {
	case roleTarget:
		l.BorderColor = ColorTarget
		l.Bold = true
		l.Pulse = true
	case roleNearby:
		l.BorderColor = ColorNearby
	}

	if t.ShowStationText {
		l.Title = TruncateTitle(s.Title)
		l.TitleFontSize = TitleFontSize(s.Title, scale.FontSize)
		l.Price = s.Price
	}
	if t.ShowPriceDelta && s.ShowsPriceChange() {
		l.PriceDelta = s.PriceChange
	}
	if t.ShowPriceDeltaRegional && s.ShowsPriceChangeRegional() {
		l.PriceDeltaRegional = s.PriceChangeRegional
	}

	if l.Empty() {
		return nil
	}
	return l
}

// FormatDistance formats a distance the way connector lines show it.
func FormatDistance(km float64) string {
	return fmt.Sprintf("%.2f km", km)
}
