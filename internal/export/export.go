// Package export writes render plans and neighbor lists in map interchange
// formats.
package export

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/tkrajina/gpxgo/gpx"

	"github.com/rubiojr/stationmap/internal/render"
	"github.com/rubiojr/stationmap/internal/station"
)

const Creator = "stationmap"

// FeatureCollection converts a plan into GeoJSON: one Point per marker, in
// draw order, then one LineString per connector line.
func FeatureCollection(plan render.Plan) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, m := range plan.Markers {
		f := geojson.NewFeature(orb.Point{m.Lng, m.Lat})
		f.ID = m.StationID
		f.Properties["kind"] = "station"
		f.Properties["station_id"] = m.StationID
		f.Properties["title"] = m.Popup.Title
		f.Properties["address"] = m.Popup.Address
		f.Properties["phone"] = m.Popup.Phone
		f.Properties["category"] = string(m.Category)
		f.Properties["icon"] = m.Icon
		f.Properties["size"] = m.Size
		f.Properties["z_index_offset"] = m.ZIndexOffset
		f.Properties["target"] = m.Target
		f.Properties["nearby"] = m.Nearby
		if m.Label != nil {
			f.Properties["label"] = m.Label
		}
		fc.Append(f)
	}

	for _, l := range plan.Lines {
		f := geojson.NewFeature(orb.LineString{
			{l.From.Lng, l.From.Lat},
			{l.To.Lng, l.To.Lat},
		})
		f.Properties["kind"] = "connector"
		f.Properties["station_id"] = l.StationID
		f.Properties["distance_km"] = l.DistanceKm
		f.Properties["label"] = l.Label
		f.Properties["color"] = l.Color
		f.Properties["dashed"] = l.Dashed
		fc.Append(f)
	}

	return fc
}

// GeoJSON encodes plan as a GeoJSON FeatureCollection.
func GeoJSON(plan render.Plan) ([]byte, error) {
	data, err := FeatureCollection(plan).MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("error encoding geojson: %w", err)
	}
	return data, nil
}

// GPX builds a GPX document with a waypoint per marker and a two-point route
// from the target to each neighbor.
func GPX(plan render.Plan) *gpx.GPX {
	g := &gpx.GPX{
		Version: "1.1",
		Creator: Creator,
		Name:    "stations",
	}

	for _, m := range plan.Markers {
		wpt := waypoint(m.Lat, m.Lng, m.Popup.Title)
		wpt.Description = m.Popup.Address
		wpt.Symbol = string(m.Category)
		switch {
		case m.Target:
			wpt.Type = "target"
		case m.Nearby:
			wpt.Type = "nearby"
		default:
			wpt.Type = "station"
		}
		g.Waypoints = append(g.Waypoints, wpt)
	}

	for _, l := range plan.Lines {
		g.Routes = append(g.Routes, gpx.GPXRoute{
			Name:        l.StationID,
			Description: l.Label,
			Points: []gpx.GPXPoint{
				waypoint(l.From.Lat, l.From.Lng, ""),
				waypoint(l.To.Lat, l.To.Lng, l.StationID),
			},
		})
	}

	return g
}

// NeighborsGPX writes neighbors as waypoints named by rank.
func NeighborsGPX(origin station.Point, neighbors []station.Neighbor) *gpx.GPX {
	g := &gpx.GPX{Version: "1.1", Creator: Creator, Name: "nearest"}
	g.Waypoints = append(g.Waypoints, waypoint(origin.Lat, origin.Lng, "origin"))
	for i, n := range neighbors {
		wpt := waypoint(n.Station.Lat, n.Station.Lng, fmt.Sprintf("%d. %s", i+1, n.Station.Title))
		wpt.Description = render.FormatDistance(n.DistanceKm)
		wpt.Symbol = string(n.Station.Category())
		g.Waypoints = append(g.Waypoints, wpt)
	}
	return g
}

// EncodeGPX serializes g as indented GPX 1.1 XML.
func EncodeGPX(g *gpx.GPX) ([]byte, error) {
	data, err := g.ToXml(gpx.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		return nil, fmt.Errorf("error encoding gpx: %w", err)
	}
	return data, nil
}

func waypoint(lat, lng float64, name string) gpx.GPXPoint {
	return gpx.GPXPoint{
		Point: gpx.Point{Latitude: lat, Longitude: lng},
		Name:  name,
	}
}
