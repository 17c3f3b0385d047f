package render

import (
	"github.com/rubiojr/stationmap/internal/station"
)

// Line connects the target to one of its nearest neighbors.
type Line struct {
	StationID  string        `json:"station_id"`
	From       station.Point `json:"from"`
	To         station.Point `json:"to"`
	DistanceKm float64       `json:"distance_km"`
	Label      string        `json:"label"`
	Color      string        `json:"color"`
	Dashed     bool          `json:"dashed"`
}

// Lines returns the connector lines from target to neighbors. It returns nil
// when connector lines are switched off.
func Lines(target station.Station, neighbors []station.Neighbor, t Toggles) []Line {
	if !t.ShowConnectorLines || len(neighbors) == 0 {
		return nil
	}

	from := target.Point()
	lines := make([]Line, 0, len(neighbors))
	for _, n := range neighbors {
		lines = append(lines, Line{
			StationID:  n.Station.ID,
			From:       from,
			To:         n.Station.Point(),
			DistanceKm: n.DistanceKm,
			Label:      FormatDistance(n.DistanceKm),
			Color:      ColorLine,
			Dashed:     true,
		})
	}
	return lines
}
