package render

import (
	"github.com/rubiojr/stationmap/internal/station"
)

// Toggles is the user controlled display state.
type Toggles struct {
	ShowConnectorLines     bool               `json:"show_connector_lines"`
	ShowStationText        bool               `json:"show_station_text"`
	ShowPriceDelta         bool               `json:"show_price_delta"`
	ShowPriceDeltaRegional bool               `json:"show_price_delta_regional"`
	Categories             station.Visibility `json:"categories,omitempty"`
}

// DefaultToggles is the display state of a freshly mounted map.
func DefaultToggles() Toggles {
	return Toggles{
		ShowConnectorLines: false,
		ShowStationText:    true,
		Categories:         station.Visibility{},
	}
}

// RegionalOnlyCategory is the single category left visible while only the
// regional price comparison is displayed.
const RegionalOnlyCategory = station.FlagshipBrand

// regionalOnly reports whether t shows the regional comparison and nothing
// else on labels.
func (t Toggles) regionalOnly() bool {
	return t.ShowPriceDeltaRegional && !t.ShowStationText && !t.ShowPriceDelta
}

func (t Toggles) infoChanged(prev Toggles) bool {
	return t.ShowStationText != prev.ShowStationText ||
		t.ShowPriceDelta != prev.ShowPriceDelta ||
		t.ShowPriceDeltaRegional != prev.ShowPriceDeltaRegional
}

// NarrowCategories applies the regional-only policy to a toggle change from
// prev to next: when the label toggles switch into "regional comparison
// only", category visibility is overwritten to RegionalOnlyCategory, even if
// the user picked other categories. Category changes made while already in
// that mode are left alone.
func NarrowCategories(prev, next Toggles) Toggles {
	if !next.infoChanged(prev) || !next.regionalOnly() {
		return next
	}
	next.Categories = station.Only(RegionalOnlyCategory)
	return next
}
