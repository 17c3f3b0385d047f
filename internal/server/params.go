package server

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/rubiojr/stationmap/internal/mapview"
	"github.com/rubiojr/stationmap/internal/render"
	"github.com/rubiojr/stationmap/internal/station"
)

func intParam(values url.Values, name string, def int) (int, error) {
	v := values.Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &paramError{name: name, err: err}
	}
	return n, nil
}

func boolParam(values url.Values, name string, def bool) (bool, error) {
	v := values.Get(name)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, &paramError{name: name, err: err}
	}
	return b, nil
}

// planParams reads the zoom and the display toggles. Missing toggles keep
// their default state.
func planParams(values url.Values) (int, render.Toggles, error) {
	zoom, err := intParam(values, "zoom", mapview.DefaultZoom)
	if err != nil {
		return 0, render.Toggles{}, err
	}
	if zoom < render.MinZoom || zoom > render.MaxZoom {
		return 0, render.Toggles{}, &paramError{name: "zoom", err: fmt.Errorf("must be between %d and %d", render.MinZoom, render.MaxZoom)}
	}

	t := render.DefaultToggles()
	flags := []struct {
		name string
		dst  *bool
	}{
		{"lines", &t.ShowConnectorLines},
		{"text", &t.ShowStationText},
		{"delta", &t.ShowPriceDelta},
		{"regional", &t.ShowPriceDeltaRegional},
	}
	for _, f := range flags {
		if *f.dst, err = boolParam(values, f.name, *f.dst); err != nil {
			return 0, render.Toggles{}, err
		}
	}

	if t.Categories, err = station.ParseVisibility(values.Get("categories")); err != nil {
		return 0, render.Toggles{}, &paramError{name: "categories", err: err}
	}
	return zoom, t, nil
}
