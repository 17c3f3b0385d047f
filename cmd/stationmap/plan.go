package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/rubiojr/stationmap/internal/export"
	"github.com/rubiojr/stationmap/internal/mapview"
	"github.com/rubiojr/stationmap/internal/render"
	"github.com/rubiojr/stationmap/internal/station"
)

func planCommand() *cli.Command {
	return &cli.Command{
		Name:  "plan",
		Usage: "Compute the map render plan for a station set",
		Flags: append(queryFlags(),
			&cli.IntFlag{
				Name:  "zoom",
				Usage: "Map zoom level",
				Value: mapview.DefaultZoom,
			},
			&cli.BoolFlag{
				Name:  "lines",
				Usage: "Show connector lines to the nearest stations",
			},
			&cli.BoolFlag{
				Name:  "text",
				Usage: "Show station names",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "delta",
				Usage: "Show price changes",
			},
			&cli.BoolFlag{
				Name:  "regional",
				Usage: "Show regional price comparison",
			},
			&cli.StringFlag{
				Name:  "categories",
				Usage: "Comma separated categories to show (PLX,PVOIL,TNNQ,DTM,OTHER)",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: json, geojson or gpx",
				Value: "json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file, stdout when empty",
			},
			&cli.BoolFlag{
				Name:  "offline",
				Usage: "Read the last stored snapshot instead of the endpoint",
			},
		),
		Action: planAction,
	}
}

func planAction(c *cli.Context) error {
	zoom := c.Int("zoom")
	if zoom < render.MinZoom || zoom > render.MaxZoom {
		return fmt.Errorf("zoom must be between %d and %d", render.MinZoom, render.MaxZoom)
	}
	categories, err := station.ParseVisibility(c.String("categories"))
	if err != nil {
		return err
	}
	toggles := render.Toggles{
		ShowConnectorLines:     c.Bool("lines"),
		ShowStationText:        c.Bool("text"),
		ShowPriceDelta:         c.Bool("delta"),
		ShowPriceDeltaRegional: c.Bool("regional"),
		Categories:             categories,
	}

	q := queryFromFlags(c)
	stations, err := loadStations(c, q, c.Bool("offline"))
	if err != nil {
		return err
	}
	plan, camera := mapview.Frame(stations, q.StationID, zoom, toggles)

	var data []byte
	switch c.String("format") {
	case "json":
		data, err = json.MarshalIndent(struct {
			Plan   render.Plan         `json:"plan"`
			Camera *mapview.CameraMove `json:"camera,omitempty"`
		}{plan, camera}, "", "  ")
	case "geojson":
		data, err = export.GeoJSON(plan)
	case "gpx":
		data, err = export.EncodeGPX(export.GPX(plan))
	default:
		return fmt.Errorf("unknown format %q", c.String("format"))
	}
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if path := c.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("error creating %s: %w", path, err)
		}
		defer f.Close()
		out = f
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
