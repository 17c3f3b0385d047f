package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/rubiojr/stationmap/internal/export"
	"github.com/rubiojr/stationmap/internal/geocode"
	"github.com/rubiojr/stationmap/internal/render"
	"github.com/rubiojr/stationmap/internal/station"
)

func nearbyCommand() *cli.Command {
	return &cli.Command{
		Name:  "nearby",
		Usage: "List the stations nearest to a station, a place or a coordinate",
		Flags: append(queryFlags(),
			&cli.StringFlag{
				Name:  "location",
				Usage: "Place name to search around",
			},
			&cli.Float64Flag{
				Name:  "lat",
				Usage: "Latitude of the location",
			},
			&cli.Float64Flag{
				Name:  "long",
				Usage: "Longitude of the location",
			},
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"k"},
				Usage:   "Number of stations to list",
				Value:   station.DefaultNeighbors,
			},
			&cli.StringFlag{
				Name:  "gpx",
				Usage: "Write the result as GPX waypoints to this file",
			},
			&cli.BoolFlag{
				Name:  "offline",
				Usage: "Read the last stored snapshot instead of the endpoint",
			},
		),
		Action: nearbyAction,
	}
}

func nearbyAction(c *cli.Context) error {
	q := queryFromFlags(c)
	lat, lng := c.Float64("lat"), c.Float64("long")
	loc := c.String("location")

	if loc == "" && q.StationID == "" && lat == 0 && lng == 0 {
		return errors.New("chxd-id, location or latitude and longitude are required")
	}

	stations, err := loadStations(c, q, c.Bool("offline"))
	if err != nil {
		return err
	}

	msg := messages(c)
	var (
		origin    station.Point
		neighbors []station.Neighbor
	)
	switch {
	case loc != "":
		place, err := geocode.New(geocode.WithLogger(newLogger(c))).Lookup(loc)
		if err != nil {
			return err
		}
		fmt.Println(msg.LocationFound, place.Name)
		origin = place.Point
		neighbors = station.NearestPoint(origin, stations, c.Int("count"))
	case lat != 0 || lng != 0:
		origin = station.Point{Lat: lat, Lng: lng}
		neighbors = station.NearestPoint(origin, stations, c.Int("count"))
	default:
		target, ok := station.Target(stations, q.StationID)
		if !ok {
			return fmt.Errorf("station %s not found", q.StationID)
		}
		fmt.Printf(msg.NearestTo+"\n", target.Title, target.ID)
		origin = target.Point()
		neighbors = station.Nearest(target, stations, c.Int("count"))
	}

	for i, n := range neighbors {
		address := n.Station.Address
		if address == "" {
			address = msg.NotAvailable
		}
		fmt.Printf("%d. %s (%s)\n", i+1, n.Station.Title, address)
		fmt.Printf("   %s: %s\n", msg.Category, msg.CategoryLabel(n.Station.Category()))
		fmt.Printf("   %s: %s\n", msg.Distance, render.FormatDistance(n.DistanceKm))
		if n.PriceDelta != nil {
			fmt.Printf("   %s: %+.0f\n", msg.PriceDifference, *n.PriceDelta)
		}
		fmt.Printf("   %s: %f, %f\n\n", msg.Coordinates, n.Station.Lat, n.Station.Lng)
	}
	fmt.Printf(msg.StationsFound+"\n", len(neighbors))

	if path := c.String("gpx"); path != "" {
		data, err := export.EncodeGPX(export.NeighborsGPX(origin, neighbors))
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("error writing %s: %w", path, err)
		}
	}
	return nil
}
