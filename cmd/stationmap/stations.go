package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/rubiojr/stationmap/internal/station"
)

func stationsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stations",
		Usage: "List stations and their category breakdown",
		Flags: append(queryFlags(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print stations as JSON",
			},
			&cli.BoolFlag{
				Name:  "offline",
				Usage: "Read the last stored snapshot instead of the endpoint",
			},
		),
		Action: stationsAction,
	}
}

func stationsAction(c *cli.Context) error {
	stations, err := loadStations(c, queryFromFlags(c), c.Bool("offline"))
	if err != nil {
		return err
	}

	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stations)
	}

	msg := messages(c)
	for i, s := range stations {
		fmt.Printf("%d. %s [%s] (%s)\n", i+1, s.Title, s.ID, msg.CategoryLabel(s.Category()))
		if s.Address != "" {
			fmt.Printf("   %s: %s\n", msg.Address, s.Address)
		}
		if s.Price != nil {
			fmt.Printf("   %s: %.0f\n", msg.Price, *s.Price)
		}
		fmt.Printf("   %s: %f, %f\n\n", msg.Coordinates, s.Lat, s.Lng)
	}

	fmt.Printf(msg.StationsFound+"\n", len(stations))
	for _, g := range station.Group(stations) {
		fmt.Printf("   %-14s %d\n", msg.CategoryLabel(g.Category), len(g.Stations))
	}
	return nil
}
