package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/rubiojr/stationmap/internal/station"
)

func submitLocationCommand() *cli.Command {
	return &cli.Command{
		Name:  "submit-location",
		Usage: "Send the measured coordinates of a station",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "chxd-id",
				Usage:    "Station id",
				Required: true,
			},
			&cli.Float64Flag{
				Name:     "lat",
				Usage:    "Latitude",
				Required: true,
			},
			&cli.Float64Flag{
				Name:     "long",
				Usage:    "Longitude",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "type",
				Usage: "Submission type: 01 entered by hand, 02 device position",
				Value: station.SubmitDefault,
			},
		},
		Action: submitLocationAction,
	}
}

func submitLocationAction(c *cli.Context) error {
	logger := newLogger(c)
	sub := station.Submission{
		StationID: c.String("chxd-id"),
		Lat:       c.Float64("lat"),
		Lng:       c.Float64("long"),
		Type:      c.String("type"),
	}
	if err := sub.Validate(); err != nil {
		return err
	}

	client, err := newClient(c)
	if err != nil {
		return err
	}
	submitErr := station.SubmitLocation(c.Context, client, sub)

	storage, err := openStorage(c, logger)
	if err != nil {
		return errors.Join(submitErr, err)
	}
	defer storage.Close()

	id, err := storage.LogSubmission(c.Context, sub, submitErr)
	if err != nil {
		logger.Warn("Error logging submission", "error", err)
	}
	if submitErr != nil {
		return submitErr
	}
	fmt.Printf(messages(c).LocationSubmitted+"\n", sub.StationID, id)
	return nil
}
