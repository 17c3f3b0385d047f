package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
)

func updateCommand() *cli.Command {
	return &cli.Command{
		Name:   "update",
		Usage:  "Fetch the station list and store it as a snapshot",
		Flags:  queryFlags(),
		Action: updateAction,
	}
}

func updateAction(c *cli.Context) error {
	q := queryFromFlags(c)
	stations, err := loadStations(c, q, false)
	if err != nil {
		return err
	}

	storage, err := openStorage(c, newLogger(c))
	if err != nil {
		return err
	}
	defer storage.Close()

	id, err := storage.SaveSnapshot(c.Context, q, time.Now(), stations)
	if err != nil {
		return err
	}
	fmt.Printf(messages(c).SnapshotSaved+"\n", id, len(stations))
	return nil
}
