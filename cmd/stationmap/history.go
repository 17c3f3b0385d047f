package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
)

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List stored snapshots and optionally prune old ones",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Number of snapshots to list, 0 for all",
				Value: 20,
			},
			&cli.IntFlag{
				Name:  "prune-days",
				Usage: "Delete snapshots older than this many days",
			},
		},
		Action: historyAction,
	}
}

func historyAction(c *cli.Context) error {
	storage, err := openStorage(c, newLogger(c))
	if err != nil {
		return err
	}
	defer storage.Close()

	if days := c.Int("prune-days"); days > 0 {
		deleted, err := storage.DeleteSnapshotsBefore(c.Context, time.Now().AddDate(0, 0, -days))
		if err != nil {
			return err
		}
		if err := storage.VacuumDatabase(c.Context); err != nil {
			return err
		}
		fmt.Printf(messages(c).SnapshotsDeleted+"\n", deleted, days)
	}

	infos, err := storage.Snapshots(c.Context, c.Int("limit"))
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println(messages(c).NoSnapshots)
		return nil
	}
	for _, info := range infos {
		fmt.Printf("%d  %s  bukrs=%s matnr=%s  %d stations\n",
			info.ID, info.FetchedAt.Local().Format(time.DateTime), info.Bukrs, info.Matnr, info.Count)
	}
	return nil
}
