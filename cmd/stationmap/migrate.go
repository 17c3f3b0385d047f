package main

import (
	"github.com/urfave/cli/v2"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:   "migrate",
		Usage:  "Create or upgrade the snapshot database schema",
		Action: migrateAction,
	}
}

func migrateAction(c *cli.Context) error {
	storage, err := openStorage(c, newLogger(c))
	if err != nil {
		return err
	}
	return storage.Close()
}
