package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/rubiojr/stationmap/internal/station"
	"github.com/rubiojr/stationmap/internal/stationdb"
	"github.com/rubiojr/stationmap/internal/translations"
	"github.com/rubiojr/stationmap/pkg/rpc"
)

const defaultDB = "stations.db"

func main() {
	// .env is optional
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "stationmap",
		Usage: "Browse fuel stations, nearest neighbors and map render plans",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Usage:   "RPC endpoint URL",
				EnvVars: []string{"STATIONMAP_URL"},
			},
			&cli.StringFlag{
				Name:    "user",
				Usage:   "RPC basic auth user",
				EnvVars: []string{"STATIONMAP_USER"},
			},
			&cli.StringFlag{
				Name:    "password",
				Usage:   "RPC basic auth password",
				EnvVars: []string{"STATIONMAP_PASSWORD"},
			},
			&cli.StringFlag{
				Name:    "db",
				Usage:   "Database file",
				EnvVars: []string{"STATIONMAP_DB"},
				Value:   defaultDB,
			},
			&cli.StringFlag{
				Name:    "lang",
				Usage:   "Output language (vi, en)",
				EnvVars: []string{"STATIONMAP_LANG"},
				Value:   "vi",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Log debug output to stderr",
			},
		},
		Commands: []*cli.Command{
			stationsCommand(),
			nearbyCommand(),
			planCommand(),
			updateCommand(),
			historyCommand(),
			migrateCommand(),
			submitLocationCommand(),
			serveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func queryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "bukrs",
			Usage: "Company code",
		},
		&cli.StringFlag{
			Name:  "matnr",
			Usage: "Product code",
		},
		&cli.StringFlag{
			Name:  "chxd-id",
			Usage: "Target station id",
		},
	}
}

func queryFromFlags(c *cli.Context) station.Query {
	return station.Query{
		Bukrs:     c.String("bukrs"),
		Matnr:     c.String("matnr"),
		StationID: c.String("chxd-id"),
	}
}

func messages(c *cli.Context) translations.Translations {
	return translations.GetTranslations(c.String("lang"))
}

func newLogger(c *cli.Context) *slog.Logger {
	if c.Bool("debug") {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.DiscardHandler)
}

func newClient(c *cli.Context) (*rpc.Client, error) {
	endpoint := c.String("url")
	if endpoint == "" {
		return nil, errors.New("RPC endpoint is required (--url or STATIONMAP_URL)")
	}
	return rpc.NewClient(endpoint, c.String("user"), c.String("password")), nil
}

func openStorage(c *cli.Context, logger *slog.Logger) (*stationdb.Storage, error) {
	storage, err := stationdb.NewStorage(c.Context, c.String("db"), logger)
	if err != nil {
		return nil, fmt.Errorf("error initializing storage: %w", err)
	}
	return storage, nil
}

// loadStations fetches the working set from upstream, or from the last
// stored snapshot when offline is set.
func loadStations(c *cli.Context, q station.Query, offline bool) ([]station.Station, error) {
	logger := newLogger(c)

	if offline {
		storage, err := openStorage(c, logger)
		if err != nil {
			return nil, err
		}
		defer storage.Close()

		snap, err := storage.LastSnapshot(c.Context, q)
		if err != nil {
			return nil, err
		}
		logger.Debug("Using snapshot", "id", snap.ID, "fetched_at", snap.FetchedAt)
		return snap.Stations, nil
	}

	client, err := newClient(c)
	if err != nil {
		return nil, err
	}
	store := station.NewStore(client, logger)
	defer store.Close()
	return store.Fetch(c.Context, q)
}
