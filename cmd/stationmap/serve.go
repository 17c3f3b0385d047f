package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v2"
	"github.com/urfave/cli/v2"

	"github.com/rubiojr/stationmap/internal/geocode"
	"github.com/rubiojr/stationmap/internal/server"
	"github.com/rubiojr/stationmap/internal/station"
	"github.com/rubiojr/stationmap/internal/stationdb"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address",
				Value: "127.0.0.1:8080",
			},
			&cli.IntFlag{
				Name:  "rate-limit",
				Usage: "Requests per minute and IP, negative to disable",
				Value: server.DefaultRateLimit,
			},
			&cli.StringSliceFlag{
				Name:    "cors-origin",
				Usage:   "Allow browser requests from this origin (repeatable)",
				EnvVars: []string{"STATIONMAP_CORS_ORIGINS"},
			},
			&cli.DurationFlag{
				Name:  "update-interval",
				Usage: "Store a snapshot of --bukrs/--matnr this often, 0 to disable",
			},
			&cli.StringFlag{
				Name:  "bukrs",
				Usage: "Company code for periodic snapshots",
			},
			&cli.StringFlag{
				Name:  "matnr",
				Usage: "Product code for periodic snapshots",
			},
		},
		Action: serveAction,
	}
}

func serveAction(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	level := slog.LevelInfo
	if c.Bool("debug") {
		level = slog.LevelDebug
	}
	logger := httplog.NewLogger("stationmap", httplog.Options{
		JSON:            false,
		LogLevel:        level,
		Concise:         true,
		QuietDownPeriod: 10 * time.Second,
	})

	client, err := newClient(c)
	if err != nil {
		return err
	}

	storage, err := stationdb.NewStorage(ctx, c.String("db"), logger.Logger)
	if err != nil {
		return err
	}
	defer storage.Close()

	if interval := c.Duration("update-interval"); interval > 0 {
		q := station.Query{Bukrs: c.String("bukrs"), Matnr: c.String("matnr")}
		go updateLoop(ctx, station.NewStore(client, logger.Logger), storage, q, interval, logger.Logger)
	}

	srv := server.New(server.Config{
		Upstream:  client,
		Storage:   storage,
		Geocoder:  geocode.New(geocode.WithLogger(logger.Logger)),
		Logger:    logger,
		RateLimit: c.Int("rate-limit"),

		AllowedOrigins: c.StringSlice("cors-origin"),
	})
	return srv.ListenAndServe(ctx, c.String("addr"))
}

// updateLoop stores a snapshot right away and then on every tick.
func updateLoop(ctx context.Context, store *station.Store, storage *stationdb.Storage, q station.Query, interval time.Duration, log *slog.Logger) {
	defer store.Close()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		stations, err := store.Fetch(ctx, q)
		if err != nil {
			log.Error("Error updating stations", "error", err)
		} else if _, err := storage.SaveSnapshot(ctx, q, time.Now(), stations); err != nil {
			log.Error("Error saving snapshot", "error", err)
		} else {
			log.Info("Station snapshot stored", "stations", len(stations))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
