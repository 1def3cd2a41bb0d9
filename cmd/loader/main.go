package main

import (
	"context"
	"os"

	"github.com/woozymasta/gradetool/internal/config"
	"github.com/woozymasta/gradetool/internal/logger"
	"github.com/woozymasta/gradetool/internal/session"
	"github.com/woozymasta/gradetool/internal/storage"
	"github.com/woozymasta/gradetool/internal/survey"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config" env:"CONFIG_FILE" description:"Path to configuration file (optional)"`
	Database   string `short:"d" long:"db"     env:"SURVEY_DB"   description:"SQLite database path, overrides storage.path"`
	Key        string `short:"k" long:"key"    env:"SURVEY_KEY"  description:"Blob key, overrides storage.key"`
	Force      bool   `short:"f" long:"force"  description:"Replace the stored survey instead of appending"`

	Args struct {
		Tables []string `positional-arg-name:"table.csv" required:"1"`
	} `positional-args:"yes"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg := config.Default()
	if opts.ConfigFile != "" {
		var err error
		if cfg, err = config.Load(opts.ConfigFile); err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}
	}
	if opts.Database != "" {
		cfg.Storage.Path = opts.Database
	}
	if opts.Key != "" {
		cfg.Storage.Key = opts.Key
	}

	ctx := context.Background()

	db, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Storage.Path).Msg("Failed to open storage")
	}
	defer db.Close()

	sess, err := session.Open(ctx, db, cfg.Storage.Key, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to restore survey")
	}

	log.Info().
		Str("db", cfg.Storage.Path).
		Str("key", cfg.Storage.Key).
		Int("tables", len(opts.Args.Tables)).
		Int("stored", sess.Snapshot().Len()).
		Bool("force", opts.Force).
		Msg("Starting loader")

	var loaded []survey.Sighting
	for _, path := range opts.Args.Tables {
		f, err := os.Open(path)
		if err != nil {
			log.Fatal().Err(err).Str("table", path).Msg("Failed to open table")
		}
		sightings, err := survey.ReadTable(f)
		_ = f.Close()
		if err != nil {
			log.Fatal().Err(err).Str("table", path).Msg("Failed to read table")
		}

		log.Debug().Str("table", path).Int("sightings", len(sightings)).Msg("Table read")
		loaded = append(loaded, sightings...)
	}

	op := survey.Append(loaded)
	if opts.Force {
		op = survey.Replace(loaded)
	}

	stats, err := sess.Apply(ctx, op)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to store survey")
	}

	ev := log.Info().
		Int("sightings", sess.Snapshot().Len()).
		Float64("path_distance_m", stats.PathDistance).
		Float64("elevation_gain_m", stats.ElevationGain)
	if stats.Target != nil {
		ev = ev.Float64("convergence_altitude_m", stats.ConvergenceAltitude)
	}
	ev.Msg("Loader finished successfully")
}
