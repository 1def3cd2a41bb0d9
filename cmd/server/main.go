package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/woozymasta/gradetool/internal/config"
	"github.com/woozymasta/gradetool/internal/logger"
	"github.com/woozymasta/gradetool/internal/observability"
	"github.com/woozymasta/gradetool/internal/server"
	"github.com/woozymasta/gradetool/internal/session"
	"github.com/woozymasta/gradetool/internal/storage"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config"  env:"CONFIG_FILE"    description:"Path to configuration file (optional)"`
	Database   string `short:"d" long:"db"      env:"SURVEY_DB"      description:"SQLite database path, overrides storage.path"`
	Addr       string `short:"a" long:"addr"    env:"LISTEN_ADDRESS" description:"Address to listen on, overrides server.addr"`
	Port       int    `short:"p" long:"port"    env:"LISTEN_PORT"    description:"Port to listen on, overrides server.port"`
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

	// Setup Logging
	opts.Logger.Setup()

	// Load Config
	cfg := config.Default()
	if opts.ConfigFile != "" {
		var err error
		if cfg, err = config.Load(opts.ConfigFile); err != nil {
			log.Fatal().Err(err).Str("path", opts.ConfigFile).Msg("Failed to load configuration")
		}
	}
	if opts.Database != "" {
		cfg.Storage.Path = opts.Database
	}
	if opts.Addr != "" {
		cfg.Server.Addr = opts.Addr
	}
	if opts.Port > 0 {
		cfg.Server.Port = opts.Port
	}

	db, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Storage.Path).Msg("Failed to open storage")
	}
	defer db.Close()

	collector, err := observability.NewSurveyCollector(nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to register metrics")
	}

	sess, err := session.Open(context.Background(), db, cfg.Storage.Key, collector)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to restore survey")
	}

	srvCtx := server.NewServerContext(cfg, sess, collector)
	handler := server.RequestLogger(srvCtx.Routes())

	listenAddr := fmt.Sprintf("%s:%d", cfg.Server.Addr, cfg.Server.Port)
	log.Info().
		Str("addr", listenAddr).
		Str("db", cfg.Storage.Path).
		Int("sightings", sess.Snapshot().Len()).
		Msg("Web server started")

	if err := http.ListenAndServe(listenAddr, handler); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
