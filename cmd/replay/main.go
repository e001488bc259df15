package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"marketsim/internal/config"
	"marketsim/internal/replay"
)

func main() {
	configPath := flag.String("config", "", "Path to the YAML configuration")
	in := flag.String("in", "", "Checkpoint snapshot to replay (compulsory)")
	out := flag.String("out", "", "Report stream path, overrides report.path")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load configuration")
	}
	if *out != "" {
		cfg.Report.Path = *out
	}
	setupLogging(cfg.Log)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	if _, err := replay.New(cfg).Run(ctx, *in); err != nil {
		log.Error().Err(err).Str("in", *in).Msg("replay failed")
		stop()
		os.Exit(1)
	}
}

func setupLogging(cfg config.Log) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
