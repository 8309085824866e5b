package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"mado/config"
	"mado/experiments"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	name := flag.String("experiment", "throughput", "experiment to run: throughput, strength or playouts")
	games := flag.Int("games", experiments.NumGames, "games per matchup")
	budget := flag.Duration("budget", experiments.TimeBudget, "search time per move")
	parallel := flag.Int("parallel", 1, "games played at once")
	sample := flag.Int("sample", 0, "record the position every n moves (0 disables)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	level, _ := cfg.Level()
	zerolog.SetGlobalLevel(level)
	zerolog.DefaultContextLogger = &log.Logger

	var exp experiments.Experiment
	switch *name {
	case "throughput":
		exp = experiments.Throughput(*budget)
	case "strength":
		exp = experiments.Strength(*budget)
	case "playouts":
		exp = experiments.Playouts(*budget, cfg.Goroutines)
	default:
		log.Fatal().Msgf("unknown experiment %q", *name)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := experiments.Runner{
		Radius:      cfg.Radius,
		Games:       *games,
		Parallel:    *parallel,
		OutputDir:   cfg.OutputDir,
		SampleEvery: *sample,
		Seed:        cfg.Seed,
		Options:     cfg.SearchOptions(),

		MemoryFraction: cfg.MemoryFraction,
	}
	results, err := runner.Run(ctx, exp)
	if err != nil {
		log.Fatal().Err(err).Msg("experiment failed")
	}
	log.Info().Msgf("wrote %d games to %s", len(results.Games), results.Dir)
}
