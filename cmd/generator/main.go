// Command generator is the synthetic stream emitter described in spec.md
// §6: it drives a fresh order book with a seeded, randomized event source,
// uncrossing as it goes, and prints the resulting legal event stream to
// stdout. Usage: generator <seed> <num_events>.
package main

import (
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"limitbook/internal/book"
	"limitbook/internal/config"
	"limitbook/internal/generator"
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) != 3 {
		log.Error().Str("usage", "generator <seed> <num_events>").Msg("wrong number of arguments")
		return 1
	}

	seed, err := strconv.ParseInt(os.Args[1], 10, 64)
	if err != nil {
		log.Error().Err(err).Str("arg", os.Args[1]).Msg("seed must be an integer")
		return 1
	}
	numEvents, err := strconv.Atoi(os.Args[2])
	if err != nil || numEvents < 0 {
		log.Error().Err(err).Str("arg", os.Args[2]).Msg("num_events must be a non-negative integer")
		return 1
	}

	runID := uuid.New()
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Str("run_id", runID.String()).Logger()

	cfg, err := config.Load(os.Getenv("LIMITBOOK_CONFIG"))
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
		return 1
	}
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("invalid config")
		return 1
	}

	g := generator.New(book.New(), seed, os.Stdout,
		generator.WithLogger(log.Logger),
		generator.WithPriceSpread(cfg.Generator.PriceSpread),
		generator.WithTickDecimals(cfg.Generator.TickDecimals),
		generator.WithStartingMidpoint(cfg.Generator.StartingMidpoint),
	)

	log.Info().Int64("seed", seed).Int("num_events", numEvents).Msg("generator starting")
	g.Run(numEvents)
	log.Info().Msg("generator finished")
	return 0
}
