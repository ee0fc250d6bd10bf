// Command feedhandler is the file-reading driver described in spec.md §6:
// it reads a line-oriented CSV market-data file, applies every line to an
// order book, and prints a per-line derived view followed by a shutdown
// stats dump. Usage: feedhandler <path>.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"limitbook/internal/config"
	"limitbook/internal/feed"
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) != 2 {
		log.Error().Str("usage", "feedhandler <path>").Msg("wrong number of arguments")
		return 1
	}
	path := os.Args[1]

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

	f, err := os.Open(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("unable to open input file")
		return 1
	}
	defer f.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	t, ctx := tomb.WithContext(ctx)

	h := feed.New(os.Stdout,
		feed.WithTickDecimals(cfg.Feed.TickDecimals),
		feed.WithPrintFrequency(cfg.Feed.PrintFrequency),
		feed.WithLogger(log.Logger),
	)

	t.Go(func() error {
		shouldContinue := func() bool {
			select {
			case <-t.Dying():
				return false
			default:
				return true
			}
		}
		return h.Run(f, shouldContinue)
	})

	<-ctx.Done()
	if err := t.Wait(); err != nil {
		log.Error().Err(err).Msg("feed handler exited with error")
		h.WriteStats(os.Stdout)
		return 1
	}

	h.WriteStats(os.Stdout)
	log.Info().Int("parse_failures", h.ParseFailures()).Msg("feed handler finished")
	return 0
}
