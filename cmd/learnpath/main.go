package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jrsteele09/learnpath-client/internal/cli"
	"github.com/jrsteele09/learnpath-client/internal/config"
	"github.com/jrsteele09/learnpath-client/internal/logging"
	"github.com/rs/zerolog/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	c, err := config.New()
	if err != nil {
		log.Err(err).Msg("Failed to load configuration")
		return err
	}
	logging.Setup(c, os.Stderr)

	var app *cli.App
	load := func(ctx context.Context) (*cli.App, error) {
		if app != nil {
			return app, nil
		}
		app, err = cli.NewApp(ctx, c)
		return app, err
	}
	defer func() {
		if app != nil {
			if err := app.Close(); err != nil {
				log.Err(err).Msg("Failed to close session storage")
			}
		}
	}()

	return cli.Execute(ctx, cli.NewRootCommand(load), os.Stderr)
}
