package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/learnpath-client/auth/google"
	"github.com/jrsteele09/learnpath-client/internal/config"
	"github.com/jrsteele09/learnpath-client/internal/logging"
	"github.com/jrsteele09/learnpath-client/server"
	"github.com/jrsteele09/learnpath-client/server/datarepo"
	"github.com/jrsteele09/learnpath-client/services/comment"
	fakeuserrepo "github.com/jrsteele09/learnpath-client/users/repofake"
	"github.com/rs/zerolog/log"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return err
	}
	logging.Setup(c, os.Stderr)
	displayAppname(c.GetAppName() + " API")

	handler, err := newHandler(c)
	if err != nil {
		return err
	}
	httpServer := &http.Server{Addr: c.GetDevAPIPort(), Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errs := make(chan error, 1)
	go func() { errs <- listenAndServe(httpServer) }()

	if err := waitForStopSignal(errs); err != nil {
		return err
	}
	return shutdown(httpServer)
}

func newHandler(c config.Config) (http.Handler, error) {
	var opts []server.Option
	if clientID := c.GetGoogleClientID(); clientID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		verifier, err := google.NewVerifier(ctx, clientID)
		if err != nil {
			return nil, fmt.Errorf("failed to create google verifier: %w", err)
		}
		opts = append(opts, server.WithGoogleVerifier(verifier))
	}

	blockList, err := comment.NewPatternBlockList(c.GetSpamPatterns()...)
	if err != nil {
		return nil, err
	}
	opts = append(opts, server.WithBlockList(blockList))

	return server.New(c, fakeuserrepo.NewFakeUserRepo(), datarepo.NewInMemoryRepos(), opts...)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

// waitForStopSignal blocks until a stop signal arrives or the listener fails.
func waitForStopSignal(errs <-chan error) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)
	select {
	case <-stop:
		return nil
	case err := <-errs:
		return err
	}
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
