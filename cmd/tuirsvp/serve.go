package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuirsvp/internal/broadcast"
	"github.com/verte-zerg/tuirsvp/internal/config"
	"github.com/verte-zerg/tuirsvp/internal/engine"
	"github.com/verte-zerg/tuirsvp/internal/ingest"
	"github.com/verte-zerg/tuirsvp/internal/model"
	"github.com/verte-zerg/tuirsvp/internal/stats"
	"github.com/verte-zerg/tuirsvp/internal/store"
)

const (
	defaultServeAddr = "127.0.0.1:8080"
	shutdownTimeout  = 5 * time.Second
)

var serveAddr string

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Present the text to browsers over WebSocket",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultServeAddr, "listen address")
	addReaderFlags(cmd)
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadReaderConfig(cmd)
	if err != nil {
		return err
	}
	text := sampleText
	if readFile != "" {
		text, err = ingest.LoadText(readFile)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", readFile, err)
		}
	}

	logger, closeLog, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeLog(); cerr != nil {
			// Best-effort close of the log file.
			_ = cerr
		}
	}()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Error("failed to close db", "err", cerr)
		}
	}()

	session, err := engine.NewSession(cfg.WPM,
		engine.WithCountdownStep(cfg.CountdownStep),
		engine.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	player := engine.NewPlayer(session, engine.WithPlayerLogger(logger))
	hub := broadcast.NewHub(player, logger)
	tracker := stats.NewTracker(cfg.Source, nil)
	save := func(reading model.ReadingStats) {
		if reading.WordsRead == 0 {
			return
		}
		if _, err := st.InsertReading(context.Background(), reading); err != nil {
			logger.Error("failed to save reading", "err", err)
		}
	}

	consumed := make(chan struct{})
	go func() {
		defer close(consumed)
		for snap := range player.Updates() {
			hub.Publish(snap)
			if reading, ok := tracker.Observe(snap); ok {
				save(reading)
			}
		}
	}()
	runErr := make(chan error, 1)
	go func() {
		runErr <- player.Run(ctx)
	}()
	if err := player.SetText(ctx, text); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/", broadcast.PageHandler())
	mux.Handle("/ws", hub)
	srv := &http.Server{
		Addr:              serveAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()
	logger.Info("serving", "addr", serveAddr)
	logErrf("Serving on http://%s (ctrl+c to stop)\n", serveAddr)

	select {
	case <-ctx.Done():
	case err = <-serveErr:
		stop()
	}
	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		logger.Error("failed to shut down server", "err", serr)
	}
	if rerr := <-runErr; rerr != nil && !errors.Is(rerr, context.Canceled) {
		logger.Error("player stopped", "err", rerr)
	}
	<-consumed
	if reading, ok := tracker.Flush(); ok {
		save(reading)
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}
