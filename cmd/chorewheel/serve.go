package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/chorewheel/internal/digest"
	"github.com/dukerupert/chorewheel/internal/server"
	ws "github.com/dukerupert/chorewheel/internal/websocket"
)

const (
	shutdownTimeout = 5 * time.Second
	limiterSweep    = 5 * time.Minute
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, event feed and due digest",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub(a.logger.With("component", "websocket"))
	srv := server.New(a.db, a.svc, hub, server.Options{
		RequestTimeout: a.cfg.HTTP.RequestTimeout,
		RatePerSec:     a.cfg.HTTP.RatePerSec,
		RateBurst:      a.cfg.HTTP.RateBurst,
	}, a.logger)

	httpServer := &http.Server{
		Addr:              a.cfg.HTTP.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("chorewheel listening", "addr", a.cfg.HTTP.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(limiterSweep)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				srv.RateLimiter().Cleanup(limiterSweep)
			}
		}
	})

	if a.cfg.Digest.Enabled {
		sched := digest.NewScheduler(a.svc, hub, a.cfg.Digest.Schedule, a.loc, a.logger.With("component", "digest"))
		if err := sched.Start(gctx); err != nil {
			stop()
			g.Wait()
			return err
		}
		g.Go(func() error {
			<-gctx.Done()
			sched.Stop()
			return nil
		})
	}

	return g.Wait()
}
