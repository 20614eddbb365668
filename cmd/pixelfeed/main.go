package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/junsooki/pixelviz/internal/config"
	"github.com/junsooki/pixelviz/internal/feed"
)

func main() {
	cfg, err := config.ParseFeedFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := config.NewLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	slog.SetDefault(logger)

	logger.Info("pixelfeed starting",
		"addr", cfg.Addr,
		"pattern", cfg.Pattern,
		"fps", cfg.FPS,
		"grid", fmt.Sprintf("%dx%d", cfg.GridColumns, cfg.GridRows),
	)

	srv, err := feed.NewServer(feed.Options{
		FPS: cfg.FPS,
		Grid: feed.GridConfig{
			Columns: cfg.GridColumns,
			Rows:    cfg.GridRows,
			OriginX: cfg.GridOriginX,
			OriginY: cfg.GridOriginY,
			Spacing: cfg.GridSpacing,
		},
		PreviewWidth:  cfg.PreviewWidth,
		PreviewHeight: cfg.PreviewHeight,
	}, feed.DefaultPatterns(), cfg.Pattern, logger)
	if err != nil {
		logger.Error("failed to create feed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stepped := make(chan struct{})
	go func() {
		defer close(stepped)
		srv.Run(ctx)
	}()

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Handler(),
	}
	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown", "error", err)
		}
	}()

	logger.Info("starting webserver")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server", "error", err)
		os.Exit(1)
	}
	<-stepped
}
