package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/junsooki/pixelviz/internal/config"
	"github.com/junsooki/pixelviz/internal/connection"
	"github.com/junsooki/pixelviz/internal/display"
	"github.com/junsooki/pixelviz/internal/display/window"
	"github.com/junsooki/pixelviz/internal/encoder"
	"github.com/junsooki/pixelviz/internal/render"
	"github.com/junsooki/pixelviz/internal/surface"
)

func main() {
	cfg, err := config.ParseVisualizerFlags(os.Args[1:])
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

	logger.Info("pixelviz visualizer starting",
		"url", cfg.URL,
		"reconnect", cfg.Reconnect,
		"reconnect_delay", cfg.ReconnectDelay,
		"surface", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"block_size", cfg.BlockSize,
		"display", cfg.Display,
	)

	surf := surface.New(cfg.Width, cfg.Height)
	renderer := render.New(surf, render.Options{
		BlockSize: cfg.BlockSize,
		Alpha:     uint8(cfg.Alpha),
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mgr := connection.NewManager(connection.Config{
		URL:            cfg.URL,
		Reconnect:      cfg.Reconnect,
		ReconnectDelay: cfg.ReconnectDelay,
	}, connection.Handler{
		OnMessage: renderer.HandleMessage,
	}, logger)

	if err := mgr.Connect(ctx); err != nil {
		if !cfg.Reconnect {
			logger.Error("failed to connect", "error", err)
			os.Exit(1)
		}
		logger.Warn("initial connect failed, retrying", "error", err, "delay", cfg.ReconnectDelay)
	}

	disp, err := newDisplay(cfg, surf, logger)
	if err != nil {
		mgr.Close()
		logger.Error("failed to create display", "error", err)
		os.Exit(1)
	}

	// Ebitengine RunGame must be on the main goroutine (macOS requirement).
	runErr := disp.Run(ctx)

	mgr.Close()

	if cfg.Snapshot != "" {
		img, _ := surf.Snapshot()
		if err := encoder.WriteFile(encoder.NewPNGEncoder(false), cfg.Snapshot, img); err != nil {
			logger.Error("failed to write snapshot", "error", err)
		} else {
			logger.Info("snapshot written", "path", cfg.Snapshot, "frames", surf.Version())
		}
	}

	if runErr != nil {
		logger.Error("display", "error", runErr)
		os.Exit(1)
	}
	logger.Info("shut down")
}

func newDisplay(cfg *config.VisualizerConfig, surf *surface.Surface, logger *slog.Logger) (display.Display, error) {
	switch cfg.Display {
	case display.KindWindow:
		return window.New(surf, "pixelviz", cfg.Scale), nil
	case display.KindTerminal:
		return display.NewTerminal(surf, nil, cfg.FPS, logger)
	case display.KindNone:
		return display.NewHeadless(surf, 0, logger), nil
	}
	return nil, fmt.Errorf("unknown display %q", cfg.Display)
}
