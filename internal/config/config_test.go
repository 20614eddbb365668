package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestParseVisualizerFlagsDefaults(t *testing.T) {
	cfg, err := ParseVisualizerFlags(nil)
	if err != nil {
		t.Fatalf("ParseVisualizerFlags failed: %v", err)
	}

	if cfg.URL != DefaultURL {
		t.Errorf("URL = %q, want %q", cfg.URL, DefaultURL)
	}
	if !cfg.Reconnect {
		t.Error("Reconnect = false, want true")
	}
	if cfg.ReconnectDelay != 5*time.Second {
		t.Errorf("ReconnectDelay = %v, want 5s", cfg.ReconnectDelay)
	}
	if cfg.BlockSize != 3 || cfg.Alpha != 255 {
		t.Errorf("BlockSize/Alpha = %d/%d, want 3/255", cfg.BlockSize, cfg.Alpha)
	}
	if cfg.Display != "window" {
		t.Errorf("Display = %q, want window", cfg.Display)
	}
}

func TestParseVisualizerFlags(t *testing.T) {
	cfg, err := ParseVisualizerFlags([]string{
		"-url", "ws://10.0.0.2:9000/socket",
		"-reconnect=false",
		"-block-size", "5",
		"-alpha", "128",
		"-display", "terminal",
	})
	if err != nil {
		t.Fatalf("ParseVisualizerFlags failed: %v", err)
	}

	if cfg.URL != "ws://10.0.0.2:9000/socket" {
		t.Errorf("URL = %q", cfg.URL)
	}
	if cfg.Reconnect {
		t.Error("Reconnect = true, want false")
	}
	if cfg.BlockSize != 5 || cfg.Alpha != 128 {
		t.Errorf("BlockSize/Alpha = %d/%d, want 5/128", cfg.BlockSize, cfg.Alpha)
	}
	if cfg.Display != "terminal" {
		t.Errorf("Display = %q, want terminal", cfg.Display)
	}
}

func TestParseVisualizerFlagsWithFile(t *testing.T) {
	t.Setenv("TEST_FEED_HOST", "192.168.1.20")

	path := writeTempFile(t, `
url: ws://${TEST_FEED_HOST}:8008/socket
reconnect_delay: 250ms
width: 320
height: 240
block_size: 4
display: none
`)

	cfg, err := ParseVisualizerFlags([]string{"-config", path, "-height", "200"})
	if err != nil {
		t.Fatalf("ParseVisualizerFlags failed: %v", err)
	}

	if cfg.URL != "ws://192.168.1.20:8008/socket" {
		t.Errorf("URL = %q", cfg.URL)
	}
	if cfg.ReconnectDelay != 250*time.Millisecond {
		t.Errorf("ReconnectDelay = %v, want 250ms", cfg.ReconnectDelay)
	}
	if cfg.Width != 320 {
		t.Errorf("Width = %d, want 320", cfg.Width)
	}
	if cfg.Height != 200 {
		t.Errorf("Height = %d, want 200 (flag wins over file)", cfg.Height)
	}
	if cfg.BlockSize != 4 {
		t.Errorf("BlockSize = %d, want 4", cfg.BlockSize)
	}
	if !cfg.Reconnect {
		t.Error("Reconnect = false, want default true")
	}
	if cfg.ConfigFile != path {
		t.Errorf("ConfigFile = %q, want %q", cfg.ConfigFile, path)
	}
}

func TestParseVisualizerFlagsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad scheme", []string{"-url", "http://127.0.0.1:8008/socket"}, "scheme"},
		{"bad alpha", []string{"-alpha", "300"}, "alpha"},
		{"bad block", []string{"-block-size", "-1"}, "block_size"},
		{"bad display", []string{"-display", "hologram"}, "display"},
		{"bad level", []string{"-log-level", "loud"}, "log level"},
		{"bad size", []string{"-width", "-5"}, "surface size"},
		{"unknown flag", []string{"-nope"}, "nope"},
		{"missing file", []string{"-config", "/does/not/exist.yaml"}, "read config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseVisualizerFlags(tt.args)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestParseVisualizerFlagsBadYAML(t *testing.T) {
	path := writeTempFile(t, "width: [1, 2\n")
	if _, err := ParseVisualizerFlags([]string{"-config", path}); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestParseFeedFlags(t *testing.T) {
	cfg, err := ParseFeedFlags(nil)
	if err != nil {
		t.Fatalf("ParseFeedFlags failed: %v", err)
	}
	if cfg.Addr != ":8008" || cfg.Pattern != "rainbow" || cfg.FPS != 20 {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.GridColumns != 10 || cfg.GridRows != 10 || cfg.GridOriginX != 100 || cfg.GridSpacing != 10 {
		t.Errorf("grid defaults = %+v", cfg)
	}

	path := writeTempFile(t, "pattern: stripes\nfps: 60\ngrid_columns: 4\n")
	cfg, err = ParseFeedFlags([]string{"-config", path, "-fps", "30"})
	if err != nil {
		t.Fatalf("ParseFeedFlags failed: %v", err)
	}
	if cfg.Pattern != "stripes" || cfg.FPS != 30 || cfg.GridColumns != 4 {
		t.Errorf("overlay = %+v", cfg)
	}
}

func TestParseFeedFlagsErrors(t *testing.T) {
	for _, args := range [][]string{
		{"-fps", "121"},
		{"-fps", "-1"},
		{"-grid-rows", "-2"},
		{"-grid-spacing", "-3"},
	} {
		if _, err := ParseFeedFlags(args); err == nil {
			t.Errorf("ParseFeedFlags(%v) succeeded, want error", args)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil {
			t.Errorf("ParseLevel(%q) failed: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	var sb strings.Builder
	logger, err := NewLogger(&sb, "warn")
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "code", 1006)

	out := sb.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message logged at warn level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "code=1006") {
		t.Errorf("unexpected output %q", out)
	}
}
