package config

import (
	"flag"
	"fmt"
	"time"
)

// VisualizerConfig holds runtime configuration for the visualizer binary.
type VisualizerConfig struct {
	ConfigFile string `yaml:"-"`

	URL            string        `yaml:"url"`
	Reconnect      bool          `yaml:"reconnect"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay"`

	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	BlockSize int `yaml:"block_size"`
	Alpha     int `yaml:"alpha"`

	Display  string  `yaml:"display"`
	Scale    float64 `yaml:"scale"`
	FPS      int     `yaml:"fps"`
	Snapshot string  `yaml:"snapshot"`
	LogLevel string  `yaml:"log_level"`
}

// ParseVisualizerFlags parses flags for the visualizer binary. Values from a
// -config YAML file override the defaults; explicit flags override both.
func ParseVisualizerFlags(args []string) (*VisualizerConfig, error) {
	cfg := &VisualizerConfig{}
	fs := flag.NewFlagSet("visualizer", flag.ContinueOnError)
	fs.StringVar(&cfg.ConfigFile, "config", "", "Optional YAML config file")
	fs.StringVar(&cfg.URL, "url", DefaultURL, "Pixel feed WebSocket URL")
	fs.BoolVar(&cfg.Reconnect, "reconnect", true, "Reconnect after an abnormal closure")
	fs.DurationVar(&cfg.ReconnectDelay, "reconnect-delay", DefaultReconnectDelay, "Delay before reconnecting")
	fs.IntVar(&cfg.Width, "width", DefaultWidth, "Surface width in pixels")
	fs.IntVar(&cfg.Height, "height", DefaultHeight, "Surface height in pixels")
	fs.IntVar(&cfg.BlockSize, "block-size", DefaultBlockSize, "Side of the square painted per pixel update")
	fs.IntVar(&cfg.Alpha, "alpha", DefaultAlpha, "Opacity of painted blocks (0-255)")
	fs.StringVar(&cfg.Display, "display", DefaultDisplay, "Display: window, terminal or none")
	fs.Float64Var(&cfg.Scale, "scale", DefaultScale, "Initial window scale")
	fs.IntVar(&cfg.FPS, "fps", DefaultDisplayFPS, "Terminal redraw rate")
	fs.StringVar(&cfg.Snapshot, "snapshot", "", "Write the last frame to this PNG file on exit")
	fs.StringVar(&cfg.LogLevel, "log-level", DefaultLogLevel, "Log level: debug, info, warn, error")

	if err := parseWithFile(fs, args, &cfg.ConfigFile, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FeedConfig holds configuration for the development feed server.
type FeedConfig struct {
	ConfigFile string `yaml:"-"`

	Addr    string `yaml:"addr"`
	Pattern string `yaml:"pattern"`
	FPS     int    `yaml:"fps"`

	GridColumns int `yaml:"grid_columns"`
	GridRows    int `yaml:"grid_rows"`
	GridOriginX int `yaml:"grid_origin_x"`
	GridOriginY int `yaml:"grid_origin_y"`
	GridSpacing int `yaml:"grid_spacing"`

	PreviewWidth  int    `yaml:"preview_width"`
	PreviewHeight int    `yaml:"preview_height"`
	LogLevel      string `yaml:"log_level"`
}

// ParseFeedFlags parses flags for the feed binary.
func ParseFeedFlags(args []string) (*FeedConfig, error) {
	cfg := &FeedConfig{}
	fs := flag.NewFlagSet("pixelfeed", flag.ContinueOnError)
	fs.StringVar(&cfg.ConfigFile, "config", "", "Optional YAML config file")
	fs.StringVar(&cfg.Addr, "addr", DefaultFeedAddr, "Listen address")
	fs.StringVar(&cfg.Pattern, "pattern", DefaultPattern, "Initial pattern")
	fs.IntVar(&cfg.FPS, "fps", DefaultFeedFPS, "Frames per second")
	fs.IntVar(&cfg.GridColumns, "grid-columns", DefaultGridColumns, "Pixel grid columns")
	fs.IntVar(&cfg.GridRows, "grid-rows", DefaultGridRows, "Pixel grid rows")
	fs.IntVar(&cfg.GridOriginX, "grid-x", DefaultGridOrigin, "X of the first grid pixel")
	fs.IntVar(&cfg.GridOriginY, "grid-y", DefaultGridOrigin, "Y of the first grid pixel")
	fs.IntVar(&cfg.GridSpacing, "grid-spacing", DefaultGridSpacing, "Distance between grid pixels")
	fs.IntVar(&cfg.PreviewWidth, "preview-width", DefaultWidth, "Width of /preview.png")
	fs.IntVar(&cfg.PreviewHeight, "preview-height", DefaultHeight, "Height of /preview.png")
	fs.StringVar(&cfg.LogLevel, "log-level", DefaultLogLevel, "Log level: debug, info, warn, error")

	if err := parseWithFile(fs, args, &cfg.ConfigFile, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseWithFile parses args, overlays the YAML file named by *path if any,
// then parses args again so explicit flags win over the file.
func parseWithFile(fs *flag.FlagSet, args []string, path *string, out any) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return nil
	}
	if err := Load(*path, out); err != nil {
		return err
	}
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("reparse flags: %w", err)
	}
	return nil
}
