package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks that all values are usable.
func (c *VisualizerConfig) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("url scheme must be ws or wss, got %q", u.Scheme)
	}
	if c.ReconnectDelay < 0 {
		return errors.New("reconnect_delay must be >= 0")
	}
	if c.Width < 1 || c.Height < 1 {
		return fmt.Errorf("surface size must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.BlockSize < 1 {
		return errors.New("block_size must be >= 1")
	}
	if c.Alpha < 0 || c.Alpha > 255 {
		return fmt.Errorf("alpha must be between 0 and 255, got %d", c.Alpha)
	}
	switch c.Display {
	case "window", "terminal", "none":
	default:
		return fmt.Errorf("display must be window, terminal or none, got %q", c.Display)
	}
	if c.Scale <= 0 {
		return errors.New("scale must be > 0")
	}
	if c.FPS < 1 {
		return errors.New("fps must be >= 1")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Validate checks that all values are usable.
func (c *FeedConfig) Validate() error {
	if c.FPS < 1 {
		return errors.New("fps must be >= 1")
	}
	if c.FPS > MaxFeedFPS {
		return fmt.Errorf("maximum fps %d exceeded, got %d", MaxFeedFPS, c.FPS)
	}
	if c.GridColumns < 1 || c.GridRows < 1 {
		return fmt.Errorf("grid must be at least 1x1, got %dx%d", c.GridColumns, c.GridRows)
	}
	if c.GridSpacing < 1 {
		return errors.New("grid_spacing must be >= 1")
	}
	if c.PreviewWidth < 1 || c.PreviewHeight < 1 {
		return fmt.Errorf("preview size must be positive, got %dx%d", c.PreviewWidth, c.PreviewHeight)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}
