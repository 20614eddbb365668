package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultURL            = "ws://127.0.0.1:8008/socket"
	DefaultReconnectDelay = 5 * time.Second
	DefaultWidth          = 800
	DefaultHeight         = 600
	DefaultBlockSize      = 3
	DefaultAlpha          = 255
	DefaultDisplay        = "window"
	DefaultScale          = 1.0
	DefaultDisplayFPS     = 30
	DefaultLogLevel       = "info"

	DefaultFeedAddr    = ":8008"
	DefaultPattern     = "rainbow"
	DefaultFeedFPS     = 20
	MaxFeedFPS         = 120
	DefaultGridColumns = 10
	DefaultGridRows    = 10
	DefaultGridOrigin  = 100
	DefaultGridSpacing = 10
)

func (c *VisualizerConfig) applyDefaults() {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.ReconnectDelay == 0 {
		c.ReconnectDelay = DefaultReconnectDelay
	}
	if c.Width == 0 {
		c.Width = DefaultWidth
	}
	if c.Height == 0 {
		c.Height = DefaultHeight
	}
	if c.BlockSize == 0 {
		c.BlockSize = DefaultBlockSize
	}
	if c.Display == "" {
		c.Display = DefaultDisplay
	}
	if c.Scale == 0 {
		c.Scale = DefaultScale
	}
	if c.FPS == 0 {
		c.FPS = DefaultDisplayFPS
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

func (c *FeedConfig) applyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultFeedAddr
	}
	if c.Pattern == "" {
		c.Pattern = DefaultPattern
	}
	if c.FPS == 0 {
		c.FPS = DefaultFeedFPS
	}
	if c.GridColumns == 0 {
		c.GridColumns = DefaultGridColumns
	}
	if c.GridRows == 0 {
		c.GridRows = DefaultGridRows
	}
	if c.GridSpacing == 0 {
		c.GridSpacing = DefaultGridSpacing
	}
	if c.PreviewWidth == 0 {
		c.PreviewWidth = DefaultWidth
	}
	if c.PreviewHeight == 0 {
		c.PreviewHeight = DefaultHeight
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}
