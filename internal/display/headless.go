package display

import (
	"context"
	"log/slog"
	"time"
)

// Headless presents nothing. It periodically logs how many frames were
// rendered, which is useful together with a snapshot on exit.
type Headless struct {
	src      FrameSource
	interval time.Duration
	logger   *slog.Logger
}

// NewHeadless creates a display that only reports progress every interval.
func NewHeadless(src FrameSource, interval time.Duration, logger *slog.Logger) *Headless {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Headless{src: src, interval: interval, logger: logger}
}

func (h *Headless) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var last uint64
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			v := h.src.Version()
			h.logger.Debug("frames rendered", "total", v, "since_last", v-last)
			last = v
		}
	}
}
