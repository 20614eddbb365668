// Package render paints decoded pixel frames onto a surface.
package render

import (
	"errors"
	"image"
	"image/color"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/junsooki/pixelviz/internal/pixel"
	"github.com/junsooki/pixelviz/internal/surface"
)

const (
	DefaultBlockSize = 3
	DefaultAlpha     = 255
)

// Options controls how each pixel update is painted.
type Options struct {
	BlockSize int   // side of the square painted per update
	Alpha     uint8 // opacity of every painted block
}

// DefaultOptions returns the 3x3 fully opaque blocks the feed is designed for.
func DefaultOptions() Options {
	return Options{BlockSize: DefaultBlockSize, Alpha: DefaultAlpha}
}

// Renderer turns frames into surface contents.
type Renderer struct {
	surface *surface.Surface
	opts    Options
	logger  *slog.Logger

	decodeLog rate.Sometimes
}

// New creates a renderer drawing into s. A block size below 1 falls back to
// the default.
func New(s *surface.Surface, opts Options, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BlockSize < 1 {
		opts.BlockSize = DefaultBlockSize
	}
	return &Renderer{
		surface:   s,
		opts:      opts,
		logger:    logger,
		decodeLog: rate.Sometimes{Interval: time.Second},
	}
}

// Render decodes a raw text frame and paints it. On a decode error the
// surface is left exactly as it was.
func (r *Renderer) Render(data []byte) error {
	f, err := pixel.Decode(data)
	if err != nil {
		return err
	}
	r.RenderFrame(f)
	return nil
}

// RenderFrame clears the surface and paints every update in order, so later
// updates at the same cell win.
func (r *Renderer) RenderFrame(f *pixel.Frame) {
	r.surface.Update(func(img *image.RGBA) {
		surface.Clear(img)
		h := img.Bounds().Dy()
		for _, u := range f.Pixels {
			if !visibleY(u.Y, h, r.opts.BlockSize) {
				continue
			}
			c := color.NRGBA{R: u.R, G: u.G, B: u.B, A: r.opts.Alpha}
			surface.FillBlock(img, u.X, Row(u.Y, h), r.opts.BlockSize, c)
		}
	})
}

// HandleMessage is the connection callback: it renders data and logs, at most
// once a second, payloads that fail to decode.
func (r *Renderer) HandleMessage(data []byte) {
	err := r.Render(data)
	if err == nil {
		return
	}
	var de *pixel.DecodeError
	if !errors.As(err, &de) {
		r.logger.Error("render failed", "error", err)
		return
	}
	r.decodeLog.Do(func() {
		r.logger.Warn("dropping undecodable frame", "error", err, "bytes", len(data))
	})
}

// Row maps a bottom-up y coordinate to the top row of its block on a surface
// of the given height. y == 0 lands on the bottom row rather than just below
// it, so y == 0 and y == 1 share the bottom row.
func Row(y, height int) int {
	row := height - y
	if row == height {
		row = height - 1
	}
	return row
}

// visibleY reports whether the block for y has any row inside [0, height).
// It rejects the rest without computing height-y, which could overflow.
func visibleY(y, height, size int) bool {
	return y >= 0 && y < height+size
}
