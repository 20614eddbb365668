// Package display presents a rendered surface to the user.
package display

import (
	"context"
	"image"
	"math"
)

// Kinds accepted by the visualizer's -display flag.
const (
	KindWindow   = "window"
	KindTerminal = "terminal"
	KindNone     = "none"
)

// Display presents frames until the user quits or ctx is done.
type Display interface {
	Run(ctx context.Context) error
}

// FrameSource provides the latest rendered raster. It is satisfied by
// *surface.Surface.
type FrameSource interface {
	Width() int
	Height() int
	Version() uint64
	CopyTo(dst *image.RGBA) uint64
}

// AspectFit returns scale and offsets to fit a frame into a view with
// letterboxing.
func AspectFit(viewW, viewH, frameW, frameH float64) (scale, offsetX, offsetY float64) {
	scale = math.Min(viewW/frameW, viewH/frameH)
	offsetX = (viewW - frameW*scale) / 2
	offsetY = (viewH - frameH*scale) / 2
	return
}
