// Package window presents the surface in a desktop window using Ebitengine.
package window

import (
	"context"
	"errors"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/junsooki/pixelviz/internal/display"
)

// Window renders the surface with Ebitengine.
type Window struct {
	src   display.FrameSource
	title string
	scale float64
	ctx   context.Context

	frame       *image.RGBA
	version     uint64
	uploaded    bool
	ebitenImage *ebiten.Image
}

// New creates an Ebitengine-based display. scale sizes the initial window
// relative to the surface.
func New(src display.FrameSource, title string, scale float64) *Window {
	if scale <= 0 {
		scale = 1
	}
	return &Window{
		src:   src,
		title: title,
		scale: scale,
		frame: image.NewRGBA(image.Rect(0, 0, src.Width(), src.Height())),
	}
}

// Run starts the Ebitengine game loop. Must be called from the main goroutine.
func (w *Window) Run(ctx context.Context) error {
	w.ctx = ctx
	ebiten.SetWindowSize(int(float64(w.src.Width())*w.scale), int(float64(w.src.Height())*w.scale))
	ebiten.SetWindowTitle(w.title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	err := ebiten.RunGame(w)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// --- ebiten.Game interface ---

func (w *Window) Update() error {
	if w.ctx != nil && w.ctx.Err() != nil {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if !w.uploaded || w.src.Version() != w.version {
		w.version = w.src.CopyTo(w.frame)
		if w.ebitenImage == nil {
			w.ebitenImage = ebiten.NewImage(w.frame.Bounds().Dx(), w.frame.Bounds().Dy())
		}
		w.ebitenImage.WritePixels(w.frame.Pix)
		w.uploaded = true
	}
	return nil
}

func (w *Window) Draw(screen *ebiten.Image) {
	if w.ebitenImage == nil {
		return
	}

	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	fw, fh := float64(w.frame.Bounds().Dx()), float64(w.frame.Bounds().Dy())
	scale, offsetX, offsetY := display.AspectFit(float64(sw), float64(sh), fw, fh)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(offsetX, offsetY)
	op.Filter = ebiten.FilterNearest
	screen.DrawImage(w.ebitenImage, op)
}

func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}
