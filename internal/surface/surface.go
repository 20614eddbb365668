// Package surface holds the raster that frames are painted into.
package surface

import (
	"image"
	"image/color"
	"image/draw"
	"sync"
)

// Background is the colour the surface is reset to before every frame.
var Background = color.RGBA{A: 0xff}

// Surface is a mutable RGBA raster shared between the renderer and the
// displays. Writers go through Update so a reader never sees a half-painted
// frame.
type Surface struct {
	mu      sync.RWMutex
	img     *image.RGBA
	version uint64
}

// New creates a width x height surface filled with Background.
func New(width, height int) *Surface {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	Clear(img)
	return &Surface{img: img}
}

// Width returns the surface width in cells.
func (s *Surface) Width() int { return s.img.Bounds().Dx() }

// Height returns the surface height in cells.
func (s *Surface) Height() int { return s.img.Bounds().Dy() }

// Update runs fn with exclusive access to the raster and bumps the version.
func (s *Surface) Update(fn func(img *image.RGBA)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.img)
	s.version++
}

// Version counts completed updates.
func (s *Surface) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Snapshot returns a copy of the raster and the version it was taken at.
func (s *Surface) Snapshot() (*image.RGBA, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := image.NewRGBA(s.img.Bounds())
	copy(cp.Pix, s.img.Pix)
	return cp, s.version
}

// CopyTo copies the raster into dst, which must have the same bounds, and
// returns the version copied.
func (s *Surface) CopyTo(dst *image.RGBA) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	copy(dst.Pix, s.img.Pix)
	return s.version
}

// Clear fills img with Background.
func Clear(img *image.RGBA) {
	draw.Draw(img, img.Bounds(), image.NewUniform(Background), image.Point{}, draw.Src)
}

// FillBlock replaces the size x size block whose top-left cell is (x, y) with
// c. Cells outside img are clipped, and a block lying wholly outside is
// skipped before any corner arithmetic.
func FillBlock(img *image.RGBA, x, y, size int, c color.Color) {
	b := img.Bounds()
	if size < 1 || x >= b.Max.X || y >= b.Max.Y || x <= b.Min.X-size || y <= b.Min.Y-size {
		return
	}
	r := image.Rect(x, y, x+size, y+size).Intersect(b)
	if r.Empty() {
		return
	}
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}
