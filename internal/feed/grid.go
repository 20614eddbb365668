package feed

import "github.com/junsooki/pixelviz/internal/pixel"

// Light is one addressable pixel of the simulated fixture.
type Light struct {
	X, Y    int
	Index   int
	R, G, B uint8
}

// GridConfig describes a rectangular fixture.
type GridConfig struct {
	Columns, Rows    int
	OriginX, OriginY int
	Spacing          int
}

// DefaultGrid is the 10x10 fixture at (100,100) with 10px spacing.
func DefaultGrid() GridConfig {
	return GridConfig{Columns: 10, Rows: 10, OriginX: 100, OriginY: 100, Spacing: 10}
}

// BuildGrid lays lights out column by column.
func BuildGrid(cfg GridConfig) []Light {
	lights := make([]Light, 0, cfg.Columns*cfg.Rows)
	for i := 0; i < cfg.Columns; i++ {
		x := cfg.OriginX + i*cfg.Spacing
		for j := 0; j < cfg.Rows; j++ {
			lights = append(lights, Light{
				X:     x,
				Y:     cfg.OriginY + j*cfg.Spacing,
				Index: len(lights),
			})
		}
	}
	return lights
}

// ToFrame converts lights to their wire form.
func ToFrame(lights []Light) *pixel.Frame {
	f := &pixel.Frame{Pixels: make([]pixel.Update, len(lights))}
	for i, l := range lights {
		f.Pixels[i] = pixel.Update{X: l.X, Y: l.Y, R: l.R, G: l.G, B: l.B}
	}
	return f
}
