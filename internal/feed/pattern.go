package feed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	maxHue       = 360.0
	maxXPosition = 600.0
)

// Pattern colours every light once per frame.
type Pattern interface {
	Name() string
	Update(lights []Light)
}

var (
	// ErrNotAdjustable is returned when parameters are sent to a pattern that
	// has none.
	ErrNotAdjustable = errors.New("pattern has no adjustable parameters")
	// ErrInvalidParameters wraps malformed or out-of-range parameter updates.
	ErrInvalidParameters = errors.New("invalid pattern parameters")
)

// Adjustable is a Pattern whose parameters can change while it runs.
// SetParameters applies a JSON object; fields it omits keep their value.
type Adjustable interface {
	Pattern
	Parameters() any
	SetParameters(data []byte) error
}

// Color is an RGB colour parameter.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

func decodeParameters(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParameters, err)
	}
	return nil
}

// Patterns is a set of named patterns.
type Patterns map[string]Pattern

// DefaultPatterns returns one instance of every built-in pattern.
func DefaultPatterns() Patterns {
	ps := Patterns{}
	for _, p := range []Pattern{
		&Rainbow{Speed: 5},
		&Stripes{Speed: 10, Size: 20, R: 255, B: 255},
		&Solid{R: 255, G: 147, B: 41},
		Off{},
	} {
		ps[p.Name()] = p
	}
	return ps
}

// Names returns the pattern names in sorted order.
func (ps Patterns) Names() []string {
	names := make([]string, 0, len(ps))
	for name := range ps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Rainbow spreads the hue wheel across the lights and rotates it.
type Rainbow struct {
	Speed float64 // degrees per frame
	hue   float64
}

func (p *Rainbow) Name() string { return "rainbow" }

type rainbowParameters struct {
	Speed float64 `json:"speed"`
}

func (p *Rainbow) Parameters() any { return rainbowParameters{Speed: p.Speed} }

func (p *Rainbow) SetParameters(data []byte) error {
	params := rainbowParameters{Speed: p.Speed}
	if err := decodeParameters(data, &params); err != nil {
		return err
	}
	if params.Speed < 0 || params.Speed > maxHue {
		return fmt.Errorf("%w: speed %v outside [0, %v]", ErrInvalidParameters, params.Speed, maxHue)
	}
	p.Speed = params.Speed
	return nil
}

func (p *Rainbow) Update(lights []Light) {
	if len(lights) == 0 {
		return
	}
	step := maxHue / float64(len(lights))
	for i := range lights {
		h := math.Mod(p.hue+float64(lights[i].Index)*step, maxHue)
		lights[i].R, lights[i].G, lights[i].B = colorful.Hsv(h, 1, 1).RGB255()
	}
	p.hue = math.Mod(p.hue+p.Speed, maxHue)
}

// Stripes sweeps a vertical band of colour across x, wrapping at 600.
type Stripes struct {
	Speed    float64
	Size     float64 // half-width of the band
	R, G, B  uint8
	position float64
}

func (p *Stripes) Name() string { return "stripes" }

type stripesParameters struct {
	Speed float64 `json:"speed"`
	Size  float64 `json:"size"`
	Color Color   `json:"color"`
}

func (p *Stripes) Parameters() any {
	return stripesParameters{Speed: p.Speed, Size: p.Size, Color: Color{p.R, p.G, p.B}}
}

func (p *Stripes) SetParameters(data []byte) error {
	params := stripesParameters{Speed: p.Speed, Size: p.Size, Color: Color{p.R, p.G, p.B}}
	if err := decodeParameters(data, &params); err != nil {
		return err
	}
	if params.Speed < 0 || params.Speed > maxXPosition {
		return fmt.Errorf("%w: speed %v outside [0, %v]", ErrInvalidParameters, params.Speed, maxXPosition)
	}
	if params.Size <= 0 || params.Size > maxXPosition {
		return fmt.Errorf("%w: size %v outside (0, %v]", ErrInvalidParameters, params.Size, maxXPosition)
	}
	p.Speed, p.Size = params.Speed, params.Size
	p.R, p.G, p.B = params.Color.R, params.Color.G, params.Color.B
	return nil
}

func (p *Stripes) Update(lights []Light) {
	lo, hi := p.position-p.Size, p.position+p.Size
	for i := range lights {
		x := float64(lights[i].X)
		if x > lo && x < hi {
			lights[i].R, lights[i].G, lights[i].B = p.R, p.G, p.B
		} else {
			lights[i].R, lights[i].G, lights[i].B = 0, 0, 0
		}
	}
	p.position = math.Mod(p.position+p.Speed, maxXPosition)
}

// Solid paints every light the same colour.
type Solid struct {
	R, G, B uint8
}

func (p *Solid) Name() string { return "solid" }

type solidParameters struct {
	Color Color `json:"color"`
}

func (p *Solid) Parameters() any { return solidParameters{Color: Color{p.R, p.G, p.B}} }

func (p *Solid) SetParameters(data []byte) error {
	params := solidParameters{Color: Color{p.R, p.G, p.B}}
	if err := decodeParameters(data, &params); err != nil {
		return err
	}
	p.R, p.G, p.B = params.Color.R, params.Color.G, params.Color.B
	return nil
}

func (p *Solid) Update(lights []Light) {
	for i := range lights {
		lights[i].R, lights[i].G, lights[i].B = p.R, p.G, p.B
	}
}

// Off turns every light off.
type Off struct{}

func (Off) Name() string { return "off" }

func (Off) Update(lights []Light) {
	for i := range lights {
		lights[i].R, lights[i].G, lights[i].B = 0, 0, 0
	}
}
