package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/junsooki/pixelviz/internal/pixel"
	"github.com/junsooki/pixelviz/internal/surface"
)

var red = color.RGBA{R: 255, A: 255}

func TestRenderScenario(t *testing.T) {
	s := surface.New(10, 10)
	r := New(s, DefaultOptions(), nil)

	if err := r.Render([]byte(`{"pixels":[{"x":5,"y":2,"r":255,"g":0,"b":0}]}`)); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	img, _ := s.Snapshot()
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			want := surface.Background
			if x >= 5 && x < 8 && y >= 8 {
				want = red
			}
			if got := img.RGBAAt(x, y); got != want {
				t.Errorf("(%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestRenderCoordinateMapping(t *testing.T) {
	tests := []struct {
		name    string
		y       int
		wantRow int
	}{
		{"bottom", 0, 9},
		{"one above bottom", 1, 9},
		{"middle", 5, 5},
		{"top", 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := surface.New(10, 10)
			r := New(s, Options{BlockSize: 1, Alpha: 255}, nil)
			r.RenderFrame(&pixel.Frame{Pixels: []pixel.Update{{X: 0, Y: tt.y, R: 255}}})

			img, _ := s.Snapshot()
			if got := img.RGBAAt(0, tt.wantRow); got != red {
				t.Errorf("row %d = %v, want red", tt.wantRow, got)
			}
			if n := countPainted(img); n != 1 {
				t.Errorf("painted cells = %d, want 1", n)
			}
		})
	}
}

func TestRenderSkipsOffSurfaceUpdates(t *testing.T) {
	tests := []struct {
		name string
		x, y int
	}{
		{"x near max", math.MaxInt - 1, 5},
		{"x near min", math.MinInt, 5},
		{"y near max", 5, math.MaxInt},
		{"y near min", 5, math.MinInt},
		{"y just below", 5, -1},
		{"y just above", 5, 13},
		{"x just right", 10, 5},
		{"x just left", -3, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := surface.New(10, 10)
			r := New(s, DefaultOptions(), nil)
			r.RenderFrame(&pixel.Frame{Pixels: []pixel.Update{{X: tt.x, Y: tt.y, R: 255}}})

			img, _ := s.Snapshot()
			if n := countPainted(img); n != 0 {
				t.Errorf("painted cells = %d, want 0", n)
			}
		})
	}
}

func TestRenderOffSurfaceUpdateFromWire(t *testing.T) {
	s := surface.New(10, 10)
	r := New(s, DefaultOptions(), nil)

	payload := []byte(`{"pixels":[{"x":9223372036854775806,"y":5,"r":255,"g":0,"b":0},{"x":2,"y":10,"r":255,"g":0,"b":0}]}`)
	if err := r.Render(payload); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	img, _ := s.Snapshot()
	if n := countPainted(img); n != 9 {
		t.Errorf("painted cells = %d, want 9", n)
	}
}

func TestRenderClearsPreviousFrame(t *testing.T) {
	s := surface.New(10, 10)
	r := New(s, DefaultOptions(), nil)

	r.RenderFrame(&pixel.Frame{Pixels: []pixel.Update{{X: 0, Y: 10, R: 255}}})
	r.RenderFrame(&pixel.Frame{Pixels: []pixel.Update{{X: 6, Y: 4, G: 255}}})

	img, _ := s.Snapshot()
	if got := img.RGBAAt(0, 0); got != surface.Background {
		t.Errorf("stale block survived: %v", got)
	}
	if got := img.RGBAAt(6, 6); got.G != 255 {
		t.Errorf("(6,6) = %v, want green", got)
	}
}

func TestRenderLastWriteWins(t *testing.T) {
	s := surface.New(10, 10)
	r := New(s, DefaultOptions(), nil)

	r.RenderFrame(&pixel.Frame{Pixels: []pixel.Update{
		{X: 1, Y: 8, R: 255},
		{X: 1, Y: 8, B: 255},
	}})

	img, _ := s.Snapshot()
	want := color.RGBA{B: 255, A: 255}
	if got := img.RGBAAt(1, 2); got != want {
		t.Errorf("(1,2) = %v, want %v", got, want)
	}
	if n := countPainted(img); n != 9 {
		t.Errorf("painted cells = %d, want 9", n)
	}
}

func TestRenderBlockCount(t *testing.T) {
	s := surface.New(40, 40)
	r := New(s, DefaultOptions(), nil)

	var pixels []pixel.Update
	for i := 0; i < 5; i++ {
		pixels = append(pixels, pixel.Update{X: i * 5, Y: 20, R: 10, G: 20, B: 30})
	}
	r.RenderFrame(&pixel.Frame{Pixels: pixels})

	img, _ := s.Snapshot()
	if n := countPainted(img); n != 5*9 {
		t.Errorf("painted cells = %d, want %d", n, 5*9)
	}
}

func TestRenderIdempotent(t *testing.T) {
	payload := []byte(`{"pixels":[{"x":3,"y":3,"r":1,"g":2,"b":3},{"x":7,"y":9,"r":200,"g":100,"b":50}]}`)

	s := surface.New(12, 12)
	r := New(s, DefaultOptions(), nil)

	if err := r.Render(payload); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	once, _ := s.Snapshot()
	if err := r.Render(payload); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	twice, _ := s.Snapshot()

	if !bytes.Equal(once.Pix, twice.Pix) {
		t.Error("rendering the same frame twice changed the surface")
	}
}

func TestRenderDecodeErrorLeavesSurface(t *testing.T) {
	s := surface.New(10, 10)
	r := New(s, DefaultOptions(), nil)
	r.RenderFrame(&pixel.Frame{Pixels: []pixel.Update{{X: 4, Y: 4, R: 255}}})
	before, version := s.Snapshot()

	for _, payload := range []string{`not json`, `{"nope":[]}`, `{"pixels":[{"x":1,"y":`} {
		err := r.Render([]byte(payload))
		var de *pixel.DecodeError
		if !errors.As(err, &de) {
			t.Fatalf("Render(%q) error = %v, want DecodeError", payload, err)
		}
	}

	after, afterVersion := s.Snapshot()
	if afterVersion != version {
		t.Errorf("version = %d, want %d", afterVersion, version)
	}
	if !bytes.Equal(before.Pix, after.Pix) {
		t.Error("surface changed after decode errors")
	}
}

func TestHandleMessageSwallowsDecodeErrors(t *testing.T) {
	s := surface.New(10, 10)
	r := New(s, DefaultOptions(), nil)

	r.HandleMessage([]byte(`garbage`))
	r.HandleMessage([]byte(`garbage`))
	if v := s.Version(); v != 0 {
		t.Errorf("version = %d, want 0", v)
	}

	r.HandleMessage([]byte(`{"pixels":[]}`))
	if v := s.Version(); v != 1 {
		t.Errorf("version = %d, want 1", v)
	}
}

func TestRenderAlpha(t *testing.T) {
	s := surface.New(4, 4)
	r := New(s, Options{BlockSize: 1, Alpha: 128}, nil)
	r.RenderFrame(&pixel.Frame{Pixels: []pixel.Update{{X: 0, Y: 4, R: 255}}})

	img, _ := s.Snapshot()
	want := color.RGBAModel.Convert(color.NRGBA{R: 255, A: 128}).(color.RGBA)
	if got := img.RGBAAt(0, 0); got != want {
		t.Errorf("(0,0) = %v, want %v", got, want)
	}
}

func TestNewDefaultsBlockSize(t *testing.T) {
	s := surface.New(10, 10)
	r := New(s, Options{Alpha: 255}, nil)
	r.RenderFrame(&pixel.Frame{Pixels: []pixel.Update{{X: 0, Y: 10, R: 255}}})

	img, _ := s.Snapshot()
	if n := countPainted(img); n != DefaultBlockSize*DefaultBlockSize {
		t.Errorf("painted cells = %d, want %d", n, DefaultBlockSize*DefaultBlockSize)
	}
}

func countPainted(img *image.RGBA) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) != surface.Background {
				n++
			}
		}
	}
	return n
}
