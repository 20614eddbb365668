package display

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"
)

// upperHalf draws the top sample in the foreground and the bottom one in the
// background, giving two vertical samples per terminal cell.
const upperHalf = '▀'

// Terminal renders the surface into a terminal using tcell.
type Terminal struct {
	src    FrameSource
	screen tcell.Screen
	fps    int
	logger *slog.Logger

	frame   *image.RGBA
	version uint64
	drawn   bool
}

// NewTerminal creates a terminal display. A nil screen uses the real
// terminal.
func NewTerminal(src FrameSource, screen tcell.Screen, fps int, logger *slog.Logger) (*Terminal, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if fps <= 0 {
		fps = 30
	}
	if screen == nil {
		var err error
		screen, err = tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("terminal screen: %w", err)
		}
	}
	return &Terminal{
		src:    src,
		screen: screen,
		fps:    fps,
		logger: logger,
		frame:  image.NewRGBA(image.Rect(0, 0, src.Width(), src.Height())),
	}, nil
}

// Run draws until Esc, q or Ctrl-C is pressed or ctx is done.
func (t *Terminal) Run(ctx context.Context) error {
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("terminal init: %w", err)
	}
	defer t.screen.Fini()
	t.screen.HideCursor()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(time.Second / time.Duration(t.fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if isQuitKey(ev) {
					t.logger.Debug("terminal display closed by user")
					return nil
				}
			case *tcell.EventResize:
				t.screen.Sync()
				t.drawn = false
			}
		case <-ticker.C:
			if t.refresh() {
				t.screen.Show()
			}
		}
	}
}

// refresh redraws the screen if the surface changed or the screen was
// resized. It reports whether anything was drawn.
func (t *Terminal) refresh() bool {
	if t.drawn && t.src.Version() == t.version {
		return false
	}
	t.version = t.src.CopyTo(t.frame)
	t.draw()
	t.drawn = true
	return true
}

func (t *Terminal) draw() {
	cols, rows := t.screen.Size()
	if cols == 0 || rows == 0 {
		return
	}
	fw := float64(t.frame.Bounds().Dx())
	fh := float64(t.frame.Bounds().Dy())
	scale, offX, offY := AspectFit(float64(cols), float64(rows*2), fw, fh)

	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			top := t.sample(cx, cy*2, scale, offX, offY)
			bottom := t.sample(cx, cy*2+1, scale, offX, offY)
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bottom.R), int32(bottom.G), int32(bottom.B)))
			t.screen.SetContent(cx, cy, upperHalf, nil, style)
		}
	}
}

// sample returns the brightest surface pixel covered by virtual pixel
// (vx, vy). Taking the maximum keeps small blocks visible when the surface is
// scaled down.
func (t *Terminal) sample(vx, vy int, scale, offX, offY float64) rgb {
	b := t.frame.Bounds()
	x0 := int((float64(vx) - offX) / scale)
	y0 := int((float64(vy) - offY) / scale)
	x1 := int((float64(vx+1) - offX) / scale)
	y1 := int((float64(vy+1) - offY) / scale)
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	r := image.Rect(x0, y0, x1, y1).Intersect(b)

	var best rgb
	bestSum := -1
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := t.frame.RGBAAt(x, y)
			if sum := int(c.R) + int(c.G) + int(c.B); sum > bestSum {
				best = rgb{c.R, c.G, c.B}
				bestSum = sum
			}
		}
	}
	return best
}

type rgb struct{ R, G, B uint8 }

func isQuitKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q'
	}
	return false
}
