package encoder

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(1, 1, color.RGBA{R: 200, G: 10, B: 20, A: 255})
	return img
}

func TestPNGEncoder(t *testing.T) {
	for _, fast := range []bool{false, true} {
		enc := NewPNGEncoder(fast)
		data, err := enc.Encode(testImage())
		if err != nil {
			t.Fatalf("Encode(fast=%v) failed: %v", fast, err)
		}

		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("png.Decode failed: %v", err)
		}
		if got := color.RGBAModel.Convert(img.At(1, 1)).(color.RGBA); got != (color.RGBA{R: 200, G: 10, B: 20, A: 255}) {
			t.Errorf("(1,1) = %v", got)
		}
	}
	if ct := NewPNGEncoder(true).ContentType(); ct != "image/png" {
		t.Errorf("ContentType = %q", ct)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.png")
	if err := WriteFile(NewPNGEncoder(false), path, testImage()); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("DecodeConfig failed: %v", err)
	}
	if cfg.Width != 3 || cfg.Height != 2 {
		t.Errorf("size = %dx%d, want 3x2", cfg.Width, cfg.Height)
	}
}

func TestWriteFileBadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "snap.png")
	if err := WriteFile(NewPNGEncoder(false), path, testImage()); err == nil {
		t.Error("expected error for missing directory")
	}
}
