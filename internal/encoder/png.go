package encoder

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
)

// PNGEncoder encodes surfaces as PNG.
type PNGEncoder struct {
	enc png.Encoder
}

// NewPNGEncoder creates a PNG encoder. fast trades size for speed, which
// suits previews served on every request.
func NewPNGEncoder(fast bool) *PNGEncoder {
	level := png.DefaultCompression
	if fast {
		level = png.BestSpeed
	}
	return &PNGEncoder{enc: png.Encoder{CompressionLevel: level}}
}

func (e *PNGEncoder) Encode(img *image.RGBA) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(img.Pix) / 4)
	if err := e.enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PNGEncoder) ContentType() string { return "image/png" }

// WriteFile encodes img and writes it to path.
func WriteFile(enc Encoder, path string, img *image.RGBA) error {
	data, err := enc.Encode(img)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
