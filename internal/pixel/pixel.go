package pixel

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingPixels is wrapped by DecodeError when a payload has no pixels field.
var ErrMissingPixels = errors.New("missing pixels field")

// Update is one coordinate+colour instruction. Y is measured from the bottom
// of the surface.
type Update struct {
	X int   `json:"x"`
	Y int   `json:"y"`
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Frame is one decoded inbound message.
type Frame struct {
	Pixels []Update `json:"pixels"`
}

// DecodeError reports a payload that could not be turned into a Frame.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode frame: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

type wireFrame struct {
	Pixels *[]Update `json:"pixels"`
}

// Decode parses a text frame payload. An empty pixel list is valid; a missing
// or null pixels field is not.
func Decode(data []byte) (*Frame, error) {
	var w wireFrame
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if w.Pixels == nil {
		return nil, &DecodeError{Err: ErrMissingPixels}
	}
	return &Frame{Pixels: *w.Pixels}, nil
}

// Encode produces the wire form of f. A nil pixel list is sent as [].
func Encode(f *Frame) ([]byte, error) {
	pixels := f.Pixels
	if pixels == nil {
		pixels = []Update{}
	}
	return json.Marshal(Frame{Pixels: pixels})
}
