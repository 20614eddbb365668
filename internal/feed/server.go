// Package feed serves an animated pixel stream in the same wire format the
// visualizer consumes.
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/junsooki/pixelviz/internal/encoder"
	"github.com/junsooki/pixelviz/internal/pixel"
	"github.com/junsooki/pixelviz/internal/render"
	"github.com/junsooki/pixelviz/internal/surface"
)

// ErrUnknownPattern is returned when selecting a pattern that is not registered.
var ErrUnknownPattern = errors.New("unknown pattern")

// Options configures a Server.
type Options struct {
	FPS           int
	Grid          GridConfig
	PreviewWidth  int
	PreviewHeight int
}

// Server drives the active pattern and publishes every frame to the hub.
type Server struct {
	opts     Options
	patterns Patterns
	hub      *Hub
	enc      encoder.Encoder
	logger   *slog.Logger

	mu      sync.Mutex
	current Pattern
	lights  []Light
	frame   *pixel.Frame
}

// NewServer creates a feed server starting with the named pattern.
func NewServer(opts Options, patterns Patterns, initial string, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	p, ok := patterns[initial]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPattern, initial)
	}
	if opts.FPS <= 0 {
		opts.FPS = 20
	}
	if opts.PreviewWidth <= 0 || opts.PreviewHeight <= 0 {
		opts.PreviewWidth, opts.PreviewHeight = 800, 600
	}
	return &Server{
		opts:     opts,
		patterns: patterns,
		hub:      NewHub(logger),
		enc:      encoder.NewPNGEncoder(true),
		logger:   logger,
		current:  p,
		lights:   BuildGrid(opts.Grid),
		frame:    &pixel.Frame{},
	}, nil
}

// Hub returns the subscriber hub.
func (s *Server) Hub() *Hub { return s.hub }

// Current returns the active pattern name.
func (s *Server) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Name()
}

// SetPattern switches the active pattern.
func (s *Server) SetPattern(name string) error {
	p, ok := s.patterns[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPattern, name)
	}
	s.mu.Lock()
	s.current = p
	s.mu.Unlock()
	s.logger.Info("pattern changed", "pattern", name)
	return nil
}

// SetParameters updates the parameters of the named pattern, whether or not
// it is active.
func (s *Server) SetParameters(name string, data []byte) error {
	p, ok := s.patterns[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPattern, name)
	}
	a, ok := p.(Adjustable)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotAdjustable, name)
	}
	s.mu.Lock()
	err := a.SetParameters(data)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.logger.Info("pattern parameters updated", "pattern", name)
	return nil
}

// Step advances the active pattern by one frame and broadcasts it.
func (s *Server) Step() error {
	s.mu.Lock()
	s.current.Update(s.lights)
	f := ToFrame(s.lights)
	s.frame = f
	s.mu.Unlock()

	data, err := pixel.Encode(f)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	s.hub.Broadcast(data)
	return nil
}

// Run steps at the configured rate until ctx is done, then disconnects all
// subscribers.
func (s *Server) Run(ctx context.Context) error {
	defer s.hub.Close()

	ticker := time.NewTicker(time.Second / time.Duration(s.opts.FPS))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.Step(); err != nil {
				s.logger.Error("step failed", "error", err)
			}
		}
	}
}

// Preview renders the latest frame the way the visualizer would.
func (s *Server) Preview() ([]byte, error) {
	s.mu.Lock()
	f := s.frame
	s.mu.Unlock()

	surf := surface.New(s.opts.PreviewWidth, s.opts.PreviewHeight)
	render.New(surf, render.DefaultOptions(), s.logger).RenderFrame(f)
	img, _ := surf.Snapshot()
	return s.enc.Encode(img)
}

// Handler returns the HTTP routes of the feed.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /socket", s.hub)
	mux.HandleFunc("GET /patterns", s.handleListPatterns)
	mux.HandleFunc("PUT /patterns/{pattern}", s.handleSetPattern)
	mux.HandleFunc("GET /preview.png", s.handlePreview)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "pixelfeed web server")
	})
	return mux
}

const maxParametersBody = 64 << 10

type patternInfo struct {
	ID         string `json:"id"`
	Active     bool   `json:"active"`
	Parameters any    `json:"parameters,omitempty"`
}

func (s *Server) handleListPatterns(w http.ResponseWriter, r *http.Request) {
	list := []patternInfo{}
	s.mu.Lock()
	current := s.current.Name()
	for _, name := range s.patterns.Names() {
		info := patternInfo{ID: name, Active: name == current}
		if a, ok := s.patterns[name].(Adjustable); ok {
			info.Parameters = a.Parameters()
		}
		list = append(list, info)
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string][]patternInfo{"patterns": list}); err != nil {
		s.logger.Warn("write patterns response", "error", err)
	}
}

// handleSetPattern switches to the named pattern. A non-empty body is applied
// as its parameters first; a rejected body leaves the active pattern as is.
func (s *Server) handleSetPattern(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("pattern")
	if _, ok := s.patterns[name]; !ok {
		s.logger.Info("pattern not found, skipping update", "pattern", name)
		http.Error(w, fmt.Sprintf("%v: %q", ErrUnknownPattern, name), http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxParametersBody))
	if err != nil {
		http.Error(w, "read body: "+err.Error(), http.StatusRequestEntityTooLarge)
		return
	}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := s.SetParameters(name, body); err != nil {
			s.logger.Info("rejected pattern parameters", "pattern", name, "error", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	if err := s.SetPattern(name); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	data, err := s.Preview()
	if err != nil {
		s.logger.Error("render preview", "error", err)
		http.Error(w, "preview failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", s.enc.ContentType())
	w.Write(data)
}
