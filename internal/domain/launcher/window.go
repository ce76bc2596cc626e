package launcher

import (
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// ErrInvalidWindowState is returned for geometry with a non-positive size
var ErrInvalidWindowState = errors.New("invalid window state")

var sonicAPI = sonic.ConfigStd

// WindowState captures window geometry and display mode
type WindowState struct {
	X           int       `json:"x"`
	Y           int       `json:"y"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	Maximized   bool      `json:"maximized"`
	Minimized   bool      `json:"minimized"`
	Fullscreen  bool      `json:"fullscreen"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Validate checks the size invariant
func (w WindowState) Validate() error {
	if w.Width <= 0 || w.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d must be positive", ErrInvalidWindowState, w.Width, w.Height)
	}
	return nil
}

// Encode serializes the state to its persisted form
func (w WindowState) Encode() (string, error) {
	if err := w.Validate(); err != nil {
		return "", err
	}
	return sonicAPI.MarshalToString(w)
}

// windowStateRecord mirrors the persisted layout. Pointers tell absent
// geometry apart from zero values.
type windowStateRecord struct {
	X           *int       `json:"x"`
	Y           *int       `json:"y"`
	Width       *int       `json:"width"`
	Height      *int       `json:"height"`
	Maximized   bool       `json:"maximized"`
	Minimized   bool       `json:"minimized"`
	Fullscreen  bool       `json:"fullscreen"`
	LastUpdated *time.Time `json:"lastUpdated"`
}

// DecodeWindowState parses a persisted state. Anything unusable yields
// nil: malformed text, missing geometry, or a non-positive size.
func DecodeWindowState(data string) *WindowState {
	if data == "" {
		return nil
	}

	var rec windowStateRecord
	if err := sonicAPI.UnmarshalFromString(data, &rec); err != nil {
		return nil
	}
	if rec.X == nil || rec.Y == nil || rec.Width == nil || rec.Height == nil {
		return nil
	}

	ws := &WindowState{
		X:          *rec.X,
		Y:          *rec.Y,
		Width:      *rec.Width,
		Height:     *rec.Height,
		Maximized:  rec.Maximized,
		Minimized:  rec.Minimized,
		Fullscreen: rec.Fullscreen,
	}
	if rec.LastUpdated != nil {
		ws.LastUpdated = *rec.LastUpdated
	}
	if ws.Validate() != nil {
		return nil
	}
	return ws
}

func (w *WindowState) clone() *WindowState {
	if w == nil {
		return nil
	}
	c := *w
	return &c
}
