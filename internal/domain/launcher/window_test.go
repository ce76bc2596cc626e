package launcher

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowStateValidate(t *testing.T) {
	assert.NoError(t, WindowState{Width: 1, Height: 1}.Validate())
	assert.NoError(t, WindowState{X: -200, Y: -10, Width: 800, Height: 600}.Validate())

	for _, ws := range []WindowState{
		{Width: 0, Height: 600},
		{Width: 800, Height: 0},
		{Width: -1, Height: -1},
	} {
		err := ws.Validate()
		assert.True(t, errors.Is(err, ErrInvalidWindowState), "%+v", ws)
	}
}

func TestWindowStateRoundTrip(t *testing.T) {
	ws := WindowState{
		X:           10,
		Y:           -20,
		Width:       1024,
		Height:      768,
		Maximized:   true,
		LastUpdated: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	encoded, err := ws.Encode()
	require.NoError(t, err)
	assert.Contains(t, encoded, `"lastUpdated"`)

	decoded := DecodeWindowState(encoded)
	require.NotNil(t, decoded)
	assert.Equal(t, ws.X, decoded.X)
	assert.Equal(t, ws.Y, decoded.Y)
	assert.Equal(t, ws.Width, decoded.Width)
	assert.Equal(t, ws.Height, decoded.Height)
	assert.True(t, decoded.Maximized)
	assert.False(t, decoded.Minimized)
	assert.True(t, ws.LastUpdated.Equal(decoded.LastUpdated))
}

func TestWindowStateEncodeRejectsInvalid(t *testing.T) {
	_, err := WindowState{Width: 0, Height: 10}.Encode()
	assert.ErrorIs(t, err, ErrInvalidWindowState)
}

func TestDecodeWindowState(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"empty", "", false},
		{"malformed", "{not json", false},
		{"wrong shape", `[1,2,3]`, false},
		{"missing width", `{"x":0,"y":0,"height":600}`, false},
		{"missing x", `{"y":0,"width":800,"height":600}`, false},
		{"zero size", `{"x":0,"y":0,"width":0,"height":600}`, false},
		{"negative size", `{"x":0,"y":0,"width":800,"height":-5}`, false},
		{"string geometry", `{"x":"0","y":0,"width":800,"height":600}`, false},
		{"minimal", `{"x":0,"y":0,"width":800,"height":600}`, true},
		{"flags without timestamp", `{"x":5,"y":5,"width":800,"height":600,"fullscreen":true}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := DecodeWindowState(tt.input)
			if tt.valid {
				assert.NotNil(t, ws)
			} else {
				assert.Nil(t, ws)
			}
		})
	}
}

func TestWindowStateClone(t *testing.T) {
	var nilState *WindowState
	assert.Nil(t, nilState.clone())

	ws := &WindowState{Width: 100, Height: 100}
	c := ws.clone()
	c.Width = 200
	assert.Equal(t, 100, ws.Width)
}
