package launcher

import (
	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/types"
)

// Default window size when the application does not declare one
const (
	DefaultWidth  = 1200
	DefaultHeight = 800
)

// LaunchConfig describes how to reach and display an application.
// Built once per launch request; fields are only readable through accessors.
type LaunchConfig struct {
	kind             types.Kind
	address          string
	title            string
	width            int
	height           int
	resizable        bool
	showNavigation   bool
	enableJavaScript bool
	enableStorage    bool
	headers          map[string]string
}

// NewLaunchConfig derives a configuration from an application and the
// resolved target address.
func NewLaunchConfig(app *types.Application, address string) LaunchConfig {
	cfg := LaunchConfig{
		kind:             app.Kind,
		address:          address,
		title:            app.Title,
		width:            app.Width,
		height:           app.Height,
		resizable:        app.Resizable,
		showNavigation:   app.ShowNavigation,
		enableJavaScript: app.EnableJavaScript,
		enableStorage:    app.EnableStorage,
	}
	if cfg.kind == "" {
		cfg.kind = types.KindWeb
	}
	if cfg.title == "" {
		cfg.title = app.ID
	}
	if cfg.width <= 0 {
		cfg.width = DefaultWidth
	}
	if cfg.height <= 0 {
		cfg.height = DefaultHeight
	}
	if len(app.Headers) > 0 {
		cfg.headers = make(map[string]string, len(app.Headers))
		for k, v := range app.Headers {
			cfg.headers[k] = v
		}
	}
	return cfg
}

func (c LaunchConfig) Kind() types.Kind       { return c.kind }
func (c LaunchConfig) Address() string        { return c.address }
func (c LaunchConfig) Title() string          { return c.title }
func (c LaunchConfig) Width() int             { return c.width }
func (c LaunchConfig) Height() int            { return c.height }
func (c LaunchConfig) Resizable() bool        { return c.resizable }
func (c LaunchConfig) ShowNavigation() bool   { return c.showNavigation }
func (c LaunchConfig) EnableJavaScript() bool { return c.enableJavaScript }
func (c LaunchConfig) EnableStorage() bool    { return c.enableStorage }

// Headers returns a copy of the probe headers
func (c LaunchConfig) Headers() map[string]string {
	if c.headers == nil {
		return nil
	}
	out := make(map[string]string, len(c.headers))
	for k, v := range c.headers {
		out[k] = v
	}
	return out
}

// configView is the serialized form of a LaunchConfig
type configView struct {
	Kind             types.Kind `json:"kind"`
	Address          string     `json:"address"`
	Title            string     `json:"title"`
	Width            int        `json:"width"`
	Height           int        `json:"height"`
	Resizable        bool       `json:"resizable"`
	ShowNavigation   bool       `json:"show_navigation"`
	EnableJavaScript bool       `json:"enable_javascript"`
	EnableStorage    bool       `json:"enable_storage"`
}

// MarshalJSON exposes the configuration without the probe headers
func (c LaunchConfig) MarshalJSON() ([]byte, error) {
	return sonicAPI.Marshal(configView{
		Kind:             c.kind,
		Address:          c.address,
		Title:            c.title,
		Width:            c.width,
		Height:           c.height,
		Resizable:        c.resizable,
		ShowNavigation:   c.showNavigation,
		EnableJavaScript: c.enableJavaScript,
		EnableStorage:    c.enableStorage,
	})
}
