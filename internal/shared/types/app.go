package types

import "time"

// Kind identifies how an application is reached
type Kind string

const (
	KindWeb   Kind = "web"   // Served by a local or remote web server
	KindLocal Kind = "local" // Static content loaded from disk
)

// Status represents the deployment lifecycle of an application
type Status string

const (
	StatusDraft      Status = "draft"
	StatusGenerating Status = "generating"
	StatusReady      Status = "ready"
	StatusRunning    Status = "running"
	StatusFailed     Status = "failed"
	StatusArchived   Status = "archived"
)

// Launchable reports whether an application in this status may be launched.
// Failed applications can be launched again to retry the deployment.
func (s Status) Launchable() bool {
	switch s {
	case StatusReady, StatusRunning, StatusFailed:
		return true
	default:
		return false
	}
}

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusGenerating, StatusReady, StatusRunning, StatusFailed, StatusArchived:
		return true
	default:
		return false
	}
}

// Application describes a deployed front-end the launcher can supervise
type Application struct {
	ID          string `json:"id" yaml:"id" toml:"id"`
	Title       string `json:"title" yaml:"title" toml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Kind        Kind   `json:"kind" yaml:"kind" toml:"kind"`
	Status      Status `json:"status" yaml:"status" toml:"status"`

	// Web applications
	URL     string            `json:"url,omitempty" yaml:"url,omitempty" toml:"url,omitempty"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty" toml:"headers,omitempty"`

	// Local-content applications
	ContentDir      string   `json:"content_dir,omitempty" yaml:"content_dir,omitempty" toml:"content_dir,omitempty"`
	IndexCandidates []string `json:"index_candidates,omitempty" yaml:"index_candidates,omitempty" toml:"index_candidates,omitempty"`

	// Window preferences
	Width            int  `json:"width,omitempty" yaml:"width,omitempty" toml:"width,omitempty"`
	Height           int  `json:"height,omitempty" yaml:"height,omitempty" toml:"height,omitempty"`
	Resizable        bool `json:"resizable" yaml:"resizable" toml:"resizable"`
	ShowNavigation   bool `json:"show_navigation" yaml:"show_navigation" toml:"show_navigation"`
	EnableJavaScript bool `json:"enable_javascript" yaml:"enable_javascript" toml:"enable_javascript"`
	EnableStorage    bool `json:"enable_storage" yaml:"enable_storage" toml:"enable_storage"`

	Autostart bool      `json:"autostart,omitempty" yaml:"autostart,omitempty" toml:"autostart,omitempty"`
	Tags      []string  `json:"tags,omitempty" yaml:"tags,omitempty" toml:"tags,omitempty"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at,omitempty" toml:"updated_at,omitempty"`
}

// Clone returns a deep copy so callers cannot mutate shared maps and slices
func (a *Application) Clone() *Application {
	if a == nil {
		return nil
	}
	c := *a
	if a.Headers != nil {
		c.Headers = make(map[string]string, len(a.Headers))
		for k, v := range a.Headers {
			c.Headers[k] = v
		}
	}
	if a.IndexCandidates != nil {
		c.IndexCandidates = append([]string(nil), a.IndexCandidates...)
	}
	if a.Tags != nil {
		c.Tags = append([]string(nil), a.Tags...)
	}
	return &c
}

// CatalogStats contains catalog statistics
type CatalogStats struct {
	TotalApps     int            `json:"total_apps"`
	ByStatus      map[Status]int `json:"by_status"`
	AutostartApps int            `json:"autostart_apps"`
}
