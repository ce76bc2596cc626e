package catalog

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/utils"
)

var (
	// ErrNotFound is returned for unknown application ids
	ErrNotFound = errors.New("application not found")
	// ErrInvalidApplication wraps every validation failure
	ErrInvalidApplication = errors.New("invalid application")
)

// Catalog holds the applications the launcher knows about
type Catalog struct {
	mu   sync.RWMutex
	apps map[string]*types.Application // Protected by mu

	metrics *monitoring.Metrics
	now     func() time.Time
}

// New creates an empty catalog
func New() *Catalog {
	return &Catalog{
		apps: make(map[string]*types.Application),
		now:  time.Now,
	}
}

// WithMetrics reports the catalog size
func (c *Catalog) WithMetrics(metrics *monitoring.Metrics) *Catalog {
	c.metrics = metrics
	return c
}

// Put normalizes, validates and stores a copy of app, replacing any
// application with the same id.
func (c *Catalog) Put(app *types.Application) (*types.Application, error) {
	if app == nil {
		return nil, fmt.Errorf("%w: nil application", ErrInvalidApplication)
	}

	stored := app.Clone()
	Normalize(stored)
	if err := Validate(stored); err != nil {
		return nil, err
	}
	stored.UpdatedAt = c.now()

	c.mu.Lock()
	c.apps[stored.ID] = stored
	size := len(c.apps)
	c.mu.Unlock()

	c.report(size)
	return stored.Clone(), nil
}

// Get returns a copy of the application
func (c *Catalog) Get(id string) (*types.Application, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	app, ok := c.apps[id]
	if !ok {
		return nil, false
	}
	return app.Clone(), true
}

// Lookup is Get returning ErrNotFound
func (c *Catalog) Lookup(id string) (*types.Application, error) {
	app, ok := c.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return app, nil
}

// List returns copies of every application sorted by id
func (c *Catalog) List() []*types.Application {
	c.mu.RLock()
	apps := make([]*types.Application, 0, len(c.apps))
	for _, app := range c.apps {
		apps = append(apps, app.Clone())
	}
	c.mu.RUnlock()

	sort.Slice(apps, func(i, j int) bool { return apps[i].ID < apps[j].ID })
	return apps
}

// Remove deletes an application and reports whether it existed
func (c *Catalog) Remove(id string) bool {
	c.mu.Lock()
	_, ok := c.apps[id]
	delete(c.apps, id)
	size := len(c.apps)
	c.mu.Unlock()

	if ok {
		c.report(size)
	}
	return ok
}

// Autostart returns the launchable applications flagged for launch at boot
func (c *Catalog) Autostart() []*types.Application {
	var apps []*types.Application
	for _, app := range c.List() {
		if app.Autostart && app.Status.Launchable() {
			apps = append(apps, app)
		}
	}
	return apps
}

// Stats returns catalog statistics
func (c *Catalog) Stats() types.CatalogStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := types.CatalogStats{
		TotalApps: len(c.apps),
		ByStatus:  make(map[types.Status]int),
	}
	for _, app := range c.apps {
		stats.ByStatus[app.Status]++
		if app.Autostart {
			stats.AutostartApps++
		}
	}
	return stats
}

func (c *Catalog) report(size int) {
	if c.metrics != nil {
		c.metrics.SetCatalogApps(size)
	}
}

// Normalize fills defaults: kind from the populated target, status ready,
// title from the id.
func Normalize(app *types.Application) {
	if app.Kind == "" {
		if app.ContentDir != "" && app.URL == "" {
			app.Kind = types.KindLocal
		} else {
			app.Kind = types.KindWeb
		}
	}
	if app.Status == "" {
		app.Status = types.StatusReady
	}
	if app.Title == "" {
		app.Title = app.ID
	}
}

// Validate checks an application record
func Validate(app *types.Application) error {
	invalid := func(err error) error {
		return fmt.Errorf("%w: %v", ErrInvalidApplication, err)
	}

	if err := utils.ValidateID(app.ID, "id", true); err != nil {
		return invalid(err)
	}
	if err := utils.ValidateName(app.Title, "title"); err != nil {
		return invalid(err)
	}
	if err := utils.ValidateDescription(app.Description, "description", false); err != nil {
		return invalid(err)
	}
	if !app.Status.Valid() {
		return invalid(fmt.Errorf("unknown status %q", app.Status))
	}

	switch app.Kind {
	case types.KindWeb:
		if err := utils.ValidateURL(app.URL, "url", true); err != nil {
			return invalid(err)
		}
	case types.KindLocal:
		if app.ContentDir == "" {
			return invalid(errors.New("content_dir is required for local applications"))
		}
	default:
		return invalid(fmt.Errorf("unknown kind %q", app.Kind))
	}

	if err := utils.ValidateHeaders(app.Headers); err != nil {
		return invalid(err)
	}
	if err := utils.ValidateTags(app.Tags); err != nil {
		return invalid(err)
	}
	if app.Width < 0 || app.Height < 0 || app.Width > utils.MaxWindowDimension || app.Height > utils.MaxWindowDimension {
		return invalid(fmt.Errorf("window size %dx%d out of range", app.Width, app.Height))
	}
	return nil
}
