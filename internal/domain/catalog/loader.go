package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/utils"
	"github.com/bytedance/sonic"
	"github.com/charlievieth/fastwalk"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

// LoadReport summarizes one directory load
type LoadReport struct {
	Loaded []string          `json:"loaded"`
	Failed map[string]string `json:"failed,omitempty"` // manifest path -> reason
}

// Loader reads application manifests from disk into a Catalog
type Loader struct {
	catalog   *Catalog
	logger    *zap.Logger
	validator *utils.JSONSizeValidator
}

// NewLoader creates a loader feeding catalog
func NewLoader(catalog *Catalog, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		catalog:   catalog,
		logger:    logger.Named("catalog"),
		validator: utils.NewJSONSizeValidator(utils.MaxManifestSize),
	}
}

// Load walks dir and registers every manifest: files named app.<ext> or
// <name>.app.<ext>, where ext is yaml, yml, toml or json. Other data files,
// such as package.json inside an application's content, are ignored. A bad
// manifest is reported and skipped. A missing directory loads nothing.
func (l *Loader) Load(ctx context.Context, dir string) (*LoadReport, error) {
	report := &LoadReport{Failed: make(map[string]string)}

	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		l.logger.Warn("Catalog directory not found", zap.String("dir", dir))
		return report, nil
	}

	var (
		mu        sync.Mutex
		manifests []string
	)
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, dir, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			mu.Lock()
			report.Failed[path] = err.Error()
			mu.Unlock()
			return nil
		}
		if d.IsDir() {
			if path != dir && (strings.HasPrefix(d.Name(), ".") || d.Name() == "node_modules") {
				return fastwalk.SkipDir
			}
			return nil
		}
		if !isManifest(path) {
			return nil
		}

		mu.Lock()
		manifests = append(manifests, path)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	// walk order is nondeterministic, later duplicates win by path order
	sort.Strings(manifests)
	for _, path := range manifests {
		app, err := l.LoadFile(path)
		if err == nil {
			_, err = l.catalog.Put(app)
		}
		if err != nil {
			report.Failed[path] = err.Error()
			l.logger.Warn("Skipping manifest", zap.String("path", path), zap.Error(err))
			continue
		}
		report.Loaded = append(report.Loaded, app.ID)
	}

	l.logger.Info("Catalog loaded",
		zap.String("dir", dir),
		zap.Int("loaded", len(report.Loaded)),
		zap.Int("failed", len(report.Failed)))
	return report, nil
}

// manifestStem is the name part that marks a file as a manifest
const manifestStem = "app"

// LoadFile decodes one manifest. A relative content_dir is resolved
// against the manifest's directory.
func (l *Loader) LoadFile(path string) (*types.Application, error) {
	format := manifestFormat(path)
	if format == "" {
		return nil, fmt.Errorf("unsupported manifest type %q", filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	if err := l.validator.ValidateSize(data); err != nil {
		return nil, err
	}

	app, err := DecodeManifest(format, data)
	if err != nil {
		return nil, err
	}

	if app.ContentDir != "" && !filepath.IsAbs(app.ContentDir) {
		app.ContentDir = filepath.Join(filepath.Dir(path), app.ContentDir)
	}
	if app.ID == "" {
		app.ID = defaultID(path)
	}
	return app, nil
}

// DecodeManifest parses manifest bytes in the given format: yaml, toml or json
func DecodeManifest(format string, data []byte) (*types.Application, error) {
	var app types.Application
	var err error

	switch format {
	case "yaml":
		err = yaml.Unmarshal(data, &app)
	case "toml":
		err = toml.Unmarshal(data, &app)
	case "json":
		err = sonic.ConfigStd.Unmarshal(data, &app)
	default:
		return nil, fmt.Errorf("unsupported manifest format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s manifest: %w", format, err)
	}
	return &app, nil
}

func manifestFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	case ".json":
		return "json"
	default:
		return ""
	}
}

// isManifest matches app.<ext> and <name>.app.<ext>
func isManifest(path string) bool {
	if manifestFormat(path) == "" {
		return false
	}
	stem := strings.ToLower(manifestName(path))
	return stem == manifestStem || strings.HasSuffix(stem, "."+manifestStem)
}

// defaultID derives an id from the manifest name: notes.app.yaml is
// "notes", docs/app.toml is "docs".
func defaultID(path string) string {
	stem := manifestName(path)
	lower := strings.ToLower(stem)
	switch {
	case lower == manifestStem:
		return filepath.Base(filepath.Dir(path))
	case strings.HasSuffix(lower, "."+manifestStem):
		return stem[:len(stem)-len(manifestStem)-1]
	default:
		return stem
	}
}

func manifestName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
