package launcher

import (
	"context"
	"fmt"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/monitoring"
	"go.uber.org/zap"
)

// Store is the key-value persistence the launcher writes window state to.
// Get reports an absent key with found=false and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

const windowStateKeyPrefix = "window_state_"

// WindowStateKey returns the store key for an application
func WindowStateKey(appID string) string {
	return windowStateKeyPrefix + appID
}

// windowStore adapts a Store to WindowState values
type windowStore struct {
	store   Store
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

func newWindowStore(store Store, logger *zap.Logger) *windowStore {
	return &windowStore{store: store, logger: logger}
}

// load returns the saved state, or nil when none is usable. Store
// failures and corrupt records are logged, never returned.
func (w *windowStore) load(ctx context.Context, appID string) *WindowState {
	if w.store == nil {
		return nil
	}

	raw, found, err := w.store.Get(ctx, WindowStateKey(appID))
	if err != nil {
		w.logger.Warn("Failed to read window state", zap.String("app_id", appID), zap.Error(err))
		return nil
	}
	if !found {
		return nil
	}

	ws := DecodeWindowState(raw)
	if ws == nil {
		w.logger.Warn("Ignoring corrupt window state", zap.String("app_id", appID))
	}
	return ws
}

// save persists a state. A nil state is skipped.
func (w *windowStore) save(ctx context.Context, appID string, ws *WindowState) error {
	if w.store == nil || ws == nil {
		return nil
	}

	err := w.write(ctx, appID, ws)
	if w.metrics != nil {
		w.metrics.RecordWindowStateWrite(err)
	}
	return err
}

func (w *windowStore) write(ctx context.Context, appID string, ws *WindowState) error {
	data, err := ws.Encode()
	if err != nil {
		return fmt.Errorf("encode window state for %s: %w", appID, err)
	}
	if err := w.store.Set(ctx, WindowStateKey(appID), data); err != nil {
		return fmt.Errorf("save window state for %s: %w", appID, err)
	}
	return nil
}
