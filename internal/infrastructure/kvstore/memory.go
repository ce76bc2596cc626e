package kvstore

import (
	"context"
	"sync"
	"sync/atomic"
)

// Memory keeps values in process memory
type Memory struct {
	data   sync.Map
	closed atomic.Bool
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if m.closed.Load() {
		return "", false, ErrClosed
	}
	if err := validateKey(key); err != nil {
		return "", false, err
	}
	v, ok := m.data.Load(key)
	if !ok {
		return "", false, nil
	}
	return v.(string), true, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if err := validateKey(key); err != nil {
		return err
	}
	m.data.Store(key, value)
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if err := validateKey(key); err != nil {
		return err
	}
	m.data.Delete(key)
	return nil
}

func (m *Memory) Close() error {
	m.closed.Store(true)
	return nil
}
