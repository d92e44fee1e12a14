package testutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// ErrNotFound is returned by MemTempStore for unknown keys.
var ErrNotFound = errors.New("temp upload not found")

// MemTempStore is an in-memory temp upload store.
type MemTempStore struct {
	mu      sync.Mutex
	seq     int
	files   map[string][]byte
	written map[string]time.Time

	// RemoveErr, when set, is returned by Remove and the file is kept.
	RemoveErr error
	// SaveErr, when set, is returned by Save.
	SaveErr error
}

func NewMemTempStore() *MemTempStore {
	return &MemTempStore{
		files:   make(map[string][]byte),
		written: make(map[string]time.Time),
	}
}

func (m *MemTempStore) Save(_ context.Context, name string, r io.Reader) (string, error) {
	if m.SaveErr != nil {
		return "", m.SaveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	key := fmt.Sprintf("%d-%s", m.seq, name)
	m.files[key] = data
	m.written[key] = time.Now()
	return key, nil
}

func (m *MemTempStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[key]
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MemTempStore) Remove(_ context.Context, key string) error {
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, key)
	delete(m.written, key)
	return nil
}

func (m *MemTempStore) Sweep(_ context.Context, olderThan time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for key, at := range m.written {
		if at.Before(olderThan) {
			delete(m.files, key)
			delete(m.written, key)
			n++
		}
	}
	return n, nil
}

// Age backdates every stored upload by d.
func (m *MemTempStore) Age(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, at := range m.written {
		m.written[key] = at.Add(-d)
	}
}

// Len returns the number of stored uploads.
func (m *MemTempStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}
