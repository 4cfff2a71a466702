package blob

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

var ErrAssetNotFound = errors.New("blob: asset not found")

// Memory is an in-process Store for tests and local development.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte
	seq     atomic.Int64

	// FailDelete, when non-nil, is returned by Delete. Lets tests exercise
	// the rejection path where asset cleanup errors abort the cascade.
	FailDelete error
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

func (m *Memory) Upload(ctx context.Context, data []byte, contentType string) (Asset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := fmt.Sprintf("mem-%d", m.seq.Add(1))
	buf := make([]byte, len(data))
	copy(buf, data)
	m.objects[id] = buf

	return Asset{URL: "memory://" + id, ID: id}, nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailDelete != nil {
		return m.FailDelete
	}
	if _, ok := m.objects[id]; !ok {
		return ErrAssetNotFound
	}
	delete(m.objects, id)
	return nil
}

// Has reports whether an asset is still stored.
func (m *Memory) Has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[id]
	return ok
}
