package objectstore

import (
	"bytes"
	"context"
	"io"
	"sync"
)

type memObject struct {
	data        []byte
	contentType string
}

// MemStore is an in-memory Store used by tests and local development.
type MemStore struct {
	mu      sync.Mutex
	objects map[string]memObject

	// FailPuts makes every Put fail with ErrWrite, for exercising the
	// compensation paths.
	FailPuts bool
}

func NewMemStore() *MemStore {
	return &MemStore{objects: make(map[string]memObject)}
}

func (m *MemStore) Put(ctx context.Context, body io.Reader, contentType, originalName, namespace string) (*PutResult, error) {
	if m.FailPuts {
		return nil, ErrWrite
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, ErrWrite
	}

	key := NewKey(originalName, namespace)

	m.mu.Lock()
	m.objects[key] = memObject{data: data, contentType: contentType}
	m.mu.Unlock()

	return &PutResult{Key: key, Size: int64(len(data))}, nil
}

func (m *MemStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

func (m *MemStore) Open(ctx context.Context, key string) (*Object, error) {
	m.mu.Lock()
	obj, ok := m.objects[key]
	m.mu.Unlock()

	if !ok {
		return nil, ErrNotFound
	}

	return &Object{
		Body:          io.NopCloser(bytes.NewReader(obj.data)),
		ContentType:   obj.contentType,
		ContentLength: int64(len(obj.data)),
	}, nil
}

// Len reports the number of stored objects.
func (m *MemStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
