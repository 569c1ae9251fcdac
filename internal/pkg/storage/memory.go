package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// Memory keeps objects in a map. Objects are lost on restart.
type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte
	types   map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte), types: make(map[string]string)}
}

// PutObject implements Storage.
func (m *Memory) PutObject(_ context.Context, bucket, key string, r io.Reader, opts PutOptions) (ObjectInfo, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, r)
	if err != nil {
		return ObjectInfo{}, err
	}

	m.mu.Lock()
	m.objects[bucket+"/"+key] = buf.Bytes()
	m.types[bucket+"/"+key] = opts.ContentType
	m.mu.Unlock()

	return ObjectInfo{Bucket: bucket, Key: key, Size: n, ContentType: opts.ContentType}, nil
}

// DeleteObject implements Storage.
func (m *Memory) DeleteObject(_ context.Context, bucket, key string) error {
	m.mu.Lock()
	delete(m.objects, bucket+"/"+key)
	delete(m.types, bucket+"/"+key)
	m.mu.Unlock()
	return nil
}

// Object returns the stored bytes and content type.
func (m *Memory) Object(bucket, key string) ([]byte, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, "", ErrObjectNotFound
	}
	return data, m.types[bucket+"/"+key], nil
}

// Close implements io.Closer.
func (m *Memory) Close() error {
	return nil
}
