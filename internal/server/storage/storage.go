// Package storage keeps product image bytes in object storage and hands out
// time-limited URLs to read them back.
package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PresignExpiry is how long an image URL handed to a client stays valid.
const PresignExpiry = 15 * time.Minute

// ObjectStore stores image objects by key.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	URL(ctx context.Context, key string) (string, error)
}

// NewStorageKey returns a unique object key for an image of a product.
func NewStorageKey(companyID, productID int64, extension string) string {
	d := time.Now()
	key := fmt.Sprintf("products/%d/%d/%d/%02d/%02d/%v", companyID, productID, d.Year(), d.Month(), d.Day(), uuid.New())
	if extension = strings.TrimPrefix(extension, "."); extension != "" {
		key += "." + extension
	}
	return key
}

// MemoryStore is an ObjectStore held in process memory. Its URLs use the
// memory:// scheme and are only meaningful to tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: map[string][]byte{}}
}

func (m *MemoryStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryStore) URL(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.objects[key]; !ok {
		return "", fmt.Errorf("object %s not found", key)
	}
	return "memory://" + key, nil
}

// Object returns a stored object; ok is false when key is unknown.
func (m *MemoryStore) Object(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.objects[key]
	return b, ok
}
