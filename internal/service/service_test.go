package service_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pageza/forkful/backend/internal/service"
)

// memStore is an in-memory service.ObjectStore
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	fail    bool
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (m *memStore) Put(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	if m.fail {
		return "", errors.New("bucket unavailable")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return "https://cdn.test/" + key, nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func ptr[T any](v T) *T { return &v }

func requireFieldError(t *testing.T, err error, field, msg string) {
	t.Helper()
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields[field], msg)
}
