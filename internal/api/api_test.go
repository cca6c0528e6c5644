package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/forkful/backend/internal/middleware"
	"github.com/pageza/forkful/backend/internal/models"
	"github.com/pageza/forkful/backend/internal/service"
	"github.com/pageza/forkful/backend/internal/testhelpers"
	"github.com/pageza/forkful/backend/internal/types"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

// memStore keeps uploaded objects in memory
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memStore) Put(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
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

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	auth   *service.AuthService
	store  *memStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := testhelpers.SetupTestDatabase(t)
	store := &memStore{objects: map[string][]byte{}}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.NoRoute(middleware.NotFound())
	RegisterRoutes(router, NewServices(db, nil, store, testSecret, time.Hour, 24*time.Hour, 30))

	return &testServer{
		router: router,
		db:     db,
		auth:   service.NewAuthService(db, testSecret, time.Hour, 24*time.Hour),
		store:  store,
	}
}

func (s *testServer) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := s.auth.GenerateToken(user, types.AccessToken)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func fields(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	f, ok := body["fields"].(map[string]interface{})
	require.True(t, ok, "response has no fields: %v", body)
	return f
}
