package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"school_system/internal/domain"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

// routerAndToken bundles a router with an access token for request helpers.
type routerAndToken struct {
	router *gin.Engine
	token  string
}

// memoryBlacklist is an in-process TokenBlacklist for tests.
type memoryBlacklist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newMemoryBlacklist() *memoryBlacklist {
	return &memoryBlacklist{revoked: make(map[string]time.Time)}
}

func (b *memoryBlacklist) Revoke(_ context.Context, jti string, until time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked[jti] = until
	return nil
}

func (b *memoryBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	until, ok := b.revoked[jti]
	return ok && time.Now().Before(until), nil
}

// newTestRouter builds the full route tree over an in-memory database.
func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&domain.User{}, &domain.Student{}, &domain.Attendance{}, &domain.FeeRecord{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	r := gin.New()
	Routes(r, Deps{
		DB:         db,
		Redis:      nil,
		Blacklist:  newMemoryBlacklist(),
		JWTSecret:  testSecret,
		AccessTTL:  15 * time.Minute,
		RefreshTTL: time.Hour,
	})
	return r, db
}

// doJSON performs a request against the router and returns the recorder.
func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decodeBody unmarshals a response body into a map.
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

// registerUser registers an account and returns nothing; fails the test on error.
func registerUser(t *testing.T, r *gin.Engine, email, role string) {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/accounts/register/", "", map[string]any{
		"email":      email,
		"first_name": "Test",
		"last_name":  "User",
		"password":   "password123",
		"role":       role,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d (%s)", email, w.Code, w.Body.String())
	}
}

// loginUser logs in and returns the access token, refresh token and user id.
func loginUser(t *testing.T, r *gin.Engine, email string) (string, string, uint) {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/accounts/login/", "", map[string]any{
		"email":    email,
		"password": "password123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d (%s)", email, w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	access, _ := body["access"].(string)
	refresh, _ := body["refresh"].(string)
	user, _ := body["user"].(map[string]any)
	id, _ := user["id"].(float64)
	if access == "" || refresh == "" || id == 0 {
		t.Fatalf("login %s: incomplete response %v", email, body)
	}
	return access, refresh, uint(id)
}
