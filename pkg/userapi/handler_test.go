package userapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mlimi/entities"
)

func newStore(t *testing.T) Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "users.db")), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.User{}))
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, db.Create(&[]entities.User{
		{ID: 1, Name: "Grace Chirwa", Email: "grace@example.mw", CreatedAt: created},
		{ID: 2, Name: "Gone", Email: "gone@example.mw", CreatedAt: created, Deleted: true},
	}).Error)
	return NewStore(db)
}

type failingStore struct{}

func (failingStore) FindActive(context.Context, int64) (*UserDTO, error) {
	return nil, errors.New("connection refused")
}

func get(t *testing.T, store Store, path string, origin string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	srv := NewServer(NewHandler(store, nil), []string{"http://localhost:3000"}, nil)
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if origin != "" {
		req.Header.Set(echo.HeaderOrigin, origin)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	body := map[string]any{}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestGetUser(t *testing.T) {
	store := newStore(t)

	rec, body := get(t, store, "/api/user/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body, 4)
	assert.Equal(t, float64(1), body["id"])
	assert.Equal(t, "Grace Chirwa", body["name"])
	assert.Equal(t, "grace@example.mw", body["email"])
	assert.Contains(t, body, "created_at")
}

func TestGetUserErrors(t *testing.T) {
	store := newStore(t)
	tests := []struct {
		name    string
		path    string
		code    int
		errText string
		message string
	}{
		{"non numeric", "/api/user/abc", 400, "Invalid user ID", "User ID must be a positive integer"},
		{"negative", "/api/user/-5", 400, "Invalid user ID", "User ID must be a positive integer"},
		{"decimal", "/api/user/1.5", 400, "Invalid user ID", "User ID must be a positive integer"},
		{"zero", "/api/user/0", 400, "Invalid user ID", "User ID out of valid range"},
		{"too large", "/api/user/1000000000", 400, "Invalid user ID", "User ID out of valid range"},
		{"overflow", "/api/user/99999999999999999999", 400, "Invalid user ID", "User ID out of valid range"},
		{"missing", "/api/user/42", 404, "User not found", "No user found with the specified ID"},
		{"deleted", "/api/user/2", 404, "User not found", "No user found with the specified ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := get(t, store, tt.path, "")
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.errText, body["error"])
			assert.Equal(t, tt.message, body["message"])
		})
	}
}

func TestGetUserStorageFailure(t *testing.T) {
	rec, body := get(t, failingStore{}, "/api/user/7", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Database error", body["error"])
	assert.Equal(t, "Failed to retrieve user data", body["message"])
}

func TestCORSAllowList(t *testing.T) {
	store := newStore(t)
	rec, _ := get(t, store, "/api/user/1", "http://localhost:3000")
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	rec, _ = get(t, store, "/api/user/1", "https://evil.example")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
