package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mlimi/config"
	consultation "mlimi/pkg/consultation/service"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := config.AppConfig{
		Env:             "test",
		DBDriver:        "sqlite",
		DBPath:          filepath.Join(t.TempDir(), "app.db"),
		JWTSecret:       "test-secret",
		SessionTTL:      time.Hour,
		WeatherLocation: "Zomba, Malawi",
	}
	db, err := Open(cfg)
	require.NoError(t, err)
	a, err := New(cfg, db, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func call(t *testing.T, a *App, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func signUp(t *testing.T, a *App, name, email, role string) (token, id string) {
	t.Helper()
	rec := call(t, a, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"name": name, "email": email, "password": "secret1", "role": role,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	out := decode(t, rec)
	return out["token"].(string), out["profile"].(map[string]any)["id"].(string)
}

func TestConsultationRoundTrip(t *testing.T) {
	a := newTestApp(t)

	farmer, _ := signUp(t, a, "Chikondi", "farmer@example.mw", "farmer")
	consultant, consultantID := signUp(t, a, "Dr Banda", "consultant@example.mw", "consultant")

	_, err := a.Auth.CreateAdmin(context.Background(), "Root", "admin@example.mw", "secret1")
	require.NoError(t, err)
	rec := call(t, a, http.MethodPost, "/api/v1/auth/signin", "", map[string]string{
		"email": "admin@example.mw", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	signin := decode(t, rec)
	admin := signin["token"].(string)
	assert.Equal(t, "/admin", signin["redirect"])

	rec = call(t, a, http.MethodPost, "/api/v1/farms", farmer, map[string]any{
		"farm_name": "North Plot",
		"size":      "2.5 ha",
		"crops":     []string{"maize", " maize ", "beans"},
		"location":  "Zomba",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	farm := decode(t, rec)
	assert.Equal(t, 2.5, farm["size"])
	assert.Equal(t, []any{"maize", "beans"}, farm["crops"])

	rec = call(t, a, http.MethodPost, "/api/v1/consultations", farmer, map[string]string{
		"farm_id": farm["id"].(string), "issue_description": "Leaves turning yellow",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	c := decode(t, rec)
	id := c["id"].(string)
	assert.Equal(t, "pending", c["status"])

	// unapproved consultants are held back
	rec = call(t, a, http.MethodGet, "/api/v1/consultations/queue", consultant, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(t, a, http.MethodPost, "/api/v1/admin/profiles/"+consultantID+"/approve", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = call(t, a, http.MethodGet, "/api/v1/consultations/queue", consultant, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var queue []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &queue))
	require.Len(t, queue, 1)
	assert.Equal(t, id, queue[0]["id"])

	rec = call(t, a, http.MethodPost, "/api/v1/consultations/"+id+"/activate", farmer, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(t, a, http.MethodPost, "/api/v1/consultations/"+id+"/activate", consultant, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "active", decode(t, rec)["status"])

	rec = call(t, a, http.MethodPost, "/api/v1/consultations/"+id+"/recommendation", consultant,
		map[string]string{"recommendation": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, a, http.MethodPost, "/api/v1/consultations/"+id+"/recommendation", consultant,
		map[string]string{"recommendation": "Apply nitrogen top dressing"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = call(t, a, http.MethodGet, "/api/v1/consultations/"+id, farmer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode(t, rec)
	assert.Equal(t, "closed", got["status"])
	assert.Equal(t, "Apply nitrogen top dressing", got["recommendation"])
	assert.Equal(t, consultantID, got["consultant_id"])

	rec = call(t, a, http.MethodGet, "/api/v1/dashboard", farmer, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stats := decode(t, rec)["stats"].(map[string]any)
	assert.EqualValues(t, 1, stats["farms"])
	assert.EqualValues(t, 1, stats["closed"])
}

func TestRouteGuards(t *testing.T) {
	a := newTestApp(t)
	farmer, _ := signUp(t, a, "Chikondi", "farmer@example.mw", "farmer")

	rec := call(t, a, http.MethodGet, "/api/v1/farms", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "/login", decode(t, rec)["redirect"])

	rec = call(t, a, http.MethodGet, "/api/v1/admin/stats", farmer, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Access denied. Admin privileges required.", body["error"])
	assert.Equal(t, "/dashboard", body["redirect"])

	rec = call(t, a, http.MethodPost, "/api/v1/auth/signout", farmer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = call(t, a, http.MethodGet, "/api/v1/farms", farmer, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealth(t *testing.T) {
	a := newTestApp(t)
	rec := call(t, a, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestConsultationStreamRefreshesOnChange(t *testing.T) {
	a := newTestApp(t)
	farmer, _ := signUp(t, a, "Chikondi", "farmer@example.mw", "farmer")
	rec := call(t, a, http.MethodPost, "/api/v1/farms", farmer, map[string]any{"farm_name": "North Plot"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	farmID := decode(t, rec)["id"].(string)

	srv := httptest.NewServer(a.Echo)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/consultations/stream"
	conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + farmer}},
	})
	require.NoError(t, err)
	defer conn.CloseNow()

	var first consultation.ListResult
	require.NoError(t, wsjson.Read(ctx, conn, &first))
	assert.Empty(t, first.Items)
	assert.Equal(t, 1, a.Hub.Count("consultations"))

	rec = call(t, a, http.MethodPost, "/api/v1/consultations", farmer, map[string]string{
		"farm_id": farmID, "issue_description": "Fall armyworm",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var next consultation.ListResult
	require.NoError(t, wsjson.Read(ctx, conn, &next))
	require.Len(t, next.Items, 1)
	assert.Equal(t, "Fall armyworm", next.Items[0].IssueDescription)
	assert.EqualValues(t, 1, next.Stats.Pending)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
	assert.Eventually(t, func() bool { return a.Hub.Count("consultations") == 0 },
		5*time.Second, 20*time.Millisecond)
}

func TestStreamRequiresSession(t *testing.T) {
	a := newTestApp(t)
	rec := call(t, a, http.MethodGet, "/api/v1/consultations/stream", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNewRefusesProductionWithoutSecret(t *testing.T) {
	cfg := config.AppConfig{Env: "production", DBDriver: "sqlite", DBPath: filepath.Join(t.TempDir(), "p.db")}
	db, err := Open(cfg)
	require.NoError(t, err)
	_, err = New(cfg, db, zap.NewNop())
	assert.ErrorIs(t, err, config.ErrMissingJWTSecret)
}
