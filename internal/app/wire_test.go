package app

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scratchden/platform/internal/catalog"
	"github.com/scratchden/platform/internal/prize"
)

const routerConfig = `
ticketTypes:
  - id: basic
    name:
      en: Basic
    faceValue: 1.00
    rtpTarget: 0.5
    maxPrize: 5.00
    prizeTiers:
      - label: win
        amount: 5.00
        share: 1.0

game:
  initialBalance: 100.00
  targetBalance: 500.00
`

const encounterRouterConfig = `
ticketTypes:
  - id: basic
    name:
      en: Basic
    faceValue: 1.00
    rtpTarget: 0.5
    maxPrize: 5.00
    prizeTiers:
      - label: win
        amount: 5.00
        share: 1.0

encounterEvents:
  - id: spirit
    name: Spirit
    triggerChance: 1.0
    maxPerSession: 1
    options:
      - id: bust
        label: Bust
        effect:
          balancePenalty: 200.00

game:
  initialBalance: 100.00
  targetBalance: 500.00
`

func newTestRouter(t *testing.T, source prize.RandomSource) http.Handler {
	return newTestRouterWithConfig(t, routerConfig, source)
}

func newTestRouterWithConfig(t *testing.T, config string, source prize.RandomSource) http.Handler {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(config), 0o644))
	cat, err := catalog.Load(path)
	require.NoError(t, err)

	return NewRouter(RouterDeps{
		Catalog: cat,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Source:  source,
	})
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func TestRouter(t *testing.T) {
	router := newTestRouter(t, prize.NewSeededSource(7))

	t.Run("health", func(t *testing.T) {
		w, body := doJSON(t, router, "GET", "/health", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "healthy", body["status"])
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("catalog listing", func(t *testing.T) {
		w, body := doJSON(t, router, "GET", "/catalog/tickets", nil)
		require.Equal(t, http.StatusOK, w.Code)
		tickets := body["tickets"].([]any)
		require.Len(t, tickets, 1)

		w, _ = doJSON(t, router, "GET", "/catalog/tickets/basic", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w, _ = doJSON(t, router, "GET", "/catalog/tickets/nope", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("session lifecycle over HTTP", func(t *testing.T) {
		w, body := doJSON(t, router, "POST", "/sessions", map[string]any{"player_id": "p1"})
		require.Equal(t, http.StatusCreated, w.Code)
		session := body["session"].(map[string]any)
		id := session["id"].(string)
		assert.Equal(t, "active", session["state"])

		w, body = doJSON(t, router, "GET", "/sessions/"+id, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, id, body["session"].(map[string]any)["id"])

		w, body = doJSON(t, router, "GET", "/sessions", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, body["sessions"])

		w, body = doJSON(t, router, "POST", "/sessions/"+id+"/purchase", map[string]any{"ticket_type_id": "basic"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "completed", body["status"])
		assert.NotNil(t, body["ticket"])

		w, body = doJSON(t, router, "DELETE", "/sessions/"+id, map[string]any{"reason": "done"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "terminated", body["session"].(map[string]any)["state"])

		w, body = doJSON(t, router, "POST", "/sessions/"+id+"/purchase", map[string]any{"ticket_type_id": "basic"})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "SESSION_NOT_ACTIVE", body["code"])
	})

	t.Run("purchase validation", func(t *testing.T) {
		w, body := doJSON(t, router, "POST", "/sessions", nil)
		require.Equal(t, http.StatusCreated, w.Code)
		id := body["session"].(map[string]any)["id"].(string)

		w, body = doJSON(t, router, "POST", "/sessions/"+id+"/purchase", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", body["code"])
	})

	t.Run("unknown session is 404", func(t *testing.T) {
		w, body := doJSON(t, router, "GET", "/sessions/4d3c72be-0000-0000-0000-000000000000", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "NOT_FOUND", body["code"])
	})

	t.Run("closing resolution is a conflict", func(t *testing.T) {
		router := newTestRouterWithConfig(t, encounterRouterConfig, prize.NewSeededSource(7))

		w, body := doJSON(t, router, "POST", "/sessions", nil)
		require.Equal(t, http.StatusCreated, w.Code)
		id := body["session"].(map[string]any)["id"].(string)

		w, body = doJSON(t, router, "POST", "/sessions/"+id+"/purchase", map[string]any{"ticket_type_id": "basic"})
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "encounter_required", body["status"])

		w, body = doJSON(t, router, "POST", "/sessions/"+id+"/purchase", map[string]any{
			"ticket_type_id":      "basic",
			"encounter_option_id": "bust",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "session_closed", body["status"])
		assert.Equal(t, "lost", body["session"].(map[string]any)["state"])
	})

	t.Run("metrics endpoint responds", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/metrics", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
