package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"workshop_tool_tracker/app"
	"workshop_tool_tracker/config"
	"workshop_tool_tracker/db/dbtest"
	"workshop_tool_tracker/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success       bool                  `json:"success"`
	Message       string                `json:"message"`
	Tool          *models.Tool          `json:"tool"`
	Tools         []models.Tool         `json:"tools"`
	BorrowRecord  *models.BorrowRecord  `json:"borrowRecord"`
	Records       []models.BorrowRecord `json:"records"`
	Notifications []models.Notification `json:"notifications"`
	Count         int                   `json:"count"`
}

type harness struct {
	t *testing.T
	r *gin.Engine
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Config{App: config.AppConfig{Env: config.AppEnvDev, WebOrigin: "*"}}
	a := app.Assemble(cfg, nil, dbtest.New(t), nil)
	RegisterRoutes(a.Router, a)
	return &harness{t: t, r: a.Router}
}

func (h *harness) do(method, path string, body any) (int, envelope) {
	h.t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.r.ServeHTTP(w, req)

	var env envelope
	require.NoError(h.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func TestDrillScenario(t *testing.T) {
	h := newHarness(t)

	status, env := h.do(http.MethodPost, "/api/tools", map[string]any{"name": "Drill"})
	require.Equal(t, http.StatusCreated, status, env.Message)
	require.NotNil(t, env.Tool)
	drill := env.Tool
	assert.Equal(t, models.ToolAvailable, drill.Status)

	status, env = h.do(http.MethodGet, "/api/tools/qr/"+drill.ID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Tool found", env.Message)

	status, env = h.do(http.MethodPost, "/api/borrow", map[string]any{
		"toolId": drill.ID, "borrowerName": "Alice", "borrowerLocation": "Shop A", "purpose": "project",
	})
	require.Equal(t, http.StatusOK, status, env.Message)
	require.NotNil(t, env.BorrowRecord)
	recID := env.BorrowRecord.ID

	status, env = h.do(http.MethodGet, "/api/borrow-records/active", nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, env.Records, 1)
	require.NotNil(t, env.Records[0].Tool)
	assert.Equal(t, "Drill", env.Records[0].Tool.Name)

	status, env = h.do(http.MethodPost, "/api/borrow-records/return", map[string]any{"borrowRecordId": recID})
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Equal(t, models.BorrowReturned, env.BorrowRecord.Status)

	_, env = h.do(http.MethodGet, "/api/borrow-records/active", nil)
	assert.Empty(t, env.Records)

	_, env = h.do(http.MethodGet, "/api/tools", nil)
	require.Len(t, env.Tools, 1)
	assert.Equal(t, models.ToolAvailable, env.Tools[0].Status)

	_, env = h.do(http.MethodGet, "/api/borrow-records", nil)
	assert.Len(t, env.Records, 1)
}

func TestErrorEnvelopes(t *testing.T) {
	h := newHarness(t)

	status, env := h.do(http.MethodPost, "/api/tools", map[string]any{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
	assert.Equal(t, "Tool name is required", env.Message)

	status, env = h.do(http.MethodGet, "/api/tools/ffffffff", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Tool not found", env.Message)

	status, env = h.do(http.MethodPost, "/api/borrow-records", map[string]any{"toolId": "x"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "All fields are required: toolId, borrowerName, borrowerLocation, purpose", env.Message)

	status, env = h.do(http.MethodPost, "/api/return", map[string]any{"borrowRecordId": "nope"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Active borrow record not found", env.Message)

	req := httptest.NewRequest(http.MethodPost, "/api/tools", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	h.r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteAndForceDelete(t *testing.T) {
	h := newHarness(t)
	_, env := h.do(http.MethodPost, "/api/tools", map[string]any{"name": "Saw"})
	id := env.Tool.ID

	_, env = h.do(http.MethodPost, "/api/borrow", map[string]any{
		"toolId": id, "borrowerName": "Bob", "borrowerLocation": "Bay 2", "purpose": "cut",
	})
	recID := env.BorrowRecord.ID

	status, env := h.do(http.MethodDelete, "/api/tools/"+id, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "cannot delete borrowed tool", env.Message)

	h.do(http.MethodPost, "/api/return", map[string]any{"borrowRecordId": recID})

	status, env = h.do(http.MethodDelete, "/api/tools/"+id, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "tool has borrow history, use force delete", env.Message)

	status, _ = h.do(http.MethodDelete, "/api/tools/"+id+"/force", nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = h.do(http.MethodGet, "/api/tools/"+id, nil)
	assert.Equal(t, http.StatusNotFound, status)
	_, env = h.do(http.MethodGet, "/api/borrow-records", nil)
	assert.Empty(t, env.Records)
}

func TestUpdateTool(t *testing.T) {
	h := newHarness(t)
	_, env := h.do(http.MethodPost, "/api/tools", map[string]any{"name": "Grinder"})
	id := env.Tool.ID

	status, env := h.do(http.MethodPut, "/api/tools/"+id, map[string]any{"status": "maintenance", "description": "needs disc"})
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Equal(t, models.ToolMaintenance, env.Tool.Status)

	status, env = h.do(http.MethodPut, "/api/tools/"+id, map[string]any{"status": "broken"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
}

func TestNotifications(t *testing.T) {
	h := newHarness(t)
	h.do(http.MethodPost, "/api/tools", map[string]any{"name": "A"})
	h.do(http.MethodPost, "/api/tools", map[string]any{"name": "B"})

	_, env := h.do(http.MethodGet, "/api/notifications", nil)
	require.Len(t, env.Notifications, 2)
	first := env.Notifications[0]
	require.NotNil(t, first.ToolInfo)

	status, _ := h.do(http.MethodPatch, "/api/notifications/"+first.ID+"/read", nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = h.do(http.MethodPut, "/api/notifications/"+first.ID+"/read", nil)
	assert.Equal(t, http.StatusOK, status, "marking twice succeeds")
	status, _ = h.do(http.MethodPatch, "/api/notifications/missing/read", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, env = h.do(http.MethodPatch, "/api/notifications/read-all", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, env.Count)
}

func TestOverdueEndpoint(t *testing.T) {
	h := newHarness(t)
	_, env := h.do(http.MethodPost, "/api/tools", map[string]any{"name": "Drill"})
	h.do(http.MethodPost, "/api/borrow", map[string]any{
		"toolId": env.Tool.ID, "borrowerName": "Alice", "borrowerLocation": "Shop A", "purpose": "project",
	})

	status, env := h.do(http.MethodPost, "/api/borrow-records/overdue", nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Zero(t, env.Count)

	status, env = h.do(http.MethodPost, "/api/borrow-records/overdue", map[string]any{"olderThanHours": -1})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = h.do(http.MethodPost, "/api/borrow-records/overdue", map[string]any{"olderThanHours": 1e12})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "olderThanHours is too large", env.Message)
}

func TestHealthHelloMetrics(t *testing.T) {
	h := newHarness(t)

	w := httptest.NewRecorder()
	h.r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())

	status, env := h.do(http.MethodGet, "/hello", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Hello Workshop Tool Tracking System!", env.Message)

	h.do(http.MethodPost, "/api/tools", map[string]any{"name": "Drill"})
	w = httptest.NewRecorder()
	h.r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `tool_events_total{event="created"} 1`)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="POST",route="/api/tools",status="201"} 1`)
}
