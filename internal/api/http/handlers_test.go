package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/tgwa-bridge/internal/chat"
	"github.com/GriffinCanCode/tgwa-bridge/internal/domain/session"
)

type staticReporter struct {
	report Report
}

func (s staticReporter) Report() Report { return s.report }

func newRouter(r Report) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandlers(staticReporter{report: r})
	router := gin.New()
	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
	router.GET("/status", h.Status)
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthAlwaysOK(t *testing.T) {
	w := get(newRouter(Report{}), "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestReadyFollowsClient(t *testing.T) {
	w := get(newRouter(Report{Session: session.Snapshot{State: session.StateAbsent}}), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"absent"`)

	w = get(newRouter(Report{ClientReady: true}), "/ready")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStatusReport(t *testing.T) {
	evt := chat.NewEvent(chat.EventReady, "")
	w := get(newRouter(Report{
		RunID:       "run_01",
		ClientReady: true,
		LastEvent:   &evt,
		Breaker:     "closed",
		Session: session.Snapshot{
			State:     session.StateSynced,
			Backend:   "dropbox",
			RemoteKey: "/whatsapp/forwarder-session.db",
			LastSave:  &session.Outcome{Op: session.OpSave, Status: session.StatusOK, Trigger: "ready", Bytes: 4096},
		},
	}), "/status")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "run_01", body["run_id"])
	assert.Equal(t, "closed", body["breaker"])
	assert.Equal(t, "ready", body["last_event"].(map[string]interface{})["kind"])

	sess := body["session"].(map[string]interface{})
	assert.Equal(t, "synced", sess["state"])
	assert.Equal(t, "dropbox", sess["backend"])
	assert.Equal(t, "ok", sess["last_save"].(map[string]interface{})["status"])
	assert.Nil(t, sess["last_restore"])
}

func TestRoot(t *testing.T) {
	w := get(newRouter(Report{}), "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tgwa-bridge")
}
