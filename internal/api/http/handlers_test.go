package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/canvas/internal/domain/registry"
	"github.com/GriffinCanCode/AgentOS/canvas/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/canvas/internal/shared/protocol"
)

const twoWindowsJSON = `{"name":"desk","windows":[
	{"id":"A","title":"<i>Calc</i>","src":"http://localhost:9000/","position":{"x":100,"y":100},"size":{"width":300,"height":200}},
	{"id":"B","src":"http://localhost:9001/","position":{"x":500,"y":100},"size":{"width":"auto","height":"auto"}}]}`

func setupRouter(t *testing.T, max int) (*gin.Engine, *registry.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	metrics := monitoring.NewMetrics()
	manager := registry.NewManager(registry.Options{MaxCanvases: max}).WithMetrics(metrics)
	h := NewHandlers(manager, metrics, nil, "test")

	router := gin.New()
	router.GET("/health", h.Health)
	router.GET("/canvases", h.ListCanvases)
	router.POST("/canvases", h.CreateCanvas)
	router.GET("/canvases/:id", h.GetCanvas)
	router.DELETE("/canvases/:id", h.CloseCanvas)
	router.POST("/canvases/:id/messages", h.DispatchMessage)
	return router, manager
}

func do(router *gin.Engine, method, path, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createCanvas(t *testing.T, router *gin.Engine) CanvasResponse {
	t.Helper()
	w := do(router, http.MethodPost, "/canvases", "application/json", twoWindowsJSON)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp CanvasResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCreateCanvas(t *testing.T) {
	router, _ := setupRouter(t, 0)

	resp := createCanvas(t, router)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "desk", resp.Name)
	require.Len(t, resp.State.Windows, 2)
	assert.Equal(t, "Calc", resp.State.Windows[0].Title, "titles are sanitized")
	assert.True(t, resp.State.Windows[1].Size.Auto)
}

func TestCreateCanvasFromLayoutDocument(t *testing.T) {
	router, _ := setupRouter(t, 0)

	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{
			name:        "yaml",
			contentType: "application/yaml",
			body:        "name: notes\nwindows:\n  - {id: N, src: 'http://localhost:9000/', x: 1, y: 2, width: auto, height: auto}\n",
		},
		{
			name:        "toml",
			contentType: "application/toml",
			body:        "name = \"notes\"\n[[windows]]\nid = \"N\"\nsrc = \"http://localhost:9000/\"\nx = 1.0\ny = 2.0\nwidth = \"auto\"\nheight = \"auto\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, http.MethodPost, "/canvases", tt.contentType, tt.body)
			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

			var resp CanvasResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "notes", resp.Name)
			require.Len(t, resp.State.Windows, 1)
			assert.Equal(t, 2.0, resp.State.Windows[0].Position.Y)
		})
	}
}

func TestCreateCanvasErrors(t *testing.T) {
	router, _ := setupRouter(t, 1)

	tests := []struct {
		name        string
		contentType string
		body        string
		want        int
	}{
		{name: "not json", contentType: "application/json", body: "{", want: http.StatusBadRequest},
		{name: "duplicate ids", contentType: "application/json", body: `{"windows":[{"id":"A","size":{"width":"auto","height":"auto"}},{"id":"A","size":{"width":"auto","height":"auto"}}]}`, want: http.StatusBadRequest},
		{name: "bad size", contentType: "application/json", body: `{"windows":[{"id":"A","size":{"width":"auto","height":3}}]}`, want: http.StatusBadRequest},
		{name: "bad yaml", contentType: "application/yaml", body: "windows:\n  - {id: A, width: 1}\n", want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, http.MethodPost, "/canvases", tt.contentType, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}

	createCanvas(t, router)
	w := do(router, http.MethodPost, "/canvases", "application/json", twoWindowsJSON)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetAndListCanvases(t *testing.T) {
	router, _ := setupRouter(t, 0)
	created := createCanvas(t, router)

	w := do(router, http.MethodGet, "/canvases/"+created.ID, "", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodGet, "/canvases/cnv_missing", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, http.MethodGet, "/canvases", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Canvases, 1)
	assert.Equal(t, created.ID, list.Canvases[0].ID)
	assert.Equal(t, 1, list.Stats.Active)
}

func TestDispatchMessage(t *testing.T) {
	router, _ := setupRouter(t, 0)
	created := createCanvas(t, router)
	path := "/canvases/" + created.ID + "/messages"

	tests := []struct {
		name        string
		body        string
		wantCode    int
		wantOutcome string
		wantReason  string
	}{
		{name: "click", body: `{"type":"click","data":{"iframeId":"A"}}`, wantCode: http.StatusOK, wantOutcome: "applied"},
		{name: "drag without session", body: `{"type":"drag","data":{"iframeId":"A","x":1,"y":1}}`, wantCode: http.StatusOK, wantOutcome: "ignored", wantReason: "out_of_order"},
		{name: "stale target", body: `{"type":"click","data":{"iframeId":"Z"}}`, wantCode: http.StatusOK, wantOutcome: "ignored", wantReason: "stale_target"},
		{name: "unknown type", body: `{"type":"scroll"}`, wantCode: http.StatusBadRequest},
		{name: "missing data", body: `{"type":"resize"}`, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, http.MethodPost, path, "application/json", tt.body)
			require.Equal(t, tt.wantCode, w.Code, w.Body.String())
			if tt.wantOutcome == "" {
				var msg protocol.Message
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msg))
				assert.Equal(t, protocol.TypeError, msg.Type)
				return
			}
			var resp DispatchResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantOutcome, resp.Outcome)
			assert.Equal(t, tt.wantReason, resp.Reason)
			assert.Equal(t, []string{"A"}, resp.State.Selection)
		})
	}

	w := do(router, http.MethodPost, path, "application/json", `{"type":"ping"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"type":"pong"}`, w.Body.String())
}

func TestCloseCanvas(t *testing.T) {
	router, manager := setupRouter(t, 0)
	created := createCanvas(t, router)

	w := do(router, http.MethodDelete, "/canvases/"+created.ID, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, manager.Stats().Active)

	w = do(router, http.MethodDelete, "/canvases/"+created.ID, "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, http.MethodPost, "/canvases/"+created.ID+"/messages", "application/json", `{"type":"canvasClick"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth(t *testing.T) {
	router, _ := setupRouter(t, 0)
	createCanvas(t, router)

	w := do(router, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status   string         `json:"status"`
		Canvases registry.Stats `json:"canvases"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, registry.Stats{Active: 1, Max: registry.DefaultMaxCanvases}, body.Canvases)
}
