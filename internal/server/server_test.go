package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/nightjar-editor/nightjar/internal/environment"
	"github.com/nightjar-editor/nightjar/internal/infrastructure/monitoring"
	"github.com/nightjar-editor/nightjar/internal/project"
	"github.com/nightjar-editor/nightjar/internal/restore"
	"github.com/nightjar-editor/nightjar/internal/shared/types"
	"github.com/nightjar-editor/nightjar/internal/statestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWorkspace struct {
	opened []string
}

func (w *stubWorkspace) Open(ctx context.Context, path string) error {
	w.opened = append(w.opened, path)
	return nil
}
func (w *stubWorkspace) TextEditors() []restore.Editor    { return nil }
func (w *stubWorkspace) DockItems() []restore.DockItem    { return nil }
func (w *stubWorkspace) Serialize() map[string]any        { return map[string]any{} }
func (w *stubWorkspace) Deserialize(state map[string]any) {}

type stubWindows struct{}

func (stubWindows) Confirm(ctx context.Context, req types.ConfirmRequest) (int, error) {
	return 0, nil
}
func (stubWindows) Open(ctx context.Context, req types.OpenWindowRequest) error { return nil }

type testEnv struct {
	srv     *Server
	env     *environment.Environment
	project *project.Project
}

func newTestServer(t *testing.T) *testEnv {
	t.Helper()

	proj := project.New()
	env, err := environment.New(environment.Options{
		Store:     statestore.NewMemoryStore(),
		Project:   proj,
		Workspace: &stubWorkspace{},
		Windows:   stubWindows{},
		Version:   "1.5.6",
	})
	require.NoError(t, err)
	require.NoError(t, env.Initialize(context.Background()))
	t.Cleanup(env.Destroy)

	_, registry := monitoring.NewMetrics()

	srv := NewServer(env, Options{
		Version:  "1.5.6",
		Registry: registry,
	})
	return &testEnv{srv: srv, env: env, project: proj}
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestRoot(t *testing.T) {
	te := newTestServer(t)

	rec := do(t, te.srv, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "nightjar-environd")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestHealth(t *testing.T) {
	te := newTestServer(t)

	rec := do(t, te.srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"scheduler":"idle"`)
	assert.Contains(t, rec.Body.String(), `"release_channel":"stable"`)
}

func TestOpenLocationsEndpoint(t *testing.T) {
	te := newTestServer(t)
	dir := t.TempDir()

	body := `{"locations":[{"path_to_open":"` + dir + `"}]}`
	rec := do(t, te.srv, http.MethodPost, "/open-locations", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{dir}, te.project.Paths())
}

func TestOpenLocationsRejectsMalformedBody(t *testing.T) {
	te := newTestServer(t)

	rec := do(t, te.srv, http.MethodPost, "/open-locations", `{"locations": "nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaveAndLoadState(t *testing.T) {
	te := newTestServer(t)
	te.project.SetPaths([]string{t.TempDir()})

	rec := do(t, te.srv, http.MethodPost, "/state/save", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, te.srv, http.MethodGet, "/state", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"found":true`)
}

func TestLoadStateAbsent(t *testing.T) {
	te := newTestServer(t)

	rec := do(t, te.srv, http.MethodGet, "/state", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"found":false`)
}

func TestNoteActivityEndpoint(t *testing.T) {
	te := newTestServer(t)

	rec := do(t, te.srv, http.MethodPost, "/activity", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pending-save", te.env.Scheduler().State().String())
}

func TestMetricsEndpoint(t *testing.T) {
	te := newTestServer(t)

	rec := do(t, te.srv, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDPassthrough(t *testing.T) {
	te := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	te.srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestWebSocketPingPong(t *testing.T) {
	te := newTestServer(t)

	ts := httptest.NewServer(te.srv.Router())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var welcome map[string]any
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, "system", welcome["type"])

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "ping"}))

	var pong map[string]any
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, "pong", pong["type"])
}
