package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/sheetchart-go/internal/logging"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/history"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/storage"
)

type testEnv struct {
	t      *testing.T
	server *Server
	srv    *httptest.Server
	client *http.Client
	store  *history.Store
	token  string
}

func newEnv(t *testing.T, token string) *testEnv {
	return newEnvWith(t, Options{AuthToken: token})
}

func newEnvWith(t *testing.T, opts Options) *testEnv {
	t.Helper()
	store := history.Open(storage.NewMemory(), history.Options{Location: time.UTC})
	opts.Parse = sheetchart.DefaultOptions()
	opts.Logger = logging.NewWriter(logging.LevelError, io.Discard)
	s := New(store, opts)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testEnv{t: t, server: s, srv: srv, client: &http.Client{Jar: jar}, store: store, token: opts.AuthToken}
}

func (e *testEnv) do(method, path string, body io.Reader, contentType string) *http.Response {
	e.t.Helper()
	req, err := http.NewRequest(method, e.srv.URL+path, body)
	require.NoError(e.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	resp, err := e.client.Do(req)
	require.NoError(e.t, err)
	e.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) upload(name string, data []byte) *http.Response {
	e.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(e.t, err)
	_, err = fw.Write(data)
	require.NoError(e.t, err)
	require.NoError(e.t, mw.Close())
	return e.do(http.MethodPost, "/api/upload", &body, mw.FormDataContentType())
}

func decode(t *testing.T, resp *http.Response, data any) APIResponse {
	t.Helper()
	env := APIResponse{Data: data}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func salesWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]interface{}{
		{"Month", "Units", "Sales"},
		{"Jan", 3, 10},
		{"Feb", 5, 30},
		{"Mar", 4, 20},
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, v))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestHealthIsOpen(t *testing.T) {
	env := newEnv(t, "s3cret")
	resp, err := http.Get(env.srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthGate(t *testing.T) {
	env := newEnv(t, "s3cret")

	resp, err := http.Get(env.srv.URL + "/api/history")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, env.srv.URL+"/api/history", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/history", nil, "").StatusCode)
}

func TestUploadAndSelection(t *testing.T) {
	env := newEnv(t, "")

	resp := env.upload("sales.xlsx", salesWorkbook(t))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view sessionView
	decode(t, resp, &view)
	assert.Equal(t, "parsed", view.State)
	assert.Equal(t, "sales.xlsx", view.File)
	assert.Equal(t, []string{"Month", "Units", "Sales"}, view.Headers)
	assert.Equal(t, "Units", view.Selection.YColumn)
	assert.Equal(t, []float64{3, 5, 4}, view.Result.Series.Values)
	assert.Equal(t, 1, env.store.Len())

	resp = env.do(http.MethodPatch, "/api/session/selection",
		strings.NewReader(`{"y_column":"Sales","chart_kind":"line"}`), "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &view)
	assert.Equal(t, []float64{10, 30, 20}, view.Result.Series.Values)
	assert.Equal(t, "Sales vs Month", view.Label)
	require.NotNil(t, view.Description.Summary)
	assert.Equal(t, 60.0, view.Description.Summary.Sum)

	resp = env.do(http.MethodPatch, "/api/session/selection",
		strings.NewReader(`{"chart_kind":"radar"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadRejectsGarbage(t *testing.T) {
	env := newEnv(t, "")
	resp := env.upload("broken.xlsx", []byte("not a workbook"))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	out := decode(t, resp, nil)
	assert.False(t, out.Success)
	assert.Equal(t, 0, env.store.Len())
}

func TestChartAndDownloads(t *testing.T) {
	env := newEnv(t, "")

	resp := env.do(http.MethodGet, "/api/session/chart.png", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	workbook := salesWorkbook(t)
	require.Equal(t, http.StatusOK, env.upload("sales.xlsx", workbook).StatusCode)

	resp = env.do(http.MethodGet, "/api/session/chart.png", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	resp = env.do(http.MethodGet, "/api/session/chart.pdf", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	pdf, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))

	resp = env.do(http.MethodGet, "/api/session/original", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got, _ := io.ReadAll(resp.Body)
	assert.Equal(t, workbook, got)

	resp = env.do(http.MethodGet, "/api/history/0/download", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got, _ = io.ReadAll(resp.Body)
	assert.Equal(t, workbook, got)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "sales.xlsx")
}

func TestHistoryRoutes(t *testing.T) {
	env := newEnv(t, "")
	for _, name := range []string{"Report.xlsx", "data.xlsx", "report-2.xlsx"} {
		_, err := env.store.Append(name, "QQ==")
		require.NoError(t, err)
	}

	var items []historyItem
	decode(t, env.do(http.MethodGet, "/api/history?q=REP", nil, ""), &items)
	require.Len(t, items, 2)
	assert.Equal(t, 0, items[0].Index)
	assert.Equal(t, 2, items[1].Index)

	decode(t, env.do(http.MethodGet, "/api/history?filter=yesterday", nil, ""), &items)
	assert.Empty(t, items)

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/history?filter=week", nil, "").StatusCode)

	var latest historyItem
	decode(t, env.do(http.MethodGet, "/api/history/latest", nil, ""), &latest)
	assert.Equal(t, "report-2.xlsx", latest.Name)
	assert.Equal(t, 2, latest.Index)

	assert.Equal(t, http.StatusOK, env.do(http.MethodDelete, "/api/history/1", nil, "").StatusCode)
	assert.Equal(t, http.StatusOK, env.do(http.MethodDelete, "/api/history/9", nil, "").StatusCode)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodDelete, "/api/history/x", nil, "").StatusCode)
	assert.Equal(t, 2, env.store.Len())

	assert.Equal(t, http.StatusOK, env.do(http.MethodDelete, "/api/history", nil, "").StatusCode)
	assert.Equal(t, 0, env.store.Len())
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/history/latest", nil, "").StatusCode)
}

func TestReloadHandoff(t *testing.T) {
	env := newEnv(t, "")
	require.Equal(t, http.StatusOK, env.upload("sales.xlsx", salesWorkbook(t)).StatusCode)

	resp := env.do(http.MethodPatch, "/api/session/selection",
		strings.NewReader(`{"y_column":"Sales"}`), "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodPost, "/api/history/0/reload", nil, "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var view sessionView
	decode(t, env.do(http.MethodGet, "/api/session", nil, ""), &view)
	assert.Equal(t, "Units", view.Selection.YColumn, "replay resets the selection")
	assert.Equal(t, 1, env.store.Len(), "replay is not recorded")

	resp = env.do(http.MethodPatch, "/api/session/selection",
		strings.NewReader(`{"y_column":"Sales"}`), "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	decode(t, env.do(http.MethodGet, "/api/session", nil, ""), &view)
	assert.Equal(t, "Sales", view.Selection.YColumn, "the hand-off is consumed once")

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodPost, "/api/history/5/reload", nil, "").StatusCode)
}

func TestSessionsAreIsolated(t *testing.T) {
	env := newEnv(t, "")
	require.Equal(t, http.StatusOK, env.upload("sales.xlsx", salesWorkbook(t)).StatusCode)

	other := &http.Client{}
	resp, err := other.Get(env.srv.URL + "/api/session")
	require.NoError(t, err)
	defer resp.Body.Close()
	var view sessionView
	decode(t, resp, &view)
	assert.Equal(t, "empty", view.State)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fresh returns a copy of e with its own cookie jar, acting as another browser.
func (e *testEnv) fresh() *testEnv {
	e.t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(e.t, err)
	other := *e
	other.client = &http.Client{Jar: jar}
	return &other
}

func TestReadOnlyRoutesDoNotCreateSessions(t *testing.T) {
	env := newEnv(t, "")
	for i := 0; i < 1000; i++ {
		resp, err := http.Get(env.srv.URL + "/api/session")
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	for _, path := range []string{"/api/session/chart.png", "/api/session/chart.pdf", "/api/session/original"} {
		resp, err := http.Get(env.srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
	resp := env.do(http.MethodPatch, "/api/session/selection", strings.NewReader(`{"y_column":"Sales"}`), "application/json")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	assert.Equal(t, 0, env.server.SessionCount())
}

func TestEmptySessionView(t *testing.T) {
	env := newEnv(t, "")
	var view sessionView
	decode(t, env.do(http.MethodGet, "/api/session", nil, ""), &view)
	assert.Equal(t, "empty", view.State)
	assert.Empty(t, view.Headers)
	assert.True(t, view.NoData)
	assert.Len(t, view.ChartKinds, 5)
}

func TestSessionLimitEvictsLeastRecentlyUsed(t *testing.T) {
	clock := &testClock{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
	env := newEnvWith(t, Options{MaxSessions: 3, Clock: clock.Now})
	workbook := salesWorkbook(t)

	browsers := make([]*testEnv, 5)
	for i := range browsers {
		browsers[i] = env.fresh()
		require.Equal(t, http.StatusOK, browsers[i].upload("sales.xlsx", workbook).StatusCode)
		clock.Add(time.Second)
		assert.LessOrEqual(t, env.server.SessionCount(), 3)
	}
	assert.Equal(t, 3, env.server.SessionCount())

	var view sessionView
	decode(t, browsers[0].do(http.MethodGet, "/api/session", nil, ""), &view)
	assert.Equal(t, "empty", view.State, "the oldest session was evicted")
	decode(t, browsers[4].do(http.MethodGet, "/api/session", nil, ""), &view)
	assert.Equal(t, "parsed", view.State)
}

func TestIdleSessionsExpire(t *testing.T) {
	clock := &testClock{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}
	env := newEnvWith(t, Options{SessionTTL: time.Minute, Clock: clock.Now})
	require.Equal(t, http.StatusOK, env.upload("sales.xlsx", salesWorkbook(t)).StatusCode)
	require.Equal(t, 1, env.server.SessionCount())

	clock.Add(30 * time.Second)
	var view sessionView
	decode(t, env.do(http.MethodGet, "/api/session", nil, ""), &view)
	assert.Equal(t, "parsed", view.State)

	clock.Add(2 * time.Minute)
	decode(t, env.do(http.MethodGet, "/api/session", nil, ""), &view)
	assert.Equal(t, "empty", view.State)
	assert.Equal(t, 0, env.server.SessionCount())

	other := env.fresh()
	require.Equal(t, http.StatusOK, other.upload("sales.xlsx", salesWorkbook(t)).StatusCode)
	assert.Equal(t, 1, env.server.SessionCount())
}
