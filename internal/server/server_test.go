package server_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gorilla/websocket"

	"github.com/raysh454/dccdev/internal/app"
	"github.com/raysh454/dccdev/internal/builds"
	"github.com/raysh454/dccdev/internal/metrics"
	"github.com/raysh454/dccdev/internal/process"
	"github.com/raysh454/dccdev/internal/server"
	"github.com/raysh454/dccdev/internal/slots"
	"github.com/raysh454/dccdev/internal/testutil"
)

type testEnv struct {
	server     *server.Server
	store      *slots.Store
	resolver   *testutil.FakeResolver
	controller *testutil.FakeController
	metrics    *metrics.Metrics
	logger     *testutil.DummyLogger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := &testutil.DummyLogger{}
	store, err := slots.NewStore(testutil.WriteSlotsFile(t, t.TempDir(), testutil.SampleSlots(3)), logger)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	env := &testEnv{
		store: store,
		resolver: &testutil.FakeResolver{
			Builds: map[int]slots.Build{42: {
				PR: 42, PRTitle: "Add search", PRAuthor: "alice",
				Branch: "feature/search", CommitID: "abc123", BuildNumber: "137",
			}},
			PRs: []builds.PullRequest{
				{Number: 42, Title: "Add search", User: builds.User{Login: "alice"}, Head: builds.Ref{Ref: "feature/search"}},
				{Number: 7, Title: "Fix typo", User: builds.User{Login: "bob"}, Head: builds.Ref{Ref: "typo"}},
			},
		},
		controller: &testutil.FakeController{
			Output:   "DCC Portal started",
			Logs:     "line 1\nline 2\n",
			Statuses: map[int]process.Status{1: process.StatusRunning, 2: process.StatusStopped},
		},
		metrics: metrics.New(),
		logger:  logger,
	}

	orch, err := app.NewOrchestrator(app.DefaultConfig(), app.Deps{
		Store:      store,
		Resolver:   env.resolver,
		Controller: env.controller,
		Metrics:    env.metrics,
		Logger:     logger,
	})
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}

	cfg := server.DefaultConfig()
	cfg.LogFollowInterval = 20 * time.Millisecond
	cfg.Logger = logger
	env.server, err = server.NewServer(cfg, orch, env.metrics)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return env
}

func do(t *testing.T, h http.Handler, method, path, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, h, http.MethodGet, path, "", "")
}

func postForm(t *testing.T, h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, h, http.MethodPost, path, "application/x-www-form-urlencoded", form.Encode())
}

func document(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	if err != nil {
		t.Fatalf("parse HTML: %v", err)
	}
	return doc
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON response: %v (body: %s)", err, rec.Body.String())
	}
}

// ─── HTML dashboard ────────────────────────────────────────────────────

func TestServer_HomeListsSlotsWithStatus(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := get(t, env.server, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	doc := document(t, rec)

	rows := doc.Find("#slots tr.slot")
	if rows.Length() != 3 {
		t.Fatalf("expected 3 slot rows, got %d", rows.Length())
	}
	want := []string{"running", "stopped", "unknown"}
	rows.Each(func(i int, row *goquery.Selection) {
		if got := strings.TrimSpace(row.Find(".status").Text()); got != want[i] {
			t.Errorf("row %d: expected status %q, got %q", i, want[i], got)
		}
	})
	if got := strings.TrimSpace(rows.First().Find(".build").Text()); got != "501" {
		t.Errorf("expected build 501, got %q", got)
	}
}

func TestServer_ViewSlot(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := get(t, env.server, "/view/2")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	doc := document(t, rec)
	if got := strings.TrimSpace(doc.Find("#slot .name").Text()); got != "slot-2" {
		t.Errorf("expected name slot-2, got %q", got)
	}
}

func TestServer_BadAndUnknownSlotIDs(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	cases := map[string]int{
		"/view/abc":           http.StatusBadRequest,
		"/view/9":             http.StatusNotFound,
		"/edit/0":             http.StatusNotFound,
		"/log/x":              http.StatusBadRequest,
		"/api/slots/9":        http.StatusNotFound,
		"/api/slots/nope":     http.StatusBadRequest,
		"/api/slots/9/status": http.StatusNotFound,
	}
	for path, want := range cases {
		if rec := get(t, env.server, path); rec.Code != want {
			t.Errorf("%s: expected %d, got %d", path, want, rec.Code)
		}
	}
}

func TestServer_EditShowsPRChoices(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	doc := document(t, get(t, env.server, "/edit/1"))

	if v, _ := doc.Find(`#edit input[name="name"]`).Attr("value"); v != "slot-1" {
		t.Errorf("expected name input slot-1, got %q", v)
	}
	var values []string
	doc.Find(`#edit input[name="prRadios"]`).Each(func(_ int, s *goquery.Selection) {
		v, _ := s.Attr("value")
		values = append(values, v)
	})
	if !slices.Equal(values, []string{"0", "42", "7"}) {
		t.Errorf("expected radios [0 42 7], got %v", values)
	}
}

func TestServer_EditAPIFailureIsBadGateway(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.resolver.Err = builds.ErrAPIStatus

	if rec := get(t, env.server, "/edit/1"); rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestServer_SaveWithoutNewBuild(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := postForm(t, env.server, "/save/1", url.Values{
		"name":        {"renamed"},
		"description": {"desc"},
		"directory":   {"/srv/dcc/renamed"},
		"url":         {"https://renamed.example.org"},
		"prRadios":    {"0"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	doc := document(t, rec)
	if got := strings.TrimSpace(doc.Find(".output").Text()); got != app.NoBuildOutput {
		t.Errorf("expected %q, got %q", app.NoBuildOutput, got)
	}

	s, _ := env.store.Get(1)
	if s.Name != "renamed" || s.BuildNumber != "501" {
		t.Errorf("expected renamed slot with original build, got %+v", s)
	}
	if len(env.controller.CallsFor("deploy")) != 0 {
		t.Error("expected no deploy")
	}
}

func TestServer_SaveWithNewBuildDeploys(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.controller.Output = "installed 137"

	rec := postForm(t, env.server, "/save/3", url.Values{
		"name":     {"slot-3"},
		"prRadios": {"42"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := strings.TrimSpace(document(t, rec).Find(".output").Text()); got != "installed 137" {
		t.Errorf("expected deploy output, got %q", got)
	}
	deploys := env.controller.CallsFor("deploy")
	if len(deploys) != 1 || deploys[0].SlotID != 3 || deploys[0].BuildNumber != "137" {
		t.Errorf("unexpected deploys %+v", deploys)
	}
}

func TestServer_SaveErrors(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	if rec := postForm(t, env.server, "/save/1", url.Values{"prRadios": {"abc"}}); rec.Code != http.StatusBadRequest {
		t.Errorf("bad prRadios: expected 400, got %d", rec.Code)
	}
	if rec := postForm(t, env.server, "/save/1", url.Values{"prRadios": {"99"}}); rec.Code != http.StatusBadGateway {
		t.Errorf("unknown PR build: expected 502, got %d", rec.Code)
	}
	if rec := postForm(t, env.server, "/save/5", url.Values{"prRadios": {"0"}}); rec.Code != http.StatusNotFound {
		t.Errorf("unknown slot: expected 404, got %d", rec.Code)
	}
}

func TestServer_StartStopShowOutput(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	for _, path := range []string{"/start/1", "/stop/1"} {
		rec := get(t, env.server, path)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
		if got := strings.TrimSpace(document(t, rec).Find(".output").Text()); got != "DCC Portal started" {
			t.Errorf("%s: unexpected output %q", path, got)
		}
	}
	if len(env.controller.CallsFor("start")) != 1 || len(env.controller.CallsFor("stop")) != 1 {
		t.Errorf("unexpected controller calls %+v", env.controller.Calls)
	}
}

func TestServer_StartSpawnFailureIs500(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.controller.Err = process.ErrSpawn

	if rec := get(t, env.server, "/start/1"); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestServer_LogPage(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	doc := document(t, get(t, env.server, "/log/2"))
	if got := doc.Find("#log").Text(); got != "line 1\nline 2\n" {
		t.Errorf("unexpected log text %q", got)
	}
	if follow, _ := doc.Find("#log").Attr("data-follow"); follow != "/ws/slots/2/log" {
		t.Errorf("unexpected follow URL %q", follow)
	}
}

func TestServer_HistoryPageEmpty(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := get(t, env.server, "/history/1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if n := document(t, rec).Find("#history tr.entry").Length(); n != 0 {
		t.Errorf("expected no entries without a history log, got %d", n)
	}
}

func TestServer_Favicon(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	if rec := get(t, env.server, "/favicon.ico"); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

// ─── JSON API ──────────────────────────────────────────────────────────

func TestServer_APIListSlots(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := get(t, env.server, "/api/slots")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var views []app.SlotView
	decodeJSON(t, rec, &views)
	if len(views) != 3 || views[0].Status != process.StatusRunning || views[2].Slot.ID != 3 {
		t.Errorf("unexpected views %+v", views)
	}
}

func TestServer_APISaveSlot(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	body := `{"name":"api","description":"d","directory":"/srv/api","url":"https://api.example.org","pr":42}`
	rec := do(t, env.server, http.MethodPut, "/api/slots/2", "application/json", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var res app.SaveResult
	decodeJSON(t, rec, &res)
	if !res.Deployed || res.Slot.Name != "api" || res.Slot.BuildNumber != "137" {
		t.Errorf("unexpected result %+v", res)
	}

	if rec := do(t, env.server, http.MethodPut, "/api/slots/2", "application/json", "{"); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid JSON: expected 400, got %d", rec.Code)
	}
	if rec := do(t, env.server, http.MethodPut, "/api/slots/2", "application/json", `{"pr":-1}`); rec.Code != http.StatusBadRequest {
		t.Errorf("negative pr: expected 400, got %d", rec.Code)
	}
}

func TestServer_APIStatusAndLog(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	var st server.StatusResponse
	decodeJSON(t, get(t, env.server, "/api/slots/2/status"), &st)
	if st.Status != process.StatusStopped || st.State != "stopped" {
		t.Errorf("unexpected status %+v", st)
	}

	var out server.OutputResponse
	decodeJSON(t, get(t, env.server, "/api/slots/1/log?lines=10"), &out)
	if out.Output != "line 1\nline 2\n" {
		t.Errorf("unexpected log output %q", out.Output)
	}
	tails := env.controller.CallsFor("tail")
	if len(tails) != 1 || tails[0].Lines != 10 {
		t.Errorf("expected one tail of 10 lines, got %+v", tails)
	}
}

func TestServer_APIStartStop(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := do(t, env.server, http.MethodPost, "/api/slots/1/start", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out server.OutputResponse
	decodeJSON(t, rec, &out)
	if out.SlotID != 1 || out.Output != "DCC Portal started" {
		t.Errorf("unexpected response %+v", out)
	}

	env.controller.Err = process.ErrSpawn
	if rec := do(t, env.server, http.MethodPost, "/api/slots/1/stop", "", ""); rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 on spawn failure, got %d", rec.Code)
	}
}

func TestServer_APIListPRs(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	var prs []builds.PullRequest
	decodeJSON(t, get(t, env.server, "/api/prs"), &prs)
	if len(prs) != 2 || prs[0].Number != 42 {
		t.Errorf("unexpected PRs %+v", prs)
	}

	env.resolver.Err = errors.Join(builds.ErrAPIStatus, errors.New("status 403"))
	if rec := get(t, env.server, "/api/prs"); rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rec.Code)
	}
}

func TestServer_APIHistory(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := get(t, env.server, "/api/slots/1/history")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("expected empty JSON array, got %s", got)
	}
}

// ─── Ambient: logging, metrics, swagger ────────────────────────────────

func TestServer_LogsRequestsAndSetsRequestID(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := get(t, env.server, "/favicon.ico")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}

	req := httptest.NewRequest(http.MethodGet, "/favicon.ico", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("expected request id to be echoed, got %q", got)
	}

	if !slices.Contains(env.logger.InfoMessages(), "http_request") {
		t.Error("expected http_request log entry")
	}
}

func TestServer_MetricsEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	get(t, env.server, "/view/1")
	rec := get(t, env.server, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `dccdev_http_requests_total{method="GET",route="/view/{id}",status="200"} 1`) {
		t.Errorf("expected request counter by route pattern, got:\n%s", body)
	}
	if !strings.Contains(body, `dccdev_slot_status{slot="1"} 1`) {
		t.Errorf("expected slot status gauge, got:\n%s", body)
	}
}

func TestServer_SwaggerDoc(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := get(t, env.server, "/swagger/doc.json")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var doc struct {
		Paths map[string]any `json:"paths"`
	}
	decodeJSON(t, rec, &doc)
	if _, ok := doc.Paths["/api/slots/{id}"]; !ok {
		t.Errorf("expected /api/slots/{id} in swagger paths, got %v", doc.Paths)
	}
}

func TestNewServer_RequiresOrchestrator(t *testing.T) {
	t.Parallel()
	if _, err := server.NewServer(server.DefaultConfig(), nil, nil); err == nil {
		t.Fatal("expected error without orchestrator")
	}
}

// ─── WebSocket ─────────────────────────────────────────────────────────

func TestServer_LogWebSocketStreamsChanges(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ts := httptest.NewServer(env.server)
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/slots/1/log"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first server.LogMessage
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read first frame: %v", err)
	}
	if first.SlotID != 1 || first.Log != "line 1\nline 2\n" {
		t.Errorf("unexpected first frame %+v", first)
	}

	env.controller.SetLogs("line 1\nline 2\nline 3\n")

	var next server.LogMessage
	if err := conn.ReadJSON(&next); err != nil {
		t.Fatalf("read next frame: %v", err)
	}
	if next.Log != "line 1\nline 2\nline 3\n" {
		t.Errorf("expected updated tail, got %q", next.Log)
	}
}

func TestServer_LogWebSocketUnknownSlot(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ts := httptest.NewServer(env.server)
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/slots/9/log"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("expected dial to fail for unknown slot")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 handshake response, got %+v", resp)
	}
}
