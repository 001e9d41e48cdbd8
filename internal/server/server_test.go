package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphbridge/pkg/buildinfo"
	errs "github.com/matzehuels/graphbridge/pkg/errors"
	gbio "github.com/matzehuels/graphbridge/pkg/io"
	"github.com/matzehuels/graphbridge/pkg/module"
	"github.com/matzehuels/graphbridge/pkg/module/store"
)

const testCode = "main =\n    a = 1\n    print a\n"

func newTestServer(t *testing.T) (*httptest.Server, *store.MemoryStore) {
	t.Helper()
	logger := log.New(io.Discard)
	st := store.NewMemoryStore()
	reg := module.NewRegistry(st, logger)
	if _, err := reg.SetCode(context.Background(), "app/main.gb", testCode); err != nil {
		t.Fatalf("SetCode() error: %v", err)
	}
	srv := New(reg, Options{Logger: logger, KeepAlive: time.Hour})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, st
}

var graphURL = "/api/v1/modules/" + url.PathEscape("app/main.gb") + "/graphs/main"

func do(t *testing.T, ts *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestListModulesAndGraphs(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := do(t, ts, "GET", "/api/v1/modules/", "")
	mods := decode[map[string][]string](t, resp)
	if len(mods["modules"]) != 1 || mods["modules"][0] != "app/main.gb" {
		t.Errorf("modules = %v", mods)
	}

	resp = do(t, ts, "GET", "/api/v1/modules/"+url.PathEscape("app/main.gb")+"/graphs", "")
	graphs := decode[map[string][]string](t, resp)
	if len(graphs["graphs"]) != 1 || graphs["graphs"][0] != "main" {
		t.Errorf("graphs = %v", graphs)
	}
}

func TestNodeLifecycle(t *testing.T) {
	ts, st := newTestServer(t)

	resp := do(t, ts, "GET", graphURL+"/nodes", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET nodes status = %d", resp.StatusCode)
	}
	g := decode[gbio.Graph](t, resp)
	if len(g.Nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(g.Nodes))
	}
	printID := g.Nodes[1].ID

	body := `{"expression": "b = a + 1", "position": {"x": 5, "y": 6}, "location": {"kind": "before", "id": "` + printID.String() + `"}}`
	resp = do(t, ts, "POST", graphURL+"/nodes", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST nodes status = %d", resp.StatusCode)
	}
	added := decode[gbio.Node](t, resp)
	if added.Code != "b = a + 1" || added.Position == nil || added.Position.X != 5 {
		t.Errorf("added = %+v", added)
	}

	resp = do(t, ts, "PUT", graphURL+"/nodes/"+added.ID.String()+"/position", `{"x": 7, "y": 8}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT position status = %d", resp.StatusCode)
	}

	resp = do(t, ts, "GET", graphURL+"/nodes/"+added.ID.String(), "")
	got := decode[gbio.Node](t, resp)
	if got.Position == nil || *got.Position != (module.Position{X: 7, Y: 8}) {
		t.Errorf("position = %v", got.Position)
	}

	// Changes are saved to the store.
	fresh := module.NewRegistry(st, log.New(io.Discard))
	m, err := fresh.Open(context.Background(), "app/main.gb")
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if want := "main =\n    a = 1\n    b = a + 1\n    print a\n"; m.Code() != want {
		t.Errorf("saved code = %q, want %q", m.Code(), want)
	}

	resp = do(t, ts, "DELETE", graphURL+"/nodes/"+added.ID.String(), "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE status = %d", resp.StatusCode)
	}
	resp = do(t, ts, "GET", graphURL+"/nodes/"+added.ID.String(), "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET removed node status = %d, want 404", resp.StatusCode)
	}
}

func TestErrorStatus(t *testing.T) {
	ts, _ := newTestServer(t)
	missing := "6f9619ff-8b86-d011-b42d-00cf4fc964ff"

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   errs.Code
	}{
		{"unknown module", "GET", "/api/v1/modules/nope.gb/graphs/main/nodes", "", 404, errs.ErrCodeModuleNotFound},
		{"unknown graph", "GET", "/api/v1/modules/" + url.PathEscape("app/main.gb") + "/graphs/other/nodes", "", 404, errs.ErrCodeDefinitionNotFound},
		{"unknown node", "GET", graphURL + "/nodes/" + missing, "", 404, errs.ErrCodeNodeNotFound},
		{"bad node id", "GET", graphURL + "/nodes/xyz", "", 400, errs.ErrCodeInvalidInput},
		{"bad body", "POST", graphURL + "/nodes", "{", 400, errs.ErrCodeInvalidFormat},
		{"bad expression", "POST", graphURL + "/nodes", `{"expression": "(a"}`, 400, errs.ErrCodeParse},
		{"bad location", "POST", graphURL + "/nodes", `{"expression": "a", "location": {"kind": "middle"}}`, 400, errs.ErrCodeInvalidInput},
		{"zero node id", "POST", graphURL + "/nodes", `{"expression": "a", "id": "00000000-0000-0000-0000-000000000000"}`, 400, errs.ErrCodeInvalidInput},
		{"hint without id", "POST", graphURL + "/nodes", `{"expression": "a", "location": {"kind": "after"}}`, 400, errs.ErrCodeInvalidInput},
		{"hint to missing node", "POST", graphURL + "/nodes", `{"expression": "a", "location": {"kind": "after", "id": "` + missing + `"}}`, 404, errs.ErrCodeNodeNotFound},
		{"remove missing", "DELETE", graphURL + "/nodes/" + missing, "", 404, errs.ErrCodeNodeNotFound},
		{"bad code", "PUT", "/api/v1/modules/x.gb/code", "main = (", 400, errs.ErrCodeParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, ts, tt.method, tt.path, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			body := decode[errorBody](t, resp)
			if body.Error.Code != tt.code {
				t.Errorf("code = %s, want %s", body.Error.Code, tt.code)
			}
		})
	}
}

func TestDuplicateAndStructural(t *testing.T) {
	ts, _ := newTestServer(t)
	g := decode[gbio.Graph](t, do(t, ts, "GET", graphURL+"/nodes", ""))

	resp := do(t, ts, "POST", graphURL+"/nodes", `{"expression": "x", "id": "`+g.Nodes[0].ID.String()+`"}`)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", resp.StatusCode)
	}

	do(t, ts, "PUT", "/api/v1/modules/one.gb/code", "main = 1")
	one := decode[gbio.Graph](t, do(t, ts, "GET", "/api/v1/modules/one.gb/graphs/main/nodes", ""))
	resp = do(t, ts, "DELETE", "/api/v1/modules/one.gb/graphs/main/nodes/"+one.Nodes[0].ID.String(), "")
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("remove last status = %d, want 422", resp.StatusCode)
	}
}

func TestCode(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := do(t, ts, "PUT", "/api/v1/modules/new.gb/code", "main =\n    helper x = x\n    helper 1\n")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT code status = %d", resp.StatusCode)
	}
	out := decode[map[string]any](t, resp)
	graphs, _ := out["graphs"].([]any)
	if len(graphs) != 2 || graphs[1] != "main.helper" {
		t.Errorf("graphs = %v", out["graphs"])
	}

	resp = do(t, ts, "GET", "/api/v1/modules/new.gb/code", "")
	b, _ := io.ReadAll(resp.Body)
	if string(b) != "main =\n    helper x = x\n    helper 1\n" {
		t.Errorf("code = %q", b)
	}
}

func TestRender(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := do(t, ts, "GET", graphURL+"/render.dot", "")
	dot, _ := io.ReadAll(resp.Body)
	if !strings.HasPrefix(string(dot), "digraph G {") || !strings.Contains(string(dot), `[label="a"]`) {
		t.Errorf("render.dot = %s", dot)
	}

	resp = do(t, ts, "GET", graphURL+"/render.svg", "")
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/svg+xml" {
		t.Errorf("render.svg status = %d, type = %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
}

func TestExport(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := do(t, ts, "GET", graphURL+"/export.json", "")
	g := decode[gbio.Graph](t, resp)
	if g.ID != "main" || len(g.Nodes) != 2 || len(g.Edges) != 1 {
		t.Errorf("export = %+v", g)
	}
}

func TestEvents(t *testing.T) {
	ts, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, "GET", ts.URL+graphURL+"/events", nil)
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("GET events: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	// Wait for the subscription comment before changing the graph.
	if l := <-lines; !strings.HasPrefix(l, ": subscribed") {
		t.Fatalf("first line = %q", l)
	}
	do(t, ts, "POST", graphURL+"/nodes", `{"expression": "c = 3"}`)

	timeout := time.After(2 * time.Second)
	for {
		select {
		case l, ok := <-lines:
			if !ok {
				t.Fatal("stream ended")
			}
			if l == "event: invalidate" {
				return
			}
		case <-timeout:
			t.Fatal("no invalidate event received")
		}
	}
}

func TestHealthAndMetrics(t *testing.T) {
	logger := log.New(io.Discard)
	reg := module.NewRegistry(store.NewMemoryStore(), logger)
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "graphbridge_up 1\n")
	})
	ts := httptest.NewServer(New(reg, Options{Logger: logger, Metrics: metrics}).Handler())
	defer ts.Close()

	resp := do(t, ts, "GET", "/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}
	if got, want := resp.Header.Get("Server"), buildinfo.UserAgent(); got != want {
		t.Errorf("Server header = %q, want %q", got, want)
	}
	b, _ := io.ReadAll(do(t, ts, "GET", "/metrics", "").Body)
	if string(b) != "graphbridge_up 1\n" {
		t.Errorf("metrics = %q", b)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errs.Code
		want int
	}{
		{errs.ErrCodeNodeNotFound, 404},
		{errs.ErrCodeEmptyGraphID, 400},
		{errs.ErrCodeDuplicateNodeID, 409},
		{errs.ErrCodeStructural, 422},
		{errs.ErrCodeStorage, 500},
		{errs.ErrCodeInternal, 500},
	}
	for _, tt := range tests {
		if got := statusFor(tt.code); got != tt.want {
			t.Errorf("statusFor(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

// flakyStore fails every Save while broken is set.
type flakyStore struct {
	*store.MemoryStore
	broken atomic.Bool
}

func (s *flakyStore) Save(ctx context.Context, path string, data []byte) error {
	if s.broken.Load() {
		return errs.New(errs.ErrCodeStorage, "disk unavailable")
	}
	return s.MemoryStore.Save(ctx, path, data)
}

func TestFailedSaveKeepsEdit(t *testing.T) {
	logger := log.New(io.Discard)
	st := &flakyStore{MemoryStore: store.NewMemoryStore()}
	reg := module.NewRegistry(st, logger)
	if _, err := reg.SetCode(context.Background(), "app/main.gb", testCode); err != nil {
		t.Fatalf("SetCode() error: %v", err)
	}
	ts := httptest.NewServer(New(reg, Options{Logger: logger, KeepAlive: time.Hour}).Handler())
	t.Cleanup(ts.Close)

	st.broken.Store(true)
	resp := do(t, ts, "POST", graphURL+"/nodes", `{"expression": "b = 2"}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("POST nodes status = %d, want 500", resp.StatusCode)
	}
	if body := decode[errorBody](t, resp); body.Error.Code != errs.ErrCodeStorage {
		t.Errorf("code = %s, want %s", body.Error.Code, errs.ErrCodeStorage)
	}

	g := decode[gbio.Graph](t, do(t, ts, "GET", graphURL+"/nodes", ""))
	if len(g.Nodes) != 3 {
		t.Fatalf("nodes after failed save = %d, want 3", len(g.Nodes))
	}

	st.broken.Store(false)
	resp = do(t, ts, "PUT", graphURL+"/nodes/"+g.Nodes[0].ID.String()+"/position", `{"x": 1, "y": 2}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT position status = %d", resp.StatusCode)
	}
	data, err := st.Load(context.Background(), "app/main.gb")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !strings.Contains(string(data), "b = 2") {
		t.Errorf("stored module lacks the kept edit:\n%s", data)
	}
}
