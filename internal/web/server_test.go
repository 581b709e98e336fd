package web

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"jobtrack/internal/board"
	"jobtrack/internal/model"
	"jobtrack/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv, err := NewServer(ServerConfig{
		Addr:   "127.0.0.1:0",
		Store:  store.Store{Dir: t.TempDir()},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, ts *httptest.Server, method, path, user string, body any) (*http.Response, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, ts.URL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if user != "" {
		req.Header.Set(userHeader, user)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, b
}

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		t.Fatalf("decode %s: %v", string(b), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, body := do(t, ts, http.MethodGet, "/health", "", nil)
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(body)) != "ok" {
		t.Fatalf("unexpected health response: %d %q", resp.StatusCode, body)
	}
	if resp.Header.Get(requestIDHeader) == "" {
		t.Fatalf("expected request id header")
	}
}

func TestMissingUserIsUnauthorized(t *testing.T) {
	ts := newTestServer(t)
	resp, _ := do(t, ts, http.MethodGet, "/job-applications", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCreateGetUpdateDelete(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, ts, http.MethodPost, "/job-applications", "u1", map[string]any{
		"company": "Acme", "position": "Backend", "salaryMin": 100, "salaryMax": 200,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", resp.StatusCode, body)
	}
	created := decode[model.Application](t, body)
	if created.Status != model.StatusApplied || created.SortIndex != 1000 {
		t.Fatalf("unexpected created record: %+v", created)
	}

	resp, body = do(t, ts, http.MethodGet, "/job-applications/"+created.ID, "u1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get: expected 200, got %d: %s", resp.StatusCode, body)
	}

	resp, _ = do(t, ts, http.MethodGet, "/job-applications/"+created.ID, "u2", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("foreign get: expected 404, got %d", resp.StatusCode)
	}

	resp, body = do(t, ts, http.MethodPatch, "/job-applications/"+created.ID, "u1", map[string]any{
		"status": "Interview", "sortIndex": 1500,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("move: expected 200, got %d: %s", resp.StatusCode, body)
	}
	moved := decode[model.Application](t, body)
	if moved.Status != model.StatusInterview || moved.SortIndex != 1500 {
		t.Fatalf("unexpected moved record: %+v", moved)
	}

	resp, body = do(t, ts, http.MethodPatch, "/job-applications/"+created.ID, "u1", map[string]any{"salaryMax": 10})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad salary: expected 400, got %d", resp.StatusCode)
	}
	errs := decode[map[string]map[string][]string](t, body)
	if len(errs["errors"]["salary"]) == 0 {
		t.Fatalf("expected salary field error, got %s", body)
	}

	resp, _ = do(t, ts, http.MethodDelete, "/job-applications/"+created.ID, "u1", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", resp.StatusCode)
	}
	resp, body = do(t, ts, http.MethodGet, "/job-applications/"+created.ID, "u1", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", resp.StatusCode)
	}
	msg := decode[map[string]string](t, body)
	if !strings.Contains(msg["message"], created.ID) {
		t.Fatalf("expected not-found message with id, got %q", msg["message"])
	}
}

func TestCreateValidationErrors(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, ts, http.MethodPost, "/job-applications", "u1", map[string]any{
		"company": "Ac", "position": "Dev", "salaryMin": 2000, "salaryMax": 1000,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	errs := decode[map[string]map[string][]string](t, body)["errors"]
	if len(errs["company"]) == 0 || len(errs["salary"]) == 0 {
		t.Fatalf("expected company and salary errors, got %v", errs)
	}

	resp, _ = do(t, ts, http.MethodGet, "/job-applications", "u1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/job-applications", strings.NewReader("{not json"))
	req.Header.Set(userHeader, "u1")
	raw, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	raw.Body.Close()
	if raw.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid JSON: expected 400, got %d", raw.StatusCode)
	}
}

func TestListSearchSortAndDeleteRejected(t *testing.T) {
	ts := newTestServer(t)
	for _, p := range []map[string]any{
		{"company": "Acme", "position": "Dev"},
		{"company": "Globex", "position": "Dev", "status": "Rejected"},
		{"company": "Initech", "position": "Dev", "status": "rejected"},
	} {
		if resp, body := do(t, ts, http.MethodPost, "/job-applications", "u1", p); resp.StatusCode != http.StatusCreated {
			t.Fatalf("create: %d %s", resp.StatusCode, body)
		}
	}

	_, body := do(t, ts, http.MethodGet, "/job-applications?search=glob", "u1", nil)
	res := decode[model.ListResult](t, body)
	if res.Count != 1 || res.Results[0].Company != "Globex" {
		t.Fatalf("unexpected search result: %+v", res)
	}

	_, body = do(t, ts, http.MethodGet, "/job-applications?sort=company:desc", "u1", nil)
	res = decode[model.ListResult](t, body)
	if res.Count != 3 || res.Results[0].Company != "Initech" {
		t.Fatalf("unexpected sorted result: %+v", res)
	}

	resp, _ := do(t, ts, http.MethodGet, "/job-applications?sort=salary", "u1", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad sort: expected 400, got %d", resp.StatusCode)
	}

	resp, _ = do(t, ts, http.MethodPost, "/job-applications/delete-rejected", "u1", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete-rejected: expected 204, got %d", resp.StatusCode)
	}
	_, body = do(t, ts, http.MethodGet, "/board", "u1", nil)
	b := decode[board.Board](t, body)
	if b.Count() != 1 {
		t.Fatalf("expected one application on the board, got %d", b.Count())
	}
	if col, _ := b.Column(model.StatusRejected); len(col.Items) != 0 {
		t.Fatalf("expected empty Rejected column")
	}
}

func TestRebalanceEndpoint(t *testing.T) {
	ts := newTestServer(t)
	do(t, ts, http.MethodPost, "/job-applications", "u1", map[string]any{"company": "Acme", "position": "Dev", "sortIndex": 5})
	do(t, ts, http.MethodPost, "/job-applications", "u1", map[string]any{"company": "Globex", "position": "Dev", "sortIndex": 6})

	resp, body := do(t, ts, http.MethodPost, "/job-applications/rebalance?status=applied", "u1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("rebalance: expected 200, got %d: %s", resp.StatusCode, body)
	}
	out := decode[struct {
		Changed map[string]float64 `json:"changed"`
	}](t, body)
	if len(out.Changed) != 2 {
		t.Fatalf("expected two keys rewritten, got %v", out.Changed)
	}

	resp, _ = do(t, ts, http.MethodPost, "/job-applications/rebalance?status=nope", "u1", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad status: expected 400, got %d", resp.StatusCode)
	}
}
