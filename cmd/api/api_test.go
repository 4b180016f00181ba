package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/crucial707/journal-prompt-api/internal/config"
	"github.com/crucial707/journal-prompt-api/internal/metrics"
)

var testCfg = config.Config{AuthUsername: "editor", AuthPassword: "s3cret"}

type promptBody struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

func newTestServer(t *testing.T, cfg config.Config) (*httptest.Server, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	srv := httptest.NewServer(newRouter(db, cfg))
	t.Cleanup(func() {
		srv.Close()
		db.Close()
	})
	return srv, mock
}

func postPrompt(t *testing.T, srv *httptest.Server, user, pass, text string) *http.Response {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"text": text})
	req, _ := http.NewRequest("POST", srv.URL+"/prompts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user != "" || pass != "" {
		req.SetBasicAuth(user, pass)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("POST /prompts: %v", err)
	}
	return resp
}

// TestAPI_Root checks the fixed welcome payload.
func TestAPI_Root(t *testing.T) {
	srv, _ := newTestServer(t, testCfg)

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("root request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET / status: got %d, want 200", resp.StatusCode)
	}
	var out map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out["message"] != "This is the Journal Prompt API" {
		t.Errorf("unexpected body: %v", out)
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
}

// TestAPI_CreateThenRandom is an integration test: it builds the full router with a
// sqlmock-backed DB, creates two prompts, then reads one back through /random.
func TestAPI_CreateThenRandom(t *testing.T) {
	srv, mock := newTestServer(t, testCfg)

	mock.ExpectQuery(`INSERT INTO prompts \(text\) VALUES \(\$1\) RETURNING id`).
		WithArgs("hello").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO prompts \(text\) VALUES \(\$1\) RETURNING id`).
		WithArgs("What are you grateful for?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectQuery(`SELECT id, text FROM prompts ORDER BY random\(\) LIMIT 1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "text"}).AddRow(2, "What are you grateful for?"))

	var ids []int
	for _, text := range []string{"  hello  ", "What are you grateful for?\n"} {
		resp := postPrompt(t, srv, "editor", "s3cret", text)
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			t.Fatalf("POST /prompts status: got %d, want 200", resp.StatusCode)
		}
		var p promptBody
		if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
			t.Fatalf("decode: %v", err)
		}
		resp.Body.Close()
		if p.Text != strings.TrimSpace(text) {
			t.Errorf("stored text: got %q, want %q", p.Text, strings.TrimSpace(text))
		}
		ids = append(ids, p.ID)
	}
	if len(ids) != 2 || ids[1] <= ids[0] {
		t.Errorf("ids should be strictly increasing, got %v", ids)
	}

	resp, err := http.Get(srv.URL + "/random")
	if err != nil {
		t.Fatalf("random request: %v", err)
	}
	defer resp.Body.Close()
	var p promptBody
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		t.Fatalf("decode random: %v", err)
	}
	if p.ID != 2 || p.Text != "What are you grateful for?" {
		t.Errorf("unexpected random prompt: %+v", p)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

// TestAPI_RandomEmpty checks that an empty table is not an error.
func TestAPI_RandomEmpty(t *testing.T) {
	srv, mock := newTestServer(t, testCfg)

	mock.ExpectQuery(`SELECT id, text FROM prompts`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "text"}))

	resp, err := http.Get(srv.URL + "/random")
	if err != nil {
		t.Fatalf("random request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /random status: got %d, want 200", resp.StatusCode)
	}
	var out *promptBody
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != nil {
		t.Errorf("expected null, got %+v", out)
	}
}

// TestAPI_CreateRejectsBadCredentials checks that no SQL runs for any credential
// pair other than the configured one.
func TestAPI_CreateRejectsBadCredentials(t *testing.T) {
	srv, mock := newTestServer(t, testCfg)

	pairs := [][2]string{
		{"", ""},
		{"editor", ""},
		{"editor", "S3CRET"},
		{"admin", "s3cret"},
		{"editor", "s3cret "},
	}
	for _, p := range pairs {
		resp := postPrompt(t, srv, p[0], p[1], "hello")
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("POST with %q/%q: got %d, want 401", p[0], p[1], resp.StatusCode)
		}
		if got := resp.Header.Get("WWW-Authenticate"); got != "Basic" {
			t.Errorf("WWW-Authenticate: got %q, want Basic", got)
		}
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no SQL expected: %v", err)
	}
}

// TestAPI_CreateFailsClosedWithoutConfig checks that unset credentials reject everything.
func TestAPI_CreateFailsClosedWithoutConfig(t *testing.T) {
	srv, mock := newTestServer(t, config.Config{})

	for _, p := range [][2]string{{"", ""}, {"editor", "s3cret"}} {
		resp := postPrompt(t, srv, p[0], p[1], "hello")
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("POST with %q/%q: got %d, want 401", p[0], p[1], resp.StatusCode)
		}
	}
	// An explicit empty/empty Basic header is also rejected.
	req, _ := http.NewRequest("POST", srv.URL+"/prompts", strings.NewReader(`{"text":"x"}`))
	req.SetBasicAuth("", "")
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("empty/empty Basic: got %d, want 401", resp.StatusCode)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no SQL expected: %v", err)
	}
}

// TestAPI_Health is a quick smoke test for the health endpoint.
func TestAPI_Health(t *testing.T) {
	srv, _ := newTestServer(t, testCfg)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /health status: got %d, want 200", resp.StatusCode)
	}
}

// TestAPI_Ready checks that /ready pings the DB and returns 200 when DB is reachable.
func TestAPI_Ready(t *testing.T) {
	srv, _ := newTestServer(t, testCfg)

	resp, err := http.Get(srv.URL + "/ready")
	if err != nil {
		t.Fatalf("ready request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /ready status: got %d, want 200", resp.StatusCode)
	}
}

// TestAPI_Metrics checks that request metrics are exposed.
func TestAPI_Metrics(t *testing.T) {
	srv, _ := newTestServer(t, testCfg)

	if resp, err := http.Get(srv.URL + "/health"); err == nil {
		resp.Body.Close()
	}

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics request: %v", err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	if !strings.Contains(buf.String(), "http_requests_total") {
		t.Error("http_requests_total not exposed")
	}
}

// postWithForwardedFor sends a credential-less POST claiming a different client address.
func postWithForwardedFor(t *testing.T, srv *httptest.Server, addr string) int {
	t.Helper()
	req, _ := http.NewRequest("POST", srv.URL+"/prompts", strings.NewReader(`{"text":"x"}`))
	req.Header.Set("X-Forwarded-For", addr)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("POST /prompts: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

// TestAPI_RateLimitIgnoresSpoofedForwardedFor checks that rotating X-Forwarded-For
// from one connection address does not reset the limiter.
func TestAPI_RateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	srv, mock := newTestServer(t, testCfg)

	var codes []int
	for i := 0; i < 8; i++ {
		codes = append(codes, postWithForwardedFor(t, srv, "203.0.113."+strconv.Itoa(i)))
	}

	for i, code := range codes {
		want := http.StatusUnauthorized
		if i >= 5 {
			want = http.StatusTooManyRequests
		}
		if code != want {
			t.Errorf("request %d: got %d, want %d", i, code, want)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no SQL expected: %v", err)
	}
}

// TestAPI_RateLimitTrustedProxy checks that forwarding headers are honoured once
// the deployment opts in.
func TestAPI_RateLimitTrustedProxy(t *testing.T) {
	cfg := testCfg
	cfg.TrustProxyHeaders = true
	srv, _ := newTestServer(t, cfg)

	for i := 0; i < 8; i++ {
		if code := postWithForwardedFor(t, srv, "203.0.113."+strconv.Itoa(i)); code != http.StatusUnauthorized {
			t.Errorf("request %d: got %d, want 401", i, code)
		}
	}
}

// TestAPI_UnmatchedPathMetricLabel checks that unknown paths share one metric label.
func TestAPI_UnmatchedPathMetricLabel(t *testing.T) {
	srv, _ := newTestServer(t, testCfg)

	counter := metrics.RequestTotal.WithLabelValues("GET", metrics.UnmatchedRoute, "404")
	before := testutil.ToFloat64(counter)

	for _, path := range []string{"/nope", "/prompts/123", "/random/extra"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("GET %s: got %d, want 404", path, resp.StatusCode)
		}
	}

	if got := testutil.ToFloat64(counter) - before; got != 3 {
		t.Errorf("unmatched counter delta: got %v, want 3", got)
	}
}
