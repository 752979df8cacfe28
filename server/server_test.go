package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/fxyaml/calc"
	"github.com/ardnew/fxyaml/log"
	"github.com/ardnew/fxyaml/tree"
)

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()

	cfg.Logger = log.Discard()

	s, err := New(cfg)
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	return ts
}

func post(t *testing.T, ts *httptest.Server, path, body string) (*http.Response, string) {
	t.Helper()

	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)

	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, strings.TrimSpace(string(b))
}

func TestHandleCalc(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, Config{})

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "sequential",
			body:       `{"yaml": "X: =1\nY: =X+1\n"}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"X":1,"Y":2}`,
		},
		{
			name:       "trailing comment",
			body:       `{"context": null, "yaml": "Z: =1 // trailing note\n"}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"Z":1}`,
		},
		{
			name:       "context object",
			body:       `{"context": {"rate": 2}, "yaml": "cost: =rate * 3"}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"cost":6}`,
		},
		{
			name:       "context string",
			body:       `{"context": "{\"rate\": 2}", "yaml": "cost: =rate * 4"}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"cost":8}`,
		},
		{
			name:       "no formulas",
			body:       `{"yaml": "a: b"}`,
			wantStatus: http.StatusOK,
			wantBody:   `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp, body := post(t, ts, "/calc", tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode, body)
			assert.JSONEq(t, tt.wantBody, body)
			assert.Equal(t, tt.wantBody, body, "keys must keep document order")
			assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
		})
	}
}

func TestHandleCalc_Errors(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, Config{MaxBodyBytes: 256})

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{"empty body", "", http.StatusBadRequest, "malformed request: empty body"},
		{"not json", "yaml: x", http.StatusBadRequest, "malformed request"},
		{"trailing data", `{"yaml": ""} {}`, http.StatusBadRequest, "malformed request: trailing data"},
		{"context array", `{"context": [1], "yaml": "a: =1"}`, http.StatusBadRequest, "invalid context: context must be a JSON object"},
		{"malformed yaml", `{"yaml": "a: [1,"}`, http.StatusBadRequest, "malformed document"},
		{"too large", `{"yaml": "` + strings.Repeat("x", 512) + `"}`, http.StatusRequestEntityTooLarge, "too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp, body := post(t, ts, "/calc", tt.body)
			require.Equal(t, tt.wantStatus, resp.StatusCode, body)

			var er ErrorResponse
			require.NoError(t, json.Unmarshal([]byte(body), &er))
			assert.Contains(t, er.Error, tt.wantError)
			assert.Nil(t, er.Formula)
			assert.Equal(t, resp.Header.Get(RequestIDHeader), er.RequestID)
		})
	}
}

func TestHandleCalc_FormulaFailure(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, Config{})

	resp, body := post(t, ts, "/calc", `{"yaml": "x: =1\ny: =bad(\nz: =3\n"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var er ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(body), &er))
	require.NotNil(t, er.Formula)
	assert.Equal(t, "y", er.Formula.Name)
	assert.Equal(t, "bad(", er.Formula.Expression)
	assert.Equal(t, 1, er.Formula.Position)
	assert.Contains(t, er.Error, `"y"`)
}

func TestHandleCalc_NonFiniteResult(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, Config{})

	tests := []struct {
		name     string
		yaml     string
		wantName string
		wantPos  int
	}{
		{"positive infinity", "X: =1/0", "X", 0},
		{"not a number", "X: =0/0", "X", 0},
		{"after a success", "X: =1\nY: =X/0", "Y", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req, err := json.Marshal(CalcRequest{YAML: tt.yaml})
			require.NoError(t, err)

			resp, body := post(t, ts, "/calc", string(req))
			require.Equal(t, http.StatusBadRequest, resp.StatusCode, body)

			var er ErrorResponse
			require.NoError(t, json.Unmarshal([]byte(body), &er))
			require.NotNil(t, er.Formula, body)
			assert.Equal(t, tt.wantName, er.Formula.Name)
			assert.Equal(t, tt.wantPos, er.Formula.Position)
			assert.Contains(t, er.Error, "JSON")
		})
	}
}

func TestHandleCalc_StarlarkEngine(t *testing.T) {
	t.Parallel()

	c, err := calc.New(calc.WithEngine(calc.EngineStarlark), calc.WithParser(tree.YAMLv3Parser{}))
	require.NoError(t, err)

	ts := newTestServer(t, Config{Calculator: c})

	resp, body := post(t, ts, "/calc", `{"yaml": "n: =len([1, 2, 3])\ns: =str(n) + \"!\"\n"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, `{"n":3,"s":"3!"}`, body)
}

func TestHandleEval(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, Config{})

	resp, body := post(t, ts, "/eval", `{
		"context": {"base": 10},
		"formulas": [
			{"name": "b", "expression": "=base + 1"},
			{"name": "a", "expression": "b * 2 // doubled"},
			{"name": "b", "expression": "0"}
		]
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, `{"b":11,"a":22}`, body)

	resp, body = post(t, ts, "/eval", `{"formulas": [{"name": "a", "expression": "1"}, {"expression": "1"}]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	assert.Contains(t, body, "formulas[1]: name is required")

	resp, body = post(t, ts, "/eval", `{"formulas": [{"name": "u", "expression": "nope"}]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	assert.Contains(t, body, `"name":"u"`)
}

func TestHandleFunctions(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, Config{})

	resp, err := http.Get(ts.URL + "/functions")
	require.NoError(t, err)

	defer resp.Body.Close()

	var names []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&names))
	assert.Contains(t, names, "len")
	assert.Contains(t, names, "mung.prefix")
	assert.IsNonDecreasing(t, names)
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, Config{})

	resp, err := http.Get(ts.URL + "/healthz/")
	require.NoError(t, err)

	defer resp.Body.Close()

	var h HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&h))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, calc.DefaultEngine, h.Engine)
}

func TestRouting(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, Config{})

	resp, err := http.Get(ts.URL + "/missing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/calc")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestProfilerRoutes(t *testing.T) {
	t.Parallel()

	for _, enabled := range []bool{false, true} {
		ts := newTestServer(t, Config{Profiler: enabled})

		resp, err := http.Get(ts.URL + "/debug/pprof/cmdline")
		require.NoError(t, err)
		resp.Body.Close()

		want := http.StatusNotFound
		if enabled {
			want = http.StatusOK
		}

		assert.Equal(t, want, resp.StatusCode, "profiler=%v", enabled)
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, Config{})

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()

	_, err = uuid.Parse(resp.Header.Get(RequestIDHeader))
	assert.NoError(t, err, "generated request ID should be a UUID")

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "client-id-1")

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "client-id-1", resp.Header.Get(RequestIDHeader))
}

func TestRecoverer(t *testing.T) {
	t.Parallel()

	s, err := New(Config{Logger: log.Discard()})
	require.NoError(t, err)

	h := s.requestID(s.recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal error")
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestStatusOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{ErrDecodeRequest, http.StatusBadRequest},
		{calc.ErrContext.Wrap(errors.New("x")), http.StatusBadRequest},
		{tree.ErrParse.Wrap(errors.New("x")), http.StatusBadRequest},
		{&calc.Failure{Message: "x"}, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", &calc.Failure{}), http.StatusBadRequest},
		{ErrRequestTooLarge, http.StatusRequestEntityTooLarge},
		{calc.ErrCanceled, http.StatusServiceUnavailable},
		{tree.ErrUnknownNode, http.StatusInternalServerError},
		{errors.New("unexpected"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusOf(tt.err), "%v", tt.err)
	}
}

func TestServeListener_GracefulShutdown(t *testing.T) {
	t.Parallel()

	s, err := New(Config{Logger: log.Discard()})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- s.ServeListener(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
