package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// mockServer creates an httptest.Server with a fluent API for request
// verification and canned responses.
type mockServer struct {
	t           *testing.T
	handler     http.HandlerFunc
	expectPath  string
	expectMeth  string
	expectQuery map[string]string
	expectUser  string
}

func newMockServer(t *testing.T) *mockServer {
	t.Helper()
	return &mockServer{t: t}
}

func (m *mockServer) ExpectPath(path string) *mockServer {
	m.expectPath = path
	return m
}

func (m *mockServer) ExpectMethod(method string) *mockServer {
	m.expectMeth = method
	return m
}

func (m *mockServer) ExpectGET() *mockServer {
	return m.ExpectMethod(http.MethodGet)
}

func (m *mockServer) ExpectPOST() *mockServer {
	return m.ExpectMethod(http.MethodPost)
}

func (m *mockServer) ExpectDELETE() *mockServer {
	return m.ExpectMethod(http.MethodDelete)
}

// ExpectQuery verifies a single query parameter value.
func (m *mockServer) ExpectQuery(key, value string) *mockServer {
	if m.expectQuery == nil {
		m.expectQuery = make(map[string]string)
	}
	m.expectQuery[key] = value
	return m
}

// ExpectUser verifies the X-User-ID header.
func (m *mockServer) ExpectUser(id string) *mockServer {
	m.expectUser = id
	return m
}

func (m *mockServer) Handler(h func(w http.ResponseWriter, r *http.Request)) *mockServer {
	m.handler = h
	return m
}

func (m *mockServer) RespondJSON(v any) *mockServer {
	return m.RespondJSONStatus(http.StatusOK, v)
}

func (m *mockServer) RespondJSONStatus(code int, v any) *mockServer {
	m.handler = func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(m.t, w, code, v)
	}
	return m
}

func (m *mockServer) RespondStatus(code int) *mockServer {
	m.handler = func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
	}
	return m
}

// RespondAPIError responds the way the server's writeError does.
func (m *mockServer) RespondAPIError(code int, errCode, message string) *mockServer {
	return m.RespondJSONStatus(code, map[string]string{"error": message, "code": errCode})
}

// Build creates the httptest.Server and closes it with the test.
func (m *mockServer) Build() *httptest.Server {
	m.t.Helper()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.expectPath != "" {
			assert.Equal(m.t, m.expectPath, r.URL.Path, "unexpected request path")
		}
		if m.expectMeth != "" {
			assert.Equal(m.t, m.expectMeth, r.Method, "unexpected request method")
		}
		for k, v := range m.expectQuery {
			assert.Equal(m.t, v, r.URL.Query().Get(k), "unexpected query param %s", k)
		}
		if m.expectUser != "" {
			assert.Equal(m.t, m.expectUser, r.Header.Get("X-User-ID"), "unexpected user header")
		}
		if m.handler != nil {
			m.handler(w, r)
		}
	})

	srv := httptest.NewServer(handler)
	m.t.Cleanup(srv.Close)
	return srv
}

func respondJSON(t *testing.T, w http.ResponseWriter, code int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("failed to encode JSON response: %v", err)
	}
}

// runCLI executes the root command against url and returns its output.
// Persistent globals are reset so tests don't leak flags into each other.
func runCLI(t *testing.T, url string, args ...string) (string, error) {
	t.Helper()
	oldServer, oldUser, oldJSON := serverURL, userID, jsonOutput
	t.Cleanup(func() { serverURL, userID, jsonOutput = oldServer, oldUser, oldJSON })
	userID, jsonOutput = "", false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--server", url}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}
