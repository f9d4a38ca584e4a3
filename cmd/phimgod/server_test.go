package main

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/phimgo/internal/config"
	"github.com/vmunix/phimgo/internal/docstore"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.in))
		})
	}
}

func TestNewLogger_Formats(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "json", "info").Info("hello", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	newLogger(&buf, "text", "info").Info("hello", "k", "v")
	assert.Contains(t, buf.String(), "msg=hello")

	buf.Reset()
	newLogger(&buf, "pretty", "info").Info("hello", "k", "v")
	assert.Contains(t, buf.String(), "hello")

	buf.Reset()
	newLogger(&buf, "text", "warn").Info("dropped")
	assert.Empty(t, buf.String())
}

func TestLogRequests(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	h := logRequests(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)
	}), logger)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	out := buf.String()
	assert.Contains(t, out, "path=/api/v1/status")
	assert.Contains(t, out, "status=418")
}

func TestOpenBackend(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		cfg    config.StoreConfig
		withDB bool
	}{
		{"memory", config.StoreConfig{Backend: config.BackendMemory}, false},
		{"bolt", config.StoreConfig{Backend: config.BackendBolt, Path: filepath.Join(dir, "bolt", "phimgo.bolt")}, false},
		{"sqlite", config.StoreConfig{Backend: config.BackendSQLite, Path: filepath.Join(dir, "sqlite", "phimgo.db")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be, err := openBackend(tt.cfg)
			require.NoError(t, err)
			defer func() { assert.NoError(t, be.close()) }()

			assert.Equal(t, tt.withDB, be.db != nil)

			ctx := context.Background()
			require.NoError(t, be.store.Put(ctx, "movies", docstore.Document{ID: "m1", Fields: map[string]any{"name": "Mai"}}))
			n, err := be.store.Count(ctx, "movies", nil)
			require.NoError(t, err)
			assert.Equal(t, 1, n)
		})
	}
}

func TestOpenBackend_Unknown(t *testing.T) {
	_, err := openBackend(config.StoreConfig{Backend: "mongo"})
	assert.Error(t, err)
}
