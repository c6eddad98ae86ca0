//go:build !cli

package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dappstore.GO/app"
	"dappstore.GO/config"
)

func TestServer_Routes(t *testing.T) {
	cfg := &config.Config{
		AppName:  "dappstore-test",
		Auth:     config.Auth{Type: "basic", User: "admin", Pass: "secret"},
		Registry: config.Registry{Strategy: "static"},
		GitHub:   config.GitHub{Owner: "polygon-dappstore", Repo: "registry"},
		Elastic:  config.Elastic{IndexPrefix: "test"},
		DB:       config.DB{SQLitePath: filepath.Join(t.TempDir(), "ledger.db"), LogOff: true},
	}
	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.Catalog.Warm(context.Background()))

	e := newServer(a.Services())
	do := func(method, path string, user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		if user != "" {
			req.SetBasicAuth(user, "secret")
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	health := do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, health.Code)
	assert.NotEmpty(t, health.Header().Get("X-Request-Duration-ms"))

	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/metrics", "").Code)
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/api/categories", "").Code)

	assert.Equal(t, http.StatusUnauthorized, do(http.MethodGet, "/api/submissions", "").Code)
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/api/submissions?githubId=alice", "admin").Code)

	// submissions need a GitHub identity, not the admin credentials
	assert.Equal(t, http.StatusUnauthorized, do(http.MethodPost, "/api/registry/dapps", "").Code)
}
