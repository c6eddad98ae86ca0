package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dappstore.GO/config"
	"dappstore.GO/core/cache"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		AppName:  "dappstore-test",
		Registry: config.Registry{Strategy: "static"},
		GitHub:   config.GitHub{Owner: "polygon-dappstore", Repo: "registry"},
		Elastic:  config.Elastic{IndexPrefix: "test"},
		DB:       config.DB{SQLitePath: filepath.Join(t.TempDir(), "ledger.db"), LogOff: true},
	}
}

func TestNew_WiresServices(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(t))
	require.NoError(t, err)
	defer a.Close()

	_, isMemory := a.Shared.(*cache.Memory)
	assert.True(t, isMemory, "no redis configured falls back to the in-process cache")

	require.NoError(t, a.Catalog.Warm(ctx))
	reg, _, err := a.Catalog.Registry.Fetch(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, reg.DApps)

	s := a.Services()
	assert.NotNil(t, s.Finder)
	assert.NotNil(t, s.Indexes)
	assert.NotNil(t, s.Workflow)
	assert.NotNil(t, s.Identity)
	assert.NotNil(t, s.Gatherer)

	subs, err := a.Ledger.FindBySubmitter(ctx, "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, subs)

	families, err := a.Prom.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNew_RejectsBadStrategy(t *testing.T) {
	cfg := testConfig(t)
	cfg.Registry.Strategy = "sometimes"
	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}
