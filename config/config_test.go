package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dappstore.GO/service/registry"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, registry.StrategyRemote, cfg.Registry.Strategy)
	assert.Equal(t, registry.DefaultTTL, cfg.Registry.CacheTTL)
	assert.Equal(t, []string{"http://localhost:9200"}, cfg.Elastic.Addresses)
	assert.Equal(t, "dev", cfg.Elastic.IndexPrefix)
	assert.Equal(t, DefaultRefreshSchedule, cfg.Cron.Refresh)
	assert.Equal(t, 1.0, cfg.Boosts.Name)
	assert.Empty(t, cfg.DB.DSN)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("REGISTRY_STRATEGY", "STATIC")
	t.Setenv("REGISTRY_CACHE_TTL", "90s")
	t.Setenv("ELASTICSEARCH_HOST", "http://es1:9200, http://es2:9200")
	t.Setenv("ENVIRONMENT", "staging")
	t.Setenv("MAINTAINERS", "alice,bob")
	t.Setenv("BOOST_NAME", "3")
	t.Setenv("MYSQL_HOST", "db")
	t.Setenv("MYSQL_USER", "u")
	t.Setenv("MYSQL_PASS", "p")
	t.Setenv("MYSQL_DB", "ledger")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, registry.StrategyStatic, cfg.Registry.Strategy)
	assert.Equal(t, 90*time.Second, cfg.Registry.CacheTTL)
	assert.Equal(t, []string{"http://es1:9200", "http://es2:9200"}, cfg.Elastic.Addresses)
	assert.Equal(t, "staging", cfg.Elastic.IndexPrefix)
	assert.Equal(t, []string{"alice", "bob"}, cfg.Auth.Maintainers)
	assert.Equal(t, 3.0, cfg.Boosts.Name)
	assert.Equal(t, "u:p@tcp(db:3306)/ledger?parseTime=true&charset=utf8mb4&loc=Local", cfg.DB.DSN)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("REGISTRY_STRATEGY", "sometimes")
	_, err := Load()
	assert.ErrorContains(t, err, "REGISTRY_STRATEGY")

	t.Setenv("REGISTRY_STRATEGY", "remote")
	t.Setenv("AUTH_TYPE", "key")
	_, err = Load()
	assert.ErrorContains(t, err, "API_KEY")
}

func TestSkipAuth(t *testing.T) {
	assert.True(t, SkipAuth("/api/dapps/search"))
	assert.True(t, SkipAuth("/api/registry/dapps/:dappId"))
	assert.False(t, SkipAuth("/api/index/:kind/reindex"))
	assert.False(t, SkipAuth("/api/dappsX"))
}

func TestNewDB_SQLite(t *testing.T) {
	db, err := NewDB(DB{SQLitePath: filepath.Join(t.TempDir(), "ledger.db"), LogOff: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Ping())
}
