package status

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dappstore.GO/api"
	"dappstore.GO/core/errs"
	"dappstore.GO/model/entity"
	"dappstore.GO/model/repository/submission"
	"dappstore.GO/service/registry"
	"dappstore.GO/service/schema"
)

// indexStub serves only the entries it was given.
type indexStub struct {
	api.Finder
	dapps  map[string]entity.DApp
	stores map[string]entity.Store
}

func (f *indexStub) ByID(_ context.Context, id string) (*entity.DApp, error) {
	d, ok := f.dapps[id]
	if !ok {
		return nil, errs.E(errs.KindNotFound, "test", "no dApp %s", id)
	}
	return &d, nil
}

func (f *indexStub) Store(_ context.Context, key string) (*entity.Store, error) {
	s, ok := f.stores[key]
	if !ok {
		return nil, errs.E(errs.KindNotFound, "test", "no store %s", key)
	}
	return &s, nil
}

func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	ctx := context.Background()
	v, err := schema.New()
	require.NoError(t, err)
	cat, err := registry.NewCatalog(registry.Settings{Strategy: registry.StrategyStatic}, v)
	require.NoError(t, err)
	reg, _, err := cat.Registry.Fetch(ctx)
	require.NoError(t, err)
	stores, _, err := cat.Stores.Fetch(ctx)
	require.NoError(t, err)

	uniswap := reg.DApps[reg.FindDApp("uniswap.dapp")]
	stale := reg.DApps[reg.FindDApp("opensea.dapp")]
	stale.Name = "An older name"
	finder := &indexStub{
		dapps:  map[string]entity.DApp{"uniswap.dapp": uniswap, "opensea.dapp": stale},
		stores: map[string]entity.Store{"polygon.dappstore": stores.DAppStores[0]},
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	ledger := submission.NewSubmissionRepository(db)
	require.NoError(t, ledger.AutoMigrate())
	require.NoError(t, ledger.Record(ctx, &entity.Submission{
		Submitter: "Uniswap", Document: "registry", Operation: "commit.toggle_listing",
		Resource: "uniswap.dapp", CommitMessage: "toggle-uniswap.dapp", CompareURL: "https://x",
	}, nil))

	e := echo.New()
	e.HTTPErrorHandler = api.ErrorHandler(nil)
	RegisterStatusRoutes(e.Group("/api"), &api.Services{Catalog: cat, Finder: finder, Ledger: ledger})
	return e
}

func get(e *echo.Echo, target string, out any) int {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	if out != nil && rec.Code == http.StatusOK {
		_ = json.Unmarshal(rec.Body.Bytes(), out)
	}
	return rec.Code
}

func TestDAppStatus(t *testing.T) {
	e := newServer(t)

	var st DAppStatus
	require.Equal(t, http.StatusOK, get(e, "/api/status/dapps/uniswap.dapp", &st))
	assert.True(t, st.InRegistry)
	assert.True(t, st.Listed)
	assert.True(t, st.Indexed)
	assert.True(t, st.InSync)
	require.Len(t, st.Submissions, 1)
	assert.Equal(t, "commit.toggle_listing", st.Submissions[0].Operation)
	assert.NotNil(t, st.RegistryCheckedAt)

	st = DAppStatus{}
	require.Equal(t, http.StatusOK, get(e, "/api/status/dapps/opensea.dapp", &st))
	assert.True(t, st.Indexed)
	assert.False(t, st.InSync)
	assert.Empty(t, st.Submissions)

	st = DAppStatus{}
	require.Equal(t, http.StatusOK, get(e, "/api/status/dapps/aave.dapp", &st))
	assert.True(t, st.InRegistry)
	assert.False(t, st.Indexed)

	assert.Equal(t, http.StatusNotFound, get(e, "/api/status/dapps/ghost.dapp", nil))
}

func TestStoreStatus(t *testing.T) {
	e := newServer(t)

	var st StoreStatus
	require.Equal(t, http.StatusOK, get(e, "/api/status/stores/polygon.dappstore", &st))
	assert.True(t, st.InDocument)
	assert.True(t, st.Indexed)
	assert.True(t, st.InSync)

	assert.Equal(t, http.StatusNotFound, get(e, "/api/status/stores/ghost.dappstore", nil))
}
