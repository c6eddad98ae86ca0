package custom

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dappstore.GO/api"
	"dappstore.GO/core/logger"
	"dappstore.GO/cron"
	gqlregistry "dappstore.GO/graphql/registry"
	"dappstore.GO/service/registry"
)

func firstCategory(t *testing.T) registry.Category {
	t.Helper()
	cats, err := registry.Categories()
	require.NoError(t, err)
	require.NotEmpty(t, cats)
	return cats[0]
}

func TestSubCategories(t *testing.T) {
	cat := firstCategory(t)
	subs, err := SubCategories(cat.Name)
	require.NoError(t, err)
	assert.Equal(t, cat.SubCategories, subs)

	_, err = SubCategories("no-such-category")
	assert.Error(t, err)
}

func TestExtensionResolver(t *testing.T) {
	cat := firstCategory(t)
	out, err := gqlregistry.Resolve(context.Background(), "subCategories", map[string]any{"category": cat.Name})
	require.NoError(t, err)
	assert.Equal(t, cat.SubCategories, out)
}

func TestCategoryRoute(t *testing.T) {
	cat := firstCategory(t)
	e := echo.New()
	e.HTTPErrorHandler = api.ErrorHandler(logger.Discard())
	api.ApplyRoutes(e, &api.Services{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/categories/"+cat.Name, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Category    string   `json:"category"`
		SubCategory []string `json:"subCategory"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, cat.Name, body.Category)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/categories/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategoriesCheckJob(t *testing.T) {
	j, ok := cron.Lookup(nil, "categories-check")
	require.True(t, ok)
	assert.Empty(t, j.Schedule)
	assert.NoError(t, j.Run(context.Background()))
}
