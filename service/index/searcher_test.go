package index

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dappstore.GO/core/errs"
	"dappstore.GO/model/entity"
	"dappstore.GO/service/search"
)

var testNames = Names{Env: "test"}

func TestSearcher_SearchGoesThroughAlias(t *testing.T) {
	spy := newSpy()
	spy.result = &Result{Total: 45, Hits: []Hit{hitOf(entity.DApp{DAppID: "uniswap.dapp", Name: "Uniswap", IsListed: true})}}
	s := NewSearcher(spy, nil, testNames)

	page, err := s.Search(context.Background(), "swap", search.Options{Page: 2})
	require.NoError(t, err)

	assert.Equal(t, []string{"search:test_dapp_search_index"}, spy.calls)
	assert.Equal(t, 20, spy.lastBody()["from"])
	require.Len(t, page.Items, 1)
	assert.Equal(t, "uniswap.dapp", page.Items[0].DAppID)
	assert.Empty(t, page.Items[0].Extras, "index helper fields never leak into results")
	assert.Equal(t, int64(45), page.Total)
	assert.Equal(t, 3, page.PageCount)
	assert.Equal(t, 2, page.Page)
}

func TestSearcher_DepthExceededSkipsBackend(t *testing.T) {
	spy := newSpy()
	s := NewSearcher(spy, nil, testNames)

	page, err := s.Search(context.Background(), "", search.Options{Page: 501})
	require.NoError(t, err)

	assert.Empty(t, spy.calls)
	assert.Equal(t, search.DepthExceededMessage, page.Message)
	assert.Equal(t, 500, page.PageCount)
	assert.Empty(t, page.Items)
}

func TestSearcher_ByID(t *testing.T) {
	spy := newSpy()
	s := NewSearcher(spy, nil, testNames)

	_, err := s.ByID(context.Background(), "missing.dapp")
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	query := spy.lastBody()["query"].(search.M)
	assert.NotContains(t, query["bool"].(search.M)["must"], search.M{"term": search.M{"isListed": true}},
		"lookups by id see unlisted dApps too")

	spy.result = &Result{Total: 1, Hits: []Hit{hitOf(entity.DApp{DAppID: "aave.dapp", Name: "Aave"})}}
	d, err := s.ByID(context.Background(), "aave.dapp")
	require.NoError(t, err)
	assert.Equal(t, "Aave", d.Name)
}

func TestSearcher_ByOwnerRequiresAddress(t *testing.T) {
	s := NewSearcher(newSpy(), nil, testNames)
	_, err := s.ByOwner(context.Background(), " ", search.Options{})
	assert.True(t, errors.Is(err, errs.ErrValidation))
}

func TestSearcher_ScrollLifecycle(t *testing.T) {
	spy := newSpy()
	s := NewSearcher(spy, nil, testNames)
	ctx := context.Background()

	first, err := s.Scroll(ctx, "", search.Options{})
	require.NoError(t, err)
	assert.Equal(t, "cursor-1", first.ScrollID)
	assert.Equal(t, search.ScrollPageSize, first.Limit)

	next, err := s.Scroll(ctx, "", search.Options{ScrollID: first.ScrollID})
	require.NoError(t, err)
	assert.Equal(t, "cursor-1", next.ScrollID)

	require.NoError(t, s.CloseScroll(ctx, first.ScrollID))
	_, err = s.Scroll(ctx, "", search.Options{ScrollID: first.ScrollID})
	assert.True(t, errors.Is(err, errs.ErrNotFound), "a closed cursor is gone")
}

func TestSearcher_Count(t *testing.T) {
	spy := newSpy()
	n, err := NewSearcher(spy, nil, testNames).Count(context.Background(), search.Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
	assert.Equal(t, []string{"query"}, keysOf(spy.lastBody()))
}

func keysOf(m search.M) []string {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestSearcher_StoreView(t *testing.T) {
	spy := newSpy()
	spy.result = &Result{Total: 1, Hits: []Hit{hitOf(entity.DApp{
		DAppID:      "aave.dapp",
		Name:        "Aave",
		Description: "Lending",
		Images:      &entity.Images{Logo: "logo.png", Screenshots: []string{"a.png", "b.png"}},
	})}}
	stores := staticStores{doc: &entity.Stores{DAppStores: []entity.Store{{
		Key:           "polygon.dappstore",
		BannedDAppIDs: []string{"audius.dapp"},
		DAppsEnrich: []entity.EnrichRecord{{
			DAppID: "aave.dapp",
			Fields: map[string]any{
				"description": "Aave on Polygon",
				"images":      map[string]any{"screenshots": []any{map[string]any{"index": 1, "value": "b2.png"}}},
			},
		}},
	}}}}
	s := NewSearcher(spy, nil, testNames, WithStores(stores))

	page, err := s.StoreView(context.Background(), "polygon.dappstore", "", search.Options{ExcludeIDs: []string{"x.dapp"}})
	require.NoError(t, err)

	mustNot := spy.lastBody()["query"].(search.M)["bool"].(search.M)["must_not"]
	assert.Equal(t, []any{search.M{"terms": search.M{"dappIdKeyword": []string{"x.dapp", "audius.dapp"}}}}, mustNot)

	require.Len(t, page.Items, 1)
	assert.Equal(t, "Aave on Polygon", page.Items[0].Description)
	assert.Equal(t, []string{"a.png", "b2.png"}, page.Items[0].Images.Screenshots)
	assert.Equal(t, "logo.png", page.Items[0].Images.Logo)

	_, err = s.StoreView(context.Background(), "nope.dappstore", "", search.Options{})
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestSearcher_StoreViewNeedsStores(t *testing.T) {
	_, err := NewSearcher(newSpy(), nil, testNames).StoreView(context.Background(), "a.dappstore", "", search.Options{})
	assert.Error(t, err)
}
