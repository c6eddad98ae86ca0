package resolvers

import (
	"context"
	"math"

	"dappstore.GO/graphql"
	gqlmodels "dappstore.GO/graphql/models"
	"dappstore.GO/service/index"
)

// DappsArgs matches the dapps query arguments.
type DappsArgs struct {
	Text        *string
	Filter      *graphql.DAppFilter
	OrderBy     *graphql.DAppSort
	PageSize    int32
	CurrentPage int32
}

// Dapps searches the catalog, or the store view when a store scopes the request.
func (r *QueryResolver) Dapps(ctx context.Context, args DappsArgs) (*gqlmodels.DAppPage, error) {
	opts := graphql.Options(args.Filter, args.OrderBy)
	opts.Limit = defaultPageSize(args.PageSize)
	opts.Page = defaultCurrentPage(args.CurrentPage)
	text := ""
	if args.Text != nil {
		text = *args.Text
	}

	var page *index.Page
	var err error
	if key := r.storeKey(ctx); key != "" {
		page, err = r.find.StoreView(ctx, key, text, opts)
	} else {
		page, err = r.find.Search(ctx, text, opts)
	}
	if err != nil {
		return nil, err
	}
	return toPage(page), nil
}

// Autocomplete returns the short suggestion list for text.
func (r *QueryResolver) Autocomplete(ctx context.Context, args struct {
	Text   string
	Filter *graphql.DAppFilter
}) (*gqlmodels.DAppPage, error) {
	page, err := r.find.Autocomplete(ctx, args.Text, graphql.Options(args.Filter, nil))
	if err != nil {
		return nil, err
	}
	return toPage(page), nil
}

// DappCount counts dApps matching the filter.
func (r *QueryResolver) DappCount(ctx context.Context, args struct{ Filter *graphql.DAppFilter }) (int32, error) {
	n, err := r.find.Count(ctx, graphql.Options(args.Filter, nil))
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt32 {
		return math.MaxInt32, nil
	}
	return int32(n), nil
}
