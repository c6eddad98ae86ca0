package resolvers

import (
	"context"

	gqlmodels "dappstore.GO/graphql/models"
	"dappstore.GO/service/search"
)

// Dapp looks up one dApp by id, listed or not. Unknown ids resolve to null.
func (r *QueryResolver) Dapp(ctx context.Context, args struct{ DappID string }) (*gqlmodels.DApp, error) {
	d, err := r.find.ByID(ctx, args.DappID)
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toDApp(d), nil
}

// DappsByOwnerArgs matches the dappsByOwner query arguments.
type DappsByOwnerArgs struct {
	OwnerAddress string
	PageSize     int32
	CurrentPage  int32
}

func (r *QueryResolver) DappsByOwner(ctx context.Context, args DappsByOwnerArgs) (*gqlmodels.DAppPage, error) {
	page, err := r.find.ByOwner(ctx, args.OwnerAddress, search.Options{
		Limit: defaultPageSize(args.PageSize),
		Page:  defaultCurrentPage(args.CurrentPage),
	})
	if err != nil {
		return nil, err
	}
	return toPage(page), nil
}
