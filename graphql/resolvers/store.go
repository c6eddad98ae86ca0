package resolvers

import (
	"context"

	gqlmodels "dappstore.GO/graphql/models"
)

func (r *QueryResolver) Store(ctx context.Context, args struct{ Key string }) (*gqlmodels.Store, error) {
	st, err := r.find.Store(ctx, args.Key)
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toStore(st), nil
}

func (r *QueryResolver) Stores(ctx context.Context, args struct{ Text *string }) ([]*gqlmodels.Store, error) {
	text := ""
	if args.Text != nil {
		text = *args.Text
	}
	list, err := r.find.Stores(ctx, text)
	if err != nil {
		return nil, err
	}
	out := make([]*gqlmodels.Store, len(list))
	for i := range list {
		out[i] = toStore(&list[i])
	}
	return out, nil
}
