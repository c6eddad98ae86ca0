package resolvers

import (
	"context"
	"encoding/json"
	"errors"

	"dappstore.GO/core/errs"
	"dappstore.GO/graphql"
	gqlregistry "dappstore.GO/graphql/registry"
)

// QueryResolver is the single resolver for all Query fields.
// Methods live in search.go, dapp.go, store.go and category.go.
// New Query fields: use RegisterSchemaExtension + add method on QueryResolver,
// or use _extension for fully dynamic resolvers.
type QueryResolver struct {
	find graphql.Finder
}

func NewQueryResolver(find graphql.Finder) *QueryResolver {
	return &QueryResolver{find: find}
}

func (r *QueryResolver) storeKey(ctx context.Context) string {
	return graphql.StoreFromContext(ctx)
}

// Extension dispatches to registered custom resolvers.
func (r *QueryResolver) Extension(ctx context.Context, args struct {
	Name string
	Args *string
}) (*string, error) {
	m := make(map[string]any)
	if args.Args != nil && *args.Args != "" {
		if err := json.Unmarshal([]byte(*args.Args), &m); err != nil {
			return nil, err
		}
	}
	out, err := gqlregistry.Resolve(ctx, args.Name, m)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

// notFound turns a missing resource into a null result.
func notFound(err error) bool {
	return errors.Is(err, errs.ErrNotFound)
}
