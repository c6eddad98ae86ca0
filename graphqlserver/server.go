package graphqlserver

import (
	gql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"

	"dappstore.GO/graphql"
	"dappstore.GO/graphql/resolvers"
)

// RootResolver is the root for graphql-go. The store scope travels in the
// request context, so one resolver serves every request.
type RootResolver struct {
	*resolvers.QueryResolver
}

// NewSchema parses the base schema plus registered extensions.
func NewSchema(find graphql.Finder) (*gql.Schema, error) {
	root := &RootResolver{QueryResolver: resolvers.NewQueryResolver(find)}
	return gql.ParseSchema(graphql.Schema(), root, gql.UseFieldResolvers(), gql.MaxParallelism(8))
}

// Handler returns an http.Handler for GraphQL (relay format).
func Handler(schema *gql.Schema) *relay.Handler {
	return &relay.Handler{Schema: schema}
}
