package resolvers

import (
	"context"

	gqlmodels "dappstore.GO/graphql/models"
	"dappstore.GO/service/registry"
)

// Categories returns the bundled category taxonomy.
func (r *QueryResolver) Categories(ctx context.Context) ([]*gqlmodels.Category, error) {
	cats, err := registry.Categories()
	if err != nil {
		return nil, err
	}
	result := make([]*gqlmodels.Category, len(cats))
	for i, c := range cats {
		result[i] = &gqlmodels.Category{Name: c.Name, SubCategories: c.SubCategories}
	}
	return result, nil
}
