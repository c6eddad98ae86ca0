package graphql

import (
	"context"

	"dappstore.GO/model/entity"
	"dappstore.GO/service/index"
	"dappstore.GO/service/search"
)

// Finder is the search side the resolvers read from.
type Finder interface {
	Search(ctx context.Context, text string, opts search.Options) (*index.Page, error)
	Autocomplete(ctx context.Context, text string, opts search.Options) (*index.Page, error)
	ByOwner(ctx context.Context, address string, opts search.Options) (*index.Page, error)
	ByID(ctx context.Context, id string) (*entity.DApp, error)
	Count(ctx context.Context, opts search.Options) (int64, error)
	StoreView(ctx context.Context, storeKey, text string, opts search.Options) (*index.Page, error)
	Store(ctx context.Context, key string) (*entity.Store, error)
	Stores(ctx context.Context, text string) ([]entity.Store, error)
}

// Options converts schema filter and sort inputs into search options.
func Options(f *DAppFilter, s *DAppSort) search.Options {
	var o search.Options
	if f != nil {
		o.ChainID = intp(f.ChainID)
		o.MinAge = intp(f.MinAge)
		o.Language = list(f.Language)
		o.AvailableOnPlatform = list(f.AvailableOnPlatform)
		o.ListedOnOrAfter = str(f.ListedOnOrAfter)
		o.ListedOnOrBefore = str(f.ListedOnOrBefore)
		o.ForMatureAudience = f.IsForMatureAudience
		o.IsMinted = f.IsMinted
		o.AllowedInCountries = list(f.AllowedInCountries)
		o.BlockedInCountries = list(f.BlockedInCountries)
		o.Categories = list(f.Categories)
		o.SubCategories = list(f.SubCategories)
		o.IsListed = f.IsListed
		o.DeveloperID = str(f.GithubID)
		o.IDs = list(f.IDs)
	}
	if s != nil {
		o.OrderBy = search.Sort{
			Rating:   search.Order(str(s.Rating)),
			Visits:   search.Order(str(s.Visits)),
			Installs: search.Order(str(s.Installs)),
			ListDate: search.Order(str(s.ListDate)),
			Name:     search.Order(str(s.Name)),
		}
	}
	return o
}

func intp(v *int32) *int {
	if v == nil {
		return nil
	}
	n := int(*v)
	return &n
}

func list(v *[]string) []string {
	if v == nil {
		return nil
	}
	return *v
}

func str(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
