package resolvers

import (
	gqlmodels "dappstore.GO/graphql/models"
	"dappstore.GO/model/entity"
	"dappstore.GO/service/index"
)

func toPage(p *index.Page) *gqlmodels.DAppPage {
	out := &gqlmodels.DAppPage{
		Items:      make([]*gqlmodels.DApp, len(p.Items)),
		TotalCount: int32(p.Total),
		PageInfo: &gqlmodels.PageInfo{
			PageSize:    int32(p.Limit),
			CurrentPage: int32(p.Page),
			TotalPages:  int32(p.PageCount),
		},
		Message: optional(p.Message),
	}
	for i := range p.Items {
		out.Items[i] = toDApp(&p.Items[i])
	}
	return out
}

func toDApp(d *entity.DApp) *gqlmodels.DApp {
	out := &gqlmodels.DApp{
		DAppID:              d.DAppID,
		Name:                d.Name,
		Description:         d.Description,
		AppURL:              optional(d.AppURL),
		RepoURL:             optional(d.RepoURL),
		Category:            d.Category,
		SubCategory:         optional(d.SubCategory),
		Chains:              make([]int32, len(d.Chains)),
		Language:            nonNil(d.Language),
		AvailableOnPlatform: nonNil(d.AvailableOnPlatform),
		Tags:                nonNil(d.Tags),
		IsListed:            d.IsListed,
		ListDate:            d.ListDate,
		MinAge:              int32(d.MinAge),
		IsForMatureAudience: d.IsForMatureAudience,
		OwnerAddress:        optional(d.OwnerAddress),
		Screenshots:         []string{},
	}
	for i, c := range d.Chains {
		out.Chains[i] = int32(c)
	}
	if d.Images != nil {
		out.Logo = optional(d.Images.Logo)
		out.Banner = optional(d.Images.Banner)
		out.Screenshots = nonNil(d.Images.Screenshots)
	}
	if d.Developer != nil {
		out.Developer = &gqlmodels.Developer{
			LegalName: d.Developer.LegalName,
			Website:   d.Developer.Website,
			GithubID:  d.Developer.GithubID,
		}
	}
	if d.Metrics != nil {
		out.Metrics = &gqlmodels.Metrics{
			Rating:   d.Metrics.Rating,
			Visits:   float64(d.Metrics.Visits),
			Installs: float64(d.Metrics.Installs),
		}
	}
	return out
}

func toStore(s *entity.Store) *gqlmodels.Store {
	out := &gqlmodels.Store{
		Key:                 s.Key,
		Name:                s.Name,
		Description:         s.Description,
		URL:                 s.URL,
		MinAge:              int32(s.MinAge),
		IsForMatureAudience: s.IsForMatureAudience,
		BannedDAppIDs:       nonNil(s.BannedDAppIDs),
		FeaturedSections:    make([]*gqlmodels.FeaturedSection, len(s.FeaturedSections)),
	}
	for i, f := range s.FeaturedSections {
		out.FeaturedSections[i] = &gqlmodels.FeaturedSection{
			Key:         f.Key,
			Title:       f.Title,
			Description: optional(f.Description),
			DAppIDs:     nonNil(f.DAppIDs),
		}
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonNil[T ~[]string](v T) []string {
	if v == nil {
		return []string{}
	}
	return []string(v)
}
