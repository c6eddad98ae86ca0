// Package models holds the GraphQL response types. Field names match the
// schema so graphql-go resolves them directly.
package models

type DApp struct {
	DAppID              string
	Name                string
	Description         string
	AppURL              *string
	RepoURL             *string
	Category            string
	SubCategory         *string
	Chains              []int32
	Language            []string
	AvailableOnPlatform []string
	Tags                []string
	IsListed            bool
	ListDate            string
	MinAge              int32
	IsForMatureAudience bool
	OwnerAddress        *string
	Logo                *string
	Banner              *string
	Screenshots         []string
	Developer           *Developer
	Metrics             *Metrics
}

type Developer struct {
	LegalName string
	Website   string
	GithubID  string
}

type Metrics struct {
	Rating   float64
	Visits   float64
	Installs float64
}

type FeaturedSection struct {
	Key         string
	Title       string
	Description *string
	DAppIDs     []string
}

type Store struct {
	Key                 string
	Name                string
	Description         string
	URL                 string
	MinAge              int32
	IsForMatureAudience bool
	BannedDAppIDs       []string
	FeaturedSections    []*FeaturedSection
}
