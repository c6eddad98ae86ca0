package entity

// StoreKeySuffix is required on every store key.
const StoreKeySuffix = ".dappstore"

// EnrichRecord is a store-specific partial overlay on top of a canonical dApp.
// Fields is kept generic so overlays can be deep-merged and pruned by path.
type EnrichRecord struct {
	DAppID string         `json:"dappId"`
	Fields map[string]any `json:"fields,omitempty"`
}

// Store is one storefront of the stores document.
type Store struct {
	Key                 string            `json:"key"`
	GithubID            string            `json:"githubId,omitempty"`
	Name                string            `json:"name"`
	Description         string            `json:"description"`
	URL                 string            `json:"url"`
	MinAge              int               `json:"minAge"`
	Language            StringList        `json:"language"`
	Tags                []string          `json:"tags,omitempty"`
	GeoRestrictions     *GeoRestrictions  `json:"geoRestrictions,omitempty"`
	Images              *Images           `json:"images,omitempty"`
	IsForMatureAudience bool              `json:"isForMatureAudience"`
	BannedDAppIDs       []string          `json:"bannedDAppIds,omitempty"`
	WhitelistedDAppIDs  []string          `json:"whitelistedDAppIds,omitempty"`
	FeaturedSections    []FeaturedSection `json:"featuredSections,omitempty"`
	DAppsEnrich         []EnrichRecord    `json:"dappsEnrich,omitempty"`
	Category            string            `json:"category,omitempty"`

	Extras Extras `json:"-"`
}

type storeAlias Store

var storeKeys = keySet("key", "githubId", "name", "description", "url", "minAge",
	"language", "tags", "geoRestrictions", "images", "isForMatureAudience", "bannedDAppIds",
	"whitelistedDAppIds", "featuredSections", "dappsEnrich", "category")

func (s *Store) UnmarshalJSON(b []byte) error {
	var a storeAlias
	extras, err := splitExtras(b, &a, storeKeys)
	if err != nil {
		return err
	}
	*s = Store(a)
	s.Extras = extras
	return nil
}

func (s Store) MarshalJSON() ([]byte, error) {
	return joinExtras(storeAlias(s), s.Extras)
}

// OwnerIdentity is the GitHub id of the store owner.
func (s *Store) OwnerIdentity() string {
	return s.GithubID
}

// FindSection returns the index of the featured section with key, or -1.
func (s *Store) FindSection(key string) int {
	return findSection(s.FeaturedSections, key)
}

// HasSectionTitle reports whether a section with the title already exists.
func (s *Store) HasSectionTitle(title string) bool {
	return hasSectionTitle(s.FeaturedSections, title)
}

// IsBanned reports whether the store hides dappID.
func (s *Store) IsBanned(dappID string) bool {
	for _, id := range s.BannedDAppIDs {
		if id == dappID {
			return true
		}
	}
	return false
}

// FindEnrich returns the index of the enrich record for dappID, or -1.
func (s *Store) FindEnrich(dappID string) int {
	for i := range s.DAppsEnrich {
		if s.DAppsEnrich[i].DAppID == dappID {
			return i
		}
	}
	return -1
}

// EnrichFor returns the enrich record for dappID, or nil.
func (s *Store) EnrichFor(dappID string) *EnrichRecord {
	if i := s.FindEnrich(dappID); i >= 0 {
		return &s.DAppsEnrich[i]
	}
	return nil
}

// Stores is the canonical storefront document (src/dappStore.json).
type Stores struct {
	DAppStores []Store `json:"dappStores"`
}

// FindStore returns the index of the store with key, or -1.
func (s *Stores) FindStore(key string) int {
	for i := range s.DAppStores {
		if s.DAppStores[i].Key == key {
			return i
		}
	}
	return -1
}

// StoreDoc is the search index representation of a store.
type StoreDoc struct {
	ID         string
	KeyKeyword string
	Store      Store
}

func (d StoreDoc) MarshalJSON() ([]byte, error) {
	b, err := d.Store.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return withKeywords(b, "id", d.ID, "keyKeyword", d.KeyKeyword)
}

// NewStoreDoc builds the indexed form of s.
func NewStoreDoc(s Store) StoreDoc {
	return StoreDoc{ID: s.Key, KeyKeyword: s.Key, Store: s}
}
