package entity

import "strings"

// Deployment platforms a dApp can be available on.
const (
	PlatformWeb     = "web"
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
)

// DAppIDSuffix is required on explicitly chosen dApp ids.
const DAppIDSuffix = ".dapp"

type Images struct {
	Logo        string   `json:"logo,omitempty"`
	Banner      string   `json:"banner,omitempty"`
	Screenshots []string `json:"screenshots,omitempty"`
}

type GeoRestrictions struct {
	AllowedCountries []string `json:"allowedCountries,omitempty"`
	BlockedCountries []string `json:"blockedCountries,omitempty"`
}

type Support struct {
	URL   string `json:"url,omitempty"`
	Email string `json:"email,omitempty"`
}

type Developer struct {
	LegalName        string  `json:"legalName"`
	Logo             string  `json:"logo,omitempty"`
	Website          string  `json:"website"`
	PrivacyPolicyURL string  `json:"privacyPolicyUrl"`
	Support          Support `json:"support"`
	GithubID         string  `json:"githubID"`
}

type DownloadBaseURL struct {
	URL          string `json:"url"`
	Platform     string `json:"platform"`
	Architecture string `json:"architecture"`
	MinVersion   string `json:"minVersion"`
	MaxVersion   string `json:"maxVersion,omitempty"`
	ScreenDPI    string `json:"screenDPI,omitempty"`
	PackageID    string `json:"packageId,omitempty"`
	Version      string `json:"version,omitempty"`
	VersionCode  string `json:"versionCode,omitempty"`
}

type Contract struct {
	Address string `json:"address"`
	ChainID string `json:"chainId"`
}

type ReferredBy struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Metrics are maintained by the indexer and used as secondary sort keys.
type Metrics struct {
	Rating   float64 `json:"rating,omitempty"`
	Visits   int64   `json:"visits,omitempty"`
	Installs int64   `json:"installs,omitempty"`
}

// DApp is one catalog entry of the registry document.
type DApp struct {
	DAppID              string            `json:"dappId"`
	Name                string            `json:"name"`
	Description         string            `json:"description"`
	AppURL              string            `json:"appUrl,omitempty"`
	DownloadBaseURLs    []DownloadBaseURL `json:"downloadBaseUrls,omitempty"`
	Contracts           []Contract        `json:"contracts,omitempty"`
	Images              *Images           `json:"images,omitempty"`
	RepoURL             string            `json:"repoUrl,omitempty"`
	MinAge              int               `json:"minAge"`
	IsForMatureAudience bool              `json:"isForMatureAudience"`
	IsSelfModerated     bool              `json:"isSelfModerated"`
	Language            StringList        `json:"language"`
	Version             string            `json:"version"`
	VersionCode         string            `json:"versionCode,omitempty"`
	IsListed            bool              `json:"isListed"`
	ListDate            string            `json:"listDate"`
	AvailableOnPlatform []string          `json:"availableOnPlatform"`
	GeoRestrictions     *GeoRestrictions  `json:"geoRestrictions,omitempty"`
	Developer           *Developer        `json:"developer,omitempty"`
	Tags                []string          `json:"tags,omitempty"`
	Chains              []int             `json:"chains"`
	Category            string            `json:"category"`
	SubCategory         string            `json:"subCategory,omitempty"`
	PackageID           string            `json:"packageId,omitempty"`
	WalletAPIVersion    []string          `json:"walletApiVersion,omitempty"`
	Minted              []string          `json:"minted,omitempty"`
	OwnerAddress        string            `json:"ownerAddress,omitempty"`
	ReferredBy          *ReferredBy       `json:"referredBy,omitempty"`
	Metrics             *Metrics          `json:"metrics,omitempty"`

	Extras Extras `json:"-"`
}

type dappAlias DApp

var dappKeys = keySet("dappId", "name", "description", "appUrl", "downloadBaseUrls",
	"contracts", "images", "repoUrl", "minAge", "isForMatureAudience", "isSelfModerated",
	"language", "version", "versionCode", "isListed", "listDate", "availableOnPlatform",
	"geoRestrictions", "developer", "tags", "chains", "category", "subCategory", "packageId",
	"walletApiVersion", "minted", "ownerAddress", "referredBy", "metrics")

func (d *DApp) UnmarshalJSON(b []byte) error {
	var a dappAlias
	extras, err := splitExtras(b, &a, dappKeys)
	if err != nil {
		return err
	}
	*d = DApp(a)
	d.Extras = extras
	return nil
}

func (d DApp) MarshalJSON() ([]byte, error) {
	return joinExtras(dappAlias(d), d.Extras)
}

// OwnerIdentity is the GitHub id recorded as the dApp's developer, empty if unknown.
func (d *DApp) OwnerIdentity() string {
	if d.Developer == nil {
		return ""
	}
	return d.Developer.GithubID
}

// NormalizedName is the key used for display-name uniqueness.
func (d *DApp) NormalizedName() string {
	return strings.ToLower(strings.TrimSpace(d.Name))
}

// DAppDoc is the search index representation with keyword helper fields.
type DAppDoc struct {
	ID                 string
	NameKeyword        string
	SubCategoryKeyword string
	DAppIDKeyword      string
	DApp               DApp
}

// MarshalJSON flattens the dApp next to the keyword fields.
func (d DAppDoc) MarshalJSON() ([]byte, error) {
	b, err := d.DApp.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return withKeywords(b,
		"id", d.ID,
		"nameKeyword", d.NameKeyword,
		"subCategoryKeyword", d.SubCategoryKeyword,
		"dappIdKeyword", d.DAppIDKeyword)
}

// NewDAppDoc builds the indexed form of d.
func NewDAppDoc(d DApp) DAppDoc {
	return DAppDoc{
		ID:                 d.DAppID,
		NameKeyword:        d.Name,
		SubCategoryKeyword: d.SubCategory,
		DAppIDKeyword:      d.DAppID,
		DApp:               d,
	}
}
