// Package search compiles typed search options into backend query bodies.
// Compilation is pure: no I/O and no shared mutable state.
package search

import (
	"strings"
	"time"
)

// M is a JSON object in a query body.
type M = map[string]any

// Mode selects the shape of the compiled request.
type Mode int

const (
	ModeSearch Mode = iota
	ModeAutocomplete
	ModeScroll
	ModeCount
)

func (m Mode) String() string {
	switch m {
	case ModeAutocomplete:
		return "autocomplete"
	case ModeScroll:
		return "scroll"
	case ModeCount:
		return "count"
	}
	return "search"
}

// Paging and cursor limits.
const (
	RecordsPerPage             = 20
	RecordsPerPageAutocomplete = 7
	MaxResultWindow            = 10000
	ScrollPageSize             = 200
	MaxScrollPageSize          = 1000
	ScrollOpenKeepAlive        = 30 * time.Second
	ScrollRenewKeepAlive       = time.Minute

	DepthExceededMessage = "Reached max page allowed, use filters to search"
)

// SearchFields is the source projection of full search results.
var SearchFields = []string{
	"name", "description", "dappId", "category", "subCategory", "appUrl", "downloadBaseUrls",
	"contracts", "repoUrl", "isForMatureAudience", "isSelfModerated", "language", "version",
	"versionCode", "isListed", "listDate", "availableOnPlatform", "geoRestrictions", "tags",
	"images", "chains", "minAge", "developer", "packageId", "walletApiVersion", "minted",
	"ownerAddress", "metrics", "referredBy",
}

// AutocompleteFields is the smaller projection used for suggestions.
var AutocompleteFields = []string{"name", "dappId", "category", "subCategory", "images.logo", "isListed"}

// Boosts weigh the free text match fields.
type Boosts struct {
	Name        float64
	Description float64
	DAppID      float64
	Category    float64
}

// DefaultBoosts weighs every field equally.
var DefaultBoosts = Boosts{Name: 1, Description: 1, DAppID: 1, Category: 1}

// Config tunes a Compiler.
type Config struct {
	Boosts Boosts
	// MaxWindow is the deepest from+size allowed; defaults to MaxResultWindow.
	MaxWindow int
	// Taxonomy maps a category to its known sub categories. Requested sub
	// categories apply to the categories they belong to; with no entry for a
	// category every requested sub category applies to it.
	Taxonomy map[string][]string
}

// Compiler turns Options into backend requests.
type Compiler struct {
	cfg Config
}

// NewCompiler fills defaults in cfg.
func NewCompiler(cfg Config) *Compiler {
	if cfg.Boosts == (Boosts{}) {
		cfg.Boosts = DefaultBoosts
	}
	if cfg.MaxWindow <= 0 {
		cfg.MaxWindow = MaxResultWindow
	}
	return &Compiler{cfg: cfg}
}

// Compiled is the result of one compilation.
type Compiled struct {
	Mode Mode
	// Body is the request body; nil when Exceeded or when continuing a cursor.
	Body M
	Page int
	Size int
	From int

	// Exceeded reports a request deeper than the maximum window. No query
	// may be issued; PageCount is the last reachable page.
	Exceeded  bool
	Message   string
	PageCount int

	// Scroll is the cursor keep-alive; ScrollID is set when continuing a cursor.
	Scroll   time.Duration
	ScrollID string
}

// Compile builds the request for text and opts in mode.
func (c *Compiler) Compile(text string, opts Options, mode Mode) Compiled {
	text = strings.TrimSpace(text)

	if mode == ModeScroll && opts.ScrollID != "" {
		return Compiled{Mode: mode, Scroll: ScrollRenewKeepAlive, ScrollID: opts.ScrollID}
	}

	query := c.Query(text, opts)
	switch mode {
	case ModeCount:
		return Compiled{Mode: mode, Body: M{"query": query}}
	case ModeScroll:
		size := clamp(opts.Limit, ScrollPageSize, MaxScrollPageSize)
		return Compiled{
			Mode:   mode,
			Body:   M{"query": query, "size": size, "sort": sortClause(opts.OrderBy), "_source": SearchFields},
			Size:   size,
			Scroll: ScrollOpenKeepAlive,
		}
	}

	perPage, fields := RecordsPerPage, SearchFields
	if mode == ModeAutocomplete {
		perPage, fields = RecordsPerPageAutocomplete, AutocompleteFields
	}
	page := opts.Page
	if page < 1 {
		page = 1
	}
	size := clamp(opts.Limit, perPage, perPage)
	from := (page - 1) * size

	out := Compiled{Mode: mode, Page: page, Size: size, From: from}
	if from+size > c.cfg.MaxWindow {
		out.Exceeded = true
		out.Message = DepthExceededMessage
		out.PageCount = page - 1
		return out
	}
	out.Body = M{
		"_source": fields,
		"query":   query,
		"from":    from,
		"size":    size,
		"sort":    sortClause(opts.OrderBy),
	}
	return out
}

// Query compiles only the bool query of text and opts.
func (c *Compiler) Query(text string, opts Options) M {
	var must, mustNot, filter []any
	add := func(clause M) { must = append(must, clause) }

	if opts.ChainID != nil {
		add(M{"match": M{"chains": *opts.ChainID}})
	}
	if opts.MinAge != nil {
		add(M{"range": M{"minAge": M{"gt": *opts.MinAge}}})
	}
	if len(opts.Language) > 0 {
		add(M{"terms": M{"language": opts.Language}})
	}
	if len(opts.AvailableOnPlatform) > 0 {
		add(M{"terms": M{"availableOnPlatform": opts.AvailableOnPlatform}})
	}
	if opts.ListedOnOrAfter != "" {
		add(M{"range": M{"listDate": M{"gte": opts.ListedOnOrAfter}}})
	}
	if opts.ListedOnOrBefore != "" {
		add(M{"range": M{"listDate": M{"lte": opts.ListedOnOrBefore}}})
	}
	if opts.ForMatureAudience != nil {
		add(M{"term": M{"isForMatureAudience": *opts.ForMatureAudience}})
	}
	if opts.IsMinted != nil {
		exists := M{"exists": M{"field": "minted"}}
		if *opts.IsMinted {
			add(exists)
		} else {
			mustNot = append(mustNot, exists)
		}
	}
	if len(opts.IDs) > 0 {
		add(M{"terms": M{"dappIdKeyword": opts.IDs}})
	}
	if len(opts.ExcludeIDs) > 0 {
		mustNot = append(mustNot, M{"terms": M{"dappIdKeyword": opts.ExcludeIDs}})
	}
	if opts.DeveloperID != "" {
		add(M{"term": M{"developer.githubID": opts.DeveloperID}})
	}
	if opts.DAppID != "" {
		add(M{"term": M{"dappIdKeyword": opts.DAppID}})
	}
	if opts.OwnerAddress != "" {
		add(M{"match": M{"ownerAddress": opts.OwnerAddress}})
	}
	if opts.StoreKey != "" {
		add(M{"term": M{"keyKeyword": opts.StoreKey}})
	}

	// Entries without an allow-list are allowed everywhere they are not blocked.
	if len(opts.AllowedInCountries) > 0 {
		add(M{"bool": M{
			"should": []any{
				M{"terms": M{"geoRestrictions.allowedCountries": opts.AllowedInCountries}},
				M{"bool": M{"must_not": []any{M{"exists": M{"field": "geoRestrictions.allowedCountries"}}}}},
			},
			"minimum_should_match": 1,
		}})
		mustNot = append(mustNot, M{"terms": M{"geoRestrictions.blockedCountries": opts.AllowedInCountries}})
	}
	if len(opts.BlockedInCountries) > 0 {
		add(M{"terms": M{"geoRestrictions.blockedCountries": opts.BlockedInCountries}})
	}

	if clause := c.categoryClause(opts.Categories, opts.SubCategories); clause != nil {
		add(clause)
	}

	if text != "" {
		b := c.cfg.Boosts
		add(M{"bool": M{
			"should": []any{
				textMatch("name", text, b.Name),
				textMatch("description", text, b.Description),
				textMatch("dappId", text, b.DAppID),
				textMatch("category", text, b.Category),
			},
			"minimum_should_match": 1,
		}})
		filter = append(filter, M{"term": M{"isListed": opts.Listed()}})
	} else if !opts.SearchByID && opts.OwnerAddress == "" {
		add(M{"term": M{"isListed": opts.Listed()}})
	}

	q := M{}
	if len(must) > 0 {
		q["must"] = must
	}
	if len(mustNot) > 0 {
		q["must_not"] = mustNot
	}
	if len(filter) > 0 {
		q["filter"] = filter
	}
	if len(q) == 0 {
		return M{"match_all": M{}}
	}
	return M{"bool": q}
}

// categoryClause ORs one sub clause per requested category.
func (c *Compiler) categoryClause(categories, subs []string) M {
	if len(categories) == 0 {
		if len(subs) == 0 {
			return nil
		}
		return M{"terms": M{"subCategory": subs}}
	}
	should := make([]any, 0, len(categories))
	for _, cat := range categories {
		own := c.subsOf(cat, subs)
		if len(own) == 0 {
			should = append(should, M{"term": M{"category": cat}})
			continue
		}
		should = append(should, M{"bool": M{"must": []any{
			M{"term": M{"category": cat}},
			M{"terms": M{"subCategory": own}},
		}}})
	}
	return M{"bool": M{"should": should, "minimum_should_match": 1}}
}

func (c *Compiler) subsOf(category string, requested []string) []string {
	if len(requested) == 0 {
		return nil
	}
	known, ok := c.cfg.Taxonomy[category]
	if !ok {
		return requested
	}
	var out []string
	for _, s := range requested {
		for _, k := range known {
			if strings.EqualFold(s, k) {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

func textMatch(field, text string, boost float64) M {
	if boost <= 0 {
		boost = 1
	}
	return M{"match": M{field: M{"query": text, "operator": "and", "boost": boost}}}
}

func sortClause(s Sort) []any {
	out := []any{M{"_score": M{"order": "desc"}}}
	for _, k := range []struct {
		field string
		order Order
	}{
		{"metrics.rating", s.Rating},
		{"metrics.visits", s.Visits},
		{"metrics.installs", s.Installs},
		{"listDate", s.ListDate},
		{"nameKeyword", s.Name},
	} {
		if o := normOrder(k.order); o != "" {
			out = append(out, M{k.field: M{"order": o}})
		}
	}
	return out
}

func normOrder(o Order) Order {
	switch Order(strings.ToLower(string(o))) {
	case Asc:
		return Asc
	case Desc:
		return Desc
	}
	return ""
}

// clamp returns def for non-positive v and hi for v above hi.
func clamp(v, def, hi int) int {
	if v <= 0 {
		return def
	}
	if v > hi {
		return hi
	}
	return v
}
