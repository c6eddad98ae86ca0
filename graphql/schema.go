package graphql

import (
	"strings"
	"sync"

	_ "embed"
)

//go:embed schema.graphqls
var schemaBase string

var (
	schemaExtensions []string
	schemaMu         sync.Mutex
)

// RegisterSchemaExtension appends schema to the base schema, typically an
// `extend type Query` block. Call from init() in custom packages.
func RegisterSchemaExtension(schema string) {
	schemaMu.Lock()
	defer schemaMu.Unlock()
	schemaExtensions = append(schemaExtensions, strings.TrimSpace(schema))
}

// Schema returns base schema + registered extensions.
func Schema() string {
	schemaMu.Lock()
	ext := schemaExtensions
	schemaMu.Unlock()
	if len(ext) == 0 {
		return schemaBase
	}
	return schemaBase + "\n\n" + strings.Join(ext, "\n\n")
}

// --- Schema input types (graphql-go matches them by field name) ---

type DAppFilter struct {
	ChainID             *int32
	MinAge              *int32
	Language            *[]string
	AvailableOnPlatform *[]string
	ListedOnOrAfter     *string
	ListedOnOrBefore    *string
	IsForMatureAudience *bool
	IsMinted            *bool
	AllowedInCountries  *[]string
	BlockedInCountries  *[]string
	Categories          *[]string
	SubCategories       *[]string
	IsListed            *bool
	GithubID            *string
	IDs                 *[]string
}

type DAppSort struct {
	Rating   *string
	Visits   *string
	Installs *string
	ListDate *string
	Name     *string
}
