package search

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Order is a sort direction for a secondary sort key.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Sort lists the optional secondary sort keys, applied after relevance in
// this fixed order.
type Sort struct {
	Rating   Order `mapstructure:"rating" json:"rating,omitempty"`
	Visits   Order `mapstructure:"visits" json:"visits,omitempty"`
	Installs Order `mapstructure:"installs" json:"installs,omitempty"`
	ListDate Order `mapstructure:"listDate" json:"listDate,omitempty"`
	Name     Order `mapstructure:"name" json:"name,omitempty"`
}

// Options are the typed search predicates. A nil pointer, empty string or
// empty slice means the predicate is absent.
type Options struct {
	ChainID             *int     `mapstructure:"chainId"`
	MinAge              *int     `mapstructure:"minAge"`
	Language            []string `mapstructure:"language"`
	AvailableOnPlatform []string `mapstructure:"availableOnPlatform"`
	ListedOnOrAfter     string   `mapstructure:"listedOnOrAfter"`
	ListedOnOrBefore    string   `mapstructure:"listedOnOrBefore"`
	ForMatureAudience   *bool    `mapstructure:"isForMatureAudience"`
	IsMinted            *bool    `mapstructure:"isMinted"`
	AllowedInCountries  []string `mapstructure:"allowedInCountries"`
	BlockedInCountries  []string `mapstructure:"blockedInCountries"`
	Categories          []string `mapstructure:"categories"`
	SubCategories       []string `mapstructure:"subCategories"`
	// IsListed is the requested visibility; nil means listed only.
	IsListed     *bool    `mapstructure:"isListed"`
	DeveloperID  string   `mapstructure:"githubID"`
	DAppID       string   `mapstructure:"dappId"`
	IDs          []string `mapstructure:"ids"`
	ExcludeIDs   []string `mapstructure:"excludeIds"`
	OwnerAddress string   `mapstructure:"ownerAddress"`
	StoreKey     string   `mapstructure:"storeKey"`
	// SearchByID marks an explicit lookup that must also see unlisted entries.
	SearchByID bool `mapstructure:"searchById"`

	Page    int  `mapstructure:"page"`
	Limit   int  `mapstructure:"limit"`
	OrderBy Sort `mapstructure:"orderBy"`

	// ScrollID continues an open cursor; filters are ignored when set.
	ScrollID string `mapstructure:"scrollId"`
}

// Listed is the requested visibility flag.
func (o *Options) Listed() bool {
	return o.IsListed == nil || *o.IsListed
}

// DecodeOptions turns a loosely typed payload (query string values, JSON body)
// into Options. Strings are coerced to numbers and booleans, comma separated
// strings to lists, and a JSON encoded orderBy is accepted.
func DecodeOptions(raw map[string]any) (Options, error) {
	var out Options
	in := make(map[string]any, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case []string:
			if len(t) == 1 {
				in[k] = t[0]
				continue
			}
			in[k] = t
		default:
			in[k] = v
		}
	}
	if s, ok := in["orderBy"].(string); ok {
		var sort map[string]any
		if err := json.Unmarshal([]byte(s), &sort); err != nil {
			return out, fmt.Errorf("orderBy: %w", err)
		}
		in["orderBy"] = sort
	}
	if dev, ok := in["developer"].(map[string]any); ok {
		if id, ok := dev["githubID"]; ok {
			in["githubID"] = id
		}
		delete(in, "developer")
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			trimStrings,
			mapstructure.StringToSliceHookFunc(","),
		),
		Result: &out,
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(in); err != nil {
		return out, err
	}
	return out, nil
}

func trimStrings(_ reflect.Type, _ reflect.Type, data any) (any, error) {
	if s, ok := data.(string); ok {
		return strings.TrimSpace(s), nil
	}
	return data, nil
}
