package index

import "dappstore.GO/service/search"

var settings = search.M{
	"number_of_shards":   1,
	"number_of_replicas": 1,
	"max_result_window":  search.MaxResultWindow,
	"analysis": search.M{
		"analyzer": search.M{
			"dapp_text": search.M{
				"type":      "custom",
				"tokenizer": "standard",
				"filter":    []string{"lowercase", "asciifolding"},
			},
		},
	},
}

var keyword = search.M{"type": "keyword"}

func text() search.M {
	return search.M{"type": "text", "analyzer": "dapp_text"}
}

var dappMappings = search.M{
	"properties": search.M{
		"id":                  keyword,
		"dappId":              text(),
		"dappIdKeyword":       keyword,
		"name":                text(),
		"nameKeyword":         keyword,
		"description":         text(),
		"category":            text(),
		"subCategory":         keyword,
		"subCategoryKeyword":  keyword,
		"language":            keyword,
		"availableOnPlatform": keyword,
		"chains":              search.M{"type": "integer"},
		"minAge":              search.M{"type": "integer"},
		"isListed":            search.M{"type": "boolean"},
		"isForMatureAudience": search.M{"type": "boolean"},
		"isSelfModerated":     search.M{"type": "boolean"},
		"listDate":            search.M{"type": "date", "format": "yyyy-MM-dd||strict_date_optional_time"},
		"tags":                keyword,
		"minted":              keyword,
		"ownerAddress":        text(),
		"geoRestrictions": search.M{"properties": search.M{
			"allowedCountries": keyword,
			"blockedCountries": keyword,
		}},
		"developer": search.M{"properties": search.M{
			"githubID":  keyword,
			"legalName": text(),
		}},
		"metrics": search.M{"properties": search.M{
			"rating":   search.M{"type": "float"},
			"visits":   search.M{"type": "long"},
			"installs": search.M{"type": "long"},
		}},
	},
}

var storeMappings = search.M{
	"properties": search.M{
		"id":                  keyword,
		"key":                 text(),
		"keyKeyword":          keyword,
		"githubId":            keyword,
		"name":                text(),
		"description":         text(),
		"language":            keyword,
		"minAge":              search.M{"type": "integer"},
		"isForMatureAudience": search.M{"type": "boolean"},
		"bannedDAppIds":       keyword,
		// overlays are free form and only returned, never queried
		"dappsEnrich": search.M{"type": "object", "enabled": false},
	},
}

// IndexBody returns the create-index body for k.
func IndexBody(k Kind) search.M {
	m := dappMappings
	if k == KindStores {
		m = storeMappings
	}
	return search.M{"settings": settings, "mappings": m}
}
