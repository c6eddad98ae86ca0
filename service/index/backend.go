package index

import (
	"context"
	"encoding/json"
	"time"

	"dappstore.GO/service/search"
)

// Hit is one matched document.
type Hit struct {
	ID     string
	Score  float64
	Source json.RawMessage
}

// Result is a page of hits.
type Result struct {
	Total    int64
	Hits     []Hit
	ScrollID string
}

// Doc is one document of a bulk upsert, keyed by its canonical id.
type Doc struct {
	ID   string
	Body any
}

// Backend is the text search service the catalog is served from.
// An expired or unknown scroll cursor is reported as errs.KindNotFound.
type Backend interface {
	CreateIndex(ctx context.Context, name string, body search.M) error
	DeleteIndex(ctx context.Context, name string) error
	BulkUpsert(ctx context.Context, index string, docs []Doc) (int, error)
	Get(ctx context.Context, index, id string) (json.RawMessage, bool, error)
	Delete(ctx context.Context, index, id string) error
	Search(ctx context.Context, index string, body search.M) (*Result, error)
	OpenScroll(ctx context.Context, index string, body search.M, keepAlive time.Duration) (*Result, error)
	Scroll(ctx context.Context, scrollID string, keepAlive time.Duration) (*Result, error)
	ClearScroll(ctx context.Context, scrollID string) error
	Count(ctx context.Context, index string, body search.M) (int64, error)
	PutAlias(ctx context.Context, index, alias string) error
	AliasedIndices(ctx context.Context, alias string) ([]string, error)
	DeleteAlias(ctx context.Context, index, alias string) error
}
