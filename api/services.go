package api

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"dappstore.GO/config"
	"dappstore.GO/core/auth"
	"dappstore.GO/model/entity"
	"dappstore.GO/service/commit"
	"dappstore.GO/service/index"
	"dappstore.GO/service/registry"
	"dappstore.GO/service/search"
)

// Finder is the read side of the search index.
type Finder interface {
	Search(ctx context.Context, text string, opts search.Options) (*index.Page, error)
	Autocomplete(ctx context.Context, text string, opts search.Options) (*index.Page, error)
	ByOwner(ctx context.Context, address string, opts search.Options) (*index.Page, error)
	ByID(ctx context.Context, id string) (*entity.DApp, error)
	Count(ctx context.Context, opts search.Options) (int64, error)
	Scroll(ctx context.Context, text string, opts search.Options) (*index.Page, error)
	CloseScroll(ctx context.Context, scrollID string) error
	StoreView(ctx context.Context, storeKey, text string, opts search.Options) (*index.Page, error)
	Store(ctx context.Context, key string) (*entity.Store, error)
	Stores(ctx context.Context, text string) ([]entity.Store, error)
}

// Lifecycle manages search indexes.
type Lifecycle interface {
	Create(ctx context.Context, kind index.Kind) (string, error)
	Load(ctx context.Context, kind index.Kind, name string) (int, error)
	GoLive(ctx context.Context, kind index.Kind, name string) error
	Reindex(ctx context.Context, kind index.Kind) (string, error)
}

// Ledger lists recorded submissions.
type Ledger interface {
	FindBySubmitter(ctx context.Context, submitter string, limit int) ([]entity.Submission, error)
	FindByResource(ctx context.Context, resource string) ([]entity.Submission, error)
}

// Services are the dependencies handed to API modules. Nil members disable
// the routes that need them.
type Services struct {
	Config   *config.Config
	Catalog  *registry.Catalog
	Finder   Finder
	Indexes  Lifecycle
	Workflow *commit.Workflow
	Ledger   Ledger
	Identity auth.Identifier
	Gatherer prometheus.Gatherer
	Log      *slog.Logger
}
