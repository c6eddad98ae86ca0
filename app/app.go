// Package app wires configuration into the running services shared by the
// HTTP server, the CLI and the cron scheduler.
package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"dappstore.GO/api"
	"dappstore.GO/config"
	"dappstore.GO/core/auth"
	"dappstore.GO/core/cache"
	"dappstore.GO/core/logger"
	"dappstore.GO/core/metrics"
	"dappstore.GO/model/entity"
	"dappstore.GO/model/repository/submission"
	"dappstore.GO/service/commit"
	"dappstore.GO/service/index"
	"dappstore.GO/service/registry"
	"dappstore.GO/service/schema"
	"dappstore.GO/service/search"
)

// IdentityTTL is how long a resolved GitHub identity is reused.
const IdentityTTL = 10 * time.Minute

// App holds the long lived services of one process.
type App struct {
	Config    *config.Config
	Log       *slog.Logger
	Metrics   *metrics.Metrics
	Prom      *prometheus.Registry
	Shared    cache.Backend
	Validator *schema.Validator
	Catalog   *registry.Catalog
	Searcher  *index.Searcher
	Indexer   *index.Indexer
	Git       *commit.GitHub
	Ledger    *submission.SubmissionRepository
	Workflow  *commit.Workflow
	Identity  auth.Identifier

	backend func(config.Elastic) (index.Backend, error)
	closers []func() error
}

// Option adjusts an App before its services are built.
type Option func(*App)

// WithBackendFactory replaces the Elasticsearch backend.
func WithBackendFactory(f func(config.Elastic) (index.Backend, error)) Option {
	return func(a *App) { a.backend = f }
}

// New builds every service from cfg. Redis and the remote documents are
// optional: without them the in-process cache and the bundled snapshots serve.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{
		Config: cfg,
		Log:    logger.New(cfg.Debug).With("app", cfg.AppName),
		Prom:   prometheus.NewRegistry(),
	}
	a.backend = defaultBackend
	for _, o := range opts {
		o(a)
	}
	a.Prom.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.Metrics = metrics.New(a.Prom)

	if err := a.initShared(ctx); err != nil {
		return nil, err
	}
	if err := a.initCatalog(); err != nil {
		return nil, err
	}
	if err := a.initIndex(); err != nil {
		return nil, err
	}
	if err := a.initLedger(); err != nil {
		return nil, err
	}
	if err := a.initWorkflow(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) initShared(ctx context.Context) error {
	client, err := config.NewRedis(ctx, a.Config.Redis)
	switch {
	case err != nil:
		a.Log.Warn("redis configured but not reachable, using in-process cache", "error", err)
	case client == nil:
		a.Log.Info("redis not configured, using in-process cache")
	default:
		a.Log.Info("redis connection successful", "addr", a.Config.Redis.Addr)
		a.Shared = cache.NewRedis(client, a.Config.Redis.Prefix)
		a.closers = append(a.closers, client.Close)
		return nil
	}
	a.Shared = cache.NewMemory()
	return nil
}

func (a *App) initCatalog() error {
	v, err := schema.New()
	if err != nil {
		return err
	}
	a.Validator = v
	rc := a.Config.Registry
	a.Catalog, err = registry.NewCatalog(registry.Settings{
		Strategy:     registry.Strategy(rc.Strategy),
		TTL:          rc.CacheTTL,
		FetchTimeout: rc.FetchTimeout,
		Owner:        a.Config.GitHub.Owner,
		Repo:         a.Config.GitHub.Repo,
		RegistryURL:  rc.RegistryURL,
		StoresURL:    rc.StoresURL,
		HTTPClient:   &http.Client{},
		Shared:       a.Shared,
		SharedNS:     a.Config.Elastic.IndexPrefix,
		Logger:       a.Log,
		Metrics:      a.Metrics,
	}, v)
	return err
}

func (a *App) initIndex() error {
	backend, err := a.backend(a.Config.Elastic)
	if err != nil {
		return err
	}
	taxonomy := make(map[string][]string)
	cats, err := registry.Categories()
	if err != nil {
		return err
	}
	for _, c := range cats {
		taxonomy[c.Name] = c.SubCategories
	}
	names := index.Names{Env: a.Config.Elastic.IndexPrefix}
	compiler := search.NewCompiler(search.Config{Boosts: a.Config.Boosts, Taxonomy: taxonomy})
	a.Searcher = index.NewSearcher(backend, compiler, names,
		index.WithStores(a.Catalog.Stores),
		index.WithSearchLogger(a.Log),
		index.WithSearchMetrics(a.Metrics))
	a.Indexer = index.NewIndexer(backend, names, a.Catalog.Registry, a.Catalog.Stores,
		index.WithIndexLogger(a.Log),
		index.WithIndexMetrics(a.Metrics))
	return nil
}

func (a *App) initLedger() error {
	db, err := config.NewDB(a.Config.DB)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Ping(); err != nil {
		return err
	}
	a.closers = append(a.closers, sqlDB.Close)
	a.Ledger = submission.NewSubmissionRepository(db)
	return a.Ledger.AutoMigrate()
}

func (a *App) initWorkflow() error {
	gh := a.Config.GitHub
	a.Git = &commit.GitHub{
		Owner:      gh.Owner,
		Repo:       gh.Repo,
		Host:       gh.Host,
		BaseURL:    gh.APIURL,
		HTTPClient: &http.Client{Timeout: gh.APITimeout},
		ForkWait:   gh.ForkWait,
	}
	var err error
	a.Workflow, err = commit.New(commit.Config{
		Registry:    a.Catalog.Registry,
		Stores:      a.Catalog.Stores,
		Validator:   a.Validator,
		Git:         a.Git,
		Ledger:      a.Ledger,
		Host:        gh.Host,
		Owner:       gh.Owner,
		Repo:        gh.Repo,
		Maintainers: a.Config.Auth.Maintainers,
		Timeout:     gh.APITimeout,
		Logger:      a.Log,
		Metrics:     a.Metrics,
	})
	if err != nil {
		return err
	}
	a.Identity = &auth.CachedIdentifier{Next: a.Git, Cache: a.Shared, TTL: IdentityTTL, Log: a.Log}
	return nil
}

// Services exposes the App to the API modules.
func (a *App) Services() *api.Services {
	return &api.Services{
		Config:   a.Config,
		Catalog:  a.Catalog,
		Finder:   a.Searcher,
		Indexes:  a.Indexer,
		Workflow: a.Workflow,
		Ledger:   a.Ledger,
		Identity: a.Identity,
		Gatherer: a.Prom,
		Log:      a.Log,
	}
}

// ReindexOnChange rebuilds the matching index whenever a cached document
// changes. Submissions never touch the index directly; the merged change
// reaches it through the next refresh.
func (a *App) ReindexOnChange() {
	a.Catalog.Registry.OnChange(func(ctx context.Context, _ *entity.Registry) {
		a.reindex(ctx, index.KindDApps)
	})
	a.Catalog.Stores.OnChange(func(ctx context.Context, _ *entity.Stores) {
		a.reindex(ctx, index.KindStores)
	})
}

// Reindex rebuilds both indexes, stopping at the first failure.
func (a *App) Reindex(ctx context.Context) error {
	for _, kind := range []index.Kind{index.KindDApps, index.KindStores} {
		if _, err := a.Indexer.Reindex(ctx, kind); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) reindex(ctx context.Context, kind index.Kind) {
	name, err := a.Indexer.Reindex(ctx, kind)
	if err != nil {
		a.Log.Error("reindex after document change failed", "kind", kind, "error", err)
		return
	}
	a.Log.Info("reindexed after document change", "kind", kind, "index", name)
}

// Close releases the database and Redis connections.
func (a *App) Close() error {
	var errList []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errList = append(errList, a.closers[i]())
	}
	return errors.Join(errList...)
}

func defaultBackend(c config.Elastic) (index.Backend, error) {
	return index.NewElastic(index.ElasticConfig{
		Addresses: c.Addresses,
		Username:  c.Username,
		Password:  c.Password,
	})
}
