package registry

import (
	"context"
	_ "embed"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"dappstore.GO/core/cache"
	"dappstore.GO/core/metrics"
	"dappstore.GO/model/entity"
	"dappstore.GO/service/schema"
)

// Repository paths of the canonical documents.
const (
	RegistryFile = "src/registry.json"
	StoresFile   = "src/dappStore.json"
)

var (
	//go:embed snapshot/registry.json
	registrySnapshot []byte
	//go:embed snapshot/dappStore.json
	storesSnapshot []byte
	//go:embed snapshot/dappCategory.json
	categoriesJSON []byte
)

// Settings wires the registry and stores caches.
type Settings struct {
	Strategy     Strategy
	TTL          time.Duration
	FetchTimeout time.Duration
	Owner        string
	Repo         string
	// RegistryURL and StoresURL override the raw GitHub URLs.
	RegistryURL string
	StoresURL   string
	HTTPClient  *http.Client

	Shared   cache.Backend
	SharedNS string
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

// Catalog holds the two document caches of the service.
type Catalog struct {
	Registry *DocumentCache[entity.Registry]
	Stores   *DocumentCache[entity.Stores]
}

// NewCatalog builds cold registry and stores caches validated by v.
func NewCatalog(s Settings, v *schema.Validator) (*Catalog, error) {
	regURL, storesURL := s.RegistryURL, s.StoresURL
	if regURL == "" {
		regURL = RawURL(s.Owner, s.Repo, RegistryFile)
	}
	if storesURL == "" {
		storesURL = RawURL(s.Owner, s.Repo, StoresFile)
	}

	reg, err := New(Options[entity.Registry]{
		Name:     "registry",
		Strategy: s.Strategy,
		Remote:   &HTTPSource{URL: regURL, Client: s.HTTPClient, Timeout: s.FetchTimeout},
		Snapshot: Static(registrySnapshot),
		Validate: func(d *entity.Registry) error { return v.MustValidateRegistry("registry.validate", d) },
		TTL:      s.TTL,
		Shared:   s.Shared,
		SharedNS: s.SharedNS,
		Logger:   s.Logger,
		Metrics:  s.Metrics,
	})
	if err != nil {
		return nil, err
	}
	stores, err := New(Options[entity.Stores]{
		Name:     "stores",
		Strategy: s.Strategy,
		Remote:   &HTTPSource{URL: storesURL, Client: s.HTTPClient, Timeout: s.FetchTimeout},
		Snapshot: Static(storesSnapshot),
		Validate: func(d *entity.Stores) error { return v.MustValidateStores("stores.validate", d) },
		TTL:      s.TTL,
		Shared:   s.Shared,
		SharedNS: s.SharedNS,
		Logger:   s.Logger,
		Metrics:  s.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Catalog{Registry: reg, Stores: stores}, nil
}

// Warm loads both documents concurrently.
func (c *Catalog) Warm(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, _, err := c.Registry.Fetch(ctx)
		return err
	})
	g.Go(func() error {
		_, _, err := c.Stores.Fetch(ctx)
		return err
	})
	return g.Wait()
}

// Invalidate drops both documents.
func (c *Catalog) Invalidate(ctx context.Context) error {
	if err := c.Registry.Invalidate(ctx); err != nil {
		return err
	}
	return c.Stores.Invalidate(ctx)
}

// Category is a top level category and its sub categories.
type Category struct {
	Name          string   `json:"category"`
	SubCategories []string `json:"subCategory"`
}

// Categories returns the bundled category list sorted by name.
func Categories() ([]Category, error) {
	var m map[string][]string
	if err := json.Unmarshal(categoriesJSON, &m); err != nil {
		return nil, err
	}
	out := make([]Category, 0, len(m))
	for k, subs := range m {
		if subs == nil {
			subs = []string{}
		}
		out = append(out, Category{Name: k, SubCategories: subs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// RegistrySnapshot is a copy of the bundled registry document.
func RegistrySnapshot() []byte { return append([]byte(nil), registrySnapshot...) }

// StoresSnapshot is a copy of the bundled stores document.
func StoresSnapshot() []byte { return append([]byte(nil), storesSnapshot...) }
