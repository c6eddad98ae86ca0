package index

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dappstore.GO/core/errs"
	"dappstore.GO/core/logger"
	"dappstore.GO/core/metrics"
	"dappstore.GO/model/entity"
)

// BulkSize is the number of documents sent per bulk request.
const BulkSize = 500

// Indexer builds fresh indices from the canonical documents and switches the
// search alias over to them.
type Indexer struct {
	backend  Backend
	names    Names
	registry RegistrySource
	stores   StoresSource
	log      *slog.Logger
	m        *metrics.Metrics
	now      func() time.Time
}

type IndexerOption func(*Indexer)

func WithIndexLogger(l *slog.Logger) IndexerOption {
	return func(ix *Indexer) { ix.log = l }
}

func WithIndexMetrics(m *metrics.Metrics) IndexerOption {
	return func(ix *Indexer) { ix.m = m }
}

// WithClock overrides the time used for index names.
func WithClock(now func() time.Time) IndexerOption {
	return func(ix *Indexer) { ix.now = now }
}

func NewIndexer(backend Backend, names Names, registry RegistrySource, stores StoresSource, opts ...IndexerOption) *Indexer {
	ix := &Indexer{backend: backend, names: names, registry: registry, stores: stores, now: time.Now}
	for _, o := range opts {
		o(ix)
	}
	ix.log = logger.OrDiscard(ix.log)
	ix.m = metrics.OrNop(ix.m)
	return ix
}

// Create makes an empty, timestamped index of kind and returns its name.
func (ix *Indexer) Create(ctx context.Context, kind Kind) (string, error) {
	name := ix.names.Index(kind, ix.now())
	if err := ix.backend.CreateIndex(ctx, name, IndexBody(kind)); err != nil {
		return "", err
	}
	ix.log.Info("index created", "index", name, "kind", kind)
	return name, nil
}

// Load bulk loads the current canonical document of kind into index.
func (ix *Indexer) Load(ctx context.Context, kind Kind, index string) (int, error) {
	docs, err := ix.documents(ctx, kind)
	if err != nil {
		return 0, err
	}
	total := 0
	for start := 0; start < len(docs); start += BulkSize {
		end := min(start+BulkSize, len(docs))
		n, err := ix.backend.BulkUpsert(ctx, index, docs[start:end])
		total += n
		ix.m.IndexedDocs.WithLabelValues(string(kind)).Add(float64(n))
		if err != nil {
			return total, err
		}
	}
	ix.log.Info("index loaded", "index", index, "documents", total)
	return total, nil
}

// GoLive points the alias of kind at index, then detaches it from every other
// index. Searches never see an alias without a target.
func (ix *Indexer) GoLive(ctx context.Context, kind Kind, index string) error {
	alias := ix.names.Alias(kind)
	if err := ix.backend.PutAlias(ctx, index, alias); err != nil {
		return err
	}
	current, err := ix.backend.AliasedIndices(ctx, alias)
	if err != nil {
		return err
	}
	var failed []error
	for _, other := range current {
		if other == index {
			continue
		}
		if err := ix.backend.DeleteAlias(ctx, other, alias); err != nil {
			failed = append(failed, err)
			continue
		}
		ix.log.Info("alias detached", "alias", alias, "index", other)
	}
	if len(failed) > 0 {
		return errs.Wrap(errs.KindUpstream, "index.go_live", errors.Join(failed...), "detaching %s from previous indices", alias)
	}
	ix.log.Info("alias live", "alias", alias, "index", index)
	return nil
}

// Reindex creates, loads and publishes a new index of kind.
func (ix *Indexer) Reindex(ctx context.Context, kind Kind) (string, error) {
	name, err := ix.Create(ctx, kind)
	if err != nil {
		return "", err
	}
	if _, err := ix.Load(ctx, kind, name); err != nil {
		return name, err
	}
	return name, ix.GoLive(ctx, kind, name)
}

func (ix *Indexer) documents(ctx context.Context, kind Kind) ([]Doc, error) {
	switch kind {
	case KindDApps:
		reg, _, err := ix.registry.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		return DAppDocs(reg), nil
	case KindStores:
		if ix.stores == nil {
			return nil, errs.E(errs.KindInternal, "index.load", "no stores source configured")
		}
		st, _, err := ix.stores.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		return StoreDocs(st), nil
	}
	return nil, errs.E(errs.KindValidation, "index.load", "unknown index kind %q", kind)
}

// DAppDocs converts every registry entry, listed or not, to its indexed form.
func DAppDocs(reg *entity.Registry) []Doc {
	docs := make([]Doc, 0, len(reg.DApps))
	for _, d := range reg.DApps {
		docs = append(docs, Doc{ID: d.DAppID, Body: entity.NewDAppDoc(d)})
	}
	return docs
}

func StoreDocs(st *entity.Stores) []Doc {
	docs := make([]Doc, 0, len(st.DAppStores))
	for _, s := range st.DAppStores {
		docs = append(docs, Doc{ID: s.Key, Body: entity.NewStoreDoc(s)})
	}
	return docs
}

// ParseKind accepts the CLI spelling of an index kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindDApps, "dapp", "registry":
		return KindDApps, nil
	case KindStores, "store":
		return KindStores, nil
	}
	return "", errs.E(errs.KindValidation, "index.kind", "unknown index kind %q", s)
}
