package index

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"dappstore.GO/core/errs"
	"dappstore.GO/core/logger"
	"dappstore.GO/core/metrics"
	"dappstore.GO/model/entity"
	"dappstore.GO/service/enrich"
	"dappstore.GO/service/search"
)

// RegistrySource yields the current registry document.
type RegistrySource interface {
	Fetch(ctx context.Context) (*entity.Registry, time.Time, error)
}

// StoresSource yields the current stores document.
type StoresSource interface {
	Fetch(ctx context.Context) (*entity.Stores, time.Time, error)
}

// Page is one page of dApp results. A request past the maximum window comes
// back with Message set and no items.
type Page struct {
	Items     []entity.DApp `json:"items"`
	Total     int64         `json:"total"`
	Page      int           `json:"page"`
	Limit     int           `json:"limit"`
	PageCount int           `json:"pageCount"`
	Message   string        `json:"message,omitempty"`
	ScrollID  string        `json:"scrollId,omitempty"`
}

// Searcher runs compiled queries against the aliased indices.
type Searcher struct {
	backend  Backend
	compiler *search.Compiler
	names    Names
	stores   StoresSource
	log      *slog.Logger
	m        *metrics.Metrics
}

// SearcherOption configures a Searcher.
type SearcherOption func(*Searcher)

func WithSearchLogger(l *slog.Logger) SearcherOption {
	return func(s *Searcher) { s.log = l }
}

func WithSearchMetrics(m *metrics.Metrics) SearcherOption {
	return func(s *Searcher) { s.m = m }
}

// WithStores enables store scoped views.
func WithStores(src StoresSource) SearcherOption {
	return func(s *Searcher) { s.stores = src }
}

func NewSearcher(backend Backend, compiler *search.Compiler, names Names, opts ...SearcherOption) *Searcher {
	s := &Searcher{backend: backend, compiler: compiler, names: names}
	for _, o := range opts {
		o(s)
	}
	s.log = logger.OrDiscard(s.log)
	s.m = metrics.OrNop(s.m)
	if s.compiler == nil {
		s.compiler = search.NewCompiler(search.Config{})
	}
	return s
}

// Search runs a full text and filter search.
func (s *Searcher) Search(ctx context.Context, text string, opts search.Options) (*Page, error) {
	return s.page(ctx, text, opts, search.ModeSearch)
}

// Autocomplete returns a short list of suggestions with a reduced projection.
func (s *Searcher) Autocomplete(ctx context.Context, text string, opts search.Options) (*Page, error) {
	return s.page(ctx, text, opts, search.ModeAutocomplete)
}

// ByOwner lists dApps minted to address, listed or not.
func (s *Searcher) ByOwner(ctx context.Context, address string, opts search.Options) (*Page, error) {
	if strings.TrimSpace(address) == "" {
		return nil, errs.E(errs.KindValidation, "search.by_owner", "owner address is required")
	}
	opts.OwnerAddress = address
	return s.page(ctx, "", opts, search.ModeSearch)
}

// ByID returns one dApp regardless of its listing state.
func (s *Searcher) ByID(ctx context.Context, id string) (*entity.DApp, error) {
	page, err := s.page(ctx, "", search.Options{DAppID: id, SearchByID: true, Limit: 1}, search.ModeSearch)
	if err != nil {
		return nil, err
	}
	if len(page.Items) == 0 {
		return nil, errs.E(errs.KindNotFound, "search.by_id", "dApp %s not found", id)
	}
	return &page.Items[0], nil
}

// Count returns how many dApps match opts.
func (s *Searcher) Count(ctx context.Context, opts search.Options) (int64, error) {
	c := s.compiler.Compile("", opts, search.ModeCount)
	s.m.QueriesCompiled.WithLabelValues(c.Mode.String()).Inc()
	defer s.observe("count", time.Now())
	return s.backend.Count(ctx, s.names.Alias(KindDApps), c.Body)
}

// Scroll opens a cursor, or continues the one named in opts.ScrollID.
// An expired cursor is errs.KindNotFound.
func (s *Searcher) Scroll(ctx context.Context, text string, opts search.Options) (*Page, error) {
	c := s.compiler.Compile(text, opts, search.ModeScroll)
	s.m.QueriesCompiled.WithLabelValues(c.Mode.String()).Inc()
	defer s.observe("scroll", time.Now())

	var (
		res *Result
		err error
	)
	if c.ScrollID != "" {
		res, err = s.backend.Scroll(ctx, c.ScrollID, c.Scroll)
	} else {
		res, err = s.backend.OpenScroll(ctx, s.names.Alias(KindDApps), c.Body, c.Scroll)
	}
	if err != nil {
		return nil, err
	}
	items, err := decodeDApps(res.Hits)
	if err != nil {
		return nil, err
	}
	return &Page{Items: items, Total: res.Total, Limit: c.Size, ScrollID: res.ScrollID}, nil
}

// CloseScroll releases a cursor early.
func (s *Searcher) CloseScroll(ctx context.Context, scrollID string) error {
	if scrollID == "" {
		return errs.E(errs.KindValidation, "search.scroll_close", "scroll id is required")
	}
	return s.backend.ClearScroll(ctx, scrollID)
}

// StoreView searches within a store: banned dApps are hidden and the store's
// enrich overlays are applied to every result.
func (s *Searcher) StoreView(ctx context.Context, storeKey, text string, opts search.Options) (*Page, error) {
	store, err := s.store(ctx, storeKey)
	if err != nil {
		return nil, err
	}
	opts.ExcludeIDs = append(append([]string(nil), opts.ExcludeIDs...), store.BannedDAppIDs...)
	page, err := s.page(ctx, text, opts, search.ModeSearch)
	if err != nil {
		return nil, err
	}
	page.Items, err = enrich.View(store, page.Items)
	return page, err
}

// Store returns the canonical store with key.
func (s *Searcher) Store(ctx context.Context, key string) (*entity.Store, error) {
	return s.store(ctx, key)
}

// Stores lists the indexed stores matching text, all when text is empty.
func (s *Searcher) Stores(ctx context.Context, text string) ([]entity.Store, error) {
	query := search.M{"match_all": search.M{}}
	if t := strings.TrimSpace(text); t != "" {
		query = search.M{"multi_match": search.M{"query": t, "fields": []string{"name^2", "key", "description"}}}
	}
	defer s.observe("stores", time.Now())
	res, err := s.backend.Search(ctx, s.names.Alias(KindStores), search.M{
		"query": query,
		"size":  search.MaxScrollPageSize,
		"sort":  []any{search.M{"keyKeyword": search.M{"order": search.Asc}}},
	})
	if err != nil {
		return nil, err
	}
	out := make([]entity.Store, 0, len(res.Hits))
	for _, h := range res.Hits {
		var st entity.Store
		if err := json.Unmarshal(h.Source, &st); err != nil {
			return nil, errs.Wrap(errs.KindUpstream, "search.stores", err, "decoding store %s", h.ID)
		}
		dropHelpers(st.Extras)
		out = append(out, st)
	}
	return out, nil
}

func (s *Searcher) store(ctx context.Context, key string) (*entity.Store, error) {
	if s.stores == nil {
		return nil, errs.E(errs.KindInternal, "search.store", "store views are not configured")
	}
	doc, _, err := s.stores.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	i := doc.FindStore(key)
	if i < 0 {
		return nil, errs.E(errs.KindNotFound, "search.store", "store %s not found", key)
	}
	return &doc.DAppStores[i], nil
}

func (s *Searcher) page(ctx context.Context, text string, opts search.Options, mode search.Mode) (*Page, error) {
	c := s.compiler.Compile(text, opts, mode)
	s.m.QueriesCompiled.WithLabelValues(c.Mode.String()).Inc()
	if c.Exceeded {
		s.m.DepthExceeded.Inc()
		s.log.Debug("search past max window", "page", c.Page, "limit", c.Size)
		return &Page{Items: []entity.DApp{}, Page: c.Page, Limit: c.Size, PageCount: c.PageCount, Message: c.Message}, nil
	}

	defer s.observe(c.Mode.String(), time.Now())
	res, err := s.backend.Search(ctx, s.names.Alias(KindDApps), c.Body)
	if err != nil {
		return nil, err
	}
	items, err := decodeDApps(res.Hits)
	if err != nil {
		return nil, err
	}
	return &Page{
		Items:     items,
		Total:     res.Total,
		Page:      c.Page,
		Limit:     c.Size,
		PageCount: pageCount(res.Total, c.Size),
	}, nil
}

func (s *Searcher) observe(op string, start time.Time) {
	s.m.SearchDurationMs.WithLabelValues(op).Observe(float64(time.Since(start).Microseconds()) / 1000)
}

func pageCount(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

func decodeDApps(hits []Hit) ([]entity.DApp, error) {
	out := make([]entity.DApp, 0, len(hits))
	for _, h := range hits {
		var d entity.DApp
		if err := json.Unmarshal(h.Source, &d); err != nil {
			return nil, errs.Wrap(errs.KindUpstream, "search.decode", err, "decoding dApp %s", h.ID)
		}
		dropHelpers(d.Extras)
		out = append(out, d)
	}
	return out, nil
}

// helperFields exist only in the index.
var helperFields = []string{"id", "nameKeyword", "subCategoryKeyword", "dappIdKeyword", "keyKeyword"}

func dropHelpers(extras entity.Extras) {
	for _, k := range helperFields {
		delete(extras, k)
	}
}
