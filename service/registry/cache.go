package registry

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"dappstore.GO/core/cache"
	"dappstore.GO/core/errs"
	"dappstore.GO/core/logger"
	"dappstore.GO/core/metrics"
)

// Strategy selects where a cold cache loads from.
type Strategy string

const (
	StrategyRemote Strategy = "remote"
	StrategyStatic Strategy = "static"
)

// DefaultTTL is how long a warm document is served without checking the remote.
const DefaultTTL = 10 * time.Minute

// Options configures a DocumentCache.
type Options[T any] struct {
	// Name labels logs, metrics and the shared cache key ("registry", "stores").
	Name     string
	Strategy Strategy
	Remote   Source
	Snapshot Source
	// Validate must reject documents that may not be served.
	Validate func(doc *T) error
	TTL      time.Duration

	// Shared is an optional second level (Redis in production) consulted on
	// cold start and written on every change.
	Shared   cache.Backend
	SharedNS string

	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// DocumentCache keeps one validated document and hands out isolated copies.
//
// The document is stored in its canonical JSON form; every read decodes a fresh
// value, so callers can never alias the cached state.
type DocumentCache[T any] struct {
	opts Options[T]
	log  *slog.Logger
	m    *metrics.Metrics

	mu        sync.RWMutex
	raw       []byte
	sum       [sha256.Size]byte
	checkedAt time.Time

	flight   singleflight.Group
	hooksMu  sync.Mutex
	onChange []func(ctx context.Context, doc *T)
}

// New builds a cold cache.
func New[T any](opts Options[T]) (*DocumentCache[T], error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("document cache: name is required")
	}
	if opts.Snapshot == nil {
		return nil, fmt.Errorf("document cache %s: snapshot source is required", opts.Name)
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategyRemote
	}
	if opts.Strategy == StrategyRemote && opts.Remote == nil {
		return nil, fmt.Errorf("document cache %s: remote strategy needs a remote source", opts.Name)
	}
	if opts.Strategy != StrategyRemote && opts.Strategy != StrategyStatic {
		return nil, fmt.Errorf("document cache %s: invalid strategy %q", opts.Name, opts.Strategy)
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Validate == nil {
		opts.Validate = func(*T) error { return nil }
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &DocumentCache[T]{
		opts: opts,
		log:  logger.OrDiscard(opts.Logger).With("document", opts.Name),
		m:    metrics.OrNop(opts.Metrics),
	}, nil
}

// Name is the document label.
func (c *DocumentCache[T]) Name() string { return c.opts.Name }

// OnChange registers fn to run after the cached content actually changed.
// Hooks run in their own goroutine with a copy of the new document.
func (c *DocumentCache[T]) OnChange(fn func(ctx context.Context, doc *T)) {
	c.hooksMu.Lock()
	c.onChange = append(c.onChange, fn)
	c.hooksMu.Unlock()
}

// Fetch returns a private copy of the document and the time it was last
// replaced. A cold cache loads first; a warm one past its TTL checks the remote.
func (c *DocumentCache[T]) Fetch(ctx context.Context) (*T, time.Time, error) {
	c.mu.RLock()
	warm := c.raw != nil
	fresh := warm && (c.opts.Strategy == StrategyStatic || c.opts.Now().Sub(c.checkedAt) < c.opts.TTL)
	c.mu.RUnlock()

	switch {
	case fresh:
		c.m.CacheFetches.WithLabelValues(c.opts.Name, metrics.FetchHit).Inc()
	case !warm:
		if _, err, _ := c.flight.Do("load", func() (any, error) { return nil, c.load(ctx) }); err != nil {
			return nil, time.Time{}, err
		}
	default:
		c.flight.Do("refresh", func() (any, error) {
			c.refresh(ctx)
			return nil, nil
		})
	}
	return c.snapshot()
}

// LastCheckedAt is the time the cached content was last replaced; zero when cold.
func (c *DocumentCache[T]) LastCheckedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.checkedAt
}

// Invalidate drops the cached document in both levels; the next Fetch is cold.
func (c *DocumentCache[T]) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	c.raw = nil
	c.sum = [sha256.Size]byte{}
	c.checkedAt = time.Time{}
	c.mu.Unlock()
	if c.opts.Shared == nil {
		return nil
	}
	return c.opts.Shared.Delete(ctx, c.sharedKey())
}

func (c *DocumentCache[T]) snapshot() (*T, time.Time, error) {
	c.mu.RLock()
	raw, at := c.raw, c.checkedAt
	c.mu.RUnlock()
	if raw == nil {
		return nil, time.Time{}, errs.E(errs.KindInternal, "registry.fetch", "%s not loaded", c.opts.Name)
	}
	doc := new(T)
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, time.Time{}, errs.Wrap(errs.KindInternal, "registry.fetch", err, "decoding cached %s", c.opts.Name)
	}
	return doc, at, nil
}

func (c *DocumentCache[T]) load(ctx context.Context) error {
	c.mu.RLock()
	warm := c.raw != nil
	c.mu.RUnlock()
	if warm {
		return nil
	}

	if raw, ok := c.loadShared(ctx); ok {
		c.install(ctx, raw, false)
		c.m.CacheFetches.WithLabelValues(c.opts.Name, metrics.FetchL2).Inc()
		return nil
	}

	if c.opts.Strategy == StrategyRemote {
		raw, err := c.candidate(ctx, c.opts.Remote)
		if err == nil {
			c.install(ctx, raw, true)
			c.m.CacheFetches.WithLabelValues(c.opts.Name, metrics.FetchCold).Inc()
			return nil
		}
		c.log.Warn("remote document unavailable, falling back to bundled snapshot", "error", err)
		c.m.CacheFetches.WithLabelValues(c.opts.Name, metrics.FetchFallback).Inc()
	}

	raw, err := c.candidate(ctx, c.opts.Snapshot)
	if err != nil {
		return errs.Wrap(errs.KindInternal, "registry.load", err, "bundled %s snapshot is invalid", c.opts.Name)
	}
	// a fallback copy is not shared, other replicas should still try the remote
	c.install(ctx, raw, false)
	if c.opts.Strategy == StrategyStatic {
		c.m.CacheFetches.WithLabelValues(c.opts.Name, metrics.FetchCold).Inc()
	}
	return nil
}

// refresh replaces the document only when the remote content differs. Any
// failure keeps the stale copy.
func (c *DocumentCache[T]) refresh(ctx context.Context) {
	raw, err := c.candidate(ctx, c.opts.Remote)
	if err != nil {
		c.log.Warn("refresh failed, serving cached document", "error", err)
		c.m.CacheFetches.WithLabelValues(c.opts.Name, metrics.FetchFallback).Inc()
		return
	}
	sum := sha256.Sum256(raw)
	c.mu.RLock()
	same := sum == c.sum
	c.mu.RUnlock()
	if same {
		c.log.Debug("document unchanged")
		c.m.CacheFetches.WithLabelValues(c.opts.Name, metrics.FetchNoChange).Inc()
		return
	}
	c.log.Info("document changed, updating")
	c.install(ctx, raw, true)
	c.m.CacheFetches.WithLabelValues(c.opts.Name, metrics.FetchRefresh).Inc()
}

// candidate loads, decodes and validates a document from src and returns its
// canonical encoding.
func (c *DocumentCache[T]) candidate(ctx context.Context, src Source) ([]byte, error) {
	b, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	return c.canonical(b)
}

func (c *DocumentCache[T]) canonical(b []byte) ([]byte, error) {
	doc := new(T)
	if err := json.Unmarshal(b, doc); err != nil {
		return nil, errs.Wrap(errs.KindValidation, "registry.decode", err, "decoding %s", c.opts.Name)
	}
	if err := c.opts.Validate(doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

func (c *DocumentCache[T]) install(ctx context.Context, raw []byte, share bool) {
	sum := sha256.Sum256(raw)
	c.mu.Lock()
	changed := c.raw != nil && !bytes.Equal(c.raw, raw)
	c.raw = raw
	c.sum = sum
	c.checkedAt = c.opts.Now()
	c.mu.Unlock()

	if share {
		c.storeShared(ctx, raw)
	}
	if changed {
		c.notify(ctx, raw)
	}
}

func (c *DocumentCache[T]) notify(ctx context.Context, raw []byte) {
	c.hooksMu.Lock()
	hooks := append([]func(context.Context, *T){}, c.onChange...)
	c.hooksMu.Unlock()
	if len(hooks) == 0 {
		return
	}
	bg := context.WithoutCancel(ctx)
	for _, fn := range hooks {
		doc := new(T)
		if err := json.Unmarshal(raw, doc); err != nil {
			c.log.Error("decoding document for change hook", "error", err)
			return
		}
		go fn(bg, doc)
	}
}

func (c *DocumentCache[T]) sharedKey() string {
	return cache.Key(c.opts.SharedNS, "document", c.opts.Name)
}

func (c *DocumentCache[T]) loadShared(ctx context.Context) ([]byte, bool) {
	if c.opts.Shared == nil {
		return nil, false
	}
	b, ok, err := c.opts.Shared.Get(ctx, c.sharedKey())
	if err != nil {
		c.log.Warn("shared cache read failed", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	raw, err := c.canonical(b)
	if err != nil {
		c.log.Warn("shared cache copy is invalid, ignoring", "error", err)
		return nil, false
	}
	return raw, true
}

func (c *DocumentCache[T]) storeShared(ctx context.Context, raw []byte) {
	if c.opts.Shared == nil {
		return
	}
	if err := c.opts.Shared.Set(ctx, c.sharedKey(), raw, c.opts.TTL); err != nil {
		c.log.Warn("shared cache write failed", "error", err)
	}
}
