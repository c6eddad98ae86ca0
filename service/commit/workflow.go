// Package commit turns catalog mutations into reviewable changes: the
// submitter's fork receives a compare-and-swap write of the full candidate
// document and the caller gets a compare URL to open a pull request from.
package commit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dappstore.GO/core/errs"
	"dappstore.GO/core/logger"
	"dappstore.GO/core/metrics"
	"dappstore.GO/model/entity"
	"dappstore.GO/service/schema"
)

// Canonical file paths in the catalog repository.
const (
	RegistryFile = "src/registry.json"
	StoresFile   = "src/dappStore.json"
)

// DefaultHost is the public GitHub host.
const DefaultHost = "github.com"

// DefaultTimeout bounds the remote calls of one submission.
const DefaultTimeout = 30 * time.Second

// Submitter is the authenticated identity proposing a change.
type Submitter struct {
	ID          string `json:"githubId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	AccessToken string `json:"-"`
	// Org optionally receives the fork instead of the user account.
	Org string `json:"org,omitempty"`
}

// ForkOwner is the account holding the submitter's fork.
func (s Submitter) ForkOwner() string {
	if s.Org != "" {
		return s.Org
	}
	return s.ID
}

// Result describes a persisted change awaiting review.
type Result struct {
	CompareURL    string `json:"url"`
	CommitMessage string `json:"commitMessage"`
	Document      string `json:"document"`
	Resource      string `json:"resource"`
}

// RegistrySource yields a private copy of the current registry.
type RegistrySource interface {
	Fetch(ctx context.Context) (*entity.Registry, time.Time, error)
}

// StoresSource yields a private copy of the current stores document.
type StoresSource interface {
	Fetch(ctx context.Context) (*entity.Stores, time.Time, error)
}

// Ledger records successful submissions.
type Ledger interface {
	Record(ctx context.Context, s *entity.Submission, summary any) error
}

// Config wires a Workflow.
type Config struct {
	Registry  RegistrySource
	Stores    StoresSource
	Validator *schema.Validator
	Git       GitHost
	Ledger    Ledger

	Host  string
	Owner string
	Repo  string
	// Maintainers may edit the registry featured sections. Empty allows any
	// authenticated submitter.
	Maintainers []string
	Timeout     time.Duration

	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Workflow runs Authorize, Validate, Persist and returns the review link.
// A failure at any step discards the candidate document.
type Workflow struct {
	cfg Config
	log *slog.Logger
	m   *metrics.Metrics
}

func New(cfg Config) (*Workflow, error) {
	if cfg.Registry == nil || cfg.Validator == nil || cfg.Git == nil {
		return nil, fmt.Errorf("commit workflow: registry, validator and git host are required")
	}
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, fmt.Errorf("commit workflow: repository owner and name are required")
	}
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Workflow{
		cfg: cfg,
		log: logger.OrDiscard(cfg.Logger).With("component", "commit"),
		m:   metrics.OrNop(cfg.Metrics),
	}, nil
}

// CompareURL is where a pull request from the fork owned by forkOwner is opened.
func (w *Workflow) CompareURL(forkOwner string) string {
	return fmt.Sprintf("https://%s/%s/%s/compare/main...%s:%s:main?expand=1",
		w.cfg.Host, w.cfg.Owner, w.cfg.Repo, forkOwner, w.cfg.Repo)
}

// change is one validated candidate ready to persist.
type change struct {
	op       string
	document string
	path     string
	resource string
	message  string
	doc      any
	summary  any
}

func (w *Workflow) authenticated(op string, sub Submitter) error {
	if strings.TrimSpace(sub.ID) == "" || sub.AccessToken == "" {
		return errs.E(errs.KindAuthorization, op, "an authenticated github identity is required")
	}
	return nil
}

func (w *Workflow) maintainer(op string, sub Submitter) error {
	if err := w.authenticated(op, sub); err != nil {
		return err
	}
	if len(w.cfg.Maintainers) == 0 {
		return nil
	}
	for _, m := range w.cfg.Maintainers {
		if strings.EqualFold(m, sub.ID) {
			return nil
		}
	}
	return errs.E(errs.KindAuthorization, op, "%s is not a registry maintainer", sub.ID)
}

func (w *Workflow) registry(ctx context.Context) (*entity.Registry, error) {
	reg, _, err := w.cfg.Registry.Fetch(ctx)
	return reg, err
}

func (w *Workflow) stores(ctx context.Context) (*entity.Stores, error) {
	if w.cfg.Stores == nil {
		return nil, errs.E(errs.KindInternal, "commit.stores", "stores document is not configured")
	}
	st, _, err := w.cfg.Stores.Fetch(ctx)
	return st, err
}

// persist writes c to the submitter's fork and records it. The candidate is
// never put into the read cache: it takes effect only after review and merge.
func (w *Workflow) persist(ctx context.Context, sub Submitter, c change) (res *Result, err error) {
	defer func() {
		result := "ok"
		if err != nil {
			result = string(errs.KindOf(err))
		}
		w.m.Submissions.WithLabelValues(c.op, result).Inc()
	}()

	content, err := json.MarshalIndent(c.doc, "", "  ")
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, c.op, err, "encoding %s", c.document)
	}

	ctx, cancel := context.WithTimeout(ctx, w.cfg.Timeout)
	defer cancel()

	log := w.log.With("op", c.op, "submitter", sub.ID, "resource", c.resource)
	log.Debug("forking", "owner", w.cfg.Owner, "repo", w.cfg.Repo)
	if err := w.cfg.Git.Fork(ctx, sub); err != nil {
		return nil, err
	}
	_, sha, err := w.cfg.Git.ReadFile(ctx, sub, c.path)
	if err != nil {
		return nil, err
	}
	log.Debug("writing", "path", c.path, "sha", sha)
	if err := w.cfg.Git.WriteFile(ctx, sub, c.path, append(content, '\n'), sha, c.message); err != nil {
		return nil, err
	}

	res = &Result{
		CompareURL:    w.CompareURL(sub.ForkOwner()),
		CommitMessage: c.message,
		Document:      c.document,
		Resource:      c.resource,
	}
	log.Info("change proposed", "url", res.CompareURL)

	if w.cfg.Ledger != nil {
		entry := &entity.Submission{
			Submitter:     sub.ID,
			Document:      c.document,
			Operation:     c.op,
			Resource:      c.resource,
			CommitMessage: c.message,
			CompareURL:    res.CompareURL,
		}
		// the change is already in the fork, a ledger failure must not hide it
		if err := w.cfg.Ledger.Record(context.WithoutCancel(ctx), entry, c.summary); err != nil {
			log.Error("recording submission", "error", err)
		}
	}
	return res, nil
}

func (w *Workflow) persistRegistry(ctx context.Context, sub Submitter, op, resource, message string, reg *entity.Registry, summary any) (*Result, error) {
	if err := w.cfg.Validator.MustValidateRegistry(op, reg); err != nil {
		return nil, err
	}
	return w.persist(ctx, sub, change{
		op: op, document: "registry", path: RegistryFile,
		resource: resource, message: message, doc: reg, summary: summary,
	})
}

func (w *Workflow) persistStores(ctx context.Context, sub Submitter, op, resource, message string, st *entity.Stores, summary any) (*Result, error) {
	if err := w.cfg.Validator.MustValidateStores(op, st); err != nil {
		return nil, err
	}
	return w.persist(ctx, sub, change{
		op: op, document: "stores", path: StoresFile,
		resource: resource, message: message, doc: st, summary: summary,
	})
}

// Toggle returns current with every id of requested flipped: ids present are
// removed and absent ones appended, in request order. added lists the new ones.
func Toggle(current, requested []string) (out, added []string) {
	in := make(map[string]bool, len(current))
	for _, id := range current {
		in[id] = true
	}
	flip := make(map[string]bool, len(requested))
	for _, id := range requested {
		if flip[id] {
			continue
		}
		flip[id] = true
		if !in[id] {
			added = append(added, id)
		}
	}
	out = make([]string, 0, len(current)+len(added))
	for _, id := range current {
		if !flip[id] {
			out = append(out, id)
		}
	}
	return append(out, added...), added
}

// requireListed fails with a ReferenceError naming every unknown or unlisted id.
func requireListed(op string, reg *entity.Registry, ids []string) error {
	var bad []string
	for _, id := range ids {
		if !reg.IsListed(id) {
			bad = append(bad, id)
		}
	}
	if len(bad) == 0 {
		return nil
	}
	return errs.E(errs.KindReference, op, "dApp ID %s not found or not listed in registry", strings.Join(bad, ", ")).
		WithDetails(bad...)
}
