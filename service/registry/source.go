package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"dappstore.GO/core/errs"
)

// Source yields a candidate document in its raw JSON form.
type Source interface {
	Load(ctx context.Context) ([]byte, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]byte, error)

func (f SourceFunc) Load(ctx context.Context) ([]byte, error) { return f(ctx) }

// Static serves a bundled snapshot.
type Static []byte

func (s Static) Load(context.Context) ([]byte, error) {
	if len(s) == 0 {
		return nil, errs.E(errs.KindInternal, "registry.static", "empty snapshot")
	}
	return append([]byte(nil), s...), nil
}

// HTTPSource fetches the canonical raw document URL.
type HTTPSource struct {
	URL     string
	Client  *http.Client
	Timeout time.Duration
}

const maxDocumentBytes = 64 << 20

// RawURL is the raw content URL of a file on the main branch of owner/repo.
func RawURL(owner, repo, file string) string {
	return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/main/%s", owner, repo, file)
}

func (s *HTTPSource) Load(ctx context.Context) ([]byte, error) {
	const op = "registry.remote"
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, op, err, "building request")
	}
	req.Header.Set("Accept", "application/json")
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.KindUpstream, op, err, "GET %s", s.URL)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, errs.E(errs.KindUpstream, op, "GET %s: status %d", s.URL, resp.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return nil, errs.Wrap(errs.KindUpstream, op, err, "reading %s", s.URL)
	}
	if !json.Valid(b) {
		return nil, errs.E(errs.KindUpstream, op, "GET %s: body is not JSON", s.URL)
	}
	return b, nil
}
