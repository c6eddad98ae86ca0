package index

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"dappstore.GO/core/errs"
	"dappstore.GO/service/search"
)

// Elastic is the Backend on an Elasticsearch (or OpenSearch compatible) cluster.
type Elastic struct {
	client *elasticsearch.Client
}

// ElasticConfig holds the cluster connection settings.
type ElasticConfig struct {
	Addresses []string
	Username  string
	Password  string
	Transport http.RoundTripper
}

// NewElastic connects a client; no request is made until first use.
func NewElastic(cfg ElasticConfig) (*Elastic, error) {
	if len(cfg.Addresses) == 0 {
		cfg.Addresses = []string{"http://localhost:9200"}
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "index.connect", err, "creating elasticsearch client")
	}
	return &Elastic{client: client}, nil
}

func (e *Elastic) CreateIndex(ctx context.Context, name string, body search.M) error {
	r, err := encode(body)
	if err != nil {
		return err
	}
	es := e.client
	res, err := es.Indices.Create(name,
		es.Indices.Create.WithContext(ctx),
		es.Indices.Create.WithBody(r),
	)
	return drain("index.create", res, err)
}

func (e *Elastic) DeleteIndex(ctx context.Context, name string) error {
	es := e.client
	res, err := es.Indices.Delete([]string{name}, es.Indices.Delete.WithContext(ctx))
	return drain("index.delete", res, err)
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string          `json:"_id"`
		Status int             `json:"status"`
		Error  json.RawMessage `json:"error"`
	} `json:"items"`
}

// BulkUpsert indexes docs in one request and returns how many were stored.
// Partial failures are reported with the first failing id.
func (e *Elastic) BulkUpsert(ctx context.Context, index string, docs []Doc) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, d := range docs {
		if err := enc.Encode(search.M{"index": search.M{"_index": index, "_id": d.ID}}); err != nil {
			return 0, errs.Wrap(errs.KindInternal, "index.bulk", err, "encoding action for %s", d.ID)
		}
		if err := enc.Encode(d.Body); err != nil {
			return 0, errs.Wrap(errs.KindInternal, "index.bulk", err, "encoding document %s", d.ID)
		}
	}

	es := e.client
	res, err := es.Bulk(&buf,
		es.Bulk.WithContext(ctx),
		es.Bulk.WithIndex(index),
		es.Bulk.WithRefresh("true"),
	)
	if err := check("index.bulk", res, err); err != nil {
		return 0, err
	}
	defer res.Body.Close()

	var out bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, errs.Wrap(errs.KindUpstream, "index.bulk", err, "decoding bulk response")
	}
	stored := 0
	var failed error
	for _, item := range out.Items {
		for _, r := range item {
			if r.Status < 300 {
				stored++
			} else if failed == nil {
				failed = errs.E(errs.KindUpstream, "index.bulk", "document %s rejected (%d): %s", r.ID, r.Status, r.Error)
			}
		}
	}
	return stored, failed
}

func (e *Elastic) Get(ctx context.Context, index, id string) (json.RawMessage, bool, error) {
	es := e.client
	res, err := es.Get(index, id, es.Get.WithContext(ctx))
	if err != nil {
		return nil, false, errs.Wrap(errs.KindUpstream, "index.get", err, "search backend unreachable")
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if res.IsError() {
		return nil, false, statusError("index.get", res)
	}
	var doc struct {
		Found  bool            `json:"found"`
		Source json.RawMessage `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, false, errs.Wrap(errs.KindUpstream, "index.get", err, "decoding document")
	}
	return doc.Source, doc.Found, nil
}

func (e *Elastic) Delete(ctx context.Context, index, id string) error {
	es := e.client
	res, err := es.Delete(index, id, es.Delete.WithContext(ctx))
	if err == nil && res.StatusCode == http.StatusNotFound {
		res.Body.Close()
		return nil
	}
	return drain("index.delete_doc", res, err)
}

func (e *Elastic) Search(ctx context.Context, index string, body search.M) (*Result, error) {
	r, err := encode(body)
	if err != nil {
		return nil, err
	}
	es := e.client
	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(r),
		es.Search.WithTrackTotalHits(true),
	)
	return decodeResult("index.search", res, err)
}

func (e *Elastic) OpenScroll(ctx context.Context, index string, body search.M, keepAlive time.Duration) (*Result, error) {
	r, err := encode(body)
	if err != nil {
		return nil, err
	}
	es := e.client
	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(r),
		es.Search.WithScroll(keepAlive),
	)
	return decodeResult("index.scroll_open", res, err)
}

// Scroll continues a cursor; an expired cursor is errs.KindNotFound.
func (e *Elastic) Scroll(ctx context.Context, scrollID string, keepAlive time.Duration) (*Result, error) {
	es := e.client
	res, err := es.Scroll(
		es.Scroll.WithContext(ctx),
		es.Scroll.WithScrollID(scrollID),
		es.Scroll.WithScroll(keepAlive),
	)
	return decodeResult("index.scroll", res, err)
}

func (e *Elastic) ClearScroll(ctx context.Context, scrollID string) error {
	es := e.client
	res, err := es.ClearScroll(
		es.ClearScroll.WithContext(ctx),
		es.ClearScroll.WithScrollID(scrollID),
	)
	if err == nil && res.StatusCode == http.StatusNotFound {
		res.Body.Close()
		return nil
	}
	return drain("index.scroll_clear", res, err)
}

func (e *Elastic) Count(ctx context.Context, index string, body search.M) (int64, error) {
	r, err := encode(body)
	if err != nil {
		return 0, err
	}
	es := e.client
	res, err := es.Count(
		es.Count.WithContext(ctx),
		es.Count.WithIndex(index),
		es.Count.WithBody(r),
	)
	if err := check("index.count", res, err); err != nil {
		return 0, err
	}
	defer res.Body.Close()
	var out struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, errs.Wrap(errs.KindUpstream, "index.count", err, "decoding count")
	}
	return out.Count, nil
}

func (e *Elastic) PutAlias(ctx context.Context, index, alias string) error {
	es := e.client
	res, err := es.Indices.PutAlias([]string{index}, alias, es.Indices.PutAlias.WithContext(ctx))
	return drain("index.alias_put", res, err)
}

// AliasedIndices lists the indices alias points to; none when the alias is unknown.
func (e *Elastic) AliasedIndices(ctx context.Context, alias string) ([]string, error) {
	es := e.client
	res, err := es.Indices.GetAlias(
		es.Indices.GetAlias.WithContext(ctx),
		es.Indices.GetAlias.WithName(alias),
	)
	if err != nil {
		return nil, errs.Wrap(errs.KindUpstream, "index.alias_get", err, "search backend unreachable")
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if res.IsError() {
		return nil, statusError("index.alias_get", res)
	}
	var out map[string]json.RawMessage
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, errs.Wrap(errs.KindUpstream, "index.alias_get", err, "decoding aliases")
	}
	names := make([]string, 0, len(out))
	for name := range out {
		names = append(names, name)
	}
	return names, nil
}

func (e *Elastic) DeleteAlias(ctx context.Context, index, alias string) error {
	es := e.client
	res, err := es.Indices.DeleteAlias([]string{index}, []string{alias}, es.Indices.DeleteAlias.WithContext(ctx))
	return drain("index.alias_delete", res, err)
}

type searchResponse struct {
	ScrollID string `json:"_scroll_id"`
	Hits     struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string          `json:"_id"`
			Score  *float64        `json:"_score"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func decodeResult(op string, res *esapi.Response, err error) (*Result, error) {
	if err := check(op, res, err); err != nil {
		return nil, err
	}
	defer res.Body.Close()
	var out searchResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, errs.Wrap(errs.KindUpstream, op, err, "decoding search response")
	}
	result := &Result{Total: out.Hits.Total.Value, ScrollID: out.ScrollID, Hits: make([]Hit, 0, len(out.Hits.Hits))}
	for _, h := range out.Hits.Hits {
		hit := Hit{ID: h.ID, Source: h.Source}
		if h.Score != nil {
			hit.Score = *h.Score
		}
		result.Hits = append(result.Hits, hit)
	}
	return result, nil
}

// check turns transport failures and error statuses into typed errors and
// leaves a successful response open for the caller.
func check(op string, res *esapi.Response, err error) error {
	if err != nil {
		return errs.Wrap(errs.KindUpstream, op, err, "search backend unreachable")
	}
	if res.IsError() {
		defer res.Body.Close()
		return statusError(op, res)
	}
	return nil
}

// drain is check for calls whose response body is not needed.
func drain(op string, res *esapi.Response, err error) error {
	if err := check(op, res, err); err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return res.Body.Close()
}

func statusError(op string, res *esapi.Response) error {
	b, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	kind := errs.KindInternal
	switch {
	case res.StatusCode == http.StatusNotFound:
		kind = errs.KindNotFound
	case res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500:
		kind = errs.KindUpstream
	}
	return errs.E(kind, op, "elasticsearch error [%d]: %s", res.StatusCode, bytes.TrimSpace(b))
}

func encode(body search.M) (io.Reader, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "index.encode", err, "encoding request body")
	}
	return bytes.NewReader(b), nil
}

var _ Backend = (*Elastic)(nil)
