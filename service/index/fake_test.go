package index

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"dappstore.GO/core/errs"
	"dappstore.GO/model/entity"
	"dappstore.GO/service/search"
)

// spyBackend keeps indices in memory and records every request body.
type spyBackend struct {
	mu       sync.Mutex
	indices  map[string]map[string]json.RawMessage
	aliases  map[string]map[string]bool
	bodies   []search.M
	calls    []string
	result   *Result
	scrolls  map[string]bool
	failNext error
}

func newSpy() *spyBackend {
	return &spyBackend{
		indices: map[string]map[string]json.RawMessage{},
		aliases: map[string]map[string]bool{},
		scrolls: map[string]bool{},
	}
}

func (s *spyBackend) record(call string, body search.M) error {
	s.calls = append(s.calls, call)
	if body != nil {
		s.bodies = append(s.bodies, body)
	}
	if err := s.failNext; err != nil {
		s.failNext = nil
		return err
	}
	return nil
}

func (s *spyBackend) CreateIndex(_ context.Context, name string, body search.M) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("create:"+name, body); err != nil {
		return err
	}
	s.indices[name] = map[string]json.RawMessage{}
	return nil
}

func (s *spyBackend) DeleteIndex(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.indices, name)
	return s.record("delete_index:"+name, nil)
}

func (s *spyBackend) BulkUpsert(_ context.Context, index string, docs []Doc) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("bulk:"+index, nil); err != nil {
		return 0, err
	}
	for _, d := range docs {
		b, err := json.Marshal(d.Body)
		if err != nil {
			return 0, err
		}
		s.indices[index][d.ID] = b
	}
	return len(docs), nil
}

func (s *spyBackend) Get(_ context.Context, index, id string) (json.RawMessage, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.indices[index][id]
	return b, ok, s.record("get:"+index, nil)
}

func (s *spyBackend) Delete(_ context.Context, index, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.indices[index], id)
	return s.record("delete:"+index, nil)
}

func (s *spyBackend) Search(_ context.Context, index string, body search.M) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("search:"+index, body); err != nil {
		return nil, err
	}
	if s.result == nil {
		return &Result{}, nil
	}
	return s.result, nil
}

func (s *spyBackend) OpenScroll(_ context.Context, index string, body search.M, _ time.Duration) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("scroll_open:"+index, body); err != nil {
		return nil, err
	}
	s.scrolls["cursor-1"] = true
	return &Result{ScrollID: "cursor-1"}, nil
}

func (s *spyBackend) Scroll(_ context.Context, scrollID string, _ time.Duration) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("scroll:"+scrollID, nil); err != nil {
		return nil, err
	}
	if !s.scrolls[scrollID] {
		return nil, errs.E(errs.KindNotFound, "spy.scroll", "no search context found for id %s", scrollID)
	}
	return &Result{ScrollID: scrollID}, nil
}

func (s *spyBackend) ClearScroll(_ context.Context, scrollID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scrolls, scrollID)
	return s.record("clear:"+scrollID, nil)
}

func (s *spyBackend) Count(_ context.Context, index string, body search.M) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return 42, s.record("count:"+index, body)
}

func (s *spyBackend) PutAlias(_ context.Context, index, alias string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("put_alias:"+index, nil); err != nil {
		return err
	}
	if s.aliases[alias] == nil {
		s.aliases[alias] = map[string]bool{}
	}
	s.aliases[alias][index] = true
	return nil
}

func (s *spyBackend) AliasedIndices(_ context.Context, alias string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for idx := range s.aliases[alias] {
		out = append(out, idx)
	}
	sort.Strings(out)
	return out, s.record("get_alias:"+alias, nil)
}

func (s *spyBackend) DeleteAlias(_ context.Context, index, alias string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.aliases[alias], index)
	return s.record("delete_alias:"+index, nil)
}

func (s *spyBackend) lastBody() search.M {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.bodies) == 0 {
		return nil
	}
	return s.bodies[len(s.bodies)-1]
}

type staticRegistry struct{ doc *entity.Registry }

func (s staticRegistry) Fetch(context.Context) (*entity.Registry, time.Time, error) {
	b, _ := json.Marshal(s.doc)
	var out entity.Registry
	err := json.Unmarshal(b, &out)
	return &out, time.Time{}, err
}

type staticStores struct{ doc *entity.Stores }

func (s staticStores) Fetch(context.Context) (*entity.Stores, time.Time, error) {
	b, _ := json.Marshal(s.doc)
	var out entity.Stores
	err := json.Unmarshal(b, &out)
	return &out, time.Time{}, err
}

func hitOf(d entity.DApp) Hit {
	b, _ := json.Marshal(entity.NewDAppDoc(d))
	return Hit{ID: d.DAppID, Score: 1, Source: b}
}

var _ Backend = (*spyBackend)(nil)
