package commit

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dappstore.GO/core/errs"
	"dappstore.GO/model/entity"
	submissionRepo "dappstore.GO/model/repository/submission"
	"dappstore.GO/service/enrich"
	"dappstore.GO/service/schema"
)

// spyGit records every persistence call.
type spyGit struct {
	mu       sync.Mutex
	calls    []string
	written  map[string][]byte
	messages []string
	writeErr error
}

func (s *spyGit) Fork(_ context.Context, sub Submitter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "fork:"+sub.ID)
	return nil
}

func (s *spyGit) ReadFile(_ context.Context, _ Submitter, path string) ([]byte, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "read:"+path)
	return []byte("{}"), "sha-1", nil
}

func (s *spyGit) WriteFile(_ context.Context, _ Submitter, path string, content []byte, sha, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "write:"+path+"@"+sha)
	if s.writeErr != nil {
		return s.writeErr
	}
	if s.written == nil {
		s.written = map[string][]byte{}
	}
	s.written[path] = content
	s.messages = append(s.messages, message)
	return nil
}

type regSource struct{ doc entity.Registry }

func (r *regSource) Fetch(context.Context) (*entity.Registry, time.Time, error) {
	b, _ := json.Marshal(r.doc)
	var out entity.Registry
	err := json.Unmarshal(b, &out)
	return &out, time.Time{}, err
}

type storesSource struct{ doc entity.Stores }

func (s *storesSource) Fetch(context.Context) (*entity.Stores, time.Time, error) {
	b, _ := json.Marshal(s.doc)
	var out entity.Stores
	err := json.Unmarshal(b, &out)
	return &out, time.Time{}, err
}

func mkDApp(id, owner string, listed bool) entity.DApp {
	return entity.DApp{
		DAppID:              id,
		Name:                "Name of " + id,
		Description:         "A dApp",
		AppURL:              "https://" + id + ".example",
		MinAge:              0,
		Language:            entity.StringList{"en"},
		Version:             "1.0.0",
		IsListed:            listed,
		ListDate:            "2023-01-01",
		AvailableOnPlatform: []string{entity.PlatformWeb},
		Chains:              []int{137},
		Category:            "finance",
		Developer: &entity.Developer{
			LegalName:        owner + " inc",
			Website:          "https://" + owner + ".example",
			PrivacyPolicyURL: "https://" + owner + ".example/privacy",
			GithubID:         owner,
		},
	}
}

func mkStore(key, owner string) entity.Store {
	return entity.Store{
		Key:         key,
		GithubID:    owner,
		Name:        "Store " + key,
		Description: "A store",
		URL:         "https://" + key + ".example",
		Language:    entity.StringList{"en"},
	}
}

var (
	alice   = Submitter{ID: "alice", Name: "Alice", Email: "alice@example.com", AccessToken: "token-a"}
	mallory = Submitter{ID: "mallory", Name: "Mallory", Email: "m@example.com", AccessToken: "token-m"}
)

type fixture struct {
	wf     *Workflow
	git    *spyGit
	reg    *regSource
	stores *storesSource
}

func newFixture(t *testing.T, mutate func(*Config)) *fixture {
	t.Helper()
	v, err := schema.New()
	require.NoError(t, err)

	reg := &regSource{doc: entity.Registry{
		Title:  "test registry",
		Chains: []int{137},
		DApps: []entity.DApp{
			mkDApp("a.dapp", "alice", true),
			mkDApp("b.dapp", "bob", true),
			mkDApp("c.dapp", "bob", false),
		},
		FeaturedSections: []entity.FeaturedSection{
			{Key: "top", Title: "Top", DAppIDs: []string{"a.dapp"}},
		},
	}}
	stores := &storesSource{doc: entity.Stores{DAppStores: []entity.Store{mkStore("alice.dappstore", "alice")}}}
	git := &spyGit{}
	cfg := Config{
		Registry:  reg,
		Stores:    stores,
		Validator: v,
		Git:       git,
		Owner:     "dappstore",
		Repo:      "registry",
	}
	if mutate != nil {
		mutate(&cfg)
	}
	wf, err := New(cfg)
	require.NoError(t, err)
	return &fixture{wf: wf, git: git, reg: reg, stores: stores}
}

func (f *fixture) writtenRegistry(t *testing.T) entity.Registry {
	t.Helper()
	var out entity.Registry
	require.NoError(t, json.Unmarshal(f.git.written[RegistryFile], &out))
	return out
}

func (f *fixture) writtenStores(t *testing.T) entity.Stores {
	t.Helper()
	var out entity.Stores
	require.NoError(t, json.Unmarshal(f.git.written[StoresFile], &out))
	return out
}

func TestAddOrUpdateDApp_AuthorizationGate(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.wf.AddOrUpdateDApp(context.Background(), mallory, mkDApp("new.dapp", "alice", true))
	assert.True(t, errors.Is(err, errs.ErrAuthorization))
	assert.Empty(t, f.git.calls, "no persistence call may happen before authorization passes")

	// claiming someone else's existing entry
	_, err = f.wf.AddOrUpdateDApp(context.Background(), alice, mkDApp("b.dapp", "alice", true))
	assert.True(t, errors.Is(err, errs.ErrAuthorization))
	assert.Empty(t, f.git.calls)

	noDev := mkDApp("x.dapp", "alice", true)
	noDev.Developer = nil
	_, err = f.wf.AddOrUpdateDApp(context.Background(), alice, noDev)
	assert.True(t, errors.Is(err, errs.ErrAuthorization))
}

func TestAddOrUpdateDApp_Adds(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.wf.AddOrUpdateDApp(context.Background(), alice, mkDApp("new.dapp", "alice", true))
	require.NoError(t, err)

	assert.Equal(t, "https://github.com/dappstore/registry/compare/main...alice:registry:main?expand=1", res.CompareURL)
	assert.Equal(t, "add-new.dapp", res.CommitMessage)
	assert.Equal(t, []string{"fork:alice", "read:" + RegistryFile, "write:" + RegistryFile + "@sha-1"}, f.git.calls)

	written := f.writtenRegistry(t)
	assert.Len(t, written.DApps, 4)
	assert.GreaterOrEqual(t, written.FindDApp("new.dapp"), 0)

	// the candidate never leaks into the read path
	current, _, _ := f.reg.Fetch(context.Background())
	assert.Equal(t, -1, current.FindDApp("new.dapp"))
}

func TestAddOrUpdateDApp_UpdatesOwnEntry(t *testing.T) {
	f := newFixture(t, nil)
	d := mkDApp("a.dapp", "alice", false)
	d.Description = "updated"

	_, err := f.wf.AddOrUpdateDApp(context.Background(), alice, d)
	require.NoError(t, err)

	written := f.writtenRegistry(t)
	assert.Equal(t, "updated", written.DApps[written.FindDApp("a.dapp")].Description)
	assert.Empty(t, written.FeaturedSections[0].DAppIDs, "an unlisted update leaves featured sections")
}

func TestAddOrUpdateDApp_Validation(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.wf.AddOrUpdateDApp(context.Background(), alice, mkDApp("new.app", "alice", true))
	assert.True(t, errors.Is(err, errs.ErrValidation))

	bad := mkDApp("new.dapp", "alice", true)
	bad.Chains = nil
	_, err = f.wf.AddOrUpdateDApp(context.Background(), alice, bad)
	assert.True(t, errors.Is(err, errs.ErrValidation))

	var e *errs.Error
	require.True(t, errors.As(err, &e))
	assert.NotEmpty(t, e.Details)

	assert.Empty(t, f.git.calls, "an invalid candidate is discarded before persisting")
}

func TestAddDApps_GeneratesIDs(t *testing.T) {
	f := newFixture(t, nil)
	first := mkDApp("", "alice", true)
	first.Name = "Example One"
	first.AppURL = "https://example.com/app1"
	second := mkDApp("", "alice", true)
	second.Name = "Example Two"
	second.AppURL = "https://example.com/app2"

	res, err := f.wf.AddDApps(context.Background(), alice, []entity.DApp{first, second})
	require.NoError(t, err)
	assert.Equal(t, "add-example.app-example-app2.app", res.CommitMessage)

	written := f.writtenRegistry(t)
	assert.GreaterOrEqual(t, written.FindDApp("example.app"), 0)
	assert.GreaterOrEqual(t, written.FindDApp("example-app2.app"), 0)
}

func TestAddDApps_DuplicateURLInBatch(t *testing.T) {
	f := newFixture(t, nil)
	first := mkDApp("", "alice", true)
	first.Name = "One"
	first.AppURL = "https://dup.example.org"
	second := mkDApp("", "alice", true)
	second.Name = "Two"
	second.AppURL = "https://www.dup.example.org/"

	_, err := f.wf.AddDApps(context.Background(), alice, []entity.DApp{first, second})
	assert.True(t, errors.Is(err, errs.ErrValidation))
	assert.Empty(t, f.git.calls)
}

func TestDeleteDApp(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.wf.DeleteDApp(context.Background(), alice, "b.dapp")
	assert.True(t, errors.Is(err, errs.ErrAuthorization))

	_, err = f.wf.DeleteDApp(context.Background(), alice, "missing.dapp")
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	res, err := f.wf.DeleteDApp(context.Background(), alice, "a.dapp")
	require.NoError(t, err)
	assert.Equal(t, "delete-a.dapp", res.CommitMessage)

	written := f.writtenRegistry(t)
	assert.Equal(t, -1, written.FindDApp("a.dapp"))
	assert.Empty(t, written.FeaturedSections[0].DAppIDs)
}

func TestToggleListing(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.wf.ToggleListing(context.Background(), alice, "a.dapp")
	require.NoError(t, err)
	assert.Equal(t, "toggle-listing-a.dapp", res.CommitMessage)

	written := f.writtenRegistry(t)
	assert.False(t, written.DApps[written.FindDApp("a.dapp")].IsListed)
	assert.Empty(t, written.FeaturedSections[0].DAppIDs)
}

func TestToggle(t *testing.T) {
	out, added := Toggle([]string{"A"}, []string{"A", "B"})
	assert.Equal(t, []string{"B"}, out)
	assert.Equal(t, []string{"B"}, added)

	out, added = Toggle(nil, []string{"A", "A"})
	assert.Equal(t, []string{"A"}, out)
	assert.Equal(t, []string{"A"}, added)

	out, added = Toggle([]string{"A", "B", "C"}, []string{"B"})
	assert.Equal(t, []string{"A", "C"}, out)
	assert.Empty(t, added)
}

func TestToggleDAppsInFeaturedSection(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.wf.ToggleDAppsInFeaturedSection(context.Background(), alice, "top", []string{"a.dapp", "b.dapp"})
	require.NoError(t, err)
	assert.Equal(t, "add-dapp-to-featured-section-top-a.dapp-b.dapp", res.CommitMessage)
	assert.Equal(t, []string{"b.dapp"}, f.writtenRegistry(t).FeaturedSections[0].DAppIDs)
}

func TestToggleDAppsInFeaturedSection_ReferenceAbortsWholeOperation(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.wf.ToggleDAppsInFeaturedSection(context.Background(), alice, "top", []string{"b.dapp", "c.dapp", "zzz.dapp"})
	require.True(t, errors.Is(err, errs.ErrReference))

	var e *errs.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, []string{"c.dapp", "zzz.dapp"}, e.Details)
	assert.Empty(t, f.git.calls)
}

func TestFeaturedSections(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.Maintainers = []string{"alice"} })
	ctx := context.Background()

	_, err := f.wf.AddFeaturedSection(ctx, mallory, entity.FeaturedSection{Key: "new", Title: "New", DAppIDs: []string{"a.dapp"}})
	assert.True(t, errors.Is(err, errs.ErrAuthorization))

	_, err = f.wf.AddFeaturedSection(ctx, alice, entity.FeaturedSection{Key: "other", Title: "Top", DAppIDs: []string{"a.dapp"}})
	assert.True(t, errors.Is(err, errs.ErrValidation), "titles are unique")

	_, err = f.wf.AddFeaturedSection(ctx, alice, entity.FeaturedSection{Key: "empty", Title: "Empty"})
	assert.True(t, errors.Is(err, errs.ErrValidation))

	_, err = f.wf.AddFeaturedSection(ctx, alice, entity.FeaturedSection{Key: "new", Title: "New", DAppIDs: []string{"c.dapp"}})
	assert.True(t, errors.Is(err, errs.ErrReference))

	res, err := f.wf.AddFeaturedSection(ctx, alice, entity.FeaturedSection{Key: "new", Title: "New", DAppIDs: []string{"a.dapp", "b.dapp"}})
	require.NoError(t, err)
	assert.Equal(t, "add-featured-section-New", res.CommitMessage)
	assert.Len(t, f.writtenRegistry(t).FeaturedSections, 2)

	_, err = f.wf.RemoveFeaturedSection(ctx, alice, "nope")
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	res, err = f.wf.RemoveFeaturedSection(ctx, alice, "top")
	require.NoError(t, err)
	assert.Equal(t, "remove-featured-section-top", res.CommitMessage)
	assert.Empty(t, f.writtenRegistry(t).FeaturedSections)
}

func TestPersist_Conflict(t *testing.T) {
	f := newFixture(t, nil)
	f.git.writeErr = errs.E(errs.KindConflict, "spy", "stale sha")

	_, err := f.wf.ToggleListing(context.Background(), alice, "a.dapp")
	assert.True(t, errors.Is(err, errs.ErrConflict))
	assert.True(t, errs.IsRetryable(err))
}

func TestStores(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.wf.AddStore(ctx, alice, mkStore("alice.dappstore", "alice"))
	assert.True(t, errors.Is(err, errs.ErrValidation), "duplicate key")

	_, err = f.wf.AddStore(ctx, alice, mkStore("second.store", "alice"))
	assert.True(t, errors.Is(err, errs.ErrValidation), "key suffix")

	_, err = f.wf.AddStore(ctx, mallory, mkStore("second.dappstore", "alice"))
	assert.True(t, errors.Is(err, errs.ErrAuthorization))

	res, err := f.wf.AddStore(ctx, alice, mkStore("second.dappstore", "alice"))
	require.NoError(t, err)
	assert.Equal(t, "add-second.dappstore", res.CommitMessage)
	assert.Len(t, f.writtenStores(t).DAppStores, 2)

	_, err = f.wf.DeleteStore(ctx, mallory, "alice.dappstore")
	assert.True(t, errors.Is(err, errs.ErrAuthorization))

	res, err = f.wf.DeleteStore(ctx, alice, "alice.dappstore")
	require.NoError(t, err)
	assert.Equal(t, "delete-alice.dappstore", res.CommitMessage)
	assert.Empty(t, f.writtenStores(t).DAppStores)
}

func TestUpdateStore(t *testing.T) {
	f := newFixture(t, nil)
	s := mkStore("alice.dappstore", "alice")
	s.Description = "new description"

	res, err := f.wf.UpdateStore(context.Background(), alice, s)
	require.NoError(t, err)
	assert.Equal(t, "update-alice.dappstore", res.CommitMessage)
	assert.Equal(t, "new description", f.writtenStores(t).DAppStores[0].Description)

	s.BannedDAppIDs = []string{"ghost.dapp"}
	_, err = f.wf.UpdateStore(context.Background(), alice, s)
	assert.True(t, errors.Is(err, errs.ErrReference))
}

func TestToggleBannedDApps(t *testing.T) {
	f := newFixture(t, nil)
	f.stores.doc.DAppStores[0].BannedDAppIDs = []string{"a.dapp"}

	res, err := f.wf.ToggleBannedDApps(context.Background(), alice, "alice.dappstore", []string{"a.dapp", "b.dapp"})
	require.NoError(t, err)
	assert.Equal(t, "add-dapp-to-bannedList-of-alice.dappstore-a.dapp-b.dapp", res.CommitMessage)
	assert.Equal(t, []string{"b.dapp"}, f.writtenStores(t).DAppStores[0].BannedDAppIDs)

	_, err = f.wf.ToggleBannedDApps(context.Background(), alice, "alice.dappstore", []string{"ghost.dapp"})
	assert.True(t, errors.Is(err, errs.ErrReference))
}

func TestStoreFeaturedSections(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	key := "alice.dappstore"

	res, err := f.wf.AddStoreFeaturedSection(ctx, alice, key, entity.FeaturedSection{Key: "games", Title: "Games", DAppIDs: []string{"a.dapp"}})
	require.NoError(t, err)
	assert.Equal(t, "add-featured-section-Games-in-store-alice.dappstore", res.CommitMessage)

	f.stores.doc = f.writtenStores(t)
	res, err = f.wf.ToggleDAppsInStoreFeaturedSection(ctx, alice, key, "games", []string{"a.dapp", "b.dapp"})
	require.NoError(t, err)
	assert.Equal(t, "add-dapp-to-featured-section-games-in-store-alice.dappstore", res.CommitMessage)
	assert.Equal(t, []string{"b.dapp"}, f.writtenStores(t).DAppStores[0].FeaturedSections[0].DAppIDs)

	res, err = f.wf.RemoveStoreFeaturedSection(ctx, alice, key, "games")
	require.NoError(t, err)
	assert.Equal(t, "remove-featured-section-games-in-store-alice.dappstore", res.CommitMessage)
	assert.Empty(t, f.writtenStores(t).DAppStores[0].FeaturedSections)
}

func TestUpsertEnrich(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.wf.UpsertEnrich(ctx, alice, "alice.dappstore", "ghost.dapp", enrich.Patch{Add: map[string]any{"description": "x"}})
	assert.True(t, errors.Is(err, errs.ErrReference))

	res, err := f.wf.UpsertEnrich(ctx, alice, "alice.dappstore", "b.dapp", enrich.Patch{Add: map[string]any{"description": "Store copy"}})
	require.NoError(t, err)
	assert.Equal(t, "enrich-b.dapp-in-store-alice.dappstore", res.CommitMessage)

	rec := f.writtenStores(t).DAppStores[0].EnrichFor("b.dapp")
	require.NotNil(t, rec)
	assert.Equal(t, "Store copy", rec.Fields["description"])

	_, err = f.wf.UpsertEnrich(ctx, mallory, "alice.dappstore", "b.dapp", enrich.Patch{Remove: []string{"description"}})
	assert.True(t, errors.Is(err, errs.ErrAuthorization))
}

func TestLedgerRecordsSubmissions(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	repo := submissionRepo.NewSubmissionRepository(db)
	require.NoError(t, repo.AutoMigrate())

	f := newFixture(t, func(c *Config) { c.Ledger = repo })
	ctx := context.Background()

	_, err = f.wf.ToggleListing(ctx, alice, "a.dapp")
	require.NoError(t, err)

	f.git.writeErr = errs.E(errs.KindConflict, "spy", "stale")
	_, err = f.wf.DeleteDApp(ctx, alice, "a.dapp")
	require.Error(t, err)

	rows, err := repo.FindBySubmitter(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, rows, 1, "only persisted changes are recorded")
	assert.Equal(t, "commit.toggle_listing", rows[0].Operation)
	assert.Equal(t, "a.dapp", rows[0].Resource)
	assert.Equal(t, "registry", rows[0].Document)
	assert.JSONEq(t, `{"isListed":false,"sections":["top"]}`, string(rows[0].Summary))
}

func TestAddStore_BannedMustBeListed(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	s := mkStore("second.dappstore", "alice")
	s.BannedDAppIDs = []string{"c.dapp"}
	_, err := f.wf.AddStore(ctx, alice, s)
	require.True(t, errors.Is(err, errs.ErrReference), "c.dapp exists but is not listed")
	var e *errs.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, []string{"c.dapp"}, e.Details)
	assert.Empty(t, f.git.calls)

	s.BannedDAppIDs = []string{"b.dapp"}
	_, err = f.wf.AddStore(ctx, alice, s)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.dapp"}, f.writtenStores(t).DAppStores[1].BannedDAppIDs)
}

func TestUpdateStore_KeepsExistingBans(t *testing.T) {
	f := newFixture(t, nil)
	// banned before c.dapp was delisted
	f.stores.doc.DAppStores[0].BannedDAppIDs = []string{"c.dapp"}

	s := mkStore("alice.dappstore", "alice")
	s.BannedDAppIDs = []string{"c.dapp"}
	s.Description = "still banning c"
	_, err := f.wf.UpdateStore(context.Background(), alice, s)
	require.NoError(t, err)

	s.BannedDAppIDs = []string{"c.dapp", "c.dapp"}
	s.FeaturedSections = []entity.FeaturedSection{{Key: "k", Title: "K", DAppIDs: []string{"zzz.dapp"}}}
	_, err = f.wf.UpdateStore(context.Background(), alice, s)
	assert.True(t, errors.Is(err, errs.ErrReference))
}

func TestAddOrUpdateDApp_UpdatesGeneratedID(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	d := mkDApp("", "alice", true)
	d.Name = "Example"
	d.AppURL = "https://example.com/app1"
	_, err := f.wf.AddDApps(ctx, alice, []entity.DApp{d})
	require.NoError(t, err)

	// the change was merged upstream
	f.reg.doc = f.writtenRegistry(t)
	i := f.reg.doc.FindDApp("example.app")
	require.GreaterOrEqual(t, i, 0)

	updated := f.reg.doc.DApps[i]
	updated.Description = "now with more chains"
	res, err := f.wf.AddOrUpdateDApp(ctx, alice, updated)
	require.NoError(t, err)
	assert.Equal(t, "add-example.app", res.CommitMessage)
	written := f.writtenRegistry(t)
	assert.Equal(t, "now with more chains", written.DApps[written.FindDApp("example.app")].Description)

	_, err = f.wf.AddOrUpdateDApp(ctx, alice, mkDApp("brand-new.app", "alice", true))
	assert.True(t, errors.Is(err, errs.ErrValidation), "new ids still need the .dapp suffix")
}

func TestFeaturedSections_TitleIgnoresCase(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.Maintainers = []string{"alice"} })

	_, err := f.wf.AddFeaturedSection(context.Background(), alice, entity.FeaturedSection{Key: "other", Title: " TOP ", DAppIDs: []string{"a.dapp"}})
	assert.True(t, errors.Is(err, errs.ErrValidation))
	assert.Empty(t, f.git.calls)

	_, err = f.wf.AddStoreFeaturedSection(context.Background(), alice, "alice.dappstore", entity.FeaturedSection{Key: "top", Title: "Top", DAppIDs: []string{"a.dapp"}})
	require.NoError(t, err)
	f.stores.doc = f.writtenStores(t)
	_, err = f.wf.AddStoreFeaturedSection(context.Background(), alice, "alice.dappstore", entity.FeaturedSection{Key: "top2", Title: "top", DAppIDs: []string{"a.dapp"}})
	assert.True(t, errors.Is(err, errs.ErrValidation))
}

func TestCompareURL_OrgFork(t *testing.T) {
	f := newFixture(t, nil)
	inOrg := alice
	inOrg.Org = "acme"

	res, err := f.wf.ToggleListing(context.Background(), inOrg, "a.dapp")
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/dappstore/registry/compare/main...acme:registry:main?expand=1", res.CompareURL)
	assert.Equal(t, "acme", inOrg.ForkOwner())
	assert.Equal(t, "alice", alice.ForkOwner())
}
