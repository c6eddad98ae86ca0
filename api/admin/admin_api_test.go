package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dappstore.GO/api"
	"dappstore.GO/core/errs"
	"dappstore.GO/model/entity"
	"dappstore.GO/model/repository/submission"
	"dappstore.GO/service/index"
)

type stubLifecycle struct {
	calls []string
}

func (s *stubLifecycle) Create(_ context.Context, kind index.Kind) (string, error) {
	s.calls = append(s.calls, "create:"+string(kind))
	return "test_" + string(kind) + "_1", nil
}

func (s *stubLifecycle) Load(_ context.Context, kind index.Kind, name string) (int, error) {
	s.calls = append(s.calls, "load:"+name)
	return 5, nil
}

func (s *stubLifecycle) GoLive(_ context.Context, kind index.Kind, name string) error {
	s.calls = append(s.calls, "live:"+name)
	if name == "missing" {
		return errs.E(errs.KindNotFound, "index.go_live", "index %s not found", name)
	}
	return nil
}

func (s *stubLifecycle) Reindex(_ context.Context, kind index.Kind) (string, error) {
	s.calls = append(s.calls, "reindex:"+string(kind))
	return "test_" + string(kind) + "_2", nil
}

func newServer(t *testing.T, ix api.Lifecycle, ledger api.Ledger) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.HTTPErrorHandler = api.ErrorHandler(nil)
	RegisterAdminRoutes(e.Group("/api"), &api.Services{Indexes: ix, Ledger: ledger})
	return e
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestIndexRoutes(t *testing.T) {
	ix := &stubLifecycle{}
	e := newServer(t, ix, nil)

	rec := do(e, http.MethodPost, "/api/index/dapps", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"index":"test_dapps_1","documents":5}`, rec.Body.String())

	rec = do(e, http.MethodPost, "/api/index/stores/live", `{"index":"test_stores_9"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusNotFound, do(e, http.MethodPost, "/api/index/dapps/live", `{"index":"missing"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/api/index/dapps/live", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/api/index/devs/reindex", "").Code)

	rec = do(e, http.MethodPost, "/api/index/registry/reindex", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []string{
		"create:dapps", "load:test_dapps_1",
		"live:test_stores_9", "live:missing",
		"reindex:dapps",
	}, ix.calls)
}

func TestSubmissions(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	repo := submission.NewSubmissionRepository(db)
	require.NoError(t, repo.AutoMigrate())
	ctx := context.Background()
	require.NoError(t, repo.Record(ctx, &entity.Submission{
		Submitter: "alice", Document: "registry", Operation: "commit.delete_dapp",
		Resource: "a.dapp", CommitMessage: "delete-a.dapp", CompareURL: "https://x",
	}, map[string]any{"sections": []string{}}))

	e := newServer(t, nil, repo)

	rec := do(e, http.MethodGet, "/api/submissions?githubId=alice", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []entity.Submission
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "delete-a.dapp", list[0].CommitMessage)

	rec = do(e, http.MethodGet, "/api/submissions?resource=b.dapp", "")
	assert.JSONEq(t, `[]`, rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/api/submissions", "").Code)
}
