package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dappstore.GO/core/errs"
)

func TestStatus(t *testing.T) {
	for kind, code := range map[errs.Kind]int{
		errs.KindValidation:    http.StatusBadRequest,
		errs.KindAuthorization: http.StatusForbidden,
		errs.KindReference:     http.StatusUnprocessableEntity,
		errs.KindConflict:      http.StatusConflict,
		errs.KindIDExhausted:   http.StatusConflict,
		errs.KindNotFound:      http.StatusNotFound,
		errs.KindUpstream:      http.StatusServiceUnavailable,
		errs.KindInternal:      http.StatusInternalServerError,
	} {
		assert.Equal(t, code, Status(kind), kind)
	}
}

func TestErrorHandler(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(nil)
	e.GET("/ref", func(echo.Context) error {
		return errs.E(errs.KindReference, "commit.toggle", "unknown or unlisted dApps").WithDetails("zzz.dapp")
	})
	e.GET("/plain", func(echo.Context) error { return errors.New("boom") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ref", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "reference", body.Kind)
	assert.Equal(t, []string{"zzz.dapp"}, body.Details)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plain", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchRequest(t *testing.T) {
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/?text=+swap+&chainId=137&categories=finance,music&page=2", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	text, opts, err := SearchRequest(c)
	require.NoError(t, err)
	assert.Equal(t, "swap", text)
	require.NotNil(t, opts.ChainID)
	assert.Equal(t, 137, *opts.ChainID)
	assert.Equal(t, []string{"finance", "music"}, opts.Categories)
	assert.Equal(t, 2, opts.Page)

	req = httptest.NewRequest(http.MethodPost, "/?page=3", strings.NewReader(`{"q":"nft","isListed":false,"limit":5}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c = e.NewContext(req, httptest.NewRecorder())
	text, opts, err = SearchRequest(c)
	require.NoError(t, err)
	assert.Equal(t, "nft", text)
	assert.False(t, opts.Listed())
	assert.Equal(t, 5, opts.Limit)
	assert.Equal(t, 3, opts.Page)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{not json`))
	c = e.NewContext(req, httptest.NewRecorder())
	_, _, err = SearchRequest(c)
	assert.True(t, errors.Is(err, errs.ErrValidation))
}
