package registry

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestRegistry_SetGetLock(t *testing.T) {
	r := New()
	_, ok := r.GetGlobal("k")
	assert.False(t, ok)

	r.SetGlobal("k", []string{"a"})
	v, ok := r.GetGlobal("k")
	assert.True(t, ok)
	assert.Equal(t, []string{"a"}, v)

	r.Lock("k")
	assert.True(t, r.IsLocked("k"))
	assert.Panics(t, func() { r.SetGlobal("k", nil) })

	r.UnlockForTesting("k")
	assert.NotPanics(t, func() { r.SetGlobal("k", nil) })
}

func TestRequestRegistry_Elapsed(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest("GET", "/", nil), httptest.NewRecorder())
	rr := Request(c)
	assert.Zero(t, rr.Elapsed())

	rr.Set(KeyRequestStart, time.Now().Add(-time.Second))
	assert.GreaterOrEqual(t, rr.Elapsed(), time.Second)
}
