// Package registry holds process wide extension points. Packages register
// commands, cron jobs, API modules and GraphQL resolvers from init(); the
// owning package locks its key once it has applied the registrations.
package registry

import (
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// Registry is a keyed store with per key write locks.
type Registry struct {
	mu     sync.RWMutex
	values map[string]any
	locked map[string]bool
}

// GlobalRegistry is the process registry.
var GlobalRegistry = New()

func New() *Registry {
	return &Registry{values: map[string]any{}, locked: map[string]bool{}}
}

// GetGlobal returns the value stored under key.
func (r *Registry) GetGlobal(key string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[key]
	return v, ok
}

// SetGlobal stores v under key. Panics if key is locked.
func (r *Registry) SetGlobal(key string, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locked[key] {
		panic("registry: " + key + " is locked")
	}
	r.values[key] = v
}

func (r *Registry) IsLocked(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.locked[key]
}

// Lock makes key read only.
func (r *Registry) Lock(key string) {
	r.mu.Lock()
	r.locked[key] = true
	r.mu.Unlock()
}

// UnlockForTesting reopens key. Tests only.
func (r *Registry) UnlockForTesting(key string) {
	r.mu.Lock()
	delete(r.locked, key)
	r.mu.Unlock()
}

// RequestRegistry carries per request values on the echo context.
type RequestRegistry struct{ c echo.Context }

func Request(c echo.Context) RequestRegistry { return RequestRegistry{c: c} }

func (r RequestRegistry) Set(key string, v any) { r.c.Set(key, v) }

func (r RequestRegistry) Get(key string) any { return r.c.Get(key) }

// Elapsed is the time since the request start was recorded; zero if never.
func (r RequestRegistry) Elapsed() time.Duration {
	start, ok := r.c.Get(KeyRequestStart).(time.Time)
	if !ok {
		return 0
	}
	return time.Since(start)
}
