package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Backend is the key-value store with expiry used for shared document copies.
// A miss is (nil, false, nil).
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Key joins parts into a composite cache key.
func Key(parts ...any) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = fmt.Sprintf("%v", p)
	}
	return strings.Join(s, "|")
}

// Memory is an in-process Backend built on sync.Map. Expired items are
// dropped lazily on read.
type Memory struct {
	m   sync.Map
	now func() time.Time
}

// NewMemory creates an empty in-process backend.
func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

// item holds a value and its expiration time.
type item struct {
	value     []byte
	expiresAt int64 // unix nanos; 0 means no expiration
}

// Set stores a copy of value. A ttl <= 0 never expires.
func (c *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = c.now().Add(ttl).UnixNano()
	}
	c.m.Store(key, item{value: append([]byte(nil), value...), expiresAt: expiresAt})
	return nil
}

// Get returns a copy of the stored value if present and not expired.
func (c *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c.m.Load(key)
	if !ok {
		return nil, false, nil
	}
	it := v.(item)
	if it.expiresAt > 0 && c.now().UnixNano() > it.expiresAt {
		c.m.Delete(key)
		return nil, false, nil
	}
	return append([]byte(nil), it.value...), true, nil
}

func (c *Memory) Delete(_ context.Context, key string) error {
	c.m.Delete(key)
	return nil
}

// DeletePrefix removes every key starting with prefix.
func (c *Memory) DeletePrefix(prefix string) int {
	n := 0
	c.m.Range(func(k, _ any) bool {
		if s, ok := k.(string); ok && strings.HasPrefix(s, prefix) {
			c.m.Delete(k)
			n++
		}
		return true
	})
	return n
}

// Len counts live entries.
func (c *Memory) Len() int {
	n := 0
	now := c.now().UnixNano()
	c.m.Range(func(_, v any) bool {
		if it := v.(item); it.expiresAt == 0 || now <= it.expiresAt {
			n++
		}
		return true
	})
	return n
}
