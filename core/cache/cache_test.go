package cache

import (
	"context"
	"testing"
	"time"
)

func TestSet_Get(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()
	if err := c.Set(ctx, "k", []byte("val"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := c.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v; want true, nil", ok, err)
	}
	if string(got) != "val" {
		t.Errorf("Get = %s, want val", got)
	}
}

func TestGet_Missing(t *testing.T) {
	_, ok, err := NewMemory().Get(context.Background(), "nonexistent-key-xyz")
	if ok || err != nil {
		t.Errorf("Get missing key = %v, %v; want false, nil", ok, err)
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()
	src := []byte("abc")
	_ = c.Set(ctx, "k", src, 0)
	src[0] = 'x'

	got, _, _ := c.Get(ctx, "k")
	got[1] = 'y'
	again, _, _ := c.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value mutated through caller slices: %s", again)
	}
}

func TestExpiry(t *testing.T) {
	c := NewMemory()
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"), time.Minute)
	if _, ok, _ := c.Get(ctx, "k"); !ok {
		t.Fatal("Get before expiry: want true")
	}
	now = now.Add(2 * time.Minute)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("Get after expiry: want false")
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
}

func TestDelete(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()
	_ = c.Set(ctx, "k", []byte("x"), 0)
	_ = c.Delete(ctx, "k")
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("Delete: key should be gone")
	}
}

func TestDeletePrefix(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()
	_ = c.Set(ctx, Key("doc", "registry"), []byte("1"), 0)
	_ = c.Set(ctx, Key("doc", "stores"), []byte("2"), 0)
	_ = c.Set(ctx, Key("other"), []byte("3"), 0)

	if n := c.DeletePrefix("doc|"); n != 2 {
		t.Errorf("DeletePrefix = %d, want 2", n)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestKey(t *testing.T) {
	if got := Key("a", 1, "b"); got != "a|1|b" {
		t.Errorf("Key = %q, want a|1|b", got)
	}
}
