package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestFileCacheRoundTrip(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Errorf("Get(missing) = hit=%v err=%v, want miss", hit, err)
	}

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	data, hit, err := c.Get(ctx, "key")
	if err != nil || !hit {
		t.Fatalf("Get = hit=%v err=%v, want hit", hit, err)
	}
	if string(data) != "value" {
		t.Errorf("data = %q, want value", data)
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("Get after Delete = hit, want miss")
	}
}

func TestFileCacheExpiry(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "short", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry still hit")
	}
}

func TestFileCacheDeleteMissing(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	if err := c.Delete(context.Background(), "nope"); err != nil {
		t.Errorf("Delete(missing) = %v, want nil", err)
	}
}

func TestNullCache(t *testing.T) {
	c := NewNullCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Errorf("Set = %v", err)
	}
	if _, hit, err := c.Get(ctx, "k"); err != nil || hit {
		t.Errorf("Get = hit=%v err=%v, want permanent miss", hit, err)
	}
}

func TestKeyerDeterminism(t *testing.T) {
	k := NewDefaultKeyer()

	a := k.MapKey("biology", MapKeyOpts{MaxDepth: 4, MaxBranch: 5})
	b := k.MapKey("biology", MapKeyOpts{MaxDepth: 4, MaxBranch: 5})
	if a != b {
		t.Error("identical inputs produced different keys")
	}

	c := k.MapKey("biology", MapKeyOpts{MaxDepth: 3, MaxBranch: 5})
	if a == c {
		t.Error("different options produced the same key")
	}

	if !strings.HasPrefix(a, "map:") {
		t.Errorf("key %q missing stage prefix", a)
	}
	if !strings.HasPrefix(k.LayoutKey("h", LayoutKeyOpts{}), "layout:") {
		t.Error("layout key missing prefix")
	}
	if !strings.HasPrefix(k.ArtifactKey("h", ArtifactKeyOpts{Format: "svg"}), "artifact:") {
		t.Error("artifact key missing prefix")
	}
}

func TestArtifactKeyVariesByFormat(t *testing.T) {
	k := NewDefaultKeyer()
	svg := k.ArtifactKey("hash", ArtifactKeyOpts{Format: "svg"})
	png := k.ArtifactKey("hash", ArtifactKeyOpts{Format: "png"})
	if svg == png {
		t.Error("formats share a cache key")
	}
}

func TestScopedKeyer(t *testing.T) {
	k := NewScopedKeyer(NewDefaultKeyer(), "user:42:")

	key := k.MapKey("topic", MapKeyOpts{})
	if !strings.HasPrefix(key, "user:42:map:") {
		t.Errorf("key = %q, want user prefix", key)
	}

	// Nil inner falls back to the default keyer.
	k2 := NewScopedKeyer(nil, "p:")
	if !strings.HasPrefix(k2.LayoutKey("h", LayoutKeyOpts{}), "p:layout:") {
		t.Error("nil inner keyer not defaulted")
	}
}

func TestHash(t *testing.T) {
	h := Hash([]byte("hello"))
	if len(h) != 64 {
		t.Errorf("hash length = %d, want 64", len(h))
	}
	if h != Hash([]byte("hello")) {
		t.Error("hash not deterministic")
	}
	if h == Hash([]byte("world")) {
		t.Error("different inputs collide")
	}
}
