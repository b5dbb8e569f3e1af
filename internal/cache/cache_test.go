package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/wikitopics/internal/model"
)

func TestKey(t *testing.T) {
	a := Key("https://en.wikipedia.org/w/api.php?action=query")
	b := Key("https://en.wikipedia.org/w/api.php?action=parse")

	if !strings.HasPrefix(a, "wikitopics:v1:") {
		t.Errorf("unexpected key prefix: %s", a)
	}
	if a == b {
		t.Error("different URLs produced the same key")
	}
	if a != Key("https://en.wikipedia.org/w/api.php?action=query") {
		t.Error("key is not stable")
	}
}

func TestDiskCache_SetGet(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	key := Key("https://example.org/a")

	if _, ok := c.Get(key); ok {
		t.Fatal("expected miss on empty cache")
	}
	if err := c.Set(key, []byte("payload"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok := c.Get(key)
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if string(got) != "payload" {
		t.Errorf("expected payload, got %q", got)
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	key := Key("https://example.org/expired")

	if err := c.Set(key, []byte("old"), time.Nanosecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get(key); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestDiskCache_DeleteMissing(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	if err := c.Delete(Key("https://example.org/none")); err != nil {
		t.Errorf("deleting a missing entry should not fail: %v", err)
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	key := Key("https://example.org/promote")

	disk := NewDiskCache(dir, time.Hour)
	if err := disk.Set(key, []byte("from-disk"), 0); err != nil {
		t.Fatalf("disk Set failed: %v", err)
	}

	layered := NewLayeredCache(time.Hour, dir, time.Hour)
	got, ok := layered.Get(key)
	if !ok || string(got) != "from-disk" {
		t.Fatalf("expected disk hit, got %q (%v)", got, ok)
	}

	if err := disk.Delete(key); err != nil {
		t.Fatalf("disk Delete failed: %v", err)
	}
	if got, ok := layered.memory.Get(key); !ok || string(got) != "from-disk" {
		t.Errorf("expected entry promoted to memory, got %q (%v)", got, ok)
	}
}

func TestLayeredCache_Clear(t *testing.T) {
	layered := NewLayeredCache(time.Hour, t.TempDir(), time.Hour)
	key := Key("https://example.org/clear")

	if err := layered.Set(key, []byte("x"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := layered.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := layered.Get(key); ok {
		t.Error("expected miss after Clear")
	}
}

func TestNew_Disabled(t *testing.T) {
	c := New(model.CacheConfig{Enabled: false})
	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("disabled cache should never hit")
	}
}
