package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if n, err := c.DeletePrefix(ctx, "k"); n != 0 || err != nil {
		t.Errorf("DeletePrefix = %d, %v", n, err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("lineage:tbl_orders:both:3"))
	if h1 != Hash([]byte("lineage:tbl_orders:both:3")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("lineage:tbl_orders:both:4")) {
		t.Error("Different keys should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestIDSetHash(t *testing.T) {
	base := idSetHash([]string{"tbl_orders", "tbl_customers"})

	tests := []struct {
		name string
		ids  []string
		same bool
	}{
		{"reordered", []string{"tbl_customers", "tbl_orders"}, true},
		{"repeated", []string{"tbl_orders", "tbl_customers", "tbl_orders"}, true},
		{"subset", []string{"tbl_orders"}, false},
		{"joined", []string{"tbl_orderstbl_customers"}, false},
	}
	for _, tt := range tests {
		if got := idSetHash(tt.ids) == base; got != tt.same {
			t.Errorf("%s: same hash = %v, want %v", tt.name, got, tt.same)
		}
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	opts := LineageKeyOpts{Direction: "both", Depth: 3}

	if got := k.LineageKey("tbl_account", opts); got != "lineage:tbl_account:both:3" {
		t.Errorf("LineageKey = %q", got)
	}

	// IDs containing the separator are escaped
	if got := k.LineageKey("db:tbl", opts); got != "lineage:db%3Atbl:both:3" {
		t.Errorf("LineageKey escaped = %q", got)
	}

	// Different options produce different keys
	if k.LineageKey("a", opts) == k.LineageKey("a", LineageKeyOpts{Direction: "both", Depth: 4}) {
		t.Error("Different depths should produce different keys")
	}

	// Entity prefix matches every variant of that entity only
	prefix := k.EntityPrefix("tbl")
	if !strings.HasPrefix(k.LineageKey("tbl", opts), prefix) {
		t.Error("EntityPrefix should match LineageKey")
	}
	if strings.HasPrefix(k.LineageKey("tbl_account", opts), prefix) {
		t.Error("EntityPrefix should not match other entities")
	}

	// Batch keys ignore id order
	b1 := k.BatchKey([]string{"b", "a"}, opts)
	b2 := k.BatchKey([]string{"a", "b"}, opts)
	if b1 != b2 {
		t.Errorf("BatchKey order-sensitive: %q != %q", b1, b2)
	}
	if !strings.HasPrefix(b1, k.BatchPrefix()) || !strings.HasSuffix(b1, ":both:3") {
		t.Errorf("BatchKey format unexpected: %s", b1)
	}
	if strings.HasPrefix(b1, "lineage:") {
		t.Error("BatchKey must not share the entity namespace")
	}
}

func TestBatchKeyDoesNotMutateInput(t *testing.T) {
	ids := []string{"z", "a"}
	NewDefaultKeyer().BatchKey(ids, LineageKeyOpts{})
	if ids[0] != "z" {
		t.Errorf("BatchKey sorted caller slice: %v", ids)
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "staging:")
	opts := LineageKeyOpts{Direction: "upstream", Depth: 1}

	if got := scoped.LineageKey("x", opts); got != "staging:lineage:x:upstream:1" {
		t.Errorf("ScopedKeyer LineageKey unexpected: %s", got)
	}
	if got := scoped.EntityPrefix("x"); got != "staging:lineage:x:" {
		t.Errorf("ScopedKeyer EntityPrefix unexpected: %s", got)
	}
	if got := scoped.BatchPrefix(); got != "staging:lineage-batch:" {
		t.Errorf("ScopedKeyer BatchPrefix unexpected: %s", got)
	}
	if !strings.HasPrefix(scoped.BatchKey([]string{"x"}, opts), "staging:lineage-batch:") {
		t.Error("ScopedKeyer BatchKey should be prefixed")
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.LineageKey("k", LineageKeyOpts{Direction: "both", Depth: 2})
	if key != "prefix:lineage:k:both:2" {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

// exerciseCache runs the behavior every backend must share.
func exerciseCache(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "lineage:a:both:3", []byte("A3"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "lineage:a:both:3")
	if err != nil || !hit || string(data) != "A3" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	// Overwrite
	if err := c.Set(ctx, "lineage:a:both:3", []byte("A3'"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, _, _ = c.Get(ctx, "lineage:a:both:3")
	if string(data) != "A3'" {
		t.Errorf("overwrite = %q", data)
	}

	for _, k := range []string{"lineage:a:upstream:1", "lineage:ab:both:3", "lineage-batch:h:both:3"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatalf("Set(%s): %v", k, err)
		}
	}

	n, err := c.DeletePrefix(ctx, "lineage:a:")
	if err != nil {
		t.Fatalf("DeletePrefix: %v", err)
	}
	if n != 2 {
		t.Errorf("DeletePrefix removed %d, want 2", n)
	}
	if _, hit, _ := c.Get(ctx, "lineage:a:upstream:1"); hit {
		t.Error("entity variant survived prefix delete")
	}
	if _, hit, _ := c.Get(ctx, "lineage:ab:both:3"); !hit {
		t.Error("neighbouring entity was deleted")
	}

	if err := c.Delete(ctx, "lineage:ab:both:3"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := c.Delete(ctx, "lineage:ab:both:3"); err != nil {
		t.Errorf("Delete of missing key should not error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "lineage:ab:both:3"); hit {
		t.Error("Delete did not remove key")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	exerciseCache(t, c)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "k", []byte("v"), time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Fatal("expected hit before expiry")
	}

	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expected miss after expiry")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry not evicted, len = %d", c.Len())
	}
}

func TestMemoryCacheCopiesData(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	buf := []byte("abc")
	_ = c.Set(ctx, "k", buf, 0)
	buf[0] = 'X'

	data, _, _ := c.Get(ctx, "k")
	if string(data) != "abc" {
		t.Errorf("cache aliased caller buffer: %q", data)
	}
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	exerciseCache(t, c)
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	now := time.Now()
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "k", []byte("v"), time.Minute)
	now = now.Add(time.Hour)

	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expected miss after expiry")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed from disk")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	path := c.path("k")
	_ = os.MkdirAll(filepath.Dir(path), 0755)
	_ = os.WriteFile(path, []byte("{not json"), 0644)

	_, hit, err := c.Get(ctx, "k")
	if hit || err != nil {
		t.Errorf("corrupt entry: hit %v err %v, want miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, _ := NewFileCache(dir)

	for _, k := range []string{"a", "b", "c"} {
		_ = c.Set(ctx, k, []byte(k), 0)
	}
	n, err := c.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d, want 3", n)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("Clear left %d entries in %s", len(entries), c.Dir())
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	type payload struct{ Name string }
	if err := SetJSON(ctx, c, "k", payload{Name: "x"}, 0); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	var got payload
	if err := GetJSON(ctx, c, "k", &got); err != nil || got.Name != "x" {
		t.Fatalf("GetJSON = %+v, %v", got, err)
	}

	if err := GetJSON(ctx, c, "missing", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("GetJSON(missing) = %v, want ErrCacheMiss", err)
	}

	_ = c.Set(ctx, "bad", []byte("nope"), 0)
	if err := GetJSON(ctx, c, "bad", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("GetJSON(corrupt) = %v, want ErrCacheMiss", err)
	}
	if _, hit, _ := c.Get(ctx, "bad"); hit {
		t.Error("corrupt entry should be deleted")
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		opts    Options
		wantErr error
		check   func(t *testing.T, c Cache)
	}{
		{name: "default", opts: Options{}, check: func(t *testing.T, c Cache) {
			if _, ok := c.(*MemoryCache); !ok {
				t.Errorf("got %T, want *MemoryCache", c)
			}
		}},
		{name: "file", opts: Options{Backend: BackendFile, Dir: t.TempDir()}, check: func(t *testing.T, c Cache) {
			if _, ok := c.(*FileCache); !ok {
				t.Errorf("got %T, want *FileCache", c)
			}
		}},
		{name: "none", opts: Options{Backend: BackendNone}, check: func(t *testing.T, c Cache) {
			if _, ok := c.(*NullCache); !ok {
				t.Errorf("got %T, want *NullCache", c)
			}
		}},
		{name: "unknown", opts: Options{Backend: "memcached"}, wantErr: ErrUnknownBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Open(ctx, tt.opts)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Open err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer c.Close()
			tt.check(t, c)
		})
	}

	if _, err := Open(ctx, Options{Backend: BackendFile}); err == nil {
		t.Error("file backend without dir should fail")
	}
}

func TestGlobEscape(t *testing.T) {
	tests := map[string]string{
		"lineage:a:":   "lineage:a:",
		"lineage:a*b:": `lineage:a\*b:`,
		"x?[y]":        `x\?\[y\]`,
		`back\slash`:   `back\\slash`,
	}
	for in, want := range tests {
		if got := globEscape(in); got != want {
			t.Errorf("globEscape(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPurge(t *testing.T) {
	ctx := context.Background()
	k := NewDefaultKeyer()

	mem := NewMemoryCache()
	_ = mem.Set(ctx, k.LineageKey("a", LineageKeyOpts{Direction: "both", Depth: 3}), []byte("1"), time.Minute)
	_ = mem.Set(ctx, k.BatchKey([]string{"a", "b"}, LineageKeyOpts{Direction: "both", Depth: 3}), []byte("2"), time.Minute)
	_ = mem.Set(ctx, "other:key", []byte("3"), time.Minute)

	n, err := Purge(ctx, mem, "")
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if n != 2 {
		t.Errorf("Purge removed %d, want 2", n)
	}
	if mem.Len() != 1 {
		t.Errorf("Len = %d, want 1 (unrelated key kept)", mem.Len())
	}

	fc, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	_ = fc.Set(ctx, "other:key", []byte("3"), time.Minute)
	_ = fc.Set(ctx, k.LineageKey("a", LineageKeyOpts{Direction: "up", Depth: 1}), []byte("1"), time.Minute)
	if n, err := Purge(ctx, fc, ""); err != nil || n != 2 {
		t.Errorf("Purge(file) = %d, %v; want 2, nil", n, err)
	}
}

func TestValidateNamespace(t *testing.T) {
	tests := []struct {
		ns       string
		reserved bool
	}{
		{"", false},
		{"staging", false},
		{"staging:", false},
		{"lineages", false},
		{"lineage", true},
		{"lineage:", true},
		{"lineage:eu", true},
		{"lineage-batch", true},
		{"lineage-batch:eu", true},
	}
	for _, tt := range tests {
		err := ValidateNamespace(tt.ns)
		if got := errors.Is(err, ErrReservedNamespace); got != tt.reserved {
			t.Errorf("ValidateNamespace(%q) = %v, want reserved=%v", tt.ns, err, tt.reserved)
		}
	}
}

func TestNamespacedKeysAndPurge(t *testing.T) {
	ctx := context.Background()
	opts := LineageKeyOpts{Direction: "both", Depth: 3}
	staging := Options{Namespace: "staging"}.Keyer()
	prod := Options{Namespace: "prod:"}.Keyer()

	if got := staging.LineageKey("a", opts); !strings.HasPrefix(got, "staging:lineage:") {
		t.Errorf("staging key = %q", got)
	}
	if got := prod.LineageKey("a", opts); !strings.HasPrefix(got, "prod:lineage:") {
		t.Errorf("prod key = %q (separator doubled?)", got)
	}
	if _, ok := (Options{}).Keyer().(DefaultKeyer); !ok {
		t.Error("empty namespace should use DefaultKeyer")
	}

	mem := NewMemoryCache()
	_ = mem.Set(ctx, staging.LineageKey("a", opts), []byte("1"), time.Minute)
	_ = mem.Set(ctx, staging.BatchKey([]string{"a", "b"}, opts), []byte("2"), time.Minute)
	_ = mem.Set(ctx, prod.LineageKey("a", opts), []byte("3"), time.Minute)

	n, err := Purge(ctx, mem, "staging")
	if err != nil || n != 2 {
		t.Fatalf("Purge(staging) = %d, %v; want 2, nil", n, err)
	}
	if _, ok, _ := mem.Get(ctx, prod.LineageKey("a", opts)); !ok {
		t.Error("Purge(staging) removed a prod key")
	}
}
