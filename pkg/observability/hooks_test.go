package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Lineage hooks
	l := NoopLineageHooks{}
	l.OnFetchStart(ctx, "backend", "tbl_account")
	l.OnFetchComplete(ctx, "backend", "tbl_account", 12, time.Second, nil)
	l.OnFetchRetry(ctx, "tbl_account", 1, errors.New("boom"))
	l.OnStaleServed(ctx, "tbl_account", 6*time.Minute)
	l.OnNormalize(ctx, "server", 2)
	l.OnInvalidate(ctx, "tbl_account", 3)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "lineage")
	c.OnCacheStale(ctx, "lineage")
	c.OnCacheMiss(ctx, "batch")
	c.OnCacheSet(ctx, "lineage", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "lineage.internal", "/lineage/tbl_account")
	h.OnResponse(ctx, "GET", "lineage.internal", "/lineage/tbl_account", 200, time.Second)
	h.OnError(ctx, "GET", "lineage.internal", "/lineage/tbl_account", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Lineage().(NoopLineageHooks); !ok {
		t.Error("Lineage() should return NoopLineageHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customLineage := &testLineageHooks{}
	SetLineageHooks(customLineage)
	if Lineage() != customLineage {
		t.Error("SetLineageHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Lineage().(NoopLineageHooks); !ok {
		t.Error("Reset() should restore NoopLineageHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testLineageHooks{}
	SetLineageHooks(custom)

	// Setting nil should be ignored
	SetLineageHooks(nil)

	if Lineage() != custom {
		t.Error("SetLineageHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testLineageHooks struct{ NoopLineageHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
