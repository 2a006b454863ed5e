package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/rsilva/real-control/internal/config"
)

func cacheCtx(uid uint64, target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/clients")
	if uid != 0 {
		c.Set(UserIDKey, uid)
	}
	return c
}

func TestCacheKey_IsolatesUsers(t *testing.T) {
	t.Parallel()

	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "user_route_query"}

	// Same route and query for two different users must never share a key.
	k1 := cacheKeyFrom(cfg, cacheCtx(1, "/api/clients"))
	k2 := cacheKeyFrom(cfg, cacheCtx(2, "/api/clients"))
	if k1 == k2 {
		t.Fatalf("cache keys for different users collide: %s", k1)
	}

	// Same user, same request: stable key.
	if again := cacheKeyFrom(cfg, cacheCtx(1, "/api/clients")); again != k1 {
		t.Fatalf("cache key not stable: %s vs %s", k1, again)
	}
}

func TestCacheKey_QuerySensitivity(t *testing.T) {
	t.Parallel()

	withQuery := config.CacheConfig{Prefix: "cache", KeyStrategy: "user_route_query"}
	routeOnly := config.CacheConfig{Prefix: "cache", KeyStrategy: "user_route"}

	a := cacheKeyFrom(withQuery, cacheCtx(1, "/api/clients?page=1"))
	b := cacheKeyFrom(withQuery, cacheCtx(1, "/api/clients?page=2"))
	if a == b {
		t.Fatalf("user_route_query should distinguish query strings")
	}

	a = cacheKeyFrom(routeOnly, cacheCtx(1, "/api/clients?page=1"))
	b = cacheKeyFrom(routeOnly, cacheCtx(1, "/api/clients?page=2"))
	if a != b {
		t.Fatalf("user_route should ignore query strings")
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	t.Parallel()

	hdr := http.Header{"Content-Type": []string{"application/json"}}
	body := []byte(`{"clients":[]}`)

	bs, err := encodePayload(http.StatusOK, hdr, body)
	if err != nil {
		t.Fatalf("encodePayload: %v", err)
	}
	status, gotHdr, gotBody, ok := decodePayload(bs)
	if !ok {
		t.Fatalf("decodePayload rejected its own encoding")
	}
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if gotHdr.Get("Content-Type") != "application/json" {
		t.Fatalf("header lost: %v", gotHdr)
	}
	if string(gotBody) != string(body) {
		t.Fatalf("body mismatch: %q", gotBody)
	}
}

func TestDecodePayload_Truncated(t *testing.T) {
	t.Parallel()

	if _, _, _, ok := decodePayload([]byte{1, 2, 3}); ok {
		t.Fatalf("truncated payload should not decode")
	}
	if _, _, _, ok := decodePayload([]byte{0, 0, 0, 200, 0, 0, 0, 99}); ok {
		t.Fatalf("header length past end should not decode")
	}
}
