package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/refurbstock-backend/pkg/errors"
)

const testBodyCap = 1 << 10

// memStore keeps idempotency records in a map keyed like the redis client.
type memStore map[string]string

func (m memStore) Get(_ context.Context, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m memStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m[key], _ = value.(string)
	return nil
}

func (m memStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, taken := m[key]; taken {
		return false, nil
	}
	return true, m.Set(ctx, key, value, ttl)
}

func (m memStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m, key)
	}
	return nil
}

func (m memStore) IdempotencyKey(scope, id string) string {
	return "mem:" + scope + ":" + id
}

func routedRequest(method, target, pattern string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	rc := chi.NewRouteContext()
	rc.RoutePatterns = []string{pattern}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func postWithKey(h http.Handler, path, key, body string) *httptest.ResponseRecorder {
	req := routedRequest(http.MethodPost, path, path, strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Error.Code
}

func TestRouteTTL(t *testing.T) {
	cases := map[string]struct {
		method, pattern string
		ttl             time.Duration
		guarded         bool
	}{
		"create item": {http.MethodPost, "/api/v1/items", itemIdempotencyTTL, true},
		"import":      {http.MethodPost, "/api/v1/imports", importIdempotencyTTL, true},
		"edit item":   {http.MethodPatch, "/api/v1/items/{itemId}", 0, false},
		"list item":   {http.MethodPost, "/api/v1/items/{itemId}/listings/{platform}", 0, false},
		"login":       {http.MethodPost, "/api/v1/auth/login", 0, false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ttl, ok := routeTTL(tc.method, tc.pattern)
			require.Equal(t, tc.guarded, ok)
			if ok {
				assert.Equal(t, tc.ttl, ttl)
			}
		})
	}
}

func TestRoutePatternWildcardFallback(t *testing.T) {
	assert.Equal(t, "/api/v1/items", routePattern(routedRequest(http.MethodPost, "/api/v1/items/", "/api/*", nil)))
	assert.Equal(t, "/api/v1/items", routePattern(routedRequest(http.MethodPost, "/api/v1/items", "/api/v1/items", nil)))
}

func TestIdempotencyRequiresKey(t *testing.T) {
	ran := false
	h := Idempotency(memStore{}, testBodyCap, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		ran = true
		w.WriteHeader(http.StatusCreated)
	}))

	rec := postWithKey(h, "/api/v1/items", "", `{"brand":"Apple"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, ran)
}

func TestIdempotencyReplaysFirstResponse(t *testing.T) {
	calls := 0
	h := Idempotency(memStore{}, testBodyCap, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"item-1"}`))
	}))

	first := postWithKey(h, "/api/v1/items", "abc", `{"brand":"Apple"}`)
	require.Equal(t, http.StatusCreated, first.Code)

	replay := postWithKey(h, "/api/v1/items", "abc", `{"brand":"Apple"}`)
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "application/json", replay.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":"item-1"}`, replay.Body.String())
	assert.Equal(t, 1, calls)
}

func TestIdempotencyRejectsDifferentBody(t *testing.T) {
	h := Idempotency(memStore{}, testBodyCap, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	postWithKey(h, "/api/v1/items", "xyz", `{"brand":"Apple"}`)
	rec := postWithKey(h, "/api/v1/items", "xyz", `{"brand":"Samsung"}`)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeIdempotency), errorCode(t, rec))
}

func TestIdempotencyDoesNotStoreServerErrors(t *testing.T) {
	store := memStore{}
	calls := 0
	h := Idempotency(store, testBodyCap, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	postWithKey(h, "/api/v1/imports", "retry-me", "file")
	postWithKey(h, "/api/v1/imports", "retry-me", "file")

	assert.Equal(t, 2, calls)
	assert.Empty(t, store)
}

func TestIdempotencyRejectsInFlightDuplicate(t *testing.T) {
	mw := Idempotency(memStore{}, testBodyCap, nil)
	var dup *httptest.ResponseRecorder
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// retry lands while the first request still holds the key
		dup = postWithKey(mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Error("duplicate reached the handler")
		})), "/api/v1/items", "slow", `{"brand":"Apple"}`)
		w.WriteHeader(http.StatusCreated)
	}))

	rec := postWithKey(h, "/api/v1/items", "slow", `{"brand":"Apple"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, dup)
	assert.Equal(t, http.StatusConflict, dup.Code)
	assert.Equal(t, string(pkgerrors.CodeIdempotency), errorCode(t, dup))
}

func TestIdempotencyRejectsOversizedBody(t *testing.T) {
	store := memStore{}
	ran := false
	h := Idempotency(store, testBodyCap, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		ran = true
		w.WriteHeader(http.StatusOK)
	}))

	rec := postWithKey(h, "/api/v1/imports", "huge", strings.Repeat("x", testBodyCap+1))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeValidation), errorCode(t, rec))
	assert.Contains(t, rec.Body.String(), "request body too large")
	assert.False(t, ran)
	assert.Empty(t, store)

	ok := postWithKey(h, "/api/v1/imports", "fits", strings.Repeat("x", testBodyCap))
	assert.Equal(t, http.StatusOK, ok.Code)
}

func TestIdempotencyScopeIncludesOperator(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/items", nil)
	req = req.WithContext(WithOperator(req.Context(), "admin", "jti"))
	assert.Equal(t, "admin|POST|/api/v1/items", buildScope(req))
}
