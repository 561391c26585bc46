package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestCompositeHealthChecker(t *testing.T) {
	up := PingCheck(pingFunc(func(context.Context) error { return nil }))
	down := PingCheck(pingFunc(func(context.Context) error { return errors.New("dial tcp: refused") }))

	c := NewCompositeHealthChecker("v1")
	c.AddCheck("storage", up)

	status := c.Check(context.Background())
	assert.True(t, status.Healthy)
	assert.Equal(t, StatusOK, status.Status)
	assert.Equal(t, "ok", status.Checks["storage"].Message)

	c.AddOptionalCheck("redis", down)
	status = c.Check(context.Background())
	assert.True(t, status.Healthy)
	assert.Equal(t, StatusDegraded, status.Status)
	assert.Equal(t, "degraded: redis", status.Message)
	assert.True(t, status.Checks["redis"].Optional)

	c.AddCheck("storage", down)
	status = c.Check(context.Background())
	assert.False(t, status.Healthy)
	assert.Equal(t, StatusUnhealthy, status.Status)
	assert.Equal(t, "failed: storage, redis", status.Message)
}

func TestCompositeHealthChecker_Timeout(t *testing.T) {
	c := NewCompositeHealthChecker("v1")
	c.SetTimeout(10 * time.Millisecond)
	c.AddCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	status := c.Check(context.Background())
	assert.False(t, status.Healthy)
	assert.Contains(t, status.Checks["slow"].Message, "deadline exceeded")
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) MiddlewareFunc {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(mw("a"), mw("b"), SecurityHeadersMiddleware)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b", "handler"}, order)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestRequestSizeLimit(t *testing.T) {
	h := RequestSizeLimitMiddleware(4)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("too long")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("ok")))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
