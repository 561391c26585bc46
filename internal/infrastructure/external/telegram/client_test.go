package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/badr-center/halaqa-tracker/internal/domain/shared"
	"github.com/badr-center/halaqa-tracker/pkg/circuitbreaker"
	"github.com/badr-center/halaqa-tracker/pkg/retry"
)

func fastRetrier() *retry.Retrier {
	return retry.New(retry.WithMaxAttempts(3), retry.WithInitialDelay(time.Millisecond), retry.WithJitter(0))
}

func TestClient_SendText(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":1,"chat":{"id":-100}}}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{Token: "TOKEN", BaseURL: srv.URL, Retrier: fastRetrier()})
	sharer := NewChatSharer(c, -100)

	require.NoError(t, sharer.Share(context.Background(), "السلام عليكم"))
	assert.Equal(t, "السلام عليكم", got["text"])
	assert.Equal(t, float64(-100), got["chat_id"])
	assert.Equal(t, "telegram", sharer.Name())
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"ok":false,"error_code":502,"description":"Bad Gateway"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{Token: "T", BaseURL: srv.URL, Retrier: fastRetrier()})
	msgs, err := c.SendText(context.Background(), 1, "hi")
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{Token: "T", BaseURL: srv.URL, Retrier: fastRetrier()})
	_, err := c.SendText(context.Background(), 1, "hi")

	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrChatSendFailed)
	assert.True(t, shared.IsExternalService(err))
	assert.Contains(t, err.Error(), "bot was blocked")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_OpenBreakerSkipsRequests(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":403,"description":"Forbidden"}`))
	}))
	defer srv.Close()

	breaker := circuitbreaker.New("test", circuitbreaker.WithFailureThreshold(1), circuitbreaker.WithTimeout(time.Hour))
	c := NewClient(ClientConfig{Token: "T", BaseURL: srv.URL, Retrier: fastRetrier(), Breaker: breaker})

	_, err := c.SendText(context.Background(), 1, "hi")
	require.Error(t, err)
	assert.Equal(t, circuitbreaker.StateOpen, breaker.State())

	_, err = c.SendText(context.Background(), 1, "hi")
	require.Error(t, err)
	assert.True(t, circuitbreaker.IsRejected(err))
	assert.True(t, shared.IsExternalService(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, SplitMessage("short", 10))

	text := "aaaa\nbbbb\ncccc\n"
	parts := SplitMessage(text, 10)
	assert.Equal(t, []string{"aaaa\nbbbb\n", "cccc\n"}, parts)
	assert.Equal(t, text, strings.Join(parts, ""))

	long := strings.Repeat("ب", 25)
	parts = SplitMessage(long, 10)
	require.Len(t, parts, 3)
	assert.Equal(t, long, strings.Join(parts, ""))
}
