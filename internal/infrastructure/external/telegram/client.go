// Package telegram sends the daily report to a chat through the Telegram Bot
// API. Only the sendMessage method is used.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/badr-center/halaqa-tracker/internal/domain/shared"
	"github.com/badr-center/halaqa-tracker/pkg/circuitbreaker"
	"github.com/badr-center/halaqa-tracker/pkg/logger"
	"github.com/badr-center/halaqa-tracker/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// MaxMessageLength is the Bot API limit for one message, in characters.
const MaxMessageLength = 4096

// ClientConfig contains configuration for the Telegram client.
type ClientConfig struct {
	Token   string
	BaseURL string
	Timeout time.Duration

	// Retrier defaults to retry.ChatRetrier.
	Retrier *retry.Retrier
	// Breaker defaults to circuitbreaker.ChatBreaker.
	Breaker *circuitbreaker.CircuitBreaker
	Logger  *logger.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(token string) ClientConfig {
	return ClientConfig{
		Token:   token,
		BaseURL: "https://api.telegram.org",
		Timeout: 15 * time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// API TYPES
// ══════════════════════════════════════════════════════════════════════════════

// Message is the subset of a sent message the tracker reads back.
type Message struct {
	MessageID int64 `json:"message_id"`
	Date      int64 `json:"date"`
	Chat      struct {
		ID int64 `json:"id"`
	} `json:"chat"`
}

// APIResponse represents a Telegram API response.
type APIResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	Description string          `json:"description,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Parameters  *struct {
		RetryAfter int `json:"retry_after,omitempty"`
	} `json:"parameters,omitempty"`
}

// APIError represents a Telegram API error.
type APIError struct {
	Code        int
	Description string
	RetryAfter  int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram api error %d: %s", e.Code, e.Description)
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is a minimal Telegram Bot API client.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	retrier    *retry.Retrier
	breaker    *circuitbreaker.CircuitBreaker
	log        *logger.Logger
}

// NewClient creates a new Telegram client.
func NewClient(config ClientConfig) *Client {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.telegram.org"
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	if config.Retrier == nil {
		config.Retrier = retry.ChatRetrier()
	}
	if config.Logger == nil {
		config.Logger = logger.Nop()
	}
	log := config.Logger.With(logger.Component("telegram"))
	if config.Breaker == nil {
		config.Breaker = circuitbreaker.ChatBreaker(func(name string, from, to circuitbreaker.State) {
			log.Warn("circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		})
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		retrier:    config.Retrier,
		breaker:    config.Breaker,
		log:        log,
	}
}

// SendText sends plain text to chatID. Text longer than one message is split
// on line boundaries and sent in order. While the breaker is open no request
// is made.
func (c *Client) SendText(ctx context.Context, chatID int64, text string) ([]Message, error) {
	var sent []Message
	for _, part := range SplitMessage(text, MaxMessageLength) {
		var msg Message
		body := map[string]any{"chat_id": chatID, "text": part}
		err := c.breaker.Execute(ctx, func(ctx context.Context) error {
			return c.callAPI(ctx, "sendMessage", body, &msg)
		})
		if err != nil {
			return sent, fmt.Errorf("%w: %w", shared.ErrChatSendFailed, err)
		}
		sent = append(sent, msg)
	}
	return sent, nil
}

func (c *Client) callAPI(ctx context.Context, method string, body map[string]any, result any) error {
	return c.retrier.Do(ctx, func(ctx context.Context) error {
		err := c.doAPICall(ctx, method, body, result)
		if err == nil {
			return nil
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
			c.log.Warn("rate limited", logger.Int("retry_after", apiErr.RetryAfter))
			timer := time.NewTimer(time.Duration(apiErr.RetryAfter) * time.Second)
			select {
			case <-ctx.Done():
				timer.Stop()
				return retry.Permanent(ctx.Err())
			case <-timer.C:
			}
		}
		if isRetryable(err) {
			return retry.Retryable(err)
		}
		return err
	})
}

func (c *Client) doAPICall(ctx context.Context, method string, body map[string]any, result any) error {
	url := fmt.Sprintf("%s/bot%s/%s", c.config.BaseURL, c.config.Token, method)

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return &APIError{Code: resp.StatusCode, Description: fmt.Sprintf("unreadable response: %v", err)}
	}
	if !apiResp.OK {
		apiErr := &APIError{Code: apiResp.ErrorCode, Description: apiResp.Description}
		if apiResp.Parameters != nil {
			apiErr.RetryAfter = apiResp.Parameters.RetryAfter
		}
		return apiErr
	}

	if result != nil && len(apiResp.Result) > 0 {
		if err := json.Unmarshal(apiResp.Result, result); err != nil {
			return fmt.Errorf("unmarshal result: %w", err)
		}
	}
	return nil
}

// isRetryable treats rate limits, server errors and network failures as
// transient.
func isRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
	}
	msg := err.Error()
	for _, s := range []string{"timeout", "connection refused", "temporary", "reset", "EOF"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// SplitMessage cuts text into parts of at most limit characters, preferring
// line boundaries.
func SplitMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var parts []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if curLen > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		n := utf8.RuneCountInString(line)
		if curLen+n > limit {
			flush()
		}
		for n > limit {
			runes := []rune(line)
			parts = append(parts, string(runes[:limit]))
			line = string(runes[limit:])
			n -= limit
		}
		cur.WriteString(line)
		curLen += n
	}
	flush()
	return parts
}
