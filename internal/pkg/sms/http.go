package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// ErrGatewayURLRequired is returned when the HTTP driver has no URL.
var ErrGatewayURLRequired = errors.New("sms: gateway url is required")

// HTTPConfig configures the gateway client.
type HTTPConfig struct {
	URL        string
	APIKey     string
	SenderID   string
	Timeout    time.Duration
	MaxRetries uint64
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Client     *http.Client
}

// GatewayError is a non-2xx answer from the gateway.
type GatewayError struct {
	StatusCode int
	Body       string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("sms: gateway responded %d: %s", e.StatusCode, e.Body)
}

// HTTP posts messages to a JSON SMS gateway.
type HTTP struct {
	cfg    HTTPConfig
	client *http.Client
}

type gatewayRequest struct {
	To     string `json:"to"`
	From   string `json:"from,omitempty"`
	Text   string `json:"text"`
	Source string `json:"source"`
}

func NewHTTP(cfg HTTPConfig) (*HTTP, error) {
	if cfg.URL == "" {
		return nil, ErrGatewayURLRequired
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 200 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 5 * time.Second
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &HTTP{cfg: cfg, client: client}, nil
}

// Send posts the message, retrying network errors, 429 and 5xx answers.
func (h *HTTP) Send(ctx context.Context, phone, text string) error {
	if phone == "" {
		return ErrInvalidRecipient
	}

	body, err := json.Marshal(gatewayRequest{To: phone, From: h.cfg.SenderID, Text: text, Source: "watercan"})
	if err != nil {
		return fmt.Errorf("sms: encode request: %w", err)
	}

	b := retry.NewFibonacci(h.cfg.BaseDelay)
	b = retry.WithCappedDuration(h.cfg.MaxDelay, b)
	b = retry.WithMaxRetries(h.cfg.MaxRetries, b)

	attempt := 0
	return retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		err := h.post(ctx, body)
		if err == nil {
			return nil
		}

		var gwErr *GatewayError
		if errors.As(err, &gwErr) && gwErr.StatusCode != http.StatusTooManyRequests && gwErr.StatusCode < 500 {
			return err
		}

		slog.WarnContext(ctx, "sms gateway attempt failed", "to", MaskPhone(phone), "attempt", attempt, "error", err)
		return retry.RetryableError(err)
	})
}

func (h *HTTP) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sms: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.cfg.APIKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms: request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return &GatewayError{StatusCode: resp.StatusCode, Body: string(msg)}
}
