package sms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		opts    Options
		wantErr error
	}{
		{name: "log", driver: "log"},
		{name: "empty defaults to log", driver: ""},
		{name: "http without url", driver: "http", wantErr: ErrGatewayURLRequired},
		{name: "http", driver: "http", opts: Options{HTTP: HTTPConfig{URL: "http://localhost"}}},
		{name: "unknown", driver: "pigeon", wantErr: ErrUnknownDriver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.driver, tt.opts)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMaskPhone(t *testing.T) {
	if got := MaskPhone("9876543210"); got != "******3210" {
		t.Fatalf("MaskPhone() = %q", got)
	}
	if got := MaskPhone("123"); got != "***" {
		t.Fatalf("MaskPhone() short = %q", got)
	}
}

func newTestHTTP(t *testing.T, url string) *HTTP {
	t.Helper()

	s, err := NewHTTP(HTTPConfig{URL: url, APIKey: "k", BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, MaxRetries: 2})
	if err != nil {
		t.Fatalf("NewHTTP() error = %v", err)
	}
	return s
}

func TestHTTP_Send(t *testing.T) {
	// Arrange
	var got gatewayRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer k" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	// Act
	err := newTestHTTP(t, srv.URL).Send(context.Background(), "9876543210", "code 123456")

	// Assert
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if got.To != "9876543210" || got.Text != "code 123456" {
		t.Fatalf("gateway received %+v", got)
	}
}

func TestHTTP_Send_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := newTestHTTP(t, srv.URL).Send(context.Background(), "9876543210", "x"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
}

func TestHTTP_Send_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "bad number", http.StatusBadRequest)
	}))
	defer srv.Close()

	err := newTestHTTP(t, srv.URL).Send(context.Background(), "9876543210", "x")

	var gwErr *GatewayError
	if !errors.As(err, &gwErr) || gwErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("Send() error = %v, want GatewayError 400", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestHTTP_Send_GivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if err := newTestHTTP(t, srv.URL).Send(context.Background(), "9876543210", "x"); err == nil {
		t.Fatal("Send() error = nil, want failure")
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3 (1 + 2 retries)", calls.Load())
	}
}

func TestLog_Send(t *testing.T) {
	if err := NewLog().Send(context.Background(), "", "x"); !errors.Is(err, ErrInvalidRecipient) {
		t.Fatalf("Send() error = %v, want ErrInvalidRecipient", err)
	}
	if err := NewLog().Send(context.Background(), "9876543210", "x"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
}
