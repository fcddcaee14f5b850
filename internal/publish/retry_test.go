package publish

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRetryPolicyDelay(t *testing.T) {
	p := RetryPolicy{Attempts: 3, Base: time.Second, Max: 5 * time.Second}
	transient := &RetryableError{StatusCode: 503}
	tests := []struct {
		name    string
		err     error
		attempt int
		lo      time.Duration
		hi      time.Duration
		ok      bool
	}{
		{"first retry", transient, 0, time.Second, 1500 * time.Millisecond, true},
		{"second retry doubles", transient, 1, 2 * time.Second, 3 * time.Second, true},
		{"attempts exhausted", transient, 2, 0, 0, false},
		{"wrapped", fmt.Errorf("put document: %w", transient), 0, time.Second, 1500 * time.Millisecond, true},
		{"permanent", errors.New("bad request"), 0, 0, 0, false},
		{"retry-after wins", &RetryableError{StatusCode: 429, RetryAfter: 4 * time.Second}, 0, 4 * time.Second, 4 * time.Second, true},
		{"retry-after capped", &RetryableError{StatusCode: 429, RetryAfter: time.Hour}, 0, 5 * time.Second, 5 * time.Second, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := p.Delay(tt.err, tt.attempt)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if d < tt.lo || d > tt.hi {
				t.Errorf("delay %v outside [%v, %v]", d, tt.lo, tt.hi)
			}
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		header string
		want   time.Duration
	}{
		{"", 0},
		{"7", 7 * time.Second},
		{"-3", 0},
		{now.Add(90 * time.Second).Format(http.TimeFormat), 90 * time.Second},
		{now.Add(-time.Minute).Format(http.TimeFormat), 0},
		{"soon", 0},
	}
	for _, tt := range tests {
		if got := parseRetryAfter(tt.header, now); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}

func TestClientReportsRetryAfter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "2")
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "").PutDocument(context.Background(), "k", Document{})
	var re *RetryableError
	if !errors.As(err, &re) {
		t.Fatalf("expected retryable error, got %v", err)
	}
	if re.RetryAfter != 2*time.Second {
		t.Errorf("expected 2s Retry-After, got %v", re.RetryAfter)
	}
}
