package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestCompleteRoundTrip verifies the request shape and response decoding.
func TestCompleteRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("expected bearer auth, got %q", got)
		}

		var req completionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if req.Model != "default" || req.Prompt != "score this" || req.System != "be terse" {
			t.Errorf("unexpected request %+v", req)
		}
		if req.MaxTokens != 2048 {
			t.Errorf("expected default max tokens, got %d", req.MaxTokens)
		}

		json.NewEncoder(w).Encode(completionResponse{Text: "B+ overall."})
	}))
	defer srv.Close()

	c, err := New(Config{Endpoint: srv.URL, APIKey: "sk-test", Model: "default"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	text, err := c.Complete(context.Background(), "score this", "be terse")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != "B+ overall." {
		t.Errorf("unexpected text %q", text)
	}
}

// TestCompleteServiceError verifies in-band and HTTP errors both surface.
func TestCompleteServiceError(t *testing.T) {
	fail := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(completionResponse{Error: "prompt rejected"})
	}))
	defer srv.Close()

	c, err := New(Config{Endpoint: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := c.Complete(context.Background(), "p", ""); err == nil {
		t.Error("expected error for a 503 response")
	}

	fail = false
	if _, err := c.Complete(context.Background(), "p", ""); err == nil {
		t.Error("expected error for an in-band service error")
	}
}

// TestBreakerOpensAfterConsecutiveFailures verifies calls fail fast once
// the service keeps erroring.
func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := New(Config{Endpoint: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 8; i++ {
		if _, err := c.Complete(context.Background(), fmt.Sprintf("p%d", i), ""); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}

	// The breaker trips after 5 consecutive failures; later calls must not
	// reach the server.
	if hits != 5 {
		t.Errorf("expected 5 requests before the breaker opened, got %d", hits)
	}
}

// TestNewRequiresEndpoint verifies the unconfigured case.
func TestNewRequiresEndpoint(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error for empty endpoint")
	}
}
