package amqp

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestReceiptScanMessageRoundTrip(t *testing.T) {
	msg := NewReceiptScanMessage("9c4b2c9e-0b0a-4de0-9a3e-0a9f0b1c2d3e")

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	decoded, err := ReceiptScanMessageFromJSON(data)
	if err != nil {
		t.Fatalf("ReceiptScanMessageFromJSON failed: %v", err)
	}

	if decoded.ExpenseID != msg.ExpenseID {
		t.Errorf("ExpenseID = %q, want %q", decoded.ExpenseID, msg.ExpenseID)
	}
	if decoded.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
}

func TestReceiptScanMessageFromJSONInvalid(t *testing.T) {
	if _, err := ReceiptScanMessageFromJSON([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	client := &Client{url: "amqp://localhost:5672"}

	for i := 0; i < maxFailures; i++ {
		if client.isCircuitOpen() {
			t.Fatalf("circuit open after %d failures, want %d", i, maxFailures)
		}
		client.recordFailure()
	}

	if !client.isCircuitOpen() {
		t.Error("circuit should be open after max failures")
	}
}

func TestCircuitBreakerResetsOnSuccess(t *testing.T) {
	client := &Client{url: "amqp://localhost:5672"}

	for i := 0; i < maxFailures; i++ {
		client.recordFailure()
	}
	if !client.isCircuitOpen() {
		t.Fatal("circuit should be open")
	}

	client.recordSuccess()

	if client.isCircuitOpen() {
		t.Error("circuit should be closed after success")
	}
	if got := atomic.LoadInt64(&client.failureCount); got != 0 {
		t.Errorf("failureCount = %d, want 0", got)
	}
}

func TestCircuitBreakerHalfOpenAfterTimeout(t *testing.T) {
	client := &Client{url: "amqp://localhost:5672"}

	for i := 0; i < maxFailures; i++ {
		client.recordFailure()
	}
	atomic.StoreInt64(&client.lastFailure, time.Now().Add(-openTimeout-time.Second).UnixNano())

	if client.isCircuitOpen() {
		t.Error("circuit should allow a probe after the open timeout")
	}
	if got := atomic.LoadInt32(&client.state); got != StateHalfOpen {
		t.Errorf("state = %d, want %d (half-open)", got, StateHalfOpen)
	}
}

func TestCircuitBreakerConcurrentAccess(t *testing.T) {
	client := &Client{url: "amqp://localhost:5672"}

	// One client is shared by every handler goroutine; breaker state must
	// stay race-free under the race detector.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				client.recordFailure()
				client.isCircuitOpen()
				if n%2 == 0 {
					client.recordSuccess()
				}
			}
		}(i)
	}
	wg.Wait()

	if got := atomic.LoadInt32(&client.state); got != StateClosed && got != StateOpen {
		t.Errorf("state = %d, want closed or open", got)
	}
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second}, // capped
		{10, 30 * time.Second},
	}

	for _, tt := range tests {
		if got := exponentialBackoff(tt.attempt); got != tt.want {
			t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"connection closed", errors.New("Exception (504) Reason: \"channel/connection is not open\": connection closed"), true},
		{"unexpected EOF", errors.New("read: unexpected EOF"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"closed network", errors.New("use of closed network connection"), true},
		{"validation", errors.New("expense not found"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.want {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
