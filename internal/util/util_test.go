package util

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	attempts := 0
	targetAttempts := 3

	err := Retry(context.Background(), 5, 0, func() error {
		attempts++
		if attempts < targetAttempts {
			return errors.New("transient error")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Retry returned unexpected error: %v", err)
	}
	if attempts != targetAttempts {
		t.Errorf("Retry called fn %d times, want %d", attempts, targetAttempts)
	}
}

func TestRetryAllFail(t *testing.T) {
	attempts := 0
	maxAttempts := 3

	err := Retry(context.Background(), maxAttempts, 0, func() error {
		attempts++
		return errors.New("persistent error")
	})

	if err == nil {
		t.Fatal("Retry should return error when all attempts fail")
	}
	if attempts != maxAttempts {
		t.Errorf("Retry called fn %d times, want %d", attempts, maxAttempts)
	}
}

func TestRateLimiterNew(t *testing.T) {
	rl := NewRateLimiter(60)
	if rl == nil {
		t.Fatal("NewRateLimiter returned nil")
	}
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait should pass immediately: %v", err)
	}
}

func TestNewLoggerLevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, "warn", "json")

	log.Info("hidden")
	log.Warn("visible", "k", "v")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not a single JSON line: %v\n%s", err, buf.String())
	}
	if entry["msg"] != "visible" {
		t.Errorf("msg = %v, want visible", entry["msg"])
	}
}

func TestMarketSession(t *testing.T) {
	day := func(hour, min int) time.Time {
		// 2026-08-24 is a Monday.
		return time.Date(2026, 8, 24, hour, min, 0, 0, newYork)
	}

	tests := []struct {
		at   time.Time
		want string
	}{
		{day(3, 0), SessionClosed},
		{day(8, 0), SessionPre},
		{day(9, 30), SessionOpen},
		{day(15, 59), SessionOpen},
		{day(16, 0), SessionPost},
		{day(21, 0), SessionClosed},
		{time.Date(2026, 8, 22, 12, 0, 0, 0, newYork), SessionClosed}, // Saturday
	}
	for _, tt := range tests {
		if got := MarketSession(tt.at); got != tt.want {
			t.Errorf("MarketSession(%v) = %q, want %q", tt.at, got, tt.want)
		}
	}

	if IsMarketOpen(day(12, 0)) != true {
		t.Error("midday Monday should be open")
	}
}
