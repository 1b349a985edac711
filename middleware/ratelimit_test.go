package middleware

import (
	"testing"
	"time"
)

func TestTokenBucketExhaustion(t *testing.T) {
	bucket := NewTokenBucket(3, 0.0001) // effectively no refill within the test

	for i := 0; i < 3; i++ {
		if !bucket.Allow() {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if bucket.Allow() {
		t.Error("request beyond capacity should be denied")
	}
}

func TestTokenBucketRefill(t *testing.T) {
	bucket := NewTokenBucket(1, 1000) // refills instantly at test timescales

	if !bucket.Allow() {
		t.Fatal("first request should be allowed")
	}
	time.Sleep(5 * time.Millisecond)
	if !bucket.Allow() {
		t.Error("request after refill should be allowed")
	}
}

func TestRateLimiterPerKeyIsolation(t *testing.T) {
	limiter := NewRateLimiter(1, 600)

	if !limiter.Allow("10.0.0.1") {
		t.Fatal("first request for key A should be allowed")
	}
	if limiter.Allow("10.0.0.1") {
		t.Error("second request for key A should be denied")
	}
	// A different key gets its own bucket.
	if !limiter.Allow("10.0.0.2") {
		t.Error("first request for key B should be allowed")
	}
}
