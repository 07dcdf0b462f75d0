package main

import (
	"testing"

	"github.com/streadway/amqp"
)

func TestRetriesFrom(t *testing.T) {
	cases := []struct {
		name    string
		headers amqp.Table
		want    int
	}{
		{"missing header", amqp.Table{}, 0},
		{"nil table", nil, 0},
		{"int", amqp.Table{"x-retry-count": 2}, 2},
		{"int32", amqp.Table{"x-retry-count": int32(3)}, 3},
		{"int64", amqp.Table{"x-retry-count": int64(1)}, 1},
		{"wrong type", amqp.Table{"x-retry-count": "2"}, 0},
	}

	for _, tc := range cases {
		if got := retriesFrom(tc.headers); got != tc.want {
			t.Errorf("%s: got %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestNextRetryIncrementsCounter(t *testing.T) {
	headers, ok := nextRetry(nil)
	if !ok {
		t.Fatal("first failure should be retried")
	}
	if got := headers["x-retry-count"]; got != int32(1) {
		t.Errorf("expected x-retry-count 1, got %v", got)
	}

	// Each republication must carry an advanced counter so the chain
	// terminates instead of looping with the original headers.
	headers, ok = nextRetry(headers)
	if !ok {
		t.Fatal("second failure should be retried")
	}
	if got := headers["x-retry-count"]; got != int32(2) {
		t.Errorf("expected x-retry-count 2, got %v", got)
	}
}

func TestNextRetryStopsAtCap(t *testing.T) {
	headers := amqp.Table{"x-retry-count": int32(maxRunRetries)}
	if _, ok := nextRetry(headers); ok {
		t.Error("expected retry budget exhausted at cap")
	}
}
