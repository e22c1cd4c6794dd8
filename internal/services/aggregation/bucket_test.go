package aggregation

import (
	"testing"
	"time"

	domrepo "TickPull/internal/domain/repository"
)

func tfOrDie(t *testing.T, s string) domrepo.Timeframe {
	t.Helper()
	tf, err := domrepo.ParseTimeframe(s)
	if err != nil {
		t.Fatalf("parse %s: %v", s, err)
	}
	return tf
}

func TestBucketStartFloors(t *testing.T) {
	tf := tfOrDie(t, "5m")
	ts := time.Date(2024, 10, 10, 10, 7, 31, 500e6, time.UTC)
	got := BucketStart(ts, tf)
	want := time.Date(2024, 10, 10, 10, 5, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestBucketStartEpochAligned(t *testing.T) {
	// 1d buckets align to epoch zero regardless of any local calendar.
	tf := tfOrDie(t, "1d")
	ts := time.Date(2024, 10, 10, 23, 59, 59, 0, time.UTC)
	want := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	if got := BucketStart(ts, tf); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestBucketStartProperties(t *testing.T) {
	ts := time.Date(2024, 3, 7, 14, 53, 17, 123e6, time.UTC)
	for _, s := range []string{"1m", "5m", "15m", "30m", "1h", "4h", "1d"} {
		tf := tfOrDie(t, s)
		b := BucketStart(ts, tf)
		if b.After(ts) {
			t.Fatalf("%s: bucket start %v after %v", s, b, ts)
		}
		if again := BucketStart(b, tf); !again.Equal(b) {
			t.Fatalf("%s: not idempotent: %v -> %v", s, b, again)
		}
	}
}

func TestBucketStartPreEpoch(t *testing.T) {
	tf := tfOrDie(t, "1h")
	ts := time.Date(1969, 12, 31, 23, 30, 0, 0, time.UTC)
	want := time.Date(1969, 12, 31, 23, 0, 0, 0, time.UTC)
	if got := BucketStart(ts, tf); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
