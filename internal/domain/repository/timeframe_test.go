package repository

import (
	"errors"
	"testing"
	"time"
)

func TestParseTimeframe(t *testing.T) {
	cases := []struct {
		in      string
		minutes int64
	}{
		{"1m", 1},
		{"5m", 5},
		{"15m", 15},
		{"30m", 30},
		{"1h", 60},
		{"4h", 240},
		{"1d", 1440},
	}
	for _, c := range cases {
		tf, err := ParseTimeframe(c.in)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", c.in, err)
		}
		if tf.Minutes() != c.minutes {
			t.Fatalf("%s: minutes %d, want %d", c.in, tf.Minutes(), c.minutes)
		}
		if tf.String() != c.in {
			t.Fatalf("%s: round trip %s", c.in, tf.String())
		}
	}
}

func TestParseTimeframeTickSentinel(t *testing.T) {
	tf, err := ParseTimeframe("tick")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if !tf.IsTick() {
		t.Fatalf("expected tick sentinel")
	}
	if tf.Minutes() != 0 {
		t.Fatalf("tick sentinel minutes %d", tf.Minutes())
	}
}

func TestParseTimeframeInvalid(t *testing.T) {
	for _, in := range []string{"", "m", "5", "5s", "5x", "m5", "1.5m", "-1m", "0m", "ticks"} {
		if _, err := ParseTimeframe(in); !errors.Is(err, ErrInvalidTimeframe) {
			t.Fatalf("%q: expected ErrInvalidTimeframe, got %v", in, err)
		}
	}
}

func TestTimeframeDuration(t *testing.T) {
	tf, _ := ParseTimeframe("4h")
	if tf.Duration() != 4*time.Hour {
		t.Fatalf("unexpected duration %v", tf.Duration())
	}
}

func TestNormalizeTimeframe(t *testing.T) {
	if tf := NormalizeTimeframe(""); tf != DefaultTimeframe() {
		t.Fatalf("expected default for empty")
	}
	if tf := NormalizeTimeframe("bogus"); tf != DefaultTimeframe() {
		t.Fatalf("expected default for invalid")
	}
	if tf := NormalizeTimeframe("5m"); tf.Minutes() != 5 {
		t.Fatalf("unexpected %v", tf)
	}
}
