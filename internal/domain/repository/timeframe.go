package repository

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTimeframe is returned for tokens outside the <integer><unit>
// grammar (units m, h, d) and for zero-length intervals.
var ErrInvalidTimeframe = errors.New("invalid timeframe")

// TimeframeUnit is the timeframe unit letter: 'm', 'h' or 'd'.
type TimeframeUnit byte

const (
	UnitMinute TimeframeUnit = 'm'
	UnitHour   TimeframeUnit = 'h'
	UnitDay    TimeframeUnit = 'd'
)

// Timeframe is a parsed bar resolution such as "5m", "4h" or "1d".
// The zero value is the "tick" sentinel: pass ticks through, no aggregation.
type Timeframe struct {
	Count int
	Unit  TimeframeUnit
}

// TickTimeframe is the pass-through sentinel accepted at the boundary as "tick".
var TickTimeframe = Timeframe{}

// ParseTimeframe parses a timeframe token. "tick" is recognized distinctly
// from the <integer><unit> grammar.
func ParseTimeframe(s string) (Timeframe, error) {
	if s == "tick" {
		return TickTimeframe, nil
	}
	if len(s) < 2 {
		return Timeframe{}, fmt.Errorf("%w: %q", ErrInvalidTimeframe, s)
	}
	unit := TimeframeUnit(s[len(s)-1])
	switch unit {
	case UnitMinute, UnitHour, UnitDay:
	default:
		return Timeframe{}, fmt.Errorf("%w: %q", ErrInvalidTimeframe, s)
	}
	count := 0
	for i := 0; i < len(s)-1; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return Timeframe{}, fmt.Errorf("%w: %q", ErrInvalidTimeframe, s)
		}
		count = count*10 + int(c-'0')
	}
	if count <= 0 {
		return Timeframe{}, fmt.Errorf("%w: %q", ErrInvalidTimeframe, s)
	}
	return Timeframe{Count: count, Unit: unit}, nil
}

// IsTick reports whether tf is the pass-through sentinel.
func (tf Timeframe) IsTick() bool { return tf.Count == 0 }

// Minutes returns the interval length in minutes; zero for the tick sentinel.
func (tf Timeframe) Minutes() int64 {
	switch tf.Unit {
	case UnitHour:
		return int64(tf.Count) * 60
	case UnitDay:
		return int64(tf.Count) * 1440
	default:
		return int64(tf.Count)
	}
}

// Duration returns the interval as a time.Duration.
func (tf Timeframe) Duration() time.Duration {
	return time.Duration(tf.Minutes()) * time.Minute
}

func (tf Timeframe) String() string {
	if tf.IsTick() {
		return "tick"
	}
	return fmt.Sprintf("%d%c", tf.Count, tf.Unit)
}

// DefaultTimeframe returns the default bar resolution.
func DefaultTimeframe() Timeframe { return Timeframe{Count: 1, Unit: UnitMinute} }

// NormalizeTimeframe converts a raw string to a valid timeframe (or default).
func NormalizeTimeframe(s string) Timeframe {
	if s == "" {
		return DefaultTimeframe()
	}
	if tf, err := ParseTimeframe(s); err == nil {
		return tf
	}
	return DefaultTimeframe()
}
