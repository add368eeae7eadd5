// Package timeconv normalizes timestamps between Unix epoch seconds (FSR) and ISO-8601
// strings (FAS). Both conversions are total: unusable input falls back to the current time.
package timeconv

import (
	"encoding/json"
	"log/slog"
	"math"
	"strings"
	"time"
)

// MillisecondsThreshold separates epoch seconds from epoch milliseconds. Any seconds value
// before the year 2286 is below it.
const MillisecondsThreshold = 10_000_000_000

// ISOLayout matches the shape of JavaScript's Date.prototype.toISOString.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// maxMillis is the largest magnitude a JavaScript Date can hold.
const maxMillis = 8.64e15

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
	"2006-01",
	time.RFC1123,
	time.RFC1123Z,
	time.RFC850,
	time.ANSIC,
	time.UnixDate,
	time.RubyDate,
	"Mon Jan 02 2006 15:04:05 GMT-0700",
	"January 2, 2006 15:04:05",
	"January 2, 2006",
}

// Normalizer converts timestamps. The zero value uses time.Now and slog.Default.
type Normalizer struct {
	now    func() time.Time
	logger *slog.Logger
}

func New(now func() time.Time, logger *slog.Logger) *Normalizer {
	return &Normalizer{now: now, logger: logger}
}

// ToEpochSeconds converts v to whole seconds since the epoch.
func (n *Normalizer) ToEpochSeconds(v any) int64 {
	if isAbsent(v) {
		return n.clock().Unix()
	}

	if f, ok := asFloat(v); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			n.log().Warn("Invalid date value, using current time", "value", v)

			return n.clock().Unix()
		}

		if f > MillisecondsThreshold {
			return int64(math.Floor(f / 1000))
		}

		return int64(math.Floor(f))
	}

	s, ok := v.(string)
	if !ok {
		n.log().Warn("Invalid date value, using current time", "value", v)

		return n.clock().Unix()
	}

	t, ok := Parse(s)
	if !ok {
		n.log().Warn("Invalid date value, using current time", "value", s)

		return n.clock().Unix()
	}

	return int64(math.Floor(float64(t.UnixMilli()) / 1000))
}

// ToISO8601 converts v to an ISO-8601 string. Valid date strings are returned unchanged.
func (n *Normalizer) ToISO8601(v any) string {
	if isAbsent(v) {
		return Format(n.clock())
	}

	if s, ok := v.(string); ok {
		if _, ok := Parse(s); ok {
			return s
		}

		n.log().Warn("Invalid date string, using current time", "value", s)

		return Format(n.clock())
	}

	f, ok := asFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		n.log().Warn("Invalid date value, using current time", "value", v)

		return Format(n.clock())
	}

	millis := f
	if millis < MillisecondsThreshold {
		millis *= 1000
	}

	if math.Abs(millis) > maxMillis {
		n.log().Warn("Invalid date value, using current time", "value", v)

		return Format(n.clock())
	}

	return Format(time.UnixMilli(int64(millis)))
}

// Now returns the normalizer's current time.
func (n *Normalizer) Now() time.Time {
	return n.clock()
}

// Format renders t the way FAS exports do.
func Format(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// Parse accepts the calendar formats found in exports. Strings without a zone are UTC.
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func (n *Normalizer) clock() time.Time {
	if n == nil || n.now == nil {
		return time.Now()
	}

	return n.now()
}

func (n *Normalizer) log() *slog.Logger {
	if n == nil || n.logger == nil {
		return slog.Default()
	}

	return n.logger
}

func isAbsent(v any) bool {
	if v == nil {
		return true
	}

	s, ok := v.(string)

	return ok && s == ""
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()

		return f, err == nil
	default:
		return 0, false
	}
}
