package utils

import (
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvOrDefault returns ENV value or fallback default.
func EnvOrDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// ParseDate accepts "2006-01-02" or RFC3339 (frontends send both).
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("empty date")
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, errors.New("invalid date format, want YYYY-MM-DD")
}

// DateOnly truncates to midnight UTC so calendar-day keys compare equal
// regardless of the input's clock component.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NormalizeInterval applies the interval defaults: dates are truncated to
// whole days, and a missing or non-positive check-out becomes check-in + 1
// day. The result is always a valid half-open interval.
func NormalizeInterval(checkIn, checkOut time.Time) (time.Time, time.Time) {
	in := DateOnly(checkIn)
	out := DateOnly(checkOut)
	if checkOut.IsZero() || !out.After(in) {
		out = in.AddDate(0, 0, 1)
	}
	return in, out
}

// NormalizeOccupancy parses a loosely-typed occupancy value. Zero, negative
// and non-numeric inputs all normalize to 1.
func NormalizeOccupancy(v interface{}) int {
	switch n := v.(type) {
	case nil:
		return 1
	case int:
		return clampOccupancy(n)
	case int64:
		return clampOccupancy(int(n))
	case float64:
		return clampOccupancy(int(n))
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return clampOccupancy(int(f))
		}
		return 1
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 1
		}
		if i, err := strconv.Atoi(s); err == nil {
			return clampOccupancy(i)
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return clampOccupancy(int(f))
		}
		return 1
	default:
		return 1
	}
}

func clampOccupancy(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// DaysIn expands a half-open interval into its calendar days, one entry per
// day, check-out exclusive.
func DaysIn(checkIn, checkOut time.Time) []time.Time {
	days := make([]time.Time, 0)
	for d := DateOnly(checkIn); d.Before(checkOut); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
