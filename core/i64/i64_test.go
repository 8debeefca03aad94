package i64

import (
	"math"
	"testing"
	"time"
)

func TestToU64(t *testing.T) {
	tests := []struct {
		in   int64
		want uint64
	}{
		{0, 0},
		{1, 1},
		{math.MaxInt64, math.MaxInt64},
		{-1, math.MaxUint64},
		{math.MinInt64, uint64(math.MaxInt64) + 1},
	}
	for _, tt := range tests {
		if got := ToU64(tt.in); got != tt.want {
			t.Errorf("ToU64(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFromU64(t *testing.T) {
	tests := []struct {
		in   uint64
		want int64
	}{
		{0, 0},
		{1, 1},
		{math.MaxInt64, math.MaxInt64},
		{math.MaxUint64, -1},
		{uint64(math.MaxInt64) + 1, math.MinInt64},
	}
	for _, tt := range tests {
		if got := FromU64(tt.in); got != tt.want {
			t.Errorf("FromU64(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSlugRoundTrip(t *testing.T) {
	tests := []struct {
		value int64
		slug  string
	}{
		{0, "0"},
		{1, "1"},
		{math.MaxInt64, "9223372036854775807"},
		{math.MinInt64, "9223372036854775808"},
		{-1, "18446744073709551615"},
	}
	for _, tt := range tests {
		if got := ToSlug(tt.value); got != tt.slug {
			t.Errorf("ToSlug(%d) = %q, want %q", tt.value, got, tt.slug)
		}
		got, err := FromSlug(tt.slug)
		if err != nil {
			t.Errorf("FromSlug(%q) error: %v", tt.slug, err)
		} else if got != tt.value {
			t.Errorf("FromSlug(%q) = %d, want %d", tt.slug, got, tt.value)
		}
	}
}

func TestFromSlugInvalid(t *testing.T) {
	for _, slug := range []string{"", "-1", "1x", "18446744073709551616", "+1"} {
		if _, err := FromSlug(slug); err == nil {
			t.Errorf("FromSlug(%q) should fail", slug)
		}
	}
}

func TestDateToInt24(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	if got, err := DateToInt24(day(2020, time.January, 1)); err != nil || got != 0 {
		t.Errorf("DateToInt24(2020-01-01) = %d, %v; want 0, nil", got, err)
	}
	if got, err := DateToInt24(day(2020, time.January, 2)); err != nil || got != 1 {
		t.Errorf("DateToInt24(2020-01-02) = %d, %v; want 1, nil", got, err)
	}

	got, err := DateToInt24(day(9020, time.December, 31))
	if err != nil {
		t.Fatalf("DateToInt24(9020-12-31) error: %v", err)
	}
	if got <= 365*7000 || got >= 366*7000 {
		t.Errorf("DateToInt24(9020-12-31) = %d, want within (365*7000, 366*7000)", got)
	}

	if _, err := DateToInt24(day(2019, time.December, 31)); err == nil {
		t.Error("DateToInt24 before the epoch should fail")
	}

	// Time of day must not matter.
	late := time.Date(2020, time.January, 2, 23, 59, 59, 0, time.UTC)
	if got, _ := DateToInt24(late); got != 1 {
		t.Errorf("DateToInt24(2020-01-02 23:59:59) = %d, want 1", got)
	}
}
