// Package i64 converts between signed and unsigned 64-bit integers and
// their URL-friendly decimal representations.
//
// Swaptacular identifiers (debtor IDs, creditor IDs) are signed 64-bit
// integers, but they travel in URLs as non-negative decimal "slugs":
// negative values are reinterpreted through two's complement, so -1
// becomes "18446744073709551615".
package i64

import (
	"strconv"
	"time"

	"github.com/swaptacular/swptlib/core/errors"
)

// SlugPattern matches the decimal slugs produced by ToSlug: an
// unsigned decimal number without leading zeros, at most 20 digits.
const SlugPattern = `0|[1-9][0-9]{0,19}`

var epoch = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// ToU64 reinterprets a signed 64-bit integer as unsigned.
func ToU64(value int64) uint64 {
	return uint64(value)
}

// FromU64 reinterprets an unsigned 64-bit integer as signed.
func FromU64(value uint64) int64 {
	return int64(value)
}

// ToSlug converts a signed 64-bit integer to an URL-friendly decimal string.
func ToSlug(value int64) string {
	return strconv.FormatUint(uint64(value), 10)
}

// FromSlug converts a string generated by ToSlug back to a signed
// 64-bit integer. Returns an error if the string is not an unsigned
// decimal number that fits in 64 bits.
func FromSlug(slug string) (int64, error) {
	value, err := strconv.ParseUint(slug, 10, 64)
	if err != nil {
		return 0, &errors.ValidationError{Field: "slug", Value: slug, Message: "not an unsigned 64-bit decimal", Err: err}
	}
	return int64(value), nil
}

// DateToInt24 converts a calendar date to a 24-bit day number, counting
// from 2020-01-01 (day zero). The result wraps around every 2^24 days.
// Returns an error for dates before the epoch.
func DateToInt24(t time.Time) (uint32, error) {
	y, m, d := t.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	// time.Duration overflows after ~292 years, so count days via Unix seconds.
	days := (date.Unix() - epoch.Unix()) / 86400
	if days < 0 {
		return 0, errors.NewValidation("date", "before 2020-01-01")
	}
	return uint32(days) & 0xffffff, nil
}
