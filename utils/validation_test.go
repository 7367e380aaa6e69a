package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidatePlate(t *testing.T) {
	valid := []string{"ABC123", "abc-123", "AB 12 CD", "P123456789"}
	for _, plate := range valid {
		assert.True(t, ValidatePlate(plate), plate)
	}

	invalid := []string{"", "AB", "ABC123456789", "ABC#12", "AB!"}
	for _, plate := range invalid {
		assert.False(t, ValidatePlate(plate), plate)
	}
}

func TestNormalizePlate(t *testing.T) {
	assert.Equal(t, "ABC123", NormalizePlate("abc-123"))
	assert.Equal(t, "AB12CD", NormalizePlate("ab 12 cd"))
	assert.Equal(t, "XYZ789", NormalizePlate("XYZ789"))
}

func TestValidatePhone(t *testing.T) {
	assert.True(t, ValidatePhone("+14155550123"))
	assert.True(t, ValidatePhone("555-0101-22"))
	assert.False(t, ValidatePhone(""))
	assert.False(t, ValidatePhone("phone"))
	assert.False(t, ValidatePhone("+0123"))
}

func TestBeginningOfDay(t *testing.T) {
	ts := time.Date(2026, 8, 28, 17, 45, 12, 0, time.UTC)
	got := BeginningOfDay(ts)
	assert.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), got)
}

func TestDaysBetween(t *testing.T) {
	start := time.Date(2026, 8, 1, 23, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 28, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, 27, DaysBetween(start, end))
}

func TestParseDateRoundTrip(t *testing.T) {
	parsed, err := ParseDate("2026-08-28")
	assert.NoError(t, err)
	assert.Equal(t, "2026-08-28", FormatDate(parsed))

	_, err = ParseDate("28/08/2026")
	assert.Error(t, err)
}
