// utils/validation.go
package utils

import (
	"regexp"
	"strings"
)

// ValidatePlate checks that a license plate is 3-10 alphanumeric
// characters after stripping spaces and dashes.
func ValidatePlate(plate string) bool {
	cleaned := strings.ReplaceAll(plate, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "-", "")

	regex := `^[A-Za-z0-9]{3,10}$`
	match, _ := regexp.MatchString(regex, cleaned)
	return match
}

// NormalizePlate returns the canonical stored form of a plate:
// uppercase, no spaces or dashes.
func NormalizePlate(plate string) string {
	cleaned := strings.ReplaceAll(plate, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "-", "")
	return strings.ToUpper(cleaned)
}

// ValidatePhone checks if a phone number is in a valid international format
func ValidatePhone(phone string) bool {
	// Clean the phone number
	cleaned := strings.ReplaceAll(phone, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "-", "")
	cleaned = strings.ReplaceAll(cleaned, "(", "")
	cleaned = strings.ReplaceAll(cleaned, ")", "")

	// Regular expression for international phone numbers
	// Allows + prefix followed by 7-15 digits
	regex := `^\+?[1-9]\d{1,14}$`
	match, _ := regexp.MatchString(regex, cleaned)
	return match
}
