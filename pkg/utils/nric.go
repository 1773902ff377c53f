package utils

import (
	"regexp"
	"strconv"
	"strings"
)

// Malaysian NRIC: YYMMDD-PB-###G, accepted with or without dashes.
var nricRegex = regexp.MustCompile(`^\d{6}-?\d{2}-?\d{4}$`)

// NormalizeNRIC strips dashes and whitespace from an NRIC string.
func NormalizeNRIC(nric string) string {
	return strings.ReplaceAll(strings.TrimSpace(nric), "-", "")
}

// IsValidNRIC reports whether the input is a well-formed 12-digit Malaysian
// NRIC. Dashes between the date, birthplace and serial segments are optional,
// but when present both must be present. The embedded birth month and day must
// be plausible calendar values.
func IsValidNRIC(nric string) bool {
	trimmed := strings.TrimSpace(nric)
	if !nricRegex.MatchString(trimmed) {
		return false
	}

	digits := NormalizeNRIC(trimmed)
	if len(digits) != 12 {
		return false
	}
	// Dashed form must be fully dashed: 950101-14-5678.
	if strings.Contains(trimmed, "-") && len(trimmed) != 14 {
		return false
	}

	month, _ := strconv.Atoi(digits[2:4])
	day, _ := strconv.Atoi(digits[4:6])
	if month < 1 || month > 12 {
		return false
	}
	if day < 1 || day > 31 {
		return false
	}
	return true
}

// FormatNRIC renders a normalized 12-digit NRIC in dashed form.
// Input that is not 12 digits is returned unchanged.
func FormatNRIC(nric string) string {
	digits := NormalizeNRIC(nric)
	if len(digits) != 12 {
		return nric
	}
	return digits[0:6] + "-" + digits[6:8] + "-" + digits[8:12]
}
