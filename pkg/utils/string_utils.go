package utils

import (
	"os"
	"strconv"
)

// Getenv retrieves the value of the environment variable named by the key,
// falling back to the given default when unset or empty.
func Getenv(key, fallback string) string {
	value := os.Getenv(key)
	if len(value) == 0 {
		return fallback
	}
	return value
}

// Int64ToStr converts an int64 to its string representation.
func Int64ToStr(num int64) string {
	return strconv.FormatInt(num, 10)
}

// StrToInt64 converts a string to an int64.
func StrToInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// NewNullString returns nil for an empty string, a pointer otherwise.
// Useful for optional fields that should be NULL in the database.
func NewNullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
