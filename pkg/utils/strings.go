package utils

import (
	"crypto/rand"
	"strconv"
)

// Alphabet without 0/O and 1/I so order codes survive being read over the
// phone.
const codeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// GenerateOrderCode returns a human-readable order reference, e.g. CMD-7KF2QA.
func GenerateOrderCode() string {
	b := make([]byte, 6)
	_, _ = rand.Read(b)
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return "CMD-" + string(b)
}

// ParseInt parses a string to int with a fallback default value
func ParseInt(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return val
}

// ParseInt64 parses a string to int64 with a fallback default value
func ParseInt64(s string, defaultVal int64) int64 {
	if s == "" {
		return defaultVal
	}
	val, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return defaultVal
	}
	return val
}
