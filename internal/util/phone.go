package util

import (
	"errors"
	"strings"
)

var ErrInvalidDestination = errors.New("invalid destination number")

const nationalNumberLen = 10

// NormalizeDestination turns a stored phone value into the country-code
// prefixed digit string the gateway expects, e.g. "98765 43210" -> "919876543210".
func NormalizeDestination(raw, countryCode string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := strings.TrimLeft(b.String(), "0")

	switch {
	case len(digits) == nationalNumberLen:
		return countryCode + digits, nil
	case len(digits) == len(countryCode)+nationalNumberLen && strings.HasPrefix(digits, countryCode):
		return digits, nil
	default:
		return "", ErrInvalidDestination
	}
}

// MaskPhone keeps the last four digits for logs.
func MaskPhone(p string) string {
	if len(p) <= 4 {
		return strings.Repeat("*", len(p))
	}
	return strings.Repeat("*", len(p)-4) + p[len(p)-4:]
}
