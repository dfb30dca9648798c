package helpers

import (
	"regexp"
	"strconv"
	"strings"
)

// NotAvailable fills optional text fields the source did not provide.
const NotAvailable = "N/A"

var signedDigits = regexp.MustCompile(`-?\d+`)

// ParseDaysLeft reads a countdown such as "D-12" or "마감 3일 전".
// It takes the longest run of digits (the first one on ties) together with a
// minus sign directly in front of it. Text without digits, or a number that
// does not fit an int, yields 0.
func ParseDaysLeft(text string) int {
	best := ""
	bestDigits := 0
	for _, run := range signedDigits.FindAllString(text, -1) {
		digits := len(strings.TrimPrefix(run, "-"))
		if digits > bestDigits {
			best, bestDigits = run, digits
		}
	}
	if best == "" {
		return 0
	}

	days, err := strconv.Atoi(best)
	if err != nil {
		return 0
	}
	return days
}

// CollapseSpaces trims s and folds every whitespace run, newlines included,
// into a single space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StripLabel removes every occurrence of a site label such as "주최." and
// normalises the remaining whitespace.
func StripLabel(s, label string) string {
	if label != "" {
		s = strings.ReplaceAll(s, label, "")
	}
	return CollapseSpaces(s)
}

// OrNotAvailable returns s, or NotAvailable when s is blank.
func OrNotAvailable(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}
