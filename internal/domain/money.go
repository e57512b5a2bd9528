package domain

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseAmountCents converts a decimal amount string into integer cents.
// Both "50" and "50.25" are accepted, as is a comma decimal separator.
// A third decimal digit is rounded half-up. Zero, negative, signed and
// malformed inputs are rejected with ErrInvalidRequest.
func ParseAmountCents(s string) (int64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("%w: amount must be a positive decimal", ErrInvalidRequest)
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	if strings.Contains(fracPart, ".") {
		return 0, fmt.Errorf("%w: malformed amount", ErrInvalidRequest)
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, fmt.Errorf("%w: malformed amount", ErrInvalidRequest)
		}
	}
	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil || whole > (1<<63-1)/100 {
		return 0, fmt.Errorf("%w: amount out of range", ErrInvalidRequest)
	}

	var cents int64
	if len(fracPart) > 0 {
		cents = int64(fracPart[0]-'0') * 10
	}
	if len(fracPart) > 1 {
		cents += int64(fracPart[1] - '0')
	}
	if len(fracPart) > 2 && fracPart[2] >= '5' {
		cents++
	}
	total := whole*100 + cents
	if total <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	}
	return total, nil
}

// FormatCents renders cents as a two-decimal string for display.
func FormatCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
