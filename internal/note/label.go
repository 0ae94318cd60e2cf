package note

import (
	"strconv"
	"strings"
)

// ParsedLabel is a prediction label split into its currency code and
// denomination, e.g. "INR-500" -> {INR 500}.
type ParsedLabel struct {
	Code         string
	Denomination float64
}

// ParseLabel splits a "<CODE>-<AMOUNT>" label. It returns nil for anything
// malformed: zero or more than one delimiter, empty tokens, or an amount
// that is not a positive number. Malformed labels never panic and never
// propagate NaN downstream.
func ParseLabel(label string) *ParsedLabel {
	if label == "" {
		return nil
	}

	parts := strings.Split(label, "-")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil
	}

	denom, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || denom <= 0 {
		return nil
	}

	return &ParsedLabel{
		Code:         strings.ToUpper(parts[0]),
		Denomination: denom,
	}
}
