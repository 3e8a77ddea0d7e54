package services

import (
	"fmt"
	"strings"
	"time"

	apperrors "kopeika/internal/errors"
)

// dateFormats are the accepted statement date layouts, tried in order.
// First match wins.
var dateFormats = []string{
	"2006-01-02",
	"01/02/2006",
}

// ParseDate converts a statement date string into a time.Time truncated to
// the day. It fails with ErrInvalidDateFormat when the string matches none
// of the accepted layouts; the error carries no partial result.
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range dateFormats {
		if d, err := time.Parse(layout, trimmed); err == nil {
			return d, nil
		}
	}
	return time.Time{}, apperrors.WithMessage(
		apperrors.ErrInvalidDateFormat,
		fmt.Sprintf("Invalid date format: %s", value),
	)
}

// laxDateFormats are the extra layouts accepted on interactive paths, beyond
// the strict statement layouts.
var laxDateFormats = []string{
	"2006/01/02",
	"01-02-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// ParseDateLax parses a user-supplied date for interactive paths such as
// copying transactions. It accepts the same layouts as ParseDate, several
// common hand-typed forms, and the RFC 3339 date-time form that browser date
// pickers may submit.
func ParseDateLax(value string) (time.Time, error) {
	if d, err := ParseDate(value); err == nil {
		return d, nil
	}
	trimmed := strings.TrimSpace(value)
	for _, layout := range laxDateFormats {
		if d, err := time.Parse(layout, trimmed); err == nil {
			return d, nil
		}
	}
	if d, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return d.Truncate(24 * time.Hour), nil
	}
	return time.Time{}, apperrors.WithMessage(
		apperrors.ErrInvalidDateFormat,
		fmt.Sprintf("You must choose a date in the appropriate format. '%s' is not valid.", value),
	)
}

// MonthName formats the display name of the month containing d, e.g.
// "July, 2025".
func MonthName(d time.Time) string {
	return d.Format("January, 2006")
}
