package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tartampluch/go-reminders/internal/config"
)

// IsLeapYear implements the Gregorian rule.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// ParseCanonical splits a YYYY-MM-DD string into its components.
// Month and day must describe a real date in some year; Feb 29 is always accepted.
func ParseCanonical(canonical string) (year int, month time.Month, day int, err error) {
	parts := strings.Split(canonical, "-")
	if len(parts) != 3 {
		return 0, 0, 0, computationError(fmt.Errorf("%w: %q", ErrInvalidDate, canonical))
	}

	nums := make([]int, 3)
	for i, p := range parts {
		if p == "" || strings.IndexFunc(p, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
			return 0, 0, 0, computationError(fmt.Errorf("%w: non-numeric component %q", ErrInvalidDate, p))
		}
		n, convErr := strconv.Atoi(p)
		if convErr != nil {
			return 0, 0, 0, computationError(fmt.Errorf("%w: %v", ErrInvalidDate, convErr))
		}
		nums[i] = n
	}

	year, m, day := nums[0], nums[1], nums[2]
	if m < 1 || m > 12 {
		return 0, 0, 0, computationError(fmt.Errorf("%w: month %d", ErrInvalidDate, m))
	}
	month = time.Month(m)
	if day < 1 || day > daysIn(config.DefaultLeapYear, month) {
		return 0, 0, 0, computationError(fmt.Errorf("%w: day %d", ErrInvalidDate, day))
	}
	return year, month, day, nil
}

// NextOccurrence returns the next date (today included) on which the
// occasion's month/day recurs, and the whole days until it.
// Feb 29 falls on Feb 28 in common years.
func NextOccurrence(canonical string, now time.Time) (Occurrence, error) {
	_, month, day, err := ParseCanonical(canonical)
	if err != nil {
		return Occurrence{}, err
	}

	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	candidate := occurrenceIn(today.Year(), month, day, loc)
	if candidate.Before(today) {
		candidate = occurrenceIn(today.Year()+1, month, day, loc)
	}

	return Occurrence{
		Date:          candidate,
		DaysRemaining: daysBetween(today, candidate),
	}, nil
}

// occurrenceIn builds local midnight of month/day in year.
func occurrenceIn(year int, month time.Month, day int, loc *time.Location) time.Time {
	if month == time.February && day == 29 && !IsLeapYear(year) {
		day = 28
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// daysBetween counts calendar days between two local midnights.
// Both ends are re-anchored in UTC so a DST transition cannot add or lose a day.
func daysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a) / config.DayLength)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func computationError(err error) error {
	return &RecordError{Kind: ComputationError, Field: config.FieldDate, Err: err}
}
