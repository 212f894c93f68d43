package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tartampluch/go-reminders/internal/config"
)

var (
	reCanonical = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reLeadDate  = regexp.MustCompile(`^\s*(\d{4})-(\d{2})-(\d{2})`)
	reYearFirst = regexp.MustCompile(`^(\d{4})[/-](\d{1,2})[/-](\d{1,2})$`)
	reDayFirst  = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)
	reTextual   = regexp.MustCompile(`^(\d{1,2})\s+([A-Za-z]+)\.?,?\s+(\d{4})$`)
)

// IsCanonical reports whether s has the YYYY-MM-DD shape.
// It does not check that the components form a real date.
func IsCanonical(s string) bool {
	return reCanonical.MatchString(s)
}

// NormalizeDate converts a loosely formatted date to YYYY-MM-DD without
// shifting the calendar day. Unrecognized input is returned unchanged so
// callers can tell it apart (IsCanonical fails on it).
//
// Slash and dash forms are read year-first, then day-first. Month-first
// input such as 01/28/2000 is therefore read as day 01, month 28.
func NormalizeDate(value string) string {
	s := strings.TrimSpace(value)
	if s == "" {
		return ""
	}
	if IsCanonical(s) {
		return s
	}

	// Timestamps: take the date digits as written, never via a time zone.
	if strings.Contains(s, "T") {
		if m := reLeadDate.FindStringSubmatch(s); m != nil {
			return m[1] + "-" + m[2] + "-" + m[3]
		}
	}

	if m := reYearFirst.FindStringSubmatch(s); m != nil {
		return canonical(m[1], m[2], m[3])
	}
	if m := reDayFirst.FindStringSubmatch(s); m != nil {
		return canonical(m[3], m[2], m[1])
	}
	if m := reTextual.FindStringSubmatch(s); m != nil {
		if month := monthFromName(m[2]); month > 0 {
			return canonical(m[3], strconv.Itoa(month), m[1])
		}
	}

	for _, layout := range config.FallbackDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			u := t.UTC()
			return fmt.Sprintf("%04d-%02d-%02d", u.Year(), int(u.Month()), u.Day())
		}
	}

	return value
}

// canonical zero-pads already validated numeric components.
func canonical(year, month, day string) string {
	return year + "-" + pad2(month) + "-" + pad2(day)
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// monthFromName matches a month name, or a prefix naming exactly one month,
// case-insensitively. Returns 0 when nothing or several months match.
func monthFromName(name string) int {
	n := strings.ToLower(name)
	if n == "" {
		return 0
	}
	month := 0
	for i, full := range config.MonthNames {
		if !strings.HasPrefix(full, n) {
			continue
		}
		if month != 0 {
			return 0
		}
		month = i + 1
	}
	return month
}
