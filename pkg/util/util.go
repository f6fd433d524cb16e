package util

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/harrisonrobin/gantta/pkg/model"
)

var (
	durationRegex = regexp.MustCompile(`(?i)(\d+)\s*(day|days)`)

	// Serial 1 is 1900-01-01. Spreadsheets count a 29 Feb 1900 that never
	// existed, so from serial 61 on the effective epoch moves back a day.
	serialEpoch     = time.Date(1899, time.December, 31, 0, 0, 0, 0, time.UTC)
	serialLeapEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
)

const (
	firstSerialAfterLeapBug = 61

	// Serial of 9999-12-31, the last date spreadsheets can hold.
	maxSerial = 2958465
)

// DateFromSerial converts a spreadsheet serial day number to a calendar date.
// Any fractional (time of day) part is dropped.
func DateFromSerial(serial float64) model.CalendarDate {
	days := int(math.Floor(serial))
	epoch := serialEpoch
	if days >= firstSerialAfterLeapBug {
		epoch = serialLeapEpoch
	}
	return model.CalendarDate{Time: epoch.AddDate(0, 0, days)}
}

// DurationFromText extracts the day count from strings like "3 days" or "1 Day".
// It returns 0 for anything else.
func DurationFromText(v any) int {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	match := durationRegex.FindStringSubmatch(s)
	if match == nil {
		return 0
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}
	return n
}

// DurationFromDates returns the number of days to add to start to reach end.
// The result is negative when end precedes start.
func DurationFromDates(start, end model.CalendarDate) int {
	return start.DaysUntil(end)
}

// PercentFromFraction turns a 0-1 completion fraction into a percentage.
func PercentFromFraction(v any) float64 {
	f, ok := Number(v)
	if !ok {
		return 0
	}
	percent, ok := finite(f * 100)
	if !ok {
		return 0
	}
	return percent
}

// DateValue reads a raw cell as a date. Serial numbers, numeric strings and
// YYYY-MM-DD strings are accepted; blank cells and serials outside
// 1900-01-01..9999-12-31 mean no date.
func DateValue(v any) (model.CalendarDate, bool) {
	if s, ok := v.(string); ok {
		if d, err := model.ParseCalendarDate(s); err == nil {
			return d, true
		}
	}
	serial, ok := Number(v)
	if !ok || serial < 1 || serial >= maxSerial+1 {
		return model.CalendarDate{}, false
	}
	return DateFromSerial(serial), true
}

// Number reads a raw cell as a float64.
// NaN and infinities count as absent; they cannot be written as JSON.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return finite(f)
	}
	return 0, false
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Text renders a raw cell as a trimmed string. Numbers are printed without
// trailing zeros, so an outline number stored as 2.1 reads back as "2.1".
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

// Flag reads a yes/no cell.
func Flag(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "yes", "y", "true", "1":
			return true
		}
	case float64:
		return t == 1
	}
	return false
}

// Present reports whether a raw cell carries a value.
func Present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	}
	return true
}
