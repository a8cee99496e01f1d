package counter

import (
	"strings"
	"time"
)

// PeriodType controls the granularity counts are bucketed in.
type PeriodType string

// Supported period granularities.
const (
	PeriodSecond PeriodType = "second"
	PeriodMinute PeriodType = "minute"
	PeriodHour   PeriodType = "hour"
	PeriodDay    PeriodType = "day"
	PeriodWeek   PeriodType = "week"
	PeriodMonth  PeriodType = "month"
	PeriodYear   PeriodType = "year"
	PeriodAll    PeriodType = "all"
)

// FormatPeriod is the wire format periods travel in.
const FormatPeriod = "2006-01-02 15:04:05"

// ScopeAll is the scope token of all-time buckets.
const ScopeAll = "all"

const suffixWeek = "week"

// Valid indicates if t is a supported period type.
func (t PeriodType) Valid() bool {
	switch t {
	case PeriodSecond,
		PeriodMinute,
		PeriodHour,
		PeriodDay,
		PeriodWeek,
		PeriodMonth,
		PeriodYear,
		PeriodAll:
		return true
	}

	return false
}

// ParsePeriod parses the wire format of a period. Fractional seconds are
// tolerated and dropped.
func ParsePeriod(input string) (time.Time, error) {
	if i := strings.IndexByte(input, '.'); i >= 0 {
		input = input[:i]
	}

	tm, err := time.ParseInLocation(FormatPeriod, input, time.UTC)
	if err != nil {
		return time.Time{}, wrapError(ErrInvalidPeriod, "%s", input)
	}

	return tm, nil
}

// Scope buckets tm into the canonical token for t. Weeks are anchored on
// Monday.
func Scope(t PeriodType, tm time.Time) string {
	p := tm.UTC().Format(FormatPeriod)

	switch t {
	case PeriodSecond:
		return p[:19]
	case PeriodMinute:
		return p[:16]
	case PeriodHour:
		return p[:13]
	case PeriodDay:
		return p[:10]
	case PeriodWeek:
		monday := tm.UTC().AddDate(0, 0, -mondayOffset(tm.UTC().Weekday()))

		return monday.Format(FormatPeriod)[:10] + suffixWeek
	case PeriodMonth:
		return p[:7]
	case PeriodYear:
		return p[:4]
	default:
		// All-time buckets as well as unknown types collapse into the
		// all scope.
		return ScopeAll
	}
}

func mondayOffset(d time.Weekday) int {
	return (int(d) + 6) % 7
}
