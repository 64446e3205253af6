package expiration

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// Numbers above the watershed are epoch values in ms (or finer); they are
	// divided by 1000 until they land in the seconds range. In seconds the
	// watershed is the year 2603, in ms it is August 1970.
	msWatershed = 2e10
	// Beyond this the value cannot be represented; clamp instead of overflow.
	maxEpochNumber = 3e20
)

const (
	dateExpr = `(\d{4})-(\d{1,2})-(\d{1,2})`
	timeExpr = `(\d{1,2}):(\d{1,2})(?::(\d{1,2})(?:\.(\d{1,6})\d{0,6})?)?(Z|[+-]\d{2}(?::?\d{2})?)?`
)

var (
	dateRe     = regexp.MustCompile(`^` + dateExpr + `$`)
	timeRe     = regexp.MustCompile(`^` + timeExpr + `$`)
	datetimeRe = regexp.MustCompile(`^` + dateExpr + `[T ]` + timeExpr + `$`)

	// "30", "15:30", "10:15:30", "4 10:15:30", optional fractional seconds.
	clockDurationRe = regexp.MustCompile(`^(?:(-?\d+) (?:days?, )?)?(?:(?:(-?\d+):)?(-?\d+):)?(-?\d+)(?:\.(\d{1,6})\d{0,6})?$`)

	// ISO-8601 durations restricted to the D/H/M/S designators.
	isoDurationRe = regexp.MustCompile(`^([-+]?)P(?:(\d+(?:\.\d+)?)D)?(?:T(?:(\d+(?:\.\d+)?)H)?(?:(\d+(?:\.\d+)?)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)
)

// Unit aliases recognized by the unit-sum duration grammar ("1h 30m 10s").
var durationUnits = map[string]int64{
	"s": 1, "sec": 1, "second": 1, "seconds": 1,
	"m": 60, "min": 60, "minute": 60, "minutes": 60,
	"h": 3600, "hour": 3600, "hours": 3600,
	"d": 86400, "day": 86400, "days": 86400,
}

// fromUnixSeconds converts an epoch number to a UTC time, auto-scaling ms,
// us and ns magnitudes down to seconds.
func fromUnixSeconds(seconds float64) time.Time {
	if seconds > maxEpochNumber {
		seconds = maxEpochNumber
	}
	if seconds < -maxEpochNumber {
		seconds = -maxEpochNumber
	}
	for math.Abs(seconds) > msWatershed {
		seconds /= 1000
	}
	sec, frac := math.Modf(seconds)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}

func parseTimezone(tz string, fallbackErr error) (*time.Location, error) {
	if tz == "" {
		return nil, nil
	}
	if tz == "Z" {
		return time.UTC, nil
	}
	hours, err := strconv.Atoi(tz[1:3])
	if err != nil {
		return nil, fallbackErr
	}
	mins := 0
	if len(tz) > 3 {
		mins, err = strconv.Atoi(tz[len(tz)-2:])
		if err != nil {
			return nil, fallbackErr
		}
	}
	offset := hours*3600 + mins*60
	if tz[0] == '-' {
		offset = -offset
	}
	return time.FixedZone(tz, offset), nil
}

// ParseDate parses "YYYY-MM-DD" into a midnight UTC time. Component ranges
// are validated; "2022-13-01" is ErrDate, not a normalized January.
func ParseDate(value string) (time.Time, error) {
	m := dateRe.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return time.Time{}, ErrDate
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || d.Month() != time.Month(month) || d.Day() != day {
		return time.Time{}, ErrDate
	}
	return d, nil
}

// ParseDateTime parses "YYYY-MM-DD[T ]HH:MM[:SS[.ffffff]][Z|±HH[:MM]]".
// Times without an explicit offset are taken as UTC.
func ParseDateTime(value string) (time.Time, error) {
	m := datetimeRe.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return time.Time{}, ErrDateTime
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])
	sec := 0
	if m[6] != "" {
		sec, _ = strconv.Atoi(m[6])
	}
	nsec := microNanos(m[7])
	loc, err := parseTimezone(m[8], ErrDateTime)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	d := time.Date(year, time.Month(month), day, hour, minute, sec, nsec, loc)
	if d.Year() != year || d.Month() != time.Month(month) || d.Day() != day ||
		d.Hour() != hour || d.Minute() != minute || d.Second() != sec {
		return time.Time{}, ErrDateTime
	}
	return d, nil
}

// parseTimeOfDay parses "HH:MM[:SS[.ffffff]][tz]" anchored to today's date.
func parseTimeOfDay(value string) (time.Time, error) {
	m := timeRe.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return time.Time{}, ErrTime
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	sec := 0
	if m[3] != "" {
		sec, _ = strconv.Atoi(m[3])
	}
	nsec := microNanos(m[4])
	if hour > 23 || minute > 59 || sec > 59 {
		return time.Time{}, ErrTime
	}
	loc, err := parseTimezone(m[5], ErrTime)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	now := time.Now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), hour, minute, sec, nsec, loc), nil
}

// ParseDuration parses the colon-delimited clock grammar ("10:15:30",
// "4 10:15:30"), ISO-8601 durations ("P3DT12H30M5S") and unit-sum
// expressions ("1h 30m 10s", case-insensitive).
func ParseDuration(value string) (time.Duration, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return 0, ErrDuration
	}

	if m := clockDurationRe.FindStringSubmatch(v); m != nil {
		return clockDuration(m)
	}
	if m := isoDurationRe.FindStringSubmatch(v); m != nil {
		return isoDuration(m)
	}
	if secs, err := parseSumExpression(v, durationUnits, false); err == nil {
		return time.Duration(secs) * time.Second, nil
	} else if startsWithDigit(v) {
		// looked like a unit-sum expression; surface the precise error
		return 0, err
	}
	return 0, ErrDuration
}

func clockDuration(m []string) (time.Duration, error) {
	var total float64
	if m[1] != "" {
		days, _ := strconv.ParseFloat(m[1], 64)
		total += days * 86400
	}
	if m[2] != "" {
		hours, _ := strconv.ParseFloat(m[2], 64)
		total += hours * 3600
	}
	if m[3] != "" {
		mins, _ := strconv.ParseFloat(m[3], 64)
		total += mins * 60
	}
	secs, _ := strconv.ParseFloat(m[4], 64)
	total += secs
	if m[5] != "" {
		micros, _ := strconv.ParseFloat(padMicro(m[5]), 64)
		if strings.HasPrefix(m[4], "-") {
			micros = -micros
		}
		total += micros / 1e6
	}
	return time.Duration(total * float64(time.Second)), nil
}

func isoDuration(m []string) (time.Duration, error) {
	var total float64
	if m[2] != "" {
		days, _ := strconv.ParseFloat(m[2], 64)
		total += days * 86400
	}
	if m[3] != "" {
		hours, _ := strconv.ParseFloat(m[3], 64)
		total += hours * 3600
	}
	if m[4] != "" {
		mins, _ := strconv.ParseFloat(m[4], 64)
		total += mins * 60
	}
	if m[5] != "" {
		secs, _ := strconv.ParseFloat(m[5], 64)
		total += secs
	}
	if m[1] == "-" {
		total = -total
	}
	return time.Duration(total * float64(time.Second)), nil
}

func microNanos(micro string) int {
	if micro == "" {
		return 0
	}
	n, _ := strconv.Atoi(padMicro(micro))
	return n * 1000
}

func padMicro(micro string) string {
	for len(micro) < 6 {
		micro += "0"
	}
	return micro
}

func startsWithDigit(s string) bool {
	return len(s) > 0 && s[0] >= '0' && s[0] <= '9'
}
