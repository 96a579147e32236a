// Package gregorian converts between the instant representations accepted at the
// API boundary and gregorian seconds, the integer count of seconds since
// 0000-01-01T00:00:00 in the proleptic Gregorian calendar.
package gregorian

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

const (
	SecondsPerMinute = 60
	SecondsPerHour   = 60 * SecondsPerMinute
	SecondsPerDay    = 24 * SecondsPerHour

	// UnixEpoch is 1970-01-01T00:00:00 in gregorian seconds.
	UnixEpoch int64 = 62167219200

	// daysTo1970 is the number of days from 0000-01-01 to 1970-01-01.
	daysTo1970 = UnixEpoch / SecondsPerDay
)

// DateTime is a civil date and time of day without any offset attached.
type DateTime struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
}

func (dt DateTime) String() string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d", dt.Year, dt.Month, dt.Day, dt.Hour, dt.Minute, dt.Second)
}

// FromDayFraction returns days*86400 plus the seconds contained in fraction
// ticks, rounded down, where ticksPerDay ticks make up one day. A negative
// fraction counts back from the start of the day. The product is computed in
// 128 bits so nanosecond ticks do not overflow. It panics unless ticksPerDay
// is positive.
func FromDayFraction(days, fraction, ticksPerDay int64) int64 {
	if ticksPerDay <= 0 {
		panic(fmt.Sprintf("gregorian: %d ticks per day", ticksPerDay))
	}
	whole := floorDiv(fraction, ticksPerDay)
	part := fraction % ticksPerDay
	if part < 0 {
		part += ticksPerDay
	}
	// part < ticksPerDay keeps the high word below the divisor
	hi, lo := bits.Mul64(uint64(part), SecondsPerDay)
	q, _ := bits.Div64(hi, lo, uint64(ticksPerDay))
	return (days+whole)*SecondsPerDay + int64(q)
}

// ToSeconds converts a civil date time to gregorian seconds. Years before 0
// are outside the rule domain and clamp to 0.
func ToSeconds(dt DateTime) int64 {
	if dt.Year < 0 {
		return 0
	}
	days := DaysFromCivil(dt.Year, dt.Month, dt.Day)
	return days*SecondsPerDay + int64(dt.Hour)*SecondsPerHour + int64(dt.Minute)*SecondsPerMinute + int64(dt.Second)
}

// FromSeconds is the inverse of ToSeconds.
func FromSeconds(secs int64) DateTime {
	days := floorDiv(secs, SecondsPerDay)
	rem := secs - days*SecondsPerDay
	y, m, d := CivilFromDays(days)
	return DateTime{
		Year:   y,
		Month:  m,
		Day:    d,
		Hour:   int(rem / SecondsPerHour),
		Minute: int(rem % SecondsPerHour / SecondsPerMinute),
		Second: int(rem % SecondsPerMinute),
	}
}

// FromUnix converts seconds since the Unix epoch to gregorian seconds.
func FromUnix(unix int64) int64 { return unix + UnixEpoch }

// ToUnix converts gregorian seconds to seconds since the Unix epoch.
func ToUnix(secs int64) int64 { return secs - UnixEpoch }

// Year returns the civil year containing secs.
func Year(secs int64) int {
	y, _, _ := CivilFromDays(floorDiv(secs, SecondsPerDay))
	return y
}

// IsLeap reports whether year is a leap year.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the number of days in month of year.
func DaysInMonth(year, month int) int {
	switch month {
	case 2:
		if IsLeap(year) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	}
	return 31
}

// DaysFromCivil returns the number of days from 0000-01-01 to the given date.
// Out of range days and months roll over into neighbouring months.
func DaysFromCivil(year, month, day int) int64 {
	y := int64(year)
	m := int64(month)
	// normalise month into 1..12 first so rules like "day 0 of March" work
	y += floorDiv(m-1, 12)
	m = floorMod(m-1, 12) + 1
	if m <= 2 {
		y--
	}
	era := floorDiv(y, 400)
	yoe := y - era*400
	mp := (m + 9) % 12
	doy := (153*mp+2)/5 + int64(day) - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468 + daysTo1970
}

// CivilFromDays is the inverse of DaysFromCivil.
func CivilFromDays(days int64) (year, month, day int) {
	z := days - daysTo1970 + 719468
	era := floorDiv(z, 146097)
	doe := z - era*146097
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	y := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	d := doy - (153*mp+2)/5 + 1
	m := mp + 3
	if mp >= 10 {
		m = mp - 9
	}
	if m <= 2 {
		y++
	}
	return int(y), int(m), int(d)
}

// Weekday returns the day of week of a day count from DaysFromCivil,
// 0 being Sunday.
func Weekday(days int64) int {
	// 0000-01-01 was a Saturday
	return int(floorMod(days+6, 7))
}

// ParseDateTime parses YYYY-MM-DDTHH:MM:SS, optionally followed by Z. A space
// may separate date and time, and the time of day may be omitted.
func ParseDateTime(s string) (DateTime, error) {
	var dt DateTime
	s = strings.TrimSuffix(strings.TrimSpace(s), "Z")
	date, clock, _ := strings.Cut(strings.Replace(s, " ", "T", 1), "T")

	dparts := strings.Split(date, "-")
	if len(dparts) != 3 {
		return dt, fmt.Errorf("invalid date %q", s)
	}
	fields := []*int{&dt.Year, &dt.Month, &dt.Day}
	for i, p := range dparts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return dt, fmt.Errorf("invalid date %q: %w", s, err)
		}
		*fields[i] = n
	}
	if clock != "" {
		cparts := strings.Split(clock, ":")
		if len(cparts) > 3 {
			return dt, fmt.Errorf("invalid time %q", s)
		}
		fields = []*int{&dt.Hour, &dt.Minute, &dt.Second}
		for i, p := range cparts {
			n, err := strconv.Atoi(p)
			if err != nil {
				return dt, fmt.Errorf("invalid time %q: %w", s, err)
			}
			*fields[i] = n
		}
	}
	if dt.Month < 1 || dt.Month > 12 || dt.Day < 1 || dt.Day > DaysInMonth(dt.Year, dt.Month) {
		return dt, fmt.Errorf("date out of range %q", s)
	}
	if dt.Hour > 23 || dt.Minute > 59 || dt.Second > 59 || dt.Hour < 0 || dt.Minute < 0 || dt.Second < 0 {
		return dt, fmt.Errorf("time out of range %q", s)
	}
	return dt, nil
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}
