// Package tzposix decodes the POSIX TZ strings found in the footer of TZif
// files, such as "EST5EDT,M3.2.0,M11.1.0", into a recurring rule pair.
package tzposix

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tzperiods/rules"
)

// tzRegex captures the parts of a TZ string:
//  1. standard time abbreviation
//  2. standard offset, west of UTC
//  3. optional daylight time abbreviation
//  4. optional daylight offset, one hour less than standard if absent
//  5. optional start rule
//  6. optional end rule
var tzRegex = regexp.MustCompile(`^(?<StdName>[[:alpha:]]{3,}|<[[:alnum:]+-]+>)` +
	`(?<StdOffset>[-+]?[0-9]+(?::[0-9]+){0,2})` +
	`(?<DstName>[[:alpha:]]{3,}|<[[:alnum:]+-]+>)?` +
	`(?<DstOffset>[-+]?[0-9]+(?::[0-9]+){0,2})?` +
	`,?(?<StartRule>(?:J?[0-9]+|M[0-9]+(?:\.[0-9]+){0,2})(?:/[+-]?[0-9]+(?::[0-9]+){0,2})?)?` +
	`,?(?<EndRule>(?:J?[0-9]+|M[0-9]+(?:\.[0-9]+){0,2})(?:/[+-]?[0-9]+(?::[0-9]+){0,2})?)?$`)

// defaultRules apply when a TZ string names a daylight time but no rules.
const defaultStart, defaultEnd = "M3.2.0", "M11.1.0"

// Spec is a decoded TZ string. Offsets are seconds east of UTC.
type Spec struct {
	TZ        string
	StdName   string
	StdOffset int
	DstName   string
	DstOffset int
	Start     rules.Rule
	End       rules.Rule
}

// HasDST reports whether the string describes daylight saving time.
func (s Spec) HasDST() bool { return s.DstName != "" }

// Pair returns the start and end rules as a recurring pair, or false when
// there is no daylight saving time.
func (s Spec) Pair() (rules.Pair, bool) {
	if !s.HasDST() {
		return rules.Pair{}, false
	}
	return rules.Pair{s.Start, s.End}, true
}

// Format is the abbreviation format "STD/DST" of the pair.
func (s Spec) Format() string {
	if !s.HasDST() {
		return stripBrackets(s.StdName)
	}
	return stripBrackets(s.StdName) + "/" + stripBrackets(s.DstName)
}

// Parse decodes a TZ string.
func Parse(tz string) (Spec, error) {
	matches := tzRegex.FindStringSubmatch(tz)
	if matches == nil {
		return Spec{}, fmt.Errorf("invalid POSIX TZ string format: %s", tz)
	}
	spec := Spec{TZ: tz, StdName: matches[1], DstName: matches[3]}
	stdOffsetStr, dstOffsetStr := matches[2], matches[4]
	startRule, endRule := matches[5], matches[6]

	west, err := rules.ParseDuration(stdOffsetStr)
	if err != nil {
		return Spec{}, fmt.Errorf("invalid standard offset: %w", err)
	}
	spec.StdOffset = -west

	if spec.DstName == "" {
		if startRule != "" || endRule != "" {
			return Spec{}, fmt.Errorf("rules without daylight time in %s", tz)
		}
		return spec, nil
	}

	spec.DstOffset = spec.StdOffset + 3600
	if dstOffsetStr != "" {
		west, err := rules.ParseDuration(dstOffsetStr)
		if err != nil {
			return Spec{}, fmt.Errorf("invalid daylight offset: %w", err)
		}
		spec.DstOffset = -west
	}

	switch {
	case startRule == "" && endRule == "":
		startRule, endRule = defaultStart, defaultEnd
	case startRule == "" || endRule == "":
		return Spec{}, fmt.Errorf("stand alone TZ rule in %s", tz)
	}

	name := stripBrackets(spec.StdName) + stripBrackets(spec.DstName)
	if spec.Start, err = parseRule(startRule); err != nil {
		return Spec{}, fmt.Errorf("invalid start rule: %w", err)
	}
	spec.Start.Name, spec.Start.Save = name, spec.DstOffset-spec.StdOffset
	if spec.End, err = parseRule(endRule); err != nil {
		return Spec{}, fmt.Errorf("invalid end rule: %w", err)
	}
	spec.End.Name = name
	return spec, nil
}

// parseRule converts a rule field such as "M3.2.0/02:00:00", "J60" or "59"
// into a rule firing on the wall clock, 02:00 unless a time is given.
func parseRule(s string) (rules.Rule, error) {
	r := rules.Rule{In: time.January, At: rules.At{Seconds: 7200, Form: rules.Wall}}
	date, clock, hasClock := strings.Cut(s, "/")
	if hasClock {
		secs, err := rules.ParseDuration(clock)
		if err != nil {
			return r, err
		}
		r.At.Seconds = secs
	}

	switch {
	case strings.HasPrefix(date, "M"):
		parts := strings.Split(strings.TrimPrefix(date, "M"), ".")
		if len(parts) != 3 {
			return r, fmt.Errorf("invalid month rule %q", s)
		}
		m, w, d := atoi(parts[0]), atoi(parts[1]), atoi(parts[2])
		if m < 1 || m > 12 || w < 1 || w > 5 || d < 0 || d > 6 {
			return r, fmt.Errorf("month rule out of range %q", s)
		}
		r.In = time.Month(m)
		if w == 5 {
			r.On = rules.Day{Form: rules.DayLast, Weekday: time.Weekday(d)}
		} else {
			r.On = rules.Day{Form: rules.DayAfter, Num: 1 + 7*(w-1), Weekday: time.Weekday(d)}
		}
	case strings.HasPrefix(date, "J"):
		n := atoi(strings.TrimPrefix(date, "J"))
		if n < 1 || n > 365 {
			return r, fmt.Errorf("julian day out of range %q", s)
		}
		r.On = rules.Day{Form: rules.DayJulian, Num: n}
	default:
		n := atoi(date)
		if n < 0 || n > 365 {
			return r, fmt.Errorf("day of year out of range %q", s)
		}
		r.On = rules.Day{Form: rules.DayOfYear, Num: n}
	}
	return r, nil
}

func atoi(s string) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return -1
}

func stripBrackets(name string) string {
	return strings.TrimSuffix(strings.TrimPrefix(name, "<"), ">")
}
