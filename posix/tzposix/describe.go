package tzposix

import (
	"fmt"

	"github.com/tzperiods/rules"
)

// DecodeTZ returns one line descriptions of the standard time, the daylight
// time and the rules of a TZ string. The daylight and rule descriptions are
// empty when there is no daylight saving time.
func DecodeTZ(posixTZ string) (string, string, string, error) {
	spec, err := Parse(posixTZ)
	if err != nil {
		return "", "", "", err
	}
	stdDesc := fmt.Sprintf("%s (UTC %s)", spec.StdName, formatOffset(spec.StdOffset))
	if !spec.HasDST() {
		return stdDesc, "", "", nil
	}
	dstDesc := fmt.Sprintf("%s (UTC %s)", spec.DstName, formatOffset(spec.DstOffset))
	rulesDesc := fmt.Sprintf("Starts %s, Ends %s", DescribeRule(spec.Start), DescribeRule(spec.End))
	return stdDesc, dstDesc, rulesDesc, nil
}

// HumanReadableTZ describes a TZ string such as
// "EST5EDT,M3.2.0/02:00:00,M11.1.0/02:00:00" over two or three lines.
func HumanReadableTZ(posixTZ string) (string, error) {
	std, dst, rulesDesc, err := DecodeTZ(posixTZ)
	if err != nil {
		return "", err
	}
	if dst == "" {
		return "Standard Time: " + std + "\n(No Daylight Saving Time rules)", nil
	}
	return fmt.Sprintf("Standard Time: %s\nDaylight Time: %s\nRules: %s", std, dst, rulesDesc), nil
}

var weekDesc = map[int]string{1: "first", 8: "second", 15: "third", 22: "fourth"}

// DescribeRule renders the day and time a rule fires at in words, "on the
// second Sunday of March at 02:00:00".
func DescribeRule(r rules.Rule) string {
	var on string
	switch r.On.Form {
	case rules.DayLast:
		on = fmt.Sprintf("on the last %s of %s", r.On.Weekday, r.In)
	case rules.DayAfter:
		if nth, ok := weekDesc[r.On.Num]; ok {
			on = fmt.Sprintf("on the %s %s of %s", nth, r.On.Weekday, r.In)
		} else {
			on = fmt.Sprintf("on the first %s on or after %s %d", r.On.Weekday, r.In, r.On.Num)
		}
	case rules.DayBefore:
		on = fmt.Sprintf("on the last %s on or before %s %d", r.On.Weekday, r.In, r.On.Num)
	case rules.DayJulian:
		on = fmt.Sprintf("on Julian day %d", r.On.Num)
	case rules.DayOfYear:
		on = fmt.Sprintf("on day %d of the year", r.On.Num)
	default:
		on = fmt.Sprintf("on %s %d", r.In, r.On.Num)
	}
	switch r.At.Form {
	case rules.Standard:
		return on + " at " + formatClock(r.At.Seconds) + " standard time"
	case rules.Universal:
		return on + " at " + formatClock(r.At.Seconds) + " UTC"
	}
	return on + " at " + formatClock(r.At.Seconds)
}

// formatClock renders a rule time, which may be negative or beyond 24h.
func formatClock(secs int) string {
	sign := ""
	if secs < 0 {
		sign = "-"
		secs = -secs
	}
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, secs/3600, secs%3600/60, secs%60)
}

// formatOffset renders seconds east of UTC as "+02:00" or "-03:30:15".
func formatOffset(secs int) string {
	sign := "+"
	if secs < 0 {
		sign = "-"
		secs = -secs
	}
	if secs%60 != 0 {
		return fmt.Sprintf("%s%02d:%02d:%02d", sign, secs/3600, secs%3600/60, secs%60)
	}
	return fmt.Sprintf("%s%02d:%02d", sign, secs/3600, secs%3600/60)
}
