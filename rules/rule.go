// Package rules holds recurring annual daylight saving rules and the store
// they are looked up from.
//
// A zone whose future is not known transition by transition refers to a
// Pair of alternating rules, typically "daylight saving begins" and
// "daylight saving ends". Each rule yields one dated Instance per year.
package rules

import (
	"fmt"
	"time"

	"github.com/tzperiods/gregorian"
)

// DayForm selects how Day picks the day of a rule.
type DayForm int

const (
	// DayNum is a fixed day of the month, "15".
	DayNum DayForm = iota
	// DayLast is the last given weekday of the month, "lastSun".
	DayLast
	// DayAfter is the first given weekday on or after Num, "Sun>=8".
	DayAfter
	// DayBefore is the last given weekday on or before Num, "Sun<=25".
	DayBefore
	// DayJulian is day Num of the year in 1..365, never counting
	// February 29 (POSIX "Jn").
	DayJulian
	// DayOfYear is the zero based day Num of the year counting February 29
	// (POSIX "n").
	DayOfYear
)

// Day is the ON field of a rule.
type Day struct {
	Form    DayForm
	Num     int
	Weekday time.Weekday
}

// TimeForm tells what clock the AT field of a rule is read on.
type TimeForm int

const (
	Wall TimeForm = iota
	Standard
	Universal
)

// At is the time of day a rule fires. Seconds may be negative or exceed a
// day.
type At struct {
	Seconds int
	Form    TimeForm
}

// Rule is one annual rule.
type Rule struct {
	Name   string
	In     time.Month
	On     Day
	At     At
	Save   int // daylight saving addition in seconds once the rule fired
	Letter string
}

// Pair is a recurring rule pair.
type Pair [2]Rule

// Instance is a rule dated for one year. Season is the year the rule was
// dated for; Year differs from it when the day crosses a year end.
type Instance struct {
	Rule   Rule
	Season int
	Year   int
	Month  int
	Day    int
}

// Local returns the instant the instance fires at, as gregorian seconds on
// the clock named by At.Form.
func (i Instance) Local() int64 {
	return gregorian.DaysFromCivil(i.Year, i.Month, i.Day)*gregorian.SecondsPerDay + int64(i.Rule.At.Seconds)
}

func (i Instance) String() string {
	return fmt.Sprintf("%s %04d-%02d-%02d +%ds save %d", i.Rule.Name, i.Year, i.Month, i.Day, i.Rule.At.Seconds, i.Rule.Save)
}

// Date dates the rule for year. The resulting day may fall into a
// neighbouring month for the "Sun>=" and "Sun<=" forms.
func (r Rule) Date(year int) Instance {
	inst := Instance{Rule: r, Season: year, Year: year, Month: int(r.In)}
	switch r.On.Form {
	case DayNum:
		inst.Day = r.On.Num
	case DayLast:
		last := gregorian.DaysInMonth(year, int(r.In))
		days := gregorian.DaysFromCivil(year, int(r.In), last)
		back := (gregorian.Weekday(days) - int(r.On.Weekday) + 7) % 7
		inst.Day = last - back
	case DayAfter:
		days := gregorian.DaysFromCivil(year, int(r.In), r.On.Num)
		ahead := (int(r.On.Weekday) - gregorian.Weekday(days) + 7) % 7
		inst.Year, inst.Month, inst.Day = gregorian.CivilFromDays(days + int64(ahead))
	case DayBefore:
		days := gregorian.DaysFromCivil(year, int(r.In), r.On.Num)
		back := (gregorian.Weekday(days) - int(r.On.Weekday) + 7) % 7
		inst.Year, inst.Month, inst.Day = gregorian.CivilFromDays(days - int64(back))
	case DayJulian:
		n := r.On.Num
		if gregorian.IsLeap(year) && n >= 60 {
			n++
		}
		inst.Year, inst.Month, inst.Day = gregorian.CivilFromDays(gregorian.DaysFromCivil(year, 1, 1) + int64(n-1))
	case DayOfYear:
		inst.Year, inst.Month, inst.Day = gregorian.CivilFromDays(gregorian.DaysFromCivil(year, 1, 1) + int64(r.On.Num))
	}
	return inst
}
