package rules

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseMonth parses an IN field: a month name or an unambiguous prefix of
// at least three letters.
func ParseMonth(s string) (time.Month, error) {
	ls := strings.ToLower(s)
	if len(ls) >= 3 {
		for m := time.January; m <= time.December; m++ {
			if strings.HasPrefix(strings.ToLower(m.String()), ls) {
				return m, nil
			}
		}
	}
	return 0, fmt.Errorf("invalid month %q", s)
}

func parseWeekday(s string) (time.Weekday, error) {
	ls := strings.ToLower(s)
	if len(ls) >= 2 {
		for d := time.Sunday; d <= time.Saturday; d++ {
			if strings.HasPrefix(strings.ToLower(d.String()), ls) {
				return d, nil
			}
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}

// ParseDay parses an ON field: "5", "lastSun", "Sun>=8" or "Sun<=25".
func ParseDay(s string) (Day, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 31 {
			return Day{}, fmt.Errorf("day out of range %q", s)
		}
		return Day{Form: DayNum, Num: n}, nil
	}
	if rest, ok := strings.CutPrefix(s, "last"); ok {
		wd, err := parseWeekday(rest)
		if err != nil {
			return Day{}, err
		}
		return Day{Form: DayLast, Weekday: wd}, nil
	}
	for sep, form := range map[string]DayForm{">=": DayAfter, "<=": DayBefore} {
		wds, nums, ok := strings.Cut(s, sep)
		if !ok {
			continue
		}
		wd, err := parseWeekday(wds)
		if err != nil {
			return Day{}, err
		}
		n, err := strconv.Atoi(nums)
		if err != nil || n < 1 || n > 31 {
			return Day{}, fmt.Errorf("invalid day %q", s)
		}
		return Day{Form: form, Num: n, Weekday: wd}, nil
	}
	return Day{}, fmt.Errorf("invalid day %q", s)
}

// ParseAt parses an AT field such as "2:00", "2:00s" or "1:00u". A missing
// suffix or "w" means wall clock time.
func ParseAt(s string) (At, error) {
	at := At{Form: Wall}
	if s == "" {
		return at, fmt.Errorf("empty time")
	}
	switch s[len(s)-1] {
	case 's':
		at.Form = Standard
		s = s[:len(s)-1]
	case 'u', 'g', 'z':
		at.Form = Universal
		s = s[:len(s)-1]
	case 'w':
		s = s[:len(s)-1]
	}
	secs, err := ParseDuration(s)
	if err != nil {
		return at, err
	}
	at.Seconds = secs
	return at, nil
}

// ParseSave parses a SAVE field. "-" means no saving.
func ParseSave(s string) (int, error) {
	if s == "-" || s == "" {
		return 0, nil
	}
	// SAVE may carry a s/d suffix that only flags standard or daylight time
	s = strings.TrimRight(s, "sd")
	return ParseDuration(s)
}

// ParseDuration parses [-]h[:mm[:ss]] into seconds.
func ParseDuration(s string) (int, error) {
	if s == "-" {
		return 0, nil
	}
	sign := 1
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		sign = -1
		s = rest
	} else {
		s = strings.TrimPrefix(s, "+")
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 || parts[0] == "" {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	total := 0
	mult := 3600
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || (i > 0 && n > 59) {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		total += n * mult
		mult /= 60
	}
	return sign * total, nil
}
