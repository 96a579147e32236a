// Package builder turns dated rule instances into transition tables.
//
// Build produces chronological spans, the builder's own form, and Normalize
// turns them into the most-recent-first table the lookups in package period
// scan.
package builder

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/tzperiods/period"
	"github.com/tzperiods/rules"
)

// Mode tells Build whether its output is part of a zone's history.
type Mode int

const (
	// Static output is stitched to the period in effect before the zone
	// line starts.
	Static Mode = iota
	// DynamicFarFuture output is a short synthetic window around a far
	// future instant and never stitched to history.
	DynamicFarFuture
)

func (m Mode) String() string {
	if m == DynamicFarFuture {
		return "dynamic far future"
	}
	return "static"
}

// Zone describes one zone line: a standard offset governed by a rule pair
// between two UTC instants.
type Zone struct {
	StdOffset int
	Rule      string
	Format    string
	From      int64
	Until     int64
	// Before is the period in effect before From. Only Static builds use it.
	Before *period.Period
}

// Span is a period together with the UTC instants it is in effect between.
type Span struct {
	From     int64
	Until    int64
	Period   period.Period
	Previous *period.Period // set on the first span of a stitched build
	Rule     *period.RuleRef
}

// Build orders the instances of one rule pair by the UTC instant they fire
// at and converts them into spans covering zone.From to zone.Until. A rule
// given in wall clock time fires on the clock set by the other rule of the
// pair. An instance that fires at or after an instance dated for a later year
// is superseded by it, so an end rule falling past the next year's start
// leaves daylight saving in effect all year. Before the first instance the
// state of the chronologically last instance applies, since the rules of a
// pair alternate.
func Build(zone Zone, instances []rules.Instance, mode Mode) []Span {
	events := make([]event, len(instances))
	for i, inst := range instances {
		events[i] = event{inst: inst, utc: toUTC(inst, zone.StdOffset, priorSave(inst, instances))}
	}
	slices.SortStableFunc(events, func(a, b event) int {
		if c := cmp.Compare(a.utc, b.utc); c != 0 {
			return c
		}
		return cmp.Compare(b.inst.Season, a.inst.Season)
	})
	kept := events[:0]
	for _, e := range events {
		if n := len(kept); n > 0 && e.inst.Season < kept[n-1].inst.Season {
			continue
		}
		kept = append(kept, e)
	}

	save, letter := 0, ""
	if n := len(kept); n > 0 {
		save, letter = kept[n-1].inst.Rule.Save, kept[n-1].inst.Rule.Letter
	}
	current := func() period.Period {
		return period.Period{
			UTCOffset:    zone.StdOffset,
			StdOffset:    save,
			Abbreviation: FormatAbbreviation(zone.Format, letter, zone.StdOffset, save),
		}
	}

	spans := []Span{{From: zone.From, Period: current()}}
	if mode == Static && zone.Before != nil {
		before := *zone.Before
		spans[0].Previous = &before
	}

	for _, e := range kept {
		if e.utc >= zone.Until {
			break
		}
		save, letter = e.inst.Rule.Save, e.inst.Rule.Letter
		p := current()
		last := &spans[len(spans)-1]
		switch {
		case e.utc <= zone.From:
			// fired before the zone line started, it only sets the
			// starting state
			last.Period = p
		case e.utc == last.From:
			last.Period = p
			if n := len(spans); spans[n-2].Period == p {
				spans = spans[:n-1]
			}
		case p != last.Period:
			last.Until = e.utc
			spans = append(spans, Span{From: e.utc, Period: p})
		}
	}
	spans[len(spans)-1].Until = zone.Until
	return spans
}

type event struct {
	inst rules.Instance
	utc  int64
}

// priorSave returns the daylight saving in effect just before inst fires,
// the save of the other rule of its pair.
func priorSave(inst rules.Instance, instances []rules.Instance) int {
	for _, other := range instances {
		if other.Rule != inst.Rule {
			return other.Rule.Save
		}
	}
	return inst.Rule.Save
}

func toUTC(inst rules.Instance, stdOffset, save int) int64 {
	local := inst.Local()
	switch inst.Rule.At.Form {
	case rules.Universal:
		return local
	case rules.Standard:
		return local - int64(stdOffset)
	}
	return local - int64(stdOffset) - int64(save)
}

// Normalize converts chronological spans into a table, most recent first,
// with the previous period of every record filled in.
func Normalize(spans []Span) period.Table {
	tbl := make(period.Table, len(spans))
	for i, s := range spans {
		prev := s.Period
		switch {
		case i > 0:
			prev = spans[i-1].Period
		case s.Previous != nil:
			prev = *s.Previous
		}
		tbl[len(spans)-1-i] = period.Transition{From: s.From, Period: s.Period, Previous: prev, Rule: s.Rule}
	}
	return tbl
}

// FormatAbbreviation expands a zone FORMAT: "GMT/BST" picks the side by
// whether saving is in effect, %s is replaced by the rule letter and %z by
// the numeric total offset.
func FormatAbbreviation(format, letter string, stdOffset, save int) string {
	if std, dst, ok := strings.Cut(format, "/"); ok {
		if save != 0 {
			return dst
		}
		return std
	}
	if strings.Contains(format, "%s") {
		format = strings.ReplaceAll(format, "%s", letter)
	}
	if strings.Contains(format, "%z") {
		format = strings.ReplaceAll(format, "%z", numericOffset(stdOffset+save))
	}
	return format
}

// numericOffset renders an offset the way tz abbreviations do: -04, +0530.
func numericOffset(secs int) string {
	sign := "+"
	if secs < 0 {
		sign = "-"
		secs = -secs
	}
	h, m, s := secs/3600, secs%3600/60, secs%60
	switch {
	case s != 0:
		return fmt.Sprintf("%s%02d%02d%02d", sign, h, m, s)
	case m != 0:
		return fmt.Sprintf("%s%02d%02d", sign, h, m)
	}
	return fmt.Sprintf("%s%02d", sign, h)
}
