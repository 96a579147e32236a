// Package period holds the transition table of a zone and the two lookups
// over it: the period in effect at an absolute instant, and the
// classification of a wall clock instant as unambiguous, in a gap or
// ambiguous.
//
// All instants are gregorian seconds (see package gregorian). A table is
// ordered most recent transition first and is never modified by a lookup.
package period

import (
	"errors"
	"fmt"
	"math"
)

// Always is the from value of a record that applies since the beginning of
// time.
const Always int64 = math.MinInt64

// Never is the open end of the most recent record.
const Never int64 = math.MaxInt64

// Period is a set of offsets and an abbreviation in effect for some span of
// time.
type Period struct {
	UTCOffset    int    `json:"utcOffset"`    // standard offset, seconds east of UTC
	StdOffset    int    `json:"stdOffset"`    // daylight saving addition in seconds
	Abbreviation string `json:"abbreviation"` // "PST"
}

// TotalOffset is the offset of wall clock time from UTC.
func (p Period) TotalOffset() int { return p.UTCOffset + p.StdOffset }

func (p Period) String() string {
	return fmt.Sprintf("%s (UTC%s, dst %s)", p.Abbreviation, FormatOffset(p.TotalOffset()), FormatOffset(p.StdOffset))
}

// RuleRef names the recurring rule pair that governs a zone after the last
// known transition, together with the abbreviation format ("E%sT", "GMT/BST").
type RuleRef struct {
	ID     string `json:"id"`
	Format string `json:"format"`
}

// Transition is one record of a table.
type Transition struct {
	From     int64    // first instant, UTC, the record applies to
	Period   Period   // in effect from From onward
	Previous Period   // in effect immediately before From
	Rule     *RuleRef // set only on the most recent record of a rule governed zone
}

// Table is the transition table of one zone, most recent record first.
type Table []Transition

// Fixed returns the single record table of a zone with a constant offset.
func Fixed(p Period) Table {
	return Table{{From: Always, Period: p, Previous: p}}
}

// Extrapolation signals that a lookup reached a record governed by a
// recurring rule pair. UTCOffset is the base offset rules are evaluated at.
type Extrapolation struct {
	UTCOffset int
	Rule      RuleRef
}

func extrapolate(tr Transition) *Extrapolation {
	return &Extrapolation{UTCOffset: tr.Period.UTCOffset, Rule: *tr.Rule}
}

var ErrInvalidTable = errors.New("invalid transition table")

// Validate checks the ordering invariants of the table. Lookups assume a
// valid table and never call it.
func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidTable)
	}
	for i, tr := range t {
		if tr.Rule != nil && i != 0 {
			return fmt.Errorf("%w: record %d carries rule %q but is not the most recent", ErrInvalidTable, i, tr.Rule.ID)
		}
		if tr.From == Always && i != len(t)-1 {
			return fmt.Errorf("%w: record %d applies always but is not the oldest", ErrInvalidTable, i)
		}
		if i == 0 {
			continue
		}
		prev := t[i-1]
		if tr.From >= prev.From {
			return fmt.Errorf("%w: record %d at %d not before record %d at %d", ErrInvalidTable, i, tr.From, i-1, prev.From)
		}
		if prev.Previous != tr.Period {
			return fmt.Errorf("%w: record %d previous period %v does not match %v", ErrInvalidTable, i-1, prev.Previous, tr.Period)
		}
	}
	return nil
}

// FormatOffset renders seconds east of UTC as +hh:mm or +hh:mm:ss.
func FormatOffset(secs int) string {
	sign := "+"
	if secs < 0 {
		sign = "-"
		secs = -secs
	}
	h, m, s := secs/3600, secs%3600/60, secs%60
	if s != 0 {
		return fmt.Sprintf("%s%02d:%02d:%02d", sign, h, m, s)
	}
	return fmt.Sprintf("%s%02d:%02d", sign, h, m)
}
