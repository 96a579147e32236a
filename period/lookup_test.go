package period

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tzperiods/gregorian"
)

var (
	est = Period{UTCOffset: -5 * 3600, StdOffset: 0, Abbreviation: "EST"}
	edt = Period{UTCOffset: -5 * 3600, StdOffset: 3600, Abbreviation: "EDT"}
)

func at(y, m, d, h, mi int) int64 {
	return gregorian.ToSeconds(gregorian.DateTime{Year: y, Month: m, Day: d, Hour: h, Minute: mi})
}

// newYork holds the 2023 and 2024 transitions of America/New_York.
func newYork() Table {
	return Table{
		{From: at(2024, 11, 3, 6, 0), Period: est, Previous: edt},
		{From: at(2024, 3, 10, 7, 0), Period: edt, Previous: est},
		{From: at(2023, 11, 5, 6, 0), Period: est, Previous: edt},
		{From: at(2023, 3, 12, 7, 0), Period: edt, Previous: est},
		{From: Always, Period: est, Previous: est},
	}
}

func TestForUTC(t *testing.T) {
	tbl := newYork()
	require.NoError(t, tbl.Validate())

	cases := []struct {
		name string
		secs int64
		want Period
	}{
		{"summer", at(2024, 7, 1, 12, 0), edt},
		{"winter", at(2024, 1, 15, 12, 0), est},
		{"at spring transition", at(2024, 3, 10, 7, 0), edt},
		{"one second before spring transition", at(2024, 3, 10, 7, 0) - 1, est},
		{"at fall transition", at(2024, 11, 3, 6, 0), est},
		{"one second before fall transition", at(2024, 11, 3, 6, 0) - 1, edt},
		{"after last transition", at(2030, 6, 1, 0, 0), est},
		{"before first transition", at(1900, 1, 1, 0, 0), est},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p, ext := tbl.ForUTC(c.secs)
			assert.Nil(t, ext)
			assert.Equal(t, c.want, p)
		})
	}
}

func TestForUTCUnderflow(t *testing.T) {
	tbl := Table{
		{From: at(2024, 3, 10, 7, 0), Period: edt, Previous: est},
		{From: at(2023, 11, 5, 6, 0), Period: est, Previous: edt},
	}
	p, ext := tbl.ForUTC(at(2000, 1, 1, 0, 0))
	assert.Nil(t, ext)
	assert.Equal(t, est, p)

	w, ext := tbl.ForWall(at(2000, 1, 1, 0, 0))
	assert.Nil(t, ext)
	assert.Equal(t, WallResult{Kind: Unambiguous, Period: est}, w)
}

func TestForWall(t *testing.T) {
	tbl := newYork()

	cases := []struct {
		name string
		secs int64
		want WallResult
	}{
		{"before spring forward", at(2024, 3, 10, 1, 30), WallResult{Kind: Unambiguous, Period: est}},
		{"last second before gap", at(2024, 3, 10, 2, 0) - 1, WallResult{Kind: Unambiguous, Period: est}},
		{"start of gap", at(2024, 3, 10, 2, 0), WallResult{
			Kind:   Gap,
			Before: Boundary{Period: est, Wall: at(2024, 3, 10, 2, 0)},
			After:  Boundary{Period: edt, Wall: at(2024, 3, 10, 3, 0)},
		}},
		{"inside gap", at(2024, 3, 10, 2, 30), WallResult{
			Kind:   Gap,
			Before: Boundary{Period: est, Wall: at(2024, 3, 10, 2, 0)},
			After:  Boundary{Period: edt, Wall: at(2024, 3, 10, 3, 0)},
		}},
		{"end of gap belongs to new period", at(2024, 3, 10, 3, 0), WallResult{Kind: Unambiguous, Period: edt}},
		{"summer", at(2024, 7, 4, 12, 0), WallResult{Kind: Unambiguous, Period: edt}},
		{"last second before overlap", at(2024, 11, 3, 1, 0) - 1, WallResult{Kind: Unambiguous, Period: edt}},
		{"start of overlap", at(2024, 11, 3, 1, 0), WallResult{Kind: Ambiguous, Former: edt, Latter: est}},
		{"inside overlap", at(2024, 11, 3, 1, 30), WallResult{Kind: Ambiguous, Former: edt, Latter: est}},
		{"end of overlap", at(2024, 11, 3, 2, 0), WallResult{Kind: Unambiguous, Period: est}},
		{"inside 2023 overlap", at(2023, 11, 5, 1, 59), WallResult{Kind: Ambiguous, Former: edt, Latter: est}},
		{"oldest record", at(1950, 6, 1, 0, 0), WallResult{Kind: Unambiguous, Period: est}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w, ext := tbl.ForWall(c.secs)
			require.Nil(t, ext)
			assert.Equal(t, c.want, w)
		})
	}
}

func TestFixedTable(t *testing.T) {
	utc := Period{Abbreviation: "UTC"}
	tbl := Fixed(utc)
	require.NoError(t, tbl.Validate())
	for _, secs := range []int64{0, 1, at(2024, 3, 10, 2, 30), at(9999, 12, 31, 23, 59), Never} {
		p, ext := tbl.ForUTC(secs)
		assert.Nil(t, ext)
		assert.Equal(t, utc, p)

		w, ext := tbl.ForWall(secs)
		assert.Nil(t, ext)
		assert.Equal(t, WallResult{Kind: Unambiguous, Period: utc}, w)
	}
}

func TestExtrapolationSignal(t *testing.T) {
	us := &RuleRef{ID: "US", Format: "E%sT"}
	tbl := Table{
		{From: at(2024, 11, 3, 6, 0), Period: est, Previous: edt, Rule: us},
		{From: at(2024, 3, 10, 7, 0), Period: edt, Previous: est},
		{From: Always, Period: est, Previous: est},
	}
	require.NoError(t, tbl.Validate())

	_, ext := tbl.ForUTC(at(2030, 7, 1, 0, 0))
	require.NotNil(t, ext)
	assert.Equal(t, Extrapolation{UTCOffset: -5 * 3600, Rule: *us}, *ext)

	_, ext = tbl.ForWall(at(2030, 7, 1, 0, 0))
	require.NotNil(t, ext)
	assert.Equal(t, "US", ext.Rule.ID)

	// the overlap of the last fixed transition is still answered statically
	w, ext := tbl.ForWall(at(2024, 11, 3, 1, 30))
	assert.Nil(t, ext)
	assert.Equal(t, Ambiguous, w.Kind)

	p, ext := tbl.ForUTC(at(2024, 7, 1, 0, 0))
	assert.Nil(t, ext)
	assert.Equal(t, edt, p)

	// a zone that is rule governed from the beginning of time
	_, ext = Table{{From: Always, Period: est, Previous: est, Rule: us}}.ForWall(0)
	assert.NotNil(t, ext)
}

func TestValidate(t *testing.T) {
	us := &RuleRef{ID: "US"}
	cases := []struct {
		name string
		tbl  Table
	}{
		{"empty", Table{}},
		{"ascending", Table{
			{From: at(2023, 3, 12, 7, 0), Period: edt, Previous: est},
			{From: at(2024, 3, 10, 7, 0), Period: est, Previous: edt},
		}},
		{"rule on older record", Table{
			{From: at(2024, 3, 10, 7, 0), Period: edt, Previous: est},
			{From: at(2023, 11, 5, 6, 0), Period: est, Previous: edt, Rule: us},
		}},
		{"always in the middle", Table{
			{From: at(2024, 3, 10, 7, 0), Period: edt, Previous: est},
			{From: Always, Period: est, Previous: est},
			{From: Always, Period: est, Previous: est},
		}},
		{"broken previous link", Table{
			{From: at(2024, 3, 10, 7, 0), Period: edt, Previous: edt},
			{From: Always, Period: est, Previous: est},
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.ErrorIs(t, c.tbl.Validate(), ErrInvalidTable)
		})
	}
}

func TestFormatOffset(t *testing.T) {
	assert.Equal(t, "-05:00", FormatOffset(-5*3600))
	assert.Equal(t, "+05:30", FormatOffset(5*3600+30*60))
	assert.Equal(t, "+00:00", FormatOffset(0))
	assert.Equal(t, "-00:25:21", FormatOffset(-1521))
	assert.Equal(t, "EDT (UTC-04:00, dst +01:00)", edt.String())
}
