package tzposix

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tzperiods/rules"
)

func TestParseAll(t *testing.T) {
	var tests = []string{
		"<+00>0<+01>,0/0,J365/25",
		"<+00>0<+02>-2,M3.5.0/1,M10.5.0/3",
		"<+01>-1",
		"<+02>-2",
		"<+0330>-3:30",
		"<+03>-3",
		"<+0430>-4:30",
		"<+04>-4",
		"<+0530>-5:30",
		"<+0545>-5:45",
		"<+05>-5",
		"<+0630>-6:30",
		"<+06>-6",
		"<+07>-7",
		"<+0845>-8:45",
		"<+0845>-8:45:15",
		"<+0845>-8:45:59",
		"<+08>-8",
		"<+09>-9",
		"<+1030>-10:30<+11>-11,M10.1.0,M4.1.0",
		"<+10>-10",
		"<+11>-11",
		"<+11>-11<+12>,M10.1.0,M4.1.0/3",
		"<+1245>-12:45<+1345>,M9.5.0/2:45,M4.1.0/3:45",
		"<+12>-12",
		"<+13>-13",
		"<+14>-14",
		"<-00>0",
		"<-01>1",
		"<-01>1<+00>,M3.5.0/0,M10.5.0/1",
		"<-02>2",
		"<-02>2<-01>,M3.5.0/-1,M10.5.0/0",
		"<-03>3",
		"<-03>3<-02>,M3.2.0,M11.1.0",
		"<-04>4",
		"<-04>4<-03>,M9.1.6/24,M4.1.6/24",
		"<-05>5",
		"<-06>6",
		"<-06>6<-05>,M9.1.6/22,M4.1.6/22",
		"<-07>7",
		"<-08>8",
		"<-0930>9:30",
		"<-09>9",
		"<-10>10",
		"<-11>11",
		"<-12>12",
		"ACST-9:30",
		"ACST-9:30ACDT,M10.1.0,M4.1.0/3",
		"AEST-10",
		"AEST-10AEDT,M10.1.0,M4.1.0/3",
		"AKST9AKDT,M3.2.0,M11.1.0",
		"AST4",
		"AST4ADT,M3.2.0,M11.1.0",
		"AWST-8",
		"CAT-2",
		"CET-1",
		"CET-1CEST,M3.5.0,M10.5.0/3",
		"CST-8",
		"CST5CDT,M3.2.0/0,M11.1.0/1",
		"CST6",
		"CST6CDT,M3.2.0,M11.1.0",
		"ChST-10",
		"EAT-3",
		"EET-2",
		"EET-2EEST,M3.4.4/50,M10.4.4/50",
		"EET-2EEST,M3.5.0,M10.5.0/3",
		"EET-2EEST,M3.5.0/0,M10.5.0/0",
		"EET-2EEST,M3.5.0/3,M10.5.0/4",
		"EET-2EEST,M4.5.5/0,M10.5.4/24",
		"EST5",
		"EST5EDT,M3.2.0,M11.1.0",
		"GMT0",
		"GMT0BST,M3.5.0/1,M10.5.0",
		"GMT0IST,M3.5.0/1,M10.5.0",
		"HKT-8",
		"HST10",
		"HST10HDT,M3.2.0,M11.1.0",
		"IST-2IDT,M3.4.4/26,M10.5.0",
		"IST-5:30",
		"JST-9",
		"KST-9",
		"MET-1MEST,M3.5.0,M10.5.0/3",
		"MSK-3",
		"MST7",
		"MST7MDT,M3.2.0,M11.1.0",
		"NST3:30NDT,M3.2.0,M11.1.0",
		"NZST-12NZDT,M9.5.0,M4.1.0/3",
		"PKT-5",
		"PST-8",
		"PST8PDT,M3.2.0,M11.1.0",
		"SAST-2",
		"SST11",
		"UTC0",
		"WAT-1",
		"WET0WEST,M3.5.0/1,M10.5.0",
		"WIB-7",
		"WIT-9",
		"WITA-8",
	}

	for _, ptz := range tests {
		t.Run(ptz, func(t *testing.T) {
			spec, err := Parse(ptz)
			require.NoError(t, err)
			if pair, ok := spec.Pair(); ok {
				assert.Equal(t, spec.DstOffset-spec.StdOffset, pair[0].Save)
				assert.Zero(t, pair[1].Save)
			}
			ans, err := HumanReadableTZ(ptz)
			require.NoError(t, err)
			assert.NotEmpty(t, ans)
		})
	}
}

func TestParse(t *testing.T) {
	spec, err := Parse("EST5EDT,M3.2.0,M11.1.0")
	require.NoError(t, err)
	assert.Equal(t, -5*3600, spec.StdOffset)
	assert.Equal(t, -4*3600, spec.DstOffset)
	assert.Equal(t, "EST/EDT", spec.Format())

	pair, ok := spec.Pair()
	require.True(t, ok)
	assert.Equal(t, rules.Rule{
		Name: "ESTEDT",
		In:   time.March,
		On:   rules.Day{Form: rules.DayAfter, Num: 8, Weekday: time.Sunday},
		At:   rules.At{Seconds: 7200},
		Save: 3600,
	}, pair[0])
	assert.Equal(t, rules.Rule{
		Name: "ESTEDT",
		In:   time.November,
		On:   rules.Day{Form: rules.DayAfter, Num: 1, Weekday: time.Sunday},
		At:   rules.At{Seconds: 7200},
	}, pair[1])
}

func TestParseRuleForms(t *testing.T) {
	spec, err := Parse("<+00>0<+01>,0/0,J365/25")
	require.NoError(t, err)
	assert.Equal(t, "+00/+01", spec.Format())
	assert.Equal(t, rules.Day{Form: rules.DayOfYear, Num: 0}, spec.Start.On)
	assert.Equal(t, rules.At{Seconds: 0}, spec.Start.At)
	assert.Equal(t, rules.Day{Form: rules.DayJulian, Num: 365}, spec.End.On)
	assert.Equal(t, rules.At{Seconds: 25 * 3600}, spec.End.At)

	spec, err = Parse("<-02>2<-01>,M3.5.0/-1,M10.5.0/0")
	require.NoError(t, err)
	assert.Equal(t, rules.Day{Form: rules.DayLast, Weekday: time.Sunday}, spec.Start.On)
	assert.Equal(t, -3600, spec.Start.At.Seconds)

	spec, err = Parse("IST-2IDT,M3.4.4/26,M10.5.0")
	require.NoError(t, err)
	assert.Equal(t, rules.Day{Form: rules.DayAfter, Num: 22, Weekday: time.Thursday}, spec.Start.On)
	assert.Equal(t, 26*3600, spec.Start.At.Seconds)
	// 2024-03-28 is the fourth Thursday, 26:00 is 02:00 on Friday
	inst := spec.Start.Date(2024)
	assert.Equal(t, []int{2024, 3, 28}, []int{inst.Year, inst.Month, inst.Day})
}

func TestParseDefaults(t *testing.T) {
	spec, err := Parse("CET-1CEST")
	require.NoError(t, err)
	assert.Equal(t, 3600, spec.StdOffset)
	assert.Equal(t, 7200, spec.DstOffset)
	assert.Equal(t, time.March, spec.Start.In)
	assert.Equal(t, time.November, spec.End.In)

	spec, err = Parse("JST-9")
	require.NoError(t, err)
	assert.False(t, spec.HasDST())
	_, ok := spec.Pair()
	assert.False(t, ok)
	assert.Equal(t, "JST", spec.Format())
}

func TestParseErrors(t *testing.T) {
	for _, bad := range []string{
		"",
		"E5",
		"EST5EDT,M3.2.0",
		"EST5EDT,M13.2.0,M11.1.0",
		"EST5EDT,M3.6.0,M11.1.0",
		"EST5EDT,J0,M11.1.0",
		"EST5EDT,366,M11.1.0",
	} {
		t.Run(bad, func(t *testing.T) {
			_, err := Parse(bad)
			assert.Error(t, err)
		})
	}
}

func TestHumanReadableTZ(t *testing.T) {
	tests := []struct {
		tz   string
		want string
	}{
		{"PST8PDT,M3.2.0,M11.1.0", "Standard Time: PST (UTC -08:00)\n" +
			"Daylight Time: PDT (UTC -07:00)\n" +
			"Rules: Starts on the second Sunday of March at 02:00:00, Ends on the first Sunday of November at 02:00:00"},
		{"EET-2EEST,M4.5.5/0,M10.5.4/24", "Standard Time: EET (UTC +02:00)\n" +
			"Daylight Time: EEST (UTC +03:00)\n" +
			"Rules: Starts on the last Friday of April at 00:00:00, Ends on the last Thursday of October at 24:00:00"},
		{"<+00>0<+01>,0/0,J365/25", "Standard Time: <+00> (UTC +00:00)\n" +
			"Daylight Time: <+01> (UTC +01:00)\n" +
			"Rules: Starts on day 0 of the year at 00:00:00, Ends on Julian day 365 at 25:00:00"},
		{"GMT0", "Standard Time: GMT (UTC +00:00)\n(No Daylight Saving Time rules)"},
		{"<+0845>-8:45:15", "Standard Time: <+0845> (UTC +08:45:15)\n(No Daylight Saving Time rules)"},
	}
	for _, tt := range tests {
		t.Run(tt.tz, func(t *testing.T) {
			ans, err := HumanReadableTZ(tt.tz)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ans)
		})
	}
}

func TestDescribeRule(t *testing.T) {
	tests := []struct {
		rule rules.Rule
		want string
	}{
		{rules.Rule{In: time.March, On: rules.Day{Form: rules.DayAfter, Num: 8, Weekday: time.Sunday}, At: rules.At{Seconds: 7200}},
			"on the second Sunday of March at 02:00:00"},
		{rules.Rule{In: time.April, On: rules.Day{Form: rules.DayAfter, Num: 2, Weekday: time.Friday}, At: rules.At{Seconds: 3600, Form: rules.Universal}},
			"on the first Friday on or after April 2 at 01:00:00 UTC"},
		{rules.Rule{In: time.October, On: rules.Day{Form: rules.DayBefore, Num: 25, Weekday: time.Sunday}, At: rules.At{Seconds: 7200, Form: rules.Standard}},
			"on the last Sunday on or before October 25 at 02:00:00 standard time"},
		{rules.Rule{In: time.May, On: rules.Day{Num: 1}},
			"on May 1 at 00:00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, DescribeRule(tt.rule))
		})
	}
}
