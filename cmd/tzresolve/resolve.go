package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tzperiods/gregorian"
	"github.com/tzperiods/resolve"
)

// now is replaced by tests.
var now = time.Now

func newUTCCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "utc ZONE INSTANT",
		Short: "Show the period in effect at a UTC instant",
		Long: `Show the period in effect in ZONE at INSTANT. INSTANT is a UTC date and time
(2024-07-01T12:00:00), @ followed by seconds since 1970-01-01 UTC, or "now".`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			zone := args[0]
			in, err := parseInstant(args[1])
			if err != nil {
				return err
			}
			s, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			p, err := s.resolver().PeriodForUTCInstant(cmd.Context(), in, zone)
			if err != nil {
				return err
			}
			return encode(cmd.OutOrStdout(), opts.output, newUTCResult(zone, in.Seconds(), p))
		},
	}
	addOutputFlag(cmd, opts)
	return cmd
}

func newWallCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wall ZONE DATETIME",
		Short: "Classify a wall clock date and time",
		Long: `Resolve the local date and time DATETIME (2024-03-10T02:30:00) in ZONE. The
result is the period in effect, the two sides of the gap when clocks skipped
DATETIME, or both periods when DATETIME occurred twice.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			zone := args[0]
			dt, err := gregorian.ParseDateTime(args[1])
			if err != nil {
				return err
			}
			s, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			res, err := s.resolver().PeriodForWallInstant(cmd.Context(), dt, zone)
			if err != nil {
				return err
			}
			return encode(cmd.OutOrStdout(), opts.output, newWallResult(zone, dt, res))
		},
	}
	addOutputFlag(cmd, opts)
	return cmd
}

const nanosPerDay = gregorian.SecondsPerDay * int64(time.Second)

func parseInstant(s string) (resolve.Instant, error) {
	if s == "now" {
		t := now().UTC()
		days := gregorian.DaysFromCivil(t.Year(), int(t.Month()), t.Day())
		clock := int64(t.Hour()*3600+t.Minute()*60+t.Second())*int64(time.Second) + int64(t.Nanosecond())
		return resolve.Instant{Days: days, Fraction: clock, TicksPerDay: nanosPerDay}, nil
	}
	var secs int64
	if unix, ok := strings.CutPrefix(s, "@"); ok {
		n, err := strconv.ParseInt(unix, 10, 64)
		if err != nil {
			return resolve.Instant{}, fmt.Errorf("invalid unix time %q: %w", s, err)
		}
		secs = gregorian.FromUnix(n)
	} else {
		dt, err := gregorian.ParseDateTime(s)
		if err != nil {
			return resolve.Instant{}, err
		}
		secs = gregorian.ToSeconds(dt)
	}
	days := secs / gregorian.SecondsPerDay
	frac := secs % gregorian.SecondsPerDay
	if frac < 0 {
		days--
		frac += gregorian.SecondsPerDay
	}
	return resolve.Instant{Days: days, Fraction: frac, TicksPerDay: gregorian.SecondsPerDay}, nil
}
