package main

import (
	"bytes"
	"context"
	"fmt"
	"runtime"

	"github.com/gobwas/glob"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	slogcontext "github.com/veqryn/slog-context"
	"golang.org/x/sync/errgroup"

	"github.com/tzperiods/dynamic"
	"github.com/tzperiods/gregorian"
	"github.com/tzperiods/internal/logging"
	"github.com/tzperiods/period"
	"github.com/tzperiods/posix/tzposix"
)

func newZonesCommand(opts *options) *cobra.Command {
	var match string
	cmd := &cobra.Command{
		Use:   "zones",
		Short: "List the known zones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			zones, err := matchZones(cmd.Context(), s, match)
			if err != nil {
				return err
			}
			for _, zone := range zones {
				fmt.Fprintln(cmd.OutOrStdout(), zone)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&match, "match", "m", "", "Only zones matching the glob, America/*")
	return cmd
}

func matchZones(ctx context.Context, s *stores, pattern string) ([]string, error) {
	zones, err := s.periods.Zones(ctx)
	if err != nil {
		return nil, err
	}
	if pattern == "" {
		return zones, nil
	}
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("invalid zone pattern %q: %w", pattern, err)
	}
	matched := zones[:0]
	for _, zone := range zones {
		if g.Match(zone) {
			matched = append(matched, zone)
		}
	}
	logging.Trace(ctx, "matched zones", "pattern", pattern, "zones", len(matched))
	return matched, nil
}

func newDescribeCommand(opts *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "describe ZONE",
		Short: "Show the transition table and rules of a zone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			zone := args[0]
			s, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			tbl, err := s.periods.Periods(cmd.Context(), zone)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), transitionTable(tbl, limit))
			if len(tbl) == 0 || tbl[0].Rule == nil {
				return nil
			}
			ref := tbl[0].Rule
			fmt.Fprintf(cmd.OutOrStdout(), "\nRule %s, format %s\n", ref.ID, ref.Format)
			if desc, err := tzposix.HumanReadableTZ(ref.ID); err == nil {
				fmt.Fprintln(cmd.OutOrStdout(), desc)
				return nil
			}
			pair, err := s.rules.Rules(ref.ID)
			if err != nil {
				return err
			}
			for _, r := range pair {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s, save %s, letter %q\n",
					r.Name, tzposix.DescribeRule(r), period.FormatOffset(r.Save), r.Letter)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Show at most this many records, most recent first, 0 shows all")
	return cmd
}

func transitionTable(tbl period.Table, limit int) string {
	var buf bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.AppendHeader(table.Row{"From (UTC)", "Abbreviation", "Offset", "DST", "Rule"})
	shown := tbl
	if limit > 0 && len(tbl) > limit {
		shown = tbl[:limit]
	}
	for _, tr := range shown {
		from := "always"
		if tr.From != period.Always {
			from = gregorian.FromSeconds(tr.From).String()
		}
		rule := ""
		if tr.Rule != nil {
			rule = tr.Rule.ID
		}
		t.AppendRow(table.Row{from, tr.Period.Abbreviation, period.FormatOffset(tr.Period.TotalOffset()), period.FormatOffset(tr.Period.StdOffset), rule})
	}
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
	if hidden := len(tbl) - len(shown); hidden > 0 {
		fmt.Fprintf(&buf, "%d earlier records not shown\n", hidden)
	}
	return buf.String()
}

func newVerifyCommand(opts *options) *cobra.Command {
	var match string
	var jobs int
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that every zone loads and extrapolates",
		Long: `Load the table of every zone, check its ordering invariants and, for zones
governed by a rule pair, generate this year's periods from the rules.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := opts.open(ctx)
			if err != nil {
				return err
			}
			zones, err := matchZones(ctx, s, match)
			if err != nil {
				return err
			}
			secs := gregorian.FromUnix(now().Unix())

			failures := make([]error, len(zones))
			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(max(jobs, 1))
			for i, zone := range zones {
				g.Go(func() error {
					failures[i] = verifyZone(gctx, s, zone, secs)
					return gctx.Err()
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			failed := 0
			for i, err := range failures {
				if err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", zones[i], err)
				}
			}
			slogcontext.FromCtx(ctx).Info("Statistics", "zones", len(zones), "failed", failed)
			if failed > 0 {
				return fmt.Errorf("%d of %d zones failed verification", failed, len(zones))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok %d zones\n", len(zones))
			return nil
		},
	}
	cmd.Flags().StringVarP(&match, "match", "m", "", "Only zones matching the glob, Europe/*")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "Zones verified concurrently")
	return cmd
}

func verifyZone(ctx context.Context, s *stores, zone string, secs int64) error {
	tbl, err := s.periods.Periods(ctx, zone)
	if err != nil {
		return err
	}
	if err := tbl.Validate(); err != nil {
		return err
	}
	if tbl[0].Rule == nil {
		return nil
	}
	ext := period.Extrapolation{UTCOffset: tbl[0].Period.UTCOffset, Rule: *tbl[0].Rule}
	dyn, err := dynamic.Generate(secs, ext, s.rules)
	if err != nil {
		return err
	}
	if err := dyn.Validate(); err != nil {
		return fmt.Errorf("generated %w", err)
	}
	logging.Trace(ctx, "verified zone", "zone", zone, "records", len(tbl), "generated", len(dyn))
	return nil
}
