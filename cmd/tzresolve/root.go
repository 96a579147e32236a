package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	slogcontext "github.com/veqryn/slog-context"

	"github.com/tzperiods/internal/logging"
	"github.com/tzperiods/resolve"
	"github.com/tzperiods/rules"
	"github.com/tzperiods/store"
)

type options struct {
	level     slog.LevelVar
	logFormat string
	zoneDirs  []string
	tables    []string
	output    encoding
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	opts.level.Set(slog.LevelWarn)

	cmd := &cobra.Command{
		Use:   "tzresolve [sub-command]",
		Short: "Resolve time zone periods from zoneinfo and table files",
		Long: `tzresolve answers which UTC offset, daylight saving offset and abbreviation
are in effect in a time zone at a given instant. Zones are read from TZif
zoneinfo directories and from YAML table files; table files are searched
first. Instants past the last known transition are computed from the zone's
recurring daylight saving rules.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			h, err := logging.NewHandler(cmd.ErrOrStderr(), opts.logFormat, &opts.level)
			if err != nil {
				return err
			}
			logger := slog.New(h)
			slog.SetDefault(logger)
			cmd.SetContext(slogcontext.NewCtx(cmd.Context(), logger))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.FuncP("loglevel", "l", "Set loglevel to trace, debug, info, warning, error or fatal", func(value string) error {
		lv, err := logging.ParseLevel(value)
		if err != nil {
			return err
		}
		opts.level.Set(lv)
		return nil
	})
	flags.StringVar(&opts.logFormat, "logformat", "text", "Log format, text or json")
	flags.StringSliceVar(&opts.zoneDirs, "zoneinfo", defaultZoneDirs(), "zoneinfo directories to read TZif files from")
	flags.StringArrayVarP(&opts.tables, "table", "t", nil, "YAML table file declaring zones and rules, may be repeated")

	cmd.AddCommand(
		newUTCCommand(opts),
		newWallCommand(opts),
		newZonesCommand(opts),
		newDescribeCommand(opts),
		newVerifyCommand(opts),
	)
	return cmd
}

// defaultZoneDirs puts $ZONEINFO in front of the usual system locations.
func defaultZoneDirs() []string {
	dirs := make([]string, 0, len(store.DefaultZoneDirs)+1)
	if dir := os.Getenv("ZONEINFO"); dir != "" {
		dirs = append(dirs, filepath.Clean(dir))
	}
	return append(dirs, store.DefaultZoneDirs...)
}

func addOutputFlag(cmd *cobra.Command, opts *options) {
	encodingVarP(cmd.Flags(), &opts.output, "output", "o", "Output format, text, json or yaml")
}

type stores struct {
	periods store.Chain
	rules   rules.Chain
}

// open loads the table files and appends the zoneinfo directories.
func (o *options) open(ctx context.Context) (*stores, error) {
	s := &stores{}
	for _, path := range o.tables {
		f, err := store.LoadFile(ctx, path)
		if err != nil {
			return nil, err
		}
		logging.Trace(ctx, "loaded table file", "path", path)
		s.periods = append(s.periods, f)
		s.rules = append(s.rules, f)
	}
	zi := store.NewZoneinfo(o.zoneDirs...)
	s.periods = append(s.periods, zi)
	s.rules = append(s.rules, zi)
	return s, nil
}

func (s *stores) resolver() *resolve.Resolver {
	return resolve.New(s.periods, s.rules)
}
