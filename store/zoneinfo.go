package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	slogcontext "github.com/veqryn/slog-context"
	"golang.org/x/sync/singleflight"

	"github.com/tzperiods/builder"
	"github.com/tzperiods/gregorian"
	"github.com/tzperiods/period"
	"github.com/tzperiods/posix/tzposix"
	"github.com/tzperiods/rfc9636"
	"github.com/tzperiods/rules"
)

// DefaultZoneDirs are the usual locations of the system zoneinfo files.
var DefaultZoneDirs = []string{
	"/usr/share/zoneinfo",
	"/usr/share/lib/zoneinfo",
	"/usr/lib/locale/TZ",
}

// Zoneinfo reads zone tables from TZif files. The footer TZ string of a
// file becomes the rule pair of the zone's most recent record; the pair is
// registered under the TZ string itself, so Zoneinfo is also the
// rules.Store for its tables.
//
// Converted tables are cached for the lifetime of the store. Concurrent
// first loads of a zone share one read.
type Zoneinfo struct {
	dirs   []string
	rules  *rules.Memory
	tables sync.Map // zone name to period.Table
	group  singleflight.Group
}

func NewZoneinfo(dirs ...string) *Zoneinfo {
	return &Zoneinfo{dirs: dirs, rules: rules.NewMemory()}
}

func (z *Zoneinfo) Periods(ctx context.Context, zone string) (period.Table, error) {
	if v, ok := z.tables.Load(zone); ok {
		return v.(period.Table), nil
	}
	if !rfc9636.ValidName(zone) {
		return nil, unknownZone(zone)
	}
	logger := slogcontext.FromCtx(ctx).With("zone", zone)

	v, err, shared := z.group.Do(zone, func() (any, error) {
		f, err := rfc9636.Load(zone, z.dirs)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, unknownZone(zone)
		}
		if err != nil {
			return nil, err
		}
		tbl, spec, err := TableFromTZif(f)
		if err != nil {
			return nil, fmt.Errorf("zone %s: %w", zone, err)
		}
		if pair, ok := spec.Pair(); ok {
			z.rules.Add(spec.TZ, pair)
		}
		z.tables.Store(zone, tbl)
		logger.Debug("loaded zoneinfo", "records", len(tbl), "footer", f.Footer, "version", f.Version)
		return tbl, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Debug("shared zoneinfo load")
	}
	return v.(period.Table), nil
}

// Rules returns the pair of a footer TZ string. Strings not seen in a loaded
// file are parsed on demand.
func (z *Zoneinfo) Rules(id string) (rules.Pair, error) {
	pair, err := z.rules.Rules(id)
	if err == nil {
		return pair, nil
	}
	spec, perr := tzposix.Parse(id)
	if perr != nil {
		return rules.Pair{}, err
	}
	pair, ok := spec.Pair()
	if !ok {
		return rules.Pair{}, err
	}
	z.rules.Add(id, pair)
	return pair, nil
}

// TableFromTZif converts a decoded TZif file into a table. Daylight saving
// local time types are split into the standard offset in effect before the
// transition and the saving on top of it. When the footer describes
// daylight saving time, the most recent record refers to its rule pair.
// The returned spec is the decoded footer, zero when there is none.
func TableFromTZif(f *rfc9636.File) (period.Table, tzposix.Spec, error) {
	var spec tzposix.Spec
	if len(f.Types) == 0 {
		return nil, spec, rfc9636.ErrBadData
	}

	std := f.Types[0].Offset
	if f.Types[0].IsDST {
		std -= 3600
		if i := slices.IndexFunc(f.Types, func(t rfc9636.LocalTimeType) bool { return !t.IsDST }); i >= 0 {
			std = f.Types[i].Offset
		}
	}
	toPeriod := func(t rfc9636.LocalTimeType) period.Period {
		if !t.IsDST {
			std = t.Offset
			return period.Period{UTCOffset: t.Offset, Abbreviation: t.Abbreviation}
		}
		return period.Period{UTCOffset: std, StdOffset: t.Offset - std, Abbreviation: t.Abbreviation}
	}

	spans := []builder.Span{{From: period.Always, Period: toPeriod(f.Types[0])}}
	for _, tr := range f.Transitions {
		p := toPeriod(f.Types[tr.Type])
		if p == spans[len(spans)-1].Period {
			continue
		}
		spans = append(spans, builder.Span{From: gregorian.FromUnix(tr.When), Period: p})
	}

	if f.Footer != "" {
		var err error
		if spec, err = tzposix.Parse(f.Footer); err != nil {
			return nil, spec, fmt.Errorf("footer: %w", err)
		}
		if spec.HasDST() {
			spans[len(spans)-1].Rule = &period.RuleRef{ID: spec.TZ, Format: spec.Format()}
		}
	}
	return builder.Normalize(spans), spec, nil
}

// Zones walks the zoneinfo directories and returns the names of the TZif
// files found, aliases included. Following the Linux convention only
// capitalized directories hold zones, which skips "posix" and "right".
func (z *Zoneinfo) Zones(ctx context.Context) ([]string, error) {
	logger := slogcontext.FromCtx(ctx)
	var zones []string
	for _, dir := range z.dirs {
		if _, err := os.Stat(dir); err != nil {
			logger.Debug("zoneinfo directory is not available", "path", dir)
			continue
		}
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if path == dir {
				return nil
			}
			name := d.Name()
			if d.IsDir() {
				if name != strings.ToUpper(name[:1])+name[1:] {
					logger.Debug("skipping directory because name is not capitalized", "path", path)
					return filepath.SkipDir
				}
				return nil
			}
			if !isTZif(path) {
				logger.Debug("file is not a timezone file", "path", path)
				return nil
			}
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			if d.Type()&fs.ModeSymlink != 0 {
				if target, err := filepath.EvalSymlinks(path); err == nil {
					logger.Debug("zone is an alias", "alias", rel, "target", target)
				}
			}
			zones = append(zones, filepath.ToSlash(rel))
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", dir, err)
		}
	}
	slices.Sort(zones)
	return slices.Compact(zones), nil
}

func isTZif(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	magic := make([]byte, 4)
	if _, err := io.ReadFull(f, magic); err != nil {
		return false
	}
	return string(magic) == "TZif"
}
