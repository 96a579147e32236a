// Package resolve answers which period is in effect in a zone at an instant,
// given either as an absolute instant or as a wall clock date and time.
//
// Tables come from a store.Periods. When a lookup reaches the rule governed
// end of a table, a short table around the instant is generated from the
// zone's rule pair and the lookup is repeated once against it.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	slogcontext "github.com/veqryn/slog-context"

	"github.com/tzperiods/dynamic"
	"github.com/tzperiods/gregorian"
	"github.com/tzperiods/internal/logging"
	"github.com/tzperiods/period"
	"github.com/tzperiods/rules"
	"github.com/tzperiods/store"
)

// ErrExtrapolation marks failures to extend a zone beyond its table. They
// point at broken rule data rather than at the query.
var ErrExtrapolation = errors.New("extrapolation failed")

// ExtrapolationError reports a zone whose rule pair could not produce a
// period.
type ExtrapolationError struct {
	Zone string
	Rule string
	Err  error
}

func (e *ExtrapolationError) Error() string {
	return fmt.Sprintf("zone %s: rule %q: %v: %v", e.Zone, e.Rule, ErrExtrapolation, e.Err)
}

func (e *ExtrapolationError) Unwrap() error { return e.Err }

func (e *ExtrapolationError) Is(target error) bool { return target == ErrExtrapolation }

var errSecondSignal = errors.New("generated table still refers to a rule")

// ErrInvalidInstant is returned for an Instant without a positive tick rate.
var ErrInvalidInstant = errors.New("invalid instant")

// Instant is an absolute instant as a day count since 0000-01-01 plus a
// fraction of a day counted in ticks.
type Instant struct {
	Days        int64
	Fraction    int64
	TicksPerDay int64
}

// Seconds converts the instant to gregorian seconds, rounding down.
// TicksPerDay must be positive.
func (i Instant) Seconds() int64 {
	return gregorian.FromDayFraction(i.Days, i.Fraction, i.TicksPerDay)
}

// Boundary is one side of a gap: the period on that side and the wall clock
// time the transition happens at under it.
type Boundary struct {
	Period period.Period
	Wall   gregorian.DateTime
}

// WallResolution is the classification of a wall clock time. Period is set
// when Kind is Unambiguous, Departing and Arriving for a Gap, Former and
// Latter for Ambiguous.
type WallResolution struct {
	Kind   period.Kind
	Period period.Period

	Departing Boundary
	Arriving  Boundary

	Former period.Period
	Latter period.Period
}

// PeriodResolver is the pair of lookups a date and time library adapts its
// own zone abstraction to.
type PeriodResolver interface {
	PeriodForUTCInstant(ctx context.Context, in Instant, zone string) (period.Period, error)
	PeriodForWallInstant(ctx context.Context, dt gregorian.DateTime, zone string) (WallResolution, error)
}

var _ PeriodResolver = (*Resolver)(nil)

// Resolver resolves instants against the tables of a period store. It holds
// no state of its own and is safe for concurrent use.
type Resolver struct {
	Periods store.Periods
	Rules   rules.Store
	// Logger, when nil, is taken from the context of each call.
	Logger *slog.Logger

	generator func(secs int64, ext period.Extrapolation, ruleStore rules.Store) (period.Table, error)
}

func New(periods store.Periods, ruleStore rules.Store) *Resolver {
	return &Resolver{Periods: periods, Rules: ruleStore}
}

func (r *Resolver) logger(ctx context.Context) *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slogcontext.FromCtx(ctx)
}

// PeriodForUTCInstant returns the period in effect in zone at the absolute
// instant in. A transition applies from its instant inclusive. Instants
// before the first known transition get the oldest known period.
func (r *Resolver) PeriodForUTCInstant(ctx context.Context, in Instant, zone string) (period.Period, error) {
	if in.TicksPerDay <= 0 {
		return period.Period{}, fmt.Errorf("%w: %d ticks per day", ErrInvalidInstant, in.TicksPerDay)
	}
	return r.periodForUTC(ctx, in.Seconds(), zone)
}

// PeriodForUnix is PeriodForUTCInstant for seconds since 1970-01-01 UTC.
func (r *Resolver) PeriodForUnix(ctx context.Context, unix int64, zone string) (period.Period, error) {
	return r.periodForUTC(ctx, gregorian.FromUnix(unix), zone)
}

func (r *Resolver) periodForUTC(ctx context.Context, secs int64, zone string) (period.Period, error) {
	tbl, err := r.Periods.Periods(ctx, zone)
	if err != nil {
		return period.Period{}, err
	}
	p, ext := tbl.ForUTC(secs)
	if ext == nil {
		return p, nil
	}
	dyn, err := r.generate(ctx, zone, secs, *ext)
	if err != nil {
		return period.Period{}, err
	}
	if p, ext = dyn.ForUTC(secs); ext != nil {
		return period.Period{}, &ExtrapolationError{Zone: zone, Rule: ext.Rule.ID, Err: errSecondSignal}
	}
	return p, nil
}

// PeriodForWallInstant classifies the wall clock time dt in zone as
// unambiguous, in a gap left by clocks going forward, or ambiguous because
// clocks went back. A wall time equal to the arriving side of a transition
// belongs to the new period.
func (r *Resolver) PeriodForWallInstant(ctx context.Context, dt gregorian.DateTime, zone string) (WallResolution, error) {
	tbl, err := r.Periods.Periods(ctx, zone)
	if err != nil {
		return WallResolution{}, err
	}
	secs := gregorian.ToSeconds(dt)
	res, ext := tbl.ForWall(secs)
	if ext != nil {
		dyn, err := r.generate(ctx, zone, secs, *ext)
		if err != nil {
			return WallResolution{}, err
		}
		if res, ext = dyn.ForWall(secs); ext != nil {
			return WallResolution{}, &ExtrapolationError{Zone: zone, Rule: ext.Rule.ID, Err: errSecondSignal}
		}
	}
	wr := WallResolution{Kind: res.Kind, Period: res.Period, Former: res.Former, Latter: res.Latter}
	if res.Kind == period.Gap {
		wr.Departing = Boundary{Period: res.Before.Period, Wall: gregorian.FromSeconds(res.Before.Wall)}
		wr.Arriving = Boundary{Period: res.After.Period, Wall: gregorian.FromSeconds(res.After.Wall)}
	}
	return wr, nil
}

// generate builds the table around secs from the rule pair. secs may be a
// wall clock instant; no offset moves it out of the generated window.
func (r *Resolver) generate(ctx context.Context, zone string, secs int64, ext period.Extrapolation) (period.Table, error) {
	generate := r.generator
	if generate == nil {
		generate = dynamic.Generate
	}
	tbl, err := generate(secs, ext, r.Rules)
	if err != nil {
		return nil, &ExtrapolationError{Zone: zone, Rule: ext.Rule.ID, Err: err}
	}
	r.logger(ctx).Log(ctx, logging.LevelTrace, "generated periods",
		"zone", zone, "rule", ext.Rule.ID, "year", gregorian.Year(secs), "records", len(tbl))
	return tbl, nil
}
