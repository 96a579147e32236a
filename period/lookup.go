package period

// ForUTC returns the period in effect at the absolute instant secs. A record
// applies from its From inclusive. Instants older than the oldest record get
// the oldest record's period.
//
// A non-nil Extrapolation means the instant falls into the rule governed
// record and the period has to be computed from the rule pair instead.
func (t Table) ForUTC(secs int64) (Period, *Extrapolation) {
	if len(t) == 0 {
		return Period{}, nil
	}
	for _, tr := range t {
		if tr.From <= secs {
			if tr.Rule != nil {
				return Period{}, extrapolate(tr)
			}
			return tr.Period, nil
		}
	}
	oldest := t[len(t)-1]
	if oldest.Rule != nil {
		return Period{}, extrapolate(oldest)
	}
	return oldest.Period, nil
}

// Kind classifies a wall clock instant.
type Kind int

const (
	Unambiguous Kind = iota
	// Gap wall clock values were skipped by a forward transition.
	Gap
	// Ambiguous wall clock values occurred twice because of a backward
	// transition.
	Ambiguous
)

func (k Kind) String() string {
	switch k {
	case Unambiguous:
		return "unambiguous"
	case Gap:
		return "gap"
	case Ambiguous:
		return "ambiguous"
	}
	return "unknown"
}

// Boundary is one edge of a gap: the period on that side and the wall clock
// instant at which the transition happens under that period.
type Boundary struct {
	Period Period
	Wall   int64
}

// WallResult is the outcome of ForWall. Period is set for Unambiguous,
// Before and After for Gap, Former and Latter for Ambiguous.
type WallResult struct {
	Kind   Kind
	Period Period

	Before Boundary
	After  Boundary

	Former Period
	Latter Period
}

// ForWall classifies the wall clock instant secs, which has no offset
// attached. For each record the transition instant is shifted by the
// offsets of the new period and of the previous period; a value between the
// two shifted instants is in a gap when the clocks went forward and
// ambiguous when they went back. The shifted instant of the new period
// belongs to the new period.
func (t Table) ForWall(secs int64) (WallResult, *Extrapolation) {
	if len(t) == 0 {
		return WallResult{}, nil
	}
	for _, tr := range t {
		if tr.From == Always {
			return unambiguous(tr)
		}
		wall := tr.From + int64(tr.Period.TotalOffset())
		prevWall := tr.From + int64(tr.Previous.TotalOffset())

		if secs < wall {
			if secs >= prevWall {
				return WallResult{
					Kind:   Gap,
					Before: Boundary{Period: tr.Previous, Wall: prevWall},
					After:  Boundary{Period: tr.Period, Wall: wall},
				}, nil
			}
			continue
		}
		if secs < prevWall {
			return WallResult{Kind: Ambiguous, Former: tr.Previous, Latter: tr.Period}, nil
		}
		return unambiguous(tr)
	}
	return unambiguous(t[len(t)-1])
}

func unambiguous(tr Transition) (WallResult, *Extrapolation) {
	if tr.Rule != nil {
		return WallResult{}, extrapolate(tr)
	}
	return WallResult{Kind: Unambiguous, Period: tr.Period}, nil
}
