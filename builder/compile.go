package builder

import (
	"fmt"

	"github.com/tzperiods/period"
	"github.com/tzperiods/rules"
)

// Compile builds the static table of a zone governed by one rule pair,
// expanding the pair for every year from fromYear through throughYear. When
// the zone is open ended the most recent record refers to the pair, so later
// instants are extrapolated from it.
func Compile(zone Zone, pair rules.Pair, fromYear, throughYear int) (period.Table, error) {
	if throughYear < fromYear {
		return nil, fmt.Errorf("compile %s: through year %d before from year %d", zone.Rule, throughYear, fromYear)
	}
	instances := make([]rules.Instance, 0, 2*(throughYear-fromYear+1))
	for year := fromYear; year <= throughYear; year++ {
		instances = append(instances, pair[0].Date(year), pair[1].Date(year))
	}

	spans := Build(zone, instances, Static)
	if zone.Until == period.Never && zone.Rule != "" {
		spans[len(spans)-1].Rule = &period.RuleRef{ID: zone.Rule, Format: zone.Format}
	}
	return Normalize(spans), nil
}
