// Package dynamic synthesizes transitions beyond the end of a zone's static
// table from the zone's recurring rule pair.
package dynamic

import (
	"fmt"

	"github.com/tzperiods/builder"
	"github.com/tzperiods/gregorian"
	"github.com/tzperiods/period"
	"github.com/tzperiods/rules"
)

// Generate builds a table around the year containing secs by dating both
// rules of the pair for the year before, the year itself and the year after.
// The neighbouring years are needed because a rule near a year boundary can
// take effect in the adjacent civil year once offsets are applied.
//
// The result depends only on its arguments; callers may cache it per rule
// and year.
func Generate(secs int64, ext period.Extrapolation, store rules.Store) (period.Table, error) {
	pair, err := store.Rules(ext.Rule.ID)
	if err != nil {
		return nil, fmt.Errorf("generate periods for rule %q: %w", ext.Rule.ID, err)
	}

	year := gregorian.Year(secs)
	instances := make([]rules.Instance, 0, 6)
	for y := year - 1; y <= year+1; y++ {
		instances = append(instances, pair[0].Date(y), pair[1].Date(y))
	}

	zone := builder.Zone{
		StdOffset: ext.UTCOffset,
		Rule:      ext.Rule.ID,
		Format:    ext.Rule.Format,
		From:      period.Always,
		Until:     period.Never,
	}
	return builder.Normalize(builder.Build(zone, instances, builder.DynamicFarFuture)), nil
}
