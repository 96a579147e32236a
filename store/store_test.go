package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tzperiods/period"
)

var (
	utc = period.Period{Abbreviation: "UTC"}
	cet = period.Period{UTCOffset: 3600, Abbreviation: "CET"}
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Add("UTC", period.Fixed(utc)))
	require.NoError(t, m.Add("CET", period.Fixed(cet)))
	assert.ErrorIs(t, m.Add("Broken", period.Table{}), period.ErrInvalidTable)

	tbl, err := m.Periods(ctx, "UTC")
	require.NoError(t, err)
	assert.Equal(t, period.Fixed(utc), tbl)

	_, err = m.Periods(ctx, "Broken")
	assert.ErrorIs(t, err, ErrUnknownZone)

	zones, err := m.Zones(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"CET", "UTC"}, zones)
}

type failing struct{}

func (failing) Periods(context.Context, string) (period.Table, error) {
	return nil, errors.New("disk on fire")
}

func TestChain(t *testing.T) {
	ctx := context.Background()
	first, second := NewMemory(), NewMemory()
	require.NoError(t, first.Add("UTC", period.Fixed(utc)))
	require.NoError(t, second.Add("UTC", period.Fixed(cet)))
	require.NoError(t, second.Add("CET", period.Fixed(cet)))
	chain := Chain{first, second}

	tbl, err := chain.Periods(ctx, "UTC")
	require.NoError(t, err)
	assert.Equal(t, period.Fixed(utc), tbl)

	tbl, err = chain.Periods(ctx, "CET")
	require.NoError(t, err)
	assert.Equal(t, period.Fixed(cet), tbl)

	_, err = chain.Periods(ctx, "Mars/Olympus_Mons")
	assert.ErrorIs(t, err, ErrUnknownZone)

	zones, err := Chain{first, failing{}, second}.Zones(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"CET", "UTC"}, zones)

	_, err = Chain{failing{}, first}.Periods(ctx, "UTC")
	assert.EqualError(t, err, "disk on fire")
}
