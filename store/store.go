// Package store provides the period stores a resolver reads transition
// tables from: an in-memory map, YAML table files, TZif directories and a
// chain of those.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/tzperiods/period"
)

var ErrUnknownZone = errors.New("unknown zone")

// Periods returns the transition table of a zone. Implementations return an
// error wrapping ErrUnknownZone for zones they do not know. A returned table
// is shared and must not be modified.
type Periods interface {
	Periods(ctx context.Context, zone string) (period.Table, error)
}

// Lister is implemented by stores that can enumerate their zones.
type Lister interface {
	Zones(ctx context.Context) ([]string, error)
}

func unknownZone(zone string) error {
	return fmt.Errorf("%w %q", ErrUnknownZone, zone)
}

// Memory is a Periods store backed by a map. It is safe for concurrent use.
type Memory struct {
	mu     sync.RWMutex
	tables map[string]period.Table
}

func NewMemory() *Memory {
	return &Memory{tables: make(map[string]period.Table)}
}

// Add registers the table of a zone after validating it.
func (m *Memory) Add(zone string, tbl period.Table) error {
	if err := tbl.Validate(); err != nil {
		return fmt.Errorf("zone %s: %w", zone, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[zone] = tbl
	return nil
}

func (m *Memory) Periods(_ context.Context, zone string) (period.Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tbl, ok := m.tables[zone]
	if !ok {
		return nil, unknownZone(zone)
	}
	return tbl, nil
}

// Zones returns the registered zones in sorted order.
func (m *Memory) Zones(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	zones := make([]string, 0, len(m.tables))
	for zone := range m.tables {
		zones = append(zones, zone)
	}
	slices.Sort(zones)
	return zones, nil
}

// Chain asks each store in turn; the first one that knows the zone wins.
type Chain []Periods

func (c Chain) Periods(ctx context.Context, zone string) (period.Table, error) {
	for _, s := range c {
		tbl, err := s.Periods(ctx, zone)
		if errors.Is(err, ErrUnknownZone) {
			continue
		}
		return tbl, err
	}
	return nil, unknownZone(zone)
}

// Zones merges the zones of every member that is a Lister.
func (c Chain) Zones(ctx context.Context) ([]string, error) {
	var zones []string
	for _, s := range c {
		l, ok := s.(Lister)
		if !ok {
			continue
		}
		z, err := l.Zones(ctx)
		if err != nil {
			return nil, err
		}
		zones = append(zones, z...)
	}
	slices.Sort(zones)
	return slices.Compact(zones), nil
}
