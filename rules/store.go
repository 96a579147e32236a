package rules

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

var ErrUnknownRule = errors.New("unknown rule")

// Store returns the recurring rule pair registered under an identifier.
type Store interface {
	Rules(id string) (Pair, error)
}

// Memory is a Store backed by a map. It is safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	pairs map[string]Pair
}

func NewMemory() *Memory {
	return &Memory{pairs: make(map[string]Pair)}
}

// Add registers pair under id, replacing any previous pair.
func (m *Memory) Add(id string, pair Pair) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pairs[id] = pair
}

func (m *Memory) Rules(id string) (Pair, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pair, ok := m.pairs[id]
	if !ok {
		return Pair{}, fmt.Errorf("%w %q", ErrUnknownRule, id)
	}
	return pair, nil
}

// Chain asks each store in turn; the first one that knows the rule wins.
type Chain []Store

func (c Chain) Rules(id string) (Pair, error) {
	for _, s := range c {
		pair, err := s.Rules(id)
		if errors.Is(err, ErrUnknownRule) {
			continue
		}
		return pair, err
	}
	return Pair{}, fmt.Errorf("%w %q", ErrUnknownRule, id)
}

// IDs returns the registered identifiers in sorted order.
func (m *Memory) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.pairs))
	for id := range m.pairs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
