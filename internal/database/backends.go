package database

import (
	"sort"
	"sync"
)

var kindOrder = map[Kind]int{KindPostgres: 0, KindMySQL: 1, KindSQLite: 2}

// Backends is a catalog of adapters keyed by engine kind.
type Backends struct {
	mu       sync.RWMutex
	adapters map[Kind]Adapter
}

// NewBackends returns a catalog holding the given adapters.
func NewBackends(adapters ...Adapter) *Backends {
	b := &Backends{adapters: make(map[Kind]Adapter, len(adapters))}
	for _, a := range adapters {
		b.Register(a)
	}
	return b
}

// Register adds an adapter, replacing any previous one for the same kind.
func (b *Backends) Register(a Adapter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.adapters[a.Kind()] = a
}

// Get returns the adapter for kind.
func (b *Backends) Get(kind Kind) (Adapter, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	a, ok := b.adapters[kind]
	if !ok {
		return nil, &UnknownBackendError{Kind: kind}
	}
	return a, nil
}

// Has reports whether an adapter is registered for kind.
func (b *Backends) Has(kind Kind) bool {
	_, err := b.Get(kind)
	return err == nil
}

// Kinds returns the registered kinds, well-known engines first.
func (b *Backends) Kinds() []Kind {
	b.mu.RLock()
	kinds := make([]Kind, 0, len(b.adapters))
	for k := range b.adapters {
		kinds = append(kinds, k)
	}
	b.mu.RUnlock()

	sort.Slice(kinds, func(i, j int) bool {
		oi, iok := kindOrder[kinds[i]]
		oj, jok := kindOrder[kinds[j]]
		switch {
		case iok && jok:
			return oi < oj
		case iok != jok:
			return iok
		default:
			return kinds[i] < kinds[j]
		}
	})
	return kinds
}
