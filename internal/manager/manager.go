// Package manager is the entry point for everything above the data
// layer. It fronts the store with a write-invalidate cache: mutations go
// to the store and mark the cache dirty, the next read rebuilds it in
// one pass. The cache is a convenience index over store contents, never
// the source of truth.
package manager

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/qixiang/hukou/internal/model"
	"github.com/qixiang/hukou/internal/store"
)

// Manager owns the cache over a store. One instance per process is
// expected; the mutex exists because the snapshot follower invalidates
// from a second goroutine.
type Manager struct {
	store *store.Store

	mu         sync.RWMutex
	byID       map[uuid.UUID]model.Household
	order      []uuid.UUID
	dirty      bool
	stale      bool
	failClosed bool
}

// Options tunes cache behavior.
type Options struct {
	// FailClosed propagates store errors from read operations instead of
	// degrading to an empty listing.
	FailClosed bool
}

// New wraps st. The cache starts dirty and is populated on first read.
func New(st *store.Store, opts Options) *Manager {
	return &Manager{
		store:      st,
		byID:       make(map[uuid.UUID]model.Household),
		dirty:      true,
		failClosed: opts.FailClosed,
	}
}

// Store exposes the wrapped store for maintenance commands.
func (m *Manager) Store() *store.Store {
	return m.store
}

// MarkDirty invalidates the cache; the next read reloads from the store.
// Called after every mutation and by the snapshot follower when the
// database file changes underneath us.
func (m *Manager) MarkDirty() {
	m.mu.Lock()
	m.dirty = true
	m.mu.Unlock()
}

// Stale reports whether the last cache refresh failed and the current
// (empty) cache contents should not be trusted. Always false when the
// manager is fail-closed, since failed refreshes propagate instead.
func (m *Manager) Stale() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stale
}

// refreshLocked reloads the cache from the store if dirty. Callers hold
// the write lock. Under the default fail-open policy a store failure
// degrades to an empty cache: the error is logged, the dirty flag still
// clears, and reads see no households until the next invalidation.
func (m *Manager) refreshLocked() error {
	if !m.dirty {
		return nil
	}

	households, err := m.store.GetAllHouseholds()
	if err != nil {
		if m.failClosed {
			return err
		}
		log.Warn().Err(err).Msg("Cache refresh failed; presenting empty listing")
		m.byID = make(map[uuid.UUID]model.Household)
		m.order = nil
		m.dirty = false
		m.stale = true
		return nil
	}

	byID := make(map[uuid.UUID]model.Household, len(households))
	order := make([]uuid.UUID, len(households))
	for i, h := range households {
		byID[h.ID] = h
		order[i] = h.ID
	}

	m.byID = byID
	m.order = order
	m.dirty = false
	m.stale = false
	return nil
}

// List returns all households, registration date descending.
func (m *Manager) List() ([]model.Household, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.refreshLocked(); err != nil {
		return nil, err
	}

	out := make([]model.Household, len(m.order))
	for i, id := range m.order {
		out[i] = m.byID[id]
	}
	return out, nil
}

// At returns the household at a position in the current listing, or nil
// when the position is out of range. Positions are only meaningful
// against the listing produced in the same cache generation.
func (m *Manager) At(index int) (*model.Household, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.refreshLocked(); err != nil {
		return nil, err
	}

	if index < 0 || index >= len(m.order) {
		return nil, nil
	}
	h := m.byID[m.order[index]]
	return &h, nil
}

// Add persists a new household and invalidates the cache. The cache is
// marked dirty even when the insert fails: a partial write may still
// have changed the store.
func (m *Manager) Add(h *model.Household) error {
	err := m.store.InsertHousehold(h)
	m.MarkDirty()
	return err
}

// Update replaces the stored household matched by identity, member list
// included, and invalidates the cache unconditionally.
func (m *Manager) Update(h *model.Household) error {
	err := m.store.UpdateHousehold(h)
	m.MarkDirty()
	return err
}

// Remove deletes the household with the given identity along with its
// members, and invalidates the cache unconditionally.
func (m *Manager) Remove(id uuid.UUID) error {
	err := m.store.DeleteHousehold(id)
	m.MarkDirty()
	return err
}

// Search returns the positions in the full listing of the households
// matching query. The empty query matches everything without touching
// the store's substring path. Positions index into the same listing
// List returns for this cache generation.
func (m *Manager) Search(query string) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.refreshLocked(); err != nil {
		return nil, err
	}

	if query == "" {
		positions := make([]int, len(m.order))
		for i := range positions {
			positions[i] = i
		}
		return positions, nil
	}

	matches, err := m.store.SearchHouseholds(query)
	if err != nil {
		if m.failClosed {
			return nil, err
		}
		log.Warn().Err(err).Str("query", query).Msg("Search failed; presenting no matches")
		return nil, nil
	}

	position := make(map[uuid.UUID]int, len(m.order))
	for i, id := range m.order {
		position[id] = i
	}

	var positions []int
	for _, h := range matches {
		if pos, ok := position[h.ID]; ok {
			positions = append(positions, pos)
		}
	}
	return positions, nil
}

// Count returns the number of households in the current listing.
func (m *Manager) Count() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.refreshLocked(); err != nil {
		return 0, err
	}
	return len(m.order), nil
}

// Statistics delegates to the store's aggregate queries.
func (m *Manager) Statistics() (store.Statistics, error) {
	return m.store.GetStatistics()
}
