package idmap

import "fmt"

type pending struct {
	entity   Entity
	remoteID string
	localID  int64
}

// Batch buffers mappings recorded inside a destination transaction. Nothing
// is visible in the parent store until Commit, so a rolled back step leaves
// no mapping behind.
type Batch struct {
	parent *Store
	items  []pending
	index  map[Entity]map[string]int64
}

// Stage starts a new batch on top of s
func (s *Store) Stage() *Batch {
	return &Batch{parent: s, index: make(map[Entity]map[string]int64)}
}

// Put buffers a mapping. Keys already present in the parent or in this batch
// are rejected with ErrExists.
func (b *Batch) Put(entity Entity, remoteID string, localID int64) error {
	if _, ok := b.Lookup(entity, remoteID); ok {
		return fmt.Errorf("%w: %s/%s", ErrExists, entity, remoteID)
	}
	m, ok := b.index[entity]
	if !ok {
		m = make(map[string]int64)
		b.index[entity] = m
	}
	m[remoteID] = localID
	b.items = append(b.items, pending{entity: entity, remoteID: remoteID, localID: localID})
	return nil
}

// Lookup resolves a key against the batch first, then the parent store.
func (b *Batch) Lookup(entity Entity, remoteID string) (int64, bool) {
	if id, ok := b.index[entity][remoteID]; ok {
		return id, true
	}
	return b.parent.Lookup(entity, remoteID)
}

// LookupInt is Lookup for integer remote ids.
func (b *Batch) LookupInt(entity Entity, remoteID int64) (int64, bool) {
	return b.Lookup(entity, Key(remoteID))
}

// Len returns the number of buffered mappings.
func (b *Batch) Len() int {
	return len(b.items)
}

// Commit merges the buffered mappings into the parent store in the order
// they were recorded. Keys written to the parent since Stage are kept and
// reported as an error; the remaining items are still merged.
func (b *Batch) Commit() error {
	b.parent.mu.Lock()
	defer b.parent.mu.Unlock()

	var firstErr error
	for _, it := range b.items {
		if err := b.parent.putLocked(it.entity, it.remoteID, it.localID); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	b.items = nil
	b.index = make(map[Entity]map[string]int64)
	return firstErr
}

// Discard drops everything buffered.
func (b *Batch) Discard() {
	b.items = nil
	b.index = make(map[Entity]map[string]int64)
}
