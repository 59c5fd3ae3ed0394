// Package idmap tracks the remote id -> local id translations produced while a
// migration runs. Later import steps use it to resolve foreign keys.
package idmap

import (
	"errors"
	"fmt"
	"sync"
)

// Entity names the kind of record a mapping belongs to.
type Entity string

const (
	StaffGroups         Entity = "staff_groups"
	ClientGroups        Entity = "client_groups"
	Users               Entity = "users"
	Staff               Entity = "staff"
	Clients             Entity = "clients"
	Contacts            Entity = "contacts"
	Taxes               Entity = "taxes"
	TaxNames            Entity = "tax_names"
	Invoices            Entity = "invoices"
	InvoiceLines        Entity = "invoice_lines"
	Transactions        Entity = "transactions"
	Modules             Entity = "modules"
	ModuleRows          Entity = "module_rows"
	PackageGroups       Entity = "package_groups"
	Packages            Entity = "packages"
	Pricings            Entity = "pricings"
	PackageOptions      Entity = "package_options"
	PackageOptionValues Entity = "package_option_values"
	OptionPricings      Entity = "package_option_pricing"
	Services            Entity = "services"
	Departments         Entity = "support_departments"
	Tickets             Entity = "support_tickets"
	KBCategories        Entity = "kb_categories"
	KBArticles          Entity = "kb_articles"
	Coupons             Entity = "coupons"
)

// ErrExists is returned when a key has already been mapped. Mappings are
// write-once: the first local id recorded for a key wins.
var ErrExists = errors.New("idmap: key already mapped")

// Store holds every mapping for the lifetime of one migration process.
type Store struct {
	mu   sync.RWMutex
	maps map[Entity]map[string]int64
}

// NewStore creates an empty mapping store
func NewStore() *Store {
	return &Store{maps: make(map[Entity]map[string]int64)}
}

// Put records remoteID -> localID for entity. It never overwrites.
func (s *Store) Put(entity Entity, remoteID string, localID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putLocked(entity, remoteID, localID)
}

func (s *Store) putLocked(entity Entity, remoteID string, localID int64) error {
	m, ok := s.maps[entity]
	if !ok {
		m = make(map[string]int64)
		s.maps[entity] = m
	}
	if _, exists := m[remoteID]; exists {
		return fmt.Errorf("%w: %s/%s", ErrExists, entity, remoteID)
	}
	m[remoteID] = localID
	return nil
}

// Lookup returns the local id for a remote key. ok is false when the
// dependency has not been imported.
func (s *Store) Lookup(entity Entity, remoteID string) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.maps[entity][remoteID]
	return id, ok
}

// LookupInt is Lookup for integer remote ids.
func (s *Store) LookupInt(entity Entity, remoteID int64) (int64, bool) {
	return s.Lookup(entity, Key(remoteID))
}

// Has reports whether at least one key exists for entity.
func (s *Store) Has(entity Entity) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.maps[entity]) > 0
}

// Counts returns the number of mapped keys per entity.
func (s *Store) Counts() map[Entity]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[Entity]int, len(s.maps))
	for e, m := range s.maps {
		out[e] = len(m)
	}
	return out
}

// Key formats an integer remote id as a mapping key.
func Key(id int64) string {
	return fmt.Sprintf("%d", id)
}

// CompositeKey joins parts with ":" (for example package id and term).
func CompositeKey(parts ...any) string {
	key := ""
	for i, p := range parts {
		if i > 0 {
			key += ":"
		}
		key += fmt.Sprint(p)
	}
	return key
}
