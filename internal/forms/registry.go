package forms

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrFormNotFound is returned by Lookup for unregistered IDs.
var ErrFormNotFound = errors.New("form not found")

var (
	registry   = make(map[string]Form)
	registryMu sync.RWMutex
)

// Register adds a form definition.
// Panics if a form with the same ID is already registered.
func Register(f Form) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[f.ID]; exists {
		panic(fmt.Sprintf("form already registered: %s", f.ID))
	}
	registry[f.ID] = f
}

// Get returns a form definition by ID.
func Get(id string) (Form, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	f, ok := registry[id]
	return f, ok
}

// Lookup is Get with an error wrapping ErrFormNotFound.
func Lookup(id string) (Form, error) {
	f, ok := Get(id)
	if !ok {
		return Form{}, fmt.Errorf("%w: %s", ErrFormNotFound, id)
	}
	return f, nil
}

// IDs returns all registered form IDs, sorted.
func IDs() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clear removes all registered forms.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]Form)
}
