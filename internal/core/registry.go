package core

// registry.go holds the datasets offered on the dashboard. Dataset packages
// call Register from init(); the service only reads.

import (
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/JonMunkholm/TableUI/internal/table"
	"golang.org/x/text/collate"
)

var (
	registry   = make(map[string]TableDefinition)
	registryMu sync.RWMutex
)

// validKey matches keys that are safe in URLs and element IDs.
var validKey = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Register adds a dataset. It panics on a malformed definition, since
// registration happens at init and a bad dataset is a programming error.
func Register(def TableDefinition) {
	if err := checkDefinition(def); err != nil {
		panic(err.Error())
	}
	if def.Info.Label == "" {
		def.Info.Label = def.Info.Key
	}
	def.Info.Columns = append([]table.ColumnSpec(nil), def.Info.Columns...)
	def.Actions = append([]table.BulkAction(nil), def.Actions...)

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Info.Key]; exists {
		panic(fmt.Sprintf("table already registered: %s", def.Info.Key))
	}
	registry[def.Info.Key] = def
}

func checkDefinition(def TableDefinition) error {
	key := def.Info.Key
	switch {
	case !validKey.MatchString(key):
		return fmt.Errorf("invalid table key: %q", key)
	case def.Load == nil:
		return fmt.Errorf("table has no loader: %s", key)
	case len(def.Info.Columns) == 0:
		return fmt.Errorf("table has no columns: %s", key)
	}

	names := map[string]bool{table.ActionClear: true}
	for _, a := range def.Actions {
		switch {
		case a.Name == "" || a.Run == nil:
			return fmt.Errorf("table %s: bulk action %q is incomplete", key, a.Name)
		case names[a.Name]:
			return fmt.Errorf("table %s: bulk action %q defined twice", key, a.Name)
		}
		names[a.Name] = true
	}
	return nil
}

// Get returns a dataset by key.
func Get(key string) (TableDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[key]
	return def, ok
}

// All returns every dataset, grouped, in dashboard order.
func All() []TableDefinition {
	var result []TableDefinition
	for _, group := range Groups() {
		result = append(result, ByGroup(group)...)
	}
	return result
}

// ByGroup returns the datasets of group ordered by label as a reader of
// the default locale expects ("Árvores" before "Bancos").
func ByGroup(group string) []TableDefinition {
	registryMu.RLock()
	var result []TableDefinition
	for _, def := range registry {
		if def.Info.Group == group {
			result = append(result, def)
		}
	}
	registryMu.RUnlock()

	c := collate.New(table.DefaultLocale, collate.IgnoreCase)
	sort.Slice(result, func(i, j int) bool {
		if n := c.CompareString(result[i].Info.Label, result[j].Info.Label); n != 0 {
			return n < 0
		}
		return result[i].Info.Key < result[j].Info.Key
	})
	return result
}

// Groups returns the distinct group names in collation order.
func Groups() []string {
	registryMu.RLock()
	seen := make(map[string]bool)
	for _, def := range registry {
		seen[def.Info.Group] = true
	}
	registryMu.RUnlock()

	groups := make([]string, 0, len(seen))
	for g := range seen {
		groups = append(groups, g)
	}
	collate.New(table.DefaultLocale, collate.IgnoreCase).SortStrings(groups)
	return groups
}

// TableCount returns the number of registered datasets.
func TableCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear empties the registry. Tests only.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]TableDefinition)
}
