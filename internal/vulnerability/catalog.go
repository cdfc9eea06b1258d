package vulnerability

import (
	"fmt"
	"sort"
	"sync"

	"github.com/crucible-sec/crucible/internal/types"
)

// Catalog is the registry of vulnerability categories. It is populated from
// static registration at process start; lookups are pure and thread-safe.
type Catalog struct {
	mu      sync.RWMutex
	entries map[Category]Definition
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{entries: make(map[Category]Definition)}
}

// NewBuiltinCatalog creates a catalog pre-populated with all built-in
// categories.
func NewBuiltinCatalog() *Catalog {
	c := NewCatalog()
	for _, def := range builtinDefinitions() {
		// Built-in definitions are statically valid.
		if err := c.Register(def); err != nil {
			panic(fmt.Sprintf("builtin catalog: %v", err))
		}
	}
	return c
}

// Register adds a category definition to the catalog. Extension is adding an
// entry, never modifying dispatch code.
func (c *Catalog) Register(def Definition) error {
	if def.Category == "" {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "category identifier cannot be empty")
	}
	if def.Metric == "" {
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("category %q has no metric bound", def.Category))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[def.Category]; exists {
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("category %q already registered", def.Category))
	}

	c.entries[def.Category] = def
	return nil
}

// Get returns the full definition for a category.
func (c *Catalog) Get(cat Category) (Definition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	def, exists := c.entries[cat]
	if !exists {
		return Definition{}, types.NewError(types.UNKNOWN_CATEGORY,
			fmt.Sprintf("category not registered: %s", cat))
	}
	return def, nil
}

// RequirementsFor returns the required-context flags for a category.
func (c *Catalog) RequirementsFor(cat Category) (Requirements, error) {
	def, err := c.Get(cat)
	if err != nil {
		return Requirements{}, err
	}
	return def.Requirements, nil
}

// MetricFor returns the metric identifier bound to a category.
func (c *Catalog) MetricFor(cat Category) (MetricID, error) {
	def, err := c.Get(cat)
	if err != nil {
		return "", err
	}
	return def.Metric, nil
}

// Has reports whether a category is registered.
func (c *Catalog) Has(cat Category) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, exists := c.entries[cat]
	return exists
}

// All returns every registered category, sorted for deterministic iteration.
func (c *Catalog) All() []Category {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cats := make([]Category, 0, len(c.entries))
	for cat := range c.entries {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	return cats
}

// ByRiskClass groups registered categories by risk class for reporting.
func (c *Catalog) ByRiskClass() map[RiskClass][]Category {
	c.mu.RLock()
	defer c.mu.RUnlock()

	grouped := make(map[RiskClass][]Category)
	for cat, def := range c.entries {
		grouped[def.RiskClass] = append(grouped[def.RiskClass], cat)
	}
	for _, cats := range grouped {
		sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	}
	return grouped
}

// Count returns the number of registered categories.
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
