package enhancement

import (
	"fmt"
	"sort"
	"sync"

	"github.com/crucible-sec/crucible/internal/types"
)

// Catalog is the registry of enhancement techniques. Populated from static
// registration at process start; lookups are pure and thread-safe.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]Technique
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{entries: make(map[string]Technique)}
}

// NewBuiltinCatalog creates a catalog pre-populated with all built-in
// techniques.
func NewBuiltinCatalog() *Catalog {
	c := NewCatalog()
	for _, t := range []Technique{
		base64Technique{},
		rot13Technique{},
		leetspeakTechnique{},
		newPromptInjection(),
		newPromptProbing(),
		newGrayBox(),
		newMultilingual(),
		newMathProblem(),
		newJailbreakLinear(),
		newJailbreakCrescendo(),
	} {
		if err := c.Register(t); err != nil {
			panic(fmt.Sprintf("builtin enhancement catalog: %v", err))
		}
	}
	return c
}

// Register adds a technique to the catalog.
func (c *Catalog) Register(t Technique) error {
	if t == nil {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "technique cannot be nil")
	}
	if t.Name() == "" {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "technique name cannot be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[t.Name()]; exists {
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("technique %q already registered", t.Name()))
	}

	c.entries[t.Name()] = t
	return nil
}

// Get returns a technique by identifier.
func (c *Catalog) Get(name string) (Technique, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, exists := c.entries[name]
	if !exists {
		return nil, types.NewError(types.CONFIG_VALIDATION_FAILED,
			fmt.Sprintf("technique not registered: %s", name))
	}
	return t, nil
}

// Has reports whether a technique is registered.
func (c *Catalog) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, exists := c.entries[name]
	return exists
}

// All returns every registered technique name, sorted for deterministic
// iteration.
func (c *Catalog) All() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered techniques.
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
