// Package catalog holds the read-only registry of template descriptors.
// The catalog is validated once at load and never mutated afterwards.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"storefront/internal/domain"
)

//go:embed manifest.json
var defaultManifest []byte

// Catalog is an immutable snapshot of template descriptors. Lookup is by
// key; List preserves the manifest order.
type Catalog struct {
	items []domain.TemplateDescriptor
	byKey map[string]int
}

// New validates the descriptors and builds a snapshot. It fails with
// ErrInvalidCatalog when a required tier is unrecognized or a key is
// duplicated or empty.
func New(items []domain.TemplateDescriptor) (*Catalog, error) {
	c := &Catalog{
		items: make([]domain.TemplateDescriptor, 0, len(items)),
		byKey: make(map[string]int, len(items)),
	}
	for _, item := range items {
		if item.Key == "" {
			return nil, fmt.Errorf("%w: descriptor %q has no key", domain.ErrInvalidCatalog, item.Name)
		}
		if !item.RequiredTier.Known() {
			return nil, fmt.Errorf("%w: template %q requires unknown tier %q", domain.ErrInvalidCatalog, item.Key, item.RequiredTier)
		}
		if _, exists := c.byKey[item.Key]; exists {
			return nil, fmt.Errorf("%w: duplicate template key %q", domain.ErrInvalidCatalog, item.Key)
		}
		c.byKey[item.Key] = len(c.items)
		c.items = append(c.items, item)
	}
	return c, nil
}

// Load reads a manifest document from path, falling back to the embedded
// default manifest when path is empty.
func Load(path string) (*Catalog, error) {
	raw := defaultManifest
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: read manifest: %v", domain.ErrInvalidCatalog, err)
		}
		raw = data
	}
	var items []domain.TemplateDescriptor
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: parse manifest: %v", domain.ErrInvalidCatalog, err)
	}
	return New(items)
}

// Lookup returns the descriptor for key, or ErrUnknownTemplate.
func (c *Catalog) Lookup(key string) (domain.TemplateDescriptor, error) {
	idx, ok := c.byKey[key]
	if !ok {
		return domain.TemplateDescriptor{}, fmt.Errorf("%w: %q", domain.ErrUnknownTemplate, key)
	}
	return c.items[idx], nil
}

// List returns all descriptors in manifest order. The slice is a copy so
// callers cannot mutate the snapshot.
func (c *Catalog) List() []domain.TemplateDescriptor {
	out := make([]domain.TemplateDescriptor, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of descriptors in the snapshot.
func (c *Catalog) Len() int {
	return len(c.items)
}
