package flight

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/osse101/FlightShop_Go/internal/domain"
)

// Catalog lists the cosmetic effects and speed tiers for sale. Names are matched
// case-insensitively.
type Catalog struct {
	items map[domain.ItemKind]map[string]domain.CatalogItem
}

// NewCatalog builds a catalog from items. Later duplicates win.
func NewCatalog(items ...domain.CatalogItem) *Catalog {
	c := &Catalog{items: map[domain.ItemKind]map[string]domain.CatalogItem{
		domain.ItemKindEffect: {},
		domain.ItemKindSpeed:  {},
	}}
	for _, item := range items {
		if !item.Kind.Valid() {
			continue
		}
		item.Name = normalize(item.Name)
		c.items[item.Kind][item.Name] = item
	}
	return c
}

// DefaultCatalog is the built-in shop.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		domain.CatalogItem{Name: "clouds", Kind: domain.ItemKindEffect, Price: 250},
		domain.CatalogItem{Name: "hearts", Kind: domain.ItemKindEffect, Price: 400},
		domain.CatalogItem{Name: "flames", Kind: domain.ItemKindEffect, Price: 750},
		domain.CatalogItem{Name: "sparkles", Kind: domain.ItemKindEffect, Price: 1000},
		domain.CatalogItem{Name: "normal", Kind: domain.ItemKindSpeed, Price: 0, Speed: 0.1},
		domain.CatalogItem{Name: "fast", Kind: domain.ItemKindSpeed, Price: 500, Speed: 0.2},
		domain.CatalogItem{Name: "faster", Kind: domain.ItemKindSpeed, Price: 1500, Speed: 0.3},
		domain.CatalogItem{Name: "fastest", Kind: domain.ItemKindSpeed, Price: 5000, Speed: 0.5},
	)
}

// Lookup finds an item by kind and name.
func (c *Catalog) Lookup(kind domain.ItemKind, name string) (domain.CatalogItem, bool) {
	byName, ok := c.items[kind]
	if !ok {
		return domain.CatalogItem{}, false
	}
	item, ok := byName[normalize(name)]
	return item, ok
}

// List returns the items of one kind, cheapest first.
func (c *Catalog) List(kind domain.ItemKind) []domain.CatalogItem {
	out := make([]domain.CatalogItem, 0, len(c.items[kind]))
	for _, item := range c.items[kind] {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Price != out[j].Price {
			return out[i].Price < out[j].Price
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// DisplayName renders an item name for players.
func DisplayName(name string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
