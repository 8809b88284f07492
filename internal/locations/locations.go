// Package locations serves the country and city reference data used by
// job postings and search filters.
package locations

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	_ "embed"
)

//go:embed data/countries.min.json
var countriesJSON []byte

// Catalog holds the immutable country -> cities mapping, loaded once on
// first use.
type Catalog struct {
	once sync.Once
	data map[string][]string
	keys []string
	err  error
}

var defaultCatalog = &Catalog{}

// Default returns the process-wide catalog backed by the embedded data.
func Default() *Catalog { return defaultCatalog }

func (c *Catalog) load() {
	c.once.Do(func() {
		var raw map[string][]string
		if err := json.Unmarshal(countriesJSON, &raw); err != nil {
			c.err = fmt.Errorf("load country data: %w", err)
			return
		}

		data := make(map[string][]string, len(raw))
		keys := make([]string, 0, len(raw))
		for country, cities := range raw {
			seen := make(map[string]struct{}, len(cities))
			unique := make([]string, 0, len(cities))
			for _, city := range cities {
				if _, dup := seen[city]; dup {
					continue
				}
				seen[city] = struct{}{}
				unique = append(unique, city)
			}
			data[country] = unique
			keys = append(keys, country)
		}
		sort.Strings(keys)

		c.data = data
		c.keys = keys
	})
}

// Countries returns all known country names, sorted.
func (c *Catalog) Countries() ([]string, error) {
	c.load()
	if c.err != nil {
		return nil, c.err
	}
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out, nil
}

// CitiesFor returns the cities of a country. The sentinel "all" (any
// case) yields the deduplicated union across every country.
func (c *Catalog) CitiesFor(country string) ([]string, error) {
	c.load()
	if c.err != nil {
		return nil, c.err
	}

	if strings.EqualFold(country, "all") {
		seen := make(map[string]struct{})
		var union []string
		for _, key := range c.keys {
			for _, city := range c.data[key] {
				if _, dup := seen[city]; dup {
					continue
				}
				seen[city] = struct{}{}
				union = append(union, city)
			}
		}
		return union, nil
	}

	cities, ok := c.data[country]
	if !ok {
		return []string{}, nil
	}
	out := make([]string, len(cities))
	copy(out, cities)
	return out, nil
}
