package margins

import (
	"strconv"
	"strings"
)

// Matcher resolves sale line items to catalog products.
//
// A sale matches by product code first (the catalog Code or ID), then by exact name,
// then by substring in either direction. Ties go to the earliest catalog entry.
type Matcher struct {
	catalog []CatalogProduct
	names   []string
	byCode  map[string]int
	byName  map[string]int
}

// NewMatcher indexes catalog by normalized code and name.
func NewMatcher(catalog []CatalogProduct) *Matcher {
	m := &Matcher{
		catalog: catalog,
		names:   make([]string, len(catalog)),
		byCode:  make(map[string]int),
		byName:  make(map[string]int),
	}
	for i, p := range catalog {
		for _, code := range []string{p.Code, p.ID} {
			if k := normalize(code); k != "" {
				if _, ok := m.byCode[k]; !ok {
					m.byCode[k] = i
				}
			}
		}
		m.names[i] = normalize(p.Name)
		if m.names[i] != "" {
			if _, ok := m.byName[m.names[i]]; !ok {
				m.byName[m.names[i]] = i
			}
		}
	}
	return m
}

// Match returns the grouping key of the sale and the product it belongs to.
// When no product matches, ok is false and the key groups sales by their normalized name.
func (m *Matcher) Match(s SaleLineItem) (key string, product CatalogProduct, ok bool) {
	if i, found := m.find(s); found {
		p := m.catalog[i]
		return "product:" + p.ID + "#" + strconv.Itoa(i), p, true
	}
	name := normalize(s.ProductName)
	if name == "" {
		name = normalize(s.ProductCode)
	}
	return "unmatched:" + name, CatalogProduct{}, false
}

func (m *Matcher) find(s SaleLineItem) (int, bool) {
	if code := normalize(s.ProductCode); code != "" {
		if i, ok := m.byCode[code]; ok {
			return i, true
		}
	}

	name := normalize(s.ProductName)
	if name == "" {
		// Some imports put the code in the name column.
		name = normalize(s.ProductCode)
	}
	if name == "" {
		return 0, false
	}
	if i, ok := m.byCode[name]; ok {
		return i, true
	}
	if i, ok := m.byName[name]; ok {
		return i, true
	}
	for i, n := range m.names {
		if n == "" {
			continue
		}
		if strings.Contains(n, name) || strings.Contains(name, n) {
			return i, true
		}
	}
	return 0, false
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
