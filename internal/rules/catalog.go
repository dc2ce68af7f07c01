package rules

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultData []byte

// Catalog is the read-only set of rule tables, one per domain
type Catalog struct {
	tables map[Domain]*Table
}

type catalogFile struct {
	Domains map[Domain][]Rule `yaml:"domains"`
}

// NewCatalog builds a catalog from tables. Every domain in Domains must be present.
func NewCatalog(tables ...*Table) (*Catalog, error) {
	c := &Catalog{tables: make(map[Domain]*Table, len(tables))}
	for _, t := range tables {
		c.tables[t.domain] = t
	}
	for _, d := range Domains {
		if _, ok := c.tables[d]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrEmptyRuleTable, d)
		}
	}
	return c, nil
}

// Parse decodes a YAML rule document
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rule tables: %w", err)
	}

	tables := make([]*Table, 0, len(file.Domains))
	for domain, rules := range file.Domains {
		t, err := NewTable(domain, rules)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return NewCatalog(tables...)
}

// Load reads a YAML rule document from path. An empty path loads the
// built-in tables.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(defaultData)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule tables: %w", err)
	}
	return Parse(data)
}

// MustLoad is Load that panics. A missing or empty table is a data-loading
// defect and must stop startup.
func MustLoad(path string) *Catalog {
	c, err := Load(path)
	if err != nil {
		panic(err)
	}
	return c
}

// Default returns the built-in catalog
func Default() *Catalog {
	return MustLoad("")
}

// Table returns the table for a domain
func (c *Catalog) Table(domain Domain) (*Table, error) {
	t, ok := c.tables[domain]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDomain, domain)
	}
	return t, nil
}

// Resolve returns the bundle that applies to ageMonths in domain
func (c *Catalog) Resolve(domain Domain, ageMonths int) (Rule, error) {
	t, err := c.Table(domain)
	if err != nil {
		return Rule{}, err
	}
	return t.Resolve(ageMonths), nil
}

// ResolveUpcoming returns every rule in domain whose upper bound has not passed
func (c *Catalog) ResolveUpcoming(domain Domain, ageMonths int) ([]Rule, error) {
	t, err := c.Table(domain)
	if err != nil {
		return nil, err
	}
	return t.Upcoming(ageMonths), nil
}
