package technique

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Catalog is the immutable set of techniques available to every fighter.
//
// Invariant: technique names are unique; byPosition holds every legal technique
// for each position in declaration order.
type Catalog struct {
	all        []*Technique
	byName     map[string]*Technique
	byFold     map[string]*Technique
	byPosition map[Position][]*Technique
}

type yamlCatalogFile struct {
	Groups []struct {
		ID         string       `yaml:"id"`
		Techniques []*Technique `yaml:"techniques"`
	} `yaml:"groups"`
}

// ParseCatalog builds a Catalog from YAML bytes.
//
// Postcondition: returns an error if parsing fails, any technique is invalid,
// or a name is duplicated.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f yamlCatalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("technique: parsing catalog: %w", err)
	}
	c := &Catalog{
		byName:     make(map[string]*Technique),
		byFold:     make(map[string]*Technique),
		byPosition: make(map[Position][]*Technique),
	}
	for _, g := range f.Groups {
		for _, t := range g.Techniques {
			if err := t.Validate(); err != nil {
				return nil, err
			}
			if _, dup := c.byName[t.Name]; dup {
				return nil, fmt.Errorf("technique: duplicate name %q", t.Name)
			}
			t.Group = g.ID
			t.legal = make(map[Position]struct{}, len(t.Positions))
			for _, p := range t.Positions {
				t.legal[p] = struct{}{}
				c.byPosition[p] = append(c.byPosition[p], t)
			}
			c.byName[t.Name] = t
			c.byFold[strings.ToLower(t.Name)] = t
			c.all = append(c.all, t)
		}
	}
	if len(c.all) == 0 {
		return nil, fmt.Errorf("technique: catalog is empty")
	}
	return c, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// MustCatalog returns the built-in catalog, parsing it on first use.
// Panics if the embedded YAML is invalid.
func MustCatalog() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = ParseCatalog(catalogYAML)
	})
	if defaultErr != nil {
		panic("technique: built-in catalog: " + defaultErr.Error())
	}
	return defaultCatalog
}

// ByName returns the technique with the given name, or false if none exists.
func (c *Catalog) ByName(name string) (*Technique, bool) {
	t, ok := c.byName[name]
	return t, ok
}

// Resolve looks up a technique by a loosely written name, as returned by an
// external decision provider: surrounding whitespace, quotes, and trailing
// punctuation are ignored and the match is case-insensitive.
func (c *Catalog) Resolve(name string) (*Technique, bool) {
	if t, ok := c.byName[name]; ok {
		return t, true
	}
	name = strings.Trim(strings.TrimSpace(name), "\"'`.!*")
	t, ok := c.byFold[strings.ToLower(name)]
	return t, ok
}

// Legal returns the techniques that may be attempted from p.
// The returned slice must not be modified.
func (c *Catalog) Legal(p Position) []*Technique {
	return c.byPosition[p]
}

// All returns every technique in declaration order.
// The returned slice must not be modified.
func (c *Catalog) All() []*Technique {
	return c.all
}

// Names returns the names of the given techniques in order.
func Names(ts []*Technique) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Name
	}
	return out
}
