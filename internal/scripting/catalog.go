package scripting

import (
	"github.com/cory-johannsen/fightsim/internal/game/technique"
)

// CatalogLookup returns a LookupTechnique function backed by c. Names are
// matched as loosely as technique.Catalog.Resolve matches them.
//
// Precondition: c must be non-nil.
func CatalogLookup(c *technique.Catalog) func(name string) *TechniqueInfo {
	return func(name string) *TechniqueInfo {
		t, ok := c.Resolve(name)
		if !ok {
			return nil
		}
		positions := make([]string, len(t.Positions))
		for i, p := range t.Positions {
			positions[i] = string(p)
		}
		return &TechniqueInfo{
			Name:      t.Name,
			Type:      string(t.Type),
			Damage:    t.Damage,
			Stamina:   t.Stamina,
			Accuracy:  t.Accuracy,
			Positions: positions,
		}
	}
}
