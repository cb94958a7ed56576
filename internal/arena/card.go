package arena

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/fightsim/internal/game/fighter"
)

// CardEntry is one bout on a card file. A and B name either a fighter in the
// card's roster or a profile file relative to the card file.
type CardEntry struct {
	ID     string  `yaml:"id"`
	A      string  `yaml:"a"`
	B      string  `yaml:"b"`
	BrainA string  `yaml:"brain_a"`
	BrainB string  `yaml:"brain_b"`
	Seed   *uint64 `yaml:"seed"`
}

// Card is a named list of bouts.
type Card struct {
	Name string `yaml:"name"`
	// Roster optionally names a YAML roster file whose fighters entries may
	// reference by name.
	Roster string      `yaml:"roster"`
	Bouts  []CardEntry `yaml:"bouts"`
}

type yamlCardFile struct {
	Card *Card `yaml:"card"`
}

// LoadCard reads a card file and loads every fighter it names.
//
// Postcondition: returns one Matchup per entry, in file order, or an error
// naming the first entry that failed.
func LoadCard(path string) (string, []Matchup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("arena.LoadCard: reading %q: %w", path, err)
	}
	var f yamlCardFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return "", nil, fmt.Errorf("arena.LoadCard: parsing %s: %w", path, err)
	}
	if f.Card == nil {
		return "", nil, fmt.Errorf("arena.LoadCard: %s missing top-level 'card' key", path)
	}
	if len(f.Card.Bouts) == 0 {
		return "", nil, fmt.Errorf("arena.LoadCard: %s lists no bouts", path)
	}

	dir := filepath.Dir(path)
	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	roster := map[string]fighter.Profile{}
	if f.Card.Roster != "" {
		profiles, err := fighter.LoadRoster(resolve(f.Card.Roster))
		if err != nil {
			return "", nil, fmt.Errorf("arena.LoadCard: %w", err)
		}
		for _, p := range profiles {
			roster[p.Name] = p
		}
	}
	load := func(ref string) (fighter.Profile, error) {
		if p, ok := roster[ref]; ok {
			return p, nil
		}
		return fighter.LoadFile(resolve(ref))
	}

	matchups := make([]Matchup, 0, len(f.Card.Bouts))
	for i, e := range f.Card.Bouts {
		if e.A == "" || e.B == "" {
			return "", nil, fmt.Errorf("arena.LoadCard: bout %d: both fighters are required", i+1)
		}
		a, err := load(e.A)
		if err != nil {
			return "", nil, fmt.Errorf("arena.LoadCard: bout %d: %w", i+1, err)
		}
		b, err := load(e.B)
		if err != nil {
			return "", nil, fmt.Errorf("arena.LoadCard: bout %d: %w", i+1, err)
		}
		matchups = append(matchups, Matchup{
			ID:     e.ID,
			A:      a,
			B:      b,
			BrainA: e.BrainA,
			BrainB: e.BrainB,
			Seed:   e.Seed,
		})
	}
	return f.Card.Name, matchups, nil
}
