package fighter

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sheet is a parsed skills.md: the values found plus which canonical keys were present.
type Sheet struct {
	Profile Profile
	Present map[string]bool
}

// WithDefaults returns the sheet's profile with every absent key taken from
// DefaultProfile, clamped to valid ranges.
func (s Sheet) WithDefaults() Profile {
	out := DefaultProfile()
	if s.Present["name"] {
		out.Name = s.Profile.Name
	}
	if s.Present["nickname"] {
		out.Nickname = s.Profile.Nickname
	}
	for _, a := range attributes {
		if s.Present[a.key] {
			*a.ptr(&out) = *a.ptr(&s.Profile)
		}
	}
	return out.Clamp()
}

// Parse reads the line-oriented `key: value` sheet format.
//
// Blank lines and lines starting with '#' or '//' are skipped. Markdown bullets
// and bold markers around keys are tolerated. Keys are case-insensitive aliases;
// unknown keys are ignored. Numeric values populate attributes; values that do
// not parse as finite numbers, including nan and inf, are skipped except for
// name and nickname.
// An aggression above 1 is read as a percentage.
//
// Postcondition: returns an error only when reading r fails.
func Parse(r io.Reader) (Sheet, error) {
	s := Sheet{Present: make(map[string]bool)}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		line = strings.TrimLeft(line, "-*+ ")
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = normalizeKey(key)
		value = strings.TrimSpace(strings.Trim(strings.TrimSpace(value), "*`"))

		if field, ok := textKeys[key]; ok {
			if value == "" {
				continue
			}
			if field == "name" {
				s.Profile.Name = value
			} else {
				s.Profile.Nickname = value
			}
			s.Present[field] = true
			continue
		}

		a, ok := attributeByAlias[key]
		if !ok {
			continue
		}
		n, err := strconv.ParseFloat(strings.TrimSuffix(value, "%"), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			continue
		}
		if a.key == "aggression" && n > 1 {
			n /= 100
		}
		*a.ptr(&s.Profile) = n
		s.Present[a.key] = true
	}
	if err := sc.Err(); err != nil {
		return Sheet{}, fmt.Errorf("fighter: reading sheet: %w", err)
	}
	return s, nil
}

// ParseString parses a sheet held in memory.
func ParseString(text string) Sheet {
	s, _ := Parse(strings.NewReader(text))
	return s
}

// Format renders p in the sheet format understood by Parse, one canonical key per line.
//
// Postcondition: Parse(Format(p)).Profile equals p for every recognized key.
func Format(p Profile) string {
	var b strings.Builder
	b.WriteString("# Fighter\n\n")
	fmt.Fprintf(&b, "name: %s\n", p.Name)
	if p.Nickname != "" {
		fmt.Fprintf(&b, "nickname: %s\n", p.Nickname)
	}
	b.WriteString("\n## Skills\n\n")
	for _, a := range attributes {
		fmt.Fprintf(&b, "%s: %s\n", a.key, strconv.FormatFloat(*a.ptr(&p), 'g', -1, 64))
	}
	return b.String()
}

// LoadFile reads a profile from path. Files ending in .yaml or .yml are decoded
// as a YAML profile; anything else is parsed as a skills sheet. Missing
// attributes take their default values.
func LoadFile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("fighter: reading %q: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		p := DefaultProfile()
		if err := yaml.Unmarshal(data, &p); err != nil {
			return Profile{}, fmt.Errorf("fighter: parsing %q: %w", path, err)
		}
		return p.Clamp(), nil
	default:
		return ParseString(string(data)).WithDefaults(), nil
	}
}

// yamlRoster wraps the top-level key of a roster file.
type yamlRoster struct {
	Fighters []yaml.Node `yaml:"fighters"`
}

// LoadRoster reads a YAML file with a top-level `fighters` list. Each entry
// starts from DefaultProfile so omitted attributes keep neutral values.
//
// Postcondition: returns an error if the file cannot be parsed or an entry has no name.
func LoadRoster(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fighter: reading roster %q: %w", path, err)
	}
	var r yamlRoster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("fighter: parsing roster %q: %w", path, err)
	}
	out := make([]Profile, 0, len(r.Fighters))
	for i := range r.Fighters {
		p := DefaultProfile()
		p.Name = ""
		if err := r.Fighters[i].Decode(&p); err != nil {
			return nil, fmt.Errorf("fighter: roster %q entry %d: %w", path, i, err)
		}
		if p.Name == "" {
			return nil, fmt.Errorf("fighter: roster %q entry %d: name must not be empty", path, i)
		}
		out = append(out, p.Clamp())
	}
	return out, nil
}
