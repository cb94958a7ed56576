// Package ai implements the decision providers that can take over technique
// selection for one side of a bout: a rules-based heuristic, Lua strategy
// scripts, an Anthropic model, and Hierarchical Task Network (HTN) game plans.
//
// HTN planning decomposes abstract tasks into primitive operators via ordered
// methods. Method preconditions are built-in bout conditions or Lua hooks;
// operators name techniques.
package ai

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/fightsim/internal/game/technique"
)

// rootTask is the task every plan starts from.
const rootTask = "behave"

// Task is an abstract goal that can be decomposed by methods.
//
// Precondition: ID must be non-empty.
type Task struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
}

// Method decomposes a task into an ordered list of subtasks or operator IDs.
//
// Precondition: TaskID, ID, and Subtasks must be non-empty.
// Precondition: Precondition is a condition name, optionally negated with a
// leading "!"; empty means always applicable.
type Method struct {
	TaskID       string   `yaml:"task"`
	ID           string   `yaml:"id"`
	Precondition string   `yaml:"precondition"`
	Subtasks     []string `yaml:"subtasks"`
}

// Operator is a primitive step that names one technique.
//
// Precondition: ID and Technique must be non-empty.
type Operator struct {
	ID        string `yaml:"id"`
	Technique string `yaml:"technique"`
}

// Domain holds a full HTN game plan loaded from a YAML file.
//
// Invariant: all Task, Method, and Operator IDs are unique within their slice.
type Domain struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
	// Script optionally names a Lua file, relative to the plan file, whose
	// globals serve as extra preconditions.
	Script    string      `yaml:"script"`
	Tasks     []*Task     `yaml:"tasks"`
	Methods   []*Method   `yaml:"methods"`
	Operators []*Operator `yaml:"operators"`
}

// Validate checks all required fields and cross-field constraints.
//
// Postcondition: nil return guarantees non-empty ID, a "behave" root task,
// all Method TaskIDs and IDs non-empty with non-empty Subtasks, all Operator
// IDs and Techniques non-empty, no duplicate IDs within any slice, and all
// cross-references are valid.
func (d *Domain) Validate() error {
	if d.ID == "" {
		return errors.New("ai.Domain: ID must not be empty")
	}
	if len(d.Tasks) == 0 {
		return fmt.Errorf("ai.Domain %q: must have at least one task", d.ID)
	}
	for _, t := range d.Tasks {
		if t.ID == "" {
			return fmt.Errorf("ai.Domain %q: task has empty ID", d.ID)
		}
	}
	for _, m := range d.Methods {
		if m.TaskID == "" || m.ID == "" {
			return fmt.Errorf("ai.Domain %q: method missing TaskID or ID", d.ID)
		}
		if len(m.Subtasks) == 0 {
			return fmt.Errorf("ai.Domain %q method %q: subtasks must not be empty", d.ID, m.ID)
		}
	}
	for _, op := range d.Operators {
		if op.ID == "" || op.Technique == "" {
			return fmt.Errorf("ai.Domain %q: operator missing ID or Technique", d.ID)
		}
	}

	taskIDs, err := uniqueIDs(d.ID, "task", d.Tasks, func(t *Task) string { return t.ID })
	if err != nil {
		return err
	}
	if _, ok := taskIDs[rootTask]; !ok {
		return fmt.Errorf("ai.Domain %q: missing root task %q", d.ID, rootTask)
	}
	if _, err := uniqueIDs(d.ID, "method", d.Methods, func(m *Method) string { return m.ID }); err != nil {
		return err
	}
	operatorIDs, err := uniqueIDs(d.ID, "operator", d.Operators, func(o *Operator) string { return o.ID })
	if err != nil {
		return err
	}

	for _, m := range d.Methods {
		if _, ok := taskIDs[m.TaskID]; !ok {
			return fmt.Errorf("ai.Domain %q method %q: TaskID %q references unknown task", d.ID, m.ID, m.TaskID)
		}
		for _, sub := range m.Subtasks {
			_, isTask := taskIDs[sub]
			_, isOp := operatorIDs[sub]
			if !isTask && !isOp {
				return fmt.Errorf("ai.Domain %q method %q: subtask %q is neither a task nor an operator", d.ID, m.ID, sub)
			}
		}
	}
	return nil
}

func uniqueIDs[T any](domain, kind string, items []T, id func(T) string) (map[string]struct{}, error) {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		k := id(it)
		if _, dup := seen[k]; dup {
			return nil, fmt.Errorf("ai.Domain %q: duplicate %s ID %q", domain, kind, k)
		}
		seen[k] = struct{}{}
	}
	return seen, nil
}

// CheckTechniques verifies that every operator names a catalog technique and
// rewrites each name to its canonical spelling.
func (d *Domain) CheckTechniques(c *technique.Catalog) error {
	for _, op := range d.Operators {
		t, ok := c.Resolve(op.Technique)
		if !ok {
			return fmt.Errorf("ai.Domain %q operator %q: unknown technique %q", d.ID, op.ID, op.Technique)
		}
		op.Technique = t.Name
	}
	return nil
}

// OperatorByID returns the operator with the given ID, or false if not found.
func (d *Domain) OperatorByID(id string) (*Operator, bool) {
	for _, op := range d.Operators {
		if op.ID == id {
			return op, true
		}
	}
	return nil, false
}

// MethodsForTask returns all methods that decompose taskID, in declaration order.
func (d *Domain) MethodsForTask(taskID string) []*Method {
	var out []*Method
	for _, m := range d.Methods {
		if m.TaskID == taskID {
			out = append(out, m)
		}
	}
	return out
}

// yamlDomainFile wraps the YAML top-level key.
type yamlDomainFile struct {
	Domain *Domain `yaml:"domain"`
}

// LoadDomain reads and validates one game plan file. A relative Script path
// is resolved against the plan file's directory.
func LoadDomain(path string) (*Domain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ai.LoadDomain: reading %q: %w", path, err)
	}
	var f yamlDomainFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("ai.LoadDomain: parsing %s: %w", path, err)
	}
	if f.Domain == nil {
		return nil, fmt.Errorf("ai.LoadDomain: %s missing top-level 'domain' key", path)
	}
	if err := f.Domain.Validate(); err != nil {
		return nil, err
	}
	if s := f.Domain.Script; s != "" && !filepath.IsAbs(s) {
		f.Domain.Script = filepath.Join(filepath.Dir(path), s)
	}
	return f.Domain, nil
}

// LoadDomains reads all *.yaml files from dir and returns parsed Domains.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns error if any YAML file fails to parse or validate.
// Postcondition: returns (nil, nil) if dir contains no .yaml files.
func LoadDomains(dir string) ([]*Domain, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ai.LoadDomains: reading %q: %w", dir, err)
	}
	var domains []*Domain
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		d, err := LoadDomain(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		domains = append(domains, d)
	}
	return domains, nil
}
