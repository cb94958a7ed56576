package ai_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"pgregory.net/rapid"

	"github.com/cory-johannsen/fightsim/internal/game/ai"
	"github.com/cory-johannsen/fightsim/internal/game/technique"
)

func TestDomain_Validate_RejectsEmpty(t *testing.T) {
	d := &ai.Domain{}
	if err := d.Validate(); err == nil {
		t.Fatal("expected error for empty Domain")
	}
}

func TestDomain_Validate_AcceptsMinimal(t *testing.T) {
	d := &ai.Domain{
		ID:    "test",
		Tasks: []*ai.Task{{ID: "behave"}},
		Methods: []*ai.Method{{
			TaskID:   "behave",
			ID:       "m1",
			Subtasks: []string{"op1"},
		}},
		Operators: []*ai.Operator{{ID: "op1", Technique: "Jab"}},
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDomain_Validate_RequiresRootTask(t *testing.T) {
	d := &ai.Domain{
		ID:        "test",
		Tasks:     []*ai.Task{{ID: "fight"}},
		Methods:   []*ai.Method{{TaskID: "fight", ID: "m1", Subtasks: []string{"op1"}}},
		Operators: []*ai.Operator{{ID: "op1", Technique: "Jab"}},
	}
	if err := d.Validate(); err == nil {
		t.Fatal("expected error for missing behave task")
	}
}

func TestDomain_Validate_RejectsDanglingSubtask(t *testing.T) {
	d := &ai.Domain{
		ID:      "test",
		Tasks:   []*ai.Task{{ID: "behave"}},
		Methods: []*ai.Method{{TaskID: "behave", ID: "m1", Subtasks: []string{"ghost"}}},
	}
	if err := d.Validate(); err == nil {
		t.Fatal("expected error for unknown subtask")
	}
}

func TestDomain_Validate_RejectsDuplicateOperator(t *testing.T) {
	d := &ai.Domain{
		ID:      "test",
		Tasks:   []*ai.Task{{ID: "behave"}},
		Methods: []*ai.Method{{TaskID: "behave", ID: "m1", Subtasks: []string{"op1"}}},
		Operators: []*ai.Operator{
			{ID: "op1", Technique: "Jab"},
			{ID: "op1", Technique: "Cross"},
		},
	}
	if err := d.Validate(); err == nil {
		t.Fatal("expected error for duplicate operator ID")
	}
}

func TestDomain_Validate_RejectsOperatorWithoutTechnique(t *testing.T) {
	d := &ai.Domain{
		ID:        "test",
		Tasks:     []*ai.Task{{ID: "behave"}},
		Operators: []*ai.Operator{{ID: "op1"}},
	}
	if err := d.Validate(); err == nil {
		t.Fatal("expected error for operator without technique")
	}
}

func TestDomain_CheckTechniques_Canonicalizes(t *testing.T) {
	d := &ai.Domain{Operators: []*ai.Operator{{ID: "op1", Technique: "  double leg takedown "}}}
	if err := d.CheckTechniques(technique.MustCatalog()); err != nil {
		t.Fatalf("CheckTechniques: %v", err)
	}
	if d.Operators[0].Technique != "Double Leg Takedown" {
		t.Fatalf("expected canonical name, got %q", d.Operators[0].Technique)
	}
}

func TestDomain_CheckTechniques_RejectsUnknown(t *testing.T) {
	d := &ai.Domain{ID: "x", Operators: []*ai.Operator{{ID: "op1", Technique: "Hadouken"}}}
	if err := d.CheckTechniques(technique.MustCatalog()); err == nil {
		t.Fatal("expected error for unknown technique")
	}
}

func TestDomain_OperatorByID_Found(t *testing.T) {
	d := &ai.Domain{
		Operators: []*ai.Operator{{ID: "jab", Technique: "Jab"}},
	}
	op, ok := d.OperatorByID("jab")
	if !ok || op.Technique != "Jab" {
		t.Fatal("expected to find operator")
	}
}

func TestDomain_OperatorByID_NotFound(t *testing.T) {
	d := &ai.Domain{}
	_, ok := d.OperatorByID("missing")
	if ok {
		t.Fatal("expected not found")
	}
}

func TestDomain_MethodsForTask_ReturnsOrdered(t *testing.T) {
	d := &ai.Domain{
		Methods: []*ai.Method{
			{TaskID: "fight", ID: "m1", Subtasks: []string{"op1"}},
			{TaskID: "fight", ID: "m2", Subtasks: []string{"op2"}},
			{TaskID: "other", ID: "m3", Subtasks: []string{"op3"}},
		},
	}
	methods := d.MethodsForTask("fight")
	if len(methods) != 2 {
		t.Fatalf("expected 2 methods, got %d", len(methods))
	}
	if methods[0].ID != "m1" || methods[1].ID != "m2" {
		t.Fatalf("expected methods in declaration order [m1, m2], got [%s, %s]", methods[0].ID, methods[1].ID)
	}
}

const pressurePlan = `
domain:
  id: pressure
  description: Walk forward and strike
  script: pressure.lua
  tasks:
    - id: behave
      description: root
  methods:
    - task: behave
      id: default
      subtasks: [jab]
  operators:
    - id: jab
      technique: Jab
`

func TestLoadDomains_LoadsYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pressure.yaml"), []byte(pressurePlan), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0600); err != nil {
		t.Fatal(err)
	}
	domains, err := ai.LoadDomains(dir)
	if err != nil {
		t.Fatalf("LoadDomains: %v", err)
	}
	if len(domains) != 1 || domains[0].ID != "pressure" {
		t.Fatalf("unexpected domains: %v", domains)
	}
	if want := filepath.Join(dir, "pressure.lua"); domains[0].Script != want {
		t.Fatalf("expected script path %q, got %q", want, domains[0].Script)
	}
}

func TestLoadDomain_MissingDomainKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("plan:\n  id: x\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := ai.LoadDomain(path); err == nil {
		t.Fatal("expected error for missing domain key")
	}
}

func TestProperty_Domain_OperatorByID_ConsistentLookup(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 5).Draw(rt, "n")
		ops := make([]*ai.Operator, n)
		ids := make([]string, n)
		for i := range ops {
			id := fmt.Sprintf("op%d", i)
			ids[i] = id
			ops[i] = &ai.Operator{ID: id, Technique: "Jab"}
		}
		d := &ai.Domain{Operators: ops}

		for _, id := range ids {
			op, ok := d.OperatorByID(id)
			if !ok {
				rt.Fatalf("OperatorByID(%q) returned not found, expected found", id)
			}
			if op.ID != id {
				rt.Fatalf("OperatorByID(%q) returned op with ID %q", id, op.ID)
			}
		}

		unknown := rapid.StringMatching(`[a-z_]{1,10}`).Draw(rt, "unknown")
		inList := false
		for _, id := range ids {
			if id == unknown {
				inList = true
				break
			}
		}
		if !inList {
			if _, ok := d.OperatorByID(unknown); ok {
				rt.Fatalf("OperatorByID(%q) returned found, expected not found", unknown)
			}
		}
	})
}
