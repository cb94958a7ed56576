package ai_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fightsim/internal/game/ai"
	"github.com/cory-johannsen/fightsim/internal/game/dice"
	"github.com/cory-johannsen/fightsim/internal/game/technique"
	"github.com/cory-johannsen/fightsim/internal/scripting"
)

func newScripts(t *testing.T) *scripting.Manager {
	t.Helper()
	logger := zap.NewNop()
	mgr := scripting.NewManager(dice.NewLoggedRoller(dice.NewSeededSource(1), logger), logger)
	t.Cleanup(mgr.Close)
	return mgr
}

func writeStrategy(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "strategy.lua")
	if err := os.WriteFile(path, []byte(src), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

const counterStrategy = `
function choose_technique(ctx)
	if ctx.self.position == "standing" and ctx.target_hurt then
		return "Head Kick"
	end
	return ctx.legal[1]
end
`

func TestScript_ChoosesFromRequestTable(t *testing.T) {
	mgr := newScripts(t)
	path := writeStrategy(t, counterStrategy)
	if err := mgr.LoadStrategy("counter", path, 0); err != nil {
		t.Fatalf("LoadStrategy: %v", err)
	}
	s := ai.NewScript(mgr, "counter")

	req := request(technique.Standing)
	name, err := s.Decide(context.Background(), req)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if name != req.Legal[0] {
		t.Fatalf("expected first legal technique %q, got %q", req.Legal[0], name)
	}

	req.TargetHurt = true
	name, err = s.Decide(context.Background(), req)
	if err != nil || name != "Head Kick" {
		t.Fatalf("expected Head Kick, got %q (%v)", name, err)
	}
}

func TestScript_NonStringResultIsError(t *testing.T) {
	mgr := newScripts(t)
	path := writeStrategy(t, `function choose_technique(ctx) return 7 end`)
	if err := mgr.LoadStrategy("numbers", path, 0); err != nil {
		t.Fatalf("LoadStrategy: %v", err)
	}
	if _, err := ai.NewScript(mgr, "numbers").Decide(context.Background(), request(technique.Standing)); err == nil {
		t.Fatal("expected error for non-string result")
	}
}

func TestScript_MissingHookIsError(t *testing.T) {
	mgr := newScripts(t)
	path := writeStrategy(t, `-- nothing`)
	if err := mgr.LoadStrategy("empty", path, 0); err != nil {
		t.Fatalf("LoadStrategy: %v", err)
	}
	if _, err := ai.NewScript(mgr, "empty").Decide(context.Background(), request(technique.Standing)); err == nil {
		t.Fatal("expected error when choose_technique is undefined")
	}
}

func TestRequestTable_UsesJSONNames(t *testing.T) {
	req := request(technique.Clinch)
	req.Recent = []string{"Fighter A lands a jab"}
	tbl, err := ai.RequestTable(req)
	if err != nil {
		t.Fatalf("RequestTable: %v", err)
	}
	self, ok := tbl["self"].(map[string]any)
	if !ok {
		t.Fatalf("expected self table, got %T", tbl["self"])
	}
	if self["position"] != "clinch" {
		t.Fatalf("expected clinch, got %v", self["position"])
	}
	if tbl["actor"] != "A" || tbl["target"] != "B" {
		t.Fatalf("expected sides A and B, got %v and %v", tbl["actor"], tbl["target"])
	}
	if recent, ok := tbl["recent"].([]any); !ok || len(recent) != 1 {
		t.Fatalf("expected one recent line, got %v", tbl["recent"])
	}
}
