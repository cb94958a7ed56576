package scripting_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/fightsim/internal/game/dice"
	"github.com/cory-johannsen/fightsim/internal/scripting"
)

func newTestManager(t testing.TB) (*scripting.Manager, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	src := dice.NewCryptoSource()
	roller := dice.NewLoggedRoller(src, logger)
	mgr := scripting.NewManager(roller, logger)
	t.Cleanup(mgr.Close)
	return mgr, logs
}

func writeTempLua(t testing.TB, filename, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), []byte(src), 0644))
	return dir
}

func TestManager_LoadStrategy_CallsHook(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function test_hook(a, b)
			return a + b
		end
	`)
	require.NoError(t, mgr.LoadStrategy("adder", dir, 0))
	assert.True(t, mgr.Has("adder"))
	ret, err := mgr.CallHook(context.Background(), "adder", "test_hook", 3, 4)
	require.NoError(t, err)
	assert.Equal(t, 7.0, ret)
}

func TestManager_LoadStrategy_SingleFile(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "brawler.lua", `function choose() return "Hook" end`)
	require.NoError(t, mgr.LoadStrategy("brawler", filepath.Join(dir, "brawler.lua"), 0))
	ret, err := mgr.CallHook(context.Background(), "brawler", "choose")
	require.NoError(t, err)
	assert.Equal(t, "Hook", ret)
}

func TestManager_LoadStrategy_EmptyNameRejected(t *testing.T) {
	mgr, _ := newTestManager(t)
	assert.Error(t, mgr.LoadStrategy("", t.TempDir(), 0))
}

func TestManager_CallHook_MissingHook_NoOp(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "empty.lua", `-- no functions`)
	require.NoError(t, mgr.LoadStrategy("empty", dir, 0))
	ret, err := mgr.CallHook(context.Background(), "empty", "nonexistent_hook")
	require.NoError(t, err)
	assert.Nil(t, ret)
}

func TestManager_CallHook_UnknownStrategy(t *testing.T) {
	mgr, logs := newTestManager(t)
	ret, err := mgr.CallHook(context.Background(), "no_such_strategy", "some_hook")
	assert.ErrorIs(t, err, scripting.ErrNoStrategy)
	assert.Nil(t, ret)
	assert.Equal(t, 1, logs.FilterMessage("scripting: no VM for strategy").Len())
}

func TestManager_CallHook_RuntimeError_WarnsAndReturnsError(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "bad.lua", `
		function bad_hook()
			error("intentional error")
		end
	`)
	require.NoError(t, mgr.LoadStrategy("bad", dir, 0))
	ret, err := mgr.CallHook(context.Background(), "bad", "bad_hook")
	assert.Error(t, err)
	assert.Nil(t, ret)
	assert.Equal(t, 1, logs.FilterLevelExact(zap.WarnLevel).Len())
}

func TestManager_CallHook_InstructionLimitPerCall(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "loop.lua", `
		function spin() while true do end end
		function quick() return 1 end
	`)
	require.NoError(t, mgr.LoadStrategy("loop", dir, 500))

	_, err := mgr.CallHook(context.Background(), "loop", "spin")
	assert.Error(t, err, "runaway script must be stopped")

	// The budget is per call, so later calls still run.
	for i := 0; i < 10; i++ {
		ret, err := mgr.CallHook(context.Background(), "loop", "quick")
		require.NoError(t, err)
		assert.Equal(t, 1.0, ret)
	}
}

func TestManager_CallHook_ContextCancelStopsScript(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "loop.lua", `function spin() while true do end end`)
	require.NoError(t, mgr.LoadStrategy("loop", dir, 1<<40))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := mgr.CallHook(ctx, "loop", "spin")
	assert.Error(t, err)
}

func TestManager_LoadGlobal_CallHookFallback(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "global.lua", `
		function global_hook()
			return 42
		end
	`)
	require.NoError(t, mgr.LoadGlobal(dir, 0))
	ret, err := mgr.CallHook(context.Background(), "unknown", "global_hook")
	require.NoError(t, err)
	assert.Equal(t, 42.0, ret)
}

func TestManager_LoadStrategy_EmptyDir_NoError(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadStrategy("empty", t.TempDir(), 0))
	ret, err := mgr.CallHook(context.Background(), "empty", "anything")
	require.NoError(t, err)
	assert.Nil(t, ret)
}

func TestManager_LoadStrategy_InvalidLua_ReturnsError(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "bad.lua", `this is not valid lua @@@@`)
	assert.Error(t, mgr.LoadStrategy("bad", dir, 0))
	assert.False(t, mgr.Has("bad"))
}

func TestManager_LoadStrategy_MissingPath(t *testing.T) {
	mgr, _ := newTestManager(t)
	assert.Error(t, mgr.LoadStrategy("ghost", filepath.Join(t.TempDir(), "nope.lua"), 0))
}

func TestManager_LoadStrategy_ReplacesPrevious(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadStrategy("s", writeTempLua(t, "a.lua", `function v() return 1 end`), 0))
	require.NoError(t, mgr.LoadStrategy("s", writeTempLua(t, "b.lua", `function v() return 2 end`), 0))
	ret, err := mgr.CallHook(context.Background(), "s", "v")
	require.NoError(t, err)
	assert.Equal(t, 2.0, ret)
}

func TestProperty_CallHookMissingStrategyNeverPanics(t *testing.T) {
	mgr, _ := newTestManager(t)
	rapid.Check(t, func(rt *rapid.T) {
		name := rapid.StringMatching(`[a-z]{1,10}`).Draw(rt, "strategy")
		hook := rapid.StringMatching(`[a-z]{1,10}`).Draw(rt, "hook")
		count := rapid.IntRange(1, 20).Draw(rt, "count")
		for i := 0; i < count; i++ {
			mgr.CallHook(context.Background(), name, hook) //nolint:errcheck
		}
	})
}

func TestManager_CallHookConcurrentSameStrategy_NoRace(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "hooks.lua", `
		function concurrent_hook(a, b)
			return a + b
		end
	`)
	require.NoError(t, mgr.LoadStrategy("conc", dir, 0))

	const goroutines = 10
	const callsEach = 5
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < callsEach; j++ {
				ret, err := mgr.CallHook(context.Background(), "conc", "concurrent_hook", 1, 2)
				assert.NoError(t, err)
				assert.Equal(t, 3.0, ret)
			}
		}()
	}
	wg.Wait()
}

func TestManager_LoadStrategy_MultipleFiles_OrderedByName(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.lua"), []byte(`base_val = 10`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.lua"), []byte(`
		function get_val() return base_val end
	`), 0644))
	require.NoError(t, mgr.LoadStrategy("ordered", dir, 0))
	ret, err := mgr.CallHook(context.Background(), "ordered", "get_val")
	require.NoError(t, err)
	assert.Equal(t, 10.0, ret)
}

func TestNewManager_PanicsOnNilRoller(t *testing.T) {
	assert.Panics(t, func() {
		scripting.NewManager(nil, zap.NewNop())
	})
}

func TestNewManager_PanicsOnNilLogger(t *testing.T) {
	roller := dice.NewLoggedRoller(dice.NewCryptoSource(), zap.NewNop())
	assert.Panics(t, func() {
		scripting.NewManager(roller, nil)
	})
}

func TestManager_Close_ReleasesStrategies(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "init.lua", `function get_x() return x end`)
	require.NoError(t, mgr.LoadStrategy("closing", dir, 0))
	mgr.Close()
	assert.False(t, mgr.Has("closing"))
	_, err := mgr.CallHook(context.Background(), "closing", "get_x")
	assert.ErrorIs(t, err, scripting.ErrNoStrategy)
}
