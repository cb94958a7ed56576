package scripting_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/fightsim/internal/scripting"
)

func TestModules_LogInfo(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "log.lua", `
		function do_log()
			engine.log.info("hello from lua")
		end
	`)
	require.NoError(t, mgr.LoadStrategy("log", dir, 0))
	_, err := mgr.CallHook(context.Background(), "log", "do_log")
	require.NoError(t, err)

	entries := logs.FilterMessage("hello from lua").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, "lua", entries[0].ContextMap()["source"])
}

func TestModules_LogLevels(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "log.lua", `
		function do_log()
			engine.log.debug("d")
			engine.log.warn("w")
			engine.log.error("e")
		end
	`)
	require.NoError(t, mgr.LoadStrategy("log", dir, 0))
	_, err := mgr.CallHook(context.Background(), "log", "do_log")
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("d").FilterLevelExact(zap.DebugLevel).Len())
	assert.Equal(t, 1, logs.FilterMessage("w").FilterLevelExact(zap.WarnLevel).Len())
	assert.Equal(t, 1, logs.FilterMessage("e").FilterLevelExact(zap.ErrorLevel).Len())
}

func TestModules_DiceRollInRange(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "dice.lua", `
		function roll_many()
			for i = 1, 200 do
				local r = engine.dice.roll(6)
				if r < 1 or r > 6 then return false end
			end
			return true
		end
	`)
	require.NoError(t, mgr.LoadStrategy("dice", dir, 0))
	ret, err := mgr.CallHook(context.Background(), "dice", "roll_many")
	require.NoError(t, err)
	assert.Equal(t, true, ret)
}

func TestModules_DiceRollRejectsZeroSides(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "dice.lua", `function bad() return engine.dice.roll(0) end`)
	require.NoError(t, mgr.LoadStrategy("dice", dir, 0))
	_, err := mgr.CallHook(context.Background(), "dice", "bad")
	assert.Error(t, err)
}

func TestModules_DiceChanceExtremes(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "dice.lua", `
		function extremes()
			return { always = engine.dice.chance(1), never = engine.dice.chance(0) }
		end
	`)
	require.NoError(t, mgr.LoadStrategy("dice", dir, 0))
	ret, err := mgr.CallHook(context.Background(), "dice", "extremes")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"always": true, "never": false}, ret)
}

func TestModules_DicePick(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "dice.lua", `
		function pick(list) return engine.dice.pick(list) end
	`)
	require.NoError(t, mgr.LoadStrategy("dice", dir, 0))

	options := []string{"Jab", "Cross", "Hook"}
	for i := 0; i < 20; i++ {
		ret, err := mgr.CallHook(context.Background(), "dice", "pick", options)
		require.NoError(t, err)
		assert.Contains(t, options, ret)
	}

	ret, err := mgr.CallHook(context.Background(), "dice", "pick", []string{})
	require.NoError(t, err)
	assert.Nil(t, ret)
}

func TestModules_TechniqueInfo(t *testing.T) {
	mgr, _ := newTestManager(t)
	mgr.LookupTechnique = func(name string) *scripting.TechniqueInfo {
		if !strings.EqualFold(name, "jab") {
			return nil
		}
		return &scripting.TechniqueInfo{
			Name: "Jab", Type: "strike", Damage: 3, Stamina: 1, Accuracy: 0.8,
			Positions: []string{"standing"},
		}
	}
	dir := writeTempLua(t, "tech.lua", `
		function lookup(name)
			local info = engine.technique.info(name)
			if info == nil then return "unknown" end
			return info.name .. ":" .. info.type .. ":" .. info.positions[1]
		end
	`)
	require.NoError(t, mgr.LoadStrategy("tech", dir, 0))

	ret, err := mgr.CallHook(context.Background(), "tech", "lookup", "jab")
	require.NoError(t, err)
	assert.Equal(t, "Jab:strike:standing", ret)

	ret, err = mgr.CallHook(context.Background(), "tech", "lookup", "Flying Knee")
	require.NoError(t, err)
	assert.Equal(t, "unknown", ret)
}

func TestModules_TechniqueInfo_NoLookup(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "tech.lua", `
		function lookup() return engine.technique.info("Jab") == nil end
	`)
	require.NoError(t, mgr.LoadStrategy("tech", dir, 0))
	ret, err := mgr.CallHook(context.Background(), "tech", "lookup")
	require.NoError(t, err)
	assert.Equal(t, true, ret)
}
