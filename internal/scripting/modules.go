package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers all engine.* Lua tables into L:
//
//	engine.log.debug|info|warn|error(msg)
//	engine.dice.chance(p)       -> bool
//	engine.dice.roll(n)         -> int in [1, n]
//	engine.dice.pick(list)      -> random element of a sequence, or nil
//	engine.technique.info(name) -> table, or nil when unknown
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "log", m.logModule(L))
	L.SetField(engine, "dice", m.diceModule(L))
	L.SetField(engine, "technique", m.techniqueModule(L))
	L.SetGlobal("engine", engine)
}

func (m *Manager) logModule(L *lua.LState) *lua.LTable {
	levels := map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
		"error": m.logger.Error,
	}
	mod := L.NewTable()
	for name, logFn := range levels {
		L.SetField(mod, name, L.NewFunction(func(L *lua.LState) int {
			logFn(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}))
	}
	return mod
}

func (m *Manager) diceModule(L *lua.LState) *lua.LTable {
	return L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"chance": func(L *lua.LState) int {
			L.Push(lua.LBool(m.roller.Chance("lua chance", float64(L.CheckNumber(1)))))
			return 1
		},
		"roll": func(L *lua.LState) int {
			n := L.CheckInt(1)
			if n < 1 {
				L.ArgError(1, "sides must be >= 1")
				return 0
			}
			L.Push(lua.LNumber(m.roller.Intn("lua roll", n) + 1))
			return 1
		},
		"pick": func(L *lua.LState) int {
			t := L.CheckTable(1)
			n := t.Len()
			if n == 0 {
				L.Push(lua.LNil)
				return 1
			}
			L.Push(t.RawGetInt(m.roller.Intn("lua pick", n) + 1))
			return 1
		},
	})
}

func (m *Manager) techniqueModule(L *lua.LState) *lua.LTable {
	return L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"info": func(L *lua.LState) int {
			name := L.CheckString(1)
			if m.LookupTechnique == nil {
				L.Push(lua.LNil)
				return 1
			}
			info := m.LookupTechnique(name)
			if info == nil {
				L.Push(lua.LNil)
				return 1
			}
			positions := make([]any, len(info.Positions))
			for i, p := range info.Positions {
				positions[i] = p
			}
			L.Push(ToLua(L, map[string]any{
				"name":      info.Name,
				"type":      info.Type,
				"damage":    info.Damage,
				"stamina":   info.Stamina,
				"accuracy":  info.Accuracy,
				"positions": positions,
			}))
			return 1
		},
	})
}
