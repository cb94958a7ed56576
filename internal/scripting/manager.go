package scripting

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/fightsim/internal/game/dice"
)

// globalStrategy is the reserved key for shared scripts loaded via LoadGlobal.
// CallHook falls back to this VM when no strategy VM is found.
const globalStrategy = "__global__"

// ErrNoStrategy is returned by CallHook when neither the named strategy nor the
// global VM is loaded.
var ErrNoStrategy = errors.New("scripting: strategy not loaded")

// TechniqueInfo describes a technique to Lua scripts.
type TechniqueInfo struct {
	Name      string
	Type      string
	Damage    float64
	Stamina   float64
	Accuracy  float64
	Positions []string
}

// vm is one strategy's LState. An LState is single-threaded, so every use
// holds mu.
type vm struct {
	mu    sync.Mutex
	L     *lua.LState
	limit int
}

// Manager owns one sandboxed LState per strategy and exposes hook dispatch.
//
// Manager is safe for concurrent use. Calls into the same strategy are
// serialized; different strategies run concurrently.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	roller *dice.Roller
	logger *zap.Logger

	// Injected after construction. nil = engine.technique.info returns nil.
	LookupTechnique func(name string) *TechniqueInfo
}

// NewManager creates a Manager.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no strategies loaded.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	if roller == nil {
		panic("scripting.NewManager: roller must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		vms:    make(map[string]*vm),
		roller: roller,
		logger: logger,
	}
}

// LoadStrategy creates a sandboxed VM named name, registers all engine.*
// modules, then executes path. When path is a directory every *.lua file in
// it runs in lexicographic order.
//
// Precondition: name must be non-empty.
// Postcondition: the strategy VM replaces any previous VM of the same name;
// returns error on read or Lua load failure.
func (m *Manager) LoadStrategy(name, path string, instLimit int) error {
	if name == "" {
		return fmt.Errorf("scripting: strategy name must not be empty")
	}
	return m.loadInto(name, path, instLimit)
}

// LoadGlobal creates the "__global__" VM used as the CallHook fallback for
// strategies that are not loaded by name.
func (m *Manager) LoadGlobal(dir string, instLimit int) error {
	return m.loadInto(globalStrategy, dir, instLimit)
}

func scriptFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(path, e.Name()))
		}
	}
	sort.Strings(luaFiles)
	return luaFiles, nil
}

func (m *Manager) loadInto(key, path string, instLimit int) error {
	files, err := scriptFiles(path)
	if err != nil {
		return fmt.Errorf("scripting: reading %q for %q: %w", path, key, err)
	}

	L := NewSandboxedState()
	m.RegisterModules(L)
	for _, file := range files {
		err := limited(context.Background(), L, instLimit, func() error { return L.DoFile(file) })
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", file, key, err)
		}
	}

	m.mu.Lock()
	old := m.vms[key]
	m.vms[key] = &vm{L: L, limit: instLimit}
	m.mu.Unlock()
	if old != nil {
		old.mu.Lock()
		old.L.Close()
		old.mu.Unlock()
	}
	m.logger.Info("scripting: strategy loaded", zap.String("strategy", key), zap.Int("files", len(files)))
	return nil
}

// Has reports whether a VM is loaded under name.
func (m *Manager) Has(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.vms[name]
	return ok
}

// CallHook calls the named Lua global function in the strategy's VM, falling
// back to the __global__ VM. Arguments are converted with ToLua and the first
// return value with FromLua. Each call gets a fresh instruction budget and is
// cancelled with ctx.
//
// Postcondition: returns (nil, nil) when the hook is not defined; returns
// ErrNoStrategy when no VM exists; Lua runtime errors are logged at Warn
// level and returned.
func (m *Manager) CallHook(ctx context.Context, strategy, hook string, args ...any) (any, error) {
	m.mu.RLock()
	v, ok := m.vms[strategy]
	if !ok {
		v = m.vms[globalStrategy]
	}
	m.mu.RUnlock()

	if v == nil {
		m.logger.Info("scripting: no VM for strategy",
			zap.String("strategy", strategy),
			zap.String("hook", hook),
		)
		return nil, fmt.Errorf("%w: %q", ErrNoStrategy, strategy)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	L := v.L

	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return nil, nil
	}

	largs := make([]lua.LValue, len(args))
	for i, a := range args {
		largs[i] = ToLua(L, a)
	}
	err := limited(ctx, L, v.limit, func() error {
		return L.CallByParam(lua.P{
			Fn:      fn,
			NRet:    1,
			Protect: true,
		}, largs...)
	})
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("strategy", strategy),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return nil, fmt.Errorf("scripting: %s.%s: %w", strategy, hook, err)
	}

	ret := L.Get(-1)
	L.Pop(1)
	return FromLua(ret), nil
}

// Close releases every VM.
//
// Postcondition: no strategies are loaded.
func (m *Manager) Close() {
	m.mu.Lock()
	vms := m.vms
	m.vms = make(map[string]*vm)
	m.mu.Unlock()
	for _, v := range vms {
		v.mu.Lock()
		v.L.Close()
		v.mu.Unlock()
	}
}
