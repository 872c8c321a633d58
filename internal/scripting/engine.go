package scripting

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

//go:embed scripts/*.lua
var builtin embed.FS

// Engine wraps a single gopher-lua VM for game formulas.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine loads the built-in formulas, then every script in scriptsDir.
// A missing scriptsDir is fine.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	if err := e.loadBuiltin(); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load builtin scripts: %w", err)
	}
	if scriptsDir != "" {
		if err := e.loadDir(scriptsDir); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load scripts: %w", err)
		}
	}
	return e, nil
}

func (e *Engine) loadBuiltin() error {
	entries, err := builtin.ReadDir("scripts")
	if err != nil {
		return err
	}
	for _, entry := range entries {
		src, err := builtin.ReadFile("scripts/" + entry.Name())
		if err != nil {
			return err
		}
		if err := e.vm.DoString(string(src)); err != nil {
			return fmt.Errorf("load %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Seed reseeds the VM's random source.
func (e *Engine) Seed(seed int64) {
	if err := e.vm.DoString(fmt.Sprintf("math.randomseed(%d)", seed)); err != nil {
		e.log.Error("lua seed error", zap.Error(err))
	}
}

// CalcDamage calls Lua calc_damage(weapon_level, armor_level).
func (e *Engine) CalcDamage(weaponLevel, armorLevel int) int {
	dmg := e.callIntFunc("calc_damage", 1, weaponLevel, armorLevel)
	if dmg < 0 {
		return 0
	}
	return dmg
}

// CalcRegen calls Lua calc_regen(max_hp).
func (e *Engine) CalcRegen(maxHP int) int {
	return e.callIntFunc("calc_regen", maxHP/25, maxHP)
}

// XPForLevel calls Lua xp_for_level(level).
func (e *Engine) XPForLevel(level int) int {
	return e.callIntFunc("xp_for_level", 0, level)
}

// LevelFromXP calls Lua level_from_xp(xp).
func (e *Engine) LevelFromXP(xp int) int {
	lvl := e.callIntFunc("level_from_xp", 1, xp)
	if lvl < 1 {
		return 1
	}
	return lvl
}

// KillXP calls Lua kill_xp(mob_xp, mob_level, player_level).
func (e *Engine) KillXP(mobXP, mobLevel, playerLevel int) int {
	return e.callIntFunc("kill_xp", mobXP, mobXP, mobLevel, playerLevel)
}

// callIntFunc calls a Lua function with int args and returns an int result,
// or fallback if the call fails.
func (e *Engine) callIntFunc(name string, fallback int, args ...int) int {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		e.log.Error("lua function not found", zap.String("name", name))
		return fallback
	}

	lArgs := make([]lua.LValue, len(args))
	for i, a := range args {
		lArgs[i] = lua.LNumber(a)
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lArgs...); err != nil {
		e.log.Error("lua call error", zap.String("func", name), zap.Error(err))
		return fallback
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	n, ok := result.(lua.LNumber)
	if !ok {
		e.log.Error("lua function returned non-number", zap.String("func", name))
		return fallback
	}
	return int(n)
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
