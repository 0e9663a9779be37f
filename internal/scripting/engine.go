package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// apiVersion is published to scripts as the API_VERSION global so a
// script can refuse to run against an engine it does not understand.
const apiVersion = 1

// ErrAlreadyStarted is returned on a second StartUp without an
// intervening ShutDown.
var ErrAlreadyStarted = errors.New("scripting: already started")

// Engine wraps a single gopher-lua VM hosting the game's script hooks.
// Scripts are plain .lua files in one directory, executed in filename
// order at StartUp; they attach behavior by defining well-known
// globals:
//
//	on_update(dt)          -- once per frame, dt in seconds
//	on_entity_expired(name) -- when a lifetime runs out
//
// Single-goroutine access only (the frame loop). The engine registers
// as an optional subsystem: a broken script library disables scripting,
// not the engine.
type Engine struct {
	log *zap.Logger
	dir string

	vm     *lua.LState
	loaded int
}

// NewEngine prepares a script engine for dir. The VM is created at
// StartUp, not here.
func NewEngine(dir string, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log, dir: dir}
}

func (e *Engine) Name() string { return "scripting" }

// StartUp creates the VM and runs every script in the directory. A
// missing directory just means no hooks; a script that fails to
// execute aborts startup, with the VM released.
func (e *Engine) StartUp() error {
	if e.vm != nil {
		return ErrAlreadyStarted
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(apiVersion))
	e.vm = vm

	n, err := e.loadDir(e.dir)
	if err != nil {
		vm.Close()
		e.vm = nil
		return err
	}
	e.loaded = n
	e.log.Debug("scripts loaded", zap.String("dir", e.dir), zap.Int("files", n))
	return nil
}

// ShutDown closes the VM. Safe without a prior StartUp, and safe to
// call twice.
func (e *Engine) ShutDown() {
	if e.vm == nil {
		return
	}
	e.vm.Close()
	e.vm = nil
	e.loaded = 0
}

// Loaded reports how many script files the running VM executed.
func (e *Engine) Loaded() int { return e.loaded }

// loadDir runs all .lua files in dir. os.ReadDir returns entries in
// filename order, so load order is deterministic.
func (e *Engine) loadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read scripts dir: %w", err)
	}
	n := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return 0, fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("script loaded", zap.String("file", path))
		n++
	}
	return n, nil
}

// OnUpdate fires the per-frame hook with the frame's elapsed seconds.
func (e *Engine) OnUpdate(dt time.Duration) {
	e.call("on_update", lua.LNumber(dt.Seconds()))
}

// OnEntityExpired fires the expiry hook with the entity's label.
func (e *Engine) OnEntityExpired(name string) {
	e.call("on_entity_expired", lua.LString(name))
}

// call invokes a global script function. An undefined hook is a no-op;
// a script error is logged and contained, never surfaced to the frame
// loop.
func (e *Engine) call(name string, args ...lua.LValue) {
	if e.vm == nil {
		return
	}
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, args...); err != nil {
		e.log.Warn("script hook failed", zap.String("hook", name), zap.Error(err))
	}
}
