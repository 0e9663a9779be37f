package scripting

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/embercore/ember/internal/core/event"
)

func writeScript(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create scripts dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
}

func startEngine(t *testing.T, dir string) *Engine {
	t.Helper()
	e := NewEngine(dir, nil)
	if err := e.StartUp(); err != nil {
		t.Fatalf("StartUp: %v", err)
	}
	t.Cleanup(e.ShutDown)
	return e
}

// global reads a top-level VM value, for asserting script side effects.
func global(e *Engine, name string) lua.LValue {
	return e.vm.GetGlobal(name)
}

func TestStartUpWithoutScriptsDirSucceeds(t *testing.T) {
	e := startEngine(t, filepath.Join(t.TempDir(), "no-such-dir"))
	if e.Loaded() != 0 {
		t.Fatalf("Loaded = %d for missing dir, want 0", e.Loaded())
	}
	// Hooks are silently absent.
	e.OnUpdate(time.Second)
	e.OnEntityExpired("spark")
}

func TestOnUpdateReachesScriptHook(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scripts")
	writeScript(t, dir, "hooks.lua", `
ticks = 0
last_dt = 0
function on_update(dt)
  ticks = ticks + 1
  last_dt = dt
end
`)
	e := startEngine(t, dir)
	if e.Loaded() != 1 {
		t.Fatalf("Loaded = %d, want 1", e.Loaded())
	}

	e.OnUpdate(500 * time.Millisecond)
	e.OnUpdate(500 * time.Millisecond)

	if got := lua.LVAsNumber(global(e, "ticks")); got != 2 {
		t.Fatalf("script saw %v updates, want 2", got)
	}
	if got := float64(lua.LVAsNumber(global(e, "last_dt"))); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("script saw dt %v seconds, want 0.5", got)
	}
}

func TestOnEntityExpiredPassesName(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scripts")
	writeScript(t, dir, "hooks.lua", `
expired = ""
function on_entity_expired(name)
  expired = expired .. name .. ";"
end
`)
	e := startEngine(t, dir)

	e.OnEntityExpired("spark")
	e.OnEntityExpired("drifter")

	if got := lua.LVAsString(global(e, "expired")); got != "spark;drifter;" {
		t.Fatalf("expired log = %q", got)
	}
}

func TestScriptsLoadInFilenameOrder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scripts")
	writeScript(t, dir, "10_base.lua", `order = "base"`)
	writeScript(t, dir, "20_patch.lua", `order = order .. "+patch"`)
	writeScript(t, dir, "readme.txt", `not a script`)

	e := startEngine(t, dir)
	if e.Loaded() != 2 {
		t.Fatalf("Loaded = %d, want 2", e.Loaded())
	}
	if got := lua.LVAsString(global(e, "order")); got != "base+patch" {
		t.Fatalf("load order produced %q, want %q", got, "base+patch")
	}
}

func TestBrokenScriptFailsStartUp(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scripts")
	writeScript(t, dir, "bad.lua", `this is not lua (`)

	e := NewEngine(dir, nil)
	if err := e.StartUp(); err == nil {
		t.Fatal("StartUp accepted a broken script")
	}
	if e.vm != nil {
		t.Fatal("failed StartUp left the VM open")
	}
	// A failed optional subsystem must still tolerate hook calls.
	e.OnUpdate(time.Second)
}

func TestHookErrorIsContained(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scripts")
	writeScript(t, dir, "hooks.lua", `
calls = 0
function on_update(dt)
  calls = calls + 1
  error("boom")
end
`)
	e := startEngine(t, dir)

	e.OnUpdate(time.Second)
	e.OnUpdate(time.Second)

	if got := lua.LVAsNumber(global(e, "calls")); got != 2 {
		t.Fatalf("hook ran %v times, want 2 (error must not disable it)", got)
	}
}

func TestStartUpTwiceFails(t *testing.T) {
	e := startEngine(t, t.TempDir())
	if err := e.StartUp(); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("second StartUp err = %v, want ErrAlreadyStarted", err)
	}
}

func TestShutDownIsIdempotent(t *testing.T) {
	e := NewEngine(t.TempDir(), nil)
	e.ShutDown() // never started

	if err := e.StartUp(); err != nil {
		t.Fatalf("StartUp: %v", err)
	}
	e.ShutDown()
	e.ShutDown()
	if e.Loaded() != 0 {
		t.Fatalf("Loaded = %d after ShutDown, want 0", e.Loaded())
	}
}

func TestScriptSystemBridgesTickAndExpiry(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scripts")
	writeScript(t, dir, "hooks.lua", `
ticks = 0
expired = ""
function on_update(dt)
  ticks = ticks + 1
end
function on_entity_expired(name)
  expired = name
end
`)
	e := startEngine(t, dir)
	topics := event.NewTopics()
	sys := NewScriptSystem(e, topics)

	sys.Update(16 * time.Millisecond)
	if got := lua.LVAsNumber(global(e, "ticks")); got != 1 {
		t.Fatalf("script saw %v ticks, want 1", got)
	}

	topics.EntityExpired.Publish(event.EntityExpired{Name: "spark"})
	if got := lua.LVAsString(global(e, "expired")); got != "" {
		t.Fatalf("expiry delivered before pump: %q", got)
	}
	topics.Bus.Pump()
	if got := lua.LVAsString(global(e, "expired")); got != "spark" {
		t.Fatalf("expired = %q, want %q", got, "spark")
	}
}
