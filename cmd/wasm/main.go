//go:build js && wasm

// Command wasm exposes the sub engine to the browser via WebAssembly.
// After loading, it registers these global JavaScript functions:
//
//	subCreate(specJSON) -> handle
//	subTick(handle, keysJSON, dt) -> logJSON
//	subConfigure(handle, paramsJSON)
//	subTier(handle, delta) -> label
//	subRemove(handle)
//	runReplay(inputJSON) -> logJSON
//
// Failures are returned as {error: message} objects.
package main

import (
	"syscall/js"

	"github.com/deepwake/sub-engine/internal/bridge"
	"github.com/deepwake/sub-engine/internal/engine"
)

var registry = bridge.NewRegistry()

func main() {
	js.Global().Set("subCreate", js.FuncOf(subCreate))
	js.Global().Set("subTick", js.FuncOf(subTick))
	js.Global().Set("subConfigure", js.FuncOf(subConfigure))
	js.Global().Set("subTier", js.FuncOf(subTier))
	js.Global().Set("subRemove", js.FuncOf(subRemove))
	js.Global().Set("runReplay", js.FuncOf(runReplay))
	select {} // keep the WASM module alive until the page is closed
}

func jsError(err error) any {
	return map[string]any{"error": err.Error()}
}

func missing(name string) any {
	return map[string]any{"error": name + ": missing arguments"}
}

// notNumber returns an error value for the first argument that is not a JS number.
func notNumber(name string, args ...js.Value) any {
	for _, a := range args {
		if a.Type() != js.TypeNumber {
			return map[string]any{"error": name + ": expected a number, got " + a.Type().String()}
		}
	}
	return nil
}

func subCreate(_ js.Value, args []js.Value) any {
	spec := ""
	if len(args) > 0 && args[0].Type() == js.TypeString {
		spec = args[0].String()
	}
	h, err := registry.Create(spec)
	if err != nil {
		return jsError(err)
	}
	return int(h)
}

func subTick(_ js.Value, args []js.Value) any {
	if len(args) < 3 {
		return missing("subTick")
	}
	if e := notNumber("subTick", args[0], args[2]); e != nil {
		return e
	}
	out, err := registry.Tick(bridge.Handle(args[0].Int()), args[1].String(), args[2].Float())
	if err != nil {
		return jsError(err)
	}
	return out
}

func subConfigure(_ js.Value, args []js.Value) any {
	if len(args) < 2 {
		return missing("subConfigure")
	}
	if e := notNumber("subConfigure", args[0]); e != nil {
		return e
	}
	if err := registry.Configure(bridge.Handle(args[0].Int()), args[1].String()); err != nil {
		return jsError(err)
	}
	return nil
}

func subTier(_ js.Value, args []js.Value) any {
	if len(args) < 2 {
		return missing("subTier")
	}
	if e := notNumber("subTier", args[0], args[1]); e != nil {
		return e
	}
	label, err := registry.Tier(bridge.Handle(args[0].Int()), args[1].Int())
	if err != nil {
		return jsError(err)
	}
	return label
}

func subRemove(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return missing("subRemove")
	}
	if e := notNumber("subRemove", args[0]); e != nil {
		return e
	}
	if err := registry.Remove(bridge.Handle(args[0].Int())); err != nil {
		return jsError(err)
	}
	return nil
}

func runReplay(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return map[string]any{"error": "no input provided"}
	}

	result, err := engine.RunJSON(args[0].String())
	if err != nil {
		return jsError(err)
	}
	return result
}
