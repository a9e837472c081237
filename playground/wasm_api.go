//go:build js && wasm

package playground

import (
	"context"
	"fmt"
	"syscall/js"
)

// Check runs CheckDefinitions on its only argument.
//
// output: { error: string } | { report: string, unsafe: number }
func Check(_ js.Value, args []js.Value) any {
	if len(args) != 1 {
		return js.ValueOf(map[string]any{
			"error": fmt.Sprintf("expected 1 argument, got %d", len(args)),
		})
	}
	out := CheckDefinitions(context.Background(), args[0].String())
	if out.Error != "" {
		return js.ValueOf(map[string]any{
			"error": out.Error,
		})
	}
	return js.ValueOf(map[string]any{
		"report": out.Report,
		"unsafe": out.Unsafe,
	})
}

func explain(_ js.Value, args []js.Value) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("expected 1 argument, got %d", len(args))
	}
	return ExplainCode(args[0].String())
}

// asPromise turns a JS-API function that also returns an error into one
// returning a promise, rejected with the error if there is one
func asPromise(function func(js.Value, []js.Value) (any, error)) any {
	return js.FuncOf(func(this js.Value, args []js.Value) any {
		handler := js.FuncOf(func(_ js.Value, promiseArgs []js.Value) any {
			resolve := promiseArgs[0]
			reject := promiseArgs[1]

			go func() {
				defer func() {
					if r := recover(); r != nil {
						reject.Invoke(js.Global().Get("Error").New(fmt.Sprint(r)))
					}
				}()

				data, err := function(this, args)
				if err != nil {
					reject.Invoke(js.Global().Get("Error").New(err.Error()))
				} else {
					resolve.Invoke(js.ValueOf(data))
				}
			}()

			return nil
		})
		return js.Global().Get("Promise").New(handler)
	})
}

var Explain = asPromise(explain)
