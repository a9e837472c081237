//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/cottand/dynsafe/playground"
)

func main() {
	js.Global().Set("CheckDefinitions", js.FuncOf(playground.Check))
	js.Global().Set("ExplainCode", playground.Explain)

	// wait indefinitely so that Go does not terminate execution
	// and the functions remain available
	<-make(chan struct{})
}
