// Package playground checks interface definitions submitted as text.
// It backs the browser build, see wasm_api.go.
package playground

import (
	"context"
	"fmt"
	"strings"

	"github.com/cottand/dynsafe/defs"
	"github.com/cottand/dynsafe/diag"
	"github.com/cottand/dynsafe/dynsafe"
	"github.com/cottand/dynsafe/internal/log"
	"github.com/cottand/dynsafe/violation"
)

var logger = log.DefaultLogger.With("section", "playground")

// Output is either an Error or a Report covering every interface of the program
type Output struct {
	Error  string
	Report string
	// Unsafe counts the interfaces that cannot be used as dynamic handles
	Unsafe int
}

// CheckDefinitions parses program as YAML definitions and checks all of them
func CheckDefinitions(ctx context.Context, program string) (out Output) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("checker panicked", "panic", r)
			out = Output{Error: "the checker panicked: " + fmt.Sprint(r)}
		}
	}()

	arena, err := defs.Parse([]byte(program), "program.yaml")
	if err != nil {
		return Output{Error: fmt.Sprintf("the definitions could not be read:\n\n%s", err)}
	}
	session, err := dynsafe.NewSession(arena, dynsafe.Options{Logger: logger})
	if err != nil {
		return Output{Error: fmt.Sprintf("the definitions are malformed:\n\n%s", err)}
	}
	defer session.Close()

	verdicts, err := session.CheckAll(ctx)
	if err != nil {
		return Output{Error: fmt.Sprintf("the checker encountered a failure:\n\n%s", err)}
	}
	sb := &strings.Builder{}
	unsafe, err := diag.WriteVerdicts(sb, arena, verdicts, false, true)
	if err != nil {
		return Output{Error: fmt.Sprintf("the checker encountered a failure:\n%s", err)}
	}
	return Output{Report: sb.String(), Unsafe: unsafe}
}

// ExplainCode returns the explanation of a violation code such as E003
func ExplainCode(code string) (string, error) {
	c, err := violation.ParseCode(code)
	if err != nil {
		return "", err
	}
	text, _ := diag.Explain(c)
	return fmt.Sprintf("%s: %s\n\n%s", c, diag.Label(c), text), nil
}
