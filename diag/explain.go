package diag

import (
	"strings"

	"github.com/cottand/dynsafe/violation"
)

var labels = map[violation.Code]string{
	violation.SelfSizedBoundCode:      "sized self bound",
	violation.AssociatedConstantCode:  "associated constant",
	violation.SelfInSupertraitArgCode: "Self in parent arguments",
	violation.NoReceiverCode:          "missing receiver",
	violation.GenericMethodCode:       "generic method",
	violation.SelfInSignatureCode:     "Self in signature",
}

var explanations = map[violation.Code]string{
	violation.SelfSizedBoundCode: `
An interface that requires its implementor to be statically sized can never
be implemented by an erased type, because a dynamic handle hides the size of
the value it points to. The bound is inherited by every child interface.

Remove the bound from the interface, and instead mark the individual methods
that need a sized implementor with 'where Self: Sized'.`,

	violation.AssociatedConstantCode: `
A dynamic handle only carries a dispatch table of methods. Associated
constants have no slot in it, so reading one through the handle is
impossible. Unlike methods, constants cannot be excluded individually.

Replace the constant with a method that takes '&self' and returns the value.`,

	violation.SelfInSupertraitArgCode: `
The interface passes 'Self' as a type argument to one of its parents. Once
the implementor is erased, the parent's signatures would mention a type that
no longer exists. It cannot be proven that the argument always denotes the
implementor itself, so any occurrence is rejected.

There is no mechanical fix: the parent reference has to be restructured.`,

	violation.NoReceiverCode: `
A method without a 'self' receiver cannot be called through a handle,
because there is no value whose dispatch table could be consulted.

Add 'where Self: Sized' to the method to keep it callable on concrete types
only, or give it a receiver.`,

	violation.GenericMethodCode: `
A generic method needs one implementation per instantiation of its type or
const parameters, and a dispatch table has a fixed set of slots. Lifetime
parameters are fine.

Add 'where Self: Sized' to the method to keep it callable on concrete types only.`,

	violation.SelfInSignatureCode: `
A method mentioning 'Self' in its parameters or return type cannot be called
through a handle, as the concrete type 'Self' stands for is erased. The
receiver itself is fine.

Add 'where Self: Sized' to the method to keep it callable on concrete types only.`,
}

// Label returns the short label of code
func Label(code violation.Code) string {
	if l, ok := labels[code]; ok {
		return l
	}
	return "unknown violation"
}

// Explain returns the long form explanation of code, and false if code is unknown
func Explain(code violation.Code) (string, bool) {
	text, ok := explanations[code]
	return strings.TrimSpace(text), ok
}

// Codes lists every known violation code
func Codes() []violation.Code {
	return []violation.Code{
		violation.SelfSizedBoundCode,
		violation.AssociatedConstantCode,
		violation.SelfInSupertraitArgCode,
		violation.NoReceiverCode,
		violation.GenericMethodCode,
		violation.SelfInSignatureCode,
	}
}
