package safety

import (
	"github.com/cottand/dynsafe/model"
	"github.com/cottand/dynsafe/violation"
)

// Verdict is the outcome of checking one interface.
//
// It is either Safe, with the methods that make up the dispatch table,
// or Unsafe, with every violation found.
type Verdict struct {
	Interface model.InterfaceID
	// Dispatchable is only set for a Safe verdict. It may be empty.
	Dispatchable []Method
	// Excluded holds the methods left out of the dispatch table by their sized bound.
	// They remain callable on concrete types.
	Excluded   []Method
	Violations *violation.Violations
}

func (v Verdict) Safe() bool {
	return !v.Violations.HasViolation()
}

// DispatchableNames returns the names of Dispatchable, in dispatch table order
func (v Verdict) DispatchableNames() []string {
	names := make([]string, len(v.Dispatchable))
	for i, m := range v.Dispatchable {
		names[i] = m.Sig.Name
	}
	return names
}
