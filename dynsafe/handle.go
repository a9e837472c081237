package dynsafe

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/cottand/dynsafe/model"
	"github.com/cottand/dynsafe/safety"
	"github.com/cottand/dynsafe/violation"
)

// UnsafeError is returned when a handle is requested for an interface that
// cannot be used behind one
type UnsafeError struct {
	Interface  model.InterfaceID
	Violations *violation.Violations
}

func (e *UnsafeError) Error() string {
	msgs := make([]string, 0, e.Violations.Len())
	for _, v := range e.Violations.All() {
		msgs = append(msgs, violation.FormatWithCode(v))
	}
	return fmt.Sprintf("interface '%s' cannot be used as a dynamic handle:\n  %s", e.Interface, strings.Join(msgs, "\n  "))
}

// Handle describes the dispatch table of a dynamic handle for a safe interface.
// Slots follow the order of the interface's effective method set.
type Handle struct {
	Interface model.InterfaceID
	Slots     []safety.Method
}

// Slot returns the dispatch table index of method name.
// Methods excluded by a sized bound, or unknown, have no slot. A name shared by
// several slots, as when a parent is inherited with different arguments, is
// ambiguous and has no slot either: use SlotOf.
func (h *Handle) Slot(name string) (int, bool) {
	found := -1
	for i, m := range h.Slots {
		if m.Sig.Name != name {
			continue
		}
		if found >= 0 {
			return -1, false
		}
		found = i
	}
	return found, found >= 0
}

// SlotOf returns the dispatch table index of m, matched by origin and
// signature as seen from the handle's interface
func (h *Handle) SlotOf(m safety.Method) (int, bool) {
	hash := m.Sig.Hash()
	i := slices.IndexFunc(h.Slots, func(slot safety.Method) bool {
		return slot.Origin == m.Origin && slot.Sig.Hash() == hash
	})
	return i, i >= 0
}

// Handle returns the dispatch layout for id, or an *UnsafeError listing every violation
func (s *Session) Handle(ctx context.Context, id model.InterfaceID) (*Handle, error) {
	v, err := s.Check(ctx, id)
	if err != nil {
		return nil, err
	}
	if !v.Safe() {
		return nil, &UnsafeError{Interface: id, Violations: v.Violations}
	}
	return &Handle{Interface: id, Slots: slices.Clone(v.Dispatchable)}, nil
}
