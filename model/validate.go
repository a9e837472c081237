package model

import (
	"github.com/benbjohnson/immutable"
	"github.com/cottand/dynsafe/util"
	"github.com/pkg/errors"
)

var emptySetInterfaceID = immutable.NewSet[InterfaceID](immutable.NewHasher(InterfaceID("")))

// Validate checks the preconditions analysis relies on, for every interface in a:
// parents exist, parent arity matches, generic indices are in range and
// the parent graph is acyclic.
//
// It returns the first failure found.
func (a *Arena) Validate() error {
	done := util.NewEmptySet[InterfaceID]()
	for iface := range a.All() {
		if err := a.checkCycle(iface.ID, emptySetInterfaceID, done); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAncestry runs the checks of Validate on id and its ancestors only
func (a *Arena) ValidateAncestry(id InterfaceID) error {
	return a.checkCycle(id, emptySetInterfaceID, util.NewEmptySet[InterfaceID]())
}

// ValidateInterface checks iface's own declarations, without following its parents
func (a *Arena) ValidateInterface(iface *Interface) error {
	for _, ref := range iface.Parents {
		parent, err := a.Get(ref.Interface)
		if err != nil {
			return errors.Wrapf(err, "parent of %s", iface.ID)
		}
		if len(ref.Args) != len(parent.Generics) {
			return errors.Wrapf(ErrArityMismatch, "%s references %s with %d arguments, but it declares %d generic parameters",
				iface.ID, parent.ID, len(ref.Args), len(parent.Generics))
		}
		for _, arg := range ref.Args {
			if err := checkIndices(arg, len(iface.Generics), 0); err != nil {
				return errors.Wrapf(err, "argument to parent %s of %s", parent.ID, iface.ID)
			}
		}
	}
	for _, m := range iface.Methods {
		for _, p := range m.Params {
			if err := checkIndices(p, len(iface.Generics), len(m.Generics)); err != nil {
				return errors.Wrapf(err, "parameter of %s.%s", iface.ID, m.Name)
			}
		}
		if err := checkIndices(m.Return, len(iface.Generics), len(m.Generics)); err != nil {
			return errors.Wrapf(err, "return type of %s.%s", iface.ID, m.Name)
		}
	}
	for _, c := range iface.Consts {
		if err := checkIndices(c.Type, len(iface.Generics), 0); err != nil {
			return errors.Wrapf(err, "constant %s.%s", iface.ID, c.Name)
		}
	}
	return nil
}

func checkIndices(t TypeRef, ifaceGenerics, methodGenerics int) error {
	var err error
	Walk(t, func(t TypeRef) bool {
		switch t := t.(type) {
		case GenericRef:
			if t.Index < 0 || t.Index >= ifaceGenerics {
				err = errors.Wrapf(ErrGenericIndex, "%s has index %d, but only %d generic parameters are declared", t, t.Index, ifaceGenerics)
			}
		case MethodGenericRef:
			if t.Index < 0 || t.Index >= methodGenerics {
				err = errors.Wrapf(ErrGenericIndex, "%s has method index %d, but only %d method generic parameters are declared", t, t.Index, methodGenerics)
			}
		}
		return err == nil
	})
	return err
}

// checkCycle returns an error when id is reachable from itself through parent references,
// or when id or any of its ancestors fails ValidateInterface.
// Interfaces in done have already been checked.
func (a *Arena) checkCycle(id InterfaceID, traversed immutable.Set[InterfaceID], done util.MSet[InterfaceID]) error {
	if traversed.Has(id) {
		return errors.Wrapf(ErrCyclicParents, "%s is its own ancestor", id)
	}
	if done.Contains(id) {
		return nil
	}
	iface, err := a.Get(id)
	if err != nil {
		return err
	}
	if err := a.ValidateInterface(iface); err != nil {
		return err
	}
	withThis := traversed.Add(id)
	for _, ref := range iface.Parents {
		if err := a.checkCycle(ref.Interface, withThis, done); err != nil {
			return err
		}
	}
	done.Add(id)
	return nil
}
