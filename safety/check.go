// Package safety decides whether an interface can be used behind a dynamic
// handle, where the implementing type is erased and methods are called
// through a dispatch table.
package safety

import (
	"context"
	"log/slog"

	"github.com/cottand/dynsafe/cache"
	"github.com/cottand/dynsafe/model"
	"github.com/cottand/dynsafe/violation"
	"github.com/hashicorp/go-set/v3"
	"github.com/pkg/errors"
)

// Checker evaluates the safety rules against interfaces of a single model.Arena.
// It is safe for concurrent use.
type Checker struct {
	arena     *model.Arena
	effective *cache.Cache[model.InterfaceID, *Effective]
	logger    *slog.Logger
}

func NewChecker(arena *model.Arena, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Checker{
		arena:     arena,
		effective: cache.New[model.InterfaceID, *Effective](logger),
		logger:    logger.With("section", "safety"),
	}
}

// Close releases anyone waiting on an effective set computation
func (c *Checker) Close() {
	c.effective.Close()
}

// CheckID looks id up in the arena and checks it
func (c *Checker) CheckID(ctx context.Context, id model.InterfaceID) (Verdict, error) {
	iface, err := c.arena.Get(id)
	if err != nil {
		return Verdict{}, err
	}
	return c.Check(ctx, iface)
}

// Check evaluates every rule against iface and its ancestors.
//
// A non-nil error is a precondition failure (malformed input), never a safety
// violation: those are reported in the returned Verdict, all of them.
func (c *Checker) Check(ctx context.Context, iface *model.Interface) (Verdict, error) {
	if err := c.arena.ValidateAncestry(iface.ID); err != nil {
		return Verdict{}, errors.Wrapf(err, "checking %s", iface.ID)
	}
	eff, err := c.Effective(ctx, iface)
	if err != nil {
		return Verdict{}, errors.Wrapf(err, "checking %s", iface.ID)
	}

	verdict := Verdict{Interface: iface.ID}
	var vs *violation.Violations

	vs = vs.With(c.sizedBoundViolations(iface, eff)...)
	for _, k := range eff.Consts {
		vs = vs.With(violation.AssociatedConstant{Name: k.Name, Interface: k.Origin})
	}
	for _, ref := range eff.Parents {
		if selfInArgs(ref) {
			vs = vs.With(violation.SelfInSupertraitArg{Parent: ref.Interface, Ref: ref})
		}
	}

	var dispatchable []Method
	for _, m := range eff.Methods {
		if m.Declared.ExcludedBySizedBound {
			verdict.Excluded = append(verdict.Excluded, m)
			continue
		}
		methodViolations := classify(m)
		if len(methodViolations) == 0 {
			dispatchable = append(dispatchable, m)
			continue
		}
		vs = vs.With(methodViolations...)
	}

	verdict.Violations = vs
	if verdict.Safe() {
		verdict.Dispatchable = dispatchable
		if verdict.Dispatchable == nil {
			verdict.Dispatchable = []Method{}
		}
	}
	c.logger.Debug("checked interface",
		"interface", iface.ID,
		"safe", verdict.Safe(),
		"dispatchable", len(verdict.Dispatchable),
		"excluded", len(verdict.Excluded),
		"violations", vs,
	)
	return verdict, nil
}

// sizedBoundViolations reports iface's own sized bound and the ones it inherits
func (c *Checker) sizedBoundViolations(iface *model.Interface, eff *Effective) []violation.Violation {
	var vs []violation.Violation
	if iface.RequiresSelfSized {
		vs = append(vs, violation.SelfSizedBound{Interface: iface.ID})
	}
	reported := set.From([]model.InterfaceID{iface.ID})
	for _, ref := range eff.Parents {
		if !reported.Insert(ref.Interface) {
			continue
		}
		parent, err := c.arena.Get(ref.Interface)
		if err != nil {
			// effective sets only hold parents that resolved
			continue
		}
		if parent.RequiresSelfSized {
			vs = append(vs, violation.SelfSizedBound{Interface: parent.ID})
		}
	}
	return vs
}

// selfInArgs reports whether Self appears in any argument of ref.
//
// This over-approximates: an argument position that only ever instantiates to
// the implementor would be harmless, but that cannot be told apart here.
func selfInArgs(ref model.ParentRef) bool {
	for _, arg := range ref.Args {
		if model.ContainsSelf(arg) {
			return true
		}
	}
	return false
}

// classify returns the reasons m cannot be placed in a dispatch table.
// Each rule is evaluated independently.
//
// Self is looked for in the declared signature: a Self that only appears after
// substitution came in through a parent argument, and is reported against that parent.
func classify(m Method) []violation.Violation {
	var vs []violation.Violation
	decl := m.Declared
	if decl.Receiver == model.ReceiverNone {
		vs = append(vs, violation.NoReceiver{Method: decl.Name, Interface: m.Origin})
	}
	var generics []model.GenericParam
	for _, g := range decl.Generics {
		if g.Kind != model.KindLifetime {
			generics = append(generics, g)
		}
	}
	if len(generics) > 0 {
		vs = append(vs, violation.GenericMethod{Method: decl.Name, Interface: m.Origin, Generics: generics})
	}
	for i, p := range decl.Params {
		if model.ContainsSelf(p) {
			vs = append(vs, violation.SelfInSignature{Method: decl.Name, Interface: m.Origin, Position: violation.ParamAt(i)})
		}
	}
	if model.ContainsSelf(decl.Return) {
		vs = append(vs, violation.SelfInSignature{Method: decl.Name, Interface: m.Origin, Position: violation.Return})
	}
	return vs
}
