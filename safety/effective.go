package safety

import (
	"context"
	"fmt"

	"github.com/cottand/dynsafe/model"
	"github.com/cottand/dynsafe/subst"
	"github.com/hashicorp/go-set/v3"
	"github.com/pkg/errors"
)

// Method is a member of an effective method set
type Method struct {
	// Sig is the signature expressed in terms of the interface whose effective set contains it
	Sig model.MethodSig
	// Declared is the signature exactly as Origin declares it
	Declared model.MethodSig
	Origin   model.InterfaceID
}

func (m Method) String() string {
	return fmt.Sprintf("%s::%s", m.Origin, m.Sig)
}

func (m Method) key() string {
	return fmt.Sprintf("%s/%x", m.Origin, m.Sig.Hash())
}

type Const struct {
	model.AssocConst
	Origin model.InterfaceID
}

func (c Const) key() string {
	return fmt.Sprintf("%s/%s/%x", c.Origin, c.Name, hashType(c.Type))
}

// Effective is the union of an interface's own and inherited members.
// Inherited members are substituted into the interface's own terms.
type Effective struct {
	Interface model.InterfaceID
	Methods   []Method
	Consts    []Const
	// Parents holds every transitive parent reference, composed so that
	// its arguments are expressed in terms of Interface
	Parents []model.ParentRef
}

// effectiveBuilder deduplicates members reached through more than one path (diamonds)
type effectiveBuilder struct {
	eff         *Effective
	seenMethods *set.Set[string]
	seenConsts  *set.Set[string]
	seenParents *set.Set[uint64]
}

func newEffectiveBuilder(id model.InterfaceID) *effectiveBuilder {
	return &effectiveBuilder{
		eff:         &Effective{Interface: id},
		seenMethods: set.New[string](0),
		seenConsts:  set.New[string](0),
		seenParents: set.New[uint64](0),
	}
}

func (b *effectiveBuilder) addMethod(m Method) {
	if b.seenMethods.Insert(m.key()) {
		b.eff.Methods = append(b.eff.Methods, m)
	}
}

func (b *effectiveBuilder) addConst(c Const) {
	if b.seenConsts.Insert(c.key()) {
		b.eff.Consts = append(b.eff.Consts, c)
	}
}

func (b *effectiveBuilder) addParent(ref model.ParentRef) {
	if b.seenParents.Insert(ref.Hash()) {
		b.eff.Parents = append(b.eff.Parents, ref)
	}
}

// Effective returns the effective member set of iface, memoized per interface identity.
//
// The parent graph of iface must be acyclic: see model.Arena.ValidateAncestry
func (c *Checker) Effective(ctx context.Context, iface *model.Interface) (*Effective, error) {
	return c.effective.GetOrCompute(ctx, iface.ID, func(ctx context.Context) (*Effective, error) {
		return c.computeEffective(ctx, iface)
	})
}

func (c *Checker) computeEffective(ctx context.Context, iface *model.Interface) (*Effective, error) {
	b := newEffectiveBuilder(iface.ID)
	for _, m := range iface.Methods {
		b.addMethod(Method{Sig: m, Declared: m, Origin: iface.ID})
	}
	for _, k := range iface.Consts {
		b.addConst(Const{AssocConst: k, Origin: iface.ID})
	}

	for _, ref := range iface.Parents {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		parent, err := c.arena.Get(ref.Interface)
		if err != nil {
			return nil, errors.Wrapf(err, "parent of %s", iface.ID)
		}
		if len(ref.Args) != len(parent.Generics) {
			return nil, errors.Wrapf(model.ErrArityMismatch, "%s references %s", iface.ID, ref)
		}
		parentEff, err := c.Effective(ctx, parent)
		if err != nil {
			return nil, err
		}
		b.addParent(ref)
		for _, inherited := range parentEff.Parents {
			composed, err := subst.Parent(inherited, ref.Args)
			if err != nil {
				return nil, errors.Wrapf(err, "inheriting through %s", ref)
			}
			b.addParent(composed)
		}
		for _, m := range parentEff.Methods {
			sig, err := subst.Method(m.Sig, ref.Args)
			if err != nil {
				return nil, errors.Wrapf(err, "inheriting through %s", ref)
			}
			b.addMethod(Method{Sig: sig, Declared: m.Declared, Origin: m.Origin})
		}
		for _, k := range parentEff.Consts {
			substituted, err := subst.Const(k.AssocConst, ref.Args)
			if err != nil {
				return nil, errors.Wrapf(err, "inheriting through %s", ref)
			}
			b.addConst(Const{AssocConst: substituted, Origin: k.Origin})
		}
	}
	c.logger.Debug("computed effective set",
		"interface", iface.ID,
		"methods", len(b.eff.Methods),
		"consts", len(b.eff.Consts),
		"parents", len(b.eff.Parents),
	)
	return b.eff, nil
}

func hashType(t model.TypeRef) uint64 {
	if t == nil {
		return 0
	}
	return t.Hash()
}
