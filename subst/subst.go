// Package subst rewrites signatures inherited from a parent interface in terms
// of the generic arguments supplied at the reference site.
//
// SelfType is never substituted: it denotes whichever concrete type ends up
// implementing the child interface, which is also the implementor of every ancestor.
package subst

import (
	"github.com/cottand/dynsafe/model"
	"github.com/pkg/errors"
)

// Substitute returns parent's own methods (not its ancestors') with every
// model.GenericRef replaced by the corresponding element of args.
//
// len(args) must equal len(parent.Generics), otherwise model.ErrArityMismatch is returned.
func Substitute(parent *model.Interface, args []model.TypeRef) ([]model.MethodSig, error) {
	if len(args) != len(parent.Generics) {
		return nil, errors.Wrapf(model.ErrArityMismatch, "substituting %s: got %d arguments for %d generic parameters",
			parent.ID, len(args), len(parent.Generics))
	}
	return Methods(parent.Methods, args)
}

// Methods substitutes args into every method of ms
func Methods(ms []model.MethodSig, args []model.TypeRef) ([]model.MethodSig, error) {
	substituted := make([]model.MethodSig, len(ms))
	for i, m := range ms {
		newM, err := Method(m, args)
		if err != nil {
			return nil, err
		}
		substituted[i] = newM
	}
	return substituted, nil
}

// Method substitutes args into the parameter and return types of m.
// Receiver, generics and the sized-bound flag are carried over unchanged.
func Method(m model.MethodSig, args []model.TypeRef) (model.MethodSig, error) {
	params := make([]model.TypeRef, len(m.Params))
	for i, p := range m.Params {
		t, err := Type(p, args)
		if err != nil {
			return model.MethodSig{}, errors.Wrapf(err, "parameter %d of %s", i, m.Name)
		}
		params[i] = t
	}
	ret, err := Type(m.Return, args)
	if err != nil {
		return model.MethodSig{}, errors.Wrapf(err, "return type of %s", m.Name)
	}
	m.Params = params
	m.Return = ret
	return m, nil
}

func Const(c model.AssocConst, args []model.TypeRef) (model.AssocConst, error) {
	t, err := Type(c.Type, args)
	if err != nil {
		return model.AssocConst{}, errors.Wrapf(err, "constant %s", c.Name)
	}
	c.Type = t
	return c, nil
}

// Parent rewrites a reference made by an ancestor so that it is expressed in
// terms of args, the arguments the child supplied to that ancestor.
func Parent(ref model.ParentRef, args []model.TypeRef) (model.ParentRef, error) {
	newArgs := make([]model.TypeRef, len(ref.Args))
	for i, arg := range ref.Args {
		t, err := Type(arg, args)
		if err != nil {
			return model.ParentRef{}, errors.Wrapf(err, "argument %d of parent %s", i, ref.Interface)
		}
		newArgs[i] = t
	}
	return model.ParentRef{Interface: ref.Interface, Args: newArgs}, nil
}

// Type replaces every model.GenericRef inside t with args[Index].
// Types without generic references are returned as they are.
func Type(t model.TypeRef, args []model.TypeRef) (model.TypeRef, error) {
	switch typ := t.(type) {
	case nil:
		return nil, nil
	case model.SelfType, model.MethodGenericRef:
		return typ, nil
	case model.GenericRef:
		if typ.Index < 0 || typ.Index >= len(args) {
			return nil, errors.Wrapf(model.ErrGenericIndex, "%s has index %d but %d arguments were supplied", typ, typ.Index, len(args))
		}
		return args[typ.Index], nil
	case *model.Concrete:
		if len(typ.Args) == 0 {
			return typ, nil
		}
		mappedArgs := make([]model.TypeRef, len(typ.Args))
		for i, arg := range typ.Args {
			mapped, err := Type(arg, args)
			if err != nil {
				return nil, err
			}
			mappedArgs[i] = mapped
		}
		return &model.Concrete{Name: typ.Name, Args: mappedArgs}, nil
	default:
		panic(errors.Errorf("unreachable: unknown TypeRef %T", t))
	}
}
