// Package goload builds a model.Arena out of the named interfaces declared in Go packages.
//
// Embedded interfaces become parent references, with their type arguments
// mapped so that generic embeddings such as `Sink[T]` exercise substitution.
// Constraint interfaces (type sets) cannot be used as values in Go and are skipped.
package goload

import (
	"context"
	"fmt"
	"go/types"
	"log/slog"

	"github.com/cottand/dynsafe/model"
	"github.com/hashicorp/go-set/v3"
	"github.com/pkg/errors"
	"golang.org/x/tools/go/packages"
)

type loader struct {
	arena  *model.Arena
	loaded map[model.InterfaceID]bool
	logger *slog.Logger
}

// Load loads the packages matching patterns, relative to dir, and adds every
// named interface they declare, plus the interfaces those embed, to a new Arena
func Load(ctx context.Context, dir string, logger *slog.Logger, patterns ...string) (*model.Arena, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	cfg := &packages.Config{
		Mode:    packages.NeedName | packages.NeedTypes | packages.NeedImports,
		Dir:     dir,
		Context: ctx,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, errors.Wrap(err, "loading packages")
	}

	l := &loader{
		arena:  model.NewArena(),
		loaded: make(map[model.InterfaceID]bool),
		logger: logger.With("section", "goload"),
	}
	l.logger.Debug("packages loaded", "packages_count", len(pkgs))

	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			l.logger.Warn("package load error", "package", pkg.PkgPath, "error", e.Msg)
		}
		if pkg.Types == nil {
			continue
		}
		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			tn, ok := scope.Lookup(name).(*types.TypeName)
			if !ok || tn.IsAlias() {
				continue
			}
			named, ok := tn.Type().(*types.Named)
			if !ok {
				continue
			}
			if _, ok := named.Underlying().(*types.Interface); !ok {
				continue
			}
			if err := l.add(named); err != nil {
				return nil, err
			}
		}
	}
	return l.arena, nil
}

func interfaceID(named *types.Named) model.InterfaceID {
	obj := named.Origin().Obj()
	if obj.Pkg() == nil {
		return model.InterfaceID(obj.Name())
	}
	return model.InterfaceID(obj.Pkg().Path() + "." + obj.Name())
}

// add converts named (an interface) and, first, every interface it embeds
func (l *loader) add(named *types.Named) error {
	named = named.Origin()
	id := interfaceID(named)
	if l.loaded[id] {
		return nil
	}
	l.loaded[id] = true

	underlying := named.Underlying().(*types.Interface)
	if !underlying.IsMethodSet() {
		l.logger.Debug("skipping constraint interface", "interface", id)
		return nil
	}

	iface := &model.Interface{ID: id}
	tparams := named.TypeParams()
	for i := 0; i < tparams.Len(); i++ {
		iface.Generics = append(iface.Generics, l.arena.FreshGeneric(tparams.At(i).Obj().Name(), model.KindType))
	}

	// embedded interface literals have no identity to point a parent at:
	// their methods become own methods
	var literals []*types.Interface
	for i := 0; i < underlying.NumEmbeddeds(); i++ {
		var embedded *types.Named
		switch e := types.Unalias(underlying.EmbeddedType(i)).(type) {
		case *types.Named:
			embedded = e
		case *types.Interface:
			literals = append(literals, e)
			continue
		default:
			continue
		}
		if _, isIface := embedded.Underlying().(*types.Interface); !isIface {
			continue
		}
		if err := l.add(embedded); err != nil {
			return err
		}
		parentID := interfaceID(embedded)
		if _, err := l.arena.Get(parentID); err != nil {
			// the parent was skipped as a constraint interface
			continue
		}
		ref := model.ParentRef{Interface: parentID}
		targs := embedded.TypeArgs()
		for j := 0; j < targs.Len(); j++ {
			ref.Args = append(ref.Args, mapType(targs.At(j)))
		}
		iface.Parents = append(iface.Parents, ref)
	}

	own := set.New[string](underlying.NumExplicitMethods())
	for i := 0; i < underlying.NumExplicitMethods(); i++ {
		fn := underlying.ExplicitMethod(i)
		own.Insert(fn.Name())
		iface.Methods = append(iface.Methods, methodSig(fn))
	}
	for _, literal := range literals {
		// NumMethods includes whatever the literal embeds itself
		for i := 0; i < literal.NumMethods(); i++ {
			fn := literal.Method(i)
			if own.Insert(fn.Name()) {
				iface.Methods = append(iface.Methods, methodSig(fn))
			}
		}
	}

	l.logger.Debug("found interface", "interface", id, "methods", len(iface.Methods), "parents", len(iface.Parents))
	return errors.Wrapf(l.arena.Add(iface), "adding %s", id)
}

// methodSig converts a Go interface method. Go methods always have a receiver
// and cannot declare their own type parameters.
func methodSig(fn *types.Func) model.MethodSig {
	sig := fn.Type().(*types.Signature)
	m := model.MethodSig{
		Name:     fn.Name(),
		Receiver: model.ReceiverRef,
	}
	for i := 0; i < sig.Params().Len(); i++ {
		m.Params = append(m.Params, mapType(sig.Params().At(i).Type()))
	}
	switch results := sig.Results(); results.Len() {
	case 0:
	case 1:
		m.Return = mapType(results.At(0).Type())
	default:
		tuple := &model.Concrete{Name: "tuple"}
		for i := 0; i < results.Len(); i++ {
			tuple.Args = append(tuple.Args, mapType(results.At(i).Type()))
		}
		m.Return = tuple
	}
	return m
}

func qualifier(pkg *types.Package) string {
	return pkg.Path()
}

// mapType converts a Go type into a model.TypeRef.
// Type parameters become generic references by their index in the declaring interface.
func mapType(t types.Type) model.TypeRef {
	switch t := types.Unalias(t).(type) {
	case *types.TypeParam:
		return model.GenericRef{Index: t.Index(), Name: t.Obj().Name()}
	case *types.Named:
		c := &model.Concrete{Name: qualifiedName(t.Origin().Obj())}
		targs := t.TypeArgs()
		for i := 0; i < targs.Len(); i++ {
			c.Args = append(c.Args, mapType(targs.At(i)))
		}
		return c
	case *types.Basic:
		return model.Named(t.Name())
	case *types.Pointer:
		return model.Named("*", mapType(t.Elem()))
	case *types.Slice:
		return model.Named("[]", mapType(t.Elem()))
	case *types.Array:
		return model.Named(fmt.Sprintf("[%d]", t.Len()), mapType(t.Elem()))
	case *types.Map:
		return model.Named("map", mapType(t.Key()), mapType(t.Elem()))
	case *types.Chan:
		return model.Named("chan", mapType(t.Elem()))
	case *types.Signature:
		fn := &model.Concrete{Name: "func"}
		for i := 0; i < t.Params().Len(); i++ {
			fn.Args = append(fn.Args, mapType(t.Params().At(i).Type()))
		}
		for i := 0; i < t.Results().Len(); i++ {
			fn.Args = append(fn.Args, mapType(t.Results().At(i).Type()))
		}
		return fn
	default:
		return model.Named(types.TypeString(t, qualifier))
	}
}

func qualifiedName(obj *types.TypeName) string {
	if obj.Pkg() == nil {
		return obj.Name()
	}
	return obj.Pkg().Path() + "." + obj.Name()
}
