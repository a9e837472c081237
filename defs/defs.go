// Package defs loads interface definitions from YAML documents into a model.Arena.
//
// A document looks like:
//
//	interfaces:
//	  - name: Iterator
//	    generics: [Item]
//	    parents:
//	      - name: Base
//	        args: [Item, Self]
//	    consts:
//	      - name: LIMIT
//	        type: usize
//	    methods:
//	      - name: next
//	        receiver: mut
//	        returns: {name: Option, args: [Item]}
//	      - name: map
//	        receiver: value
//	        generics: [B, "'a"]
//	        params: [B]
//	        returns: Self
//	        where_self_sized: true
//
// Types are written as described on TypeDef.
package defs

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cottand/dynsafe/internal/log"
	"github.com/cottand/dynsafe/model"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var logger = log.DefaultLogger.With("section", "defs")

type File struct {
	Interfaces []InterfaceDef `yaml:"interfaces"`
}

type InterfaceDef struct {
	Name string `yaml:"name"`
	// Generics are declared as `T`, `'a` or `const N`
	Generics []string    `yaml:"generics,omitempty"`
	Sized    bool        `yaml:"sized,omitempty"`
	Parents  []ParentDef `yaml:"parents,omitempty"`
	Consts   []ConstDef  `yaml:"consts,omitempty"`
	Methods  []MethodDef `yaml:"methods,omitempty"`
}

type ParentDef struct {
	Name string    `yaml:"name"`
	Args []TypeDef `yaml:"args,omitempty"`
}

type ConstDef struct {
	Name string  `yaml:"name"`
	Type TypeDef `yaml:"type"`
}

type MethodDef struct {
	Name string `yaml:"name"`
	// Receiver is one of none, ref, mut or value. It defaults to ref.
	Receiver       string    `yaml:"receiver,omitempty"`
	Generics       []string  `yaml:"generics,omitempty"`
	Params         []TypeDef `yaml:"params,omitempty"`
	Returns        TypeDef   `yaml:"returns,omitempty"`
	WhereSelfSized bool      `yaml:"where_self_sized,omitempty"`
}

// Load reads and parses the definitions at path
func Load(path string) (*model.Arena, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "defs: resolve %s", path)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, errors.Wrapf(err, "defs: read %s", abs)
	}
	return Parse(data, abs)
}

// Parse builds an Arena from YAML data. name is only used in error messages.
//
// The returned Arena has not been validated: see model.Arena.Validate
func Parse(data []byte, name string) (*model.Arena, error) {
	var file File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrapf(err, "defs: parse %s", name)
	}
	arena := model.NewArena()
	for i, def := range file.Interfaces {
		iface, err := def.toInterface(arena)
		if err != nil {
			return nil, errors.Wrapf(err, "defs: %s: interface #%d", name, i)
		}
		if err := arena.Add(iface); err != nil {
			return nil, errors.Wrapf(err, "defs: %s", name)
		}
	}
	logger.Debug("loaded definitions", "file", name, "interfaces", arena.Len())
	return arena, nil
}

func (d InterfaceDef) toInterface(arena *model.Arena) (*model.Interface, error) {
	if d.Name == "" {
		return nil, errors.New("missing name")
	}
	iface := &model.Interface{
		ID:                model.InterfaceID(d.Name),
		RequiresSelfSized: d.Sized,
	}
	for _, g := range d.Generics {
		param, err := parseGeneric(arena, g)
		if err != nil {
			return nil, errors.Wrapf(err, "generics of %s", d.Name)
		}
		iface.Generics = append(iface.Generics, param)
	}
	ifaceScope := scope{ifaceGenerics: iface.Generics}

	for _, p := range d.Parents {
		ref := model.ParentRef{Interface: model.InterfaceID(p.Name)}
		for _, arg := range p.Args {
			t, err := ifaceScope.resolveArg(arg)
			if err != nil {
				return nil, errors.Wrapf(err, "parent %s of %s", p.Name, d.Name)
			}
			ref.Args = append(ref.Args, t)
		}
		iface.Parents = append(iface.Parents, ref)
	}
	for _, c := range d.Consts {
		t, err := ifaceScope.resolve(c.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "constant %s of %s", c.Name, d.Name)
		}
		iface.Consts = append(iface.Consts, model.AssocConst{Name: c.Name, Type: t})
	}
	for _, m := range d.Methods {
		sig, err := m.toMethod(arena, iface.Generics)
		if err != nil {
			return nil, errors.Wrapf(err, "method %s of %s", m.Name, d.Name)
		}
		iface.Methods = append(iface.Methods, sig)
	}
	return iface, nil
}

func (d MethodDef) toMethod(arena *model.Arena, ifaceGenerics []model.GenericParam) (model.MethodSig, error) {
	sig := model.MethodSig{
		Name:                 d.Name,
		ExcludedBySizedBound: d.WhereSelfSized,
	}
	receiver, err := parseReceiver(d.Receiver)
	if err != nil {
		return model.MethodSig{}, err
	}
	sig.Receiver = receiver
	for _, g := range d.Generics {
		param, err := parseGeneric(arena, g)
		if err != nil {
			return model.MethodSig{}, err
		}
		sig.Generics = append(sig.Generics, param)
	}
	s := scope{ifaceGenerics: ifaceGenerics, methodGenerics: sig.Generics}
	for _, p := range d.Params {
		t, err := s.resolveArg(p)
		if err != nil {
			return model.MethodSig{}, err
		}
		sig.Params = append(sig.Params, t)
	}
	sig.Return, err = s.resolve(d.Returns)
	if err != nil {
		return model.MethodSig{}, err
	}
	return sig, nil
}

func parseReceiver(s string) (model.Receiver, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ref", "&self":
		return model.ReceiverRef, nil
	case "mut", "&mut self":
		return model.ReceiverMutRef, nil
	case "value", "self":
		return model.ReceiverValue, nil
	case "none", "static":
		return model.ReceiverNone, nil
	default:
		return 0, errors.Errorf("unknown receiver %q, expected one of none, ref, mut or value", s)
	}
}
