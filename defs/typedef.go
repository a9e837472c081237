package defs

import (
	"fmt"
	"strings"

	"github.com/cottand/dynsafe/model"
	"gopkg.in/yaml.v3"
)

// TypeDef is a type as written in a definitions file.
//
// A scalar names a type that takes no arguments: `u8`, `Self`, or a generic
// parameter in scope. `()`, null or an omitted type is the unit type.
// A mapping applies a name to arguments, or takes a reference:
//
//	{name: Vec, args: [T]}
//	{ref: Self}
//	{mut: {name: Vec, args: [u8]}}
type TypeDef struct {
	Name string
	Args []TypeDef
	// Ref is the referenced type when the TypeDef is a reference
	Ref *TypeDef
	Mut bool

	line int
}

// IsUnit reports whether d is the unit type
func (d TypeDef) IsUnit() bool {
	return d.Name == "" && d.Ref == nil
}

func (d *TypeDef) UnmarshalYAML(value *yaml.Node) error {
	*d = TypeDef{line: value.Line}
	switch value.Kind {
	case 0:
		return nil
	case yaml.AliasNode:
		return d.UnmarshalYAML(value.Alias)
	case yaml.ScalarNode:
		name := strings.TrimSpace(value.Value)
		if value.Tag == "!!null" || name == "" || name == "()" {
			return nil
		}
		if strings.ContainsAny(name, "<>,&() \t") {
			return fmt.Errorf("line %d: type %q must be written as a mapping, like {name: Vec, args: [u8]} or {ref: T}", value.Line, name)
		}
		d.Name = name
		return nil
	case yaml.MappingNode:
		return d.unmarshalMapping(value)
	default:
		return fmt.Errorf("line %d: expected a type name or mapping but found %s", value.Line, value.ShortTag())
	}
}

func (d *TypeDef) unmarshalMapping(value *yaml.Node) error {
	for i := 0; i < len(value.Content); i += 2 {
		keyNode, valNode := value.Content[i], value.Content[i+1]
		var key string
		if err := keyNode.Decode(&key); err != nil {
			return err
		}
		switch key {
		case "name":
			if err := valNode.Decode(&d.Name); err != nil {
				return err
			}
			d.Name = strings.TrimSpace(d.Name)
		case "args":
			if err := valNode.Decode(&d.Args); err != nil {
				return err
			}
		case "ref", "mut":
			if d.Ref != nil {
				return fmt.Errorf("line %d: only one of ref and mut may be set", value.Line)
			}
			d.Ref = &TypeDef{}
			if err := valNode.Decode(d.Ref); err != nil {
				return err
			}
			d.Mut = key == "mut"
		default:
			return fmt.Errorf("line %d: unknown type field %q, expected name, args, ref or mut", keyNode.Line, key)
		}
	}
	switch {
	case d.Ref != nil && (d.Name != "" || len(d.Args) > 0):
		return fmt.Errorf("line %d: a reference cannot also have a name or args", value.Line)
	case d.Ref == nil && d.Name == "":
		return fmt.Errorf("line %d: type mapping without a name", value.Line)
	}
	return nil
}

// scope resolves names to generic parameters: method generics shadow
// interface generics, which shadow concrete type names
type scope struct {
	ifaceGenerics  []model.GenericParam
	methodGenerics []model.GenericParam
}

func (s scope) lookup(name string) model.TypeRef {
	if name == "Self" {
		return model.Self
	}
	for i, g := range s.methodGenerics {
		if g.Name == name && g.Kind != model.KindLifetime {
			return model.MethodGenericRef{Index: i, Name: name}
		}
	}
	for i, g := range s.ifaceGenerics {
		if g.Name == name && g.Kind != model.KindLifetime {
			return model.GenericRef{Index: i, Name: name}
		}
	}
	return nil
}

// resolve converts d into a model.TypeRef, nil being the unit type
func (s scope) resolve(d TypeDef) (model.TypeRef, error) {
	if d.Ref != nil {
		inner, err := s.resolveArg(*d.Ref)
		if err != nil {
			return nil, err
		}
		if d.Mut {
			return model.MutRef(inner), nil
		}
		return model.Ref(inner), nil
	}
	if d.IsUnit() {
		return nil, nil
	}
	if generic := s.lookup(d.Name); generic != nil {
		if len(d.Args) > 0 {
			return nil, fmt.Errorf("line %d: %s cannot take type arguments", d.line, d.Name)
		}
		return generic, nil
	}
	c := &model.Concrete{Name: d.Name}
	for _, arg := range d.Args {
		t, err := s.resolveArg(arg)
		if err != nil {
			return nil, err
		}
		c.Args = append(c.Args, t)
	}
	return c, nil
}

// resolveArg is resolve for positions where unit is spelled out as a type
func (s scope) resolveArg(d TypeDef) (model.TypeRef, error) {
	t, err := s.resolve(d)
	if t == nil && err == nil {
		return model.Named("()"), nil
	}
	return t, err
}

// parseGeneric reads a generic parameter declaration:
// `T` is a type parameter, `'a` a lifetime and `const N` a const parameter
func parseGeneric(arena *model.Arena, decl string) (model.GenericParam, error) {
	decl = strings.TrimSpace(decl)
	switch {
	case decl == "":
		return model.GenericParam{}, fmt.Errorf("empty generic parameter")
	case strings.HasPrefix(decl, "'"):
		return arena.FreshGeneric(decl, model.KindLifetime), nil
	case strings.HasPrefix(decl, "const "):
		return arena.FreshGeneric(strings.TrimSpace(strings.TrimPrefix(decl, "const ")), model.KindConst), nil
	default:
		return arena.FreshGeneric(decl, model.KindType), nil
	}
}
