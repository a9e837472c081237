package model

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"strings"
)

// InterfaceID uniquely identifies an Interface inside an Arena
type InterfaceID string

type GenericKind uint8

const (
	KindType GenericKind = iota
	KindLifetime
	KindConst
)

func (k GenericKind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindLifetime:
		return "lifetime"
	case KindConst:
		return "const"
	default:
		return "invalid"
	}
}

// GenericID is the identity of a generic parameter, unique within an Arena
type GenericID uint64

type GenericParam struct {
	ID   GenericID
	Name string
	Kind GenericKind
}

func (g GenericParam) String() string {
	if g.Kind == KindConst {
		return "const " + g.Name
	}
	return g.Name
}

type Receiver uint8

const (
	// ReceiverNone is a static method, without self
	ReceiverNone Receiver = iota
	ReceiverRef
	ReceiverMutRef
	ReceiverValue
)

func (r Receiver) String() string {
	switch r {
	case ReceiverNone:
		return "none"
	case ReceiverRef:
		return "&self"
	case ReceiverMutRef:
		return "&mut self"
	case ReceiverValue:
		return "self"
	default:
		return "invalid"
	}
}

// MethodSig is a method as declared by an interface.
type MethodSig struct {
	Name     string
	Generics []GenericParam
	Receiver Receiver
	Params   []TypeRef
	// Return is nil when the method returns nothing
	Return TypeRef
	// ExcludedBySizedBound means the method is only callable when the
	// implementor's size is statically known (where Self: Sized).
	// Such methods never take part in the dispatch table.
	ExcludedBySizedBound bool
}

func (m MethodSig) String() string {
	sb := strings.Builder{}
	sb.WriteString("fn ")
	sb.WriteString(m.Name)
	if len(m.Generics) > 0 {
		sb.WriteString("<")
		for i, g := range m.Generics {
			if i != 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(g.String())
		}
		sb.WriteString(">")
	}
	sb.WriteString("(")
	args := make([]string, 0, len(m.Params)+1)
	if m.Receiver != ReceiverNone {
		args = append(args, m.Receiver.String())
	}
	for _, p := range m.Params {
		args = append(args, TypeString(p))
	}
	sb.WriteString(strings.Join(args, ", "))
	sb.WriteString(")")
	if m.Return != nil {
		sb.WriteString(" -> ")
		sb.WriteString(m.Return.String())
	}
	if m.ExcludedBySizedBound {
		sb.WriteString(" where Self: Sized")
	}
	return sb.String()
}

// Hash identifies the shape of a method: its name, receiver, generics and signature types
func (m MethodSig) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(m.Name))
	arr := make([]byte, 0, 8*(len(m.Params)+len(m.Generics)+3))
	arr = append(arr, byte(m.Receiver))
	if m.ExcludedBySizedBound {
		arr = append(arr, 1)
	}
	for _, g := range m.Generics {
		arr = append(arr, byte(g.Kind))
	}
	for _, p := range m.Params {
		arr = binary.LittleEndian.AppendUint64(arr, hashOrZero(p))
	}
	arr = binary.LittleEndian.AppendUint64(arr, hashOrZero(m.Return))
	_, _ = h.Write(arr)
	return h.Sum64()
}

type AssocConst struct {
	Name string
	Type TypeRef
}

func (c AssocConst) String() string {
	return fmt.Sprintf("const %s: %s", c.Name, TypeString(c.Type))
}

// ParentRef is a declared parent interface together with the type arguments
// bound to the parent's generic parameters.
type ParentRef struct {
	Interface InterfaceID
	Args      []TypeRef
}

func (p ParentRef) String() string {
	if len(p.Args) == 0 {
		return string(p.Interface)
	}
	args := make([]string, len(p.Args))
	for i, arg := range p.Args {
		args[i] = TypeString(arg)
	}
	return fmt.Sprintf("%s<%s>", p.Interface, strings.Join(args, ", "))
}

func (p ParentRef) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(p.Interface))
	arr := make([]byte, 0, 8*len(p.Args))
	for _, arg := range p.Args {
		arr = binary.LittleEndian.AppendUint64(arr, hashOrZero(arg))
	}
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Interface is a named set of methods and constants, plus the parents it inherits from.
// Values are read-only once handed to the analysis.
type Interface struct {
	ID       InterfaceID
	Generics []GenericParam
	Parents  []ParentRef
	// Methods only holds the methods this interface declares itself
	Methods []MethodSig
	Consts  []AssocConst
	// RequiresSelfSized is set when the interface's own bounds demand a statically sized implementor
	RequiresSelfSized bool
}

func (i *Interface) Name() string { return string(i.ID) }

func (i *Interface) String() string {
	sb := strings.Builder{}
	sb.WriteString("interface ")
	sb.WriteString(string(i.ID))
	if len(i.Generics) > 0 {
		names := make([]string, len(i.Generics))
		for j, g := range i.Generics {
			names[j] = g.String()
		}
		sb.WriteString("<" + strings.Join(names, ", ") + ">")
	}
	var bounds []string
	if i.RequiresSelfSized {
		bounds = append(bounds, "Sized")
	}
	for _, p := range i.Parents {
		bounds = append(bounds, p.String())
	}
	if len(bounds) > 0 {
		sb.WriteString(": " + strings.Join(bounds, " + "))
	}
	return sb.String()
}
