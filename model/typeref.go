package model

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"iter"
	"slices"
	"strings"
)

// TypeRef is a type appearing in a method signature, a constant declaration
// or a parent reference.
//
// The set of implementations is closed: SelfType, GenericRef, MethodGenericRef and Concrete.
type TypeRef interface {
	String() string
	Hash() uint64
	// children returns the direct type arguments of this TypeRef
	children() iter.Seq[TypeRef]
	isTypeRef()
}

var (
	_ TypeRef = SelfType{}
	_ TypeRef = GenericRef{}
	_ TypeRef = MethodGenericRef{}
	_ TypeRef = (*Concrete)(nil)
)

var emptySeqTypeRef iter.Seq[TypeRef] = func(func(TypeRef) bool) {}

// SelfType stands for whatever concrete type ends up implementing the interface.
// It is never resolved during analysis.
type SelfType struct{}

func (SelfType) String() string              { return "Self" }
func (SelfType) children() iter.Seq[TypeRef] { return emptySeqTypeRef }
func (SelfType) isTypeRef()                  {}
func (SelfType) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("SelfType"))
	return h.Sum64()
}

// Self is the canonical SelfType value
var Self TypeRef = SelfType{}

// GenericRef references the generic parameter at Index of the interface
// whose signature contains it. Name is only used for display.
type GenericRef struct {
	Index int
	Name  string
}

func (t GenericRef) String() string {
	if t.Name != "" {
		return t.Name
	}
	return fmt.Sprintf("$%d", t.Index)
}
func (GenericRef) children() iter.Seq[TypeRef] { return emptySeqTypeRef }
func (GenericRef) isTypeRef()                  {}
func (t GenericRef) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("GenericRef"))
	_, _ = h.Write(binary.LittleEndian.AppendUint64(nil, uint64(t.Index)))
	return h.Sum64()
}

// MethodGenericRef references the generic parameter at Index of the enclosing method.
// Substitution of interface generics never touches it.
type MethodGenericRef struct {
	Index int
	Name  string
}

func (t MethodGenericRef) String() string {
	if t.Name != "" {
		return t.Name
	}
	return fmt.Sprintf("$m%d", t.Index)
}
func (MethodGenericRef) children() iter.Seq[TypeRef] { return emptySeqTypeRef }
func (MethodGenericRef) isTypeRef()                  {}
func (t MethodGenericRef) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("MethodGenericRef"))
	_, _ = h.Write(binary.LittleEndian.AppendUint64(nil, uint64(t.Index)))
	return h.Sum64()
}

// Concrete is a named type applied to zero or more arguments, like u8 or Vec<T>.
//
// References are represented as Concrete with Name "&" or "&mut" and a single argument.
type Concrete struct {
	Name string
	Args []TypeRef
}

// Named returns a Concrete applied to args
func Named(name string, args ...TypeRef) *Concrete {
	return &Concrete{Name: name, Args: args}
}

func Ref(t TypeRef) *Concrete    { return &Concrete{Name: RefName, Args: []TypeRef{t}} }
func MutRef(t TypeRef) *Concrete { return &Concrete{Name: MutRefName, Args: []TypeRef{t}} }

const (
	RefName    = "&"
	MutRefName = "&mut"
)

func (t *Concrete) String() string {
	switch {
	case t.Name == RefName && len(t.Args) == 1:
		return "&" + t.Args[0].String()
	case t.Name == MutRefName && len(t.Args) == 1:
		return "&mut " + t.Args[0].String()
	case len(t.Args) == 0:
		return t.Name
	}
	sb := strings.Builder{}
	sb.WriteString(t.Name)
	sb.WriteString("<")
	for i, arg := range t.Args {
		if i != 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(arg.String())
	}
	sb.WriteString(">")
	return sb.String()
}

func (t *Concrete) children() iter.Seq[TypeRef] { return slices.Values(t.Args) }
func (*Concrete) isTypeRef()                    {}
func (t *Concrete) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("Concrete"))
	_, _ = h.Write([]byte(t.Name))
	arr := make([]byte, 0, 8*len(t.Args))
	for _, arg := range t.Args {
		arr = binary.LittleEndian.AppendUint64(arr, arg.Hash())
	}
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Walk visits t and all of its nested type arguments depth-first.
// Returning false from visit stops the walk.
func Walk(t TypeRef, visit func(TypeRef) bool) bool {
	if t == nil {
		return true
	}
	if !visit(t) {
		return false
	}
	for child := range t.children() {
		if !Walk(child, visit) {
			return false
		}
	}
	return true
}

// ContainsSelf reports whether SelfType occurs anywhere inside t
func ContainsSelf(t TypeRef) bool {
	found := false
	Walk(t, func(t TypeRef) bool {
		_, found = t.(SelfType)
		return !found
	})
	return found
}

// Equal compares two TypeRef structurally. A nil TypeRef (unit) only equals nil.
func Equal(a, b TypeRef) bool {
	switch a := a.(type) {
	case nil:
		return b == nil
	case SelfType:
		_, ok := b.(SelfType)
		return ok
	case GenericRef:
		other, ok := b.(GenericRef)
		return ok && other.Index == a.Index
	case MethodGenericRef:
		other, ok := b.(MethodGenericRef)
		return ok && other.Index == a.Index
	case *Concrete:
		other, ok := b.(*Concrete)
		return ok && other.Name == a.Name && slices.EqualFunc(a.Args, other.Args, Equal)
	default:
		panic(fmt.Sprintf("unreachable: unknown TypeRef %T", a))
	}
}

// TypeString renders t, where a nil TypeRef is the unit type
func TypeString(t TypeRef) string {
	if t == nil {
		return "()"
	}
	return t.String()
}

func hashOrZero(t TypeRef) uint64 {
	if t == nil {
		return 0
	}
	return t.Hash()
}
