package violation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cottand/dynsafe/model"
)

type Code int

const (
	None Code = iota
	SelfSizedBoundCode
	AssociatedConstantCode
	SelfInSupertraitArgCode
	NoReceiverCode
	GenericMethodCode
	SelfInSignatureCode
)

func (c Code) String() string {
	return fmt.Sprintf("E%03d", int(c))
}

// Violation is one reason an interface cannot be used behind a dynamic handle
type Violation interface {
	Error() string
	Code() Code
	// Subject is the name of the offending interface, constant, parent or method
	Subject() string
}

var (
	_ Violation = SelfSizedBound{}
	_ Violation = AssociatedConstant{}
	_ Violation = SelfInSupertraitArg{}
	_ Violation = NoReceiver{}
	_ Violation = GenericMethod{}
	_ Violation = SelfInSignature{}
)

// FormatWithCode renders v as "(E001) message"
func FormatWithCode(v Violation) string {
	return fmt.Sprintf("(%s) %s", v.Code(), v.Error())
}

// SelfSizedBound is raised when Interface (the checked interface or one of its
// ancestors) requires its implementor to be statically sized
type SelfSizedBound struct {
	Interface model.InterfaceID
}

func (e SelfSizedBound) Error() string {
	return fmt.Sprintf("interface '%s' requires `Self: Sized`", e.Interface)
}
func (e SelfSizedBound) Code() Code      { return SelfSizedBoundCode }
func (e SelfSizedBound) Subject() string { return string(e.Interface) }

type AssociatedConstant struct {
	Name string
	// Interface declares the constant
	Interface model.InterfaceID
}

func (e AssociatedConstant) Error() string {
	return fmt.Sprintf("it contains the associated constant '%s' (declared in '%s')", e.Name, e.Interface)
}
func (e AssociatedConstant) Code() Code      { return AssociatedConstantCode }
func (e AssociatedConstant) Subject() string { return e.Name }

type SelfInSupertraitArg struct {
	Parent model.InterfaceID
	// Ref is the parent reference as seen from the checked interface
	Ref model.ParentRef
}

func (e SelfInSupertraitArg) Error() string {
	return fmt.Sprintf("it uses `Self` as a type argument of parent '%s' (in %s)", e.Parent, e.Ref)
}
func (e SelfInSupertraitArg) Code() Code      { return SelfInSupertraitArgCode }
func (e SelfInSupertraitArg) Subject() string { return string(e.Parent) }

type NoReceiver struct {
	Method    string
	Interface model.InterfaceID
}

func (e NoReceiver) Error() string {
	return fmt.Sprintf("associated function '%s' has no `self` parameter", e.Method)
}
func (e NoReceiver) Code() Code      { return NoReceiverCode }
func (e NoReceiver) Subject() string { return e.Method }

type GenericMethod struct {
	Method    string
	Interface model.InterfaceID
	// Generics are the offending type or const parameters
	Generics []model.GenericParam
}

func (e GenericMethod) Error() string {
	return fmt.Sprintf("method '%s' has generic type parameters", e.Method)
}
func (e GenericMethod) Code() Code      { return GenericMethodCode }
func (e GenericMethod) Subject() string { return e.Method }

type PositionKind uint8

const (
	PositionParam PositionKind = iota
	PositionReturn
)

// Position is where a type occurs in a method signature
type Position struct {
	Kind PositionKind
	// Index is the parameter index, receiver excluded. Unused for PositionReturn
	Index int
}

func ParamAt(i int) Position { return Position{Kind: PositionParam, Index: i} }

var Return = Position{Kind: PositionReturn}

func (p Position) String() string {
	if p.Kind == PositionReturn {
		return "return type"
	}
	return fmt.Sprintf("parameter %d", p.Index)
}

type SelfInSignature struct {
	Method    string
	Interface model.InterfaceID
	Position  Position
}

func (e SelfInSignature) Error() string {
	return fmt.Sprintf("method '%s' references the `Self` type in its %s", e.Method, e.Position)
}
func (e SelfInSignature) Code() Code      { return SelfInSignatureCode }
func (e SelfInSignature) Subject() string { return e.Method }

// ParseCode accepts "E003", "e3" or "3"
func ParseCode(s string) (Code, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "E"), "e")
	n, err := strconv.Atoi(trimmed)
	if err != nil || n <= int(None) || n > int(SelfInSignatureCode) {
		return None, fmt.Errorf("unknown violation code %q", s)
	}
	return Code(n), nil
}
