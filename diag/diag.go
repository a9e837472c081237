// Package diag turns safety violations into reports a user can act on.
package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/cottand/dynsafe/model"
	"github.com/cottand/dynsafe/violation"
)

type SuggestionKind uint8

const (
	// NoFix means the interface has to be restructured by hand
	NoFix SuggestionKind = iota
	AddSizedBound
	ReplaceConstWithMethod
	RemoveSizedBound
)

type Suggestion struct {
	Kind SuggestionKind
	// Text is the human readable fix
	Text string
	// Edit is a replacement snippet for the offending item, when one can be derived
	Edit string
}

type Entry struct {
	Code        violation.Code
	Label       string
	Subject     string
	Explanation string
	Suggestion  Suggestion
}

// Report is the rendered outcome for one unsafe interface
type Report struct {
	Interface model.InterfaceID
	Entries   []Entry
}

func (r Report) String() string {
	sb := &strings.Builder{}
	_ = r.Format(sb, false)
	return sb.String()
}

const (
	ansiRed   = "\x1b[31m"
	ansiCyan  = "\x1b[36m"
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

// Format writes r to w, one block per entry. color enables ANSI escapes.
func (r Report) Format(w io.Writer, color bool) error {
	paint := func(code, s string) string {
		if !color {
			return s
		}
		return code + s + ansiReset
	}
	if len(r.Entries) == 0 {
		_, err := fmt.Fprintf(w, "interface '%s' can be used as a dynamic handle\n", r.Interface)
		return err
	}
	_, err := fmt.Fprintf(w, "%s: interface '%s' cannot be used as a dynamic handle\n",
		paint(ansiRed+ansiBold, "error"), r.Interface)
	if err != nil {
		return err
	}
	for _, e := range r.Entries {
		_, err = fmt.Fprintf(w, "  (%s) %s `%s`: %s\n", e.Code, paint(ansiBold, e.Label), e.Subject, e.Explanation)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "    %s %s\n", paint(ansiCyan, "help:"), e.Suggestion.Text)
		if err != nil {
			return err
		}
		if e.Suggestion.Edit != "" {
			_, err = fmt.Fprintf(w, "      %s\n", e.Suggestion.Edit)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// Render builds a Report for iface from the violations found when checking it
func Render(iface *model.Interface, vs *violation.Violations) Report {
	report := Report{Interface: iface.ID}
	for _, v := range vs.All() {
		report.Entries = append(report.Entries, entryFor(iface, v))
	}
	return report
}

func entryFor(iface *model.Interface, v violation.Violation) Entry {
	e := Entry{
		Code:    v.Code(),
		Label:   Label(v.Code()),
		Subject: v.Subject(),
	}
	switch v := v.(type) {
	case violation.SelfSizedBound:
		if v.Interface == iface.ID {
			e.Explanation = "the interface requires `Self: Sized`, so no erased implementor can satisfy it"
			e.Suggestion = Suggestion{
				Kind: RemoveSizedBound,
				Text: fmt.Sprintf("if '%s' is yours, remove the `Sized` bound and add `where Self: Sized` to the methods that need it instead", v.Interface),
			}
		} else {
			e.Explanation = fmt.Sprintf("parent interface '%s' requires `Self: Sized`, and the bound is inherited", v.Interface)
			e.Suggestion = Suggestion{
				Kind: RemoveSizedBound,
				Text: fmt.Sprintf("if '%s' is yours, remove its `Sized` bound", v.Interface),
			}
		}
	case violation.AssociatedConstant:
		e.Explanation = fmt.Sprintf("associated constants cannot be read through a dispatch table (declared in '%s')", v.Interface)
		e.Suggestion = Suggestion{
			Kind: ReplaceConstWithMethod,
			Text: fmt.Sprintf("replace the constant '%s' with a method taking no arguments besides `&self`", v.Name),
			Edit: constReplacement(iface, v),
		}
	case violation.SelfInSupertraitArg:
		e.Explanation = fmt.Sprintf("`Self` is passed as a type argument in %s, which cannot be proven to stay the erased type", v.Ref)
		e.Suggestion = Suggestion{
			Kind: NoFix,
			Text: fmt.Sprintf("there is no mechanical fix: restructure the reference to '%s' so that it does not take `Self`", v.Parent),
		}
	case violation.NoReceiver:
		e.Explanation = "a function without a `self` receiver cannot be called through a dispatch table"
		e.Suggestion = sizedBoundSuggestion(iface, v.Method, v.Interface, "or add a `&self` receiver")
	case violation.GenericMethod:
		names := make([]string, len(v.Generics))
		for i, g := range v.Generics {
			names[i] = g.String()
		}
		e.Explanation = fmt.Sprintf("a dispatch table cannot hold every instantiation of generic parameters <%s>", strings.Join(names, ", "))
		e.Suggestion = sizedBoundSuggestion(iface, v.Method, v.Interface, "")
	case violation.SelfInSignature:
		e.Explanation = fmt.Sprintf("`Self` in the %s is unknown once the implementor is erased", v.Position)
		e.Suggestion = sizedBoundSuggestion(iface, v.Method, v.Interface, "")
	default:
		e.Explanation = v.Error()
		e.Suggestion = Suggestion{Kind: NoFix, Text: "no suggestion available"}
	}
	return e
}

func sizedBoundSuggestion(iface *model.Interface, method string, origin model.InterfaceID, alternative string) Suggestion {
	text := fmt.Sprintf("add `where Self: Sized` to '%s' (in '%s') to exclude it from the dispatch table", method, origin)
	if alternative != "" {
		text += ", " + alternative
	}
	s := Suggestion{
		Kind: AddSizedBound,
		Text: text,
	}
	if origin != iface.ID {
		return s
	}
	for _, m := range iface.Methods {
		if m.Name == method {
			m.ExcludedBySizedBound = true
			s.Edit = m.String()
			break
		}
	}
	return s
}

func constReplacement(iface *model.Interface, v violation.AssociatedConstant) string {
	for _, k := range iface.Consts {
		if k.Name == v.Name {
			return fmt.Sprintf("fn %s(&self) -> %s", strings.ToLower(k.Name), model.TypeString(k.Type))
		}
	}
	return fmt.Sprintf("fn %s(&self) -> ...", strings.ToLower(v.Name))
}
