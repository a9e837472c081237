package violation

import (
	"fmt"
	"log/slog"
	"slices"
)

// Violations accumulates every Violation found for one interface.
// A nil *Violations is empty and ready to use.
type Violations struct {
	vs []Violation
}

func (r *Violations) With(v ...Violation) *Violations {
	if len(v) == 0 {
		return r
	}
	if r == nil {
		return &Violations{vs: slices.Clone(v)}
	}
	r.vs = append(r.vs, v...)
	return r
}

func (r *Violations) Merge(other *Violations) *Violations {
	if r == nil {
		return other
	}
	if other == nil || len(other.vs) == 0 {
		return r
	}
	return r.With(other.vs...)
}

// All returns the violations in the order they were raised
func (r *Violations) All() []Violation {
	if r == nil {
		return nil
	}
	return r.vs
}

func (r *Violations) Len() int {
	if r == nil {
		return 0
	}
	return len(r.vs)
}

func (r *Violations) HasViolation() bool {
	return r.Len() > 0
}

// Codes returns the code of each violation, in order
func (r *Violations) Codes() []Code {
	codes := make([]Code, 0, r.Len())
	for _, v := range r.All() {
		codes = append(codes, v.Code())
	}
	return codes
}

func (r *Violations) LogValue() slog.Value {
	var vals []slog.Attr
	for i, v := range r.All() {
		vals = append(vals, slog.Attr{
			Key: fmt.Sprint("v", i),
			Value: slog.GroupValue(
				slog.Attr{
					Key:   "msg",
					Value: slog.StringValue(FormatWithCode(v)),
				},
			),
		})
	}
	return slog.GroupValue(vals...)
}
