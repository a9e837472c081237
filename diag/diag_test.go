package diag

import (
	"strings"
	"testing"

	"github.com/cottand/dynsafe/model"
	"github.com/cottand/dynsafe/violation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var shape = &model.Interface{
	ID: "Shape",
	Consts: []model.AssocConst{
		{Name: "SIDES", Type: model.Named("u32")},
	},
	Methods: []model.MethodSig{
		{Name: "unit", Receiver: model.ReceiverNone, Return: model.Self},
		{Name: "area", Receiver: model.ReceiverRef, Return: model.Named("f64")},
	},
}

func TestRenderSuggestions(t *testing.T) {
	var vs *violation.Violations
	vs = vs.With(
		violation.AssociatedConstant{Name: "SIDES", Interface: "Shape"},
		violation.NoReceiver{Method: "unit", Interface: "Shape"},
		violation.SelfInSignature{Method: "unit", Interface: "Shape", Position: violation.Return},
		violation.SelfInSupertraitArg{Parent: "Eq", Ref: model.ParentRef{Interface: "Eq", Args: []model.TypeRef{model.Self}}},
		violation.SelfSizedBound{Interface: "Base"},
	)
	report := Render(shape, vs)
	require.Len(t, report.Entries, 5)

	constEntry := report.Entries[0]
	assert.Equal(t, violation.AssociatedConstantCode, constEntry.Code)
	assert.Equal(t, "SIDES", constEntry.Subject)
	assert.Equal(t, ReplaceConstWithMethod, constEntry.Suggestion.Kind)
	assert.Equal(t, "fn sides(&self) -> u32", constEntry.Suggestion.Edit)

	noReceiver := report.Entries[1]
	assert.Equal(t, AddSizedBound, noReceiver.Suggestion.Kind)
	assert.Equal(t, "fn unit() -> Self where Self: Sized", noReceiver.Suggestion.Edit)
	assert.Contains(t, noReceiver.Suggestion.Text, "`&self` receiver")

	assert.Equal(t, AddSizedBound, report.Entries[2].Suggestion.Kind)
	assert.Contains(t, report.Entries[2].Explanation, "return type")

	assert.Equal(t, NoFix, report.Entries[3].Suggestion.Kind)
	assert.Contains(t, report.Entries[3].Explanation, "Eq<Self>")

	inherited := report.Entries[4]
	assert.Equal(t, RemoveSizedBound, inherited.Suggestion.Kind)
	assert.Contains(t, inherited.Explanation, "parent interface 'Base'")

	// the declaration is not modified by rendering
	assert.False(t, shape.Methods[0].ExcludedBySizedBound)
}

func TestSuggestionForInheritedMethodHasNoEdit(t *testing.T) {
	var vs *violation.Violations
	vs = vs.With(violation.SelfInSignature{Method: "clone", Interface: "Clone", Position: violation.Return})
	report := Render(shape, vs)
	require.Len(t, report.Entries, 1)
	assert.Equal(t, AddSizedBound, report.Entries[0].Suggestion.Kind)
	assert.Empty(t, report.Entries[0].Suggestion.Edit)
	assert.Contains(t, report.Entries[0].Suggestion.Text, "(in 'Clone')")
}

func TestFormat(t *testing.T) {
	var vs *violation.Violations
	vs = vs.With(violation.SelfSizedBound{Interface: "Shape"})
	report := Render(&model.Interface{ID: "Shape", RequiresSelfSized: true}, vs)

	plain := report.String()
	assert.True(t, strings.HasPrefix(plain, "error: interface 'Shape' cannot be used as a dynamic handle\n"), plain)
	assert.Contains(t, plain, "(E001) sized self bound `Shape`")
	assert.NotContains(t, plain, "\x1b[")

	sb := &strings.Builder{}
	require.NoError(t, report.Format(sb, true))
	assert.Contains(t, sb.String(), ansiRed)
	assert.Contains(t, sb.String(), ansiReset)
}

func TestFormatSafe(t *testing.T) {
	report := Render(&model.Interface{ID: "Marker"}, nil)
	assert.Equal(t, "interface 'Marker' can be used as a dynamic handle\n", report.String())
}

func TestExplainEveryCode(t *testing.T) {
	for _, code := range Codes() {
		text, ok := Explain(code)
		assert.True(t, ok, "no explanation for %s", code)
		assert.NotEmpty(t, text)
		assert.NotEqual(t, "unknown violation", Label(code))
	}
	_, ok := Explain(violation.Code(99))
	assert.False(t, ok)
	assert.Equal(t, "unknown violation", Label(violation.Code(99)))
}
