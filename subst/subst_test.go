package subst

import (
	"testing"

	"github.com/cottand/dynsafe/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstituteGenericReturn(t *testing.T) {
	parent := &model.Interface{
		ID:       "Super",
		Generics: []model.GenericParam{{Name: "A"}},
		Methods: []model.MethodSig{{
			Name:     "get",
			Receiver: model.ReceiverRef,
			Return:   model.GenericRef{Index: 0, Name: "A"},
		}},
	}

	ms, err := Substitute(parent, []model.TypeRef{model.Named("u8")})
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.True(t, model.Equal(model.Named("u8"), ms[0].Return), "got %s", model.TypeString(ms[0].Return))

	// the parent is left untouched
	assert.Equal(t, model.GenericRef{Index: 0, Name: "A"}, parent.Methods[0].Return)
}

func TestSubstituteNeverReplacesSelf(t *testing.T) {
	parent := &model.Interface{
		ID:       "Super",
		Generics: []model.GenericParam{{Name: "A"}},
		Methods: []model.MethodSig{{
			Name:     "combine",
			Receiver: model.ReceiverRef,
			Params:   []model.TypeRef{model.Self, model.Named("Vec", model.GenericRef{Index: 0})},
			Return:   model.Ref(model.Self),
		}},
	}
	for _, arg := range []model.TypeRef{model.Named("u8"), model.Self, model.Named("Box", model.Self)} {
		ms, err := Substitute(parent, []model.TypeRef{arg})
		require.NoError(t, err)
		assert.Equal(t, model.Self, ms[0].Params[0])
		assert.Equal(t, "&Self", ms[0].Return.String())
		assert.Equal(t, "Vec<"+arg.String()+">", ms[0].Params[1].String())
	}
}

func TestSubstituteLeavesMethodGenerics(t *testing.T) {
	m := model.MethodSig{
		Name:     "with",
		Receiver: model.ReceiverRef,
		Generics: []model.GenericParam{{Name: "T"}},
		Params:   []model.TypeRef{model.MethodGenericRef{Index: 0, Name: "T"}, model.GenericRef{Index: 0}},
	}
	got, err := Method(m, []model.TypeRef{model.Named("String")})
	require.NoError(t, err)
	assert.Equal(t, model.MethodGenericRef{Index: 0, Name: "T"}, got.Params[0])
	assert.Equal(t, "String", got.Params[1].String())
	assert.Equal(t, m.Generics, got.Generics)
}

func TestSubstituteIsPure(t *testing.T) {
	parent := &model.Interface{
		ID:       "P",
		Generics: []model.GenericParam{{Name: "A"}, {Name: "B"}},
		Methods: []model.MethodSig{{
			Name:     "f",
			Receiver: model.ReceiverRef,
			Params:   []model.TypeRef{model.Named("Map", model.GenericRef{Index: 1}, model.GenericRef{Index: 0})},
		}},
	}
	args := []model.TypeRef{model.Named("u8"), model.Named("i64")}
	first, err := Substitute(parent, args)
	require.NoError(t, err)
	second, err := Substitute(parent, args)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, "Map<i64, u8>", first[0].Params[0].String())
}

func TestSubstituteArityMismatch(t *testing.T) {
	parent := &model.Interface{ID: "P", Generics: []model.GenericParam{{Name: "A"}}}
	_, err := Substitute(parent, nil)
	assert.True(t, errors.Is(err, model.ErrArityMismatch))
}

func TestSubstituteIndexOutOfRange(t *testing.T) {
	_, err := Type(model.GenericRef{Index: 3}, []model.TypeRef{model.Self})
	assert.True(t, errors.Is(err, model.ErrGenericIndex))
}

func TestParentComposition(t *testing.T) {
	// Mid<T>: Top<Vec<T>>, seen from Sub: Mid<Self>
	ref := model.ParentRef{Interface: "Top", Args: []model.TypeRef{model.Named("Vec", model.GenericRef{Index: 0, Name: "T"})}}
	composed, err := Parent(ref, []model.TypeRef{model.Self})
	require.NoError(t, err)
	assert.Equal(t, "Top<Vec<Self>>", composed.String())
	assert.Equal(t, "Top<Vec<T>>", ref.String())
}

func TestConst(t *testing.T) {
	c := model.AssocConst{Name: "N", Type: model.GenericRef{Index: 0}}
	got, err := Const(c, []model.TypeRef{model.Named("usize")})
	require.NoError(t, err)
	assert.Equal(t, "const N: usize", got.String())
}
