package defs

import (
	"testing"

	"github.com/cottand/dynsafe/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	arena, err := Load("testdata/iterator.yaml")
	require.NoError(t, err)
	require.NoError(t, arena.Validate())
	assert.Equal(t, 3, arena.Len())

	iter, err := arena.Get("Iterator")
	require.NoError(t, err)
	assert.Equal(t, "interface Iterator<Item>: Base<Item, Self>", iter.String())
	require.Len(t, iter.Consts, 1)
	assert.Equal(t, "const LIMIT: usize", iter.Consts[0].String())

	require.Len(t, iter.Methods, 3)
	assert.Equal(t, "fn next(&mut self) -> Option<Item>", iter.Methods[0].String())
	assert.Equal(t, "fn map<B, 'a>(self, B) -> Self where Self: Sized", iter.Methods[1].String())
	assert.Equal(t, "fn by_ref(&self, &mut Vec<Item>, ())", iter.Methods[2].String())

	mapM := iter.Methods[1]
	assert.Equal(t, model.MethodGenericRef{Index: 0, Name: "B"}, mapM.Params[0])
	assert.Equal(t, model.KindLifetime, mapM.Generics[1].Kind)
	assert.NotEqual(t, mapM.Generics[0].ID, iter.Generics[0].ID)

	next := iter.Methods[0].Return.(*model.Concrete)
	assert.Equal(t, model.GenericRef{Index: 0, Name: "Item"}, next.Args[0])

	clone, err := arena.Get("Clone")
	require.NoError(t, err)
	assert.True(t, clone.RequiresSelfSized)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("testdata/nope.yaml")
	assert.Error(t, err)
}

func TestParseEmpty(t *testing.T) {
	arena, err := Parse(nil, "empty")
	require.NoError(t, err)
	assert.Equal(t, 0, arena.Len())
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"unknown field":     "interfaces:\n  - name: A\n    colour: red\n",
		"missing name":      "interfaces:\n  - methods: []\n",
		"bad receiver":      "interfaces:\n  - name: A\n    methods:\n      - name: f\n        receiver: box\n",
		"type as string":    "interfaces:\n  - name: A\n    methods:\n      - name: f\n        returns: Vec<u8>\n",
		"unknown type key":  "interfaces:\n  - name: A\n    methods:\n      - name: f\n        returns: {name: Vec, of: [u8]}\n",
		"generic with args": "interfaces:\n  - name: A\n    generics: [T]\n    methods:\n      - name: f\n        returns: {name: T, args: [u8]}\n",
		"duplicate":         "interfaces:\n  - name: A\n  - name: A\n",
		"not a document":    "interfaces: 3\n",
		"type sequence":     "interfaces:\n  - name: A\n    consts:\n      - name: N\n        type: [u8]\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc), name)
			assert.Error(t, err)
		})
	}
}

func TestParseDoesNotValidate(t *testing.T) {
	arena, err := Parse([]byte("interfaces:\n  - name: A\n    parents:\n      - name: Missing\n"), "dangling")
	require.NoError(t, err)
	err = arena.Validate()
	assert.True(t, model.IsPrecondition(err))
}

func TestParseReceiver(t *testing.T) {
	for input, expected := range map[string]model.Receiver{
		"":          model.ReceiverRef,
		"ref":       model.ReceiverRef,
		"&mut self": model.ReceiverMutRef,
		"Value":     model.ReceiverValue,
		"none":      model.ReceiverNone,
		"static":    model.ReceiverNone,
	} {
		r, err := parseReceiver(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, r, input)
	}
}
