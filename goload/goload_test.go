package goload

import (
	"context"
	"testing"

	"github.com/cottand/dynsafe/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pkg = "example.com/streams."

func load(t *testing.T) *model.Arena {
	t.Helper()
	arena, err := Load(context.Background(), "testdata/streams", nil)
	require.NoError(t, err)
	require.NoError(t, arena.Validate())
	return arena
}

func TestLoadInterfaces(t *testing.T) {
	arena := load(t)

	var ids []model.InterfaceID
	for iface := range arena.All() {
		ids = append(ids, iface.ID)
	}
	assert.ElementsMatch(t, []model.InterfaceID{
		pkg + "Closer", pkg + "Sink", pkg + "Source", pkg + "ByteSink", pkg + "Pipe", pkg + "Summer",
		pkg + "Outer", pkg + "Resetter",
	}, ids)

	closer, err := arena.Get(pkg + "Closer")
	require.NoError(t, err)
	require.Len(t, closer.Methods, 1)
	assert.Equal(t, "fn Close(&self) -> error", closer.Methods[0].String())
}

func TestLoadGenericEmbedding(t *testing.T) {
	arena := load(t)

	byteSink, err := arena.Get(pkg + "ByteSink")
	require.NoError(t, err)
	require.Len(t, byteSink.Parents, 1)
	assert.Equal(t, pkg+"Sink<[]<string>>", byteSink.Parents[0].String())

	pipe, err := arena.Get(pkg + "Pipe")
	require.NoError(t, err)
	require.Len(t, pipe.Generics, 1)
	require.Len(t, pipe.Parents, 2)
	assert.Equal(t, model.GenericRef{Index: 0, Name: "T"}, pipe.Parents[0].Args[0])
	assert.Equal(t, pkg+"Sink<map<string, T>>", pipe.Parents[1].String())

	source, err := arena.Get(pkg + "Source")
	require.NoError(t, err)
	require.Len(t, source.Methods, 1)
	assert.Equal(t, "fn Next(&self) -> tuple<T, bool>", source.Methods[0].String())
	assert.Equal(t, []model.ParentRef{{Interface: pkg + "Closer"}}, source.Parents)
}

func TestLoadSkipsConstraints(t *testing.T) {
	arena := load(t)
	_, err := arena.Get(pkg + "Number")
	assert.ErrorIs(t, err, model.ErrUnknownInterface)
}

func TestLoadEmbeddedLiterals(t *testing.T) {
	arena := load(t)

	outer, err := arena.Get(pkg + "Outer")
	require.NoError(t, err)
	assert.Empty(t, outer.Parents)
	var methods []string
	for _, m := range outer.Methods {
		methods = append(methods, m.String())
	}
	assert.Equal(t, []string{"fn Own(&self)", "fn Inner(&self) -> int"}, methods)

	resetter, err := arena.Get(pkg + "Resetter")
	require.NoError(t, err)
	methods = nil
	for _, m := range resetter.Methods {
		methods = append(methods, m.Name)
	}
	assert.ElementsMatch(t, []string{"Own", "Close", "Reset"}, methods)
}
