package dynsafe

import (
	"context"
	"log/slog"
	"testing"

	"github.com/cottand/dynsafe/cache"
	"github.com/cottand/dynsafe/defs"
	"github.com/cottand/dynsafe/model"
	"github.com/cottand/dynsafe/safety"
	"github.com/cottand/dynsafe/violation"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shapes = `
interfaces:
  - name: Named
    methods:
      - name: name
        returns: String

  - name: Shape
    parents:
      - name: Named
    methods:
      - name: area
        returns: f64
      - name: scale
        receiver: value
        params: [f64]
        returns: Self
        where_self_sized: true

  - name: Factory
    consts:
      - name: KIND
        type: u8
    methods:
      - name: create
        receiver: none
        returns: Self
`

func newSession(t *testing.T, doc string) *Session {
	t.Helper()
	arena, err := defs.Parse([]byte(doc), t.Name())
	require.NoError(t, err)
	s, err := NewSession(arena, Options{Jobs: 2, Logger: slog.New(slog.DiscardHandler)})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestCheckAll(t *testing.T) {
	s := newSession(t, shapes)
	verdicts, err := s.CheckAll(context.Background())
	require.NoError(t, err)
	require.Len(t, verdicts, 3)

	assert.Equal(t, model.InterfaceID("Named"), verdicts[0].Interface)
	assert.True(t, verdicts[0].Safe())

	shape := verdicts[1]
	assert.True(t, shape.Safe())
	assert.Equal(t, []string{"area", "name"}, shape.DispatchableNames())
	require.Len(t, shape.Excluded, 1)
	assert.Equal(t, "scale", shape.Excluded[0].Sig.Name)

	factory := verdicts[2]
	assert.False(t, factory.Safe())
	assert.Equal(t, []violation.Code{
		violation.AssociatedConstantCode,
		violation.NoReceiverCode,
		violation.SelfInSignatureCode,
	}, factory.Violations.Codes())
}

func TestCheckIsMemoized(t *testing.T) {
	s := newSession(t, shapes)
	ctx := context.Background()
	first, err := s.Check(ctx, "Shape")
	require.NoError(t, err)
	second, err := s.Check(ctx, "Shape")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, cache.Stats{Hits: 1, Computations: 1}, s.Stats())
}

func TestHandle(t *testing.T) {
	s := newSession(t, shapes)
	ctx := context.Background()

	h, err := s.Handle(ctx, "Shape")
	require.NoError(t, err)
	slot, ok := h.Slot("name")
	assert.True(t, ok)
	assert.Equal(t, 1, slot)
	_, ok = h.Slot("scale")
	assert.False(t, ok)

	_, err = s.Handle(ctx, "Factory")
	var unsafeErr *UnsafeError
	require.True(t, errors.As(err, &unsafeErr), "got %v", err)
	assert.Equal(t, model.InterfaceID("Factory"), unsafeErr.Interface)
	assert.Equal(t, 3, unsafeErr.Violations.Len())
	assert.Contains(t, err.Error(), "(E004)")
}

func TestReport(t *testing.T) {
	s := newSession(t, shapes)
	ctx := context.Background()

	report, err := s.Report(ctx, "Factory")
	require.NoError(t, err)
	require.Len(t, report.Entries, 3)
	assert.Equal(t, "KIND", report.Entries[0].Subject)

	report, err = s.Report(ctx, "Named")
	require.NoError(t, err)
	assert.Empty(t, report.Entries)

	_, err = s.Report(ctx, "Missing")
	assert.True(t, errors.Is(err, model.ErrUnknownInterface))
}

func TestInvalidDefinitions(t *testing.T) {
	arena, err := defs.Parse([]byte("interfaces:\n  - name: A\n    parents:\n      - name: B\n  - name: B\n    parents:\n      - name: A\n"), "cycle")
	require.NoError(t, err)

	_, err = NewSession(arena, Options{Logger: slog.New(slog.DiscardHandler)})
	assert.True(t, errors.Is(err, model.ErrCyclicParents), "got %v", err)

	s, err := NewSession(arena, Options{SkipValidation: true, Logger: slog.New(slog.DiscardHandler)})
	require.NoError(t, err)
	defer s.Close()
	_, err = s.CheckAll(context.Background())
	assert.True(t, errors.Is(err, model.ErrCyclicParents), "got %v", err)
}

func TestClosedSession(t *testing.T) {
	s := newSession(t, shapes)
	s.Close()
	_, err := s.Check(context.Background(), "Shape")
	assert.True(t, errors.Is(err, cache.ErrClosed))
}

func TestHandleSlotsOfRepeatedParent(t *testing.T) {
	s := newSession(t, `
interfaces:
  - name: Super
    generics: [A]
    methods:
      - name: foo
        params: [A]
  - name: Both
    parents:
      - name: Super
        args: [u8]
      - name: Super
        args: [u16]
`)
	ctx := context.Background()
	h, err := s.Handle(ctx, "Both")
	require.NoError(t, err)
	require.Len(t, h.Slots, 2)

	_, ok := h.Slot("foo")
	assert.False(t, ok, "foo names two slots")

	for i, m := range h.Slots {
		slot, ok := h.SlotOf(m)
		assert.True(t, ok)
		assert.Equal(t, i, slot)
	}
	assert.Equal(t, "fn foo(&self, u16)", h.Slots[1].Sig.String())

	_, ok = h.SlotOf(safety.Method{Sig: h.Slots[0].Sig, Origin: "Elsewhere"})
	assert.False(t, ok)
}
