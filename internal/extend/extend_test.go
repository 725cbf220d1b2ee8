package extend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cssc-lang/cssc/internal/selector"
)

func complexOf(simples ...selector.Simple) selector.Complex {
	return selector.NewComplex(selector.NewCompound(simples...))
}

func listOf(complexes ...selector.Complex) selector.List {
	return selector.NewList(complexes...)
}

// scenario 3: ".err { ... } .warn { @extend .err; }" -> ".err, .warn"
func TestApplySiblingClassExtend(t *testing.T) {
	errSelector := listOf(complexOf(selector.Class("err")))
	warnSelector := listOf(complexOf(selector.Class("warn")))

	m := BuildMap([]Directive{
		{Extender: warnSelector, Extendee: selector.NewCompound(selector.Class("err"))},
	})

	out := Apply(errSelector, m)
	assert.True(t, out.Equal(listOf(
		complexOf(selector.Class("err")),
		complexOf(selector.Class("warn")),
	)))
}

// scenario 4: "%base { display: block; } .x { @extend %base; }" expects the
// %base rule itself to vanish from printed output once its selector list is
// filtered, leaving only ".x".
func TestApplyPlaceholderExtendThenPrune(t *testing.T) {
	baseSelector := listOf(complexOf(selector.Placeholder("base")))
	xSelector := listOf(complexOf(selector.Class("x")))

	m := BuildMap([]Directive{
		{Extender: xSelector, Extendee: selector.NewCompound(selector.Placeholder("base"))},
	})

	out := Apply(baseSelector, m)
	require.Len(t, out.Complexes, 2) // %base itself, plus .x appended

	pruned, keep := PrunePlaceholders(out)
	require.True(t, keep)
	require.Len(t, pruned.Complexes, 1)
	assert.Equal(t, ".x", pruned.Complexes[0].String())
}

// scenario 5: "a.x { c: 1; } b { @extend .x; }" -> "a.x, a b { c: 1; }"
func TestApplyFallsBackToDescendantConcatWhenFinalsConflict(t *testing.T) {
	axSelector := listOf(complexOf(selector.Type(nil, "a"), selector.Class("x")))
	bSelector := listOf(complexOf(selector.Type(nil, "b")))

	m := BuildMap([]Directive{
		{Extender: bSelector, Extendee: selector.NewCompound(selector.Class("x"))},
	})

	out := Apply(axSelector, m)
	assert.True(t, out.Equal(listOf(
		complexOf(selector.Type(nil, "a"), selector.Class("x")),
		selector.NewComplex(
			selector.NewCompound(selector.Type(nil, "a")),
			selector.Step{Combinator: selector.Descendant, Compound: selector.NewCompound(selector.Type(nil, "b"))},
		),
	)))
}

func TestUnsatisfiedNonOptionalExtendIsReported(t *testing.T) {
	m := BuildMap([]Directive{
		{
			Extender: listOf(complexOf(selector.Class("x"))),
			Extendee: selector.NewCompound(selector.Class("nonexistent")),
		},
	})
	targets := []selector.List{listOf(complexOf(selector.Class("y")))}
	unsatisfied := m.Unsatisfied(targets)
	require.Len(t, unsatisfied, 1)
	assert.Equal(t, ".nonexistent", unsatisfied[0].Extendee.String())
}

func TestUnsatisfiedOptionalExtendIsNotReported(t *testing.T) {
	m := BuildMap([]Directive{
		{
			Extender: listOf(complexOf(selector.Class("x"))),
			Extendee: selector.NewCompound(selector.Class("nonexistent")),
			Optional: true,
		},
	})
	targets := []selector.List{listOf(complexOf(selector.Class("y")))}
	assert.Empty(t, m.Unsatisfied(targets))
}
