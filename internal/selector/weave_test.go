package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnifyComplexSingleCompounds(t *testing.T) {
	a := NewComplex(NewCompound(Class("a")))
	b := NewComplex(NewCompound(Class("b")))
	out, ok := UnifyComplex(a, b)
	require.True(t, ok)
	require.Len(t, out.Complexes, 1)
	assert.Equal(t, ".a.b", out.Complexes[0].String())
}

func TestUnifyComplexFailsWhenFinalsConflict(t *testing.T) {
	a := NewComplex(NewCompound(Type(nil, "div")))
	b := NewComplex(NewCompound(Type(nil, "span")))
	_, ok := UnifyComplex(a, b)
	assert.False(t, ok)
}

func TestUnifyComplexPreservesPrefixWhenOtherHasNone(t *testing.T) {
	a := NewComplex(NewCompound(Type(nil, "div")), Step{Combinator: Descendant, Compound: NewCompound(Class("a"))})
	b := NewComplex(NewCompound(Class("b")))
	out, ok := UnifyComplex(a, b)
	require.True(t, ok)
	require.Len(t, out.Complexes, 1)
	assert.Equal(t, "div .a.b", out.Complexes[0].String())
}

func TestUnifyComplexInvariantResultIsSubselectorOfBothInputs(t *testing.T) {
	a := NewComplex(NewCompound(Type(nil, "div")), Step{Combinator: Descendant, Compound: NewCompound(Class("a"))})
	b := NewComplex(NewCompound(Type(nil, "section")), Step{Combinator: Descendant, Compound: NewCompound(Class("b"))})
	out, ok := UnifyComplex(a, b)
	require.True(t, ok)
	for _, u := range out.Complexes {
		assert.True(t, IsSuperselectorOf(a, u), "a must be a superselector of the unified result %s", u)
		assert.True(t, IsSuperselectorOf(b, u), "b must be a superselector of the unified result %s", u)
	}
}

func TestWeaveFailsOnContradictoryStrictOrder(t *testing.T) {
	x, y := NewCompound(Class("x")), NewCompound(Class("y"))
	p := NewComplex(x, Step{Combinator: Child, Compound: y}) // .x > .y
	q := NewComplex(y, Step{Combinator: Child, Compound: x}) // .y > .x
	_, ok := weave(p, q)
	assert.False(t, ok, "x>y and y>x can never both hold for the same elements")
}

func TestWeaveAllowsDescendantJoinOfUnrelatedChains(t *testing.T) {
	p := NewComplex(NewCompound(Type(nil, "div")))
	q := NewComplex(NewCompound(Type(nil, "section")))
	out, ok := weave(p, q)
	require.True(t, ok)
	assert.Len(t, out, 2)
}

func TestCombineFinalCombinatorTable(t *testing.T) {
	cases := []struct {
		a, b Combinator
		want Combinator
		ok   bool
	}{
		{Descendant, Descendant, Descendant, true},
		{Descendant, Child, Child, true},
		{Child, Descendant, Child, true},
		{Child, Child, Child, true},
		{Child, Adjacent, 0, false},
		{Sibling, Adjacent, 0, false},
	}
	for _, c := range cases {
		got, ok := combineFinalCombinator(c.a, c.b)
		assert.Equal(t, c.ok, ok)
		if ok {
			assert.Equal(t, c.want, got)
		}
	}
}
