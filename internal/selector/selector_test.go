package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustUnifySimple(t *testing.T, a, b Simple) Compound {
	t.Helper()
	u, ok := UnifySimple(a, b)
	require.Truef(t, ok, "UnifySimple(%s, %s) unexpectedly failed", a, b)
	return u
}

func TestUnifySimpleClasses(t *testing.T) {
	u := mustUnifySimple(t, Class("a"), Class("b"))
	assert.Equal(t, ".a.b", u.String())
}

func TestUnifySimpleSameClassIdempotent(t *testing.T) {
	u := mustUnifySimple(t, Class("a"), Class("a"))
	assert.Equal(t, ".a", u.String())
}

func TestUnifyTwoDifferentIDsFails(t *testing.T) {
	_, ok := UnifySimple(ID("a"), ID("b"))
	assert.False(t, ok)
}

func TestUnifySameIDSucceeds(t *testing.T) {
	u := mustUnifySimple(t, ID("a"), ID("a"))
	assert.Equal(t, "#a", u.String())
}

func TestUnifyTypeWithUniversal(t *testing.T) {
	u := mustUnifySimple(t, Type(nil, "div"), Universal())
	assert.Equal(t, "div", u.String())
}

func TestUnifyTwoDifferentTypesFails(t *testing.T) {
	_, ok := UnifySimple(Type(nil, "div"), Type(nil, "span"))
	assert.False(t, ok)
}

func TestUnifyCompoundFoldsAllSimples(t *testing.T) {
	a := NewCompound(Type(nil, "div"), Class("a"))
	b := NewCompound(Class("b"), ID("x"))
	u, ok := UnifyCompound(a, b)
	require.True(t, ok)
	assert.Equal(t, "div.a.b#x", u.String())
}

func TestCompoundInsertKeepsTypeFirstPseudoElementLast(t *testing.T) {
	c := NewCompound(Class("a"), Type(nil, "div"), PseudoElement("before"), ID("x"))
	assert.Equal(t, "div.a#x::before", c.String())
}

func TestMinusRemovesSharedSimples(t *testing.T) {
	a := NewCompound(Type(nil, "div"), Class("a"), Class("b"))
	b := NewCompound(Class("a"))
	out := Minus(a, b)
	assert.Equal(t, "div.b", out.String())
}

func TestListEqualIsOrderInsensitive(t *testing.T) {
	a := NewList(
		NewComplex(NewCompound(Class("a"))),
		NewComplex(NewCompound(Class("b"))),
	)
	b := NewList(
		NewComplex(NewCompound(Class("b"))),
		NewComplex(NewCompound(Class("a"))),
	)
	assert.True(t, a.Equal(b))
}

func TestFilteredDropsOnlyPlaceholderSelectors(t *testing.T) {
	l := NewList(
		NewComplex(NewCompound(Placeholder("base"))),
		NewComplex(NewCompound(Class("x"))),
	)
	filtered := l.Filtered()
	require.Len(t, filtered.Complexes, 1)
	assert.Equal(t, ".x", filtered.Complexes[0].String())
	assert.False(t, l.IsAllPlaceholders())
}

func TestIsAllPlaceholdersWhenEveryMemberIsOne(t *testing.T) {
	l := NewList(
		NewComplex(NewCompound(Placeholder("base"))),
		NewComplex(NewCompound(Placeholder("other"))),
	)
	assert.True(t, l.IsAllPlaceholders())
	assert.Empty(t, l.Filtered().Complexes)
}

func TestSuperselectorOfItself(t *testing.T) {
	c := NewComplex(NewCompound(Type(nil, "div")), Step{Combinator: Descendant, Compound: NewCompound(Class("a"))})
	assert.True(t, IsSuperselectorOf(c, c))
}

func TestSuperselectorBroaderMatchesNarrower(t *testing.T) {
	broad := NewComplex(NewCompound(Type(nil, "div")))
	narrow := NewComplex(NewCompound(Type(nil, "div"), Class("active")))
	assert.True(t, IsSuperselectorOf(broad, narrow))
	assert.False(t, IsSuperselectorOf(narrow, broad))
}

func TestSuperselectorSiblingNeverMatchesAcrossDescendant(t *testing.T) {
	// div ~ .x
	a := NewComplex(NewCompound(Type(nil, "div")), Step{Combinator: Sibling, Compound: NewCompound(Class("x"))})
	// div section .x
	b := NewComplex(NewCompound(Type(nil, "div")),
		Step{Combinator: Descendant, Compound: NewCompound(Type(nil, "section"))},
		Step{Combinator: Descendant, Compound: NewCompound(Class("x"))},
	)
	assert.False(t, IsSuperselectorOf(a, b))
}

func TestSuperselectorSiblingMatchesAdjacentOrSibling(t *testing.T) {
	// div ~ .x
	a := NewComplex(NewCompound(Type(nil, "div")), Step{Combinator: Sibling, Compound: NewCompound(Class("x"))})
	// div + .x
	b := NewComplex(NewCompound(Type(nil, "div")), Step{Combinator: Adjacent, Compound: NewCompound(Class("x"))})
	assert.True(t, IsSuperselectorOf(a, b))
}

func TestParentizeAmpersandFusedWithClass(t *testing.T) {
	parents := NewList(NewComplex(NewCompound(Class("parent"))))
	child := NewComplex(NewCompound(Parent(), Class("child")))
	out := Parentize(child, parents)
	require.Len(t, out.Complexes, 1)
	assert.Equal(t, ".parent.child", out.Complexes[0].String())
}

func TestParentizeImplicitDescendantWhenNoAmpersand(t *testing.T) {
	parents := NewList(NewComplex(NewCompound(Type(nil, "div"))))
	child := NewComplex(NewCompound(Class("child")))
	out := Parentize(child, parents)
	require.Len(t, out.Complexes, 1)
	assert.Equal(t, "div .child", out.Complexes[0].String())
}

func TestParentizeFusedAmpersandOnNonDescendantParentPanics(t *testing.T) {
	// parent: div > span
	parent := NewComplex(NewCompound(Type(nil, "div")), Step{Combinator: Child, Compound: NewCompound(Type(nil, "span"))})
	// child: &.active
	child := NewComplex(NewCompound(Parent(), Class("active")))
	assert.Panics(t, func() {
		Parentize(child, NewList(parent))
	})
}

func TestParentizeFusedAmpersandOnDescendantParentSucceeds(t *testing.T) {
	// parent: div span
	parent := NewComplex(NewCompound(Type(nil, "div")), Step{Combinator: Descendant, Compound: NewCompound(Type(nil, "span"))})
	// child: &.active
	child := NewComplex(NewCompound(Parent(), Class("active")))
	out := Parentize(child, NewList(parent))
	require.Len(t, out.Complexes, 1)
	assert.Equal(t, "div span.active", out.Complexes[0].String())
}

func TestSpecificityOrdersIDsAboveClassesAboveTypes(t *testing.T) {
	idOnly := SpecificityOf(NewCompound(ID("x")))
	classOnly := SpecificityOf(NewCompound(Class("x")))
	typeOnly := SpecificityOf(NewCompound(Type(nil, "div")))
	assert.True(t, idOnly.Compare(classOnly) > 0)
	assert.True(t, classOnly.Compare(typeOnly) > 0)
}
