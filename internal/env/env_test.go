package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cssc-lang/cssc/internal/value"
)

func TestSetVariableUpdatesExistingBindingInAncestor(t *testing.T) {
	root := NewRoot()
	root.SetVariable("x", value.Number{Val: 1})
	child := root.Push()
	child.SetVariable("x", value.Number{Val: 2})

	got, ok := root.GetVariable("x")
	require.True(t, ok)
	assert.Equal(t, value.Number{Val: 2}, got)
}

func TestSetVariableCreatesLocalWhenUnbound(t *testing.T) {
	root := NewRoot()
	child := root.Push()
	child.SetVariable("y", value.Number{Val: 5})

	_, rootHas := root.GetVariable("y")
	assert.False(t, rootHas)

	got, ok := child.GetVariable("y")
	require.True(t, ok)
	assert.Equal(t, value.Number{Val: 5}, got)
}

func TestSetVariableDefaultSkipsWhenAlreadyBound(t *testing.T) {
	root := NewRoot()
	root.SetVariable("z", value.Number{Val: 1})
	root.SetVariableDefault("z", value.Number{Val: 99})

	got, _ := root.GetVariable("z")
	assert.Equal(t, value.Number{Val: 1}, got)
}

func TestSetVariableDefaultAppliesWhenNull(t *testing.T) {
	root := NewRoot()
	root.SetVariable("z", value.Null{})
	root.SetVariableDefault("z", value.Number{Val: 99})

	got, _ := root.GetVariable("z")
	assert.Equal(t, value.Number{Val: 99}, got)
}

func TestSetVariableGlobalAssignsAtRoot(t *testing.T) {
	root := NewRoot()
	mid := root.Push()
	leaf := mid.Push()

	leaf.SetVariableGlobal("g", value.Number{Val: 7})

	got, ok := root.GetVariable("g")
	require.True(t, ok)
	assert.Equal(t, value.Number{Val: 7}, got)
}

func TestMixinLookupWalksAncestors(t *testing.T) {
	root := NewRoot()
	root.DefineMixin("button", Mixin{Payload: "button-body"})
	child := root.Push()

	m, ok := child.GetMixin("button")
	require.True(t, ok)
	assert.Equal(t, "button-body", m.Payload)
}

func TestVariableNameUnderscoreAndHyphenAreInterchangeable(t *testing.T) {
	root := NewRoot()
	root.SetVariable("font_size", value.Number{Val: 16})

	got, ok := root.GetVariable("font-size")
	require.True(t, ok)
	assert.Equal(t, value.Number{Val: 16}, got)

	root.SetVariable("font-size", value.Number{Val: 18})
	got, ok = root.GetVariable("font_size")
	require.True(t, ok)
	assert.Equal(t, value.Number{Val: 18}, got)
}

func TestMixinAndFunctionNameUnderscoreAndHyphenAreInterchangeable(t *testing.T) {
	root := NewRoot()
	root.DefineMixin("flex_center", Mixin{Payload: "centered"})
	m, ok := root.GetMixin("flex-center")
	require.True(t, ok)
	assert.Equal(t, "centered", m.Payload)

	root.DefineFunction("to-rem", Function{Payload: "rem-fn"})
	fn, ok := root.GetFunction("to_rem")
	require.True(t, ok)
	assert.Equal(t, "rem-fn", fn.Payload)
}
