package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cssc-lang/cssc/internal/ast"
	"github.com/cssc-lang/cssc/internal/selector"
	"github.com/cssc-lang/cssc/internal/value"
)

func TestDecodeRulesetWithDeclaration(t *testing.T) {
	block, arena, err := Decode([]byte(`[
		{"type":"rule","selector":".box","body":[
			{"type":"decl","property":"color","value":{"t":"color","hex":"#ff0000"}}
		]}
	]`))
	require.NoError(t, err)
	require.Len(t, block, 1)

	ruleset, ok := (*arena.Get(block[0])).(ast.Ruleset)
	require.True(t, ok)
	assert.Equal(t, "box", ruleset.Selector.Complexes[0].Head.Simples[0].Name)
	require.Len(t, ruleset.Body, 1)

	decl, ok := (*arena.Get(ruleset.Body[0])).(ast.Declaration)
	require.True(t, ok)
	assert.Equal(t, "color", decl.Property.PlainText())
	lit := decl.Value.(ast.Literal)
	c := lit.Value.(value.Color)
	assert.Equal(t, uint8(255), c.R)
	assert.True(t, c.HasOriginal)
}

func TestDecodeNestedSelectorAndParentRef(t *testing.T) {
	block, arena, err := Decode([]byte(`[
		{"type":"rule","selector":".card","body":[
			{"type":"rule","selector":"&.active, &:hover","body":[]}
		]}
	]`))
	require.NoError(t, err)
	outer := (*arena.Get(block[0])).(ast.Ruleset)
	inner := (*arena.Get(outer.Body[0])).(ast.Ruleset)
	require.Len(t, inner.Selector.Complexes, 2)
	assert.Equal(t, selector.KindParent, inner.Selector.Complexes[0].Head.Simples[0].Kind)
}

func TestDecodeVarAndArithmeticExpr(t *testing.T) {
	block, arena, err := Decode([]byte(`[
		{"type":"var","name":"base","value":{"t":"num","num":10,"unit":"px"}},
		{"type":"decl","property":"width","value":{
			"t":"bin","op":"+","left":{"t":"var","name":"base"},"right":{"t":"num","num":5,"unit":"px"}
		}}
	]`))
	require.NoError(t, err)
	require.Len(t, block, 2)

	varAssign := (*arena.Get(block[0])).(ast.VarAssignment)
	assert.Equal(t, "base", varAssign.Name)
	n := varAssign.Value.(ast.Literal).Value.(value.Number)
	assert.Equal(t, 10.0, n.Val)

	decl := (*arena.Get(block[1])).(ast.Declaration)
	bin := decl.Value.(ast.BinaryOp)
	assert.Equal(t, "+", bin.Op)
	assert.Equal(t, "base", bin.Left.(ast.VariableRef).Name)
}

func TestDecodeMixinIncludeAndExtend(t *testing.T) {
	block, arena, err := Decode([]byte(`[
		{"type":"mixin","name":"rounded","params":[{"name":"radius","default":{"t":"num","num":4,"unit":"px"}}],
			"body":[{"type":"decl","property":"border-radius","value":{"t":"var","name":"radius"}}]},
		{"type":"rule","selector":".btn","body":[
			{"type":"include","name":"rounded","args":[{"value":{"t":"num","num":8,"unit":"px"}}]},
			{"type":"extend","target":".base","optional":true}
		]}
	]`))
	require.NoError(t, err)
	require.Len(t, block, 2)

	mixin := (*arena.Get(block[0])).(ast.MixinDef)
	assert.Equal(t, "rounded", mixin.Name)
	require.Len(t, mixin.Params, 1)
	assert.Equal(t, "radius", mixin.Params[0].Name)

	rule := (*arena.Get(block[1])).(ast.Ruleset)
	include := (*arena.Get(rule.Body[0])).(ast.Include)
	assert.Equal(t, "rounded", include.Name)
	require.Len(t, include.Args, 1)

	extend := (*arena.Get(rule.Body[1])).(ast.ExtendDirective)
	assert.True(t, extend.Optional)
	assert.Equal(t, "base", extend.Target.Simples[0].Name)
}

func TestDecodeRejectsUnknownStatementType(t *testing.T) {
	_, _, err := Decode([]byte(`[{"type":"bogus"}]`))
	assert.Error(t, err)
}
