package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cssc-lang/cssc/internal/arena"
	"github.com/cssc-lang/cssc/internal/ast"
	"github.com/cssc-lang/cssc/internal/env"
	"github.com/cssc-lang/cssc/internal/extend"
	"github.com/cssc-lang/cssc/internal/logger"
	"github.com/cssc-lang/cssc/internal/selector"
	"github.com/cssc-lang/cssc/internal/value"
)

func classSelector(name string) selector.List {
	return selector.NewList(selector.NewComplex(selector.NewCompound(selector.Class(name))))
}

func numLit(f float64) ast.Expr { return ast.Literal{Value: value.Number{Val: f}} }

func findDeclaration(t *testing.T, body ast.Block, a *ast.Arena) ast.Declaration {
	t.Helper()
	for _, idx := range body {
		if d, ok := (*a.Get(idx)).(ast.Declaration); ok {
			return d
		}
	}
	t.Fatal("no declaration found in body")
	return ast.Declaration{}
}

func TestEvaluateVariableAndDeclaration(t *testing.T) {
	a := arena.New[ast.Statement]()
	decl := a.Alloc(ast.Declaration{
		Property: ast.PlainInterpolated("width"),
		Value:    ast.VariableRef{Name: "base"},
	})
	ruleset := a.Alloc(ast.Ruleset{
		Selector: classSelector("box"),
		Body:     ast.Block{decl},
	})
	varAssign := a.Alloc(ast.VarAssignment{Name: "base", Value: numLit(10)})

	ev := New(a)
	root := ast.Block{varAssign, ruleset}
	out := ev.Evaluate(root, env.NewRoot())

	require.Len(t, out, 1)
	rs, ok := out[0].(ast.Ruleset)
	require.True(t, ok)
	assert.Equal(t, ".box", rs.Selector.String())

	d := findDeclaration(t, rs.Body, a)
	lit, ok := d.Value.(ast.Literal)
	require.True(t, ok)
	assert.Equal(t, value.Number{Val: 10}, lit.Value)
}

func TestEvaluateNestedRulesetFlattensSelector(t *testing.T) {
	a := arena.New[ast.Statement]()
	innerDecl := a.Alloc(ast.Declaration{Property: ast.PlainInterpolated("color"), Value: ast.Literal{Value: value.String{Text: "red"}}})
	inner := a.Alloc(ast.Ruleset{
		Selector: classSelector("child"),
		Body:     ast.Block{innerDecl},
	})
	outer := a.Alloc(ast.Ruleset{
		Selector: classSelector("parent"),
		Body:     ast.Block{inner},
	})

	ev := New(a)
	out := ev.Evaluate(ast.Block{outer}, env.NewRoot())
	require.Len(t, out, 2)

	parentRule := out[0].(ast.Ruleset)
	assert.Equal(t, ".parent", parentRule.Selector.String())

	childRule := out[1].(ast.Ruleset)
	assert.Equal(t, ".parent .child", childRule.Selector.String())
}

func TestEvaluateIfPicksTruthyBranch(t *testing.T) {
	a := arena.New[ast.Statement]()
	decl := a.Alloc(ast.Declaration{Property: ast.PlainInterpolated("display"), Value: ast.Literal{Value: value.String{Text: "block"}}})
	ifStmt := a.Alloc(ast.If{
		Branches: []ast.IfBranch{
			{Condition: ast.Literal{Value: value.Bool(true)}, Body: ast.Block{decl}},
		},
	})
	ruleset := a.Alloc(ast.Ruleset{Selector: classSelector("x"), Body: ast.Block{ifStmt}})

	ev := New(a)
	out := ev.Evaluate(ast.Block{ruleset}, env.NewRoot())
	require.Len(t, out, 1)
	rs := out[0].(ast.Ruleset)
	require.Len(t, rs.Body, 1)
}

func TestEvaluateForLoopRepeatsBody(t *testing.T) {
	a := arena.New[ast.Statement]()
	decl := a.Alloc(ast.Declaration{Property: ast.PlainInterpolated("order"), Value: ast.VariableRef{Name: "i"}})
	forStmt := a.Alloc(ast.For{
		Var: "i", From: numLit(1), To: numLit(3), Inclusive: true,
		Body: ast.Block{decl},
	})
	ruleset := a.Alloc(ast.Ruleset{Selector: classSelector("x"), Body: ast.Block{forStmt}})

	ev := New(a)
	out := ev.Evaluate(ast.Block{ruleset}, env.NewRoot())
	rs := out[0].(ast.Ruleset)
	assert.Len(t, rs.Body, 3)
}

func TestEvaluateExtendDirectiveIsRecordedAndApplied(t *testing.T) {
	a := arena.New[ast.Statement]()

	extendStmt := a.Alloc(ast.ExtendDirective{Target: selector.NewCompound(selector.Class("err"))})
	warnRule := a.Alloc(ast.Ruleset{Selector: classSelector("warn"), Body: ast.Block{extendStmt}})

	errDecl := a.Alloc(ast.Declaration{Property: ast.PlainInterpolated("color"), Value: ast.Literal{Value: value.String{Text: "red"}}})
	errRule := a.Alloc(ast.Ruleset{Selector: classSelector("err"), Body: ast.Block{errDecl}})

	ev := New(a)
	out := ev.Evaluate(ast.Block{errRule, warnRule}, env.NewRoot())
	require.Len(t, out, 2)

	var directives []extend.Directive = ev.ExtendDirectives()
	require.Len(t, directives, 1)
	assert.Equal(t, selector.Class("err"), directives[0].Extendee.Simples[0])
	assert.False(t, directives[0].Optional)

	grown, unsatisfied := ApplyExtends(out, a, directives)
	assert.Empty(t, unsatisfied)

	errRuleset := grown[0].(ast.Ruleset)
	assert.True(t, errRuleset.Selector.Equal(selector.NewList(
		selector.NewComplex(selector.NewCompound(selector.Class("err"))),
		selector.NewComplex(selector.NewCompound(selector.Class("warn"))),
	)))
}

func TestEvaluateMixinIncludeSplicesDeclarations(t *testing.T) {
	a := arena.New[ast.Statement]()

	mixinDecl := a.Alloc(ast.Declaration{Property: ast.PlainInterpolated("color"), Value: ast.VariableRef{Name: "c"}})
	mixinDef := a.Alloc(ast.MixinDef{
		Name:   "theme",
		Params: []ast.Param{{Name: "c"}},
		Body:   ast.Block{mixinDecl},
	})
	include := a.Alloc(ast.Include{
		Name: "theme",
		Args: []ast.Argument{{Value: ast.Literal{Value: value.String{Text: "blue"}}}},
	})
	ruleset := a.Alloc(ast.Ruleset{Selector: classSelector("box"), Body: ast.Block{mixinDef, include}})

	ev := New(a)
	out := ev.Evaluate(ast.Block{ruleset}, env.NewRoot())
	rs := out[0].(ast.Ruleset)

	d := findDeclaration(t, rs.Body, a)
	val := d.Value.(ast.Literal).Value.(value.String)
	assert.Equal(t, "blue", val.Text)
}

func TestEvaluateNestedMediaQueriesMergeWithAnd(t *testing.T) {
	a := arena.New[ast.Statement]()
	innerDecl := a.Alloc(ast.Declaration{Property: ast.PlainInterpolated("color"), Value: ast.Literal{Value: value.String{Text: "red"}}})
	innerMedia := a.Alloc(ast.MediaRule{
		Query: ast.PlainInterpolated("(min-width: 768px)"),
		Body:  ast.Block{innerDecl},
	})
	ruleset := a.Alloc(ast.Ruleset{Selector: classSelector("box"), Body: ast.Block{innerMedia}})
	outerMedia := a.Alloc(ast.MediaRule{
		Query: ast.PlainInterpolated("screen"),
		Body:  ast.Block{ruleset},
	})

	ev := New(a)
	out := ev.Evaluate(ast.Block{outerMedia}, env.NewRoot())
	require.Len(t, out, 2)

	outerRule := out[0].(ast.MediaRule)
	assert.Equal(t, "screen", outerRule.Query.PlainText())
	require.Len(t, outerRule.Body, 1)
	assert.Equal(t, ".box", (*a.Get(outerRule.Body[0])).(ast.Ruleset).Selector.String())

	mergedRule := out[1].(ast.MediaRule)
	assert.Equal(t, "screen and (min-width: 768px)", mergedRule.Query.PlainText())
}

func TestFatalErrorOnUndefinedVariable(t *testing.T) {
	a := arena.New[ast.Statement]()
	decl := a.Alloc(ast.Declaration{Property: ast.PlainInterpolated("width"), Value: ast.VariableRef{Name: "missing"}})
	ruleset := a.Alloc(ast.Ruleset{Selector: classSelector("x"), Body: ast.Block{decl}})

	ev := New(a)
	defer func() {
		r := recover()
		require.NotNil(t, r)
		msg, ok := IsFatal(r)
		require.True(t, ok)
		assert.Contains(t, msg, "missing")
	}()
	ev.Evaluate(ast.Block{ruleset}, env.NewRoot())
}

func TestFatalErrorCarriesIncludeBacktrace(t *testing.T) {
	a := arena.New[ast.Statement]()
	decl := a.Alloc(ast.Declaration{Property: ast.PlainInterpolated("width"), Value: ast.VariableRef{Name: "missing"}})
	mixinDef := a.Alloc(ast.MixinDef{Name: "broken", Body: ast.Block{decl}})
	include := a.Alloc(ast.Include{Name: "broken"})
	ruleset := a.Alloc(ast.Ruleset{Selector: classSelector("x"), Body: ast.Block{mixinDef, include}})

	ev := New(a)
	defer func() {
		r := recover()
		require.NotNil(t, r)
		msg, ok := IsFatal(r)
		require.True(t, ok)
		assert.Contains(t, msg, "missing")

		trace := FatalBacktrace(r)
		require.Len(t, trace, 1)
		assert.Equal(t, logger.FrameInclude, trace[0].Kind)
		assert.Equal(t, "broken", trace[0].Name)
	}()
	ev.Evaluate(ast.Block{ruleset}, env.NewRoot())
}

func TestFatalErrorOnWhileIterationOverflow(t *testing.T) {
	a := arena.New[ast.Statement]()
	whileStmt := a.Alloc(ast.While{Condition: ast.Literal{Value: value.Bool(true)}})
	ruleset := a.Alloc(ast.Ruleset{Selector: classSelector("x"), Body: ast.Block{whileStmt}})

	ev := New(a)
	defer func() {
		r := recover()
		require.NotNil(t, r)
		_, ok := IsFatal(r)
		require.True(t, ok)
		assert.Equal(t, logger.TagRecursionOverflow, FatalKind(r))
	}()
	ev.Evaluate(ast.Block{ruleset}, env.NewRoot())
}

func TestFatalErrorOnInvalidNestingFusedAmpersandAfterStrictCombinator(t *testing.T) {
	a := arena.New[ast.Statement]()
	innerDecl := a.Alloc(ast.Declaration{Property: ast.PlainInterpolated("color"), Value: ast.Literal{Value: value.String{Text: "red"}}})
	inner := a.Alloc(ast.Ruleset{
		Selector: selector.NewList(selector.NewComplex(selector.NewCompound(selector.Parent(), selector.Class("active")))),
		Body:     ast.Block{innerDecl},
	})
	outer := a.Alloc(ast.Ruleset{
		Selector: selector.NewList(selector.NewComplex(
			selector.NewCompound(selector.Type(nil, "div")),
			selector.Step{Combinator: selector.Child, Compound: selector.NewCompound(selector.Type(nil, "span"))},
		)),
		Body: ast.Block{inner},
	})

	ev := New(a)
	defer func() {
		r := recover()
		require.NotNil(t, r)
		_, ok := IsFatal(r)
		require.True(t, ok)
		assert.Equal(t, logger.TagInvalidNesting, FatalKind(r))
	}()
	ev.Evaluate(ast.Block{outer}, env.NewRoot())
}
