package evaluator

import (
	"fmt"
	"strings"

	"github.com/cssc-lang/cssc/internal/ast"
	"github.com/cssc-lang/cssc/internal/env"
	"github.com/cssc-lang/cssc/internal/helpers"
	"github.com/cssc-lang/cssc/internal/value"
)

// evalExpr evaluates a SassScript expression tree to a runtime value.
// This is the thin slice of spec §1's "numeric expression evaluator...
// out of scope except where values feed declarations or control-flow
// conditions": arithmetic, comparisons, and boolean logic only, no unit
// algebra beyond pass-through.
func (e *Evaluator) evalExpr(expr ast.Expr, scope *env.Scope) value.Value {
	switch x := expr.(type) {
	case ast.Literal:
		return x.Value

	case ast.VariableRef:
		if v, ok := scope.GetVariable(x.Name); ok {
			return v
		}
		panic(fatalError{msg: fmt.Sprintf("undefined variable $%s", x.Name)})

	case ast.UnaryOp:
		return e.evalUnary(x, scope)

	case ast.BinaryOp:
		return e.evalBinary(x, scope)

	case ast.FunctionCall:
		return e.evalCall(x, scope)

	case ast.ListExpr:
		items := make([]value.Value, len(x.Items))
		for i, item := range x.Items {
			items[i] = e.evalExpr(item, scope)
		}
		return value.List{Items: items, Separator: x.Separator}

	case ast.MapExpr:
		keys := make([]value.Value, len(x.Keys))
		values := make([]value.Value, len(x.Values))
		for i := range x.Keys {
			keys[i] = e.evalExpr(x.Keys[i], scope)
			values[i] = e.evalExpr(x.Values[i], scope)
		}
		return value.Map{Keys: keys, Values: values}

	default:
		panic(fmt.Sprintf("evaluator: unhandled expression type %T", x))
	}
}

func (e *Evaluator) evalUnary(x ast.UnaryOp, scope *env.Scope) value.Value {
	v := e.evalExpr(x.Operand, scope)
	switch x.Op {
	case "-":
		n, ok := v.(value.Number)
		if !ok {
			panic(fatalError{msg: fmt.Sprintf("cannot negate %s", v.String())})
		}
		return value.Number{Val: -n.Val, Unit: n.Unit}
	case "not":
		return value.Bool(!v.Truthy())
	default:
		panic(fmt.Sprintf("evaluator: unknown unary operator %q", x.Op))
	}
}

func (e *Evaluator) evalBinary(x ast.BinaryOp, scope *env.Scope) value.Value {
	switch x.Op {
	case "and":
		l := e.evalExpr(x.Left, scope)
		if !l.Truthy() {
			return l
		}
		return e.evalExpr(x.Right, scope)
	case "or":
		l := e.evalExpr(x.Left, scope)
		if l.Truthy() {
			return l
		}
		return e.evalExpr(x.Right, scope)
	}

	l := e.evalExpr(x.Left, scope)
	r := e.evalExpr(x.Right, scope)

	switch x.Op {
	case "==":
		return value.Bool(valuesEqual(l, r))
	case "!=":
		return value.Bool(!valuesEqual(l, r))
	case "<", "<=", ">", ">=":
		return value.Bool(compareNumbers(x.Op, l, r))
	case "+":
		return evalPlus(l, r)
	case "-", "*", "/", "%":
		return evalArith(x.Op, l, r)
	default:
		panic(fmt.Sprintf("evaluator: unknown binary operator %q", x.Op))
	}
}

func valuesEqual(a, b value.Value) bool {
	switch av := a.(type) {
	case value.Number:
		bv, ok := b.(value.Number)
		return ok && av.Val == bv.Val && av.Unit == bv.Unit
	case value.Color:
		bv, ok := b.(value.Color)
		return ok && av.Equal(bv)
	default:
		return a.String() == b.String()
	}
}

func compareNumbers(op string, a, b value.Value) bool {
	an, aok := a.(value.Number)
	bn, bok := b.(value.Number)
	if !aok || !bok {
		panic(fatalError{msg: fmt.Sprintf("cannot compare %s with %s using %s", a.String(), b.String(), op)})
	}
	switch op {
	case "<":
		return an.Val < bn.Val
	case "<=":
		return an.Val <= bn.Val
	case ">":
		return an.Val > bn.Val
	case ">=":
		return an.Val >= bn.Val
	}
	return false
}

// evalPlus implements spec-relevant "+" overloads: numeric addition when
// both sides are numbers, keeping the left operand's unit (or the right's
// when the left is unitless) without checking that the units agree, and
// otherwise concatenation of both operands' text.
func evalPlus(l, r value.Value) value.Value {
	ln, lok := l.(value.Number)
	rn, rok := r.(value.Number)
	if lok && rok {
		unit := ln.Unit
		if unit == "" {
			unit = rn.Unit
		}
		return value.Number{Val: helpers.NewF64(ln.Val).Add(helpers.NewF64(rn.Val)).Value(), Unit: unit}
	}
	return value.String{Text: l.String() + r.String()}
}

func evalArith(op string, l, r value.Value) value.Value {
	ln, lok := l.(value.Number)
	rn, rok := r.(value.Number)
	if !lok || !rok {
		panic(fatalError{msg: fmt.Sprintf("cannot apply %q to %s and %s", op, l.String(), r.String())})
	}
	unit := ln.Unit
	if unit == "" {
		unit = rn.Unit
	}
	a, b := helpers.NewF64(ln.Val), helpers.NewF64(rn.Val)
	switch op {
	case "-":
		return value.Number{Val: a.Sub(b).Value(), Unit: unit}
	case "*":
		return value.Number{Val: a.Mul(b).Value(), Unit: unit}
	case "/":
		if rn.Val == 0 {
			panic(fatalError{msg: "division by zero"})
		}
		return value.Number{Val: a.Div(b).Value(), Unit: unit}
	case "%":
		if rn.Val == 0 {
			panic(fatalError{msg: "modulo by zero"})
		}
		return value.Number{Val: float64(int64(ln.Val) % int64(rn.Val)), Unit: unit}
	}
	panic("unreachable")
}

// evalCall resolves a function call against the user-defined functions
// namespace first, falling back to the small built-in table (see
// builtins.go) of functions that exercise the color/value stack.
func (e *Evaluator) evalCall(x ast.FunctionCall, scope *env.Scope) value.Value {
	if fn, ok := scope.GetFunction(x.Name); ok {
		c := fn.Payload.(closure)
		return e.evalFunctionCall(x.Name, c, x.Args, scope)
	}

	args := make([]value.Value, len(x.Args))
	for i, a := range x.Args {
		args[i] = e.evalExpr(a.Value, scope)
	}
	if builtin, ok := builtins[strings.ToLower(x.Name)]; ok {
		return builtin(args)
	}
	panic(fatalError{msg: fmt.Sprintf("undefined function %q", x.Name)})
}
