// Package env implements the lexical scope chain of spec §3.5/§4.5: three
// independent namespaces (variables, mixins, functions) per frame, with
// `!default`/`!global` assignment semantics.
//
// Grounded on _examples/evanw-esbuild/internal/js_ast/js_ast.go's Scope
// type (Parent/Children/Members chain-of-frames pattern), generalized from
// one symbol namespace to three, and on original_source/src/environment.hpp
// and original_source/context.cpp for `!default`/`!global` precedence.
package env

import (
	"strings"

	"github.com/cssc-lang/cssc/internal/value"
)

// normalizeName implements spec §4.5: underscores and hyphens are
// interchangeable in variable/mixin/function names. Every namespace key is
// normalized to its hyphenated form on both insert and lookup, so `$a_b`
// and `$a-b` name the same variable.
func normalizeName(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}

// Mixin is a callable mixin definition bound in the mixins namespace. It
// is opaque to this package — internal/evaluator supplies and interprets
// the concrete representation (an ast.MixinDef plus the scope it closed
// over) via the any payload.
type Mixin struct {
	Payload any
}

// Function is a callable user function definition bound in the functions
// namespace, structurally identical in shape to Mixin.
type Function struct {
	Payload any
}

// Scope is one lexical frame: a ruleset body, mixin body, function body,
// or control-flow body, chained to its lexically enclosing frame.
type Scope struct {
	Parent *Scope

	variables map[string]value.Value
	mixins    map[string]Mixin
	functions map[string]Function
}

// NewRoot returns the top-level scope of a compilation, with no parent.
func NewRoot() *Scope {
	return &Scope{}
}

// Push returns a new child scope of s, for entering a nested block.
func (s *Scope) Push() *Scope {
	return &Scope{Parent: s}
}

// GetVariable looks up name in s and its ancestors, returning the nearest
// binding.
func (s *Scope) GetVariable(name string) (value.Value, bool) {
	name = normalizeName(name)
	for f := s; f != nil; f = f.Parent {
		if v, ok := f.variables[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// SetVariable implements plain (non-!default, non-!global) assignment:
// if name is already bound anywhere in the chain, that binding is
// updated in place (Sass variables are mutable in the frame that
// originally declared them); otherwise a new binding is created in s.
func (s *Scope) SetVariable(name string, v value.Value) {
	name = normalizeName(name)
	for f := s; f != nil; f = f.Parent {
		if _, ok := f.variables[name]; ok {
			f.setLocal(name, v)
			return
		}
	}
	s.setLocal(name, v)
}

// SetVariableDefault implements `!default`: assigns only if name is
// unbound in the whole chain, or bound to Null.
func (s *Scope) SetVariableDefault(name string, v value.Value) {
	if existing, ok := s.GetVariable(name); ok {
		if _, isNull := existing.(value.Null); !isNull {
			return
		}
	}
	s.SetVariable(name, v)
}

// SetVariableGlobal implements `!global`: assigns in the root scope
// regardless of which frame the assignment statement appears in.
func (s *Scope) SetVariableGlobal(name string, v value.Value) {
	root := s
	for root.Parent != nil {
		root = root.Parent
	}
	root.setLocal(normalizeName(name), v)
}

func (s *Scope) setLocal(name string, v value.Value) {
	if s.variables == nil {
		s.variables = map[string]value.Value{}
	}
	s.variables[normalizeName(name)] = v
}

// GetMixin looks up a mixin definition by name in s and its ancestors.
func (s *Scope) GetMixin(name string) (Mixin, bool) {
	name = normalizeName(name)
	for f := s; f != nil; f = f.Parent {
		if m, ok := f.mixins[name]; ok {
			return m, true
		}
	}
	return Mixin{}, false
}

// DefineMixin binds name in s's own frame (mixin/function definitions are
// never implicitly hoisted past the frame they're written in, matching
// Sass's actual, if sometimes surprising, scoping rules).
func (s *Scope) DefineMixin(name string, m Mixin) {
	if s.mixins == nil {
		s.mixins = map[string]Mixin{}
	}
	s.mixins[normalizeName(name)] = m
}

// GetFunction looks up a function definition by name in s and its ancestors.
func (s *Scope) GetFunction(name string) (Function, bool) {
	name = normalizeName(name)
	for f := s; f != nil; f = f.Parent {
		if fn, ok := f.functions[name]; ok {
			return fn, true
		}
	}
	return Function{}, false
}

// DefineFunction binds name in s's own frame.
func (s *Scope) DefineFunction(name string, fn Function) {
	if s.functions == nil {
		s.functions = map[string]Function{}
	}
	s.functions[normalizeName(name)] = fn
}
