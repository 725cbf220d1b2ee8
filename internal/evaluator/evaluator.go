// Package evaluator implements spec §4.2: the depth-first, single-
// threaded, preorder walk that turns a parsed statement tree into a flat
// sequence of plain CSS constructs (rulesets, declarations, at-rules),
// resolving variables, mixins, functions, control flow, nested-selector
// flattening (via internal/selector.Parentize), and @extend bookkeeping
// along the way.
//
// Grounded on _examples/evanw-esbuild/internal/css_parser/css_nesting.go's
// selector-list flattening pass, generalized from CSS nesting's native "&"
// handling to the spec's full control-flow/variable/mixin/function
// evaluation; @media/@supports/@keyframes bubbling is grounded on
// original_source/context.cpp's bubble handling.
package evaluator

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/cssc-lang/cssc/internal/ast"
	"github.com/cssc-lang/cssc/internal/env"
	"github.com/cssc-lang/cssc/internal/extend"
	"github.com/cssc-lang/cssc/internal/logger"
	"github.com/cssc-lang/cssc/internal/selector"
	"github.com/cssc-lang/cssc/internal/value"
)

// Diagnostics collects the user-facing warnings/errors a compilation
// produces (the §4.2 "@warn"/"@error"/"@debug" directives). Unsatisfied
// non-optional @extend targets are not recorded here: ApplyExtends returns
// them to its caller. internal/logger
// owns the terminal-facing rendering of these; this package only records
// the raw facts.
type Diagnostics struct {
	Warnings []string
	Debugs   []string
	Errors   []string
}

// fatalError aborts the current compilation: `@error` and an unresolved
// function/mixin name are both unrecoverable per spec §4.2. trace
// accumulates as the panic unwinds through evalInclude/evalFunctionCall,
// each adding its own call frame, so by the time Compile recovers it the
// error carries the full mixin/function/include chain spec §7 calls for.
type fatalError struct {
	msg   string
	trace logger.Backtrace
	kind  logger.DiagnosticKind
}

func (e fatalError) Error() string { return e.msg }

// closure pairs a definition's body with the scope it captured at
// definition time, giving mixins and functions proper lexical scoping
// (spec §4.5) rather than dynamic scoping from the call site.
type closure struct {
	params []ast.Param
	body   ast.Block
	scope  *env.Scope
}

// contentFrame is the `@content` substitution context pushed when a mixin
// call carries a block.
type contentFrame struct {
	body  ast.Block
	scope *env.Scope
}

// Importer resolves a `@import` target to the statement block of an
// already-parsed file, the evaluator's half of spec §6's "Source loader"
// external interface: the loader locates and reads the file, but parsing
// its contents is the (also external) parser's job, so this interface's
// single method covers both steps rather than splitting them at a seam
// the evaluator has no use for. Resolve reports ok=false when it cannot
// produce a block for the target, which the evaluator treats as a fatal
// "import not found" error.
type Importer interface {
	Resolve(path, fromDir string) (body ast.Block, ok bool)
}

// Evaluator walks one compilation's statement tree. It is not safe for
// concurrent use — per spec §5 a compilation runs start to finish on one
// goroutine, matching internal/arena's single-owner contract.
type Evaluator struct {
	arena    *ast.Arena
	diag     Diagnostics
	importer Importer
	fromDir  string

	extendDirectives []extend.Directive
	contentStack     []contentFrame
	returning        *value.Value // non-nil while unwinding a @return
	mediaStack       []string     // enclosing @media query texts, innermost last
}

// New returns an Evaluator over statements allocated in arena.
func New(arena *ast.Arena) *Evaluator {
	return &Evaluator{arena: arena}
}

// NewWithImporter returns an Evaluator that inlines `@import` targets
// Resolve finds, per spec §6, instead of always passing them through as
// literal CSS. fromDir is the entry file's own directory, tried before
// importer's configured include directories; nested imports (an imported
// file that itself has an `@import`) resolve relative to this same
// fromDir rather than their own file's directory — a deliberate
// simplification for a single-pass evaluator that doesn't thread a
// per-frame working directory through evalBlock.
func NewWithImporter(arena *ast.Arena, importer Importer, fromDir string) *Evaluator {
	return &Evaluator{arena: arena, importer: importer, fromDir: fromDir}
}

// Diagnostics returns every @warn/@debug/@error message recorded so far.
func (e *Evaluator) Diagnostics() Diagnostics { return e.diag }

// ExtendDirectives returns every @extend directive recorded while walking
// the tree, ready for extend.BuildMap.
func (e *Evaluator) ExtendDirectives() []extend.Directive { return e.extendDirectives }

// Evaluate walks root (the stylesheet's top-level statement block) and
// returns the flattened sequence of plain statements ready for
// ApplyExtends and internal/printer. scope should be env.NewRoot().
func (e *Evaluator) Evaluate(root ast.Block, scope *env.Scope) []ast.Statement {
	return e.evalBlock(root, scope, 0, selector.List{})
}

// evalBlock walks one statement block, splicing any output it produces
// into a returned flat slice. depth and parents track the current
// selector-nesting context for indentation (depth) and "&" resolution
// (parents); both are threaded unchanged through control-flow bodies,
// since `@if`/`@for`/etc. don't introduce a new selector nesting level.
func (e *Evaluator) evalBlock(block ast.Block, scope *env.Scope, depth int, parents selector.List) []ast.Statement {
	var out []ast.Statement
	var decls []ast.Statement // declarations accumulated for the *enclosing* ruleset

	for _, idx := range block {
		if e.returning != nil {
			return out
		}
		stmt := *e.arena.Get(idx)
		switch s := stmt.(type) {
		case ast.VarAssignment:
			e.evalVarAssignment(s, scope)

		case ast.Declaration:
			d := e.evalDeclaration(s, scope).(ast.Declaration)
			if _, isNull := d.Value.(ast.Literal).Value.(value.Null); isNull {
				continue
			}
			decls = append(decls, d)

		case ast.Ruleset:
			out = append(out, e.evalRuleset(s, scope, depth, parents)...)

		case ast.ExtendDirective:
			e.extendDirectives = append(e.extendDirectives, extend.Directive{
				Extender: parents,
				Extendee: s.Target,
				Optional: s.Optional,
			})

		case ast.MediaRule:
			out = append(out, e.evalMediaRule(s, scope, depth, parents)...)

		case ast.SupportsRule:
			out = append(out, e.evalBubbled(s.Condition, s.Body, scope, depth, parents, func(q ast.Interpolated, b ast.Block) ast.Statement {
				return ast.SupportsRule{Condition: q, Body: e.blockOf(b)}
			})...)

		case ast.AtRootRule:
			inner := e.evalBlock(s.Body, scope, 0, selector.List{})
			out = append(out, inner...)

		case ast.AtRule:
			out = append(out, s)

		case ast.KeyframesRule, ast.CommentNode:
			out = append(out, s)

		case ast.Import:
			out = append(out, e.evalImport(s, scope, depth, parents)...)

		case ast.MixinDef:
			scope.DefineMixin(s.Name, env.Mixin{Payload: closure{params: s.Params, body: s.Body, scope: scope}})

		case ast.FunctionDef:
			scope.DefineFunction(s.Name, env.Function{Payload: closure{params: s.Params, body: s.Body, scope: scope}})

		case ast.Include:
			out = append(out, e.evalInclude(s, scope, depth, parents)...)

		case ast.ContentDirective:
			if len(e.contentStack) > 0 {
				top := e.contentStack[len(e.contentStack)-1]
				out = append(out, e.evalBlock(top.body, top.scope, depth, parents)...)
			}

		case ast.Return:
			v := e.evalExpr(s.Value, scope)
			e.returning = &v
			return out

		case ast.If:
			out = append(out, e.evalIf(s, scope, depth, parents)...)

		case ast.For:
			out = append(out, e.evalFor(s, scope, depth, parents)...)

		case ast.Each:
			out = append(out, e.evalEach(s, scope, depth, parents)...)

		case ast.While:
			out = append(out, e.evalWhile(s, scope, depth, parents)...)

		case ast.Warn:
			e.diag.Warnings = append(e.diag.Warnings, value.ToGoString(e.evalExpr(s.Message, scope)))

		case ast.Debug:
			e.diag.Debugs = append(e.diag.Debugs, value.ToGoString(e.evalExpr(s.Message, scope)))

		case ast.ErrorDirective:
			msg := value.ToGoString(e.evalExpr(s.Message, scope))
			e.diag.Errors = append(e.diag.Errors, msg)
			panic(fatalError{msg: msg})

		default:
			panic(fmt.Sprintf("evaluator: unhandled statement type %T", s))
		}
	}

	if len(decls) > 0 {
		// Declarations come after everything else this block produced.
		// Inside a ruleset body (including a mixin body reached through
		// evalInclude) splitRulesetBody keeps them as that ruleset's own;
		// at the top level they are returned as-is and printed bare.
		out = append(out, decls...)
	}
	return out
}

// blockOf re-allocates a flat statement slice back into the arena as a
// Block, so it can be attached to a new MediaRule/SupportsRule/Ruleset node.
func (e *Evaluator) blockOf(stmts []ast.Statement) ast.Block {
	out := make(ast.Block, len(stmts))
	for i, s := range stmts {
		out[i] = e.arena.Alloc(s)
	}
	return out
}

func (e *Evaluator) evalVarAssignment(s ast.VarAssignment, scope *env.Scope) {
	v := e.evalExpr(s.Value, scope)
	switch {
	case s.Default:
		scope.SetVariableDefault(s.Name, v)
	case s.Global:
		scope.SetVariableGlobal(s.Name, v)
	default:
		scope.SetVariable(s.Name, v)
	}
}

func (e *Evaluator) evalDeclaration(s ast.Declaration, scope *env.Scope) ast.Statement {
	v := e.evalExpr(s.Value, scope)
	return ast.Declaration{
		Property:  ast.PlainInterpolated(e.evalInterpolated(s.Property, scope)),
		Value:     ast.Literal{Value: v},
		Important: s.Important,
		Loc:       s.Loc,
	}
}

// evalRuleset flattens one nested ruleset: its selector is parentized
// against the enclosing selector list (spec §4.1.7), its own body is
// walked one nesting level deeper collecting both further nested rulesets
// (spliced as additional top-level outputs) and its own declarations.
func (e *Evaluator) evalRuleset(s ast.Ruleset, scope *env.Scope, depth int, parents selector.List) []ast.Statement {
	flattened := s.Selector
	if len(parents.Complexes) > 0 {
		var grown []selector.Complex
		for _, c := range s.Selector.Complexes {
			grown = append(grown, e.parentize(c, parents).Complexes...)
		}
		flattened = selector.List{Complexes: grown}.Dedup()
	}

	child := scope.Push()
	own, nested := e.splitRulesetBody(s.Body, child, depth+1, flattened)

	var out []ast.Statement
	out = append(out, ast.Ruleset{Selector: flattened, Body: e.blockOf(own), Depth: depth, Loc: s.Loc})
	out = append(out, nested...)
	return out
}

// parentize calls selector.Parentize, reclassifying a panicked
// selector.InvalidNestingError (§4.1.7's fused-"&"-on-non-descendant-parent
// case) as this package's own fatalError so it carries TagInvalidNesting
// through the same recover/backtrace path as every other fatal condition.
func (e *Evaluator) parentize(c selector.Complex, parents selector.List) (result selector.List) {
	defer func() {
		if r := recover(); r != nil {
			if ie, ok := r.(selector.InvalidNestingError); ok {
				panic(fatalError{msg: ie.Error(), kind: logger.TagInvalidNesting})
			}
			panic(r)
		}
	}()
	return selector.Parentize(c, parents)
}

// splitRulesetBody walks a ruleset's body and separates declarations meant
// to stay inside this ruleset from anything (nested rulesets, at-rules)
// that must become its own sibling top-level output.
func (e *Evaluator) splitRulesetBody(body ast.Block, scope *env.Scope, depth int, parents selector.List) (own []ast.Statement, nested []ast.Statement) {
	all := e.evalBlock(body, scope, depth, parents)
	for _, s := range all {
		switch s.(type) {
		case ast.Declaration, ast.CommentNode:
			own = append(own, s)
		default:
			nested = append(nested, s)
		}
	}
	return own, nested
}

// evalBubbled implements @supports "bubbling": nested rulesets discovered
// while walking the body are hoisted out so they become direct children of
// the at-rule wrapper (matching CSS's inability to nest an at-rule inside a
// style rule's block), per original_source/context.cpp. @media uses
// evalMediaRule instead, which additionally merges nested @media queries.
func (e *Evaluator) evalBubbled(query ast.Interpolated, body ast.Block, scope *env.Scope, depth int, parents selector.List, wrap func(ast.Interpolated, ast.Block) ast.Statement) []ast.Statement {
	resolvedQuery := ast.PlainInterpolated(e.evalInterpolated(query, scope))
	inner := e.evalBlock(body, scope.Push(), depth, parents)
	return []ast.Statement{wrap(resolvedQuery, inner)}
}

// evalMediaRule implements the SUPPLEMENTED FEATURES `@media` bubbling rule:
// a `@media` nested inside another `@media` merges its query with the
// enclosing one using "and" instead of printing as invalid nested
// `@media { @media { ... } }` CSS, per original_source/context.cpp's bubble
// handling. e.mediaStack tracks the already-merged query text of every
// enclosing @media while the body is walked, so a doubly (or deeper)
// nested @media merges against its own immediate parent's merged text, not
// just the outermost one. Any already-wrapped MediaRule surfacing out of
// the body (from such a nested @media, bubbled up through an intervening
// ruleset by splitRulesetBody) is passed through untouched rather than
// wrapped again.
func (e *Evaluator) evalMediaRule(s ast.MediaRule, scope *env.Scope, depth int, parents selector.List) []ast.Statement {
	queryText := e.evalInterpolated(s.Query, scope)
	merged := queryText
	if n := len(e.mediaStack); n > 0 {
		merged = e.mediaStack[n-1] + " and " + queryText
	}

	e.mediaStack = append(e.mediaStack, merged)
	inner := e.evalBlock(s.Body, scope.Push(), depth, parents)
	e.mediaStack = e.mediaStack[:len(e.mediaStack)-1]

	var own []ast.Statement
	var bubbled []ast.Statement
	for _, st := range inner {
		if mr, ok := st.(ast.MediaRule); ok {
			bubbled = append(bubbled, mr)
			continue
		}
		own = append(own, st)
	}

	out := []ast.Statement{ast.MediaRule{Query: ast.PlainInterpolated(merged), Body: e.blockOf(own)}}
	return append(out, bubbled...)
}

// evalImport implements spec §6's "Source loader": a plain CSS import
// (url(...), a ".css" target, or one carrying a media query) always
// passes through unevaluated, matching real Sass's own rule that those
// forms are never inlined. Anything else is resolved via e.importer, if
// one was configured, and inlined in place; a target the importer cannot
// resolve is a fatal error tagged logger.TagImportNotFound. With no
// importer configured, every @import passes through unevaluated.
func (e *Evaluator) evalImport(s ast.Import, scope *env.Scope, depth int, parents selector.List) []ast.Statement {
	if e.importer == nil || !s.MediaQuery.IsPlainLiteral() || s.MediaQuery.PlainText() != "" {
		return []ast.Statement{s}
	}

	var passThrough []ast.Interpolated
	var out []ast.Statement
	for _, u := range s.URLs {
		if !u.IsPlainLiteral() {
			passThrough = append(passThrough, u)
			continue
		}
		path := u.PlainText()
		if strings.HasSuffix(path, ".css") || strings.HasPrefix(strings.TrimSpace(path), "url(") {
			passThrough = append(passThrough, u)
			continue
		}
		body, ok := e.importer.Resolve(path, e.fromDir)
		if !ok {
			panic(fatalError{
				msg:  fmt.Sprintf("import not found: %q", path),
				kind: logger.TagImportNotFound,
			})
		}
		out = append(out, e.evalBlock(body, scope, depth, parents)...)
	}
	if len(passThrough) > 0 {
		out = append(out, ast.Import{URLs: passThrough, MediaQuery: s.MediaQuery})
	}
	return out
}

func (e *Evaluator) evalIf(s ast.If, scope *env.Scope, depth int, parents selector.List) []ast.Statement {
	for _, branch := range s.Branches {
		if e.evalExpr(branch.Condition, scope).Truthy() {
			return e.evalBlock(branch.Body, scope.Push(), depth, parents)
		}
	}
	if s.HasElse {
		return e.evalBlock(s.Else, scope.Push(), depth, parents)
	}
	return nil
}

func (e *Evaluator) evalFor(s ast.For, scope *env.Scope, depth int, parents selector.List) []ast.Statement {
	from := e.mustNumber(e.evalExpr(s.From, scope))
	to := e.mustNumber(e.evalExpr(s.To, scope))

	var out []ast.Statement
	step := 1.0
	if to < from {
		step = -1.0
	}
	for i := from; (step > 0 && i <= to) || (step < 0 && i >= to); i += step {
		if !s.Inclusive && i == to {
			break
		}
		child := scope.Push()
		child.SetVariable(s.Var, value.Number{Val: i})
		out = append(out, e.evalBlock(s.Body, child, depth, parents)...)
		if e.returning != nil {
			break
		}
	}
	return out
}

func (e *Evaluator) evalEach(s ast.Each, scope *env.Scope, depth int, parents selector.List) []ast.Statement {
	listVal := e.evalExpr(s.List, scope)
	items := asIterable(listVal)

	var out []ast.Statement
	for _, item := range items {
		child := scope.Push()
		bindEachVars(child, s.Vars, item)
		out = append(out, e.evalBlock(s.Body, child, depth, parents)...)
		if e.returning != nil {
			break
		}
	}
	return out
}

// evalWhile enforces spec §4.2/§5's iteration depth limit (design: 1024
// frames): a `@while` that never becomes falsy is a fatal error, not a
// silently truncated result, matching §7's "Recursion overflow ... fatal"
// row.
func (e *Evaluator) evalWhile(s ast.While, scope *env.Scope, depth int, parents selector.List) []ast.Statement {
	var out []ast.Statement
	const maxIterations = 1024
	i := 0
	for ; i < maxIterations; i++ {
		if !e.evalExpr(s.Condition, scope).Truthy() {
			break
		}
		out = append(out, e.evalBlock(s.Body, scope.Push(), depth, parents)...)
		if e.returning != nil {
			break
		}
	}
	if i == maxIterations {
		panic(fatalError{
			msg:  fmt.Sprintf("@while loop exceeded the maximum of %d iterations", maxIterations),
			kind: logger.TagRecursionOverflow,
		})
	}
	return out
}

// evalInclude resolves `@include name(args) { content }` against the
// mixin's defining (lexical) scope, not the call site's scope, binding
// parameters and pushing a content frame when the call carries a block.
func (e *Evaluator) evalInclude(s ast.Include, callerScope *env.Scope, depth int, parents selector.List) (out []ast.Statement) {
	m, ok := callerScope.GetMixin(s.Name)
	if !ok {
		panic(fatalError{msg: fmt.Sprintf("undefined mixin %q", s.Name)})
	}
	c := m.Payload.(closure)

	callScope := c.scope.Push()
	e.bindArgs(c.params, s.Args, callerScope, callScope)

	if s.HasContent {
		e.contentStack = append(e.contentStack, contentFrame{body: s.ContentBody, scope: callerScope})
		defer func() { e.contentStack = e.contentStack[:len(e.contentStack)-1] }()
	}

	defer pushFrameOnUnwind(logger.Frame{Kind: logger.FrameInclude, Name: s.Name})

	return e.evalBlock(c.body, callScope, depth, parents)
}

// pushFrameOnUnwind, deferred around a mixin/function call's body walk,
// annotates a propagating fatalError with frame before re-panicking. The
// backtrace builds up one frame per call boundary the panic crosses,
// innermost first, without the evaluator threading an explicit call stack
// through every method.
func pushFrameOnUnwind(frame logger.Frame) {
	if r := recover(); r != nil {
		if fe, ok := r.(fatalError); ok {
			fe.trace = append(append(logger.Backtrace(nil), fe.trace...), frame)
			panic(fe)
		}
		panic(r)
	}
}

// evalFunctionCall resolves a user @function call to its return value,
// executing its body for side effects (variable assignment, control flow)
// until a @return is hit.
func (e *Evaluator) evalFunctionCall(name string, fn closure, args []ast.Argument, callerScope *env.Scope) value.Value {
	callScope := fn.scope.Push()
	e.bindArgs(fn.params, args, callerScope, callScope)

	savedReturning := e.returning
	e.returning = nil
	func() {
		defer pushFrameOnUnwind(logger.Frame{Kind: logger.FrameFunction, Name: name})
		e.evalBlock(fn.body, callScope, 0, selector.List{})
	}()
	result := e.returning
	e.returning = savedReturning

	if result == nil {
		panic(fatalError{msg: fmt.Sprintf("function %q finished without @return", name)})
	}
	return *result
}

// bindArgs binds positional and named arguments to a callable's formal
// parameters, applying parameter defaults for anything left unbound.
func (e *Evaluator) bindArgs(params []ast.Param, args []ast.Argument, callerScope, callScope *env.Scope) {
	named := map[string]ast.Expr{}
	var positional []ast.Expr
	for _, a := range args {
		if a.Name != "" {
			named[a.Name] = a.Value
		} else {
			positional = append(positional, a.Value)
		}
	}

	pi := 0
	for _, p := range params {
		if p.Variadic {
			var rest []value.Value
			for ; pi < len(positional); pi++ {
				rest = append(rest, e.evalExpr(positional[pi], callerScope))
			}
			callScope.SetVariable(p.Name, value.List{Items: rest, Separator: value.CommaSeparated})
			continue
		}
		if expr, ok := named[p.Name]; ok {
			callScope.SetVariable(p.Name, e.evalExpr(expr, callerScope))
			continue
		}
		if pi < len(positional) {
			callScope.SetVariable(p.Name, e.evalExpr(positional[pi], callerScope))
			pi++
			continue
		}
		if p.Default != nil {
			callScope.SetVariable(p.Name, e.evalExpr(p.Default, callScope))
			continue
		}
		panic(fatalError{msg: fmt.Sprintf("missing argument $%s", p.Name)})
	}
}

func (e *Evaluator) evalInterpolated(ip ast.Interpolated, scope *env.Scope) string {
	if ip.IsPlainLiteral() {
		return ip.PlainText()
	}
	var out string
	for _, p := range ip.Parts {
		if p.Expr == nil {
			out += p.Literal
			continue
		}
		out += value.ToGoString(e.evalExpr(p.Expr, scope))
	}
	return out
}

func (e *Evaluator) mustNumber(v value.Value) float64 {
	n, ok := v.(value.Number)
	if !ok {
		panic(fatalError{msg: fmt.Sprintf("expected a number, got %s", v.String())})
	}
	return n.Val
}

func asIterable(v value.Value) []value.Value {
	switch t := v.(type) {
	case value.List:
		return t.Items
	case value.Map:
		out := make([]value.Value, len(t.Keys))
		for i := range t.Keys {
			out[i] = value.List{Items: []value.Value{t.Keys[i], t.Values[i]}, Separator: value.SpaceSeparated}
		}
		return out
	default:
		return []value.Value{v}
	}
}

func bindEachVars(scope *env.Scope, names []string, item value.Value) {
	if len(names) == 1 {
		scope.SetVariable(names[0], item)
		return
	}
	list, ok := item.(value.List)
	if !ok {
		scope.SetVariable(names[0], item)
		return
	}
	for i, name := range names {
		if i < len(list.Items) {
			scope.SetVariable(name, list.Items[i])
		} else {
			scope.SetVariable(name, value.Null{})
		}
	}
}

// ApplyExtends implements the post-walk half of spec §4.3: build the
// extend map from every recorded directive, grow each ruleset's selector
// list in place, and prune now-redundant placeholder-only members. It
// walks nested Ruleset statements inside MediaRule/SupportsRule bodies too,
// since @extend can reach a ruleset bubbled under either.
func ApplyExtends(top []ast.Statement, arena *ast.Arena, directives []extend.Directive) ([]ast.Statement, []extend.Directive) {
	m := extend.BuildMap(directives)

	var allLists []selector.List
	walkRulesets(top, arena, func(r *ast.Ruleset) { allLists = append(allLists, r.Selector) })
	unsatisfied := m.Unsatisfied(allLists)

	out := make([]ast.Statement, len(top))
	for i, s := range top {
		out[i] = rewriteExtends(s, arena, m)
	}
	return out, unsatisfied
}

func rewriteExtends(s ast.Statement, arena *ast.Arena, m extend.Map) ast.Statement {
	switch r := s.(type) {
	case ast.Ruleset:
		grown := extend.Apply(r.Selector, m)
		pruned, _ := extend.PrunePlaceholders(grown)
		r.Selector = pruned
		return r
	case ast.MediaRule:
		r.Body = rewriteBlock(r.Body, arena, m)
		return r
	case ast.SupportsRule:
		r.Body = rewriteBlock(r.Body, arena, m)
		return r
	default:
		return s
	}
}

func rewriteBlock(block ast.Block, arena *ast.Arena, m extend.Map) ast.Block {
	out := make(ast.Block, len(block))
	for i, idx := range block {
		rewritten := rewriteExtends(*arena.Get(idx), arena, m)
		out[i] = arena.Alloc(rewritten)
	}
	return out
}

func walkRulesets(stmts []ast.Statement, arena *ast.Arena, visit func(*ast.Ruleset)) {
	for _, s := range stmts {
		switch r := s.(type) {
		case ast.Ruleset:
			rCopy := r
			visit(&rCopy)
		case ast.MediaRule:
			walkBlockRulesets(r.Body, arena, visit)
		case ast.SupportsRule:
			walkBlockRulesets(r.Body, arena, visit)
		}
	}
}

func walkBlockRulesets(block ast.Block, arena *ast.Arena, visit func(*ast.Ruleset)) {
	for _, idx := range block {
		if r, ok := (*arena.Get(idx)).(ast.Ruleset); ok {
			rCopy := r
			visit(&rCopy)
		}
	}
}

// IsFatal reports whether err (as returned from a recovered panic while
// running Evaluate) represents an intentional `@error`/unresolved-name
// abort rather than a genuine implementation bug.
func IsFatal(v any) (string, bool) {
	if fe, ok := v.(fatalError); ok {
		return fe.msg, true
	}
	return "", false
}

// FatalBacktrace returns the mixin/function/include call chain recorded
// against a recovered fatal panic, innermost frame first.
func FatalBacktrace(v any) logger.Backtrace {
	if fe, ok := v.(fatalError); ok {
		return fe.trace
	}
	return nil
}

// FatalKind classifies a recovered fatal panic per §7's diagnostic-kind
// taxonomy, TagNone for a fatal error that doesn't fit one of the named
// categories.
func FatalKind(v any) logger.DiagnosticKind {
	if fe, ok := v.(fatalError); ok {
		return fe.kind
	}
	return logger.TagNone
}

// WrapPanic adapts a recovered panic value into an error, preserving the
// "undefined mixin"/"@error" message for fatal errors and re-raising
// anything else as a wrapped internal error (per spec §7's taxonomy:
// user-authored stylesheet mistakes are diagnostics, not crashes, but a
// genuinely unexpected panic should still surface as an error rather than
// being silently swallowed).
func WrapPanic(v any) error {
	if msg, ok := IsFatal(v); ok {
		return errors.New(msg)
	}
	return errors.Errorf("internal error: %v", v)
}
