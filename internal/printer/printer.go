package printer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cssc-lang/cssc/internal/ast"
	"github.com/cssc-lang/cssc/internal/color"
	"github.com/cssc-lang/cssc/internal/selector"
	"github.com/cssc-lang/cssc/internal/sourcemap"
	"github.com/cssc-lang/cssc/internal/value"
)

// Result is the output of one Print call.
type Result struct {
	CSS            []byte
	SourceMapChunk sourcemap.Chunk
}

type printer struct {
	opts    Options
	arena   *ast.Arena
	css     []byte
	builder sourcemap.ChunkBuilder
}

// Print walks top, a flat top-level sequence of statements already past
// evaluation, @extend expansion, and placeholder pruning (spec §4
// pipeline), and renders it as CSS text per opts.
func Print(top []ast.Statement, arena *ast.Arena, opts Options) Result {
	p := &printer{
		opts:    opts,
		arena:   arena,
		builder: sourcemap.MakeChunkBuilder(),
	}

	first := true
	for _, s := range top {
		if p.isBlank(s) {
			continue
		}
		if !first && p.opts.Style == Expanded {
			p.css = append(p.css, '\n')
		}
		first = false
		p.printStatement(s, 0)
	}

	result := Result{CSS: p.css}
	if opts.AddSourceMappings {
		result.SourceMapChunk = p.builder.GenerateChunk(p.css)
	}
	return result
}

// isBlank reports whether s would print nothing at all (an empty selector
// list left over from placeholder pruning, or a ruleset with no body).
func (p *printer) isBlank(s ast.Statement) bool {
	r, ok := s.(ast.Ruleset)
	if !ok {
		return false
	}
	return len(r.Selector.Complexes) == 0 || len(r.Body) == 0
}

func (p *printer) printStatement(s ast.Statement, indent int) {
	switch r := s.(type) {
	case ast.Ruleset:
		p.printRuleset(r, indent)
	case ast.MediaRule:
		p.printAtRuleWithBlock("@media", r.Query, r.Body, indent)
	case ast.SupportsRule:
		p.printAtRuleWithBlock("@supports", r.Condition, r.Body, indent)
	case ast.KeyframesRule:
		p.printKeyframes(r, indent)
	case ast.AtRule:
		p.printGenericAtRule(r, indent)
	case ast.Import:
		p.printImport(r, indent)
	case ast.CommentNode:
		p.printComment(r, indent)
	case ast.Declaration:
		p.printIndent(indent)
		p.printDeclaration(r, true)
		p.newline()
	default:
		panic(fmt.Sprintf("printer: unhandled top-level statement %T", s))
	}
}

func (p *printer) printRuleset(r ast.Ruleset, indent int) {
	filtered := r.Selector.Filtered()
	if len(filtered.Complexes) == 0 || len(r.Body) == 0 {
		return
	}

	printDepth := indent
	if p.opts.Style == Nested {
		printDepth = r.Depth
	}

	if p.opts.SourceComments && r.Loc.Line > 0 {
		p.printIndent(printDepth)
		comment := fmt.Sprintf("/* line %d */", r.Loc.Line)
		if p.opts.SourcePath != "" {
			comment = fmt.Sprintf("/* line %d, %s */", r.Loc.Line, p.opts.SourcePath)
		}
		p.css = append(p.css, comment...)
		p.newline()
	}

	p.printIndent(printDepth)
	if p.opts.AddSourceMappings {
		p.builder.AddSourceMapping(r.Loc.Line, r.Loc.Column, p.opts.SourcePath, p.css)
	}
	p.printSelectorList(filtered, printDepth)
	p.spaceBeforeBrace()
	p.printDeclBlock(r.Body, printDepth)
	p.newline()
}

// printSelectorList renders a selector list, one complex selector per line
// for nested/expanded, comma-packed for compact/compressed (spec §4.4).
func (p *printer) printSelectorList(list selector.List, indent int) {
	complexes := list.Complexes
	multiLine := p.opts.Style == Nested || p.opts.Style == Expanded
	for i, c := range complexes {
		if i > 0 {
			if p.opts.Style == Compressed {
				p.css = append(p.css, ',')
			} else if multiLine {
				p.css = append(p.css, ",\n"...)
				p.printIndent(indent)
			} else {
				p.css = append(p.css, ", "...)
			}
		}
		p.printComplexSelector(c)
	}
}

func (p *printer) printComplexSelector(c selector.Complex) {
	p.printCompoundSelector(c.Head)
	for _, step := range c.Tail {
		if step.Combinator == selector.Descendant {
			p.css = append(p.css, ' ')
		} else if p.opts.Style == Compressed {
			p.css = append(p.css, step.Combinator.String()...)
		} else {
			p.css = append(p.css, ' ')
			p.css = append(p.css, step.Combinator.String()...)
			p.css = append(p.css, ' ')
		}
		p.printCompoundSelector(step.Compound)
	}
}

func (p *printer) printCompoundSelector(c selector.Compound) {
	p.css = append(p.css, escapeIdentFragment(c.String())...)
}

func (p *printer) printDeclBlock(body ast.Block, indent int) {
	p.css = append(p.css, '{')
	p.newline()
	for i, idx := range body {
		stmt := *p.arena.Get(idx)
		omitSemi := p.opts.Style == Compressed && i+1 == len(body)
		p.printBodyStatement(stmt, indent+1, omitSemi)
	}
	p.printIndent(indent)
	p.css = append(p.css, '}')
}

func (p *printer) printBodyStatement(s ast.Statement, indent int, omitTrailingSemi bool) {
	switch d := s.(type) {
	case ast.Declaration:
		p.printIndent(indent)
		p.printDeclaration(d, !omitTrailingSemi)
		p.newline()
	case ast.CommentNode:
		p.printComment(d, indent)
	default:
		// A nested ruleset surviving inside a body (e.g. inside @media)
		// prints at the same indent, recursively.
		p.printStatement(s, indent)
	}
}

func (p *printer) printDeclaration(d ast.Declaration, withSemi bool) {
	if p.opts.SourceComments && d.Loc.Line > 0 {
		p.css = append(p.css, fmt.Sprintf("/* line %d */ ", d.Loc.Line)...)
	}
	if p.opts.AddSourceMappings {
		p.builder.AddSourceMapping(d.Loc.Line, d.Loc.Column, p.opts.SourcePath, p.css)
	}
	p.css = append(p.css, escapeIdentFragment(d.Property.PlainText())...)
	p.css = append(p.css, ':')
	if p.opts.Style != Compressed {
		p.css = append(p.css, ' ')
	}
	p.printValue(valueOf(d.Value))
	if d.Important {
		p.css = append(p.css, "!important"...)
	}
	if withSemi {
		p.css = append(p.css, ';')
	}
}

func valueOf(e ast.Expr) value.Value {
	if lit, ok := e.(ast.Literal); ok {
		return lit.Value
	}
	// Every Expr reaching the printer has already been evaluated to a
	// Literal by internal/evaluator; anything else indicates the tree
	// wasn't fully reduced.
	panic(fmt.Sprintf("printer: declaration value was not reduced to a literal (%T)", e))
}

func (p *printer) printValue(v value.Value) {
	switch x := v.(type) {
	case value.Number:
		p.css = append(p.css, p.formatNumber(x.Val)...)
		p.css = append(p.css, x.Unit...)
	case value.Color:
		p.css = append(p.css, p.formatColor(x)...)
	case value.String:
		p.css = append(p.css, p.formatString(x)...)
	case value.Bool:
		p.css = append(p.css, x.String()...)
	case value.Null:
		// Nothing: a null-valued declaration is stripped upstream by the
		// evaluator; defensively emit nothing rather than "null".
	case value.List:
		sep := " "
		if x.Separator == value.CommaSeparated {
			if p.opts.Style == Compressed {
				sep = ","
			} else {
				sep = ", "
			}
		}
		for i, item := range x.Items {
			if i > 0 {
				p.css = append(p.css, sep...)
			}
			p.printValue(item)
		}
	default:
		p.css = append(p.css, v.String()...)
	}
}

// formatNumber implements spec §4.4's numeric-formatting rule: round to
// configured precision, strip trailing zeros then a trailing ".", but
// never collapse a rounds-to-zero non-zero number down to a bare "0"
// (it must still read as "0.0" to preserve its numeric type), and for
// compressed output strip the redundant leading "0" before the point.
func (p *printer) formatNumber(f float64) string {
	precision := p.opts.precision()
	s := strconv.FormatFloat(f, 'f', precision, 64)
	if strings.Contains(s, ".") {
		trimmed := strings.TrimRight(s, "0")
		trimmed = strings.TrimSuffix(trimmed, ".")
		if trimmed == "" || trimmed == "-" {
			trimmed = "0"
		}
		if (trimmed == "0" || trimmed == "-0") && f != 0 {
			trimmed = "0.0"
			if f < 0 {
				trimmed = "-0.0"
			}
		}
		s = trimmed
	}
	if s == "-0" {
		s = "0"
	}
	if p.opts.Style == Compressed {
		s = stripLeadingZero(s)
	}
	return s
}

func stripLeadingZero(s string) string {
	if strings.HasPrefix(s, "0.") {
		return s[1:]
	}
	if strings.HasPrefix(s, "-0.") {
		return "-" + s[2:]
	}
	return s
}

// formatColor implements spec §4.4's color-formatting rule.
func (p *printer) formatColor(c value.Color) string {
	if c.HasOriginal && p.opts.Style != Compressed {
		return c.Original
	}
	if c.A == 0 && c.R == 0 && c.G == 0 && c.B == 0 {
		return "transparent"
	}
	if c.A >= 1 {
		return color.Hex(color.RGB{R: c.R, G: c.G, B: c.B})
	}
	sep := ", "
	if p.opts.Style == Compressed {
		sep = ","
	}
	return fmt.Sprintf("rgba(%d%s%d%s%d%s%s)", c.R, sep, c.G, sep, c.B, sep, p.formatNumber(c.A))
}

// formatString implements spec §4.4's string-formatting rule: prefer `"`
// unless the content has a `"` and no `'`, and hex-escape non-printable
// control characters, grounded on
// _examples/evanw-esbuild/internal/css_printer/css_printer.go's
// bestQuoteCharForString/printQuotedWithQuote.
func (p *printer) formatString(s value.String) string {
	if !s.Quoted {
		return escapeIdentFragment(s.Text)
	}
	quote := byte('"')
	if strings.ContainsRune(s.Text, '"') && !strings.ContainsRune(s.Text, '\'') {
		quote = '\''
	}
	var b strings.Builder
	b.WriteByte(quote)
	for _, r := range s.Text {
		switch {
		case byte(r) == quote || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, "\\%x ", r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(quote)
	return b.String()
}

// escapeIdentFragment hex-escapes non-printable control characters inside
// an already-validated identifier/selector fragment; cssc's parser is
// responsible for rejecting truly invalid identifiers, so this only
// guards against control bytes that could otherwise slip through
// interpolation.
func escapeIdentFragment(s string) string {
	if !strings.ContainsAny(s, "\x00\r\n\f") {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case 0, '\r', '\n', '\f':
			fmt.Fprintf(&b, "\\%x ", r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (p *printer) printIndent(indent int) {
	if p.opts.Style == Compressed {
		return
	}
	if p.opts.Style == Compact && indent > 0 {
		return
	}
	n := indent
	if p.opts.Style == Compact {
		n = 0
	}
	for i := 0; i < n; i++ {
		p.css = append(p.css, "  "...)
	}
}

func (p *printer) spaceBeforeBrace() {
	if p.opts.Style != Compressed {
		p.css = append(p.css, ' ')
	}
}

func (p *printer) newline() {
	if p.opts.Style == Compressed {
		return
	}
	if p.opts.Style == Compact {
		p.css = append(p.css, ' ')
		return
	}
	p.css = append(p.css, '\n')
}

func (p *printer) printAtRuleWithBlock(name string, prelude ast.Interpolated, body ast.Block, indent int) {
	p.printIndent(indent)
	p.css = append(p.css, name...)
	p.css = append(p.css, ' ')
	p.css = append(p.css, escapeIdentFragment(prelude.PlainText())...)
	p.spaceBeforeBrace()
	p.printDeclBlock(body, indent)
	p.newline()
}

func (p *printer) printGenericAtRule(r ast.AtRule, indent int) {
	p.printIndent(indent)
	p.css = append(p.css, '@')
	p.css = append(p.css, r.Name...)
	if prelude := r.Prelude.PlainText(); prelude != "" {
		p.css = append(p.css, ' ')
		p.css = append(p.css, escapeIdentFragment(prelude)...)
	}
	if !r.HasBody {
		p.css = append(p.css, ';')
	} else {
		p.spaceBeforeBrace()
		p.printDeclBlock(r.Body, indent)
	}
	p.newline()
}

func (p *printer) printKeyframes(r ast.KeyframesRule, indent int) {
	p.printIndent(indent)
	p.css = append(p.css, '@')
	p.css = append(p.css, r.VendorPrefix...)
	p.css = append(p.css, "keyframes "...)
	p.css = append(p.css, r.Name...)
	p.spaceBeforeBrace()
	p.css = append(p.css, '{')
	p.newline()
	for _, block := range r.Blocks {
		p.printIndent(indent + 1)
		sep := ", "
		if p.opts.Style == Compressed {
			sep = ","
		}
		p.css = append(p.css, strings.Join(block.Selectors, sep)...)
		p.spaceBeforeBrace()
		p.printDeclBlock(block.Body, indent+1)
		p.newline()
	}
	p.printIndent(indent)
	p.css = append(p.css, '}')
	p.newline()
}

func (p *printer) printImport(r ast.Import, indent int) {
	p.printIndent(indent)
	p.css = append(p.css, "@import "...)
	for i, u := range r.URLs {
		if i > 0 {
			p.css = append(p.css, ", "...)
		}
		p.css = append(p.css, p.formatString(value.String{Text: u.PlainText(), Quoted: true, QuoteChar: '"'})...)
	}
	if q := r.MediaQuery.PlainText(); q != "" {
		p.css = append(p.css, ' ')
		p.css = append(p.css, q...)
	}
	p.css = append(p.css, ';')
	p.newline()
}

func (p *printer) printComment(c ast.CommentNode, indent int) {
	if p.opts.Style == Compressed && !c.Preserved {
		return
	}
	p.printIndent(indent)
	p.css = append(p.css, c.Text...)
	p.newline()
}
