// Package decode turns a small, explicitly non-general JSON tree into the
// ast.Block/Statement form internal/evaluator consumes. Spec §1/§6 place
// tokenizing and parsing a real superset-CSS source text out of scope as
// an external collaborator; this package is NOT that collaborator. It
// exists only so cmd/cssc and this repo's own tests have something
// concrete to feed the pipeline without a real parser on hand; the JSON
// shape is a stand-in fixture format, documented as such in DESIGN.md,
// not a claim that JSON is cssc's source language.
package decode

import (
	"fmt"
	"strings"

	"github.com/cssc-lang/cssc/internal/selector"
)

// parseSelectorList parses the small, common subset of selector syntax
// this fixture format needs: comma-separated complex selectors built from
// type/universal, ".class", "#id", "%placeholder", "&" parent-reference,
// and ":pseudo(arg)"/"::pseudo" simples, joined by the descendant/child/
// adjacent/sibling combinators. Attribute selectors and :not()/:is()-style
// wrapped pseudos are not recognized here; the real parser (out of
// scope) would own that full grammar; this one only has to round-trip the
// fixtures exercising internal/selector's algebra.
func parseSelectorList(s string) (selector.List, error) {
	var complexes []selector.Complex
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		c, err := parseComplex(part)
		if err != nil {
			return selector.List{}, err
		}
		complexes = append(complexes, c)
	}
	if len(complexes) == 0 {
		return selector.List{}, fmt.Errorf("decode: empty selector %q", s)
	}
	return selector.NewList(complexes...), nil
}

func parseComplex(s string) (selector.Complex, error) {
	tokens, err := tokenizeCombinators(s)
	if err != nil {
		return selector.Complex{}, err
	}

	head, err := parseCompound(tokens[0])
	if err != nil {
		return selector.Complex{}, err
	}
	complex := selector.NewComplex(head)
	for i := 1; i < len(tokens); i += 2 {
		comb, err := parseCombinator(tokens[i])
		if err != nil {
			return selector.Complex{}, err
		}
		comp, err := parseCompound(tokens[i+1])
		if err != nil {
			return selector.Complex{}, err
		}
		complex = complex.Append(comb, comp)
	}
	return complex, nil
}

// tokenizeCombinators splits "a.b > c + d" into ["a.b", ">", "c", "+", "d"]
// (descendant combinators collapse runs of whitespace into a single " "
// token), so parseComplex can alternate compound/combinator.
func tokenizeCombinators(s string) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	flushCompound := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch r {
		case '>', '+', '~':
			flushCompound()
			tokens = append(tokens, string(r))
		case ' ', '\t', '\n':
			if cur.Len() > 0 {
				flushCompound()
				// Only register a descendant-combinator token if the next
				// non-space rune isn't itself an explicit combinator (in
				// which case surrounding whitespace is just separator).
				j := i
				for j < len(runes) && (runes[j] == ' ' || runes[j] == '\t' || runes[j] == '\n') {
					j++
				}
				if j < len(runes) && runes[j] != '>' && runes[j] != '+' && runes[j] != '~' {
					tokens = append(tokens, " ")
				}
				i = j - 1
			}
		default:
			cur.WriteRune(r)
		}
	}
	flushCompound()
	if len(tokens) == 0 {
		return nil, fmt.Errorf("decode: empty compound selector")
	}
	return tokens, nil
}

func parseCombinator(tok string) (selector.Combinator, error) {
	switch tok {
	case " ":
		return selector.Descendant, nil
	case ">":
		return selector.Child, nil
	case "+":
		return selector.Adjacent, nil
	case "~":
		return selector.Sibling, nil
	default:
		return 0, fmt.Errorf("decode: unknown combinator %q", tok)
	}
}

// parseCompound parses one compound selector like "div.foo#bar:hover" or
// "&.active" or "%placeholder".
func parseCompound(s string) (selector.Compound, error) {
	var c selector.Compound
	i := 0
	for i < len(s) {
		switch s[i] {
		case '.':
			j := identEnd(s, i+1)
			c.Insert(selector.Class(s[i+1 : j]))
			i = j
		case '#':
			j := identEnd(s, i+1)
			c.Insert(selector.ID(s[i+1 : j]))
			i = j
		case '%':
			j := identEnd(s, i+1)
			c.Insert(selector.Placeholder(s[i+1 : j]))
			i = j
		case '&':
			c.Insert(selector.Parent())
			i++
		case ':':
			double := i+1 < len(s) && s[i+1] == ':'
			start := i + 1
			if double {
				start = i + 2
			}
			j := identEnd(s, start)
			name := s[start:j]
			arg := ""
			if j < len(s) && s[j] == '(' {
				end := strings.IndexByte(s[j:], ')')
				if end < 0 {
					return selector.Compound{}, fmt.Errorf("decode: unterminated pseudo argument in %q", s)
				}
				arg = s[j+1 : j+end]
				j = j + end + 1
			}
			if double {
				c.Insert(selector.PseudoElement(name))
			} else {
				c.Insert(selector.PseudoClass(name, arg))
			}
			i = j
		default:
			j := identEnd(s, i)
			if j == i {
				return selector.Compound{}, fmt.Errorf("decode: unexpected character %q in selector %q", s[i], s)
			}
			name := s[i:j]
			if name == "*" {
				c.Insert(selector.Universal())
			} else {
				c.Insert(selector.Type(nil, name))
			}
			i = j
		}
	}
	if len(c.Simples) == 0 {
		return selector.Compound{}, fmt.Errorf("decode: empty compound selector")
	}
	return c, nil
}

func identEnd(s string, start int) int {
	i := start
	for i < len(s) {
		c := s[i]
		if c == '.' || c == '#' || c == '%' || c == '&' || c == ':' ||
			c == ' ' || c == '\t' || c == '\n' || c == '>' || c == '+' || c == '~' || c == '(' {
			break
		}
		i++
	}
	return i
}
