// Package extend implements the @extend engine of spec §4.3: given the set
// of @extend directives collected while walking the statement tree, rewrite
// every ruleset's selector list so each selector that matches an extended
// simple selector also gains the extending rule's selectors.
//
// Grounded on libsass's extend bookkeeping in
// original_source/src/ast/selectors.cpp (the subject/extend traversal that
// builds a map keyed by simple-selector string and walks compounds looking
// for matches); extend.cpp/extend.hpp themselves are not present in the
// retrieved original_source snapshot, so the per-ruleset algorithm below is
// derived directly from spec §4.3 and validated against its §8 worked
// examples rather than transliterated from libsass source.
package extend

import (
	"github.com/cssc-lang/cssc/internal/selector"
)

// Directive is one `@extend <extendee>` statement, recorded with the full
// selector list of the ruleset it was written inside (the "extender").
type Directive struct {
	// Extender is the selector list of the ruleset containing the @extend.
	Extender selector.List
	// Extendee is the compound selector named in the @extend statement.
	Extendee selector.Compound
	// Optional is true when the directive was written `@extend x !optional`:
	// it is not an error for Extendee to match nothing in the stylesheet.
	Optional bool
}

// extension is one (extender complex selector, extendee compound) pairing,
// indexed in a Map by every simple selector the extendee contains.
type extension struct {
	extender selector.Complex
	extendee selector.Compound
	optional bool
}

// Map indexes extensions by the canonical string of each simple selector
// appearing in some extendee, so a candidate compound can be checked
// against only the extensions that could plausibly apply to it.
type Map struct {
	bySimple map[string][]extension
}

// BuildMap flattens a set of directives (each potentially naming a
// multi-selector extender) into a Map ready for Apply.
func BuildMap(directives []Directive) Map {
	m := Map{bySimple: map[string][]extension{}}
	for _, d := range directives {
		for _, extender := range d.Extender.Complexes {
			ext := extension{extender: extender, extendee: d.Extendee, optional: d.Optional}
			for _, s := range d.Extendee.Simples {
				key := s.String()
				m.bySimple[key] = append(m.bySimple[key], ext)
			}
		}
	}
	return m
}

// Unsatisfied returns every non-optional directive whose extendee matched
// no compound selector anywhere in targets. evaluator.ApplyExtends hands
// them back to its caller; compile.Compile counts them in
// Result.UnsatisfiedExt and does not fail the compilation.
func (m Map) Unsatisfied(targets []selector.List) []Directive {
	matched := map[string]bool{}
	for _, list := range targets {
		for _, c := range list.Complexes {
			for i := 0; i < c.Len(); i++ {
				compound := c.CompoundAt(i)
				for key, exts := range m.bySimple {
					for _, e := range exts {
						if matched[key] {
							continue
						}
						if selector.ContainsAll(compound, e.extendee) {
							matched[key] = true
						}
					}
				}
			}
		}
	}

	var out []Directive
	seen := map[string]bool{}
	for key, exts := range m.bySimple {
		if matched[key] {
			continue
		}
		for _, e := range exts {
			if e.optional || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, Directive{
				Extender: selector.NewList(e.extender),
				Extendee: e.extendee,
				Optional: e.optional,
			})
		}
	}
	return out
}

// maxExtendChain bounds the @extend fixpoint loop: real stylesheets extend
// at most a handful of levels deep, so a higher iteration count than this
// indicates a cycle the seen-set failed to catch rather than legitimate work.
const maxExtendChain = 64

// Apply implements spec §4.3's per-ruleset extend algorithm: grow target's
// selector list by substituting every compound that matches a registered
// extendee with the unification of its remainder and the matching
// extension's extender selector, repeating to a fixpoint (an extended
// selector can itself become eligible for further extension) while
// breaking cycles via a seen-set of canonical complex-selector strings.
func Apply(target selector.List, m Map) selector.List {
	result := target
	seen := map[string]bool{}
	for _, c := range target.Complexes {
		seen[c.String()] = true
	}

	for round := 0; round < maxExtendChain; round++ {
		grown := false
		var additions []selector.Complex

		for _, c := range result.Complexes {
			for i := 0; i < c.Len(); i++ {
				compound := c.CompoundAt(i)
				for _, e := range candidatesFor(m, compound) {
					replacement, ok := replacementFor(compound, e)
					if !ok {
						continue
					}
					newComplex := c.ReplaceAt(i, replacement)
					key := newComplex.String()
					if seen[key] {
						continue
					}
					seen[key] = true
					additions = append(additions, newComplex)
					grown = true
				}
			}
		}

		if !grown {
			break
		}
		result = result.Append(additions...)
	}

	return result.Dedup()
}

// candidatesFor returns every extension registered for any simple selector
// present in compound, deduplicated, whose extendee is fully contained in
// compound (the "B ⊆ K" test of §4.3).
func candidatesFor(m Map, compound selector.Compound) []extension {
	var out []extension
	seen := map[*extension]bool{}
	for _, s := range compound.Simples {
		for i := range m.bySimple[s.String()] {
			e := &m.bySimple[s.String()][i]
			if seen[e] {
				continue
			}
			if !selector.ContainsAll(compound, e.extendee) {
				continue
			}
			seen[e] = true
			out = append(out, *e)
		}
	}
	return out
}

// replacementFor computes the complex selector that should stand in for
// compound once e's extender has been merged in, per spec §4.3:
// remainder = compound minus e's extendee's simples; the replacement unifies
// that remainder with the extender's final compound when possible, and
// falls back to a descendant-combinator concatenation of remainder ahead of
// the extender's whole chain when the compound-level unify fails (see
// DESIGN.md for why the literal "skip on unify failure" reading of §4.3
// contradicts its own §8 worked example).
func replacementFor(compound selector.Compound, e extension) (selector.Complex, bool) {
	remainder := selector.Minus(compound, e.extendee)

	if len(remainder.Simples) == 0 {
		return e.extender, true
	}

	if unified, ok := selector.UnifyCompound(remainder, e.extender.Final()); ok {
		return e.extender.WithFinal(unified), true
	}

	return selector.NewComplex(remainder).Concat(selector.Descendant, e.extender), true
}

// PrunePlaceholders implements the placeholder-visibility half of spec
// §4.3: a ruleset whose selector list, once placeholder-only complex
// selectors are filtered out individually, has nothing left must not be
// printed at all; otherwise it prints with only the non-placeholder
// members of its (possibly extend-grown) list.
func PrunePlaceholders(list selector.List) (selector.List, bool) {
	filtered := list.Filtered()
	return filtered, len(filtered.Complexes) > 0
}
