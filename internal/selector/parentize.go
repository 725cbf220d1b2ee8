package selector

import "fmt"

// InvalidNestingError is panicked by substituteParent when a compound fuses
// "&" with other simples (e.g. "&.active") but the parent selector's last
// combinator is non-descendant, per spec §4.1.7: fusing in that case "is a
// hard error if the parent's last combinator is non-descendant" (§7 lists
// this as the fatal "Invalid nesting" condition). Selector is a lower-level
// package than evaluator, so it cannot raise evaluator's fatalError
// directly; the evaluator recovers this type at the Parentize call site and
// reclassifies it there.
type InvalidNestingError struct {
	Parent Complex
	Child  Complex
}

func (e InvalidNestingError) Error() string {
	return fmt.Sprintf("invalid nesting: %q cannot fuse \"&\" with other simples because parent selector %q ends in a non-descendant combinator", e.Child.String(), e.Parent.String())
}

// Parentize implements spec §4.1.7: substitutes every "&" (parent
// reference) simple selector appearing in child with the corresponding
// complex selector drawn from parents, producing the list of flattened
// complex selectors a nested rule actually prints under. When child
// contains no parent reference at all, the nesting is implicit descendant
// combination: each parent selector gets child's entire chain appended as
// a descendant.
func Parentize(child Complex, parents List) List {
	if !child.HasParentReference() {
		out := make([]Complex, len(parents.Complexes))
		for i, p := range parents.Complexes {
			out[i] = p.Concat(Descendant, child)
		}
		return List{Complexes: out}.Dedup()
	}

	var out []Complex
	for _, p := range parents.Complexes {
		out = append(out, substituteParent(child, p)...)
	}
	return List{Complexes: out}.Dedup()
}

// substituteParent replaces every "&" in a single complex selector with a
// single parent complex selector, compound by compound. A compound that
// mixes "&" with other simples (e.g. "&.active") merges the rest of that
// compound into the parent's final compound and keeps the parent's earlier
// compounds in front of it ("div span" with "&.active" gives
// "div span.active"), matching CSS nesting's "& merges into the adjacent
// compound" semantics; a bare "&" compound is replaced by the parent's
// entire chain.
func substituteParent(child Complex, parent Complex) []Complex {
	result := Complex{}
	first := true
	appendCompound := func(comb Combinator, comp Compound) {
		if first {
			result = Complex{Head: comp}
			first = false
			return
		}
		result = result.Append(comb, comp)
	}

	for i := 0; i < child.Len(); i++ {
		comp := child.CompoundAt(i)
		var comb Combinator
		if i > 0 {
			comb = child.CombinatorBefore(i)
		}
		if !comp.HasParentReference() {
			appendCompound(comb, comp)
			continue
		}
		if len(comp.Simples) == 1 {
			// Bare "&": splice in the parent's whole chain.
			if first {
				result = parent.clone()
				first = false
				continue
			}
			result = result.Concat(comb, parent)
			continue
		}
		// "&" fused with other simples: merge the rest into the parent's
		// final compound. Only valid when the parent's trailing combinator
		// is descendant; anything stricter (child/adjacent/sibling) can't
		// be collapsed into a single compound without changing its meaning.
		if n := parent.Len(); n > 1 && parent.CombinatorBefore(n-1) != Descendant {
			panic(InvalidNestingError{Parent: parent, Child: child})
		}
		rest := Compound{}
		for _, s := range comp.Simples {
			if s.Kind != KindParent {
				rest.Insert(s)
			}
		}
		merged, ok := UnifyCompound(parent.Final(), rest)
		if !ok {
			merged = rest
			for _, s := range parent.Final().Simples {
				merged.Insert(s)
			}
		}
		fused := parent.WithFinal(merged)
		if first {
			result = fused
			first = false
			continue
		}
		result = result.Concat(comb, fused)
	}
	return []Complex{result}
}
