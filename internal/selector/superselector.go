package selector

// IsSuperselectorOf implements spec §4.1.6: a is a superselector of b iff
// every element matched by b is also matched by a — i.e. a is broader than
// or equal to b. No compiler stage (evaluator, extend engine, printer)
// calls it; it is exposed here because it's pure selector algebra.
func IsSuperselectorOf(a, b Complex) bool {
	return compoundSuperOf(a, 0, b, 0)
}

// compoundSuperOf checks whether a's compounds from index ai onward can
// match a (possibly non-contiguous, combinator-respecting) subsequence
// ending at b's final compound, starting the search for a's head at or
// after b's compound bi.
func compoundSuperOf(a Complex, ai int, b Complex, bi int) bool {
	// a's final compound must be a superselector of b's final compound,
	// and every compound/combinator a requires before that must find a
	// compatible match earlier in b's chain.
	if !compoundIsSuperOf(a.CompoundAt(a.Len()-1), b.CompoundAt(b.Len()-1)) {
		return false
	}
	return matchPrefix(a, a.Len()-2, b, b.Len()-2)
}

// matchPrefix walks backward from the compounds just before the already-
// matched finals, requiring every remaining compound in a (ai down to 0) to
// match some compound in b at or before bi, in order, honoring each step's
// combinator semantics (child/adjacent demand the immediately preceding
// compound; descendant/sibling may skip over intervening compounds).
func matchPrefix(a Complex, ai int, b Complex, bi int) bool {
	if ai < 0 {
		return true
	}
	comb := a.CombinatorBefore(ai + 1)
	switch comb {
	case Child, Adjacent:
		if bi < 0 {
			return false
		}
		bComb := b.CombinatorBefore(bi + 1)
		if !combinatorCompatible(comb, bComb) {
			return false
		}
		if !compoundIsSuperOf(a.CompoundAt(ai), b.CompoundAt(bi)) {
			return false
		}
		return matchPrefix(a, ai-1, b, bi-1)
	default: // Descendant, Sibling: may skip any number of b's compounds
		for j := bi; j >= 0; j-- {
			if comb == Sibling {
				bComb := b.CombinatorBefore(j + 1)
				if bComb == Child {
					break // can't cross a child boundary looking for a sibling
				}
				if !combinatorCompatible(comb, bComb) {
					continue // not reachable from here via sibling/adjacent; keep looking shallower
				}
			}
			if compoundIsSuperOf(a.CompoundAt(ai), b.CompoundAt(j)) && matchPrefix(a, ai-1, b, j-1) {
				return true
			}
		}
		return false
	}
}

// combinatorCompatible reports whether requiring combinator want is
// satisfied by b's actual combinator have at the same position. Child and
// adjacent require an exact match; sibling, per §4.1.6's table, is only
// satisfied by a sibling or adjacent combinator on b's side, never a
// descendant (arbitrary ancestor distance) or child combinator.
func combinatorCompatible(want, have Combinator) bool {
	if want == Sibling {
		return have == Sibling || have == Adjacent
	}
	return want == have
}

// compoundIsSuperOf reports whether every simple selector in a also appears
// in b (a ⊆ b as constraint sets), which is exactly the condition for a
// compound selector to match a superset of what b matches: more
// constraints can only narrow the match set, so having fewer (a ⊆ b as a
// requirement list means a is less restrictive) makes a broader.
func compoundIsSuperOf(a, b Compound) bool {
	return ContainsAll(b, a)
}
