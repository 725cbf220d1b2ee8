package selector

// Specificity is the CSS specificity triple (id count, class/attribute/
// pseudo-class count, type/pseudo-element count), compared lexicographically.
// The glossary calls this out as a tie-break only: the compiler never uses
// specificity to choose which declaration wins (that's the browser's job).
// No compiler stage calls SpecificityOf or ComplexSpecificityOf; in
// particular weave() does not order its results by specificity.
type Specificity struct {
	IDs, Classes, Types int
}

// Compare returns <0, 0, >0 as s is less than, equal to, or greater than
// other, in standard CSS specificity order.
func (s Specificity) Compare(other Specificity) int {
	if d := s.IDs - other.IDs; d != 0 {
		return d
	}
	if d := s.Classes - other.Classes; d != 0 {
		return d
	}
	return s.Types - other.Types
}

// SpecificityOf computes c's specificity triple.
func SpecificityOf(c Compound) Specificity {
	var s Specificity
	for _, simple := range c.Simples {
		switch simple.Kind {
		case KindID:
			s.IDs++
		case KindClass, KindAttribute, KindPseudoClass, KindWrapped:
			s.Classes++
		case KindType:
			if simple.Name != "*" {
				s.Types++
			}
		case KindPseudoElement:
			s.Types++
		}
	}
	return s
}

// ComplexSpecificityOf sums the specificity of every compound in a complex
// selector chain.
func ComplexSpecificityOf(c Complex) Specificity {
	s := SpecificityOf(c.Head)
	for _, t := range c.Tail {
		step := SpecificityOf(t.Compound)
		s.IDs += step.IDs
		s.Classes += step.Classes
		s.Types += step.Types
	}
	return s
}
