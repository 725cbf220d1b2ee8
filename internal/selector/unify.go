package selector

// UnifySimple implements spec §4.1.2: returns a compound selector matching
// everything both a and b match, or (_, false) when no such element can
// exist.
func UnifySimple(a, b Simple) (Compound, bool) {
	return unifyCompoundWithSimple(NewCompound(a), b)
}

// UnifyCompound implements spec §4.1.3: fold UnifySimple over b's simple
// selectors, starting from a. If any step yields none, the whole result is
// none.
func UnifyCompound(a, b Compound) (Compound, bool) {
	acc := Compound{Simples: append([]Simple(nil), a.Simples...)}
	for _, s := range b.Simples {
		next, ok := unifyCompoundWithSimple(acc, s)
		if !ok {
			return Compound{}, false
		}
		acc = next
	}
	return acc, true
}

func unifyCompoundWithSimple(acc Compound, s Simple) (Compound, bool) {
	switch s.Kind {
	case KindType:
		if existing, ok := acc.TypeSelector(); ok {
			merged, ok := unifyTypeSelectors(existing, s)
			if !ok {
				return Compound{}, false
			}
			out := Compound{Simples: append([]Simple(nil), acc.Simples...)}
			out.Simples[0] = merged
			return out, true
		}
		out := Compound{Simples: append([]Simple(nil), acc.Simples...)}
		out.Insert(s)
		return out, true

	case KindID:
		if existing := findKind(acc, KindID); existing != nil && existing.Name != s.Name {
			return Compound{}, false
		}
		return insertIfAbsent(acc, s), true

	case KindPseudoElement:
		if existing := findKind(acc, KindPseudoElement); existing != nil {
			if existing.Name != s.Name {
				return Compound{}, false
			}
			return acc, true
		}
		out := Compound{Simples: append([]Simple(nil), acc.Simples...)}
		out.Insert(s)
		return out, true

	default:
		return insertIfAbsent(acc, s), true
	}
}

func findKind(c Compound, k Kind) *Simple {
	for i := range c.Simples {
		if c.Simples[i].Kind == k {
			return &c.Simples[i]
		}
	}
	return nil
}

func insertIfAbsent(c Compound, s Simple) Compound {
	if c.Contains(s) {
		return c
	}
	out := Compound{Simples: append([]Simple(nil), c.Simples...)}
	out.Insert(s)
	return out
}

// unifyTypeSelectors implements the type-vs-type and universal-vs-type
// unification rules of §4.1.2, including namespace precedence ("a qualified
// namespace wins over the universal one; *|* loses to any specific").
func unifyTypeSelectors(a, b Simple) (Simple, bool) {
	aUniv, bUniv := a.Name == "*", b.Name == "*"

	if !aUniv && !bUniv {
		if a.Name != b.Name {
			return Simple{}, false
		}
		ns, ok := unifyNamespace(a.Namespace, b.Namespace)
		if !ok {
			return Simple{}, false
		}
		return Type(ns, a.Name), true
	}

	if aUniv && bUniv {
		ns, ok := unifyNamespace(a.Namespace, b.Namespace)
		if !ok {
			return Simple{}, false
		}
		return Type(ns, "*"), true
	}

	specific, universal := a, b
	if aUniv {
		specific, universal = b, a
	}
	ns, ok := unifyNamespace(specific.Namespace, universal.Namespace)
	if !ok {
		return Simple{}, false
	}
	return Type(ns, specific.Name), true
}

// unifyNamespace resolves two namespace prefixes. nil means "unspecified",
// which is compatible with anything; "*" is an explicit wildcard that loses
// to any specific namespace; two different specific namespaces conflict.
func unifyNamespace(a, b *string) (*string, bool) {
	if a == nil {
		return b, true
	}
	if b == nil {
		return a, true
	}
	if *a == *b {
		return a, true
	}
	if *a == "*" {
		return b, true
	}
	if *b == "*" {
		return a, true
	}
	return nil, false
}

// Minus implements spec §4.1.8: the compound containing every simple in a
// not present in b (by canonical string equality), order preserved.
func Minus(a, b Compound) Compound {
	var out Compound
	for _, s := range a.Simples {
		if !b.Contains(s) {
			out.Simples = append(out.Simples, s)
		}
	}
	return out
}

// ContainsAll reports whether every simple selector in b also appears in a,
// i.e. whether b is a subset of a (used by the extend engine's "B ⊆ K" test).
func ContainsAll(a, b Compound) bool {
	for _, s := range b.Simples {
		if !a.Contains(s) {
			return false
		}
	}
	return true
}
