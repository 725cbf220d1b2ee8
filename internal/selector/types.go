// Package selector implements the selector algebra of spec §4.1: unifying,
// comparing, subtracting, and parentizing compound/complex selectors. It is
// the pure, allocating library used by both internal/evaluator (nested-rule
// flattening, parent-reference resolution) and internal/extend (@extend
// expansion).
//
// Grounded on _examples/evanw-esbuild/internal/css_parser/css_parser_selector.go
// and internal/css_ast/css_ast.go for the shape of complex/compound selectors,
// and on original_source/src/ast/selectors.cpp|hpp for the unify/weave/
// superselector algorithms themselves (spec §4.1.5: "implementer must
// reproduce behavior, not code").
package selector

import (
	"fmt"
	"sort"
	"strings"
)

// Combinator is the relation between two adjacent compound selectors.
type Combinator uint8

const (
	Descendant Combinator = iota // space
	Child                        // >
	Adjacent                     // +
	Sibling                      // ~
)

func (c Combinator) String() string {
	switch c {
	case Descendant:
		return " "
	case Child:
		return ">"
	case Adjacent:
		return "+"
	case Sibling:
		return "~"
	default:
		panic("selector: invalid combinator")
	}
}

// Kind discriminates the variants of a Simple selector (spec §3.1).
type Kind uint8

const (
	KindType Kind = iota
	KindID
	KindClass
	KindAttribute
	KindPseudoClass
	KindPseudoElement
	KindPlaceholder
	KindParent
	KindWrapped
)

// kindOrder implements the §4.1.1 ordering:
// type < id < class < attribute < pseudo-class < pseudo-element < placeholder
var kindOrder = map[Kind]int{
	KindType:          0,
	KindID:            1,
	KindClass:         2,
	KindAttribute:     3,
	KindPseudoClass:   4,
	KindPseudoElement: 5,
	KindPlaceholder:   6,
	KindParent:        7,
	KindWrapped:       4, // wrapped pseudo-classes (:not, :is, ...) sort with pseudo-classes
}

// Simple is one simple selector: type/universal, class, id, attribute,
// pseudo-class/pseudo-element, placeholder, parent reference, or a wrapped
// pseudo whose argument is itself a selector List (e.g. ":not(.a, .b)").
type Simple struct {
	Kind Kind

	// Name holds the tag name ("*" for universal), class name (without
	// the leading "."), id name (without "#"), attribute name, or
	// pseudo-class/pseudo-element name (without the leading ":"/"::").
	// Unused for KindParent.
	Name string

	// Namespace is only meaningful for KindType and KindAttribute.
	// nil means "no namespace was written" (matches any namespace for
	// type selectors per CSS semantics applied loosely here); a pointer
	// to "" means an explicit empty namespace ("|name"); a pointer to
	// "*" means an explicit wildcard namespace ("*|name").
	Namespace *string

	// Attribute-only fields.
	AttrMatcher    string // "", "=", "~=", "|=", "^=", "$=", "*="
	AttrValue      string
	AttrIgnoreCase bool

	// Pseudo-class/pseudo-element argument, for arguments that are not
	// themselves a selector list (e.g. ":nth-child(2n+1)"). Empty for a
	// bare pseudo like ":hover".
	PseudoArg string

	// Wrapped holds the argument selector list for pseudo-classes whose
	// argument is itself a selector list (":not(...)", ":is(...)",
	// ":has(...)"). Only used when Kind == KindWrapped; Name still holds
	// the pseudo-class name ("not", "is", "has", ...).
	Wrapped *List
}

// legacyPseudoElementNames are the pseudo-elements CSS2.1 allows spelling
// with a single colon; §4.1.6 treats ":x" and "::x" as equal for these.
var legacyPseudoElementNames = map[string]bool{
	"before":      true,
	"after":       true,
	"first-line":  true,
	"first-letter": true,
}

// Type returns a type (or universal, if name is "*") simple selector.
func Type(namespace *string, name string) Simple {
	return Simple{Kind: KindType, Namespace: namespace, Name: name}
}

// Universal returns the "*" type selector.
func Universal() Simple { return Type(nil, "*") }

// Class returns a class simple selector.
func Class(name string) Simple { return Simple{Kind: KindClass, Name: name} }

// ID returns an id simple selector.
func ID(name string) Simple { return Simple{Kind: KindID, Name: name} }

// Placeholder returns a placeholder simple selector (never emitted).
func Placeholder(name string) Simple { return Simple{Kind: KindPlaceholder, Name: name} }

// Parent returns the "&" parent-reference simple selector.
func Parent() Simple { return Simple{Kind: KindParent} }

// PseudoClass returns a pseudo-class selector, optionally with a raw argument.
func PseudoClass(name, arg string) Simple {
	return Simple{Kind: KindPseudoClass, Name: name, PseudoArg: arg}
}

// PseudoElement returns a pseudo-element selector (printed with "::").
func PseudoElement(name string) Simple {
	return Simple{Kind: KindPseudoElement, Name: name}
}

// Attribute returns an attribute simple selector.
func Attribute(namespace *string, name, matcher, value string, ignoreCase bool) Simple {
	return Simple{
		Kind: KindAttribute, Namespace: namespace, Name: name,
		AttrMatcher: matcher, AttrValue: value, AttrIgnoreCase: ignoreCase,
	}
}

// Wrapped returns a wrapped pseudo-class whose argument is a selector list.
func Wrapped(name string, arg *List) Simple {
	return Simple{Kind: KindWrapped, Name: name, Wrapped: arg}
}

// String renders the canonical textual form of s, used both for printing
// and (per spec §9 "string-based comparison... keep a serialized form only
// for canonical-form caching") as a comparison key.
func (s Simple) String() string {
	var b strings.Builder
	switch s.Kind {
	case KindType:
		writeNamespace(&b, s.Namespace)
		b.WriteString(s.Name)
	case KindID:
		b.WriteByte('#')
		b.WriteString(s.Name)
	case KindClass:
		b.WriteByte('.')
		b.WriteString(s.Name)
	case KindAttribute:
		b.WriteByte('[')
		writeNamespace(&b, s.Namespace)
		b.WriteString(s.Name)
		if s.AttrMatcher != "" {
			b.WriteString(s.AttrMatcher)
			fmt.Fprintf(&b, "%q", s.AttrValue)
			if s.AttrIgnoreCase {
				b.WriteString(" i")
			}
		}
		b.WriteByte(']')
	case KindPseudoClass:
		b.WriteByte(':')
		b.WriteString(s.Name)
		if s.PseudoArg != "" {
			b.WriteByte('(')
			b.WriteString(s.PseudoArg)
			b.WriteByte(')')
		}
	case KindPseudoElement:
		b.WriteString("::")
		b.WriteString(s.Name)
	case KindPlaceholder:
		b.WriteByte('%')
		b.WriteString(s.Name)
	case KindParent:
		b.WriteByte('&')
	case KindWrapped:
		b.WriteByte(':')
		b.WriteString(s.Name)
		b.WriteByte('(')
		if s.Wrapped != nil {
			b.WriteString(s.Wrapped.String())
		}
		b.WriteByte(')')
	}
	return b.String()
}

func writeNamespace(b *strings.Builder, ns *string) {
	if ns == nil {
		return
	}
	b.WriteString(*ns)
	b.WriteByte('|')
}

// pseudoElementKey normalizes legacy single-colon pseudo-element names so
// ":before" and "::before" compare equal, per §4.1.6.
func (s Simple) pseudoElementKey() string {
	if s.Kind == KindPseudoElement || (s.Kind == KindPseudoClass && legacyPseudoElementNames[s.Name]) {
		return s.Name
	}
	return ""
}

// Equal reports whether two simple selectors are identical by canonical
// string form.
func (s Simple) Equal(other Simple) bool {
	return s.String() == other.String()
}

// Compare implements the total order of §4.1.1: by kind, then name, then
// namespace, then sub-arguments (folded into the canonical string).
func (s Simple) Compare(other Simple) int {
	if oa, ob := kindOrder[s.Kind], kindOrder[other.Kind]; oa != ob {
		return oa - ob
	}
	if s.Name != other.Name {
		return strings.Compare(s.Name, other.Name)
	}
	sns, ons := namespaceKey(s.Namespace), namespaceKey(other.Namespace)
	if sns != ons {
		return strings.Compare(sns, ons)
	}
	return strings.Compare(s.String(), other.String())
}

func namespaceKey(ns *string) string {
	if ns == nil {
		return "\x00" // sorts before any explicit namespace, including ""
	}
	return *ns
}

// Compound is an ordered, non-empty sequence of simple selectors applying
// to a single element. Invariant: at most one type selector (first if
// present), at most one pseudo-element (last if present).
type Compound struct {
	Simples []Simple
}

// NewCompound builds a Compound by passing each simple to Compound.Insert
// in argument order, so a type selector ends up first and a pseudo-element
// last whatever order they are given in; it never panics.
func NewCompound(simples ...Simple) Compound {
	c := Compound{}
	for _, s := range simples {
		c.Insert(s)
	}
	return c
}

// Insert appends s to the compound, maintaining the type-first and
// pseudo-element-last invariants.
func (c *Compound) Insert(s Simple) {
	if s.Kind == KindType {
		c.Simples = append([]Simple{s}, c.Simples...)
		return
	}
	if s.Kind == KindPseudoElement {
		c.Simples = append(c.Simples, s)
		return
	}
	// Insert before any trailing pseudo-element.
	if n := len(c.Simples); n > 0 && c.Simples[n-1].Kind == KindPseudoElement {
		c.Simples = append(c.Simples, Simple{})
		copy(c.Simples[n:], c.Simples[n-1:n])
		c.Simples[n-1] = s
		return
	}
	c.Simples = append(c.Simples, s)
}

// TypeSelector returns the compound's type/universal simple selector, if any.
func (c Compound) TypeSelector() (Simple, bool) {
	if len(c.Simples) > 0 && c.Simples[0].Kind == KindType {
		return c.Simples[0], true
	}
	return Simple{}, false
}

// PseudoElement returns the compound's trailing pseudo-element, if any.
func (c Compound) PseudoElement() (Simple, bool) {
	if n := len(c.Simples); n > 0 && c.Simples[n-1].Kind == KindPseudoElement {
		return c.Simples[n-1], true
	}
	return Simple{}, false
}

// HasParentReference reports whether any simple selector in c is "&".
func (c Compound) HasParentReference() bool {
	for _, s := range c.Simples {
		if s.Kind == KindParent {
			return true
		}
	}
	return false
}

// HasOnlyPlaceholders reports whether every simple selector in c is a
// placeholder, meaning the compound (and by extension its rule, if every
// compound in the selector list is like this) must never be printed.
func (c Compound) HasOnlyPlaceholders() bool {
	if len(c.Simples) == 0 {
		return false
	}
	for _, s := range c.Simples {
		if s.Kind != KindPlaceholder {
			return false
		}
	}
	return true
}

// Contains reports whether c has a simple selector canonically equal to s.
func (c Compound) Contains(s Simple) bool {
	key := s.String()
	for _, cs := range c.Simples {
		if cs.String() == key {
			return true
		}
	}
	return false
}

// Sorted returns a copy of c's simple selectors sorted per §4.1.1.
func (c Compound) Sorted() []Simple {
	out := append([]Simple(nil), c.Simples...)
	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	return out
}

// Compare implements compound ordering: sorted simple-selector sequence,
// then length as tiebreak (§4.1.1).
func (c Compound) Compare(other Compound) int {
	as, bs := c.Sorted(), other.Sorted()
	for i := 0; i < len(as) && i < len(bs); i++ {
		if d := as[i].Compare(bs[i]); d != 0 {
			return d
		}
	}
	return len(as) - len(bs)
}

// Equal reports set-equality of simple selectors (order-independent).
func (c Compound) Equal(other Compound) bool {
	return c.Compare(other) == 0 && sameMultiset(c.Sorted(), other.Sorted())
}

func sameMultiset(a, b []Simple) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func (c Compound) String() string {
	var b strings.Builder
	for _, s := range c.Simples {
		b.WriteString(s.String())
	}
	return b.String()
}

// Step is one non-head compound of a Complex, joined to the previous
// compound by Combinator.
type Step struct {
	Combinator Combinator
	Compound   Compound
}

// Complex is a linked list of compound selectors joined by combinators
// (spec §3.1). Head is the first compound; Tail holds the rest.
type Complex struct {
	Head Compound
	Tail []Step
}

// NewComplex builds a Complex from a head compound and following steps.
func NewComplex(head Compound, tail ...Step) Complex {
	return Complex{Head: head, Tail: tail}
}

// Len returns the number of compounds in the chain (1 + len(Tail)).
func (c Complex) Len() int { return 1 + len(c.Tail) }

// CompoundAt returns the i'th compound (0 = Head).
func (c Complex) CompoundAt(i int) Compound {
	if i == 0 {
		return c.Head
	}
	return c.Tail[i-1].Compound
}

// CombinatorBefore returns the combinator preceding the i'th compound.
// It panics for i == 0, which has no preceding combinator.
func (c Complex) CombinatorBefore(i int) Combinator {
	return c.Tail[i-1].Combinator
}

// Final returns the last compound selector in the chain.
func (c Complex) Final() Compound {
	return c.CompoundAt(c.Len() - 1)
}

// WithFinal returns a copy of c with its last compound replaced.
func (c Complex) WithFinal(final Compound) Complex {
	out := c.clone()
	if len(out.Tail) == 0 {
		out.Head = final
	} else {
		out.Tail[len(out.Tail)-1].Compound = final
	}
	return out
}

// Prefix returns every compound/combinator before the final one, i.e. the
// complex selector with its last compound removed (used by weave/unify).
func (c Complex) Prefix() (Complex, bool) {
	if len(c.Tail) == 0 {
		return Complex{}, false
	}
	return Complex{Head: c.Head, Tail: c.Tail[:len(c.Tail)-1]}, true
}

// Append returns a new Complex with step appended to the end.
func (c Complex) Append(comb Combinator, comp Compound) Complex {
	out := c.clone()
	out.Tail = append(out.Tail, Step{Combinator: comb, Compound: comp})
	return out
}

// Concat returns a new Complex that is c followed by (comb, other) — other's
// head is joined to c's tail via comb, and other's own tail follows.
func (c Complex) Concat(comb Combinator, other Complex) Complex {
	out := c.Append(comb, other.Head)
	out.Tail = append(out.Tail, other.Tail...)
	return out
}

func (c Complex) clone() Complex {
	return Complex{Head: c.Head, Tail: append([]Step(nil), c.Tail...)}
}

// IsPlaceholderOnly reports whether every compound in the chain consists
// solely of placeholder simple selectors (spec §4.3 "Placeholder
// visibility" applies per complex selector, not per list).
func (c Complex) IsPlaceholderOnly() bool {
	if !c.Head.HasOnlyPlaceholders() {
		return false
	}
	for _, t := range c.Tail {
		if !t.Compound.HasOnlyPlaceholders() {
			return false
		}
	}
	return true
}

// ReplaceAt returns a copy of c with the compound at position i (0 = Head)
// replaced by every compound of replacement, spliced in with replacement's
// own internal combinators. The combinator that used to lead into position
// i is preserved as the combinator leading into replacement's head; any
// combinator that used to lead out of position i is preserved as the
// combinator leading out of replacement's final compound. Used by the
// extend engine to substitute a matched compound's extended chain back
// into the complex selector it was found in.
func (c Complex) ReplaceAt(i int, replacement Complex) Complex {
	if i == 0 {
		out := replacement.clone()
		out.Tail = append(out.Tail, c.Tail...)
		return out
	}
	leadingComb := c.Tail[i-1].Combinator
	prefix := Complex{Head: c.Head, Tail: append([]Step(nil), c.Tail[:i-1]...)}
	spliced := prefix.Append(leadingComb, replacement.Head)
	spliced.Tail = append(spliced.Tail, replacement.Tail...)
	spliced.Tail = append(spliced.Tail, c.Tail[i:]...)
	return spliced
}

// HasParentReference reports whether any compound in the chain contains "&".
func (c Complex) HasParentReference() bool {
	if c.Head.HasParentReference() {
		return true
	}
	for _, t := range c.Tail {
		if t.Compound.HasParentReference() {
			return true
		}
	}
	return false
}

// Compare implements head-then-combinator-then-tail ordering (§4.1.1),
// treating a shorter chain as having implicit "less than" continuations.
func (c Complex) Compare(other Complex) int {
	if d := c.Head.Compare(other.Head); d != 0 {
		return d
	}
	for i := 0; ; i++ {
		ia, ib := i < len(c.Tail), i < len(other.Tail)
		if !ia && !ib {
			return 0
		}
		if !ia {
			return -1
		}
		if !ib {
			return 1
		}
		if d := int(c.Tail[i].Combinator) - int(other.Tail[i].Combinator); d != 0 {
			return d
		}
		if d := c.Tail[i].Compound.Compare(other.Tail[i].Compound); d != 0 {
			return d
		}
	}
}

// Equal reports structural equality (exact compound sequence and combinators).
func (c Complex) Equal(other Complex) bool {
	if c.Len() != other.Len() || !c.Head.Equal(other.Head) {
		return false
	}
	for i, t := range c.Tail {
		o := other.Tail[i]
		if t.Combinator != o.Combinator || !t.Compound.Equal(o.Compound) {
			return false
		}
	}
	return true
}

func (c Complex) String() string {
	var b strings.Builder
	b.WriteString(c.Head.String())
	for _, t := range c.Tail {
		b.WriteByte(' ')
		if t.Combinator != Descendant {
			b.WriteString(t.Combinator.String())
			b.WriteByte(' ')
		}
		b.WriteString(t.Compound.String())
	}
	return b.String()
}

// List is a non-empty ordered list of complex selectors (spec §3.1).
// Equality is order-insensitive; ordering is lexicographic on the sorted set.
type List struct {
	Complexes []Complex
}

// NewList builds a List from the given complex selectors.
func NewList(complexes ...Complex) List {
	return List{Complexes: complexes}
}

// Sorted returns a copy of l's complex selectors in canonical order.
func (l List) Sorted() []Complex {
	out := append([]Complex(nil), l.Complexes...)
	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	return out
}

// Dedup returns a copy of l with structurally duplicate complex selectors
// removed, preserving the first occurrence's position.
func (l List) Dedup() List {
	var out List
	for _, c := range l.Complexes {
		dup := false
		for _, o := range out.Complexes {
			if c.Equal(o) {
				dup = true
				break
			}
		}
		if !dup {
			out.Complexes = append(out.Complexes, c)
		}
	}
	return out
}

// Equal compares two selector lists as sets of canonicalized complex
// selectors (order-insensitive), per spec §3.1.
func (l List) Equal(other List) bool {
	as, bs := l.Dedup().Sorted(), other.Dedup().Sorted()
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if !as[i].Equal(bs[i]) {
			return false
		}
	}
	return true
}

// Compare implements lexicographic ordering on the sorted set (§3.1).
func (l List) Compare(other List) int {
	as, bs := l.Sorted(), other.Sorted()
	for i := 0; i < len(as) && i < len(bs); i++ {
		if d := as[i].Compare(bs[i]); d != 0 {
			return d
		}
	}
	return len(as) - len(bs)
}

// Append returns a new List with extra complex selectors appended.
func (l List) Append(extra ...Complex) List {
	return List{Complexes: append(append([]Complex(nil), l.Complexes...), extra...)}
}

// IsAllPlaceholders reports whether every complex selector in the list is
// made up solely of placeholder compounds, meaning the whole rule has
// nothing left to print once placeholders are stripped. Equivalent to
// len(l.Filtered().Complexes) == 0 but avoids allocating the filtered copy.
func (l List) IsAllPlaceholders() bool {
	for _, c := range l.Complexes {
		if !c.IsPlaceholderOnly() {
			return false
		}
	}
	return true
}

// Filtered returns a copy of l with every placeholder-only complex selector
// removed individually, per spec §4.3 "Placeholder visibility": a ruleset
// extended by a non-placeholder selector keeps only the non-placeholder
// members of its (possibly extend-grown) selector list, rather than being
// kept or dropped as an all-or-nothing unit. A rule is only fully dropped
// from printed output when Filtered() leaves it empty.
func (l List) Filtered() List {
	var out List
	for _, c := range l.Complexes {
		if !c.IsPlaceholderOnly() {
			out.Complexes = append(out.Complexes, c)
		}
	}
	return out
}

func (l List) String() string {
	parts := make([]string, len(l.Complexes))
	for i, c := range l.Complexes {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
