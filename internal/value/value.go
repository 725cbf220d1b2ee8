// Package value implements the tagged-union runtime value type of spec
// §3.3/§4.2: the result of evaluating any Expr, and the thing stored in
// variable slots, passed as arguments, and ultimately formatted into a
// declaration's printed text.
//
// Grounded on original_source/src/ast/values.hpp/values.cpp (Number,
// Color, String variants with an is_quoted flag, List with a separator
// enum, Map preserving insertion order) and on
// _examples/evanw-esbuild/internal/css_ast/css_ast.go's token-union
// pattern for the closed-sum-type shape itself.
package value

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/cast"
)

// Value is the marker interface for every evaluated SassScript value.
type Value interface {
	isValue()
	// Truthy implements spec §4.2's boolean-conversion rule: everything is
	// truthy except the boolean false and Null.
	Truthy() bool
	String() string
}

// Separator distinguishes comma- and space-separated Lists (and the
// degenerate case of a single-element or empty list, which libsass also
// tags so that round-tripping `1,` versus `1` preserves the author's
// separator choice).
type Separator uint8

const (
	SpaceSeparated Separator = iota
	CommaSeparated
)

// Number is a numeric value, optionally carrying a single CSS unit
// ("px", "%", "deg", ...). Unitless arithmetic and unit compatibility
// checks are the only "numeric expression evaluator" surface spec §1 asks
// for — full unit algebra (e.g. px*px=px²) is out of scope.
type Number struct {
	Val  float64
	Unit string
}

func (Number) isValue()         {}
func (n Number) Truthy() bool   { return true }
func (n Number) String() string { return FormatNumber(n.Val, defaultPrecision) + n.Unit }

// defaultPrecision mirrors libsass's historical default of 10 significant
// fractional digits before trailing-zero trimming; internal/config's
// Precision option overrides this at the printer boundary.
const defaultPrecision = 10

// FormatNumber renders f with at most precision fractional digits,
// trimming trailing zeros and a trailing decimal point, per spec §4.4's
// "numeric formatting" rules.
func FormatNumber(f float64, precision int) string {
	s := strconv.FormatFloat(f, 'f', precision, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

// Color is an RGBA color value. Original preserves the literal spelling
// the author wrote (a named color like "tomato", or a hex literal) so
// printing can round-trip it when no arithmetic has touched the color;
// HasOriginal is false once any color function or operator has produced a
// new value.
type Color struct {
	R, G, B uint8
	A       float64 // 0..1
	Original    string
	HasOriginal bool
}

func (Color) isValue()       {}
func (c Color) Truthy() bool { return true }

func (c Color) String() string {
	if c.HasOriginal {
		return c.Original
	}
	if c.A >= 1 {
		hex := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Clamped().Hex()
		return hex
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, FormatNumber(c.A, 4))
}

// Equal reports whether two colors have the same RGBA components,
// ignoring how each was spelled.
func (c Color) Equal(other Color) bool {
	return c.R == other.R && c.G == other.G && c.B == other.B && c.A == other.A
}

// String is a textual value, quoted or not. QuoteChar is '"' or '\'' when
// Quoted is true, and is ignored otherwise.
type String struct {
	Text      string
	Quoted    bool
	QuoteChar byte
}

func (String) isValue()       {}
func (s String) Truthy() bool { return true }

func (s String) String() string {
	if !s.Quoted {
		return s.Text
	}
	q := s.QuoteChar
	if q == 0 {
		q = '"'
	}
	var b strings.Builder
	b.WriteByte(q)
	for _, r := range s.Text {
		if byte(r) == q || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte(q)
	return b.String()
}

// Bool is a SassScript boolean literal.
type Bool bool

func (Bool) isValue()       {}
func (b Bool) Truthy() bool { return bool(b) }
func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

// Null is SassScript's "null" literal: falsy, and omitted entirely when it
// would otherwise become a declaration's value.
type Null struct{}

func (Null) isValue()         {}
func (Null) Truthy() bool     { return false }
func (Null) String() string   { return "null" }

// List is an ordered sequence of values joined by Separator. Bracketed
// marks a `[...]` bracketed list, a superset addition over libsass's
// historical list type.
type List struct {
	Items     []Value
	Separator Separator
	Bracketed bool
}

func (List) isValue() {}
func (l List) Truthy() bool { return true }

func (l List) String() string {
	sep := " "
	if l.Separator == CommaSeparated {
		sep = ", "
	}
	parts := make([]string, len(l.Items))
	for i, item := range l.Items {
		parts[i] = item.String()
	}
	inner := strings.Join(parts, sep)
	if l.Bracketed {
		return "[" + inner + "]"
	}
	return inner
}

// Map is an insertion-ordered key/value map literal.
type Map struct {
	Keys   []Value
	Values []Value
}

func (Map) isValue()       {}
func (m Map) Truthy() bool { return true }

func (m Map) String() string {
	parts := make([]string, len(m.Keys))
	for i := range m.Keys {
		parts[i] = m.Keys[i].String() + ": " + m.Values[i].String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Get returns the value associated with key, by canonical string
// equality, and whether it was found.
func (m Map) Get(key Value) (Value, bool) {
	k := key.String()
	for i, existingKey := range m.Keys {
		if existingKey.String() == k {
			return m.Values[i], true
		}
	}
	return nil, false
}

// SortedKeys returns a copy of m's keys in a stable, deterministic order,
// used only where a host (e.g. @debug output, test fixtures) needs a
// reproducible key ordering distinct from insertion order.
func (m Map) SortedKeys() []Value {
	out := append([]Value(nil), m.Keys...)
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// ToGoString coerces v to a plain Go string for the handful of built-ins
// and diagnostics that need one, via spf13/cast so numbers/bools coerce
// the same way the rest of the ecosystem does.
func ToGoString(v Value) string {
	switch t := v.(type) {
	case String:
		return t.Text
	default:
		return cast.ToString(v.String())
	}
}
