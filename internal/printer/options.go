// Package printer implements spec §4.4: walking the post-extender,
// post-placeholder-pruning statement tree and emitting CSS text in one of
// four output styles, with numeric/string/color formatting rules and
// (when enabled) source-map position tracking.
//
// Grounded on _examples/evanw-esbuild/internal/css_printer/css_printer.go's
// printer struct (an accumulating []byte buffer, an indent counter, a
// style switch inside each print site rather than four separate code
// paths) and escaping helpers (printIdent/bestQuoteCharForString), adapted
// from the teacher's JS-identifier/CSS-token model to this compiler's
// ast.Statement/selector.List/value.Value tree.
package printer

// OutputStyle selects one of spec §4.4's four printing modes.
type OutputStyle uint8

const (
	Nested OutputStyle = iota
	Expanded
	Compact
	Compressed
)

// ParseOutputStyle maps a config string (as accepted by internal/config's
// output_style option) to an OutputStyle, defaulting to Nested — libsass's
// own default — when name is empty.
func ParseOutputStyle(name string) (OutputStyle, bool) {
	switch name {
	case "", "nested":
		return Nested, true
	case "expanded":
		return Expanded, true
	case "compact":
		return Compact, true
	case "compressed":
		return Compressed, true
	default:
		return Nested, false
	}
}

// Options configures one Print call.
type Options struct {
	Style OutputStyle

	// Precision is the number of fractional digits numeric output is
	// rounded to before trailing-zero trimming (spec §4.4, default 5 per
	// §6's configuration-option table).
	Precision int

	// SourceComments, when true, emits a `/* line N, path */` comment
	// before each rule (spec §6's source_comments option).
	SourceComments bool

	// AddSourceMappings enables per-token source-map position tracking
	// via internal/sourcemap.
	AddSourceMappings bool

	// SourcePath is the path recorded against every mapping when
	// AddSourceMappings is set. cssc compiles one entry file per
	// invocation (internal/loader resolves @import targets inline rather
	// than producing a multi-file bundle graph), so a single path covers
	// the whole compilation unit.
	SourcePath string
}

func (o Options) precision() int {
	if o.Precision <= 0 {
		return 5
	}
	return o.Precision
}
