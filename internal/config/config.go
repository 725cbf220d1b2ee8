// Package config defines the compiler's configuration surface: spec §6's
// enumerated option list, gathered into one plain struct of enums the way
// the teacher's own internal/config does, validated once at the Compile
// entry point rather than scattered across call sites.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// OutputStyle selects one of the printer's four modes (spec §4.4/§6).
type OutputStyle uint8

const (
	OutputNested OutputStyle = iota
	OutputExpanded
	OutputCompact
	OutputCompressed
)

func (s OutputStyle) String() string {
	switch s {
	case OutputNested:
		return "nested"
	case OutputExpanded:
		return "expanded"
	case OutputCompact:
		return "compact"
	case OutputCompressed:
		return "compressed"
	default:
		return "nested"
	}
}

// ParseOutputStyle maps a config string to an OutputStyle, the same
// switch-based parsing the teacher uses for its own enumerated option
// strings (e.g. Loader/Format/Platform in the teacher's config.go),
// rather than reflection-based string-to-enum mapping.
func ParseOutputStyle(s string) (OutputStyle, error) {
	switch s {
	case "", "nested":
		return OutputNested, nil
	case "expanded":
		return OutputExpanded, nil
	case "compact":
		return OutputCompact, nil
	case "compressed":
		return OutputCompressed, nil
	default:
		return OutputNested, fmt.Errorf("unknown output_style %q", s)
	}
}

// Options is the full set of spec §6 configuration options, gathered into
// one struct the way the teacher's Options struct gathers bundler flags.
// Validated as a whole via Validate rather than field-by-field at each
// call site.
type Options struct {
	// OutputStyle controls the printer (spec §4.4).
	OutputStyle OutputStyle

	// Precision is the number of fractional digits numeric output is
	// rounded to; must be >= 0. Zero means "use the printer's own default"
	// (5, per internal/printer.Options.precision).
	Precision int `validate:"gte=0"`

	// SourceComments emits a `/* line N, path */` comment before each rule.
	SourceComments bool

	// SourceMap enables source-map generation alongside the CSS output.
	SourceMap bool

	// OmitSourceMapURL suppresses the trailing
	// `/*# sourceMappingURL=... */` comment even when SourceMap is set
	// (used when the map is delivered out-of-band, e.g. via an HTTP
	// header, rather than referenced inline).
	OmitSourceMapURL bool

	// IncludePaths lists directories searched for `@import` targets, in
	// order, after the importing file's own directory (spec §6).
	IncludePaths []string

	// IndentedSyntax selects the indentation-based surface syntax for the
	// entry file instead of the brace-delimited one.
	IndentedSyntax bool
}

// Default returns the option set spec §6 implies when nothing is
// configured explicitly: nested output, 5 digits of precision, no source
// map.
func Default() Options {
	return Options{
		OutputStyle: OutputNested,
		Precision:   5,
	}
}

var validate = validator.New()

// Validate defends the Compile entry point against an invalid option
// combination reaching the pipeline, the one place struct-tag validation
// replaces the teacher's scattered hand-written switch-default-panics.
func (o Options) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("invalid config.Options: %w", err)
	}
	return nil
}

// EffectivePrecision returns the configured precision, or the printer's
// default when Precision is left at its zero value.
func (o Options) EffectivePrecision() int {
	if o.Precision <= 0 {
		return 5
	}
	return o.Precision
}
