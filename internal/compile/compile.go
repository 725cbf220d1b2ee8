// Package compile wires the compiler core's pipeline stages (evaluator,
// extender, printer) into the one entry point an external caller (the
// CLI wrapper in cmd/cssc, or a test) actually needs: a parsed statement
// tree in, a CSS string (plus optional source map) out. Grounded on
// _examples/evanw-esbuild/pkg/api's "gather options, call the internal
// packages in sequence, collect diagnostics" shape, trimmed to this
// compiler's three-stage pipeline instead of esbuild's parse/transform/
// bundle/print graph.
package compile

import (
	"fmt"

	"github.com/cssc-lang/cssc/internal/ast"
	"github.com/cssc-lang/cssc/internal/config"
	"github.com/cssc-lang/cssc/internal/env"
	"github.com/cssc-lang/cssc/internal/evaluator"
	"github.com/cssc-lang/cssc/internal/printer"
	"github.com/cssc-lang/cssc/internal/sourcemap"
)

// Result is everything one Compile call produces.
type Result struct {
	CSS            []byte
	SourceMap      *sourcemap.Document
	Diagnostics    evaluator.Diagnostics
	UnsatisfiedExt int // count of non-optional @extend targets that matched nothing
}

// Compile runs entry (the top-level statement block, as produced by the
// external parser per spec §6) through evaluation, extend resolution, and
// printing, per opts. importer, if non-nil, is consulted for `@import`
// targets (spec §6's source loader); fromDir is the entry file's own
// directory.
func Compile(entry ast.Block, arena *ast.Arena, opts config.Options, importer evaluator.Importer, fromDir string) (result Result, err error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}

	var ev *evaluator.Evaluator
	if importer != nil {
		ev = evaluator.NewWithImporter(arena, importer, fromDir)
	} else {
		ev = evaluator.New(arena)
	}

	// evalBlock panics with a fatalError for an unrecoverable condition
	// (@error, an undefined variable/function) per spec §4.2; recover it
	// here rather than in every caller, the one seam between the
	// evaluator's "abort the walk" panic and this package's plain error
	// return.
	defer func() {
		if r := recover(); r != nil {
			if msg, ok := evaluator.IsFatal(r); ok {
				if trace := evaluator.FatalBacktrace(r); len(trace) > 0 {
					msg += "\n" + trace.String()
				}
				err = fmt.Errorf("cssc: %s", msg)
				return
			}
			panic(r)
		}
	}()

	flat := ev.Evaluate(entry, env.NewRoot())
	grown, unsatisfied := evaluator.ApplyExtends(flat, arena, ev.ExtendDirectives())

	style, _ := printer.ParseOutputStyle(opts.OutputStyle.String())

	printOpts := printer.Options{
		Style:             style,
		Precision:         opts.EffectivePrecision(),
		SourceComments:    opts.SourceComments,
		AddSourceMappings: opts.SourceMap,
		SourcePath:        fromDir,
	}
	printed := printer.Print(grown, arena, printOpts)

	result = Result{
		CSS:            printed.CSS,
		Diagnostics:    ev.Diagnostics(),
		UnsatisfiedExt: len(unsatisfied),
	}
	if opts.SourceMap {
		doc := sourcemap.BuildDocument(printed.SourceMapChunk, fromDir, nil)
		result.SourceMap = &doc
	}
	return result, nil
}
