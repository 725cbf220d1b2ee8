// Command cssc is a thin CLI wrapper around the compiler core: it gathers
// config.Options from flags, reads and decodes an entry file, resolves
// `@import` targets through a filesystem loader, and writes the printed
// CSS (and optional source map) to stdout or --outfile.
//
// Tokenizing/parsing real superset-CSS source text is out of scope per
// spec §1/§6 as an external collaborator's job, so the entry file this
// binary reads is the small JSON fixture format internal/decode documents.
// This wrapper exists to exercise the pipeline end to end, not to be a
// complete cssc front end.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cssc-lang/cssc/internal/compile"
	"github.com/cssc-lang/cssc/internal/config"
	"github.com/cssc-lang/cssc/internal/decode"
	"github.com/cssc-lang/cssc/internal/loader/fileloader"
	"github.com/cssc-lang/cssc/internal/sourcemap"
	"github.com/cssc-lang/cssc/internal/trace"
)

var (
	flagStyle            string
	flagPrecision        int
	flagSourceComments   bool
	flagSourceMap        bool
	flagOmitSourceMapURL bool
	flagIncludePaths     []string
	flagIndentedSyntax   bool
	flagOutfile          string
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cssc <entry-file>",
		Short: "Compile a cssc stylesheet to plain CSS",
		Args:  cobra.ExactArgs(1),
		RunE:  runCompile,
	}

	flags := cmd.Flags()
	flags.StringVar(&flagStyle, "style", "nested", "output style: nested | expanded | compact | compressed")
	flags.IntVar(&flagPrecision, "precision", 5, "number of fractional digits in numeric output")
	flags.BoolVar(&flagSourceComments, "source-comments", false, "emit a comment above each rule noting its source line")
	flags.BoolVar(&flagSourceMap, "source-map", false, "emit a source map alongside the CSS output")
	flags.BoolVar(&flagOmitSourceMapURL, "omit-source-map-url", false, "suppress the trailing sourceMappingURL comment")
	flags.StringArrayVar(&flagIncludePaths, "include-path", nil, "directory searched for @import targets (repeatable)")
	flags.BoolVar(&flagIndentedSyntax, "indented-syntax", false, "entry file uses the indentation-based surface syntax")
	flags.StringVar(&flagOutfile, "outfile", "", "write CSS to this file instead of stdout")

	return cmd
}

func runCompile(cmd *cobra.Command, args []string) error {
	entryPath := args[0]

	style, err := config.ParseOutputStyle(flagStyle)
	if err != nil {
		return err
	}
	opts := config.Options{
		OutputStyle:      style,
		Precision:        flagPrecision,
		SourceComments:   flagSourceComments,
		SourceMap:        flagSourceMap,
		OmitSourceMapURL: flagOmitSourceMapURL,
		IncludePaths:     flagIncludePaths,
		IndentedSyntax:   flagIndentedSyntax,
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	contents, err := os.ReadFile(entryPath)
	if err != nil {
		return fmt.Errorf("cssc: %w", err)
	}

	block, arena, err := decode.Decode(contents)
	if err != nil {
		return fmt.Errorf("cssc: %w", err)
	}

	fromDir := filepath.Dir(entryPath)
	resolver := &fileloader.Resolver{IncludePaths: opts.IncludePaths}
	importer := decode.FileImporter{Loader: resolver, Arena: arena}

	trace.Stage("compile", nil)
	result, err := compile.Compile(block, arena, opts, importer, fromDir)
	if err != nil {
		return err
	}

	for _, w := range result.Diagnostics.Warnings {
		fmt.Fprintln(os.Stderr, "WARNING:", w)
	}
	for _, d := range result.Diagnostics.Debugs {
		fmt.Fprintln(os.Stderr, "DEBUG:", d)
	}
	for _, e := range result.Diagnostics.Errors {
		fmt.Fprintln(os.Stderr, "ERROR:", e)
	}
	if result.UnsatisfiedExt > 0 {
		fmt.Fprintf(os.Stderr, "cssc: %d @extend target(s) matched nothing\n", result.UnsatisfiedExt)
	}

	return writeOutput(result)
}

func writeOutput(result compile.Result) error {
	css := result.CSS
	if result.SourceMap != nil && !flagOmitSourceMapURL {
		doc := *result.SourceMap
		if flagOutfile != "" {
			doc = withRelativeFile(doc, flagOutfile)
		}
		css = append(append([]byte{}, css...), '\n')
		css = append(css, []byte(sourcemap.SourceMappingURLComment(doc))...)
	}

	if flagOutfile == "" {
		_, err := os.Stdout.Write(css)
		return err
	}
	if err := os.WriteFile(flagOutfile, css, 0644); err != nil {
		return fmt.Errorf("cssc: %w", err)
	}
	if result.SourceMap != nil {
		mapPath := flagOutfile + ".map"
		if err := os.WriteFile(mapPath, []byte(withRelativeFile(*result.SourceMap, flagOutfile).String()), 0644); err != nil {
			return fmt.Errorf("cssc: %w", err)
		}
	}
	return nil
}

// withRelativeFile returns doc with File set to the CSS output's own base
// name, matching the convention that a ".map" file's "file" field names
// its sibling rather than an absolute path.
func withRelativeFile(doc sourcemap.Document, outfile string) sourcemap.Document {
	doc.File = filepath.Base(outfile)
	return doc
}
