// Package fileloader is the one loader.Loader implementation cssc ships: a
// filesystem-backed resolver grounded on
// _examples/original_source/context.cpp's Context::add_file (resolve
// against the importing file's own directory first, then each configured
// include directory in order; a canonical-path map breaks import loops).
package fileloader

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"

	"github.com/cssc-lang/cssc/internal/loader"
)

// candidateExtensions mirrors libsass's own lookup order for an import
// written without a suffix: the bare name, then with the language's own
// extension variants.
var candidateExtensions = []string{"", ".cssc", ".css"}

// Resolver walks IncludePaths the way the teacher's context.cpp does,
// tracking the chain of canonical paths currently being imported so a
// transitive self-import is caught rather than recursing forever.
type Resolver struct {
	IncludePaths []string

	stack map[string]bool
}

var _ loader.Loader = (*Resolver)(nil)

// Load implements loader.Loader. fromDir is searched before IncludePaths,
// matching add_file's "current file's directory first" order.
func (r *Resolver) Load(importPath, fromDir string) (loader.Source, bool) {
	dirs := make([]string, 0, len(r.IncludePaths)+1)
	if fromDir != "" {
		dirs = append(dirs, fromDir)
	}
	dirs = append(dirs, r.IncludePaths...)

	for _, dir := range dirs {
		for _, ext := range candidateExtensions {
			full := filepath.Join(dir, importPath+ext)
			contents, err := os.ReadFile(full)
			if err != nil {
				continue
			}
			canonical, err := filepath.Abs(full)
			if err != nil {
				canonical = full
			}
			return loader.Source{Contents: string(contents), CanonicalPath: canonical}, true
		}
	}
	return loader.Source{}, false
}

// Errors stats every candidate path Load would try for importPath from
// fromDir and returns one error per candidate that cannot be stat'ed, for
// callers that want to report candidates alongside the "not found" fatal
// (spec §7's "Import not found" taxonomy entry). It keeps no record of
// earlier Load calls.
func (r *Resolver) Errors(importPath, fromDir string) []error {
	dirs := make([]string, 0, len(r.IncludePaths)+1)
	if fromDir != "" {
		dirs = append(dirs, fromDir)
	}
	dirs = append(dirs, r.IncludePaths...)

	var merr *multierror.Error
	for _, dir := range dirs {
		for _, ext := range candidateExtensions {
			full := filepath.Join(dir, importPath+ext)
			if _, err := os.Stat(full); err != nil {
				merr = multierror.Append(merr, fmt.Errorf("%s: %w", full, err))
			}
		}
	}
	if merr == nil {
		return nil
	}
	return merr.Errors
}

// Enter records that canonicalPath is now being imported, returning false
// if it is already on the stack (a loop: spec §6's "loops ... are detected
// and broken with a fatal error"). Leave must be called once the importing
// file's @import has been fully evaluated.
func (r *Resolver) Enter(canonicalPath string) bool {
	if r.stack == nil {
		r.stack = map[string]bool{}
	}
	if r.stack[canonicalPath] {
		return false
	}
	r.stack[canonicalPath] = true
	return true
}

// Leave removes canonicalPath from the in-progress import stack.
func (r *Resolver) Leave(canonicalPath string) {
	delete(r.stack, canonicalPath)
}
