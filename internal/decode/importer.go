package decode

import (
	"github.com/cssc-lang/cssc/internal/ast"
	"github.com/cssc-lang/cssc/internal/loader"
)

// FileImporter adapts a loader.Loader (the file-locating half of spec §6's
// "Source loader") plus this package's fixture decoder (the file-reading
// half's stand-in for an actual parser) into an evaluator.Importer: the
// one interface method the evaluator's @import handling actually needs.
//
// Arena must be the same *ast.Arena the rest of the compilation uses:
// ast.Block indices are only meaningful within the arena that allocated
// them, so an imported file's statements have to land in the entry file's
// arena rather than one of their own.
type FileImporter struct {
	Loader loader.Loader
	Arena  *ast.Arena
}

// cycleGuard is implemented by loaders (fileloader.Resolver) that track
// in-progress imports to detect cycles; Resolve consults it when present
// rather than requiring every loader.Loader to support cycle detection.
type cycleGuard interface {
	Enter(canonicalPath string) bool
	Leave(canonicalPath string)
}

// Resolve implements evaluator.Importer. A cyclical @import (detected via
// the loader's cycleGuard, when it implements one) and a file that fails
// to decode are both reported as ok=false, the same as "not found", so the
// evaluator raises its fatal "import not found" error for them.
func (fi FileImporter) Resolve(path, fromDir string) (ast.Block, bool) {
	src, ok := fi.Loader.Load(path, fromDir)
	if !ok {
		return nil, false
	}
	if guard, ok := fi.Loader.(cycleGuard); ok {
		if !guard.Enter(src.CanonicalPath) {
			return nil, false
		}
		defer guard.Leave(src.CanonicalPath)
	}
	block, err := DecodeInto([]byte(src.Contents), fi.Arena)
	if err != nil {
		return nil, false
	}
	return block, true
}
