package decode

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cssc-lang/cssc/internal/arena"
	"github.com/cssc-lang/cssc/internal/ast"
	"github.com/cssc-lang/cssc/internal/loader/fileloader"
)

func TestFileImporterResolvesAndDecodesAnImportedFile(t *testing.T) {
	dir := t.TempDir()
	partial := `[{"type":"decl","property":"color","value":{"t":"color","hex":"#00ff00"}}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_vars.cssc"), []byte(partial), 0644))

	a := arena.New[ast.Statement]()
	importer := FileImporter{Loader: &fileloader.Resolver{}, Arena: a}

	block, ok := importer.Resolve("_vars", dir)
	require.True(t, ok)
	require.Len(t, block, 1)
	decl := (*a.Get(block[0])).(ast.Declaration)
	assert.Equal(t, "color", decl.Property.PlainText())
}

func TestFileImporterReportsNotFound(t *testing.T) {
	a := arena.New[ast.Statement]()
	importer := FileImporter{Loader: &fileloader.Resolver{}, Arena: a}

	_, ok := importer.Resolve("does-not-exist", t.TempDir())
	assert.False(t, ok)
}
