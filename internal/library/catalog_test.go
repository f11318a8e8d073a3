// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/psg/pkg/types"
)

func openTestCatalog(t *testing.T, grammarDir string) *Catalog {
	t.Helper()
	cat, err := OpenCatalog(types.LibraryConfig{
		GrammarDir: grammarDir,
		IndexDir:   t.TempDir(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })
	return cat
}

func TestCatalogRefreshAndEntries(t *testing.T) {
	dir := t.TempDir()
	writeGrammar(t, dir, "binary.xml", `<grammar>
		<ref id="bit"><p>0</p><p>1</p></ref>
		<ref id="byte"><p><xref id="bit"/><xref id="bit"/></p></ref>
	</grammar>`)
	writeGrammar(t, dir, "coin.yaml", `rules:
  - id: face
    paragraphs:
      - - text: heads
      - - text: tails
`)

	cat := openTestCatalog(t, dir)
	ctx := context.Background()

	summary, err := cat.Refresh(ctx, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Indexed)
	assert.Zero(t, summary.Skipped)

	entries, err := cat.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	binary := entries[0]
	assert.Equal(t, "binary", binary.Name)
	assert.Equal(t, "xml", binary.Format)
	assert.True(t, binary.Valid)
	assert.Equal(t, 2, binary.Rules)
	assert.Equal(t, 2, binary.Xrefs)
	assert.Equal(t, []string{"byte"}, binary.Standalone)

	coin := entries[1]
	assert.Equal(t, "coin", coin.Name)
	assert.Equal(t, "yaml", coin.Format)
	assert.Equal(t, []string{"face"}, coin.Standalone)
}

func TestCatalogRefreshSkipsUnchanged(t *testing.T) {
	dir := t.TempDir()
	writeGrammar(t, dir, "binary.xml", minimalXML)

	cat := openTestCatalog(t, dir)
	ctx := context.Background()

	_, err := cat.Refresh(ctx, io.Discard)
	require.NoError(t, err)

	summary, err := cat.Refresh(ctx, io.Discard)
	require.NoError(t, err)
	assert.Zero(t, summary.Indexed)
	assert.Equal(t, 1, summary.Skipped)
}

func TestCatalogRefreshDetectsChanges(t *testing.T) {
	dir := t.TempDir()
	path := writeGrammar(t, dir, "binary.xml", minimalXML)

	cat := openTestCatalog(t, dir)
	ctx := context.Background()

	_, err := cat.Refresh(ctx, io.Discard)
	require.NoError(t, err)

	// Rewrite the grammar and bump its mod time past filesystem resolution.
	require.NoError(t, os.WriteFile(path,
		[]byte(`<grammar><ref id="r"><p>x</p></ref><ref id="s"><p>y</p></ref></grammar>`), 0o644))
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	summary, err := cat.Refresh(ctx, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)

	entries, err := cat.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].Rules)
}

func TestCatalogRefreshRemovesStale(t *testing.T) {
	dir := t.TempDir()
	path := writeGrammar(t, dir, "gone.xml", minimalXML)
	writeGrammar(t, dir, "kept.xml", minimalXML)

	cat := openTestCatalog(t, dir)
	ctx := context.Background()

	_, err := cat.Refresh(ctx, io.Discard)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))

	summary, err := cat.Refresh(ctx, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Removed)

	entries, err := cat.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0].Name)
}

func TestCatalogKeepsInvalidGrammarsVisible(t *testing.T) {
	dir := t.TempDir()
	writeGrammar(t, dir, "broken.xml", `<grammar><ref><p>x</p></ref></grammar>`)

	cat := openTestCatalog(t, dir)
	ctx := context.Background()

	summary, err := cat.Refresh(ctx, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)

	entries, err := cat.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Valid)
	assert.NotEmpty(t, entries[0].Problem)
}

func TestCatalogEmptyDirectory(t *testing.T) {
	cat := openTestCatalog(t, filepath.Join(t.TempDir(), "nope"))
	ctx := context.Background()

	summary, err := cat.Refresh(ctx, io.Discard)
	require.NoError(t, err)
	assert.Zero(t, summary.Indexed)

	entries, err := cat.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
