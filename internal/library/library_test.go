// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGrammar(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalXML = `<grammar><ref id="r"><p>x</p></ref></grammar>`

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeGrammar(t, dir, "zebra.xml", minimalXML)
	writeGrammar(t, dir, "apple.yaml", "rules: []\n")
	writeGrammar(t, dir, "notes.txt", "not a grammar")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "index"), 0o755))

	names, err := Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "zebra"}, names)
}

func TestDiscoverMissingDir(t *testing.T) {
	names, err := Discover(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	writeGrammar(t, dir, "coin.yaml", "rules: []\n")
	writeGrammar(t, dir, "binary.xml", minimalXML)

	path, err := Resolve(dir, "binary")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "binary.xml"), path)

	path, err = Resolve(dir, "coin")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "coin.yaml"), path)

	_, err = Resolve(dir, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no grammar named "missing"`)
}
