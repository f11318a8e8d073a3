// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library finds grammar documents on disk and maintains a small
// catalog index of their metadata so listing does not reparse unchanged
// files.
package library

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// grammarExts are the recognized grammar file extensions, in resolution order.
var grammarExts = []string{".xml", ".yaml", ".yml"}

func isGrammarFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range grammarExts {
		if ext == e {
			return true
		}
	}
	return false
}

// Discover returns the names (file stems) of all grammar documents in dir,
// sorted. A missing directory yields an empty list, not an error, so a
// fresh checkout can run list before any grammars exist.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading grammar directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !isGrammarFile(entry.Name()) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Resolve returns the path of the named grammar in dir, trying each
// recognized extension in order.
func Resolve(dir, name string) (string, error) {
	for _, ext := range grammarExts {
		path := filepath.Join(dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no grammar named %q in %s (tried %s)",
		name, dir, strings.Join(grammarExts, ", "))
}
