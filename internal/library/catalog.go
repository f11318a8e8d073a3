// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/psg/internal/grammar"
	"github.com/pdiddy/psg/pkg/types"
)

const dbFile = "psg.db"

// Catalog is the sqlite index of grammar metadata. Only metadata about
// grammar documents is stored — names, counts, entry points, mod times —
// never generated text.
type Catalog struct {
	db         *sql.DB
	grammarDir string
}

// OpenCatalog opens or creates the catalog database under cfg.IndexDir
// (default: cfg.GrammarDir/index), creating the schema if needed.
func OpenCatalog(cfg types.LibraryConfig) (*Catalog, error) {
	indexDir := cfg.IndexDir
	if indexDir == "" {
		indexDir = filepath.Join(cfg.GrammarDir, "index")
	}
	if err := os.MkdirAll(indexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(indexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}

	c := &Catalog{db: db, grammarDir: cfg.GrammarDir}
	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return c, nil
}

// Close releases the database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) createSchema() error {
	_, err := c.db.Exec(`CREATE TABLE IF NOT EXISTS grammars (
		name TEXT PRIMARY KEY,
		path TEXT NOT NULL,
		format TEXT NOT NULL,
		rules INTEGER NOT NULL,
		xrefs INTEGER NOT NULL,
		standalone TEXT NOT NULL,
		valid INTEGER NOT NULL,
		problem TEXT NOT NULL,
		file_mod_time TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Entry is one catalog row.
type Entry struct {
	Name       string   `json:"name" yaml:"name"`
	Path       string   `json:"path" yaml:"path"`
	Format     string   `json:"format" yaml:"format"`
	Rules      int      `json:"rules" yaml:"rules"`
	Xrefs      int      `json:"xrefs" yaml:"xrefs"`
	Standalone []string `json:"standalone" yaml:"standalone"`
	Valid      bool     `json:"valid" yaml:"valid"`
	Problem    string   `json:"problem,omitempty" yaml:"problem,omitempty"`
}

// RefreshSummary holds counts from a catalog refresh run.
type RefreshSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
	Removed int
}

// Refresh rescans the grammar directory and brings the catalog up to date.
// Unchanged files are detected by mod time and skipped; files that vanished
// have their rows removed. A grammar that fails to parse stays in the
// catalog marked invalid so list still shows it.
func (c *Catalog) Refresh(ctx context.Context, w io.Writer) (RefreshSummary, error) {
	entries, err := os.ReadDir(c.grammarDir)
	if err != nil && !os.IsNotExist(err) {
		return RefreshSummary{}, fmt.Errorf("reading grammar directory %s: %w", c.grammarDir, err)
	}

	var summary RefreshSummary
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() || !isGrammarFile(entry.Name()) {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		path := filepath.Join(c.grammarDir, entry.Name())
		seen[name] = true

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = c.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM grammars WHERE name = ?`, name,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		e := inspect(name, path)
		if err := c.upsert(ctx, e, modTime); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}

		switch {
		case !e.Valid:
			fmt.Fprintf(w, "invalid %s: %s\n", name, e.Problem)
			summary.Failed++
		case isUpdate:
			fmt.Fprintf(w, "updated %s (%d rules)\n", name, e.Rules)
			summary.Updated++
		default:
			fmt.Fprintf(w, "indexed %s (%d rules)\n", name, e.Rules)
			summary.Indexed++
		}
	}

	removed, err := c.removeStale(ctx, seen)
	if err != nil {
		return summary, err
	}
	summary.Removed = removed

	return summary, nil
}

// inspect parses one grammar document and derives its catalog row.
func inspect(name, path string) Entry {
	e := Entry{
		Name:   name,
		Path:   path,
		Format: strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
	}

	store, err := grammar.LoadFile(path)
	if err != nil {
		e.Problem = err.Error()
		return e
	}

	e.Valid = true
	e.Rules = len(store.RuleIDs())
	e.Standalone = store.Standalone()
	for _, id := range store.RuleIDs() {
		alts, _ := store.Alternatives(id)
		for _, p := range alts {
			for _, n := range p.Nodes {
				if _, ok := n.(grammar.Xref); ok {
					e.Xrefs++
				}
			}
		}
	}
	return e
}

func (c *Catalog) upsert(ctx context.Context, e Entry, modTime string) error {
	standaloneJSON, _ := json.Marshal(e.Standalone)
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO grammars (name, path, format, rules, xrefs, standalone, valid, problem, file_mod_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
			path=excluded.path, format=excluded.format, rules=excluded.rules,
			xrefs=excluded.xrefs, standalone=excluded.standalone,
			valid=excluded.valid, problem=excluded.problem,
			file_mod_time=excluded.file_mod_time`,
		e.Name, e.Path, e.Format, e.Rules, e.Xrefs, string(standaloneJSON),
		boolInt(e.Valid), e.Problem, modTime,
	)
	if err != nil {
		return fmt.Errorf("upserting grammar %s: %w", e.Name, err)
	}
	return nil
}

func (c *Catalog) removeStale(ctx context.Context, seen map[string]bool) (int, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT name FROM grammars`)
	if err != nil {
		return 0, fmt.Errorf("listing catalog names: %w", err)
	}
	defer rows.Close()

	var stale []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return 0, fmt.Errorf("scanning catalog name: %w", err)
		}
		if !seen[name] {
			stale = append(stale, name)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, name := range stale {
		if _, err := c.db.ExecContext(ctx, `DELETE FROM grammars WHERE name = ?`, name); err != nil {
			return 0, fmt.Errorf("removing stale grammar %s: %w", name, err)
		}
	}
	return len(stale), nil
}

// Entries returns all catalog rows ordered by name.
func (c *Catalog) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT name, path, format, rules, xrefs, standalone, valid, problem
		 FROM grammars ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var standaloneJSON string
		var valid int
		if err := rows.Scan(&e.Name, &e.Path, &e.Format, &e.Rules, &e.Xrefs,
			&standaloneJSON, &valid, &e.Problem); err != nil {
			return nil, fmt.Errorf("scanning catalog row: %w", err)
		}
		e.Valid = valid != 0
		if err := json.Unmarshal([]byte(standaloneJSON), &e.Standalone); err != nil {
			return nil, fmt.Errorf("decoding standalone list for %s: %w", e.Name, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
