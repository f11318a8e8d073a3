package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/psg/internal/library"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List grammars in the library directory",
	Long: `List shows the grammars available in the library directory, with rule
counts and the standalone rules generation starts from by default. Metadata
comes from a small catalog index that is refreshed incrementally: only
grammars whose files changed since the last run are reparsed.`,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	cat, err := library.OpenCatalog(libraryConfig(cmd))
	if err != nil {
		return err
	}
	defer cat.Close()

	ctx := context.Background()

	if noRefresh, _ := cmd.Flags().GetBool("no-refresh"); !noRefresh {
		if _, err := cat.Refresh(ctx, os.Stderr); err != nil {
			return err
		}
	}

	entries, err := cat.Entries(ctx)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No grammars found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-6s  %-5s  %-5s  %s\n",
		"Name", "Format", "Rules", "Xrefs", "Start")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 70))

	for _, e := range entries {
		start := strings.Join(e.Standalone, ", ")
		if !e.Valid {
			start = "invalid: " + e.Problem
		}
		if len(start) > 40 {
			start = start[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-20s  %-6s  %-5d  %-5d  %s\n",
			e.Name, e.Format, e.Rules, e.Xrefs, start)
	}

	fmt.Fprintf(os.Stdout, "\n%d grammars\n", len(entries))
	return nil
}

func init() {
	listCmd.Flags().Bool("json", false, "output the catalog as JSON")
	listCmd.Flags().Bool("no-refresh", false, "list from the catalog without rescanning the directory")

	rootCmd.AddCommand(listCmd)
}
