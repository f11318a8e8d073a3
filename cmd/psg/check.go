package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/psg/internal/library"
	"github.com/pdiddy/psg/internal/validate"
)

var checkCmd = &cobra.Command{
	Use:   "check <grammar>",
	Short: "Validate a grammar document",
	Long: `Check verifies that a grammar document has the required shape: a grammar
element with one or more uniquely-identified refs, each holding one or more
paragraphs of mixed text and xref children. Cross-references that match no
rule are also reported.

The argument is a grammar name from the library directory or a file path.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err != nil {
		resolved, resolveErr := library.Resolve(libraryConfig(cmd).GrammarDir, args[0])
		if resolveErr != nil {
			return resolveErr
		}
		path = resolved
	}

	result := validate.CheckFile(path)
	if result.OK {
		fmt.Printf("%s: grammar is valid\n", path)
		return nil
	}

	for _, msg := range result.Errors {
		fmt.Fprintf(os.Stderr, "%s: %s\n", path, msg)
	}
	return fmt.Errorf("%d validation error(s)", len(result.Errors))
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
