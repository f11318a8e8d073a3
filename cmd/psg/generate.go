package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/psg/internal/expand"
	"github.com/pdiddy/psg/internal/grammar"
	"github.com/pdiddy/psg/internal/library"
)

var generateCmd = &cobra.Command{
	Use:   "generate [start]",
	Short: "Generate text from a grammar",
	Long: `Generate expands a grammar into text. The grammar is looked up by name in
the library directory (-g), or read from an explicit file (--file), where
"-" means standard input.

The optional start argument names the rule to expand. Without it, psg picks
a rule that no other rule references, at random. Pass --seed for
reproducible output.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := generatorConfig()

	store, err := openGrammar(cmd, cfg.DefaultGrammar)
	if err != nil {
		return err
	}

	var start string
	if len(args) > 0 {
		start = args[0]
	}

	seed, _ := cmd.Flags().GetInt64("seed")
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>32))

	if maxDepth, _ := cmd.Flags().GetInt("max-depth"); maxDepth > 0 {
		cfg.MaxDepth = maxDepth
	}
	exp := expand.New(store, expand.FromConfig(cfg, rng)...)

	count, _ := cmd.Flags().GetInt("count")
	if count <= 0 {
		count = cfg.Count
	}

	for i := 0; i < count; i++ {
		text, err := exp.Generate(start)
		if err != nil {
			return err
		}
		fmt.Println(text)
	}
	return nil
}

// openGrammar loads the grammar selected by --file or -g. An explicit file
// wins; "-" reads an XML document from standard input.
func openGrammar(cmd *cobra.Command, defaultName string) (*grammar.Store, error) {
	if file, _ := cmd.Flags().GetString("file"); file != "" {
		if file == "-" {
			return grammar.Load("-")
		}
		return grammar.LoadFile(file)
	}

	name, _ := cmd.Flags().GetString("grammar")
	if name == "" {
		name = defaultName
	}

	lib := libraryConfig(cmd)
	path, err := library.Resolve(lib.GrammarDir, name)
	if err != nil {
		return nil, err
	}
	return grammar.LoadFile(path)
}

func init() {
	generateCmd.Flags().StringP("grammar", "g", "", "grammar name in the library directory")
	generateCmd.Flags().String("file", "", `grammar file path ("-" for stdin)`)
	generateCmd.Flags().Int("count", 0, "number of texts to generate (default from config, 1)")
	generateCmd.Flags().Int64("seed", 0, "random seed (0 = time-based)")
	generateCmd.Flags().Int("max-depth", 0, "expansion recursion limit (0 = default)")

	rootCmd.AddCommand(generateCmd)
}
