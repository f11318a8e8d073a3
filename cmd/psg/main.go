// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the psg CLI, a text generator driven
// by context-free grammars. Grammar documents live in a library directory;
// subcommands list them, validate them, and expand them into text.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/psg/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the psg CLI.
var rootCmd = &cobra.Command{
	Use:   "psg",
	Short: "Generate text from a context-free grammar",
	Long: `psg generates pseudo-random text by recursively expanding a context-free
grammar. A grammar is a small XML (or YAML) document of named rules; each
rule holds alternative templates that may cross-reference other rules.
Expansion starts from a chosen rule, or from a randomly picked rule that no
other rule references, and substitutes uniformly random alternatives until
only literal text remains.

Grammars are looked up by name in the library directory. Use list to see
what is available, check to validate a document, and generate to produce
text.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./psg.yaml or ~/.config/psg/config.yaml)")
	rootCmd.PersistentFlags().String("grammar-dir", "", "directory holding grammar documents (default: grammars)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("psg")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "psg"))
		}
	}

	viper.SetEnvPrefix("PSG")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// libraryConfig resolves library settings from flags, config file, and
// defaults, in that order.
func libraryConfig(cmd *cobra.Command) types.LibraryConfig {
	dir, _ := cmd.Flags().GetString("grammar-dir")
	if dir == "" {
		dir = viper.GetString("library.grammar_dir")
	}
	if dir == "" {
		dir = "grammars"
	}
	return types.LibraryConfig{
		GrammarDir: dir,
		IndexDir:   viper.GetString("library.index_dir"),
	}
}

// generatorConfig resolves generation settings from the config file with
// built-in defaults.
func generatorConfig() types.GeneratorConfig {
	cfg := types.GeneratorConfig{
		DefaultGrammar: viper.GetString("generator.default_grammar"),
		MaxDepth:       viper.GetInt("generator.max_depth"),
		Count:          viper.GetInt("generator.count"),
	}
	if cfg.DefaultGrammar == "" {
		cfg.DefaultGrammar = "binary"
	}
	if cfg.Count <= 0 {
		cfg.Count = 1
	}
	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
