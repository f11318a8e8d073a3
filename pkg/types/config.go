package types

// LibraryConfig holds settings for grammar discovery and the catalog index.
type LibraryConfig struct {
	// GrammarDir is the directory scanned for grammar documents (default "grammars").
	GrammarDir string `json:"grammar_dir" yaml:"grammar_dir"`

	// IndexDir is the directory for the catalog database. Empty means
	// GrammarDir/index.
	IndexDir string `json:"index_dir,omitempty" yaml:"index_dir,omitempty"`
}

// GeneratorConfig holds settings for text generation.
type GeneratorConfig struct {
	// DefaultGrammar is the grammar name used when -g is not given (default "binary").
	DefaultGrammar string `json:"default_grammar" yaml:"default_grammar"`

	// MaxDepth is the expansion recursion limit (default 128). A grammar
	// whose reference graph contains a cycle trips this limit.
	MaxDepth int `json:"max_depth" yaml:"max_depth"`

	// Count is the default number of texts produced per invocation (default 1).
	Count int `json:"count" yaml:"count"`
}

// Config groups all tool configuration.
type Config struct {
	Library   LibraryConfig   `json:"library" yaml:"library"`
	Generator GeneratorConfig `json:"generator" yaml:"generator"`
}
