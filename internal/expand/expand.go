// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package expand turns a grammar start rule into flat literal text by
// recursive substitution. Every choice — which paragraph of a rule, which
// standalone rule when no start is given — is drawn independently and
// uniformly from an injected random source, so callers control seeding and
// tests can script the sequence.
package expand

import (
	"fmt"
	"strings"

	"github.com/pdiddy/psg/internal/grammar"
	"github.com/pdiddy/psg/pkg/types"
)

// DefaultMaxDepth bounds reference nesting. Hand-written grammars nest a
// handful of levels; anything approaching this limit is a cycle.
const DefaultMaxDepth = 128

// CycleError reports that expansion exceeded the recursion limit, which for
// a well-formed grammar means the reference graph contains a cycle. Chain
// holds the most recent rule ids on the expansion path.
type CycleError struct {
	Limit int
	Chain []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("expansion exceeded depth %d (reference cycle?): ... %s",
		e.Limit, strings.Join(e.Chain, " -> "))
}

// Expander generates text from a grammar store. The store is read-only;
// one Expander may serve concurrent Generate calls only if its Chooser is
// safe to share.
type Expander struct {
	store    *grammar.Store
	chooser  grammar.Chooser
	maxDepth int
}

// Option configures an Expander.
type Option func(*Expander)

// WithChooser sets the random source used for every uniform choice.
func WithChooser(c grammar.Chooser) Option {
	return func(e *Expander) { e.chooser = c }
}

// WithMaxDepth sets the recursion limit. Zero or negative keeps the default.
func WithMaxDepth(n int) Option {
	return func(e *Expander) {
		if n > 0 {
			e.maxDepth = n
		}
	}
}

// New builds an Expander for the given store. The Chooser is consulted only
// when a choice exists: rules with a single paragraph expand without it.
func New(store *grammar.Store, opts ...Option) *Expander {
	e := &Expander{store: store, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FromConfig applies generator configuration to an Expander option list.
func FromConfig(cfg types.GeneratorConfig, c grammar.Chooser) []Option {
	opts := []Option{WithChooser(c)}
	if cfg.MaxDepth > 0 {
		opts = append(opts, WithMaxDepth(cfg.MaxDepth))
	}
	return opts
}

// state is the single-use accumulator for one Generate call.
type state struct {
	out   strings.Builder
	chain []string // rule ids on the current expansion path
}

// Generate expands startID into literal text. An empty startID asks the
// store to pick a standalone rule at random. On any error the output is
// discarded entirely; no partial text is returned.
//
// Precondition: the grammar's reference graph is acyclic. A cycle trips the
// depth guard and returns *CycleError instead of recursing forever.
func (e *Expander) Generate(startID string) (string, error) {
	if startID == "" {
		id, err := e.store.DefaultStart(e.chooser)
		if err != nil {
			return "", err
		}
		startID = id
	}

	st := &state{}
	if err := e.expandRef(st, grammar.Xref{Target: startID}); err != nil {
		return "", err
	}
	return st.out.String(), nil
}

// expandRef resolves an xref: pick one paragraph of the target rule
// uniformly, expand it, then emit the xref's own tail.
func (e *Expander) expandRef(st *state, x grammar.Xref) error {
	if len(st.chain) >= e.maxDepth {
		return &CycleError{Limit: e.maxDepth, Chain: chainTail(st.chain, 8)}
	}

	alts, err := e.store.Alternatives(x.Target)
	if err != nil {
		return err
	}

	st.chain = append(st.chain, x.Target)
	idx := 0
	if len(alts) > 1 {
		idx = e.chooser.IntN(len(alts))
	}
	p := alts[idx]
	if err := e.expandParagraph(st, p); err != nil {
		return err
	}
	st.chain = st.chain[:len(st.chain)-1]

	st.out.WriteString(x.Tail)
	return nil
}

// expandParagraph walks mixed content left to right.
func (e *Expander) expandParagraph(st *state, p grammar.Paragraph) error {
	for _, n := range p.Nodes {
		switch node := n.(type) {
		case grammar.Text:
			st.out.WriteString(string(node))
		case grammar.Xref:
			if err := e.expandRef(st, node); err != nil {
				return err
			}
		}
	}
	return nil
}

func chainTail(chain []string, n int) []string {
	if len(chain) <= n {
		return append([]string(nil), chain...)
	}
	return append([]string(nil), chain[len(chain)-n:]...)
}
