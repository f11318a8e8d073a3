// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package grammar loads context-free text grammars and answers structural
// queries over them. A grammar is a set of named rules; each rule holds one
// or more alternative paragraphs mixing literal text with cross-references
// to other rules. Stores are immutable once loaded and safe for concurrent
// readers.
package grammar

import (
	"errors"
	"fmt"
)

// Node is one piece of a paragraph: either literal Text or an Xref.
// The set of implementations is closed; consumers dispatch with a type switch.
type Node interface {
	node()
}

// Text is a literal fragment emitted verbatim.
type Text string

func (Text) node() {}

// Xref points to a rule by id. It does not own the rule; the target is
// resolved against the store at expansion time. Tail is optional literal
// text emitted immediately after the referenced rule's expansion.
type Xref struct {
	Target string
	Tail   string
}

func (Xref) node() {}

// Paragraph is one alternative expansion for a rule: an ordered mix of
// literal text and references.
type Paragraph struct {
	Nodes []Node
}

// Rule is a named set of alternative paragraphs. The loader guarantees a
// non-empty id and at least one paragraph.
type Rule struct {
	ID         string
	Paragraphs []Paragraph
}

// Store is a parsed grammar indexed by rule id.
type Store struct {
	rules map[string]Rule
	order []string // rule ids in document order
}

// Chooser picks a uniformly random index in [0, n). *rand.Rand from
// math/rand/v2 satisfies it; tests supply scripted sequences.
type Chooser interface {
	IntN(n int) int
}

// ErrNoStandaloneRule is returned by DefaultStart when every rule in the
// grammar is cross-referenced by some other rule, so no entry point can be
// guessed and the caller must name one.
var ErrNoStandaloneRule = errors.New("cannot guess a start rule: every rule is cross-referenced")

// LoadError indicates the grammar source could not be resolved to readable
// content at all (bad path, unreadable stream).
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading grammar from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ParseError indicates the grammar content is malformed: not well-formed
// markup, or structurally invalid (missing ids, duplicate ids, rules
// without paragraphs).
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing grammar: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// UnknownRuleError indicates a rule id — an explicit start or an interior
// xref target — that is absent from the grammar.
type UnknownRuleError struct {
	ID string
}

func (e *UnknownRuleError) Error() string {
	return fmt.Sprintf("unknown rule %q", e.ID)
}

// newStore indexes parsed rules, enforcing the load-time invariants shared
// by both document forms.
func newStore(rules []Rule) (*Store, error) {
	s := &Store{rules: make(map[string]Rule, len(rules))}
	if len(rules) == 0 {
		return nil, &ParseError{Err: errors.New("grammar has no rules")}
	}
	for _, r := range rules {
		if r.ID == "" {
			return nil, &ParseError{Err: errors.New("rule is missing an id")}
		}
		if _, dup := s.rules[r.ID]; dup {
			return nil, &ParseError{Err: fmt.Errorf("duplicate rule id %q", r.ID)}
		}
		if len(r.Paragraphs) == 0 {
			return nil, &ParseError{Err: fmt.Errorf("rule %q has no paragraphs", r.ID)}
		}
		s.rules[r.ID] = r
		s.order = append(s.order, r.ID)
	}
	return s, nil
}

// Alternatives returns the ordered paragraph alternatives for a rule id.
// The result is non-empty for every id the store knows.
func (s *Store) Alternatives(id string) ([]Paragraph, error) {
	r, ok := s.rules[id]
	if !ok {
		return nil, &UnknownRuleError{ID: id}
	}
	return r.Paragraphs, nil
}

// RuleIDs returns all rule ids in document order.
func (s *Store) RuleIDs() []string {
	ids := make([]string, len(s.order))
	copy(ids, s.order)
	return ids
}

// Standalone returns the ids of rules never targeted by any xref, in
// document order. These are the candidate default entry points. The scan is
// recomputed per call; it runs only when no explicit start is given.
func (s *Store) Standalone() []string {
	targets := make(map[string]bool)
	for _, r := range s.rules {
		for _, p := range r.Paragraphs {
			for _, n := range p.Nodes {
				if x, ok := n.(Xref); ok {
					targets[x.Target] = true
				}
			}
		}
	}

	var standalone []string
	for _, id := range s.order {
		if !targets[id] {
			standalone = append(standalone, id)
		}
	}
	return standalone
}

// DefaultStart picks a start rule uniformly at random from the standalone
// set. It fails with ErrNoStandaloneRule when the set is empty.
func (s *Store) DefaultStart(c Chooser) (string, error) {
	standalone := s.Standalone()
	switch len(standalone) {
	case 0:
		return "", ErrNoStandaloneRule
	case 1:
		return standalone[0], nil
	}
	return standalone[c.IntN(len(standalone))], nil
}
