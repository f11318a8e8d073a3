// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grammar

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scripted returns fixed choices in order, for deterministic tests.
type scripted struct {
	seq []int
	i   int
}

func (c *scripted) IntN(n int) int {
	v := c.seq[c.i%len(c.seq)]
	c.i++
	return v % n
}

func mustLoad(t *testing.T, doc string) *Store {
	t.Helper()
	s, err := Load(doc)
	require.NoError(t, err)
	return s
}

func TestAlternatives(t *testing.T) {
	s := mustLoad(t, `<grammar><ref id="bit"><p>0</p><p>1</p></ref></grammar>`)

	alts, err := s.Alternatives("bit")
	require.NoError(t, err)
	require.Len(t, alts, 2)
	assert.Equal(t, []Node{Text("0")}, alts[0].Nodes)
	assert.Equal(t, []Node{Text("1")}, alts[1].Nodes)
}

func TestAlternativesUnknownRule(t *testing.T) {
	s := mustLoad(t, `<grammar><ref id="bit"><p>0</p></ref></grammar>`)

	_, err := s.Alternatives("missing")
	var unknown *UnknownRuleError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "missing", unknown.ID)
}

func TestRuleIDsDocumentOrder(t *testing.T) {
	s := mustLoad(t, `<grammar>
		<ref id="c"><p>x</p></ref>
		<ref id="a"><p>x</p></ref>
		<ref id="b"><p>x</p></ref>
	</grammar>`)

	assert.Equal(t, []string{"c", "a", "b"}, s.RuleIDs())
}

func TestStandalone(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{
			name: "unreferenced rules only",
			doc: `<grammar>
				<ref id="root"><p><xref id="conjunction"/></p></ref>
				<ref id="conjunction"><p>and</p><p>or</p></ref>
			</grammar>`,
			want: []string{"root"},
		},
		{
			name: "rule referenced many times counts once",
			doc: `<grammar>
				<ref id="top"><p><xref id="leaf"/><xref id="leaf"/><xref id="leaf"/></p></ref>
				<ref id="leaf"><p>x</p></ref>
			</grammar>`,
			want: []string{"top"},
		},
		{
			name: "all rules mutually referenced",
			doc: `<grammar>
				<ref id="a"><p><xref id="b"/></p></ref>
				<ref id="b"><p><xref id="a"/></p></ref>
			</grammar>`,
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustLoad(t, tt.doc)
			assert.Equal(t, tt.want, s.Standalone())
		})
	}
}

func TestDefaultStart(t *testing.T) {
	s := mustLoad(t, `<grammar>
		<ref id="root"><p><xref id="leaf"/></p></ref>
		<ref id="also-root"><p>y</p></ref>
		<ref id="leaf"><p>x</p></ref>
	</grammar>`)

	id, err := s.DefaultStart(&scripted{seq: []int{0}})
	require.NoError(t, err)
	assert.Equal(t, "root", id)

	id, err = s.DefaultStart(&scripted{seq: []int{1}})
	require.NoError(t, err)
	assert.Equal(t, "also-root", id)
}

// DefaultStart must never return a rule that is cross-referenced anywhere.
func TestDefaultStartSkipsReferenced(t *testing.T) {
	s := mustLoad(t, `<grammar>
		<ref id="root"><p><xref id="a"/><xref id="b"/></p></ref>
		<ref id="a"><p>x</p></ref>
		<ref id="b"><p>y</p></ref>
	</grammar>`)

	for pick := 0; pick < 4; pick++ {
		id, err := s.DefaultStart(&scripted{seq: []int{pick}})
		require.NoError(t, err)
		assert.Equal(t, "root", id)
	}
}

func TestDefaultStartNoStandalone(t *testing.T) {
	s := mustLoad(t, `<grammar>
		<ref id="a"><p><xref id="b"/></p></ref>
		<ref id="b"><p><xref id="a"/></p></ref>
	</grammar>`)

	_, err := s.DefaultStart(&scripted{seq: []int{0}})
	assert.True(t, errors.Is(err, ErrNoStandaloneRule))
}
