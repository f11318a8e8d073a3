// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grammar

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Load reads an XML grammar document from src and returns an indexed store.
// src may be an io.Reader, "-" for standard input, a file path, or an
// inline document string (see resolve). Structural invariants — unique
// non-empty rule ids, at least one paragraph per rule — are enforced here,
// so a returned store is always usable.
func Load(src any) (*Store, error) {
	r, close, _, err := resolve(src)
	if err != nil {
		return nil, err
	}
	defer close()

	rules, err := decodeXML(r)
	if err != nil {
		return nil, err
	}
	return newStore(rules)
}

// LoadFile reads a grammar document from path, selecting the document form
// by extension: .yaml/.yml is the YAML form, anything else is XML.
func LoadFile(path string) (*Store, error) {
	f, err := openPath(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rules []Rule
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		rules, err = decodeYAML(f)
	default:
		rules, err = decodeXML(f)
	}
	if err != nil {
		return nil, err
	}
	return newStore(rules)
}

func openPath(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	return f, nil
}

// decodeXML walks the token stream of a grammar document:
//
//	<grammar>
//	  <ref id="..."> <p>text <xref id="..."/> tail text</p> ... </ref>
//	  ...
//	</grammar>
//
// Mixed paragraph content is order-significant. Character data immediately
// following an xref becomes that xref's tail, matching how the documents
// are authored: the tail belongs to the reference and is emitted after the
// referenced rule's expansion.
func decodeXML(r io.Reader) ([]Rule, error) {
	dec := xml.NewDecoder(r)

	root, err := nextStart(dec)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if root.Name.Local != "grammar" {
		return nil, &ParseError{Err: fmt.Errorf("root element is <%s>, want <grammar>", root.Name.Local)}
	}

	var rules []Rule
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, &ParseError{Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "ref" {
				return nil, &ParseError{Err: fmt.Errorf("unexpected element <%s> in <grammar>", t.Name.Local)}
			}
			rule, err := decodeRef(dec, t)
			if err != nil {
				return nil, err
			}
			rules = append(rules, rule)
		case xml.EndElement:
			return rules, nil
		}
	}
}

func decodeRef(dec *xml.Decoder, start xml.StartElement) (Rule, error) {
	rule := Rule{ID: attr(start, "id")}
	for {
		tok, err := dec.Token()
		if err != nil {
			return rule, &ParseError{Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "p" {
				return rule, &ParseError{Err: fmt.Errorf("unexpected element <%s> in <ref id=%q>", t.Name.Local, rule.ID)}
			}
			p, err := decodeParagraph(dec)
			if err != nil {
				return rule, err
			}
			rule.Paragraphs = append(rule.Paragraphs, p)
		case xml.EndElement:
			return rule, nil
		}
	}
}

func decodeParagraph(dec *xml.Decoder) (Paragraph, error) {
	var p Paragraph
	// afterXref marks that the next character data is the tail of the
	// xref just closed rather than a free-standing text node.
	afterXref := false

	for {
		tok, err := dec.Token()
		if err != nil {
			return p, &ParseError{Err: err}
		}
		switch t := tok.(type) {
		case xml.CharData:
			text := string(t)
			if afterXref {
				x := p.Nodes[len(p.Nodes)-1].(Xref)
				x.Tail += text
				p.Nodes[len(p.Nodes)-1] = x
				continue
			}
			p.Nodes = append(p.Nodes, Text(text))
		case xml.StartElement:
			if t.Name.Local != "xref" {
				return p, &ParseError{Err: fmt.Errorf("unexpected element <%s> in <p>", t.Name.Local)}
			}
			if err := dec.Skip(); err != nil {
				return p, &ParseError{Err: err}
			}
			p.Nodes = append(p.Nodes, Xref{Target: attr(t, "id")})
			afterXref = true
		case xml.EndElement:
			return p, nil
		}
	}
}

func nextStart(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return xml.StartElement{}, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se, nil
		}
	}
}

func attr(se xml.StartElement, name string) string {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// YAML grammar form. The shape mirrors the XML form one-to-one: a document
// is a list of rules, a rule a list of paragraphs, a paragraph an ordered
// list of nodes that are either {text: ...} or {xref: ..., tail: ...}.
type yamlGrammar struct {
	Rules []yamlRule `yaml:"rules"`
}

type yamlRule struct {
	ID         string       `yaml:"id"`
	Paragraphs [][]yamlNode `yaml:"paragraphs"`
}

type yamlNode struct {
	Text *string `yaml:"text"`
	Xref string  `yaml:"xref"`
	Tail string  `yaml:"tail"`
}

func decodeYAML(r io.Reader) ([]Rule, error) {
	var doc yamlGrammar
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, &ParseError{Err: err}
	}

	var rules []Rule
	for _, yr := range doc.Rules {
		rule := Rule{ID: yr.ID}
		for _, yp := range yr.Paragraphs {
			var p Paragraph
			for _, n := range yp {
				switch {
				case n.Text != nil && n.Xref != "":
					return nil, &ParseError{Err: fmt.Errorf("rule %q: node has both text and xref", yr.ID)}
				case n.Text != nil:
					p.Nodes = append(p.Nodes, Text(*n.Text))
				case n.Xref != "":
					p.Nodes = append(p.Nodes, Xref{Target: n.Xref, Tail: n.Tail})
				default:
					return nil, &ParseError{Err: fmt.Errorf("rule %q: node needs text or xref", yr.ID)}
				}
			}
			rule.Paragraphs = append(rule.Paragraphs, p)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}
