// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate checks that a candidate grammar document has the
// required shape before it is handed to the loader: a grammar element
// holding one or more uniquely-identified refs, each with one or more
// paragraphs of mixed text and xref children. Unlike the loader, which
// fails on the first problem, the validator walks the whole document and
// reports every problem it finds.
package validate

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Format identifies the grammar document form.
type Format string

const (
	FormatXML  Format = "xml"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the document form by file extension.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatXML
	}
}

// Result is a validation report. OK is true only when Errors is empty.
type Result struct {
	OK     bool
	Errors []string
}

// Check validates the document read from r against the grammar shape.
func Check(r io.Reader, format Format) Result {
	var errs []string
	switch format {
	case FormatYAML:
		errs = checkYAML(r)
	default:
		errs = checkXML(r)
	}
	return Result{OK: len(errs) == 0, Errors: errs}
}

// CheckFile validates the document at path, picking the form by extension.
// An unreadable file is reported as a validation failure rather than a
// separate error so callers have a single report to print.
func CheckFile(path string) Result {
	f, err := os.Open(path)
	if err != nil {
		return Result{Errors: []string{fmt.Sprintf("cannot read %s: %v", path, err)}}
	}
	defer f.Close()
	return Check(f, FormatForPath(path))
}

// collector accumulates shape errors and cross-reference facts during a walk.
type collector struct {
	errs    []string
	ruleIDs map[string]bool
	targets map[string][]string // xref target -> rules using it
}

func newCollector() *collector {
	return &collector{ruleIDs: make(map[string]bool), targets: make(map[string][]string)}
}

func (c *collector) errorf(format string, args ...any) {
	c.errs = append(c.errs, fmt.Sprintf(format, args...))
}

// finish runs the whole-document checks and returns the report.
func (c *collector) finish() []string {
	if len(c.ruleIDs) == 0 && len(c.errs) == 0 {
		c.errorf("grammar has no rules")
	}
	for target, rules := range c.targets {
		if !c.ruleIDs[target] {
			c.errorf("xref target %q (used in rule %q) matches no rule", target, rules[0])
		}
	}
	return c.errs
}

func (c *collector) addRule(id string) {
	if id == "" {
		c.errorf("rule is missing an id attribute")
		return
	}
	if c.ruleIDs[id] {
		c.errorf("duplicate rule id %q", id)
		return
	}
	c.ruleIDs[id] = true
}

func (c *collector) addXref(target, inRule string) {
	if target == "" {
		c.errorf("xref in rule %q is missing an id attribute", inRule)
		return
	}
	c.targets[target] = append(c.targets[target], inRule)
}

func checkXML(r io.Reader) []string {
	c := newCollector()
	dec := xml.NewDecoder(r)

	root, err := firstStart(dec)
	if err != nil {
		return []string{fmt.Sprintf("document is not well-formed XML: %v", err)}
	}
	if root.Name.Local != "grammar" {
		c.errorf("root element is <%s>, want <grammar>", root.Name.Local)
	}

	// Walk every element, tracking the enclosing ref and paragraph count.
	var curRule string
	var pCount int
	depth := 0 // nesting below the root

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			c.errorf("document is not well-formed XML: %v", err)
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch {
			case depth == 1 && t.Name.Local == "ref":
				curRule = xmlAttr(t, "id")
				pCount = 0
				c.addRule(curRule)
			case depth == 1:
				c.errorf("unexpected element <%s> in <grammar>", t.Name.Local)
			case depth == 2 && t.Name.Local == "p":
				pCount++
			case depth == 2:
				c.errorf("unexpected element <%s> in <ref id=%q>", t.Name.Local, curRule)
			case depth == 3 && t.Name.Local == "xref":
				c.addXref(xmlAttr(t, "id"), curRule)
			case depth == 3:
				c.errorf("unexpected element <%s> in <p> of rule %q", t.Name.Local, curRule)
			default:
				c.errorf("element <%s> nested too deeply (rule %q)", t.Name.Local, curRule)
			}
		case xml.EndElement:
			if depth == 1 && t.Name.Local == "ref" && pCount == 0 {
				c.errorf("rule %q has no <p> paragraphs", curRule)
			}
			depth--
		}
	}
	return c.finish()
}

func firstStart(dec *xml.Decoder) (xml.StartElement, error) {
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

func xmlAttr(se xml.StartElement, name string) string {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// YAML form shape, mirroring the XML form.
type yamlDoc struct {
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

func checkYAML(r io.Reader) []string {
	c := newCollector()

	var doc yamlDoc
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return []string{fmt.Sprintf("document is not well-formed YAML: %v", err)}
	}

	for _, rule := range doc.Rules {
		c.addRule(rule.ID)
		if len(rule.Paragraphs) == 0 {
			c.errorf("rule %q has no paragraphs", rule.ID)
		}
		for _, p := range rule.Paragraphs {
			for _, n := range p {
				switch {
				case n.Text != nil && n.Xref != "":
					c.errorf("rule %q: node has both text and xref", rule.ID)
				case n.Text == nil && n.Xref == "":
					c.errorf("rule %q: node needs text or xref", rule.ID)
				case n.Xref != "":
					c.addXref(n.Xref, rule.ID)
				}
			}
		}
	}
	return c.finish()
}
