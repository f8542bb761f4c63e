// Package xml provides XML access for the XML treebank formats: whole-document
// parsing, compiled XPath selection, streaming of repeated elements, and
// pretty printing.
//
// Security Notes:
//   - The xmlquery library is used for parsing, which uses Go's encoding/xml
//     internally and inherits its security properties: external entities are
//     never fetched.
package xml

import (
	"bytes"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/FocuswithJustin/treebank/core/encoding"
)

// Document represents a parsed XML document.
type Document struct {
	root *xmlquery.Node
}

// Node represents an XML element.
type Node struct {
	node *xmlquery.Node
}

// FormatOptions controls XML formatting behavior.
type FormatOptions struct {
	Indent string // Indentation string (e.g., "  " or "\t")
}

// Parse parses XML data and returns a Document.
func Parse(data []byte) (*Document, error) {
	return ParseReader(bytes.NewReader(data))
}

// ParseReader parses an XML document from r, recording the line of every
// element.
func ParseReader(r io.Reader) (*Document, error) {
	root, err := xmlquery.ParseWithOptions(r, xmlquery.ParserOptions{WithLineNumbers: true})
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}
	return &Document{root: root}, nil
}

// Stream yields every element matching expr, one at a time, without building
// the whole document. A yielded node is only valid until the next one is
// requested.
func Stream(r io.Reader, expr string) iter.Seq2[*Node, error] {
	return func(yield func(*Node, error) bool) {
		sp, err := xmlquery.CreateStreamParser(r, expr)
		if err != nil {
			yield(nil, fmt.Errorf("invalid xpath: %w", err))
			return
		}
		for {
			n, err := sp.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(nil, fmt.Errorf("parsing XML: %w", err))
				return
			}
			if !yield(&Node{node: n}, nil) {
				return
			}
		}
	}
}

// Format formats/pretty-prints XML data.
func Format(data []byte, opts FormatOptions) ([]byte, error) {
	if opts.Indent == "" {
		opts.Indent = "  "
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	formatNode(&buf, doc.root, 0, opts.Indent)
	return buf.Bytes(), nil
}

// formatNode recursively formats an XML node.
func formatNode(w *bytes.Buffer, n *xmlquery.Node, depth int, indent string) {
	switch n.Type {
	case xmlquery.DocumentNode:
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			formatNode(w, child, depth, indent)
		}

	case xmlquery.DeclarationNode:
		w.WriteString("<?xml")
		writeAttrs(w, n.Attr)
		w.WriteString("?>\n")

	case xmlquery.ElementNode:
		w.WriteString(strings.Repeat(indent, depth))
		w.WriteString("<")
		w.WriteString(qualified(n))
		writeAttrs(w, n.Attr)

		hasText := false
		hasElementChildren := false
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			switch child.Type {
			case xmlquery.ElementNode:
				hasElementChildren = true
			case xmlquery.TextNode, xmlquery.CharDataNode:
				hasText = hasText || strings.TrimSpace(child.Data) != ""
			}
		}

		if !hasElementChildren && !hasText {
			w.WriteString("/>\n")
			return
		}
		w.WriteString(">")
		if hasElementChildren {
			w.WriteString("\n")
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			switch child.Type {
			case xmlquery.ElementNode, xmlquery.CommentNode:
				formatNode(w, child, depth+1, indent)
			case xmlquery.TextNode:
				text := strings.TrimSpace(child.Data)
				if text == "" {
					continue
				}
				if hasElementChildren {
					w.WriteString(strings.Repeat(indent, depth+1))
				}
				w.WriteString(encoding.EscapeXMLText(text))
				if hasElementChildren {
					w.WriteString("\n")
				}
			case xmlquery.CharDataNode:
				w.WriteString("<![CDATA[")
				w.WriteString(child.Data)
				w.WriteString("]]>")
			}
		}
		if hasElementChildren {
			w.WriteString(strings.Repeat(indent, depth))
		}
		w.WriteString("</")
		w.WriteString(qualified(n))
		w.WriteString(">\n")

	case xmlquery.CommentNode:
		w.WriteString(strings.Repeat(indent, depth))
		w.WriteString("<!--")
		w.WriteString(n.Data)
		w.WriteString("-->\n")
	}
}

func qualified(n *xmlquery.Node) string {
	if n.Prefix != "" {
		return n.Prefix + ":" + n.Data
	}
	return n.Data
}

func writeAttrs(w *bytes.Buffer, attrs []xmlquery.Attr) {
	for _, attr := range attrs {
		w.WriteString(" ")
		if attr.Name.Space != "" {
			w.WriteString(attr.Name.Space)
			w.WriteString(":")
		}
		w.WriteString(attr.Name.Local)
		w.WriteString("=\"")
		w.WriteString(encoding.EscapeXMLAttr(attr.Value))
		w.WriteString("\"")
	}
}

// Root returns the root element of the document.
func (d *Document) Root() *Node {
	if d.root == nil {
		return nil
	}
	for child := d.root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return &Node{node: child}
		}
	}
	return nil
}

// Expr is a compiled XPath expression.
type Expr struct {
	src  string
	expr *xpath.Expr
}

// Compile compiles an XPath expression for repeated use with Select.
func Compile(expr string) (*Expr, error) {
	e, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}
	return &Expr{src: expr, expr: e}, nil
}

// MustCompile is Compile for expressions known to be valid.
func MustCompile(expr string) *Expr {
	e, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Expr) String() string { return e.src }

// Select returns the nodes matched by e, evaluated relative to n, in
// document order.
func (n *Node) Select(e *Expr) []*Node {
	if n == nil || n.node == nil {
		return nil
	}
	matches := xmlquery.QuerySelectorAll(n.node, e.expr)
	result := make([]*Node, len(matches))
	for i, m := range matches {
		result[i] = &Node{node: m}
	}
	return result
}

// SelectFirst returns the first node matched by e relative to n, or nil.
func (n *Node) SelectFirst(e *Expr) *Node {
	if n == nil || n.node == nil {
		return nil
	}
	if m := xmlquery.QuerySelector(n.node, e.expr); m != nil {
		return &Node{node: m}
	}
	return nil
}

// Name returns the element name.
func (n *Node) Name() string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.Data
}

// Text returns all text content of the node and its descendants.
func (n *Node) Text() string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.InnerText()
}

// Line returns the line on which the element starts in a document read
// with Parse or ParseReader, or 0 for streamed elements.
func (n *Node) Line() int {
	if n == nil || n.node == nil {
		return 0
	}
	return n.node.LineNumber
}

// Children returns the child element nodes.
func (n *Node) Children() []*Node {
	return n.ChildrenNamed("")
}

// ChildrenNamed returns the child elements called name; an empty name
// matches every element.
func (n *Node) ChildrenNamed(name string) []*Node {
	if n == nil || n.node == nil {
		return nil
	}
	var children []*Node
	for child := n.node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode && (name == "" || child.Data == name) {
			children = append(children, &Node{node: child})
		}
	}
	return children
}

// Child returns the first child element called name, or nil.
func (n *Node) Child(name string) *Node {
	if n == nil || n.node == nil {
		return nil
	}
	for child := n.node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode && child.Data == name {
			return &Node{node: child}
		}
	}
	return nil
}

// Attr returns the value of a specific attribute.
func (n *Node) Attr(name string) string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.SelectAttr(name)
}

// HasAttr reports whether the element carries the attribute, even if empty.
func (n *Node) HasAttr(name string) bool {
	if n == nil || n.node == nil {
		return false
	}
	for _, attr := range n.node.Attr {
		if attr.Name.Local == name {
			return true
		}
	}
	return false
}

// OutputXML serializes the element including its own tag.
func (n *Node) OutputXML() string {
	if n == nil || n.node == nil {
		return ""
	}
	return n.node.OutputXML(true)
}
