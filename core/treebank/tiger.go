package treebank

import (
	"io"
	"iter"
	"strings"

	"github.com/FocuswithJustin/treebank/core/errors"
	"github.com/FocuswithJustin/treebank/core/tree"
	"github.com/FocuswithJustin/treebank/core/xml"
)

var (
	tigerGraph        = xml.MustCompile("graph")
	tigerTerminals    = xml.MustCompile("graph/terminals/t")
	tigerNonterminals = xml.MustCompile("graph/nonterminals/nt")
)

// tigerNode collects the export columns of one Tiger terminal or
// nonterminal.
type tigerNode struct {
	row       []string
	hasParent bool
	hasEdge   bool
}

// TigerTree converts one <s> element of a Tiger XML corpus. Terminals and
// nonterminals are translated to export rows, terminals first, and the tree
// is built as for export; the root is labeled with the category of the
// graph's root node.
func TigerTree(s *xml.Node, opts Options) (*tree.ParentedTree, []string, error) {
	id := s.Attr("id")
	fail := func(msg string) error {
		return &errors.FormatError{Format: "tiger", Block: id, Message: msg}
	}
	graph := s.SelectFirst(tigerGraph)
	if graph == nil {
		return nil, nil, fail("missing <graph>")
	}
	root := graph.Attr("root")

	var order []string
	nodes := make(map[string]*tigerNode)
	get := func(id string) *tigerNode {
		n, ok := nodes[id]
		if !ok {
			n = &tigerNode{row: make([]string, colSecEdges)}
			nodes[id] = n
			order = append(order, id)
		}
		return n
	}

	rootLabel := ""
	for _, t := range s.Select(tigerTerminals) {
		n := get(t.Attr("id"))
		n.row[colWord] = t.Attr("word")
		n.row[colLemma] = t.Attr("lemma")
		n.row[colTag] = t.Attr("pos")
		n.row[colMorph] = t.Attr("morph")
		if t.Attr("id") == root {
			n.row[colParent], n.hasParent = "0", true
			rootLabel = t.Attr("pos")
		}
	}
	for _, nt := range s.Select(tigerNonterminals) {
		ntid := "0"
		if nt.Attr("id") == root {
			rootLabel = nt.Attr("cat")
		} else {
			n := get(nt.Attr("id"))
			parts := strings.Split(nt.Attr("id"), "_")
			ntid = parts[len(parts)-1]
			n.row[colWord] = "#" + ntid
			n.row[colTag] = nt.Attr("cat")
			n.row[colLemma], n.row[colMorph] = "--", "--"
		}
		for _, edge := range nt.Children() {
			idref := edge.Attr("idref")
			n := get(idref)
			switch edge.Name() {
			case "edge":
				if n.hasEdge {
					return nil, nil, errors.NewSemantic("tiger sentence %s: %s already has a parent", id, idref)
				}
				n.row[colFunc], n.row[colParent] = edge.Attr("label"), ntid
				n.hasEdge, n.hasParent = true, true
			case "secedge":
				n.row = append(n.row, edge.Attr("label"), ntid)
			default:
				return nil, nil, fail("expected <edge> or <secedge>, got <" + edge.Name() + ">")
			}
		}
	}

	rows := make([][]string, 0, len(order))
	for _, nid := range order {
		n := nodes[nid]
		if !n.hasParent {
			return nil, nil, errors.NewSemantic("tiger sentence %s: %s does not have a parent", id, nid)
		}
		rows = append(rows, n.row)
	}
	t, sent, err := exportRows(rows, opts)
	if err != nil {
		return nil, nil, err
	}
	if rootLabel != "" {
		t.SetLabel(rootLabel)
	}
	return t, sent, nil
}

// tigerBlocks streams the <s> elements of a Tiger XML file. A block's parse
// function must be called before the next block is requested.
func tigerBlocks(r io.Reader) iter.Seq2[Block, error] {
	return func(yield func(Block, error) bool) {
		for s, err := range xml.Stream(r, "//s") {
			if err != nil {
				yield(Block{}, &errors.FormatError{Format: "tiger", Message: "invalid XML", Err: err})
				return
			}
			b := Block{
				ID:   s.Attr("id"),
				Text: s.OutputXML(),
				parse: func(opts Options) (*tree.ParentedTree, []string, string, error) {
					t, sent, err := TigerTree(s, opts)
					return t, sent, "", err
				},
			}
			if !yield(b, nil) {
				return
			}
		}
	}
}
