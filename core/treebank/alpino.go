package treebank

import (
	"cmp"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/treebank/core/encoding"
	"github.com/FocuswithJustin/treebank/core/errors"
	"github.com/FocuswithJustin/treebank/core/tree"
	"github.com/FocuswithJustin/treebank/core/xml"
)

var (
	alpinoSentence = xml.MustCompile("sentence")
	alpinoTop      = xml.MustCompile("node")
	alpinoComments = xml.MustCompile("comment | comments/comment")
)

// AlpinoTree converts an Alpino XML document (one sentence) into a tree.
// Phrasal nodes carry a cat attribute, terminals a word attribute; a node
// with only an index refers back to a coindexed node, whose Source gains a
// secondary edge labeled with the placeholder's relation. The comment is
// the text after the first "|" of the <comment> element.
func AlpinoTree(doc *xml.Document, opts Options) (*tree.ParentedTree, []string, string, error) {
	fail := func(msg string) error {
		return &errors.FormatError{Format: "alpino", Message: msg}
	}
	ds := doc.Root()
	if ds == nil || ds.Name() != "alpino_ds" {
		return nil, nil, "", fail("missing <alpino_ds>")
	}
	sentence := ds.SelectFirst(alpinoSentence)
	if sentence == nil {
		return nil, nil, "", fail("missing <sentence>")
	}
	sent := strings.Split(sentence.Text(), " ")

	coindexed := make(map[string]*tree.Source)
	coindexation := make(map[string][]tree.SecEdge)
	var indices []string

	var subtree func(n *xml.Node, parent string) (*tree.Tree, error)
	subtree = func(n *xml.Node, parent string) (*tree.Tree, error) {
		src := &tree.Source{
			Word:  cmp.Or(n.Attr("word"), "#"+n.Attr("id")),
			Lemma: cmp.Or(n.Attr("lemma"), n.Attr("root")),
			Morph: cmp.Or(n.Attr("postag"), n.Attr("frame")),
			Func:  n.Attr("rel"),
		}
		var result *tree.Tree
		switch {
		case n.HasAttr("cat"):
			src.Tag = n.Attr("cat")
			if idx := n.Attr("index"); idx != "" {
				coindexed[idx] = src
			}
			result = tree.New(strings.ToUpper(src.Tag))
			for _, c := range n.ChildrenNamed("node") {
				sub, err := subtree(c, n.Attr("id"))
				if err != nil {
					return nil, err
				}
				if sub != nil && (c.HasAttr("word") || c.HasAttr("cat")) {
					sub.Source().Parent = n.Attr("id")
					if err := result.Append(sub); err != nil {
						return nil, err
					}
				}
			}
			if result.Len() == 0 {
				return nil, nil
			}
			result.SetSource(src)
		case n.HasAttr("word"):
			src.Tag = cmp.Or(n.Attr("pt"), n.Attr("pos"))
			if idx := n.Attr("index"); idx != "" {
				coindexed[idx] = src
			}
			begin, err1 := strconv.Atoi(n.Attr("begin"))
			end, err2 := strconv.Atoi(n.Attr("end"))
			if err1 != nil || err2 != nil || begin < 0 || begin >= end || end > len(sent) {
				return nil, fail(fmt.Sprintf("node %s (line %d): span %q..%q outside sentence of %d tokens",
					n.Attr("id"), n.Line(), n.Attr("begin"), n.Attr("end"), len(sent)))
			}
			result = tree.New(src.Tag)
			for i := begin; i < end; i++ {
				if err := result.Append(tree.IntLeaf(i)); err != nil {
					return nil, err
				}
			}
			result.SetSource(src)
			if err := HandleMorphology(opts.Morphology, opts.Lemmas, result, src, sent); err != nil {
				return nil, err
			}
		case n.HasAttr("index"):
			idx := n.Attr("index")
			if _, ok := coindexation[idx]; !ok {
				indices = append(indices, idx)
			}
			coindexation[idx] = append(coindexation[idx], tree.SecEdge{Label: n.Attr("rel"), Parent: parent})
			return nil, nil
		default:
			return nil, fail(fmt.Sprintf("node %s (line %d) has neither cat, word nor index", n.Attr("id"), n.Line()))
		}
		return result, nil
	}

	top := ds.SelectFirst(alpinoTop)
	if top == nil {
		return nil, nil, "", fail("missing <node>")
	}
	t, err := subtree(top, "")
	if err != nil {
		return nil, nil, "", err
	}
	if t == nil {
		return nil, nil, "", fail("sentence has no terminals")
	}
	for _, idx := range indices {
		src, ok := coindexed[idx]
		if !ok {
			return nil, nil, "", errors.NewSemantic("alpino: index %s has no coindexed node", idx)
		}
		src.SecEdges = append(src.SecEdges, coindexation[idx]...)
	}

	pt := tree.ToParented(t)
	if err := HandleFunctions(opts.Functions, pt, FunctionOptions{POS: true, Morphology: opts.Morphology}); err != nil {
		return nil, nil, "", err
	}
	return pt, sent, alpinoComment(ds), nil
}

func alpinoComment(ds *xml.Node) string {
	c := ds.SelectFirst(alpinoComments)
	if c == nil {
		return ""
	}
	_, comment, _ := strings.Cut(c.Text(), "|")
	return comment
}

// alpinoID names a sentence file by its directory and base name:
// "corpus/wr-p-p-i/1.xml" becomes "wr-p-p-i/1".
func alpinoID(name string) string {
	dir, file := path.Split(strings.ReplaceAll(name, "\\", "/"))
	file = strings.TrimSuffix(file, ".xml")
	if last := path.Base(dir); dir != "" && last != "." && last != "/" {
		return last + "/" + file
	}
	return file
}

// writeAlpino renders a tree as an Alpino XML document. Nodes are numbered
// in preorder; phrasal labels become lower-cased categories and
// preterminal labels lower-cased parts of speech.
func writeAlpino(t tree.View, sent []string, id, comment string) (string, error) {
	var sb strings.Builder
	cnt := 0
	var add func(v tree.View) error
	add = func(v tree.View) error {
		leaves := tree.Leaves(v)
		if len(leaves) == 0 {
			return errors.NewSemantic("alpino: node %s has no terminals", v.Label())
		}
		lo, hi := leaves[0].Int(), leaves[0].Int()
		for _, l := range leaves {
			lo, hi = min(lo, l.Int()), max(hi, l.Int())
		}
		fmt.Fprintf(&sb, `<node id="%d" begin="%d" end="%d"`, cnt, lo, hi+1)
		cnt++
		src := v.Source()
		if src != nil {
			fmt.Fprintf(&sb, ` rel="%s"`, encoding.EscapeXMLAttr(cmp.Or(src.Func, "--")))
		}
		leaf, isLeaf := v.Child(0).(tree.Leaf)
		if !isLeaf {
			fmt.Fprintf(&sb, ` cat="%s">`, encoding.EscapeXMLAttr(strings.ToLower(v.Label())))
			for i := range v.Len() {
				if c, ok := v.Child(i).(tree.View); ok {
					if err := add(c); err != nil {
						return err
					}
				}
			}
			sb.WriteString("</node>")
			return nil
		}
		if leaf.Int() < 0 || leaf.Int() >= len(sent) {
			return errors.NewSemantic("alpino: leaf %d outside sentence of %d tokens", leaf.Int(), len(sent))
		}
		lemma, postag := "--", "--"
		if src != nil {
			lemma, postag = cmp.Or(src.Lemma, "--"), cmp.Or(src.Morph, "--")
		}
		fmt.Fprintf(&sb, ` pos="%s" word="%s" lemma="%s" postag="%s"/>`,
			encoding.EscapeXMLAttr(strings.ToLower(v.Label())),
			encoding.EscapeXMLAttr(sent[leaf.Int()]),
			encoding.EscapeXMLAttr(lemma),
			encoding.EscapeXMLAttr(postag))
		return nil
	}

	sb.WriteString(`<alpino_ds version="1.3">`)
	if err := add(t); err != nil {
		return "", err
	}
	sb.WriteString("<sentence>" + encoding.EscapeXMLText(strings.Join(sent, " ")) + "</sentence>")
	if comment != "" {
		id += "|" + comment
	}
	sb.WriteString("<comment>" + encoding.EscapeXMLText(id) + "</comment>")
	sb.WriteString("</alpino_ds>")

	out, err := xml.Format([]byte(sb.String()), xml.FormatOptions{Indent: "  "})
	if err != nil {
		return "", err
	}
	return string(out), nil
}
