package treebank

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/treebank/core/encoding"
	"github.com/FocuswithJustin/treebank/core/errors"
	"github.com/FocuswithJustin/treebank/core/transform"
	"github.com/FocuswithJustin/treebank/core/tree"
)

// WriteOptions qualifies WriteTree.
type WriteOptions struct {
	// Comment goes in the comment field of export and alpino, after a tab
	// for bracket and discbracket, and on a preceding "%% " line otherwise.
	Comment string
	// HeadRules are required for conll and mst.
	HeadRules transform.HeadRules
	// Morphology is the policy the tree was read with; export uses it to
	// recover morphology folded into labels.
	Morphology MorphologyPolicy
}

// WriteTree renders a tree whose leaves index sent in the given format.
// id identifies the tree in formats that record it (export, alpino).
func WriteTree(t tree.View, sent []string, id string, format Format, opts WriteOptions) (string, error) {
	var result string
	switch format {
	case Bracket:
		s, err := bracketString(t, sent)
		if err != nil {
			return "", err
		}
		result = s + "\n"
	case DiscBracket:
		quoted := make([]string, len(sent))
		for i, w := range sent {
			quoted[i] = encoding.QuoteToken(w)
		}
		result = tree.Format(t) + "\t" + strings.Join(quoted, " ") + "\n"
	case Tokens:
		result = strings.Join(sent, " ") + "\n"
	case WordPos:
		pairs := make([]string, 0, len(sent))
		for i, tl := range sortedPos(t) {
			if i >= len(sent) {
				break
			}
			pairs = append(pairs, sent[i]+"/"+tl.Tag)
		}
		result = strings.Join(pairs, " ") + "\n"
	case Export:
		return writeExport(t, sent, id, opts.Comment, opts.Morphology)
	case Alpino:
		return writeAlpino(t, sent, id, opts.Comment)
	case Conll, MST:
		s, err := writeDependencies(t, sent, format, opts.HeadRules)
		if err != nil {
			return "", err
		}
		result = s
	default:
		return "", errors.NewUnsupported("output format", format.String())
	}
	switch {
	case opts.Comment != "" && (format == Bracket || format == DiscBracket):
		return strings.TrimRight(result, "\n") + "\t" + opts.Comment + "\n", nil
	case opts.Comment != "":
		return "%% " + opts.Comment + "\n" + result, nil
	}
	return result, nil
}

// bracketString writes t with each integer leaf replaced by its quoted
// token. An absent token yields an empty node, "(X )".
func bracketString(t tree.View, sent []string) (string, error) {
	var conv func(v tree.View) (*tree.Tree, error)
	conv = func(v tree.View) (*tree.Tree, error) {
		out := tree.New(v.Label())
		for i := range v.Len() {
			switch c := v.Child(i).(type) {
			case tree.Leaf:
				if !c.IsInt() {
					if err := out.Append(c); err != nil {
						return nil, err
					}
					continue
				}
				if c.Int() < 0 || c.Int() >= len(sent) {
					return nil, errors.NewSemantic("leaf %d outside sentence of %d tokens", c.Int(), len(sent))
				}
				if w := sent[c.Int()]; w != "" {
					if err := out.Append(tree.TextLeaf(encoding.QuoteToken(w))); err != nil {
						return nil, err
					}
				}
			case tree.View:
				sub, err := conv(c)
				if err != nil {
					return nil, err
				}
				if err := out.Append(sub); err != nil {
					return nil, err
				}
			}
		}
		return out, nil
	}
	out, err := conv(t)
	if err != nil {
		return "", err
	}
	return tree.Format(out), nil
}

// sortedPos returns the tagged leaves of t ordered by leaf.
func sortedPos(t tree.View) []tree.TaggedLeaf {
	pos := tree.Pos(t)
	slices.SortStableFunc(pos, func(a, b tree.TaggedLeaf) int {
		return tree.CompareLeaves(a.Leaf, b.Leaf)
	})
	return pos
}

// writeDependencies converts t to unlabeled dependencies, one token per
// line (conll) or as three tab-separated lines of words, tags and heads
// (mst).
func writeDependencies(t tree.View, sent []string, format Format, rules transform.HeadRules) (string, error) {
	if len(rules) == 0 {
		return "", errors.NewSemantic("%s output requires head rules", format)
	}
	pt, ok := t.(*tree.ParentedTree)
	if !ok {
		pt = tree.ToParented(t)
	}
	deps, err := transform.Dependencies(pt, rules)
	if err != nil {
		return "", err
	}
	pos := sortedPos(t)
	n := min(len(sent), len(pos), len(deps))

	var sb strings.Builder
	switch format {
	case MST:
		tags := make([]string, len(pos))
		for i, tl := range pos {
			tags[i] = tl.Tag
		}
		heads := make([]string, len(deps))
		for i, d := range deps {
			heads[i] = strconv.Itoa(d.Head)
		}
		sb.WriteString(strings.Join(sent, "\t") + "\n")
		sb.WriteString(strings.Join(tags, "\t") + "\n")
		sb.WriteString(strings.Join(heads, "\t") + "\n")
	default:
		for i := range n {
			d := deps[i]
			fmt.Fprintf(&sb, "%d\t%s\t_\t%s\t%s\t_\t%d\t%s\t_\t_\n", d.Child, sent[i], pos[i].Tag, pos[i].Tag, d.Head, d.Rel)
		}
	}
	sb.WriteByte('\n')
	return sb.String(), nil
}

// Writer writes items to an underlying stream in one format, numbering
// them from 1 when an item has no id of its own.
type Writer struct {
	w      io.Writer
	format Format
	opts   WriteOptions
	n      int
}

// NewWriter returns a writer for format. Comments of written items override
// opts.Comment.
func NewWriter(w io.Writer, format Format, opts WriteOptions) *Writer {
	return &Writer{w: w, format: format, opts: opts}
}

// Write renders one item.
func (w *Writer) Write(item *Item) error {
	w.n++
	id := item.ID
	if id == "" {
		id = strconv.Itoa(w.n)
	}
	opts := w.opts
	if item.Comment != "" {
		opts.Comment = item.Comment
	}
	s, err := WriteTree(item.Tree, item.Sent, id, w.format, opts)
	if err != nil {
		return errors.Wrapf(err, "write %s", id)
	}
	if _, err := io.WriteString(w.w, s); err != nil {
		return errors.NewIO("write", "", err)
	}
	return nil
}

// Count returns the number of items written.
func (w *Writer) Count() int { return w.n }
