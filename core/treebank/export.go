package treebank

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"iter"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/treebank/core/encoding"
	"github.com/FocuswithJustin/treebank/core/errors"
	"github.com/FocuswithJustin/treebank/core/tree"
)

// Export columns after ExportSplit.
const (
	colWord = iota
	colLemma
	colTag
	colMorph
	colFunc
	colParent
	colSecEdges
)

var exportNonterminal = regexp.MustCompile(`^#([0-9]+)$`)

// ExportSplit splits a row of the export format into fields: word, lemma,
// tag, morph, function, parent and zero or more pairs of secondary edge
// label and parent. Everything after "%%" is a comment. An absent lemma
// column (an odd number of fields) is inserted as "", and a row without
// secondary edges gets one empty pair.
func ExportSplit(line string) ([]string, error) {
	fields := encoding.Fields(line)
	n := len(fields)
	if n < 5 {
		return nil, &errors.FormatError{Format: "export", Fragment: line, Message: fmt.Sprintf("expected at least 5 columns, got %d", n)}
	}
	if n%2 == 1 {
		fields = slices.Insert(fields, 1, "")
	}
	if n <= 6 {
		fields = append(fields, "", "")
	}
	return fields, nil
}

// sourceFromRow keeps the columns of an export row on a node.
func sourceFromRow(row []string) *tree.Source {
	src := &tree.Source{
		Word:   row[colWord],
		Lemma:  row[colLemma],
		Tag:    row[colTag],
		Morph:  row[colMorph],
		Func:   row[colFunc],
		Parent: row[colParent],
	}
	for i := colSecEdges; i+1 < len(row); i += 2 {
		if row[i] == "" && row[i+1] == "" {
			continue
		}
		src.SecEdges = append(src.SecEdges, tree.SecEdge{Label: row[i], Parent: row[i+1]})
	}
	return src
}

// ExportTree builds a tree from the rows of one export block, without the
// #BOS and #EOS lines. Leaves are the indices of terminal rows, which must
// precede the nonterminal rows. The root is labeled ROOT.
func ExportTree(lines []string, opts Options) (*tree.ParentedTree, []string, error) {
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		if len(encoding.Fields(line)) == 0 {
			continue
		}
		row, err := ExportSplit(line)
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, row)
	}
	return exportRows(rows, opts)
}

func exportRows(rows [][]string, opts Options) (*tree.ParentedTree, []string, error) {
	var sent []string
	for _, row := range rows {
		if exportNonterminal.MatchString(row[colWord]) {
			break
		}
		sent = append(sent, row[colWord])
	}

	children := make(map[string][]int)
	nonterminals := make(map[string]bool)
	for n, row := range rows {
		children[row[colParent]] = append(children[row[colParent]], n)
		if m := exportNonterminal.FindStringSubmatch(row[colWord]); m != nil {
			if m[1] == "0" {
				return nil, nil, errors.NewSemantic("node id #0 is reserved for the root")
			}
			if nonterminals[m[1]] {
				return nil, nil, errors.NewSemantic("duplicate node id #%s", m[1])
			}
			nonterminals[m[1]] = true
		}
	}

	visited := 0
	var build func(parent string) ([]tree.Node, error)
	build = func(parent string) ([]tree.Node, error) {
		var out []tree.Node
		for _, n := range children[parent] {
			visited++
			row := rows[n]
			src := sourceFromRow(row)
			var child *tree.Tree
			if m := exportNonterminal.FindStringSubmatch(row[colWord]); m != nil {
				sub, err := build(m[1])
				if err != nil {
					return nil, err
				}
				child = tree.New(row[colTag], sub...)
				child.SetSource(src)
			} else {
				if n >= len(sent) {
					return nil, &errors.FormatError{Format: "export", Fragment: strings.Join(row, "\t"), Message: "terminal after nonterminal rows"}
				}
				child = tree.New(row[colTag], tree.IntLeaf(n))
				child.SetSource(src)
				if err := HandleMorphology(opts.Morphology, opts.Lemmas, child, src, sent); err != nil {
					return nil, err
				}
			}
			out = append(out, child)
		}
		return out, nil
	}
	top, err := build("0")
	if err != nil {
		return nil, nil, err
	}
	if visited != len(rows) {
		return nil, nil, errors.NewSemantic("%d of %d export rows are not connected to the root", len(rows)-visited, len(rows))
	}
	t := tree.ToParented(tree.New("ROOT", top...))
	if err := HandleFunctions(opts.Functions, t, FunctionOptions{POS: true, Morphology: opts.Morphology}); err != nil {
		return nil, nil, err
	}
	return t, sent, nil
}

// splitBOS returns the id and comment of a #BOS line. The comment is the
// rest of the line after the id, without a leading "%%".
func splitBOS(line string) (string, string) {
	rest := strings.TrimSpace(line[len("#BOS "):])
	id, comment, _ := strings.Cut(rest, " ")
	comment = strings.TrimSpace(comment)
	comment = strings.TrimSpace(strings.TrimPrefix(comment, "%%"))
	return id, comment
}

// exportBlocks splits an export file into the blocks between #BOS and #EOS.
// Lines outside blocks, such as #FORMAT lines and %% comments, are ignored.
// seen carries block ids across files; a repeated id is an error.
func exportBlocks(r io.Reader, seen map[string]bool) iter.Seq2[Block, error] {
	return func(yield func(Block, error) bool) {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 64*1024), maxLineSize)
		var (
			open            bool
			id, comment     string
			bos             string
			lines           []string
			lineNo, started int
		)
		fail := func(msg, fragment string) {
			yield(Block{}, &errors.FormatError{
				Format:   "export",
				Block:    id,
				Fragment: fragment,
				Message:  fmt.Sprintf("line %d: %s", lineNo, msg),
			})
		}
		for sc.Scan() {
			lineNo++
			line := sc.Text()
			switch {
			case strings.HasPrefix(line, "#BOS "):
				if open {
					fail(fmt.Sprintf("#BOS while block %s from line %d is still open", id, started), line)
					return
				}
				id, comment = splitBOS(line)
				if id == "" {
					fail("#BOS without an id", line)
					return
				}
				open, bos, lines, started = true, strings.TrimSpace(line), nil, lineNo
			case strings.HasPrefix(line, "#EOS "):
				if !open {
					fail("#EOS without #BOS", line)
					return
				}
				eos := strings.TrimSpace(line[len("#EOS "):])
				if eos != id {
					fail(fmt.Sprintf("#EOS %s does not match #BOS %s", eos, id), line)
					return
				}
				if seen[id] {
					fail("duplicate sentence id "+id, line)
					return
				}
				seen[id] = true
				open = false

				var sb strings.Builder
				sb.WriteString(bos)
				sb.WriteByte('\n')
				for _, l := range lines {
					sb.WriteString(l)
					sb.WriteByte('\n')
				}
				sb.WriteString("#EOS " + id + "\n")
				blockLines, blockComment := lines, comment
				b := Block{
					ID:   id,
					Text: sb.String(),
					parse: func(opts Options) (*tree.ParentedTree, []string, string, error) {
						t, sent, err := ExportTree(blockLines, opts)
						return t, sent, blockComment, err
					},
				}
				if !yield(b, nil) {
					return
				}
			case open:
				lines = append(lines, strings.TrimSpace(line))
			}
		}
		if err := sc.Err(); err != nil {
			yield(Block{}, errors.NewIO("read", "", err))
			return
		}
		if open {
			fail(fmt.Sprintf("missing #EOS for block %s from line %d", id, started), bos)
		}
	}
}

// writeExport renders a tree in export format. Phrasal nodes are numbered
// from 500 in postorder; the root itself is not written and acts as parent
// 0. Secondary edges are renumbered to match. An empty id omits the #BOS
// and #EOS lines.
func writeExport(t tree.View, sent []string, id, comment string, morph MorphologyPolicy) (string, error) {
	type node struct{ v, parent tree.View }
	var (
		phrasal []node
		leaves  = make(map[int]node)
		nleaves int
	)
	var walk func(v, parent tree.View)
	walk = func(v, parent tree.View) {
		hasLeaf := false
		for i := range v.Len() {
			switch c := v.Child(i).(type) {
			case tree.Leaf:
				hasLeaf = true
				nleaves++
				leaves[c.Int()] = node{v, parent}
			case tree.View:
				walk(c, v)
			}
		}
		if parent != nil && !hasLeaf {
			phrasal = append(phrasal, node{v, parent})
		}
	}
	walk(t, nil)
	if len(sent) != nleaves || len(sent) != len(leaves) {
		return "", errors.NewSemantic("block %s: %d tokens for %d leaves (%d distinct)", id, len(sent), nleaves, len(leaves))
	}
	ids := make(map[tree.View]int, len(phrasal))
	for i, n := range phrasal {
		ids[n.v] = 500 + i
	}
	parentID := func(v tree.View) (string, error) {
		if v == nil || v == t {
			return "0", nil
		}
		if n, ok := ids[v]; ok {
			return strconv.Itoa(n), nil
		}
		return "", errors.NewSemantic("block %s: %s dominates both words and phrases", id, v.Label())
	}

	// secondary edges name their parent by the id it was read with
	secIDs := map[string]string{"0": "0"}
	if src := t.Source(); src != nil {
		if orig, ok := strings.CutPrefix(src.Word, "#"); ok && orig != "" {
			secIDs[orig] = "0"
		}
	}
	for i, n := range phrasal {
		if src := n.v.Source(); src != nil {
			if orig, ok := strings.CutPrefix(src.Word, "#"); ok && orig != "" {
				secIDs[orig] = strconv.Itoa(500 + i)
			}
		}
	}

	var sb strings.Builder
	if id != "" {
		sb.WriteString("#BOS " + id)
		if comment != "" {
			sb.WriteString(" %% " + comment)
		}
		sb.WriteByte('\n')
	}
	writeRow := func(fields []string, src *tree.Source) error {
		sb.WriteString(strings.Join(fields, "\t"))
		if src != nil {
			for _, e := range src.SecEdges {
				parent, ok := secIDs[e.Parent]
				if !ok {
					return errors.NewSemantic("block %s: secondary edge %s of %s to unknown node %s", id, e.Label, fields[0], e.Parent)
				}
				sb.WriteString("\t" + e.Label + "\t" + parent)
			}
		}
		sb.WriteByte('\n')
		return nil
	}
	for i, word := range sent {
		if word == "" {
			return "", errors.NewSemantic("block %s: empty word at position %d", id, i)
		}
		n, ok := leaves[i]
		if !ok {
			return "", errors.NewSemantic("block %s: no leaf for word %d", id, i)
		}
		lemma, morphTag, fn := "--", "--", "--"
		postag := cmp.Or(encoding.ExportTag(n.v.Label()), "--")
		src := n.v.Source()
		if src != nil {
			lemma = cmp.Or(src.Lemma, "--")
			morphTag = cmp.Or(src.Morph, "--")
			fn = cmp.Or(src.Func, "--")
		}
		if morphTag == "--" && morph == MorphReplace {
			morphTag = postag
		} else if morphTag == "--" && morph == MorphAdd && strings.Contains(postag, "/") {
			postag, morphTag, _ = strings.Cut(postag, "/")
		}
		parent, err := parentID(n.parent)
		if err != nil {
			return "", err
		}
		if err := writeRow([]string{word, lemma, postag, morphTag, fn, parent}, src); err != nil {
			return "", err
		}
	}
	for i, n := range phrasal {
		morphTag, fn := "--", "--"
		src := n.v.Source()
		if src != nil {
			morphTag = cmp.Or(src.Morph, "--")
			fn = cmp.Or(src.Func, "--")
		}
		parent, err := parentID(n.parent)
		if err != nil {
			return "", err
		}
		if err := writeRow([]string{"#" + strconv.Itoa(500+i), "--", cmp.Or(n.v.Label(), "--"), morphTag, fn, parent}, src); err != nil {
			return "", err
		}
	}
	if id != "" {
		sb.WriteString("#EOS " + id + "\n")
	}
	return sb.String(), nil
}
