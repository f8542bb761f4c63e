package treebank

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/FocuswithJustin/treebank/core/encoding"
	"github.com/FocuswithJustin/treebank/core/errors"
	"github.com/FocuswithJustin/treebank/core/tree"
)

var (
	wordLeafMu sync.Mutex
	wordLeafRe = map[string]*regexp.Regexp{}
)

// wordLeafPattern matches a closer preceded by a leaf that is empty or not
// purely numeric, i.e. a tree whose terminals are words rather than
// sentence indices.
func wordLeafPattern(brackets string) *regexp.Regexp {
	wordLeafMu.Lock()
	defer wordLeafMu.Unlock()
	if re, ok := wordLeafRe[brackets]; ok {
		return re
	}
	br := regexp.QuoteMeta(brackets)
	rb := regexp.QuoteMeta(string([]rune(brackets)[1]))
	re := regexp.MustCompile(` (?:[^ ` + br + `]*[^ 0-9` + br + `][^ ` + br + `]*)?` + rb)
	wordLeafRe[brackets] = re
	return re
}

// BracketTree parses one tree in bracket or discbracket notation.
//
// When any terminal is a word, terminals are replaced by a running counter,
// the words (unquoted) become the sentence and rest, trimmed, is the
// comment. Otherwise terminals are sentence indices and rest holds the
// space-separated sentence, optionally followed by a tab and a comment; an
// empty rest yields the indices themselves as tokens.
func BracketTree(treestr, rest, brackets string) (*tree.ParentedTree, []string, string, error) {
	if len([]rune(brackets)) != 2 {
		return nil, nil, "", errors.NewConfig("brackets", brackets)
	}
	if wordLeafPattern(brackets).MatchString(treestr) {
		return wordTree(treestr, rest, brackets)
	}
	return indexTree(treestr, rest, brackets)
}

func wordTree(treestr, rest, brackets string) (*tree.ParentedTree, []string, string, error) {
	closer := string([]rune(brackets)[1])
	treestr = strings.ReplaceAll(treestr, " "+closer, " "+encoding.Frontier+closer)
	var sent []string
	t, err := tree.Parse(treestr, tree.WithBrackets(brackets), tree.WithLeafFunc(func(s string) (tree.Leaf, error) {
		sent = append(sent, encoding.UnquoteToken(s))
		return tree.IntLeaf(len(sent) - 1), nil
	}))
	if err != nil {
		return nil, nil, "", err
	}
	return tree.ToParented(t), sent, strings.TrimSpace(rest), nil
}

func indexTree(treestr, rest, brackets string) (*tree.ParentedTree, []string, string, error) {
	t, err := tree.Parse(treestr, tree.WithBrackets(brackets), tree.IntLeaves())
	if err != nil {
		return nil, nil, "", err
	}
	leaves := tree.Leaves(t)
	if len(leaves) == 0 {
		return nil, nil, "", &errors.FormatError{Format: "discbracket", Fragment: treestr, Message: "tree has no terminals"}
	}
	maxLeaf := 0
	for _, l := range leaves {
		maxLeaf = max(maxLeaf, l.Int())
	}

	var sent []string
	var comment string
	if strings.TrimSpace(rest) == "" {
		for i := range maxLeaf + 1 {
			sent = append(sent, strconv.Itoa(i))
		}
	} else {
		sent = strings.SplitN(strings.Trim(rest, "\n\r\t"), " ", maxLeaf+1)
		last := sent[len(sent)-1]
		if i := strings.IndexAny(last, "\t\n\r"); i >= 0 {
			sent[len(sent)-1], comment = last[:i], last[i+1:]
		}
		for i, w := range sent {
			sent[i] = encoding.UnquoteToken(w)
		}
	}
	for _, l := range leaves {
		if l.Int() < 0 || l.Int() >= len(sent) {
			return nil, nil, "", &errors.FormatError{
				Format:   "discbracket",
				Fragment: treestr,
				Message:  "leaf " + l.Text() + " outside sentence of " + strconv.Itoa(len(sent)) + " tokens",
			}
		}
	}
	return tree.ToParented(t), sent, comment, nil
}

// parseBracketLine reads one line of a bracket corpus: a tree with words as
// terminals, optionally followed by a tab and a comment.
func parseBracketLine(line string) (*tree.ParentedTree, []string, string, error) {
	treestr, comment, _ := strings.Cut(strings.TrimRight(line, "\n\r"), "\t")
	return wordTree(treestr, comment, "()")
}

// parseDiscBracketLine reads one line of a discbracket corpus: a tree with
// sentence indices as terminals, a tab, the sentence and optionally another
// tab and a comment.
func parseDiscBracketLine(line string) (*tree.ParentedTree, []string, string, error) {
	treestr, rest, _ := strings.Cut(strings.TrimRight(line, "\n\r"), "\t")
	return indexTree(treestr, rest, "()")
}
