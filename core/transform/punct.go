package transform

import (
	"slices"
	"strings"

	"github.com/FocuswithJustin/treebank/core/tree"
)

// punctTags are part-of-speech tags for punctuation across the supported
// treebanks (Penn, Negra/Tiger, Alpino/Lassy, GF, Chinese).
var punctTags = map[string]bool{
	"''": true, "``": true, "-LRB-": true, "-RRB-": true, ".": true, ":": true, ",": true,
	"$,": true, "$.": true, "$[": true, "$(": true,
	"let": true, "LET[]": true, "SPEC[symb]": true, "TW[hoofd,vrij]": true,
	"COMMA": true, "COLON": true,
	"PUNC": true, "PU": true,
}

var punctWords = map[string]bool{}

func init() {
	for _, w := range strings.Fields(`. , ( ) : ' - " ; ? / ! * & ` + "`" + ` [ ] < > { } | = « » · … “ ” „ ‘ ’ – — -LRB- -RRB- '' ` + "``") {
		punctWords[w] = true
	}
}

// balancedPunct maps an opening mark to the mark that closes it.
var balancedPunct = map[string]string{
	`"`:     `"`,
	"'":     "'",
	"``":    "''",
	"[":     "]",
	"(":     ")",
	"-LRB-": "-RRB-",
	"-":     "-",
	"«":     "»",
	"„":     "“",
	"‘":     "’",
	"“":     "”",
}

// IsPunct reports whether a token or its tag denotes punctuation. Either
// may be empty when unknown.
func IsPunct(word, tag string) bool {
	return punctTags[tag] || strings.HasPrefix(tag, "$") || punctWords[word]
}

func isPunctNode(pt *tree.ParentedTree, sent []string) bool {
	i := leafOf(pt)
	return i >= 0 && i < len(sent) && IsPunct(sent[i], pt.Label())
}

// PunctRemove deletes punctuation preterminals and ancestors left empty,
// renumbers the leaves and returns the reduced sentence.
func PunctRemove(t *tree.ParentedTree, sent []string) ([]string, error) {
	return removeLeaves(t, sent, IsPunct)
}

// PunctRoot moves every punctuation preterminal directly under the root, as
// in the Negra annotation. Ancestors left empty are removed.
func PunctRoot(t *tree.ParentedTree, sent []string) error {
	var moved []tree.Node
	for _, pt := range preterminals(t) {
		if pt == t || !isPunctNode(pt, sent) {
			continue
		}
		if err := prune(pt); err != nil {
			return err
		}
		moved = append(moved, pt)
	}
	return t.Append(moved...)
}

// PunctRaise attaches punctuation preterminals directly under the root to a
// more appropriate constituent: the first phrasal node in preorder with a
// child that starts right after the mark. Marks without such a node stay
// under the root. With all set, every preterminal under the root is moved,
// not only punctuation.
func PunctRaise(t *tree.ParentedTree, sent []string, all bool) error {
	var marks []*tree.ParentedTree
	for i := range t.Len() {
		pt, ok := t.Child(i).(*tree.ParentedTree)
		if ok && tree.IsPreterminal(pt) && (all || isPunctNode(pt, sent)) {
			marks = append(marks, pt)
		}
	}
	for i := len(marks) - 1; i >= 0; i-- {
		node := marks[i]
		for node != t && node.Parent().Len() == 1 {
			node = node.Parent()
		}
		if node == t {
			continue
		}
		mark := tree.MinLeaf(node)
		if err := node.Detach(); err != nil {
			return err
		}
		var target *tree.ParentedTree
		for v := range tree.Subtrees(t, isPhrasal) {
			cand := v.(*tree.ParentedTree)
			if slices.ContainsFunc(cand.Children(), func(c tree.Node) bool { return sortKey(c) == mark+1 }) {
				target = cand
				break
			}
		}
		if target == nil {
			target = t
		}
		if err := target.Append(node); err != nil {
			return err
		}
	}
	return nil
}

func isPhrasal(v tree.View) bool {
	if v.Len() == 0 {
		return false
	}
	_, ok := v.Child(0).(tree.View)
	return ok
}

// BalancedPunctRaise moves paired punctuation (quotes, brackets, dashes) so
// that both marks of a pair share a constituent: a closing mark joins the
// constituent ending just before it, or an opening mark joins the one
// starting just after it.
func BalancedPunctRaise(t *tree.ParentedTree, sent []string) error {
	byLeaf := map[int]*tree.ParentedTree{}
	var leaves []int
	for _, pt := range preterminals(t) {
		if pt != t && isPunctNode(pt, sent) {
			byLeaf[leafOf(pt)] = pt
			leaves = append(leaves, leafOf(pt))
		}
	}
	open := map[string]int{} // expected closing mark -> index of opening mark
	for _, right := range leaves {
		pt := byLeaf[right]
		word := sent[right]
		if left, ok := open[word]; ok && pt.Label() != "$," {
			delete(open, word)
			leftParent := byLeaf[left].Parent()
			rightParent := pt.Parent()
			if leftParent == nil || rightParent == nil || leftParent == rightParent {
				continue
			}
			switch {
			case maxLeaf(leftParent) == right-1:
				if err := pt.Detach(); err != nil {
					return err
				}
				if err := leftParent.Append(pt); err != nil {
					return err
				}
				if err := pruneEmpty(rightParent); err != nil {
					return err
				}
			case tree.MinLeaf(rightParent) == left+1:
				node := byLeaf[left]
				if err := node.Detach(); err != nil {
					return err
				}
				if err := rightParent.Insert(0, node); err != nil {
					return err
				}
				if err := pruneEmpty(leftParent); err != nil {
					return err
				}
			}
		} else if closing, ok := balancedPunct[word]; ok && pt.Label() != "$," {
			open[closing] = right
		}
	}
	return nil
}

// pruneEmpty removes n if moving a child away left it empty.
func pruneEmpty(n *tree.ParentedTree) error {
	if n.Len() == 0 {
		return prune(n)
	}
	return nil
}

func maxLeaf(v tree.View) int {
	m := -1
	for _, l := range tree.Leaves(v) {
		m = max(m, l.Int())
	}
	return m
}
