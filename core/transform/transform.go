// Package transform implements the linguistic transformations applied to
// trees after reading: empty-node removal, constituent reordering,
// punctuation placement, head assignment and dependency extraction.
//
// All transformations work in place on single-parent trees whose leaves are
// sentence positions.
package transform

import (
	"slices"

	"github.com/FocuswithJustin/treebank/core/tree"
)

// DefaultEmptyTokens are the tokens RemoveEmptyNodes treats as empty.
var DefaultEmptyTokens = []string{"", "-NONE-"}

// preterminals returns the preterminals of t in leaf order.
func preterminals(t *tree.ParentedTree) []*tree.ParentedTree {
	var out []*tree.ParentedTree
	for v := range tree.Subtrees(t, tree.IsPreterminal) {
		out = append(out, v.(*tree.ParentedTree))
	}
	slices.SortStableFunc(out, func(a, b *tree.ParentedTree) int {
		return leafOf(a) - leafOf(b)
	})
	return out
}

// leafOf returns the index of a preterminal's leaf.
func leafOf(pt *tree.ParentedTree) int {
	return pt.Child(0).(tree.Leaf).Int()
}

// prune detaches n and every ancestor left without children, stopping at
// the root, which is never removed.
func prune(n *tree.ParentedTree) error {
	for {
		parent := n.Parent()
		if parent == nil {
			return nil
		}
		if err := n.Detach(); err != nil {
			return err
		}
		if parent.Len() > 0 || parent.Parent() == nil {
			return nil
		}
		n = parent
	}
}

// renumber maps the remaining leaves onto 0..k-1 preserving their order and
// returns the sentence restricted to them.
func renumber(t *tree.ParentedTree, sent []string) ([]string, error) {
	var old []int
	for _, l := range tree.Leaves(t) {
		old = append(old, l.Int())
	}
	slices.Sort(old)
	newIdx := make(map[int]int, len(old))
	newSent := make([]string, 0, len(old))
	for i, o := range old {
		newIdx[o] = i
		if o >= 0 && o < len(sent) {
			newSent = append(newSent, sent[o])
		}
	}
	for _, pos := range tree.TreePositions(t, tree.LeavesOrder) {
		n, err := t.At(pos)
		if err != nil {
			return nil, err
		}
		if err := t.SetAt(pos, tree.IntLeaf(newIdx[n.(tree.Leaf).Int()])); err != nil {
			return nil, err
		}
	}
	return newSent, nil
}

// removeLeaves deletes every preterminal for which drop returns true,
// together with ancestors left empty, renumbers the remaining leaves and
// returns the reduced sentence.
func removeLeaves(t *tree.ParentedTree, sent []string, drop func(word, tag string) bool) ([]string, error) {
	removed := false
	for _, pt := range preterminals(t) {
		i := leafOf(pt)
		if i < 0 || i >= len(sent) || !drop(sent[i], pt.Label()) {
			continue
		}
		if err := prune(pt); err != nil {
			return nil, err
		}
		removed = true
	}
	if !removed {
		return sent, nil
	}
	return renumber(t, sent)
}

// RemoveEmptyNodes deletes preterminals whose token is empty, or whose tag
// is -NONE-, and any ancestors left without children. Remaining leaves are
// renumbered and the reduced sentence is returned. A nil isEmpty uses
// DefaultEmptyTokens.
func RemoveEmptyNodes(t *tree.ParentedTree, sent []string, isEmpty func(word string) bool) ([]string, error) {
	if isEmpty == nil {
		isEmpty = func(word string) bool { return slices.Contains(DefaultEmptyTokens, word) }
	}
	return removeLeaves(t, sent, func(word, tag string) bool {
		return isEmpty(word) || tag == "-NONE-"
	})
}

// EnsureRoot returns t unchanged when its label is label, and otherwise a
// new root labeled label with t as its only child.
func EnsureRoot(t *tree.ParentedTree, label string) (*tree.ParentedTree, error) {
	if label == "" || t.Label() == label {
		return t, nil
	}
	return t.Arena().NewParented(label, t)
}

// sortKey orders a child by its smallest leaf.
func sortKey(n tree.Node) int {
	switch n := n.(type) {
	case tree.Leaf:
		return n.Int()
	case tree.View:
		return tree.MinLeaf(n)
	}
	return -1
}

// SortByLeaves reorders the children of every node by their smallest leaf,
// bottom-up. Formats that store children in logical order, such as export,
// need this to approximate surface order.
func SortByLeaves(t *tree.ParentedTree) error {
	nodes := slices.Collect(tree.Subtrees(t, func(v tree.View) bool { return v.Len() > 1 }))
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i].(*tree.ParentedTree)
		perm := make([]int, n.Len())
		for j := range perm {
			perm[j] = j
		}
		slices.SortStableFunc(perm, func(a, b int) int {
			return sortKey(n.Child(a)) - sortKey(n.Child(b))
		})
		if err := n.Reorder(perm); err != nil {
			return err
		}
	}
	return nil
}
