package transform

import (
	"slices"
	"strings"

	"github.com/FocuswithJustin/treebank/core/tree"
)

// BaseLabel strips function tags, coindexation and morphology from a label
// and upper-cases it: "np-sbj=2" and "NP/acc" both become "NP". A leading
// dash is kept, so "-NONE-" is unchanged.
func BaseLabel(label string) string {
	if i := strings.IndexAny(label, "-=/["); i > 0 {
		label = label[:i]
	}
	return strings.ToUpper(label)
}

// IsHead reports whether n is marked as a head, either by SetHead or by a
// grammatical function HD.
func IsHead(n tree.Node) bool {
	v, ok := n.(tree.View)
	if !ok || v.Source() == nil {
		return false
	}
	src := v.Source()
	return src.Head || slices.Contains(strings.Split(strings.ToUpper(src.Func), "-"), "HD")
}

// HeadFinder selects the head child of a phrasal node. A child whose
// function is HD wins outright. Otherwise the rules for the node's base
// label are tried in order; the first rule matching any child decides. The
// fallback is the first child that is not punctuation, then the first child.
func HeadFinder(n *tree.ParentedTree, rules HeadRules) *tree.ParentedTree {
	var children []*tree.ParentedTree
	for i := range n.Len() {
		if c, ok := n.Child(i).(*tree.ParentedTree); ok {
			children = append(children, c)
		}
	}
	if len(children) == 0 {
		return nil
	}
	for _, c := range children {
		if IsHead(c) {
			return c
		}
	}
	for _, rule := range rules[BaseLabel(n.Label())] {
		ordered := children
		if rule.Direction == RightToLeft || rule.Direction == Right {
			ordered = slices.Clone(children)
			slices.Reverse(ordered)
		}
		switch rule.Direction {
		case LeftToRight, RightToLeft:
			for _, cand := range rule.Candidates {
				for _, c := range ordered {
					if BaseLabel(c.Label()) == cand {
						return c
					}
				}
			}
		case Left, Right:
			for _, c := range ordered {
				if slices.Contains(rule.Candidates, BaseLabel(c.Label())) {
					return c
				}
			}
		}
	}
	for _, c := range children {
		if !IsPunct("", c.Label()) {
			return c
		}
	}
	return children[0]
}

// SetHead marks n as the head of its parent.
func SetHead(n *tree.ParentedTree) {
	if n == nil {
		return
	}
	src := n.Source().Clone()
	if src == nil {
		src = &tree.Source{}
	}
	src.Head = true
	n.SetSource(src)
}

// HeadMark appends -HD to the label of the head child of n.
func HeadMark(n *tree.ParentedTree) {
	for i := range n.Len() {
		c, ok := n.Child(i).(*tree.ParentedTree)
		if ok && IsHead(c) {
			if !strings.HasSuffix(c.Label(), "-HD") {
				c.SetLabel(c.Label() + "-HD")
			}
			return
		}
	}
}

// HeadOrder moves the head child of n to the end (final) or the front.
// For A B C^ D E:
//
//	final:            E D A B C^
//	final, reverse:   A B E D C^
//	initial:          C^ D E B A
//	initial, reverse: C^ B A D E
func HeadOrder(n *tree.ParentedTree, final, reverse bool) error {
	head := -1
	for i := range n.Len() {
		if IsHead(n.Child(i)) {
			head = i
		}
	}
	if head < 0 {
		return nil
	}
	idx := make([]int, n.Len())
	for i := range idx {
		idx[i] = i
	}
	rev := func(s []int) []int {
		s = slices.Clone(s)
		slices.Reverse(s)
		return s
	}
	var perm []int
	switch {
	case final && reverse:
		perm = slices.Concat(idx[:head], rev(idx[head:]))
	case final:
		perm = slices.Concat(rev(idx[head+1:]), idx[:head+1])
	case reverse:
		perm = slices.Concat(rev(idx[:head+1]), idx[head+1:])
	default:
		perm = slices.Concat(idx[head:], rev(idx[:head]))
	}
	return n.Reorder(perm)
}

// ApplyHeads assigns heads to every phrasal node of t and reorders each
// node around its head; with mark set, head labels get a -HD suffix.
func ApplyHeads(t *tree.ParentedTree, rules HeadRules, final, reverse, mark bool) error {
	for v := range tree.Subtrees(t, isPhrasal) {
		n := v.(*tree.ParentedTree)
		SetHead(HeadFinder(n, rules))
		if err := HeadOrder(n, final, reverse); err != nil {
			return err
		}
		if mark {
			HeadMark(n)
		}
	}
	return nil
}
