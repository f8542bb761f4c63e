package tree

import (
	"iter"
	"slices"
	"strings"

	"github.com/FocuswithJustin/treebank/core/errors"
)

// Position is a path of child indices from the root; the empty position is
// the root itself.
type Position []int

// Dominates reports whether p is a prefix of q (a node dominates itself).
func (p Position) Dominates(q Position) bool {
	return len(p) <= len(q) && slices.Equal(p, q[:len(p)])
}

// Order selects a traversal order for TreePositions.
type Order int

const (
	PreOrder Order = iota
	PostOrder
	// BothOrder lists each subtree position before and after its children.
	BothOrder
	// LeavesOrder lists leaf positions only.
	LeavesOrder
)

// TaggedLeaf pairs a leaf with the label of the node directly above it.
type TaggedLeaf struct {
	Leaf Leaf
	Tag  string
}

// Leaves returns the leaves of v in depth-first order.
func Leaves(v View) []Leaf {
	var out []Leaf
	var walk func(View)
	walk = func(v View) {
		for i := range v.Len() {
			switch c := v.Child(i).(type) {
			case Leaf:
				out = append(out, c)
			case View:
				walk(c)
			}
		}
	}
	walk(v)
	return out
}

// Height is 1 for a childless node, 2 for a node with only leaves, and one
// more than its tallest child otherwise.
func Height(v View) int {
	h := 0
	for i := range v.Len() {
		switch c := v.Child(i).(type) {
		case Leaf:
			h = max(h, 1)
		case View:
			h = max(h, Height(c))
		}
	}
	return 1 + h
}

// TreePositions returns the positions of v in the given order. Leaves are
// included in every order.
func TreePositions(v View, order Order) []Position {
	var out []Position
	var walk func(View, Position)
	walk = func(v View, pos Position) {
		if order == PreOrder || order == BothOrder {
			out = append(out, slices.Clone(pos))
		}
		for i := range v.Len() {
			child := append(slices.Clone(pos), i)
			switch c := v.Child(i).(type) {
			case Leaf:
				out = append(out, child)
			case View:
				walk(c, child)
			}
		}
		if order == PostOrder || order == BothOrder {
			out = append(out, slices.Clone(pos))
		}
	}
	walk(v, Position{})
	return out
}

// Subtrees yields v and its descendant subtrees in preorder, filtered by
// pred when it is non-nil. The sequence may be iterated more than once.
func Subtrees(v View, pred func(View) bool) iter.Seq[View] {
	return func(yield func(View) bool) {
		var walk func(View) bool
		walk = func(v View) bool {
			if pred == nil || pred(v) {
				if !yield(v) {
					return false
				}
			}
			for i := range v.Len() {
				if c, ok := v.Child(i).(View); ok {
					if !walk(c) {
						return false
					}
				}
			}
			return true
		}
		walk(v)
	}
}

// Pos returns every leaf with the label of its parent, in document order.
func Pos(v View) []TaggedLeaf {
	var out []TaggedLeaf
	var walk func(View)
	walk = func(v View) {
		for i := range v.Len() {
			switch c := v.Child(i).(type) {
			case Leaf:
				out = append(out, TaggedLeaf{Leaf: c, Tag: v.Label()})
			case View:
				walk(c)
			}
		}
	}
	walk(v)
	return out
}

// IsPreterminal reports whether v has exactly one child and it is a leaf.
func IsPreterminal(v View) bool {
	if v.Len() != 1 {
		return false
	}
	_, ok := v.Child(0).(Leaf)
	return ok
}

// At resolves pos one segment at a time.
func At(v View, pos Position) (Node, error) {
	var n Node = v
	for depth, i := range pos {
		cur, ok := n.(View)
		if !ok {
			return nil, errors.OutOfRange("position %v passes through a leaf at depth %d", pos, depth)
		}
		j, err := normIndex(i, cur.Len())
		if err != nil {
			return nil, errors.Wrapf(err, "position %v", pos)
		}
		n = cur.Child(j)
	}
	return n, nil
}

// LeafTreePosition returns the position of the index-th leaf.
func LeafTreePosition(v View, index int) (Position, error) {
	if index < 0 {
		return nil, errors.OutOfRange("leaf index %d is negative", index)
	}
	type frame struct {
		n   Node
		pos Position
	}
	stack := []frame{{v, Position{}}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch n := f.n.(type) {
		case Leaf:
			if index == 0 {
				return f.pos, nil
			}
			index--
		case View:
			for i := n.Len() - 1; i >= 0; i-- {
				stack = append(stack, frame{n.Child(i), append(slices.Clone(f.pos), i)})
			}
		}
	}
	return nil, errors.OutOfRange("leaf index exceeds number of leaves")
}

// TreePositionSpanningLeaves returns the position of the lowest node that
// dominates leaves [start:end).
func TreePositionSpanningLeaves(v View, start, end int) (Position, error) {
	if end <= start {
		return nil, errors.OutOfRange("end %d must be greater than start %d", end, start)
	}
	first, err := LeafTreePosition(v, start)
	if err != nil {
		return nil, err
	}
	last, err := LeafTreePosition(v, end-1)
	if err != nil {
		return nil, err
	}
	for i := range first {
		if i == len(last) || first[i] != last[i] {
			return first[:i], nil
		}
	}
	return first, nil
}

// Compare orders two nodes: leaves before trees; trees by label, then by
// children lexicographically.
func Compare(a, b Node) int {
	la, aLeaf := a.(Leaf)
	lb, bLeaf := b.(Leaf)
	switch {
	case aLeaf && bLeaf:
		return CompareLeaves(la, lb)
	case aLeaf:
		return -1
	case bLeaf:
		return 1
	}
	va, vb := a.(View), b.(View)
	if c := strings.Compare(va.Label(), vb.Label()); c != 0 {
		return c
	}
	for i := range min(va.Len(), vb.Len()) {
		if c := Compare(va.Child(i), vb.Child(i)); c != 0 {
			return c
		}
	}
	return va.Len() - vb.Len()
}

// Equal reports whether a and b have the same labels and leaves in the same
// shape, regardless of variant.
func Equal(a, b Node) bool {
	return Compare(a, b) == 0
}

// MinLeaf returns the smallest integer leaf under v, or -1 if there is none.
func MinLeaf(v View) int {
	m := -1
	for _, l := range Leaves(v) {
		if l.IsInt() && (m < 0 || l.Int() < m) {
			m = l.Int()
		}
	}
	return m
}

// Fanout returns the number of maximal runs of consecutive integer leaves
// under v. A continuous constituent has fan-out 1.
func Fanout(v View) int {
	var idx []int
	for _, l := range Leaves(v) {
		if l.IsInt() {
			idx = append(idx, l.Int())
		}
	}
	if len(idx) == 0 {
		return 0
	}
	slices.Sort(idx)
	idx = slices.Compact(idx)
	runs := 1
	for i := 1; i < len(idx); i++ {
		if idx[i] != idx[i-1]+1 {
			runs++
		}
	}
	return runs
}
