package tree

import (
	"slices"

	"github.com/FocuswithJustin/treebank/core/errors"
)

// MultiParentedTree is a node of a multi-parent arena. A node may appear
// under several parents and more than once under the same parent.
type MultiParentedTree struct {
	handle
}

func (*MultiParentedTree) node() {}

// NewMultiParented creates a node in a with the given children.
func (a *Arena) NewMultiParented(label string, children ...Node) (*MultiParentedTree, error) {
	if a.kind != MultiParent {
		return nil, errors.Placement("arena is %s", a.kind)
	}
	id, err := a.build(label, children)
	if err != nil {
		return nil, err
	}
	return a.nodes[id].ref.(*MultiParentedTree), nil
}

func (t *MultiParentedTree) ref(id int) *MultiParentedTree {
	return t.a.nodes[id].ref.(*MultiParentedTree)
}

// Parents returns the distinct parents of t in attachment order.
func (t *MultiParentedTree) Parents() []*MultiParentedTree {
	out := make([]*MultiParentedTree, len(t.n().owners))
	for i, o := range t.n().owners {
		out[i] = t.ref(o)
	}
	return out
}

// ParentIndices returns every index at which t occurs among p's children.
func (t *MultiParentedTree) ParentIndices(p *MultiParentedTree) []int {
	if p == nil || p.a != t.a {
		return nil
	}
	var out []int
	for i, s := range p.n().children {
		if s.id == t.id {
			out = append(out, i)
		}
	}
	return out
}

// LeftSiblings returns the left neighbour of every occurrence of t. A node
// repeated contiguously is its own sibling.
func (t *MultiParentedTree) LeftSiblings() []Node {
	var out []Node
	for _, p := range t.Parents() {
		for _, i := range t.ParentIndices(p) {
			if i > 0 {
				out = append(out, p.Child(i-1))
			}
		}
	}
	return out
}

// RightSiblings returns the right neighbour of every occurrence of t.
func (t *MultiParentedTree) RightSiblings() []Node {
	var out []Node
	for _, p := range t.Parents() {
		for _, i := range t.ParentIndices(p) {
			if i+1 < p.Len() {
				out = append(out, p.Child(i+1))
			}
		}
	}
	return out
}

// Roots returns the distinct parentless ancestors of t, or t itself when it
// has no parents.
func (t *MultiParentedTree) Roots() []*MultiParentedTree {
	var out []*MultiParentedTree
	seen := map[int]bool{}
	var walk func(*MultiParentedTree)
	walk = func(n *MultiParentedTree) {
		if len(n.n().owners) == 0 {
			if !seen[n.id] {
				seen[n.id] = true
				out = append(out, n)
			}
			return
		}
		for _, p := range n.Parents() {
			walk(p)
		}
	}
	walk(t)
	return out
}

// TreePositionsFrom returns every position at which t occurs below root.
func (t *MultiParentedTree) TreePositionsFrom(root *MultiParentedTree) []Position {
	if t.a != root.a {
		return nil
	}
	if t.id == root.id {
		return []Position{{}}
	}
	var out []Position
	for _, p := range t.Parents() {
		for _, prefix := range p.TreePositionsFrom(root) {
			for _, i := range t.ParentIndices(p) {
				out = append(out, append(slices.Clone(prefix), i))
			}
		}
	}
	return out
}

// Copy returns a copy of t in the same arena; a shallow copy shares the
// children, which gain the copy as an additional parent.
func (t *MultiParentedTree) Copy(deep bool) *MultiParentedTree {
	if deep {
		return t.a.Convert(t).(*MultiParentedTree)
	}
	c, err := t.a.NewMultiParented(t.Label(), t.Children()...)
	if err != nil {
		// Children already live in this arena and cannot form a cycle
		// with a fresh node.
		panic(err)
	}
	c.SetSource(t.Source())
	return c
}
