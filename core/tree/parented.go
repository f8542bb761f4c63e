package tree

import (
	"github.com/FocuswithJustin/treebank/core/errors"
)

// ParentedTree is a node of a single-parent arena: every subtree knows its
// parent, and attaching a node that already has a parent fails until it is
// detached.
type ParentedTree struct {
	handle
}

func (*ParentedTree) node() {}

// NewParented creates a detached node in a. Child subtrees must belong to
// a and have no parent yet.
func (a *Arena) NewParented(label string, children ...Node) (*ParentedTree, error) {
	if a.kind != SingleParent {
		return nil, errors.Placement("arena is %s", a.kind)
	}
	id, err := a.build(label, children)
	if err != nil {
		return nil, err
	}
	return a.nodes[id].ref.(*ParentedTree), nil
}

// Parent returns the parent of t, or nil for a root or detached node.
func (t *ParentedTree) Parent() *ParentedTree {
	p := t.n().parent
	if p < 0 {
		return nil
	}
	return t.a.nodes[p].ref.(*ParentedTree)
}

// ParentIndex returns the index of t among its parent's children, or -1.
// The scan compares identity, not equality.
func (t *ParentedTree) ParentIndex() int {
	p := t.n().parent
	if p < 0 {
		return -1
	}
	for i, s := range t.a.nodes[p].children {
		if s.id == t.id {
			return i
		}
	}
	return -1
}

// LeftSibling returns the previous child of t's parent, or nil.
func (t *ParentedTree) LeftSibling() Node {
	i := t.ParentIndex()
	if i <= 0 {
		return nil
	}
	return t.Parent().Child(i - 1)
}

// RightSibling returns the next child of t's parent, or nil.
func (t *ParentedTree) RightSibling() Node {
	i := t.ParentIndex()
	if i < 0 {
		return nil
	}
	p := t.Parent()
	if i+1 >= p.Len() {
		return nil
	}
	return p.Child(i + 1)
}

// Root follows parent links to the top of the tree containing t.
func (t *ParentedTree) Root() *ParentedTree {
	for t.Parent() != nil {
		t = t.Parent()
	}
	return t
}

// TreePosition returns the position of t relative to its root.
func (t *ParentedTree) TreePosition() Position {
	var rev Position
	for cur := t; cur.Parent() != nil; cur = cur.Parent() {
		rev = append(rev, cur.ParentIndex())
	}
	pos := make(Position, len(rev))
	for i, p := range rev {
		pos[len(rev)-1-i] = p
	}
	return pos
}

// Copy returns a copy of t in the same arena. A deep copy rebuilds all
// subtrees; a shallow copy is only possible when t has no subtrees, since
// subtrees cannot have two parents.
func (t *ParentedTree) Copy(deep bool) (*ParentedTree, error) {
	if deep {
		return t.a.Convert(t).(*ParentedTree), nil
	}
	c, err := t.a.NewParented(t.Label(), t.Children()...)
	if err != nil {
		return nil, err
	}
	c.SetSource(t.Source())
	return c, nil
}

// Detach removes t from its parent, if any.
func (t *ParentedTree) Detach() error {
	i := t.ParentIndex()
	if i < 0 {
		return nil
	}
	return t.Parent().Delete(i)
}
