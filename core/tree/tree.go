// Package tree implements n-ary labeled trees addressed by tree positions.
//
// Four variants share the read-only View contract:
//   - *Tree: plain tree without parent tracking; subtrees may be shared.
//   - *ParentedTree: each node has at most one parent, kept in an Arena.
//   - *MultiParentedTree: a node may have several parents, kept in an Arena.
//   - *Frozen: immutable, hashable snapshot of any variant.
//
// Traversal and position algebra are free functions over View, so they are
// written once for every variant. Leaves are integers (sentence positions)
// or text (raw tokens).
package tree

import (
	"github.com/FocuswithJustin/treebank/core/errors"
)

// Node is a tree child: a Leaf or one of the tree variants.
type Node interface {
	node()
}

// View is the read-only capability shared by all tree variants.
type View interface {
	Node
	Label() string
	// Len returns the number of children.
	Len() int
	// Child returns the i-th child, which is a Leaf or a View of the same
	// variant. It panics if i is out of range.
	Child(i int) Node
	// Source returns the side-channel record, or nil.
	Source() *Source
}

// Tree is a plain mutable tree. It does not track parents, so the same
// subtree may appear under several nodes.
type Tree struct {
	label    string
	children []Node
	source   *Source
}

// New creates a plain tree. Children must be leaves or plain trees.
func New(label string, children ...Node) *Tree {
	return &Tree{label: label, children: children}
}

func (*Tree) node() {}

func (t *Tree) Label() string { return t.label }
func (t *Tree) SetLabel(label string) { t.label = label }
func (t *Tree) Len() int { return len(t.children) }
func (t *Tree) Child(i int) Node { return t.children[i] }
func (t *Tree) Source() *Source { return t.source }
func (t *Tree) SetSource(s *Source) { t.source = s }

// Children returns the child list. The slice is shared with t.
func (t *Tree) Children() []Node { return t.children }

func (t *Tree) String() string { return Format(t) }

// At returns the node at pos.
func (t *Tree) At(pos Position) (Node, error) { return At(t, pos) }

func checkPlain(nodes []Node) error {
	for _, n := range nodes {
		switch n.(type) {
		case Leaf, *Tree:
		case nil:
			return errors.Placement("nil child")
		default:
			return errors.Placement("cannot add %T to a plain tree", n)
		}
	}
	return nil
}

// Set replaces the i-th child.
func (t *Tree) Set(i int, n Node) error {
	i, err := normIndex(i, len(t.children))
	if err != nil {
		return err
	}
	if err := checkPlain([]Node{n}); err != nil {
		return err
	}
	t.children[i] = n
	return nil
}

// Delete removes the i-th child.
func (t *Tree) Delete(i int) error {
	i, err := normIndex(i, len(t.children))
	if err != nil {
		return err
	}
	t.children = append(t.children[:i], t.children[i+1:]...)
	return nil
}

// Insert inserts n before the i-th child; i may equal Len.
func (t *Tree) Insert(i int, n Node) error {
	i, err := normBound(i, len(t.children))
	if err != nil {
		return err
	}
	return t.SetSlice(i, i, n)
}

// Append adds children at the end.
func (t *Tree) Append(nodes ...Node) error {
	if err := checkPlain(nodes); err != nil {
		return err
	}
	t.children = append(t.children, nodes...)
	return nil
}

// Pop removes and returns the i-th child.
func (t *Tree) Pop(i int) (Node, error) {
	i, err := normIndex(i, len(t.children))
	if err != nil {
		return nil, err
	}
	n := t.children[i]
	t.children = append(t.children[:i], t.children[i+1:]...)
	return n, nil
}

// Remove deletes the first child equal to n.
func (t *Tree) Remove(n Node) error {
	for i, c := range t.children {
		if Equal(c, n) {
			return t.Delete(i)
		}
	}
	return errors.OutOfRange("child %v not found", n)
}

// Slice returns a copy of children [start:end).
func (t *Tree) Slice(start, end int) ([]Node, error) {
	start, end, err := normSlice(start, end, len(t.children))
	if err != nil {
		return nil, err
	}
	return append([]Node(nil), t.children[start:end]...), nil
}

// SetSlice replaces children [start:end) with nodes.
func (t *Tree) SetSlice(start, end int, nodes ...Node) error {
	start, end, err := normSlice(start, end, len(t.children))
	if err != nil {
		return err
	}
	if err := checkPlain(nodes); err != nil {
		return err
	}
	out := make([]Node, 0, len(t.children)-(end-start)+len(nodes))
	out = append(out, t.children[:start]...)
	out = append(out, nodes...)
	out = append(out, t.children[end:]...)
	t.children = out
	return nil
}

// DeleteSlice removes children [start:end).
func (t *Tree) DeleteSlice(start, end int) error {
	return t.SetSlice(start, end)
}

// SetAt replaces the node at pos. The root position cannot be assigned.
func (t *Tree) SetAt(pos Position, n Node) error {
	if len(pos) == 0 {
		return errors.Placement("cannot assign to the root position")
	}
	parent, err := At(t, pos[:len(pos)-1])
	if err != nil {
		return err
	}
	p, ok := parent.(*Tree)
	if !ok {
		return errors.OutOfRange("position %v passes through a leaf", pos)
	}
	return p.Set(pos[len(pos)-1], n)
}

// DeleteAt removes the node at pos. The root position cannot be deleted.
func (t *Tree) DeleteAt(pos Position) error {
	if len(pos) == 0 {
		return errors.Placement("cannot delete the root position")
	}
	parent, err := At(t, pos[:len(pos)-1])
	if err != nil {
		return err
	}
	p, ok := parent.(*Tree)
	if !ok {
		return errors.OutOfRange("position %v passes through a leaf", pos)
	}
	return p.Delete(pos[len(pos)-1])
}

// Copy returns a new node with the same label and source. A shallow copy
// shares the children; a deep copy rebuilds every subtree.
func (t *Tree) Copy(deep bool) *Tree {
	if deep {
		return ToTree(t)
	}
	return &Tree{label: t.label, children: append([]Node(nil), t.children...), source: t.source}
}

// ToTree converts any variant into a new plain tree. Sources are cloned.
func ToTree(v View) *Tree {
	t := &Tree{label: v.Label(), source: v.Source().Clone(), children: make([]Node, v.Len())}
	for i := range t.children {
		switch c := v.Child(i).(type) {
		case Leaf:
			t.children[i] = c
		case View:
			t.children[i] = ToTree(c)
		}
	}
	return t
}

func normIndex(i, n int) (int, error) {
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, errors.OutOfRange("index %d with %d children", i, n)
	}
	return i, nil
}

func normBound(i, n int) (int, error) {
	if i < 0 {
		i += n
	}
	if i < 0 || i > n {
		return 0, errors.OutOfRange("index %d with %d children", i, n)
	}
	return i, nil
}

func normSlice(start, end, n int) (int, int, error) {
	var err error
	if start, err = normBound(start, n); err != nil {
		return 0, 0, err
	}
	if end, err = normBound(end, n); err != nil {
		return 0, 0, err
	}
	if end < start {
		return 0, 0, errors.OutOfRange("slice [%d:%d]", start, end)
	}
	return start, end, nil
}
