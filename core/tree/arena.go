package tree

import (
	"slices"

	"github.com/FocuswithJustin/treebank/core/errors"
)

// Ownership selects the parent discipline of an Arena.
type Ownership int

const (
	// SingleParent allows each node at most one parent.
	SingleParent Ownership = iota
	// MultiParent allows a node under several parents, and repeatedly
	// under the same parent.
	MultiParent
)

func (o Ownership) String() string {
	if o == MultiParent {
		return "multi-parent"
	}
	return "single-parent"
}

// slot is one child entry: an arena node when id >= 0, else a leaf.
type slot struct {
	id   int
	leaf Leaf
}

type arenaNode struct {
	label    string
	source   *Source
	children []slot
	parent   int   // single-parent: owner id or -1
	owners   []int // multi-parent: distinct owner ids
	ref      Node  // stable handle
}

// Arena stores the nodes of parented trees in an insertion-ordered table.
// Parent and child links are indices into the table, so handles stay valid
// while the tree is rearranged. An Arena is not safe for concurrent use.
type Arena struct {
	kind  Ownership
	nodes []arenaNode
}

// NewArena creates an empty arena with the given ownership discipline.
func NewArena(kind Ownership) *Arena {
	return &Arena{kind: kind}
}

// Kind returns the ownership discipline of a.
func (a *Arena) Kind() Ownership { return a.kind }

// Len returns the number of nodes ever allocated in a.
func (a *Arena) Len() int { return len(a.nodes) }

func (a *Arena) alloc(label string, source *Source) int {
	id := len(a.nodes)
	a.nodes = append(a.nodes, arenaNode{label: label, source: source, parent: -1})
	h := handle{a: a, id: id}
	if a.kind == MultiParent {
		a.nodes[id].ref = &MultiParentedTree{h}
	} else {
		a.nodes[id].ref = &ParentedTree{h}
	}
	return id
}

func (a *Arena) child(s slot) Node {
	if s.id < 0 {
		return s.leaf
	}
	return a.nodes[s.id].ref
}

// Convert builds a deep copy of v inside a and returns its root, which is a
// *ParentedTree or *MultiParentedTree depending on the arena kind.
func (a *Arena) Convert(v View) Node {
	return a.nodes[a.convert(v)].ref
}

func (a *Arena) convert(v View) int {
	id := a.alloc(v.Label(), v.Source().Clone())
	children := make([]slot, v.Len())
	for i := range children {
		switch c := v.Child(i).(type) {
		case Leaf:
			children[i] = slot{id: -1, leaf: c}
		case View:
			cid := a.convert(c)
			a.link(cid, id)
			children[i] = slot{id: cid}
		}
	}
	a.nodes[id].children = children
	return id
}

func (a *Arena) link(child, owner int) {
	n := &a.nodes[child]
	if a.kind == SingleParent {
		n.parent = owner
	} else if !slices.Contains(n.owners, owner) {
		n.owners = append(n.owners, owner)
	}
}

func (a *Arena) build(label string, children []Node) (int, error) {
	id := a.alloc(label, nil)
	if err := a.replace(id, 0, 0, children); err != nil {
		// The fresh node stays unreachable in the table.
		return -1, err
	}
	return id, nil
}

// ToParented converts any view into a new single-parent tree.
func ToParented(v View) *ParentedTree {
	return NewArena(SingleParent).Convert(v).(*ParentedTree)
}

// ToMultiParented converts any view into a new multi-parent tree.
func ToMultiParented(v View) *MultiParentedTree {
	return NewArena(MultiParent).Convert(v).(*MultiParentedTree)
}

// idOf resolves a node to an arena index, or -1 for a leaf.
func (a *Arena) idOf(n Node) (int, error) {
	var h handle
	switch n := n.(type) {
	case Leaf:
		return -1, nil
	case *ParentedTree:
		if a.kind != SingleParent {
			return 0, errors.Placement("cannot add a single-parent tree to a %s tree", a.kind)
		}
		h = n.handle
	case *MultiParentedTree:
		if a.kind != MultiParent {
			return 0, errors.Placement("cannot add a multi-parent tree to a %s tree", a.kind)
		}
		h = n.handle
	case nil:
		return 0, errors.Placement("nil child")
	default:
		return 0, errors.Placement("cannot add %T to a %s tree", n, a.kind)
	}
	if h.a != a {
		return 0, errors.Placement("child belongs to a different arena")
	}
	return h.id, nil
}

// reaches reports whether target is from or a descendant of from.
func (a *Arena) reaches(from, target int) bool {
	if from == target {
		return true
	}
	for _, s := range a.nodes[from].children {
		if s.id >= 0 && a.reaches(s.id, target) {
			return true
		}
	}
	return false
}

// replace substitutes children [start:end) of owner with incoming. Placement
// is validated in full before any link changes, so a failed call leaves the
// arena untouched.
func (a *Arena) replace(owner, start, end int, incoming []Node) error {
	ids := make([]int, len(incoming))
	for i, n := range incoming {
		id, err := a.idOf(n)
		if err != nil {
			return err
		}
		ids[i] = id
		if id < 0 {
			continue
		}
		if a.reaches(id, owner) {
			return errors.Placement("adding %q under %q would create a cycle",
				a.nodes[id].label, a.nodes[owner].label)
		}
		if a.kind != SingleParent {
			continue
		}
		if slices.Contains(ids[:i], id) {
			return errors.Placement("node %q appears twice in a single-parent tree", a.nodes[id].label)
		}
		if p := a.nodes[id].parent; p >= 0 {
			old := a.nodes[owner].children[start:end]
			if p != owner || !slices.ContainsFunc(old, func(s slot) bool { return s.id == id }) {
				return errors.Placement("node %q already has a parent; detach it first", a.nodes[id].label)
			}
		}
	}

	old := a.nodes[owner].children
	kept := slices.Concat(old[:start], old[end:])
	for _, s := range old[start:end] {
		if s.id < 0 {
			continue
		}
		n := &a.nodes[s.id]
		if a.kind == SingleParent {
			n.parent = -1
		} else if !slices.ContainsFunc(kept, func(k slot) bool { return k.id == s.id }) {
			n.owners = slices.DeleteFunc(n.owners, func(o int) bool { return o == owner })
		}
	}
	slots := make([]slot, len(incoming))
	for i, id := range ids {
		if id < 0 {
			slots[i] = slot{id: -1, leaf: incoming[i].(Leaf)}
			continue
		}
		a.link(id, owner)
		slots[i] = slot{id: id}
	}
	a.nodes[owner].children = slices.Concat(old[:start], slots, old[end:])
	return nil
}

// handle is the shared implementation behind *ParentedTree and
// *MultiParentedTree.
type handle struct {
	a  *Arena
	id int
}

func (h handle) n() *arenaNode { return &h.a.nodes[h.id] }

// Arena returns the arena holding the node.
func (h handle) Arena() *Arena { return h.a }

func (h handle) Label() string { return h.n().label }
func (h handle) SetLabel(label string) { h.n().label = label }
func (h handle) Source() *Source { return h.n().source }
func (h handle) SetSource(src *Source) { h.n().source = src }
func (h handle) Len() int { return len(h.n().children) }
func (h handle) Child(i int) Node { return h.a.child(h.n().children[i]) }
func (h handle) String() string { return Format(h.n().ref.(View)) }

// Children returns a copy of the child list.
func (h handle) Children() []Node {
	out := make([]Node, h.Len())
	for i := range out {
		out[i] = h.Child(i)
	}
	return out
}

// Set replaces the i-th child.
func (h handle) Set(i int, n Node) error {
	i, err := normIndex(i, h.Len())
	if err != nil {
		return err
	}
	return h.a.replace(h.id, i, i+1, []Node{n})
}

// Delete removes the i-th child, detaching it.
func (h handle) Delete(i int) error {
	i, err := normIndex(i, h.Len())
	if err != nil {
		return err
	}
	return h.a.replace(h.id, i, i+1, nil)
}

// Insert inserts n before the i-th child; i may equal Len.
func (h handle) Insert(i int, n Node) error {
	i, err := normBound(i, h.Len())
	if err != nil {
		return err
	}
	return h.a.replace(h.id, i, i, []Node{n})
}

// Append adds children at the end.
func (h handle) Append(nodes ...Node) error {
	n := h.Len()
	return h.a.replace(h.id, n, n, nodes)
}

// Pop detaches and returns the i-th child.
func (h handle) Pop(i int) (Node, error) {
	i, err := normIndex(i, h.Len())
	if err != nil {
		return nil, err
	}
	c := h.Child(i)
	return c, h.a.replace(h.id, i, i+1, nil)
}

// Remove detaches the first child equal to n.
func (h handle) Remove(n Node) error {
	for i := range h.Len() {
		if Equal(h.Child(i), n) {
			return h.Delete(i)
		}
	}
	return errors.OutOfRange("child %v not found", n)
}

// Slice returns children [start:end).
func (h handle) Slice(start, end int) ([]Node, error) {
	start, end, err := normSlice(start, end, h.Len())
	if err != nil {
		return nil, err
	}
	return h.Children()[start:end], nil
}

// SetSlice replaces children [start:end) with nodes.
func (h handle) SetSlice(start, end int, nodes ...Node) error {
	start, end, err := normSlice(start, end, h.Len())
	if err != nil {
		return err
	}
	return h.a.replace(h.id, start, end, nodes)
}

// DeleteSlice detaches children [start:end).
func (h handle) DeleteSlice(start, end int) error {
	return h.SetSlice(start, end)
}

// Reorder permutes the children so that child i becomes the old child
// perm[i]. Parent links are unaffected.
func (h handle) Reorder(perm []int) error {
	old := h.n().children
	if len(perm) != len(old) {
		return errors.OutOfRange("permutation of length %d for %d children", len(perm), len(old))
	}
	seen := make([]bool, len(old))
	next := make([]slot, len(old))
	for i, p := range perm {
		if p < 0 || p >= len(old) || seen[p] {
			return errors.OutOfRange("invalid permutation %v", perm)
		}
		seen[p] = true
		next[i] = old[p]
	}
	h.n().children = next
	return nil
}

// At returns the node at pos.
func (h handle) At(pos Position) (Node, error) { return At(h.n().ref.(View), pos) }

func (h handle) at(pos Position) (handle, error) {
	n, err := At(h.n().ref.(View), pos)
	if err != nil {
		return handle{}, err
	}
	switch n := n.(type) {
	case *ParentedTree:
		return n.handle, nil
	case *MultiParentedTree:
		return n.handle, nil
	}
	return handle{}, errors.OutOfRange("position %v passes through a leaf", pos)
}

// SetAt replaces the node at pos. The root position cannot be assigned.
func (h handle) SetAt(pos Position, n Node) error {
	if len(pos) == 0 {
		return errors.Placement("cannot assign to the root position")
	}
	p, err := h.at(pos[:len(pos)-1])
	if err != nil {
		return err
	}
	return p.Set(pos[len(pos)-1], n)
}

// DeleteAt removes the node at pos. The root position cannot be deleted.
func (h handle) DeleteAt(pos Position) error {
	if len(pos) == 0 {
		return errors.Placement("cannot delete the root position")
	}
	p, err := h.at(pos[:len(pos)-1])
	if err != nil {
		return err
	}
	return p.Delete(pos[len(pos)-1])
}
