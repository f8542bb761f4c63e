package tree

import (
	"encoding/binary"

	"github.com/zeebo/blake3"
)

// Frozen is an immutable snapshot of a tree. It has no mutators; its
// structural hash, leaves and subtree list are computed once at freeze time.
type Frozen struct {
	label    string
	children []Node
	source   *Source
	digest   [32]byte
	leaves   []Leaf
	subtrees []*Frozen
}

func (*Frozen) node() {}

// Freeze snapshots v. When leafFn is non-nil it is applied to every leaf
// before freezing.
func Freeze(v View, leafFn func(Leaf) Leaf) *Frozen {
	f := &Frozen{label: v.Label(), source: v.Source().Clone(), children: make([]Node, v.Len())}
	buf := binary.AppendUvarint(nil, uint64(len(f.label)))
	buf = append(buf, f.label...)
	buf = binary.AppendUvarint(buf, uint64(len(f.children)))
	f.subtrees = []*Frozen{f}
	for i := range f.children {
		switch c := v.Child(i).(type) {
		case Leaf:
			if leafFn != nil {
				c = leafFn(c)
			}
			f.children[i] = c
			f.leaves = append(f.leaves, c)
			buf = appendLeaf(buf, c)
		case View:
			fc := Freeze(c, leafFn)
			f.children[i] = fc
			f.leaves = append(f.leaves, fc.leaves...)
			f.subtrees = append(f.subtrees, fc.subtrees...)
			buf = append(buf, 't')
			buf = append(buf, fc.digest[:]...)
		}
	}
	f.digest = blake3.Sum256(buf)
	return f
}

func appendLeaf(buf []byte, l Leaf) []byte {
	if l.IsInt() {
		buf = append(buf, 'i')
		return binary.AppendVarint(buf, int64(l.Int()))
	}
	buf = append(buf, 's')
	buf = binary.AppendUvarint(buf, uint64(len(l.Text())))
	return append(buf, l.Text()...)
}

func (f *Frozen) Label() string { return f.label }
func (f *Frozen) Len() int { return len(f.children) }
func (f *Frozen) Child(i int) Node { return f.children[i] }

// Source returns a copy of the source record, so the snapshot cannot be
// altered through it.
func (f *Frozen) Source() *Source { return f.source.Clone() }

func (f *Frozen) String() string { return Format(f) }

// Digest returns the BLAKE3 hash of the label and children. Structurally
// equal trees have equal digests; sources do not contribute.
func (f *Frozen) Digest() [32]byte { return f.digest }

// Hash returns the first eight bytes of Digest.
func (f *Frozen) Hash() uint64 { return binary.LittleEndian.Uint64(f.digest[:8]) }

// Leaves returns the cached leaves.
func (f *Frozen) Leaves() []Leaf { return append([]Leaf(nil), f.leaves...) }

// Subtrees returns f and all frozen descendants in preorder.
func (f *Frozen) Subtrees() []*Frozen { return append([]*Frozen(nil), f.subtrees...) }

// Thaw returns a mutable plain copy of f.
func (f *Frozen) Thaw() *Tree { return ToTree(f) }
