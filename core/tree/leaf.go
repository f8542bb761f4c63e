package tree

import (
	"cmp"
	"strconv"
	"strings"
)

// Leaf is a terminal value: either a sentence position (after indexing) or
// a raw token (before indexing). The zero value is the integer leaf 0.
type Leaf struct {
	text  string
	n     int
	isStr bool
}

// IntLeaf returns an integer leaf.
func IntLeaf(n int) Leaf { return Leaf{n: n} }

// TextLeaf returns a text leaf.
func TextLeaf(s string) Leaf { return Leaf{text: s, isStr: true} }

// ParseIntLeaf converts a token to an integer leaf. It is the leaf function
// for trees whose terminals are sentence indices.
func ParseIntLeaf(s string) (Leaf, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return Leaf{}, err
	}
	return IntLeaf(n), nil
}

func (Leaf) node() {}

// IsInt reports whether l holds a sentence position.
func (l Leaf) IsInt() bool { return !l.isStr }

// Int returns the position of an integer leaf, or -1 for a text leaf.
func (l Leaf) Int() int {
	if l.isStr {
		return -1
	}
	return l.n
}

// Text returns the token of a text leaf, or the decimal form of an integer leaf.
func (l Leaf) Text() string {
	if l.isStr {
		return l.text
	}
	return strconv.Itoa(l.n)
}

func (l Leaf) String() string { return l.Text() }

// CompareLeaves orders integer leaves before text leaves, integers
// numerically and text lexically.
func CompareLeaves(a, b Leaf) int {
	switch {
	case a.isStr != b.isStr:
		if a.isStr {
			return 1
		}
		return -1
	case a.isStr:
		return strings.Compare(a.text, b.text)
	default:
		return cmp.Compare(a.n, b.n)
	}
}

// SecEdge is a secondary (non-primary) parent relation.
type SecEdge struct {
	Label  string
	Parent string
}

// Source holds the non-structural columns a treebank format records for a
// node. Parent is the primary parent id as written in the input.
type Source struct {
	Word     string
	Lemma    string
	Tag      string
	Morph    string
	Func     string
	Parent   string
	SecEdges []SecEdge
	// Head marks the node as the head child of its parent.
	Head bool
}

// Clone returns a deep copy of s; a nil Source clones to nil.
func (s *Source) Clone() *Source {
	if s == nil {
		return nil
	}
	c := *s
	c.SecEdges = append([]SecEdge(nil), s.SecEdges...)
	return &c
}
