package tree

import (
	"fmt"
	"testing"

	"github.com/FocuswithJustin/treebank/core/errors"
)

func TestMultiParented(t *testing.T) {
	a := NewArena(MultiParent)
	x, err := a.NewMultiParented("X", IntLeaf(0))
	if err != nil {
		t.Fatal(err)
	}
	s, err := a.NewMultiParented("S", x, x)
	if err != nil {
		t.Fatalf("repeated child error = %v", err)
	}
	u, err := a.NewMultiParented("T", x)
	if err != nil {
		t.Fatal(err)
	}

	parents := x.Parents()
	if len(parents) != 2 || parents[0] != s || parents[1] != u {
		t.Errorf("Parents() = %v, want [S T]", parents)
	}
	if got := fmt.Sprint(x.ParentIndices(s)); got != "[0 1]" {
		t.Errorf("ParentIndices(S) = %s", got)
	}
	if l := x.LeftSiblings(); len(l) != 1 || l[0] != x {
		t.Errorf("LeftSiblings() = %v, want [X]", l)
	}
	if r := x.RightSiblings(); len(r) != 1 || r[0] != x {
		t.Errorf("RightSiblings() = %v, want [X]", r)
	}
	if roots := x.Roots(); len(roots) != 2 {
		t.Errorf("Roots() = %v, want S and T", roots)
	}
	if got := fmt.Sprint(x.TreePositionsFrom(s)); got != "[[0] [1]]" {
		t.Errorf("TreePositionsFrom(S) = %s", got)
	}

	if err := s.Delete(0); err != nil {
		t.Fatal(err)
	}
	if len(x.Parents()) != 2 {
		t.Error("removing one occurrence should keep S as parent")
	}
	if err := s.Delete(0); err != nil {
		t.Fatal(err)
	}
	if p := x.Parents(); len(p) != 1 || p[0] != u {
		t.Errorf("after removing all occurrences Parents() = %v, want [T]", p)
	}
}

func TestMultiParentedPlacement(t *testing.T) {
	a := NewArena(MultiParent)
	x, _ := a.NewMultiParented("X", IntLeaf(0))
	s, _ := a.NewMultiParented("S", x)

	if err := x.Append(s); !errors.Is(err, errors.ErrPlacement) {
		t.Errorf("cycle error = %v, want ErrPlacement", err)
	}
	if err := s.Append(ToParented(New("P"))); !errors.Is(err, errors.ErrPlacement) {
		t.Errorf("single-parent child error = %v, want ErrPlacement", err)
	}
	if err := s.Append(ToMultiParented(New("Q"))); !errors.Is(err, errors.ErrPlacement) {
		t.Errorf("foreign arena error = %v, want ErrPlacement", err)
	}
	if s.String() != "(S (X 0))" {
		t.Errorf("failed mutations changed tree: %s", s)
	}
}

func TestMultiParentedCopy(t *testing.T) {
	a := NewArena(MultiParent)
	x, _ := a.NewMultiParented("X", IntLeaf(0))
	s, _ := a.NewMultiParented("S", x)

	shallow := s.Copy(false)
	if shallow.Child(0) != x || len(x.Parents()) != 2 {
		t.Error("shallow copy should share X and add itself as a parent")
	}
	deep := s.Copy(true)
	if deep.Child(0) == x || !Equal(deep, s) {
		t.Error("deep copy should rebuild X")
	}
}
