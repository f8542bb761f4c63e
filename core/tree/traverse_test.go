package tree

import (
	"fmt"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/FocuswithJustin/treebank/core/errors"
)

const discTree = "(S (NP 1) (VP (VB 0) (JJ 2)) (PUNC 3))"

func TestDiscontinuousLeaves(t *testing.T) {
	tr := mustParse(t, discTree, IntLeaves())
	var got []int
	for _, l := range Leaves(tr) {
		got = append(got, l.Int())
	}
	if diff := cmp.Diff([]int{1, 0, 2, 3}, got); diff != "" {
		t.Errorf("Leaves() mismatch (-want +got):\n%s", diff)
	}

	sent := []string{"is", "John", "rich", "?"}
	want := map[string]string{"NP": "John", "VB": "is", "JJ": "rich", "PUNC": "?"}
	for _, tl := range Pos(tr) {
		if sent[tl.Leaf.Int()] != want[tl.Tag] {
			t.Errorf("leaf %d under %s = %q, want %q", tl.Leaf.Int(), tl.Tag, sent[tl.Leaf.Int()], want[tl.Tag])
		}
	}
	if got := Fanout(tr.Child(1).(View)); got != 2 {
		t.Errorf("Fanout(VP) = %d, want 2", got)
	}
	if got := Fanout(tr); got != 1 {
		t.Errorf("Fanout(S) = %d, want 1", got)
	}
	if got := MinLeaf(tr.Child(1).(View)); got != 0 {
		t.Errorf("MinLeaf(VP) = %d, want 0", got)
	}
}

func TestHeight(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"(S )", 1},
		{"(S a b)", 2},
		{"(S (NP a))", 3},
		{discTree, 4},
	}
	for _, tt := range tests {
		if got := Height(mustParse(t, tt.in)); got != tt.want {
			t.Errorf("Height(%s) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTreePositions(t *testing.T) {
	tr := mustParse(t, "(S (NP a) b)")
	tests := []struct {
		order Order
		want  string
	}{
		{PreOrder, "[[] [0] [0 0] [1]]"},
		{PostOrder, "[[0 0] [0] [1] []]"},
		{BothOrder, "[[] [0] [0 0] [0] [1] []]"},
		{LeavesOrder, "[[0 0] [1]]"},
	}
	for _, tt := range tests {
		if got := fmt.Sprint(TreePositions(tr, tt.order)); got != tt.want {
			t.Errorf("TreePositions(%d) = %s, want %s", tt.order, got, tt.want)
		}
	}
}

func TestSubtrees(t *testing.T) {
	tr := mustParse(t, discTree, IntLeaves())
	seq := Subtrees(tr, IsPreterminal)

	var labels []string
	for st := range seq {
		labels = append(labels, st.Label())
	}
	if diff := cmp.Diff([]string{"NP", "VB", "JJ", "PUNC"}, labels); diff != "" {
		t.Errorf("Subtrees mismatch (-want +got):\n%s", diff)
	}

	// restartable
	var again int
	for range seq {
		again++
	}
	if again != 4 {
		t.Errorf("second iteration yielded %d subtrees, want 4", again)
	}

	var first []string
	for st := range Subtrees(tr, nil) {
		first = append(first, st.Label())
		if len(first) == 2 {
			break
		}
	}
	if diff := cmp.Diff([]string{"S", "NP"}, first); diff != "" {
		t.Errorf("early break mismatch (-want +got):\n%s", diff)
	}
}

func TestLeafTreePosition(t *testing.T) {
	tr := mustParse(t, discTree, IntLeaves())
	pos, err := LeafTreePosition(tr, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got := fmt.Sprint(pos); got != "[1 1 0]" {
		t.Errorf("LeafTreePosition(2) = %s, want [1 1 0]", got)
	}
	n, _ := At(tr, pos)
	if n != IntLeaf(2) {
		t.Errorf("At(LeafTreePosition(2)) = %v", n)
	}
	for _, i := range []int{-1, 4} {
		if _, err := LeafTreePosition(tr, i); !errors.Is(err, errors.ErrOutOfRange) {
			t.Errorf("LeafTreePosition(%d) error = %v, want ErrOutOfRange", i, err)
		}
	}
}

func TestTreePositionSpanningLeaves(t *testing.T) {
	tr := mustParse(t, "(ROOT (S (NP (DT the) (NN dog)) (VP (VB barks) (ADVP (RB loudly)))) (PU .))")
	nleaves := len(Leaves(tr))
	leafPos := TreePositions(tr, LeavesOrder)

	for start := 0; start < nleaves; start++ {
		for end := start + 1; end <= nleaves; end++ {
			pos, err := TreePositionSpanningLeaves(tr, start, end)
			if err != nil {
				t.Fatalf("(%d, %d): %v", start, end, err)
			}
			for i := start; i < end; i++ {
				if !pos.Dominates(leafPos[i]) {
					t.Errorf("(%d, %d): %v does not dominate leaf %d at %v", start, end, pos, i, leafPos[i])
				}
			}
			n, err := At(tr, pos)
			if err != nil {
				t.Fatal(err)
			}
			v, ok := n.(View)
			if !ok {
				continue
			}
			for c := range v.Len() {
				child := append(slices.Clone(pos), c)
				if child.Dominates(leafPos[start]) && child.Dominates(leafPos[end-1]) {
					t.Errorf("(%d, %d): deeper position %v also spans", start, end, child)
				}
			}
		}
	}

	if got, _ := TreePositionSpanningLeaves(tr, 0, 2); fmt.Sprint(got) != "[0 0]" {
		t.Errorf("spanning(0, 2) = %v, want [0 0]", got)
	}
	if _, err := TreePositionSpanningLeaves(tr, 2, 2); !errors.Is(err, errors.ErrOutOfRange) {
		t.Errorf("empty span error = %v", err)
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"(A 1)", "(A 1)", 0},
		{"(A 1)", "(B 0)", -1},
		{"(A 1)", "(A 1 2)", -1},
		{"(A (B 1))", "(A 1)", 1},
		{"(A 2)", "(A 10)", -1},
	}
	for _, tt := range tests {
		a, b := mustParse(t, tt.a, IntLeaves()), mustParse(t, tt.b, IntLeaves())
		got := Compare(a, b)
		if (got < 0) != (tt.want < 0) || (got > 0) != (tt.want > 0) {
			t.Errorf("Compare(%s, %s) = %d, want sign %d", tt.a, tt.b, got, tt.want)
		}
	}
	if !Equal(mustParse(t, "(S a)"), ToParented(mustParse(t, "(S a)"))) {
		t.Error("Equal should hold across variants")
	}
}

func TestPretty(t *testing.T) {
	tr := mustParse(t, "(S (NP John) (VP runs))")
	if got := Pretty(tr, 70); got != "(S (NP John) (VP runs))" {
		t.Errorf("Pretty(70) = %q", got)
	}
	want := "(S\n  (NP John)\n  (VP runs))"
	if got := Pretty(tr, 12); got != want {
		t.Errorf("Pretty(12) = %q, want %q", got, want)
	}
}
