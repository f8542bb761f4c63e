package treebank

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/FocuswithJustin/treebank/core/errors"
	"github.com/FocuswithJustin/treebank/core/tree"
)

const discTree = "(S (NP 1) (VP (VB 0) (JJ 2)) (PUNC 3))"

func leafInts(v tree.View) []int {
	var out []int
	for _, l := range tree.Leaves(v) {
		out = append(out, l.Int())
	}
	return out
}

func TestBracketTree(t *testing.T) {
	tests := []struct {
		name        string
		tree        string
		rest        string
		brackets    string
		wantTree    string
		wantSent    []string
		wantComment string
	}{
		{
			name:     "discontinuous",
			tree:     discTree,
			rest:     "is John rich ?",
			wantTree: discTree,
			wantSent: []string{"is", "John", "rich", "?"},
		},
		{
			name:        "discontinuous with comment",
			tree:        discTree,
			rest:        "is John rich ?\tasked twice\n",
			wantTree:    discTree,
			wantSent:    []string{"is", "John", "rich", "?"},
			wantComment: "asked twice",
		},
		{
			name:     "indices without sentence",
			tree:     "(S (A 0) (B 1))",
			wantTree: "(S (A 0) (B 1))",
			wantSent: []string{"0", "1"},
		},
		{
			name:        "words",
			tree:        "(S (NP John) (VP (VB is) (JJ rich)) (PUNC ?))",
			rest:        "  a comment ",
			wantTree:    "(S (NP 0) (VP (VB 1) (JJ 2)) (PUNC 3))",
			wantSent:    []string{"John", "is", "rich", "?"},
			wantComment: "a comment",
		},
		{
			name:     "empty leaf",
			tree:     "(S (NP ) (VP runs))",
			wantTree: "(S (NP 0) (VP 1))",
			wantSent: []string{"", "runs"},
		},
		{
			name:     "quoted parentheses",
			tree:     "(S (PUNC -LRB-) (NN x) (PUNC -RRB-))",
			wantTree: "(S (PUNC 0) (NN 1) (PUNC 2))",
			wantSent: []string{"(", "x", ")"},
		},
		{
			name:     "square brackets",
			tree:     "[S [NP 1] [VP 0]]",
			rest:     "runs John",
			brackets: "[]",
			wantTree: "(S (NP 1) (VP 0))",
			wantSent: []string{"runs", "John"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			brackets := tt.brackets
			if brackets == "" {
				brackets = "()"
			}
			got, sent, comment, err := BracketTree(tt.tree, tt.rest, brackets)
			if err != nil {
				t.Fatalf("BracketTree() error = %v", err)
			}
			if got.String() != tt.wantTree {
				t.Errorf("tree = %s, want %s", got, tt.wantTree)
			}
			if diff := cmp.Diff(tt.wantSent, sent); diff != "" {
				t.Errorf("sent mismatch (-want +got):\n%s", diff)
			}
			if comment != tt.wantComment {
				t.Errorf("comment = %q, want %q", comment, tt.wantComment)
			}
		})
	}
}

func TestBracketTreeLeafOrder(t *testing.T) {
	got, _, _, err := BracketTree(discTree, "is John rich ?", "()")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{1, 0, 2, 3}, leafInts(got)); diff != "" {
		t.Errorf("leaves mismatch (-want +got):\n%s", diff)
	}
}

func TestBracketTreeErrors(t *testing.T) {
	tests := []struct {
		name     string
		tree     string
		rest     string
		brackets string
		sentinel error
	}{
		{"leaf outside sentence", "(S (NP 0) (VP 5))", "a b", "()", errors.ErrFormat},
		{"unbalanced", "(S (NP a)", "", "()", errors.ErrFormat},
		{"bad brackets", "(S (NP a))", "", "(", errors.ErrConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := BracketTree(tt.tree, tt.rest, tt.brackets)
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("BracketTree() error = %v, want %v", err, tt.sentinel)
			}
		})
	}
}

func TestParseBracketLines(t *testing.T) {
	tr, sent, comment, err := parseBracketLine("(S (NP John) (VP runs))\tfirst\n")
	if err != nil {
		t.Fatal(err)
	}
	if tr.String() != "(S (NP 0) (VP 1))" || comment != "first" {
		t.Errorf("parseBracketLine = %s, %q", tr, comment)
	}
	if diff := cmp.Diff([]string{"John", "runs"}, sent); diff != "" {
		t.Errorf("sent mismatch (-want +got):\n%s", diff)
	}

	tr, sent, comment, err = parseDiscBracketLine(discTree + "\tis John rich ?\tsecond\r\n")
	if err != nil {
		t.Fatal(err)
	}
	if tr.String() != discTree || comment != "second" || len(sent) != 4 {
		t.Errorf("parseDiscBracketLine = %s, %v, %q", tr, sent, comment)
	}
}
