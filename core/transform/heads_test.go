package transform

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/FocuswithJustin/treebank/core/errors"
	"github.com/FocuswithJustin/treebank/core/tree"
)

const testRules = `% Negra-style rules
S right-to-left VVFIN VAFIN
NP left NN NE
np right-to-left pper
VP left-to-right VB
`

func mustRules(t *testing.T) HeadRules {
	t.Helper()
	rules, err := ParseHeadRules("test", testRules)
	if err != nil {
		t.Fatalf("ParseHeadRules() error = %v", err)
	}
	return rules
}

func TestParseHeadRules(t *testing.T) {
	want := HeadRules{
		"S":  {{Direction: RightToLeft, Candidates: []string{"VVFIN", "VAFIN"}}},
		"NP": {{Direction: Left, Candidates: []string{"NN", "NE"}}, {Direction: RightToLeft, Candidates: []string{"PPER"}}},
		"VP": {{Direction: LeftToRight, Candidates: []string{"VB"}}},
	}
	if diff := cmp.Diff(want, mustRules(t)); diff != "" {
		t.Errorf("ParseHeadRules() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseHeadRulesErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{"missing candidates", "S left\n", errors.ErrFormat},
		{"bad direction", "S upward VB\n", errors.ErrConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHeadRules("bad", tt.text)
			if !errors.Is(err, tt.want) {
				t.Errorf("ParseHeadRules(%q) error = %v, want %v", tt.text, err, tt.want)
			}
		})
	}
}

func TestLoadHeadRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "negra.headrules")
	if err := os.WriteFile(path, []byte(testRules), 0o644); err != nil {
		t.Fatal(err)
	}
	rules, err := LoadHeadRules(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rules) != 3 {
		t.Errorf("LoadHeadRules() = %d labels, want 3", len(rules))
	}
	if _, err := LoadHeadRules(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("missing file error = %v, want ErrNotFound", err)
	}
}

func TestBaseLabel(t *testing.T) {
	tests := map[string]string{
		"np-sbj=2": "NP",
		"NP/acc":   "NP",
		"-NONE-":   "-NONE-",
		"VP[fin]":  "VP",
		"S":        "S",
	}
	for in, want := range tests {
		if got := BaseLabel(in); got != want {
			t.Errorf("BaseLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHeadFinder(t *testing.T) {
	rules := mustRules(t)
	tests := []struct {
		name string
		tree string
		want string
	}{
		{"candidate major", "(S (NP (NN 0)) (VVFIN 1) (VAFIN 2))", "VVFIN"},
		{"child major", "(NP (NE 0) (NN 1))", "NE"},
		{"function stripped", "(S-SB (VAFIN 0) (ADV 1))", "VAFIN"},
		{"fallback skips punctuation", "(XP ($, 0) (ADV 1))", "ADV"},
		{"fallback first child", "(XP ($, 0) ($. 1))", "$,"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HeadFinder(parse(t, tt.tree), rules)
			if got == nil || got.Label() != tt.want {
				t.Errorf("HeadFinder(%s) = %v, want %s", tt.tree, got, tt.want)
			}
		})
	}
}

func TestHeadFinderFunctionWins(t *testing.T) {
	tr := parse(t, "(S (VVFIN 0) (NP (NN 1)))")
	np := tr.Child(1).(*tree.ParentedTree)
	np.SetSource(&tree.Source{Func: "HD"})
	if got := HeadFinder(tr, mustRules(t)); got != np {
		t.Errorf("HeadFinder() = %v, want NP with function HD", got)
	}
}

func TestHeadOrder(t *testing.T) {
	tests := []struct {
		final, reverse bool
		want           string
	}{
		{true, false, "E D A B C"},
		{true, true, "A B E D C"},
		{false, false, "C D E B A"},
		{false, true, "C B A D E"},
	}
	for _, tt := range tests {
		tr := parse(t, "(X (A 0) (B 1) (C 2) (D 3) (E 4))")
		SetHead(tr.Child(2).(*tree.ParentedTree))
		if err := HeadOrder(tr, tt.final, tt.reverse); err != nil {
			t.Fatal(err)
		}
		var labels []string
		for _, c := range tr.Children() {
			labels = append(labels, c.(tree.View).Label())
		}
		if got := strings.Join(labels, " "); got != tt.want {
			t.Errorf("HeadOrder(final=%v, reverse=%v) = %s, want %s", tt.final, tt.reverse, got, tt.want)
		}
	}
}

func TestApplyHeads(t *testing.T) {
	tr := parse(t, "(S (NP (NN 0)) (VVFIN 1))")
	if err := ApplyHeads(tr, mustRules(t), true, false, true); err != nil {
		t.Fatal(err)
	}
	if got, want := tr.String(), "(S (NP (NN-HD 0)) (VVFIN-HD 1))"; got != want {
		t.Errorf("ApplyHeads() = %s, want %s", got, want)
	}
	if !IsHead(tr.Child(1)) {
		t.Error("VVFIN should be marked as head")
	}
	if IsHead(tr.Child(0)) {
		t.Error("NP should not be marked as head")
	}
}
