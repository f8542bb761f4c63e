package transform

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/FocuswithJustin/treebank/core/errors"
)

func TestDependencies(t *testing.T) {
	tests := []struct {
		name  string
		tree  string
		rules string
		want  []Dependency
	}{
		{
			name:  "noun phrase",
			tree:  "(NP (DT 0) (N 1))",
			rules: "NP right-to-left N",
			want:  []Dependency{{1, "NONE", 2}, {2, "ROOT", 0}},
		},
		{
			name:  "nested",
			tree:  "(S (NP (DT 0) (NN 1)) (VB 2))",
			rules: "S left-to-right VB\nNP right-to-left NN",
			want:  []Dependency{{1, "NONE", 2}, {2, "NONE", 3}, {3, "ROOT", 0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules, err := ParseHeadRules(tt.name, tt.rules)
			if err != nil {
				t.Fatal(err)
			}
			got, err := Dependencies(parse(t, tt.tree), rules)
			if err != nil {
				t.Fatalf("Dependencies() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Dependencies() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDependenciesWithoutRules(t *testing.T) {
	_, err := Dependencies(parse(t, "(NP (DT 0) (N 1))"), nil)
	if !errors.Is(err, errors.ErrSemantic) {
		t.Errorf("Dependencies(nil rules) error = %v, want ErrSemantic", err)
	}
}
