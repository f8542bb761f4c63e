package treebank

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/FocuswithJustin/treebank/core/errors"
	"github.com/FocuswithJustin/treebank/core/tree"
)

const exportBlock = `#BOS 1
John	--	NNP	--	--	500
is	--	VB	--	--	500
#500	--	S	--	--	0
#EOS 1
`

const exportCorpus = `#FORMAT 4
%% a corpus with two sentences
#BOS 1 %% first
John	John	NE	Nom.Sg	SB	500
runs	run	VVFIN	3.Sg	HD	500
.	.	$.	--	--	0
#500	--	S	--	--	0
#EOS 1
#BOS 2
Mary	NE	--	SB	500
sleeps	VVFIN	--	HD	500
#500	--	S	--	--	0
#EOS 2
`

func TestExportSplit(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"full", "John\tJohn\tNE\tNom\tSB\t500", []string{"John", "John", "NE", "Nom", "SB", "500", "", ""}},
		{"no lemma", "John NE Nom SB 500", []string{"John", "", "NE", "Nom", "SB", "500", "", ""}},
		{"secondary edge", "John John NE Nom SB 500 OA 501", []string{"John", "John", "NE", "Nom", "SB", "500", "OA", "501"}},
		{"comment", "John John NE Nom SB 500 %% note", []string{"John", "John", "NE", "Nom", "SB", "500", "", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExportSplit(tt.line)
			if err != nil {
				t.Fatalf("ExportSplit() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ExportSplit() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := ExportSplit("John NE 500"); !errors.Is(err, errors.ErrFormat) {
		t.Errorf("ExportSplit(short) error = %v, want ErrFormat", err)
	}
}

func blockLines(block string) []string {
	lines := strings.Split(strings.TrimSpace(block), "\n")
	return lines[1 : len(lines)-1]
}

func TestExportTree(t *testing.T) {
	got, sent, err := ExportTree(blockLines(exportBlock), Options{})
	if err != nil {
		t.Fatalf("ExportTree() error = %v", err)
	}
	if want := "(ROOT (S (NNP 0) (VB 1)))"; got.String() != want {
		t.Errorf("tree = %s, want %s", got, want)
	}
	if diff := cmp.Diff([]string{"John", "is"}, sent); diff != "" {
		t.Errorf("sent mismatch (-want +got):\n%s", diff)
	}
	want := []TaggedWord{{"John", "NNP"}, {"is", "VB"}}
	if diff := cmp.Diff(want, TaggedSent(got, sent)); diff != "" {
		t.Errorf("TaggedSent mismatch (-want +got):\n%s", diff)
	}

	s := got.Child(0).(tree.View)
	if src := s.Source(); src == nil || src.Tag != "S" || src.Parent != "0" {
		t.Errorf("S source = %+v", src)
	}
}

func TestExportTreeDiscontinuous(t *testing.T) {
	lines := []string{
		"Darüber	--	PROAV	--	MO	502",
		"muss	--	VMFIN	--	HD	501",
		"nachgedacht	--	VVPP	--	HD	502",
		"werden	--	VAINF	--	HD	500",
		"#500	--	VP	--	OC	501",
		"#501	--	S	--	--	0",
		"#502	--	VP	--	OC	500",
	}
	got, _, err := ExportTree(lines, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if want := "(ROOT (S (VMFIN 1) (VP (VAINF 3) (VP (PROAV 0) (VVPP 2)))))"; got.String() != want {
		t.Errorf("tree = %s, want %s", got, want)
	}
	vp := got.Child(0).(tree.View).Child(1).(tree.View).Child(1).(tree.View)
	if f := tree.Fanout(vp); f != 2 {
		t.Errorf("Fanout(inner VP) = %d, want 2", f)
	}
}

func TestExportTreeMorphology(t *testing.T) {
	lines := []string{
		"John	John	NE	Nom.Sg	SB	500",
		"runs	run	VVFIN	3.Sg	HD	500",
		"#500	--	S	--	--	0",
	}
	tests := []struct {
		name string
		opts Options
		tree string
		sent []string
	}{
		{"morph add", Options{Morphology: MorphAdd}, "(ROOT (S (NE/Nom.Sg 0) (VVFIN/3.Sg 1)))", []string{"John", "runs"}},
		{"morph replace", Options{Morphology: MorphReplace}, "(ROOT (S (Nom.Sg 0) (3.Sg 1)))", []string{"John", "runs"}},
		{"morph between", Options{Morphology: MorphBetween}, "(ROOT (S (NE (Nom.Sg 0)) (VVFIN (3.Sg 1))))", []string{"John", "runs"}},
		{"lemma add", Options{Lemmas: LemmaAdd}, "(ROOT (S (NE 0) (VVFIN 1)))", []string{"John/John", "runs/run"}},
		{"lemma replace", Options{Lemmas: LemmaReplace}, "(ROOT (S (NE 0) (VVFIN 1)))", []string{"John", "run"}},
		{"lemma between", Options{Lemmas: LemmaBetween}, "(ROOT (S (NE (John 0)) (VVFIN (run 1))))", []string{"John", "runs"}},
		{"functions add", Options{Functions: FunctionsAdd}, "(ROOT (S (NE-SB 0) (VVFIN-HD 1)))", []string{"John", "runs"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, sent, err := ExportTree(lines, tt.opts)
			if err != nil {
				t.Fatalf("ExportTree() error = %v", err)
			}
			if got.String() != tt.tree {
				t.Errorf("tree = %s, want %s", got, tt.tree)
			}
			if diff := cmp.Diff(tt.sent, sent); diff != "" {
				t.Errorf("sent mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExportTreeErrors(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		sentinel error
	}{
		{"short row", []string{"John NE 500"}, errors.ErrFormat},
		{"terminal after nonterminal", []string{"#500 -- S -- -- 0", "John -- NE -- -- 500"}, errors.ErrFormat},
		{"reserved id", []string{"John -- NE -- -- 0", "#0 -- S -- -- 0"}, errors.ErrSemantic},
		{"duplicate id", []string{"John -- NE -- -- 500", "#500 -- S -- -- 0", "#500 -- VP -- -- 0"}, errors.ErrSemantic},
		{"unattached row", []string{"John -- NE -- -- 0", "runs -- VVFIN -- -- 501"}, errors.ErrSemantic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ExportTree(tt.lines, Options{})
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("ExportTree() error = %v, want %v", err, tt.sentinel)
			}
		})
	}
}

func TestReadExportCorpus(t *testing.T) {
	items, err := ReadString(exportCorpus, Export, Options{})
	if err != nil {
		t.Fatalf("ReadString() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	first, second := items[0], items[1]
	if first.ID != "1" || first.Comment != "first" {
		t.Errorf("first item id %q comment %q", first.ID, first.Comment)
	}
	if want := "(ROOT ($. 2) (S (NE 0) (VVFIN 1)))"; first.Tree.String() != want {
		t.Errorf("first tree = %s, want %s", first.Tree, want)
	}
	if second.ID != "2" || second.Comment != "" {
		t.Errorf("second item id %q comment %q", second.ID, second.Comment)
	}
	if diff := cmp.Diff([]string{"Mary", "sleeps"}, second.Sent); diff != "" {
		t.Errorf("second sent mismatch (-want +got):\n%s", diff)
	}
}

func TestExportBlockErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"nested BOS", "#BOS 1\n#BOS 2\n#EOS 2\n"},
		{"EOS without BOS", "#EOS 1\n"},
		{"mismatched EOS", "#BOS 1\nJohn -- NE -- -- 0\n#EOS 2\n"},
		{"duplicate id", exportBlock + exportBlock},
		{"missing EOS", "#BOS 1\nJohn -- NE -- -- 0\n"},
		{"BOS without id", "#BOS \n#EOS \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadString(tt.input, Export, Options{})
			if !errors.Is(err, errors.ErrFormat) {
				t.Errorf("ReadString() error = %v, want ErrFormat", err)
			}
		})
	}
}

func TestWriteExport(t *testing.T) {
	tr, sent, err := ExportTree(blockLines(exportBlock), Options{})
	if err != nil {
		t.Fatal(err)
	}
	got, err := WriteTree(tr, sent, "1", Export, WriteOptions{})
	if err != nil {
		t.Fatalf("WriteTree() error = %v", err)
	}
	want := "#BOS 1\n" +
		"John\t--\tNNP\t--\t--\t500\n" +
		"is\t--\tVB\t--\t--\t500\n" +
		"#500\t--\tS\t--\t--\t0\n" +
		"#EOS 1\n"
	if got != want {
		t.Errorf("WriteTree(export) =\n%s\nwant\n%s", got, want)
	}
}

func TestWriteExportFromBracket(t *testing.T) {
	tr, sent, _, err := BracketTree(discTree, "is John rich ?", "()")
	if err != nil {
		t.Fatal(err)
	}
	got, err := WriteTree(tr, sent, "7", Export, WriteOptions{Comment: "converted"})
	if err != nil {
		t.Fatalf("WriteTree() error = %v", err)
	}
	want := "#BOS 7 %% converted\n" +
		"is\t--\tVB\t--\t--\t500\n" +
		"John\t--\tNP\t--\t--\t0\n" +
		"rich\t--\tJJ\t--\t--\t500\n" +
		"?\t--\tPUNC\t--\t--\t0\n" +
		"#500\t--\tVP\t--\t--\t0\n" +
		"#EOS 7\n"
	if got != want {
		t.Errorf("WriteTree(export) =\n%s\nwant\n%s", got, want)
	}
}

func TestWriteExportRenumbersSecondaryEdges(t *testing.T) {
	block := "#BOS 1\n" +
		"a\t--\tNN\t--\tHD\t502\n" +
		"b\t--\tVB\t--\tHD\t501\tOA\t502\n" +
		"#502\t--\tNP\t--\tSB\t501\n" +
		"#501\t--\tVP\t--\t--\t0\tRE\t0\n" +
		"#EOS 1\n"
	tr, sent, err := ExportTree(blockLines(block), Options{})
	if err != nil {
		t.Fatal(err)
	}
	got, err := WriteTree(tr, sent, "1", Export, WriteOptions{})
	if err != nil {
		t.Fatalf("WriteTree() error = %v", err)
	}
	want := "#BOS 1\n" +
		"a\t--\tNN\t--\tHD\t500\n" +
		"b\t--\tVB\t--\tHD\t501\tOA\t500\n" +
		"#500\t--\tNP\t--\tSB\t501\n" +
		"#501\t--\tVP\t--\t--\t0\tRE\t0\n" +
		"#EOS 1\n"
	if got != want {
		t.Errorf("WriteTree(export) =\n%s\nwant\n%s", got, want)
	}

	leaf, err := tr.At(tree.Position{0, 0})
	if err != nil {
		t.Fatal(err)
	}
	leaf.(*tree.ParentedTree).Source().SecEdges[0].Parent = "999"
	if _, err := WriteTree(tr, sent, "1", Export, WriteOptions{}); !errors.Is(err, errors.ErrSemantic) {
		t.Errorf("WriteTree(dangling secondary edge) error = %v, want ErrSemantic", err)
	}
}

func TestWriteExportErrors(t *testing.T) {
	tr, err := tree.ParseParented("(S (NP 0) (VP 1))", tree.IntLeaves())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := WriteTree(tr, []string{"a"}, "1", Export, WriteOptions{}); !errors.Is(err, errors.ErrSemantic) {
		t.Errorf("WriteTree(short sentence) error = %v, want ErrSemantic", err)
	}
	if _, err := WriteTree(tr, []string{"a", ""}, "1", Export, WriteOptions{}); !errors.Is(err, errors.ErrSemantic) {
		t.Errorf("WriteTree(empty word) error = %v, want ErrSemantic", err)
	}
}
