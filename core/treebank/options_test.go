package treebank

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/FocuswithJustin/treebank/core/errors"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"bracket", Bracket, false},
		{"DiscBracket", DiscBracket, false},
		{"export", Export, false},
		{"tiger", Tiger, false},
		{"alpino", Alpino, false},
		{"conll", Conll, false},
		{"wordpos", WordPos, false},
		{"", 0, true},
		{"negra", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, errors.ErrConfig) {
			t.Errorf("ParseFormat(%q) error = %v, want ErrConfig", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatReadable(t *testing.T) {
	for _, f := range []Format{Bracket, DiscBracket, Export, Tiger, Alpino} {
		if !f.Readable() {
			t.Errorf("%s should be readable", f)
		}
	}
	for _, f := range []Format{Conll, MST, Tokens, WordPos} {
		if f.Readable() {
			t.Errorf("%s should not be readable", f)
		}
	}
}

func TestParsePolicies(t *testing.T) {
	if p, err := ParseFunctionPolicy("between"); err != nil || p != FunctionsBetween {
		t.Errorf("ParseFunctionPolicy(between) = %v, %v", p, err)
	}
	if p, err := ParseMorphologyPolicy(""); err != nil || p != MorphNo {
		t.Errorf("ParseMorphologyPolicy(\"\") = %v, %v", p, err)
	}
	if p, err := ParseLemmaPolicy("REPLACE"); err != nil || p != LemmaReplace {
		t.Errorf("ParseLemmaPolicy(REPLACE) = %v, %v", p, err)
	}
	if p, err := ParsePunctPolicy("moveall"); err != nil || p != PunctMoveAll {
		t.Errorf("ParsePunctPolicy(moveall) = %v, %v", p, err)
	}

	_, err := ParsePunctPolicy("sideways")
	var ce *errors.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("ParsePunctPolicy(sideways) error = %v, want ConfigError", err)
	}
	if ce.Option != "punct" || len(ce.Allowed) != len(punctNames) {
		t.Errorf("ConfigError = %+v", ce)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOptions(t *testing.T) {
	dir := t.TempDir()
	rules := writeFile(t, dir, "heads.txt", "S left-to-right VB\nNP right-to-left NN\n")
	path := writeFile(t, dir, "opts.yaml", `functions: add
morphology: replace
lemmas: between
punct: move
headrules: `+rules+`
removeempty: true
emptytokens: ["*", "0"]
ensureroot: ROOT
`)
	opts, err := LoadOptions(path)
	if err != nil {
		t.Fatalf("LoadOptions() error = %v", err)
	}
	if opts.Functions != FunctionsAdd || opts.Morphology != MorphReplace ||
		opts.Lemmas != LemmaBetween || opts.Punct != PunctMove {
		t.Errorf("policies = %v %v %v %v", opts.Functions, opts.Morphology, opts.Lemmas, opts.Punct)
	}
	if !opts.HeadFinal {
		t.Error("HeadFinal default lost")
	}
	if len(opts.HeadRules) != 2 {
		t.Errorf("HeadRules = %v, want rules for S and NP", opts.HeadRules)
	}
	if !opts.RemoveEmpty || opts.EnsureRoot != "ROOT" || len(opts.EmptyTokens) != 2 {
		t.Errorf("options = %+v", opts)
	}
	if isEmpty := opts.isEmpty(); isEmpty == nil || !isEmpty("*") || isEmpty("a") {
		t.Error("isEmpty does not use EmptyTokens")
	}
}

func TestLoadOptionsEmptyFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.yaml", "")
	opts, err := LoadOptions(path)
	if err != nil {
		t.Fatalf("LoadOptions(empty) error = %v", err)
	}
	if opts.Functions != FunctionsLeave || !opts.HeadFinal {
		t.Errorf("LoadOptions(empty) = %+v, want defaults", opts)
	}
}

func TestLoadOptionsErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name     string
		content  string
		sentinel error
	}{
		{"unknown key", "colour: red\n", errors.ErrConfig},
		{"bad policy", "punct: sideways\n", errors.ErrConfig},
		{"missing head rules", "headrules: " + filepath.Join(dir, "nope.txt") + "\n", errors.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, "opts.yaml", tt.content)
			_, err := LoadOptions(path)
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("LoadOptions() error = %v, want %v", err, tt.sentinel)
			}
		})
	}

	_, err := LoadOptions(filepath.Join(dir, "absent.yaml"))
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("LoadOptions(absent) error = %v, want ErrNotFound", err)
	}
}

func TestOptionsInitRejectsOutOfRange(t *testing.T) {
	opts := Options{Morphology: MorphologyPolicy(42)}
	if err := opts.init(); !errors.Is(err, errors.ErrConfig) {
		t.Errorf("init() error = %v, want ErrConfig", err)
	}
}
