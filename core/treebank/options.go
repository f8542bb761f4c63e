package treebank

import (
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/treebank/core/errors"
	"github.com/FocuswithJustin/treebank/core/transform"
)

// parseEnum maps a name onto its index in names, case-insensitively. The
// empty string selects the first (default) value.
func parseEnum[T ~int](option, s string, names []string) (T, error) {
	if s == "" {
		return 0, nil
	}
	for i, name := range names {
		if strings.EqualFold(s, name) {
			return T(i), nil
		}
	}
	return 0, errors.NewConfig(option, s, names...)
}

func enumName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return "unknown"
	}
	return names[i]
}

// Format identifies an on-disk treebank encoding.
type Format int

const (
	// Bracket is Penn-style bracket notation with words as leaves.
	Bracket Format = iota
	// DiscBracket is bracket notation with sentence indices as leaves,
	// followed by a tab and the sentence.
	DiscBracket
	// Export is the Negra export format.
	Export
	// Tiger is the Tiger XML graph format.
	Tiger
	// Alpino is the Alpino dependency XML format, one sentence per file.
	Alpino
	// Conll is the CoNLL dependency format (write only).
	Conll
	// MST is the MST parser dependency format (write only).
	MST
	// Tokens writes one sentence per line (write only).
	Tokens
	// WordPos writes word/TAG pairs, one sentence per line (write only).
	WordPos
)

var formatNames = []string{"bracket", "discbracket", "export", "tiger", "alpino", "conll", "mst", "tokens", "wordpos"}

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return 0, errors.NewConfig("format", s, formatNames...)
	}
	return parseEnum[Format]("format", s, formatNames)
}

func (f Format) String() string { return enumName(formatNames, int(f)) }

// Readable reports whether trees can be read from f.
func (f Format) Readable() bool { return f <= Alpino }

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(text []byte) error {
	v, err := ParseFormat(string(text))
	if err == nil {
		*f = v
	}
	return err
}

// FunctionPolicy controls how grammatical functions are folded into labels.
type FunctionPolicy int

const (
	// FunctionsLeave keeps labels as they are.
	FunctionsLeave FunctionPolicy = iota
	// FunctionsAdd appends the function: NP => NP-SBJ.
	FunctionsAdd
	// FunctionsReplace replaces the label with the function: NP => SBJ.
	FunctionsReplace
	// FunctionsRemove strips functions and coindexation: NP-SBJ=2 => NP.
	FunctionsRemove
	// FunctionsBetween inserts a node labeled -FUNC above each node.
	FunctionsBetween
)

var functionNames = []string{"leave", "add", "replace", "remove", "between"}

// ParseFunctionPolicy parses a function policy name.
func ParseFunctionPolicy(s string) (FunctionPolicy, error) {
	return parseEnum[FunctionPolicy]("functions", s, functionNames)
}

func (p FunctionPolicy) String() string { return enumName(functionNames, int(p)) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *FunctionPolicy) UnmarshalText(text []byte) error {
	v, err := ParseFunctionPolicy(string(text))
	if err == nil {
		*p = v
	}
	return err
}

// MorphologyPolicy controls how morphological tags are folded into trees.
type MorphologyPolicy int

const (
	// MorphNo uses POS tags as preterminals.
	MorphNo MorphologyPolicy = iota
	// MorphAdd appends morphology to the POS tag: DET/sg.def.
	MorphAdd
	// MorphReplace uses the morphological tag as preterminal label.
	MorphReplace
	// MorphBetween inserts a node with the morphological tag between POS tag
	// and word: (DET (sg.def 0)).
	MorphBetween
)

var morphNames = []string{"no", "add", "replace", "between"}

// ParseMorphologyPolicy parses a morphology policy name.
func ParseMorphologyPolicy(s string) (MorphologyPolicy, error) {
	return parseEnum[MorphologyPolicy]("morphology", s, morphNames)
}

func (p MorphologyPolicy) String() string { return enumName(morphNames, int(p)) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *MorphologyPolicy) UnmarshalText(text []byte) error {
	v, err := ParseMorphologyPolicy(string(text))
	if err == nil {
		*p = v
	}
	return err
}

// LemmaPolicy controls how lemmas are folded into trees.
type LemmaPolicy int

const (
	// LemmaNo ignores lemmas.
	LemmaNo LemmaPolicy = iota
	// LemmaAdd appends the lemma to the token: men/man.
	LemmaAdd
	// LemmaReplace uses the lemma as token.
	LemmaReplace
	// LemmaBetween inserts a node labeled with the lemma between POS tag and
	// word.
	LemmaBetween
)

var lemmaNames = []string{"no", "add", "replace", "between"}

// ParseLemmaPolicy parses a lemma policy name.
func ParseLemmaPolicy(s string) (LemmaPolicy, error) {
	return parseEnum[LemmaPolicy]("lemmas", s, lemmaNames)
}

func (p LemmaPolicy) String() string { return enumName(lemmaNames, int(p)) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *LemmaPolicy) UnmarshalText(text []byte) error {
	v, err := ParseLemmaPolicy(string(text))
	if err == nil {
		*p = v
	}
	return err
}

// PunctPolicy controls where punctuation ends up.
type PunctPolicy int

const (
	// PunctNone leaves punctuation as is.
	PunctNone PunctPolicy = iota
	// PunctMove moves punctuation into appropriate constituents.
	PunctMove
	// PunctMoveAll is PunctMove applied to every preterminal under the root.
	PunctMoveAll
	// PunctRemove deletes punctuation.
	PunctRemove
	// PunctRoot attaches punctuation directly to the root.
	PunctRoot
)

var punctNames = []string{"no", "move", "moveall", "remove", "root"}

// ParsePunctPolicy parses a punctuation policy name.
func ParsePunctPolicy(s string) (PunctPolicy, error) {
	return parseEnum[PunctPolicy]("punct", s, punctNames)
}

func (p PunctPolicy) String() string { return enumName(punctNames, int(p)) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *PunctPolicy) UnmarshalText(text []byte) error {
	v, err := ParsePunctPolicy(string(text))
	if err == nil {
		*p = v
	}
	return err
}

// Options configures how trees are read and transformed after reading.
type Options struct {
	Functions  FunctionPolicy   `yaml:"functions"`
	Morphology MorphologyPolicy `yaml:"morphology"`
	Lemmas     LemmaPolicy      `yaml:"lemmas"`
	Punct      PunctPolicy      `yaml:"punct"`

	// HeadRules, when non-empty, assigns heads and reorders constituents
	// around them. HeadRulesFile is read into HeadRules if HeadRules is nil.
	HeadRules     transform.HeadRules `yaml:"-"`
	HeadRulesFile string              `yaml:"headrules"`
	HeadFinal     bool                `yaml:"headfinal"`
	HeadReverse   bool                `yaml:"headreverse"`
	MarkHeads     bool                `yaml:"markheads"`

	RemoveEmpty bool     `yaml:"removeempty"`
	EmptyTokens []string `yaml:"emptytokens"`
	EnsureRoot  string   `yaml:"ensureroot"`
}

// DefaultOptions returns options that leave trees as read, with heads
// placed finally once head rules are given.
func DefaultOptions() Options {
	return Options{HeadFinal: true}
}

// LoadOptions reads options from a YAML file on top of DefaultOptions.
// Unknown keys and invalid policy names are errors.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return opts, &errors.NotFoundError{Resource: "options file", ID: path, Err: err}
		}
		return opts, errors.NewIO("open", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil && err != io.EOF {
		if errors.Is(err, errors.ErrConfig) {
			return opts, err
		}
		return opts, &errors.ConfigError{Option: "options file", Value: path, Err: err}
	}
	if err := opts.init(); err != nil {
		return opts, err
	}
	return opts, nil
}

// init validates the policies and loads head rules from HeadRulesFile when
// needed.
func (o *Options) init() error {
	for _, p := range []struct {
		option string
		value  int
		names  []string
	}{
		{"functions", int(o.Functions), functionNames},
		{"morphology", int(o.Morphology), morphNames},
		{"lemmas", int(o.Lemmas), lemmaNames},
		{"punct", int(o.Punct), punctNames},
	} {
		if p.value < 0 || p.value >= len(p.names) {
			return errors.NewConfig(p.option, strconv.Itoa(p.value), p.names...)
		}
	}
	if o.HeadRules == nil && o.HeadRulesFile != "" {
		rules, err := transform.LoadHeadRules(o.HeadRulesFile)
		if err != nil {
			return err
		}
		o.HeadRules = rules
	}
	return nil
}

func (o *Options) isEmpty() func(string) bool {
	if len(o.EmptyTokens) == 0 {
		return nil
	}
	return func(w string) bool { return slices.Contains(o.EmptyTokens, w) }
}
