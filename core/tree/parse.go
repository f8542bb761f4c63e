package tree

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/treebank/core/errors"
)

type parseConfig struct {
	brackets     string
	labelPattern string
	leafPattern  string
	labelFunc    func(string) string
	leafFunc     func(string) (Leaf, error)
}

// ParseOption configures Parse.
type ParseOption func(*parseConfig)

// WithBrackets sets the opening and closing bracket characters, "()" by
// default. The two characters must differ and may not be whitespace.
func WithBrackets(brackets string) ParseOption {
	return func(c *parseConfig) { c.brackets = brackets }
}

// WithLabelPattern sets the regular expression matching node labels.
func WithLabelPattern(pattern string) ParseOption {
	return func(c *parseConfig) { c.labelPattern = pattern }
}

// WithLeafPattern sets the regular expression matching leaves.
func WithLeafPattern(pattern string) ParseOption {
	return func(c *parseConfig) { c.leafPattern = pattern }
}

// WithLabelFunc transforms every label as it is read.
func WithLabelFunc(fn func(string) string) ParseOption {
	return func(c *parseConfig) { c.labelFunc = fn }
}

// WithLeafFunc converts every leaf token. The default keeps tokens as text.
func WithLeafFunc(fn func(string) (Leaf, error)) ParseOption {
	return func(c *parseConfig) { c.leafFunc = fn }
}

// IntLeaves reads every leaf as a sentence index.
func IntLeaves() ParseOption {
	return WithLeafFunc(ParseIntLeaf)
}

var defaultLexer = mustBracketLexer("()", "", "")

func mustBracketLexer(brackets, labelPattern, leafPattern string) *lexer.StatefulDefinition {
	def, err := bracketLexer(brackets, labelPattern, leafPattern)
	if err != nil {
		panic(err)
	}
	return def
}

// bracketLexer tokenizes openers with their optional label, closers, leaves
// and whitespace. Characters matched by none of these are skipped.
func bracketLexer(brackets, labelPattern, leafPattern string) (*lexer.StatefulDefinition, error) {
	runes := []rune(brackets)
	if len(runes) != 2 || runes[0] == runes[1] {
		return nil, errors.NewConfig("brackets", brackets)
	}
	if unicode.IsSpace(runes[0]) || unicode.IsSpace(runes[1]) {
		return nil, errors.NewConfig("brackets", brackets)
	}
	open := regexp.QuoteMeta(string(runes[0]))
	closeB := regexp.QuoteMeta(string(runes[1]))
	word := `[^\s` + open + closeB + `]+`
	if labelPattern == "" {
		labelPattern = word
	}
	if leafPattern == "" {
		leafPattern = word
	}
	return lexer.NewSimple([]lexer.SimpleRule{
		{Name: "Open", Pattern: open + `\s*(?:` + labelPattern + `)?`},
		{Name: "Close", Pattern: closeB},
		{Name: "Leaf", Pattern: leafPattern},
		{Name: "Whitespace", Pattern: `\s+`},
		{Name: "Other", Pattern: `.`},
	})
}

type frame struct {
	label    string
	children []Node
}

// Parse reads a single tree in bracket notation, e.g. "(S (NP John) (VP runs))".
// The input must contain exactly one complete tree; any other shape yields a
// *errors.TokenError naming the offending token and its offset.
func Parse(s string, opts ...ParseOption) (*Tree, error) {
	cfg := parseConfig{brackets: "()"}
	for _, opt := range opts {
		opt(&cfg)
	}
	def := defaultLexer
	if cfg.brackets != "()" || cfg.labelPattern != "" || cfg.leafPattern != "" {
		var err error
		if def, err = bracketLexer(cfg.brackets, cfg.labelPattern, cfg.leafPattern); err != nil {
			return nil, err
		}
	}
	openB, closeB := string([]rune(cfg.brackets)[0]), string([]rune(cfg.brackets)[1])
	syms := def.Symbols()
	lex, err := def.LexString("", s)
	if err != nil {
		return nil, err
	}

	fail := func(expected, token string, offset int) error {
		return &errors.TokenError{Expected: expected, Token: token, Offset: offset, Input: s}
	}
	stack := []*frame{{}}
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, errors.Wrap(err, "tokenize")
		}
		if tok.EOF() {
			break
		}
		offset := tok.Pos.Offset
		switch tok.Type {
		case syms["Open"]:
			if len(stack) == 1 && len(stack[0].children) > 0 {
				return nil, fail("end-of-string", tok.Value, offset)
			}
			label := strings.TrimLeftFunc(tok.Value[len(openB):], unicode.IsSpace)
			if cfg.labelFunc != nil {
				label = cfg.labelFunc(label)
			}
			stack = append(stack, &frame{label: label})
		case syms["Close"]:
			if len(stack) == 1 {
				if len(stack[0].children) == 0 {
					return nil, fail(openB, tok.Value, offset)
				}
				return nil, fail("end-of-string", tok.Value, offset)
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, &Tree{label: top.label, children: top.children})
		case syms["Leaf"]:
			if len(stack) == 1 {
				return nil, fail(openB, tok.Value, offset)
			}
			leaf := TextLeaf(tok.Value)
			if cfg.leafFunc != nil {
				if leaf, err = cfg.leafFunc(tok.Value); err != nil {
					return nil, errors.Wrapf(fail("leaf", tok.Value, offset), "%v", err)
				}
			}
			top := stack[len(stack)-1]
			top.children = append(top.children, leaf)
		}
	}
	switch {
	case len(stack) > 1:
		return nil, fail(closeB, "end-of-string", len(s))
	case len(stack[0].children) == 0:
		return nil, fail(openB, "end-of-string", len(s))
	}
	return stack[0].children[0].(*Tree), nil
}

// ParseParented parses s into a new single-parent arena.
func ParseParented(s string, opts ...ParseOption) (*ParentedTree, error) {
	t, err := Parse(s, opts...)
	if err != nil {
		return nil, err
	}
	return ToParented(t), nil
}
