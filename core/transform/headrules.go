package transform

import (
	"io"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/treebank/core/errors"
)

// Direction controls how a head rule scans the children of a node.
type Direction int

const (
	// LeftToRight tries each candidate label in turn against all children
	// from left to right.
	LeftToRight Direction = iota
	// RightToLeft is LeftToRight scanning children from right to left.
	RightToLeft
	// Left scans children from left to right and takes the first child
	// matching any candidate.
	Left
	// Right is Left scanning from right to left.
	Right
)

var directionNames = map[string]Direction{
	"LEFT-TO-RIGHT": LeftToRight,
	"RIGHT-TO-LEFT": RightToLeft,
	"LEFT":          Left,
	"RIGHT":         Right,
}

func (d Direction) String() string {
	for name, v := range directionNames {
		if v == d {
			return strings.ToLower(name)
		}
	}
	return "unknown"
}

// HeadRule is one ranked entry for a phrasal label.
type HeadRule struct {
	Direction  Direction
	Candidates []string
}

// HeadRules maps an upper-cased base label to its rules in file order.
type HeadRules map[string][]HeadRule

// headRulesGrammar is the participle grammar for head rule files: one rule
// per line, LABEL DIRECTION CANDIDATE..., with % starting a comment.
//
//nolint:govet // participle grammar tags are not standard struct tags
type headRulesGrammar struct {
	Lines []*headRuleLine `parser:"( @@ | EOL )*"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type headRuleLine struct {
	Label      string   `parser:"@Word"`
	Direction  string   `parser:"@Word"`
	Candidates []string `parser:"@Word+ EOL"`
}

var headRulesLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `%[^\n]*`},
	{Name: "EOL", Pattern: `\n`},
	{Name: "Word", Pattern: `[^\s%]+`},
	{Name: "Whitespace", Pattern: `[ \t\r]+`},
})

var headRulesParser = participle.MustBuild[headRulesGrammar](
	participle.Lexer(headRulesLexer),
	participle.Elide("Whitespace", "Comment"),
)

// ParseHeadRules parses head rules from text. Labels, directions and
// candidates are case-insensitive.
func ParseHeadRules(name, text string) (HeadRules, error) {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	parsed, err := headRulesParser.ParseString(name, text)
	if err != nil {
		return nil, &errors.FormatError{Format: "headrules", Block: name, Message: "invalid rule", Err: err}
	}
	rules := HeadRules{}
	for _, line := range parsed.Lines {
		dir, ok := directionNames[strings.ToUpper(line.Direction)]
		if !ok {
			return nil, errors.NewConfig("head rule direction", line.Direction,
				"left-to-right", "right-to-left", "left", "right")
		}
		cands := make([]string, len(line.Candidates))
		for i, c := range line.Candidates {
			cands[i] = strings.ToUpper(c)
		}
		label := strings.ToUpper(line.Label)
		rules[label] = append(rules[label], HeadRule{Direction: dir, Candidates: cands})
	}
	return rules, nil
}

// ReadHeadRules parses head rules from r.
func ReadHeadRules(name string, r io.Reader) (HeadRules, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewIO("read", name, err)
	}
	return ParseHeadRules(name, string(data))
}

// LoadHeadRules reads a head rules file.
func LoadHeadRules(path string) (HeadRules, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &errors.NotFoundError{Resource: "head rules", ID: path, Err: err}
		}
		return nil, errors.NewIO("open", path, err)
	}
	defer f.Close()
	return ReadHeadRules(path, f)
}
