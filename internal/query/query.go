// Package query selects treebank items with boolean expressions such as
//
//	length <= 40 && fanout > 1 && "VP" in labels
//
// Expressions are compiled once with expr and evaluated against an Env
// built from each item.
package query

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/FocuswithJustin/treebank/core/errors"
	"github.com/FocuswithJustin/treebank/core/tree"
	"github.com/FocuswithJustin/treebank/core/treebank"
)

// Node describes one constituent of a tree.
type Node struct {
	Label  string `expr:"label"`
	Fanout int    `expr:"fanout"`
	Leaves int    `expr:"leaves"`
	Height int    `expr:"height"`
}

// Env is what an expression sees of an item.
type Env struct {
	ID      string   `expr:"id"`
	Format  string   `expr:"format"`
	Comment string   `expr:"comment"`
	Words   []string `expr:"words"`
	Tags    []string `expr:"tags"`   // preterminal labels, by sentence position
	Labels  []string `expr:"labels"` // phrasal labels, preorder
	Nodes   []Node   `expr:"nodes"`  // every constituent, preorder
	Length  int      `expr:"length"`
	Fanout  int      `expr:"fanout"` // maximal fan-out of any constituent
	Height  int      `expr:"height"`
}

// NewEnv summarizes item for evaluation.
func NewEnv(item *treebank.Item) Env {
	env := Env{
		ID:      item.ID,
		Format:  item.Format.String(),
		Comment: item.Comment,
		Words:   item.Sent,
		Length:  len(item.Sent),
	}
	if item.Tree == nil {
		return env
	}
	for _, tw := range treebank.TaggedSent(item.Tree, item.Sent) {
		env.Tags = append(env.Tags, tw.Tag)
	}
	for v := range tree.Subtrees(item.Tree, nil) {
		n := Node{Label: v.Label(), Fanout: tree.Fanout(v), Leaves: len(tree.Leaves(v)), Height: tree.Height(v)}
		env.Nodes = append(env.Nodes, n)
		if !tree.IsPreterminal(v) {
			env.Labels = append(env.Labels, n.Label)
		}
		env.Fanout = max(env.Fanout, n.Fanout)
	}
	env.Height = tree.Height(item.Tree)
	return env
}

func exprOpts() []expr.Option {
	return []expr.Option{
		expr.Env(Env{}),
		expr.AsBool(),
		expr.Function("discontinuous", func(params ...any) (any, error) {
			return params[0].(Node).Fanout > 1, nil
		},
			new(func(Node) bool)),
	}
}

// Filter is a compiled expression.
type Filter struct {
	src  string
	prog *vm.Program
}

// Compile parses src. A syntax or type error is reported as an invalid
// "where" option.
func Compile(src string) (*Filter, error) {
	prog, err := expr.Compile(src, exprOpts()...)
	if err != nil {
		return nil, &errors.ConfigError{Option: "where", Value: src, Err: err}
	}
	return &Filter{src: src, prog: prog}, nil
}

func (f *Filter) String() string { return f.src }

// Match evaluates the filter on item.
func (f *Filter) Match(item *treebank.Item) (bool, error) {
	out, err := expr.Run(f.prog, NewEnv(item))
	if err != nil {
		return false, errors.Wrapf(err, "where %q on item %s", f.src, item.ID)
	}
	return out.(bool), nil
}
