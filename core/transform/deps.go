package transform

import (
	"cmp"
	"slices"

	"github.com/FocuswithJustin/treebank/core/errors"
	"github.com/FocuswithJustin/treebank/core/tree"
)

// Dependency is an unlabeled dependency between 1-based terminal positions.
// The root's head has Head 0 and relation ROOT; all others have NONE.
type Dependency struct {
	Child int
	Rel   string
	Head  int
}

// Dependencies converts a constituency tree into dependencies following
// Lin (1995): the lexical head of each node is the lexical head of its head
// child, and every non-head child depends on it. Results are sorted by
// child position.
func Dependencies(root *tree.ParentedTree, rules HeadRules) ([]Dependency, error) {
	if len(rules) == 0 {
		return nil, errors.NewSemantic("dependency conversion requires head rules")
	}
	var deps []Dependency
	head, err := lexicalHead(root, rules, &deps)
	if err != nil {
		return nil, err
	}
	deps = append(deps, Dependency{Child: head, Rel: "ROOT", Head: 0})
	slices.SortFunc(deps, func(a, b Dependency) int {
		return cmp.Or(cmp.Compare(a.Child, b.Child), cmp.Compare(a.Rel, b.Rel), cmp.Compare(a.Head, b.Head))
	})
	return deps, nil
}

func lexicalHead(n *tree.ParentedTree, rules HeadRules, deps *[]Dependency) (int, error) {
	if n.Len() == 0 {
		return 0, errors.NewSemantic("node %s has no children", n.Label())
	}
	if l, ok := n.Child(0).(tree.Leaf); ok {
		return l.Int() + 1, nil
	}
	headChild := HeadFinder(n, rules)
	head, err := lexicalHead(headChild, rules, deps)
	if err != nil {
		return 0, err
	}
	for i := range n.Len() {
		c, ok := n.Child(i).(*tree.ParentedTree)
		if !ok || c == headChild {
			continue
		}
		dep, err := lexicalHead(c, rules, deps)
		if err != nil {
			return 0, err
		}
		*deps = append(*deps, Dependency{Child: dep, Rel: "NONE", Head: head})
	}
	return head, nil
}
