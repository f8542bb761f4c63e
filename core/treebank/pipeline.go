package treebank

import (
	"github.com/FocuswithJustin/treebank/core/errors"
	"github.com/FocuswithJustin/treebank/core/transform"
	"github.com/FocuswithJustin/treebank/core/tree"
)

// Apply runs the post-reading transformations in their fixed order: empty
// node removal, root insertion, reordering of children by their leaves
// (when sortChildren is set), the punctuation policy and head rules. It
// returns the possibly new root and the possibly shortened sentence. A tree
// without a sentence is returned as is.
func (o *Options) Apply(t *tree.ParentedTree, sent []string, sortChildren bool) (*tree.ParentedTree, []string, error) {
	if len(sent) == 0 {
		return t, sent, nil
	}
	var err error
	if o.RemoveEmpty {
		if sent, err = transform.RemoveEmptyNodes(t, sent, o.isEmpty()); err != nil {
			return nil, nil, errors.Wrap(err, "remove empty nodes")
		}
	}
	if t, err = transform.EnsureRoot(t, o.EnsureRoot); err != nil {
		return nil, nil, err
	}
	if sortChildren {
		if err := transform.SortByLeaves(t); err != nil {
			return nil, nil, err
		}
	}

	switch o.Punct {
	case PunctNone:
	case PunctRemove:
		if sent, err = transform.PunctRemove(t, sent); err != nil {
			return nil, nil, errors.Wrap(err, "remove punctuation")
		}
	case PunctMove, PunctMoveAll:
		if err := transform.PunctRaise(t, sent, o.Punct == PunctMoveAll); err != nil {
			return nil, nil, errors.Wrap(err, "raise punctuation")
		}
		if err := transform.BalancedPunctRaise(t, sent); err != nil {
			return nil, nil, errors.Wrap(err, "raise paired punctuation")
		}
		if err := transform.SortByLeaves(t); err != nil {
			return nil, nil, err
		}
	case PunctRoot:
		if err := transform.PunctRoot(t, sent); err != nil {
			return nil, nil, errors.Wrap(err, "attach punctuation to root")
		}
	default:
		return nil, nil, errors.NewConfig("punct", o.Punct.String(), punctNames...)
	}

	if len(o.HeadRules) > 0 {
		if err := transform.ApplyHeads(t, o.HeadRules, o.HeadFinal, o.HeadReverse, o.MarkHeads); err != nil {
			return nil, nil, errors.Wrap(err, "apply head rules")
		}
	}
	return t, sent, nil
}
