package treebank

import (
	"cmp"
	"slices"
	"strings"

	"github.com/FocuswithJustin/treebank/core/encoding"
	"github.com/FocuswithJustin/treebank/core/errors"
	"github.com/FocuswithJustin/treebank/core/tree"
)

// Item is one block of a treebank: a tree whose leaves index Sent, plus the
// block's identifier and any free-text comment.
type Item struct {
	ID      string
	Tree    *tree.ParentedTree
	Sent    []string
	Comment string
	Format  Format
}

// FunctionOptions qualifies HandleFunctions.
type FunctionOptions struct {
	POS        bool             // also annotate preterminals
	Top        bool             // also annotate the root
	Morphology MorphologyPolicy // the policy the tree was read with
}

func hasSubtrees(v tree.View) bool {
	if v.Len() == 0 {
		return false
	}
	_, ok := v.Child(0).(tree.View)
	return ok
}

// funcTag returns the first dash-separated part of a node's function, or ""
// when it has none ("--" counts as none).
func funcTag(v tree.View) string {
	src := v.Source()
	if src == nil || src.Func == "" || src.Func == "--" {
		return ""
	}
	f, _, _ := strings.Cut(src.Func, "-")
	return f
}

// HandleFunctions folds the grammatical functions recorded in node sources
// into labels according to policy.
func HandleFunctions(policy FunctionPolicy, t *tree.ParentedTree, opts FunctionOptions) error {
	if policy == FunctionsLeave {
		return nil
	}
	var nodes []*tree.ParentedTree
	for v := range tree.Subtrees(t, nil) {
		nodes = append(nodes, v.(*tree.ParentedTree))
	}
	for _, a := range nodes {
		switch {
		case policy == FunctionsRemove:
			label := a.Label()
			for _, char := range "-=" {
				// -NONE- keeps its leading dash
				if x := strings.IndexRune(label, char); x > 0 {
					label = label[:x]
				}
			}
			a.SetLabel(label)
			continue
		case opts.Morphology == MorphBetween && !hasSubtrees(a):
			continue
		case (!opts.Top || policy == FunctionsBetween) && a == t:
			continue
		case !opts.POS && !hasSubtrees(a):
			continue
		}
		fn := funcTag(a)
		switch policy {
		case FunctionsAdd:
			if fn != "" {
				a.SetLabel(a.Label() + "-" + fn)
			}
		case FunctionsReplace:
			if fn != "" {
				a.SetLabel(fn)
			}
		case FunctionsBetween:
			parent := a.Parent()
			wrapper, err := t.Arena().NewParented("-" + cmp.Or(fn, "--"))
			if err != nil {
				return err
			}
			if err := parent.Set(a.ParentIndex(), wrapper); err != nil {
				return err
			}
			if err := wrapper.Append(a); err != nil {
				return err
			}
		default:
			return errors.NewConfig("functions", policy.String(), functionNames...)
		}
	}
	return nil
}

var fieldEscaper = strings.NewReplacer("(", "[", ")", "]", " ", "_")

// HandleMorphology sets the label of a freshly built preterminal from its
// source record, folding in morphology and lemma according to the two
// policies. Lemmas added to or replacing tokens are written into sent.
func HandleMorphology(morph MorphologyPolicy, lemma LemmaPolicy, pt *tree.Tree, src *tree.Source, sent []string) error {
	if src == nil {
		return nil
	}
	tag := encoding.EscapeMorph(src.Tag)
	morphTag := fieldEscaper.Replace(src.Morph)
	lemmaTag := cmp.Or(fieldEscaper.Replace(src.Lemma), "--")

	switch lemma {
	case LemmaNo:
	case LemmaAdd, LemmaReplace:
		l, ok := pt.Child(0).(tree.Leaf)
		if !ok || l.Int() < 0 || l.Int() >= len(sent) {
			return errors.NewSemantic("lemma for %s requires a sentence index", pt.Label())
		}
		if lemma == LemmaAdd {
			sent[l.Int()] += "/" + lemmaTag
		} else {
			sent[l.Int()] = lemmaTag
		}
	case LemmaBetween:
		inner := tree.New(lemmaTag, slices.Clone(pt.Children())...)
		if err := pt.SetSlice(0, pt.Len(), inner); err != nil {
			return err
		}
	default:
		return errors.NewConfig("lemmas", lemma.String(), lemmaNames...)
	}

	switch morph {
	case MorphNo:
		pt.SetLabel(tag)
	case MorphAdd:
		pt.SetLabel(tag + "/" + morphTag)
	case MorphReplace:
		pt.SetLabel(morphTag)
	case MorphBetween:
		last, err := pt.Pop(-1)
		if err != nil {
			return err
		}
		if err := pt.Append(tree.New(morphTag, last)); err != nil {
			return err
		}
		pt.SetLabel(tag)
	default:
		return errors.NewConfig("morphology", morph.String(), morphNames...)
	}
	return nil
}
