package treebank

import (
	"iter"
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/FocuswithJustin/treebank/core/errors"
)

// ReadString parses all trees in text, which holds a corpus in a readable
// format. No transformations besides those of the format readers are
// applied.
func ReadString(text string, format Format, opts Options) ([]*Item, error) {
	if !format.Readable() {
		return nil, errors.NewUnsupported("input format", format.String())
	}
	rd := strings.NewReader(text)
	n := 0
	var blocks iter.Seq2[Block, error]
	switch format {
	case Bracket, DiscBracket:
		blocks = lineBlocks(rd, format, func() int { n++; return n })
	case Export:
		blocks = exportBlocks(rd, make(map[string]bool))
	case Tiger:
		blocks = tigerBlocks(rd)
	case Alpino:
		blocks = alpinoBlock(rd, "")
	}
	var items []*Item
	for b, err := range blocks {
		if err != nil {
			return items, err
		}
		t, sent, comment, err := b.parse(opts)
		if err != nil {
			return items, errors.Wrapf(err, "%s block %s", format, b.ID)
		}
		items = append(items, &Item{ID: b.ID, Tree: t, Sent: sent, Comment: comment, Format: format})
	}
	return items, nil
}

// RoundTripReport compares the rendering of a tree with the rendering of
// the tree read back from it.
type RoundTripReport struct {
	First  string
	Second string
	Diffs  []diffpatch.Diff
}

// Stable reports whether both renderings are identical.
func (r *RoundTripReport) Stable() bool { return r.First == r.Second }

// Diff shows the differing lines, prefixed with "-" (first rendering) and
// "+" (second rendering). It is empty for a stable round trip.
func (r *RoundTripReport) Diff() string {
	var sb strings.Builder
	for _, d := range r.Diffs {
		var prefix string
		switch d.Type {
		case diffpatch.DiffDelete:
			prefix = "-"
		case diffpatch.DiffInsert:
			prefix = "+"
		default:
			continue
		}
		for line := range strings.Lines(d.Text) {
			sb.WriteString(prefix + line)
			if !strings.HasSuffix(line, "\n") {
				sb.WriteByte('\n')
			}
		}
	}
	return sb.String()
}

// RoundTrip writes item in format, reads the result back and writes it
// again. Only formats that can be both written and read are supported.
func RoundTrip(item *Item, format Format, opts WriteOptions) (*RoundTripReport, error) {
	switch format {
	case Bracket, DiscBracket, Export, Alpino:
	default:
		return nil, errors.NewUnsupported("round trip", format.String())
	}
	opts.Comment = item.Comment
	first, err := WriteTree(item.Tree, item.Sent, item.ID, format, opts)
	if err != nil {
		return nil, err
	}
	items, err := ReadString(first, format, Options{Morphology: opts.Morphology})
	if err != nil {
		return nil, errors.Wrap(err, "read back")
	}
	if len(items) != 1 {
		return nil, errors.NewSemantic("read back %d trees from one", len(items))
	}
	again := items[0]
	opts.Comment = again.Comment
	second, err := WriteTree(again.Tree, again.Sent, item.ID, format, opts)
	if err != nil {
		return nil, errors.Wrap(err, "write again")
	}

	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(first, second)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
	return &RoundTripReport{First: first, Second: second, Diffs: diffs}, nil
}
