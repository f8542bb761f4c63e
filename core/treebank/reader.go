// Package treebank reads and writes treebanks: corpora of syntactic trees in
// bracket, discbracket, export, Tiger XML and Alpino XML formats. Trees are
// returned with sentence positions as leaves, alongside the sentence.
package treebank

import (
	"archive/tar"
	"bufio"
	"cmp"
	"context"
	"io"
	"iter"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/treebank/core/errors"
	"github.com/FocuswithJustin/treebank/core/tree"
	"github.com/FocuswithJustin/treebank/core/xml"
	"github.com/FocuswithJustin/treebank/internal/archive"
	"github.com/FocuswithJustin/treebank/internal/logging"
)

// maxLineSize bounds a single line of a text corpus.
const maxLineSize = 16 * 1024 * 1024

// Block is the raw representation of one tree in a corpus file.
type Block struct {
	ID   string
	File string
	Text string

	parse func(Options) (*tree.ParentedTree, []string, string, error)
}

// Reader reads the trees of a corpus spread over one or more files.
type Reader struct {
	format Format
	opts   Options
	files  []string
	ctx    context.Context
}

// NewReader prepares to read the files matching pattern in the given
// format. Files are ordered by directory, then numerically by the part of
// their name before the first dot where that is a number. Compressed files
// (.gz, .xz) and tar archives are read transparently.
func NewReader(format Format, pattern string, opts Options) (*Reader, error) {
	if !format.Readable() {
		return nil, errors.NewUnsupported("input format", format.String())
	}
	if err := opts.init(); err != nil {
		return nil, err
	}
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, &errors.ConfigError{Option: "pattern", Value: pattern, Err: err}
	}
	if len(files) == 0 {
		return nil, errors.NewNotFound("corpus files", pattern)
	}
	slices.SortFunc(files, numbase)

	return &Reader{
		format: format,
		opts:   opts,
		files:  files,
		ctx:    logging.WithLoadID(context.Background(), uuid.NewString()),
	}, nil
}

// numbase orders file names by directory, then by the part of the base
// name before the first dot (numbers before names, numbers numerically),
// then by the rest.
func numbase(a, b string) int {
	da, fa := filepath.Split(a)
	db, fb := filepath.Split(b)
	if c := strings.Compare(da, db); c != 0 {
		return c
	}
	ha, ta, _ := strings.Cut(fa, ".")
	hb, tb, _ := strings.Cut(fb, ".")
	na, erra := strconv.Atoi(ha)
	nb, errb := strconv.Atoi(hb)
	switch {
	case erra == nil && errb == nil:
		if c := cmp.Compare(na, nb); c != 0 {
			return c
		}
	case erra == nil:
		return -1
	case errb == nil:
		return 1
	default:
		if c := strings.Compare(ha, hb); c != 0 {
			return c
		}
	}
	return strings.Compare(ta, tb)
}

// Files returns the corpus files in reading order.
func (r *Reader) Files() []string { return slices.Clone(r.files) }

// Format returns the format being read.
func (r *Reader) Format() Format { return r.format }

// LoadID identifies this reader in log records.
func (r *Reader) LoadID() string { return logging.LoadID(r.ctx) }

// Context returns a context carrying the reader's load id, for logging
// related records.
func (r *Reader) Context() context.Context { return r.ctx }

// Blocks yields the raw blocks of the corpus in order. Errors in the
// block structure (such as unbalanced #BOS and #EOS) end the sequence.
func (r *Reader) Blocks() iter.Seq2[Block, error] {
	return func(yield func(Block, error) bool) {
		seen := make(map[string]bool)
		n := 0
		next := func() int {
			n++
			return n
		}
		for _, path := range r.files {
			logging.CorpusOpen(r.ctx, path, "format", r.format.String())
			if !r.fileBlocks(path, seen, next, yield) {
				return
			}
		}
	}
}

// fileBlocks yields the blocks of one file or archive and reports whether
// iteration should continue.
func (r *Reader) fileBlocks(path string, seen map[string]bool, next func() int, yield func(Block, error) bool) bool {
	if archive.IsArchive(path) {
		cont := true
		err := archive.IterateArchive(path, func(h *tar.Header, content io.Reader) (bool, error) {
			if r.format == Alpino && !strings.HasSuffix(h.Name, ".xml") {
				return false, nil
			}
			cont = r.streamBlocks(content, h.Name, seen, next, yield)
			return !cont, nil
		})
		if err != nil {
			yield(Block{}, errors.NewIO("read", path, err))
			return false
		}
		return cont
	}
	rc, err := archive.Open(path)
	if err != nil {
		yield(Block{}, errors.NewIO("open", path, err))
		return false
	}
	defer rc.Close()
	return r.streamBlocks(rc, path, seen, next, yield)
}

func (r *Reader) streamBlocks(rd io.Reader, name string, seen map[string]bool, next func() int, yield func(Block, error) bool) bool {
	var blocks iter.Seq2[Block, error]
	switch r.format {
	case Bracket, DiscBracket:
		blocks = lineBlocks(rd, r.format, next)
	case Export:
		blocks = exportBlocks(rd, seen)
	case Tiger:
		blocks = tigerBlocks(rd)
	case Alpino:
		blocks = alpinoBlock(rd, name)
	}
	for b, err := range blocks {
		if err != nil {
			yield(Block{}, errors.Wrapf(err, "%s", name))
			return false
		}
		b.File = name
		if !yield(b, nil) {
			return false
		}
	}
	return true
}

// lineBlocks yields one block per non-blank line, numbered by next.
func lineBlocks(rd io.Reader, format Format, next func() int) iter.Seq2[Block, error] {
	return func(yield func(Block, error) bool) {
		sc := bufio.NewScanner(rd)
		sc.Buffer(make([]byte, 64*1024), maxLineSize)
		for sc.Scan() {
			line := sc.Text()
			if strings.TrimSpace(line) == "" {
				continue
			}
			parseLine := parseBracketLine
			if format == DiscBracket {
				parseLine = parseDiscBracketLine
			}
			b := Block{
				ID:   strconv.Itoa(next()),
				Text: line + "\n",
				parse: func(opts Options) (*tree.ParentedTree, []string, string, error) {
					t, sent, comment, err := parseLine(line)
					if err != nil {
						return nil, nil, "", err
					}
					if opts.Functions == FunctionsRemove {
						if err := HandleFunctions(FunctionsRemove, t, FunctionOptions{}); err != nil {
							return nil, nil, "", err
						}
					}
					return t, sent, comment, nil
				},
			}
			if !yield(b, nil) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			yield(Block{}, errors.NewIO("read", "", err))
		}
	}
}

// alpinoBlock yields a whole Alpino file as one block named after its
// directory and base name.
func alpinoBlock(rd io.Reader, name string) iter.Seq2[Block, error] {
	return func(yield func(Block, error) bool) {
		data, err := io.ReadAll(rd)
		if err != nil {
			yield(Block{}, errors.NewIO("read", name, err))
			return
		}
		yield(Block{
			ID:   alpinoID(name),
			Text: string(data),
			parse: func(opts Options) (*tree.ParentedTree, []string, string, error) {
				doc, err := xml.Parse(data)
				if err != nil {
					return nil, nil, "", &errors.FormatError{Format: "alpino", Message: "invalid XML", Err: err}
				}
				return AlpinoTree(doc, opts)
			},
		}, nil)
	}
}

// parse turns a block into an item and applies the transformations.
func (r *Reader) parse(b Block) (*Item, error) {
	t, sent, comment, err := b.parse(r.opts)
	if err == nil {
		t, sent, err = r.opts.Apply(t, sent, r.format != Bracket)
	}
	if err != nil {
		var fe *errors.FormatError
		if errors.As(err, &fe) && fe.Block == "" {
			fe.Block = b.ID
			return nil, errors.Wrapf(err, "%s", b.File)
		}
		return nil, errors.Wrapf(err, "%s: %s block %s", b.File, r.format, b.ID)
	}
	return &Item{ID: b.ID, Tree: t, Sent: sent, Comment: comment, Format: r.format}, nil
}

// Items yields the trees of the corpus, transformed according to the
// reader's options. A block that fails to parse yields an error carrying
// its id; iteration may continue past it.
func (r *Reader) Items() iter.Seq2[*Item, error] {
	return func(yield func(*Item, error) bool) {
		start := time.Now()
		items, failed := 0, 0
		defer func() {
			logging.CorpusDone(r.ctx, len(r.files), items, time.Since(start), "format", r.format.String(), "failed", failed)
		}()
		for b, err := range r.Blocks() {
			if err != nil {
				failed++
				logging.BlockError(r.ctx, "", err)
				yield(nil, err)
				return
			}
			item, err := r.parse(b)
			if err != nil {
				failed++
				logging.BlockError(r.ctx, b.ID, err)
				if !yield(nil, err) {
					return
				}
				continue
			}
			items++
			if !yield(item, nil) {
				return
			}
		}
	}
}

// ReadAll reads the whole corpus, stopping at the first error.
func (r *Reader) ReadAll() ([]*Item, error) {
	var items []*Item
	for item, err := range r.Items() {
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}
	return items, nil
}

// TaggedWord is a token with its part-of-speech tag.
type TaggedWord struct {
	Word string
	Tag  string
}

// TaggedSent pairs each token with the label of its preterminal.
func TaggedSent(t tree.View, sent []string) []TaggedWord {
	pos := sortedPos(t)
	out := make([]TaggedWord, 0, len(sent))
	for i, w := range sent {
		if i >= len(pos) {
			break
		}
		out = append(out, TaggedWord{Word: w, Tag: pos[i].Tag})
	}
	return out
}

// TreebankFanout returns the maximal fan-out over the branching nodes of
// trees and the index of the last tree attaining it; (1, 0) when no tree
// has a node with more than one child.
func TreebankFanout(trees []tree.View) (fanout, index int) {
	fanout, index = 1, 0
	found := false
	for n, t := range trees {
		for v := range tree.Subtrees(t, func(v tree.View) bool { return v.Len() > 1 }) {
			f := tree.Fanout(v)
			if !found || f > fanout || (f == fanout && n > index) {
				fanout, index, found = f, n, true
			}
		}
	}
	return fanout, index
}
