package treebank

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/treebank/core/errors"
)

// ScanStatus is a scanner's verdict on one line.
type ScanStatus int

const (
	// NeedMore means the line was consumed and the scanner wants the next
	// line as well.
	NeedMore ScanStatus = iota
	// Reject means the line is not for this scanner.
	Reject
	// Produced means the line was consumed and completed one or more trees.
	Produced
)

func (s ScanStatus) String() string {
	switch s {
	case NeedMore:
		return "need-more"
	case Reject:
		return "reject"
	case Produced:
		return "produced"
	}
	return "unknown"
}

// ScanResult is the outcome of feeding one line to a Scanner.
type ScanResult struct {
	Status ScanStatus
	Items  []*Item
}

// Scanner recognizes trees of one format in a stream of lines. State is
// kept between calls, so a tree may span several lines.
type Scanner interface {
	// Feed passes one line, including its line terminator. A tree that
	// completes but cannot be read yields Produced with an error.
	Feed(line string) (ScanResult, error)
	// Flush completes any pending tree at the end of input and resets the
	// scanner.
	Flush() ([]*Item, error)
}

// ExportScanner recognizes #BOS ... #EOS blocks of the export format.
type ExportScanner struct {
	opts    Options
	inBlock int // 0: none, 1: #BOS sentence, 2: #BOT table
	id      string
	comment string
	lines   []string
}

// NewExportScanner returns an export scanner whose trees are transformed
// according to opts.
func NewExportScanner(opts Options) *ExportScanner {
	return &ExportScanner{opts: opts}
}

// Feed implements Scanner.
func (s *ExportScanner) Feed(line string) (ScanResult, error) {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(line, "#BOS "):
		s.inBlock, s.lines = 1, nil
		s.id, s.comment = splitBOS(line)
		return ScanResult{Status: NeedMore}, nil
	case strings.HasPrefix(line, "#BOT "):
		s.inBlock, s.lines = 2, nil
		return ScanResult{Status: NeedMore}, nil
	case strings.HasPrefix(line, "#EOS "):
		if s.inBlock != 1 {
			return ScanResult{Status: Reject}, nil
		}
		s.inBlock = 0
		if eos := strings.TrimSpace(line[len("#EOS "):]); eos != s.id {
			s.lines = nil
			return ScanResult{Status: Produced}, &errors.FormatError{
				Format:   "export",
				Block:    s.id,
				Fragment: trimmed,
				Message:  fmt.Sprintf("#EOS %s does not match #BOS %s", eos, s.id),
			}
		}
		lines := s.lines
		s.lines = nil
		t, sent, err := ExportTree(lines, s.opts)
		if err == nil {
			t, sent, err = s.opts.Apply(t, sent, true)
		}
		if err != nil {
			return ScanResult{Status: Produced}, errors.Wrapf(err, "export block %s", s.id)
		}
		item := &Item{ID: s.id, Tree: t, Sent: sent, Comment: s.comment, Format: Export}
		return ScanResult{Status: Produced, Items: []*Item{item}}, nil
	case trimmed == "":
		return ScanResult{Status: Reject}, nil
	case s.inBlock == 1:
		s.lines = append(s.lines, trimmed)
		return ScanResult{Status: NeedMore}, nil
	case s.inBlock == 2, strings.HasPrefix(trimmed, "%%"), strings.HasPrefix(trimmed, "#FORMAT "):
		return ScanResult{Status: NeedMore}, nil
	}
	return ScanResult{Status: Reject}, nil
}

// Flush implements Scanner. An open #BOS block is an error.
func (s *ExportScanner) Flush() ([]*Item, error) {
	open, id := s.inBlock == 1, s.id
	s.inBlock, s.id, s.comment, s.lines = 0, "", "", nil
	if open {
		return nil, &errors.FormatError{Format: "export", Block: id, Message: "missing #EOS at end of input"}
	}
	return nil, nil
}

// BracketScanner recognizes trees in bracket or discbracket notation. It
// tracks nesting across lines, splits several trees on one line where the
// nesting returns to zero, and holds a completed tree until the text after
// it (its sentence or comment) is known.
type BracketScanner struct {
	opts   Options
	lb, rb string

	parens int    // open brackets
	depth  int    // maximal nesting of the current tree
	prev   string // unfinished text carried to the next line
	result string // completed tree awaiting its trailing text
}

// NewBracketScanner returns a scanner for trees delimited by the two
// characters of brackets, such as "()".
func NewBracketScanner(brackets string, opts Options) (*BracketScanner, error) {
	runes := []rune(brackets)
	if len(runes) != 2 || runes[0] == runes[1] {
		return nil, errors.NewConfig("brackets", brackets)
	}
	return &BracketScanner{opts: opts, lb: string(runes[0]), rb: string(runes[1])}, nil
}

// Feed implements Scanner.
func (s *BracketScanner) Feed(line string) (ScanResult, error) {
	if s.parens > 0 || s.result != "" {
		line = s.prev + line
	} else {
		s.prev = ""
	}
	find := func(sub string, from int) int {
		if from > len(line) {
			return -1
		}
		if i := strings.Index(line[from:], sub); i >= 0 {
			return from + i
		}
		return -1
	}

	var (
		items    []*Item
		first    error
		produced bool
	)
	start := 0
	a, b := find(s.lb, len(s.prev)), find(s.rb, len(s.prev))
	s.prev = line
	for a != -1 || b != -1 {
		if a != -1 && (a < b || b == -1) {
			// a tree starts where an opener is followed by another opener
			// before the next closer
			if next := find(s.lb, a+1); s.parens == 0 && (b == -1 || (next != -1 && next < b)) {
				rest := line[start:a]
				s.prev = line[a:]
				if s.result != "" {
					item, err := s.emit(s.result, rest)
					s.result, produced = "", true
					if err != nil {
						first = cmp.Or(first, err)
					} else {
						items = append(items, item)
					}
				}
				start = a
			}
			s.parens++
			s.depth = max(s.depth, s.parens)
			a = find(s.lb, a+1)
		} else {
			s.parens--
			switch {
			case s.parens == 0 && s.depth > 1:
				s.result = line[start : b+1]
				s.prev = line[b+1:]
				start = b + 1
				s.depth = 0
			case s.parens < 0 && s.result != "":
				// a closer after a complete tree: the tree is unbalanced
				first = cmp.Or(first, error(&errors.FormatError{
					Format:   "bracket",
					Fragment: strings.TrimSpace(s.result + line[start:b+1]),
					Message:  "unbalanced parentheses: closing bracket without opener",
				}))
				s.result, s.parens, s.depth, produced = "", 0, 0, true
				s.prev = line[b+1:]
				start = b + 1
			case s.parens < 0:
				s.parens = 0
			}
			b = find(s.rb, b+1)
		}
	}
	switch {
	case produced:
		return ScanResult{Status: Produced, Items: items}, first
	case s.result != "" || s.parens > 0:
		return ScanResult{Status: NeedMore}, nil
	}
	return ScanResult{Status: Reject}, nil
}

// emit reads a completed tree. Trees with word terminals are tagged
// Bracket, trees with index terminals DiscBracket.
func (s *BracketScanner) emit(treestr, rest string) (*Item, error) {
	format := DiscBracket
	if wordLeafPattern(s.lb + s.rb).MatchString(treestr) {
		format = Bracket
	}
	t, sent, comment, err := BracketTree(treestr, rest, s.lb+s.rb)
	if err == nil {
		t, sent, err = s.opts.Apply(t, sent, false)
	}
	if err != nil {
		return nil, &errors.FormatError{Format: format.String(), Fragment: treestr, Message: "cannot read tree", Err: err}
	}
	return &Item{Tree: t, Sent: sent, Comment: comment, Format: format}, nil
}

// Flush implements Scanner. Input that ends inside a tree is an error
// carrying the unfinished fragment.
func (s *BracketScanner) Flush() ([]*Item, error) {
	defer func() {
		s.parens, s.depth, s.prev, s.result = 0, 0, "", ""
	}()
	var items []*Item
	if s.result != "" {
		rest := s.prev
		if s.parens > 0 {
			rest = ""
		}
		item, err := s.emit(s.result, rest)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if s.parens > 0 {
		return items, &errors.FormatError{
			Format:   "bracket",
			Fragment: strings.TrimSpace(s.prev),
			Message:  fmt.Sprintf("unbalanced parentheses: %d unclosed at end of input", s.parens),
		}
	}
	return items, nil
}

// IncrementalReader detects the format of a stream of lines as it goes,
// offering each line to the export scanner first and the bracket scanner
// second.
//
// After a scanner asks for more, the next line goes straight to it; after
// a scanner produces trees, the next line starts over at the first
// scanner. A line no scanner accepts is skipped.
type IncrementalReader struct {
	scanners []Scanner
	active   int
	n        int
}

// NewIncrementalReader returns a reader whose trees are transformed
// according to opts.
func NewIncrementalReader(opts Options) (*IncrementalReader, error) {
	if err := opts.init(); err != nil {
		return nil, err
	}
	brackets, err := NewBracketScanner("()", opts)
	if err != nil {
		return nil, err
	}
	return NewIncrementalReaderWith(NewExportScanner(opts), brackets), nil
}

// NewIncrementalReaderWith returns a reader over the given scanners, tried
// in order.
func NewIncrementalReaderWith(scanners ...Scanner) *IncrementalReader {
	return &IncrementalReader{scanners: scanners}
}

// Feed passes one line, including its terminator, and returns the trees it
// completed along with the first error among them. Items without an id of
// their own are numbered from 1.
func (r *IncrementalReader) Feed(line string) ([]*Item, error) {
	for i := r.active; i < len(r.scanners); i++ {
		res, err := r.scanners[i].Feed(line)
		switch {
		case res.Status == Produced:
			r.active = 0
			return r.number(res.Items), err
		case err != nil:
			r.active = 0
			return nil, err
		case res.Status == NeedMore:
			r.active = i
			return nil, nil
		}
	}
	r.active = 0
	return nil, nil
}

// Flush ends the input, returning pending trees and the first error of any
// scanner.
func (r *IncrementalReader) Flush() ([]*Item, error) {
	var items []*Item
	var first error
	for _, s := range r.scanners {
		its, err := s.Flush()
		items = append(items, its...)
		if err != nil && first == nil {
			first = err
		}
	}
	r.active = 0
	return r.number(items), first
}

func (r *IncrementalReader) number(items []*Item) []*Item {
	for _, item := range items {
		r.n++
		if item.ID == "" {
			item.ID = strconv.Itoa(r.n)
		}
	}
	return items
}

// ReadIncremental reads trees from rd, detecting export and bracket
// notation line by line. Errors for single trees are yielded and reading
// continues; an unbalanced tree at the end of input ends the sequence with
// an error.
func ReadIncremental(rd io.Reader, opts Options) iter.Seq2[*Item, error] {
	return func(yield func(*Item, error) bool) {
		r, err := NewIncrementalReader(opts)
		if err != nil {
			yield(nil, err)
			return
		}
		br := bufio.NewReader(rd)
		for {
			line, readErr := br.ReadString('\n')
			if line != "" {
				items, err := r.Feed(line)
				for _, item := range items {
					if !yield(item, nil) {
						return
					}
				}
				if err != nil && !yield(nil, err) {
					return
				}
			}
			if readErr == io.EOF {
				break
			}
			if readErr != nil {
				yield(nil, errors.NewIO("read", "", readErr))
				return
			}
		}
		items, err := r.Flush()
		for _, item := range items {
			if !yield(item, nil) {
				return
			}
		}
		if err != nil {
			yield(nil, err)
		}
	}
}
