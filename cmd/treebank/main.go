// Command treebank is the CLI for reading, converting and checking
// syntactic treebanks in bracket, discbracket, export, Tiger and Alpino
// formats.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"github.com/FocuswithJustin/treebank/core/errors"
	"github.com/FocuswithJustin/treebank/core/transform"
	"github.com/FocuswithJustin/treebank/core/tree"
	"github.com/FocuswithJustin/treebank/core/treebank"
	"github.com/FocuswithJustin/treebank/internal/archive"
	"github.com/FocuswithJustin/treebank/internal/logging"
	"github.com/FocuswithJustin/treebank/internal/query"
	"github.com/FocuswithJustin/treebank/internal/validation"
)

const version = "0.1.0"

// Standard streams, replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stdin  io.Reader = os.Stdin
)

// CLI defines the command-line interface for treebank.
var CLI struct {
	// Global flags
	Config    string `name:"config" short:"c" help:"YAML file with reader options" type:"path"`
	LogLevel  string `name:"log-level" help:"Log level" default:"info" enum:"debug,info,warn,error"`
	LogFormat string `name:"log-format" help:"Log format" default:"text" enum:"text,json"`

	Convert ConvertCmd `cmd:"" help:"Convert a treebank to another format"`
	Stream  StreamCmd  `cmd:"" help:"Read trees line by line, detecting export and bracket notation"`
	Check   CheckCmd   `cmd:"" help:"Write, re-read and compare every tree of a treebank"`
	Fanout  FanoutCmd  `cmd:"" help:"Report the maximal fan-out of a treebank"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// TransformFlags override the options file.
type TransformFlags struct {
	Functions   string `help:"Function tags: leave, add, replace, remove, between"`
	Morphology  string `help:"Morphological tags: no, add, replace, between"`
	Lemmas      string `help:"Lemmas: no, add, replace, between"`
	Punct       string `help:"Punctuation: no, move, moveall, remove, root"`
	HeadRules   string `name:"headrules" help:"Head rules file" type:"existingfile"`
	EnsureRoot  string `name:"ensure-root" help:"Add a root node with this label where missing"`
	RemoveEmpty bool   `name:"remove-empty" help:"Remove empty nodes such as -NONE-"`
}

func (f *TransformFlags) options() (treebank.Options, error) {
	opts := treebank.DefaultOptions()
	if CLI.Config != "" {
		var err error
		if opts, err = treebank.LoadOptions(CLI.Config); err != nil {
			return opts, err
		}
	}
	var err error
	if f.Functions != "" {
		if opts.Functions, err = treebank.ParseFunctionPolicy(f.Functions); err != nil {
			return opts, err
		}
	}
	if f.Morphology != "" {
		if opts.Morphology, err = treebank.ParseMorphologyPolicy(f.Morphology); err != nil {
			return opts, err
		}
	}
	if f.Lemmas != "" {
		if opts.Lemmas, err = treebank.ParseLemmaPolicy(f.Lemmas); err != nil {
			return opts, err
		}
	}
	if f.Punct != "" {
		if opts.Punct, err = treebank.ParsePunctPolicy(f.Punct); err != nil {
			return opts, err
		}
	}
	if f.HeadRules != "" {
		opts.HeadRulesFile, opts.HeadRules = f.HeadRules, nil
	}
	if opts.HeadRules == nil && opts.HeadRulesFile != "" {
		if opts.HeadRules, err = transform.LoadHeadRules(opts.HeadRulesFile); err != nil {
			return opts, err
		}
	}
	if f.EnsureRoot != "" {
		opts.EnsureRoot = f.EnsureRoot
	}
	if f.RemoveEmpty {
		opts.RemoveEmpty = true
	}
	return opts, nil
}

func writeOptions(opts treebank.Options) treebank.WriteOptions {
	return treebank.WriteOptions{HeadRules: opts.HeadRules, Morphology: opts.Morphology}
}

// ConvertCmd converts a treebank.
type ConvertCmd struct {
	Input string `arg:"" help:"Input file or glob pattern"`
	From  string `short:"f" help:"Input format" default:"export" enum:"bracket,discbracket,export,tiger,alpino"`
	To    string `short:"t" help:"Output format" default:"export" enum:"bracket,discbracket,export,alpino,conll,mst,tokens,wordpos"`
	Out   string `short:"o" help:"Output file (default: standard output); alpino needs a directory or tar archive" type:"path"`
	Where string `help:"Only write trees matching this expression, e.g. 'length <= 40 && fanout > 1'"`
	Limit int    `help:"Stop after this many trees (0: all)"`

	TransformFlags `embed:""`
}

func (c *ConvertCmd) Run() error {
	opts, err := c.options()
	if err != nil {
		return err
	}
	from, err := treebank.ParseFormat(c.From)
	if err != nil {
		return err
	}
	to, err := treebank.ParseFormat(c.To)
	if err != nil {
		return err
	}
	filter, err := compileWhere(c.Where)
	if err != nil {
		return err
	}
	r, err := treebank.NewReader(from, c.Input, opts)
	if err != nil {
		return err
	}
	out, err := openSink(to, c.Out, writeOptions(opts))
	if err != nil {
		return err
	}

	written, failed := 0, 0
	for item, err := range r.Items() {
		if err != nil {
			failed++
			continue
		}
		if filter != nil {
			ok, err := filter.Match(item)
			if err != nil {
				out.Close()
				return err
			}
			if !ok {
				continue
			}
		}
		if err := out.Write(item); err != nil {
			out.Close()
			return err
		}
		written++
		if c.Limit > 0 && written >= c.Limit {
			break
		}
	}
	if err := out.Close(); err != nil {
		return err
	}
	logging.InfoContext(r.Context(), "convert_done", "written", written, "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%d trees could not be read", failed)
	}
	return nil
}

// StreamCmd reads trees incrementally.
type StreamCmd struct {
	Input string `arg:"" optional:"" help:"Input file, possibly compressed (default: standard input)" type:"path"`
	To    string `short:"t" help:"Output format" default:"discbracket" enum:"bracket,discbracket,export,conll,mst,tokens,wordpos"`
	Out   string `short:"o" help:"Output file (default: standard output)" type:"path"`
	Where string `help:"Only write trees matching this expression"`

	TransformFlags `embed:""`
}

func (c *StreamCmd) Run() error {
	opts, err := c.options()
	if err != nil {
		return err
	}
	to, err := treebank.ParseFormat(c.To)
	if err != nil {
		return err
	}
	filter, err := compileWhere(c.Where)
	if err != nil {
		return err
	}

	rd := stdin
	if c.Input != "" && c.Input != "-" {
		f, err := archive.Open(c.Input)
		if err != nil {
			return err
		}
		defer f.Close()
		rd = f
	}
	out, err := openSink(to, c.Out, writeOptions(opts))
	if err != nil {
		return err
	}

	ctx := logging.WithLoadID(context.Background(), uuid.NewString())
	written, failed := 0, 0
	for item, err := range treebank.ReadIncremental(rd, opts) {
		if err != nil {
			failed++
			logging.WarnContext(ctx, "stream_error", "error", err.Error())
			continue
		}
		if filter != nil {
			ok, err := filter.Match(item)
			if err != nil {
				out.Close()
				return err
			}
			if !ok {
				continue
			}
		}
		if err := out.Write(item); err != nil {
			out.Close()
			return err
		}
		written++
	}
	if err := out.Close(); err != nil {
		return err
	}
	logging.DebugContext(ctx, "stream_done", "written", written, "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%d trees could not be read", failed)
	}
	return nil
}

// CheckCmd round-trips every tree through a format.
type CheckCmd struct {
	Input string `arg:"" help:"Input file or glob pattern"`
	From  string `short:"f" help:"Input format" default:"export" enum:"bracket,discbracket,export,tiger,alpino"`
	As    string `help:"Format to round-trip through (default: the input format, discbracket for tiger)"`
	Quiet bool   `short:"q" help:"Only print the summary"`

	TransformFlags `embed:""`
}

func (c *CheckCmd) Run() error {
	opts, err := c.options()
	if err != nil {
		return err
	}
	from, err := treebank.ParseFormat(c.From)
	if err != nil {
		return err
	}
	as := from
	if from == treebank.Tiger {
		as = treebank.DiscBracket
	}
	if c.As != "" {
		if as, err = treebank.ParseFormat(c.As); err != nil {
			return err
		}
	}
	r, err := treebank.NewReader(from, c.Input, opts)
	if err != nil {
		return err
	}

	total, unstable := 0, 0
	for item, err := range r.Items() {
		if err != nil {
			return err
		}
		total++
		report, err := treebank.RoundTrip(item, as, writeOptions(opts))
		if err != nil {
			return errors.Wrapf(err, "tree %s", item.ID)
		}
		if report.Stable() {
			continue
		}
		unstable++
		if !c.Quiet {
			fmt.Fprintf(stdout, "tree %s changes in %s:\n%s", item.ID, as, report.Diff())
		}
	}
	fmt.Fprintf(stdout, "%d trees, %d unstable\n", total, unstable)
	if unstable > 0 {
		return fmt.Errorf("%d of %d trees do not survive a round trip through %s", unstable, total, as)
	}
	return nil
}

// FanoutCmd reports the maximal fan-out of a treebank.
type FanoutCmd struct {
	Input string `arg:"" help:"Input file or glob pattern"`
	From  string `short:"f" help:"Input format" default:"export" enum:"bracket,discbracket,export,tiger,alpino"`

	TransformFlags `embed:""`
}

func (c *FanoutCmd) Run() error {
	opts, err := c.options()
	if err != nil {
		return err
	}
	from, err := treebank.ParseFormat(c.From)
	if err != nil {
		return err
	}
	r, err := treebank.NewReader(from, c.Input, opts)
	if err != nil {
		return err
	}
	items, err := r.ReadAll()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return errors.NewNotFound("trees", c.Input)
	}
	trees := make([]tree.View, len(items))
	for i, item := range items {
		trees[i] = item.Tree
	}
	fanout, index := treebank.TreebankFanout(trees)
	fmt.Fprintf(stdout, "fan-out %d (tree %s of %d)\n", fanout, items[index].ID, len(items))
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Fprintf(stdout, "treebank version %s\n", version)
	return nil
}

// Helper functions

func compileWhere(src string) (*query.Filter, error) {
	if strings.TrimSpace(src) == "" {
		return nil, nil
	}
	return query.Compile(src)
}

// sink receives converted items.
type sink interface {
	Write(item *treebank.Item) error
	Close() error
}

// openSink prepares output in format to path. An empty path or "-" means
// standard output. Alpino trees go one file per tree into a directory or a
// tar archive, named after their ids.
func openSink(format treebank.Format, path string, opts treebank.WriteOptions) (sink, error) {
	if format == treebank.Alpino {
		if path == "" || path == "-" {
			return nil, errors.NewConfig("out", path, "a directory", "a .tar, .tar.gz or .tar.xz archive")
		}
		if archive.IsArchive(path) {
			tw, err := archive.CreateTar(path)
			if err != nil {
				return nil, err
			}
			return &alpinoSink{opts: opts, add: tw.Add, close: tw.Close}, nil
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return nil, errors.NewIO("create directory", path, err)
		}
		return &alpinoSink{opts: opts, add: dirWriter(path), close: func() error { return nil }}, nil
	}

	if path == "" || path == "-" {
		return &textSink{w: treebank.NewWriter(stdout, format, opts)}, nil
	}
	f, err := archive.Create(path)
	if err != nil {
		return nil, err
	}
	return &textSink{w: treebank.NewWriter(f, format, opts), c: f}, nil
}

type textSink struct {
	w *treebank.Writer
	c io.Closer
}

func (s *textSink) Write(item *treebank.Item) error { return s.w.Write(item) }

func (s *textSink) Close() error {
	if s.c == nil {
		return nil
	}
	return s.c.Close()
}

type alpinoSink struct {
	opts  treebank.WriteOptions
	add   func(name string, data []byte) error
	close func() error
	n     int
}

func (s *alpinoSink) Write(item *treebank.Item) error {
	s.n++
	id := item.ID
	if id == "" {
		id = fmt.Sprint(s.n)
	}
	name, err := validation.MemberPath(id, ".xml")
	if err != nil {
		return errors.Wrapf(err, "tree %s", id)
	}
	opts := s.opts
	opts.Comment = item.Comment
	doc, err := treebank.WriteTree(item.Tree, item.Sent, id, treebank.Alpino, opts)
	if err != nil {
		return errors.Wrapf(err, "write %s", id)
	}
	return s.add(name, []byte(doc))
}

func (s *alpinoSink) Close() error { return s.close() }

func dirWriter(dir string) func(string, []byte) error {
	return func(name string, data []byte) error {
		path, err := validation.SanitizePath(dir, name)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return errors.NewIO("create directory", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return errors.NewIO("write", path, err)
		}
		return nil
	}
}

func initLogging() error {
	level, err := logging.ParseLevel(CLI.LogLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(CLI.LogFormat)
	if err != nil {
		return err
	}
	logging.InitLogger(level, format)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("treebank"),
		kong.Description("Read, convert and check syntactic treebanks"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	ctx.FatalIfErrorf(initLogging())
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
