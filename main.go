package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gopkg.microglot.org/inputseq.go/internal/census"
	"gopkg.microglot.org/inputseq.go/internal/compiler"
	"gopkg.microglot.org/inputseq.go/internal/config"
	"gopkg.microglot.org/inputseq.go/internal/exc"
	"gopkg.microglot.org/inputseq.go/internal/export"
	"gopkg.microglot.org/inputseq.go/internal/sequence"
	"gopkg.microglot.org/inputseq.go/internal/service"
)

const (
	exitOK          = 0
	exitDiagnostics = 1
	exitFault       = 2
)

const usage = `usage: inputseq <command> [flags] [args]

commands:
  compile TEXT          compile an input sequence
  canonicalize VALUES   compress dense values into canonical text
  census FILE           compile every input of a census document
  serve                 run the compile service
`

var (
	errorColor   = color.New(color.FgRed)
	warningColor = color.New(color.FgYellow)
	okColor      = color.New(color.FgGreen)
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.LookupEnv)
	cancel()
	os.Exit(code)
}

type env struct {
	stdout io.Writer
	stderr io.Writer
	config *config.Config
}

func run(ctx context.Context, args []string, stdout io.Writer, stderr io.Writer, lookupEnv func(string) (string, bool)) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitDiagnostics
	}
	cfg, err := config.Load(lookupEnv, ".env")
	if err != nil {
		errorColor.Fprintln(stderr, err.Error())
		return exitDiagnostics
	}
	e := &env{stdout: stdout, stderr: stderr, config: cfg}
	switch args[0] {
	case "compile":
		return e.compile(ctx, args[1:])
	case "canonicalize":
		return e.canonicalize(args[1:])
	case "census":
		return e.census(ctx, args[1:])
	case "serve":
		return e.serve(ctx, args[1:])
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return exitOK
	}
	errorColor.Fprintf(stderr, "unknown command %q\n", args[0])
	fmt.Fprint(stderr, usage)
	return exitDiagnostics
}

func (self *env) flags(name string) (*pflag.FlagSet, *bool) {
	flags := pflag.NewFlagSet("inputseq "+name, pflag.ContinueOnError)
	flags.SetOutput(self.stderr)
	verbose := flags.Bool("verbose", false, "Log at debug level.")
	return flags, verbose
}

func (self *env) logger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(self.config.LogLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

type compileOpts struct {
	Params     sequence.Params
	DumpTokens bool
	DumpTree   bool
	Format     string
	FirstOnly  bool
}

func (self *env) compile(ctx context.Context, args []string) int {
	op := &compileOpts{}
	flags, verbose := self.flags("compile")
	flags.IntVar(&op.Params.YearsToMaturity, "years-to-maturity", 0, "Number of durations from issue to maturity.")
	flags.IntVar(&op.Params.IssueAge, "issue-age", 0, "Age of the insured at issue.")
	flags.IntVar(&op.Params.RetirementAge, "retirement-age", 65, "Age of the insured at retirement.")
	flags.IntVar(&op.Params.InforceDuration, "inforce-duration", 0, "Reserved.")
	flags.IntVar(&op.Params.EffectiveYear, "effective-year", 0, "Reserved.")
	flags.StringSliceVar(&op.Params.Keywords, "keywords", nil, "Keyword values the input may use.")
	flags.BoolVar(&op.Params.KeywordsOnly, "keywords-only", false, "Reject numeric values.")
	flags.StringVar(&op.Params.DefaultKeyword, "default-keyword", "", "Keyword used wherever no keyword applies.")
	flags.BoolVar(&op.DumpTokens, "dump-tokens", false, "Output the token stream as it is processed")
	flags.BoolVar(&op.DumpTree, "dump-tree", false, "Output the intervals rejected by validation")
	flags.StringVar(&op.Format, "format", "text", "Output format: text, json, proto or protojson.")
	flags.BoolVar(&op.FirstOnly, "first-only", false, "Report only the first diagnostic.")
	if err := flags.Parse(args); err != nil {
		return exitDiagnostics
	}
	if flags.NArg() != 1 {
		errorColor.Fprintln(self.stderr, "compile takes exactly one input sequence argument")
		return exitDiagnostics
	}
	logger, err := self.logger(*verbose)
	if err != nil {
		errorColor.Fprintln(self.stderr, err.Error())
		return exitFault
	}
	defer func() { _ = logger.Sync() }()

	c, err := compiler.New(compiler.OptionWithLogger(logger))
	if err != nil {
		errorColor.Fprintln(self.stderr, err.Error())
		return exitFault
	}
	out, err := c.Compile(ctx, &compiler.CompileRequest{
		Text:       flags.Arg(0),
		Params:     op.Params,
		DumpTokens: op.DumpTokens,
		DumpTree:   op.DumpTree,
	})
	var me compiler.MultiException
	switch {
	case err == nil, errors.As(err, &me):
	case errors.Is(err, sequence.ErrInvalidParams):
		errorColor.Fprintln(self.stderr, err.Error())
		return exitDiagnostics
	default:
		errorColor.Fprintln(self.stderr, err.Error())
		return exitFault
	}

	for _, token := range out.Tokens {
		fmt.Fprintf(self.stdout, "%-24s'%s'\n", token.Type, token.Value)
	}
	for _, in := range out.Rejected {
		fmt.Fprintf(self.stdout, "rejected %s\n", in)
	}
	if len(me) > 0 {
		errorColor.Fprint(self.stderr, exc.Format(me, op.FirstOnly))
		return exitDiagnostics
	}
	if err := self.writeSequence(ctx, out.Sequence, op.Format); err != nil {
		errorColor.Fprintln(self.stderr, err.Error())
		return exitFault
	}
	return exitOK
}

type sequenceJSON struct {
	Canonical string    `json:"canonical"`
	Compact   string    `json:"compact"`
	Numbers   []float64 `json:"numbers"`
	Keywords  []string  `json:"keywords"`
}

func (self *env) writeSequence(ctx context.Context, s *sequence.Sequence, format string) error {
	switch format {
	case "text", "json":
	case "proto", "protojson":
		enc, err := export.NewEncoder(ctx)
		if err != nil {
			return err
		}
		f := export.FormatBinary
		if format == "protojson" {
			f = export.FormatJSON
		}
		b, err := enc.Marshal(s, f)
		if err != nil {
			return err
		}
		_, err = self.stdout.Write(b)
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	canonical, err := s.Canonical()
	if err != nil {
		return err
	}
	compact, err := s.Compact()
	if err != nil {
		return err
	}
	numbers, err := s.Numbers()
	if err != nil {
		return err
	}
	keywords, err := s.Keywords()
	if err != nil {
		return err
	}
	if format == "json" {
		b, err := json.Marshal(&sequenceJSON{Canonical: canonical, Compact: compact, Numbers: numbers, Keywords: keywords})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(self.stdout, string(b))
		return err
	}
	fmt.Fprintf(self.stdout, "canonical: %s\n", canonical)
	fmt.Fprintf(self.stdout, "compact:   %s\n", compact)
	fmt.Fprintf(self.stdout, "numbers:   %s\n", joinNumbers(numbers))
	if strings.Join(keywords, "") != "" {
		fmt.Fprintf(self.stdout, "keywords:  %s\n", strings.Join(keywords, " "))
	}
	return nil
}

func joinNumbers(numbers []float64) string {
	parts := make([]string, 0, len(numbers))
	for _, n := range numbers {
		parts = append(parts, sequence.Number(n).String())
	}
	return strings.Join(parts, " ")
}

func (self *env) canonicalize(args []string) int {
	flags, _ := self.flags("canonicalize")
	keywords := flags.Bool("keywords", false, "Treat every value as a keyword.")
	if err := flags.Parse(args); err != nil {
		return exitDiagnostics
	}
	values := flags.Args()
	var s *sequence.Sequence
	var err error
	if *keywords {
		s, err = sequence.FromKeywords(values)
	} else {
		numbers := make([]float64, 0, len(values))
		for _, v := range values {
			n, perr := strconv.ParseFloat(v, 64)
			if perr != nil {
				errorColor.Fprintf(self.stderr, "invalid number %q\n", v)
				return exitDiagnostics
			}
			numbers = append(numbers, n)
		}
		s, err = sequence.FromNumbers(numbers)
	}
	if errors.Is(err, sequence.ErrInvalidParams) {
		errorColor.Fprintln(self.stderr, err.Error())
		return exitDiagnostics
	}
	if err != nil {
		errorColor.Fprintln(self.stderr, err.Error())
		return exitFault
	}
	canonical, err := s.Canonical()
	if err != nil {
		errorColor.Fprintln(self.stderr, err.Error())
		return exitFault
	}
	fmt.Fprintln(self.stdout, canonical)
	return exitOK
}

func (self *env) census(ctx context.Context, args []string) int {
	flags, verbose := self.flags("census")
	concurrency := flags.Int("concurrency", self.config.Concurrency, "Cells compiled at once.")
	if err := flags.Parse(args); err != nil {
		return exitDiagnostics
	}
	if flags.NArg() != 1 {
		errorColor.Fprintln(self.stderr, "census takes exactly one file argument")
		return exitDiagnostics
	}
	logger, err := self.logger(*verbose)
	if err != nil {
		errorColor.Fprintln(self.stderr, err.Error())
		return exitFault
	}
	defer func() { _ = logger.Sync() }()

	doc, err := census.Load(flags.Arg(0))
	if err != nil {
		errorColor.Fprintln(self.stderr, err.Error())
		return exitDiagnostics
	}
	c, err := compiler.New(compiler.OptionWithLogger(logger))
	if err != nil {
		errorColor.Fprintln(self.stderr, err.Error())
		return exitFault
	}
	runner, err := census.NewRunner(c, census.OptionWithConcurrency(*concurrency), census.OptionWithLogger(logger))
	if err != nil {
		errorColor.Fprintln(self.stderr, err.Error())
		return exitDiagnostics
	}
	report, err := runner.Run(ctx, doc)
	if err != nil {
		errorColor.Fprintln(self.stderr, err.Error())
		return exitFault
	}
	for _, f := range report.Fields {
		fmt.Fprintf(self.stdout, "%-24s total %s ", f.Name, f.Total.String())
		if f.Varies {
			warningColor.Fprintln(self.stdout, "varies across cells")
		} else {
			okColor.Fprintln(self.stdout, "uniform")
		}
	}
	if len(report.Diagnostics) > 0 {
		errorColor.Fprint(self.stderr, exc.Format(report.Diagnostics, false))
		return exitDiagnostics
	}
	return exitOK
}

func (self *env) serve(ctx context.Context, args []string) int {
	flags, verbose := self.flags("serve")
	listen := flags.String("listen", self.config.Listen, "Address to listen on.")
	if err := flags.Parse(args); err != nil {
		return exitDiagnostics
	}
	logger, err := self.logger(*verbose)
	if err != nil {
		errorColor.Fprintln(self.stderr, err.Error())
		return exitFault
	}
	defer func() { _ = logger.Sync() }()

	c, err := compiler.New(compiler.OptionWithLogger(logger))
	if err != nil {
		errorColor.Fprintln(self.stderr, err.Error())
		return exitFault
	}
	if err := service.NewHandler(c, logger).ListenAndServe(ctx, *listen); err != nil {
		logger.Error("service stopped", zap.Error(err))
		return exitFault
	}
	return exitOK
}
