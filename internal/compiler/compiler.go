package compiler

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"gopkg.microglot.org/inputseq.go/internal/exc"
	"gopkg.microglot.org/inputseq.go/internal/iter"
	"gopkg.microglot.org/inputseq.go/internal/optional"
	"gopkg.microglot.org/inputseq.go/internal/sequence"
	"gopkg.microglot.org/inputseq.go/internal/syntax"
)

type Option func(c *Compiler) error

func OptionWithLogger(logger *zap.Logger) Option {
	return func(c *Compiler) error {
		c.Logger = logger
		return nil
	}
}

// OptionWithReporterFactory replaces the per-compilation reporter. Each call
// to Compile gets a fresh reporter from the factory.
func OptionWithReporterFactory(factory func() exc.Reporter) Option {
	return func(c *Compiler) error {
		c.NewReporter = factory
		return nil
	}
}

func New(opts ...Option) (*Compiler, error) {
	c := &Compiler{}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.NewReporter == nil {
		c.NewReporter = exc.NewReporter
	}
	return c, nil
}

// Compiler turns input sequence text into a Sequence. A Compiler holds no
// per-compilation state and is safe for concurrent use.
type Compiler struct {
	Logger      *zap.Logger
	NewReporter func() exc.Reporter
}

type CompileRequest struct {
	Text   string
	Params sequence.Params
	// DumpTokens records every token the parser consumed.
	DumpTokens bool
	// DumpTree records the spans that were rejected by validation.
	DumpTree bool
}

type CompileResponse struct {
	Sequence *sequence.Sequence
	Tokens   []*syntax.Token
	Rejected []sequence.Interval
}

// Compile lexes, parses, validates and realizes req.Text.
//
// Diagnostics in the input produce both a response, whose Sequence holds
// default values, and a MultiException error. Any other error is either a
// parameter error wrapping sequence.ErrInvalidParams or an *exc.Fault and
// comes without a response.
func (self *Compiler) Compile(ctx context.Context, req *CompileRequest) (*CompileResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := req.Params.Validate(); err != nil {
		return nil, err
	}
	r := self.NewReporter()
	lexer := NewLexerSequence(r)
	parser := NewParserSequence(r)

	tokens := lexer.Lex(req.Text)
	var recorder *tokenRecorder
	if req.DumpTokens {
		recorder = &tokenRecorder{Iterator: tokens}
		tokens = recorder
	}
	tree := parser.Parse(tokens, req.Params)

	seq, err := sequence.New(req.Params, tree.Intervals, r.Reported())
	if err != nil {
		self.Logger.Error("sequence realization failed", zap.String("text", req.Text), zap.Error(err))
		return nil, err
	}
	resp := &CompileResponse{Sequence: seq}
	if recorder != nil {
		resp.Tokens = recorder.tokens
	}
	if req.DumpTree {
		resp.Rejected = tree.Rejected
	}
	caught := seq.Exceptions()
	self.Logger.Debug(
		"compiled input sequence",
		zap.String("text", req.Text),
		zap.Int("intervals", len(tree.Intervals)),
		zap.Int("rejected", len(tree.Rejected)),
		zap.Int("diagnostics", len(caught)),
	)
	if len(caught) > 0 {
		return resp, MultiException(caught)
	}
	return resp, nil
}

// tokenRecorder keeps a copy of each token as it is pulled from the stream.
type tokenRecorder struct {
	iter.Iterator[*syntax.Token]
	tokens []*syntax.Token
}

func (self *tokenRecorder) Next() optional.Optional[*syntax.Token] {
	t := self.Iterator.Next()
	if t.IsPresent() {
		self.tokens = append(self.tokens, t.Value())
	}
	return t
}

type MultiException []exc.Exception

func (self MultiException) Error() string {
	if len(self) == 0 {
		return ""
	}
	var b strings.Builder
	for _, err := range self[:len(self)-1] {
		b.WriteString(err.Error())
		b.WriteString("; ")
	}
	b.WriteString(self[len(self)-1].Error())
	return b.String()
}
