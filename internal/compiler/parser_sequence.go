// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"fmt"
	"strings"

	"gopkg.microglot.org/inputseq.go/internal/exc"
	"gopkg.microglot.org/inputseq.go/internal/iter"
	"gopkg.microglot.org/inputseq.go/internal/sequence"
	"gopkg.microglot.org/inputseq.go/internal/syntax"
)

// ParserSequence implements a recursive descent parser for the input
// sequence syntax. Intervals are resolved and validated as they are parsed
// because the meaning of each span depends on where the previous one ended.
type ParserSequence struct {
	reporter exc.Reporter
}

func NewParserSequence(reporter exc.Reporter) *ParserSequence {
	return &ParserSequence{reporter: reporter}
}

// ParseTree is the result of parsing. Intervals are the committed spans in
// input order. Rejected holds spans that parsed cleanly but failed
// validation; each is marked Insane.
type ParseTree struct {
	Intervals []sequence.Interval
	Rejected  []sequence.Interval
}

func (self *ParserSequence) Parse(tokens iter.Iterator[*syntax.Token], params sequence.Params) *ParseTree {
	p := &parserSequenceTokens{
		reporter:   self.reporter,
		tokens:     iter.NewLookahead(tokens, 1),
		params:     params,
		cursorMode: sequence.ModeInception,
		tree:       &ParseTree{},
	}
	p.parseSequence()
	return p.tree
}

type parserSequenceTokens struct {
	reporter exc.Reporter
	tokens   iter.Lookahead[*syntax.Token]
	params   sequence.Params
	// cursor is the end of the most recently committed interval and
	// cursorMode is the mode that end was written in.
	cursor     int
	cursorMode sequence.DurationMode
	// last is the most recently consumed token. It locates end of input
	// when the token stream is exhausted.
	last *syntax.Token
	// failed is set when the span being parsed reported a diagnostic.
	failed bool
	tree   *ParseTree
}

// Sequence = [ Span { ";" Span } [ ";" ] ]
func (self *parserSequenceTokens) parseSequence() {
	for self.peek().Type != syntax.TokenTypeEOF {
		if !self.parseSpan() {
			self.synchronize()
		}
		if self.peek().Type == syntax.TokenTypeSemicolon {
			self.advance()
		}
	}
}

// Span = Value [ "," [ DurationScalar | Interval ] | Interval ]
func (self *parserSequenceTokens) parseSpan() bool {
	self.failed = false
	start := self.peek()
	value, ok := self.parseValue()
	if !ok {
		return false
	}
	span := self.parseDuration()
	if self.failed {
		return false
	}
	if t := self.peek(); t.Type != syntax.TokenTypeSemicolon && t.Type != syntax.TokenTypeEOF {
		self.reportUnexpected(t, "';' or end of input")
		return false
	}
	span.Value = value
	return self.validate(start, span)
}

// Value = number | keyword
func (self *parserSequenceTokens) parseValue() (sequence.Value, bool) {
	t := self.peek()
	switch t.Type {
	case syntax.TokenTypeNumber:
		self.advance()
		if self.params.KeywordsOnly {
			self.report(t, exc.CodeNumberNotAllowed, fmt.Sprintf("number %s is not allowed (expecting %s)", t.Value, self.expectedKeywords()))
		}
		return sequence.Number(t.Number), true
	case syntax.TokenTypeKeyword:
		self.advance()
		if !self.params.Allows(t.Value) {
			self.report(t, exc.CodeKeywordNotAllowed, fmt.Sprintf("keyword '%s' is not allowed (expecting %s)", t.Value, self.expectedValues()))
		}
		return sequence.Keyword(t.Value), true
	default:
		self.reportUnexpected(t, "number or keyword")
	}
	return nil, false
}

// parseDuration reads whatever follows a value. With nothing but a
// terminator the span covers exactly one duration.
func (self *parserSequenceTokens) parseDuration() sequence.Interval {
	implicit := sequence.Interval{
		Begin:     self.cursor,
		End:       self.cursor + 1,
		BeginMode: self.cursorMode,
		EndMode:   sequence.ModeYearsSinceLast,
	}
	switch self.peek().Type {
	case syntax.TokenTypeSquareOpen, syntax.TokenTypeParenOpen:
		return self.parseInterval()
	case syntax.TokenTypeComma:
		self.advance()
	default:
		return implicit
	}
	switch self.peek().Type {
	case syntax.TokenTypeSemicolon, syntax.TokenTypeEOF:
		return implicit
	case syntax.TokenTypeSquareOpen, syntax.TokenTypeParenOpen:
		return self.parseInterval()
	}
	end, mode := self.parseDurationScalar()
	return sequence.Interval{
		Begin:     self.cursor,
		End:       end,
		BeginMode: self.cursorMode,
		EndMode:   mode,
	}
}

// Interval = ( "[" | "(" ) DurationScalar "," DurationScalar ( "]" | ")" )
func (self *parserSequenceTokens) parseInterval() sequence.Interval {
	open := self.peek()
	self.advance()
	begin, beginMode := self.parseDurationScalar()
	if open.Type == syntax.TokenTypeParenOpen {
		begin = begin + 1
	}
	self.expectOne(syntax.TokenTypeComma)
	end, endMode := self.parseDurationScalar()
	switch t := self.peek(); t.Type {
	case syntax.TokenTypeSquareClose:
		self.advance()
		end = end + 1
	case syntax.TokenTypeParenClose:
		self.advance()
	default:
		self.reportUnexpected(t, "']' or ')'")
	}
	return sequence.Interval{
		Begin:     begin,
		End:       end,
		BeginMode: beginMode,
		EndMode:   endMode,
	}
}

// synchronize discards tokens up to the next span boundary.
func (self *parserSequenceTokens) synchronize() {
	for {
		switch self.peek().Type {
		case syntax.TokenTypeSemicolon, syntax.TokenTypeEOF:
			return
		}
		self.advance()
	}
}

// expectOne reports a diagnostic when the current token is not of the given
// type. A matching token is consumed; a mismatched one is left in place so
// the caller can continue from it.
func (self *parserSequenceTokens) expectOne(kind syntax.TokenType) bool {
	t := self.peek()
	if t.Type != kind {
		self.reportUnexpected(t, kind.String())
		return false
	}
	self.advance()
	return true
}

func (self *parserSequenceTokens) peek() *syntax.Token {
	t := self.tokens.Lookahead(0)
	if t.IsPresent() {
		return t.Value()
	}
	return self.eof()
}

func (self *parserSequenceTokens) advance() {
	if t := self.tokens.Lookahead(0); t.IsPresent() {
		self.last = t.Value()
	}
	_ = self.tokens.Next()
}

// eof stands in for a stream that ended without an EOF token.
func (self *parserSequenceTokens) eof() *syntax.Token {
	var end syntax.Location
	if self.last != nil {
		end = self.last.Span.End
	}
	return &syntax.Token{Span: syntax.Span{Start: end, End: end}, Type: syntax.TokenTypeEOF}
}

func (self *parserSequenceTokens) report(t *syntax.Token, code string, message string) {
	self.failed = true
	self.reporter.Report(exc.New(exc.Location{Location: t.Span.Start}, code, message))
}

// reportUnexpected reports t as out of place where expecting was required.
func (self *parserSequenceTokens) reportUnexpected(t *syntax.Token, expecting string) {
	code := exc.CodeUnexpectedToken
	if t.Type == syntax.TokenTypeEOF {
		code = exc.CodeUnexpectedEOF
	}
	self.report(t, code, fmt.Sprintf("unexpected %s (expecting %s)", describe(t), expecting))
}

func (self *parserSequenceTokens) expectedKeywords() string {
	return "a keyword from { " + strings.Join(self.params.Keywords, " ") + " }"
}

func (self *parserSequenceTokens) expectedValues() string {
	if len(self.params.Keywords) == 0 {
		return "a number"
	}
	if self.params.KeywordsOnly {
		return self.expectedKeywords()
	}
	return "a number or " + self.expectedKeywords()
}

func describe(t *syntax.Token) string {
	switch t.Type {
	case syntax.TokenTypeEOF:
		return "end of input"
	case syntax.TokenTypeNumber, syntax.TokenTypeKeyword:
		return fmt.Sprintf("%s '%s'", t.Type, t.Value)
	}
	return t.Type.String()
}
