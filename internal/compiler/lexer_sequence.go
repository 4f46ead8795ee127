// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"gopkg.microglot.org/inputseq.go/internal/exc"
	"gopkg.microglot.org/inputseq.go/internal/iter"
	"gopkg.microglot.org/inputseq.go/internal/optional"
	"gopkg.microglot.org/inputseq.go/internal/syntax"
)

const (
	// An exponent sign needs three code points of lookahead: "e", "-", digit.
	lexerSequenceLookahead = 3
)

// LexerSequence implements a tokenizer for the input sequence syntax.
type LexerSequence struct {
	reporter exc.Reporter
}

func NewLexerSequence(reporter exc.Reporter) *LexerSequence {
	return &LexerSequence{reporter: reporter}
}

// Lex returns the token stream for input. The stream always ends with a
// single EOF token. Characters that start no token are reported and
// skipped so that the rest of the input is still tokenized.
func (self *LexerSequence) Lex(input string) iter.Iterator[*syntax.Token] {
	return &lexerSequenceTokens{
		body:     iter.NewLookahead(iter.NewRunes(input), lexerSequenceLookahead),
		reporter: self.reporter,
		position: -1,
	}
}

type lexerSequenceTokens struct {
	body     iter.Lookahead[rune]
	reporter exc.Reporter
	// position of the code point most recently consumed
	position int
	done     bool
}

func (self *lexerSequenceTokens) Next() optional.Optional[*syntax.Token] {
	if self.done {
		return optional.None[*syntax.Token]()
	}
	for point := self.next(); point.IsPresent(); point = self.next() {
		r := point.Value()
		switch r {
		case ';':
			return self.single(syntax.TokenTypeSemicolon, r)
		case ',':
			return self.single(syntax.TokenTypeComma, r)
		case '[':
			return self.single(syntax.TokenTypeSquareOpen, r)
		case '(':
			return self.single(syntax.TokenTypeParenOpen, r)
		case ']':
			return self.single(syntax.TokenTypeSquareClose, r)
		case ')':
			return self.single(syntax.TokenTypeParenClose, r)
		case '@':
			return self.single(syntax.TokenTypeAt, r)
		case '#':
			return self.single(syntax.TokenTypeHash, r)
		case '-', '.', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			if t := self.readNumber(r); t.IsPresent() {
				return t
			}
			continue
		default:
			if syntax.IsKeywordStart(r) {
				return self.readKeyword(r)
			}
			if unicode.IsSpace(r) {
				continue
			}
			self.report(self.position, exc.CodeUnknownToken, fmt.Sprintf("unknown token %q", r))
		}
	}
	self.done = true
	end := syntax.Location{Position: self.position + 1}
	return optional.Some(&syntax.Token{
		Span: syntax.Span{Start: end, End: end},
		Type: syntax.TokenTypeEOF,
	})
}

// readNumber accepts an optional leading minus, digits with at most one
// decimal point, and an optional exponent.
func (self *lexerSequenceTokens) readNumber(first rune) optional.Optional[*syntax.Token] {
	start := self.position
	var builder strings.Builder
	_, _ = builder.WriteRune(first)
	seenDot := first == '.'
	seenExponent := false
	for {
		n := self.body.Lookahead(1)
		if !n.IsPresent() {
			break
		}
		r := n.Value()
		if syntax.IsDigit(r) {
			_ = self.next()
			_, _ = builder.WriteRune(r)
			continue
		}
		if r == '.' && !seenDot && !seenExponent {
			seenDot = true
			_ = self.next()
			_, _ = builder.WriteRune(r)
			continue
		}
		if (r == 'e' || r == 'E') && !seenExponent && self.exponentFollows() {
			seenExponent = true
			_ = self.next()
			_, _ = builder.WriteRune(r)
			if sign := self.body.Lookahead(1).Value(); sign == '+' || sign == '-' {
				_ = self.next()
				_, _ = builder.WriteRune(sign)
			}
			continue
		}
		break
	}
	text := builder.String()
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		self.report(start, exc.CodeInvalidNumber, fmt.Sprintf("invalid number %q", text))
		return optional.None[*syntax.Token]()
	}
	t := self.newToken(start, syntax.TokenTypeNumber, text)
	t.Number = v
	return optional.Some(t)
}

// exponentFollows reports whether the upcoming "e" begins an exponent
// rather than a keyword.
func (self *lexerSequenceTokens) exponentFollows() bool {
	n := self.body.Lookahead(2)
	if !n.IsPresent() {
		return false
	}
	if syntax.IsDigit(n.Value()) {
		return true
	}
	if n.Value() != '+' && n.Value() != '-' {
		return false
	}
	return syntax.IsDigit(self.body.Lookahead(3).ValueOr(0))
}

func (self *lexerSequenceTokens) readKeyword(first rune) optional.Optional[*syntax.Token] {
	start := self.position
	var builder strings.Builder
	_, _ = builder.WriteRune(first)
	for {
		n := self.body.Lookahead(1)
		if !n.IsPresent() || !syntax.IsKeywordPart(n.Value()) {
			break
		}
		_ = self.next()
		_, _ = builder.WriteRune(n.Value())
	}
	return optional.Some(self.newToken(start, syntax.TokenTypeKeyword, builder.String()))
}

func (self *lexerSequenceTokens) single(kind syntax.TokenType, r rune) optional.Optional[*syntax.Token] {
	return optional.Some(self.newToken(self.position, kind, string(r)))
}

func (self *lexerSequenceTokens) next() optional.Optional[rune] {
	n := self.body.Next()
	if n.IsPresent() {
		self.position = self.position + 1
	}
	return n
}

func (self *lexerSequenceTokens) report(position int, code string, message string) {
	self.reporter.Report(exc.New(exc.Location{Location: syntax.Location{Position: position}}, code, message))
}

// newToken spans from start through the code point most recently consumed.
func (self *lexerSequenceTokens) newToken(start int, kind syntax.TokenType, value string) *syntax.Token {
	return &syntax.Token{
		Span: syntax.Span{
			Start: syntax.Location{Position: start},
			End:   syntax.Location{Position: self.position + 1},
		},
		Type:  kind,
		Value: value,
	}
}
