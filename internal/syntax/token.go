// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package syntax

import (
	"fmt"
)

// Location is a position within an input sequence. Position counts code
// points from zero; Column is the one-based form shown to users.
type Location struct {
	Position int
}

func (l Location) Column() int {
	return l.Position + 1
}

type Span struct {
	Start Location
	End   Location
}

type Token struct {
	Span  Span
	Type  TokenType
	Value string
	// Number holds the parsed value of a TokenTypeNumber token.
	Number float64
}

func (t *Token) String() string {
	if t.Type == TokenTypeEOF {
		return t.Type.String()
	}
	return fmt.Sprintf("%s %q", t.Type, t.Value)
}

type TokenType uint16

const (
	TokenTypeUnknown         TokenType = 0
	TokenTypeEOF             TokenType = 1
	TokenTypeSemicolon       TokenType = 2
	TokenTypeComma           TokenType = 3
	TokenTypeSquareOpen      TokenType = 4
	TokenTypeParenOpen       TokenType = 5
	TokenTypeSquareClose     TokenType = 6
	TokenTypeParenClose      TokenType = 7
	TokenTypeAt              TokenType = 8
	TokenTypeHash            TokenType = 9
	TokenTypeNumber          TokenType = 10
	TokenTypeKeyword         TokenType = 11
	tokenTypeSentinelMaximum TokenType = 12
)

var tokenTypeNames = [tokenTypeSentinelMaximum]string{
	TokenTypeUnknown:     "unknown",
	TokenTypeEOF:         "end of input",
	TokenTypeSemicolon:   "';'",
	TokenTypeComma:       "','",
	TokenTypeSquareOpen:  "'['",
	TokenTypeParenOpen:   "'('",
	TokenTypeSquareClose: "']'",
	TokenTypeParenClose:  "')'",
	TokenTypeAt:          "'@'",
	TokenTypeHash:        "'#'",
	TokenTypeNumber:      "number",
	TokenTypeKeyword:     "keyword",
}

func (k TokenType) String() string {
	if k >= tokenTypeSentinelMaximum {
		return fmt.Sprintf("unknown-%d", k)
	}
	return tokenTypeNames[k]
}
