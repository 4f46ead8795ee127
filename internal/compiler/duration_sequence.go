package compiler

import (
	"fmt"
	"math"

	"gopkg.microglot.org/inputseq.go/internal/exc"
	"gopkg.microglot.org/inputseq.go/internal/sequence"
	"gopkg.microglot.org/inputseq.go/internal/syntax"
)

const (
	keywordRetirement = "retirement"
	keywordMaturity   = "maturity"
	keywordInforce    = "inforce"
)

// DurationScalar = integer | "@" integer | "#" integer | "retirement" | "maturity"
//
// A scalar that cannot be read is reported and resolves to zero with
// ModeInvalid so the enclosing span fails validation.
func (self *parserSequenceTokens) parseDurationScalar() (int, sequence.DurationMode) {
	t := self.peek()
	switch t.Type {
	case syntax.TokenTypeNumber:
		if n, ok := self.expectInteger(); ok {
			return resolveDuration(self.params, self.cursor, n, sequence.ModeAbsolute)
		}
	case syntax.TokenTypeAt:
		self.advance()
		if n, ok := self.expectInteger(); ok {
			return resolveDuration(self.params, self.cursor, n, sequence.ModeAttainedAge)
		}
	case syntax.TokenTypeHash:
		self.advance()
		if n, ok := self.expectInteger(); ok {
			return resolveDuration(self.params, self.cursor, n, sequence.ModeYearsSinceLast)
		}
	case syntax.TokenTypeKeyword:
		self.advance()
		switch t.Value {
		case keywordRetirement:
			return resolveDuration(self.params, self.cursor, 0, sequence.ModeRetirement)
		case keywordMaturity:
			return resolveDuration(self.params, self.cursor, 0, sequence.ModeMaturity)
		case keywordInforce:
			self.report(t, exc.CodeUnsupported, "duration keyword 'inforce' is not supported")
		default:
			self.report(t, exc.CodeUnexpectedToken, fmt.Sprintf("unexpected keyword '%s' (expecting 'retirement' or 'maturity')", t.Value))
		}
	default:
		self.reportUnexpected(t, "a duration")
	}
	return 0, sequence.ModeInvalid
}

// expectInteger consumes a number token that must hold a whole value.
func (self *parserSequenceTokens) expectInteger() (int, bool) {
	t := self.peek()
	if t.Type != syntax.TokenTypeNumber {
		self.reportUnexpected(t, "an integer")
		return 0, false
	}
	self.advance()
	if t.Number != math.Trunc(t.Number) || math.Abs(t.Number) > math.MaxInt32 {
		self.report(t, exc.CodeNotInteger, fmt.Sprintf("duration %s is not an integer", t.Value))
		return 0, false
	}
	return int(t.Number), true
}

// resolveDuration converts a scalar written in the given mode to a duration
// counted from issue. Years since last counts from cursor, the end of the
// most recently committed interval. Milestone modes ignore n.
func resolveDuration(p sequence.Params, cursor int, n int, mode sequence.DurationMode) (int, sequence.DurationMode) {
	switch mode {
	case sequence.ModeAbsolute, sequence.ModeInception:
		return n, mode
	case sequence.ModeAttainedAge:
		return n - p.IssueAge, mode
	case sequence.ModeYearsSinceLast:
		return cursor + n, mode
	case sequence.ModeRetirement:
		return p.RetirementDuration(), mode
	case sequence.ModeMaturity:
		return p.YearsToMaturity, mode
	}
	return 0, sequence.ModeInvalid
}
