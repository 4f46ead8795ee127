package compiler

import (
	"fmt"

	"gopkg.microglot.org/inputseq.go/internal/exc"
	"gopkg.microglot.org/inputseq.go/internal/sequence"
	"gopkg.microglot.org/inputseq.go/internal/syntax"
)

// validate checks a fully parsed span against the intervals committed so
// far. Every failed check is reported, not only the first. A sound span is
// committed and moves the cursor to its end; an unsound one is kept aside
// as rejected.
func (self *parserSequenceTokens) validate(at *syntax.Token, in sequence.Interval) bool {
	sound := true
	reject := func(code string, format string, args ...any) {
		self.report(at, code, fmt.Sprintf("interval %s: ", in)+fmt.Sprintf(format, args...))
		sound = false
	}
	if in.Begin < 0 {
		reject(exc.CodeIntervalNegative, "begins before issue")
	}
	if in.End <= in.Begin {
		reject(exc.CodeIntervalEmpty, "ends at or before its beginning")
	}
	if in.Begin < self.cursor {
		reject(exc.CodeIntervalOverlap, "begins before the prior interval ends at duration %d", self.cursor)
	}
	if self.params.YearsToMaturity < in.End {
		reject(exc.CodeIntervalPastMaturity, "ends after maturity at duration %d", self.params.YearsToMaturity)
	}
	if in.BeginMode == sequence.ModeInvalid || in.EndMode == sequence.ModeInvalid {
		reject(exc.CodeIntervalInvalidMode, "has an unresolved duration")
	}
	if !sound {
		in.Insane = true
		self.tree.Rejected = append(self.tree.Rejected, in)
		return false
	}
	self.tree.Intervals = append(self.tree.Intervals, in)
	self.cursor = in.End
	self.cursorMode = in.EndMode
	return true
}
