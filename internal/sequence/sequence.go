// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package sequence

import (
	"errors"
	"fmt"
	"slices"

	"gopkg.microglot.org/inputseq.go/internal/exc"
	"gopkg.microglot.org/inputseq.go/internal/syntax"
)

// ErrInvalidInput is returned by the accessors of a Sequence that was
// compiled with diagnostics. Its realized arrays hold defaults only.
var ErrInvalidInput = errors.New("input sequence has diagnostics")

// Sequence is an ordered, non-empty list of intervals that covers every
// duration from issue to maturity, together with the dense arrays realized
// from it. A Sequence is read-only once built.
type Sequence struct {
	params      Params
	intervals   []Interval
	diagnostics []exc.Exception
	numbers     []float64
	keywords    []string
}

// New builds a Sequence from validated intervals and the diagnostics
// reported while producing them. An empty interval list yields a single
// default interval. The last interval always ends at maturity, whatever end
// was written for it.
//
// The returned error is either a parameter error or an *exc.Fault; user
// input problems are carried as diagnostics on the Sequence instead.
func New(params Params, intervals []Interval, diagnostics []exc.Exception) (*Sequence, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	params = params.clone()
	committed := slices.Clone(intervals)
	if len(committed) == 0 {
		committed = append(committed, defaultInterval(params))
	}
	last := &committed[len(committed)-1]
	last.End = params.YearsToMaturity
	last.EndMode = ModeMaturity

	numbers, keywords, err := realize(params, committed, len(diagnostics) > 0)
	if err != nil {
		return nil, err
	}
	return &Sequence{
		params:      params,
		intervals:   committed,
		diagnostics: slices.Clone(diagnostics),
		numbers:     numbers,
		keywords:    keywords,
	}, nil
}

func defaultInterval(p Params) Interval {
	var v Value = Number(0)
	if p.KeywordsOnly && p.DefaultKeyword != "" {
		v = Keyword(p.DefaultKeyword)
	}
	return Interval{
		Begin:     0,
		End:       0,
		BeginMode: ModeInception,
		EndMode:   ModeMaturity,
		Value:     v,
	}
}

// FromNumbers compresses a dense numeric array into the minimal sequence
// that realizes it. Years to maturity is the array length.
func FromNumbers(numbers []float64) (*Sequence, error) {
	return FromPairs(numbers, make([]string, len(numbers)))
}

// FromKeywords compresses a dense keyword array. Empty entries are held as
// numeric zero.
func FromKeywords(keywords []string) (*Sequence, error) {
	return FromPairs(make([]float64, len(keywords)), keywords)
}

// FromPairs compresses parallel numeric and keyword arrays. At each duration
// the keyword is the value when it is non-empty, otherwise the number is.
// Keywords must be written the way the lexer reads them.
func FromPairs(numbers []float64, keywords []string) (*Sequence, error) {
	if len(numbers) != len(keywords) {
		return nil, fmt.Errorf("%w: %d numbers and %d keywords", ErrInvalidParams, len(numbers), len(keywords))
	}
	values := make([]Value, len(numbers))
	params := Params{YearsToMaturity: len(numbers)}
	for x := range numbers {
		k := keywords[x]
		if k != "" && !syntax.IsKeyword(k) {
			return nil, fmt.Errorf("%w: %q at duration %d is not a keyword", ErrInvalidParams, k, x)
		}
		values[x] = pairValue(numbers[x], k)
		if k != "" && !params.Allows(k) {
			params.Keywords = append(params.Keywords, k)
		}
	}
	return New(params, encode(values), nil)
}

// encode is a run-length encoding: a new interval starts wherever the value
// differs from the one before it.
func encode(values []Value) []Interval {
	var out []Interval
	for x, v := range values {
		if n := len(out); n > 0 && out[n-1].Value == v {
			out[n-1].End = x + 1
			continue
		}
		mode := ModeAbsolute
		if x == 0 {
			mode = ModeInception
		}
		out = append(out, Interval{
			Begin:     x,
			End:       x + 1,
			BeginMode: mode,
			EndMode:   ModeAbsolute,
			Value:     v,
		})
	}
	return out
}

func (s *Sequence) Params() Params {
	return s.params.clone()
}

func (s *Sequence) YearsToMaturity() int {
	return s.params.YearsToMaturity
}

func (s *Sequence) Intervals() []Interval {
	return slices.Clone(s.intervals)
}

// Valid reports whether the sequence compiled without diagnostics.
func (s *Sequence) Valid() bool {
	return len(s.diagnostics) == 0
}

func (s *Sequence) Exceptions() []exc.Exception {
	return slices.Clone(s.diagnostics)
}

// Diagnostics returns every diagnostic as newline-terminated text, or the
// empty string when the sequence is valid.
func (s *Sequence) Diagnostics() string {
	return exc.Format(s.diagnostics, false)
}

// FirstDiagnostic returns only the first diagnostic, for compact display.
func (s *Sequence) FirstDiagnostic() string {
	return exc.Format(s.diagnostics, true)
}

// Realized returns the realized arrays without checking diagnostics. For an
// invalid sequence they hold only the defaults: zero and the default
// keyword.
func (s *Sequence) Realized() ([]float64, []string) {
	return slices.Clone(s.numbers), slices.Clone(s.keywords)
}

// Numbers returns one numeric value per duration.
func (s *Sequence) Numbers() ([]float64, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}
	return slices.Clone(s.numbers), nil
}

// Keywords returns one keyword per duration.
func (s *Sequence) Keywords() ([]string, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}
	return slices.Clone(s.keywords), nil
}

func (s *Sequence) usable() error {
	if len(s.diagnostics) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, s.diagnostics[0].Error())
}
