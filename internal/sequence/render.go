package sequence

import (
	"strconv"
	"strings"
)

// Canonical renders the sequence in its normalized form. A single interval
// that starts at issue prints as its bare value. Otherwise every interval prints as
// "value [begin, end)" and the final end prints as "maturity", so sequences
// of the same shape render identically across policies with different
// maturities.
func (s *Sequence) Canonical() (string, error) {
	if err := s.usable(); err != nil {
		return "", err
	}
	return canonical(s.intervals), nil
}

func canonical(intervals []Interval) string {
	if len(intervals) == 1 && intervals[0].Begin == 0 {
		return intervals[0].Value.String()
	}
	last := len(intervals) - 1
	var b strings.Builder
	for x, in := range intervals {
		if x > 0 {
			b.WriteString("; ")
		}
		b.WriteString(in.Value.String())
		b.WriteString(" [")
		b.WriteString(strconv.Itoa(in.Begin))
		b.WriteString(", ")
		if x == last {
			b.WriteString("maturity")
		} else {
			b.WriteString(strconv.Itoa(in.End))
		}
		b.WriteString(")")
	}
	return b.String()
}

// Compact renders the sequence in the "value, end" style a user would type,
// keeping each end in the terms it was written in: "@age", "#years",
// "retirement", "maturity" or a plain duration. One-year spans print as the
// bare value, an interval that does not begin where its predecessor ended
// falls back to bracket notation, and the final interval prints as its bare
// value because it always extends to maturity.
func (s *Sequence) Compact() (string, error) {
	if err := s.usable(); err != nil {
		return "", err
	}
	return compact(s.params, s.intervals), nil
}

func compact(p Params, intervals []Interval) string {
	last := len(intervals) - 1
	cursor := 0
	var b strings.Builder
	for x, in := range intervals {
		if x > 0 {
			b.WriteString("; ")
		}
		b.WriteString(in.Value.String())
		contiguous := in.Begin == cursor
		switch {
		case x == last && contiguous:
		case x == last:
			b.WriteString(" [")
			b.WriteString(scalarText(p, in.Begin, in.BeginMode, cursor))
			b.WriteString(", maturity)")
		case contiguous && in.Len() == 1 && in.EndMode == ModeYearsSinceLast:
		case contiguous:
			b.WriteString(", ")
			b.WriteString(scalarText(p, in.End, in.EndMode, cursor))
		default:
			b.WriteString(" [")
			b.WriteString(scalarText(p, in.Begin, in.BeginMode, cursor))
			b.WriteString(", ")
			b.WriteString(scalarText(p, in.End, in.EndMode, cursor))
			b.WriteString(")")
		}
		cursor = in.End
	}
	return b.String()
}

// scalarText writes duration d in the notation of mode. Milestone keywords
// are used only when d still equals the milestone; an inclusive or exclusive
// bracket may have moved it by one, and then the plain number is written.
func scalarText(p Params, d int, mode DurationMode, cursor int) string {
	switch mode {
	case ModeAttainedAge:
		return "@" + strconv.Itoa(d+p.IssueAge)
	case ModeYearsSinceLast:
		return "#" + strconv.Itoa(d-cursor)
	case ModeRetirement:
		if d == p.RetirementDuration() {
			return "retirement"
		}
	case ModeMaturity:
		if d == p.YearsToMaturity {
			return "maturity"
		}
	}
	return strconv.Itoa(d)
}
