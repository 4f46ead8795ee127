package sequence

import (
	"gopkg.microglot.org/inputseq.go/internal/exc"
)

// realize expands intervals into dense arrays of length YearsToMaturity.
// With diagnostics present it returns the pre-filled defaults untouched so
// that no partial data escapes. Every check below was already made by
// validation; a failure here is a compiler defect.
func realize(p Params, intervals []Interval, hasDiagnostics bool) ([]float64, []string, error) {
	numbers := make([]float64, p.YearsToMaturity)
	keywords := make([]string, p.YearsToMaturity)
	for x := range keywords {
		keywords[x] = p.DefaultKeyword
	}
	if hasDiagnostics {
		return numbers, keywords, nil
	}

	priorBegin := 0
	for x, in := range intervals {
		if in.Insane {
			return nil, nil, exc.NewFault("interval %d %s was committed after failing validation", x, in)
		}
		if in.Begin < priorBegin {
			return nil, nil, exc.NewFault("interval %d %s begins before the prior interval began at duration %d", x, in, priorBegin)
		}
		priorBegin = in.Begin
		if in.BeginMode == ModeInvalid || in.EndMode == ModeInvalid {
			return nil, nil, exc.NewFault("interval %d %s has an invalid duration mode", x, in)
		}
		if in.Begin < 0 || in.End < in.Begin || p.YearsToMaturity < in.End {
			return nil, nil, exc.NewFault("interval %d %s is outside [0, %d)", x, in, p.YearsToMaturity)
		}
		switch v := in.Value.(type) {
		case Number:
			for d := in.Begin; d < in.End; d = d + 1 {
				numbers[d] = float64(v)
			}
		case Keyword:
			for d := in.Begin; d < in.End; d = d + 1 {
				keywords[d] = string(v)
			}
		default:
			return nil, nil, exc.NewFault("interval %d [%d, %d) has no value", x, in.Begin, in.End)
		}
	}
	return numbers, keywords, nil
}
