package sequence

import "fmt"

// DurationMode records how a duration was written, so that a sequence can
// be rendered back in the user's own terms.
type DurationMode uint8

const (
	// ModeInvalid marks a duration that could not be resolved. It must never
	// reach a realized sequence.
	ModeInvalid DurationMode = iota
	// ModeInception is the parser start state: the begin mode of a first
	// interval that was not given an explicit begin.
	ModeInception
	ModeAbsolute
	ModeAttainedAge
	ModeYearsSinceLast
	ModeRetirement
	ModeMaturity
)

func (m DurationMode) String() string {
	switch m {
	case ModeInvalid:
		return "invalid"
	case ModeInception:
		return "inception"
	case ModeAbsolute:
		return "absolute"
	case ModeAttainedAge:
		return "attained-age"
	case ModeYearsSinceLast:
		return "years-since-last"
	case ModeRetirement:
		return "retirement"
	case ModeMaturity:
		return "maturity"
	default:
		return fmt.Sprintf("unknown-%d", m)
	}
}
