package sequence

import "fmt"

// Interval is a half-open duration range [Begin, End) holding one value.
// Adjacent intervals tile without gaps or overlap, and an interval whose
// ends coincide is empty.
type Interval struct {
	Begin     int
	End       int
	BeginMode DurationMode
	EndMode   DurationMode
	Value     Value
	// Insane marks a tentative interval that failed validation. Such an
	// interval is never committed to a sequence.
	Insane bool
}

func (i Interval) String() string {
	return fmt.Sprintf("%s [%d, %d)", i.Value, i.Begin, i.End)
}

// Len is the number of durations covered by the interval.
func (i Interval) Len() int {
	return i.End - i.Begin
}
