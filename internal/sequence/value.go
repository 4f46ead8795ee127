package sequence

import (
	"strconv"
)

// Value is the payload of an interval: exactly one of Number or Keyword.
type Value interface {
	isValue()
	String() string
}

type Number float64

func (Number) isValue() {}

// String formats n in the shortest form that parses back to the same value.
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

type Keyword string

func (Keyword) isValue() {}

func (k Keyword) String() string {
	return string(k)
}

// pairValue chooses the keyword when it is non-empty and the number
// otherwise. It is the comparison rule for parallel dense arrays.
func pairValue(n float64, k string) Value {
	if k != "" {
		return Keyword(k)
	}
	return Number(n)
}
