package sequence

import (
	"errors"
	"fmt"
	"slices"
)

var ErrInvalidParams = errors.New("invalid sequence parameters")

// MaxYearsToMaturity bounds the length of realized arrays.
const MaxYearsToMaturity = 200

// Params describes the policy a sequence is compiled against.
type Params struct {
	// YearsToMaturity is the length of every realized array and the upper
	// bound for every duration.
	YearsToMaturity int
	IssueAge        int
	RetirementAge   int
	// InforceDuration and EffectiveYear are carried for grammar extensions
	// that do not exist yet. Nothing reads them.
	InforceDuration int
	EffectiveYear   int
	// Keywords is the allow-list of keyword values. An empty list admits
	// numbers only.
	Keywords     []string
	KeywordsOnly bool
	// DefaultKeyword fills realized keyword arrays wherever no keyword
	// interval applies.
	DefaultKeyword string
}

func (p Params) Validate() error {
	if p.YearsToMaturity < 1 {
		return fmt.Errorf("%w: years to maturity %d is not positive", ErrInvalidParams, p.YearsToMaturity)
	}
	if p.YearsToMaturity > MaxYearsToMaturity {
		return fmt.Errorf("%w: years to maturity %d exceeds %d", ErrInvalidParams, p.YearsToMaturity, MaxYearsToMaturity)
	}
	if p.IssueAge < 0 {
		return fmt.Errorf("%w: issue age %d is negative", ErrInvalidParams, p.IssueAge)
	}
	if p.RetirementAge < 0 {
		return fmt.Errorf("%w: retirement age %d is negative", ErrInvalidParams, p.RetirementAge)
	}
	if p.KeywordsOnly && len(p.Keywords) == 0 {
		return fmt.Errorf("%w: keywords only requires a keyword allow-list", ErrInvalidParams)
	}
	if p.DefaultKeyword != "" && len(p.Keywords) > 0 && !p.Allows(p.DefaultKeyword) {
		return fmt.Errorf("%w: default keyword %q is not in the allow-list", ErrInvalidParams, p.DefaultKeyword)
	}
	return nil
}

// RetirementDuration is the duration at which the insured reaches
// retirement age.
func (p Params) RetirementDuration() int {
	return p.RetirementAge - p.IssueAge
}

// Allows reports whether k is in the keyword allow-list.
func (p Params) Allows(k string) bool {
	return slices.Contains(p.Keywords, k)
}

func (p Params) clone() Params {
	p.Keywords = slices.Clone(p.Keywords)
	return p
}
