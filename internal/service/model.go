package service

import (
	"gopkg.microglot.org/inputseq.go/internal/sequence"
)

type Params struct {
	YearsToMaturity int      `json:"years_to_maturity"`
	IssueAge        int      `json:"issue_age"`
	RetirementAge   int      `json:"retirement_age"`
	InforceDuration int      `json:"inforce_duration,omitempty"`
	EffectiveYear   int      `json:"effective_year,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
	KeywordsOnly    bool     `json:"keywords_only,omitempty"`
	DefaultKeyword  string   `json:"default_keyword,omitempty"`
}

func (p Params) sequence() sequence.Params {
	return sequence.Params{
		YearsToMaturity: p.YearsToMaturity,
		IssueAge:        p.IssueAge,
		RetirementAge:   p.RetirementAge,
		InforceDuration: p.InforceDuration,
		EffectiveYear:   p.EffectiveYear,
		Keywords:        p.Keywords,
		KeywordsOnly:    p.KeywordsOnly,
		DefaultKeyword:  p.DefaultKeyword,
	}
}

type CompileRequest struct {
	Text   string `json:"text"`
	Params Params `json:"params"`
}

type Diagnostic struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Column  int    `json:"column"`
}

// CompileResponse is returned for every request that could be compiled,
// valid or not. Canonical and Compact are empty when Valid is false.
type CompileResponse struct {
	RequestID   string       `json:"request_id"`
	Valid       bool         `json:"valid"`
	Canonical   string       `json:"canonical,omitempty"`
	Compact     string       `json:"compact,omitempty"`
	Numbers     []float64    `json:"numbers"`
	Keywords    []string     `json:"keywords"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// CanonicalizeRequest carries dense arrays. Either may be omitted; when both
// are present they must have the same length.
type CanonicalizeRequest struct {
	Numbers  []float64 `json:"numbers,omitempty"`
	Keywords []string  `json:"keywords,omitempty"`
}

type CanonicalizeResponse struct {
	RequestID string `json:"request_id"`
	Canonical string `json:"canonical"`
	Compact   string `json:"compact"`
}

type ErrorResponse struct {
	RequestID string `json:"request_id"`
	Status    int    `json:"status"`
	Message   string `json:"message"`
}
