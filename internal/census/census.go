// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package census

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"gopkg.microglot.org/inputseq.go/internal/sequence"
)

var ErrInvalidCensus = errors.New("invalid census")

// Field describes one input sequence column shared by every cell.
type Field struct {
	Name           string   `yaml:"name"`
	Keywords       []string `yaml:"keywords"`
	KeywordsOnly   bool     `yaml:"keywords_only"`
	DefaultKeyword string   `yaml:"default_keyword"`
}

// Cell is one insured life with the text of each of its input sequences.
// Inputs that are absent compile as empty text.
type Cell struct {
	Name            string            `yaml:"name"`
	IssueAge        int               `yaml:"issue_age"`
	RetirementAge   int               `yaml:"retirement_age"`
	MaturityAge     int               `yaml:"maturity_age"`
	InforceDuration int               `yaml:"inforce_duration"`
	EffectiveYear   int               `yaml:"effective_year"`
	Inputs          map[string]string `yaml:"inputs"`
}

type Census struct {
	Fields []Field `yaml:"fields"`
	Cells  []Cell  `yaml:"cells"`
}

// Params combines a cell and a field into the policy a sequence is
// compiled against.
func (c Cell) Params(f Field) sequence.Params {
	return sequence.Params{
		YearsToMaturity: c.MaturityAge - c.IssueAge,
		IssueAge:        c.IssueAge,
		RetirementAge:   c.RetirementAge,
		InforceDuration: c.InforceDuration,
		EffectiveYear:   c.EffectiveYear,
		Keywords:        f.Keywords,
		KeywordsOnly:    f.KeywordsOnly,
		DefaultKeyword:  f.DefaultKeyword,
	}
}

func Load(path string) (*Census, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read census file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a census document. Unknown and duplicate keys are errors.
func Parse(data []byte) (*Census, error) {
	var c Census
	if err := yaml.UnmarshalWithOptions(data, &c, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCensus, err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Census) validate() error {
	if len(c.Fields) == 0 {
		return fmt.Errorf("%w: no fields", ErrInvalidCensus)
	}
	fields := make(map[string]bool, len(c.Fields))
	for _, f := range c.Fields {
		if f.Name == "" {
			return fmt.Errorf("%w: field without a name", ErrInvalidCensus)
		}
		if fields[f.Name] {
			return fmt.Errorf("%w: duplicate field %q", ErrInvalidCensus, f.Name)
		}
		fields[f.Name] = true
	}
	cells := make(map[string]bool, len(c.Cells))
	for x, cell := range c.Cells {
		if cell.Name == "" {
			return fmt.Errorf("%w: cell %d has no name", ErrInvalidCensus, x)
		}
		if cells[cell.Name] {
			return fmt.Errorf("%w: duplicate cell %q", ErrInvalidCensus, cell.Name)
		}
		cells[cell.Name] = true
		for name := range cell.Inputs {
			if !fields[name] {
				return fmt.Errorf("%w: cell %q has input for unknown field %q", ErrInvalidCensus, cell.Name, name)
			}
		}
		for _, f := range c.Fields {
			if err := cell.Params(f).Validate(); err != nil {
				return fmt.Errorf("%w: cell %q field %q: %w", ErrInvalidCensus, cell.Name, f.Name, err)
			}
		}
	}
	return nil
}
