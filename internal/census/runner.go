package census

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gopkg.microglot.org/inputseq.go/internal/compiler"
	"gopkg.microglot.org/inputseq.go/internal/exc"
)

type Option func(r *Runner) error

func OptionWithConcurrency(n int) Option {
	return func(r *Runner) error {
		if n < 1 {
			return fmt.Errorf("concurrency must be positive, got %d", n)
		}
		r.Concurrency = n
		return nil
	}
}

func OptionWithLogger(logger *zap.Logger) Option {
	return func(r *Runner) error {
		r.Logger = logger
		return nil
	}
}

// Runner compiles every input of every cell in a census.
type Runner struct {
	Compiler    *compiler.Compiler
	Concurrency int
	Logger      *zap.Logger
}

func NewRunner(c *compiler.Compiler, opts ...Option) (*Runner, error) {
	r := &Runner{Compiler: c, Concurrency: 1}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	if r.Logger == nil {
		r.Logger = zap.NewNop()
	}
	return r, nil
}

// FieldResult is the outcome of compiling one input of one cell. Canonical
// and Total are set only when the input compiled without diagnostics.
type FieldResult struct {
	Valid     bool
	Canonical string
	Total     decimal.Decimal
}

type CellResult struct {
	Name   string
	Fields map[string]FieldResult
}

// FieldSummary aggregates one field over every cell. Varies is set when the
// valid cells do not all share one canonical form.
type FieldSummary struct {
	Name   string
	Varies bool
	Total  decimal.Decimal
}

type Report struct {
	Cells  []CellResult
	Fields []FieldSummary
	// Diagnostics are located by "cell/field" and sorted by location.
	Diagnostics []exc.Exception
}

// Run compiles the census. User input problems are collected in the report;
// the returned error is reserved for cancellation and internal faults.
func (self *Runner) Run(ctx context.Context, c *Census) (*Report, error) {
	reporter := exc.NewReporterConcurrent()
	results := make([]CellResult, len(c.Cells))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(self.Concurrency)
	for x, cell := range c.Cells {
		x, cell := x, cell
		g.Go(func() error {
			result, err := self.runCell(ctx, reporter, c.Fields, cell)
			if err != nil {
				return err
			}
			results[x] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Cells: results, Diagnostics: reporter.Reported()}
	slices.SortStableFunc(report.Diagnostics, func(a exc.Exception, b exc.Exception) int {
		if n := cmp.Compare(a.Location().URI, b.Location().URI); n != 0 {
			return n
		}
		return cmp.Compare(a.Location().Position, b.Location().Position)
	})
	for _, f := range c.Fields {
		report.Fields = append(report.Fields, summarize(f.Name, results))
	}
	self.Logger.Info(
		"census compiled",
		zap.Int("cells", len(c.Cells)),
		zap.Int("fields", len(c.Fields)),
		zap.Int("diagnostics", len(report.Diagnostics)),
	)
	return report, nil
}

func (self *Runner) runCell(ctx context.Context, reporter exc.Reporter, fields []Field, cell Cell) (CellResult, error) {
	result := CellResult{Name: cell.Name, Fields: make(map[string]FieldResult, len(fields))}
	for _, f := range fields {
		uri := cell.Name + "/" + f.Name
		resp, err := self.Compiler.Compile(ctx, &compiler.CompileRequest{
			Text:   cell.Inputs[f.Name],
			Params: cell.Params(f),
		})
		var diagnostics compiler.MultiException
		switch {
		case errors.As(err, &diagnostics):
			for _, e := range diagnostics {
				reporter.Report(exc.Relocate(e, uri))
			}
			result.Fields[f.Name] = FieldResult{}
			self.Logger.Debug("cell input has diagnostics", zap.String("input", uri), zap.Int("diagnostics", len(diagnostics)))
			continue
		case err != nil:
			return result, fmt.Errorf("%s: %w", uri, err)
		}
		canonical, err := resp.Sequence.Canonical()
		if err != nil {
			return result, fmt.Errorf("%s: %w", uri, err)
		}
		numbers, err := resp.Sequence.Numbers()
		if err != nil {
			return result, fmt.Errorf("%s: %w", uri, err)
		}
		total := decimal.Zero
		for _, n := range numbers {
			total = total.Add(decimal.NewFromFloat(n))
		}
		result.Fields[f.Name] = FieldResult{Valid: true, Canonical: canonical, Total: total}
	}
	return result, nil
}

func summarize(name string, cells []CellResult) FieldSummary {
	summary := FieldSummary{Name: name, Total: decimal.Zero}
	first := ""
	seen := false
	for _, cell := range cells {
		r := cell.Fields[name]
		if !r.Valid {
			continue
		}
		summary.Total = summary.Total.Add(r.Total)
		if !seen {
			first = r.Canonical
			seen = true
			continue
		}
		if r.Canonical != first {
			summary.Varies = true
		}
	}
	return summary
}
