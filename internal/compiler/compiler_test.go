package compiler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"gopkg.microglot.org/inputseq.go/internal/exc"
	"gopkg.microglot.org/inputseq.go/internal/sequence"
	"gopkg.microglot.org/inputseq.go/internal/syntax"
)

func params(ytm int) sequence.Params {
	return sequence.Params{YearsToMaturity: ytm, IssueAge: 45, RetirementAge: 65}
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for x := range out {
		out[x] = v
	}
	return out
}

func concat(parts ...[]float64) []float64 {
	var out []float64
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func compile(t *testing.T, text string, p sequence.Params) (*CompileResponse, error) {
	t.Helper()
	c, err := New(OptionWithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return c.Compile(context.Background(), &CompileRequest{Text: text, Params: p, DumpTree: true})
}

func codesOf(err error) []string {
	var multi MultiException
	if !errors.As(err, &multi) {
		return nil
	}
	out := make([]string, 0, len(multi))
	for _, e := range multi {
		out = append(out, e.Code())
	}
	return out
}

func TestCompileValid(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		params   sequence.Params
		expected []float64
	}{
		{
			name:     "empty input is zero",
			input:    "",
			params:   params(3),
			expected: []float64{0, 0, 0},
		},
		{
			name:     "scalar",
			input:    "5",
			params:   params(3),
			expected: []float64{5, 5, 5},
		},
		{
			name:     "one year spans",
			input:    "1;2;3",
			params:   params(5),
			expected: []float64{1, 2, 3, 3, 3},
		},
		{
			name:     "trailing separator",
			input:    "1;",
			params:   params(2),
			expected: []float64{1, 1},
		},
		{
			name:     "milestones",
			input:    "100,retirement; 0,maturity",
			params:   params(55),
			expected: concat(repeat(100, 20), repeat(0, 35)),
		},
		{
			name:     "attained age",
			input:    "7, @50; 0",
			params:   params(10),
			expected: concat(repeat(7, 5), repeat(0, 5)),
		},
		{
			name:     "years since last",
			input:    "1, 3; 9, #4; 0",
			params:   params(10),
			expected: concat(repeat(1, 3), repeat(9, 4), repeat(0, 3)),
		},
		{
			name:     "inclusive and exclusive brackets",
			input:    "5 [0, 2]; 6 (2, 4)",
			params:   params(6),
			expected: []float64{5, 5, 5, 6, 6, 6},
		},
		{
			name:     "gap keeps the default",
			input:    "5 [2, 4); 6",
			params:   params(6),
			expected: []float64{0, 0, 5, 5, 6, 6},
		},
		{
			name:     "interval after comma",
			input:    "1; 2, [3, 5)",
			params:   params(6),
			expected: []float64{1, 0, 0, 2, 2, 2},
		},
		{
			name:     "last interval extends to maturity",
			input:    "1, 2; 3, 4",
			params:   params(6),
			expected: []float64{1, 1, 3, 3, 3, 3},
		},
		{
			name:     "fractional values",
			input:    "0.25, 1; -1.5e1",
			params:   params(3),
			expected: []float64{0.25, -15, -15},
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			resp, err := compile(t, testCase.input, testCase.params)
			require.NoError(t, err)
			require.True(t, resp.Sequence.Valid())
			require.Empty(t, resp.Rejected)
			numbers, err := resp.Sequence.Numbers()
			require.NoError(t, err)
			require.Equal(t, testCase.expected, numbers)
		})
	}
}

func TestCompileMilestoneIntervals(t *testing.T) {
	t.Parallel()

	resp, err := compile(t, "100,retirement; 0,maturity", params(55))
	require.NoError(t, err)
	require.Equal(t, []sequence.Interval{
		{
			Begin:     0,
			End:       20,
			BeginMode: sequence.ModeInception,
			EndMode:   sequence.ModeRetirement,
			Value:     sequence.Number(100),
		},
		{
			Begin:     20,
			End:       55,
			BeginMode: sequence.ModeRetirement,
			EndMode:   sequence.ModeMaturity,
			Value:     sequence.Number(0),
		},
	}, resp.Sequence.Intervals())
}

func TestCompileDiagnostics(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		params   sequence.Params
		expected []string
	}{
		{
			name:     "empty interval",
			input:    "5 [3, 3)",
			params:   params(10),
			expected: []string{exc.CodeIntervalEmpty},
		},
		{
			name:     "overlap",
			input:    "1, 5; 2 [3, 6)",
			params:   params(10),
			expected: []string{exc.CodeIntervalOverlap},
		},
		{
			name:     "past maturity",
			input:    "1, 7",
			params:   params(5),
			expected: []string{exc.CodeIntervalPastMaturity},
		},
		{
			name:     "every failed check is reported",
			input:    "1 [@40, 5)",
			params:   params(10),
			expected: []string{exc.CodeIntervalNegative, exc.CodeIntervalOverlap},
		},
		{
			name:     "attained age before issue",
			input:    "1, @40",
			params:   params(10),
			expected: []string{exc.CodeIntervalEmpty},
		},
		{
			name:     "not an integer",
			input:    "1, 2.5",
			params:   params(10),
			expected: []string{exc.CodeNotInteger},
		},
		{
			name:     "inforce is unsupported",
			input:    "1, inforce",
			params:   params(10),
			expected: []string{exc.CodeUnsupported},
		},
		{
			name:     "empty span",
			input:    ";;",
			params:   params(10),
			expected: []string{exc.CodeUnexpectedToken, exc.CodeUnexpectedToken},
		},
		{
			name:     "missing terminator recovers at the next span",
			input:    "1 2; 3, ; 4",
			params:   params(10),
			expected: []string{exc.CodeUnexpectedToken},
		},
		{
			name:     "missing comma inside interval",
			input:    "5 [1 3)",
			params:   params(10),
			expected: []string{exc.CodeUnexpectedToken},
		},
		{
			name:     "unterminated interval",
			input:    "5 [1, 3",
			params:   params(10),
			expected: []string{exc.CodeUnexpectedEOF},
		},
		{
			name:     "comma without duration",
			input:    "5,",
			params:   params(10),
			expected: nil,
		},
		{
			name:     "lexical and syntax errors together",
			input:    "1 $; 2 [x, 3)",
			params:   params(10),
			expected: []string{exc.CodeUnknownToken, exc.CodeUnexpectedToken},
		},
		{
			name:     "keyword without allow-list",
			input:    "annual",
			params:   params(10),
			expected: []string{exc.CodeKeywordNotAllowed},
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			resp, err := compile(t, testCase.input, testCase.params)
			require.NotNil(t, resp)
			if testCase.expected == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Equal(t, testCase.expected, codesOf(err))
			seq := resp.Sequence
			require.False(t, seq.Valid())
			numbers, keywords := seq.Realized()
			require.Equal(t, make([]float64, testCase.params.YearsToMaturity), numbers)
			require.Len(t, keywords, testCase.params.YearsToMaturity)
			_, err = seq.Numbers()
			require.ErrorIs(t, err, sequence.ErrInvalidInput)
			_, err = seq.Canonical()
			require.ErrorIs(t, err, sequence.ErrInvalidInput)
		})
	}
}

func TestCompileRejectedTree(t *testing.T) {
	t.Parallel()

	resp, err := compile(t, "5 [3, 3)", params(10))
	require.Error(t, err)
	require.Len(t, resp.Rejected, 1)
	require.True(t, resp.Rejected[0].Insane)
	require.Equal(t, 3, resp.Rejected[0].Begin)
	require.Equal(t, 3, resp.Rejected[0].End)
	require.Equal(t, "position 1 -- S0010: interval 5 [3, 3): ends at or before its beginning\n", resp.Sequence.Diagnostics())
}

func TestCompileFirstDiagnostic(t *testing.T) {
	t.Parallel()

	resp, err := compile(t, "1 [@40, 5)", params(10))
	require.Error(t, err)
	require.Len(t, resp.Sequence.Exceptions(), 2)
	require.Equal(t, "position 1 -- S0009: interval 1 [-5, 5): begins before issue\n", resp.Sequence.FirstDiagnostic())
}

func TestCompileKeywords(t *testing.T) {
	t.Parallel()

	modes := sequence.Params{
		YearsToMaturity: 4,
		Keywords:        []string{"annual", "monthly"},
		DefaultKeyword:  "annual",
	}
	resp, err := compile(t, "monthly, 2; annual", modes)
	require.NoError(t, err)
	keywords, err := resp.Sequence.Keywords()
	require.NoError(t, err)
	require.Equal(t, []string{"monthly", "monthly", "annual", "annual"}, keywords)
	numbers, err := resp.Sequence.Numbers()
	require.NoError(t, err)
	require.Equal(t, []float64{0, 0, 0, 0}, numbers)

	resp, err = compile(t, "5; weekly", modes)
	require.Equal(t, []string{exc.CodeKeywordNotAllowed}, codesOf(err))
	_, keywords = resp.Sequence.Realized()
	require.Equal(t, []string{"annual", "annual", "annual", "annual"}, keywords)

	modes.KeywordsOnly = true
	resp, err = compile(t, "annual", modes)
	require.NoError(t, err)
	keywords, err = resp.Sequence.Keywords()
	require.NoError(t, err)
	require.Equal(t, []string{"annual", "annual", "annual", "annual"}, keywords)

	resp, err = compile(t, "weekly", modes)
	require.Equal(t, []string{exc.CodeKeywordNotAllowed}, codesOf(err))
	require.False(t, resp.Sequence.Valid())

	resp, err = compile(t, "5, 2; monthly", modes)
	require.Equal(t, []string{exc.CodeNumberNotAllowed}, codesOf(err))
	require.Contains(t, resp.Sequence.Diagnostics(), "expecting a keyword from { annual monthly }")

	resp, err = compile(t, "", modes)
	require.NoError(t, err)
	require.Equal(t, []sequence.Interval{{
		Begin:     0,
		End:       4,
		BeginMode: sequence.ModeInception,
		EndMode:   sequence.ModeMaturity,
		Value:     sequence.Keyword("annual"),
	}}, resp.Sequence.Intervals())
}

func TestCompileCanonicalIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"5",
		"1;2;3",
		"100,retirement; 0,maturity",
		"7, @50; 0",
		"1, 3; 9, #4; 0",
		"5 [0, 2]; 6 (2, 4)",
		"5 [2, 4); 6",
		"5 [2, 4)",
	}
	for _, input := range inputs {
		input := input
		t.Run(input, func(t *testing.T) {
			t.Parallel()

			first, err := compile(t, input, params(55))
			require.NoError(t, err)
			text, err := first.Sequence.Canonical()
			require.NoError(t, err)
			second, err := compile(t, text, params(55))
			require.NoError(t, err)
			again, err := second.Sequence.Canonical()
			require.NoError(t, err)
			require.Equal(t, text, again)
			a, _ := first.Sequence.Realized()
			b, _ := second.Sequence.Realized()
			require.Equal(t, a, b)
		})
	}
}

func TestCompileCanonicalText(t *testing.T) {
	t.Parallel()

	resp, err := compile(t, "100,retirement; 0,maturity", params(55))
	require.NoError(t, err)
	text, err := resp.Sequence.Canonical()
	require.NoError(t, err)
	require.Equal(t, "100 [0, 20); 0 [20, maturity)", text)

	resp, err = compile(t, "5 [2, 4); 6", params(6))
	require.NoError(t, err)
	text, err = resp.Sequence.Canonical()
	require.NoError(t, err)
	require.Equal(t, "5 [2, 4); 6 [4, maturity)", text)

	resp, err = compile(t, "5 [2, 4)", params(6))
	require.NoError(t, err)
	text, err = resp.Sequence.Canonical()
	require.NoError(t, err)
	require.Equal(t, "5 [2, maturity)", text)
}

func TestCompileCompactRoundTrip(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected string
	}{
		{input: "1;2;3", expected: "1; 2; 3"},
		{input: "100,retirement; 0,maturity", expected: "100, retirement; 0"},
		{input: "7, @50; 0", expected: "7, @50; 0"},
		{input: "1, 3; 9, #4; 0", expected: "1, 3; 9, #4; 0"},
		{input: "5 [2, 4); 6", expected: "5 [2, 4); 6"},
		{input: "5 [0, 2]; 6 (2, 4)", expected: "5, 3; 6"},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.input, func(t *testing.T) {
			t.Parallel()

			first, err := compile(t, testCase.input, params(55))
			require.NoError(t, err)
			text, err := first.Sequence.Compact()
			require.NoError(t, err)
			require.Equal(t, testCase.expected, text)
			second, err := compile(t, text, params(55))
			require.NoError(t, err)
			a, _ := first.Sequence.Realized()
			b, _ := second.Sequence.Realized()
			require.Equal(t, a, b)
		})
	}
}

func TestCompileDumpTokens(t *testing.T) {
	t.Parallel()

	c, err := New()
	require.NoError(t, err)
	resp, err := c.Compile(context.Background(), &CompileRequest{Text: "1;2", Params: params(3), DumpTokens: true})
	require.NoError(t, err)
	kinds := make([]syntax.TokenType, 0, len(resp.Tokens))
	for _, tok := range resp.Tokens {
		kinds = append(kinds, tok.Type)
	}
	require.Equal(t, []syntax.TokenType{
		syntax.TokenTypeNumber,
		syntax.TokenTypeSemicolon,
		syntax.TokenTypeNumber,
		syntax.TokenTypeEOF,
	}, kinds)
	require.Nil(t, resp.Rejected)
}

func TestCompileInvalidParams(t *testing.T) {
	t.Parallel()

	c, err := New()
	require.NoError(t, err)
	for _, p := range []sequence.Params{{}, params(sequence.MaxYearsToMaturity + 1), params(1 << 62)} {
		resp, err := c.Compile(context.Background(), &CompileRequest{Text: "1", Params: p})
		require.Nil(t, resp)
		require.ErrorIs(t, err, sequence.ErrInvalidParams)
	}
}

func TestCompileCanceled(t *testing.T) {
	t.Parallel()

	c, err := New()
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Compile(ctx, &CompileRequest{Text: "1", Params: params(3)})
	require.ErrorIs(t, err, context.Canceled)
}

func TestCompileLogs(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	c, err := New(OptionWithLogger(zap.New(core)))
	require.NoError(t, err)
	_, err = c.Compile(context.Background(), &CompileRequest{Text: "1;2", Params: params(3)})
	require.NoError(t, err)
	entries := logs.FilterMessage("compiled input sequence").All()
	require.Len(t, entries, 1)
	require.Equal(t, int64(2), entries[0].ContextMap()["intervals"])
}

func TestResolveDuration(t *testing.T) {
	t.Parallel()

	p := params(55)
	testCases := []struct {
		mode     sequence.DurationMode
		n        int
		expected int
	}{
		{mode: sequence.ModeAbsolute, n: 7, expected: 7},
		{mode: sequence.ModeAttainedAge, n: 50, expected: 5},
		{mode: sequence.ModeYearsSinceLast, n: 4, expected: 14},
		{mode: sequence.ModeRetirement, expected: 20},
		{mode: sequence.ModeMaturity, expected: 55},
	}
	for _, testCase := range testCases {
		d, mode := resolveDuration(p, 10, testCase.n, testCase.mode)
		require.Equal(t, testCase.expected, d, testCase.mode.String())
		require.Equal(t, testCase.mode, mode)
	}
	_, mode := resolveDuration(p, 10, 1, sequence.ModeInvalid)
	require.Equal(t, sequence.ModeInvalid, mode)
}

func TestMultiExceptionError(t *testing.T) {
	t.Parallel()

	require.Equal(t, "", MultiException(nil).Error())
	require.Equal(t, "", MultiException{}.Error())
	multi := MultiException{
		exc.New(exc.Location{}, exc.CodeIntervalEmpty, "first"),
		exc.New(exc.Location{}, exc.CodeIntervalOverlap, "second"),
	}
	require.Equal(t, multi[0].Error()+"; "+multi[1].Error(), multi.Error())
}
